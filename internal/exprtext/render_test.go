package exprtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heeddb/heed/internal/ddl"
)

func TestExprText(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name string
		expr ddl.Expr
		want string
	}{
		{"null literal", ddl.Literal{}, "NULL"},
		{"string literal", ddl.Literal{Value: "open"}, "'open'"},
		{"string with quote", ddl.Literal{Value: "it's"}, "'it''s'"},
		{"integer literal", ddl.Literal{Value: int64(42)}, "42"},
		{"negative integer", ddl.Literal{Value: int64(-7)}, "-7"},
		{"true literal", ddl.Literal{Value: true}, "TRUE"},
		{"false literal", ddl.Literal{Value: false}, "FALSE"},
		{"bare column", ddl.ColumnRef{Name: "qty"}, "qty"},
		{"qualified column", ddl.ColumnRef{Table: "orders", Name: "qty"}, "orders.qty"},
		{"call without args", ddl.FuncCall{Name: "now"}, "now()"},
		{
			"call with args",
			ddl.FuncCall{Name: "coalesce", Args: []ddl.Expr{
				ddl.ColumnRef{Name: "note"},
				ddl.Literal{Value: "n/a"},
			}},
			"coalesce(note, 'n/a')",
		},
		{
			"binary op",
			ddl.BinaryOp{Op: ">", Left: ddl.ColumnRef{Name: "qty"}, Right: ddl.Literal{Value: int64(0)}},
			"(qty > 0)",
		},
		{
			"nested ops keep grouping",
			ddl.BinaryOp{
				Op:   "AND",
				Left: ddl.BinaryOp{Op: ">", Left: ddl.ColumnRef{Name: "qty"}, Right: ddl.Literal{Value: int64(0)}},
				Right: ddl.BinaryOp{
					Op:    "<",
					Left:  ddl.ColumnRef{Name: "qty"},
					Right: ddl.Literal{Value: int64(100)},
				},
			},
			"((qty > 0) AND (qty < 100))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ExprText(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExprTextErrors(t *testing.T) {
	r := NewRenderer()

	_, err := r.ExprText(nil)
	require.Error(t, err)

	_, err = r.ExprText(ddl.Literal{Value: 1.5})
	require.Error(t, err, "floats have no literal rendering")

	_, err = r.ExprText(ddl.BinaryOp{Op: "+", Left: ddl.ColumnRef{Name: "a"}})
	require.Error(t, err, "missing right operand")
}

func TestQueryText(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name  string
		query ddl.Query
		want  string
	}{
		{"raw passthrough", ddl.RawQuery{Text: "SELECT 1"}, "SELECT 1"},
		{
			"select star",
			ddl.SelectQuery{From: ddl.QualifiedName{Name: "orders"}},
			"SELECT * FROM orders",
		},
		{
			"select with columns and where",
			ddl.SelectQuery{
				Columns: []ddl.Expr{ddl.ColumnRef{Name: "id"}, ddl.ColumnRef{Name: "qty"}},
				From:    ddl.QualifiedName{Schema: "app", Name: "orders"},
				Where:   ddl.BinaryOp{Op: "=", Left: ddl.ColumnRef{Name: "status"}, Right: ddl.Literal{Value: "open"}},
			},
			"SELECT id, qty FROM app.orders WHERE (status = 'open')",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.QueryText(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryTextErrors(t *testing.T) {
	r := NewRenderer()

	_, err := r.QueryText(nil)
	require.Error(t, err)

	_, err = r.QueryText(ddl.RawQuery{})
	require.Error(t, err, "empty raw text")

	_, err = r.QueryText(ddl.SelectQuery{
		From:  ddl.QualifiedName{Name: "orders"},
		Where: ddl.Literal{Value: []string{"bad"}},
	})
	require.Error(t, err)
}
