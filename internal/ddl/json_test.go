package ddl

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeEnvelopeRoundTrip(t *testing.T) {
	nodes := AllClassifiable()
	nodes = append(nodes,
		Vacuum{Tables: []QualifiedName{{Schema: "app", Name: "t1"}}, Full: true, Analyze: true},
		CreateTable{
			Name:        QualifiedName{Schema: "app", Name: "orders"},
			IfNotExists: true,
			Columns: []ColumnDef{
				{
					Name: "id",
					Type: TypeName{Name: "bigint"},
					Constraints: []Constraint{
						NotNull{},
						Default{Expr: FuncCall{Name: "nextval", Args: []Expr{Literal{Value: "orders_id_seq"}}}},
					},
				},
				{
					Name: "qty",
					Type: TypeName{Name: "numeric", Mods: []int64{10, 2}},
					Constraints: []Constraint{
						Check{Name: "qty_positive", Expr: BinaryOp{
							Op:    ">",
							Left:  ColumnRef{Name: "qty"},
							Right: Literal{Value: int64(0)},
						}},
					},
				},
			},
			Constraints: []Constraint{
				PrimaryKey{Columns: []string{"id"}, IndexSpace: "fast_disk"},
				ForeignKey{RefTable: QualifiedName{Schema: "app", Name: "customers"}},
				Deferrable{},
				InitiallyDeferred{},
			},
		},
		CreateView{
			Name:      QualifiedName{Schema: "app", Name: "open_orders"},
			OrReplace: true,
			Query: SelectQuery{
				Columns: []Expr{ColumnRef{Name: "id"}, ColumnRef{Name: "qty"}},
				From:    QualifiedName{Schema: "app", Name: "orders"},
				Where:   BinaryOp{Op: "=", Left: ColumnRef{Name: "status"}, Right: Literal{Value: "open"}},
			},
		},
		AlterTable{
			Kind: KindTable,
			Name: QualifiedName{Schema: "app", Name: "orders"},
			Cmds: []AlterTableCmd{
				AddColumn{Column: ColumnDef{Name: "note", Type: TypeName{Name: "text"}, Constraints: []Constraint{Null{}}}},
				AlterColumnType{Column: "qty", Type: TypeName{Name: "bigint"}},
				ColumnDefault{Column: "note", Expr: Literal{Value: "n/a"}},
				ColumnDefault{Column: "qty"},
				SetNotNull{Column: "qty"},
				DropNotNull{Column: "note"},
				SetStorage{Column: "note", Mode: "EXTENDED"},
				SetStatistics{Column: "qty", Target: 500},
				DropColumn{Column: "legacy"},
				AddIndex{Index: "orders_qty_idx"},
				AddConstraint{Name: "orders_uniq", Constraint: Unique{IndexSpace: "fast_disk"}},
				ValidateConstraint{Name: "qty_positive"},
				DropConstraint{Name: "orders_old_fk"},
				ChangeOwner{NewOwner: "app_owner"},
				ClusterOn{Index: "orders_pkey"},
				TriggerToggle{Mode: ToggleEnableReplica, Name: "audit"},
				RuleToggle{Mode: ToggleDisable, Name: "protect"},
				AddInherit{Parent: QualifiedName{Name: "orders_base"}},
				DropInherit{Parent: QualifiedName{Name: "orders_base"}},
				AddOf{Type: TypeName{Schema: "app", Name: "order_t"}},
				DropOf{},
				SetRelOptions{Options: map[string]string{"fillfactor": "70"}},
				ResetRelOptions{Options: []string{"fillfactor"}},
				GenericOpts{Options: map[string]string{"server": "remote"}},
			},
		},
		CreateExtension{Name: "citext", Schema: "ext", Version: "1.6", From: "unpackaged"},
		Drop{
			Kind:      KindTable,
			Objects:   []QualifiedName{{Name: "t1"}, {Schema: "app", Name: "t2"}},
			MissingOK: true,
			Cascade:   true,
		},
	)

	for i, node := range nodes {
		t.Run(fmt.Sprintf("%02d_%T", i, node), func(t *testing.T) {
			data, err := EncodeNode(node)
			require.NoError(t, err)

			back, err := DecodeNode(data)
			require.NoError(t, err, "payload: %s", data)
			assert.Equal(t, node, back)
		})
	}
}

func TestDecodeNodeStrict(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty envelope", `{}`},
		{"null envelope", `null`},
		{"two shapes", `{"drop": {"kind": "table"}, "vacuum": {}}`},
		{"unknown shape", `{"truncate": {}}`},
		{"unknown field", `{"drop": {"kind": "table", "purge": true}}`},
		{"unknown nested field", `{"create_table": {"table": {"name": "t"}, "columns": [{"name": "id", "type": {"name": "int8"}, "width": 4}]}}`},
		{"unknown constraint shape", `{"create_table": {"table": {"name": "t"}, "columns": [], "constraints": [{"sparkly": {}}]}}`},
		{"constraint field on bodyless shape", `{"create_table": {"table": {"name": "t"}, "columns": [{"name": "id", "type": {"name": "int8"}, "constraints": [{"not_null": {"hard": true}}]}]}}`},
		{"bad kind", `{"drop": {"kind": "starbase"}}`},
		{"view without query", `{"create_view": {"view": {"name": "v"}}}`},
		{"float literal", `{"create_table": {"table": {"name": "t"}, "columns": [{"name": "price", "type": {"name": "numeric"}, "constraints": [{"default": {"expr": {"literal": {"value": 1.5}}}}]}]}}`},
		{"literal array", `{"create_table": {"table": {"name": "t"}, "columns": [{"name": "c", "type": {"name": "text"}, "constraints": [{"default": {"expr": {"literal": {"value": [1]}}}}]}]}}`},
		{"op missing operand", `{"create_table": {"table": {"name": "t"}, "columns": [{"name": "c", "type": {"name": "int8"}, "constraints": [{"check": {"expr": {"op": {"op": ">", "left": {"column": {"name": "c"}}}}}}]}]}}`},
		{"bad toggle mode", `{"alter_table": {"kind": "table", "target": {"name": "t"}, "cmds": [{"trigger_toggle": {"mode": "sideways", "name": "tg"}}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeNode([]byte(tt.in))
			require.Error(t, err)
		})
	}
}

func TestDecodeNodeIntegerLiteralSurvives(t *testing.T) {
	// Large integers must not round trip through float64.
	in := `{"create_table": {"table": {"name": "t"}, "columns": [{"name": "c", "type": {"name": "int8"}, "constraints": [{"default": {"expr": {"literal": {"value": 9007199254740993}}}}]}]}}`
	node, err := DecodeNode([]byte(in))
	require.NoError(t, err)

	ct, ok := node.(CreateTable)
	require.True(t, ok)
	def, ok := ct.Columns[0].Constraints[0].(Default)
	require.True(t, ok)
	lit, ok := def.Expr.(Literal)
	require.True(t, ok)
	assert.Equal(t, int64(9007199254740993), lit.Value)
}

func TestEncodeNodeRejectsOpenValues(t *testing.T) {
	_, err := EncodeNode(CreateTable{
		Name: QualifiedName{Name: "t"},
		Columns: []ColumnDef{{
			Name:        "c",
			Type:        TypeName{Name: "numeric"},
			Constraints: []Constraint{Default{Expr: Literal{Value: 1.5}}},
		}},
	})
	require.Error(t, err)

	_, err = EncodeNode(CreateView{Name: QualifiedName{Name: "v"}})
	require.Error(t, err, "query is required")

	_, err = EncodeNode(nil)
	require.Error(t, err)
}
