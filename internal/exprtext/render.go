// Package exprtext renders ddl expression and query trees back into
// SQL text. It is the in-repo implementation of the deparser's Renderer
// capability: command text is always re-rendered from the structured
// tree, never copied from what the user originally typed.
package exprtext

import (
	"fmt"
	"strings"

	"github.com/heeddb/heed/internal/ddl"
)

// Renderer renders expressions and queries. Stateless; the zero value
// is usable.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// ExprText renders a scalar expression.
func (r *Renderer) ExprText(e ddl.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("cannot render nil expression")
	}

	switch x := e.(type) {
	case ddl.Literal:
		return renderLiteral(x.Value)
	case ddl.ColumnRef:
		if x.Table != "" {
			return x.Table + "." + x.Name, nil
		}
		return x.Name, nil
	case ddl.FuncCall:
		args := make([]string, 0, len(x.Args))
		for i, arg := range x.Args {
			s, err := r.ExprText(arg)
			if err != nil {
				return "", fmt.Errorf("render argument %d of %s: %w", i, x.Name, err)
			}
			args = append(args, s)
		}
		return fmt.Sprintf("%s(%s)", x.Name, strings.Join(args, ", ")), nil
	case ddl.BinaryOp:
		left, err := r.ExprText(x.Left)
		if err != nil {
			return "", fmt.Errorf("render left operand: %w", err)
		}
		right, err := r.ExprText(x.Right)
		if err != nil {
			return "", fmt.Errorf("render right operand: %w", err)
		}
		// Fully parenthesized so grouping survives without precedence
		// rules.
		return fmt.Sprintf("(%s %s %s)", left, x.Op, right), nil
	default:
		return "", fmt.Errorf("unsupported expression type: %T", e)
	}
}

// QueryText renders a view body.
func (r *Renderer) QueryText(q ddl.Query) (string, error) {
	if q == nil {
		return "", fmt.Errorf("cannot render nil query")
	}

	switch x := q.(type) {
	case ddl.SelectQuery:
		return r.renderSelect(x)
	case ddl.RawQuery:
		if x.Text == "" {
			return "", fmt.Errorf("raw query has no text")
		}
		return x.Text, nil
	default:
		return "", fmt.Errorf("unsupported query type: %T", q)
	}
}

func (r *Renderer) renderSelect(q ddl.SelectQuery) (string, error) {
	columns := "*"
	if len(q.Columns) > 0 {
		parts := make([]string, 0, len(q.Columns))
		for i, col := range q.Columns {
			s, err := r.ExprText(col)
			if err != nil {
				return "", fmt.Errorf("render column %d: %w", i, err)
			}
			parts = append(parts, s)
		}
		columns = strings.Join(parts, ", ")
	}

	from := q.From.Name
	if q.From.Schema != "" {
		from = q.From.Schema + "." + q.From.Name
	}

	sql := fmt.Sprintf("SELECT %s FROM %s", columns, from)
	if q.Where != nil {
		where, err := r.ExprText(q.Where)
		if err != nil {
			return "", fmt.Errorf("render where clause: %w", err)
		}
		sql += " WHERE " + where
	}
	return sql, nil
}

// renderLiteral renders a literal value as a SQL constant. String
// literals double embedded single quotes; the value domain is closed
// (string, int64, bool, nil) like everywhere else in the node tree.
func renderLiteral(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'", nil
	case int64:
		return fmt.Sprintf("%d", x), nil
	case int:
		return fmt.Sprintf("%d", x), nil
	case bool:
		if x {
			return "TRUE", nil
		}
		return "FALSE", nil
	default:
		return "", fmt.Errorf("unsupported literal type: %T", v)
	}
}
