package deparse

import (
	"fmt"
	"strings"

	"github.com/heeddb/heed/internal/ddl"
)

// renderCreateTable renders:
//
//	CREATE TABLE [IF NOT EXISTS] schema.name (col, ..., constraint, ...);
//
// Columns and table-level constraints keep declaration order. A column
// is "name type" followed by its constraint fragments.
func (d *Deparser) renderCreateTable(n ddl.CreateTable) (Result, error) {
	schema, target := d.resolveRelation(n.Name)

	items := make([]string, 0, len(n.Columns)+len(n.Constraints))
	for _, col := range n.Columns {
		text, err := d.columnText(col)
		if err != nil {
			return Result{}, fmt.Errorf("create table %s: column %s: %w", n.Name.Name, col.Name, err)
		}
		items = append(items, text)
	}
	for i, con := range n.Constraints {
		text, err := d.constraintText(con)
		if err != nil {
			return Result{}, fmt.Errorf("create table %s: constraint %d: %w", n.Name.Name, i, err)
		}
		items = append(items, text)
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if n.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(target)
	b.WriteString(" (")
	b.WriteString(strings.Join(items, ", "))
	b.WriteString(");")

	return Result{
		Text:       b.String(),
		SchemaName: schema,
		ObjectName: n.Name.Name,
		Available:  true,
	}, nil
}

func (d *Deparser) columnText(col ddl.ColumnDef) (string, error) {
	parts := []string{col.Name + " " + typeText(col.Type)}
	for _, con := range col.Constraints {
		text, err := d.constraintText(con)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " "), nil
}

// constraintText renders one constraint fragment. The same fragments
// serve column and table level; PRIMARY KEY prints its key list only
// when one was declared.
func (d *Deparser) constraintText(con ddl.Constraint) (string, error) {
	switch c := con.(type) {
	case ddl.NotNull:
		return "NOT NULL", nil
	case ddl.Null:
		return "NULL", nil
	case ddl.Default:
		expr, err := d.exprText(c.Expr)
		if err != nil {
			return "", fmt.Errorf("render default: %w", err)
		}
		return "DEFAULT " + expr, nil
	case ddl.Check:
		expr, err := d.exprText(c.Expr)
		if err != nil {
			return "", fmt.Errorf("render check: %w", err)
		}
		return "CHECK (" + expr + ")", nil
	case ddl.Unique:
		s := "UNIQUE"
		if c.IndexSpace != "" {
			s += " USING INDEX TABLESPACE " + c.IndexSpace
		}
		return s, nil
	case ddl.PrimaryKey:
		s := "PRIMARY KEY"
		if len(c.Columns) > 0 {
			s += " (" + strings.Join(c.Columns, ", ") + ")"
		}
		if c.IndexSpace != "" {
			s += " USING INDEX TABLESPACE " + c.IndexSpace
		}
		return s, nil
	case ddl.Exclusion:
		return "EXCLUDE USING " + c.Method, nil
	case ddl.ForeignKey:
		// Key columns and referential actions are not preserved; the
		// referenced table is all that survives.
		return "REFERENCES " + qualifiedText(c.RefTable), nil
	case ddl.Deferrable:
		return "DEFERRABLE", nil
	case ddl.InitiallyDeferred:
		return "INITIALLY DEFERRED", nil
	default:
		return "", fmt.Errorf("unsupported constraint type: %T", con)
	}
}

func (d *Deparser) exprText(e ddl.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("no expression")
	}
	if d.renderer == nil {
		return "", fmt.Errorf("no renderer configured")
	}
	return d.renderer.ExprText(e)
}

// renderAlterTable renders the generic relation alter statement:
//
//	ALTER TABLE schema.name <fragment>, <fragment>;
//
// Fragments keep declaration order. Sub-actions without a rendering
// contribute nothing; a statement whose sub-actions all rendered empty
// still reports the target.
func (d *Deparser) renderAlterTable(n ddl.AlterTable) (Result, error) {
	schema, target := d.resolveRelation(n.Name)

	fragments := make([]string, 0, len(n.Cmds))
	for i, cmd := range n.Cmds {
		frag, err := d.alterCmdText(cmd)
		if err != nil {
			return Result{}, fmt.Errorf("alter %s %s: action %d: %w",
				strings.ToLower(n.Kind.Keyword()), n.Name.Name, i, err)
		}
		if frag != "" {
			fragments = append(fragments, frag)
		}
	}

	var b strings.Builder
	b.WriteString("ALTER ")
	b.WriteString(n.Kind.Keyword())
	b.WriteString(" ")
	b.WriteString(target)
	if len(fragments) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(fragments, ", "))
	}
	b.WriteString(";")

	return Result{
		Text:       b.String(),
		SchemaName: schema,
		ObjectName: n.Name.Name,
		Available:  true,
	}, nil
}

// alterCmdText renders one sub-action fragment. An empty string means
// the sub-action has no rendering.
func (d *Deparser) alterCmdText(cmd ddl.AlterTableCmd) (string, error) {
	switch c := cmd.(type) {
	case ddl.AddColumn:
		// Constraints on the added column are not preserved.
		return "ADD COLUMN " + c.Column.Name + " " + typeText(c.Column.Type), nil
	case ddl.AlterColumnType:
		return "ALTER COLUMN " + c.Column + " TYPE " + typeText(c.Type), nil
	case ddl.ColumnDefault:
		if c.Expr == nil {
			return "ALTER COLUMN " + c.Column + " DROP DEFAULT", nil
		}
		expr, err := d.exprText(c.Expr)
		if err != nil {
			return "", fmt.Errorf("render default for column %s: %w", c.Column, err)
		}
		return "ALTER COLUMN " + c.Column + " SET DEFAULT " + expr, nil
	case ddl.SetNotNull:
		return "ALTER COLUMN " + c.Column + " SET NOT NULL", nil
	case ddl.DropNotNull:
		return "ALTER COLUMN " + c.Column + " DROP NOT NULL", nil
	case ddl.SetStorage:
		return "ALTER COLUMN " + c.Column + " SET STORAGE " + strings.ToUpper(c.Mode), nil
	case ddl.SetStatistics:
		return fmt.Sprintf("ALTER COLUMN %s SET STATISTICS %d", c.Column, c.Target), nil
	case ddl.DropColumn:
		return "DROP COLUMN " + c.Column, nil
	case ddl.ValidateConstraint:
		return "VALIDATE CONSTRAINT " + c.Name, nil
	case ddl.DropConstraint:
		return "DROP CONSTRAINT " + c.Name, nil
	case ddl.ChangeOwner:
		return "OWNER TO " + c.NewOwner, nil
	case ddl.ClusterOn:
		return "CLUSTER ON " + c.Index, nil
	case ddl.TriggerToggle:
		return c.Mode.Keyword() + " TRIGGER " + c.Name, nil
	case ddl.RuleToggle:
		return c.Mode.Keyword() + " RULE " + c.Name, nil
	case ddl.AddInherit:
		return "INHERIT " + qualifiedText(c.Parent), nil
	case ddl.DropInherit:
		return "NO INHERIT " + qualifiedText(c.Parent), nil
	case ddl.AddOf:
		return "OF " + typeText(c.Type), nil
	case ddl.DropOf:
		return "NOT OF", nil
	case ddl.AddIndex, ddl.AddConstraint, ddl.SetRelOptions, ddl.ResetRelOptions, ddl.GenericOpts:
		// No rendering for these sub-actions.
		return "", nil
	default:
		return "", fmt.Errorf("unsupported alter action type: %T", cmd)
	}
}
