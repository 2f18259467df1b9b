// Package deparse rebuilds normalized command text from structured
// command nodes. Callbacks receive this text instead of what the user
// typed: it is re-rendered from the tree, so formatting, case and
// resolved names are uniform.
//
// Deparse is total over the node union. Shapes with a rendering produce
// Result.Available=true and a trailing-semicolon statement; the rest
// produce the not-available marker (Available=false, empty text), which
// is an answer, not an error. Errors are reserved for malformed nodes
// and renderer failures.
package deparse

import (
	"fmt"
	"strings"

	"github.com/heeddb/heed/internal/ddl"
)

// Result is the deparser's answer for one command node.
//
// SchemaName and ObjectName identify the primary object the command
// addressed; for multi-object drops they identify the last object in
// the list, a preserved quirk callers should not lean on.
type Result struct {
	Text       string `json:"text,omitempty"`
	SchemaName string `json:"schema_name,omitempty"`
	ObjectName string `json:"object_name,omitempty"`
	Available  bool   `json:"available"`
}

// NotAvailable is the marker result for shapes without a rendering.
func NotAvailable() Result {
	return Result{Available: false}
}

// Renderer turns expression and query subtrees into SQL text.
// exprtext.Renderer is the in-repo implementation.
type Renderer interface {
	ExprText(ddl.Expr) (string, error)
	QueryText(ddl.Query) (string, error)
}

// Deparser renders command nodes. Stateless apart from its
// construction-time collaborators; safe to reuse across commands.
type Deparser struct {
	renderer   Renderer
	searchPath []string
}

// New creates a Deparser. searchPath resolves unqualified relation
// names: an absent schema resolves to its first entry. With an empty
// path there is nothing to resolve to, and unqualified names render
// bare.
func New(renderer Renderer, searchPath []string) *Deparser {
	return &Deparser{renderer: renderer, searchPath: searchPath}
}

// resolveRelation resolves a relation-like target: explicit schema
// wins, then the search path head, then bare. Returns the resolved
// schema (possibly empty) and the rendered name.
func (d *Deparser) resolveRelation(q ddl.QualifiedName) (string, string) {
	schema := q.Schema
	if schema == "" && len(d.searchPath) > 0 {
		schema = d.searchPath[0]
	}
	if schema != "" {
		return schema, schema + "." + q.Name
	}
	return "", q.Name
}

// Deparse renders one command node.
func (d *Deparser) Deparse(node ddl.Node) (Result, error) {
	if node == nil {
		return Result{}, fmt.Errorf("cannot deparse nil command node")
	}

	switch n := node.(type) {
	case ddl.Drop:
		return d.renderDrop(n)
	case ddl.CreateExtension:
		return d.renderCreateExtension(n)
	case ddl.CreateView:
		return d.renderCreateView(n)
	case ddl.CreateTable:
		return d.renderCreateTable(n)
	case ddl.AlterTable:
		return d.renderAlterTable(n)
	default:
		return NotAvailable(), nil
	}
}

// renderDrop renders the generic drop statement:
//
//	DROP TABLE t1, t2 IF EXISTS RESTRICT;
//
// Names come before IF EXISTS, and one of CASCADE or RESTRICT is always
// printed. Both are preserved quirks of the normalized form.
func (d *Deparser) renderDrop(n ddl.Drop) (Result, error) {
	if len(n.Objects) == 0 {
		return Result{}, fmt.Errorf("drop %s: no target objects", n.Kind)
	}

	var res Result
	names := make([]string, 0, len(n.Objects))
	for _, obj := range n.Objects {
		switch {
		case n.Kind.RelationLike():
			schema, text := d.resolveRelation(obj)
			names = append(names, text)
			res.SchemaName, res.ObjectName = schema, obj.Name
		case n.Kind.TypeLike():
			names = append(names, typeText(ddl.TypeName{Schema: obj.Schema, Name: obj.Name}))
			res.SchemaName, res.ObjectName = obj.Schema, obj.Name
		default:
			names = append(names, obj.Name)
			res.SchemaName, res.ObjectName = "", obj.Name
		}
	}

	var b strings.Builder
	b.WriteString("DROP ")
	b.WriteString(n.Kind.Keyword())
	b.WriteString(" ")
	b.WriteString(strings.Join(names, ", "))
	if n.MissingOK {
		b.WriteString(" IF EXISTS")
	}
	if n.Cascade {
		b.WriteString(" CASCADE")
	} else {
		b.WriteString(" RESTRICT")
	}
	b.WriteString(";")

	res.Text = b.String()
	res.Available = true
	return res, nil
}

// renderCreateExtension renders:
//
//	CREATE EXTENSION name [SCHEMA s] [VERSION v] [FROM f];
//
// Option clauses appear only when present, in that fixed order.
func (d *Deparser) renderCreateExtension(n ddl.CreateExtension) (Result, error) {
	var b strings.Builder
	b.WriteString("CREATE EXTENSION ")
	b.WriteString(n.Name)
	if n.Schema != "" {
		b.WriteString(" SCHEMA ")
		b.WriteString(n.Schema)
	}
	if n.Version != "" {
		b.WriteString(" VERSION ")
		b.WriteString(n.Version)
	}
	if n.From != "" {
		b.WriteString(" FROM ")
		b.WriteString(n.From)
	}
	b.WriteString(";")

	return Result{
		Text:       b.String(),
		SchemaName: n.Schema,
		ObjectName: n.Name,
		Available:  true,
	}, nil
}

// renderCreateView renders:
//
//	CREATE [OR REPLACE] VIEW schema.name AS <query>;
//
// The body goes through the renderer's query-to-text.
func (d *Deparser) renderCreateView(n ddl.CreateView) (Result, error) {
	if n.Query == nil {
		return Result{}, fmt.Errorf("create view %s: no query body", n.Name.Name)
	}
	if d.renderer == nil {
		return Result{}, fmt.Errorf("create view %s: no renderer configured", n.Name.Name)
	}
	body, err := d.renderer.QueryText(n.Query)
	if err != nil {
		return Result{}, fmt.Errorf("create view %s: render query: %w", n.Name.Name, err)
	}

	schema, target := d.resolveRelation(n.Name)

	var b strings.Builder
	b.WriteString("CREATE ")
	if n.OrReplace {
		b.WriteString("OR REPLACE ")
	}
	b.WriteString("VIEW ")
	b.WriteString(target)
	b.WriteString(" AS ")
	b.WriteString(body)
	b.WriteString(";")

	return Result{
		Text:       b.String(),
		SchemaName: schema,
		ObjectName: n.Name.Name,
		Available:  true,
	}, nil
}

// typeText renders a type name: schema qualification, modifiers and
// array brackets.
func typeText(t ddl.TypeName) string {
	s := t.Name
	if t.Schema != "" {
		s = t.Schema + "." + t.Name
	}
	if len(t.Mods) > 0 {
		mods := make([]string, 0, len(t.Mods))
		for _, m := range t.Mods {
			mods = append(mods, fmt.Sprintf("%d", m))
		}
		s += "(" + strings.Join(mods, ", ") + ")"
	}
	if t.Array {
		s += "[]"
	}
	return s
}

// qualifiedText renders a name as written, without search path
// resolution. Only statement targets get resolved; names inside
// fragments stay as the parser produced them.
func qualifiedText(q ddl.QualifiedName) string {
	if q.Schema != "" {
		return q.Schema + "." + q.Name
	}
	return q.Name
}
