package ddl

// Expr represents a scalar expression embedded in a command node
// (column defaults, check constraints).
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and
// enables exhaustive type switches in expression renderers.
//
// Expression types:
//   - Literal: typed constant (string, integer, boolean, null)
//   - ColumnRef: possibly table-qualified column reference
//   - FuncCall: function invocation with argument expressions
//   - BinaryOp: infix operator over two sub-expressions
//
// Floats are excluded: literal values are string, int64, bool or nil.
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Literal is a typed constant.
//
// Rendering:
//
//	Literal{Value: "it's"}     → 'it''s'
//	Literal{Value: int64(42)}  → 42
//	Literal{Value: true}       → TRUE
//	Literal{Value: nil}        → NULL
//
// Any other dynamic type is a render-time error.
type Literal struct {
	Value any `json:"value"`
}

func (Literal) exprNode() {}

// ColumnRef references a column, optionally table-qualified.
//
// Rendering:
//
//	ColumnRef{Name: "price"}                   → price
//	ColumnRef{Table: "items", Name: "price"}   → items.price
type ColumnRef struct {
	Table string `json:"table,omitempty"`
	Name  string `json:"name"`
}

func (ColumnRef) exprNode() {}

// FuncCall is a function invocation.
//
// Rendering:
//
//	FuncCall{Name: "now"}                             → now()
//	FuncCall{Name: "coalesce", Args: [a, Literal(0)]} → coalesce(a, 0)
type FuncCall struct {
	Name string `json:"name"`
	Args []Expr `json:"-"`
}

func (FuncCall) exprNode() {}

// BinaryOp is an infix operator applied to two sub-expressions.
// Rendered fully parenthesized, "(left op right)", so operand grouping
// survives without precedence rules.
type BinaryOp struct {
	Op    string `json:"op"`
	Left  Expr   `json:"-"`
	Right Expr   `json:"-"`
}

func (BinaryOp) exprNode() {}

// Query represents a view body.
//
// This is a sealed interface - only types in this package implement it.
//
// Query types:
//   - SelectQuery: structured single-table select
//   - RawQuery: pre-rendered text carried through verbatim
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// SelectQuery is a structured single-table select.
//
// Rendering:
//
//	SELECT <col>, ... FROM <from> [WHERE <where>]
//
// An empty Columns list renders "SELECT *". Joins and subqueries are
// not representable; parsers emit RawQuery for anything richer.
type SelectQuery struct {
	Columns []Expr        `json:"-"`
	From    QualifiedName `json:"from"`
	Where   Expr          `json:"-"`
}

func (SelectQuery) queryNode() {}

// RawQuery carries already-rendered query text. The renderer returns
// Text unchanged; an empty Text is a render-time error.
type RawQuery struct {
	Text string `json:"text"`
}

func (RawQuery) queryNode() {}
