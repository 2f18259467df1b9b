package ddl

// Constraint represents one column- or table-level constraint in a
// create-table statement.
//
// This is a sealed interface - only types in this package implement it.
// The deparser renders constraints in declaration order; each variant
// documents its rendered fragment.
type Constraint interface {
	constraintNode() // Marker method - seals interface to this package
}

// NotNull renders as "NOT NULL".
type NotNull struct{}

func (NotNull) constraintNode() {}

// Null renders as "NULL".
type Null struct{}

func (Null) constraintNode() {}

// Default renders as "DEFAULT <expr>". The expression goes through the
// expression renderer, never source text.
type Default struct {
	Expr Expr `json:"-"`
}

func (Default) constraintNode() {}

// Check renders as "CHECK (<expr>)". Name is the constraint name when
// one was declared; it does not affect rendering.
type Check struct {
	Name string `json:"name,omitempty"`
	Expr Expr   `json:"-"`
}

func (Check) constraintNode() {}

// Unique renders as "UNIQUE", with "USING INDEX TABLESPACE <space>"
// appended when IndexSpace is set.
type Unique struct {
	IndexSpace string `json:"index_space,omitempty"`
}

func (Unique) constraintNode() {}

// PrimaryKey renders as "PRIMARY KEY", with "(<col>, ...)" when used
// at table level with a key list and "USING INDEX TABLESPACE <space>"
// when IndexSpace is set.
type PrimaryKey struct {
	Columns    []string `json:"columns,omitempty"`
	IndexSpace string   `json:"index_space,omitempty"`
}

func (PrimaryKey) constraintNode() {}

// Exclusion renders only its access method, "EXCLUDE USING <method>".
// Operator lists are not preserved.
type Exclusion struct {
	Method string `json:"method"`
}

func (Exclusion) constraintNode() {}

// ForeignKey renders only the referenced table, "REFERENCES <table>".
// Key columns and referential actions are not preserved.
type ForeignKey struct {
	RefTable QualifiedName `json:"ref_table"`
}

func (ForeignKey) constraintNode() {}

// Deferrable renders as "DEFERRABLE".
type Deferrable struct{}

func (Deferrable) constraintNode() {}

// InitiallyDeferred renders as "INITIALLY DEFERRED".
type InitiallyDeferred struct{}

func (InitiallyDeferred) constraintNode() {}
