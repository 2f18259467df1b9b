package ddl

// Node represents one parsed administrative statement.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and
// enables exhaustive type switches in the classifier and the deparser.
//
// Shapes with full deparse support: CreateTable, CreateView,
// CreateExtension, Drop, AlterTable. The remaining shapes classify to a
// tag but deparse to the "not available" marker. Vacuum carries no
// trigger support at all and exists to exercise that path.
type Node interface {
	commandNode() // Marker method - seals interface to this package
}

// QualifiedName is a possibly schema-qualified object name.
// An empty Schema means the name was written unqualified; how that
// resolves (search path, bare rendering) depends on the object kind.
type QualifiedName struct {
	Schema string `json:"schema,omitempty"`
	Name   string `json:"name"`
}

// TypeName names a data type, optionally schema-qualified, with
// optional type modifiers ("varchar(10)") and array form ("integer[]").
type TypeName struct {
	Schema string  `json:"schema,omitempty"`
	Name   string  `json:"name"`
	Mods   []int64 `json:"mods,omitempty"`
	Array  bool    `json:"array,omitempty"`
}

// ColumnDef is one column in a create-table statement.
// Constraints render in declaration order.
type ColumnDef struct {
	Name        string       `json:"name"`
	Type        TypeName     `json:"type"`
	Constraints []Constraint `json:"-"`
}

// CreateTable represents CREATE TABLE.
//
// Deparse shape:
//
//	CREATE TABLE [IF NOT EXISTS] name (col, col, ..., constraint, ...);
//
// Columns and table-level constraints keep declaration order.
type CreateTable struct {
	Name        QualifiedName `json:"table"`
	IfNotExists bool          `json:"if_not_exists,omitempty"`
	Columns     []ColumnDef   `json:"columns"`
	Constraints []Constraint  `json:"-"`
}

func (CreateTable) commandNode() {}

// CreateView represents CREATE [OR REPLACE] VIEW.
//
// Deparse shape:
//
//	CREATE [OR REPLACE] VIEW name AS <query>;
//
// The query body is re-rendered through the query-to-text capability,
// never copied from source text.
type CreateView struct {
	Name      QualifiedName `json:"view"`
	OrReplace bool          `json:"or_replace,omitempty"`
	Query     Query         `json:"-"`
}

func (CreateView) commandNode() {}

// CreateIndex represents CREATE INDEX. Classifiable; no deparse
// rendering is defined for it.
type CreateIndex struct {
	Name    string        `json:"index"`
	Table   QualifiedName `json:"table"`
	Unique  bool          `json:"unique,omitempty"`
	Method  string        `json:"method,omitempty"`
	Columns []string      `json:"columns,omitempty"`
}

func (CreateIndex) commandNode() {}

// CreateSequence represents CREATE SEQUENCE. Classifiable; no deparse
// rendering is defined for it.
type CreateSequence struct {
	Name        QualifiedName `json:"sequence"`
	IfNotExists bool          `json:"if_not_exists,omitempty"`
}

func (CreateSequence) commandNode() {}

// CreateSchema represents CREATE SCHEMA. Classifiable; no deparse
// rendering is defined for it.
type CreateSchema struct {
	Name          string `json:"schema"`
	IfNotExists   bool   `json:"if_not_exists,omitempty"`
	Authorization string `json:"authorization,omitempty"`
}

func (CreateSchema) commandNode() {}

// CreateExtension represents CREATE EXTENSION.
//
// Deparse shape:
//
//	CREATE EXTENSION name [SCHEMA s] [VERSION v] [FROM f];
//
// Option clauses appear only if present, in that fixed order.
type CreateExtension struct {
	Name    string `json:"extension"`
	Schema  string `json:"schema,omitempty"`
	Version string `json:"version,omitempty"`
	From    string `json:"from,omitempty"`
}

func (CreateExtension) commandNode() {}

// AlterExtension represents ALTER EXTENSION ... UPDATE. Classifiable;
// no deparse rendering is defined for it.
type AlterExtension struct {
	Name    string `json:"extension"`
	Version string `json:"version,omitempty"`
}

func (AlterExtension) commandNode() {}

// Drop represents DROP <KIND>, possibly of several objects at once.
//
// Deparse shape:
//
//	<DROP TAG> name1, name2, ... [IF EXISTS] [CASCADE|RESTRICT];
//
// Object naming varies by kind: relation-like objects render
// schema-qualified with an absent schema resolved to the head of the
// search path; type-like objects go through the type-name renderer;
// everything else renders the bare identifier.
type Drop struct {
	Kind      ObjectKind      `json:"kind"`
	Objects   []QualifiedName `json:"objects"`
	MissingOK bool            `json:"missing_ok,omitempty"`
	Cascade   bool            `json:"cascade,omitempty"`
}

func (Drop) commandNode() {}

// AlterTable represents the generic relation alter statement
// (ALTER TABLE / ALTER VIEW / ALTER INDEX / ALTER SEQUENCE, selected by
// Kind) with an ordered list of sub-actions.
//
// Deparse shape:
//
//	<ALTER TAG> name <cmd>, <cmd>, ...;
//
// Sub-actions render in order joined by ", "; kinds with no rendering
// contribute nothing.
type AlterTable struct {
	Kind ObjectKind      `json:"kind"`
	Name QualifiedName   `json:"target"`
	Cmds []AlterTableCmd `json:"-"`
}

func (AlterTable) commandNode() {}

// Rename represents RENAME of an object or sub-object. Classification
// resolves through the object kind (renaming a table classifies as
// ALTER TABLE). No deparse rendering is defined for it.
type Rename struct {
	Kind    ObjectKind    `json:"kind"`
	Object  QualifiedName `json:"object"`
	Subname string        `json:"subname,omitempty"`
	NewName string        `json:"new_name"`
}

func (Rename) commandNode() {}

// AlterObjectSchema represents SET SCHEMA. Classification resolves
// through the object kind. No deparse rendering is defined for it.
type AlterObjectSchema struct {
	Kind      ObjectKind    `json:"kind"`
	Object    QualifiedName `json:"object"`
	NewSchema string        `json:"new_schema"`
}

func (AlterObjectSchema) commandNode() {}

// AlterOwner represents OWNER TO for kinds whose owner changes are
// standalone statements. Classification resolves through the object
// kind. No deparse rendering is defined for it.
type AlterOwner struct {
	Kind     ObjectKind    `json:"kind"`
	Object   QualifiedName `json:"object"`
	NewOwner string        `json:"new_owner"`
}

func (AlterOwner) commandNode() {}

// Vacuum represents the VACUUM maintenance command. It is not an
// administrative (schema-changing) command and carries no trigger
// support: Classify reports ErrUnsupportedCommand for it.
type Vacuum struct {
	Tables  []QualifiedName `json:"tables,omitempty"`
	Full    bool            `json:"full,omitempty"`
	Analyze bool            `json:"analyze,omitempty"`
}

func (Vacuum) commandNode() {}
