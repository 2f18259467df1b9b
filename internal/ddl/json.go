package ddl

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Command nodes cross process boundaries (CLI input, scenario files) as
// one-key JSON envelopes: the single key names the shape, the value
// holds its fields.
//
//	{"drop": {"kind": "table", "objects": [{"name": "t1"}], "missing_ok": true}}
//
// Nested unions (constraints, alter sub-actions, expressions, queries)
// use the same convention. Decoding is strict: unknown fields,
// unrecognized shapes and multi-key envelopes are errors, and numeric
// literals must be integers.

// EncodeNode renders a command node as its one-key JSON envelope.
func EncodeNode(node Node) ([]byte, error) {
	wire, err := nodeToWire(node)
	if err != nil {
		return nil, err
	}
	return marshalWire(wire)
}

// DecodeNode parses a one-key JSON envelope into a command node.
func DecodeNode(data []byte) (Node, error) {
	shape, body, err := splitEnvelope(data, "command node")
	if err != nil {
		return nil, err
	}
	switch shape {
	case "create_table":
		var w createTableJSON
		if err := strictUnmarshal(body, &w, shape); err != nil {
			return nil, err
		}
		return w.node()
	case "create_view":
		var w createViewJSON
		if err := strictUnmarshal(body, &w, shape); err != nil {
			return nil, err
		}
		return w.node()
	case "create_index":
		var n CreateIndex
		if err := strictUnmarshal(body, &n, shape); err != nil {
			return nil, err
		}
		return n, nil
	case "create_sequence":
		var n CreateSequence
		if err := strictUnmarshal(body, &n, shape); err != nil {
			return nil, err
		}
		return n, nil
	case "create_schema":
		var n CreateSchema
		if err := strictUnmarshal(body, &n, shape); err != nil {
			return nil, err
		}
		return n, nil
	case "create_extension":
		var n CreateExtension
		if err := strictUnmarshal(body, &n, shape); err != nil {
			return nil, err
		}
		return n, nil
	case "alter_extension":
		var n AlterExtension
		if err := strictUnmarshal(body, &n, shape); err != nil {
			return nil, err
		}
		return n, nil
	case "drop":
		var n Drop
		if err := strictUnmarshal(body, &n, shape); err != nil {
			return nil, err
		}
		return n, nil
	case "alter_table":
		var w alterTableJSON
		if err := strictUnmarshal(body, &w, shape); err != nil {
			return nil, err
		}
		return w.node()
	case "rename":
		var n Rename
		if err := strictUnmarshal(body, &n, shape); err != nil {
			return nil, err
		}
		return n, nil
	case "alter_object_schema":
		var n AlterObjectSchema
		if err := strictUnmarshal(body, &n, shape); err != nil {
			return nil, err
		}
		return n, nil
	case "alter_owner":
		var n AlterOwner
		if err := strictUnmarshal(body, &n, shape); err != nil {
			return nil, err
		}
		return n, nil
	case "vacuum":
		var n Vacuum
		if err := strictUnmarshal(body, &n, shape); err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unrecognized command shape %q", shape)
	}
}

// splitEnvelope peels the single shape key off a union envelope.
func splitEnvelope(data []byte, what string) (string, json.RawMessage, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("decode %s envelope: %w", what, err)
	}
	if len(env) != 1 {
		return "", nil, fmt.Errorf("decode %s envelope: want exactly one shape key, got %d", what, len(env))
	}
	for shape, body := range env {
		return shape, body, nil
	}
	return "", nil, nil
}

// strictUnmarshal decodes body into the given value, rejecting unknown
// fields. Numbers decode as json.Number so integer literals survive
// intact.
func strictUnmarshal(body json.RawMessage, into any, what string) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("decode %s: %w", what, err)
	}
	return nil
}

// marshalWire encodes with HTML escaping off so <, > and & survive in
// rendered text fields.
func marshalWire(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Wire forms for the shapes whose fields include nested unions. Shapes
// made of plain values marshal directly off their struct tags.

type createTableJSON struct {
	Name        QualifiedName     `json:"table"`
	IfNotExists bool              `json:"if_not_exists,omitempty"`
	Columns     []columnDefJSON   `json:"columns"`
	Constraints []json.RawMessage `json:"constraints,omitempty"`
}

func (w createTableJSON) node() (Node, error) {
	n := CreateTable{Name: w.Name, IfNotExists: w.IfNotExists}
	for i, col := range w.Columns {
		cd, err := col.columnDef()
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		n.Columns = append(n.Columns, cd)
	}
	for i, raw := range w.Constraints {
		c, err := decodeConstraint(raw)
		if err != nil {
			return nil, fmt.Errorf("table constraint %d: %w", i, err)
		}
		n.Constraints = append(n.Constraints, c)
	}
	return n, nil
}

type columnDefJSON struct {
	Name        string            `json:"name"`
	Type        TypeName          `json:"type"`
	Constraints []json.RawMessage `json:"constraints,omitempty"`
}

func (w columnDefJSON) columnDef() (ColumnDef, error) {
	cd := ColumnDef{Name: w.Name, Type: w.Type}
	for i, raw := range w.Constraints {
		c, err := decodeConstraint(raw)
		if err != nil {
			return ColumnDef{}, fmt.Errorf("constraint %d: %w", i, err)
		}
		cd.Constraints = append(cd.Constraints, c)
	}
	return cd, nil
}

type createViewJSON struct {
	Name      QualifiedName   `json:"view"`
	OrReplace bool            `json:"or_replace,omitempty"`
	Query     json.RawMessage `json:"query"`
}

func (w createViewJSON) node() (Node, error) {
	if len(w.Query) == 0 {
		return nil, fmt.Errorf("create_view requires a query")
	}
	q, err := decodeQuery(w.Query)
	if err != nil {
		return nil, err
	}
	return CreateView{Name: w.Name, OrReplace: w.OrReplace, Query: q}, nil
}

type alterTableJSON struct {
	Kind ObjectKind        `json:"kind"`
	Name QualifiedName     `json:"target"`
	Cmds []json.RawMessage `json:"cmds"`
}

func (w alterTableJSON) node() (Node, error) {
	n := AlterTable{Kind: w.Kind, Name: w.Name}
	for i, raw := range w.Cmds {
		cmd, err := decodeAlterCmd(raw)
		if err != nil {
			return nil, fmt.Errorf("alter action %d: %w", i, err)
		}
		n.Cmds = append(n.Cmds, cmd)
	}
	return n, nil
}

type defaultJSON struct {
	Expr json.RawMessage `json:"expr"`
}

type checkJSON struct {
	Name string          `json:"name,omitempty"`
	Expr json.RawMessage `json:"expr"`
}

type columnDefaultJSON struct {
	Column string          `json:"column"`
	Expr   json.RawMessage `json:"expr,omitempty"`
}

type addColumnJSON struct {
	Column columnDefJSON `json:"column"`
}

type addConstraintJSON struct {
	Name       string          `json:"name,omitempty"`
	Constraint json.RawMessage `json:"constraint"`
}

type literalJSON struct {
	Value any `json:"value"`
}

type callJSON struct {
	Name string            `json:"name"`
	Args []json.RawMessage `json:"args,omitempty"`
}

type opJSON struct {
	Op    string          `json:"op"`
	Left  json.RawMessage `json:"left"`
	Right json.RawMessage `json:"right"`
}

type selectJSON struct {
	Columns []json.RawMessage `json:"columns,omitempty"`
	From    QualifiedName     `json:"from"`
	Where   json.RawMessage   `json:"where,omitempty"`
}

func decodeConstraint(raw json.RawMessage) (Constraint, error) {
	shape, body, err := splitEnvelope(raw, "constraint")
	if err != nil {
		return nil, err
	}
	switch shape {
	case "not_null":
		return NotNull{}, expectEmptyBody(body, shape)
	case "null":
		return Null{}, expectEmptyBody(body, shape)
	case "default":
		var w defaultJSON
		if err := strictUnmarshal(body, &w, shape); err != nil {
			return nil, err
		}
		if len(w.Expr) == 0 {
			return nil, fmt.Errorf("default constraint requires an expr")
		}
		expr, err := decodeExpr(w.Expr)
		if err != nil {
			return nil, err
		}
		return Default{Expr: expr}, nil
	case "check":
		var w checkJSON
		if err := strictUnmarshal(body, &w, shape); err != nil {
			return nil, err
		}
		if len(w.Expr) == 0 {
			return nil, fmt.Errorf("check constraint requires an expr")
		}
		expr, err := decodeExpr(w.Expr)
		if err != nil {
			return nil, err
		}
		return Check{Name: w.Name, Expr: expr}, nil
	case "unique":
		var c Unique
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "primary_key":
		var c PrimaryKey
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "exclusion":
		var c Exclusion
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "foreign_key":
		var c ForeignKey
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "deferrable":
		return Deferrable{}, expectEmptyBody(body, shape)
	case "initially_deferred":
		return InitiallyDeferred{}, expectEmptyBody(body, shape)
	default:
		return nil, fmt.Errorf("unrecognized constraint shape %q", shape)
	}
}

func decodeAlterCmd(raw json.RawMessage) (AlterTableCmd, error) {
	shape, body, err := splitEnvelope(raw, "alter action")
	if err != nil {
		return nil, err
	}
	switch shape {
	case "add_column":
		var w addColumnJSON
		if err := strictUnmarshal(body, &w, shape); err != nil {
			return nil, err
		}
		cd, err := w.Column.columnDef()
		if err != nil {
			return nil, err
		}
		return AddColumn{Column: cd}, nil
	case "alter_column_type":
		var c AlterColumnType
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "column_default":
		var w columnDefaultJSON
		if err := strictUnmarshal(body, &w, shape); err != nil {
			return nil, err
		}
		c := ColumnDefault{Column: w.Column}
		if len(w.Expr) > 0 {
			expr, err := decodeExpr(w.Expr)
			if err != nil {
				return nil, err
			}
			c.Expr = expr
		}
		return c, nil
	case "set_not_null":
		var c SetNotNull
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "drop_not_null":
		var c DropNotNull
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "set_storage":
		var c SetStorage
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "set_statistics":
		var c SetStatistics
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "drop_column":
		var c DropColumn
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "add_index":
		var c AddIndex
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "add_constraint":
		var w addConstraintJSON
		if err := strictUnmarshal(body, &w, shape); err != nil {
			return nil, err
		}
		if len(w.Constraint) == 0 {
			return nil, fmt.Errorf("add_constraint requires a constraint")
		}
		con, err := decodeConstraint(w.Constraint)
		if err != nil {
			return nil, err
		}
		return AddConstraint{Name: w.Name, Constraint: con}, nil
	case "validate_constraint":
		var c ValidateConstraint
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "drop_constraint":
		var c DropConstraint
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "change_owner":
		var c ChangeOwner
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "cluster_on":
		var c ClusterOn
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "trigger_toggle":
		var c TriggerToggle
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "rule_toggle":
		var c RuleToggle
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "add_inherit":
		var c AddInherit
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "drop_inherit":
		var c DropInherit
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "add_of":
		var c AddOf
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "drop_of":
		return DropOf{}, expectEmptyBody(body, shape)
	case "set_rel_options":
		var c SetRelOptions
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "reset_rel_options":
		var c ResetRelOptions
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	case "generic_opts":
		var c GenericOpts
		if err := strictUnmarshal(body, &c, shape); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unrecognized alter action shape %q", shape)
	}
}

func decodeExpr(raw json.RawMessage) (Expr, error) {
	shape, body, err := splitEnvelope(raw, "expression")
	if err != nil {
		return nil, err
	}
	switch shape {
	case "literal":
		var w literalJSON
		if err := strictUnmarshal(body, &w, shape); err != nil {
			return nil, err
		}
		value, err := normalizeLiteral(w.Value)
		if err != nil {
			return nil, err
		}
		return Literal{Value: value}, nil
	case "column":
		var e ColumnRef
		if err := strictUnmarshal(body, &e, shape); err != nil {
			return nil, err
		}
		return e, nil
	case "call":
		var w callJSON
		if err := strictUnmarshal(body, &w, shape); err != nil {
			return nil, err
		}
		e := FuncCall{Name: w.Name}
		for i, arg := range w.Args {
			sub, err := decodeExpr(arg)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			e.Args = append(e.Args, sub)
		}
		return e, nil
	case "op":
		var w opJSON
		if err := strictUnmarshal(body, &w, shape); err != nil {
			return nil, err
		}
		if len(w.Left) == 0 || len(w.Right) == 0 {
			return nil, fmt.Errorf("op expression requires left and right operands")
		}
		left, err := decodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(w.Right)
		if err != nil {
			return nil, err
		}
		return BinaryOp{Op: w.Op, Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("unrecognized expression shape %q", shape)
	}
}

func decodeQuery(raw json.RawMessage) (Query, error) {
	shape, body, err := splitEnvelope(raw, "query")
	if err != nil {
		return nil, err
	}
	switch shape {
	case "select":
		var w selectJSON
		if err := strictUnmarshal(body, &w, shape); err != nil {
			return nil, err
		}
		q := SelectQuery{From: w.From}
		for i, col := range w.Columns {
			sub, err := decodeExpr(col)
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", i, err)
			}
			q.Columns = append(q.Columns, sub)
		}
		if len(w.Where) > 0 {
			where, err := decodeExpr(w.Where)
			if err != nil {
				return nil, err
			}
			q.Where = where
		}
		return q, nil
	case "raw":
		var q RawQuery
		if err := strictUnmarshal(body, &q, shape); err != nil {
			return nil, err
		}
		return q, nil
	default:
		return nil, fmt.Errorf("unrecognized query shape %q", shape)
	}
}

// normalizeLiteral coerces a decoded literal value into the closed
// literal domain: string, int64, bool or nil. Floats are rejected.
func normalizeLiteral(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool:
		return x, nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return nil, fmt.Errorf("literal %q: only integer numbers are supported", x.String())
		}
		return n, nil
	default:
		return nil, fmt.Errorf("literal of type %T is not supported", v)
	}
}

// expectEmptyBody rejects stray fields on bodyless variants.
func expectEmptyBody(body json.RawMessage, shape string) error {
	var w struct{}
	return strictUnmarshal(body, &w, shape)
}

func nodeToWire(node Node) (map[string]any, error) {
	switch n := node.(type) {
	case CreateTable:
		body := map[string]any{"table": n.Name}
		if n.IfNotExists {
			body["if_not_exists"] = true
		}
		cols := make([]any, 0, len(n.Columns))
		for i, col := range n.Columns {
			w, err := columnDefToWire(col)
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", i, err)
			}
			cols = append(cols, w)
		}
		body["columns"] = cols
		if len(n.Constraints) > 0 {
			cons, err := constraintsToWire(n.Constraints)
			if err != nil {
				return nil, err
			}
			body["constraints"] = cons
		}
		return map[string]any{"create_table": body}, nil
	case CreateView:
		if n.Query == nil {
			return nil, fmt.Errorf("create_view requires a query")
		}
		q, err := queryToWire(n.Query)
		if err != nil {
			return nil, err
		}
		body := map[string]any{"view": n.Name, "query": q}
		if n.OrReplace {
			body["or_replace"] = true
		}
		return map[string]any{"create_view": body}, nil
	case CreateIndex:
		return map[string]any{"create_index": n}, nil
	case CreateSequence:
		return map[string]any{"create_sequence": n}, nil
	case CreateSchema:
		return map[string]any{"create_schema": n}, nil
	case CreateExtension:
		return map[string]any{"create_extension": n}, nil
	case AlterExtension:
		return map[string]any{"alter_extension": n}, nil
	case Drop:
		return map[string]any{"drop": n}, nil
	case AlterTable:
		cmds := make([]any, 0, len(n.Cmds))
		for i, cmd := range n.Cmds {
			w, err := alterCmdToWire(cmd)
			if err != nil {
				return nil, fmt.Errorf("alter action %d: %w", i, err)
			}
			cmds = append(cmds, w)
		}
		body := map[string]any{"kind": n.Kind, "target": n.Name, "cmds": cmds}
		return map[string]any{"alter_table": body}, nil
	case Rename:
		return map[string]any{"rename": n}, nil
	case AlterObjectSchema:
		return map[string]any{"alter_object_schema": n}, nil
	case AlterOwner:
		return map[string]any{"alter_owner": n}, nil
	case Vacuum:
		return map[string]any{"vacuum": n}, nil
	default:
		return nil, fmt.Errorf("encode command node: unhandled shape %T", node)
	}
}

func columnDefToWire(cd ColumnDef) (map[string]any, error) {
	body := map[string]any{"name": cd.Name, "type": cd.Type}
	if len(cd.Constraints) > 0 {
		cons, err := constraintsToWire(cd.Constraints)
		if err != nil {
			return nil, err
		}
		body["constraints"] = cons
	}
	return body, nil
}

func constraintsToWire(cons []Constraint) ([]any, error) {
	out := make([]any, 0, len(cons))
	for i, c := range cons {
		w, err := constraintToWire(c)
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i, err)
		}
		out = append(out, w)
	}
	return out, nil
}

func constraintToWire(c Constraint) (map[string]any, error) {
	switch x := c.(type) {
	case NotNull:
		return map[string]any{"not_null": struct{}{}}, nil
	case Null:
		return map[string]any{"null": struct{}{}}, nil
	case Default:
		if x.Expr == nil {
			return nil, fmt.Errorf("default constraint requires an expr")
		}
		expr, err := exprToWire(x.Expr)
		if err != nil {
			return nil, err
		}
		return map[string]any{"default": map[string]any{"expr": expr}}, nil
	case Check:
		if x.Expr == nil {
			return nil, fmt.Errorf("check constraint requires an expr")
		}
		expr, err := exprToWire(x.Expr)
		if err != nil {
			return nil, err
		}
		body := map[string]any{"expr": expr}
		if x.Name != "" {
			body["name"] = x.Name
		}
		return map[string]any{"check": body}, nil
	case Unique:
		return map[string]any{"unique": x}, nil
	case PrimaryKey:
		return map[string]any{"primary_key": x}, nil
	case Exclusion:
		return map[string]any{"exclusion": x}, nil
	case ForeignKey:
		return map[string]any{"foreign_key": x}, nil
	case Deferrable:
		return map[string]any{"deferrable": struct{}{}}, nil
	case InitiallyDeferred:
		return map[string]any{"initially_deferred": struct{}{}}, nil
	default:
		return nil, fmt.Errorf("encode constraint: unhandled shape %T", c)
	}
}

func alterCmdToWire(cmd AlterTableCmd) (map[string]any, error) {
	switch x := cmd.(type) {
	case AddColumn:
		col, err := columnDefToWire(x.Column)
		if err != nil {
			return nil, err
		}
		return map[string]any{"add_column": map[string]any{"column": col}}, nil
	case AlterColumnType:
		return map[string]any{"alter_column_type": x}, nil
	case ColumnDefault:
		body := map[string]any{"column": x.Column}
		if x.Expr != nil {
			expr, err := exprToWire(x.Expr)
			if err != nil {
				return nil, err
			}
			body["expr"] = expr
		}
		return map[string]any{"column_default": body}, nil
	case SetNotNull:
		return map[string]any{"set_not_null": x}, nil
	case DropNotNull:
		return map[string]any{"drop_not_null": x}, nil
	case SetStorage:
		return map[string]any{"set_storage": x}, nil
	case SetStatistics:
		return map[string]any{"set_statistics": x}, nil
	case DropColumn:
		return map[string]any{"drop_column": x}, nil
	case AddIndex:
		return map[string]any{"add_index": x}, nil
	case AddConstraint:
		if x.Constraint == nil {
			return nil, fmt.Errorf("add_constraint requires a constraint")
		}
		con, err := constraintToWire(x.Constraint)
		if err != nil {
			return nil, err
		}
		body := map[string]any{"constraint": con}
		if x.Name != "" {
			body["name"] = x.Name
		}
		return map[string]any{"add_constraint": body}, nil
	case ValidateConstraint:
		return map[string]any{"validate_constraint": x}, nil
	case DropConstraint:
		return map[string]any{"drop_constraint": x}, nil
	case ChangeOwner:
		return map[string]any{"change_owner": x}, nil
	case ClusterOn:
		return map[string]any{"cluster_on": x}, nil
	case TriggerToggle:
		return map[string]any{"trigger_toggle": x}, nil
	case RuleToggle:
		return map[string]any{"rule_toggle": x}, nil
	case AddInherit:
		return map[string]any{"add_inherit": x}, nil
	case DropInherit:
		return map[string]any{"drop_inherit": x}, nil
	case AddOf:
		return map[string]any{"add_of": x}, nil
	case DropOf:
		return map[string]any{"drop_of": struct{}{}}, nil
	case SetRelOptions:
		return map[string]any{"set_rel_options": x}, nil
	case ResetRelOptions:
		return map[string]any{"reset_rel_options": x}, nil
	case GenericOpts:
		return map[string]any{"generic_opts": x}, nil
	default:
		return nil, fmt.Errorf("encode alter action: unhandled shape %T", cmd)
	}
}

func exprToWire(e Expr) (map[string]any, error) {
	switch x := e.(type) {
	case Literal:
		value, err := wireLiteral(x.Value)
		if err != nil {
			return nil, err
		}
		return map[string]any{"literal": map[string]any{"value": value}}, nil
	case ColumnRef:
		return map[string]any{"column": x}, nil
	case FuncCall:
		body := map[string]any{"name": x.Name}
		if len(x.Args) > 0 {
			args := make([]any, 0, len(x.Args))
			for i, arg := range x.Args {
				w, err := exprToWire(arg)
				if err != nil {
					return nil, fmt.Errorf("argument %d: %w", i, err)
				}
				args = append(args, w)
			}
			body["args"] = args
		}
		return map[string]any{"call": body}, nil
	case BinaryOp:
		if x.Left == nil || x.Right == nil {
			return nil, fmt.Errorf("op expression requires left and right operands")
		}
		left, err := exprToWire(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := exprToWire(x.Right)
		if err != nil {
			return nil, err
		}
		return map[string]any{"op": map[string]any{"op": x.Op, "left": left, "right": right}}, nil
	default:
		return nil, fmt.Errorf("encode expression: unhandled shape %T", e)
	}
}

// wireLiteral checks a literal value against the closed literal domain
// before encoding. Plain ints normalize to int64.
func wireLiteral(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, int64:
		return x, nil
	case int:
		return int64(x), nil
	default:
		return nil, fmt.Errorf("literal of type %T is not supported", v)
	}
}

func queryToWire(q Query) (map[string]any, error) {
	switch x := q.(type) {
	case SelectQuery:
		body := map[string]any{"from": x.From}
		if len(x.Columns) > 0 {
			cols := make([]any, 0, len(x.Columns))
			for i, col := range x.Columns {
				w, err := exprToWire(col)
				if err != nil {
					return nil, fmt.Errorf("column %d: %w", i, err)
				}
				cols = append(cols, w)
			}
			body["columns"] = cols
		}
		if x.Where != nil {
			where, err := exprToWire(x.Where)
			if err != nil {
				return nil, err
			}
			body["where"] = where
		}
		return map[string]any{"select": body}, nil
	case RawQuery:
		return map[string]any{"raw": x}, nil
	default:
		return nil, fmt.Errorf("encode query: unhandled shape %T", q)
	}
}
