package ddl

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AlterTableCmd represents one sub-action of a relation alter
// statement. The deparser joins rendered fragments with ", " in
// declaration order.
//
// This is a sealed interface - only types in this package implement it.
// Variants without a documented fragment (AddIndex, AddConstraint,
// SetRelOptions, ResetRelOptions, GenericOpts) contribute nothing to
// the rendered text; that is a documented limitation, not an error.
type AlterTableCmd interface {
	alterCmdNode() // Marker method - seals interface to this package
}

// AddColumn renders "ADD COLUMN <name> <type>". Column constraints on
// the added column are not preserved.
type AddColumn struct {
	Column ColumnDef `json:"column"`
}

func (AddColumn) alterCmdNode() {}

// AlterColumnType renders "ALTER COLUMN <name> TYPE <type>".
// USING clauses are not preserved.
type AlterColumnType struct {
	Column string   `json:"column"`
	Type   TypeName `json:"type"`
}

func (AlterColumnType) alterCmdNode() {}

// ColumnDefault renders "ALTER COLUMN <name> SET DEFAULT <expr>" when
// Expr is present and "ALTER COLUMN <name> DROP DEFAULT" when nil.
type ColumnDefault struct {
	Column string `json:"column"`
	Expr   Expr   `json:"-"`
}

func (ColumnDefault) alterCmdNode() {}

// SetNotNull renders "ALTER COLUMN <name> SET NOT NULL".
type SetNotNull struct {
	Column string `json:"column"`
}

func (SetNotNull) alterCmdNode() {}

// DropNotNull renders "ALTER COLUMN <name> DROP NOT NULL".
type DropNotNull struct {
	Column string `json:"column"`
}

func (DropNotNull) alterCmdNode() {}

// SetStorage renders "ALTER COLUMN <name> SET STORAGE <mode>".
// Mode is rendered uppercase (PLAIN, MAIN, EXTERNAL, EXTENDED).
type SetStorage struct {
	Column string `json:"column"`
	Mode   string `json:"mode"`
}

func (SetStorage) alterCmdNode() {}

// SetStatistics renders "ALTER COLUMN <name> SET STATISTICS <target>".
type SetStatistics struct {
	Column string `json:"column"`
	Target int64  `json:"target"`
}

func (SetStatistics) alterCmdNode() {}

// DropColumn renders "DROP COLUMN <name>".
type DropColumn struct {
	Column string `json:"column"`
}

func (DropColumn) alterCmdNode() {}

// AddIndex carries the index name for classification purposes only;
// it has no rendered fragment.
type AddIndex struct {
	Index string `json:"index"`
}

func (AddIndex) alterCmdNode() {}

// AddConstraint carries the constraint for classification purposes
// only; it has no rendered fragment.
type AddConstraint struct {
	Name       string     `json:"name,omitempty"`
	Constraint Constraint `json:"-"`
}

func (AddConstraint) alterCmdNode() {}

// ValidateConstraint renders "VALIDATE CONSTRAINT <name>".
type ValidateConstraint struct {
	Name string `json:"name"`
}

func (ValidateConstraint) alterCmdNode() {}

// DropConstraint renders "DROP CONSTRAINT <name>". IF EXISTS and
// CASCADE modifiers are not preserved.
type DropConstraint struct {
	Name string `json:"name"`
}

func (DropConstraint) alterCmdNode() {}

// ChangeOwner renders "OWNER TO <role>".
type ChangeOwner struct {
	NewOwner string `json:"new_owner"`
}

func (ChangeOwner) alterCmdNode() {}

// ClusterOn renders "CLUSTER ON <index>".
type ClusterOn struct {
	Index string `json:"index"`
}

func (ClusterOn) alterCmdNode() {}

// ToggleMode selects the enable variant for trigger and rule toggles.
type ToggleMode int

const (
	ToggleEnable ToggleMode = iota
	ToggleEnableAlways
	ToggleEnableReplica
	ToggleDisable
)

var toggleModeTags = map[ToggleMode]string{
	ToggleEnable:        "enable",
	ToggleEnableAlways:  "enable_always",
	ToggleEnableReplica: "enable_replica",
	ToggleDisable:       "disable",
}

// String returns the lowercase tag for the mode.
func (m ToggleMode) String() string {
	if s, ok := toggleModeTags[m]; ok {
		return s
	}
	return fmt.Sprintf("toggle(%d)", int(m))
}

// Valid reports whether m is a member of the closed mode set.
func (m ToggleMode) Valid() bool {
	_, ok := toggleModeTags[m]
	return ok
}

// ParseToggleMode resolves a mode tag case-insensitively.
func ParseToggleMode(s string) (ToggleMode, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for m, tag := range toggleModeTags {
		if tag == needle {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unrecognized toggle mode %q", s)
}

// MarshalJSON encodes the mode as its string tag.
func (m ToggleMode) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("marshal toggle mode: invalid value %d", int(m))
	}
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mode from its string tag (case-insensitive).
func (m *ToggleMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal toggle mode: %w", err)
	}
	parsed, err := ParseToggleMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Keyword returns the fragment between the alter verb and the
// TRIGGER/RULE noun, e.g. "ENABLE ALWAYS".
func (m ToggleMode) Keyword() string {
	switch m {
	case ToggleEnable:
		return "ENABLE"
	case ToggleEnableAlways:
		return "ENABLE ALWAYS"
	case ToggleEnableReplica:
		return "ENABLE REPLICA"
	case ToggleDisable:
		return "DISABLE"
	default:
		return ""
	}
}

// TriggerToggle renders "<mode> TRIGGER <name>", e.g.
// "ENABLE REPLICA TRIGGER audit".
type TriggerToggle struct {
	Mode ToggleMode `json:"mode"`
	Name string     `json:"name"`
}

func (TriggerToggle) alterCmdNode() {}

// RuleToggle renders "<mode> RULE <name>".
type RuleToggle struct {
	Mode ToggleMode `json:"mode"`
	Name string     `json:"name"`
}

func (RuleToggle) alterCmdNode() {}

// AddInherit renders "INHERIT <parent>".
type AddInherit struct {
	Parent QualifiedName `json:"parent"`
}

func (AddInherit) alterCmdNode() {}

// DropInherit renders "NO INHERIT <parent>".
type DropInherit struct {
	Parent QualifiedName `json:"parent"`
}

func (DropInherit) alterCmdNode() {}

// AddOf renders "OF <type>".
type AddOf struct {
	Type TypeName `json:"type"`
}

func (AddOf) alterCmdNode() {}

// DropOf renders "NOT OF".
type DropOf struct{}

func (DropOf) alterCmdNode() {}

// SetRelOptions carries storage parameters for classification purposes
// only; it has no rendered fragment.
type SetRelOptions struct {
	Options map[string]string `json:"options,omitempty"`
}

func (SetRelOptions) alterCmdNode() {}

// ResetRelOptions carries storage parameter names for classification
// purposes only; it has no rendered fragment.
type ResetRelOptions struct {
	Options []string `json:"options,omitempty"`
}

func (ResetRelOptions) alterCmdNode() {}

// GenericOpts carries foreign-table options for classification
// purposes only; it has no rendered fragment.
type GenericOpts struct {
	Options map[string]string `json:"options,omitempty"`
}

func (GenericOpts) alterCmdNode() {}
