package ddl

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heeddb/heed/internal/trigger"
)

// Tag is a command-kind: the closed classification of one administrative
// command. Tags are persisted inside registration filters, so the set is
// stable and every tag has exactly one canonical string form.
//
// Canonical tag strings double as the statement's leading keywords
// ("DROP TABLE" the tag is also "DROP TABLE" the SQL), which the
// deparser exploits when assembling statement text.
type Tag int

const (
	TagCreateTable Tag = iota
	TagCreateView
	TagCreateIndex
	TagCreateSequence
	TagCreateSchema
	TagCreateExtension
	TagAlterTable
	TagAlterView
	TagAlterIndex
	TagAlterSequence
	TagAlterSchema
	TagAlterExtension
	TagAlterType
	TagAlterDomain
	TagAlterFunction
	TagAlterTrigger
	TagDropTable
	TagDropView
	TagDropIndex
	TagDropSequence
	TagDropSchema
	TagDropExtension
	TagDropType
	TagDropDomain
	TagDropFunction
	TagDropTrigger
)

// tagStrings is the bijective tag -> canonical string table.
var tagStrings = map[Tag]string{
	TagCreateTable:     "CREATE TABLE",
	TagCreateView:      "CREATE VIEW",
	TagCreateIndex:     "CREATE INDEX",
	TagCreateSequence:  "CREATE SEQUENCE",
	TagCreateSchema:    "CREATE SCHEMA",
	TagCreateExtension: "CREATE EXTENSION",
	TagAlterTable:      "ALTER TABLE",
	TagAlterView:       "ALTER VIEW",
	TagAlterIndex:      "ALTER INDEX",
	TagAlterSequence:   "ALTER SEQUENCE",
	TagAlterSchema:     "ALTER SCHEMA",
	TagAlterExtension:  "ALTER EXTENSION",
	TagAlterType:       "ALTER TYPE",
	TagAlterDomain:     "ALTER DOMAIN",
	TagAlterFunction:   "ALTER FUNCTION",
	TagAlterTrigger:    "ALTER TRIGGER",
	TagDropTable:       "DROP TABLE",
	TagDropView:        "DROP VIEW",
	TagDropIndex:       "DROP INDEX",
	TagDropSequence:    "DROP SEQUENCE",
	TagDropSchema:      "DROP SCHEMA",
	TagDropExtension:   "DROP EXTENSION",
	TagDropType:        "DROP TYPE",
	TagDropDomain:      "DROP DOMAIN",
	TagDropFunction:    "DROP FUNCTION",
	TagDropTrigger:     "DROP TRIGGER",
}

// tagValues is the inverse table, keyed by lowercase string.
// Built at init; ParseTag reads it.
var tagValues = func() map[string]Tag {
	m := make(map[string]Tag, len(tagStrings))
	for tag, s := range tagStrings {
		m[strings.ToLower(s)] = tag
	}
	if len(m) != len(tagStrings) {
		panic("ddl: tag strings are not bijective")
	}
	return m
}()

// Tags returns all command tags in declaration order.
func Tags() []Tag {
	out := make([]Tag, 0, len(tagStrings))
	for t := TagCreateTable; t <= TagDropTrigger; t++ {
		out = append(out, t)
	}
	return out
}

// String returns the canonical tag string ("CREATE TABLE", ...).
func (t Tag) String() string {
	if s, ok := tagStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("tag(%d)", int(t))
}

// Valid reports whether t is a member of the closed tag set.
func (t Tag) Valid() bool {
	_, ok := tagStrings[t]
	return ok
}

// ParseTag resolves a tag string case-insensitively against the
// canonical table. Interior whitespace is collapsed so "drop  table"
// still resolves. Unknown strings produce a ConfigError with code
// ErrCodeTagUnknown.
func ParseTag(s string) (Tag, error) {
	needle := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if tag, ok := tagValues[needle]; ok {
		return tag, nil
	}
	return 0, &trigger.ConfigError{
		Code:    trigger.ErrCodeTagUnknown,
		Message: fmt.Sprintf("unrecognized command tag %q", s),
		Value:   s,
	}
}

// NormalizeTags parses each string and returns the canonical forms,
// preserving order. The first unknown tag aborts.
func NormalizeTags(tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	out := make([]string, len(tags))
	for i, s := range tags {
		tag, err := ParseTag(s)
		if err != nil {
			return nil, err
		}
		out[i] = tag.String()
	}
	return out, nil
}

// MarshalJSON encodes the tag as its canonical string.
func (t Tag) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("marshal tag: invalid value %d", int(t))
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a tag from its string form (case-insensitive).
func (t *Tag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal tag: %w", err)
	}
	parsed, err := ParseTag(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
