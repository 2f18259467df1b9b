package ddl

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ObjectKind identifies what kind of database object a polymorphic
// command shape (drop, rename, set-schema, change-owner, generic alter)
// is addressing.
type ObjectKind int

const (
	KindTable ObjectKind = iota
	KindView
	KindIndex
	KindSequence
	KindSchema
	KindExtension
	KindType
	KindDomain
	KindFunction
	KindTrigger
)

var kindTags = map[ObjectKind]string{
	KindTable:     "table",
	KindView:      "view",
	KindIndex:     "index",
	KindSequence:  "sequence",
	KindSchema:    "schema",
	KindExtension: "extension",
	KindType:      "type",
	KindDomain:    "domain",
	KindFunction:  "function",
	KindTrigger:   "trigger",
}

// ObjectKinds returns all kinds in declaration order.
func ObjectKinds() []ObjectKind {
	return []ObjectKind{
		KindTable, KindView, KindIndex, KindSequence, KindSchema,
		KindExtension, KindType, KindDomain, KindFunction, KindTrigger,
	}
}

// String returns the lowercase tag for the kind.
func (k ObjectKind) String() string {
	if s, ok := kindTags[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is a member of the closed kind set.
func (k ObjectKind) Valid() bool {
	_, ok := kindTags[k]
	return ok
}

// Keyword returns the SQL keyword form of the kind ("TABLE", ...).
func (k ObjectKind) Keyword() string {
	return strings.ToUpper(k.String())
}

// RelationLike reports whether objects of this kind live in the relation
// namespace and are named schema-qualified, with an absent schema
// resolved against the search path.
func (k ObjectKind) RelationLike() bool {
	switch k {
	case KindTable, KindView, KindIndex, KindSequence:
		return true
	default:
		return false
	}
}

// TypeLike reports whether objects of this kind are named through the
// type-name renderer.
func (k ObjectKind) TypeLike() bool {
	return k == KindType || k == KindDomain
}

// ParseObjectKind resolves a kind tag case-insensitively.
func ParseObjectKind(s string) (ObjectKind, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for k, tag := range kindTags {
		if tag == needle {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unrecognized object kind %q", s)
}

// MarshalJSON encodes the kind as its string tag.
func (k ObjectKind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("marshal object kind: invalid value %d", int(k))
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind from its string tag (case-insensitive).
func (k *ObjectKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal object kind: %w", err)
	}
	parsed, err := ParseObjectKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
