package ddl

import "errors"

// ErrUnsupportedCommand reports that a command shape (or a shape/kind
// combination) carries no administrative-trigger support. Callers treat
// it as "fire nothing", not as a failure: the command proceeds, no
// callbacks run.
var ErrUnsupportedCommand = errors.New("command does not support administrative triggers")

// dropTags maps every droppable object kind to its drop tag.
var dropTags = map[ObjectKind]Tag{
	KindTable:     TagDropTable,
	KindView:      TagDropView,
	KindIndex:     TagDropIndex,
	KindSequence:  TagDropSequence,
	KindSchema:    TagDropSchema,
	KindExtension: TagDropExtension,
	KindType:      TagDropType,
	KindDomain:    TagDropDomain,
	KindFunction:  TagDropFunction,
	KindTrigger:   TagDropTrigger,
}

// alterRelationTags maps the kinds the generic relation alter statement
// accepts. Other kinds have dedicated statements and never reach it.
var alterRelationTags = map[ObjectKind]Tag{
	KindTable:    TagAlterTable,
	KindView:     TagAlterView,
	KindIndex:    TagAlterIndex,
	KindSequence: TagAlterSequence,
}

// renameTags maps renameable kinds to the alter tag a rename classifies
// under. Extensions cannot be renamed.
var renameTags = map[ObjectKind]Tag{
	KindTable:    TagAlterTable,
	KindView:     TagAlterView,
	KindIndex:    TagAlterIndex,
	KindSequence: TagAlterSequence,
	KindSchema:   TagAlterSchema,
	KindType:     TagAlterType,
	KindDomain:   TagAlterDomain,
	KindFunction: TagAlterFunction,
	KindTrigger:  TagAlterTrigger,
}

// schemaChangeTags maps the kinds that support SET SCHEMA. Schemas,
// indexes and triggers have no schema of their own to move.
var schemaChangeTags = map[ObjectKind]Tag{
	KindTable:    TagAlterTable,
	KindView:     TagAlterView,
	KindSequence: TagAlterSequence,
	KindType:     TagAlterType,
	KindDomain:   TagAlterDomain,
	KindFunction: TagAlterFunction,
}

// ownerTags maps the kinds whose owner changes arrive as standalone
// statements. Relation owner changes arrive as an AlterTable
// ChangeOwner sub-action instead.
var ownerTags = map[ObjectKind]Tag{
	KindSchema:   TagAlterSchema,
	KindType:     TagAlterType,
	KindDomain:   TagAlterDomain,
	KindFunction: TagAlterFunction,
}

// Classify maps a command node to its command tag. It is total over the
// closed shape set: every node gets either a tag or
// ErrUnsupportedCommand, never a panic. Polymorphic shapes resolve
// through their ObjectKind against a static table; a kind missing from
// the shape's table means the combination has no trigger support.
func Classify(node Node) (Tag, error) {
	switch n := node.(type) {
	case CreateTable:
		return TagCreateTable, nil
	case CreateView:
		return TagCreateView, nil
	case CreateIndex:
		return TagCreateIndex, nil
	case CreateSequence:
		return TagCreateSequence, nil
	case CreateSchema:
		return TagCreateSchema, nil
	case CreateExtension:
		return TagCreateExtension, nil
	case AlterExtension:
		return TagAlterExtension, nil
	case Drop:
		return kindTag(dropTags, n.Kind)
	case AlterTable:
		return kindTag(alterRelationTags, n.Kind)
	case Rename:
		return kindTag(renameTags, n.Kind)
	case AlterObjectSchema:
		return kindTag(schemaChangeTags, n.Kind)
	case AlterOwner:
		return kindTag(ownerTags, n.Kind)
	case Vacuum:
		return 0, ErrUnsupportedCommand
	default:
		// Nil or a shape smuggled in from outside the package.
		return 0, ErrUnsupportedCommand
	}
}

func kindTag(table map[ObjectKind]Tag, kind ObjectKind) (Tag, error) {
	tag, ok := table[kind]
	if !ok {
		return 0, ErrUnsupportedCommand
	}
	return tag, nil
}

// AllClassifiable returns one well-formed representative node per
// classifiable shape/kind combination, in classification order. Tests
// walk it to hold the classifier and the deparser in lockstep: every
// node here must classify without error and must be accepted by the
// deparser (possibly with the not-available marker).
func AllClassifiable() []Node {
	nodes := []Node{
		CreateTable{
			Name:    QualifiedName{Name: "t1"},
			Columns: []ColumnDef{{Name: "id", Type: TypeName{Name: "bigint"}}},
		},
		CreateView{
			Name:  QualifiedName{Name: "v1"},
			Query: RawQuery{Text: "SELECT 1"},
		},
		CreateIndex{Name: "i1", Table: QualifiedName{Name: "t1"}},
		CreateSequence{Name: QualifiedName{Name: "s1"}},
		CreateSchema{Name: "app"},
		CreateExtension{Name: "citext"},
		AlterExtension{Name: "citext", Version: "1.6"},
	}
	for _, k := range ObjectKinds() {
		if _, ok := dropTags[k]; ok {
			nodes = append(nodes, Drop{Kind: k, Objects: []QualifiedName{{Name: "x1"}}})
		}
	}
	for _, k := range ObjectKinds() {
		if _, ok := alterRelationTags[k]; ok {
			nodes = append(nodes, AlterTable{
				Kind: k,
				Name: QualifiedName{Name: "x1"},
				Cmds: []AlterTableCmd{ChangeOwner{NewOwner: "app_owner"}},
			})
		}
	}
	for _, k := range ObjectKinds() {
		if _, ok := renameTags[k]; ok {
			nodes = append(nodes, Rename{Kind: k, Object: QualifiedName{Name: "x1"}, NewName: "x2"})
		}
	}
	for _, k := range ObjectKinds() {
		if _, ok := schemaChangeTags[k]; ok {
			nodes = append(nodes, AlterObjectSchema{Kind: k, Object: QualifiedName{Name: "x1"}, NewSchema: "app"})
		}
	}
	for _, k := range ObjectKinds() {
		if _, ok := ownerTags[k]; ok {
			nodes = append(nodes, AlterOwner{Kind: k, Object: QualifiedName{Name: "x1"}, NewOwner: "app_owner"})
		}
	}
	return nodes
}
