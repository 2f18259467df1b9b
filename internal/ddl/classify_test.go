package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDirectShapes(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want Tag
	}{
		{"create table", CreateTable{Name: QualifiedName{Name: "t1"}}, TagCreateTable},
		{"create view", CreateView{Name: QualifiedName{Name: "v1"}}, TagCreateView},
		{"create index", CreateIndex{Name: "i1"}, TagCreateIndex},
		{"create sequence", CreateSequence{Name: QualifiedName{Name: "s1"}}, TagCreateSequence},
		{"create schema", CreateSchema{Name: "app"}, TagCreateSchema},
		{"create extension", CreateExtension{Name: "citext"}, TagCreateExtension},
		{"alter extension", AlterExtension{Name: "citext"}, TagAlterExtension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyKindResolution(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want Tag
	}{
		{"drop table", Drop{Kind: KindTable}, TagDropTable},
		{"drop trigger", Drop{Kind: KindTrigger}, TagDropTrigger},
		{"alter table", AlterTable{Kind: KindTable}, TagAlterTable},
		{"alter index", AlterTable{Kind: KindIndex}, TagAlterIndex},
		{"rename table", Rename{Kind: KindTable}, TagAlterTable},
		{"rename schema", Rename{Kind: KindSchema}, TagAlterSchema},
		{"rename trigger", Rename{Kind: KindTrigger}, TagAlterTrigger},
		{"set schema on view", AlterObjectSchema{Kind: KindView}, TagAlterView},
		{"set schema on domain", AlterObjectSchema{Kind: KindDomain}, TagAlterDomain},
		{"owner of schema", AlterOwner{Kind: KindSchema}, TagAlterSchema},
		{"owner of function", AlterOwner{Kind: KindFunction}, TagAlterFunction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyUnsupported(t *testing.T) {
	tests := []struct {
		name string
		node Node
	}{
		{"vacuum", Vacuum{Full: true}},
		{"nil node", nil},
		{"generic alter on schema", AlterTable{Kind: KindSchema}},
		{"rename extension", Rename{Kind: KindExtension}},
		{"set schema on index", AlterObjectSchema{Kind: KindIndex}},
		{"owner of table", AlterOwner{Kind: KindTable}},
		{"drop with bogus kind", Drop{Kind: ObjectKind(99)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.node)
			require.ErrorIs(t, err, ErrUnsupportedCommand)
		})
	}
}

func TestDropCoversAllKinds(t *testing.T) {
	// Every object kind is droppable; the drop table must be total.
	for _, k := range ObjectKinds() {
		tag, err := Classify(Drop{Kind: k, Objects: []QualifiedName{{Name: "x"}}})
		require.NoError(t, err, "kind %s", k)
		assert.True(t, tag.Valid())
	}
}

func TestAllClassifiableClassifies(t *testing.T) {
	nodes := AllClassifiable()
	require.NotEmpty(t, nodes)

	seen := make(map[Tag]bool)
	for _, node := range nodes {
		tag, err := Classify(node)
		require.NoError(t, err, "node %T", node)
		require.True(t, tag.Valid())
		seen[tag] = true
	}
	// The representatives must reach every tag in the taxonomy.
	for _, tag := range Tags() {
		assert.True(t, seen[tag], "no representative classifies to %s", tag)
	}
}
