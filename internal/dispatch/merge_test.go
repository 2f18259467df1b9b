package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heeddb/heed/internal/trigger"
)

func entriesNamed(names ...string) []Entry {
	entries := make([]Entry, len(names))
	for i, name := range names {
		entries[i] = Entry{Name: name, CallbackID: "cb-" + name}
	}
	return entries
}

func mergedNames(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func TestMergeByName(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want []string
	}{
		{
			name: "both empty",
			a:    nil,
			b:    nil,
			want: []string{},
		},
		{
			name: "a empty",
			a:    nil,
			b:    []string{"x", "y"},
			want: []string{"x", "y"},
		},
		{
			name: "b empty",
			a:    []string{"x", "y"},
			b:    nil,
			want: []string{"x", "y"},
		},
		{
			name: "interleaved",
			a:    []string{"a", "c", "e"},
			b:    []string{"b", "d"},
			want: []string{"a", "b", "c", "d", "e"},
		},
		{
			name: "a entirely before b",
			a:    []string{"a", "b"},
			b:    []string{"y", "z"},
			want: []string{"a", "b", "y", "z"},
		},
		{
			name: "uppercase before lowercase",
			a:    []string{"Zebra"},
			b:    []string{"apple"},
			want: []string{"Zebra", "apple"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeByName(entriesNamed(tt.a...), entriesNamed(tt.b...))
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, mergedNames(got))
		})
	}
}

func TestMergeByName_PreservesEntryFields(t *testing.T) {
	a := []Entry{{Name: "a", CallbackID: "cb-a", Timing: trigger.TimingBefore}}
	b := []Entry{{Name: "b", CallbackID: "cb-b", Timing: trigger.TimingAfter}}

	got := MergeByName(a, b)

	assert.Equal(t, trigger.TimingBefore, got[0].Timing)
	assert.Equal(t, "cb-a", got[0].CallbackID)
	assert.Equal(t, trigger.TimingAfter, got[1].Timing)
}

func TestMergeByName_InputsUntouched(t *testing.T) {
	a := entriesNamed("b", "d")
	b := entriesNamed("a", "c")

	MergeByName(a, b)

	assert.Equal(t, []string{"b", "d"}, mergedNames(a))
	assert.Equal(t, []string{"a", "c"}, mergedNames(b))
}

func TestMergeByName_TieKeepsFirstListFirst(t *testing.T) {
	a := []Entry{{Name: "same", CallbackID: "from-a"}}
	b := []Entry{{Name: "same", CallbackID: "from-b"}}

	got := MergeByName(a, b)

	assert.Equal(t, []string{"from-a", "from-b"}, []string{got[0].CallbackID, got[1].CallbackID})
}
