package catalog

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type removeFunc func(path string) error

func (f removeFunc) Remove(path string) error { return f(path) }

func build(t *testing.T, opts Options, recs ...Record) *Catalog {
	t.Helper()
	c := New(t.TempDir(), opts)
	for _, r := range recs {
		c.Append(r)
	}
	checkChain(t, c)
	return c
}

// checkChain verifies the chain is acyclic, counted correctly and that tail is its last node.
func checkChain(t *testing.T, c *Catalog) {
	t.Helper()
	seen := make(map[int]bool)
	last := nilIdx
	for i := c.head; i != nilIdx; i = c.nodes[i].next {
		require.False(t, seen[i], "cycle at node %d", i)
		seen[i] = true
		last = i
	}
	require.Equal(t, c.count, len(seen), "count does not match chain length")
	require.Equal(t, last, c.tail, "tail does not point at the last node")
	require.Equal(t, len(c.nodes), len(seen)+len(c.free), "arena slots leaked")
}

var ignoreKey = cmpopts.IgnoreUnexported(Record{})

func recs(pairs ...interface{}) []Record {
	out := make([]Record, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, NewRecord(pairs[i].(string), int64(pairs[i+1].(int))))
	}
	return out
}

func TestNewRecord(t *testing.T) {
	r := NewRecord("README.md", -5)
	assert.Equal(t, int64(0), r.Size)
	assert.Equal(t, "readme.md", r.Key())
	assert.Equal(t, NewRecord("Report.PDF", 1).Key(), NewRecord("report.pdf", 1).Key())
	assert.Equal(t, "straße.txt", NewRecord("STRAßE.txt", 1).Key())
	assert.NotEqual(t, NewRecord("ß.txt", 1).Key(), NewRecord("SS.txt", 1).Key())
}

func TestAppendAndRecords(t *testing.T) {
	c := build(t, Options{}, recs("b", 2, "a", 1, "c", 3)...)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, Unordered, c.Order())
	assert.Equal(t, int64(6), c.TotalSize())

	if diff := cmp.Diff(recs("b", 2, "a", 1, "c", 3), c.Records(), ignoreKey); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestEachStopsEarly(t *testing.T) {
	c := build(t, Options{}, recs("a", 1, "b", 2, "c", 3)...)
	var names []string
	c.Each(func(r Record) bool {
		names = append(names, r.Name)
		return r.Name != "b"
	})
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestEmptyCatalog(t *testing.T) {
	c := build(t, Options{})
	c.SortByName()
	checkChain(t, c)
	c.SortBySize()
	checkChain(t, c)
	assert.Empty(t, c.Records())

	_, ok := c.FindByName("x")
	assert.False(t, ok)

	_, err := c.DeleteByName("x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSingleRecord(t *testing.T) {
	c := build(t, Options{}, recs("only", 7)...)
	c.SortByName()
	checkChain(t, c)
	c.SortBySize()
	checkChain(t, c)
	if diff := cmp.Diff(recs("only", 7), c.Records(), ignoreKey); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestArenaReusesFreedSlots(t *testing.T) {
	c := build(t, Options{}, recs("a", 1, "b", 2)...)
	_, err := c.DeleteByName("a")
	require.NoError(t, err)
	c.Append(NewRecord("c", 3))
	checkChain(t, c)
	assert.Len(t, c.nodes, 2)
	assert.Equal(t, []string{"b", "c"}, names(c))
}

func names(c *Catalog) []string {
	var out []string
	c.Each(func(r Record) bool {
		out = append(out, r.Name)
		return true
	})
	return out
}

func TestOrderString(t *testing.T) {
	assert.Equal(t, "unordered", Unordered.String())
	assert.Equal(t, "name", ByName.String())
	assert.Equal(t, "size", BySize.String())
	assert.Equal(t, "optimistic", PolicyOptimistic.String())
	assert.Equal(t, "strict", PolicyStrict.String())
}

func ExampleCatalog_SortBySize() {
	c := New(".", Options{})
	c.Append(NewRecord("a", 30))
	c.Append(NewRecord("b", 10))
	c.Append(NewRecord("c", 20))
	c.SortBySize()
	c.Each(func(r Record) bool {
		fmt.Println(r.Name, r.Size)
		return true
	})
	// Output:
	// b 10
	// c 20
	// a 30
}
