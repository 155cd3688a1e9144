// Package catalog holds the in-memory file catalog: an ordered chain of Records
// that can be sorted by name or size, searched, and pruned in step with the
// filesystem.
//
// The chain is singly linked through an index-addressed arena: each node keeps
// the index of its successor and -1 terminates the chain. Sorting relinks
// indices and never moves Records between slots.
package catalog

import "path/filepath"

const nilIdx = -1

type node struct {
	rec  Record
	next int
}

// Remover deletes a file from the filesystem.
type Remover interface {
	Remove(path string) error
}

// DeletePolicy controls the order of the in-memory unlink and the filesystem removal.
type DeletePolicy int

const (
	// PolicyOptimistic unlinks the record first and keeps it unlinked even if
	// the removal fails, so the catalog may drop a file that is still on disk.
	PolicyOptimistic DeletePolicy = iota
	// PolicyStrict removes the file first and unlinks only on success.
	PolicyStrict
)

func (p DeletePolicy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "optimistic"
}

// Options configures a Catalog.
type Options struct {
	Remover Remover      // nil means nothing is ever removed from disk
	Policy  DeletePolicy // defaults to PolicyOptimistic
}

// Catalog is the ordered chain of Records for one directory snapshot.
// It is not safe for concurrent use.
type Catalog struct {
	dir   string
	nodes []node
	free  []int
	head  int
	tail  int
	count int
	order Order

	remover Remover
	policy  DeletePolicy
}

// New returns an empty catalog for files living in dir.
func New(dir string, opts Options) *Catalog {
	return &Catalog{
		dir:     dir,
		head:    nilIdx,
		tail:    nilIdx,
		remover: opts.Remover,
		policy:  opts.Policy,
	}
}

// Dir is the directory the cataloged names are relative to.
func (c *Catalog) Dir() string { return c.dir }

// Path returns the filesystem path of a cataloged name.
func (c *Catalog) Path(name string) string { return filepath.Join(c.dir, name) }

// Len returns the number of records in the chain.
func (c *Catalog) Len() int { return c.count }

// Order reports how the chain is currently arranged.
func (c *Catalog) Order() Order { return c.order }

// Policy reports the configured delete policy.
func (c *Catalog) Policy() DeletePolicy { return c.policy }

// Append adds r at the end of the chain. The chain is no longer considered sorted.
func (c *Catalog) Append(r Record) {
	i := c.alloc(r)
	if c.head == nilIdx {
		c.head = i
	} else {
		c.nodes[c.tail].next = i
	}
	c.tail = i
	c.count++
	if c.count > 1 {
		c.order = Unordered
	}
}

// Each calls fn for every record in chain order until fn returns false.
func (c *Catalog) Each(fn func(Record) bool) {
	for i := c.head; i != nilIdx; i = c.nodes[i].next {
		if !fn(c.nodes[i].rec) {
			return
		}
	}
}

// Records returns a copy of the chain as a slice.
func (c *Catalog) Records() []Record {
	out := make([]Record, 0, c.count)
	c.Each(func(r Record) bool {
		out = append(out, r)
		return true
	})
	return out
}

// TotalSize sums the sizes of all records.
func (c *Catalog) TotalSize() int64 {
	var total int64
	for i := c.head; i != nilIdx; i = c.nodes[i].next {
		total += c.nodes[i].rec.Size
	}
	return total
}

func (c *Catalog) alloc(r Record) int {
	if n := len(c.free); n > 0 {
		i := c.free[n-1]
		c.free = c.free[:n-1]
		c.nodes[i] = node{rec: r, next: nilIdx}
		return i
	}
	c.nodes = append(c.nodes, node{rec: r, next: nilIdx})
	return len(c.nodes) - 1
}

func (c *Catalog) release(i int) {
	c.nodes[i] = node{next: nilIdx}
	c.free = append(c.free, i)
}

// unlink detaches node i whose predecessor is prev (nilIdx when i is the head).
func (c *Catalog) unlink(prev, i int) {
	next := c.nodes[i].next
	if prev == nilIdx {
		c.head = next
	} else {
		c.nodes[prev].next = next
	}
	if c.tail == i {
		c.tail = prev
	}
	c.nodes[i].next = nilIdx
	c.count--
}

// tailOf walks from i to the last node of its chain.
func (c *Catalog) tailOf(i int) int {
	for i != nilIdx && c.nodes[i].next != nilIdx {
		i = c.nodes[i].next
	}
	return i
}
