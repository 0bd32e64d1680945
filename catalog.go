package cadyn

import (
	"strconv"
)

// NoNode marks an absent catalog position.
const NoNode = -1

// Catalog is an insertion-ordered, duplicate-free collection of rules. Each
// entry may own a nested Catalog of filters. Entries live in an arena and
// are linked by index; a content-keyed map enforces that no two entries of
// equal breadth hold equal tables.
//
// New entries are inserted after the current entry, and the new entry
// becomes current. A Catalog is not safe for concurrent mutation; once built
// it may be read from many goroutines.
type Catalog struct {
	entries []catalogEntry
	free    []int
	index   map[string]int
	head    int
	tail    int
	cur     int
	n       int
}

type catalogEntry struct {
	rule    *Rule
	prev    int
	next    int
	filters *Catalog
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]int), head: NoNode, tail: NoNode, cur: NoNode}
}

func contentKey(r *Rule) string {
	return strconv.Itoa(r.Breadth) + ":" + r.ID()
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return c.n }

// Insert adds r after the current entry unless an equal rule is already
// present. Either way the returned entry becomes current; added reports
// whether r was new. The catalog takes ownership of r.
func (c *Catalog) Insert(r *Rule) (id int, added bool) {
	if existing, ok := c.Find(r); ok {
		c.cur = existing
		return existing, false
	}
	e := catalogEntry{rule: r, prev: NoNode, next: NoNode}
	if len(c.free) > 0 {
		id = c.free[len(c.free)-1]
		c.free = c.free[:len(c.free)-1]
		c.entries[id] = e
	} else {
		id = len(c.entries)
		c.entries = append(c.entries, e)
	}
	if c.cur == NoNode {
		// empty catalog, or cursor run off the end: append at the tail
		c.entries[id].prev = c.tail
		if c.tail != NoNode {
			c.entries[c.tail].next = id
		} else {
			c.head = id
		}
		c.tail = id
	} else {
		after := c.cur
		next := c.entries[after].next
		c.entries[id].prev = after
		c.entries[id].next = next
		c.entries[after].next = id
		if next != NoNode {
			c.entries[next].prev = id
		} else {
			c.tail = id
		}
	}
	c.index[contentKey(r)] = id
	c.cur = id
	c.n++
	return id, true
}

// Find returns the entry holding a rule equal to r.
func (c *Catalog) Find(r *Rule) (int, bool) {
	id, ok := c.index[contentKey(r)]
	return id, ok
}

// Rule returns the rule stored at id.
func (c *Catalog) Rule(id int) *Rule {
	if !c.valid(id) {
		return nil
	}
	return c.entries[id].rule
}

// Filters returns the filter catalog owned by entry id, creating it when
// create is set. It returns nil if there is none.
func (c *Catalog) Filters(id int, create bool) *Catalog {
	if !c.valid(id) {
		return nil
	}
	e := &c.entries[id]
	if e.filters == nil && create {
		e.filters = NewCatalog()
	}
	return e.filters
}

// Current returns the current entry, or NoNode.
func (c *Catalog) Current() int { return c.cur }

// Rewind moves the cursor to the first entry.
func (c *Catalog) Rewind() int {
	c.cur = c.head
	return c.cur
}

// Last moves the cursor to the final entry.
func (c *Catalog) Last() int {
	c.cur = c.tail
	return c.cur
}

// Seek makes id the current entry.
func (c *Catalog) Seek(id int) bool {
	if !c.valid(id) {
		return false
	}
	c.cur = id
	return true
}

// Next advances the cursor; it reports false at the last entry.
func (c *Catalog) Next() bool {
	if c.cur == NoNode || c.entries[c.cur].next == NoNode {
		return false
	}
	c.cur = c.entries[c.cur].next
	return true
}

// Prev moves the cursor back; it reports false at the first entry.
func (c *Catalog) Prev() bool {
	if c.cur == NoNode || c.entries[c.cur].prev == NoNode {
		return false
	}
	c.cur = c.entries[c.cur].prev
	return true
}

// DeleteCurrent removes the current entry together with its filters. The
// following entry becomes current, or the preceding one at the tail.
func (c *Catalog) DeleteCurrent() bool {
	id := c.cur
	if id == NoNode {
		return false
	}
	e := c.entries[id]
	if e.prev != NoNode {
		c.entries[e.prev].next = e.next
	} else {
		c.head = e.next
	}
	if e.next != NoNode {
		c.entries[e.next].prev = e.prev
		c.cur = e.next
	} else {
		c.tail = e.prev
		c.cur = e.prev
	}
	delete(c.index, contentKey(e.rule))
	c.entries[id] = catalogEntry{prev: NoNode, next: NoNode}
	c.free = append(c.free, id)
	c.n--
	return true
}

// Replace overwrites the table at id with r. It fails if another entry
// already holds an equal rule.
func (c *Catalog) Replace(id int, r *Rule) error {
	if !c.valid(id) {
		return configErrorf("catalog has no entry %d", id)
	}
	if other, ok := c.Find(r); ok {
		if other == id {
			return nil
		}
		return configErrorf("rule %s already catalogued", r.ID())
	}
	delete(c.index, contentKey(c.entries[id].rule))
	c.entries[id].rule = r
	c.index[contentKey(r)] = id
	return nil
}

// Invert replaces the rule at id with its inverse.
func (c *Catalog) Invert(id int) error {
	r := c.Rule(id)
	if r == nil {
		return configErrorf("catalog has no entry %d", id)
	}
	inv := r.Clone()
	inv.Invert()
	return c.Replace(id, inv)
}

// IDs returns entry ids in list order.
func (c *Catalog) IDs() []int {
	ids := make([]int, 0, c.n)
	for id := c.head; id != NoNode; id = c.entries[id].next {
		ids = append(ids, id)
	}
	return ids
}

// Counts returns the number of rules and, per rule in list order, the
// number of filters it owns.
func (c *Catalog) Counts() (rules int, filters []int) {
	ids := c.IDs()
	filters = make([]int, len(ids))
	for i, id := range ids {
		if f := c.entries[id].filters; f != nil {
			filters[i] = f.Len()
		}
	}
	return len(ids), filters
}

func (c *Catalog) valid(id int) bool {
	return id >= 0 && id < len(c.entries) && c.entries[id].rule != nil
}
