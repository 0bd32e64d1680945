package cadyn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t testing.TB, id string) *Rule {
	t.Helper()
	r, err := ParseID(id)
	require.NoError(t, err)
	return r
}

func catalogOrder(c *Catalog) []string {
	var ids []string
	for _, id := range c.IDs() {
		ids = append(ids, c.Rule(id).ID())
	}
	return ids
}

// TestCatalog_InsertAfterCurrent verifies the insertion policy.
func TestCatalog_InsertAfterCurrent(t *testing.T) {
	c := NewCatalog()
	a, added := c.Insert(mustParse(t, "0F"))
	require.True(t, added)
	_, _ = c.Insert(mustParse(t, "3C"))
	assert.Equal(t, []string{"0F", "3C"}, catalogOrder(c))

	require.Equal(t, a, c.Rewind())
	_, _ = c.Insert(mustParse(t, "5A"))
	assert.Equal(t, []string{"0F", "5A", "3C"}, catalogOrder(c))
	assert.Equal(t, "5A", c.Rule(c.Current()).ID())

	c.Last()
	_, _ = c.Insert(mustParse(t, "E8"))
	assert.Equal(t, []string{"0F", "5A", "3C", "E8"}, catalogOrder(c))
	assert.Equal(t, 4, c.Len())
}

// TestCatalog_NoDuplicates keeps one entry per content and breadth.
func TestCatalog_NoDuplicates(t *testing.T) {
	c := NewCatalog()
	first, _ := c.Insert(mustParse(t, "8E"))
	_, _ = c.Insert(mustParse(t, "17"))

	again, added := c.Insert(mustParse(t, "8e"))
	assert.False(t, added)
	assert.Equal(t, first, again)
	assert.Equal(t, first, c.Current())
	assert.Equal(t, 2, c.Len())

	// equal table bits at a different breadth are a different rule
	narrow := ruleFromTable(t, 0, 1, 1, 0)
	wide := ruleFromTable(t, 0, 1, 1, 0, 0, 0, 0, 0)
	_, added = c.Insert(narrow)
	assert.True(t, added)
	_, added = c.Insert(wide)
	assert.True(t, added)

	id, ok := c.Find(mustParse(t, "17"))
	assert.True(t, ok)
	assert.Equal(t, "17", c.Rule(id).ID())
}

// TestCatalog_DeleteCurrent relinks and moves the cursor.
func TestCatalog_DeleteCurrent(t *testing.T) {
	c := NewCatalog()
	for _, id := range []string{"01", "02", "03", "04"} {
		c.Last()
		c.Insert(mustParse(t, id))
	}
	c.Rewind()
	c.Next()
	require.True(t, c.DeleteCurrent())
	assert.Equal(t, []string{"01", "03", "04"}, catalogOrder(c))
	assert.Equal(t, "03", c.Rule(c.Current()).ID())

	c.Last()
	require.True(t, c.DeleteCurrent())
	assert.Equal(t, "03", c.Rule(c.Current()).ID())
	assert.Equal(t, []string{"01", "03"}, catalogOrder(c))

	_, ok := c.Find(mustParse(t, "04"))
	assert.False(t, ok)

	// freed slots are reused
	id, added := c.Insert(mustParse(t, "04"))
	assert.True(t, added)
	assert.Less(t, id, 4)

	c.Rewind()
	for c.DeleteCurrent() {
	}
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, NoNode, c.Current())
	assert.Empty(t, c.IDs())
}

// TestCatalog_Cursor walks both directions.
func TestCatalog_Cursor(t *testing.T) {
	c := NewCatalog()
	for _, id := range []string{"01", "02", "03"} {
		c.Insert(mustParse(t, id))
	}
	c.Rewind()
	var seen []string
	for {
		seen = append(seen, c.Rule(c.Current()).ID())
		if !c.Next() {
			break
		}
	}
	assert.Equal(t, []string{"01", "02", "03"}, seen)
	assert.True(t, c.Prev())
	assert.Equal(t, "02", c.Rule(c.Current()).ID())
	assert.False(t, c.Seek(99))
}

// TestCatalog_ReplaceAndInvert preserve uniqueness.
func TestCatalog_ReplaceAndInvert(t *testing.T) {
	c := NewCatalog()
	a, _ := c.Insert(mustParse(t, "0F"))
	b, _ := c.Insert(mustParse(t, "F0"))

	assert.ErrorIs(t, c.Invert(a), ErrConfiguration, "inverse of 0F is F0, already present")
	require.NoError(t, c.Replace(b, mustParse(t, "33")))
	require.NoError(t, c.Invert(a))
	assert.Equal(t, "F0", c.Rule(a).ID())

	_, ok := c.Find(mustParse(t, "0F"))
	assert.False(t, ok)
	assert.ErrorIs(t, c.Replace(42, mustParse(t, "00")), ErrConfiguration)
}

// TestCatalog_Filters nests filter catalogs and counts them.
func TestCatalog_Filters(t *testing.T) {
	c := NewCatalog()
	a, _ := c.Insert(mustParse(t, "0F"))
	c.Insert(mustParse(t, "3C"))

	assert.Nil(t, c.Filters(a, false))
	fc := c.Filters(a, true)
	require.NotNil(t, fc)
	fc.Insert(mustParse(t, "96E8"))
	fc.Insert(mustParse(t, "6"))

	rules, filters := c.Counts()
	assert.Equal(t, 2, rules)
	assert.Equal(t, []int{2, 0}, filters)

	items := ItemsFromCatalog(c)
	require.Len(t, items, 2)
	assert.Equal(t, "0F", items[0].Rule.ID())
	assert.Equal(t, "96E8", items[0].Filter.ID())
	assert.Equal(t, 1, items[1].Index)
}
