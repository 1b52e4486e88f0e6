package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintsu-lang/kintsu/util"
)

func TestAttributeListPreservesInsertionOrder(t *testing.T) {
	l := util.NewAttributeList()
	l.Add("b", "2")
	l.Add("a", "1")
	l.Add("c", "3")

	all := l.All()
	require.Len(t, all, 3)
	assert.Equal(t, []util.Attribute{
		{Key: "b", Value: "2"},
		{Key: "a", Value: "1"},
		{Key: "c", Value: "3"},
	}, all)
}

func TestAttributeListSetOverwritesExisting(t *testing.T) {
	l := util.NewAttributeList()
	l.Add("k", "1")

	overwrote := l.Set("k", "2")
	assert.True(t, overwrote)
	assert.Equal(t, "2", l.GetString("k"))
	assert.Equal(t, 1, l.Len())
}

func TestAttributeListSetCreatesWhenAbsent(t *testing.T) {
	l := util.NewAttributeList()

	overwrote := l.Set("k", "1")
	assert.False(t, overwrote)
	assert.Equal(t, 1, l.Len())
}

func TestAttributeListGetStringMissingKey(t *testing.T) {
	l := util.NewAttributeList()
	assert.Equal(t, "", l.GetString("missing"))
}

func TestAttributeListPopFIFO(t *testing.T) {
	l := util.NewAttributeList()
	l.Add("a", "1")
	l.Add("b", "2")

	first := l.Pop()
	require.NotNil(t, first)
	assert.Equal(t, "a", first.Key)
	assert.Equal(t, 1, l.Len())

	second := l.Pop()
	require.NotNil(t, second)
	assert.Equal(t, "b", second.Key)

	assert.Nil(t, l.Pop())
}

func TestAttributeListMergePrioritizesOther(t *testing.T) {
	base := util.NewAttributeList()
	base.Add("a", "1")
	base.Add("b", "2")

	other := util.NewAttributeList()
	other.Add("b", "20")
	other.Add("c", "3")

	merged := base.Merge(other)

	assert.Equal(t, "1", merged.GetString("a"))
	assert.Equal(t, "20", merged.GetString("b"))
	assert.Equal(t, "3", merged.GetString("c"))
	assert.Equal(t, 3, merged.Len())
}
