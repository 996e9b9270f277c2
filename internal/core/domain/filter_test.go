package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_ResolveOverride(t *testing.T) {
	f := NewFilter(map[string]string{"sync": "refresh-from-server"})

	assert.Equal(t, "refresh-from-server", f.Resolve("sync", "two-way"))
	assert.Equal(t, "base-value", f.Resolve("other", "base-value"))
}

func TestFilter_Has(t *testing.T) {
	f := NewFilter(map[string]string{"sync": "slow"})

	assert.True(t, f.Has("sync"))
	assert.False(t, f.Has("missing"))
}

func TestFilter_ApplyDoesNotMutateBase(t *testing.T) {
	base := map[string]string{"sync": "two-way", "enabled": "true"}
	f := NewFilter(map[string]string{"sync": "slow"})

	out := f.Apply(base)

	assert.Equal(t, "slow", out["sync"])
	assert.Equal(t, "true", out["enabled"])
	assert.Equal(t, "two-way", base["sync"], "base map must remain unmutated")
}

func TestFilter_Empty(t *testing.T) {
	assert.True(t, NewFilter(nil).Empty())
	assert.False(t, NewFilter(map[string]string{"a": "b"}).Empty())
}

func TestFilter_CopiesInputMap(t *testing.T) {
	overrides := map[string]string{"sync": "slow"}
	f := NewFilter(overrides)
	overrides["sync"] = "two-way"

	assert.Equal(t, "slow", f.Resolve("sync", "fallback"))
}
