package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunRegistry_AddRejectsDuplicates(t *testing.T) {
	r := NewRunRegistry()

	assert.True(t, r.Add("tgt-1", func() {}))
	assert.False(t, r.Add("tgt-1", func() {}))
	assert.True(t, r.Add("tgt-2", func() {}))
}

func TestRunRegistry_RemoveFreesTheSlot(t *testing.T) {
	r := NewRunRegistry()

	assert.True(t, r.Add("tgt-1", func() {}))
	r.Remove("tgt-1")
	assert.False(t, r.Active("tgt-1"))
	assert.True(t, r.Add("tgt-1", func() {}))
}

func TestRunRegistry_CancelInvokesTheHandle(t *testing.T) {
	r := NewRunRegistry()

	cancelled := false
	r.Add("tgt-1", func() { cancelled = true })

	assert.True(t, r.Cancel("tgt-1"))
	assert.True(t, cancelled)

	// The entry stays registered until the run removes itself.
	assert.True(t, r.Active("tgt-1"))
}

func TestRunRegistry_CancelUnknownTarget(t *testing.T) {
	r := NewRunRegistry()
	assert.False(t, r.Cancel("nonexistent"))
}
