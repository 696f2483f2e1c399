package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderDraft struct {
	ProductID int64
	Quantity  int
}

type reviewDraft struct {
	Text string
}

func TestBeginReplacesSession(t *testing.T) {
	m := NewMemoryManager()

	m.Begin(1, State("order.quantity"), &orderDraft{ProductID: 5})
	m.Begin(1, State("review.text"), &reviewDraft{})

	assert.Equal(t, State("review.text"), m.GetState(1))
	_, ok := FormAs[orderDraft](m, 1)
	assert.False(t, ok, "old form must be discarded by a new Begin")
	form, ok := FormAs[reviewDraft](m, 1)
	require.True(t, ok)
	assert.NotNil(t, form)
}

func TestSetStateKeepsForm(t *testing.T) {
	m := NewMemoryManager()

	m.Begin(2, State("order.city"), &orderDraft{ProductID: 7, Quantity: 3})
	m.SetState(2, State("order.phone"))

	assert.Equal(t, State("order.phone"), m.GetState(2))
	form, ok := FormAs[orderDraft](m, 2)
	require.True(t, ok)
	assert.Equal(t, int64(7), form.ProductID)
	assert.Equal(t, 3, form.Quantity)
}

func TestFormAsTypeMismatch(t *testing.T) {
	m := NewMemoryManager()
	m.Begin(3, State("order.city"), &orderDraft{})

	_, ok := FormAs[reviewDraft](m, 3)
	assert.False(t, ok)
}

func TestClearAndInProgress(t *testing.T) {
	m := NewMemoryManager()

	assert.False(t, m.InProgress(4))
	assert.Equal(t, StateIdle, m.GetState(4))

	m.Begin(4, State("review.text"), &reviewDraft{})
	assert.True(t, m.InProgress(4))

	m.Clear(4)
	assert.False(t, m.InProgress(4))
	_, ok := m.Form(4)
	assert.False(t, ok)
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	m := NewMemoryManager()

	m.Begin(10, State("order.city"), &orderDraft{ProductID: 1})
	m.Begin(11, State("review.text"), &reviewDraft{Text: "x"})

	assert.Equal(t, State("order.city"), m.GetState(10))
	assert.Equal(t, State("review.text"), m.GetState(11))

	m.Clear(10)
	assert.True(t, m.InProgress(11))
}
