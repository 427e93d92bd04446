package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapChanges(t *testing.T) {
	m := AdoptMap("u1", map[string]any{"email": "old@example.com", "age": 30})
	require.Equal(t, "u1", m.ID())
	require.True(t, m.Persisted())
	require.Empty(t, m.Changes())

	require.NoError(t, m.SetAttribute("email", "new@example.com"))
	require.NoError(t, m.SetAttribute("name", "Alice"))
	m.RemoveAttribute("age")

	require.Equal(t, map[string]Change{
		"email": {Before: "old@example.com", After: "new@example.com"},
		"name":  {After: "Alice"},
		"age":   {Before: 30},
	}, m.Changes())

	m.MarkSaved()
	require.Empty(t, m.Changes())
}

func TestMapNew(t *testing.T) {
	m := NewMap("u1", map[string]any{"email": "a@example.com"})
	require.False(t, m.Persisted())
	require.Equal(t, map[string]Change{
		"email": {After: "a@example.com"},
	}, m.Changes())
}

func TestMapAttributesAreCopies(t *testing.T) {
	m := NewMap("u1", map[string]any{"email": "a@example.com"})
	attrs := m.Attributes()
	attrs["email"] = "tampered"
	require.Equal(t, "a@example.com", m.Attributes()["email"])
}

func TestMapSetSameValueIsClean(t *testing.T) {
	m := AdoptMap("u1", map[string]any{"email": "a@example.com"})
	require.NoError(t, m.SetAttribute("email", "a@example.com"))
	require.Empty(t, m.Changes())
}
