package kv

import (
	"encoding/json"
	"testing"

	"github.com/ridge/must/v2"
	"github.com/ridge/tj"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	require.True(t, HashKey("a").Equal(HashKey("a")))
	require.False(t, HashKey("a").Equal(HashKey("b")))
	require.False(t, HashKey("a").Equal(RangedKey("a", 0)))
	require.True(t, RangedKey("a", 1.5).Equal(RangedKey("a", 1.5)))
	require.False(t, RangedKey("a", 1.5).Equal(RangedKey("a", 2.5)))

	require.Equal(t, "alice", HashKey("alice").String())
	require.Equal(t, "alice@1.5", RangedKey("alice", 1.5).String())
}

func TestIDSet(t *testing.T) {
	s := NewIDSet("b", "a", "b")
	require.Len(t, s, 2)
	require.True(t, s.Has("a"))
	require.False(t, s.Has("c"))

	s.Add("c")
	s.Remove("b")
	require.Equal(t, []string{"a", "c"}, s.Sorted())

	c := s.Clone()
	c.Add("z")
	require.False(t, s.Has("z"))
	require.False(t, s.Equal(c))
	require.True(t, s.Equal(NewIDSet("c", "a")))

	require.Empty(t, IDSet(nil).Clone())
}

func TestEntryJSON(t *testing.T) {
	entry := Entry{Key: RangedKey("alice", 3), IDs: NewIDSet("r2", "r1")}
	expected := tj.O{"key": tj.O{"hash": "alice", "range": 3}, "ids": tj.A{"r1", "r2"}}
	require.JSONEq(t, string(must.OK1(json.Marshal(expected))), string(must.OK1(json.Marshal(entry))))

	var back Entry
	require.NoError(t, json.Unmarshal(must.OK1(json.Marshal(entry)), &back))
	require.True(t, back.Key.Equal(entry.Key))
	require.True(t, back.IDs.Equal(entry.IDs))

	plain := Entry{Key: HashKey("alice"), IDs: NewIDSet("r1")}
	expected = tj.O{"key": tj.O{"hash": "alice"}, "ids": tj.A{"r1"}}
	require.JSONEq(t, string(must.OK1(json.Marshal(expected))), string(must.OK1(json.Marshal(plain))))
}
