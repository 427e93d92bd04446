package kv

import (
	"encoding/json"
	"testing"

	"github.com/ridge/must/v2"
	"github.com/ridge/tj"
	"github.com/stretchr/testify/require"
)

func TestConditionHolds(t *testing.T) {
	entry := Entry{Key: HashKey("alice"), IDs: NewIDSet("r1", "r2")}

	require.True(t, Condition{}.Holds(&entry, true))
	require.True(t, Condition{}.Holds(nil, false))

	require.True(t, IfAbsent().Holds(nil, false))
	require.False(t, IfAbsent().Holds(&entry, true))

	require.True(t, IfIDsEqual(NewIDSet("r1", "r2")).Holds(&entry, true))
	require.False(t, IfIDsEqual(NewIDSet("r1")).Holds(&entry, true))
	require.False(t, IfIDsEqual(NewIDSet("r1", "r2")).Holds(nil, false))
}

func TestConditionIsolatedFromCaller(t *testing.T) {
	ids := NewIDSet("r1")
	cond := IfIDsEqual(ids)
	ids.Add("r2")

	entry := Entry{Key: HashKey("k"), IDs: NewIDSet("r1")}
	require.True(t, cond.Holds(&entry, true))
}

func TestConditionJSON(t *testing.T) {
	require.JSONEq(t, string(must.OK1(json.Marshal(tj.O{"ifIdsEqual": tj.A{"a", "b"}}))),
		string(must.OK1(json.Marshal(IfIDsEqual(NewIDSet("b", "a"))))))
	require.JSONEq(t, string(must.OK1(json.Marshal(tj.O{"unlessExists": true}))),
		string(must.OK1(json.Marshal(IfAbsent()))))
	require.JSONEq(t, "{}", string(must.OK1(json.Marshal(Condition{}))))

	var cond Condition
	require.NoError(t, json.Unmarshal(must.OK1(json.Marshal(tj.O{"ifIdsEqual": tj.A{"x"}})), &cond))
	require.True(t, cond.ExpectedIDs().Equal(NewIDSet("x")))
	require.False(t, cond.RequiresAbsence())

	require.NoError(t, json.Unmarshal(must.OK1(json.Marshal(tj.O{"unlessExists": true})), &cond))
	require.True(t, cond.RequiresAbsence())

	require.NoError(t, json.Unmarshal([]byte("{}"), &cond))
	require.True(t, cond.Unconditional())
}
