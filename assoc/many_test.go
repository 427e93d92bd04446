package assoc

import (
	"testing"

	"github.com/ridge/karst/record"
	"github.com/ridge/karst/test"
	"github.com/stretchr/testify/require"
)

func TestNewManyRejectsSingularDecl(t *testing.T) {
	team, _ := teamDecls()
	require.Panics(t, func() {
		NewMany(record.AdoptMap("u1", nil), team, mapLookup())
	})
}

func TestManyResolve(t *testing.T) {
	ctx := test.Context(t)
	_, members := teamDecls()

	u1 := record.AdoptMap("u1", nil)
	u2 := record.AdoptMap("u2", nil)
	team := record.AdoptMap("t1", map[string]any{"member_ids": []string{"u2", "u1"}})

	calls := 0
	many := NewMany(team, members, countingLookup(mapLookup(u1, u2), &calls))
	require.False(t, many.Loaded())

	got, err := many.Resolve(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Same(t, u1, got[0])
	require.Same(t, u2, got[1])
	require.True(t, many.Loaded())

	_, err = many.Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestManyResolveNormalizes(t *testing.T) {
	ctx := test.Context(t)
	_, members := teamDecls()

	u1 := record.AdoptMap("u1", nil)
	u2 := record.AdoptMap("u2", nil)
	// ids arrive as []any after JSON decoding and may repeat
	team := record.AdoptMap("t1", map[string]any{"member_ids": []any{"u2", "u1", "u2"}})

	got, err := NewMany(team, members, mapLookup(u1, u2)).Resolve(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Same(t, u1, got[0])
	require.Same(t, u2, got[1])
}

func TestManyResolveSkipsDangling(t *testing.T) {
	ctx := test.Context(t)
	_, members := teamDecls()

	u1 := record.AdoptMap("u1", nil)
	team := record.AdoptMap("t1", map[string]any{"member_ids": []string{"gone", "u1"}})

	got, err := NewMany(team, members, mapLookup(u1)).Resolve(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Same(t, u1, got[0])
}

func TestManyAdd(t *testing.T) {
	ctx := test.Context(t)
	_, members := teamDecls()

	team := record.AdoptMap("t1", nil)
	u1 := record.AdoptMap("u1", nil)
	u2 := record.AdoptMap("u2", nil)

	many := NewMany(team, members, mapLookup(u1, u2))
	require.NoError(t, many.Add(ctx, u2))
	require.NoError(t, many.Add(ctx, u1))
	require.NoError(t, many.Add(ctx, u1))

	require.Equal(t, []string{"u1", "u2"}, team.Attributes()["member_ids"])
	require.Equal(t, "t1", u1.Attributes()["team_id"])
	require.Equal(t, "t1", u2.Attributes()["team_id"])

	got, err := many.Resolve(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestManyRemove(t *testing.T) {
	ctx := test.Context(t)
	_, members := teamDecls()

	u1 := record.AdoptMap("u1", map[string]any{"team_id": "t1"})
	u2 := record.AdoptMap("u2", map[string]any{"team_id": "t1"})
	team := record.AdoptMap("t1", map[string]any{"member_ids": []string{"u1", "u2"}})

	many := NewMany(team, members, mapLookup(u1, u2))
	require.NoError(t, many.Remove(ctx, u1))

	require.Equal(t, []string{"u2"}, team.Attributes()["member_ids"])
	require.Nil(t, u1.Attributes()["team_id"])
	require.Equal(t, "t1", u2.Attributes()["team_id"])

	// removing a non-member changes nothing
	require.NoError(t, many.Remove(ctx, u1))
	require.Equal(t, []string{"u2"}, team.Attributes()["member_ids"])
}

func TestManyRemoveLeavesForeignReferenceAlone(t *testing.T) {
	ctx := test.Context(t)
	_, members := teamDecls()

	// u3 is on another team; removing it from this one must not blank
	// its reference
	u3 := record.AdoptMap("u3", map[string]any{"team_id": "other"})
	team := record.AdoptMap("t1", map[string]any{"member_ids": []string{"u3"}})

	many := NewMany(team, members, mapLookup(u3))
	require.NoError(t, many.Remove(ctx, u3))
	require.Empty(t, team.Attributes()["member_ids"])
	require.Equal(t, "other", u3.Attributes()["team_id"])
}

func TestManyValidation(t *testing.T) {
	ctx := test.Context(t)
	_, members := teamDecls()

	many := NewMany(record.AdoptMap("t1", nil), members, mapLookup())
	require.ErrorIs(t, many.Add(ctx, record.AdoptMap("", nil)), ErrTargetNotIdentified)

	_, members2 := teamDecls()
	many = NewMany(record.AdoptMap("", nil), members2, mapLookup())
	require.ErrorIs(t, many.Add(ctx, record.AdoptMap("u1", nil)), ErrSourceNotIdentified)
}

func TestManyReset(t *testing.T) {
	ctx := test.Context(t)
	_, members := teamDecls()

	u1 := record.AdoptMap("u1", nil)
	team := record.AdoptMap("t1", map[string]any{"member_ids": []string{"u1"}})

	many := NewMany(team, members, mapLookup(u1))
	_, err := many.Resolve(ctx)
	require.NoError(t, err)
	require.True(t, many.Loaded())

	many.Reset()
	require.False(t, many.Loaded())
}
