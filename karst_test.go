package karst

import (
	"testing"

	"github.com/ridge/karst/index"
	"github.com/ridge/karst/journal"
	"github.com/ridge/karst/kv"
	"github.com/ridge/karst/kv/memstore"
	"github.com/ridge/karst/record"
	"github.com/ridge/karst/test"
	"github.com/stretchr/testify/require"
)

type userID string

type user struct {
	Meta   `karst:"name=users"`
	ID     userID `karst:"identity,name=id"`
	Email  string `karst:"name=email"`
	TeamID string `karst:"name=team_id"`
	Score  int    `karst:"name=score"`
}

var kindUser = KindOf(user{},
	On("email").Unique(),
	On("team_id"),
	On("team_id").RangeOn("score"),
)

func testDB(journal journal.Writer) *DB {
	return New(Config{
		Store:     memstore.New(),
		Namespace: "test",
		Kinds:     []*Kind{kindUser},
		Journal:   journal,
	})
}

func TestKindOf(t *testing.T) {
	require.Equal(t, "users", kindUser.DBName)
	require.Len(t, kindUser.Indexes, 3)

	var names []string
	for _, def := range kindUser.Definitions() {
		names = append(names, def.Name())
	}
	require.Equal(t, []string{"email", "score_team_id", "team_id"}, names)

	require.Panics(t, func() {
		KindOf(user{}, On("email"), On("email").Unique())
	})
	require.Panics(t, func() {
		KindOf(user{}, On("nonexistent"))
	})
}

func TestNewRejectsDuplicateKinds(t *testing.T) {
	require.Panics(t, func() {
		New(Config{
			Store:     memstore.New(),
			Namespace: "test",
			Kinds:     []*Kind{kindUser, KindOf(user{})},
		})
	})
}

func TestSaveAndLookup(t *testing.T) {
	ctx := test.Context(t)
	db := testDB(nil)

	u := &user{ID: "u1", Email: "u1@example.com", TeamID: "t1", Score: 10}
	rec := record.Track(kindUser.Struct, u)
	require.NoError(t, db.Save(ctx, kindUser, rec))
	rec.MarkSaved()

	ids, err := db.Lookup(ctx, kindUser, On("email"), map[string]any{"email": "u1@example.com"})
	require.NoError(t, err)
	require.Equal(t, kv.NewIDSet("u1"), ids)

	ids, err = db.Lookup(ctx, kindUser, On("team_id"), map[string]any{"team_id": "t1"})
	require.NoError(t, err)
	require.Equal(t, kv.NewIDSet("u1"), ids)

	ids, err = db.Lookup(ctx, kindUser, On("team_id").RangeOn("score"),
		map[string]any{"team_id": "t1", "score": 10})
	require.NoError(t, err)
	require.Equal(t, kv.NewIDSet("u1"), ids)
}

func TestSaveMovesMembership(t *testing.T) {
	ctx := test.Context(t)
	db := testDB(nil)

	u := &user{ID: "u1", Email: "u1@example.com", TeamID: "t1", Score: 10}
	rec := record.Track(kindUser.Struct, u)
	require.NoError(t, db.Save(ctx, kindUser, rec))
	rec.MarkSaved()

	u.TeamID = "t2"
	require.NoError(t, db.Save(ctx, kindUser, rec))
	rec.MarkSaved()

	ids, err := db.Lookup(ctx, kindUser, On("team_id"), map[string]any{"team_id": "t1"})
	require.NoError(t, err)
	require.Empty(t, ids)

	ids, err = db.Lookup(ctx, kindUser, On("team_id"), map[string]any{"team_id": "t2"})
	require.NoError(t, err)
	require.Equal(t, kv.NewIDSet("u1"), ids)
}

func TestUniqueIndex(t *testing.T) {
	ctx := test.Context(t)
	db := testDB(nil)

	u1 := &user{ID: "u1", Email: "shared@example.com"}
	require.NoError(t, db.Save(ctx, kindUser, record.Track(kindUser.Struct, u1)))

	u2 := &user{ID: "u2", Email: "shared@example.com"}
	err := db.Save(ctx, kindUser, record.Track(kindUser.Struct, u2))
	var uniqueErr *index.UniqueError
	require.ErrorAs(t, err, &uniqueErr)

	ids, err := db.Lookup(ctx, kindUser, On("email"), map[string]any{"email": "shared@example.com"})
	require.NoError(t, err)
	require.Equal(t, kv.NewIDSet("u1"), ids)
}

func TestDelete(t *testing.T) {
	ctx := test.Context(t)
	db := testDB(nil)

	u := &user{ID: "u1", Email: "u1@example.com", TeamID: "t1", Score: 10}
	rec := record.Track(kindUser.Struct, u)
	require.NoError(t, db.Save(ctx, kindUser, rec))
	rec.MarkSaved()

	require.NoError(t, db.Delete(ctx, kindUser, rec))

	for _, criteria := range []map[string]any{
		{"email": "u1@example.com"},
	} {
		ids, err := db.Lookup(ctx, kindUser, On("email"), criteria)
		require.NoError(t, err)
		require.Empty(t, ids)
	}
	ids, err := db.Lookup(ctx, kindUser, On("team_id"), map[string]any{"team_id": "t1"})
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestLookupRequiresDeclaredIndex(t *testing.T) {
	ctx := test.Context(t)
	db := testDB(nil)

	_, err := db.Lookup(ctx, kindUser, On("score"), map[string]any{"score": 10})
	require.ErrorContains(t, err, "no index score")
}

func TestUnconfiguredKindPanics(t *testing.T) {
	ctx := test.Context(t)
	db := testDB(nil)

	stray := KindOf(user{})
	u := &user{ID: "u1"}
	require.Panics(t, func() {
		_ = db.Save(ctx, stray, record.Track(kindUser.Struct, u))
	})
}

func TestBackfill(t *testing.T) {
	ctx := test.Context(t)
	db := testDB(nil)

	records := make(chan record.Record, 3)
	for _, u := range []*user{
		{ID: "u1", Email: "u1@example.com", TeamID: "t1", Score: 1},
		{ID: "u2", Email: "u2@example.com", TeamID: "t1", Score: 2},
		{ID: "u3", Email: "u3@example.com", TeamID: "t2", Score: 3},
	} {
		records <- record.Adopt(kindUser.Struct, u)
	}
	close(records)

	count, err := db.Backfill(ctx, kindUser, records)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	ids, err := db.Lookup(ctx, kindUser, On("team_id"), map[string]any{"team_id": "t1"})
	require.NoError(t, err)
	require.Equal(t, kv.NewIDSet("u1", "u2"), ids)
}

func TestJournal(t *testing.T) {
	ctx := test.Context(t)
	mem := &journal.Memory{}
	db := testDB(mem)

	u := &user{ID: "u1", Email: "u1@example.com", TeamID: "t1", Score: 10}
	require.NoError(t, db.Save(ctx, kindUser, record.Track(kindUser.Struct, u)))

	events := mem.Events()
	require.Len(t, events, 3)
	var tables []string
	for _, ev := range events {
		require.Equal(t, journal.OpAdd, ev.Op)
		require.Equal(t, "u1", ev.ID)
		tables = append(tables, ev.Table)
	}
	require.Equal(t, []string{
		"test_index_user_emails",
		"test_index_user_scores_and_team_ids",
		"test_index_user_team_ids",
	}, tables)
}
