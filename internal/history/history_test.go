package history

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/magefree/hearthstone-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func entries(kinds ...rules.Kind) []rules.Entry {
	out := make([]rules.Entry, len(kinds))
	for i, k := range kinds {
		out[i] = rules.Entry{
			Seq:      i + 1,
			EventID:  uuid.NewString(),
			Kind:     k,
			State:    rules.StateResolved,
			PlayerID: i % 2,
			Value:    i,
		}
	}
	return out
}

func TestJournalRecordAndNavigate(t *testing.T) {
	j := NewJournal("game-1", "", zaptest.NewLogger(t))
	for _, e := range entries(rules.KindGameBegin, rules.KindTurnBegin, rules.KindDrawCard) {
		j.Record(e)
	}

	assert.Equal(t, 3, j.Size())
	assert.Equal(t, []rules.Kind{rules.KindGameBegin, rules.KindTurnBegin, rules.KindDrawCard}, j.Kinds())

	e, ok := j.Next()
	require.True(t, ok)
	assert.Equal(t, rules.KindGameBegin, e.Kind)
	e, ok = j.Next()
	require.True(t, ok)
	assert.Equal(t, rules.KindTurnBegin, e.Kind)

	e, ok = j.Previous()
	require.True(t, ok)
	assert.Equal(t, rules.KindTurnBegin, e.Kind)

	j.Rewind()
	assert.Equal(t, 0, j.Cursor)
	_, ok = j.Previous()
	assert.False(t, ok)

	e, ok = j.At(2)
	require.True(t, ok)
	assert.Equal(t, rules.KindDrawCard, e.Kind)
	_, ok = j.At(3)
	assert.False(t, ok)

	snap := j.Snapshot()
	snap[0].Value = 99
	first, _ := j.At(0)
	assert.Equal(t, 0, first.Value)

	j.Reset()
	assert.Equal(t, 0, j.Size())
	_, ok = j.Next()
	assert.False(t, ok)
}

func TestJournalSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal("game-2", dir, zaptest.NewLogger(t))
	recorded := entries(rules.KindAttack, rules.KindDamage, rules.KindMinionDeath)
	recorded[1].TargetID = "target"
	for _, e := range recorded {
		j.Record(e)
	}

	require.NoError(t, j.Close(context.Background()))

	loaded, err := LoadJournalFromFile(dir, "game-2")
	require.NoError(t, err)
	assert.Equal(t, "game-2", loaded.GameID)
	assert.Equal(t, recorded, loaded.Entries)

	_, err = LoadJournalFromFile(dir, "missing")
	assert.Error(t, err)
}

func TestJournalLoadRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(journalPath(dir, "bad"), []byte("not gzip"), 0o600))

	_, err := LoadJournalFromFile(dir, "bad")
	assert.Error(t, err)
}

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	rec, err := Open(ctx, Config{}, "g", logger)
	require.NoError(t, err)
	assert.IsType(t, Discard{}, rec)
	rec.Record(rules.Entry{})
	require.NoError(t, rec.Close(ctx))

	rec, err = Open(ctx, Config{Driver: DriverMemory}, "g", logger)
	require.NoError(t, err)
	assert.IsType(t, &Journal{}, rec)

	_, err = Open(ctx, Config{Driver: DriverPostgres}, "g", logger)
	assert.Error(t, err)

	_, err = Open(ctx, Config{Driver: "sqlite"}, "g", logger)
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("HS_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("HS_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	gameID := "test-" + uuid.NewString()

	store, err := OpenPostgres(ctx, url, gameID, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close(ctx)

	first := store.Run()
	for _, e := range entries(rules.KindGameBegin, rules.KindTurnBegin) {
		store.Record(e)
	}
	require.NoError(t, store.Flush(ctx))
	require.NoError(t, store.Flush(ctx))

	kinds, err := store.Kinds(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, []string{"GAME_BEGIN", "TURN_BEGIN"}, kinds)

	store.Record(entries(rules.KindGameEnd)[0])
	store.Reset()
	assert.Equal(t, first+1, store.Run())
	require.NoError(t, store.Flush(ctx))

	kinds, err = store.Kinds(ctx, first+1)
	require.NoError(t, err)
	assert.Empty(t, kinds)
}
