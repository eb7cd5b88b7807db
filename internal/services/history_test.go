package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-compose/internal/catalog"
	"github.com/Conceptual-Machines/magda-compose/internal/database"
	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

func newGormStore(t *testing.T, limit int) *GormHistoryStore {
	t.Helper()
	db, err := database.Connect(context.Background(), "sqlite", filepath.Join(t.TempDir(), "history.db"), false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return NewGormHistoryStore(db, limit)
}

func record(ts string) models.HistoryRecord {
	req := models.ResolvedRequest{
		Prompt:          "slow piano",
		Length:          30,
		Tempo:           80,
		Temperature:     1.0,
		Model:           models.ModelBasicRNN,
		BassInstrument:  33,
		ChordInstrument: 0,
		MajorKey:        true,
	}
	return models.NewHistoryRecord(ts, req, "out/"+ts+".mid", "out/"+ts+".wav")
}

func storesUnderTest(t *testing.T, limit int) map[string]HistoryStore {
	return map[string]HistoryStore{
		"gorm": newGormStore(t, limit),
		"file": NewFileHistoryStore(filepath.Join(t.TempDir(), "history.json"), limit),
	}
}

func TestHistoryStore_AppendListNewestFirst(t *testing.T) {
	for name, store := range storesUnderTest(t, 50) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			records, err := store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, records)

			require.NoError(t, store.Append(ctx, record("20250101_000001")))
			require.NoError(t, store.Append(ctx, record("20250101_000002")))

			records, err = store.List(ctx)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "20250101_000002", records[0].Timestamp)
			assert.Equal(t, "20250101_000001", records[1].Timestamp)
			assert.Equal(t, "-", records[0].Genre)
			assert.Equal(t, "out/20250101_000002.mid", records[0].MIDIFile)
		})
	}
}

func TestHistoryStore_TruncatesToLimit(t *testing.T) {
	for name, store := range storesUnderTest(t, 3) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 1; i <= 5; i++ {
				require.NoError(t, store.Append(ctx, record(fmt.Sprintf("20250101_00000%d", i))))
			}

			records, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, records, 3)
			assert.Equal(t, "20250101_000005", records[0].Timestamp)
			assert.Equal(t, "20250101_000003", records[2].Timestamp)
		})
	}
}

func TestHistoryStore_SameTimestampReplaces(t *testing.T) {
	for name, store := range storesUnderTest(t, 50) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := record("20250101_000001")
			second := record("20250101_000001")
			second.Prompt = "fast rock"

			require.NoError(t, store.Append(ctx, first))
			require.NoError(t, store.Append(ctx, second))

			records, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "fast rock", records[0].Prompt)
		})
	}
}

func TestHistoryStore_DeleteAndClear(t *testing.T) {
	for name, store := range storesUnderTest(t, 50) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Append(ctx, record("a")))
			require.NoError(t, store.Append(ctx, record("b")))

			require.NoError(t, store.DeleteByTimestamp(ctx, "a"))
			assert.ErrorIs(t, store.DeleteByTimestamp(ctx, "a"), apperrors.ErrNotFound)

			records, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "b", records[0].Timestamp)

			require.NoError(t, store.Clear(ctx))
			records, err = store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestHistoryStore_ConcurrentAppends(t *testing.T) {
	for name, store := range storesUnderTest(t, 50) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					assert.NoError(t, store.Append(ctx, record(fmt.Sprintf("ts_%02d", i))))
				}(i)
			}
			wg.Wait()

			records, err := store.List(ctx)
			require.NoError(t, err)
			assert.Len(t, records, 20)
		})
	}
}

func TestFileHistoryStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := NewFileHistoryStore(path, 50)
	require.NoError(t, store.write(nil))
	require.NoError(t, writeRaw(path, "{not json"))

	ctx := context.Background()

	records, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.FileExists(t, path+".corrupt")

	require.NoError(t, writeRaw(path, "{not json"))
	require.NoError(t, store.Append(ctx, record("20250101_000001")))

	records, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "20250101_000001", records[0].Timestamp)
}

func TestExportImportHistoryCSV(t *testing.T) {
	pad := 88
	rec := record("20250101_000001")
	rec.PadInstrument = &pad
	rec.Genre = "jazz"

	var buf bytes.Buffer
	require.NoError(t, ExportHistoryCSV(&buf, []models.HistoryRecord{rec}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "timestamp,model,length,tempo"))
	assert.Contains(t, lines[1], "20250101_000001,basic_rnn,30,80")

	imported, err := ImportHistoryCSV(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, "jazz", imported[0].Genre)
	require.NotNil(t, imported[0].PadInstrument)
	assert.Equal(t, 88, *imported[0].PadInstrument)
}

func TestHistoryViews(t *testing.T) {
	rec := record("x")
	rec.MelodyInstrument = 127

	views := HistoryViews([]models.HistoryRecord{rec}, catalog.NewLexicon(catalog.DefaultInstruments()))
	require.Len(t, views, 1)
	assert.Equal(t, "Unknown (127)", views[0].InstrumentName)
	assert.Equal(t, "Finger Bass", views[0].BassInstrumentName)
	assert.Equal(t, "None", views[0].PadInstrumentName)
}

func writeRaw(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
