package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
	"gorm.io/gorm"

	"github.com/Conceptual-Machines/magda-compose/internal/catalog"
	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
	"github.com/Conceptual-Machines/magda-compose/internal/logger"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// DefaultHistoryLimit is the number of records kept
const DefaultHistoryLimit = 50

// HistoryStore is the bounded run log, newest record first. Append replaces a
// record with the same timestamp and drops the oldest records past the limit.
type HistoryStore interface {
	Append(ctx context.Context, record models.HistoryRecord) error
	List(ctx context.Context) ([]models.HistoryRecord, error)
	DeleteByTimestamp(ctx context.Context, timestamp string) error
	Clear(ctx context.Context) error
}

// GormHistoryStore keeps the history in a SQL table
type GormHistoryStore struct {
	db    *gorm.DB
	limit int
	mu    sync.Mutex
}

// NewGormHistoryStore creates a store over a migrated database
func NewGormHistoryStore(db *gorm.DB, limit int) *GormHistoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &GormHistoryStore{db: db, limit: limit}
}

// Append inserts the record and truncates the table to the limit in one transaction
func (s *GormHistoryStore) Append(ctx context.Context, record models.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("timestamp = ?", record.Timestamp).Delete(&models.HistoryRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		var ids []uint
		if err := tx.Model(&models.HistoryRecord{}).Order("id DESC").Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) <= s.limit {
			return nil
		}
		return tx.Delete(&models.HistoryRecord{}, ids[s.limit:]).Error
	})
	if err != nil {
		return apperrors.PersistenceFailure("append", err)
	}
	return nil
}

// List returns the records newest first
func (s *GormHistoryStore) List(ctx context.Context) ([]models.HistoryRecord, error) {
	var records []models.HistoryRecord
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(s.limit).Find(&records).Error; err != nil {
		return nil, apperrors.PersistenceFailure("list", err)
	}
	return records, nil
}

// DeleteByTimestamp removes one record; ErrNotFound if none matches
func (s *GormHistoryStore) DeleteByTimestamp(ctx context.Context, timestamp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.db.WithContext(ctx).Where("timestamp = ?", timestamp).Delete(&models.HistoryRecord{})
	if res.Error != nil {
		return apperrors.PersistenceFailure("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: history record %s", apperrors.ErrNotFound, timestamp)
	}
	return nil
}

// Clear removes every record
func (s *GormHistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.HistoryRecord{}).Error; err != nil {
		return apperrors.PersistenceFailure("clear", err)
	}
	return nil
}

// FileHistoryStore keeps the history as a JSON array in one file. The file is
// opened per call; writes go through a temp file and rename.
type FileHistoryStore struct {
	path  string
	limit int
	mu    sync.Mutex
}

// NewFileHistoryStore creates a store backed by path
func NewFileHistoryStore(path string, limit int) *FileHistoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &FileHistoryStore{path: path, limit: limit}
}

// Append prepends the record and truncates to the limit
func (s *FileHistoryStore) Append(_ context.Context, record models.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return apperrors.PersistenceFailure("append", err)
	}

	out := make([]models.HistoryRecord, 0, len(records)+1)
	out = append(out, record)
	for _, r := range records {
		if r.Timestamp != record.Timestamp {
			out = append(out, r)
		}
	}
	if len(out) > s.limit {
		out = out[:s.limit]
	}

	if err := s.write(out); err != nil {
		return apperrors.PersistenceFailure("append", err)
	}
	return nil
}

// List returns the records newest first
func (s *FileHistoryStore) List(_ context.Context) ([]models.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return nil, apperrors.PersistenceFailure("list", err)
	}
	return records, nil
}

// DeleteByTimestamp removes one record; ErrNotFound if none matches
func (s *FileHistoryStore) DeleteByTimestamp(_ context.Context, timestamp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return apperrors.PersistenceFailure("delete", err)
	}

	kept := records[:0]
	for _, r := range records {
		if r.Timestamp != timestamp {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return fmt.Errorf("%w: history record %s", apperrors.ErrNotFound, timestamp)
	}

	if err := s.write(kept); err != nil {
		return apperrors.PersistenceFailure("delete", err)
	}
	return nil
}

// Clear removes every record
func (s *FileHistoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write([]models.HistoryRecord{}); err != nil {
		return apperrors.PersistenceFailure("clear", err)
	}
	return nil
}

func (s *FileHistoryStore) read() ([]models.HistoryRecord, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.HistoryRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return []models.HistoryRecord{}, nil
	}

	var records []models.HistoryRecord
	if err := json.Unmarshal(b, &records); err != nil {
		// an unreadable log starts over; the old file is kept beside it
		backup := s.path + ".corrupt"
		if renameErr := os.Rename(s.path, backup); renameErr != nil {
			return nil, fmt.Errorf("corrupt history file %s: %w", s.path, renameErr)
		}
		logger.Warn("Corrupt history file moved aside", logger.Fields{
			"path":   s.path,
			"backup": backup,
			"error":  err.Error(),
		})
		return []models.HistoryRecord{}, nil
	}
	if records == nil {
		records = []models.HistoryRecord{}
	}
	return records, nil
}

func (s *FileHistoryStore) write(records []models.HistoryRecord) error {
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// ExportHistoryCSV writes the records as CSV with a header row
func ExportHistoryCSV(w io.Writer, records []models.HistoryRecord) error {
	if records == nil {
		records = []models.HistoryRecord{}
	}
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("failed to export history: %w", err)
	}
	return nil
}

// ImportHistoryCSV reads records previously written by ExportHistoryCSV
func ImportHistoryCSV(b []byte) ([]models.HistoryRecord, error) {
	var records []models.HistoryRecord
	if err := gocsv.UnmarshalBytes(b, &records); err != nil {
		return nil, fmt.Errorf("failed to import history: %w", err)
	}
	return records, nil
}

// HistoryViews attaches instrument display names to each record
func HistoryViews(records []models.HistoryRecord, lexicon *catalog.Lexicon) []models.HistoryView {
	views := make([]models.HistoryView, 0, len(records))
	for _, r := range records {
		views = append(views, models.HistoryView{
			HistoryRecord:       r,
			InstrumentName:      lexicon.NameFor(r.MelodyInstrument),
			BassInstrumentName:  lexicon.NameFor(r.BassInstrument),
			ChordInstrumentName: lexicon.NameFor(r.ChordInstrument),
			PadInstrumentName:   lexicon.PadNameFor(r.PadInstrument),
		})
	}
	return views
}
