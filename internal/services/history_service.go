package services

import (
	"context"
	"io"

	"github.com/Conceptual-Machines/magda-compose/internal/catalog"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// HistoryService exposes the run log to the transports
type HistoryService struct {
	store   HistoryStore
	lexicon *catalog.Lexicon
}

// NewHistoryService creates a history service
func NewHistoryService(store HistoryStore, lexicon *catalog.Lexicon) *HistoryService {
	return &HistoryService{store: store, lexicon: lexicon}
}

// List returns the records with instrument display names, newest first
func (s *HistoryService) List(ctx context.Context) ([]models.HistoryView, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return HistoryViews(records, s.lexicon), nil
}

// Export writes the records as CSV
func (s *HistoryService) Export(ctx context.Context, w io.Writer) error {
	records, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	return ExportHistoryCSV(w, records)
}

// Import appends records read from CSV, oldest first so the order is kept
func (s *HistoryService) Import(ctx context.Context, b []byte) (int, error) {
	records, err := ImportHistoryCSV(b)
	if err != nil {
		return 0, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if err := s.store.Append(ctx, records[i]); err != nil {
			return len(records) - 1 - i, err
		}
	}
	return len(records), nil
}

// Delete removes the record with the given timestamp
func (s *HistoryService) Delete(ctx context.Context, timestamp string) error {
	return s.store.DeleteByTimestamp(ctx, timestamp)
}

// Clear removes every record
func (s *HistoryService) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
