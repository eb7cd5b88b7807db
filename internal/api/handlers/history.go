package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
	"github.com/Conceptual-Machines/magda-compose/internal/logger"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// HistoryManager is the run log as seen by the HTTP layer
type HistoryManager interface {
	List(ctx context.Context) ([]models.HistoryView, error)
	Export(ctx context.Context, w io.Writer) error
	Import(ctx context.Context, b []byte) (int, error)
	Delete(ctx context.Context, timestamp string) error
	Clear(ctx context.Context) error
}

type HistoryHandler struct {
	history HistoryManager
}

func NewHistoryHandler(history HistoryManager) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List returns the history records, newest first
func (h *HistoryHandler) List(c *gin.Context) {
	records, err := h.history.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []models.HistoryView{}
	}
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// ExportCSV streams the history as a CSV attachment
func (h *HistoryHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.history.Export(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="history.csv"`)
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

// ImportCSV appends the records of an uploaded CSV
func (h *HistoryHandler) ImportCSV(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil || len(body) == 0 {
		respondError(c, apperrors.InputError("csv body is required"))
		return
	}
	n, err := h.history.Import(c.Request.Context(), body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n})
}

// DeleteRecord removes one record by timestamp. Generated files are kept.
func (h *HistoryHandler) DeleteRecord(c *gin.Context) {
	timestamp := c.Param("timestamp")
	if err := h.history.Delete(c.Request.Context(), timestamp); err != nil {
		respondError(c, err)
		return
	}
	fields := logger.WithContext(c)
	fields["timestamp"] = timestamp
	logger.Info("History record deleted", fields)
	c.JSON(http.StatusOK, gin.H{"message": "record deleted"})
}

// ClearHistory removes every record
func (h *HistoryHandler) ClearHistory(c *gin.Context) {
	if err := h.history.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	logger.Info("History cleared", logger.WithContext(c))
	c.JSON(http.StatusOK, gin.H{"message": "history cleared"})
}
