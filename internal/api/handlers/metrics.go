package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/magda-compose/internal/logger"
)

// ServiceInfo is the static part of the metrics report
type ServiceInfo struct {
	Models         []string
	OutputDir      string
	HistoryBackend string
	MaxLength      int
	MaxTempo       int
}

type MetricsHandler struct {
	startTime time.Time
	version   string
	info      ServiceInfo
	history   HistoryManager
}

// NewMetricsHandler creates the metrics handler. history may be nil.
func NewMetricsHandler(version string, info ServiceInfo, history HistoryManager) *MetricsHandler {
	return &MetricsHandler{
		startTime: time.Now(),
		version:   version,
		info:      info,
		history:   history,
	}
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
)

// formatUptime formats the uptime duration with seconds rounded to 2 decimal places
func formatUptime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % secondsPerMinute
	seconds := d.Seconds() - float64(hours*secondsPerHour) - float64(minutes*secondsPerMinute)

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%.2fs", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm%.2fs", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", seconds)
}

type MetricsResponse struct {
	Status    string         `json:"status"`
	Uptime    string         `json:"uptime"`
	Timestamp string         `json:"timestamp"`
	Version   string         `json:"version"`
	StartTime string         `json:"start_time"`
	Compose   ComposeMetrics `json:"compose"`
}

type ComposeMetrics struct {
	Models         []string `json:"models"`
	OutputDir      string   `json:"output_dir"`
	MIDIFiles      int      `json:"midi_files"`
	WAVFiles       int      `json:"wav_files"`
	HistoryBackend string   `json:"history_backend"`
	HistoryRecords int      `json:"history_records"`
	MaxLength      int      `json:"max_length_seconds"`
	MaxTempo       int      `json:"max_tempo"`
}

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	uptime := time.Since(h.startTime)

	compose := ComposeMetrics{
		Models:         h.info.Models,
		OutputDir:      h.info.OutputDir,
		HistoryBackend: h.info.HistoryBackend,
		HistoryRecords: -1,
		MaxLength:      h.info.MaxLength,
		MaxTempo:       h.info.MaxTempo,
	}
	if compose.Models == nil {
		compose.Models = []string{}
	}
	compose.MIDIFiles, compose.WAVFiles = countOutputFiles(h.info.OutputDir)

	if h.history != nil {
		if records, err := h.history.List(c.Request.Context()); err == nil {
			compose.HistoryRecords = len(records)
		} else {
			logger.Warn("Metrics could not read history", logger.Fields{"error": err.Error()})
		}
	}

	c.JSON(http.StatusOK, MetricsResponse{
		Status:    "healthy",
		Uptime:    formatUptime(uptime),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		StartTime: h.startTime.UTC().Format(time.RFC3339),
		Compose:   compose,
	})
}

// countOutputFiles counts generated files; a missing directory counts as empty
func countOutputFiles(dir string) (midi, wav int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".mid":
			midi++
		case ".wav":
			wav++
		}
	}
	return midi, wav
}
