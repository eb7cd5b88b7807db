package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
	"github.com/Conceptual-Machines/magda-compose/internal/logger"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
	"github.com/Conceptual-Machines/magda-compose/internal/services"
)

// Arranger is the pipeline as seen by the HTTP layer
type Arranger interface {
	Arrange(ctx context.Context, req models.ArrangementRequest, opts services.ArrangeOptions) (*models.Arrangement, error)
	Preview(req models.ArrangementRequest) (*models.Arrangement, error)
}

type GenerationHandler struct {
	arranger Arranger
}

func NewGenerationHandler(arranger Arranger) *GenerationHandler {
	return &GenerationHandler{arranger: arranger}
}

// GenerateMusic runs one arrangement and returns links to its files
func (h *GenerationHandler) GenerateMusic(c *gin.Context) {
	req, ok := bindArrangementRequest(c)
	if !ok {
		return
	}

	arrangement, err := h.arranger.Arrange(c.Request.Context(), req, services.ArrangeOptions{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Set("arrangement_id", arrangement.Timestamp)

	response := gin.H{
		"request_id": c.GetString("request_id"),
		"timestamp":  arrangement.Timestamp,
		"midi_file":  downloadRoute + arrangement.MIDIFile,
		"note_count": arrangement.NoteCount,
		"request":    arrangement.Request,
	}
	if arrangement.WAVFile != "" {
		response["wav_file"] = downloadRoute + arrangement.WAVFile
	}

	logger.Info("Arrangement generated", logger.WithContext(c))
	c.JSON(http.StatusOK, response)
}

// Resolve returns the resolved parameters, section plan and progression
// without generating anything
func (h *GenerationHandler) Resolve(c *gin.Context) {
	req, ok := bindArrangementRequest(c)
	if !ok {
		return
	}

	preview, err := h.arranger.Preview(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func bindArrangementRequest(c *gin.Context) (models.ArrangementRequest, bool) {
	var req models.ArrangementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			respondError(c, apperrors.InputError("no data provided"))
		} else {
			respondError(c, apperrors.InputError("invalid request body: %v", err))
		}
		return req, false
	}
	return req, true
}
