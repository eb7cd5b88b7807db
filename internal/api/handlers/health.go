package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports whether the local dependencies of the pipeline are present
type HealthHandler struct {
	soundFontPath string
	outputDir     string
}

func NewHealthHandler(soundFontPath, outputDir string) *HealthHandler {
	return &HealthHandler{soundFontPath: soundFontPath, outputDir: outputDir}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	soundFontStatus := "missing"
	if _, err := os.Stat(h.soundFontPath); err == nil {
		soundFontStatus = "available"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"renderer": gin.H{
			"soundfont": soundFontStatus,
			"path":      h.soundFontPath,
		},
		"output_dir": h.outputDir,
	})
}
