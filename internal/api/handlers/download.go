package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
)

type DownloadHandler struct {
	outputDir string
}

func NewDownloadHandler(outputDir string) *DownloadHandler {
	return &DownloadHandler{outputDir: outputDir}
}

// Download serves a generated file as an attachment. Only plain file names
// inside the output directory are served.
func (h *DownloadHandler) Download(c *gin.Context) {
	name := c.Param("filename")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		respondError(c, apperrors.InputError("invalid file name %q", name))
		return
	}

	path := filepath.Join(h.outputDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "file not found",
			"request_id": c.GetString("request_id"),
		})
		return
	}
	c.FileAttachment(path, name)
}
