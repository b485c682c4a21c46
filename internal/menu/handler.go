package menu

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	logx "github.com/amoslue/what-the-food/internal/logger"
	"github.com/amoslue/what-the-food/internal/pipeline"
)

type Handler struct {
	service *pipeline.Service
}

func NewHandler(service *pipeline.Service) *Handler {
	return &Handler{service: service}
}

// --------------------------------------------------
// Browser submits a menu photo
// --------------------------------------------------
func (h *Handler) Process(c *gin.Context) {
	file, header, err := c.Request.FormFile("menu_file")
	if err != nil {
		// Empty selection: clear everything, touch nothing remote.
		h.service.Clear()
		c.JSON(http.StatusOK, gin.H{
			"status":  "cleared",
			"message": "No file selected. Previous results cleared.",
		})
		return
	}
	defer file.Close()

	// No format or size checks here. A bad payload comes back as the
	// OCR service's own error, which the pipeline surfaces verbatim.
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}

	runID := h.service.Process(data, header.Filename)

	logx.Info().Str("run_id", runID).Str("file", header.Filename).Msg("pipeline run started")

	c.JSON(http.StatusAccepted, gin.H{
		"run_id": runID,
		"status": "processing",
	})
}

// --------------------------------------------------
// Browser polls for the current result
// --------------------------------------------------
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, NewStatusResponse(h.service.Snapshot()))
}

// --------------------------------------------------
// Re-run the last selected image
// --------------------------------------------------
func (h *Handler) Retry(c *gin.Context) {
	runID, err := h.service.Retry()
	if err != nil {
		if errors.Is(err, pipeline.ErrNothingSelected) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"run_id": runID,
		"status": "processing",
	})
}

// --------------------------------------------------
// Push-based state stream (SSE)
// --------------------------------------------------
func (h *Handler) Events(c *gin.Context) {
	ch, cancel := h.service.Subscribe()
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case st, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("state", NewStatusResponse(st))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
