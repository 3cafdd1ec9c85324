package ginserver

import (
	"io"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/app/export"
	"staycal/internal/app/feedsync"
)

const maxUploadBytes = 10 << 20

type ICalHandler struct {
	Importer *feedsync.Importer
	Exporter *export.Exporter
	Logger   *slog.Logger
}

// Import ingests an uploaded .ics file and blocks every day its events cover.
// The response always reports the succeeded/failed split; a partial import is
// a 200, only a payload that is not a calendar at all is rejected.
func (h ICalHandler) Import(c *gin.Context) {
	if h.Importer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "feed importer unavailable"})
		return
	}
	propertyID := c.Param("id")

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}

	summary, err := h.Importer.ImportPayload(c.Request.Context(), propertyID, payload)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("calendar import failed", "property_id", propertyID, "error", err)
		}
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Export streams the property's feed as a download for manual upload to
// external platforms.
func (h ICalHandler) Export(c *gin.Context) {
	result, ok := h.buildFeed(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	if result.PublicURL != "" {
		c.Header("X-Feed-URL", result.PublicURL)
	}
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", result.Payload)
}

// Feed is the public endpoint external platforms poll. Same payload as
// Export, served inline.
func (h ICalHandler) Feed(c *gin.Context) {
	result, ok := h.buildFeed(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", result.Payload)
}

func (h ICalHandler) buildFeed(c *gin.Context) (export.Result, bool) {
	if h.Exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "feed exporter unavailable"})
		return export.Result{}, false
	}
	propertyID := c.Param("id")
	if propertyID == "" {
		propertyID = c.Param("property_id")
	}
	result, err := h.Exporter.Export(c.Request.Context(), propertyID, c.Query("name"))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("calendar export failed", "property_id", propertyID, "error", err)
		}
		respondDomainError(c, err)
		return export.Result{}, false
	}
	return result, true
}

var _ ICalHTTP = (*ICalHandler)(nil)
