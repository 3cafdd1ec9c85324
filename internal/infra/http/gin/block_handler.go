package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/app/gateway"
)

type BlockHandler struct {
	Gateway *gateway.Gateway
	Logger  *slog.Logger
}

type createBlockRequest struct {
	Date string `json:"date" binding:"required"`
}

func (h BlockHandler) Create(c *gin.Context) {
	if h.Gateway == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mutation gateway unavailable"})
		return
	}
	propertyID := c.Param("id")
	var req createBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	date, ok := parseDateParam(req.Date)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	block, err := h.Gateway.BlockDate(c.Request.Context(), propertyID, date)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("block date failed", "property_id", propertyID, "date", req.Date, "error", err)
		}
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":          block.ID,
		"property_id": block.PropertyID,
		"date":        block.Date.Format(dateParamLayout),
		"source":      string(block.Source),
	})
}

func (h BlockHandler) Delete(c *gin.Context) {
	if h.Gateway == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mutation gateway unavailable"})
		return
	}
	propertyID := c.Param("id")
	date, ok := parseDateParam(c.Param("date"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	if err := h.Gateway.UnblockDate(c.Request.Context(), propertyID, date); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("unblock date failed", "property_id", propertyID, "error", err)
		}
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ BlocksHTTP = (*BlockHandler)(nil)
