package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/app/gateway"
	"staycal/internal/domain/shared/money"
)

type PriceHandler struct {
	Gateway *gateway.Gateway
	Logger  *slog.Logger
}

type putPriceRequest struct {
	PriceCents int64  `json:"price_cents" binding:"required"`
	Currency   string `json:"currency" binding:"required"`
}

func (h PriceHandler) Put(c *gin.Context) {
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
	var req putPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	price, err := money.New(req.PriceCents, req.Currency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sp, err := h.Gateway.SetSpecialPrice(c.Request.Context(), propertyID, date, price)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("set special price failed", "property_id", propertyID, "error", err)
		}
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          sp.ID,
		"property_id": sp.PropertyID,
		"date":        sp.Date.Format(dateParamLayout),
		"price_cents": sp.Price.Amount,
		"currency":    sp.Price.Currency,
	})
}

func (h PriceHandler) Delete(c *gin.Context) {
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
	if err := h.Gateway.ClearSpecialPrice(c.Request.Context(), propertyID, date); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("clear special price failed", "property_id", propertyID, "error", err)
		}
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ PricesHTTP = (*PriceHandler)(nil)
