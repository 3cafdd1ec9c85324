package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/app/dto"
	"staycal/internal/app/query"
)

type CalendarHandler struct {
	Query  *query.Service
	Logger *slog.Logger
}

const monthParamLayout = "2006-01"

// Month serves the dashboard grid: one classified, priced cell per day of
// the requested month. The month is selected with ?month=YYYY-MM; a bare
// month number plus ?year= is also accepted. Defaults to the current UTC
// month.
func (h CalendarHandler) Month(c *gin.Context) {
	if h.Query == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calendar query unavailable"})
		return
	}
	propertyID := c.Param("id")

	now := time.Now().UTC()
	year := now.Year()
	month := now.Month()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		year = parsed
	}
	if raw := c.Query("month"); raw != "" {
		if parsed, err := time.Parse(monthParamLayout, raw); err == nil {
			year = parsed.Year()
			month = parsed.Month()
		} else {
			parsed, convErr := strconv.Atoi(raw)
			if convErr != nil || parsed < 1 || parsed > 12 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
				return
			}
			month = time.Month(parsed)
		}
	}

	view, err := h.Query.MonthView(c.Request.Context(), propertyID, year, month)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("month view failed", "property_id", propertyID, "error", err)
		}
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapMonthView(view))
}

var _ CalendarHTTP = (*CalendarHandler)(nil)
