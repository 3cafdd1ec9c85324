package ginserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/app/gateway"
	domainbooking "staycal/internal/domain/booking"
	domaincalendar "staycal/internal/domain/calendar"
	domainpricing "staycal/internal/domain/pricing"
	"staycal/internal/ical"
)

const dateParamLayout = "2006-01-02"

func parseDateParam(raw string) (time.Time, bool) {
	parsed, err := time.Parse(dateParamLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

// respondDomainError maps known domain failures onto stable HTTP statuses so
// clients can branch without parsing messages.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gateway.ErrAlreadyBlocked),
		errors.Is(err, gateway.ErrIntervalConflict),
		errors.Is(err, domainbooking.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domaincalendar.ErrInvalidInterval),
		errors.Is(err, domainpricing.ErrInvalidPrice),
		errors.Is(err, gateway.ErrStayRequired),
		errors.Is(err, domainbooking.ErrGuestRequired),
		errors.Is(err, ical.ErrNotCalendar):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domaincalendar.ErrFeedNotFound),
		errors.Is(err, domainpricing.ErrRateCardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
