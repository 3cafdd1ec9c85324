package ginserver

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staycal/internal/app/dto"
	"staycal/internal/app/export"
	"staycal/internal/app/feedsync"
	"staycal/internal/app/gateway"
	"staycal/internal/app/query"
	domainpricing "staycal/internal/domain/pricing"
	"staycal/internal/domain/shared/money"
	"staycal/internal/infra/config"
	"staycal/internal/infra/obs"
	"staycal/internal/infra/storage/memory"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	factory := memory.NewFactory()
	rates := memory.NewRateCardStore()
	rates.Seed("p1", domainpricing.RateCard{
		Weekday: money.Must(10000, "EUR"),
		Weekend: money.Must(15000, "EUR"),
	})
	gw := &gateway.Gateway{UoWFactory: factory}
	svc := &query.Service{UoWFactory: factory, Rates: rates}
	exporter := &export.Exporter{Query: svc}
	importer := &feedsync.Importer{Gateway: gw}

	cfg := config.Config{Env: "test", HTTPAddr: ":0"}
	server := NewServer(cfg, obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Calendar: CalendarHandler{Query: svc},
		Blocks:   BlockHandler{Gateway: gw},
		Prices:   PriceHandler{Gateway: gw},
		Booking:  BookingHandler{Gateway: gw},
		ICal:     ICalHandler{Importer: importer, Exporter: exporter},
	})
	return server.Handler
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(t)
	assert.Equal(t, http.StatusOK, doJSON(t, h, http.MethodGet, "/livez", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, h, http.MethodGet, "/readyz", nil).Code)
}

func TestBlockLifecycleOverHTTP(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/properties/p1/blocks", map[string]string{"date": "2026-08-05"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/v1/properties/p1/blocks", map[string]string{"date": "2026-08-05"})
	assert.Equal(t, http.StatusConflict, rec.Code, "double block conflicts")

	rec = doJSON(t, h, http.MethodPost, "/api/v1/properties/p1/blocks", map[string]string{"date": "08/05/2026"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/properties/p1/blocks/2026-08-05", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/properties/p1/blocks/2026-08-05", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, "unblocking a free day is a no-op")
}

func TestBookingFlowOverHTTP(t *testing.T) {
	h := newTestServer(t)

	create := map[string]string{
		"property_id": "p1",
		"guest_id":    "g1",
		"check_in":    "2026-08-01",
		"check_out":   "2026-08-03",
	}
	rec := doJSON(t, h, http.MethodPost, "/api/v1/bookings", create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created dto.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "2026-08-03", created.CheckOut)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/bookings/"+created.ID+"/confirm", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// overlapping request now conflicts
	overlap := map[string]string{
		"property_id": "p1",
		"guest_id":    "g2",
		"check_in":    "2026-08-02",
		"check_out":   "2026-08-04",
	}
	rec = doJSON(t, h, http.MethodPost, "/api/v1/bookings", overlap)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/bookings/"+created.ID+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "second confirm is an invalid transition")

	rec = doJSON(t, h, http.MethodPost, "/api/v1/bookings/missing/confirm", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMonthCalendarOverHTTP(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/properties/p1/blocks", map[string]string{"date": "2026-08-10"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/properties/p1/calendar?year=2026&month=8", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var view dto.MonthCalendar
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "2026-08", view.Month)
	require.Len(t, view.Days, 31)

	byDate := map[string]dto.CalendarDay{}
	for _, d := range view.Days {
		byDate[d.Date] = d
	}
	assert.Equal(t, "blocked_manual", byDate["2026-08-10"].Status)
	assert.Equal(t, "available", byDate["2026-08-11"].Status)
	assert.Equal(t, int64(15000), byDate["2026-08-08"].PriceCents, "saturday carries the weekend rate")

	rec = doJSON(t, h, http.MethodGet, "/api/v1/properties/p1/calendar?month=2026-08", nil)
	require.Equal(t, http.StatusOK, rec.Code, "combined YYYY-MM form selects the same month")
	var combined dto.MonthCalendar
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &combined))
	assert.Equal(t, "2026-08", combined.Month)
	assert.Len(t, combined.Days, 31)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/properties/p1/calendar?year=2026&month=13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/properties/p1/calendar?month=2026-13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPriceEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPut, "/api/v1/properties/p1/prices/2026-08-08", map[string]any{"price_cents": 9900, "currency": "EUR"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPut, "/api/v1/properties/p1/prices/2026-08-08", map[string]any{"price_cents": -5, "currency": "EUR"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "negative override rejected")

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/properties/p1/prices/2026-08-08", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestICalImportAndFeed(t *testing.T) {
	h := newTestServer(t)

	feed := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"UID:res-1",
		"DTSTART;VALUE=DATE:20260801",
		"DTEND;VALUE=DATE:20260803",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "airbnb.ics")
	require.NoError(t, err)
	_, err = part.Write([]byte(feed))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties/p1/calendar/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary feedsync.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Succeeded)
	assert.Zero(t, summary.Failed)

	rec = doJSON(t, h, http.MethodGet, "/api/ical/p1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "DTSTART;VALUE=DATE:20260801")

	rec = doJSON(t, h, http.MethodGet, "/api/v1/properties/p1/calendar/export?name=Beach+House", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Beach_House_calendario.ics")
}

func TestPublicFeedUnknownPropertyStillServes(t *testing.T) {
	h := newTestServer(t)
	// rate card missing for unknown properties
	rec := doJSON(t, h, http.MethodGet, "/api/ical/ghost", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "empty calendar for a property with no rows")
}
