package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalilynx/embededticketautomation/internal/handlers"
	"github.com/kalilynx/embededticketautomation/internal/ledger"
	"github.com/kalilynx/embededticketautomation/internal/qr"
	"github.com/kalilynx/embededticketautomation/internal/redemption"
	"github.com/kalilynx/embededticketautomation/internal/testutil"
)

const eventDate = "2026-08-29"

// saturdayClock pins "now" to the event Saturday so date defaulting is
// deterministic.
func saturdayClock() time.Time {
	return time.Date(2026, 8, 29, 18, 0, 0, 0, time.UTC)
}

func newDoorRouter(t *testing.T) (*gin.Engine, ledger.Ledger) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	l := ledger.NewGormLedger(testutil.NewTestDB(t))
	gate := redemption.NewGate(l, func() string { return eventDate })
	checkin := handlers.NewCheckInHandler(gate, l, qr.NewRenderer("http://localhost:8080"), saturdayClock)
	stats := handlers.NewStatsHandler(l, saturdayClock)

	r := gin.New()
	r.POST("/checkin", checkin.CheckIn)
	r.GET("/verify/:code", checkin.Verify)
	r.GET("/qr/:code", checkin.TicketQR)
	r.GET("/offline-tickets", checkin.OfflineTickets)
	r.GET("/admin/stats", stats.Stats)
	return r, l
}

func mintTickets(t *testing.T, l ledger.Ledger, paymentRef string, codes ...string) {
	t.Helper()
	orderID, err := l.RecordOrder("a@x.com", paymentRef, 4500*len(codes))
	require.NoError(t, err)
	specs := make([]ledger.TicketSpec, 0, len(codes))
	for _, code := range codes {
		specs = append(specs, ledger.TicketSpec{Code: code, EventDate: eventDate})
	}
	require.NoError(t, l.AddTickets(orderID, specs))
}

func postCheckIn(r *gin.Engine, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/checkin", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckInUnknownTicket(t *testing.T) {
	r, _ := newDoorRouter(t)

	w := postCheckIn(r, gin.H{"ticket_code": "ABC123", "event_date": eventDate})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid", resp["status"])
}

func TestCheckInValidThenUsed(t *testing.T) {
	r, l := newDoorRouter(t)
	mintTickets(t, l, "cs_test_1", "DEADBEEF0001")

	w := postCheckIn(r, gin.H{"ticket_code": "DEADBEEF0001", "event_date": eventDate})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "valid", resp["status"])
	assert.Equal(t, "Entry allowed", resp["message"])

	w = postCheckIn(r, gin.H{"ticket_code": "DEADBEEF0001", "event_date": eventDate})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "used", resp["status"])
	assert.Equal(t, "Already checked in", resp["message"])
}

func TestCheckInDefaultsToCurrentSaturday(t *testing.T) {
	r, l := newDoorRouter(t)
	mintTickets(t, l, "cs_test_1", "DEADBEEF0001")

	w := postCheckIn(r, gin.H{"ticket_code": "deadbeef0001"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "valid", resp["status"])
}

func TestCheckInRequiresTicketCode(t *testing.T) {
	r, _ := newDoorRouter(t)

	w := postCheckIn(r, gin.H{"event_date": eventDate})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyPages(t *testing.T) {
	r, l := newDoorRouter(t)
	mintTickets(t, l, "cs_test_1", "DEADBEEF0001")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/verify/DEADBEEF0001", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Valid Ticket")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/verify/DEADBEEF0001", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Already Used")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/verify/NOSUCHCODE00", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid Ticket")
}

func TestTicketQRServesImage(t *testing.T) {
	r, _ := newDoorRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/qr/DEADBEEF0001", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, w.Body.Bytes()[:4])
}

func TestOfflineTicketsExport(t *testing.T) {
	r, l := newDoorRouter(t)
	mintTickets(t, l, "cs_test_1", "AAAA11112222", "BBBB11112222")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/offline-tickets?date="+eventDate, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var codes []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &codes))
	assert.Equal(t, []string{"AAAA11112222", "BBBB11112222"}, codes)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/offline-tickets?date=2026-01-01", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &codes))
	assert.Empty(t, codes)
}

func TestStatsAfterRedemption(t *testing.T) {
	r, l := newDoorRouter(t)
	mintTickets(t, l, "cs_test_1", "AAAA11112222", "BBBB11112222")

	w := postCheckIn(r, gin.H{"ticket_code": "AAAA11112222", "event_date": eventDate})
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats?date="+eventDate, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats ledger.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, ledger.Stats{Sold: 2, Scanned: 1, Remaining: 1}, stats)
}
