package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ics "github.com/arran4/handcal"
)

type testServer struct {
	router  http.Handler
	metrics *Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	h := New(Options{
		Filename: "launch.ics",
		Charset:  "utf-8",
		EventOps: []any{
			ics.WithLocation(time.UTC),
			ics.WithClock(func() time.Time { return now }),
			ics.WithUIDGenerator(func() string { return "server-uid" }),
		},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
	return &testServer{router: NewRouter(h, reg), metrics: metrics}
}

func (s *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleEvent(t *testing.T) {
	s := newTestServer(t)

	rec := s.get(t, "/event.ics?location=HQ%2C+East&summary=Launch&dtstart=2024-06-10+10%3A00%3A00&dtend=now+%2B+2+hours&foo=bar")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=launch.ics", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//hacksw/handcal//NONSGML v1.0//EN",
		"CALSCALE:GREGORIAN",
		"BEGIN:VEVENT",
		`LOCATION:HQ\, East`,
		"SUMMARY:Launch",
		"DTSTART;TZID=America/Mexico_City:20240610T100000",
		"DTEND;TZID=America/Mexico_City:20240610T110000",
		"DTSTAMP:20240610T090000",
		"UID:server-uid",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n"), rec.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.EventsRendered))
}

func TestHandleEventMissingStart(t *testing.T) {
	s := newTestServer(t)

	rec := s.get(t, "/event.ics?summary=Launch")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NotContains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.RenderErrors.WithLabelValues("missing_dtstart")))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.metrics.EventsRendered))
}

func TestHandleEventInvalidTime(t *testing.T) {
	s := newTestServer(t)

	rec := s.get(t, "/event.ics?dtstart=qwerty")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "qwerty")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.RenderErrors.WithLabelValues("invalid_time")))
}

func TestHandleEventBadQuery(t *testing.T) {
	s := newTestServer(t)

	rec := s.get(t, "/event.ics?summary=%zz")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.RenderErrors.WithLabelValues("bad_query")))
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	s.get(t, "/event.ics?dtstart=now")

	rec := s.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = s.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "handcal_events_rendered_total 1")
}

func TestPropertiesFromQuery(t *testing.T) {
	props, err := propertiesFromQuery("summary=a%2Cb&&dtstart=now+%2B+1+hour&flag")
	require.NoError(t, err)
	assert.Equal(t, ics.Properties{
		ics.P(ics.KeySummary, "a,b"),
		ics.P(ics.KeyDtStart, "now + 1 hour"),
		ics.P("flag", ""),
	}, props)

	_, err = propertiesFromQuery("%zz=1")
	assert.Error(t, err)
}

func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer(":0", http.NotFoundHandler())
	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
}
