package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ics "github.com/arran4/handcal"
)

// Options controls how the handler builds and emits events.
type Options struct {
	Filename string
	Charset  string
	// EventOps are passed to ics.NewEvent for every request.
	EventOps []any
}

// Handler serves single events built from query parameters.
type Handler struct {
	opts    Options
	logger  *slog.Logger
	metrics *Metrics
}

// New constructs a Handler with its dependencies.
func New(opts Options, logger *slog.Logger, metrics *Metrics) *Handler {
	return &Handler{
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts the event endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/event.ics", h.HandleEvent)
}

// HandleEvent handles GET /event.ics. Each query parameter whose name is an
// event key becomes a property, in the order the parameters appear.
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	props, err := propertiesFromQuery(r.URL.RawQuery)
	if err != nil {
		h.reject(w, r, http.StatusBadRequest, "bad_query", err)
		return
	}

	e, err := ics.NewEvent(props, h.opts.EventOps...)
	switch {
	case errors.Is(err, ics.ErrInvalidTimeExpression):
		h.reject(w, r, http.StatusBadRequest, "invalid_time", err)
		return
	case err != nil:
		h.reject(w, r, http.StatusInternalServerError, "internal", err)
		return
	}

	err = e.Download(w, ics.WithFilename(h.opts.Filename), ics.WithCharset(h.opts.Charset))
	switch {
	case errors.Is(err, ics.ErrMissingStartTime):
		h.reject(w, r, http.StatusUnprocessableEntity, "missing_dtstart", err)
		return
	case err != nil:
		// Headers are already on the wire; all that is left is to record it.
		h.metrics.incrementError("write")
		h.logger.ErrorContext(ctx, "event download failed",
			"request_id", requestID,
			"error", err,
		)
		return
	}

	h.metrics.incrementRendered()
	h.logger.InfoContext(ctx, "event downloaded",
		"request_id", requestID,
		"properties", len(e.Properties()),
	)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, status int, reason string, err error) {
	h.metrics.incrementError(reason)
	h.logger.WarnContext(r.Context(), "event request rejected",
		"request_id", middleware.GetReqID(r.Context()),
		"status", status,
		"reason", reason,
		"error", err,
	)
	http.Error(w, err.Error(), status)
}

// propertiesFromQuery decodes a raw query string without losing parameter
// order, which url.Values cannot preserve.
func propertiesFromQuery(raw string) (ics.Properties, error) {
	var props ics.Properties
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("decoding query key %q: %w", k, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("decoding query value for %q: %w", key, err)
		}
		props = append(props, ics.P(ics.Key(key), value))
	}
	return props, nil
}

// NewRouter wires the handler, a health check and the metrics endpoint.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	h.Register(r)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// NewHTTPServer builds an HTTP server with sane defaults for this project.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
