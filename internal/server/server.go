package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tally-labs/tally/internal/counter"
	"github.com/tally-labs/tally/pkg/log"
)

// Routes served by the counter service. Routing is by path only; the
// method is not inspected, matching the original surface.
const (
	routeValue     = "/"
	routeIncrement = "/increment"
	routeDecrement = "/decrement"
)

// Handler serves the counter HTTP surface. Every response, including
// the 400 path, carries a permissive CORS header, and every request
// persists the current value before the response is written.
type Handler struct {
	counter *counter.Counter
	logger  log.Logger
}

// NewHandler creates a Handler around the given counter.
func NewHandler(c *counter.Counter, logger log.Logger) *Handler {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Handler{counter: c, logger: logger}
}

// ServeHTTP dispatches a single request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ctx := r.Context()
	var (
		status int
		body   string
		err    error
	)

	switch r.URL.Path {
	case routeValue:
		var v int64
		v, err = h.counter.Checkpoint(ctx)
		status = http.StatusOK
		body = strconv.FormatInt(v, 10)

	case routeIncrement:
		_, err = h.counter.Increment(ctx)
		status = http.StatusOK

	case routeDecrement:
		_, err = h.counter.Decrement(ctx)
		status = http.StatusOK

	default:
		// Unknown route is a caller error, but the record is still
		// refreshed so the per-request persistence guarantee holds.
		_, err = h.counter.Checkpoint(ctx)
		status = http.StatusBadRequest
		body = ""
	}

	if err != nil {
		h.logger.Error("persist failed",
			log.String("path", r.URL.Path),
			log.Err(err),
		)
		http.Error(w, "persist failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if body != "" {
		if _, werr := w.Write([]byte(body)); werr != nil {
			h.logger.Debug("write response", log.Err(werr))
		}
	}

	h.logger.Debug("request",
		log.String("method", r.Method),
		log.String("path", r.URL.Path),
		log.Int("status", status),
		log.Int64("value", h.counter.Value()),
		log.Duration("elapsed", time.Since(start)),
	)
}
