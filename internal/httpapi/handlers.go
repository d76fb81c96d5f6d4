package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"piweather/internal/types"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// LatestSource exposes the most recent official reading.
type LatestSource interface {
	Latest() (types.Reading, bool)
}

// ReadingStore is the storage the history endpoint reads from.
type ReadingStore interface {
	LatestReadings(ctx context.Context, limit int) ([]types.Reading, error)
	Ping(ctx context.Context) error
}

type readingsAPI struct {
	latest LatestSource
	store  ReadingStore
}

// NewMux registers the station endpoints. store may be nil when storage is
// disabled.
func NewMux(latest LatestSource, store ReadingStore) *http.ServeMux {
	api := &readingsAPI{latest: latest, store: store}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", api.handleHealthz)
	mux.HandleFunc("GET /api/v1/readings/latest", api.handleLatest)
	mux.HandleFunc("GET /api/v1/readings", api.handleReadings)
	return mux
}

func (a *readingsAPI) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if a.store != nil {
		if err := a.store.Ping(r.Context()); err != nil {
			slog.Error("failed to check database connectivity", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to check database connectivity")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *readingsAPI) handleLatest(w http.ResponseWriter, r *http.Request) {
	rd, ok := a.latest.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no official reading yet")
		return
	}
	writeJSON(w, http.StatusOK, rd)
}

func (a *readingsAPI) handleReadings(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusServiceUnavailable, "reading storage is disabled")
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := a.store.LatestReadings(r.Context(), limit)
	if err != nil {
		slog.Error("failed to load readings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"limit": limit,
		"items": items,
	})
}

func parseLimit(r *http.Request) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid 'limit' (expected integer)")
	}
	if n <= 0 {
		return 0, errors.New("'limit' must be > 0")
	}
	if n > maxLimit {
		return 0, errors.New("'limit' must be <= 1000")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"message": msg,
	})
}
