package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-online/internal/janitor"
)

type collector interface {
	Run(ctx context.Context) (janitor.Result, error)
}

type collectionObserver interface {
	ObserveCollection(old, finished int)
}

type cronResponse struct {
	Success         bool      `json:"success"`
	Message         string    `json:"message,omitempty"`
	DeletedOld      int       `json:"deletedOldGames"`
	DeletedFinished int       `json:"deletedFinishedGames"`
	Timestamp       time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type cronHandler struct {
	logger    *slog.Logger
	collector collector
	observer  collectionObserver
}

// NewCronHandler runs one collection pass per request. observer may be nil.
func NewCronHandler(logger *slog.Logger, collector collector, observer collectionObserver) http.Handler {
	return &cronHandler{
		logger:    logger.With("component", "cron"),
		collector: collector,
		observer:  observer,
	}
}

func (that *cronHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	result, err := that.collector.Run(r.Context())
	if err != nil {
		log.Error("collection failed", "error", err)
		writeJSON(log, w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to collect rooms",
			Details: err.Error(),
		})
		return
	}

	if that.observer != nil {
		that.observer.ObserveCollection(result.DeletedOld, result.DeletedFinished)
	}

	writeJSON(log, w, http.StatusOK, cronResponse{
		Success:         true,
		Message:         "Cron job completed successfully",
		DeletedOld:      result.DeletedOld,
		DeletedFinished: result.DeletedFinished,
		Timestamp:       result.Timestamp,
	})
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to write response", "error", err)
	}
}
