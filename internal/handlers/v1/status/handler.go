package status

import (
	"context"
	"errors"
	"net/http"

	"github.com/carson-networks/ledger-server/internal/logging"
)

// pinger reports whether the backing store is reachable.
type pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Store pinger
}

// NewHandler returns a status handler. store may be nil when the backend has
// nothing to check.
func NewHandler(store pinger) Handler {
	return Handler{Store: store}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	if h.Store != nil {
		stopTimer := logData.AddTiming("pingMs")
		err := h.Store.Ping(req.Context())
		stopTimer()
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return err
		}
	}

	w.WriteHeader(http.StatusOK)
	return nil
}
