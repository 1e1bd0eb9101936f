package relation

import (
	"sync"

	"github.com/certkit/Legra/gologger"
	"github.com/certkit/Legra/internal"
	"github.com/certkit/Legra/orchestrator"
)

var logger = gologger.NewLogger()

// StatusHolder is the process-wide operational status. It logs every
// transition and counts them per status kind.
type StatusHolder struct {
	mu      sync.RWMutex
	current orchestrator.Status
}

func NewStatusHolder() *StatusHolder {
	return &StatusHolder{
		current: orchestrator.Waiting("Starting"),
	}
}

func (h *StatusHolder) Set(status orchestrator.Status) {
	h.mu.Lock()
	previous := h.current
	h.current = status
	h.mu.Unlock()

	if previous == status {
		return
	}
	internal.Metric_StatusTransitions.WithLabelValues(string(status.Kind)).Inc()
	logger.Info().
		Str("from", string(previous.Kind)).
		Str("to", string(status.Kind)).
		Str("reason", status.Reason).
		Msg("status transition")
}

func (h *StatusHolder) Current() orchestrator.Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}
