package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/riskibarqy/ultimate-scores/internal/domain/jobscheduler"
)

type JobDispatchRepository struct {
	mu         sync.RWMutex
	dispatches map[string]jobscheduler.Dispatch
}

func NewJobDispatchRepository() *JobDispatchRepository {
	return &JobDispatchRepository{dispatches: make(map[string]jobscheduler.Dispatch)}
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}
	event.DispatchID = dispatchID

	r.mu.Lock()
	r.dispatches[dispatchID] = r.dispatches[dispatchID].Apply(event)
	r.mu.Unlock()
	return nil
}

func (r *JobDispatchRepository) Get(dispatchID string) (jobscheduler.Dispatch, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dispatch, ok := r.dispatches[dispatchID]
	return dispatch, ok
}
