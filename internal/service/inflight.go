package service

import (
	"sync"

	apperrors "github.com/lcs-staffing/admin-console/pkg/util"
)

// inFlight rejects a second concurrent mutation of the same key within this process.
type inFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInFlight() *inFlight {
	return &inFlight{keys: map[string]struct{}{}}
}

func (f *inFlight) acquire(key string) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.keys[key]; busy {
		return nil, apperrors.NewConflict("another change to this job is in progress", map[string]any{"id": key})
	}
	f.keys[key] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.keys, key)
		f.mu.Unlock()
	}, nil
}
