package commands

import (
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/colonyops/taskroll/internal/core/eventbus"
	"github.com/colonyops/taskroll/internal/core/history"
	"github.com/colonyops/taskroll/pkg/iojson"
)

// watchStatus tracks the runs of a watch session and serves them as JSON.
type watchStatus struct {
	mu      sync.Mutex
	started time.Time
	runs    int
	failed  int
	last    *history.Run
}

func newWatchStatus(now time.Time) *watchStatus {
	return &watchStatus{started: now}
}

func (s *watchStatus) observe(p eventbus.RunCompletedPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs++
	if p.Run.Failed() {
		s.failed++
	}
	run := p.Run
	s.last = &run
}

type watchStatusJSON struct {
	Started time.Time    `json:"started"`
	Runs    int          `json:"runs"`
	Failed  int          `json:"failed"`
	Last    *history.Run `json:"last,omitempty"`
}

func (s *watchStatus) snapshot() watchStatusJSON {
	s.mu.Lock()
	defer s.mu.Unlock()
	return watchStatusJSON{
		Started: s.started,
		Runs:    s.runs,
		Failed:  s.failed,
		Last:    s.last,
	}
}

func (s *watchStatus) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = iojson.WriteWith(w, os.Stderr, s.snapshot())
}
