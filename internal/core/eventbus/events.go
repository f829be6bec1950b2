// Package eventbus provides a typed publish/subscribe event bus that connects
// the file watcher to the aggregation runner.
package eventbus

import (
	"context"

	"github.com/colonyops/taskroll/internal/core/history"
)

const (
	// Keep list sorted A-Z
	EventDocumentChanged Event = "document.changed"
	EventRunCompleted    Event = "run.completed"
)

// ChangeKind describes what happened to a path.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeRenamed  ChangeKind = "renamed"
)

// Change is one changed path, relative to the vault root.
type Change struct {
	Path string
	Kind ChangeKind
}

// DocumentChangedPayload is emitted once per debounced burst of file changes.
type DocumentChangedPayload struct {
	Changes []Change
}

// Paths returns the changed paths in event order.
func (p DocumentChangedPayload) Paths() []string {
	out := make([]string, len(p.Changes))
	for i, c := range p.Changes {
		out[i] = c.Path
	}
	return out
}

// RunCompletedPayload is emitted after every aggregation or sync run,
// including failed ones.
type RunCompletedPayload struct {
	Run history.Run
}

// PublishDocumentChanged enqueues a document.changed event, waiting for
// room in the queue. A burst may carry an edit to the aggregate document that
// must be synced before the next aggregation, so it is never dropped while
// ctx is live. It returns ctx.Err() if ctx ends first.
func (bus *EventBus) PublishDocumentChanged(ctx context.Context, p DocumentChangedPayload) error {
	return bus.sendWait(ctx, EventDocumentChanged, p)
}

// SubscribeDocumentChanged registers fn for document.changed events.
func (bus *EventBus) SubscribeDocumentChanged(fn func(DocumentChangedPayload)) {
	bus.subscribe(EventDocumentChanged, func(p any) { fn(p.(DocumentChangedPayload)) })
}

// PublishRunCompleted enqueues a run.completed event.
func (bus *EventBus) PublishRunCompleted(p RunCompletedPayload) {
	bus.send(EventRunCompleted, p)
}

// SubscribeRunCompleted registers fn for run.completed events.
func (bus *EventBus) SubscribeRunCompleted(fn func(RunCompletedPayload)) {
	bus.subscribe(EventRunCompleted, func(p any) { fn(p.(RunCompletedPayload)) })
}
