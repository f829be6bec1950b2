package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/taskroll/internal/core/history"
)

// HistoryCheck verifies the run history database is readable and reports the
// most recent run.
type HistoryCheck struct {
	store history.Store // nil when history is disabled
	path  string
}

// schemaVersioner is implemented by history stores backed by a migrated schema.
type schemaVersioner interface {
	SchemaVersion(ctx context.Context) (int, error)
}

// NewHistoryCheck creates a new history check. store may be nil.
func NewHistoryCheck(store history.Store, path string) *HistoryCheck {
	return &HistoryCheck{store: store, path: path}
}

func (c *HistoryCheck) Name() string {
	return "Run History"
}

func (c *HistoryCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.store == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "history",
			Status: StatusPass,
			Detail: "disabled",
		})
		return result
	}

	runs, err := c.store.List(ctx, 1)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  c.path,
			Status: StatusFail,
			Detail: fmt.Sprintf("unreadable: %v", err),
		})
		return result
	}

	storeItem := CheckItem{Label: c.path, Status: StatusPass}
	if v, ok := c.store.(schemaVersioner); ok {
		version, err := v.SchemaVersion(ctx)
		if err != nil {
			storeItem.Status = StatusWarn
			storeItem.Detail = fmt.Sprintf("schema version unreadable: %v", err)
		} else {
			storeItem.Detail = fmt.Sprintf("schema v%d", version)
		}
	}
	result.Items = append(result.Items, storeItem)

	if len(runs) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "last run",
			Status: StatusPass,
			Detail: "no runs recorded",
		})
		return result
	}

	last := runs[0]
	item := CheckItem{
		Label:  "last run",
		Status: StatusPass,
		Detail: fmt.Sprintf("%s %s at %s", last.Kind, last.Trigger, last.StartedAt.Format(time.RFC3339)),
	}
	if last.Failed() {
		item.Status = StatusWarn
		item.Detail += ": " + last.Error
	}
	result.Items = append(result.Items, item)

	return result
}
