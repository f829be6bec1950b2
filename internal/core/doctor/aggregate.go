package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/colonyops/taskroll/internal/core/docstore"
)

// AggregateCheck verifies the aggregate document can be resolved. With
// autofix a missing document is created.
type AggregateCheck struct {
	store    docstore.Store
	filename string
	autofix  bool
}

// NewAggregateCheck creates a new aggregate document check.
func NewAggregateCheck(store docstore.Store, filename string, autofix bool) *AggregateCheck {
	return &AggregateCheck{store: store, filename: filename, autofix: autofix}
}

func (c *AggregateCheck) Name() string {
	return "Aggregate Document"
}

func (c *AggregateCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	ref, err := c.store.Resolve(ctx, c.filename)
	switch {
	case errors.Is(err, docstore.ErrNotFound) && c.autofix:
		result.Items = append(result.Items, c.create(ctx))
	case errors.Is(err, docstore.ErrNotFound):
		result.Items = append(result.Items, CheckItem{
			Label:   c.filename,
			Status:  StatusWarn,
			Detail:  "does not exist yet, created on the next run",
			Fixable: true,
		})
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  c.filename,
			Status: StatusFail,
			Detail: fmt.Sprintf("cannot resolve: %v", err),
		})
	case ref.Folder:
		result.Items = append(result.Items, CheckItem{
			Label:  c.filename,
			Status: StatusFail,
			Detail: "path is a folder",
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  c.filename,
			Status: StatusPass,
			Detail: ref.Path,
		})
	}

	return result
}

func (c *AggregateCheck) create(ctx context.Context) CheckItem {
	ref, err := c.store.Create(ctx, c.filename)
	if err != nil {
		return CheckItem{
			Label:  c.filename,
			Status: StatusFail,
			Detail: fmt.Sprintf("create failed: %v", err),
		}
	}
	return CheckItem{
		Label:  c.filename,
		Status: StatusPass,
		Detail: "created " + ref.Path,
	}
}
