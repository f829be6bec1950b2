package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/colonyops/taskroll/internal/core/docstore"
)

// VaultCheck verifies the vault root is a readable directory and counts the
// documents it contains.
type VaultCheck struct {
	root  string
	store docstore.Store
}

// NewVaultCheck creates a new vault check.
func NewVaultCheck(root string, store docstore.Store) *VaultCheck {
	return &VaultCheck{root: root, store: store}
}

func (c *VaultCheck) Name() string {
	return "Vault"
}

func (c *VaultCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	info, err := os.Stat(c.root)
	switch {
	case os.IsNotExist(err):
		result.Items = append(result.Items, CheckItem{
			Label:  c.root,
			Status: StatusFail,
			Detail: "directory does not exist",
		})
		return result
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  c.root,
			Status: StatusFail,
			Detail: fmt.Sprintf("inaccessible: %v", err),
		})
		return result
	case !info.IsDir():
		result.Items = append(result.Items, CheckItem{
			Label:  c.root,
			Status: StatusFail,
			Detail: "path is not a directory",
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  c.root,
		Status: StatusPass,
	})

	docs, err := c.store.List(ctx)
	switch {
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "documents",
			Status: StatusFail,
			Detail: fmt.Sprintf("list failed: %v", err),
		})
	case len(docs) == 0:
		result.Items = append(result.Items, CheckItem{
			Label:  "documents",
			Status: StatusWarn,
			Detail: "no documents match the include globs",
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "documents",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d found", len(docs)),
		})
	}

	return result
}
