// Package hosting abstracts the remote-repository hosting operations needed
// by the extract-and-publish workflow. The owning organization is explicit
// client configuration, never ambient process state.
package hosting

import (
	"context"
	"fmt"
)

// Visibility controls who can see a provisioned remote.
type Visibility string

const (
	VisibilityPrivate  Visibility = "private"
	VisibilityInternal Visibility = "internal"
	VisibilityPublic   Visibility = "public"
)

// Remote is a provisioned remote location for a module.
type Remote struct {
	FullName string // org/name
	CloneURL string
}

// Backend is the hosting collaborator contract.
type Backend interface {
	// RemoteExists reports whether a remote with the full name exists.
	RemoteExists(ctx context.Context, fullName string) (bool, error)

	// Provision creates a brand-new remote and returns its reference.
	Provision(ctx context.Context, fullName string, visibility Visibility) (*Remote, error)

	// Authenticated reports whether the configured credentials are valid.
	Authenticated(ctx context.Context) (bool, error)
}

// FullName joins an organization and module name into the hosting-side
// identifier.
func FullName(org, name string) string {
	return fmt.Sprintf("%s/%s", org, name)
}
