// Package vcs abstracts the version-control operations the lifecycle
// controller needs. The engine never inspects repository internals; it only
// asks the backend to materialize, pull, and push.
package vcs

import "context"

// SyncStatus is the outcome of a commit-and-push attempt.
type SyncStatus int

const (
	// SyncSuccess means local changes reached the remote.
	SyncSuccess SyncStatus = iota
	// SyncConflict means the remote rejected the push and manual
	// reconciliation is needed.
	SyncConflict
)

// Backend is the version-control collaborator contract.
type Backend interface {
	// MaterializeFrozen produces a disconnected snapshot of the remote at
	// the given revision (empty revision means the mainline tip) at dest.
	MaterializeFrozen(ctx context.Context, remote, revision, dest string) error

	// MaterializeLinked produces an editable mirror at dest that stays
	// connected to the remote for two-way sync.
	MaterializeLinked(ctx context.Context, remote, dest string) error

	// PullLatest fast-forwards a linked mirror to the mainline tip.
	PullLatest(ctx context.Context, path string) error

	// CurrentRevisionIsMainline reports whether the mirror's working
	// revision is the tracked mainline revision.
	CurrentRevisionIsMainline(path string) (bool, error)

	// ForceMainline moves a detached mirror back onto the mainline.
	ForceMainline(path string) error

	// CommitAndPush records local changes and pushes them to the remote.
	CommitAndPush(ctx context.Context, path, message string) (SyncStatus, error)

	// WorkingTreeDirty reports whether the mirror has uncommitted edits.
	WorkingTreeDirty(path string) (bool, error)

	// CurrentRevision returns the mirror's working revision identifier.
	CurrentRevision(path string) (string, error)
}
