package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Git-specific errors surfaced to the lifecycle controller.
var (
	// ErrNotRepository indicates the path is not a linked mirror.
	ErrNotRepository = errors.New("not a repository")

	// ErrRemoteUnreachable indicates the remote could not be contacted.
	ErrRemoteUnreachable = errors.New("remote unreachable")

	// ErrNoFastForward indicates the mainline could not be reached by
	// fast-forward.
	ErrNoFastForward = errors.New("cannot fast-forward to mainline")
)

// Compile-time check that Git implements Backend.
var _ Backend = (*Git)(nil)

// Git implements Backend by shelling out to the git binary.
type Git struct{}

// NewGit creates the exec-based backend.
func NewGit() *Git {
	return &Git{}
}

// runGit executes a git command in dir and returns trimmed stdout.
func (g *Git) runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", parseGitError(stderrStr, err)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// parseGitError converts git stderr messages to typed errors.
func parseGitError(stderr string, originalErr error) error {
	lower := strings.ToLower(stderr)

	if strings.Contains(lower, "not a git repository") {
		return fmt.Errorf("%w: %s", ErrNotRepository, stderr)
	}
	if strings.Contains(lower, "could not resolve host") ||
		strings.Contains(lower, "could not read from remote") ||
		strings.Contains(lower, "connection refused") {
		return fmt.Errorf("%w: %s", ErrRemoteUnreachable, stderr)
	}
	if strings.Contains(lower, "not possible to fast-forward") ||
		strings.Contains(lower, "diverging") {
		return fmt.Errorf("%w: %s", ErrNoFastForward, stderr)
	}

	return fmt.Errorf("git error: %s: %w", stderr, originalErr)
}

// MaterializeFrozen clones the remote at the given revision and strips the
// repository metadata, leaving a disconnected snapshot.
func (g *Git) MaterializeFrozen(ctx context.Context, remote, revision, dest string) error {
	if _, err := g.runGit(ctx, "", "clone", remote, dest); err != nil {
		return err
	}
	if revision != "" {
		if _, err := g.runGit(ctx, dest, "checkout", "--detach", revision); err != nil {
			return err
		}
	}
	if err := os.RemoveAll(filepath.Join(dest, ".git")); err != nil {
		return fmt.Errorf("stripping repository metadata: %w", err)
	}
	return nil
}

// MaterializeLinked clones the remote at dest, keeping the mirror connected.
func (g *Git) MaterializeLinked(ctx context.Context, remote, dest string) error {
	_, err := g.runGit(ctx, "", "clone", remote, dest)
	return err
}

// PullLatest fast-forwards the mirror. A pull that cannot fast-forward is an
// error; the engine never merges on the operator's behalf.
func (g *Git) PullLatest(ctx context.Context, path string) error {
	_, err := g.runGit(ctx, path, "pull", "--ff-only")
	return err
}

// CurrentRevisionIsMainline reports whether HEAD sits on the mainline branch.
// A detached HEAD or a checkout of any other branch counts as off-mainline.
func (g *Git) CurrentRevisionIsMainline(path string) (bool, error) {
	// symbolic-ref fails with exit code 1 on a detached HEAD.
	branch, err := g.runGit(context.Background(), path, "symbolic-ref", "-q", "--short", "HEAD")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, err
	}

	mainline, err := g.mainlineBranch(path)
	if err != nil {
		return false, err
	}
	return branch == mainline, nil
}

// ForceMainline checks out the mainline branch and fast-forwards it.
func (g *Git) ForceMainline(path string) error {
	ctx := context.Background()
	mainline, err := g.mainlineBranch(path)
	if err != nil {
		return err
	}
	if _, err := g.runGit(ctx, path, "checkout", mainline); err != nil {
		return err
	}
	if _, err := g.runGit(ctx, path, "merge", "--ff-only", "@{upstream}"); err != nil {
		return err
	}
	return nil
}

// CommitAndPush stages everything, commits, and pushes. A rejected push maps
// to SyncConflict rather than an error: conflict is an expected outcome the
// lifecycle controller acts on.
func (g *Git) CommitAndPush(ctx context.Context, path, message string) (SyncStatus, error) {
	if _, err := g.runGit(ctx, path, "add", "-A"); err != nil {
		return SyncConflict, err
	}

	dirty, err := g.WorkingTreeDirty(path)
	if err != nil {
		return SyncConflict, err
	}
	if dirty {
		if _, err := g.runGit(ctx, path, "commit", "-m", message); err != nil {
			return SyncConflict, err
		}
	}

	if _, err := g.runGit(ctx, path, "push"); err != nil {
		lower := strings.ToLower(err.Error())
		if strings.Contains(lower, "rejected") || strings.Contains(lower, "non-fast-forward") ||
			strings.Contains(lower, "fetch first") {
			return SyncConflict, nil
		}
		return SyncConflict, err
	}
	return SyncSuccess, nil
}

// WorkingTreeDirty reports whether the mirror has staged or unstaged edits.
func (g *Git) WorkingTreeDirty(path string) (bool, error) {
	out, err := g.runGit(context.Background(), path, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// CurrentRevision returns the working revision's full identifier.
func (g *Git) CurrentRevision(path string) (string, error) {
	return g.runGit(context.Background(), path, "rev-parse", "HEAD")
}

// mainlineBranch resolves the remote's default branch, falling back to the
// local notion when origin/HEAD is not recorded.
func (g *Git) mainlineBranch(path string) (string, error) {
	ctx := context.Background()
	out, err := g.runGit(ctx, path, "rev-parse", "--abbrev-ref", "origin/HEAD")
	if err == nil && out != "" {
		return strings.TrimPrefix(out, "origin/"), nil
	}

	// origin/HEAD is unset on some clones; ask the remote.
	out, err = g.runGit(ctx, path, "remote", "show", "origin")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if after, found := strings.CutPrefix(line, "HEAD branch:"); found {
			return strings.TrimSpace(after), nil
		}
	}
	return "", fmt.Errorf("could not determine mainline branch for %s", path)
}
