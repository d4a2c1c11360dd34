package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/company/modkit/internal/fsops"
	"github.com/company/modkit/internal/hosting"
	"github.com/company/modkit/internal/manifest"
	"github.com/company/modkit/internal/registry"
	"github.com/company/modkit/internal/vcs"
)

// ExtractResult reports what extract-and-publish produced.
type ExtractResult struct {
	Name              string
	Remote            string
	GeneratedManifest bool
}

// ExtractAndPublish turns a loose module folder into a cataloged, linked
// module: it validates (or generates) the manifest document, provisions a
// brand-new remote, registers the module, and materializes it back into the
// registry as a linked mirror. This is the only path that creates a registry
// entry from outside Register's normal callers.
func (c *Controller) ExtractAndPublish(ctx context.Context, sourcePath, category string) (*ExtractResult, error) {
	if !fsops.IsDir(sourcePath) {
		return nil, fmt.Errorf("source %q is not a directory", sourcePath)
	}

	m, generated, err := c.extractManifest(sourcePath, category)
	if err != nil {
		return nil, err
	}
	name := m.Name

	ok, err := c.host.Authenticated(ctx)
	if err != nil {
		return nil, &CollaboratorError{Module: name, Phase: "check authentication", Err: err}
	}
	if !ok {
		return nil, &CollaboratorError{Module: name, Phase: "check authentication",
			Err: fmt.Errorf("hosting credentials rejected")}
	}

	fullName := hosting.FullName(c.org, name)
	exists, err := c.host.RemoteExists(ctx, fullName)
	if err != nil {
		return nil, &CollaboratorError{Module: name, Phase: "check remote", Err: err}
	}
	if exists {
		return nil, &RemoteAlreadyExistsError{FullName: fullName}
	}

	remote, err := c.host.Provision(ctx, fullName, c.visibility)
	if err != nil {
		return nil, &CollaboratorError{Module: name, Phase: "provision remote", Err: err}
	}

	src := registry.SourceRef{Remote: remote.CloneURL}
	if err := c.reg.Register(category, m, src); err != nil {
		return nil, err
	}
	// The cataloged entry is a committed step; a later failure leaves it
	// in place for a resumed publish.
	if err := c.persist(); err != nil {
		return nil, err
	}

	e, _ := c.reg.Lookup(name)
	if err := c.publishFiles(ctx, e, sourcePath); err != nil {
		return nil, err
	}

	result := &ExtractResult{Name: name, Remote: remote.CloneURL, GeneratedManifest: generated}
	c.log.Debug("extracted and published module", "module", name, "remote", remote.CloneURL)
	return result, nil
}

// extractManifest reads the source folder's manifest document, generating a
// minimal default when absent.
func (c *Controller) extractManifest(sourcePath, category string) (*manifest.Manifest, bool, error) {
	docPath := filepath.Join(sourcePath, manifest.DocumentName)

	if !fsops.Exists(docPath) {
		m := manifest.Default(filepath.Base(sourcePath), category)
		if err := os.WriteFile(docPath, []byte(manifest.Render(m)), 0o644); err != nil {
			return nil, false, fmt.Errorf("writing default manifest: %w", err)
		}
		return m, true, nil
	}

	data, err := os.ReadFile(docPath)
	if err != nil {
		return nil, false, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := manifest.Parse(string(data))
	if err != nil {
		return nil, false, err
	}
	if m.Name != filepath.Base(sourcePath) {
		return nil, false, &registry.NameMismatchError{Declared: m.Name, Path: sourcePath}
	}
	return m, false, nil
}

// publishFiles materializes the fresh remote as a linked mirror, seeds it
// with the extracted files, and pushes.
func (c *Controller) publishFiles(ctx context.Context, e *registry.Entry, sourcePath string) error {
	name := e.Name()
	dest := c.modulePath(e)

	if fsops.Exists(dest) {
		if err := fsops.Delete(dest); err != nil {
			return &CollaboratorError{Module: name, Phase: "prepare destination", Err: err}
		}
	}
	if err := c.vcs.MaterializeLinked(ctx, e.Source.Remote, dest); err != nil {
		return &CollaboratorError{Module: name, Phase: "materialize link", Err: err}
	}
	if err := fsops.CopyInto(sourcePath, dest); err != nil {
		return &CollaboratorError{Module: name, Phase: "seed module files", Err: err}
	}

	status, err := c.vcs.CommitAndPush(ctx, dest, fmt.Sprintf("Import %s", name))
	if err != nil {
		return &CollaboratorError{Module: name, Phase: "push initial import", Err: err}
	}
	if status != vcs.SyncSuccess {
		return &CollaboratorError{Module: name, Phase: "push initial import",
			Err: fmt.Errorf("fresh remote rejected the import")}
	}

	if rev, revErr := c.vcs.CurrentRevision(dest); revErr == nil {
		e.Source.Revision = rev
	}
	e.State = registry.StateLinkedAttached
	return c.persist()
}
