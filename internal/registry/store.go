package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/company/modkit/internal/manifest"
	"github.com/company/modkit/internal/version"
)

// MappingFile is the durable mapping file name inside the modules directory.
const MappingFile = "registry.yml"

const mappingVersion = 1

// Store persists a Registry as manifest documents plus a mapping file.
// Modules live at <dir>/<category>/<name>/ with the manifest document inside;
// the mapping file records category, source reference, and last-known link
// state per module. Callers acquire the store lock around each whole
// read-modify-write operation so concurrent invocations serialize.
type Store struct {
	Dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// mappingFile is the on-disk shape of the mapping file.
type mappingFile struct {
	Version int                      `yaml:"version"`
	Modules map[string]mappingRecord `yaml:"modules"`
}

type mappingRecord struct {
	Category    string    `yaml:"category"`
	Source      SourceRef `yaml:"source"`
	State       LinkState `yaml:"state"`
	Version     string    `yaml:"version,omitempty"`
	ContentHash string    `yaml:"content_hash,omitempty"`
}

// ModulePath returns the on-disk folder for a module. The folder name is the
// module name, which is why a manifest's declared name must match it.
func (s *Store) ModulePath(category, name string) string {
	return filepath.Join(s.Dir, category, name)
}

// ManifestPath returns the manifest document path for a module.
func (s *Store) ManifestPath(category, name string) string {
	return filepath.Join(s.ModulePath(category, name), manifest.DocumentName)
}

// Load reads the full durable state into a fresh Registry. A missing mapping
// file yields an empty registry.
func (s *Store) Load() (*Registry, error) {
	reg := New()

	data, err := os.ReadFile(filepath.Join(s.Dir, MappingFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return reg, nil
		}
		return nil, fmt.Errorf("reading mapping file: %w", err)
	}

	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing mapping file: %w", err)
	}
	if mf.Version != mappingVersion {
		return nil, fmt.Errorf("unsupported mapping file version %d", mf.Version)
	}

	for name, rec := range mf.Modules {
		if !ValidState(rec.State) {
			return nil, fmt.Errorf("module %q has unknown link state %q", name, rec.State)
		}

		m, err := s.loadManifest(rec.Category, name)
		if err != nil {
			return nil, err
		}

		reg.entries[name] = &Entry{
			Manifest:    m,
			Category:    rec.Category,
			State:       rec.State,
			Source:      rec.Source,
			ContentHash: rec.ContentHash,
		}
	}

	return reg, nil
}

// loadManifest reads and parses a module's manifest document, enforcing the
// name-derivable-from-path invariant.
func (s *Store) loadManifest(category, name string) (*manifest.Manifest, error) {
	path := s.ManifestPath(category, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest for %s: %w", name, err)
	}

	m, err := manifest.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing manifest for %s: %w", name, err)
	}
	if m.Name != name {
		return nil, &NameMismatchError{Declared: m.Name, Path: s.ModulePath(category, name)}
	}
	return m, nil
}

// Save writes the full durable state: the mapping file (atomically, via a
// temp file rename) and a manifest document for any entry that has none on
// disk yet.
func (s *Store) Save(reg *Registry) error {
	mf := mappingFile{
		Version: mappingVersion,
		Modules: make(map[string]mappingRecord, reg.Len()),
	}

	for _, e := range reg.All() {
		mf.Modules[e.Name()] = mappingRecord{
			Category:    e.Category,
			Source:      e.Source,
			State:       e.State,
			Version:     e.Manifest.Version.String(),
			ContentHash: e.ContentHash,
		}

		if err := s.ensureManifest(e); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(mf)
	if err != nil {
		return fmt.Errorf("marshaling mapping file: %w", err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating modules dir: %w", err)
	}

	path := filepath.Join(s.Dir, MappingFile)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing mapping file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("saving mapping file: %w", err)
	}

	return nil
}

// ensureManifest writes a rendered manifest document for entries that have
// none yet (freshly cataloged modules that were never materialized).
func (s *Store) ensureManifest(e *Entry) error {
	path := s.ManifestPath(e.Category, e.Name())
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating module dir for %s: %w", e.Name(), err)
	}
	if err := os.WriteFile(path, []byte(manifest.Render(e.Manifest)), 0o644); err != nil {
		return fmt.Errorf("writing manifest for %s: %w", e.Name(), err)
	}
	return nil
}

// ReloadManifest re-reads a module's manifest document from disk and swaps
// it into the entry, returning the previously recorded version. The update
// workflow uses this after pulling the latest revision.
func (s *Store) ReloadManifest(e *Entry) (version.Version, error) {
	previous := e.Manifest.Version

	m, err := s.loadManifest(e.Category, e.Name())
	if err != nil {
		return previous, err
	}
	e.Manifest = m
	return previous, nil
}
