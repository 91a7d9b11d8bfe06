package xmanager

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/shuiruge/xmanager/internal/gitinfo"
)

const (
	// timestampLayout names run directories so they sort chronologically.
	// Second resolution; runs started within the same second share a directory.
	timestampLayout = "2006-01-02-15-04-05"

	sourceFileName = "source"
	metaFileName   = "meta.json"
	paramsFileName = "params.json"
)

// Policy controls how Serialize treats values outside the JSON data model.
type Policy int

const (
	// PolicyStrict fails serialization with a SerializationError naming the
	// offending field and type.
	PolicyStrict Policy = iota

	// PolicyLenient silently drops the offending member from the output.
	PolicyLenient
)

// Manager binds one experiment run to a timestamped output directory and
// holds the named fields to be serialized to params.json.
//
// A Manager is intended for exclusive use by a single goroutine. Mutating
// fields concurrently with SaveParams is undefined.
type Manager struct {
	rootPath string
	policy   Policy

	// Fields in assignment order. The run directory path is deliberately
	// not a field, so it can never leak into the serialized output.
	names  []string
	values map[string]any

	sourcePath func() (string, bool)
	now        func() time.Time
}

// Option configures a Manager before its run directory is created.
type Option func(*Manager)

// WithPolicy sets the non-serializable-value policy. The default is
// PolicyStrict. The policy is fixed for the lifetime of the Manager and
// applied uniformly to every serialization.
func WithPolicy(p Policy) Option {
	return func(m *Manager) {
		m.policy = p
	}
}

// WithSourcePath overrides how the invoking program's source file is located.
// The function returns the path and whether one could be resolved. The
// default inspects os.Args.
func WithSourcePath(fn func() (string, bool)) Option {
	return func(m *Manager) {
		m.sourcePath = fn
	}
}

// WithClock overrides the time source used for the run directory name and
// run metadata.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// New creates a Manager with default options. See NewWithOptions.
func New(baseSegments ...string) (*Manager, error) {
	return NewWithOptions(baseSegments)
}

// NewWithOptions joins the base segments, appends a timestamp directory name,
// and creates the run directory with all parents. It then snapshots the
// invoking program's source into the run directory (best effort; skipped when
// no source path resolves) and writes run metadata to meta.json.
func NewWithOptions(baseSegments []string, opts ...Option) (*Manager, error) {
	if len(baseSegments) == 0 {
		return nil, fmt.Errorf("at least one base path segment is required")
	}

	m := &Manager{
		policy:     PolicyStrict,
		values:     make(map[string]any),
		sourcePath: argvSourcePath,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	base, err := filepath.Abs(filepath.Join(baseSegments...))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	m.rootPath = filepath.Join(base, m.now().Format(timestampLayout))
	if err := os.MkdirAll(m.rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	if err := m.SnapshotSource(); err != nil {
		return nil, err
	}
	if err := m.writeMeta(); err != nil {
		return nil, err
	}

	return m, nil
}

// Root returns the absolute path of the run directory.
func (m *Manager) Root() string {
	return m.rootPath
}

// Set assigns a named field for later serialization. Setting an existing
// name overwrites its value and keeps its original position.
func (m *Manager) Set(name string, value any) {
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = value
}

// Get returns the current value of a field.
func (m *Manager) Get(name string) (any, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Fields returns a copy of the current field set.
func (m *Manager) Fields() map[string]any {
	fields := make(map[string]any, len(m.values))
	for name, v := range m.values {
		fields[name] = v
	}
	return fields
}

// SnapshotSource copies the invoking program's source file to <root>/source.
// It is a no-op when no source path can be resolved, such as under an
// interactive interpreter or when argv[0] does not name a real file.
func (m *Manager) SnapshotSource() error {
	src, ok := m.sourcePath()
	if !ok {
		return nil
	}
	info, err := os.Stat(src)
	if err != nil || info.IsDir() {
		// No identifiable source file; a missing snapshot is not an error.
		return nil
	}
	return copyFile(src, m.StaticPath(sourceFileName))
}

// runMeta is written to meta.json at construction. The uuid run ID keeps
// runs distinguishable even when two share a same-second directory name.
type runMeta struct {
	RunID     string        `json:"run_id"`
	CreatedAt time.Time     `json:"created_at"`
	Source    string        `json:"source,omitempty"`
	Git       *gitinfo.Info `json:"git,omitempty"`
}

func (m *Manager) writeMeta() error {
	meta := runMeta{
		RunID:     uuid.NewString(),
		CreatedAt: m.now(),
	}
	if src, ok := m.sourcePath(); ok {
		meta.Source = src
	}
	if wd, err := os.Getwd(); err == nil {
		meta.Git = gitinfo.Capture(wd)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run metadata: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(m.StaticPath(metaFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", metaFileName, err)
	}
	return nil
}

// argvSourcePath resolves the invoking program's entry file from os.Args.
// Interactive invocations have an empty argv[0] and no resolvable source.
func argvSourcePath() (string, bool) {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return "", false
	}
	path, err := filepath.Abs(os.Args[0])
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return path, true
}

func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
