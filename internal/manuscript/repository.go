package manuscript

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/fsutil"
)

// Directory layout of one manuscript.
const (
	ImagesDir            = "images"
	StatesDir            = "states"
	ExportTranscriptsDir = "exportTranscripts"
	ImportTranscriptsDir = "importTranscripts"

	// ConfigExt is the extension of the metadata file <name>.cfg.
	ConfigExt = ".cfg"
)

var subdirectories = []string{ImagesDir, StatesDir, ExportTranscriptsDir, ImportTranscriptsDir}

// Manuscript is one catalog entry.
type Manuscript struct {
	// Name is the derived directory name.
	Name string `json:"name"`

	// Dir is the absolute path of the manuscript directory.
	Dir string `json:"dir"`

	Metadata Metadata `json:"metadata"`
}

// ImagesPath returns the directory holding the page scans.
func (m Manuscript) ImagesPath() string { return filepath.Join(m.Dir, ImagesDir) }

// StatesPath returns the directory holding per-page annotation CSVs.
func (m Manuscript) StatesPath() string { return filepath.Join(m.Dir, StatesDir) }

// ExportTranscriptsPath returns the directory for exported transcriptions.
func (m Manuscript) ExportTranscriptsPath() string { return filepath.Join(m.Dir, ExportTranscriptsDir) }

// ImportTranscriptsPath returns the directory for imported transcriptions.
func (m Manuscript) ImportTranscriptsPath() string { return filepath.Join(m.Dir, ImportTranscriptsDir) }

// ConfigPath returns the path of the metadata file.
func (m Manuscript) ConfigPath() string { return filepath.Join(m.Dir, m.Name+ConfigExt) }

// Repository is the file-system catalog rooted at a manuscripts directory.
//
// All paths are absolute; the process working directory is never changed, so
// a Repository is safe for concurrent use. Create calls are serialized within
// the process and rely on os.Mkdir exclusivity across processes.
type Repository struct {
	root   string
	logger *log.Logger
	mu     sync.Mutex
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for catalog events.
func WithLogger(l *log.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRepository opens the catalog at root, creating the directory if needed.
func NewRepository(root string, opts ...Option) (*Repository, error) {
	if root == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "", "manuscripts root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, root, "failed to resolve manuscripts root")
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, abs, "failed to create manuscripts root")
	}

	r := &Repository{
		root:   abs,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Root returns the absolute path of the manuscripts directory.
func (r *Repository) Root() string {
	return r.root
}

// Create registers a new manuscript: it derives the directory name from the
// Work title, creates the directory tree and writes <name>.cfg.
//
// If a manuscript with the same derived name exists, Create fails with a
// COLLISION error and leaves the existing manuscript untouched. Any other
// failure removes the partially created directory.
func (r *Repository) Create(md Metadata) (*Manuscript, error) {
	if err := md.Validate(); err != nil {
		return nil, err
	}
	name, err := DeriveName(md.Value(KeyWork))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Join(r.root, name)
	if err := os.Mkdir(dir, 0755); err != nil {
		if os.IsExist(err) {
			return nil, errs.New(errs.ErrCodeCollision, name, "a manuscript with this derived name already exists")
		}
		return nil, errs.Wrap(errs.ErrCodeIO, err, name, "failed to create manuscript directory")
	}

	m := &Manuscript{Name: name, Dir: dir, Metadata: md}
	if err := populate(m); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			r.logger.Error("failed to clean up partial manuscript", "name", name, "err", rmErr)
		}
		return nil, err
	}

	r.logger.Info("created manuscript", "name", name, "work", md.Value(KeyWork))
	return m, nil
}

func populate(m *Manuscript) error {
	for _, sub := range subdirectories {
		if err := os.Mkdir(filepath.Join(m.Dir, sub), 0755); err != nil {
			return errs.Wrap(errs.ErrCodeIO, err, m.Name, "failed to create %s directory", sub)
		}
	}

	data, err := m.Metadata.MarshalText()
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(m.ConfigPath(), data, 0644); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, m.Name, "failed to write metadata")
	}
	return nil
}

// List scans the root and returns every readable manuscript with its
// metadata, ordered by directory name. See Scan for what is skipped.
func (r *Repository) List() ([]Manuscript, error) {
	manuscripts, _, err := r.Scan()
	return manuscripts, err
}

// Scan is List that also returns why directories were left out. Directories
// without a metadata file are skipped with a warning; a directory whose metadata is
// ambiguous or unreadable is skipped with a warning and its coded error is
// added to skipped. Only a failure to read the root itself is returned as err.
func (r *Repository) Scan() (manuscripts []Manuscript, skipped []error, err error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, nil, errs.Wrap(errs.ErrCodeIO, err, r.root, "failed to read manuscripts root")
	}

	manuscripts = make([]Manuscript, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		m, err := r.load(entry.Name())
		if errs.Is(err, errs.ErrCodeNotFound) {
			r.logger.Warn("skipping directory without metadata", "dir", entry.Name())
			continue
		}
		if err != nil {
			r.logger.Warn("skipping manuscript", "dir", entry.Name(), "code", errs.GetCode(err), "err", err)
			skipped = append(skipped, err)
			continue
		}
		manuscripts = append(manuscripts, *m)
	}

	r.logger.Debug("listed manuscripts", "count", len(manuscripts), "skipped", len(skipped))
	return manuscripts, skipped, nil
}

// Open loads one manuscript by its derived name.
func (r *Repository) Open(name string) (*Manuscript, error) {
	if err := errs.ValidateFileName(name); err != nil {
		return nil, err
	}
	info, err := os.Stat(filepath.Join(r.root, name))
	if err != nil || !info.IsDir() {
		return nil, errs.New(errs.ErrCodeNotFound, name, "manuscript not found")
	}
	return r.load(name)
}

func (r *Repository) load(name string) (*Manuscript, error) {
	dir := filepath.Join(r.root, name)
	cfg, err := findConfig(dir, name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(cfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, name, "failed to open metadata")
	}
	defer f.Close()

	md, err := ParseMetadata(f)
	if err != nil {
		return nil, errs.Wrap(errs.GetCode(err), err, name, "failed to parse %s", filepath.Base(cfg))
	}
	return &Manuscript{Name: name, Dir: dir, Metadata: md}, nil
}

// findConfig picks the metadata file of a manuscript directory: <name>.cfg
// when present, otherwise the only .cfg file.
func findConfig(dir, name string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeIO, err, name, "failed to read manuscript directory")
	}

	candidates := make([]string, 0, 1)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ConfigExt {
			continue
		}
		if e.Name() == name+ConfigExt {
			return filepath.Join(dir, e.Name()), nil
		}
		candidates = append(candidates, e.Name())
	}

	switch len(candidates) {
	case 0:
		return "", errs.New(errs.ErrCodeNotFound, name, "no %s metadata file", ConfigExt)
	case 1:
		return filepath.Join(dir, candidates[0]), nil
	default:
		return "", errs.New(errs.ErrCodeAmbiguousMetadata, name, "found %d metadata files: %s", len(candidates), strings.Join(candidates, ", "))
	}
}
