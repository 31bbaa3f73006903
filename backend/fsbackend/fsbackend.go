// Package fsbackend implements backend.Backend on top of an afero
// filesystem: loose objects under objects/, references as plain files
// under refs/ and HEAD.
package fsbackend

import (
	"sync"

	"github.com/bokuyemskyy/mgit/backend"
	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/config"
	"github.com/bokuyemskyy/mgit/internal/cache"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// we make sure the struct implements the interface
var _ backend.Backend = (*Backend)(nil)

// defaultCacheSize is the number of decompressed objects kept in memory
// between Object() calls
const defaultCacheSize = 256

// Backend is a backend.Backend implementation that stores everything as
// loose files on an afero.Fs
type Backend struct {
	fs  afero.Fs
	cfg *config.Config

	cache *cache.LRU

	// looseObjects tracks which oids have been seen on disk, populated
	// lazily by the first directory listing so repeated lookups of a
	// missing object don't repeatedly stat the filesystem
	looseObjects sync.Map
	loadOnce     sync.Once

	mu sync.Mutex
}

// New returns a new Backend backed by the filesystem described by cfg
func New(cfg *config.Config) *Backend {
	return &Backend{
		fs:    cfg.FS,
		cfg:   cfg,
		cache: cache.NewLRU(defaultCacheSize),
	}
}

// Init initializes a new repository: creates the directory skeleton,
// writes the description file, and writes an empty info/exclude file.
func (b *Backend) Init() error {
	dirs := []string{
		ginternals.ObjectsPath(b.cfg),
		ginternals.TagsPath(b.cfg),
		ginternals.LocalBranchesPath(b.cfg),
		ginternals.ObjectsInfoPath(b.cfg),
	}
	for _, d := range dirs {
		if err := b.fs.MkdirAll(d, 0o750); err != nil {
			return xerrors.Errorf("could not create directory %s: %w", d, err)
		}
	}

	description := []byte("Unnamed repository; edit this file 'description' to name the repository.\n")
	if err := afero.WriteFile(b.fs, ginternals.DescriptionFilePath(b.cfg), description, 0o644); err != nil {
		return xerrors.Errorf("could not create description file: %w", err)
	}

	if err := afero.WriteFile(b.fs, ginternals.InfoExcludePath(b.cfg), []byte{}, 0o644); err != nil {
		return xerrors.Errorf("could not create info/exclude file: %w", err)
	}

	return nil
}

// Close releases resources held by the backend
func (b *Backend) Close() error {
	b.cache.Clear()
	return nil
}
