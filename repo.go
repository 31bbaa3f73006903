// Package git implements a content-addressed, git-compatible version
// control core: object database, staging index, reference namespace,
// and the working-tree operations (add, rm, status, commit, checkout,
// log) built on top of them.
package git

import (
	"path"
	"regexp"
	"strings"

	"github.com/bokuyemskyy/mgit/backend"
	"github.com/bokuyemskyy/mgit/backend/fsbackend"
	"github.com/bokuyemskyy/mgit/env"
	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/config"
	"github.com/bokuyemskyy/mgit/ginternals/index"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
	"github.com/bokuyemskyy/mgit/internal/pathutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Repository represents a git repository: the gitdir's backend (objects
// and refs) plus the config and working tree it was opened against.
// A Git repository is the .git/ folder inside a project, tracking all
// changes made to the files living next to it.
type Repository struct {
	cfg     *config.Config
	backend backend.Backend
}

// InitOptions contains all the optional data used to initialize a
// repository
type InitOptions struct {
	// IsBare represents whether a bare repository will be created or not
	IsBare bool
	// InitialBranchName overrides the name of the branch HEAD will point
	// to. Defaults to cfg.DefaultBranchName() (init.defaultBranch, or
	// "main" if unset).
	InitialBranchName string
	// Backend represents the underlying backend to use to init the
	// repository and interact with the odb. Defaults to the filesystem.
	Backend backend.Backend
	// FS represents the filesystem implementation backing both the
	// gitdir and the working tree. Defaults to the real OS filesystem.
	FS afero.Fs
}

// Init creates a new git repository at path, by creating the .git
// directory inside it, which is where almost everything git stores and
// manipulates is located. A bare repository gets the same path/.git
// layout, with core.bare set and no working tree.
func Init(path string) (*Repository, error) {
	return InitWithOptions(path, InitOptions{})
}

// InitWithOptions creates a new git repository at path with the given
// options. Calling Init a second time on the same path is idempotent:
// the existing HEAD is left untouched.
func InitWithOptions(repoPath string, opts InitOptions) (*Repository, error) {
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	cfg, err := config.LoadConfig(env.NewFromOs(), config.LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: repoPath,
		IsBare:           opts.IsBare,
		SkipGitDirLookUp: true,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not load config: %w", err)
	}

	b := opts.Backend
	if b == nil {
		b = fsbackend.New(cfg)
	}
	if err := b.Init(); err != nil {
		return nil, xerrors.Errorf("could not initialize repository: %w", err)
	}

	branchName := opts.InitialBranchName
	if branchName == "" {
		branchName = cfg.DefaultBranchName()
	}
	headRef := ginternals.NewSymbolicReference(ginternals.Head, ginternals.LocalBranchFullName(branchName))
	if err := b.WriteReferenceSafe(headRef); err != nil && !xerrors.Is(err, ginternals.ErrRefExists) {
		return nil, xerrors.Errorf("could not write HEAD: %w", err)
	}

	cfg.UpdateIsBare(opts.IsBare)
	if err := cfg.Save(); err != nil {
		return nil, xerrors.Errorf("could not persist config: %w", err)
	}

	return &Repository{cfg: cfg, backend: b}, nil
}

// OpenOptions contains all the optional data used to open a repository
type OpenOptions struct {
	// IsBare represents whether the repository is expected to be bare
	IsBare bool
	// Backend represents the underlying backend to use to interact
	// with the odb. Defaults to the filesystem.
	Backend backend.Backend
	// FS represents the filesystem implementation backing both the
	// gitdir and the working tree. Defaults to the real OS filesystem.
	FS afero.Fs
}

// Open loads an existing git repository by reading its config file and
// verifying HEAD exists, returning a Repository instance.
func Open(repoPath string) (*Repository, error) {
	return OpenWithOptions(repoPath, OpenOptions{})
}

// OpenWithOptions loads an existing git repository with the given options.
func OpenWithOptions(repoPath string, opts OpenOptions) (*Repository, error) {
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	cfg, err := config.LoadConfig(env.NewFromOs(), config.LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: repoPath,
		IsBare:           opts.IsBare,
	})
	if err != nil {
		if xerrors.Is(err, pathutil.ErrNoRepo) {
			return nil, xerrors.Errorf("%s: %w", repoPath, ginternals.ErrNotARepository)
		}
		return nil, xerrors.Errorf("could not load config: %w", err)
	}

	b := opts.Backend
	if b == nil {
		b = fsbackend.New(cfg)
	}

	// since we can't check if the directory exists on disk to validate
	// if the repo exists, we instead check that HEAD is readable (it
	// should always be there in a valid repository, even before the
	// branch it points at has a first commit)
	if _, err := b.ReferenceShallow(ginternals.Head); err != nil {
		return nil, xerrors.Errorf("%s: %w", repoPath, ginternals.ErrNotARepository)
	}

	if version, ok := cfg.RepoFormatVersion(); ok && version != 0 {
		return nil, xerrors.Errorf("version %d: %w", version, ginternals.ErrUnsupportedVersion)
	}

	return &Repository{cfg: cfg, backend: b}, nil
}

// Close releases any resource held open by the repository's backend
func (r *Repository) Close() error {
	return r.backend.Close()
}

// Config returns the repository's aggregated configuration
func (r *Repository) Config() *config.Config {
	return r.cfg
}

// Backend returns the repository's object/reference store
func (r *Repository) Backend() backend.Backend {
	return r.backend
}

// IsBare returns whether the repository has no working tree
func (r *Repository) IsBare() bool {
	return r.cfg.WorkTreePath == ""
}

// shortHashPattern matches a candidate short or full hex object id
var shortHashPattern = regexp.MustCompile(`^[0-9A-Fa-f]{4,40}$`)

// Find resolves name to a single Oid, following spec.md §4.3's
// resolution order: HEAD special-case, short-hash prefix lookup, then
// refs/tags, refs/heads, refs/remotes in that order. When typ is a
// non-zero object.Type and follow is true, the result is peeled
// (tag → object, commit → tree) until it matches typ.
func (r *Repository) Find(name string, typ object.Type, follow bool) (githash.Oid, error) {
	oid, err := r.resolveName(name)
	if err != nil {
		return githash.NullOid, err
	}
	if typ == 0 || !follow {
		return oid, nil
	}
	return r.peel(oid, typ)
}

func (r *Repository) resolveName(name string) (githash.Oid, error) {
	if name == ginternals.Head {
		ref, err := r.backend.Reference(ginternals.Head)
		if err != nil {
			return githash.NullOid, xerrors.Errorf("could not resolve HEAD: %w", err)
		}
		return ref.Target(), nil
	}

	var candidates []githash.Oid

	if shortHashPattern.MatchString(name) {
		prefix := strings.ToLower(name)
		err := r.backend.WalkObjectIDs(func(oid githash.Oid) error {
			if strings.HasPrefix(oid.String(), prefix) {
				candidates = append(candidates, oid)
			}
			return nil
		})
		if err != nil {
			return githash.NullOid, xerrors.Errorf("could not enumerate objects: %w", err)
		}
	}

	refCandidates := []string{
		ginternals.LocalTagFullName(name),
		ginternals.LocalBranchFullName(name),
		path.Join("refs", "remotes", name),
	}
	for _, full := range refCandidates {
		ref, err := r.backend.Reference(full)
		switch {
		case err == nil:
			candidates = append(candidates, ref.Target())
		case xerrors.Is(err, ginternals.ErrRefNotFound):
			// not a candidate, try the next ref namespace
		default:
			return githash.NullOid, err
		}
	}

	candidates = dedupOids(candidates)
	switch len(candidates) {
	case 0:
		return githash.NullOid, xerrors.Errorf("%q: %w", name, ginternals.ErrObjectNotFound)
	case 1:
		return candidates[0], nil
	default:
		return githash.NullOid, ambiguousErr(name, candidates)
	}
}

// peel follows tag.object/commit.tree links until an object of the
// requested type is reached
func (r *Repository) peel(oid githash.Oid, typ object.Type) (githash.Oid, error) {
	for {
		o, err := r.backend.Object(oid)
		if err != nil {
			return githash.NullOid, xerrors.Errorf("could not peel %s: %w", oid.String(), err)
		}
		if o.Type() == typ {
			return oid, nil
		}

		switch {
		case o.Type() == object.TypeTag:
			tag, tagErr := o.AsTag()
			if tagErr != nil {
				return githash.NullOid, tagErr
			}
			oid = tag.Target()
		case o.Type() == object.TypeCommit && typ == object.TypeTree:
			commit, commitErr := o.AsCommit()
			if commitErr != nil {
				return githash.NullOid, commitErr
			}
			oid = commit.TreeID()
		default:
			return githash.NullOid, xerrors.Errorf("%s has no %s: %w", o.Type(), typ, ginternals.ErrObjectUnreachable)
		}
	}
}

func dedupOids(oids []githash.Oid) []githash.Oid {
	seen := make(map[githash.Oid]struct{}, len(oids))
	out := oids[:0]
	for _, o := range oids {
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

func ambiguousErr(name string, candidates []githash.Oid) error {
	hexes := make([]string, len(candidates))
	for i, c := range candidates {
		hexes[i] = c.String()
	}
	return xerrors.Errorf("%q matches multiple objects (%s): %w", name, strings.Join(hexes, ", "), ginternals.ErrObjectAmbiguous)
}

// readIndex loads the staging index from disk, returning an empty
// index if none exists yet
func (r *Repository) readIndex() (*index.Index, error) {
	exists, err := afero.Exists(r.cfg.FS, ginternals.IndexPath(r.cfg))
	if err != nil {
		return nil, xerrors.Errorf("could not check for an existing index: %w", err)
	}
	if !exists {
		return index.New(), nil
	}

	f, err := r.cfg.FS.Open(ginternals.IndexPath(r.cfg))
	if err != nil {
		return nil, xerrors.Errorf("could not open index: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	idx, err := index.Decode(f)
	if err != nil {
		return nil, xerrors.Errorf("could not decode index: %w", err)
	}
	return idx, nil
}

// writeIndex persists idx to disk
func (r *Repository) writeIndex(idx *index.Index) error {
	buf := new(strings.Builder)
	if err := idx.Encode(buf); err != nil {
		return xerrors.Errorf("could not encode index: %w", err)
	}
	if err := afero.WriteFile(r.cfg.FS, ginternals.IndexPath(r.cfg), []byte(buf.String()), 0o644); err != nil {
		return xerrors.Errorf("could not write index: %w", err)
	}
	return nil
}
