package ginternals

import "errors"

// Error kinds shared across the data plane. Components return these
// (wrapped with more context) instead of inventing ad-hoc strings, so
// callers can always errors.Is/errors.As against a stable sentinel.
var (
	// ErrObjectNotFound is returned when a requested object doesn't exist
	// in the object database
	ErrObjectNotFound = errors.New("object not found")
	// ErrObjectAmbiguous is returned when a short hash matches more than
	// one object
	ErrObjectAmbiguous = errors.New("ambiguous object name")
	// ErrObjectUnreachable is returned when peeling a tag/commit chain
	// cannot reach the requested kind
	ErrObjectUnreachable = errors.New("object unreachable for the requested type")
	// ErrNotARepository is returned when a path doesn't contain a valid
	// repository
	ErrNotARepository = errors.New("not a git repository")
	// ErrRepositoryExists is returned by Init when a repository already
	// exists and reinitialization isn't applicable
	ErrRepositoryExists = errors.New("repository already exists")
	// ErrUnsupportedVersion is returned when core.repositoryformatversion
	// or the index version isn't supported
	ErrUnsupportedVersion = errors.New("unsupported format version")
	// ErrPathOutsideWorktree is returned when an operation is given a path
	// that escapes the working tree
	ErrPathOutsideWorktree = errors.New("path is outside the working tree")
	// ErrPathConflict is returned by the tree builder when a single path
	// segment is both a file and a directory
	ErrPathConflict = errors.New("path conflicts with an existing entry")
	// ErrWriteConflict is returned by checkout when uncommitted changes
	// would be overwritten and --force wasn't given
	ErrWriteConflict = errors.New("local changes would be overwritten")
	// ErrNothingToCommit is returned by commit when the index is empty
	ErrNothingToCommit = errors.New("nothing to commit")
	// ErrBadMode is returned when an index entry mode_type isn't one of
	// the supported values
	ErrBadMode = errors.New("unsupported index entry mode")
	// ErrMalformed is returned when on-disk data (object framing, index
	// header, KVLM, tree entries) doesn't match its expected shape
	ErrMalformed = errors.New("malformed data")
)
