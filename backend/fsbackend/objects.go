package fsbackend

import (
	"compress/zlib"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bokuyemskyy/mgit/backend"
	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
	"github.com/bokuyemskyy/mgit/internal/errutil"
	"github.com/bokuyemskyy/mgit/internal/readutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Object returns the object that has the given oid.
// This method can be called concurrently.
func (b *Backend) Object(oid githash.Oid) (*object.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cachedO, found := b.cache.Get(oid); found {
		if o, valid := cachedO.(*object.Object); valid {
			return o, nil
		}
	}

	o, err := b.looseObject(oid)
	if err != nil {
		return nil, err
	}
	b.cache.Add(oid, o)
	return o, nil
}

// looseObject returns the object matching the given Oid, reading it
// straight off disk.
// The format of a loose object is an ascii-encoded type, a space, an
// ascii-encoded length, a NUL byte, then the raw content.
func (b *Backend) looseObject(oid githash.Oid) (o *object.Object, err error) {
	if err := b.ensureLooseObjectsLoaded(); err != nil {
		return nil, err
	}
	if _, exists := b.looseObjects.Load(oid); !exists {
		return nil, xerrors.Errorf("object %s: %w", oid.String(), ginternals.ErrObjectNotFound)
	}

	strOid := oid.String()
	p := ginternals.LooseObjectPath(b.cfg, strOid)
	f, err := b.fs.Open(p)
	if err != nil {
		return nil, xerrors.Errorf("could not get object %s at path %s: %w", strOid, p, err)
	}
	defer errutil.Close(f, &err)

	zlibReader, err := zlib.NewReader(f)
	if err != nil {
		return nil, xerrors.Errorf("could not decompress object %s at path %s: %w", strOid, p, err)
	}
	defer errutil.Close(zlibReader, &err)

	buff, err := ioutil.ReadAll(zlibReader)
	if err != nil {
		return nil, xerrors.Errorf("could not read object %s at path %s: %w", strOid, p, err)
	}

	pointerPos := 0

	typ := readutil.ReadTo(buff, ' ')
	if typ == nil {
		return nil, xerrors.Errorf("could not find object type for %s at path %s: %w", strOid, p, ginternals.ErrMalformed)
	}
	oType, err := object.NewTypeFromString(string(typ))
	if err != nil {
		return nil, xerrors.Errorf("unsupported type %s for object %s at path %s: %w", string(typ), strOid, p, err)
	}
	pointerPos += len(typ)
	pointerPos++ // space

	size := readutil.ReadTo(buff[pointerPos:], 0)
	if size == nil {
		return nil, xerrors.Errorf("could not find object size for %s at path %s: %w", strOid, p, ginternals.ErrMalformed)
	}
	oSize, err := strconv.Atoi(string(size))
	if err != nil {
		return nil, xerrors.Errorf("invalid size %s for object %s at path %s: %w", size, strOid, p, err)
	}
	pointerPos += len(size)
	pointerPos++ // NUL
	oContent := buff[pointerPos:]

	if len(oContent) != oSize {
		return nil, xerrors.Errorf("object %s at path %s: marked as size %d, has %d: %w", strOid, p, oSize, len(oContent), ginternals.ErrMalformed)
	}

	return object.New(oType, oContent), nil
}

// HasObject returns whether an object exists in the odb.
// This method can be called concurrently.
func (b *Backend) HasObject(oid githash.Oid) (bool, error) {
	if err := b.ensureLooseObjectsLoaded(); err != nil {
		return false, err
	}
	_, exists := b.looseObjects.Load(oid)
	return exists, nil
}

// WriteObject adds an object to the odb.
// This method can be called concurrently.
func (b *Backend) WriteObject(o *object.Object) (githash.Oid, error) {
	data, err := o.Compress()
	if err != nil {
		return githash.NullOid, xerrors.Errorf("could not compress object: %w", err)
	}

	oid := o.ID()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureLooseObjectsLoaded(); err != nil {
		return githash.NullOid, err
	}
	if _, exists := b.looseObjects.Load(oid); exists {
		return oid, nil
	}

	sha := oid.String()
	p := ginternals.LooseObjectPath(b.cfg, sha)

	if err := b.fs.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return githash.NullOid, xerrors.Errorf("could not create the destination directory for %s: %w", sha, err)
	}

	// git objects are read-only once written
	if err := afero.WriteFile(b.fs, p, data, 0o444); err != nil {
		return githash.NullOid, xerrors.Errorf("could not persist object %s at path %s: %w", sha, p, err)
	}

	b.looseObjects.Store(oid, struct{}{})
	b.cache.Add(oid, o)
	return oid, nil
}

// WalkObjectIDs runs the provided method on every loose object id known
// to the backend.
func (b *Backend) WalkObjectIDs(f backend.OidWalkFunc) (err error) {
	if err := b.ensureLooseObjectsLoaded(); err != nil {
		return err
	}
	b.looseObjects.Range(func(key, value interface{}) bool {
		err = f(key.(githash.Oid))
		return err == nil
	})
	if xerrors.Is(err, backend.ErrWalkStop) {
		return nil
	}
	return err
}

// ensureLooseObjectsLoaded populates b.looseObjects by walking
// objects/ once, lazily.
func (b *Backend) ensureLooseObjectsLoaded() error {
	var loadErr error
	b.loadOnce.Do(func() {
		p := ginternals.ObjectsPath(b.cfg)
		loadErr = afero.Walk(b.fs, p, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				// an empty repository may not have an objects/ dir yet
				return nil
			}
			if path == p || info.IsDir() {
				return nil
			}

			prefix := filepath.Base(filepath.Dir(path))
			if !isLooseObjectDir(prefix) {
				return nil
			}
			if strings.Contains(info.Name(), ".") {
				return nil
			}

			sha := prefix + info.Name()
			oid, err := githash.FromHex(sha)
			if err != nil {
				return xerrors.Errorf("could not get oid from %s: %w", sha, err)
			}
			b.looseObjects.Store(oid, struct{}{})
			return nil
		})
	})
	return loadErr
}

// isLooseObjectDir checks if a directory name is anything between 00 and ff
func isLooseObjectDir(name string) bool {
	if len(name) != 2 {
		return false
	}
	dirNum, parseErr := strconv.ParseInt(name, 16, 64)
	return parseErr == nil && dirNum >= 0x00 && dirNum <= 0xff
}
