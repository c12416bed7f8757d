// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/model"
)

const (
	formulasExt = ".formulas" // One formula per line
	cellsExt    = ".cells"    // One workbook assignment per line
)

var knownExts = map[string]model.FileKind{
	formulasExt: model.FileKindFormulas,
	cellsExt:    model.FileKindCells,
}

// KindOf reports the kind of file implied by a path's extension.
func KindOf(path string) model.FileKind {
	return knownExts[filepath.Ext(path)]
}

var _ model.FileSystem = FileSystemMulti{}

// FileSystemMulti is an ordered set of FileSystem implementations that are
// tried in order.
type FileSystemMulti []model.FileSystem

func (r FileSystemMulti) Open(ctx context.Context, uri string) ([]model.File, error) {
	for _, fs := range r {
		files, err := fs.Open(ctx, uri)
		if err != nil {
			continue
		}
		return files, nil
	}
	return nil, exc.New(exc.Location{Source: uri}, exc.CodeFileNotFound, fmt.Sprintf("could not open %s from any file system", uri))
}

// FileFilter is a filter function type used to select which files to open when
// the path being opened is a directory. Implementations should return true if
// the file should be opened, false otherwise.
type FileFilter func(ctx context.Context, fname string) bool

type FileSystemLocalOption func(*fileSystemLocal)

// WithOptionFSFactory installs a custom factory function used to generate the
// underlying file system handle. The default value is os.DirFS. The string
// value provided to the factory function is the root directory of the file
// system. All paths given to open are considered relative to this root.
func WithOptionFSFactory(v func(root string) fs.FS) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fsFactory = v
	}
}

// WithOptionFileFilter installs a custom filter function used to select files
// when a target is a directory. The default accepts .formulas and .cells
// files.
func WithOptionFileFilter(v FileFilter) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fileFilter = v
	}
}

type fileSystemLocal struct {
	root       string
	fsFactory  func(string) fs.FS
	fileFilter FileFilter
}

// NewFileSystemLocal creates a new FileSystem that uses the local file system.
func NewFileSystemLocal(root string, options ...FileSystemLocalOption) (model.FileSystem, error) {
	absroot, err := filepath.Abs(root)
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{Source: root}, err)
	}
	result := &fileSystemLocal{
		root:      absroot,
		fsFactory: os.DirFS,
		fileFilter: func(ctx context.Context, fname string) bool {
			return KindOf(fname) != model.FileKindNone
		},
	}
	for _, option := range options {
		option(result)
	}
	return result, nil
}

// Open returns the file at uri or, for a directory, every matching file
// directly inside it sorted by name.
func (r *fileSystemLocal) Open(ctx context.Context, uri string) ([]model.File, error) {
	path := Normalize(uri)
	dir := r.fsFactory(r.root)
	p := filepath.Clean(path)
	if p == "" || p == "/" {
		// fs.ValidPath only allows, and requires, '.' for the root.
		p = "."
	}
	// fs.FS requires an un-rooted path.
	p = strings.TrimPrefix(filepath.ToSlash(p), "/")
	d, err := dir.Open(p)
	if err != nil {
		return nil, fsErr(p, err)
	}
	defer d.Close()
	stat, err := d.Stat()
	if err != nil {
		return nil, fsErr(p, err)
	}
	if !stat.IsDir() {
		f := NewFileFN(path, func() (io.ReadCloser, error) {
			return dir.Open(p)
		}, KindOf(p))
		return []model.File{f}, nil
	}
	rdf, ok := d.(fs.ReadDirFile)
	if !ok {
		return nil, exc.New(exc.Location{Source: path}, exc.CodeFileNotFound, fmt.Sprintf("cannot list directory %s", path))
	}
	dfs, err := rdf.ReadDir(-1)
	if err != nil {
		return nil, fsErr(p, err)
	}
	slices.SortFunc(dfs, func(a fs.DirEntry, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	files := make([]model.File, 0, len(dfs))
	for _, df := range dfs {
		if df.IsDir() {
			continue
		}
		if !r.fileFilter(ctx, df.Name()) {
			continue
		}
		dfPath := filepath.ToSlash(filepath.Join(p, df.Name()))
		f := NewFileFN(dfPath, func() (io.ReadCloser, error) {
			return dir.Open(dfPath)
		}, KindOf(dfPath))
		files = append(files, f)
	}
	if len(files) < 1 {
		return nil, exc.New(exc.Location{Source: path}, exc.CodeFileNotFound, fmt.Sprintf("found directory %s but it is empty", path))
	}
	return files, nil
}

// Normalize converts a target into a rooted path. Targets may be plain paths
// or file URIs. Other URIs are returned as-is for some other file system to
// handle.
func Normalize(target string) string {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "" && u.Scheme != "file") {
		return target
	}
	if u.Scheme == "file" {
		target = u.Path
	}
	if !filepath.IsAbs(target) {
		return filepath.Join("/", target)
	}
	return target
}

func fsErr(path string, err error) error {
	var errT *fs.PathError
	if !errors.As(err, &errT) {
		return exc.WrapUnknown(exc.Location{Source: path}, err)
	}
	switch {
	case errors.Is(errT.Err, fs.ErrNotExist):
		return exc.Wrap(exc.Location{Source: errT.Path}, exc.CodeFileNotFound, errT)
	case errors.Is(errT.Err, fs.ErrPermission):
		return exc.Wrap(exc.Location{Source: errT.Path}, exc.CodePermissionDenied, errT)
	default:
		return exc.WrapUnknown(exc.Location{Source: errT.Path}, errT)
	}
}
