// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/model"
)

func testFS() fs.FS {
	return fstest.MapFS{
		"book/b.formulas":   {Data: []byte("A1+1\n")},
		"book/a.cells":      {Data: []byte("A1=1\n")},
		"book/notes.txt":    {Data: []byte("ignored")},
		"book/sub/c.cells":  {Data: []byte("A2=2\n")},
		"empty/readme.md":   {Data: []byte("nothing here")},
		"single.formulas":   {Data: []byte("1+2")},
		"other/x.formulas2": {Data: []byte("")},
	}
}

func open(t *testing.T, uri string, opts ...FileSystemLocalOption) ([]model.File, error) {
	t.Helper()
	mfs := testFS()
	opts = append([]FileSystemLocalOption{WithOptionFSFactory(func(string) fs.FS { return mfs })}, opts...)
	local, err := NewFileSystemLocal(".", opts...)
	require.NoError(t, err)
	return local.Open(context.Background(), uri)
}

func read(t *testing.T, f model.File) string {
	t.Helper()
	body, err := f.Body(context.Background())
	require.NoError(t, err)
	defer body.Close()
	b, err := io.ReadAll(body)
	require.NoError(t, err)
	return string(b)
}

func TestOpenDirectory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	files, err := open(t, "book")
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, "book/a.cells", files[0].Path(ctx))
	require.Equal(t, model.FileKindCells, files[0].Kind(ctx))
	require.Equal(t, "book/b.formulas", files[1].Path(ctx))
	require.Equal(t, model.FileKindFormulas, files[1].Kind(ctx))
	require.Equal(t, "A1+1\n", read(t, files[1]))
	// Bodies can be read more than once.
	require.Equal(t, "A1+1\n", read(t, files[1]))
}

func TestOpenFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	files, err := open(t, "file:///single.formulas")
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "/single.formulas", files[0].Path(ctx))
	require.Equal(t, "1+2", read(t, files[0]))
}

func TestOpenErrors(t *testing.T) {
	t.Parallel()

	_, err := open(t, "missing.formulas")
	var e exc.Exception
	require.True(t, errors.As(err, &e))
	require.Equal(t, exc.CodeFileNotFound, e.Code())

	_, err = open(t, "empty")
	require.True(t, errors.As(err, &e))
	require.Equal(t, exc.CodeFileNotFound, e.Code())
}

func TestFileFilter(t *testing.T) {
	t.Parallel()

	files, err := open(t, "book", WithOptionFileFilter(func(ctx context.Context, fname string) bool {
		return fname == "notes.txt"
	}))
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, model.FileKindNone, files[0].Kind(context.Background()))
}

func TestFileSystemMulti(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	local, err := NewFileSystemLocal(".", WithOptionFSFactory(func(string) fs.FS { return testFS() }))
	require.NoError(t, err)
	multi := FileSystemMulti{staticFS{}, local}

	files, err := multi.Open(ctx, "single.formulas")
	require.NoError(t, err)
	require.Len(t, files, 1)

	_, err = multi.Open(ctx, "nowhere")
	var e exc.Exception
	require.True(t, errors.As(err, &e))
	require.Equal(t, exc.CodeFileNotFound, e.Code())
}

type staticFS struct{}

func (staticFS) Open(ctx context.Context, uri string) ([]model.File, error) {
	return nil, errors.New("never finds anything")
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	require.Equal(t, "/a/b.formulas", Normalize("a/b.formulas"))
	require.Equal(t, "/a/b.formulas", Normalize("file:///a/b.formulas"))
	require.Equal(t, "https://example.com/x", Normalize("https://example.com/x"))
	require.Equal(t, model.FileKindCells, KindOf("x/y.cells"))
	require.Equal(t, model.FileKindNone, KindOf("x/y.txt"))
}
