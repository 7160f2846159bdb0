package archive

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsafePath is returned for entry names that would land outside the
// destination directory.
var ErrUnsafePath = errors.New("unsafe entry path")

// Target resolves the on-disk path for an entry named name beneath dir.
func Target(dir, name string) (string, error) {
	rel := filepath.FromSlash(NormalizePath(name))
	if rel == "" || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", errors.Wrapf(ErrUnsafePath, "%q", name)
	}
	rel = filepath.Clean(rel)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrUnsafePath, "%q", name)
	}
	return filepath.Join(dir, rel), nil
}

// WriteFile copies r into the file for name beneath dir, creating parent
// directories. Without overwrite an existing file is an error.
func WriteFile(dir, name string, overwrite bool, r io.Reader) error {
	dest, err := Target(dir, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, "create parent dir for %s", dest)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(dest, flags, 0644)
	if err != nil {
		return errors.Wrapf(err, "create %s", dest)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dest)
		return errors.Wrapf(err, "write %s", dest)
	}
	return errors.Wrapf(f.Close(), "close %s", dest)
}

// ExactReader returns a reader yielding exactly n bytes of r; if r ends early
// the reader fails with io.ErrUnexpectedEOF.
func ExactReader(r io.Reader, n int64) io.Reader {
	return &exactReader{r: io.LimitReader(r, n), left: n}
}

type exactReader struct {
	r    io.Reader
	left int64
}

func (e *exactReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	e.left -= int64(n)
	if err == io.EOF && e.left > 0 {
		return n, errors.Wrapf(io.ErrUnexpectedEOF, "%d bytes missing", e.left)
	}
	return n, err
}
