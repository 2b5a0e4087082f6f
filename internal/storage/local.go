package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Local stores objects on the local filesystem under a root directory and
// serves them from a configured public base URL.
type Local struct {
	root    string
	baseURL string
	log     *logrus.Logger
}

func NewLocal(root, baseURL string, log *logrus.Logger) *Local {
	return &Local{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

func (s *Local) Put(ctx context.Context, path string, r io.Reader) error {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	// O_EXCL: path allocation is collision-resistant, a clash is a bug.
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return err
	}
	return f.Close()
}

func (s *Local) URL(path string) string {
	return s.baseURL + "/" + path
}

func (s *Local) Delete(ctx context.Context, path string) error {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			s.log.Warnf("delete of missing object %s", path)
			return nil
		}
		return err
	}
	return nil
}
