// Package artifacts stores the merged label document of each batch as one PDF
// file under a documents directory.
package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// FileStore implements ports.DocumentStore.
type FileStore struct {
	dir  string
	conf *model.Configuration
}

// NewFileStore creates dir when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errs.NewValueIsRequiredError("documents dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create documents dir: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &FileStore{dir: dir, conf: conf}, nil
}

// Save merges pages in order and replaces any earlier document of the batch.
// A single page is stored as rendered.
func (s *FileStore) Save(_ context.Context, batchID kernel.UUID, pages [][]byte) error {
	if len(pages) == 0 {
		return errs.NewValueIsRequiredError("pages")
	}

	var doc []byte
	if len(pages) == 1 {
		doc = pages[0]
	} else {
		readers := make([]io.ReadSeeker, len(pages))
		for i, p := range pages {
			readers[i] = bytes.NewReader(p)
		}
		var out bytes.Buffer
		if err := api.MergeRaw(readers, &out, false, s.conf); err != nil {
			return fmt.Errorf("merge %d pages of batch %s: %w", len(pages), batchID, err)
		}
		doc = out.Bytes()
	}

	tmp, err := os.CreateTemp(s.dir, batchID.String()+"-*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(batchID))
}

func (s *FileStore) Open(_ context.Context, batchID kernel.UUID) (io.ReadCloser, error) {
	f, err := os.Open(s.path(batchID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.NewObjectNotFoundErrorWithCause("document", batchID, err)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FileStore) Delete(_ context.Context, batchID kernel.UUID) error {
	err := os.Remove(s.path(batchID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) path(batchID kernel.UUID) string {
	return filepath.Join(s.dir, batchID.String()+".pdf")
}
