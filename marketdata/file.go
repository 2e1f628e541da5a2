package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meenmo/curvelib/bootstrap"
)

// FileSource reads quote sets from a directory of JSON files named
// <date>_<type>_<index>.json, for instance 2025-01-29_OIS_ESTR.json.
// The contributing source in the request is ignored; file trees are
// assumed to hold one contributor.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Path returns the file a request would be served from.
func (s *FileSource) Path(req Request) string {
	name := fmt.Sprintf("%s_%s_%s.json", req.Date.Format("2006-01-02"), req.Type, req.Index)
	return filepath.Join(s.dir, name)
}

func (s *FileSource) Quotes(_ context.Context, req Request) ([]bootstrap.Quote, error) {
	raw, err := os.ReadFile(s.Path(req))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("FileSource: %s: %w", req, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("FileSource: %s: %w", req, err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("FileSource: %s: %w", req, err)
	}
	quotes, err := p.toQuotes()
	if err != nil {
		return nil, fmt.Errorf("FileSource: %s: %w", req, err)
	}
	return quotes, nil
}
