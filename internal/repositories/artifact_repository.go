package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alimgiray/contribrank/internal/models"
)

const historyDir = "history"

// ArtifactRepository stores pipeline artifacts as JSON files under
// <root>/<period>/, with dated snapshots under <root>/<period>/history/.
type ArtifactRepository struct {
	root string
}

// NewArtifactRepository creates a new ArtifactRepository rooted at root
func NewArtifactRepository(root string) *ArtifactRepository {
	return &ArtifactRepository{root: root}
}

// Root returns the data directory
func (r *ArtifactRepository) Root() string {
	return r.root
}

// Path returns the location of a current artifact
func (r *ArtifactRepository) Path(period models.Period, name string) string {
	return filepath.Join(r.root, string(period), name)
}

// HistoryPath returns the history directory of a period
func (r *ArtifactRepository) HistoryPath(period models.Period) string {
	return filepath.Join(r.root, string(period), historyDir)
}

// Verify checks that an artifact exists and is non-empty, returning its size
func (r *ArtifactRepository) Verify(period models.Period, name string) (int64, error) {
	return verifyFile(r.Path(period, name))
}

func verifyFile(path string) (int64, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%w: %s", models.ErrArtifactMissing, path)
	}
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s is a directory", models.ErrArtifactMissing, path)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%w: %s", models.ErrArtifactEmpty, path)
	}
	return info.Size(), nil
}

// Exists reports whether a current artifact is present and non-empty
func (r *ArtifactRepository) Exists(period models.Period, name string) bool {
	_, err := r.Verify(period, name)
	return err == nil
}

// ReadJSON verifies and decodes an artifact into v
func (r *ArtifactRepository) ReadJSON(period models.Period, name string, v interface{}) error {
	if _, err := r.Verify(period, name); err != nil {
		return err
	}

	data, err := os.ReadFile(r.Path(period, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", r.Path(period, name), err)
	}
	return nil
}

// WriteJSON replaces an artifact with the JSON encoding of v. The content is
// written to a temporary file and renamed into place, then re-checked, so a
// failed write never leaves a truncated current artifact behind.
func (r *ArtifactRepository) WriteJSON(period models.Period, name string, v interface{}) (int64, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", name, err)
	}
	return r.WriteFile(period, name, data)
}

// WriteFile atomically replaces an artifact with data and verifies it
func (r *ArtifactRepository) WriteFile(period models.Period, name string, data []byte) (int64, error) {
	path := r.Path(period, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+name+".*.tmp")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, err
	}

	return verifyFile(path)
}

// Snapshot copies a current artifact into the history directory as
// <base>_YYYY_MM_DD.json. If that name is taken a numeric suffix is added;
// existing snapshots are never overwritten. It returns the snapshot path
// and its verified size.
func (r *ArtifactRepository) Snapshot(period models.Period, name string, date time.Time) (string, int64, error) {
	src := r.Path(period, name)
	if _, err := verifyFile(src); err != nil {
		return "", 0, err
	}

	dir := r.HistoryPath(period)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext) + "_" + date.Format("2006_01_02")

	in, err := os.Open(src)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	for n := 1; ; n++ {
		candidate := base
		if n > 1 {
			candidate += "_" + strconv.Itoa(n)
		}
		dst := filepath.Join(dir, candidate+ext)

		out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", 0, err
		}

		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return "", 0, err
		}
		if err := out.Close(); err != nil {
			return "", 0, err
		}
		size, err := verifyFile(dst)
		if err != nil {
			return "", 0, err
		}
		return dst, size, nil
	}
}

// ListHistory returns the snapshot file names of a period, sorted
func (r *ArtifactRepository) ListHistory(period models.Period) ([]string, error) {
	entries, err := os.ReadDir(r.HistoryPath(period))
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
