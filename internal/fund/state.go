package fund

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"BasketMint/internal/model"
)

// Persister stores fund snapshots.
type Persister interface {
	Save(f *model.Fund) error
	LoadAll() ([]*model.Fund, error)
}

// FileStore keeps one JSON file per fund in a directory. Writes go through a
// temp file and rename so a crash never leaves a torn snapshot.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the fund snapshot.
func (s *FileStore) Save(f *model.Fund) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, f.ID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadAll reads every snapshot in the directory, ordered by creation time.
func (s *FileStore) LoadAll() ([]*model.Fund, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var funds []*model.Fund
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var f model.Fund
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Name(), err)
		}
		funds = append(funds, &f)
	}
	sort.SliceStable(funds, func(i, j int) bool { return funds[i].CreatedAt.Before(funds[j].CreatedAt) })
	return funds, nil
}

// nopPersister is used when no state directory is configured.
type nopPersister struct{}

func (nopPersister) Save(*model.Fund) error            { return nil }
func (nopPersister) LoadAll() ([]*model.Fund, error) { return nil, nil }
