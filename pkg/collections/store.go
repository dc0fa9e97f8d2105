package collections

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	pkgerrors "github.com/solystore/pointshop-backend/pkg/errors"
)

// Collection names. These map one-to-one onto JSON files under the data
// directory and are the units the lock manager serializes on.
const (
	Users        = "users"
	Products     = "products"
	Stocks       = "stocks"
	Orders       = "order_history"
	TopupCodes   = "topup_codes"
	TopupHistory = "topup_history"
)

// Store is the snapshot-replace persistence primitive. It offers no
// filtering, indexing, or locking; callers hold the relevant locks before
// touching a collection.
type Store struct {
	dir string
}

// NewStore prepares the data directory and returns a store rooted there.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads the full current snapshot of a collection. An absent
// collection is an empty one, not an error.
func Load[T any](s *Store, name string) ([]T, error) {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable").
			WithDetails(map[string]any{"collection": name, "op": "load"})
	}

	records := []T{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable").
			WithDetails(map[string]any{"collection": name, "op": "decode"})
	}
	return records, nil
}

// Replace atomically swaps the entire collection for the given records.
// The snapshot is written to a temp file in the same directory and renamed
// into place, so readers never observe a partial write.
func Replace[T any](s *Store, name string, records []T) error {
	if records == nil {
		records = []T{}
	}

	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable").
			WithDetails(map[string]any{"collection": name, "op": "encode"})
	}

	tmp, err := os.CreateTemp(s.dir, name+"-*.tmp")
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable").
			WithDetails(map[string]any{"collection": name, "op": "store"})
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable").
			WithDetails(map[string]any{"collection": name, "op": "store"})
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable").
			WithDetails(map[string]any{"collection": name, "op": "store"})
	}

	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable").
			WithDetails(map[string]any{"collection": name, "op": "store"})
	}
	return nil
}
