package inventory

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/store"
)

// Inventories holds one record store per kind.
type Inventories struct {
	dataDir string
	stores  map[Kind]*store.Store
}

// Open loads the store of every kind from dataDir, creating the directory if
// needed. With seed set, empty or missing files get the sample records first.
func Open(dataDir string, seed bool, logger *slog.Logger) (*Inventories, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	inv := &Inventories{
		dataDir: dataDir,
		stores:  make(map[Kind]*store.Store, len(kinds)),
	}
	for _, kind := range Kinds() {
		path := filepath.Join(dataDir, kind.File())
		if seed {
			written, err := store.Seed(path, kind.Samples())
			if err != nil {
				return nil, fmt.Errorf("failed to seed %s inventory: %w", kind, err)
			}
			if written {
				logger.Info("Initialized sample inventory data", "kind", kind, "path", path)
			}
		}
		inv.stores[kind] = store.Load(path, logger.With("kind", kind.String()))
	}
	return inv, nil
}

// Store returns the record store of the given kind.
func (inv *Inventories) Store(kind Kind) (*store.Store, error) {
	s, ok := inv.stores[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", perrors.ErrUnknownKind, kind)
	}
	return s, nil
}

// DataDir returns the directory the inventory files live in.
func (inv *Inventories) DataDir() string {
	return inv.dataDir
}

// Flush writes every store whose last save failed, e.g. at shutdown.
func (inv *Inventories) Flush() error {
	for _, kind := range Kinds() {
		if err := inv.stores[kind].Flush(); err != nil {
			return fmt.Errorf("failed to save %s inventory: %w", kind, err)
		}
	}
	return nil
}
