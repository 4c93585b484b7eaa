package commands

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/config"
	"github.com/aimeelabs/aimee-backend/internal/memory"
)

// openStore opens the memory store named by MEMORY_FILE.
func openStore() (*memory.JSONStore, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := memory.NewJSONStore(cfg.MemoryFile, zap.NewNop())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open memory store: %w", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close memory store: %v\n", err)
		}
	}
	return store, cleanup, nil
}
