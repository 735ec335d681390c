package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfscore/shelfscore-server/internal/config"
	"github.com/shelfscore/shelfscore-server/internal/logger"
	"github.com/shelfscore/shelfscore-server/internal/media/images"
	"github.com/shelfscore/shelfscore-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.Storage.DatabasePath()
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// ProvideThumbnailStorage provides file storage for book cover images.
func ProvideThumbnailStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.Storage.ThumbnailPath())
	if err != nil {
		return nil, err
	}

	log.Info("Thumbnail storage initialized", "path", cfg.Storage.ThumbnailPath())

	return storage, nil
}
