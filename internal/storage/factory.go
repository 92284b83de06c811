package storage

import (
	"fmt"

	"go.uber.org/zap"

	"docrepo/internal/config"
)

const (
	DriverFilesystem = "filesystem"
	DriverMinIO      = "minio"
)

// New returns the Storage selected by sc.Driver.
func New(sc config.StorageConfig, mc config.MinIOConfig, log *zap.Logger) (Storage, error) {
	var (
		store Storage
		err   error
	)
	switch sc.Driver {
	case "", DriverFilesystem:
		store, err = NewFilesystem(sc.Dir, log)
	case DriverMinIO:
		store, err = NewMinIO(mc)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
	if err != nil {
		return nil, err
	}
	log.Info("use storage", zap.String("driver", sc.Driver), zap.String("location", store.Location()))
	return store, nil
}
