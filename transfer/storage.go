package transfer

import (
	"github.com/c2fo/vfs/v7/backend"
	"github.com/c2fo/vfs/v7/backend/s3"

	"github.com/c2fo/pilot/config"
)

// RegisterStorage registers the remote file systems configured in cfg so that
// vfssimple URIs resolve to them. Unconfigured backends keep their defaults.
func RegisterStorage(cfg config.Storage) {
	if cfg.S3 != (config.S3{}) {
		backend.Register(s3.Scheme, s3.NewFileSystem(s3.WithOptions(s3.Options{
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			SessionToken:    cfg.S3.SessionToken,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			ForcePathStyle:  cfg.S3.ForcePathStyle,
		})))
	}
}
