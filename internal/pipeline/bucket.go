package pipeline

import (
	"github.com/pkg/errors"
	"github.com/thanos-io/objstore"
	"github.com/thanos-io/objstore/providers/filesystem"

	"github.com/aleksaelezovic/obo2rdf/internal/config"
)

// NewBucket opens the bucket outputs are published to. It returns nil when
// no backend is configured.
func NewBucket(cfg config.BucketConfig) (objstore.Bucket, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case config.BucketMemory:
		return objstore.NewInMemBucket(), nil
	case config.BucketFilesystem:
		bkt, err := filesystem.NewBucket(cfg.Directory)
		if err != nil {
			return nil, errors.Wrapf(err, "open bucket directory %s", cfg.Directory)
		}
		return bkt, nil
	default:
		return nil, errors.Errorf("unknown bucket backend %q", cfg.Backend)
	}
}
