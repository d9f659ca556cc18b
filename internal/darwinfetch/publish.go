package darwinfetch

import (
	"context"
	"errors"
	"fmt"
	"path"
)

// CatalogBucket is the object store catalogs are published to.
type CatalogBucket interface {
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	UploadFile(ctx context.Context, key string, body []byte) error
}

// PublishResult reports one kind's publish outcome.
type PublishResult struct {
	Kind     Kind
	Key      string
	Uploaded bool
	Err      error
}

func catalogKey(kind Kind) string {
	return path.Join("catalogs", kind.FileName())
}

// PublishCatalogs uploads local catalogs whose bytes differ from the copy
// already in the bucket. Kinds without a local document are skipped.
func PublishCatalogs(ctx context.Context, bucket CatalogBucket, store *CatalogStore, kinds []Kind) []PublishResult {
	var results []PublishResult
	for _, kind := range kinds {
		key := catalogKey(kind)
		res := PublishResult{Kind: kind, Key: key}

		local, err := store.ReadRaw(kind)
		if err != nil {
			var nf *NotFoundError
			if errors.As(err, &nf) {
				debugf("Skipping %s: no local catalog\n", kind)
				continue
			}
			res.Err = err
			results = append(results, res)
			continue
		}
		if _, err := ParseCatalog(local); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		if remote, err := bucket.DownloadFile(ctx, key); err == nil && hashBytes(remote) == hashBytes(local) {
			debugf("%s already published\n", key)
			results = append(results, res)
			continue
		} else if err != nil {
			debugf("Remote %s not found or error fetching: %v\n", key, err)
		}

		if err := bucket.UploadFile(ctx, key, local); err != nil {
			res.Err = fmt.Errorf("upload of %s failed: %w", key, err)
		} else {
			res.Uploaded = true
		}
		results = append(results, res)
	}
	return results
}

// handlePublishCommand implements 'darwinfetch publish [kind...]'.
func handlePublishCommand(ctx context.Context, cfg *Config, store *CatalogStore, kinds []Kind) error {
	r2, err := NewR2Client(cfg)
	if err != nil {
		return err
	}

	arrowf("Publishing catalogs to R2 bucket %s\n", r2.BucketName)
	var failed int
	for _, r := range PublishCatalogs(ctx, r2, store, kinds) {
		switch {
		case r.Err != nil:
			failed++
			cPrintf(colError, "  %-9s %v\n", r.Kind, r.Err)
		case r.Uploaded:
			cPrintf(colSuccess, "  %-9s uploaded to r2://%s\n", r.Kind, r.Key)
		default:
			cPrintf(colInfo, "  %-9s unchanged\n", r.Kind)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d catalogs failed to publish", failed)
	}
	return nil
}
