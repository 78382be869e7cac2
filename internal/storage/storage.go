package storage

import (
	"context"

	"github.com/cliptube/backend/internal/models"
)

// Kind tells the asset store what it is holding. Cloudinary routes video
// and image uploads differently; S3 uses it only for key prefixes.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

// AssetStore is the external collaborator holding binary assets. Store
// uploads a staged local file and returns its public URL plus the store's
// removal handle; a failed Store leaves no asset behind. Remove reports
// whether the asset was deleted.
type AssetStore interface {
	Store(ctx context.Context, localPath string, kind Kind) (models.Asset, error)
	Remove(ctx context.Context, publicID string, kind Kind) (bool, error)
}
