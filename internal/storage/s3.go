package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/config"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
)

// S3Storage implements AssetStore backed by an S3-compatible service. The
// object key doubles as the asset's public id.
type S3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

// NewS3Storage configures an uploader targeting the provided object store.
func NewS3Storage(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Storage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3 storage: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if strings.TrimSpace(cfg.Endpoint) != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				return aws.Endpoint{
					URL:           cfg.Endpoint,
					SigningRegion: cfg.Region,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3Storage{
		client:   client,
		uploader: uploader,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Store uploads the staged file under a fresh key and returns its public
// location. The staged file is left for the caller to clean up.
func (s *S3Storage) Store(ctx context.Context, localPath string, kind Kind) (models.Asset, error) {
	ctx, span := logging.StartSpan(ctx, "s3.store")
	defer span.End()

	f, err := os.Open(localPath)
	if err != nil {
		return models.Asset{}, fmt.Errorf("s3 storage open %s: %w", localPath, err)
	}
	defer f.Close()

	key := fmt.Sprintf("%s/%s%s", kind, uuid.NewString(), filepath.Ext(localPath))

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
		ACL:    s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return models.Asset{}, fmt.Errorf("s3 storage upload %s: %w", key, err)
	}

	url := key
	if s.baseURL != "" {
		url = fmt.Sprintf("%s/%s", s.baseURL, key)
	}

	return models.Asset{URL: url, PublicID: key}, nil
}

// Remove deletes the object named by the public id.
func (s *S3Storage) Remove(ctx context.Context, publicID string, _ Kind) (bool, error) {
	if strings.TrimSpace(publicID) == "" {
		return false, nil
	}

	ctx, span := logging.StartSpan(ctx, "s3.remove")
	defer span.End()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return false, fmt.Errorf("s3 storage delete %s: %w", publicID, err)
	}

	return true, nil
}

var _ AssetStore = (*S3Storage)(nil)
