package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gcsstorage "cloud.google.com/go/storage"

	"github.com/finsight/backend/internal/forecast"
)

// GCSModelStore persists forecast model snapshots as JSON objects in a
// Cloud Storage bucket, one object per user. It satisfies
// forecast.ModelStore and can be layered in front of whichever Store is in
// use when model blobs should live in object storage instead.
type GCSModelStore struct {
	bucket *gcsstorage.BucketHandle
}

// NewGCSModelStore wraps a bucket handle.
func NewGCSModelStore(bucket *gcsstorage.BucketHandle) *GCSModelStore {
	return &GCSModelStore{bucket: bucket}
}

func modelObjectName(userID string) string {
	return "models/expense/" + userID + ".json"
}

// SaveForecastModel writes the snapshot, replacing any previous version.
func (g *GCSModelStore) SaveForecastModel(ctx context.Context, userID string, snapshot *forecast.Snapshot) error {
	writer := g.bucket.Object(modelObjectName(userID)).NewWriter(ctx)
	writer.ContentType = "application/json"
	if err := json.NewEncoder(writer).Encode(snapshot); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to encode forecast model: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to write forecast model: %w", err)
	}
	return nil
}

// GetForecastModel reads the user's snapshot, mapping a missing object to
// forecast.ErrModelNotFound.
func (g *GCSModelStore) GetForecastModel(ctx context.Context, userID string) (*forecast.Snapshot, error) {
	reader, err := g.bucket.Object(modelObjectName(userID)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcsstorage.ErrObjectNotExist) {
			return nil, forecast.ErrModelNotFound
		}
		return nil, fmt.Errorf("failed to open forecast model: %w", err)
	}
	defer reader.Close()

	var snapshot forecast.Snapshot
	if err := json.NewDecoder(reader).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode forecast model: %w", err)
	}
	return &snapshot, nil
}
