package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lcs-staffing/admin-console/internal/observability"
	apperrors "github.com/lcs-staffing/admin-console/pkg/util"
)

// ErrNotConfigured is wrapped in the AssetError returned when no store is wired.
var ErrNotConfigured = errors.New("object store not configured")

// AssetManager uploads and deletes job images. It does not check content types;
// callers run DetectImage first.
type AssetManager struct {
	store   ObjectStore
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewAssetManager builds a manager. store may be nil, in which case uploads fail with an AssetError.
func NewAssetManager(store ObjectStore, metrics *observability.Metrics, logger *zap.Logger) *AssetManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssetManager{store: store, metrics: metrics, logger: logger, now: time.Now}
}

// Upload stores img under a timestamp-scoped key and returns its durable URL.
func (m *AssetManager) Upload(ctx context.Context, img *Image) (string, error) {
	if m.store == nil {
		return "", apperrors.NewAssetError("image upload unavailable", ErrNotConfigured)
	}
	key := fmt.Sprintf("jobs/%d_image%s", m.now().UnixMilli(), img.Extension)
	ref, err := m.store.Put(ctx, key, img.ContentType, bytes.NewReader(img.Data))
	m.metrics.RecordAsset("upload", err)
	if err != nil {
		m.logger.Warn("asset upload failed", zap.String("key", key), zap.Error(err))
		return "", apperrors.NewAssetError("image upload failed", err)
	}
	return ref, nil
}

// Delete removes the blob behind ref. Failures are logged and swallowed; an orphaned blob is acceptable.
func (m *AssetManager) Delete(ctx context.Context, ref string) {
	if m.store == nil || ref == "" {
		return
	}
	key, ok := m.store.KeyFromURL(ref)
	if !ok {
		m.logger.Warn("asset reference not owned by store", zap.String("ref", ref))
		return
	}
	err := m.store.Delete(ctx, key)
	m.metrics.RecordAsset("delete", err)
	if err != nil {
		m.logger.Warn("asset delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Ping reports store reachability for readiness checks.
func (m *AssetManager) Ping(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	return m.store.Ping(ctx)
}
