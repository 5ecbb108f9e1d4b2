package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/model"
)

// DefaultExportExpiry is how long a share link stays valid.
const DefaultExportExpiry = 24 * time.Hour

// Export describes an uploaded collection snapshot.
type Export struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Count     int       `json:"count"`
	ExpiresAt time.Time `json:"expires_at"`
}

type exportDocument struct {
	UserID     string         `json:"user_id"`
	ExportedAt time.Time      `json:"exported_at"`
	Recipes    []model.Recipe `json:"recipes"`
}

// ExportService writes recipe collections to object storage and returns a
// presigned download link.
type ExportService struct {
	store    ObjectStore
	identity auth.Provider
	expiry   time.Duration
	log      logging.Logger
	now      func() time.Time
}

var _ IExportService = (*ExportService)(nil)

func NewExportService(store ObjectStore, identity auth.Provider, expiry time.Duration, log logging.Logger) *ExportService {
	if expiry <= 0 {
		expiry = DefaultExportExpiry
	}
	return &ExportService{
		store:    store,
		identity: identity,
		expiry:   expiry,
		log:      log.With("component", "export_service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Export uploads recipes as a JSON document. Every recipe is re-validated so
// an export never contains data the importer would reject.
func (s *ExportService) Export(ctx context.Context, recipes []model.Recipe) (Export, error) {
	uid, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return Export{}, model.ErrNotAuthenticated
	}
	if s.store == nil {
		return Export{}, errors.New("export storage is not configured")
	}

	valid := make([]model.Recipe, 0, len(recipes))
	for _, r := range recipes {
		v, err := model.Validate(r)
		if err != nil {
			return Export{}, err
		}
		valid = append(valid, v)
	}

	now := s.now()
	body, err := json.Marshal(exportDocument{UserID: uid.String(), ExportedAt: now, Recipes: valid})
	if err != nil {
		return Export{}, fmt.Errorf("failed to encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", uid, now.Format("20060102T150405Z"))
	if err := s.store.PutObject(ctx, key, body, "application/json"); err != nil {
		return Export{}, fmt.Errorf("failed to upload export: %w", err)
	}
	url, err := s.store.PresignGet(ctx, key, s.expiry)
	if err != nil {
		return Export{}, fmt.Errorf("failed to sign export link: %w", err)
	}

	s.log.Info(ctx, "exported recipe collection", "key", key, "count", len(valid))
	return Export{Key: key, URL: url, Count: len(valid), ExpiresAt: now.Add(s.expiry)}, nil
}
