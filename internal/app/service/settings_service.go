package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rsih_portal/internal/common"
	"rsih_portal/internal/domain/model"
	"rsih_portal/internal/domain/repository"
	"rsih_portal/internal/platform/cache"
)

type SettingsService struct {
	settingRepo repository.SettingRepository
	catalog     cache.CatalogCache
}

func NewSettingsService(settingRepo repository.SettingRepository, catalog cache.CatalogCache) *SettingsService {
	return &SettingsService{settingRepo: settingRepo, catalog: catalog}
}

// UpdateSettingRequest accepts any JSON scalar as value; it is stored as text.
type UpdateSettingRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	return s.settingRepo.All(ctx)
}

func (s *SettingsService) Update(ctx context.Context, req UpdateSettingRequest) (*model.Setting, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return nil, common.NewError(common.ErrValidation, "Setting key is required.")
	}
	value, err := stringifySetting(req.Value)
	if err != nil {
		return nil, err
	}
	if err := s.settingRepo.Upsert(ctx, key, value); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)
	return &model.Setting{Key: key, Value: value}, nil
}

func stringifySetting(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool, float64, json.Number:
		return fmt.Sprint(val), nil
	default:
		return "", common.NewError(common.ErrValidation, "Setting value must be a string, number or boolean.")
	}
}
