// Package service implements settings access with documented defaults.
package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orwelltherazer/statelec/internal/cache"
	settingsdomain "github.com/orwelltherazer/statelec/internal/settings/domain"
)

const tariffCacheTTL = 30 * time.Second

const tariffCacheKey = "tariffs"

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	tariffCache cache.Cache[string, settingsdomain.TariffConfig]
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	TariffCache cache.Cache[string, settingsdomain.TariffConfig]
}

func NewService(p ServiceParam) settingsdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("settings.service"),
		tariffCache: p.TariffCache,
	}
}

// lookup returns the raw JSON value for a key, or nil when absent.
func (s *Service) lookup(ctx context.Context, key string) []byte {
	var rows []settingsdomain.Setting
	err := s.db.WithContext(ctx).Raw(
		`SELECT key, value FROM settings WHERE key = ? LIMIT 1`,
		key,
	).Scan(&rows).Error
	if err != nil {
		s.log.Warn("settings lookup failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Value
}

func (s *Service) GetRaw(ctx context.Context, key string) (json.RawMessage, bool) {
	raw := s.lookup(ctx, key)
	if raw == nil {
		return nil, false
	}
	return json.RawMessage(raw), true
}

func (s *Service) GetString(ctx context.Context, key, fallback string) string {
	raw := s.lookup(ctx, key)
	if raw == nil {
		return fallback
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return fallback
	}
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func (s *Service) GetFloat(ctx context.Context, key string, fallback float64) float64 {
	raw := s.lookup(ctx, key)
	if raw == nil {
		return fallback
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		// Some UIs store numbers as strings; accept both.
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return fallback
		}
		if err := json.Unmarshal([]byte(text), &value); err != nil {
			return fallback
		}
	}
	return value
}

func (s *Service) GetInt(ctx context.Context, key string, fallback int) int {
	return int(s.GetFloat(ctx, key, float64(fallback)))
}

func (s *Service) GetBool(ctx context.Context, key string, fallback bool) bool {
	raw := s.lookup(ctx, key)
	if raw == nil {
		return fallback
	}
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return fallback
	}
	return value
}

func (s *Service) Put(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	record := settingsdomain.Setting{
		Key:   key,
		Value: datatypes.JSON(encoded),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&record).Error; err != nil {
		return err
	}
	s.tariffCache.Delete(tariffCacheKey)
	return nil
}

func (s *Service) Tariffs(ctx context.Context) settingsdomain.TariffConfig {
	if cached, ok := s.tariffCache.Get(tariffCacheKey); ok {
		return cached
	}

	defaults := settingsdomain.DefaultTariffs()
	tariffs := settingsdomain.TariffConfig{
		PriceHC:           s.GetFloat(ctx, settingsdomain.KeyPriceHC, defaults.PriceHC),
		PriceHP:           s.GetFloat(ctx, settingsdomain.KeyPriceHP, defaults.PriceHP),
		PriceBase:         s.GetFloat(ctx, settingsdomain.KeyPriceBase, defaults.PriceBase),
		SubscriptionType:  s.GetString(ctx, settingsdomain.KeySubscriptionType, defaults.SubscriptionType),
		SubscriptionPrice: s.GetFloat(ctx, settingsdomain.KeySubscriptionPrice, defaults.SubscriptionPrice),
		MonthlyBudget:     s.GetFloat(ctx, settingsdomain.KeyMonthlyBudget, defaults.MonthlyBudget),
	}
	if tariffs.SubscriptionType != settingsdomain.SubscriptionBase {
		tariffs.SubscriptionType = settingsdomain.SubscriptionHCHP
	}

	s.tariffCache.Set(tariffCacheKey, tariffs, tariffCacheTTL)
	return tariffs
}

func (s *Service) Detection(ctx context.Context) settingsdomain.DetectionThresholds {
	defaults := settingsdomain.DefaultDetectionThresholds()
	return settingsdomain.DetectionThresholds{
		JumpWatts:          s.GetInt(ctx, settingsdomain.KeyJumpThreshold, defaults.JumpWatts),
		HighLoadWatts:      s.GetInt(ctx, settingsdomain.KeyHighLoadThreshold, defaults.HighLoadWatts),
		HighLoadMinMinutes: s.GetInt(ctx, settingsdomain.KeyHighLoadMinDuration, defaults.HighLoadMinMinutes),
		CriticalWatts:      s.GetInt(ctx, settingsdomain.KeyCriticalThreshold, defaults.CriticalWatts),
		NightWatts:         s.GetInt(ctx, settingsdomain.KeyNightThreshold, defaults.NightWatts),
	}
}

func (s *Service) Alerts(ctx context.Context) settingsdomain.AlertSettings {
	return settingsdomain.AlertSettings{
		PowerThresholdWatts: s.GetInt(ctx, settingsdomain.KeyPowerAlertThreshold, 0),
		DailyThresholdKWh:   s.GetFloat(ctx, settingsdomain.KeyDailyAlertThreshold, 0),
		EmailEnabled:        s.GetBool(ctx, settingsdomain.KeyEmailAlerts, false),
		EmailRecipient:      s.GetString(ctx, settingsdomain.KeyEmailRecipient, ""),
	}
}

func (s *Service) FieldMapping(ctx context.Context) settingsdomain.FieldMapping {
	defaults := settingsdomain.DefaultFieldMapping()
	return settingsdomain.FieldMapping{
		Papp: s.GetString(ctx, settingsdomain.KeyFieldPapp, defaults.Papp),
		Hchc: s.GetString(ctx, settingsdomain.KeyFieldHchc, defaults.Hchc),
		Hchp: s.GetString(ctx, settingsdomain.KeyFieldHchp, defaults.Hchp),
		Ptec: s.GetString(ctx, settingsdomain.KeyFieldPtec, defaults.Ptec),
	}
}
