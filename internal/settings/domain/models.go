// Package domain contains the settings model and the typed configuration
// views derived from it.
package domain

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
)

// Setting is one key/value pair. Values are stored JSON-encoded so the
// same table carries numbers, booleans and strings.
type Setting struct {
	Key   string         `gorm:"primaryKey;type:text;column:key" json:"key"`
	Value datatypes.JSON `gorm:"not null" json:"value"`
}

// TableName sets the database table name.
func (Setting) TableName() string { return "settings" }

// Setting keys. The French names match the meter vocabulary used across
// the product (HC/HP tariffs, seuil = threshold).
const (
	KeyPriceHC           = "prixHC"
	KeyPriceHP           = "prixHP"
	KeyPriceBase         = "prixBase"
	KeyMonthlyBudget     = "budgetMensuel"
	KeySubscriptionType  = "subscription_type"
	KeySubscriptionPrice = "subscription_price"

	KeyJumpThreshold        = "seuilSaut"
	KeyHighLoadThreshold    = "seuilChargeElevee"
	KeyHighLoadMinDuration  = "dureeMinCharge"
	KeyCriticalThreshold    = "seuilAnomalie"
	KeyNightThreshold       = "seuilNuit"

	KeyPowerAlertThreshold = "seuilPuissance"
	KeyDailyAlertThreshold = "seuilJournalier"
	KeyEmailAlerts         = "email_alerts"
	KeyEmailRecipient      = "email_destinataire"

	KeyFeedURL   = "apiUrl"
	KeyFieldPapp = "fieldPapp"
	KeyFieldHchc = "fieldHchc"
	KeyFieldHchp = "fieldHchp"
	KeyFieldPtec = "fieldPtec"
)

// Subscription plans.
const (
	SubscriptionHCHP = "hchp"
	SubscriptionBase = "base"
)

// TariffConfig is the pricing view used by cost computations. Any absent
// key resolves to these documented defaults.
type TariffConfig struct {
	PriceHC           float64 `json:"price_hc"`
	PriceHP           float64 `json:"price_hp"`
	PriceBase         float64 `json:"price_base"`
	SubscriptionType  string  `json:"subscription_type"`
	SubscriptionPrice float64 `json:"subscription_price"`
	MonthlyBudget     float64 `json:"monthly_budget"`
}

// DefaultTariffs returns the fallback pricing applied when settings are absent.
func DefaultTariffs() TariffConfig {
	return TariffConfig{
		PriceHC:           0.1821,
		PriceHP:           0.2460,
		PriceBase:         0.2000,
		SubscriptionType:  SubscriptionHCHP,
		SubscriptionPrice: 0.0,
		MonthlyBudget:     50.0,
	}
}

// DetectionThresholds configure the event detector.
type DetectionThresholds struct {
	JumpWatts          int
	HighLoadWatts      int
	HighLoadMinMinutes int
	CriticalWatts      int
	NightWatts         int
}

// DefaultDetectionThresholds returns the detector fallbacks.
func DefaultDetectionThresholds() DetectionThresholds {
	return DetectionThresholds{
		JumpWatts:          500,
		HighLoadWatts:      2000,
		HighLoadMinMinutes: 30,
		CriticalWatts:      6000,
		NightWatts:         1000,
	}
}

// AlertSettings configure the periodic evaluator. A zero threshold disables
// the corresponding check.
type AlertSettings struct {
	PowerThresholdWatts int
	DailyThresholdKWh   float64
	EmailEnabled        bool
	EmailRecipient      string
}

// FieldMapping maps telemetry feed field names onto reading columns.
type FieldMapping struct {
	Papp string
	Hchc string
	Hchp string
	Ptec string
}

// DefaultFieldMapping matches the ThingSpeak channel layout the meter
// bridge publishes to.
func DefaultFieldMapping() FieldMapping {
	return FieldMapping{
		Papp: "field1",
		Hchc: "field2",
		Hchp: "field3",
		Ptec: "field7",
	}
}

// Service reads and writes settings. Typed getters never fail: a missing or
// malformed value resolves to the provided fallback.
type Service interface {
	// GetRaw returns the stored JSON value, or false when the key is absent.
	GetRaw(ctx context.Context, key string) (json.RawMessage, bool)
	GetString(ctx context.Context, key, fallback string) string
	GetFloat(ctx context.Context, key string, fallback float64) float64
	GetInt(ctx context.Context, key string, fallback int) int
	GetBool(ctx context.Context, key string, fallback bool) bool
	Put(ctx context.Context, key string, value any) error
	Tariffs(ctx context.Context) TariffConfig
	Detection(ctx context.Context) DetectionThresholds
	Alerts(ctx context.Context) AlertSettings
	FieldMapping(ctx context.Context) FieldMapping
}
