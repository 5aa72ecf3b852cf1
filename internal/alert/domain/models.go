// Package domain contains the alert log model and its repository contract.
package domain

import (
	"context"
	"time"
)

// Alert types.
const (
	TypePower = "power"
	TypeDaily = "daily"
)

// Severities.
const (
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert is one row of the append-only alert log.
type Alert struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	Type      string    `gorm:"type:text;not null;index" json:"type"`
	Severity  string    `gorm:"type:text;not null" json:"severity"`
	Title     string    `gorm:"type:text;not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Value     float64   `gorm:"not null" json:"value"`
	Threshold float64   `gorm:"not null" json:"threshold"`
	// DedupKey identifies the condition the alert fired on: the wattage for
	// power alerts, the local date for daily alerts.
	DedupKey  string    `gorm:"type:text;not null;index" json:"-"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName sets the database table name.
func (Alert) TableName() string { return "alerts_log" }

// Repository persists and queries the alert log.
type Repository interface {
	Insert(ctx context.Context, alert *Alert) error
	// ExistsRecent reports whether an alert of the same type carrying the
	// same dedup key was logged at or after since. It is the dedup
	// predicate for the evaluator.
	ExistsRecent(ctx context.Context, alertType, dedupKey string, since time.Time) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]Alert, error)
}
