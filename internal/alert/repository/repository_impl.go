package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/orwelltherazer/statelec/internal/alert/domain"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, alert *domain.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *repository) ExistsRecent(ctx context.Context, alertType, dedupKey string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Raw(`SELECT COUNT(*) FROM alerts_log WHERE type = ? AND dedup_key = ? AND created_at >= ?`,
			alertType, dedupKey, since).
		Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []domain.Alert
	err := r.db.WithContext(ctx).
		Raw(`SELECT * FROM alerts_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
