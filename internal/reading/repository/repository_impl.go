// Package repository implements the reading store over gorm.
package repository

import (
	"context"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	readingdomain "github.com/orwelltherazer/statelec/internal/reading/domain"
)

type Repository struct {
	db  *gorm.DB
	log *zap.Logger
}

type RepositoryParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

func NewRepository(p RepositoryParam) readingdomain.Repository {
	return &Repository{
		db:  p.DB,
		log: p.Log.Named("reading.repository"),
	}
}

func (r *Repository) Upsert(ctx context.Context, reading *readingdomain.Reading) error {
	if reading == nil || strings.TrimSpace(reading.Timestamp) == "" {
		return readingdomain.ErrInvalidTimestamp
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "timestamp"}},
		DoUpdates: clause.AssignmentColumns([]string{"papp", "hchc", "hchp", "ptec"}),
	}).Create(reading).Error
}

func (r *Repository) Exists(ctx context.Context, timestamp string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM consumption_data WHERE timestamp = ?`,
		timestamp,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Latest(ctx context.Context) (*readingdomain.Reading, error) {
	var rows []readingdomain.Reading
	err := r.db.WithContext(ctx).Raw(
		`SELECT timestamp, papp, hchc, hchp, ptec
		 FROM consumption_data
		 ORDER BY timestamp DESC
		 LIMIT 1`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *Repository) All(ctx context.Context) ([]readingdomain.Reading, error) {
	var rows []readingdomain.Reading
	err := r.db.WithContext(ctx).Raw(
		`SELECT timestamp, papp, hchc, hchp, ptec
		 FROM consumption_data
		 ORDER BY timestamp ASC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) QueryRange(ctx context.Context, start, end string) ([]readingdomain.Reading, error) {
	if start > end {
		return nil, readingdomain.ErrInvalidRange
	}
	var rows []readingdomain.Reading
	err := r.db.WithContext(ctx).Raw(
		`SELECT timestamp, papp, hchc, hchp, ptec
		 FROM consumption_data
		 WHERE timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp ASC`,
		start,
		end,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FirstInRange(ctx context.Context, start, end string) (*readingdomain.Reading, error) {
	return r.edgeOfRange(ctx, start, end, "ASC")
}

func (r *Repository) LastInRange(ctx context.Context, start, end string) (*readingdomain.Reading, error) {
	return r.edgeOfRange(ctx, start, end, "DESC")
}

func (r *Repository) edgeOfRange(ctx context.Context, start, end, order string) (*readingdomain.Reading, error) {
	if start > end {
		return nil, readingdomain.ErrInvalidRange
	}
	query := `SELECT timestamp, papp, hchc, hchp, ptec
	 FROM consumption_data
	 WHERE timestamp >= ? AND timestamp <= ?
	 ORDER BY timestamp ` + order + `
	 LIMIT 1`
	var rows []readingdomain.Reading
	err := r.db.WithContext(ctx).Raw(query, start, end).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM consumption_data`,
	).Scan(&count).Error
	return count, err
}

func (r *Repository) CountSince(ctx context.Context, timestamp string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM consumption_data WHERE timestamp >= ?`,
		timestamp,
	).Scan(&count).Error
	return count, err
}

func (r *Repository) MaxPapp(ctx context.Context, start, end string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(papp), 0)
		 FROM consumption_data
		 WHERE timestamp >= ? AND timestamp <= ?`,
		start,
		end,
	).Scan(&max).Error
	return max, err
}

func (r *Repository) AvgPapp(ctx context.Context, start, end string) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(AVG(papp), 0)
		 FROM consumption_data
		 WHERE timestamp >= ? AND timestamp <= ?`,
		start,
		end,
	).Scan(&avg).Error
	return avg, err
}

func (r *Repository) ListExceeding(ctx context.Context, since string, threshold int) ([]readingdomain.Reading, error) {
	var rows []readingdomain.Reading
	err := r.db.WithContext(ctx).Raw(
		`SELECT timestamp, papp, hchc, hchp, ptec
		 FROM consumption_data
		 WHERE timestamp >= ? AND papp > ?
		 ORDER BY timestamp DESC`,
		since,
		threshold,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListPaginated(ctx context.Context, page, limit int) ([]readingdomain.Reading, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	offset := (page - 1) * limit

	var rows []readingdomain.Reading
	err := r.db.WithContext(ctx).Raw(
		`SELECT timestamp, papp, hchc, hchp, ptec
		 FROM consumption_data
		 ORDER BY timestamp DESC
		 LIMIT ? OFFSET ?`,
		limit,
		offset,
	).Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
