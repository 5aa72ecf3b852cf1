// Package ingest polls the telemetry feed and writes normalized readings
// into the store.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orwelltherazer/statelec/internal/observability/metrics"
	readingdomain "github.com/orwelltherazer/statelec/internal/reading/domain"
	settingsdomain "github.com/orwelltherazer/statelec/internal/settings/domain"
)

var (
	ErrFeedURLMissing = errors.New("feed_url_missing")
	ErrFeedStatus     = errors.New("feed_status")
)

// Report summarizes one fetch cycle.
type Report struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// feedEnvelope matches the ThingSpeak channel feed layout. Field values
// arrive as strings or null.
type feedEnvelope struct {
	Feeds []map[string]any `json:"feeds"`
}

type Collector struct {
	log      *zap.Logger
	client   *http.Client
	readings readingdomain.Repository
	settings settingsdomain.Service
	feedURL  string
	count    int
	metrics  *metrics.Metrics
}

func NewCollector(
	log *zap.Logger,
	client *http.Client,
	readings readingdomain.Repository,
	settings settingsdomain.Service,
	feedURL string,
	count int,
) *Collector {
	if count <= 0 {
		count = 20
	}
	return &Collector{
		log:      log.Named("ingest.collector"),
		client:   client,
		readings: readings,
		settings: settings,
		feedURL:  feedURL,
		count:    count,
		metrics:  metrics.Default(),
	}
}

// Fetch pulls the latest feed entries and upserts the valid ones. A row with
// a timestamp already in the store counts as skipped, a row missing a
// required field counts as an error; neither aborts the cycle.
func (c *Collector) Fetch(ctx context.Context) (Report, error) {
	var report Report

	feedURL := strings.TrimSpace(c.settings.GetString(ctx, settingsdomain.KeyFeedURL, c.feedURL))
	if feedURL == "" {
		c.metrics.IncIngestFetch("error")
		return report, ErrFeedURLMissing
	}

	entries, err := c.fetchFeed(ctx, feedURL)
	if err != nil {
		c.metrics.IncIngestFetch("error")
		return report, err
	}

	mapping := c.settings.FieldMapping(ctx)
	for _, entry := range entries {
		reading, err := c.normalize(entry, mapping)
		if err != nil {
			report.Errors++
			c.log.Debug("feed entry rejected", zap.Error(err))
			continue
		}

		exists, err := c.readings.Exists(ctx, reading.Timestamp)
		if err != nil {
			report.Errors++
			continue
		}
		if exists {
			report.Skipped++
			continue
		}

		if err := c.readings.Upsert(ctx, reading); err != nil {
			report.Errors++
			c.log.Warn("reading upsert failed",
				zap.String("timestamp", reading.Timestamp),
				zap.Error(err),
			)
			continue
		}
		report.Processed++
	}

	c.metrics.IncIngestFetch("ok")
	c.metrics.AddIngestProcessed("feed", report.Processed)
	c.metrics.AddIngestSkipped(report.Skipped)
	c.metrics.AddIngestErrors(report.Errors)

	c.log.Info("feed fetch complete",
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
	)
	return report, nil
}

func (c *Collector) fetchFeed(ctx context.Context, feedURL string) ([]map[string]any, error) {
	parsed, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	query := parsed.Query()
	query.Set("results", strconv.Itoa(c.count))
	parsed.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrFeedStatus, resp.StatusCode)
	}

	var envelope feedEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return envelope.Feeds, nil
}

// normalize converts one feed entry into a reading. papp, hchc and hchp are
// required; ptec is carried when present.
func (c *Collector) normalize(entry map[string]any, mapping settingsdomain.FieldMapping) (*readingdomain.Reading, error) {
	createdAt, _ := entry["created_at"].(string)
	at, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q", createdAt)
	}

	papp, ok := numberField(entry, mapping.Papp)
	if !ok {
		return nil, fmt.Errorf("missing field %s (papp)", mapping.Papp)
	}
	hchc, ok := numberField(entry, mapping.Hchc)
	if !ok {
		return nil, fmt.Errorf("missing field %s (hchc)", mapping.Hchc)
	}
	hchp, ok := numberField(entry, mapping.Hchp)
	if !ok {
		return nil, fmt.Errorf("missing field %s (hchp)", mapping.Hchp)
	}

	reading := &readingdomain.Reading{
		Timestamp: readingdomain.FormatTime(at),
		Papp:      int(papp),
		Hchc:      hchc,
		Hchp:      hchp,
	}
	if ptec, ok := numberField(entry, mapping.Ptec); ok {
		value := int(ptec)
		reading.Ptec = &value
	}
	return reading, nil
}

func numberField(entry map[string]any, field string) (float64, bool) {
	raw, ok := entry[field]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
