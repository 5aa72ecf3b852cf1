// Package domain contains the persistence model for raw meter readings.
package domain

import "time"

// TimeLayout is the sortable UTC format readings are keyed by. Keeping the
// key as a string preserves lexicographic ordering in range queries.
const TimeLayout = "2006-01-02T15:04:05Z"

// Reading stores a single meter sample. hchc/hchp are cumulative energy
// indices in kWh and never decrease for a healthy meter.
type Reading struct {
	Timestamp string  `gorm:"primaryKey;type:text" json:"timestamp"`
	Papp      int     `gorm:"not null" json:"papp"`
	Hchc      float64 `gorm:"not null" json:"hchc"`
	Hchp      float64 `gorm:"not null" json:"hchp"`
	Ptec      *int    `gorm:"" json:"ptec,omitempty"`
}

// TableName sets the database table name.
func (Reading) TableName() string { return "consumption_data" }

// Time parses the reading key back into a UTC instant.
func (r Reading) Time() (time.Time, error) {
	return time.Parse(TimeLayout, r.Timestamp)
}

// FormatTime renders an instant as a reading key.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a reading key.
func ParseTime(value string) (time.Time, error) {
	return time.Parse(TimeLayout, value)
}
