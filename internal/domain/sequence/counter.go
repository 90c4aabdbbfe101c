package sequence

import (
	"fmt"
	"time"

	"github.com/retailerp/backend/internal/domain/shared"
)

// Counter is a named atomic counter. One row exists per (prefix, business
// date) pair; the row ID doubles as the document number prefix so that
// "STR007-20260831" and "DC-20260831" count independently.
type Counter struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	CurrentValue int64     `gorm:"not null;default:0" json:"current_value"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Counter) TableName() string {
	return "sequence_counters"
}

// NewCounter creates a counter starting at zero
func NewCounter(id string) (*Counter, error) {
	if id == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Counter ID is required")
	}
	now := time.Now()
	return &Counter{
		ID:           id,
		CurrentValue: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CounterID builds the counter row ID for a prefix and business date
func CounterID(prefix string, date time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, date.Format("20060102"))
}
