package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailerp/backend/internal/domain/sequence"
	"github.com/retailerp/backend/internal/domain/shared"
)

// GormCounterRepository implements sequence.CounterRepository using GORM.
// Increment is a single UPDATE ... RETURNING statement; the database is
// the only coordination point, so concurrent issuers always get
// distinct, gapless values.
type GormCounterRepository struct {
	db *gorm.DB
}

// NewGormCounterRepository creates a new GormCounterRepository
func NewGormCounterRepository(db *gorm.DB) *GormCounterRepository {
	return &GormCounterRepository{db: db}
}

// EnsureExists creates the counter row at zero if absent. ON CONFLICT
// DO NOTHING makes concurrent creation safe.
func (r *GormCounterRepository) EnsureExists(ctx context.Context, id string) error {
	counter, err := sequence.NewCounter(id)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(counter).Error
}

// Increment atomically advances the counter and returns the new value
func (r *GormCounterRepository) Increment(ctx context.Context, id string) (int64, error) {
	var value int64
	result := r.db.WithContext(ctx).Raw(
		`UPDATE sequence_counters SET current_value = current_value + 1, updated_at = NOW() WHERE id = ? RETURNING current_value`,
		id,
	).Scan(&value)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, shared.ErrNotFound
	}
	return value, nil
}

// CurrentValue returns the counter's value without advancing it.
// A counter that was never created reads as zero.
func (r *GormCounterRepository) CurrentValue(ctx context.Context, id string) (int64, error) {
	var value int64
	result := r.db.WithContext(ctx).Raw(
		`SELECT current_value FROM sequence_counters WHERE id = ?`, id,
	).Scan(&value)
	if result.Error != nil {
		return 0, result.Error
	}
	return value, nil
}

// Reset forces the counter to a specific value
func (r *GormCounterRepository) Reset(ctx context.Context, id string, value int64) error {
	result := r.db.WithContext(ctx).
		Model(&sequence.Counter{}).
		Where("id = ?", id).
		Update("current_value", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ sequence.CounterRepository = (*GormCounterRepository)(nil)
