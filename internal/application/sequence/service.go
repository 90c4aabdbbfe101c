package sequence

import (
	"context"
	"time"

	"github.com/retailerp/backend/internal/domain/catalog"
	"github.com/retailerp/backend/internal/domain/sequence"
	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

// Service issues and inspects document numbers. Issuance is atomic:
// concurrent calls for the same location and day never observe the
// same sequence value.
type Service struct {
	scope     TransactionScope
	storeRepo catalog.StoreRepository
	now       func() time.Time
}

// NewService creates a new sequence Service
func NewService(scope TransactionScope, storeRepo catalog.StoreRepository) *Service {
	return &Service{
		scope:     scope,
		storeRepo: storeRepo,
		now:       time.Now,
	}
}

// resolvePrefix maps a location to its document number prefix,
// verifying that a store location actually exists.
func (s *Service) resolvePrefix(ctx context.Context, location valueobject.Location) (string, error) {
	if err := location.Validate(); err != nil {
		return "", shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	if location.IsCentralDC() {
		return sequence.CentralDCPrefix, nil
	}

	store, err := s.storeRepo.FindByID(ctx, location.StoreID)
	if err != nil {
		return "", err
	}
	return sequence.LocationPrefix(location, store.Code), nil
}

// NextNumber issues the next document number for a location. The
// counter row is created lazily; the increment is a single atomic
// statement so concurrent issuers get distinct, gapless values.
func (s *Service) NextNumber(ctx context.Context, location valueobject.Location) (string, error) {
	prefix, err := s.resolvePrefix(ctx, location)
	if err != nil {
		return "", err
	}

	issuedAt := s.now()
	counterID := sequence.CounterID(prefix, issuedAt)

	var number string
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.CounterRepo().EnsureExists(ctx, counterID); err != nil {
			return err
		}
		seq, err := repos.CounterRepo().Increment(ctx, counterID)
		if err != nil {
			return err
		}
		number = sequence.FormatDocumentNumber(prefix, issuedAt, seq)
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

// CurrentValue returns today's counter value for a location without
// advancing it. Zero means nothing has been issued today.
func (s *Service) CurrentValue(ctx context.Context, location valueobject.Location) (int64, error) {
	prefix, err := s.resolvePrefix(ctx, location)
	if err != nil {
		return 0, err
	}

	counterID := sequence.CounterID(prefix, s.now())

	var value int64
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		v, err := repos.CounterRepo().CurrentValue(ctx, counterID)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	return value, err
}

// Reset forces today's counter for a location to a specific value.
// Administrative use only: resetting a live counter reissues numbers.
func (s *Service) Reset(ctx context.Context, location valueobject.Location, value int64) error {
	if value < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Counter value cannot be negative")
	}

	prefix, err := s.resolvePrefix(ctx, location)
	if err != nil {
		return err
	}

	counterID := sequence.CounterID(prefix, s.now())
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.CounterRepo().EnsureExists(ctx, counterID); err != nil {
			return err
		}
		return repos.CounterRepo().Reset(ctx, counterID, value)
	})
}

// Validate reports whether text is a well formed document number. The
// check is purely syntactic; it does not consult counters.
func (s *Service) Validate(text string) bool {
	return sequence.IsValidDocumentNumber(text)
}
