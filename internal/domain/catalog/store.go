package catalog

import (
	"strings"

	"github.com/retailerp/backend/internal/domain/shared"
)

// StoreStatus represents the lifecycle status of a store
type StoreStatus string

const (
	StoreStatusActive   StoreStatus = "active"
	StoreStatusInactive StoreStatus = "inactive"
)

// IsValid checks if the store status is valid
func (s StoreStatus) IsValid() bool {
	switch s {
	case StoreStatusActive, StoreStatusInactive:
		return true
	}
	return false
}

// Store represents a retail store location
type Store struct {
	shared.BaseEntity
	// Code is the store's numeric code, rendered as a three digit
	// prefix in sale numbers (store 7 issues STR007-...).
	Code    int         `gorm:"uniqueIndex;not null" json:"code"`
	Name    string      `gorm:"size:255;not null" json:"name"`
	Address string      `gorm:"size:500" json:"address"`
	Status  StoreStatus `gorm:"size:20;not null;default:'active'" json:"status"`
}

// TableName returns the table name for GORM
func (Store) TableName() string {
	return "stores"
}

// NewStore creates a new store with validation
func NewStore(code int, name, address string) (*Store, error) {
	if code <= 0 || code > 999 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Store code must be between 1 and 999")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Store name is required")
	}

	return &Store{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		Address:    strings.TrimSpace(address),
		Status:     StoreStatusActive,
	}, nil
}

// IsActive returns true if the store can trade
func (s *Store) IsActive() bool {
	return s.Status == StoreStatusActive
}

// Deactivate marks the store inactive
func (s *Store) Deactivate() {
	s.Status = StoreStatusInactive
}

// Activate marks the store active
func (s *Store) Activate() {
	s.Status = StoreStatusActive
}
