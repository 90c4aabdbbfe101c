package valueobject

import (
	"fmt"

	"github.com/google/uuid"
)

// LocationKind distinguishes the two kinds of stock-holding locations
type LocationKind string

const (
	// LocationKindStore is a retail store location
	LocationKindStore LocationKind = "store"
	// LocationKindCentralDC is the single central distribution center
	LocationKindCentralDC LocationKind = "central_dc"
)

// Location identifies where stock is held: either a specific store or the
// central distribution center. Persisted as a nullable store_id column
// where NULL means the central DC.
type Location struct {
	Kind    LocationKind `json:"kind"`
	StoreID uuid.UUID    `json:"store_id,omitempty"`
}

// StoreLocation creates a location for a retail store
func StoreLocation(storeID uuid.UUID) Location {
	return Location{Kind: LocationKindStore, StoreID: storeID}
}

// CentralDCLocation creates the central distribution center location
func CentralDCLocation() Location {
	return Location{Kind: LocationKindCentralDC}
}

// LocationFromStoreIDPtr reconstructs a location from a nullable store_id column
func LocationFromStoreIDPtr(storeID *uuid.UUID) Location {
	if storeID == nil {
		return CentralDCLocation()
	}
	return StoreLocation(*storeID)
}

// IsStore returns true if the location is a retail store
func (l Location) IsStore() bool {
	return l.Kind == LocationKindStore
}

// IsCentralDC returns true if the location is the central distribution center
func (l Location) IsCentralDC() bool {
	return l.Kind == LocationKindCentralDC
}

// StoreIDPtr returns the store ID for persistence, nil for the central DC
func (l Location) StoreIDPtr() *uuid.UUID {
	if l.IsCentralDC() {
		return nil
	}
	id := l.StoreID
	return &id
}

// Equals returns true if both locations refer to the same place
func (l Location) Equals(other Location) bool {
	if l.Kind != other.Kind {
		return false
	}
	if l.IsCentralDC() {
		return true
	}
	return l.StoreID == other.StoreID
}

// Validate checks structural validity
func (l Location) Validate() error {
	switch l.Kind {
	case LocationKindStore:
		if l.StoreID == uuid.Nil {
			return fmt.Errorf("store location requires a store ID")
		}
		return nil
	case LocationKindCentralDC:
		if l.StoreID != uuid.Nil {
			return fmt.Errorf("central DC location must not carry a store ID")
		}
		return nil
	default:
		return fmt.Errorf("unknown location kind: %s", l.Kind)
	}
}

// String returns a human readable representation
func (l Location) String() string {
	if l.IsCentralDC() {
		return "central-dc"
	}
	return fmt.Sprintf("store:%s", l.StoreID)
}
