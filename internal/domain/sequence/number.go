package sequence

import (
	"fmt"
	"regexp"
	"time"

	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

// CentralDCPrefix is the document number prefix for the central
// distribution center.
const CentralDCPrefix = "DC"

// saleNumberPattern matches both store and DC sale numbers:
// STR007-20260831-0042 or DC-20260831-0042. The sequence part is at
// least four digits and grows past 9999 without padding changes.
var saleNumberPattern = regexp.MustCompile(`^(STR\d{3}|DC)-(\d{8})-(\d{4,})$`)

// LocationPrefix returns the document number prefix for a location
func LocationPrefix(loc valueobject.Location, storeCode int) string {
	if loc.IsCentralDC() {
		return CentralDCPrefix
	}
	return fmt.Sprintf("STR%03d", storeCode)
}

// FormatDocumentNumber renders a full document number from its parts
func FormatDocumentNumber(prefix string, date time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, date.Format("20060102"), seq)
}

// ParsedNumber holds the components of a validated document number
type ParsedNumber struct {
	Prefix   string
	Date     time.Time
	Sequence int64
}

// ParseDocumentNumber validates a document number and extracts its parts
func ParseDocumentNumber(number string) (*ParsedNumber, error) {
	m := saleNumberPattern.FindStringSubmatch(number)
	if m == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document number format is invalid")
	}

	date, err := time.Parse("20060102", m[2])
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document number date is invalid")
	}

	var seq int64
	if _, err := fmt.Sscanf(m[3], "%d", &seq); err != nil || seq <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document number sequence is invalid")
	}

	return &ParsedNumber{
		Prefix:   m[1],
		Date:     date,
		Sequence: seq,
	}, nil
}

// IsValidDocumentNumber reports whether a string is a well formed document number
func IsValidDocumentNumber(number string) bool {
	_, err := ParseDocumentNumber(number)
	return err == nil
}
