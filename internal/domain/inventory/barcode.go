package inventory

import (
	"fmt"
	"math/rand"
)

// GenerateBarcode builds a shelf label barcode for a new stock record,
// e.g. "STR001-X123-483921". The random suffix disambiguates relabelled
// records; uniqueness is not load-bearing.
func GenerateBarcode(locationPrefix, sku string) string {
	if len(sku) > 8 {
		sku = sku[:8]
	}
	return fmt.Sprintf("%s-%s-%06d", locationPrefix, sku, rand.Intn(1000000))
}
