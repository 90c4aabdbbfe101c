package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// IsValid checks if the product status is valid
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive, ProductStatusDiscontinued:
		return true
	}
	return false
}

// Product represents a sellable item in the catalog
type Product struct {
	shared.BaseEntity
	SKU       string          `gorm:"uniqueIndex;size:100;not null" json:"sku"`
	Barcode   string          `gorm:"index;size:100" json:"barcode"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	Currency  string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	// MinStockLevel is advisory: reads flag stock below this level,
	// nothing blocks on it.
	MinStockLevel int64         `gorm:"not null;default:0" json:"min_stock_level"`
	Status        ProductStatus `gorm:"size:20;not null;default:'active'" json:"status"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with validation
func NewProduct(sku, name string, unitPrice decimal.Decimal) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product SKU is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product name is required")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unit price cannot be negative")
	}

	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		SKU:        sku,
		Name:       name,
		UnitPrice:  unitPrice,
		Currency:   valueobject.DefaultCurrency,
		Status:     ProductStatusActive,
	}, nil
}

// Price returns the unit price as a Money value object
func (p *Product) Price() valueobject.Money {
	return valueobject.NewMoney(p.UnitPrice, p.Currency)
}

// IsActive returns true if the product can be sold
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// Discontinue marks the product as no longer sellable
func (p *Product) Discontinue() {
	p.Status = ProductStatusDiscontinued
}

// UpdatePrice changes the unit price
func (p *Product) UpdatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Unit price cannot be negative")
	}
	p.UnitPrice = price
	return nil
}
