package sales

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

// SaleStatus represents the status of a sales transaction
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusRefunded  SaleStatus = "refunded"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// IsValid checks if the sale status is valid
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusCompleted, SaleStatusRefunded, SaleStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if transitioning to the target status is allowed.
// A sale is born completed; refunded and cancelled are terminal.
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	switch s {
	case SaleStatusCompleted:
		return target == SaleStatusRefunded || target == SaleStatusCancelled
	default:
		return false
	}
}

// PaymentMethod represents how a sale was paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodQR       PaymentMethod = "qr"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodQR:
		return true
	}
	return false
}

// Sale is a completed point-of-sale transaction. The header total is
// fixed at creation; refunds and cancellations are status transitions
// plus audit records, never edits to the original figures.
type Sale struct {
	shared.BaseAggregateRoot
	Number        string          `gorm:"uniqueIndex;size:32;not null" json:"number"`
	StoreID       *uuid.UUID      `gorm:"type:uuid;index" json:"store_id,omitempty"`
	CashierID     uuid.UUID       `gorm:"type:uuid;not null" json:"cashier_id"`
	CustomerRef   string          `gorm:"size:100" json:"customer_ref,omitempty"`
	PaymentMethod PaymentMethod   `gorm:"size:20;not null" json:"payment_method"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	Currency      string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status        SaleStatus      `gorm:"size:20;not null" json:"status"`
	Lines         []SaleLine      `gorm:"foreignKey:SaleID" json:"lines"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales_transactions"
}

// SaleLine is one product position on a sale. Lines are immutable after
// creation except for the refunded quantity bookkeeping.
type SaleLine struct {
	shared.BaseEntity
	SaleID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity         int64           `gorm:"not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"line_total"`
	RefundedQuantity int64           `gorm:"not null;default:0" json:"refunded_quantity"`
}

// TableName returns the table name for GORM
func (SaleLine) TableName() string {
	return "sales_transaction_lines"
}

// NewSaleLine creates a sale line, pricing it from the authoritative unit price
func NewSaleLine(productID uuid.UUID, quantity int64, unitPrice valueobject.Money) (*SaleLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unit price cannot be negative")
	}

	return &SaleLine{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice.Amount,
		LineTotal:  unitPrice.Mul(quantity).Amount,
	}, nil
}

// RefundableQuantity returns how many units of this line can still be refunded
func (l *SaleLine) RefundableQuantity() int64 {
	return l.Quantity - l.RefundedQuantity
}

// NewSale creates a completed sale from its lines
func NewSale(number string, location valueobject.Location, cashierID uuid.UUID, customerRef string, method PaymentMethod, lines []*SaleLine) (*Sale, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sale number is required")
	}
	if err := location.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	if cashierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Cashier ID is required")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid payment method")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sale requires at least one line")
	}

	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		StoreID:           location.StoreIDPtr(),
		CashierID:         cashierID,
		CustomerRef:       customerRef,
		PaymentMethod:     method,
		TotalAmount:       decimal.Zero,
		Currency:          valueobject.DefaultCurrency,
		Status:            SaleStatusCompleted,
	}

	for _, line := range lines {
		line.SaleID = sale.ID
		sale.Lines = append(sale.Lines, *line)
		sale.TotalAmount = sale.TotalAmount.Add(line.LineTotal)
	}

	return sale, nil
}

// Location returns where the sale happened
func (s *Sale) Location() valueobject.Location {
	return valueobject.LocationFromStoreIDPtr(s.StoreID)
}

// Total returns the header total as a Money value object
func (s *Sale) Total() valueobject.Money {
	return valueobject.NewMoney(s.TotalAmount, s.Currency)
}

// LineRefund names a line and how many units to return
type LineRefund struct {
	LineID   uuid.UUID
	Quantity int64
}

// FullRefundLines names every line at its full refundable quantity
func (s *Sale) FullRefundLines() []LineRefund {
	refunds := make([]LineRefund, 0, len(s.Lines))
	for i := range s.Lines {
		if qty := s.Lines[i].RefundableQuantity(); qty > 0 {
			refunds = append(refunds, LineRefund{LineID: s.Lines[i].ID, Quantity: qty})
		}
	}
	return refunds
}

// Refund applies a partial or full refund. An empty line list means a
// full refund of every line. Each named line must have enough
// unrefunded quantity left; the header total is untouched and the
// refund value is returned for the audit record. The sale moves to
// the terminal refunded status.
func (s *Sale) Refund(refunds []LineRefund) (valueobject.Money, error) {
	if !s.Status.CanTransitionTo(SaleStatusRefunded) {
		return valueobject.Money{}, shared.ErrInvalidState
	}
	if len(refunds) == 0 {
		refunds = s.FullRefundLines()
	}

	amount := decimal.Zero
	seen := make(map[uuid.UUID]bool, len(refunds))
	for _, r := range refunds {
		if seen[r.LineID] {
			return valueobject.Money{}, shared.NewDomainError("INVALID_INPUT", "Duplicate line in refund request")
		}
		seen[r.LineID] = true

		line := s.findLine(r.LineID)
		if line == nil {
			return valueobject.Money{}, shared.ErrNotFound
		}
		if r.Quantity <= 0 || r.Quantity > line.RefundableQuantity() {
			return valueobject.Money{}, shared.ErrInvalidAmount
		}
		amount = amount.Add(line.UnitPrice.Mul(decimal.NewFromInt(r.Quantity)))
	}

	// All lines validated; apply.
	for _, r := range refunds {
		line := s.findLine(r.LineID)
		line.RefundedQuantity += r.Quantity
	}

	s.Status = SaleStatusRefunded
	s.IncrementVersion()
	return valueobject.NewMoney(amount, s.Currency), nil
}

// Cancel reverses the whole sale. Only a completed sale with no prior
// refunds can be cancelled; the full quantity of every line goes back
// to stock.
func (s *Sale) Cancel() error {
	if !s.Status.CanTransitionTo(SaleStatusCancelled) {
		return shared.ErrInvalidState
	}

	for i := range s.Lines {
		s.Lines[i].RefundedQuantity = s.Lines[i].Quantity
	}

	s.Status = SaleStatusCancelled
	s.IncrementVersion()
	return nil
}

func (s *Sale) findLine(lineID uuid.UUID) *SaleLine {
	for i := range s.Lines {
		if s.Lines[i].ID == lineID {
			return &s.Lines[i]
		}
	}
	return nil
}
