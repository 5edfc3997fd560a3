package purchases

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const maxTextLength = 4096

var (
	// ErrValidationFailure indicates malformed input rejected before any storage access.
	ErrValidationFailure = errors.New("purchases: validation failure")
	// ErrStorageFailure indicates the durable medium could not complete a read or write.
	ErrStorageFailure = errors.New("purchases: storage failure")

	// ErrInvalidBuyer indicates that the buyer is empty or exceeds storage bounds.
	ErrInvalidBuyer = fmt.Errorf("%w: invalid buyer", ErrValidationFailure)
	// ErrInvalidItems indicates that the item description is empty or exceeds storage bounds.
	ErrInvalidItems = fmt.Errorf("%w: invalid items", ErrValidationFailure)
	// ErrInvalidTotalPrice indicates that the total price is NaN or infinite.
	ErrInvalidTotalPrice = fmt.Errorf("%w: invalid total price", ErrValidationFailure)
	// ErrInvalidDate indicates that the date text is blank.
	ErrInvalidDate = fmt.Errorf("%w: invalid date", ErrValidationFailure)
)

// Purchase is the persisted purchase record. ID is assigned by the store and never reused.
type Purchase struct {
	ID         int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Buyer      string  `gorm:"column:buyer;type:text;not null" json:"buyer"`
	Items      string  `gorm:"column:items;type:text;not null" json:"items"`
	TotalPrice float64 `gorm:"column:total_price;not null" json:"total_price"`
	Date       string  `gorm:"column:date;type:text;not null" json:"date"`
}

// TableName provides the explicit table binding for GORM.
func (Purchase) TableName() string {
	return "purchases"
}

// PurchaseInput is a validated set of caller-supplied purchase fields.
type PurchaseInput struct {
	buyer      string
	items      string
	totalPrice float64
	date       string
}

// NewPurchaseInput validates raw input and returns a PurchaseInput.
// Buyer and items are trimmed and bounded. The date is only required to be
// non-blank and is otherwise stored verbatim; sign and rounding of the price
// are the caller's concern.
func NewPurchaseInput(buyer, items string, totalPrice float64, date string) (PurchaseInput, error) {
	trimmedBuyer, err := requireText(buyer, ErrInvalidBuyer)
	if err != nil {
		return PurchaseInput{}, err
	}
	trimmedItems, err := requireText(items, ErrInvalidItems)
	if err != nil {
		return PurchaseInput{}, err
	}
	if math.IsNaN(totalPrice) || math.IsInf(totalPrice, 0) {
		return PurchaseInput{}, fmt.Errorf("%w: %v", ErrInvalidTotalPrice, totalPrice)
	}
	if strings.TrimSpace(date) == "" {
		return PurchaseInput{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	return PurchaseInput{
		buyer:      trimmedBuyer,
		items:      trimmedItems,
		totalPrice: totalPrice,
		date:       date,
	}, nil
}

// Buyer returns the validated buyer.
func (in PurchaseInput) Buyer() string {
	return in.buyer
}

// Items returns the validated item description.
func (in PurchaseInput) Items() string {
	return in.items
}

// TotalPrice returns the validated total price.
func (in PurchaseInput) TotalPrice() float64 {
	return in.totalPrice
}

// Date returns the date text exactly as supplied.
func (in PurchaseInput) Date() string {
	return in.date
}

func (in PurchaseInput) isZero() bool {
	return in.buyer == "" && in.items == "" && in.date == ""
}

func (in PurchaseInput) record() Purchase {
	return Purchase{
		Buyer:      in.buyer,
		Items:      in.items,
		TotalPrice: in.totalPrice,
		Date:       in.date,
	}
}

func requireText(rawInput string, sentinel error) (string, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", sentinel)
	}
	if len(trimmed) > maxTextLength {
		return "", fmt.Errorf("%w: exceeds %d characters", sentinel, maxTextLength)
	}
	return trimmed, nil
}
