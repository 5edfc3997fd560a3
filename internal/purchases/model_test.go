package purchases

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestNewPurchaseInputTrimsFields(t *testing.T) {
	input, err := NewPurchaseInput("  Ana ", " bread,milk\n", 12.5, " 2024-01-01 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input.Buyer() != "Ana" {
		t.Fatalf("expected trimmed buyer, got %q", input.Buyer())
	}
	if input.Items() != "bread,milk" {
		t.Fatalf("expected trimmed items, got %q", input.Items())
	}
	if input.TotalPrice() != 12.5 {
		t.Fatalf("expected total price 12.5, got %v", input.TotalPrice())
	}
	if input.Date() != " 2024-01-01 " {
		t.Fatalf("expected date to be kept verbatim, got %q", input.Date())
	}
}

func TestNewPurchaseInputDoesNotBoundDate(t *testing.T) {
	longDate := strings.Repeat("d", maxTextLength+1)
	input, err := NewPurchaseInput("Ana", "bread", 1, longDate)
	if err != nil {
		t.Fatalf("expected any non-blank date to be accepted, got %v", err)
	}
	if input.Date() != longDate {
		t.Fatalf("expected date of length %d, got length %d", len(longDate), len(input.Date()))
	}
}

func TestNewPurchaseInputKeepsCallerOwnedValues(t *testing.T) {
	input, err := NewPurchaseInput("Luis", "refund", -3.333, "yesterday")
	if err != nil {
		t.Fatalf("negative prices and free-form dates are the caller's concern: %v", err)
	}
	if input.TotalPrice() != -3.333 {
		t.Fatalf("expected price to be stored unrounded, got %v", input.TotalPrice())
	}
	if input.Date() != "yesterday" {
		t.Fatalf("expected date to be stored verbatim, got %q", input.Date())
	}
}

func TestNewPurchaseInputRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name       string
		buyer      string
		items      string
		totalPrice float64
		date       string
		expected   error
	}{
		{name: "empty buyer", buyer: "", items: "eggs", totalPrice: 3, date: "2024-01-02", expected: ErrInvalidBuyer},
		{name: "blank buyer", buyer: "   ", items: "eggs", totalPrice: 3, date: "2024-01-02", expected: ErrInvalidBuyer},
		{name: "empty items", buyer: "Luis", items: "", totalPrice: 3, date: "2024-01-02", expected: ErrInvalidItems},
		{name: "oversized items", buyer: "Luis", items: strings.Repeat("x", maxTextLength+1), totalPrice: 3, date: "2024-01-02", expected: ErrInvalidItems},
		{name: "nan price", buyer: "Luis", items: "eggs", totalPrice: math.NaN(), date: "2024-01-02", expected: ErrInvalidTotalPrice},
		{name: "infinite price", buyer: "Luis", items: "eggs", totalPrice: math.Inf(1), date: "2024-01-02", expected: ErrInvalidTotalPrice},
		{name: "empty date", buyer: "Luis", items: "eggs", totalPrice: 3, date: "\t", expected: ErrInvalidDate},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := NewPurchaseInput(testCase.buyer, testCase.items, testCase.totalPrice, testCase.date)
			if !errors.Is(err, testCase.expected) {
				t.Fatalf("expected %v, got %v", testCase.expected, err)
			}
			if !errors.Is(err, ErrValidationFailure) {
				t.Fatalf("expected validation failure, got %v", err)
			}
			if errors.Is(err, ErrStorageFailure) {
				t.Fatalf("validation errors must not be reported as storage failures")
			}
		})
	}
}
