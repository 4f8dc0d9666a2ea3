package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ResolveLineAmount computes the invoice line amount for a treatment
// billed under the given method.
//
//	hourly:  rate × duration_hours, rounded to 2 decimals half-up
//	session: the flat rate; duration must be absent
//
// The result is exact fixed-point arithmetic end to end.
func ResolveLineAmount(method TreatmentMethod, duration decimal.NullDecimal) (decimal.Decimal, error) {
	switch method.BillingType {
	case BillingHourly:
		if !duration.Valid {
			return decimal.Zero, fmt.Errorf("%w: hourly method %q requires duration_hours", ErrInvalidBillingInput, method.Name)
		}
		if !duration.Decimal.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: duration_hours must be positive, got %s", ErrInvalidBillingInput, duration.Decimal)
		}
		return method.Rate.Mul(duration.Decimal).Round(2), nil
	case BillingSession:
		if duration.Valid {
			return decimal.Zero, fmt.Errorf("%w: session method %q does not take duration_hours", ErrInvalidBillingInput, method.Name)
		}
		return method.Rate.Round(2), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown billing type %q", ErrInvalidBillingInput, method.BillingType)
	}
}

// ValidateDuration checks the billing-type/duration pairing without
// computing an amount, so treatments are rejected at creation time
// rather than at invoice generation.
func ValidateDuration(billingType BillingType, duration decimal.NullDecimal) error {
	_, err := ResolveLineAmount(TreatmentMethod{BillingType: billingType}, duration)
	return err
}
