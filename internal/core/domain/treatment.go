package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingType determines how a treatment method's rate is applied.
type BillingType string

const (
	// BillingHourly bills rate × duration_hours per treatment.
	BillingHourly BillingType = "hourly"
	// BillingSession bills the flat rate once per treatment.
	BillingSession BillingType = "session"
)

// Valid reports whether b is one of the known billing types.
func (b BillingType) Valid() bool {
	return b == BillingHourly || b == BillingSession
}

// TreatmentMethod is a billable service with a monetary rate.
// Rate uses fixed-point decimal semantics; it is never represented as a
// binary float anywhere on the money path.
type TreatmentMethod struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	BillingType BillingType     `json:"billing_type"`
	Rate        decimal.Decimal `json:"rate"`
}

// Treatment is a single rendered treatment for a client.
//
// DurationHours is required and positive for hourly methods and must be
// absent for session methods. A treatment is created unbilled; the
// invoice aggregator flips IsBilled and sets InvoiceID exactly once,
// and only a whole-invoice void ever reverses that.
type Treatment struct {
	ID                int64               `json:"id"`
	ClientID          int64               `json:"client_id"`
	TreatmentMethodID int64               `json:"treatment_method_id"`
	TreatmentDate     time.Time           `json:"treatment_date"`
	DurationHours     decimal.NullDecimal `json:"duration_hours"`
	Notes             string              `json:"notes,omitempty"`
	IsBilled          bool                `json:"is_billed"`
	InvoiceID         *int64              `json:"invoice_id,omitempty"`
}
