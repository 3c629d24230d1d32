package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categories lists the accepted tax rate categories.
var Categories = []string{"STATE", "LOCAL", "FEDERAL", "COUNTY", "CITY", "SPECIAL", "OTHER"}

// Rate is a configured tax rate expressed as a percentage.
type Rate struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Rate        decimal.Decimal `json:"rate"`
	Category    string          `json:"category"`
	Description *string         `json:"description,omitempty"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// RateInput creates a tax rate. IsActive defaults to true.
type RateInput struct {
	Name        string           `json:"name" validate:"required,max=120"`
	Rate        *decimal.Decimal `json:"rate"`
	Category    string           `json:"category" validate:"required"`
	Description *string          `json:"description"`
	IsActive    *bool            `json:"isActive"`
}

// RateUpdate patches a tax rate; nil fields are left unchanged.
type RateUpdate struct {
	Name        *string          `json:"name" validate:"omitempty,max=120"`
	Rate        *decimal.Decimal `json:"rate"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	IsActive    *bool            `json:"isActive"`
}

// RateRef is the subset of a rate joined onto each record.
type RateRef struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Rate     decimal.Decimal `json:"rate"`
	Category string          `json:"category"`
}

// Transaction is the joined order or register session behind a record.
type Transaction struct {
	ID        string     `json:"id"`
	Subtotal  int64      `json:"subtotal"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Record is one accrued tax liability.
type Record struct {
	ID                string       `json:"id"`
	TaxRate           RateRef      `json:"taxRate"`
	OrderID           *string      `json:"orderId,omitempty"`
	RegisterSessionID *string      `json:"registerSessionId,omitempty"`
	Order             *Transaction `json:"order,omitempty"`
	RegisterSession   *Transaction `json:"registerSession,omitempty"`
	TaxableAmount     int64        `json:"taxableAmount"`
	TaxAmount         int64        `json:"taxAmount"`
	PeriodStart       time.Time    `json:"periodStart"`
	PeriodEnd         time.Time    `json:"periodEnd"`
	IsPaid            bool         `json:"isPaid"`
	PaidDate          *time.Time   `json:"paidDate,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
}

// Filters narrows GetTaxRecords and GetTaxSummary. From and To bound the record period.
type Filters struct {
	From     *time.Time
	To       *time.Time
	Category *string
	IsPaid   *bool
}

// RecordOptions configures an ad-hoc CreateTaxRecords call.
type RecordOptions struct {
	OrderID           *string    `json:"orderId"`
	RegisterSessionID *string    `json:"registerSessionId"`
	Category          *string    `json:"category"`
	At                *time.Time `json:"at"`
}

// CalculationResult reports what a period run or ad-hoc call wrote. Skipped counts
// transactions that already carried records for the period.
type CalculationResult struct {
	PeriodStart      time.Time `json:"periodStart"`
	PeriodEnd        time.Time `json:"periodEnd"`
	Orders           int       `json:"orders"`
	RegisterSessions int       `json:"registerSessions"`
	Created          int       `json:"created"`
	Skipped          int       `json:"skipped"`
}

// Totals are the amounts folded from a set of records.
type Totals struct {
	TotalTaxable int64 `json:"totalTaxable"`
	TotalTaxDue  int64 `json:"totalTaxDue"`
	TotalPaid    int64 `json:"totalPaid"`
	TotalUnpaid  int64 `json:"totalUnpaid"`
	RecordCount  int   `json:"recordCount"`
}

// CategoryBreakdown holds the totals of one rate category.
type CategoryBreakdown struct {
	Category string `json:"category"`
	Totals
}

// Summary aggregates a filtered set of records.
type Summary struct {
	Totals
	ByCategory []CategoryBreakdown `json:"byCategory"`
}

// Window is an unpaid tax total for a fixed calendar window.
type Window struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Unpaid int64     `json:"unpaid"`
}

// DueOverview is the unpaid tax for the current month, quarter and year.
type DueOverview struct {
	Month   Window `json:"month"`
	Quarter Window `json:"quarter"`
	Year    Window `json:"year"`
}
