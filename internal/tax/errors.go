package tax

import (
	"errors"
	"net/http"

	"github.com/noah-isme/repairshop-api/internal/common"
)

// Error codes specific to the tax engine.
const (
	CodeNoActiveRates  = "NO_ACTIVE_RATES"
	CodeNoTransactions = "NO_TRANSACTIONS"
)

var (
	// ErrNoActiveRates is returned when a calculation finds no active tax rate to apply.
	ErrNoActiveRates = errors.New("no active tax rates")
	// ErrNoTransactions is returned when the period contains no orders or register sessions.
	ErrNoTransactions = errors.New("no orders or register sessions in period")
	// ErrRateNotFound is returned for an unknown tax rate id.
	ErrRateNotFound = errors.New("tax rate not found")
	// ErrRateInUse is returned when deleting a rate that tax records still reference.
	ErrRateInUse = errors.New("tax rate is referenced by tax records")
	// ErrSourceNotFound is returned when an ad-hoc record names an unknown order or register session.
	ErrSourceNotFound = errors.New("order or register session not found")
	// ErrCalculationRunning is returned when another writer holds the period lock.
	ErrCalculationRunning = errors.New("tax calculation already running for period")
)

func noActiveRates() error {
	return common.NewAppError(CodeNoActiveRates, ErrNoActiveRates.Error(), http.StatusUnprocessableEntity, ErrNoActiveRates)
}

func noTransactions() error {
	return common.NewAppError(CodeNoTransactions, ErrNoTransactions.Error(), http.StatusUnprocessableEntity, ErrNoTransactions)
}

func rateNotFound() error {
	return common.NotFound(ErrRateNotFound.Error(), ErrRateNotFound)
}
