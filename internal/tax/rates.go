package tax

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/repairshop-api/internal/common"
	"github.com/noah-isme/repairshop-api/internal/db"
	dbgen "github.com/noah-isme/repairshop-api/internal/db/gen"
)

var maxPercent = decimal.NewFromInt(100)

// ListRates returns every configured rate, active or not.
func (s *Service) ListRates(ctx context.Context) ([]Rate, error) {
	rows, err := s.queries.ListTaxRates(ctx)
	if err != nil {
		return nil, s.fail("list tax rates", err)
	}
	return lo.Map(rows, toRate), nil
}

// GetActiveTaxRates returns the rates applied by calculations.
func (s *Service) GetActiveTaxRates(ctx context.Context) ([]Rate, error) {
	rows, err := s.queries.ListActiveTaxRates(ctx)
	if err != nil {
		return nil, s.fail("list active tax rates", err)
	}
	return lo.Map(rows, toRate), nil
}

// CreateRate stores a new tax rate.
func (s *Service) CreateRate(ctx context.Context, in RateInput) (Rate, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := common.Validate(in); err != nil {
		return Rate{}, err
	}
	if in.Rate == nil {
		return Rate{}, common.Invalid("rate", "rate is required")
	}
	if err := checkPercent(*in.Rate); err != nil {
		return Rate{}, err
	}
	category, err := normalizeCategory("category", in.Category)
	if err != nil {
		return Rate{}, err
	}
	row, err := s.queries.CreateTaxRate(ctx, dbgen.CreateTaxRateParams{
		Name:        in.Name,
		Rate:        db.Numeric(*in.Rate),
		Category:    category,
		Description: db.Text(in.Description),
		IsActive:    in.IsActive == nil || *in.IsActive,
	})
	if err != nil {
		return Rate{}, s.fail("create tax rate", mapRateWriteError(err))
	}
	return toRate(row, 0), nil
}

// UpdateRate patches the given fields of a rate.
func (s *Service) UpdateRate(ctx context.Context, rateID string, in RateUpdate) (Rate, error) {
	id, err := parseID("rateId", rateID)
	if err != nil {
		return Rate{}, err
	}
	if err := common.Validate(in); err != nil {
		return Rate{}, err
	}
	params := dbgen.UpdateTaxRateParams{ID: id, Description: db.Text(in.Description)}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Rate{}, common.Invalid("name", "name must not be blank")
		}
		params.Name = pgtype.Text{String: name, Valid: true}
	}
	if in.Rate != nil {
		if err := checkPercent(*in.Rate); err != nil {
			return Rate{}, err
		}
		params.Rate = db.Numeric(*in.Rate)
	}
	if in.Category != nil {
		category, err := normalizeCategory("category", *in.Category)
		if err != nil {
			return Rate{}, err
		}
		params.Category = pgtype.Text{String: category, Valid: true}
	}
	if in.IsActive != nil {
		params.IsActive = pgtype.Bool{Bool: *in.IsActive, Valid: true}
	}
	row, err := s.queries.UpdateTaxRate(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rate{}, rateNotFound()
		}
		return Rate{}, s.fail("update tax rate", mapRateWriteError(err))
	}
	return toRate(row, 0), nil
}

// DeleteRate removes a rate that no tax record references. Referenced rates
// fail with ErrRateInUse and should be deactivated instead.
func (s *Service) DeleteRate(ctx context.Context, rateID string) error {
	id, err := parseID("rateId", rateID)
	if err != nil {
		return err
	}
	n, err := s.queries.DeleteTaxRate(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return common.CannotDelete("tax rate is used by tax records; deactivate it instead", ErrRateInUse)
		}
		return s.fail("delete tax rate", err)
	}
	if n == 0 {
		return rateNotFound()
	}
	return nil
}

func checkPercent(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(maxPercent) {
		return common.Invalid("rate", "rate must be between 0 and 100")
	}
	if !rate.Equal(rate.Round(4)) {
		return common.Invalid("rate", "rate supports at most four decimal places")
	}
	return nil
}

func mapRateWriteError(err error) error {
	if db.IsCheckViolation(err) {
		return common.Invalid("rate", "tax rate violates "+db.ConstraintName(err))
	}
	return err
}

func toRate(r dbgen.TaxRate, _ int) Rate {
	return Rate{
		ID:          db.UUIDString(r.ID),
		Name:        r.Name,
		Rate:        db.Decimal(r.Rate),
		Category:    r.Category,
		Description: db.TextPtr(r.Description),
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}
