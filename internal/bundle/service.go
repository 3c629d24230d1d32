package bundle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/noah-isme/repairshop-api/internal/common"
	"github.com/noah-isme/repairshop-api/internal/db"
	dbgen "github.com/noah-isme/repairshop-api/internal/db/gen"
	"github.com/noah-isme/repairshop-api/internal/events"
	"github.com/noah-isme/repairshop-api/internal/obs"
	"github.com/noah-isme/repairshop-api/internal/pricing"
)

// Querier is the subset of generated queries the bundle engine depends on.
type Querier interface {
	CreateBundle(ctx context.Context, arg dbgen.CreateBundleParams) (dbgen.Bundle, error)
	GetBundle(ctx context.Context, id pgtype.UUID) (dbgen.Bundle, error)
	CountBundles(ctx context.Context, arg dbgen.CountBundlesParams) (int64, error)
	ListBundles(ctx context.Context, arg dbgen.ListBundlesParams) ([]dbgen.Bundle, error)
	ListAllBundles(ctx context.Context) ([]dbgen.Bundle, error)
	UpdateBundle(ctx context.Context, arg dbgen.UpdateBundleParams) (dbgen.Bundle, error)
	DeleteBundle(ctx context.Context, id pgtype.UUID) (int64, error)
	AddBundleCategory(ctx context.Context, arg dbgen.AddBundleCategoryParams) error
	ClearBundleCategories(ctx context.Context, bundleID pgtype.UUID) error
	ListBundleCategoryIDs(ctx context.Context, bundleIds []pgtype.UUID) ([]dbgen.BundleCategory, error)
	CreateBundleVariation(ctx context.Context, arg dbgen.CreateBundleVariationParams) (dbgen.BundleVariation, error)
	ListBundleVariations(ctx context.Context, bundleIds []pgtype.UUID) ([]dbgen.BundleVariation, error)
	UpsertBundleComponent(ctx context.Context, arg dbgen.UpsertBundleComponentParams) (dbgen.BundleComponent, error)
	DeleteBundleComponent(ctx context.Context, arg dbgen.DeleteBundleComponentParams) (int64, error)
	ListBundleComponents(ctx context.Context, bundleIds []pgtype.UUID) ([]dbgen.ListBundleComponentsRow, error)
	ListComponentStock(ctx context.Context, bundleIds []pgtype.UUID) ([]dbgen.ListComponentStockRow, error)
	ListLocations(ctx context.Context) ([]dbgen.Location, error)
	GetLocation(ctx context.Context, id pgtype.UUID) (dbgen.Location, error)
	GetVariationsByIDs(ctx context.Context, ids []pgtype.UUID) ([]dbgen.InventoryVariation, error)
}

// TxRunner runs fn inside a single database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Querier) error) error
}

// Service implements the bundle stock and price engine.
type Service struct {
	queries      Querier
	tx           TxRunner
	events       events.Emitter
	metrics      *obs.DomainMetrics
	logger       zerolog.Logger
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      Querier
	Tx           TxRunner
	Events       events.Emitter
	Metrics      *obs.DomainMetrics
	Logger       zerolog.Logger
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("bundle: queries provider is required")
	}
	if cfg.Tx == nil {
		return nil, errors.New("bundle: transaction runner is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		queries:      cfg.Queries,
		tx:           cfg.Tx,
		events:       cfg.Events,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ParseListParams reads q, categoryId, page and limit from the request query.
func (s *Service) ParseListParams(r *http.Request) (ListParams, error) {
	page, limit, err := common.ParsePagination(r, s.defaultLimit, s.maxLimit)
	if err != nil {
		return ListParams{}, err
	}
	values := r.URL.Query()
	params := ListParams{
		Query:      strings.TrimSpace(values.Get("q")),
		CategoryID: strings.TrimSpace(values.Get("categoryId")),
		Page:       page,
		Limit:      limit,
	}
	if params.CategoryID != "" {
		if _, err := db.ParseUUID(params.CategoryID); err != nil {
			return ListParams{}, common.BadRequest("categoryId", "categoryId must be a valid uuid", err)
		}
	}
	return params, nil
}

// CalculateBundleStock returns how many complete bundles can be assembled at each location
// and in total. With a location id only that location is evaluated.
func (s *Service) CalculateBundleStock(ctx context.Context, bundleID string, locationID *string) (Stock, error) {
	id, err := parseID("bundleId", bundleID)
	if err != nil {
		return Stock{}, err
	}
	if _, err := s.queries.GetBundle(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Stock{}, bundleNotFound()
		}
		return Stock{}, s.fail("get bundle", err)
	}

	var locations []LocationRef
	if locationID != nil && strings.TrimSpace(*locationID) != "" {
		locID, err := parseID("locationId", *locationID)
		if err != nil {
			return Stock{}, err
		}
		loc, err := s.queries.GetLocation(ctx, locID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Stock{}, common.NotFound(ErrLocationNotFound.Error(), ErrLocationNotFound)
			}
			return Stock{}, s.fail("get location", err)
		}
		locations = []LocationRef{{ID: db.UUIDString(loc.ID), Name: loc.Name}}
	} else {
		locations, err = s.locations(ctx)
		if err != nil {
			return Stock{}, s.fail("list locations", err)
		}
	}

	rows, err := s.queries.ListComponentStock(ctx, []pgtype.UUID{id})
	if err != nil {
		return Stock{}, s.fail("list component stock", err)
	}
	return foldComponentStock(rows)[db.UUIDString(id)].compute(locations), nil
}

// RefreshBundleStocks recomputes stock for every bundle using one query each for bundles,
// component levels and locations.
func (s *Service) RefreshBundleStocks(ctx context.Context) ([]BundleStock, error) {
	start := time.Now()
	bundles, err := s.queries.ListAllBundles(ctx)
	if err != nil {
		return nil, s.fail("list bundles", err)
	}
	rows, err := s.queries.ListComponentStock(ctx, nil)
	if err != nil {
		return nil, s.fail("list component stock", err)
	}
	locations, err := s.locations(ctx)
	if err != nil {
		return nil, s.fail("list locations", err)
	}

	stockBy := foldComponentStock(rows)
	out := make([]BundleStock, 0, len(bundles))
	for _, b := range bundles {
		key := db.UUIDString(b.ID)
		out = append(out, BundleStock{BundleID: key, Name: b.Name, Stock: stockBy[key].compute(locations)})
	}
	s.metrics.ObserveStockRefresh(obs.DurationMillis(time.Since(start)))
	return out, nil
}

// CreateBundle writes the bundle shell, its category links and, when supplied, the first
// variation with its components in one transaction.
func (s *Service) CreateBundle(ctx context.Context, in CreateBundleInput) (Bundle, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Variation != nil {
		in.Variation.SKU = strings.TrimSpace(in.Variation.SKU)
		in.Variation.Name = strings.TrimSpace(in.Variation.Name)
	}
	if err := common.Validate(in); err != nil {
		return Bundle{}, err
	}
	categoryIDs, err := parseIDs("categoryIds", in.CategoryIDs)
	if err != nil {
		return Bundle{}, err
	}
	var supplierID pgtype.UUID
	if in.SupplierID != nil {
		if supplierID, err = db.ParseOptionalUUID(*in.SupplierID); err != nil {
			return Bundle{}, common.BadRequest("supplierId", "supplierId must be a valid uuid", err)
		}
	}
	var componentIDs []pgtype.UUID
	if in.Variation != nil {
		if componentIDs, err = parseComponentIDs("variation.components", in.Variation.Components); err != nil {
			return Bundle{}, err
		}
	}

	var created dbgen.Bundle
	err = s.tx.InTx(ctx, func(q Querier) error {
		row, err := q.CreateBundle(ctx, dbgen.CreateBundleParams{
			Name:        in.Name,
			Description: db.Text(in.Description),
			ImageUrl:    db.Text(in.ImageURL),
			SupplierID:  supplierID,
		})
		if err != nil {
			return mapWriteError(err)
		}
		created = row
		if err := linkCategories(ctx, q, row.ID, categoryIDs); err != nil {
			return err
		}
		if in.Variation == nil {
			return nil
		}
		_, err = createVariation(ctx, q, row.ID, *in.Variation, componentIDs)
		return err
	})
	if err != nil {
		return Bundle{}, s.fail("create bundle", err)
	}

	s.emit(ctx, events.TopicBundleCreated, created.ID, map[string]any{
		"name":         created.Name,
		"hasVariation": in.Variation != nil,
	})
	return s.getBundle(ctx, created.ID)
}

// CreateBundleVariation adds a sellable variation and its component links to an existing bundle.
func (s *Service) CreateBundleVariation(ctx context.Context, bundleID string, in VariationInput) (Variation, error) {
	id, err := parseID("bundleId", bundleID)
	if err != nil {
		return Variation{}, err
	}
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if err := common.Validate(in); err != nil {
		return Variation{}, err
	}
	componentIDs, err := parseComponentIDs("components", in.Components)
	if err != nil {
		return Variation{}, err
	}

	var created dbgen.BundleVariation
	err = s.tx.InTx(ctx, func(q Querier) error {
		if _, err := q.GetBundle(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return bundleNotFound()
			}
			return err
		}
		created, err = createVariation(ctx, q, id, in, componentIDs)
		return err
	})
	if err != nil {
		return Variation{}, s.fail("create bundle variation", err)
	}
	return toVariation(created, 0), nil
}

// AddBundleComponents upserts component links. Re-adding a component replaces its
// quantity, display order and highlight flag.
func (s *Service) AddBundleComponents(ctx context.Context, bundleID string, inputs []ComponentInput) ([]Component, error) {
	id, err := parseID("bundleId", bundleID)
	if err != nil {
		return nil, err
	}
	if err := common.Validate(componentList{Components: inputs}); err != nil {
		return nil, err
	}
	componentIDs, err := parseComponentIDs("components", inputs)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(q Querier) error {
		if _, err := q.GetBundle(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return bundleNotFound()
			}
			return err
		}
		if _, err := loadVariations(ctx, q, componentIDs); err != nil {
			return err
		}
		return upsertComponents(ctx, q, id, inputs, componentIDs)
	})
	if err != nil {
		return nil, s.fail("add bundle components", err)
	}

	rows, err := s.queries.ListBundleComponents(ctx, []pgtype.UUID{id})
	if err != nil {
		return nil, s.fail("list bundle components", err)
	}
	return lo.Map(rows, toComponent), nil
}

// RemoveBundleComponent unlinks a component. Removing a link that does not exist succeeds.
func (s *Service) RemoveBundleComponent(ctx context.Context, bundleID, componentVariationID string) error {
	id, err := parseID("bundleId", bundleID)
	if err != nil {
		return err
	}
	variationID, err := parseID("componentVariationId", componentVariationID)
	if err != nil {
		return err
	}
	if _, err := s.queries.DeleteBundleComponent(ctx, dbgen.DeleteBundleComponentParams{
		BundleID:             id,
		ComponentVariationID: variationID,
	}); err != nil {
		return s.fail("delete bundle component", err)
	}
	return nil
}

// UpdateBundle changes bundle metadata and optionally replaces its category set.
func (s *Service) UpdateBundle(ctx context.Context, bundleID string, in UpdateBundleInput) (Bundle, error) {
	id, err := parseID("bundleId", bundleID)
	if err != nil {
		return Bundle{}, err
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return Bundle{}, common.Invalid("name", "name is required")
		}
		in.Name = &trimmed
	}
	if err := common.Validate(in); err != nil {
		return Bundle{}, err
	}
	var categoryIDs []pgtype.UUID
	if in.CategoryIDs != nil {
		if categoryIDs, err = parseIDs("categoryIds", *in.CategoryIDs); err != nil {
			return Bundle{}, err
		}
	}

	err = s.tx.InTx(ctx, func(q Querier) error {
		if _, err := q.UpdateBundle(ctx, dbgen.UpdateBundleParams{
			Name:        db.Text(in.Name),
			Description: db.Text(in.Description),
			ImageUrl:    db.Text(in.ImageURL),
			ID:          id,
		}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return bundleNotFound()
			}
			return mapWriteError(err)
		}
		if in.CategoryIDs == nil {
			return nil
		}
		if err := q.ClearBundleCategories(ctx, id); err != nil {
			return err
		}
		return linkCategories(ctx, q, id, categoryIDs)
	})
	if err != nil {
		return Bundle{}, s.fail("update bundle", err)
	}
	return s.getBundle(ctx, id)
}

// DeleteBundle removes a bundle; variations and links go with it.
func (s *Service) DeleteBundle(ctx context.Context, bundleID string) error {
	id, err := parseID("bundleId", bundleID)
	if err != nil {
		return err
	}
	n, err := s.queries.DeleteBundle(ctx, id)
	if err != nil {
		return s.fail("delete bundle", err)
	}
	if n == 0 {
		return bundleNotFound()
	}
	s.emit(ctx, events.TopicBundleDeleted, id, nil)
	return nil
}

// GetBundle returns one bundle with variations, components, stock and suggested price.
func (s *Service) GetBundle(ctx context.Context, bundleID string) (Bundle, error) {
	id, err := parseID("bundleId", bundleID)
	if err != nil {
		return Bundle{}, err
	}
	return s.getBundle(ctx, id)
}

func (s *Service) getBundle(ctx context.Context, id pgtype.UUID) (Bundle, error) {
	row, err := s.queries.GetBundle(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Bundle{}, bundleNotFound()
		}
		return Bundle{}, s.fail("get bundle", err)
	}
	items, err := s.assemble(ctx, []dbgen.Bundle{row})
	if err != nil {
		return Bundle{}, err
	}
	return items[0], nil
}

// ListBundles returns a page of bundles filtered by name and category.
func (s *Service) ListBundles(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = s.defaultLimit
	}
	if params.Limit > s.maxLimit {
		params.Limit = s.maxLimit
	}
	search := db.Text(&params.Query)
	categoryID, err := db.ParseOptionalUUID(params.CategoryID)
	if err != nil {
		return ListResult{}, common.BadRequest("categoryId", "categoryId must be a valid uuid", err)
	}

	total, err := s.queries.CountBundles(ctx, dbgen.CountBundlesParams{Search: search, CategoryID: categoryID})
	if err != nil {
		return ListResult{}, s.fail("count bundles", err)
	}
	rows, err := s.queries.ListBundles(ctx, dbgen.ListBundlesParams{
		Search:      search,
		CategoryID:  categoryID,
		LimitValue:  int32(params.Limit),
		OffsetValue: int32(common.Offset(params.Page, params.Limit)),
	})
	if err != nil {
		return ListResult{}, s.fail("list bundles", err)
	}
	items, err := s.assemble(ctx, rows)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

// SuggestPrice previews the suggested price for a component list without persisting anything.
func (s *Service) SuggestPrice(ctx context.Context, inputs []ComponentInput) (PriceSuggestion, error) {
	if err := common.Validate(componentList{Components: inputs}); err != nil {
		return PriceSuggestion{}, err
	}
	componentIDs, err := parseComponentIDs("components", inputs)
	if err != nil {
		return PriceSuggestion{}, err
	}
	variations, err := loadVariations(ctx, s.queries, componentIDs)
	if err != nil {
		return PriceSuggestion{}, s.fail("load variations", err)
	}
	components := make([]Component, 0, len(inputs))
	for i, in := range inputs {
		v := variations[db.UUIDString(componentIDs[i])]
		components = append(components, Component{
			ComponentVariationID: db.UUIDString(v.ID),
			SKU:                  v.Sku,
			Name:                 v.Name,
			UnitPrice:            v.Price,
			Quantity:             in.Quantity,
			DisplayOrder:         in.DisplayOrder,
			IsHighlight:          in.IsHighlight,
		})
	}
	return PriceSuggestion{Components: components, SuggestedPrice: SuggestedPrice(components)}, nil
}

// SuggestedPrice is the sum of unit price times quantity over all components.
func SuggestedPrice(components []Component) int64 {
	lines := lo.Map(components, func(c Component, _ int) pricing.Line {
		return pricing.Line{Qty: int(c.Quantity), UnitPrice: c.UnitPrice}
	})
	return pricing.Sum(lines)
}

func (s *Service) assemble(ctx context.Context, rows []dbgen.Bundle) ([]Bundle, error) {
	if len(rows) == 0 {
		return []Bundle{}, nil
	}
	ids := lo.Map(rows, func(b dbgen.Bundle, _ int) pgtype.UUID { return b.ID })

	categories, err := s.queries.ListBundleCategoryIDs(ctx, ids)
	if err != nil {
		return nil, s.fail("list bundle categories", err)
	}
	variations, err := s.queries.ListBundleVariations(ctx, ids)
	if err != nil {
		return nil, s.fail("list bundle variations", err)
	}
	components, err := s.queries.ListBundleComponents(ctx, ids)
	if err != nil {
		return nil, s.fail("list bundle components", err)
	}
	levels, err := s.queries.ListComponentStock(ctx, ids)
	if err != nil {
		return nil, s.fail("list component stock", err)
	}
	locations, err := s.locations(ctx)
	if err != nil {
		return nil, s.fail("list locations", err)
	}

	categoriesBy := lo.GroupBy(categories, func(c dbgen.BundleCategory) string { return db.UUIDString(c.BundleID) })
	variationsBy := lo.GroupBy(variations, func(v dbgen.BundleVariation) string { return db.UUIDString(v.BundleID) })
	componentsBy := lo.GroupBy(components, func(c dbgen.ListBundleComponentsRow) string { return db.UUIDString(c.BundleID) })
	stockBy := foldComponentStock(levels)

	out := make([]Bundle, 0, len(rows))
	for _, row := range rows {
		key := db.UUIDString(row.ID)
		b := Bundle{
			ID:          key,
			Name:        row.Name,
			Description: db.TextPtr(row.Description),
			ImageURL:    db.TextPtr(row.ImageUrl),
			SupplierID:  db.UUIDPtr(row.SupplierID),
			CategoryIDs: lo.Map(categoriesBy[key], func(c dbgen.BundleCategory, _ int) string { return db.UUIDString(c.CategoryID) }),
			Variations:  lo.Map(variationsBy[key], toVariation),
			Components:  lo.Map(componentsBy[key], toComponent),
			CreatedAt:   row.CreatedAt.Time,
			UpdatedAt:   row.UpdatedAt.Time,
		}
		b.SuggestedPrice = SuggestedPrice(b.Components)
		b.CalculatedStock = stockBy[key].compute(locations)
		out = append(out, b)
	}
	return out, nil
}

func (s *Service) locations(ctx context.Context) ([]LocationRef, error) {
	rows, err := s.queries.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(l dbgen.Location, _ int) LocationRef {
		return LocationRef{ID: db.UUIDString(l.ID), Name: l.Name}
	}), nil
}

func (s *Service) emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload any) {
	if s.events == nil {
		return
	}
	if _, err := s.events.Emit(ctx, topic, aggregateID, payload); err != nil {
		s.logger.Warn().Err(err).Str("topic", topic).Msg("emit domain event")
	}
}

// fail passes AppErrors through and hides anything else behind a logged internal error.
func (s *Service) fail(op string, err error) error {
	if common.IsAppError(err) {
		return err
	}
	s.logger.Error().Err(err).Str("op", op).Msg("bundle operation failed")
	return common.Internal(fmt.Errorf("%s: %w", op, err))
}

type componentList struct {
	Components []ComponentInput `json:"components" validate:"required,min=1,dive"`
}

// stockInput is the per-bundle slice of ListComponentStock rows.
type stockInput struct {
	reqs   []Requirement
	seen   map[string]struct{}
	onHand OnHand
}

func (in *stockInput) compute(locations []LocationRef) Stock {
	if in == nil {
		return ComputeStock(nil, nil, locations)
	}
	return ComputeStock(in.reqs, in.onHand, locations)
}

// foldComponentStock groups component/level rows by bundle. The LEFT JOIN yields one row per
// (component, location) pair, or a single row with a NULL location when nothing is stocked.
func foldComponentStock(rows []dbgen.ListComponentStockRow) map[string]*stockInput {
	out := make(map[string]*stockInput)
	for _, row := range rows {
		bundleID := db.UUIDString(row.BundleID)
		in, ok := out[bundleID]
		if !ok {
			in = &stockInput{seen: map[string]struct{}{}, onHand: OnHand{}}
			out[bundleID] = in
		}
		variationID := db.UUIDString(row.ComponentVariationID)
		if _, dup := in.seen[variationID]; !dup {
			in.seen[variationID] = struct{}{}
			in.reqs = append(in.reqs, Requirement{VariationID: variationID, Quantity: row.Quantity})
		}
		if !row.LocationID.Valid || !row.Stock.Valid {
			continue
		}
		locationID := db.UUIDString(row.LocationID)
		if in.onHand[locationID] == nil {
			in.onHand[locationID] = map[string]int32{}
		}
		in.onHand[locationID][variationID] = row.Stock.Int32
	}
	return out
}

func createVariation(ctx context.Context, q Querier, bundleID pgtype.UUID, in VariationInput, componentIDs []pgtype.UUID) (dbgen.BundleVariation, error) {
	variations, err := loadVariations(ctx, q, componentIDs)
	if err != nil {
		return dbgen.BundleVariation{}, err
	}
	var price int64
	if in.SellingPrice != nil {
		price = *in.SellingPrice
	} else {
		lines := make([]pricing.Line, 0, len(in.Components))
		for i, c := range in.Components {
			lines = append(lines, pricing.Line{Qty: int(c.Quantity), UnitPrice: variations[db.UUIDString(componentIDs[i])].Price})
		}
		price = pricing.Sum(lines)
	}
	row, err := q.CreateBundleVariation(ctx, dbgen.CreateBundleVariationParams{
		BundleID:     bundleID,
		Sku:          in.SKU,
		Name:         in.Name,
		SellingPrice: price,
	})
	if err != nil {
		return dbgen.BundleVariation{}, mapWriteError(err)
	}
	if err := upsertComponents(ctx, q, bundleID, in.Components, componentIDs); err != nil {
		return dbgen.BundleVariation{}, err
	}
	return row, nil
}

func upsertComponents(ctx context.Context, q Querier, bundleID pgtype.UUID, inputs []ComponentInput, ids []pgtype.UUID) error {
	for i, in := range inputs {
		if _, err := q.UpsertBundleComponent(ctx, dbgen.UpsertBundleComponentParams{
			BundleID:             bundleID,
			ComponentVariationID: ids[i],
			Quantity:             in.Quantity,
			DisplayOrder:         in.DisplayOrder,
			IsHighlight:          in.IsHighlight,
		}); err != nil {
			return mapWriteError(err)
		}
	}
	return nil
}

func linkCategories(ctx context.Context, q Querier, bundleID pgtype.UUID, categoryIDs []pgtype.UUID) error {
	for _, categoryID := range categoryIDs {
		if err := q.AddBundleCategory(ctx, dbgen.AddBundleCategoryParams{BundleID: bundleID, CategoryID: categoryID}); err != nil {
			return mapWriteError(err)
		}
	}
	return nil
}

// loadVariations fetches component variations and fails with the list of unknown ids.
func loadVariations(ctx context.Context, q Querier, ids []pgtype.UUID) (map[string]dbgen.InventoryVariation, error) {
	rows, err := q.GetVariationsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := lo.KeyBy(rows, func(v dbgen.InventoryVariation) string { return db.UUIDString(v.ID) })
	missing := make([]string, 0)
	for _, id := range ids {
		if _, ok := found[db.UUIDString(id)]; !ok {
			missing = append(missing, db.UUIDString(id))
		}
	}
	if len(missing) > 0 {
		appErr := common.NotFound(ErrVariationNotFound.Error(), ErrVariationNotFound)
		appErr.Details = map[string]any{"missing": missing}
		return nil, appErr
	}
	return found, nil
}

// mapWriteError turns constraint violations into domain errors.
func mapWriteError(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return common.Conflict(ErrDuplicateSKU.Error(), ErrDuplicateSKU)
	case db.IsForeignKeyViolation(err):
		switch db.ConstraintName(err) {
		case "bundle_categories_category_id_fkey":
			return common.NotFound(ErrCategoryNotFound.Error(), ErrCategoryNotFound)
		case "bundles_supplier_id_fkey":
			return common.NotFound(ErrSupplierNotFound.Error(), ErrSupplierNotFound)
		case "bundle_components_component_variation_id_fkey":
			return common.NotFound(ErrVariationNotFound.Error(), ErrVariationNotFound)
		default:
			return common.NotFound(ErrBundleNotFound.Error(), ErrBundleNotFound)
		}
	case db.IsCheckViolation(err):
		return common.Invalid(db.ConstraintName(err), "value violates "+db.ConstraintName(err))
	}
	return err
}

func bundleNotFound() error {
	return common.NotFound(ErrBundleNotFound.Error(), ErrBundleNotFound)
}

func parseID(field, value string) (pgtype.UUID, error) {
	id, err := db.ParseUUID(value)
	if err != nil {
		return pgtype.UUID{}, common.BadRequest(field, field+" must be a valid uuid", err)
	}
	return id, nil
}

func parseIDs(field string, values []string) ([]pgtype.UUID, error) {
	out := make([]pgtype.UUID, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for i, v := range values {
		id, err := parseID(fmt.Sprintf("%s[%d]", field, i), v)
		if err != nil {
			return nil, err
		}
		key := db.UUIDString(id)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// parseComponentIDs returns one id per input, in order. A variation listed twice is rejected.
func parseComponentIDs(field string, inputs []ComponentInput) ([]pgtype.UUID, error) {
	out := make([]pgtype.UUID, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		name := fmt.Sprintf("%s[%d].componentVariationId", field, i)
		id, err := parseID(name, in.ComponentVariationID)
		if err != nil {
			return nil, err
		}
		key := db.UUIDString(id)
		if _, dup := seen[key]; dup {
			return nil, common.Invalid(name, "component listed more than once")
		}
		seen[key] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func toVariation(v dbgen.BundleVariation, _ int) Variation {
	return Variation{
		ID:           db.UUIDString(v.ID),
		BundleID:     db.UUIDString(v.BundleID),
		SKU:          v.Sku,
		Name:         v.Name,
		SellingPrice: v.SellingPrice,
	}
}

func toComponent(c dbgen.ListBundleComponentsRow, _ int) Component {
	return Component{
		ID:                   db.UUIDString(c.ID),
		ComponentVariationID: db.UUIDString(c.ComponentVariationID),
		SKU:                  c.Sku,
		Name:                 c.Name,
		UnitPrice:            c.UnitPrice,
		Quantity:             c.Quantity,
		DisplayOrder:         c.DisplayOrder,
		IsHighlight:          c.IsHighlight,
	}
}
