package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/noah-isme/repairshop-api/internal/cache"
	"github.com/noah-isme/repairshop-api/internal/common"
	"github.com/noah-isme/repairshop-api/internal/db"
	dbgen "github.com/noah-isme/repairshop-api/internal/db/gen"
)

type queryProvider interface {
	ListLocations(ctx context.Context) ([]dbgen.Location, error)
	GetLocation(ctx context.Context, id pgtype.UUID) (dbgen.Location, error)
	CreateLocation(ctx context.Context, arg dbgen.CreateLocationParams) (dbgen.Location, error)
	ListCategories(ctx context.Context) ([]dbgen.Category, error)
	CreateCategory(ctx context.Context, arg dbgen.CreateCategoryParams) (dbgen.Category, error)
	DeleteCategory(ctx context.Context, id pgtype.UUID) (int64, error)
	CountVariations(ctx context.Context, search pgtype.Text) (int64, error)
	ListVariations(ctx context.Context, arg dbgen.ListVariationsParams) ([]dbgen.InventoryVariation, error)
	CreateVariation(ctx context.Context, arg dbgen.CreateVariationParams) (dbgen.InventoryVariation, error)
	ListStockLevelsForVariations(ctx context.Context, variationIds []pgtype.UUID) ([]dbgen.ListStockLevelsForVariationsRow, error)
	UpsertStockLevel(ctx context.Context, arg dbgen.UpsertStockLevelParams) (dbgen.StockLevel, error)
	CreateOrder(ctx context.Context, arg dbgen.CreateOrderParams) (dbgen.Order, error)
	CreateRegisterSession(ctx context.Context, arg dbgen.CreateRegisterSessionParams) (dbgen.RegisterSession, error)
}

const (
	cacheLocations  = "locations"
	cacheCategories = "categories"
)

// Service manages the locations, categories, inventory and taxable transactions
// the bundle and tax engines read from.
type Service struct {
	queries      queryProvider
	cache        *cache.JSON
	logger       zerolog.Logger
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      queryProvider
	Cache        *cache.JSON
	Logger       zerolog.Logger
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
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
		cache:        cfg.Cache,
		logger:       cfg.Logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ListLocations returns all locations sorted by name.
func (s *Service) ListLocations(ctx context.Context) ([]Location, error) {
	var cached []Location
	if s.cached(ctx, cacheLocations, &cached) {
		return cached, nil
	}
	rows, err := s.queries.ListLocations(ctx)
	if err != nil {
		return nil, s.fail("list locations", err)
	}
	out := lo.Map(rows, toLocation)
	s.store(ctx, cacheLocations, out)
	return out, nil
}

// CreateLocation adds a location.
func (s *Service) CreateLocation(ctx context.Context, in LocationInput) (Location, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := common.Validate(in); err != nil {
		return Location{}, err
	}
	row, err := s.queries.CreateLocation(ctx, dbgen.CreateLocationParams{Name: in.Name, Address: db.Text(in.Address)})
	if err != nil {
		return Location{}, s.fail("create location", err)
	}
	s.invalidate(ctx, cacheLocations)
	return toLocation(row, 0), nil
}

// ListCategories returns all categories sorted by name.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var cached []Category
	if s.cached(ctx, cacheCategories, &cached) {
		return cached, nil
	}
	rows, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, s.fail("list categories", err)
	}
	out := lo.Map(rows, toCategory)
	s.store(ctx, cacheCategories, out)
	return out, nil
}

// CreateCategory adds a category. The slug defaults to the slugified name.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := common.Validate(in); err != nil {
		return Category{}, err
	}
	slug := Slugify(lo.Ternary(strings.TrimSpace(in.Slug) != "", in.Slug, in.Name))
	if slug == "" {
		return Category{}, common.Invalid("slug", "slug must contain letters or digits")
	}
	row, err := s.queries.CreateCategory(ctx, dbgen.CreateCategoryParams{Name: in.Name, Slug: slug})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Category{}, common.Conflict(ErrDuplicateSlug.Error(), ErrDuplicateSlug)
		}
		return Category{}, s.fail("create category", err)
	}
	s.invalidate(ctx, cacheCategories)
	return toCategory(row, 0), nil
}

// DeleteCategory removes a category that no bundle references.
func (s *Service) DeleteCategory(ctx context.Context, categoryID string) error {
	id, err := parseID("categoryId", categoryID)
	if err != nil {
		return err
	}
	n, err := s.queries.DeleteCategory(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return common.CannotDelete("category is used by bundles", ErrCategoryInUse)
		}
		return s.fail("delete category", err)
	}
	if n == 0 {
		return common.NotFound(ErrCategoryNotFound.Error(), ErrCategoryNotFound)
	}
	s.invalidate(ctx, cacheCategories)
	return nil
}

// ParseListParams reads q, page and limit for variation listing.
func (s *Service) ParseListParams(r *http.Request) (ListParams, error) {
	page, limit, err := common.ParsePagination(r, s.defaultLimit, s.maxLimit)
	if err != nil {
		return ListParams{}, err
	}
	return ListParams{Query: strings.TrimSpace(r.URL.Query().Get("q")), Page: page, Limit: limit}, nil
}

// ListVariations searches inventory by SKU or name and attaches stock per location.
func (s *Service) ListVariations(ctx context.Context, params ListParams) (VariationList, error) {
	page, limit := params.Page, params.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.defaultLimit
	}
	limit = min(limit, s.maxLimit)
	search := db.Text(&params.Query)

	total, err := s.queries.CountVariations(ctx, search)
	if err != nil {
		return VariationList{}, s.fail("count variations", err)
	}
	rows, err := s.queries.ListVariations(ctx, dbgen.ListVariationsParams{
		Search:      search,
		LimitValue:  int32(limit),
		OffsetValue: int32(common.Offset(page, limit)),
	})
	if err != nil {
		return VariationList{}, s.fail("list variations", err)
	}
	items, err := s.withLevels(ctx, rows)
	if err != nil {
		return VariationList{}, err
	}
	return VariationList{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// CreateVariation adds an inventory SKU with no stock.
func (s *Service) CreateVariation(ctx context.Context, in VariationInput) (Variation, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if err := common.Validate(in); err != nil {
		return Variation{}, err
	}
	row, err := s.queries.CreateVariation(ctx, dbgen.CreateVariationParams{Sku: in.SKU, Name: in.Name, Price: in.Price})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Variation{}, common.Conflict(ErrDuplicateSKU.Error(), ErrDuplicateSKU)
		}
		return Variation{}, s.fail("create variation", err)
	}
	return toVariation(row, nil), nil
}

// SetStockLevel overwrites the on-hand quantity of a variation at a location.
func (s *Service) SetStockLevel(ctx context.Context, variationID, locationID string, in StockLevelInput) (StockLevel, error) {
	vID, err := parseID("variationId", variationID)
	if err != nil {
		return StockLevel{}, err
	}
	lID, err := parseID("locationId", locationID)
	if err != nil {
		return StockLevel{}, err
	}
	if err := common.Validate(in); err != nil {
		return StockLevel{}, err
	}
	row, err := s.queries.UpsertStockLevel(ctx, dbgen.UpsertStockLevelParams{VariationID: vID, LocationID: lID, Quantity: in.Quantity})
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			if db.ConstraintName(err) == "stock_levels_location_id_fkey" {
				return StockLevel{}, common.NotFound(ErrLocationNotFound.Error(), ErrLocationNotFound)
			}
			return StockLevel{}, common.NotFound(ErrVariationNotFound.Error(), ErrVariationNotFound)
		}
		return StockLevel{}, s.fail("upsert stock level", err)
	}
	level := StockLevel{LocationID: db.UUIDString(row.LocationID), Quantity: row.Quantity}
	if loc, err := s.queries.GetLocation(ctx, lID); err == nil {
		level.LocationName = loc.Name
	} else if !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Warn().Err(err).Msg("resolve location name")
	}
	return level, nil
}

// RecordOrder stores a taxable order. CreatedAt defaults to now.
func (s *Service) RecordOrder(ctx context.Context, in OrderInput) (Order, error) {
	if err := common.Validate(in); err != nil {
		return Order{}, err
	}
	arg := dbgen.CreateOrderParams{ExternalRef: db.Text(in.ExternalRef), Subtotal: in.Subtotal}
	if in.CreatedAt != nil {
		arg.CreatedAt = db.Timestamptz(*in.CreatedAt)
	}
	row, err := s.queries.CreateOrder(ctx, arg)
	if err != nil {
		return Order{}, s.fail("create order", err)
	}
	return Order{
		ID:          db.UUIDString(row.ID),
		ExternalRef: db.TextPtr(row.ExternalRef),
		Subtotal:    row.Subtotal,
		CreatedAt:   row.CreatedAt.Time,
	}, nil
}

// RecordRegisterSession stores a till session. OpenedAt defaults to now.
func (s *Service) RecordRegisterSession(ctx context.Context, in RegisterSessionInput) (RegisterSession, error) {
	if err := common.Validate(in); err != nil {
		return RegisterSession{}, err
	}
	if in.OpenedAt != nil && in.ClosedAt != nil && in.ClosedAt.Before(*in.OpenedAt) {
		return RegisterSession{}, common.Invalid("closedAt", "closedAt must not be before openedAt")
	}
	locationID := pgtype.UUID{}
	if in.LocationID != nil {
		var err error
		if locationID, err = db.ParseOptionalUUID(*in.LocationID); err != nil {
			return RegisterSession{}, common.BadRequest("locationId", "locationId must be a valid uuid", err)
		}
	}
	arg := dbgen.CreateRegisterSessionParams{LocationID: locationID, Subtotal: in.Subtotal}
	if in.OpenedAt != nil {
		arg.OpenedAt = db.Timestamptz(*in.OpenedAt)
	}
	if in.ClosedAt != nil {
		arg.ClosedAt = db.Timestamptz(*in.ClosedAt)
	}
	row, err := s.queries.CreateRegisterSession(ctx, arg)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return RegisterSession{}, common.NotFound(ErrLocationNotFound.Error(), ErrLocationNotFound)
		}
		return RegisterSession{}, s.fail("create register session", err)
	}
	return RegisterSession{
		ID:         db.UUIDString(row.ID),
		LocationID: db.UUIDPtr(row.LocationID),
		Subtotal:   row.Subtotal,
		OpenedAt:   row.OpenedAt.Time,
		ClosedAt:   db.TimePtr(row.ClosedAt),
	}, nil
}

func (s *Service) withLevels(ctx context.Context, rows []dbgen.InventoryVariation) ([]Variation, error) {
	if len(rows) == 0 {
		return []Variation{}, nil
	}
	ids := lo.Map(rows, func(v dbgen.InventoryVariation, _ int) pgtype.UUID { return v.ID })
	levels, err := s.queries.ListStockLevelsForVariations(ctx, ids)
	if err != nil {
		return nil, s.fail("list stock levels", err)
	}
	byVariation := lo.GroupBy(levels, func(l dbgen.ListStockLevelsForVariationsRow) string { return db.UUIDString(l.VariationID) })
	return lo.Map(rows, func(v dbgen.InventoryVariation, _ int) Variation {
		return toVariation(v, byVariation[db.UUIDString(v.ID)])
	}), nil
}

func (s *Service) cached(ctx context.Context, name string, dst any) bool {
	hit, err := s.cache.Get(ctx, s.cache.Key("catalog", name), dst)
	if err != nil {
		s.logger.Warn().Err(err).Str("cache", name).Msg("catalog cache read")
		return false
	}
	return hit
}

func (s *Service) store(ctx context.Context, name string, v any) {
	if err := s.cache.Set(ctx, s.cache.Key("catalog", name), v); err != nil {
		s.logger.Warn().Err(err).Str("cache", name).Msg("catalog cache write")
	}
}

func (s *Service) invalidate(ctx context.Context, name string) {
	if err := s.cache.Delete(ctx, s.cache.Key("catalog", name)); err != nil {
		s.logger.Warn().Err(err).Str("cache", name).Msg("catalog cache invalidate")
	}
}

func (s *Service) fail(op string, err error) error {
	s.logger.Error().Err(err).Str("op", op).Msg("catalog operation failed")
	return common.Internal(fmt.Errorf("%s: %w", op, err))
}

func parseID(field, value string) (pgtype.UUID, error) {
	id, err := db.ParseUUID(value)
	if err != nil {
		return pgtype.UUID{}, common.BadRequest(field, field+" must be a valid uuid", err)
	}
	return id, nil
}

func toLocation(l dbgen.Location, _ int) Location {
	return Location{ID: db.UUIDString(l.ID), Name: l.Name, Address: db.TextPtr(l.Address), CreatedAt: l.CreatedAt.Time}
}

func toCategory(c dbgen.Category, _ int) Category {
	return Category{ID: db.UUIDString(c.ID), Name: c.Name, Slug: c.Slug, CreatedAt: c.CreatedAt.Time}
}

func toVariation(v dbgen.InventoryVariation, levels []dbgen.ListStockLevelsForVariationsRow) Variation {
	out := Variation{
		ID:        db.UUIDString(v.ID),
		SKU:       v.Sku,
		Name:      v.Name,
		Price:     v.Price,
		Levels:    make([]StockLevel, 0, len(levels)),
		CreatedAt: v.CreatedAt.Time,
		UpdatedAt: v.UpdatedAt.Time,
	}
	for _, l := range levels {
		out.Levels = append(out.Levels, StockLevel{
			LocationID:   db.UUIDString(l.LocationID),
			LocationName: l.LocationName,
			Quantity:     l.Quantity,
		})
		out.TotalStock += int64(l.Quantity)
	}
	return out
}
