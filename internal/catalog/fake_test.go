package catalog_test

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/repairshop-api/internal/cache"
	"github.com/noah-isme/repairshop-api/internal/catalog"
	"github.com/noah-isme/repairshop-api/internal/db"
	dbgen "github.com/noah-isme/repairshop-api/internal/db/gen"
)

type fakeQueries struct {
	locations  []dbgen.Location
	categories []dbgen.Category
	variations []dbgen.InventoryVariation
	levels     []dbgen.StockLevel
	orders     []dbgen.Order
	sessions   []dbgen.RegisterSession
	// category ids referenced by bundles
	inUse map[string]bool

	locationReads int
}

func newFakeQueries() *fakeQueries {
	return &fakeQueries{inUse: map[string]bool{}}
}

func newID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func now() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
}

func pgErr(code, constraint string) error {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

func (f *fakeQueries) ListLocations(context.Context) ([]dbgen.Location, error) {
	f.locationReads++
	out := append([]dbgen.Location(nil), f.locations...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeQueries) GetLocation(_ context.Context, id pgtype.UUID) (dbgen.Location, error) {
	for _, l := range f.locations {
		if l.ID == id {
			return l, nil
		}
	}
	return dbgen.Location{}, pgx.ErrNoRows
}

func (f *fakeQueries) CreateLocation(_ context.Context, arg dbgen.CreateLocationParams) (dbgen.Location, error) {
	l := dbgen.Location{ID: newID(), Name: arg.Name, Address: arg.Address, CreatedAt: now()}
	f.locations = append(f.locations, l)
	return l, nil
}

func (f *fakeQueries) ListCategories(context.Context) ([]dbgen.Category, error) {
	out := append([]dbgen.Category(nil), f.categories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeQueries) CreateCategory(_ context.Context, arg dbgen.CreateCategoryParams) (dbgen.Category, error) {
	for _, c := range f.categories {
		if c.Slug == arg.Slug {
			return dbgen.Category{}, pgErr("23505", "categories_slug_key")
		}
	}
	c := dbgen.Category{ID: newID(), Name: arg.Name, Slug: arg.Slug, CreatedAt: now()}
	f.categories = append(f.categories, c)
	return c, nil
}

func (f *fakeQueries) DeleteCategory(_ context.Context, id pgtype.UUID) (int64, error) {
	if f.inUse[db.UUIDString(id)] {
		return 0, pgErr("23503", "bundle_categories_category_id_fkey")
	}
	for i, c := range f.categories {
		if c.ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeQueries) matching(search pgtype.Text) []dbgen.InventoryVariation {
	var out []dbgen.InventoryVariation
	for _, v := range f.variations {
		if !search.Valid ||
			strings.Contains(strings.ToLower(v.Sku), strings.ToLower(search.String)) ||
			strings.Contains(strings.ToLower(v.Name), strings.ToLower(search.String)) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *fakeQueries) CountVariations(_ context.Context, search pgtype.Text) (int64, error) {
	return int64(len(f.matching(search))), nil
}

func (f *fakeQueries) ListVariations(_ context.Context, arg dbgen.ListVariationsParams) ([]dbgen.InventoryVariation, error) {
	rows := f.matching(arg.Search)
	start := min(int(arg.OffsetValue), len(rows))
	end := min(start+int(arg.LimitValue), len(rows))
	return rows[start:end], nil
}

func (f *fakeQueries) CreateVariation(_ context.Context, arg dbgen.CreateVariationParams) (dbgen.InventoryVariation, error) {
	for _, v := range f.variations {
		if v.Sku == arg.Sku {
			return dbgen.InventoryVariation{}, pgErr("23505", "inventory_variations_sku_key")
		}
	}
	v := dbgen.InventoryVariation{ID: newID(), Sku: arg.Sku, Name: arg.Name, Price: arg.Price, CreatedAt: now(), UpdatedAt: now()}
	f.variations = append(f.variations, v)
	return v, nil
}

func (f *fakeQueries) ListStockLevelsForVariations(_ context.Context, ids []pgtype.UUID) ([]dbgen.ListStockLevelsForVariationsRow, error) {
	var out []dbgen.ListStockLevelsForVariationsRow
	for _, l := range f.levels {
		for _, id := range ids {
			if l.VariationID != id {
				continue
			}
			loc, _ := f.GetLocation(context.Background(), l.LocationID)
			out = append(out, dbgen.ListStockLevelsForVariationsRow{
				VariationID:  l.VariationID,
				LocationID:   l.LocationID,
				LocationName: loc.Name,
				Quantity:     l.Quantity,
			})
		}
	}
	return out, nil
}

func (f *fakeQueries) UpsertStockLevel(_ context.Context, arg dbgen.UpsertStockLevelParams) (dbgen.StockLevel, error) {
	if _, err := f.GetLocation(context.Background(), arg.LocationID); err != nil {
		return dbgen.StockLevel{}, pgErr("23503", "stock_levels_location_id_fkey")
	}
	found := false
	for _, v := range f.variations {
		if v.ID == arg.VariationID {
			found = true
		}
	}
	if !found {
		return dbgen.StockLevel{}, pgErr("23503", "stock_levels_variation_id_fkey")
	}
	for i, l := range f.levels {
		if l.VariationID == arg.VariationID && l.LocationID == arg.LocationID {
			f.levels[i].Quantity = arg.Quantity
			return f.levels[i], nil
		}
	}
	l := dbgen.StockLevel{VariationID: arg.VariationID, LocationID: arg.LocationID, Quantity: arg.Quantity, UpdatedAt: now()}
	f.levels = append(f.levels, l)
	return l, nil
}

func (f *fakeQueries) CreateOrder(_ context.Context, arg dbgen.CreateOrderParams) (dbgen.Order, error) {
	created := arg.CreatedAt
	if !created.Valid {
		created = now()
	}
	o := dbgen.Order{ID: newID(), ExternalRef: arg.ExternalRef, Subtotal: arg.Subtotal, CreatedAt: created}
	f.orders = append(f.orders, o)
	return o, nil
}

func (f *fakeQueries) CreateRegisterSession(_ context.Context, arg dbgen.CreateRegisterSessionParams) (dbgen.RegisterSession, error) {
	if arg.LocationID.Valid {
		if _, err := f.GetLocation(context.Background(), arg.LocationID); err != nil {
			return dbgen.RegisterSession{}, pgErr("23503", "register_sessions_location_id_fkey")
		}
	}
	opened := arg.OpenedAt
	if !opened.Valid {
		opened = now()
	}
	s := dbgen.RegisterSession{ID: newID(), LocationID: arg.LocationID, Subtotal: arg.Subtotal, OpenedAt: opened, ClosedAt: arg.ClosedAt, CreatedAt: now()}
	f.sessions = append(f.sessions, s)
	return s, nil
}

func newService(t *testing.T, q *fakeQueries, c *cache.JSON) *catalog.Service {
	t.Helper()
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Queries:      q,
		Cache:        c,
		Logger:       zerolog.Nop(),
		DefaultLimit: 2,
		MaxLimit:     5,
	})
	require.NoError(t, err)
	return svc
}
