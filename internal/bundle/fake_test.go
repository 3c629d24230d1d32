package bundle_test

import (
	"context"
	"errors"
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

	"github.com/noah-isme/repairshop-api/internal/bundle"
	"github.com/noah-isme/repairshop-api/internal/db"
	dbgen "github.com/noah-isme/repairshop-api/internal/db/gen"
)

type fakeStore struct {
	bundles    []dbgen.Bundle
	categories map[string]bool
	suppliers  map[string]bool
	bundleCats []dbgen.BundleCategory
	variations []dbgen.BundleVariation
	components []dbgen.BundleComponent
	inventory  map[string]dbgen.InventoryVariation
	locations  []dbgen.Location
	levels     map[[2]string]int32

	failUpsert bool
	txCalls    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories: map[string]bool{},
		suppliers:  map[string]bool{},
		inventory:  map[string]dbgen.InventoryVariation{},
		levels:     map[[2]string]int32{},
	}
}

func newID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func ts() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
}

func (f *fakeStore) clone() *fakeStore {
	c := *f
	c.bundles = append([]dbgen.Bundle(nil), f.bundles...)
	c.bundleCats = append([]dbgen.BundleCategory(nil), f.bundleCats...)
	c.variations = append([]dbgen.BundleVariation(nil), f.variations...)
	c.components = append([]dbgen.BundleComponent(nil), f.components...)
	c.levels = make(map[[2]string]int32, len(f.levels))
	for k, v := range f.levels {
		c.levels[k] = v
	}
	return &c
}

// InTx snapshots the store and restores it when fn fails, like a rollback.
func (f *fakeStore) InTx(_ context.Context, fn func(bundle.Querier) error) error {
	f.txCalls++
	snapshot := f.clone()
	if err := fn(f); err != nil {
		calls := f.txCalls
		*f = *snapshot
		f.txCalls = calls
		return err
	}
	return nil
}

func (f *fakeStore) addInventory(sku, name string, price int64) pgtype.UUID {
	id := newID()
	f.inventory[db.UUIDString(id)] = dbgen.InventoryVariation{ID: id, Sku: sku, Name: name, Price: price, CreatedAt: ts(), UpdatedAt: ts()}
	return id
}

func (f *fakeStore) addLocation(name string) pgtype.UUID {
	id := newID()
	f.locations = append(f.locations, dbgen.Location{ID: id, Name: name, CreatedAt: ts()})
	return id
}

func (f *fakeStore) addCategory() pgtype.UUID {
	id := newID()
	f.categories[db.UUIDString(id)] = true
	return id
}

func (f *fakeStore) setLevel(variation, location pgtype.UUID, qty int32) {
	f.levels[[2]string{db.UUIDString(variation), db.UUIDString(location)}] = qty
}

func fkError(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint}
}

func inIDs(ids []pgtype.UUID, id pgtype.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func (f *fakeStore) CreateBundle(_ context.Context, arg dbgen.CreateBundleParams) (dbgen.Bundle, error) {
	if strings.TrimSpace(arg.Name) == "" {
		return dbgen.Bundle{}, &pgconn.PgError{Code: "23514", ConstraintName: "bundles_name_check"}
	}
	if arg.SupplierID.Valid && !f.suppliers[db.UUIDString(arg.SupplierID)] {
		return dbgen.Bundle{}, fkError("bundles_supplier_id_fkey")
	}
	b := dbgen.Bundle{ID: newID(), Name: arg.Name, Description: arg.Description, ImageUrl: arg.ImageUrl, SupplierID: arg.SupplierID, CreatedAt: ts(), UpdatedAt: ts()}
	f.bundles = append(f.bundles, b)
	return b, nil
}

func (f *fakeStore) GetBundle(_ context.Context, id pgtype.UUID) (dbgen.Bundle, error) {
	for _, b := range f.bundles {
		if b.ID == id {
			return b, nil
		}
	}
	return dbgen.Bundle{}, pgx.ErrNoRows
}

func (f *fakeStore) filterBundles(search pgtype.Text, category pgtype.UUID) []dbgen.Bundle {
	var out []dbgen.Bundle
	for _, b := range f.bundles {
		if search.Valid && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(search.String)) {
			continue
		}
		if category.Valid {
			linked := false
			for _, bc := range f.bundleCats {
				if bc.BundleID == b.ID && bc.CategoryID == category {
					linked = true
				}
			}
			if !linked {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

func (f *fakeStore) CountBundles(_ context.Context, arg dbgen.CountBundlesParams) (int64, error) {
	return int64(len(f.filterBundles(arg.Search, arg.CategoryID))), nil
}

func (f *fakeStore) ListBundles(_ context.Context, arg dbgen.ListBundlesParams) ([]dbgen.Bundle, error) {
	rows := f.filterBundles(arg.Search, arg.CategoryID)
	start := int(arg.OffsetValue)
	if start > len(rows) {
		return []dbgen.Bundle{}, nil
	}
	end := start + int(arg.LimitValue)
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], nil
}

func (f *fakeStore) ListAllBundles(context.Context) ([]dbgen.Bundle, error) {
	out := append([]dbgen.Bundle(nil), f.bundles...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) UpdateBundle(_ context.Context, arg dbgen.UpdateBundleParams) (dbgen.Bundle, error) {
	for i, b := range f.bundles {
		if b.ID != arg.ID {
			continue
		}
		if arg.Name.Valid {
			b.Name = arg.Name.String
		}
		if arg.Description.Valid {
			b.Description = arg.Description
		}
		if arg.ImageUrl.Valid {
			b.ImageUrl = arg.ImageUrl
		}
		b.UpdatedAt = ts()
		f.bundles[i] = b
		return b, nil
	}
	return dbgen.Bundle{}, pgx.ErrNoRows
}

func (f *fakeStore) DeleteBundle(_ context.Context, id pgtype.UUID) (int64, error) {
	for i, b := range f.bundles {
		if b.ID != id {
			continue
		}
		f.bundles = append(f.bundles[:i], f.bundles[i+1:]...)
		f.bundleCats = filter(f.bundleCats, func(bc dbgen.BundleCategory) bool { return bc.BundleID != id })
		f.variations = filter(f.variations, func(v dbgen.BundleVariation) bool { return v.BundleID != id })
		f.components = filter(f.components, func(c dbgen.BundleComponent) bool { return c.BundleID != id })
		return 1, nil
	}
	return 0, nil
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := in[:0:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (f *fakeStore) AddBundleCategory(_ context.Context, arg dbgen.AddBundleCategoryParams) error {
	if !f.categories[db.UUIDString(arg.CategoryID)] {
		return fkError("bundle_categories_category_id_fkey")
	}
	for _, bc := range f.bundleCats {
		if bc.BundleID == arg.BundleID && bc.CategoryID == arg.CategoryID {
			return nil
		}
	}
	f.bundleCats = append(f.bundleCats, dbgen.BundleCategory{BundleID: arg.BundleID, CategoryID: arg.CategoryID})
	return nil
}

func (f *fakeStore) ClearBundleCategories(_ context.Context, bundleID pgtype.UUID) error {
	f.bundleCats = filter(f.bundleCats, func(bc dbgen.BundleCategory) bool { return bc.BundleID != bundleID })
	return nil
}

func (f *fakeStore) ListBundleCategoryIDs(_ context.Context, ids []pgtype.UUID) ([]dbgen.BundleCategory, error) {
	return filter(f.bundleCats, func(bc dbgen.BundleCategory) bool { return inIDs(ids, bc.BundleID) }), nil
}

func (f *fakeStore) CreateBundleVariation(_ context.Context, arg dbgen.CreateBundleVariationParams) (dbgen.BundleVariation, error) {
	for _, v := range f.variations {
		if v.Sku == arg.Sku {
			return dbgen.BundleVariation{}, &pgconn.PgError{Code: "23505", ConstraintName: "bundle_variations_sku_key"}
		}
	}
	v := dbgen.BundleVariation{ID: newID(), BundleID: arg.BundleID, Sku: arg.Sku, Name: arg.Name, SellingPrice: arg.SellingPrice, CreatedAt: ts()}
	f.variations = append(f.variations, v)
	return v, nil
}

func (f *fakeStore) ListBundleVariations(_ context.Context, ids []pgtype.UUID) ([]dbgen.BundleVariation, error) {
	return filter(f.variations, func(v dbgen.BundleVariation) bool { return inIDs(ids, v.BundleID) }), nil
}

func (f *fakeStore) UpsertBundleComponent(_ context.Context, arg dbgen.UpsertBundleComponentParams) (dbgen.BundleComponent, error) {
	if f.failUpsert {
		return dbgen.BundleComponent{}, errors.New("connection reset")
	}
	if _, ok := f.inventory[db.UUIDString(arg.ComponentVariationID)]; !ok {
		return dbgen.BundleComponent{}, fkError("bundle_components_component_variation_id_fkey")
	}
	for i, c := range f.components {
		if c.BundleID == arg.BundleID && c.ComponentVariationID == arg.ComponentVariationID {
			c.Quantity = arg.Quantity
			c.DisplayOrder = arg.DisplayOrder
			c.IsHighlight = arg.IsHighlight
			f.components[i] = c
			return c, nil
		}
	}
	c := dbgen.BundleComponent{ID: newID(), BundleID: arg.BundleID, ComponentVariationID: arg.ComponentVariationID, Quantity: arg.Quantity, DisplayOrder: arg.DisplayOrder, IsHighlight: arg.IsHighlight}
	f.components = append(f.components, c)
	return c, nil
}

func (f *fakeStore) DeleteBundleComponent(_ context.Context, arg dbgen.DeleteBundleComponentParams) (int64, error) {
	before := len(f.components)
	f.components = filter(f.components, func(c dbgen.BundleComponent) bool {
		return c.BundleID != arg.BundleID || c.ComponentVariationID != arg.ComponentVariationID
	})
	return int64(before - len(f.components)), nil
}

func (f *fakeStore) ListBundleComponents(_ context.Context, ids []pgtype.UUID) ([]dbgen.ListBundleComponentsRow, error) {
	out := []dbgen.ListBundleComponentsRow{}
	for _, c := range f.components {
		if !inIDs(ids, c.BundleID) {
			continue
		}
		v := f.inventory[db.UUIDString(c.ComponentVariationID)]
		out = append(out, dbgen.ListBundleComponentsRow{
			ID: c.ID, BundleID: c.BundleID, ComponentVariationID: c.ComponentVariationID,
			Quantity: c.Quantity, DisplayOrder: c.DisplayOrder, IsHighlight: c.IsHighlight,
			Sku: v.Sku, Name: v.Name, UnitPrice: v.Price,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (f *fakeStore) ListComponentStock(_ context.Context, ids []pgtype.UUID) ([]dbgen.ListComponentStockRow, error) {
	out := []dbgen.ListComponentStockRow{}
	for _, c := range f.components {
		if ids != nil && !inIDs(ids, c.BundleID) {
			continue
		}
		matched := false
		for _, loc := range f.locations {
			qty, ok := f.levels[[2]string{db.UUIDString(c.ComponentVariationID), db.UUIDString(loc.ID)}]
			if !ok {
				continue
			}
			matched = true
			out = append(out, dbgen.ListComponentStockRow{
				BundleID: c.BundleID, ComponentVariationID: c.ComponentVariationID, Quantity: c.Quantity,
				LocationID: loc.ID, Stock: pgtype.Int4{Int32: qty, Valid: true},
			})
		}
		if !matched {
			out = append(out, dbgen.ListComponentStockRow{BundleID: c.BundleID, ComponentVariationID: c.ComponentVariationID, Quantity: c.Quantity})
		}
	}
	return out, nil
}

func (f *fakeStore) ListLocations(context.Context) ([]dbgen.Location, error) {
	return append([]dbgen.Location{}, f.locations...), nil
}

func (f *fakeStore) GetLocation(_ context.Context, id pgtype.UUID) (dbgen.Location, error) {
	for _, l := range f.locations {
		if l.ID == id {
			return l, nil
		}
	}
	return dbgen.Location{}, pgx.ErrNoRows
}

func (f *fakeStore) GetVariationsByIDs(_ context.Context, ids []pgtype.UUID) ([]dbgen.InventoryVariation, error) {
	out := []dbgen.InventoryVariation{}
	for _, id := range ids {
		if v, ok := f.inventory[db.UUIDString(id)]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

type captureEmitter struct {
	topics []string
}

func (c *captureEmitter) Emit(_ context.Context, topic string, aggregateID pgtype.UUID, _ any) (dbgen.DomainEvent, error) {
	c.topics = append(c.topics, topic)
	return dbgen.DomainEvent{ID: newID(), Topic: topic, AggregateID: aggregateID}, nil
}

func newService(t *testing.T, store *fakeStore) (*bundle.Service, *captureEmitter) {
	t.Helper()
	emitter := &captureEmitter{}
	svc, err := bundle.NewService(bundle.ServiceConfig{
		Queries:      store,
		Tx:           store,
		Events:       emitter,
		Logger:       zerolog.Nop(),
		DefaultLimit: 20,
		MaxLimit:     50,
	})
	require.NoError(t, err)
	return svc, emitter
}
