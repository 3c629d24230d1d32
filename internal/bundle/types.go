package bundle

import "time"

// Bundle is a kit sold as one item and assembled from inventory variations.
type Bundle struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     *string     `json:"description,omitempty"`
	ImageURL        *string     `json:"imageUrl,omitempty"`
	SupplierID      *string     `json:"supplierId,omitempty"`
	CategoryIDs     []string    `json:"categoryIds"`
	Variations      []Variation `json:"variations"`
	Components      []Component `json:"components"`
	CalculatedStock Stock       `json:"calculatedStock"`
	SuggestedPrice  int64       `json:"suggestedPrice"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Variation is a sellable SKU of a bundle.
type Variation struct {
	ID           string `json:"id"`
	BundleID     string `json:"bundleId"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	SellingPrice int64  `json:"sellingPrice"`
}

// Component links an inventory variation into a bundle with a per-bundle quantity.
type Component struct {
	ID                   string `json:"id"`
	ComponentVariationID string `json:"componentVariationId"`
	SKU                  string `json:"sku"`
	Name                 string `json:"name"`
	UnitPrice            int64  `json:"unitPrice"`
	Quantity             int32  `json:"quantity"`
	DisplayOrder         int32  `json:"displayOrder"`
	IsHighlight          bool   `json:"isHighlight"`
}

// BundleStock is one row of a full stock refresh.
type BundleStock struct {
	BundleID string `json:"bundleId"`
	Name     string `json:"name"`
	Stock    Stock  `json:"stock"`
}

// ComponentInput describes one component link in a create or add request.
type ComponentInput struct {
	ComponentVariationID string `json:"componentVariationId" validate:"required,uuid"`
	Quantity             int32  `json:"quantity" validate:"min=1"`
	DisplayOrder         int32  `json:"displayOrder" validate:"gte=0"`
	IsHighlight          bool   `json:"isHighlight"`
}

// VariationInput creates a bundle variation together with its components.
// A nil SellingPrice uses the suggested price.
type VariationInput struct {
	SKU          string           `json:"sku" validate:"required,max=64"`
	Name         string           `json:"name" validate:"required,max=200"`
	SellingPrice *int64           `json:"sellingPrice" validate:"omitempty,gte=0"`
	Components   []ComponentInput `json:"components" validate:"required,min=1,dive"`
}

// CreateBundleInput creates a bundle shell and, optionally, its first variation.
type CreateBundleInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	ImageURL    *string         `json:"imageUrl" validate:"omitempty,url"`
	CategoryIDs []string        `json:"categoryIds" validate:"dive,uuid"`
	SupplierID  *string         `json:"supplierId" validate:"omitempty,uuid"`
	Variation   *VariationInput `json:"variation"`
}

// UpdateBundleInput changes bundle metadata. Nil fields are left untouched; a non-nil
// CategoryIDs replaces the category set.
type UpdateBundleInput struct {
	Name        *string   `json:"name" validate:"omitempty,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	ImageURL    *string   `json:"imageUrl" validate:"omitempty,url"`
	CategoryIDs *[]string `json:"categoryIds"`
}

// ListParams filters the bundle listing.
type ListParams struct {
	Query      string
	CategoryID string
	Page       int
	Limit      int
}

// ListResult is one page of bundles.
type ListResult struct {
	Items []Bundle
	Total int64
	Page  int
	Limit int
}

// PriceSuggestion previews the suggested price for a component list.
type PriceSuggestion struct {
	Components     []Component `json:"components"`
	SuggestedPrice int64       `json:"suggestedPrice"`
}
