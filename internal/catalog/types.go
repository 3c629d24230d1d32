package catalog

import "time"

// Location is a store or stock room that holds inventory.
type Location struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Category groups bundles for the dashboard.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

// StockLevel is the on-hand quantity of one variation at one location.
type StockLevel struct {
	LocationID   string `json:"locationId"`
	LocationName string `json:"locationName,omitempty"`
	Quantity     int32  `json:"quantity"`
}

// Variation is an inventory SKU with its stock per location.
type Variation struct {
	ID         string       `json:"id"`
	SKU        string       `json:"sku"`
	Name       string       `json:"name"`
	Price      int64        `json:"price"`
	TotalStock int64        `json:"totalStock"`
	Levels     []StockLevel `json:"levels"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// ListParams captures variation search and pagination.
type ListParams struct {
	Query string
	Page  int
	Limit int
}

// VariationList is one page of variations.
type VariationList struct {
	Items []Variation
	Total int64
	Page  int
	Limit int
}

// Order is a taxable sale recorded from the storefront provider.
type Order struct {
	ID          string    `json:"id"`
	ExternalRef *string   `json:"externalRef,omitempty"`
	Subtotal    int64     `json:"subtotal"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RegisterSession is a till session whose takings are taxable.
type RegisterSession struct {
	ID         string     `json:"id"`
	LocationID *string    `json:"locationId,omitempty"`
	Subtotal   int64      `json:"subtotal"`
	OpenedAt   time.Time  `json:"openedAt"`
	ClosedAt   *time.Time `json:"closedAt,omitempty"`
}

type LocationInput struct {
	Name    string  `json:"name" validate:"required,max=120"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

type CategoryInput struct {
	Name string `json:"name" validate:"required,max=120"`
	Slug string `json:"slug" validate:"omitempty,max=140"`
}

type VariationInput struct {
	SKU   string `json:"sku" validate:"required,max=64"`
	Name  string `json:"name" validate:"required,max=200"`
	Price int64  `json:"price" validate:"gte=0"`
}

type StockLevelInput struct {
	Quantity int32 `json:"quantity" validate:"gte=0"`
}

type OrderInput struct {
	ExternalRef *string    `json:"externalRef" validate:"omitempty,max=120"`
	Subtotal    int64      `json:"subtotal" validate:"gte=0"`
	CreatedAt   *time.Time `json:"createdAt"`
}

type RegisterSessionInput struct {
	LocationID *string    `json:"locationId" validate:"omitempty,uuid"`
	Subtotal   int64      `json:"subtotal" validate:"gte=0"`
	OpenedAt   *time.Time `json:"openedAt"`
	ClosedAt   *time.Time `json:"closedAt"`
}
