package catalog

import "errors"

var (
	ErrLocationNotFound  = errors.New("location not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrVariationNotFound = errors.New("inventory variation not found")
	// ErrCategoryInUse is returned when a category is still linked to bundles.
	ErrCategoryInUse = errors.New("category is used by bundles")
	ErrDuplicateSlug = errors.New("category slug already exists")
	ErrDuplicateSKU  = errors.New("variation sku already exists")
)
