package bundle

import "errors"

var (
	// ErrBundleNotFound is returned when a bundle id does not exist.
	ErrBundleNotFound = errors.New("bundle not found")
	// ErrLocationNotFound is returned when a stock query names an unknown location.
	ErrLocationNotFound = errors.New("location not found")
	// ErrVariationNotFound is returned when a component references an unknown inventory variation.
	ErrVariationNotFound = errors.New("component variation not found")
	// ErrCategoryNotFound is returned when a bundle is linked to an unknown category.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrSupplierNotFound is returned when a bundle names an unknown supplier.
	ErrSupplierNotFound = errors.New("supplier not found")
	// ErrDuplicateSKU is returned when a bundle variation SKU is already taken.
	ErrDuplicateSKU = errors.New("bundle variation sku already exists")
)
