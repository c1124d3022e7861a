package enums

import "fmt"

// SupplierCategory is the single service category a supplier is locked to.
// Every package under the supplier must carry the same category.
type SupplierCategory string

const (
	SupplierCategoryVenue       SupplierCategory = "venue"
	SupplierCategoryPhotography SupplierCategory = "photography"
	SupplierCategoryVideography SupplierCategory = "videography"
	SupplierCategoryCatering    SupplierCategory = "catering"
	SupplierCategoryMusic       SupplierCategory = "music"
	SupplierCategoryFlowers     SupplierCategory = "flowers"
	SupplierCategoryDecor       SupplierCategory = "decor"
	SupplierCategoryBeauty      SupplierCategory = "beauty"
	SupplierCategoryTransport   SupplierCategory = "transport"
	SupplierCategoryPlanning    SupplierCategory = "planning"
)

var validSupplierCategories = []SupplierCategory{
	SupplierCategoryVenue,
	SupplierCategoryPhotography,
	SupplierCategoryVideography,
	SupplierCategoryCatering,
	SupplierCategoryMusic,
	SupplierCategoryFlowers,
	SupplierCategoryDecor,
	SupplierCategoryBeauty,
	SupplierCategoryTransport,
	SupplierCategoryPlanning,
}

// String implements fmt.Stringer.
func (c SupplierCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known SupplierCategory.
func (c SupplierCategory) IsValid() bool {
	for _, candidate := range validSupplierCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseSupplierCategory converts raw input into a SupplierCategory.
func ParseSupplierCategory(value string) (SupplierCategory, error) {
	for _, candidate := range validSupplierCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supplier category %q", value)
}
