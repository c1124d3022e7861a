package types

import "github.com/shopspring/decimal"

// PackageCustomization is one optional add-on a supplier offers on a package.
// Stored as jsonb on the package row; order is significant for display.
type PackageCustomization struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description,omitempty"`
}

// PackageCustomizations is the ordered jsonb list stored on a package.
type PackageCustomizations []PackageCustomization

// Names returns the customization names in display order.
func (p PackageCustomizations) Names() []string {
	names := make([]string, 0, len(p))
	for _, c := range p {
		names = append(names, c.Name)
	}
	return names
}

// StringList is an ordered jsonb string array column.
type StringList []string
