package marketplace

import "github.com/listora/listora/pkg/api"

// Validate checks a product brief against one marketplace's requirement
// flags. It returns all failures, not just the first, so the UI can show
// the complete list next to the storefront.
func Validate(p *api.ProductInfo, t Template) []string {
	var errs []string

	if t.RequiresBrand && p.BasicInfo.BrandName == "" {
		errs = append(errs, "brand name is required for this marketplace")
	}

	if t.RequiresPrice && !p.HasPrice() {
		errs = append(errs, "price is required for this marketplace")
	}

	if t.RequiresCategory && p.BasicInfo.Category == "" {
		errs = append(errs, "category is required for this marketplace")
	}

	if p.BasicInfo.ProductName == "" {
		errs = append(errs, "product name is required")
	}

	if p.BasicInfo.Description == "" {
		errs = append(errs, "product description is required")
	}

	if len(p.Features) == 0 {
		errs = append(errs, "at least one feature is required")
	}

	return errs
}

// AnyRequiresPrice reports whether any of the given marketplace keys has the
// requires-price flag set. Unknown keys are ignored here; they fail later
// with a not-found error for the individual marketplace.
func AnyRequiresPrice(keys []string) bool {
	for _, key := range keys {
		if t, ok := templates[key]; ok && t.RequiresPrice {
			return true
		}
	}
	return false
}
