package api

import "fmt"

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxFeatures       int
	MaxSpecifications int
	MaxMarketplaces   int
	MaxFieldLength    int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxFeatures:       50,
		MaxSpecifications: 100,
		MaxMarketplaces:   16,
		MaxFieldLength:    8192,
	}
}

// ValidateProduct checks that a product brief is complete enough for
// generation. It returns an *APIError describing the first failure, or nil.
// Marketplace-specific requirements (brand, price, category) are validated
// separately against each selected marketplace.
func ValidateProduct(p *ProductInfo, cfg ValidationConfig) *APIError {
	if p.BasicInfo.ProductName == "" {
		return NewInvalidRequestError("product.basic_info.product_name", "product name is required")
	}

	if p.BasicInfo.Description == "" {
		return NewInvalidRequestError("product.basic_info.description", "product description is required")
	}

	if len(p.Features) == 0 {
		return NewInvalidRequestError("product.features", "at least one product feature is required")
	}

	if cfg.MaxFeatures > 0 && len(p.Features) > cfg.MaxFeatures {
		return NewInvalidRequestError("product.features",
			fmt.Sprintf("features exceed maximum of %d", cfg.MaxFeatures))
	}

	if cfg.MaxSpecifications > 0 && len(p.Specifications) > cfg.MaxSpecifications {
		return NewInvalidRequestError("product.specifications",
			fmt.Sprintf("specifications exceed maximum of %d", cfg.MaxSpecifications))
	}

	if p.BasicInfo.Price != nil && *p.BasicInfo.Price < 0 {
		return NewInvalidRequestError("product.basic_info.price", "price must not be negative")
	}

	if cfg.MaxFieldLength > 0 {
		fields := map[string]string{
			"product.basic_info.product_name": p.BasicInfo.ProductName,
			"product.basic_info.description":  p.BasicInfo.Description,
		}
		for param, v := range fields {
			if len(v) > cfg.MaxFieldLength {
				return NewInvalidRequestError(param,
					fmt.Sprintf("field exceeds maximum length of %d", cfg.MaxFieldLength))
			}
		}
	}

	return nil
}

// ValidateGenerateRequest checks structural validity of a generation request.
// Unknown marketplace keys are caught later against the template registry.
func ValidateGenerateRequest(req *GenerateRequest, cfg ValidationConfig) *APIError {
	if len(req.Marketplaces) == 0 {
		return NewInvalidRequestError("marketplaces", "select at least one marketplace")
	}

	if cfg.MaxMarketplaces > 0 && len(req.Marketplaces) > cfg.MaxMarketplaces {
		return NewInvalidRequestError("marketplaces",
			fmt.Sprintf("marketplaces exceed maximum of %d", cfg.MaxMarketplaces))
	}

	seen := make(map[string]bool, len(req.Marketplaces))
	for _, key := range req.Marketplaces {
		if key == "" {
			return NewInvalidRequestError("marketplaces", "marketplace key must not be empty")
		}
		if seen[key] {
			return NewInvalidRequestError("marketplaces",
				fmt.Sprintf("duplicate marketplace %q", key))
		}
		seen[key] = true
	}

	if req.Temperature != nil {
		if *req.Temperature < 0.0 || *req.Temperature > 2.0 {
			return NewInvalidRequestError("temperature", "temperature must be between 0.0 and 2.0")
		}
	}

	return nil
}
