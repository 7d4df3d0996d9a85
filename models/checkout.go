package models

type CheckoutSessionRequest struct {
	Quantity int64  `json:"quantity" binding:"required,min=1,max=100"`
	PlanType string `json:"planType" binding:"required,oneof=monthly yearly"`
}

type CheckoutSessionResponse struct {
	URL string `json:"url"`
}

// PricingConfig is served to the browser to render the price table.
type PricingConfig struct {
	Monthly         float64                   `json:"monthly"`
	YearlyDiscount  int64                     `json:"yearlyDiscount"`
	VolumeDiscounts map[string]VolumeDiscount `json:"volumeDiscounts"`
}

type VolumeDiscount struct {
	Min      int64   `json:"min"`
	Discount float64 `json:"discount"`
}
