package services

import (
	"fmt"
	"strconv"

	"checkout-service/models"

	"github.com/shopspring/decimal"
)

type PlanType string

const (
	PlanMonthly PlanType = "monthly"
	PlanYearly  PlanType = "yearly"
)

const (
	IntervalMonth = "month"
	IntervalYear  = "year"

	PlanLabelMonthly = "Mensal"
	PlanLabelYearly  = "Anual"
)

const (
	baseUnitPriceMinor  int64  = 1490
	pricingCurrency     string = "brl"
	yearlyFreeMonths    int64  = 2
	minCheckoutQuantity int64  = 1
	maxCheckoutQuantity int64  = 100
)

var volumeTiers = []struct {
	name     string
	min      int64
	discount decimal.Decimal
}{
	{"tier2", 10, decimal.RequireFromString("0.10")},
	{"tier1", 5, decimal.RequireFromString("0.05")},
}

// CheckoutPlan is the priced form of a checkout request.
type CheckoutPlan struct {
	Quantity      int64
	Interval      string
	UnitAmount    int64
	Currency      string
	PricePerProxy string
}

// PlanLabelFor maps a Stripe recurring interval to the label shown to customers.
func PlanLabelFor(interval string) string {
	if interval == IntervalMonth {
		return PlanLabelMonthly
	}
	return PlanLabelYearly
}

// BuildCheckoutPlan prices quantity proxies. Monthly plans get volume
// discounts; yearly plans charge ten months.
func BuildCheckoutPlan(quantity int64, plan PlanType) (CheckoutPlan, error) {
	if quantity < minCheckoutQuantity || quantity > maxCheckoutQuantity {
		return CheckoutPlan{}, fmt.Errorf("quantity must be between %d and %d", minCheckoutQuantity, maxCheckoutQuantity)
	}

	base := decimal.NewFromInt(baseUnitPriceMinor)
	switch plan {
	case PlanMonthly:
		unit := base
		for _, tier := range volumeTiers {
			if quantity >= tier.min {
				unit = base.Mul(decimal.NewFromInt(1).Sub(tier.discount))
				break
			}
		}
		return CheckoutPlan{
			Quantity:      quantity,
			Interval:      IntervalMonth,
			UnitAmount:    unit.Round(0).IntPart(),
			Currency:      pricingCurrency,
			PricePerProxy: FormatDecimal(fromMinor(baseUnitPriceMinor)),
		}, nil
	case PlanYearly:
		months := 12 - yearlyFreeMonths
		yearly := base.Mul(decimal.NewFromInt(months))
		return CheckoutPlan{
			Quantity:      quantity,
			Interval:      IntervalYear,
			UnitAmount:    yearly.IntPart(),
			Currency:      pricingCurrency,
			PricePerProxy: FormatDecimal(fromMinor(yearly.IntPart()).Div(decimal.NewFromInt(12))),
		}, nil
	default:
		return CheckoutPlan{}, fmt.Errorf("unknown plan type %q", plan)
	}
}

func (p CheckoutPlan) PlanLabel() string {
	return PlanLabelFor(p.Interval)
}

func (p CheckoutPlan) QuantityString() string {
	return strconv.FormatInt(p.Quantity, 10)
}

func (p CheckoutPlan) ProductTitle() string {
	noun := "Proxy IPv6"
	if p.Quantity > 1 {
		noun = "Proxies IPv6"
	}
	return fmt.Sprintf("%d %s - Plano %s", p.Quantity, noun, p.PlanLabel())
}

func (p CheckoutPlan) ProductDescription() string {
	return fmt.Sprintf("%d proxy(s) IPv6 de alta performance - Valor unitário: R$ %s por mês - Plano %s",
		p.Quantity, p.PricePerProxy, p.PlanLabel())
}

func (p CheckoutPlan) ProductName() string {
	return fmt.Sprintf("%d proxy(s) IPv6 de alta performance - Plano %s", p.Quantity, p.PlanLabel())
}

func (p CheckoutPlan) ClientReferenceID() string {
	return fmt.Sprintf("%d_proxies_%s", p.Quantity, p.Interval)
}

func (p CheckoutPlan) SubmitMessage() string {
	return fmt.Sprintf("Você está comprando %d proxy(s) IPv6 de alta performance. Valor unitário: R$ %s por mês.",
		p.Quantity, p.PricePerProxy)
}

// TotalAmount is the amount charged per billing interval, in minor units.
func (p CheckoutPlan) TotalAmount() int64 {
	return p.UnitAmount * p.Quantity
}

// Metadata is attached to the checkout session and read back when the
// checkout.session.completed webhook arrives.
func (p CheckoutPlan) Metadata() map[string]string {
	return map[string]string{
		"quantity":        p.QuantityString(),
		"plan_type":       p.Interval,
		"unit_price":      fromMinor(p.UnitAmount).String(),
		"total_price":     fromMinor(p.TotalAmount()).String(),
		"product_name":    p.ProductName(),
		"price_per_proxy": p.PricePerProxy,
	}
}

// DefaultPricingConfig describes the price table for the browser.
func DefaultPricingConfig() models.PricingConfig {
	value, _ := fromMinor(baseUnitPriceMinor).Float64()
	discounts := make(map[string]models.VolumeDiscount, len(volumeTiers))
	for _, tier := range volumeTiers {
		d, _ := tier.discount.Float64()
		discounts[tier.name] = models.VolumeDiscount{Min: tier.min, Discount: d}
	}
	return models.PricingConfig{
		Monthly:         value,
		YearlyDiscount:  yearlyFreeMonths,
		VolumeDiscounts: discounts,
	}
}
