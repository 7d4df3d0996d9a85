package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCheckoutPlan_Monthly(t *testing.T) {
	tests := []struct {
		quantity   int64
		unitAmount int64
	}{
		{1, 1490},
		{4, 1490},
		{5, 1416},
		{9, 1416},
		{10, 1341},
		{100, 1341},
	}

	for _, tt := range tests {
		plan, err := BuildCheckoutPlan(tt.quantity, PlanMonthly)
		require.NoError(t, err)
		assert.Equal(t, tt.unitAmount, plan.UnitAmount, "quantity %d", tt.quantity)
		assert.Equal(t, IntervalMonth, plan.Interval)
		assert.Equal(t, "14,90", plan.PricePerProxy)
		assert.Equal(t, "brl", plan.Currency)
	}
}

func TestBuildCheckoutPlan_Yearly(t *testing.T) {
	plan, err := BuildCheckoutPlan(3, PlanYearly)
	require.NoError(t, err)

	assert.Equal(t, int64(14900), plan.UnitAmount)
	assert.Equal(t, IntervalYear, plan.Interval)
	assert.Equal(t, "12,42", plan.PricePerProxy)
	assert.Equal(t, "Anual", plan.PlanLabel())
	assert.Equal(t, "3_proxies_year", plan.ClientReferenceID())
	assert.Equal(t, "3 Proxies IPv6 - Plano Anual", plan.ProductTitle())
}

func TestBuildCheckoutPlan_Invalid(t *testing.T) {
	_, err := BuildCheckoutPlan(0, PlanMonthly)
	assert.Error(t, err)
	_, err = BuildCheckoutPlan(101, PlanMonthly)
	assert.Error(t, err)
	_, err = BuildCheckoutPlan(1, PlanType("weekly"))
	assert.Error(t, err)
}

func TestCheckoutPlan_Metadata(t *testing.T) {
	plan, err := BuildCheckoutPlan(5, PlanMonthly)
	require.NoError(t, err)

	md := plan.Metadata()
	assert.Equal(t, "5", md["quantity"])
	assert.Equal(t, "month", md["plan_type"])
	assert.Equal(t, "14.16", md["unit_price"])
	assert.Equal(t, "70.8", md["total_price"])
	assert.Equal(t, "5 proxy(s) IPv6 de alta performance - Plano Mensal", md["product_name"])
	assert.Equal(t, "14,90", md["price_per_proxy"])
	assert.Equal(t, "1 Proxy IPv6 - Plano Mensal", CheckoutPlan{Quantity: 1, Interval: IntervalMonth}.ProductTitle())
}

func TestDefaultPricingConfig(t *testing.T) {
	cfg := DefaultPricingConfig()
	assert.Equal(t, 14.9, cfg.Monthly)
	assert.Equal(t, int64(2), cfg.YearlyDiscount)
	assert.Equal(t, int64(5), cfg.VolumeDiscounts["tier1"].Min)
	assert.Equal(t, 0.05, cfg.VolumeDiscounts["tier1"].Discount)
	assert.Equal(t, 0.1, cfg.VolumeDiscounts["tier2"].Discount)
}

func TestPlanLabelFor(t *testing.T) {
	assert.Equal(t, "Mensal", PlanLabelFor("month"))
	assert.Equal(t, "Anual", PlanLabelFor("year"))
	assert.Equal(t, "Anual", PlanLabelFor(""))
}
