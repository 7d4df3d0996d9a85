package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"checkout-service/models"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

const (
	missingCheckoutContact     = "N/D"
	missingSubscriptionContact = "N/A"
	defaultPricePerProxy       = "14,90"
)

var errEmptyDetail = errors.New("stripe returned no detail")

func (n *EventNormalizer) fetchSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	sub, err := n.enricher.FetchSubscriptionDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errEmptyDetail
	}
	return sub, nil
}

func (n *EventNormalizer) fetchInvoice(ctx context.Context, id string) (*stripe.Invoice, error) {
	inv, err := n.enricher.FetchInvoiceDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, errEmptyDetail
	}
	return inv, nil
}

func (n *EventNormalizer) checkoutCompleted(ctx context.Context, event stripe.Event) (string, interface{}, bool) {
	var sess stripe.CheckoutSession
	if !n.decode(event, &sess) {
		return "", nil, false
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		n.logger.Warn("Checkout completed without confirmed payment",
			zap.String("session_id", sess.ID),
			zap.String("payment_status", string(sess.PaymentStatus)),
		)
		return "", nil, false
	}

	amount := NewAmount(sess.AmountTotal, string(sess.Currency))

	var sub *stripe.Subscription
	if sess.Subscription != nil && sess.Subscription.ID != "" {
		detail, err := n.fetchSubscription(ctx, sess.Subscription.ID)
		if err != nil {
			n.enrichmentFailed(event, models.EventCheckoutCompletedBasic, err)
			return models.EventCheckoutCompletedBasic, models.CheckoutCompletedBasic{
				SessionID: sess.ID,
				Amount:    amount,
				Customer:  customerID(sess.Customer),
				Status:    string(sess.PaymentStatus),
				Currency:  currencyCode(sess.Currency),
			}, true
		}
		sub = detail
	}

	quantity := parseQuantity(sess.Metadata["quantity"])
	plan := PlanLabelFor(sess.Metadata["plan_type"])
	productName := sess.Metadata["product_name"]
	if productName == "" {
		productName = fmt.Sprintf("%d proxy(s) IPv6 - Plano %s", quantity, plan)
	}
	pricePerProxy := sess.Metadata["price_per_proxy"]
	if pricePerProxy == "" {
		pricePerProxy = defaultPricePerProxy
	}

	customer := models.CustomerInfo{
		ID:    customerID(sess.Customer),
		Email: missingCheckoutContact,
		Phone: missingCheckoutContact,
	}
	if d := sess.CustomerDetails; d != nil {
		customer.Email = orDefault(d.Email, missingCheckoutContact)
		customer.Phone = orDefault(d.Phone, missingCheckoutContact)
	}

	n.logger.Info("Checkout payment confirmed",
		zap.String("session_id", sess.ID),
		zap.String("client_reference_id", sess.ClientReferenceID),
		zap.Int64("quantity", quantity),
	)

	return models.EventCheckoutCompleted, models.CheckoutCompleted{
		SessionID:     sess.ID,
		Amount:        amount,
		Quantity:      quantity,
		PricePerProxy: pricePerProxy,
		Plan:          plan,
		Product:       productName,
		Customer:      customer,
		Status:        string(sess.PaymentStatus),
		Currency:      currencyCode(sess.Currency),
		PaidAt:        isoTime(sess.Created),
		Subscription:  subscriptionInfo(sub),
	}, true
}

func (n *EventNormalizer) subscriptionCreated(ctx context.Context, event stripe.Event) (string, interface{}, bool) {
	var created stripe.Subscription
	if !n.decode(event, &created) {
		return "", nil, false
	}

	sub, err := n.fetchSubscription(ctx, created.ID)
	if err != nil {
		n.enrichmentFailed(event, models.EventSubscriptionCreatedBasic, err)
		return models.EventSubscriptionCreatedBasic, models.SubscriptionBasic{
			SubscriptionID: created.ID,
			Customer:       customerID(created.Customer),
			Status:         string(created.Status),
		}, true
	}

	quantity, interval := subscriptionTerms(sub)
	var unitAmount int64
	if item := firstItem(sub); item != nil && item.Price != nil {
		unitAmount = item.Price.UnitAmount
	}

	customer := models.CustomerInfo{
		ID:    customerID(sub.Customer),
		Email: missingSubscriptionContact,
		Name:  missingSubscriptionContact,
	}
	if c := sub.Customer; c != nil {
		customer.Email = orDefault(c.Email, missingSubscriptionContact)
		customer.Name = orDefault(c.Name, missingSubscriptionContact)
	}

	n.logger.Info("Subscription created",
		zap.String("subscription_id", sub.ID),
		zap.String("customer_id", customer.ID),
		zap.Int64("quantity", quantity),
	)

	return models.EventSubscriptionCreated, models.SubscriptionCreated{
		SubscriptionID: sub.ID,
		Customer:       customer,
		Status:         string(sub.Status),
		Amount:         NewAmount(unitAmount*quantity, string(sub.Currency)),
		Quantity:       quantity,
		Plan:           PlanLabelFor(interval),
		Period: models.Period{
			Start: isoTime(sub.CurrentPeriodStart),
			End:   isoTime(sub.CurrentPeriodEnd),
		},
		NextChargeAt: optionalTime(sub.CurrentPeriodEnd),
		Items:        subscriptionItems(sub),
	}, true
}

func (n *EventNormalizer) subscriptionChanged(eventType string) eventHandler {
	return func(_ context.Context, event stripe.Event) (string, interface{}, bool) {
		var sub stripe.Subscription
		if !n.decode(event, &sub) {
			return "", nil, false
		}
		quantity, interval := subscriptionTerms(&sub)

		n.logger.Info("Subscription changed",
			zap.String("subscription_id", sub.ID),
			zap.String("status", string(sub.Status)),
			zap.String("event_type", eventType),
		)

		return eventType, models.SubscriptionChanged{
			SubscriptionID: sub.ID,
			Customer:       customerID(sub.Customer),
			Status:         string(sub.Status),
			Quantity:       quantity,
			Plan:           PlanLabelFor(interval),
			Period: models.Period{
				Start: isoTime(sub.CurrentPeriodStart),
				End:   isoTime(sub.CurrentPeriodEnd),
			},
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
			CanceledAt:        optionalTime(sub.CanceledAt),
		}, true
	}
}

func (n *EventNormalizer) invoicePaid(ctx context.Context, event stripe.Event) (string, interface{}, bool) {
	var inv stripe.Invoice
	if !n.decode(event, &inv) {
		return "", nil, false
	}

	amount := NewAmount(inv.AmountPaid, string(inv.Currency))
	quantity, interval := int64(1), IntervalMonth

	var sub *stripe.Subscription
	if inv.Subscription != nil && inv.Subscription.ID != "" {
		detail, err := n.fetchSubscription(ctx, inv.Subscription.ID)
		if err != nil {
			n.enrichmentFailed(event, models.EventInvoicePaidBasic, err)
			return models.EventInvoicePaidBasic, invoicePaidBasic(inv, amount), true
		}
		sub = detail
		quantity, interval = subscriptionTerms(sub)
	}

	plan := PlanLabelFor(interval)
	n.logger.Info("Invoice paid",
		zap.String("invoice_id", inv.ID),
		zap.Int64("amount_paid", inv.AmountPaid),
		zap.Int64("quantity", quantity),
		zap.String("plan", plan),
	)

	return models.EventInvoicePaid, models.InvoicePaid{
		InvoiceID:   inv.ID,
		Amount:      amount,
		Subtotal:    FormatMoney(fromMinor(inv.Subtotal), string(inv.Currency)),
		Quantity:    quantity,
		Plan:        plan,
		Description: fmt.Sprintf("%d proxy(s) IPv6 de alta performance", quantity),
		UnitPrice:   unitPrice(inv.AmountPaid, quantity, interval),
		Customer:    customerID(inv.Customer),
		Status:      string(inv.Status),
		Currency:    currencyCode(inv.Currency),
		Period: models.Period{
			Start: isoTime(inv.PeriodStart),
			End:   isoTime(inv.PeriodEnd),
		},
		NextInvoiceAt: optionalTime(inv.NextPaymentAttempt),
		Subscription:  subscriptionInfo(sub),
	}, true
}

func invoicePaidBasic(inv stripe.Invoice, amount models.Amount) models.InvoicePaidBasic {
	return models.InvoicePaidBasic{
		InvoiceID: inv.ID,
		Amount:    amount,
		Customer:  customerID(inv.Customer),
		Status:    string(inv.Status),
	}
}

func (n *EventNormalizer) invoicePaymentFailed(_ context.Context, event stripe.Event) (string, interface{}, bool) {
	var inv stripe.Invoice
	if !n.decode(event, &inv) {
		return "", nil, false
	}

	n.logger.Info("Invoice payment failed",
		zap.String("invoice_id", inv.ID),
		zap.String("customer_id", customerID(inv.Customer)),
		zap.Int64("attempt_count", inv.AttemptCount),
	)

	return models.EventInvoicePaymentFailed, models.InvoicePaymentFailed{
		InvoiceID:     inv.ID,
		Amount:        NewAmount(inv.AmountDue, string(inv.Currency)),
		Customer:      customerID(inv.Customer),
		Status:        string(inv.Status),
		Currency:      currencyCode(inv.Currency),
		Attempts:      inv.AttemptCount,
		NextAttemptAt: optionalTime(inv.NextPaymentAttempt),
		InvoiceURL:    inv.HostedInvoiceURL,
	}, true
}

func (n *EventNormalizer) paymentSucceeded(ctx context.Context, event stripe.Event) (string, interface{}, bool) {
	var pi stripe.PaymentIntent
	if !n.decode(event, &pi) {
		return "", nil, false
	}

	amount := NewAmount(pi.Amount, string(pi.Currency))
	basic := models.PaymentSucceededBasic{
		PaymentID: pi.ID,
		Amount:    amount,
		Status:    string(pi.Status),
	}
	quantity, interval := int64(1), IntervalMonth

	var sub *stripe.Subscription
	if pi.Invoice != nil && pi.Invoice.ID != "" {
		inv, err := n.fetchInvoice(ctx, pi.Invoice.ID)
		if err != nil {
			n.enrichmentFailed(event, models.EventPaymentSucceededBasic, err)
			return models.EventPaymentSucceededBasic, basic, true
		}
		if inv.Subscription != nil && inv.Subscription.ID != "" {
			detail, err := n.fetchSubscription(ctx, inv.Subscription.ID)
			if err != nil {
				n.enrichmentFailed(event, models.EventPaymentSucceededBasic, err)
				return models.EventPaymentSucceededBasic, basic, true
			}
			sub = detail
			quantity, interval = subscriptionTerms(sub)
		}
	}

	n.logger.Info("Payment received",
		zap.String("payment_intent_id", pi.ID),
		zap.String("amount", amount.Display),
	)

	return models.EventPaymentSucceeded, models.PaymentSucceeded{
		PaymentID:    pi.ID,
		Amount:       amount,
		Quantity:     quantity,
		Plan:         PlanLabelFor(interval),
		Customer:     customerID(pi.Customer),
		Currency:     currencyCode(pi.Currency),
		PaidAt:       isoTime(pi.Created),
		Status:       string(pi.Status),
		Subscription: subscriptionInfo(sub),
	}, true
}

func (n *EventNormalizer) paymentFailed(_ context.Context, event stripe.Event) (string, interface{}, bool) {
	var pi stripe.PaymentIntent
	if !n.decode(event, &pi) {
		return "", nil, false
	}

	failed := models.PaymentFailed{
		PaymentID: pi.ID,
		Amount:    NewAmount(pi.Amount, string(pi.Currency)),
		Customer:  customerID(pi.Customer),
		Currency:  currencyCode(pi.Currency),
		Status:    string(pi.Status),
	}
	if e := pi.LastPaymentError; e != nil {
		failed.Reason = e.Msg
		failed.Code = string(e.Code)
	}

	n.logger.Warn("Payment failed", zap.String("payment_intent_id", pi.ID), zap.String("code", failed.Code))
	return models.EventPaymentFailed, failed, true
}

func subscriptionInfo(sub *stripe.Subscription) *models.SubscriptionInfo {
	if sub == nil {
		return nil
	}
	return &models.SubscriptionInfo{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		CurrentPeriodStart: isoTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   isoTime(sub.CurrentPeriodEnd),
		Items:              subscriptionItems(sub),
	}
}

func subscriptionItems(sub *stripe.Subscription) []models.SubscriptionItemInfo {
	items := []models.SubscriptionItemInfo{}
	if sub == nil || sub.Items == nil {
		return items
	}
	for _, item := range sub.Items.Data {
		if item == nil {
			continue
		}
		info := models.SubscriptionItemInfo{ID: item.ID, Quantity: item.Quantity}
		if p := item.Price; p != nil {
			unit, _ := fromMinor(p.UnitAmount).Float64()
			info.Price = &models.PriceInfo{
				ID:         p.ID,
				UnitAmount: unit,
				Currency:   string(p.Currency),
			}
			if p.Recurring != nil {
				info.Price.Recurring = &models.RecurringInfo{Interval: string(p.Recurring.Interval)}
			}
			if p.Product != nil && p.Product.ID != "" {
				info.Product = &models.ProductInfo{
					ID:          p.Product.ID,
					Name:        p.Product.Name,
					Description: p.Product.Description,
					Metadata:    p.Product.Metadata,
				}
			}
		}
		items = append(items, info)
	}
	return items
}

func firstItem(sub *stripe.Subscription) *stripe.SubscriptionItem {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil
	}
	return sub.Items.Data[0]
}

// subscriptionTerms returns the proxy quantity and billing interval of the
// first subscription item, defaulting to one proxy billed monthly.
func subscriptionTerms(sub *stripe.Subscription) (int64, string) {
	quantity, interval := int64(1), IntervalMonth
	item := firstItem(sub)
	if item == nil {
		return quantity, interval
	}
	if item.Quantity > 0 {
		quantity = item.Quantity
	}
	switch {
	case item.Plan != nil && item.Plan.Interval != "":
		interval = string(item.Plan.Interval)
	case item.Price != nil && item.Price.Recurring != nil:
		interval = string(item.Price.Recurring.Interval)
	}
	return quantity, interval
}

// unitPrice is the monthly price of one proxy. Yearly plans charge ten months.
func unitPrice(amountPaid, quantity int64, interval string) string {
	if quantity < 1 {
		quantity = 1
	}
	per := fromMinor(amountPaid).Div(decimal.NewFromInt(quantity))
	if interval != IntervalMonth {
		per = per.Div(decimal.NewFromInt(10))
	}
	return FormatDecimal(per)
}

func parseQuantity(s string) int64 {
	q, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || q < 1 {
		return 1
	}
	return q
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func currencyCode(c stripe.Currency) string {
	return strings.ToUpper(string(c))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func isoTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(models.TimeLayout)
}

func optionalTime(unix int64) *string {
	if unix == 0 {
		return nil
	}
	s := isoTime(unix)
	return &s
}
