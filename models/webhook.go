package models

import "time"

// TimeLayout is the timestamp format used in relayed payloads (UTC, millisecond precision).
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// RedactedValue replaces the value of every sensitive key before a payload leaves the service.
const RedactedValue = "[REDACTED]"

// Local event classifiers carried in the event_type field.
const (
	EventCheckoutCompleted        = "checkout_completed"
	EventCheckoutCompletedBasic   = "checkout_completed_basic"
	EventSubscriptionCreated      = "subscription_created"
	EventSubscriptionCreatedBasic = "subscription_created_basic"
	EventSubscriptionUpdated      = "subscription_updated"
	EventSubscriptionDeleted      = "subscription_deleted"
	EventInvoicePaid              = "invoice_paid"
	EventInvoicePaidBasic         = "invoice_paid_basic"
	EventInvoicePaymentFailed     = "invoice_payment_failed"
	EventPaymentSucceeded         = "payment_succeeded"
	EventPaymentSucceededBasic    = "payment_succeeded_basic"
	EventPaymentFailed            = "payment_failed"
)

// NormalizedPayload is the relay-ready document for one Stripe event.
type NormalizedPayload map[string]interface{}

func (p NormalizedPayload) EventType() string {
	s, _ := p["event_type"].(string)
	return s
}

// ProcessedEvent records that a Stripe event id has been accepted once.
type ProcessedEvent struct {
	EventID     string    `json:"eventId"`
	ProcessedAt time.Time `json:"processedAt"`
}

// Amount exposes a money value both for display and for arithmetic.
type Amount struct {
	Display string  `json:"valor"`
	Value   float64 `json:"valor_numerico"`
}

type CustomerInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Phone string `json:"telefone,omitempty"`
	Name  string `json:"nome,omitempty"`
}

type Period struct {
	Start string `json:"inicio"`
	End   string `json:"fim"`
}

type RecurringInfo struct {
	Interval string `json:"interval"`
}

type PriceInfo struct {
	ID         string         `json:"id"`
	UnitAmount float64        `json:"unit_amount"`
	Currency   string         `json:"currency"`
	Recurring  *RecurringInfo `json:"recurring"`
}

type ProductInfo struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

type SubscriptionItemInfo struct {
	ID       string       `json:"id"`
	Quantity int64        `json:"quantity"`
	Price    *PriceInfo   `json:"price"`
	Product  *ProductInfo `json:"product"`
}

type SubscriptionInfo struct {
	ID                 string                 `json:"id"`
	Status             string                 `json:"status"`
	CurrentPeriodStart string                 `json:"current_period_start"`
	CurrentPeriodEnd   string                 `json:"current_period_end"`
	Items              []SubscriptionItemInfo `json:"items"`
}

type CheckoutCompleted struct {
	SessionID string `json:"id_sessao"`
	Amount
	Quantity      int64             `json:"quantidade_proxies"`
	PricePerProxy string            `json:"preco_por_proxy"`
	Plan          string            `json:"plano"`
	Product       string            `json:"produto"`
	Customer      CustomerInfo      `json:"cliente"`
	Status        string            `json:"status"`
	Currency      string            `json:"moeda"`
	PaidAt        string            `json:"data_pagamento"`
	Subscription  *SubscriptionInfo `json:"subscription"`
}

type CheckoutCompletedBasic struct {
	SessionID string `json:"id_sessao"`
	Amount
	Customer string `json:"cliente"`
	Status   string `json:"status"`
	Currency string `json:"moeda"`
}

type SubscriptionCreated struct {
	SubscriptionID string       `json:"id_assinatura"`
	Customer       CustomerInfo `json:"cliente"`
	Status         string       `json:"status"`
	Amount
	Quantity     int64                  `json:"quantidade_proxies"`
	Plan         string                 `json:"plano"`
	Period       Period                 `json:"periodo"`
	NextChargeAt *string                `json:"proxima_cobranca"`
	Items        []SubscriptionItemInfo `json:"itens"`
}

type SubscriptionBasic struct {
	SubscriptionID string `json:"id_assinatura"`
	Customer       string `json:"cliente"`
	Status         string `json:"status"`
}

// SubscriptionChanged covers updates and cancellations.
type SubscriptionChanged struct {
	SubscriptionID    string  `json:"id_assinatura"`
	Customer          string  `json:"cliente"`
	Status            string  `json:"status"`
	Quantity          int64   `json:"quantidade_proxies"`
	Plan              string  `json:"plano"`
	Period            Period  `json:"periodo"`
	CancelAtPeriodEnd bool    `json:"cancelar_no_fim_do_periodo"`
	CanceledAt        *string `json:"cancelado_em"`
}

type InvoicePaid struct {
	InvoiceID string `json:"id_fatura"`
	Amount
	Subtotal      string            `json:"valor_subtotal"`
	Quantity      int64             `json:"quantidade_proxies"`
	Plan          string            `json:"plano"`
	Description   string            `json:"proxies_descricao"`
	UnitPrice     string            `json:"preco_unitario"`
	Customer      string            `json:"cliente"`
	Status        string            `json:"status"`
	Currency      string            `json:"moeda"`
	Period        Period            `json:"periodo"`
	NextInvoiceAt *string           `json:"proxima_fatura"`
	Subscription  *SubscriptionInfo `json:"subscription"`
}

type InvoicePaidBasic struct {
	InvoiceID string `json:"id_fatura"`
	Amount
	Customer string `json:"cliente"`
	Status   string `json:"status"`
}

type InvoicePaymentFailed struct {
	InvoiceID string `json:"id_fatura"`
	Amount
	Customer      string  `json:"cliente"`
	Status        string  `json:"status"`
	Currency      string  `json:"moeda"`
	Attempts      int64   `json:"tentativas"`
	NextAttemptAt *string `json:"proxima_tentativa"`
	InvoiceURL    string  `json:"url_fatura"`
}

type PaymentSucceeded struct {
	PaymentID string `json:"id_pagamento"`
	Amount
	Quantity     int64             `json:"quantidade_proxies"`
	Plan         string            `json:"plano"`
	Customer     string            `json:"cliente"`
	Currency     string            `json:"moeda"`
	PaidAt       string            `json:"data_pagamento"`
	Status       string            `json:"status"`
	Subscription *SubscriptionInfo `json:"subscription"`
}

type PaymentSucceededBasic struct {
	PaymentID string `json:"id_pagamento"`
	Amount
	Status string `json:"status"`
}

type PaymentFailed struct {
	PaymentID string `json:"id_pagamento"`
	Amount
	Customer string `json:"cliente"`
	Currency string `json:"moeda"`
	Status   string `json:"status"`
	Reason   string `json:"motivo"`
	Code     string `json:"codigo"`
}
