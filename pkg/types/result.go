package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusItem is one structured message returned by the provider
type StatusItem struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// LineAdjustment is the provider's pricing of one submitted sale line
type LineAdjustment struct {
	Channel Channel         `json:"channel"`
	Code    string          `json:"code"`
	Amount  decimal.Decimal `json:"amount"`
	Status  int             `json:"status"`
}

// PriceResult is the outcome of the price phase
type PriceResult struct {
	OK              bool                       `json:"ok"`
	Status          int                        `json:"status"`
	Total           decimal.Decimal            `json:"total"`
	Amounts         map[string]decimal.Decimal `json:"amounts,omitempty"`
	Adjustments     []LineAdjustment           `json:"adjustments,omitempty"`
	StatusItems     []StatusItem               `json:"status_items,omitempty"`
	RejectionReason string                     `json:"rejection_reason,omitempty"`
	EstimatedWait   string                     `json:"estimated_wait_minutes,omitempty"`
	Error           string                     `json:"error,omitempty"` // transport failure detail
	At              time.Time                  `json:"at"`
}

// SubmitResult is the outcome of the submit phase
type SubmitResult struct {
	OK              bool         `json:"ok"`
	Status          int          `json:"status"`
	Confirmation    string       `json:"confirmation,omitempty"` // provider order id
	EstimatedWait   string       `json:"estimated_wait_minutes,omitempty"`
	StatusItems     []StatusItem `json:"status_items,omitempty"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	Error           string       `json:"error,omitempty"` // transport failure detail
	At              time.Time    `json:"at"`
}
