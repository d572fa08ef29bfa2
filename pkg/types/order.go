package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OrderType is the provider's service method
type OrderType string

const (
	OrderCarryout OrderType = "Carryout"
	OrderDelivery OrderType = "Delivery"
)

// ParseOrderType accepts "carryout" / "delivery" in any case
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "carryout":
		return OrderCarryout, nil
	case "delivery":
		return OrderDelivery, nil
	default:
		return "", InvalidField("order_type", "must be Delivery or Carryout")
	}
}

// Status is the lifecycle state of an order
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusPriced    Status = "Priced"
	StatusPaid      Status = "Paid"
	StatusSubmitted Status = "Submitted"
	StatusFailed    Status = "Failed"
)

// Customer identifies who the order is for
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// FirstLast splits Name on the first space
func (c Customer) FirstLast() (first, last string) {
	first, last, _ = strings.Cut(strings.TrimSpace(c.Name), " ")
	return first, strings.TrimSpace(last)
}

// Validate requires every field to be non-blank
func (c *Customer) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return InvalidField("customer_name", "is required")
	case strings.TrimSpace(c.Email) == "":
		return InvalidField("customer_email", "is required")
	case strings.TrimSpace(c.Phone) == "":
		return InvalidField("customer_phone", "is required")
	}
	return nil
}

// Address is the delivery address. The provider requires it for carryout too.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
}

// Validate requires every field to be non-blank
func (a *Address) Validate() error {
	switch {
	case strings.TrimSpace(a.Street) == "":
		return InvalidField("delivery_address", "is required")
	case strings.TrimSpace(a.City) == "":
		return InvalidField("delivery_city", "is required")
	case strings.TrimSpace(a.Region) == "":
		return InvalidField("delivery_state", "is required")
	case strings.TrimSpace(a.PostalCode) == "":
		return InvalidField("delivery_zip", "is required")
	}
	return nil
}

// Card types understood by the provider
const (
	CardAmex       = "AMEX"
	CardVisa       = "VISA"
	CardMastercard = "MASTERCARD"
	CardDiscover   = "DISCOVER"
)

// Payment is the card attached to an order before submission
type Payment struct {
	CardNumber   string
	Expiration   string // MM/YY
	SecurityCode string
	PostalCode   string
	CardType     string
	Amount       decimal.Decimal
}

// Validate checks the card fields are present and numeric where required
func (p *Payment) Validate() error {
	number := p.DigitsOnly()
	switch {
	case len(number) < 12 || len(number) > 19:
		return InvalidField("card_number", "must have 12-19 digits")
	case strings.TrimSpace(p.Expiration) == "":
		return InvalidField("card_expiry", "is required")
	case !isDigits(p.SecurityCode) || len(p.SecurityCode) < 3 || len(p.SecurityCode) > 4:
		return InvalidField("card_cvv", "must be 3 or 4 digits")
	case strings.TrimSpace(p.PostalCode) == "":
		return InvalidField("card_zip", "is required")
	}
	return nil
}

// DigitsOnly returns the card number without spaces or dashes, or "" when it
// contains anything else.
func (p *Payment) DigitsOnly() string {
	n := strings.NewReplacer(" ", "", "-", "").Replace(p.CardNumber)
	if !isDigits(n) {
		return ""
	}
	return n
}

// Masked returns the card number with all but the last four digits hidden
func (p *Payment) Masked() string {
	n := p.DigitsOnly()
	if len(n) <= 4 {
		return strings.Repeat("*", len(n))
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}

// DetectCardType infers the card network from the leading digit
func DetectCardType(number string) string {
	switch {
	case strings.HasPrefix(number, "3"):
		return CardAmex
	case strings.HasPrefix(number, "5"):
		return CardMastercard
	case strings.HasPrefix(number, "6"):
		return CardDiscover
	default:
		return CardVisa
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// OrderRequest is the plain data handed to the commerce gateway for the
// price and submit phases. It is rebuilt from the aggregate on every call.
type OrderRequest struct {
	OrderID       string
	StoreID       string
	OrderType     OrderType
	Customer      Customer
	Address       Address
	DiscountLines []SaleLine
	ProductLines  []SaleLine
	Payment       *Payment // nil during pricing
}
