package types

import "strings"

// ProductCodeSeparator separates the provider product code from the topping
// tokens in a synthesized product code (e.g. "P12IPAZA+P+S").
const ProductCodeSeparator = "+"

// Channel identifies which sale-line collection an entry belongs to
type Channel string

const (
	ChannelDiscount Channel = "discount"
	ChannelProduct  Channel = "product"
)

// SaleLine is one coupon or product entry on an order.
// Options maps an option code to its placement, e.g. {"P": {"1/1": "1"}}.
type SaleLine struct {
	Code     string                       `json:"code"`
	Quantity int                          `json:"quantity"`
	Options  map[string]map[string]string `json:"options,omitempty"`
}

// Validate checks the sale-line invariants
func (l *SaleLine) Validate() error {
	if strings.TrimSpace(l.Code) == "" {
		return InvalidField("code", "cannot be empty")
	}
	if l.Quantity < 1 {
		return InvalidField("quantity", "must be >= 1")
	}
	return nil
}

// BaseCode returns the provider's product code, dropping any synthesized
// topping suffix.
func (l SaleLine) BaseCode() string {
	base, _, _ := strings.Cut(l.Code, ProductCodeSeparator)
	return base
}

// Clone returns a deep copy of the line
func (l SaleLine) Clone() SaleLine {
	out := SaleLine{Code: l.Code, Quantity: l.Quantity}
	if l.Options != nil {
		out.Options = make(map[string]map[string]string, len(l.Options))
		for k, placement := range l.Options {
			cp := make(map[string]string, len(placement))
			for side, amount := range placement {
				cp[side] = amount
			}
			out.Options[k] = cp
		}
	}
	return out
}

// CloneLines deep-copies a slice of sale lines
func CloneLines(lines []SaleLine) []SaleLine {
	out := make([]SaleLine, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
	}
	return out
}
