package gateway

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dshills/mcpizza/pkg/types"
)

// Provider wire format. Field names follow the provider's JSON exactly.

type wireEnvelope struct {
	Order wireOrder `json:"Order"`
}

type wireOrder struct {
	Address               wireAddress            `json:"Address"`
	Coupons               []wireCoupon           `json:"Coupons"`
	CustomerID            string                 `json:"CustomerID"`
	Email                 string                 `json:"Email"`
	Extension             string                 `json:"Extension"`
	FirstName             string                 `json:"FirstName"`
	LastName              string                 `json:"LastName"`
	LanguageCode          string                 `json:"LanguageCode"`
	OrderChannel          string                 `json:"OrderChannel"`
	OrderID               string                 `json:"OrderID"`
	OrderMethod           string                 `json:"OrderMethod"`
	Payments              []wirePayment          `json:"Payments"`
	Phone                 string                 `json:"Phone"`
	Products              []wireProduct          `json:"Products"`
	ServiceMethod         string                 `json:"ServiceMethod"`
	SourceOrganizationURI string                 `json:"SourceOrganizationURI"`
	StoreID               string                 `json:"StoreID"`
	Tags                  map[string]interface{} `json:"Tags"`
	Version               string                 `json:"Version"`
	NoCombine             bool                   `json:"NoCombine"`
	Partners              map[string]interface{} `json:"Partners"`
}

type wireAddress struct {
	Street     string `json:"Street"`
	City       string `json:"City"`
	Region     string `json:"Region"`
	PostalCode string `json:"PostalCode"`
	Type       string `json:"Type"`
}

type wireCoupon struct {
	Code string `json:"Code"`
	Qty  int    `json:"Qty"`
	ID   int    `json:"ID"`
}

type wireProduct struct {
	Code    string                       `json:"Code"`
	Qty     int                          `json:"Qty"`
	ID      int                          `json:"ID"`
	IsNew   bool                         `json:"isNew"`
	Options map[string]map[string]string `json:"Options"`
}

type wirePayment struct {
	Type         string      `json:"Type"`
	Number       string      `json:"Number"`
	Expiration   string      `json:"Expiration"`
	Amount       json.Number `json:"Amount"`
	CardType     string      `json:"CardType"`
	SecurityCode string      `json:"SecurityCode"`
	PostalCode   string      `json:"PostalCode"`
}

// toWire builds the provider order body. Product lines travel under their
// base code; toppings ride in Options.
func toWire(req types.OrderRequest) wireEnvelope {
	first, last := req.Customer.FirstLast()
	o := wireOrder{
		Address: wireAddress{
			Street:     req.Address.Street,
			City:       req.Address.City,
			Region:     req.Address.Region,
			PostalCode: req.Address.PostalCode,
			Type:       "House",
		},
		Coupons:               make([]wireCoupon, 0, len(req.DiscountLines)),
		Email:                 req.Customer.Email,
		FirstName:             first,
		LastName:              last,
		LanguageCode:          "en",
		OrderChannel:          "OLO",
		OrderMethod:           "Web",
		Payments:              []wirePayment{},
		Phone:                 req.Customer.Phone,
		Products:              make([]wireProduct, 0, len(req.ProductLines)),
		ServiceMethod:         string(req.OrderType),
		SourceOrganizationURI: "order.dominos.com",
		StoreID:               req.StoreID,
		Tags:                  map[string]interface{}{},
		Version:               "1.0",
		NoCombine:             true,
		Partners:              map[string]interface{}{},
	}

	for i, line := range req.DiscountLines {
		o.Coupons = append(o.Coupons, wireCoupon{Code: line.Code, Qty: line.Quantity, ID: i + 1})
	}
	for i, line := range req.ProductLines {
		opts := line.Clone().Options
		if opts == nil {
			opts = map[string]map[string]string{}
		}
		o.Products = append(o.Products, wireProduct{
			Code:    line.BaseCode(),
			Qty:     line.Quantity,
			ID:      i + 1,
			IsNew:   true,
			Options: opts,
		})
	}

	if p := req.Payment; p != nil {
		o.Payments = append(o.Payments, wirePayment{
			Type:         "CreditCard",
			Number:       p.DigitsOnly(),
			Expiration:   strings.ReplaceAll(p.Expiration, "/", ""),
			Amount:       json.Number(p.Amount.StringFixed(2)),
			CardType:     p.CardType,
			SecurityCode: p.SecurityCode,
			PostalCode:   p.PostalCode,
		})
	}

	return wireEnvelope{Order: o}
}

// wireResponse covers both price-order and place-order replies
type wireResponse struct {
	Status      int              `json:"Status"`
	StatusItems []wireStatusItem `json:"StatusItems"`
	Order       struct {
		OrderID              string                     `json:"OrderID"`
		Amounts              map[string]json.RawMessage `json:"Amounts"`
		EstimatedWaitMinutes json.RawMessage            `json:"EstimatedWaitMinutes"`
		StatusItems          []wireStatusItem           `json:"StatusItems"`
		Products             []wireLineStatus           `json:"Products"`
		Coupons              []wireLineStatus           `json:"Coupons"`
	} `json:"Order"`
}

type wireStatusItem struct {
	Code      string `json:"Code"`
	PulseCode int    `json:"PulseCode,omitempty"`
	PulseText string `json:"PulseText,omitempty"`
	Message   string `json:"Message,omitempty"`
}

type wireLineStatus struct {
	Code   string          `json:"Code"`
	Status int             `json:"Status"`
	Amount json.RawMessage `json:"Amount"`
}

// rejected reports a structured decline
func (r *wireResponse) rejected() bool { return r.Status == -1 }

// statusItems merges top-level and order-level items in provider order
func (r *wireResponse) statusItems() []types.StatusItem {
	items := make([]types.StatusItem, 0, len(r.StatusItems)+len(r.Order.StatusItems))
	for _, src := range [][]wireStatusItem{r.StatusItems, r.Order.StatusItems} {
		for _, it := range src {
			msg := it.PulseText
			if msg == "" {
				msg = it.Message
			}
			items = append(items, types.StatusItem{Code: it.Code, Message: msg})
		}
	}
	return items
}

func (r *wireResponse) amounts() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(r.Order.Amounts))
	for k, raw := range r.Order.Amounts {
		if d, ok := parseAmount(raw); ok {
			out[k] = d
		}
	}
	return out
}

func (r *wireResponse) adjustments() []types.LineAdjustment {
	var adj []types.LineAdjustment
	for _, c := range r.Order.Coupons {
		a, _ := parseAmount(c.Amount)
		adj = append(adj, types.LineAdjustment{Channel: types.ChannelDiscount, Code: c.Code, Amount: a, Status: c.Status})
	}
	for _, p := range r.Order.Products {
		a, _ := parseAmount(p.Amount)
		adj = append(adj, types.LineAdjustment{Channel: types.ChannelProduct, Code: p.Code, Amount: a, Status: p.Status})
	}
	return adj
}

// parseAmount accepts a JSON number or a numeric string
func parseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero, false
	}
	s = strings.Trim(s, `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// rawText renders a JSON scalar (string or number) as plain text
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
