package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dshills/mcpizza/pkg/types"
)

// Snapshot is a read-only copy of an order for display
type Snapshot struct {
	ID            string              `json:"id"`
	StoreID       string              `json:"store_id"`
	OrderType     types.OrderType     `json:"order_type"`
	Status        types.Status        `json:"status"`
	Customer      types.Customer      `json:"customer"`
	Address       types.Address       `json:"address"`
	DiscountLines []types.SaleLine    `json:"discount_lines"`
	ProductLines  []types.SaleLine    `json:"product_lines"`
	Payment       *PaymentView        `json:"payment,omitempty"`
	LastPrice     *types.PriceResult  `json:"last_price_result,omitempty"`
	LastSubmit    *types.SubmitResult `json:"last_submit_result,omitempty"`
	PriceIsStale  bool                `json:"price_is_stale"`
	Revision      int                 `json:"revision"`
	CreatedAt     time.Time           `json:"created_at"`
}

// PaymentView exposes attached card data with the number masked
type PaymentView struct {
	CardType   string `json:"card_type"`
	CardNumber string `json:"card_number"`
	Expiration string `json:"expiration"`
	PostalCode string `json:"postal_code"`
	Amount     string `json:"amount"`
}

// Snapshot returns a deep copy of the order. It never changes the order.
func (o *Order) Snapshot() Snapshot {
	s := Snapshot{
		ID:            o.id,
		StoreID:       o.storeID,
		OrderType:     o.orderType,
		Status:        o.status,
		Customer:      o.customer,
		Address:       o.address,
		DiscountLines: types.CloneLines(o.discountLines),
		ProductLines:  types.CloneLines(o.productLines),
		PriceIsStale:  o.lastPrice != nil && o.pricedRevision != o.revision,
		Revision:      o.revision,
		CreatedAt:     o.createdAt,
	}
	if o.payment != nil {
		s.Payment = &PaymentView{
			CardType:   o.payment.CardType,
			CardNumber: o.payment.Masked(),
			Expiration: o.payment.Expiration,
			PostalCode: o.payment.PostalCode,
			Amount:     o.payment.Amount.StringFixed(2),
		}
	}
	if o.lastPrice != nil {
		s.LastPrice = clonePrice(o.lastPrice)
	}
	if o.lastSubmit != nil {
		s.LastSubmit = cloneSubmit(o.lastSubmit)
	}
	return s
}

func clonePrice(p *types.PriceResult) *types.PriceResult {
	cp := *p
	if p.Amounts != nil {
		cp.Amounts = make(map[string]decimal.Decimal, len(p.Amounts))
		for k, v := range p.Amounts {
			cp.Amounts[k] = v
		}
	}
	cp.Adjustments = append([]types.LineAdjustment(nil), p.Adjustments...)
	cp.StatusItems = append([]types.StatusItem(nil), p.StatusItems...)
	return &cp
}

func cloneSubmit(r *types.SubmitResult) *types.SubmitResult {
	cp := *r
	cp.StatusItems = append([]types.StatusItem(nil), r.StatusItems...)
	return &cp
}
