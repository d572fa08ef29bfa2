package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/mcpizza/pkg/types"
)

// Order is one in-progress order. It owns all mutation of its sale lines and
// status. An Order is not safe for concurrent use; the session registry
// serializes access per session.
type Order struct {
	id        string
	storeID   string
	orderType types.OrderType
	customer  types.Customer
	address   types.Address
	createdAt time.Time

	discountLines []types.SaleLine
	productLines  []types.SaleLine

	status     types.Status
	payment    *types.Payment
	lastPrice  *types.PriceResult
	lastSubmit *types.SubmitResult

	// revision increments on every line mutation; pricedRevision is the
	// revision the current price result was computed for
	revision       int
	pricedRevision int
}

// New validates the order context and returns a Draft order
func New(storeID string, orderType types.OrderType, customer types.Customer, address types.Address) (*Order, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return nil, types.InvalidField("store_id", "is required")
	}
	if orderType != types.OrderCarryout && orderType != types.OrderDelivery {
		return nil, types.InvalidField("order_type", "must be Delivery or Carryout")
	}
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}

	return &Order{
		id:             uuid.NewString(),
		storeID:        storeID,
		orderType:      orderType,
		customer:       customer,
		address:        address,
		createdAt:      time.Now().UTC(),
		discountLines:  []types.SaleLine{},
		productLines:   []types.SaleLine{},
		status:         types.StatusDraft,
		pricedRevision: -1,
	}, nil
}

// ID returns the local order identifier
func (o *Order) ID() string { return o.id }

// StoreID returns the fulfillment store
func (o *Order) StoreID() string { return o.storeID }

// Status returns the lifecycle status
func (o *Order) Status() types.Status { return o.status }

// Revision returns the line-mutation counter
func (o *Order) Revision() int { return o.revision }

// LineCount returns the number of lines across both channels
func (o *Order) LineCount() int { return len(o.discountLines) + len(o.productLines) }

// AddDiscountLine appends a coupon or deal code.
// A priced or paid order drops back to Draft: its price is stale.
func (o *Order) AddDiscountLine(line types.SaleLine) (Transition, error) {
	return o.addLine(types.ChannelDiscount, line)
}

// AddProductLine appends a priced product, normally one produced by
// catalog.Classify. Same staleness rules as AddDiscountLine.
func (o *Order) AddProductLine(line types.SaleLine) (Transition, error) {
	return o.addLine(types.ChannelProduct, line)
}

// AddSimpleLine appends an undifferentiated item code to the DISCOUNT channel
// whatever the code denotes. Callers adding a real priced product must
// classify it and use AddProductLine; the two paths are not interchangeable.
func (o *Order) AddSimpleLine(code string, quantity int, options map[string]map[string]string) (Transition, error) {
	if quantity == 0 {
		quantity = 1
	}
	return o.addLine(types.ChannelDiscount, types.SaleLine{
		Code:     strings.TrimSpace(code),
		Quantity: quantity,
		Options:  options,
	})
}

func (o *Order) addLine(ch types.Channel, line types.SaleLine) (Transition, error) {
	if o.status == types.StatusSubmitted {
		return Transition{}, ErrClosed(o.id)
	}
	if err := line.Validate(); err != nil {
		return Transition{}, err
	}

	line = line.Clone()
	switch ch {
	case types.ChannelDiscount:
		o.discountLines = append(o.discountLines, line)
	case types.ChannelProduct:
		o.productLines = append(o.productLines, line)
	}
	o.revision++

	from := o.status
	if from != types.StatusDraft {
		o.invalidate()
	}
	return Transition{From: from, To: o.status, Reason: fmt.Sprintf("%s line %s added", ch, line.Code)}, nil
}

// invalidate drops back to Draft; price and payment are no longer trusted
func (o *Order) invalidate() {
	o.status = types.StatusDraft
	o.payment = nil
	o.pricedRevision = -1
}

// Reopen returns a Failed order to Draft so it can be re-priced
func (o *Order) Reopen() (Transition, error) {
	if o.status != types.StatusFailed {
		return Transition{}, fmt.Errorf("%w: status is %s", types.ErrNotFailed, o.status)
	}
	o.invalidate()
	return Transition{From: types.StatusFailed, To: types.StatusDraft, Reason: "reopened"}, nil
}

// Request builds the plain data handed to the gateway. Lines are copied so
// the gateway never shares state with the aggregate.
func (o *Order) Request() types.OrderRequest {
	req := types.OrderRequest{
		OrderID:       o.id,
		StoreID:       o.storeID,
		OrderType:     o.orderType,
		Customer:      o.customer,
		Address:       o.address,
		DiscountLines: types.CloneLines(o.discountLines),
		ProductLines:  types.CloneLines(o.productLines),
	}
	if o.payment != nil {
		p := *o.payment
		req.Payment = &p
	}
	return req
}

// ErrClosed reports a mutation attempted on a submitted order
func ErrClosed(id string) error {
	return fmt.Errorf("%w: order %s", types.ErrOrderClosed, id)
}
