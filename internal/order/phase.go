package order

import (
	"fmt"

	"github.com/dshills/mcpizza/pkg/types"
)

// Transition records one status change for the interaction log
type Transition struct {
	From   types.Status
	To     types.Status
	Reason string
}

// Changed reports whether the status moved
func (t Transition) Changed() bool { return t.From != t.To }

// The methods below are the phase transitions. They are driven by the
// placement coordinator; each checks its own precondition and never touches
// the network.

// CheckPriceable reports whether a price phase may start
func (o *Order) CheckPriceable() error {
	switch o.status {
	case types.StatusSubmitted:
		return ErrClosed(o.id)
	case types.StatusFailed:
		return fmt.Errorf("%w: order %s", types.ErrReopenRequired, o.id)
	case types.StatusPaid:
		return fmt.Errorf("%w: order %s", types.ErrAlreadyPaid, o.id)
	}
	if o.LineCount() == 0 {
		return types.InvalidField("order", "has no lines to price")
	}
	return nil
}

// MarkPriced stores a successful price result and moves to Priced
func (o *Order) MarkPriced(res *types.PriceResult) Transition {
	from := o.status
	o.lastPrice = res
	o.payment = nil
	o.status = types.StatusPriced
	o.pricedRevision = o.revision
	return Transition{From: from, To: o.status, Reason: "price confirmed " + res.Total.StringFixed(2)}
}

// MarkPriceFailed stores a failed price result and moves to Failed
func (o *Order) MarkPriceFailed(res *types.PriceResult) Transition {
	from := o.status
	o.lastPrice = res
	o.payment = nil
	o.status = types.StatusFailed
	o.pricedRevision = -1
	return Transition{From: from, To: o.status, Reason: "price phase failed: " + failureDetail(res.RejectionReason, res.Error)}
}

// AttachPayment attaches card data to a freshly priced order. It fails with
// ErrNotPriced unless the order is Priced for its current lines, and leaves
// the order untouched on any error.
func (o *Order) AttachPayment(p types.Payment) (Transition, error) {
	if o.status != types.StatusPriced || o.pricedRevision != o.revision || o.lastPrice == nil {
		return Transition{}, fmt.Errorf("%w: status is %s", types.ErrNotPriced, o.status)
	}
	if err := p.Validate(); err != nil {
		return Transition{}, err
	}

	p.CardNumber = p.DigitsOnly()
	if p.CardType == "" {
		p.CardType = types.DetectCardType(p.CardNumber)
	}
	p.Amount = o.lastPrice.Total
	o.payment = &p

	from := o.status
	o.status = types.StatusPaid
	return Transition{From: from, To: o.status, Reason: "payment attached " + p.Masked()}, nil
}

// CheckSubmittable reports whether the submit phase may start: the order
// must be Paid with no line mutation since it was priced.
func (o *Order) CheckSubmittable() error {
	if o.status != types.StatusPaid || o.pricedRevision != o.revision || o.payment == nil {
		return fmt.Errorf("%w: status is %s", types.ErrNotPriced, o.status)
	}
	return nil
}

// MarkSubmitted stores the provider's confirmation and moves to Submitted
func (o *Order) MarkSubmitted(res *types.SubmitResult) Transition {
	from := o.status
	o.lastSubmit = res
	o.status = types.StatusSubmitted
	return Transition{From: from, To: o.status, Reason: "submitted " + res.Confirmation}
}

// MarkSubmitFailed stores a failed submit result and moves to Failed
func (o *Order) MarkSubmitFailed(res *types.SubmitResult) Transition {
	from := o.status
	o.lastSubmit = res
	o.status = types.StatusFailed
	return Transition{From: from, To: o.status, Reason: "submit phase failed: " + failureDetail(res.RejectionReason, res.Error)}
}

func failureDetail(reason, transportErr string) string {
	if reason != "" {
		return reason
	}
	return transportErr
}
