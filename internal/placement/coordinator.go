package placement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/mcpizza/internal/audit"
	"github.com/dshills/mcpizza/internal/gateway"
	"github.com/dshills/mcpizza/internal/logger"
	"github.com/dshills/mcpizza/internal/order"
	"github.com/dshills/mcpizza/pkg/types"
)

// Phase names used in outcomes and the interaction log
const (
	PhasePrice   = "price"
	PhasePayment = "payment"
	PhaseSubmit  = "submit"
)

// PossibleCauses is reported when submission fails without a provider answer
var PossibleCauses = []string{
	"Invalid payment information",
	"Store not accepting online orders",
	"Invalid items in order",
	"API limitations",
	"CAPTCHA verification required",
}

// Coordinator drives an order through price, payment and submit. It is the
// only caller of the order's phase transitions.
type Coordinator struct {
	gw  gateway.Gateway
	rec *audit.Recorder
	log logger.Logger
}

// New builds a Coordinator. rec and log may be nil.
func New(gw gateway.Gateway, rec *audit.Recorder, log logger.Logger) *Coordinator {
	if log == nil {
		log = logger.NewNoop()
	}
	if rec == nil {
		rec = audit.NewRecorder(nil, log)
	}
	return &Coordinator{gw: gw, rec: rec, log: log.With(logger.String("component", "placement"))}
}

// Price runs the price phase. Draft and Priced orders may be priced.
//
// On rejection the order is Failed and the error is a
// *types.RemoteRejectionError; on transport failure the order is Failed and
// the error wraps types.ErrTransportFailure. The returned result is the one
// stored on the order.
func (c *Coordinator) Price(ctx context.Context, o *order.Order) (*types.PriceResult, error) {
	if err := o.CheckPriceable(); err != nil {
		return nil, err
	}

	// issued phase calls are never abandoned mid-flight
	res, err := c.gw.Price(context.WithoutCancel(ctx), o.Request())
	if res == nil {
		res = &types.PriceResult{At: time.Now().UTC()}
	}
	if err != nil {
		err = classify(err)
		if res.Error == "" && !errors.Is(err, types.ErrRemoteRejection) {
			res.Error = err.Error()
		}
		res.RejectionReason, res.StatusItems = rejectionDetail(err, res.RejectionReason, res.StatusItems)
		res.OK = false
		c.record(ctx, o, o.MarkPriceFailed(res), err)
		return res, err
	}

	res.OK = true
	c.record(ctx, o, o.MarkPriced(res), nil)
	return res, nil
}

// rejectionDetail fills an empty reason and status items from a provider
// rejection so the order keeps them verbatim
func rejectionDetail(err error, reason string, items []types.StatusItem) (string, []types.StatusItem) {
	var rej *types.RemoteRejectionError
	if !errors.As(err, &rej) {
		return reason, items
	}
	if reason == "" {
		reason = rej.Reason
	}
	if len(items) == 0 {
		items = rej.StatusItems
	}
	return reason, items
}

// AttachPayment attaches card data to a Priced order. No network call.
func (c *Coordinator) AttachPayment(ctx context.Context, o *order.Order, p types.Payment) error {
	tr, err := o.AttachPayment(p)
	if err != nil {
		return err
	}
	c.record(ctx, o, tr, nil)
	return nil
}

// Submit runs the submit phase. The order must be Paid with no line change
// since it was priced. The provider is called exactly once.
func (c *Coordinator) Submit(ctx context.Context, o *order.Order) (*types.SubmitResult, error) {
	if err := o.CheckSubmittable(); err != nil {
		return nil, err
	}

	res, err := c.gw.Submit(context.WithoutCancel(ctx), o.Request())
	if res == nil {
		res = &types.SubmitResult{At: time.Now().UTC()}
	}
	if err != nil {
		err = classify(err)
		if res.Error == "" && !errors.Is(err, types.ErrRemoteRejection) {
			res.Error = err.Error()
		}
		res.RejectionReason, res.StatusItems = rejectionDetail(err, res.RejectionReason, res.StatusItems)
		res.OK = false
		c.record(ctx, o, o.MarkSubmitFailed(res), err)
		return res, err
	}

	res.OK = true
	c.record(ctx, o, o.MarkSubmitted(res), nil)
	return res, nil
}

// Place runs price, payment and submit in order, each at most once, and
// stops at the first failure. The order is always re-priced so a stale
// total is never charged. Card fields are checked before any network call.
//
// The Outcome is nil only when a local precondition failed and the order is
// unchanged.
func (c *Coordinator) Place(ctx context.Context, o *order.Order, p types.Payment) (*Outcome, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := o.CheckPriceable(); err != nil {
		return nil, err
	}

	out := &Outcome{OrderID: o.ID()}
	finish := func(err error) (*Outcome, error) {
		out.Status = o.Status()
		if err != nil {
			c.log.Warn("placement halted",
				logger.String("order_id", o.ID()),
				logger.String("status", string(out.Status)),
				logger.Err(err))
		}
		return out, err
	}

	out.step(PhasePrice, true, "Validating and pricing order...")
	price, err := c.Price(ctx, o)
	out.Price = price
	if err != nil {
		out.step(PhasePrice, false, "Pricing failed: "+err.Error())
		out.absorb(err)
		return finish(err)
	}
	out.step(PhasePrice, true, fmt.Sprintf("Order validated - Total: $%s", price.Total.StringFixed(2)))

	out.step(PhasePayment, true, "Adding payment information...")
	if err := c.AttachPayment(ctx, o, p); err != nil {
		out.step(PhasePayment, false, "Payment rejected: "+err.Error())
		return finish(err)
	}
	out.step(PhasePayment, true, "Payment added")

	out.step(PhaseSubmit, true, "Submitting order...")
	sub, err := c.Submit(ctx, o)
	out.Submit = sub
	if err != nil {
		out.step(PhaseSubmit, false, "Submission failed: "+err.Error())
		out.absorb(err)
		return finish(err)
	}
	out.Confirmation = sub.Confirmation
	out.EstimatedWait = sub.EstimatedWait
	out.step(PhaseSubmit, true, "Order placed")
	return finish(nil)
}

// record logs a status transition to the logger and the interaction log
func (c *Coordinator) record(ctx context.Context, o *order.Order, tr order.Transition, cause error) {
	fields := []logger.Field{
		logger.String("order_id", o.ID()),
		logger.String("from", string(tr.From)),
		logger.String("to", string(tr.To)),
		logger.String("reason", tr.Reason),
	}
	if cause != nil {
		fields = append(fields, logger.Err(cause))
	}
	c.log.Info("order transition", fields...)

	session := audit.SessionFrom(ctx)
	c.rec.StateChange(ctx, session, o.ID(), "order_status", string(tr.From), string(tr.To)+": "+tr.Reason)
	if cause != nil {
		c.rec.Error(ctx, session, errorType(cause), cause, map[string]interface{}{"order_id": o.ID()})
	}
}

// classify guarantees a gateway error matches the taxonomy; anything
// unrecognised counts as a transport failure.
func classify(err error) error {
	if errors.Is(err, types.ErrRemoteRejection) || errors.Is(err, types.ErrTransportFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrTransportFailure, err)
}

func errorType(err error) string {
	if errors.Is(err, types.ErrRemoteRejection) {
		return "remote_rejection"
	}
	return "transport_failure"
}
