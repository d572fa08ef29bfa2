// Package gatewaytest provides an in-memory gateway.Gateway for tests.
package gatewaytest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dshills/mcpizza/internal/gateway"
	"github.com/dshills/mcpizza/pkg/types"
)

// Fake answers from canned data. Zero-value hooks fall back to a successful
// answer; set PriceFunc or SubmitFunc to script failures.
type Fake struct {
	mu sync.Mutex

	Stores  []gateway.StoreSummary
	Details map[string]*gateway.StoreDetail
	Menus   map[string]*gateway.MenuSnapshot

	// Total is the customer total returned by the default Price
	Total decimal.Decimal
	// Confirmation is the order id returned by the default Submit
	Confirmation string

	PriceFunc  func(req types.OrderRequest) (*types.PriceResult, error)
	SubmitFunc func(req types.OrderRequest) (*types.SubmitResult, error)

	PriceCalls  []types.OrderRequest
	SubmitCalls []types.OrderRequest
	LookupCalls int
}

var _ gateway.Gateway = (*Fake)(nil)

// New returns a Fake that prices every order at total
func New(total string) *Fake {
	return &Fake{
		Details:      map[string]*gateway.StoreDetail{},
		Menus:        map[string]*gateway.MenuSnapshot{},
		Total:        decimal.RequireFromString(total),
		Confirmation: "CONF-1",
	}
}

// Reject returns a scripted rejection for phase with the given status codes
func Reject(phase string, codes ...string) error {
	items := make([]types.StatusItem, 0, len(codes))
	for _, c := range codes {
		items = append(items, types.StatusItem{Code: c})
	}
	return &types.RemoteRejectionError{Phase: phase, Reason: types.RejectionReason(items), StatusItems: items}
}

// Unreachable is a scripted transport failure
func Unreachable() error {
	return fmt.Errorf("%w: dial tcp: connection refused", types.ErrTransportFailure)
}

func (f *Fake) FindStores(_ context.Context, query string, _ types.OrderType) ([]gateway.StoreSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LookupCalls++
	if query == "" {
		return nil, types.InvalidField("query", "is required")
	}
	return append([]gateway.StoreSummary(nil), f.Stores...), nil
}

func (f *Fake) StoreDetail(_ context.Context, storeID string) (*gateway.StoreDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LookupCalls++
	d, ok := f.Details[storeID]
	if !ok {
		return nil, fmt.Errorf("%w: http 404", types.ErrTransportFailure)
	}
	return d, nil
}

func (f *Fake) Menu(_ context.Context, storeID string) (*gateway.MenuSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LookupCalls++
	m, ok := f.Menus[storeID]
	if !ok {
		return nil, fmt.Errorf("%w: http 404", types.ErrTransportFailure)
	}
	return m, nil
}

func (f *Fake) Price(_ context.Context, req types.OrderRequest) (*types.PriceResult, error) {
	f.mu.Lock()
	f.PriceCalls = append(f.PriceCalls, req)
	hook := f.PriceFunc
	total := f.Total
	f.mu.Unlock()

	if hook != nil {
		return hook(req)
	}
	return &types.PriceResult{
		OK:      true,
		Status:  1,
		Total:   total,
		Amounts: map[string]decimal.Decimal{"Customer": total},
		At:      time.Now().UTC(),
	}, nil
}

func (f *Fake) Submit(_ context.Context, req types.OrderRequest) (*types.SubmitResult, error) {
	f.mu.Lock()
	f.SubmitCalls = append(f.SubmitCalls, req)
	hook := f.SubmitFunc
	conf := f.Confirmation
	f.mu.Unlock()

	if hook != nil {
		return hook(req)
	}
	return &types.SubmitResult{OK: true, Status: 1, Confirmation: conf, EstimatedWait: "20-30", At: time.Now().UTC()}, nil
}

// Calls returns the number of price and submit calls so far
func (f *Fake) Calls() (price, submit int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.PriceCalls), len(f.SubmitCalls)
}
