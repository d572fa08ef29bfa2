package gateway

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dshills/mcpizza/pkg/types"
)

// Gateway is the external commerce system: store lookups, menus, and the two
// order phases that cross the network.
//
// Price and Submit always return a non-nil result describing the attempt.
// The error is nil on acceptance, a *types.RemoteRejectionError when the
// provider declined, or wraps types.ErrTransportFailure when no usable answer
// came back.
type Gateway interface {
	FindStores(ctx context.Context, query string, serviceMethod types.OrderType) ([]StoreSummary, error)
	StoreDetail(ctx context.Context, storeID string) (*StoreDetail, error)
	Menu(ctx context.Context, storeID string) (*MenuSnapshot, error)
	Price(ctx context.Context, req types.OrderRequest) (*types.PriceResult, error)
	Submit(ctx context.Context, req types.OrderRequest) (*types.SubmitResult, error)
}

// StoreSummary is one store-locator hit
type StoreSummary struct {
	ID              string  `json:"id"`
	Address         string  `json:"address"`
	Phone           string  `json:"phone"`
	IsOpen          bool    `json:"is_open"`
	IsDeliveryStore bool    `json:"is_delivery_store"`
	Distance        float64 `json:"distance_miles,omitempty"`
}

// StoreDetail is a store profile
type StoreDetail struct {
	ID              string            `json:"id"`
	Address         string            `json:"address"`
	Phone           string            `json:"phone"`
	Hours           string            `json:"hours"`
	IsOpen          bool              `json:"is_open"`
	IsDeliveryStore bool              `json:"is_delivery_store"`
	ServiceHours    map[string]string `json:"service_hours_description,omitempty"`
}

// MenuSnapshot is a store's menu at fetch time. Snapshots may be shared
// through the menu cache and must be treated as read-only.
type MenuSnapshot struct {
	StoreID   string        `json:"store_id"`
	Products  []MenuProduct `json:"products"`
	Coupons   []Coupon      `json:"coupons"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// MenuProduct is one orderable product family
type MenuProduct struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ProductType string `json:"category"`
	Price       string `json:"price,omitempty"`
}

// Coupon is one deal. Priced is false when the provider lists no price.
type Coupon struct {
	Code        string                 `json:"code"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Price       decimal.Decimal        `json:"price"`
	Priced      bool                   `json:"priced"`
	Tags        map[string]interface{} `json:"tags,omitempty"`
}
