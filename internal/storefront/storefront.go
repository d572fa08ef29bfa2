package storefront

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dshills/mcpizza/internal/gateway"
	"github.com/dshills/mcpizza/internal/logger"
	"github.com/dshills/mcpizza/pkg/types"
)

// DefaultPerCategory caps items listed per menu category
const DefaultPerCategory = 10

// UnpricedCouponPrice sorts deals without a listed price after every priced one
var UnpricedCouponPrice = decimal.RequireFromString("999.99")

// Service answers read-only store and menu questions. It never touches an order.
type Service struct {
	gw  gateway.Gateway
	log logger.Logger
}

// New builds a Service over gw
func New(gw gateway.Gateway, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Service{gw: gw, log: log.With(logger.String("component", "storefront"))}
}

// FindStores returns up to gateway.MaxStores stores near query
func (s *Service) FindStores(ctx context.Context, query string, orderType types.OrderType) ([]gateway.StoreSummary, error) {
	stores, err := s.gw.FindStores(ctx, query, orderType)
	if err != nil {
		return nil, err
	}
	if len(stores) > gateway.MaxStores {
		stores = stores[:gateway.MaxStores]
	}
	return stores, nil
}

// StoreInfo returns a store profile
func (s *Service) StoreInfo(ctx context.Context, storeID string) (*gateway.StoreDetail, error) {
	return s.gw.StoreDetail(ctx, storeID)
}

// MenuItem is one product as shown to the assistant
type MenuItem struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
}

// Category groups menu items by product type
type Category struct {
	Name  string     `json:"name"`
	Total int        `json:"total"`
	Items []MenuItem `json:"items"`
}

// MenuView is a store menu grouped by category
type MenuView struct {
	StoreID    string     `json:"store_id"`
	Categories []Category `json:"categories"`
}

// Menu groups the store's products by category, sorted by category name.
// At most perCategory items are listed per category; <= 0 means the default.
func (s *Service) Menu(ctx context.Context, storeID string, perCategory int) (*MenuView, error) {
	if perCategory <= 0 {
		perCategory = DefaultPerCategory
	}
	m, err := s.gw.Menu(ctx, storeID)
	if err != nil {
		return nil, err
	}

	byCat := map[string][]MenuItem{}
	for _, p := range m.Products {
		byCat[p.ProductType] = append(byCat[p.ProductType], toItem(p, false))
	}

	view := &MenuView{StoreID: m.StoreID, Categories: make([]Category, 0, len(byCat))}
	for name, items := range byCat {
		c := Category{Name: name, Total: len(items), Items: items}
		if len(c.Items) > perCategory {
			c.Items = c.Items[:perCategory]
		}
		view.Categories = append(view.Categories, c)
	}
	sort.Slice(view.Categories, func(i, j int) bool { return view.Categories[i].Name < view.Categories[j].Name })
	return view, nil
}

// SearchMenu matches query against product names and descriptions and
// category against the product type, both case-insensitively. Empty filters
// match everything.
func (s *Service) SearchMenu(ctx context.Context, storeID, query, category string) ([]MenuItem, error) {
	m, err := s.gw.Menu(ctx, storeID)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	category = strings.TrimSpace(category)

	results := []MenuItem{}
	for _, p := range m.Products {
		if category != "" && !strings.EqualFold(p.ProductType, category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		results = append(results, toItem(p, true))
	}
	return results, nil
}

// CouponView is one deal as shown to the assistant
type CouponView struct {
	Code        string                 `json:"code"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Price       decimal.Decimal        `json:"price"`
	Priced      bool                   `json:"priced"`
	Tags        map[string]interface{} `json:"tags,omitempty"`
}

// Coupons lists the store's deals cheapest first. Unpriced deals carry
// UnpricedCouponPrice and sort last; ties keep code order.
func (s *Service) Coupons(ctx context.Context, storeID string) ([]CouponView, error) {
	m, err := s.gw.Menu(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return sortedCoupons(m.Coupons), nil
}

func sortedCoupons(coupons []gateway.Coupon) []CouponView {
	out := make([]CouponView, 0, len(coupons))
	for _, c := range coupons {
		price := c.Price
		if !c.Priced {
			price = UnpricedCouponPrice
		}
		out = append(out, CouponView{
			Code:        c.Code,
			Name:        c.Name,
			Description: c.Description,
			Price:       price,
			Priced:      c.Priced,
			Tags:        c.Tags,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Price.Equal(out[j].Price) {
			return out[i].Price.LessThan(out[j].Price)
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func toItem(p gateway.MenuProduct, withCategory bool) MenuItem {
	price := p.Price
	if price == "" {
		price = "N/A"
	}
	item := MenuItem{Code: p.Code, Name: p.Name, Description: p.Description, Price: price}
	if withCategory {
		item.Category = p.ProductType
	}
	return item
}
