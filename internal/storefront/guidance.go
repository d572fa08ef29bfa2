package storefront

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/mcpizza/internal/catalog"
	"github.com/dshills/mcpizza/internal/gateway"
	"github.com/dshills/mcpizza/internal/logger"
)

// Strategy types
const (
	StrategyMultiPizza  = "multi_pizza"
	StrategySinglePizza = "single_pizza"
	StrategyPercentage  = "percentage"
)

const dealsPerStrategy = 3

// Deal is one recommended coupon
type Deal struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Size  string `json:"size,omitempty"`
	Price string `json:"price,omitempty"`
}

// Strategy is a group of comparable deals
type Strategy struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Deals []Deal `json:"deals"`
}

// Guidance is advice for building an order from a free-text request
type Guidance struct {
	StoreID         string         `json:"store_id"`
	UserRequest     string         `json:"user_request"`
	StoreOpen       *bool          `json:"store_open,omitempty"`
	Strategies      []Strategy     `json:"strategies"`
	RecommendedCode string         `json:"recommended_code,omitempty"`
	TotalCoupons    int            `json:"total_coupons_available"`
	Vocabulary      map[string]any `json:"vocabulary"`
	Instructions    []string       `json:"instructions"`
}

type pizzaDeal struct {
	size string
	CouponView
}

// Guidance categorises the store's deals and recommends a coupon for the
// request. The store profile and menu are fetched concurrently; a missing
// profile only leaves StoreOpen unset.
func (s *Service) Guidance(ctx context.Context, storeID, request string) (*Guidance, error) {
	var (
		detail *gateway.StoreDetail
		menu   *gateway.MenuSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.gw.StoreDetail(gctx, storeID)
		if err != nil {
			s.log.Warn("store profile unavailable for guidance", logger.String("store_id", storeID), logger.Err(err))
			return nil
		}
		detail = d
		return nil
	})
	g.Go(func() error {
		m, err := s.gw.Menu(gctx, storeID)
		if err != nil {
			return err
		}
		menu = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	coupons := sortedCoupons(menu.Coupons)
	out := &Guidance{
		StoreID:      storeID,
		UserRequest:  request,
		TotalCoupons: len(coupons),
		Vocabulary: map[string]any{
			"sizes":    catalog.Sizes(),
			"crusts":   catalog.Crusts(),
			"toppings": catalog.Toppings(),
		},
		Instructions: []string{
			"Add deal codes with add_coupon; they go to the discount lines.",
			"Add pizzas with add_pizza_with_toppings using size, crust and topping codes from vocabulary; they go to the product lines.",
			"add_item_to_order always files the code as a discount line.",
			"Call price_order to confirm the total before asking for payment.",
		},
	}
	if detail != nil {
		open := detail.IsOpen
		out.StoreOpen = &open
	}

	var multi, single []pizzaDeal
	var percent []CouponView
	for _, c := range coupons {
		name := strings.ToLower(c.Name)
		switch {
		case strings.Contains(name, "2 or more") || strings.Contains(name, "two or more"):
			multi = append(multi, pizzaDeal{CouponView: c})
		case strings.Contains(name, "medium") && c.Priced && strings.Contains(name, "pizza"):
			single = append(single, pizzaDeal{size: "medium", CouponView: c})
		case strings.Contains(name, "large") && c.Priced && strings.Contains(name, "pizza"):
			single = append(single, pizzaDeal{size: "large", CouponView: c})
		case strings.Contains(name, "%") || strings.Contains(name, "percent"):
			percent = append(percent, c)
		}
	}

	if len(multi) > 0 {
		out.Strategies = append(out.Strategies, Strategy{
			Type:  StrategyMultiPizza,
			Title: "Multi-Pizza Deals (Best for 2+ pizzas)",
			Deals: topDeals(multi),
		})
	}
	if len(single) > 0 {
		out.Strategies = append(out.Strategies, Strategy{
			Type:  StrategySinglePizza,
			Title: "Single Pizza Deals",
			Deals: topDeals(single),
		})
	}
	if len(percent) > 0 {
		deals := make([]pizzaDeal, 0, len(percent))
		for _, c := range percent {
			deals = append(deals, pizzaDeal{CouponView: c})
		}
		out.Strategies = append(out.Strategies, Strategy{
			Type:  StrategyPercentage,
			Title: "Percentage Discounts",
			Deals: topDeals(deals),
		})
	}

	out.RecommendedCode = recommend(strings.ToLower(request), multi, single)
	return out, nil
}

// recommend picks a coupon: pan or deep-dish requests get the medium
// two-topping deal, anything else the cheapest multi-pizza deal, then the
// cheapest single-pizza deal.
func recommend(request string, multi, single []pizzaDeal) string {
	if strings.Contains(request, "deep dish") || strings.Contains(request, "pan") {
		for _, d := range single {
			name := strings.ToLower(d.Name)
			if strings.Contains(name, "medium") && strings.Contains(name, "2") && strings.Contains(name, "topping") {
				return d.Code
			}
		}
		return ""
	}
	if len(multi) > 0 {
		return multi[0].Code
	}
	if len(single) > 0 {
		return single[0].Code
	}
	return ""
}

func topDeals(deals []pizzaDeal) []Deal {
	sort.SliceStable(deals, func(i, j int) bool { return deals[i].Price.LessThan(deals[j].Price) })
	if len(deals) > dealsPerStrategy {
		deals = deals[:dealsPerStrategy]
	}
	out := make([]Deal, 0, len(deals))
	for _, d := range deals {
		deal := Deal{Code: d.Code, Name: d.Name, Size: d.size}
		if d.Priced {
			deal.Price = fmt.Sprintf("$%s", d.Price.StringFixed(2))
		}
		out = append(out, deal)
	}
	return out
}
