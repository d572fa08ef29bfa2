package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/mcpizza/internal/catalog"
)

var storeIDProperty = map[string]interface{}{
	"type":        "string",
	"description": "Store ID as returned by find_stores",
}

var quantityProperty = map[string]interface{}{
	"type":        "integer",
	"description": "Quantity to add",
	"default":     1,
	"minimum":     1,
}

func objectSchema(properties map[string]interface{}, required ...string) mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// findStoresTool returns the tool definition for find_stores
func findStoresTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_stores",
		Description: "Find nearby Domino's stores by address or zip code. Returns up to five stores with IDs, addresses and phone numbers.",
		InputSchema: objectSchema(map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "A 5-digit zip code, or a street address followed by \"city, state zip\"",
			},
			"order_type": map[string]interface{}{
				"type":        "string",
				"description": "Service method used to filter stores",
				"enum":        []string{"Delivery", "Carryout"},
				"default":     "Delivery",
			},
		}, "query"),
	}
}

// getStoreInfoTool returns the tool definition for get_store_info
func getStoreInfoTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_store_info",
		Description: "Get detailed information about a Domino's store including hours, services and whether it is open.",
		InputSchema: objectSchema(map[string]interface{}{
			"store_id": storeIDProperty,
		}, "store_id"),
	}
}

// getMenuTool returns the tool definition for get_menu
func getMenuTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_menu",
		Description: "Get a store's menu grouped by category.",
		InputSchema: objectSchema(map[string]interface{}{
			"store_id": storeIDProperty,
			"per_category": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum items listed per category (1-100)",
				"default":     10,
				"minimum":     1,
				"maximum":     100,
			},
		}, "store_id"),
	}
}

// searchMenuTool returns the tool definition for search_menu
func searchMenuTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_menu",
		Description: "Search a store's menu by free text and/or category.",
		InputSchema: objectSchema(map[string]interface{}{
			"store_id": storeIDProperty,
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Text matched against item name and description (optional)",
			},
			"category": map[string]interface{}{
				"type":        "string",
				"description": "Category filter: Pizza, Wings, Sides, Drinks, Desserts, etc.",
			},
		}, "store_id"),
	}
}

// getCouponsTool returns the tool definition for get_coupons
func getCouponsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_coupons",
		Description: "List a store's coupons and deals, cheapest first. Deals without a fixed price are listed last.",
		InputSchema: objectSchema(map[string]interface{}{
			"store_id": storeIDProperty,
		}, "store_id"),
	}
}

// getOrderingGuidanceTool returns the tool definition for get_ordering_guidance
func getOrderingGuidanceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_ordering_guidance",
		Description: "Analyze a store's deals for a request and recommend a coupon, ordering strategies and the size, crust and topping codes to use.",
		InputSchema: objectSchema(map[string]interface{}{
			"store_id": storeIDProperty,
			"user_request": map[string]interface{}{
				"type":        "string",
				"description": "What the user wants, e.g. 'deep dish sausage and pepperoni' or '2 large pizzas for a party'",
			},
		}, "store_id", "user_request"),
	}
}

// createOrderTool returns the tool definition for create_order.
// Omitted fields fall back to the configured customer profile.
func createOrderTool() mcp.Tool {
	str := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": desc}
	}
	return mcp.Tool{
		Name:        "create_order",
		Description: "Create a new order for delivery or carryout. Required before adding items. Omitted fields are taken from the saved customer profile.",
		InputSchema: objectSchema(map[string]interface{}{
			"store_id":         str("Store ID"),
			"customer_name":    str("Customer full name"),
			"customer_email":   str("Customer email"),
			"customer_phone":   str("Customer phone number"),
			"delivery_address": str("Street address (required for carryout too)"),
			"delivery_city":    str("City"),
			"delivery_state":   str("State (2-letter code)"),
			"delivery_zip":     str("Zip code"),
			"order_type": map[string]interface{}{
				"type":        "string",
				"description": "Delivery or Carryout",
				"enum":        []string{"Delivery", "Carryout"},
				"default":     "Delivery",
			},
			"replace": map[string]interface{}{
				"type":        "boolean",
				"description": "Discard the session's current order and start a new one",
				"default":     false,
			},
		}),
	}
}

// addCouponTool returns the tool definition for add_coupon
func addCouponTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_coupon",
		Description: "Add a coupon or deal code to the current order.",
		InputSchema: objectSchema(map[string]interface{}{
			"coupon_code": map[string]interface{}{
				"type":        "string",
				"description": "Coupon code, e.g. '9204'",
			},
			"quantity": quantityProperty,
		}, "coupon_code"),
	}
}

// addItemToOrderTool returns the tool definition for add_item_to_order
func addItemToOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_item_to_order",
		Description: "Add a menu item or deal code to the current order as a coupon line. Use add_pizza_with_toppings for customized pizzas.",
		InputSchema: objectSchema(map[string]interface{}{
			"item_code": map[string]interface{}{
				"type":        "string",
				"description": "Menu item or coupon code",
			},
			"quantity": quantityProperty,
			"options": map[string]interface{}{
				"type":        "object",
				"description": "Item customization options, e.g. {\"P\": {\"1/1\": \"1\"}}",
			},
		}, "item_code"),
	}
}

// addPizzaWithToppingsTool returns the tool definition for add_pizza_with_toppings
func addPizzaWithToppingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_pizza_with_toppings",
		Description: "Add a customized pizza, optionally with the coupon that prices it. The coupon goes on the order as a deal and the pizza as a product.",
		InputSchema: objectSchema(map[string]interface{}{
			"coupon_code": map[string]interface{}{
				"type":        "string",
				"description": "Coupon code, e.g. '9204' (optional)",
			},
			"size": map[string]interface{}{
				"type":        "string",
				"description": "Pizza size code: 10, 12, 14 or 16",
				"enum":        catalog.Codes(catalog.Sizes()),
				"default":     "12",
			},
			"crust": map[string]interface{}{
				"type":        "string",
				"description": "Crust code: NPAN (pan), HAND (hand tossed), THIN, BROOKLYN, GLUTENF",
				"enum":        catalog.Codes(catalog.Crusts()),
				"default":     "NPAN",
			},
			"toppings": map[string]interface{}{
				"type":        "array",
				"description": "Topping codes: P (pepperoni), S (sausage), M (mushrooms), O (onions), etc.",
				"items": map[string]interface{}{
					"type": "string",
					"enum": catalog.Codes(catalog.Toppings()),
				},
				"minItems": 1,
			},
			"quantity": quantityProperty,
		}, "toppings"),
	}
}

// viewOrderTool returns the tool definition for view_order
func viewOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "view_order",
		Description: "View the current order including its lines, status and last price.",
		InputSchema: objectSchema(map[string]interface{}{}),
	}
}

// clearOrderTool returns the tool definition for clear_order
func clearOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "clear_order",
		Description: "Discard the current order and start over.",
		InputSchema: objectSchema(map[string]interface{}{}),
	}
}

// priceOrderTool returns the tool definition for price_order
func priceOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "price_order",
		Description: "Validate and price the current order with Domino's without placing it. Shows the total to confirm before asking for payment.",
		InputSchema: objectSchema(map[string]interface{}{}),
	}
}

// reopenOrderTool returns the tool definition for reopen_order
func reopenOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "reopen_order",
		Description: "Return a failed order to draft so it can be changed and priced again.",
		InputSchema: objectSchema(map[string]interface{}{}),
	}
}

// placeOrderTool returns the tool definition for place_order
func placeOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "place_order",
		Description: "PLACES A REAL ORDER with real payment. Prices the current order, attaches the card and submits it to Domino's.",
		InputSchema: objectSchema(map[string]interface{}{
			"card_number": map[string]interface{}{"type": "string", "description": "Credit card number"},
			"card_expiry": map[string]interface{}{"type": "string", "description": "Card expiry (MM/YY)"},
			"card_cvv":    map[string]interface{}{"type": "string", "description": "Card CVV"},
			"card_zip":    map[string]interface{}{"type": "string", "description": "Billing zip code"},
		}, "card_number", "card_expiry", "card_cvv", "card_zip"),
	}
}
