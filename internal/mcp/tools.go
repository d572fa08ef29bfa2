package mcp

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/mcpizza/internal/storefront"
	"github.com/dshills/mcpizza/pkg/types"
)

// handleFindStores handles the find_stores tool invocation
func (s *Server) handleFindStores(ctx context.Context, _ string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(getStringDefault(args, "query", ""))
	if query == "" {
		return nil, missingParam("query")
	}
	orderType, err := types.ParseOrderType(getStringDefault(args, "order_type", string(types.OrderDelivery)))
	if err != nil {
		return nil, err
	}

	stores, err := s.storefront.FindStores(ctx, query, orderType)
	if err != nil {
		return nil, err
	}

	response := map[string]interface{}{
		"query":  query,
		"count":  len(stores),
		"stores": stores,
	}
	if len(stores) == 0 {
		response["message"] = "No stores found near " + query
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStoreInfo handles the get_store_info tool invocation
func (s *Server) handleGetStoreInfo(ctx context.Context, _ string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	storeID, err := requiredString(args, "store_id")
	if err != nil {
		return nil, err
	}
	detail, err := s.storefront.StoreInfo(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(formatJSON(detail)), nil
}

// handleGetMenu handles the get_menu tool invocation
func (s *Server) handleGetMenu(ctx context.Context, _ string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	storeID, err := requiredString(args, "store_id")
	if err != nil {
		return nil, err
	}
	perCategory, err := getIntDefault(args, "per_category", storefront.DefaultPerCategory)
	if err != nil {
		return nil, err
	}
	if perCategory < 1 || perCategory > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "per_category must be between 1 and 100", map[string]interface{}{
			"param": "per_category",
			"value": perCategory,
		})
	}

	view, err := s.storefront.Menu(ctx, storeID, perCategory)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(formatJSON(view)), nil
}

// handleSearchMenu handles the search_menu tool invocation
func (s *Server) handleSearchMenu(ctx context.Context, _ string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	storeID, err := requiredString(args, "store_id")
	if err != nil {
		return nil, err
	}
	query := getStringDefault(args, "query", "")
	category := getStringDefault(args, "category", "")

	items, err := s.storefront.SearchMenu(ctx, storeID, query, category)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"store_id": storeID,
		"query":    query,
		"category": category,
		"count":    len(items),
		"items":    items,
	})), nil
}

// handleGetCoupons handles the get_coupons tool invocation
func (s *Server) handleGetCoupons(ctx context.Context, _ string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	storeID, err := requiredString(args, "store_id")
	if err != nil {
		return nil, err
	}
	coupons, err := s.storefront.Coupons(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"store_id": storeID,
		"count":    len(coupons),
		"coupons":  coupons,
	})), nil
}

// handleGetOrderingGuidance handles the get_ordering_guidance tool invocation
func (s *Server) handleGetOrderingGuidance(ctx context.Context, _ string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	storeID, err := requiredString(args, "store_id")
	if err != nil {
		return nil, err
	}
	request, err := requiredString(args, "user_request")
	if err != nil {
		return nil, err
	}
	g, err := s.storefront.Guidance(ctx, storeID, request)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(formatJSON(g)), nil
}

// Helper functions

// requiredString extracts a non-blank string parameter
func requiredString(args map[string]interface{}, key string) (string, error) {
	val := strings.TrimSpace(getStringDefault(args, key, ""))
	if val == "" {
		return "", missingParam(key)
	}
	return val, nil
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts a whole-number parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) (int, error) {
	switch val := args[key].(type) {
	case nil:
		return defaultValue, nil
	case int:
		return val, nil
	case float64:
		if val != math.Trunc(val) || val < math.MinInt32 || val > math.MaxInt32 {
			return 0, types.InvalidField(key, "must be a whole number")
		}
		return int(val), nil
	default:
		return 0, types.InvalidField(key, "must be a whole number")
	}
}

// getStringDefault extracts a string parameter with a default value.
// Blank strings count as absent.
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && strings.TrimSpace(val) != "" {
		return val
	}
	return defaultValue
}

// getStringSlice extracts an array of strings
func getStringSlice(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, types.InvalidField(key, "must be an array of strings")
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, types.InvalidField(key, "must be an array of strings")
	}
}

// getOptions extracts an options object of the form {"P": {"1/1": "1"}}.
// Scalar leaf values are stringified.
func getOptions(args map[string]interface{}, key string) (map[string]map[string]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, types.InvalidField(key, "must be an object")
	}
	out := make(map[string]map[string]string, len(obj))
	for code, placement := range obj {
		inner, ok := placement.(map[string]interface{})
		if !ok {
			return nil, types.InvalidField(key, fmt.Sprintf("entry %q must be an object", code))
		}
		out[code] = make(map[string]string, len(inner))
		for part, amount := range inner {
			switch a := amount.(type) {
			case string:
				out[code][part] = a
			case float64, int, bool:
				out[code][part] = fmt.Sprint(a)
			default:
				return nil, types.InvalidField(key, fmt.Sprintf("entry %q has a non-scalar amount", code))
			}
		}
	}
	return out, nil
}
