package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/mcpizza/internal/catalog"
	"github.com/dshills/mcpizza/internal/order"
	"github.com/dshills/mcpizza/pkg/types"
)

// VerificationHint is shown when Domino's asks for a human verification
// step the server cannot complete
const VerificationHint = "Domino's requires an interactive verification step for this order. Finish checkout at dominos.com or by phone; the order was not placed."

// handleCreateOrder handles the create_order tool invocation
func (s *Server) handleCreateOrder(ctx context.Context, sessionID string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	p := s.profile
	orderType, err := types.ParseOrderType(getStringDefault(args, "order_type", defaultString(p.OrderType, string(types.OrderDelivery))))
	if err != nil {
		return nil, err
	}
	customer := types.Customer{
		Name:  getStringDefault(args, "customer_name", p.Name),
		Email: getStringDefault(args, "customer_email", p.Email),
		Phone: getStringDefault(args, "customer_phone", p.Phone),
	}
	address := types.Address{
		Street:     getStringDefault(args, "delivery_address", p.Street),
		City:       getStringDefault(args, "delivery_city", p.City),
		Region:     getStringDefault(args, "delivery_state", p.State),
		PostalCode: getStringDefault(args, "delivery_zip", p.Zip),
	}

	o, err := order.New(getStringDefault(args, "store_id", p.StoreID), orderType, customer, address)
	if err != nil {
		return nil, err
	}
	previous, err := s.registry.Create(sessionID, o, getBoolDefault(args, "replace", false))
	if err != nil {
		return nil, err
	}

	response := map[string]interface{}{
		"order_id":   o.ID(),
		"store_id":   o.StoreID(),
		"order_type": orderType,
		"status":     o.Status(),
		"message":    fmt.Sprintf("%s order created at store %s. Add coupons and pizzas next.", orderType, o.StoreID()),
	}
	if previous != nil {
		s.recorder.StateChange(ctx, sessionID, previous.ID(), "order_replaced", string(previous.Status()), "")
		response["replaced_order_id"] = previous.ID()
	}
	s.recorder.StateChange(ctx, sessionID, o.ID(), "order_created", "", string(o.Status()))
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAddCoupon handles the add_coupon tool invocation
func (s *Server) handleAddCoupon(ctx context.Context, sessionID string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	code, err := requiredString(args, "coupon_code")
	if err != nil {
		return nil, err
	}
	quantity, err := getIntDefault(args, "quantity", 1)
	if err != nil {
		return nil, err
	}
	o, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	line, err := catalog.Classify(catalog.KindDiscount, catalog.Request{
		Code:     code,
		Quantity: quantity,
	})
	if err != nil {
		return nil, err
	}
	tr, err := o.AddDiscountLine(line)
	if err != nil {
		return nil, err
	}
	s.recordLine(ctx, sessionID, o, tr)
	return mcp.NewToolResultText(formatJSON(lineResponse(o, tr.From, []types.SaleLine{line}))), nil
}

// handleAddItemToOrder handles the add_item_to_order tool invocation.
// The item always lands in the discount channel.
func (s *Server) handleAddItemToOrder(ctx context.Context, sessionID string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	code, err := requiredString(args, "item_code")
	if err != nil {
		return nil, err
	}
	options, err := getOptions(args, "options")
	if err != nil {
		return nil, err
	}
	quantity, err := getIntDefault(args, "quantity", 1)
	if err != nil {
		return nil, err
	}
	o, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	tr, err := o.AddSimpleLine(code, quantity, options)
	if err != nil {
		return nil, err
	}
	s.recordLine(ctx, sessionID, o, tr)
	// echo the line as stored, defaults applied
	lines := o.Snapshot().DiscountLines
	line := lines[len(lines)-1]
	return mcp.NewToolResultText(formatJSON(lineResponse(o, tr.From, []types.SaleLine{line}))), nil
}

// handleAddPizzaWithToppings handles the add_pizza_with_toppings tool
// invocation. Both lines are classified before either is added.
func (s *Server) handleAddPizzaWithToppings(ctx context.Context, sessionID string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	toppings, err := getStringSlice(args, "toppings")
	if err != nil {
		return nil, err
	}
	quantity, err := getIntDefault(args, "quantity", 1)
	if err != nil {
		return nil, err
	}
	o, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	size := getStringDefault(args, "size", "12")
	pizza, err := catalog.Classify(catalog.KindCustomizedProduct, catalog.Request{
		Size:     size,
		Crust:    getStringDefault(args, "crust", "NPAN"),
		Toppings: toppings,
		Quantity: quantity,
	})
	if err != nil {
		return nil, err
	}

	var coupon *types.SaleLine
	if code := getStringDefault(args, "coupon_code", ""); code != "" {
		line, err := catalog.Classify(catalog.KindDiscount, catalog.Request{Code: code, Quantity: 1})
		if err != nil {
			return nil, err
		}
		coupon = &line
	}

	from := o.Status()
	var added []types.SaleLine
	if coupon != nil {
		tr, err := o.AddDiscountLine(*coupon)
		if err != nil {
			return nil, err
		}
		s.recordLine(ctx, sessionID, o, tr)
		added = append(added, *coupon)
	}
	tr, err := o.AddProductLine(pizza)
	if err != nil {
		return nil, err
	}
	s.recordLine(ctx, sessionID, o, tr)
	added = append(added, pizza)

	response := lineResponse(o, from, added)
	response["description"] = describePizza(size, pizza, toppings)
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleViewOrder handles the view_order tool invocation
func (s *Server) handleViewOrder(_ context.Context, sessionID string, _ map[string]interface{}) (*mcp.CallToolResult, error) {
	o, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"order":      o.Snapshot(),
		"line_count": o.LineCount(),
	})), nil
}

// handleClearOrder handles the clear_order tool invocation
func (s *Server) handleClearOrder(ctx context.Context, sessionID string, _ map[string]interface{}) (*mcp.CallToolResult, error) {
	o := s.registry.Clear(sessionID)
	if o == nil {
		return nil, types.ErrNoActiveOrder
	}
	s.recorder.StateChange(ctx, sessionID, o.ID(), "order_cleared", string(o.Status()), "")
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"cleared":  true,
		"order_id": o.ID(),
		"message":  "Order cleared. Call create_order to start a new one.",
	})), nil
}

// handleReopenOrder handles the reopen_order tool invocation
func (s *Server) handleReopenOrder(ctx context.Context, sessionID string, _ map[string]interface{}) (*mcp.CallToolResult, error) {
	o, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	tr, err := o.Reopen()
	if err != nil {
		return nil, err
	}
	s.recorder.StateChange(ctx, sessionID, o.ID(), "order_status", string(tr.From), string(tr.To)+": "+tr.Reason)
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"order_id": o.ID(),
		"status":   o.Status(),
		"message":  "Order reopened. Adjust it and price it again.",
	})), nil
}

// handlePriceOrder handles the price_order tool invocation. A provider
// rejection is a normal result; a transport failure is an error result.
// Both leave the order Failed.
func (s *Server) handlePriceOrder(ctx context.Context, sessionID string, _ map[string]interface{}) (*mcp.CallToolResult, error) {
	o, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	res, err := s.coordinator.Price(ctx, o)
	if res == nil {
		return nil, err
	}

	response := map[string]interface{}{
		"order_id": o.ID(),
		"status":   o.Status(),
		"success":  err == nil,
		"pricing":  res,
	}
	if err == nil {
		response["total"] = res.Total.StringFixed(2)
		response["message"] = fmt.Sprintf("Order priced at $%s. Confirm with the customer before place_order.", res.Total.StringFixed(2))
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	return phaseFailure(response, err), nil
}

// handlePlaceOrder handles the place_order tool invocation
func (s *Server) handlePlaceOrder(ctx context.Context, sessionID string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	payment := types.Payment{
		CardNumber:   getStringDefault(args, "card_number", ""),
		Expiration:   strings.TrimSpace(getStringDefault(args, "card_expiry", "")),
		SecurityCode: strings.TrimSpace(getStringDefault(args, "card_cvv", "")),
		PostalCode:   strings.TrimSpace(getStringDefault(args, "card_zip", "")),
	}
	o, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	out, err := s.coordinator.Place(ctx, o, payment)
	if out == nil {
		return nil, err
	}
	response := map[string]interface{}{
		"success": out.Success(),
		"outcome": out,
	}
	if err == nil {
		response["message"] = fmt.Sprintf("Order placed. Confirmation %s, estimated wait %s minutes.", out.Confirmation, defaultString(out.EstimatedWait, "unknown"))
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	return phaseFailure(response, err), nil
}

// phaseFailure builds the result for a failed price or submit phase
func phaseFailure(response map[string]interface{}, err error) *mcp.CallToolResult {
	var rej *types.RemoteRejectionError
	switch {
	case errors.As(err, &rej):
		response["rejection_reason"] = rej.Reason
		response["message"] = fmt.Sprintf("Domino's rejected the order during %s: %s", rej.Phase, rej.Reason)
		if strings.Contains(rej.Reason, "verification_required") {
			response["message"] = VerificationHint
		}
		return mcp.NewToolResultText(formatJSON(response))
	case errors.Is(err, types.ErrTransportFailure):
		response["error"] = err.Error()
		response["message"] = "Could not reach Domino's. The order is marked failed; reopen_order, then try again."
		result := mcp.NewToolResultText(formatJSON(response))
		result.IsError = true
		return result
	default:
		// local payment check after a fresh price
		response["error"] = err.Error()
		response["message"] = "The order was priced but payment could not be attached: " + err.Error()
		result := mcp.NewToolResultText(formatJSON(response))
		result.IsError = true
		return result
	}
}

// recordLine writes a line-added transition to the interaction log
func (s *Server) recordLine(ctx context.Context, sessionID string, o *order.Order, tr order.Transition) {
	s.recorder.StateChange(ctx, sessionID, o.ID(), "order_line", string(tr.From), string(tr.To)+": "+tr.Reason)
}

func lineResponse(o *order.Order, from types.Status, added []types.SaleLine) map[string]interface{} {
	response := map[string]interface{}{
		"order_id":   o.ID(),
		"added":      added,
		"status":     o.Status(),
		"line_count": o.LineCount(),
	}
	if from == types.StatusPriced || from == types.StatusPaid {
		response["note"] = "The order changed after pricing; price it again before placing."
	}
	return response
}

func describePizza(size string, line types.SaleLine, toppings []string) string {
	names := make([]string, 0, len(toppings))
	seen := map[string]bool{}
	for _, t := range toppings {
		t = strings.TrimSpace(t)
		if seen[t] {
			continue
		}
		seen[t] = true
		names = append(names, catalog.ToppingName(t))
	}
	return fmt.Sprintf("%s pizza (%s) with %s", catalog.SizeName(strings.TrimSpace(size)), line.BaseCode(), strings.Join(names, ", "))
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
