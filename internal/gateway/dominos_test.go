package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mcpizza/internal/logger"
	"github.com/dshills/mcpizza/pkg/types"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*DominosClient, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Retry = fastRetry()
	c, err := NewDominosClient(cfg, logger.NewNoop())
	require.NoError(t, err)
	return c, &hits
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func sampleRequest() types.OrderRequest {
	return types.OrderRequest{
		OrderID:   "local-1",
		StoreID:   "8022",
		OrderType: types.OrderCarryout,
		Customer:  types.Customer{Name: "John Doe", Email: "john@example.com", Phone: "5555551234"},
		Address:   types.Address{Street: "123 Main St", City: "Fort Worth", Region: "TX", PostalCode: "76102"},
		DiscountLines: []types.SaleLine{
			{Code: "9204", Quantity: 1},
		},
		ProductLines: []types.SaleLine{
			{Code: "P12IPAZA+P+S", Quantity: 1, Options: map[string]map[string]string{"P": {"1/1": "1"}, "S": {"1/1": "1"}}},
		},
	}
}

func TestNewDominosClient_InvalidBaseURL(t *testing.T) {
	_, err := NewDominosClient(Config{BaseURL: "not a url"}, nil)
	assert.Error(t, err)
}

func TestFindStores_Zip(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/power/store-locator", r.URL.Path)
		assert.Equal(t, "", r.URL.Query().Get("s"))
		assert.Equal(t, "76102", r.URL.Query().Get("c"))
		assert.Equal(t, "Carryout", r.URL.Query().Get("type"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))

		stores := make([]map[string]interface{}, 0, 7)
		for i := 0; i < 7; i++ {
			stores = append(stores, map[string]interface{}{
				"StoreID":            string(rune('1' + i)),
				"AddressDescription": "100 Main St\nFort Worth, TX 76102\n",
				"Phone":              "817-555-0000",
				"IsOpen":             i%2 == 0,
				"IsDeliveryStore":    true,
				"MinDistance":        1.5,
			})
		}
		writeJSON(t, w, map[string]interface{}{"Status": 0, "Stores": stores})
	})

	stores, err := c.FindStores(context.Background(), " 76102 ", types.OrderCarryout)
	require.NoError(t, err)
	require.Len(t, stores, MaxStores)
	assert.Equal(t, "1", stores[0].ID)
	assert.Equal(t, "100 Main St\nFort Worth, TX 76102", stores[0].Address)
	assert.True(t, stores[0].IsOpen)
	assert.False(t, stores[1].IsOpen)
}

func TestFindStores_AddressSplit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "123 Main St", r.URL.Query().Get("s"))
		assert.Equal(t, "Fort Worth, TX 76102", r.URL.Query().Get("c"))
		assert.Equal(t, "Delivery", r.URL.Query().Get("type"))
		writeJSON(t, w, map[string]interface{}{"Stores": []interface{}{}})
	})

	stores, err := c.FindStores(context.Background(), "123 Main St, Fort Worth, TX 76102", "")
	require.NoError(t, err)
	assert.Empty(t, stores)
}

func TestFindStores_EmptyQuery(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := c.FindStores(context.Background(), "  ", types.OrderDelivery)
	assert.ErrorIs(t, err, types.ErrInvalidSpecification)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestStoreDetail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/power/store/8022/profile", r.URL.Path)
		writeJSON(t, w, map[string]interface{}{
			"StoreID":                 "8022",
			"AddressDescription":      "3200 Main St",
			"Phone":                   "817-555-1111",
			"HoursDescription":        "Su-Sa 10:00am-1:00am",
			"IsOpen":                  true,
			"IsDeliveryStore":         true,
			"ServiceHoursDescription": map[string]string{"Carryout": "10am-1am", "Delivery": "10am-12am"},
		})
	})

	d, err := c.StoreDetail(context.Background(), "8022")
	require.NoError(t, err)
	assert.Equal(t, "8022", d.ID)
	assert.Equal(t, "Su-Sa 10:00am-1:00am", d.Hours)
	assert.Equal(t, "10am-1am", d.ServiceHours["Carryout"])
	assert.True(t, d.IsOpen)
}

func menuHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/power/store/8022/menu", r.URL.Path)
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		assert.Equal(t, "true", r.URL.Query().Get("structured"))
		writeJSON(t, w, map[string]interface{}{
			"Products": map[string]interface{}{
				"S_PIZZA": map[string]interface{}{"Code": "S_PIZZA", "Name": "Pizza", "ProductType": "Pizza", "Description": "Build your own"},
				"S_WINGS": map[string]interface{}{"Name": "Wings", "ProductType": "Wings", "Price": 8.99},
				"F_BREAD": map[string]interface{}{"Name": "Bread"},
			},
			"Coupons": map[string]interface{}{
				"9204": map[string]interface{}{"Code": "9204", "Name": "Medium 2-Topping Pan Pizza", "Price": "7.99"},
				"5152": map[string]interface{}{"Name": "20% off", "Price": ""},
			},
		})
	}
}

func TestMenu_ParsesAndCaches(t *testing.T) {
	c, hits := newTestClient(t, menuHandler(t))

	m, err := c.Menu(context.Background(), "8022")
	require.NoError(t, err)
	require.Len(t, m.Products, 3)
	assert.Equal(t, "F_BREAD", m.Products[0].Code)
	assert.Equal(t, "Other", m.Products[0].ProductType)
	assert.Equal(t, "8.99", m.Products[2].Price)

	require.Len(t, m.Coupons, 2)
	assert.Equal(t, "5152", m.Coupons[0].Code)
	assert.False(t, m.Coupons[0].Priced)
	assert.True(t, m.Coupons[1].Priced)
	assert.True(t, decimal.RequireFromString("7.99").Equal(m.Coupons[1].Price))

	again, err := c.Menu(context.Background(), "8022")
	require.NoError(t, err)
	assert.Same(t, m, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestMenu_CacheDisabled(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		menuHandler(t)(w, r)
	}))
	defer srv.Close()

	c, err := NewDominosClient(Config{BaseURL: srv.URL, MenuCacheSize: -1, Retry: fastRetry()}, nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := c.Menu(context.Background(), "8022")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestLookup_RetriesServerErrors(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, map[string]interface{}{"StoreID": "8022"})
	})

	d, err := c.StoreDetail(context.Background(), "8022")
	require.NoError(t, err)
	assert.Equal(t, "8022", d.ID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestLookup_DoesNotRetryClientErrors(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "no such store")
	})

	_, err := c.StoreDetail(context.Background(), "0000")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTransportFailure)
	assert.Contains(t, err.Error(), "http 404: no such store")
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestPrice_Success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/power/price-order", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Order struct {
				StoreID       string
				ServiceMethod string
				FirstName     string
				LastName      string
				Coupons       []wireCoupon
				Products      []wireProduct
				Payments      []wirePayment
				Address       wireAddress
			}
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "8022", body.Order.StoreID)
		assert.Equal(t, "Carryout", body.Order.ServiceMethod)
		assert.Equal(t, "John", body.Order.FirstName)
		assert.Equal(t, "Doe", body.Order.LastName)
		assert.Equal(t, "House", body.Order.Address.Type)
		require.Len(t, body.Order.Coupons, 1)
		assert.Equal(t, "9204", body.Order.Coupons[0].Code)
		require.Len(t, body.Order.Products, 1)
		assert.Equal(t, "P12IPAZA", body.Order.Products[0].Code)
		assert.Equal(t, "1", body.Order.Products[0].Options["S"]["1/1"])
		assert.Empty(t, body.Order.Payments)

		writeJSON(t, w, map[string]interface{}{
			"Status": 1,
			"Order": map[string]interface{}{
				"Amounts":              map[string]interface{}{"Customer": 11.90, "Menu": 13.99, "Tax": 0.91},
				"EstimatedWaitMinutes": "15-25",
				"Coupons":              []map[string]interface{}{{"Code": "9204", "Status": 0}},
				"Products":             []map[string]interface{}{{"Code": "P12IPAZA", "Status": 0, "Amount": 13.99}},
			},
		})
	})

	res, err := c.Price(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "11.90", res.Total.StringFixed(2))
	assert.Equal(t, "15-25", res.EstimatedWait)
	require.Len(t, res.Adjustments, 2)
	assert.Equal(t, types.ChannelDiscount, res.Adjustments[0].Channel)
	assert.Equal(t, "13.99", res.Adjustments[1].Amount.StringFixed(2))
}

func TestPrice_Rejected(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{
			"Status":      -1,
			"StatusItems": []map[string]interface{}{{"Code": "Warning"}},
			"Order": map[string]interface{}{
				"StatusItems": []map[string]interface{}{{"Code": "CouponNotFound", "PulseText": "coupon 0000 unknown"}},
			},
		})
	})

	res, err := c.Price(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrRemoteRejection)
	assert.False(t, res.OK)
	assert.Equal(t, -1, res.Status)
	assert.Equal(t, "Warning,CouponNotFound", res.RejectionReason)
	assert.Equal(t, "coupon 0000 unknown", res.StatusItems[1].Message)
}

func TestPrice_MissingTotal(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{"Status": 0, "Order": map[string]interface{}{}})
	})

	res, err := c.Price(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, types.ErrTransportFailure)
	assert.False(t, res.OK)
}

func TestPrice_ServerErrorNotRetried(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	res, err := c.Price(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, types.ErrTransportFailure)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestPrice_MalformedBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>captcha</html>")
	})

	_, err := c.Price(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, types.ErrTransportFailure)
}

func TestSubmit_SendsPayment(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/power/place-order", r.URL.Path)

		var raw map[string]map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		var payments []map[string]interface{}
		require.NoError(t, json.Unmarshal(raw["Order"]["Payments"], &payments))
		require.Len(t, payments, 1)
		assert.Equal(t, "CreditCard", payments[0]["Type"])
		assert.Equal(t, "4111111111111111", payments[0]["Number"])
		assert.Equal(t, "1229", payments[0]["Expiration"])
		assert.Equal(t, 11.9, payments[0]["Amount"])
		assert.Equal(t, "VISA", payments[0]["CardType"])

		writeJSON(t, w, map[string]interface{}{
			"Status": 1,
			"Order":  map[string]interface{}{"OrderID": "XyZ123", "EstimatedWaitMinutes": 25},
		})
	})

	req := sampleRequest()
	req.Payment = &types.Payment{
		CardNumber: "4111 1111 1111 1111", Expiration: "12/29", SecurityCode: "123",
		PostalCode: "76102", CardType: types.CardVisa, Amount: decimal.RequireFromString("11.90"),
	}

	res, err := c.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "XyZ123", res.Confirmation)
	assert.Equal(t, "25", res.EstimatedWait)
}

func TestSubmit_VerificationRequired(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{
			"Status": -1,
			"Order": map[string]interface{}{
				"StatusItems": []map[string]interface{}{{"Code": "verification_required"}},
			},
		})
	})

	res, err := c.Submit(context.Background(), sampleRequest())
	require.Error(t, err)

	var rej *types.RemoteRejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "submit", rej.Phase)
	assert.Equal(t, "verification_required", rej.Reason)
	assert.Equal(t, "verification_required", res.RejectionReason)
	assert.Empty(t, res.Confirmation)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := retryWithBackoff(ctx, fastRetry(), func() (int, error) {
		calls++
		return 0, errors.New("down")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestLocatorLines(t *testing.T) {
	tests := []struct {
		in, street, city string
	}{
		{"10001", "", "10001"},
		{"1 Elm St, Austin, TX 73301", "1 Elm St", "Austin, TX 73301"},
		{"Austin TX", "", "Austin TX"},
		{"1234", "", "1234"},
	}
	for _, tt := range tests {
		s, c, err := locatorLines(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.street, s, tt.in)
		assert.Equal(t, tt.city, c, tt.in)
	}
}
