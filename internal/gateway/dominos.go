package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dshills/mcpizza/internal/logger"
	"github.com/dshills/mcpizza/pkg/types"
)

const (
	DefaultBaseURL   = "https://order.dominos.com"
	DefaultUserAgent = "MCPizza/1.0"

	DefaultMenuCacheSize = 32
	DefaultMenuCacheTTL  = 15 * time.Minute

	// MaxStores caps store-locator results
	MaxStores = 5

	pathStoreLocator = "/power/store-locator"
	pathStore        = "/power/store/"
	pathPriceOrder   = "/power/price-order"
	pathPlaceOrder   = "/power/place-order"

	maxErrorBody = 512
)

// Config configures a DominosClient
type Config struct {
	BaseURL   string
	UserAgent string
	// Timeout bounds each HTTP exchange; zero leaves it to the transport
	Timeout time.Duration
	Retry   RetryConfig

	// MenuCacheSize < 0 disables the menu cache
	MenuCacheSize int
	MenuCacheTTL  time.Duration
}

// DefaultConfig returns the production endpoint settings
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		UserAgent:     DefaultUserAgent,
		Retry:         DefaultRetryConfig(),
		MenuCacheSize: DefaultMenuCacheSize,
		MenuCacheTTL:  DefaultMenuCacheTTL,
	}
}

// DominosClient implements Gateway against the Domino's ordering API
type DominosClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	retry      RetryConfig
	menus      *expirable.LRU[string, *MenuSnapshot]
	log        logger.Logger
}

var _ Gateway = (*DominosClient)(nil)

// NewDominosClient validates cfg and builds a client
func NewDominosClient(cfg Config, log logger.Logger) (*DominosClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	if log == nil {
		log = logger.NewNoop()
	}

	c := &DominosClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      cfg.Retry,
		log:        log.With(logger.String("component", "gateway")),
	}
	if cfg.MenuCacheSize >= 0 {
		ttl := cfg.MenuCacheTTL
		if ttl <= 0 {
			ttl = DefaultMenuCacheTTL
		}
		c.menus = expirable.NewLRU[string, *MenuSnapshot](cfg.MenuCacheSize, nil, ttl)
	}
	return c, nil
}

// FindStores queries the store locator with a 5-digit zip or a free-form
// address ("street, city, state zip"). At most MaxStores results are returned.
func (c *DominosClient) FindStores(ctx context.Context, query string, serviceMethod types.OrderType) ([]StoreSummary, error) {
	street, cityLine, err := locatorLines(query)
	if err != nil {
		return nil, err
	}
	if serviceMethod == "" {
		serviceMethod = types.OrderDelivery
	}

	q := url.Values{}
	q.Set("s", street)
	q.Set("c", cityLine)
	q.Set("type", string(serviceMethod))

	var resp struct {
		Status      int              `json:"Status"`
		StatusItems []wireStatusItem `json:"StatusItems"`
		Stores      []struct {
			StoreID            string  `json:"StoreID"`
			AddressDescription string  `json:"AddressDescription"`
			Phone              string  `json:"Phone"`
			IsOpen             bool    `json:"IsOpen"`
			IsDeliveryStore    bool    `json:"IsDeliveryStore"`
			MinDistance        float64 `json:"MinDistance"`
		} `json:"Stores"`
	}
	if err := c.get(ctx, pathStoreLocator, q, &resp); err != nil {
		return nil, err
	}
	if resp.Status == -1 {
		wr := wireResponse{StatusItems: resp.StatusItems}
		items := wr.statusItems()
		return nil, &types.RemoteRejectionError{Phase: "store-locator", Reason: reasonOrStatus(items, resp.Status), StatusItems: items}
	}

	stores := make([]StoreSummary, 0, MaxStores)
	for _, s := range resp.Stores {
		if len(stores) == MaxStores {
			break
		}
		stores = append(stores, StoreSummary{
			ID:              s.StoreID,
			Address:         strings.TrimSpace(s.AddressDescription),
			Phone:           s.Phone,
			IsOpen:          s.IsOpen,
			IsDeliveryStore: s.IsDeliveryStore,
			Distance:        s.MinDistance,
		})
	}
	return stores, nil
}

// StoreDetail fetches a store profile
func (c *DominosClient) StoreDetail(ctx context.Context, storeID string) (*StoreDetail, error) {
	storeID, err := requireStoreID(storeID)
	if err != nil {
		return nil, err
	}

	var resp struct {
		StoreID                 string            `json:"StoreID"`
		AddressDescription      string            `json:"AddressDescription"`
		Phone                   string            `json:"Phone"`
		HoursDescription        string            `json:"HoursDescription"`
		IsOpen                  bool              `json:"IsOpen"`
		IsDeliveryStore         bool              `json:"IsDeliveryStore"`
		ServiceHoursDescription map[string]string `json:"ServiceHoursDescription"`
	}
	if err := c.get(ctx, pathStore+url.PathEscape(storeID)+"/profile", nil, &resp); err != nil {
		return nil, err
	}

	id := resp.StoreID
	if id == "" {
		id = storeID
	}
	return &StoreDetail{
		ID:              id,
		Address:         strings.TrimSpace(resp.AddressDescription),
		Phone:           resp.Phone,
		Hours:           resp.HoursDescription,
		IsOpen:          resp.IsOpen,
		IsDeliveryStore: resp.IsDeliveryStore,
		ServiceHours:    resp.ServiceHoursDescription,
	}, nil
}

// Menu returns the store's menu, served from cache while fresh
func (c *DominosClient) Menu(ctx context.Context, storeID string) (*MenuSnapshot, error) {
	storeID, err := requireStoreID(storeID)
	if err != nil {
		return nil, err
	}
	if c.menus != nil {
		if m, ok := c.menus.Get(storeID); ok {
			return m, nil
		}
	}

	var resp struct {
		Products map[string]struct {
			Code        string          `json:"Code"`
			Name        string          `json:"Name"`
			Description string          `json:"Description"`
			ProductType string          `json:"ProductType"`
			Price       json.RawMessage `json:"Price"`
		} `json:"Products"`
		Coupons map[string]struct {
			Code        string                 `json:"Code"`
			Name        string                 `json:"Name"`
			Description string                 `json:"Description"`
			Price       json.RawMessage        `json:"Price"`
			Tags        map[string]interface{} `json:"Tags"`
		} `json:"Coupons"`
	}
	q := url.Values{}
	q.Set("lang", "en")
	q.Set("structured", "true")
	if err := c.get(ctx, pathStore+url.PathEscape(storeID)+"/menu", q, &resp); err != nil {
		return nil, err
	}

	m := &MenuSnapshot{
		StoreID:   storeID,
		Products:  make([]MenuProduct, 0, len(resp.Products)),
		Coupons:   make([]Coupon, 0, len(resp.Coupons)),
		FetchedAt: time.Now().UTC(),
	}
	for key, p := range resp.Products {
		code := p.Code
		if code == "" {
			code = key
		}
		category := p.ProductType
		if category == "" {
			category = "Other"
		}
		m.Products = append(m.Products, MenuProduct{
			Code:        code,
			Name:        p.Name,
			Description: p.Description,
			ProductType: category,
			Price:       rawText(p.Price),
		})
	}
	for key, cp := range resp.Coupons {
		code := cp.Code
		if code == "" {
			code = key
		}
		price, priced := parseAmount(cp.Price)
		name := cp.Name
		if name == "" {
			name = "Unknown Deal"
		}
		m.Coupons = append(m.Coupons, Coupon{
			Code:        code,
			Name:        name,
			Description: cp.Description,
			Price:       price,
			Priced:      priced,
			Tags:        cp.Tags,
		})
	}
	sort.Slice(m.Products, func(i, j int) bool { return m.Products[i].Code < m.Products[j].Code })
	sort.Slice(m.Coupons, func(i, j int) bool { return m.Coupons[i].Code < m.Coupons[j].Code })

	if c.menus != nil {
		c.menus.Add(storeID, m)
	}
	return m, nil
}

// Price submits the order for validation and pricing. Never retried.
func (c *DominosClient) Price(ctx context.Context, req types.OrderRequest) (*types.PriceResult, error) {
	res := &types.PriceResult{At: time.Now().UTC()}

	var resp wireResponse
	if err := c.post(ctx, pathPriceOrder, toWire(req), &resp); err != nil {
		res.Error = err.Error()
		return res, err
	}

	res.Status = resp.Status
	res.StatusItems = resp.statusItems()
	res.Amounts = resp.amounts()
	res.Adjustments = resp.adjustments()
	res.EstimatedWait = rawText(resp.Order.EstimatedWaitMinutes)

	if resp.rejected() {
		res.RejectionReason = reasonOrStatus(res.StatusItems, resp.Status)
		return res, &types.RemoteRejectionError{Phase: "price", Reason: res.RejectionReason, StatusItems: res.StatusItems}
	}

	total, ok := res.Amounts["Customer"]
	if !ok {
		err := fmt.Errorf("%w: price response carries no customer total", types.ErrTransportFailure)
		res.Error = err.Error()
		return res, err
	}
	res.OK = true
	res.Total = total
	return res, nil
}

// Submit places the order. Never retried: a lost reply must not place it twice.
func (c *DominosClient) Submit(ctx context.Context, req types.OrderRequest) (*types.SubmitResult, error) {
	res := &types.SubmitResult{At: time.Now().UTC()}

	var resp wireResponse
	if err := c.post(ctx, pathPlaceOrder, toWire(req), &resp); err != nil {
		res.Error = err.Error()
		return res, err
	}

	res.Status = resp.Status
	res.StatusItems = resp.statusItems()
	if resp.rejected() {
		res.RejectionReason = reasonOrStatus(res.StatusItems, resp.Status)
		return res, &types.RemoteRejectionError{Phase: "submit", Reason: res.RejectionReason, StatusItems: res.StatusItems}
	}

	res.OK = true
	res.Confirmation = resp.Order.OrderID
	res.EstimatedWait = rawText(resp.Order.EstimatedWaitMinutes)
	return res, nil
}

func (c *DominosClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	_, err := retryWithBackoff(ctx, c.retry, func() (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodGet, path, query, nil, out)
	})
	return err
}

func (c *DominosClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

// do performs one HTTP exchange. Every failure to obtain a decodable 2xx
// answer wraps types.ErrTransportFailure.
func (c *DominosClient) do(ctx context.Context, method, path string, query url.Values, body []byte, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", types.ErrTransportFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("gateway request failed", logger.String("method", method), logger.String("path", path), logger.Err(err))
		return fmt.Errorf("%w: %s %s: %v", types.ErrTransportFailure, method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.log.Debug("gateway request",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.Any("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %w", types.ErrTransportFailure, &statusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", types.ErrTransportFailure, path, err)
	}
	return nil
}

// statusError is a non-2xx HTTP answer
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d", e.Code)
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// locatorLines splits a store-locator query into the provider's street and
// city lines. A bare 5-digit zip goes on the city line.
func locatorLines(query string) (street, cityLine string, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", "", types.InvalidField("query", "is required")
	}
	if isZip5(query) {
		return "", query, nil
	}
	if before, after, ok := strings.Cut(query, ","); ok {
		return strings.TrimSpace(before), strings.TrimSpace(after), nil
	}
	return "", query, nil
}

func isZip5(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func requireStoreID(storeID string) (string, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return "", types.InvalidField("store_id", "is required")
	}
	return storeID, nil
}

func reasonOrStatus(items []types.StatusItem, status int) string {
	if r := types.RejectionReason(items); r != "" {
		return r
	}
	return fmt.Sprintf("status %d", status)
}
