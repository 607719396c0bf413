package marketdata

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock-backtester-go/internal/config"
	"stock-backtester-go/internal/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const dateLayout = "2006-01-02"

// RestClient fetches price history and quotes from the market-data
// API over HTTP. It implements the Provider interface.
type RestClient struct {
	client  *resty.Client
	apiKey  string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure RestClient implements the interface
var _ Provider = (*RestClient)(nil)

// NewRestClient creates a market-data client with rate limiting.
func NewRestClient(cfg *config.MarketData, logger *zap.Logger) *RestClient {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &RestClient{
		client:  client,
		apiKey:  cfg.APIKey,
		logger:  logger,
		limiter: limiter,
	}
}

// doRequest executes a request with rate limiting and retries. Up to
// 3 attempts with exponential backoff (1s, 2s, 4s), honoring a
// Retry-After header. Only 429, 5xx and network-class failures are
// retried; other 4xx responses fail immediately.
func (c *RestClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	req.SetContext(ctx)

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && resp.StatusCode() != 0 {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 {
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// candle is the wire format of a single daily bar.
type candle struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// historyResponse is the wire format of the /history endpoint.
type historyResponse struct {
	Symbol  string   `json:"symbol"`
	Candles []candle `json:"candles"`
}

// GetHistoricalData fetches daily bars for one symbol and returns
// them ordered oldest to newest.
func (c *RestClient) GetHistoricalData(ctx context.Context, symbol, interval string, from, to time.Time) ([]models.PricePoint, error) {
	var history historyResponse

	req := c.client.R().
		SetResult(&history).
		SetHeader("Content-Type", "application/json").
		SetQueryParams(map[string]string{
			"symbol":   symbol,
			"interval": interval,
			"from":     from.Format(dateLayout),
			"to":       to.Format(dateLayout),
		})
	if c.apiKey != "" {
		req.SetHeader("X-API-KEY", c.apiKey)
	}

	if _, err := c.doRequest(ctx, "GET", "/v1/history", req); err != nil {
		return nil, fmt.Errorf("failed to get history for %s: %w", symbol, err)
	}

	if len(history.Candles) == 0 {
		return nil, fmt.Errorf("symbol %s in range %s..%s: %w",
			symbol, from.Format(dateLayout), to.Format(dateLayout), ErrNoData)
	}

	points := make([]models.PricePoint, 0, len(history.Candles))
	for _, bar := range history.Candles {
		date, err := time.Parse(dateLayout, bar.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse bar date %q for %s: %w", bar.Date, symbol, err)
		}
		points = append(points, models.PricePoint{
			Date:   date,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}

	// The engine depends on ascending order; enforce it here instead
	// of trusting the provider.
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	return points, nil
}

// quoteEntry is the wire format of one current quote.
type quoteEntry struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"timestamp"`
}

// GetQuotes fetches the latest quote for each symbol.
func (c *RestClient) GetQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	var quotes []quoteEntry

	req := c.client.R().
		SetResult(&quotes).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("symbols", strings.Join(symbols, ","))
	if c.apiKey != "" {
		req.SetHeader("X-API-KEY", c.apiKey)
	}

	if _, err := c.doRequest(ctx, "GET", "/v1/quotes", req); err != nil {
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}

	quoteMap := make(map[string]models.Quote, len(quotes))
	for _, q := range quotes {
		quoteMap[q.Symbol] = models.Quote{
			Symbol:    q.Symbol,
			Price:     q.Price,
			Volume:    q.Volume,
			Timestamp: time.Unix(q.Timestamp, 0).UTC(),
		}
	}

	return quoteMap, nil
}
