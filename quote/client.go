// Package quote fetches order books and trade prints from the quote API.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/vwd/market"
)

const DefaultPageSize = 50

// Client talks to the quote API. Zero values for HTTP, Location, Limiter and
// Now fall back to http.DefaultClient, UTC, no pacing and time.Now.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	PageSize int

	// Location is the exchange time zone trade clock times are read in.
	Location *time.Location
	// Limiter paces trade page requests.
	Limiter *rate.Limiter
	Now     func() time.Time
	Log     *zap.Logger
}

// NewClient returns a client that requests at most one trade page per 100ms.
func NewClient(baseURL string, pageSize int, loc *time.Location, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		PageSize: pageSize,
		Location: loc,
		Limiter:  rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		Now:      time.Now,
		Log:      log,
	}
}

type stockResp struct {
	Data struct {
		MatchPrice    decimal.Decimal `json:"mp"`
		BidPrice      decimal.Decimal `json:"b1"`
		BidVolume     int64           `json:"b1v"`
		AskPrice      decimal.Decimal `json:"o1"`
		AskVolume     int64           `json:"o1v"`
		ChangePercent float64         `json:"lpcp"`
		Volume        int64           `json:"lv"`
	} `json:"data"`
}

type tradeItem struct {
	ID     string          `json:"_id"`
	Symbol string          `json:"stockSymbol"`
	Price  decimal.Decimal `json:"price"`
	Volume int64           `json:"vol"`
	Side   string          `json:"side"`
	Time   string          `json:"time"` // HH:MM:SS exchange time
}

type tradesResp struct {
	Data struct {
		Items []tradeItem `json:"items"`
	} `json:"data"`
}

// FetchOrderBook returns the current top of book for symbol, stamped with
// the time of the request.
func (c *Client) FetchOrderBook(ctx context.Context, symbol string) (market.OrderBook, error) {
	if err := c.check(symbol); err != nil {
		return market.OrderBook{}, err
	}

	var sr stockResp
	if err := c.getJSON(ctx, "/v2/stock/"+url.PathEscape(symbol), nil, &sr); err != nil {
		return market.OrderBook{}, fmt.Errorf("quote: order book %s: %w", symbol, err)
	}

	d := sr.Data
	return market.OrderBook{
		Symbol:        symbol,
		Timestamp:     c.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		MatchPrice:    d.MatchPrice,
		Bid1:          market.OrderBookLevel{Price: d.BidPrice, Volume: d.BidVolume},
		Ask1:          market.OrderBookLevel{Price: d.AskPrice, Volume: d.AskVolume},
		ChangePercent: d.ChangePercent,
		Volume:        d.Volume,
	}, nil
}

// FetchTrades pages through the trade table with lastId until limit trades
// are collected or a page comes back empty. Trades are newest first.
func (c *Client) FetchTrades(ctx context.Context, symbol string, limit int) ([]market.Trade, error) {
	if err := c.check(symbol); err != nil {
		return nil, err
	}
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var (
		out    []market.Trade
		lastID string
	)
	for len(out) < limit {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return out, err
			}
		}

		q := url.Values{}
		q.Set("stockSymbol", symbol)
		q.Set("pageSize", strconv.Itoa(min(pageSize, limit-len(out))))
		if lastID != "" {
			q.Set("lastId", lastID)
		}

		var tr tradesResp
		if err := c.getJSON(ctx, "/le-table", q, &tr); err != nil {
			return out, fmt.Errorf("quote: trades %s: %w", symbol, err)
		}
		items := tr.Data.Items
		if len(items) == 0 {
			break
		}

		for _, it := range items {
			ts, err := c.clockToUnix(it.Time)
			if err != nil {
				return out, fmt.Errorf("quote: trade %s: %w", it.ID, err)
			}
			out = append(out, market.Trade{
				TradeID: it.ID,
				Symbol:  it.Symbol,
				Price:   it.Price,
				Volume:  it.Volume,
				Side:    market.ParseSide(it.Side),
				Time:    ts,
			})
		}
		lastID = items[len(items)-1].ID

		c.log().Debug("trade page",
			zap.String("symbol", symbol),
			zap.Int("items", len(items)),
			zap.Int("total", len(out)),
		)
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// clockToUnix places an HH:MM[:SS] exchange clock time on today's date.
func (c *Client) clockToUnix(clock string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("bad trade time %q", clock)
	}
	var hms [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("bad trade time %q: %w", clock, err)
		}
		hms[i] = v
	}

	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	now := c.now().In(loc)
	t := time.Date(now.Year(), now.Month(), now.Day(), hms[0], hms[1], hms[2], 0, loc)
	return t.Unix(), nil
}

func (c *Client) check(symbol string) error {
	if c.BaseURL == "" {
		return fmt.Errorf("quote: missing base url")
	}
	if symbol == "" {
		return fmt.Errorf("quote: missing symbol")
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	if q != nil {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Client) log() *zap.Logger {
	if c.Log != nil {
		return c.Log
	}
	return zap.NewNop()
}
