package worldbank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/observability"
)

const (
	endpointIndicator = "indicator"
	endpointCountry   = "country"

	// maxPages bounds pagination against a misbehaving upstream.
	maxPages = 200
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	Source            string
	PerPage           int
	Timeout           time.Duration
	RequestsPerSecond float64
	IncludeAggregates bool
}

// Client implements domain.Fetcher using the World Bank Indicators API v2.
type Client struct {
	baseURL           string
	source            string
	perPage           int
	includeAggregates bool
	httpClient        *http.Client
	limiter           *rate.Limiter
	metrics           *observability.Metrics
	logger            *slog.Logger

	mu         sync.Mutex
	aggregates map[string]struct{}
}

// NewClient creates a World Bank API client. A non-positive request rate
// disables throttling.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Client{
		baseURL:           strings.TrimRight(opts.BaseURL, "/"),
		source:            opts.Source,
		perPage:           opts.PerPage,
		includeAggregates: opts.IncludeAggregates,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch loads every (country, year) observation of an indicator. Ranges
// entirely outside the API's span yield an empty table without a request.
func (c *Client) Fetch(ctx context.Context, indicator string, years domain.YearRange) (domain.Table, error) {
	indicator = strings.TrimSpace(indicator)
	if err := domain.ValidateIndicator(indicator); err != nil {
		return domain.Table{}, err
	}
	if err := years.Validate(); err != nil {
		return domain.Table{}, err
	}

	table := domain.Table{
		Indicator:    domain.Indicator{ID: indicator},
		Source:       c.source,
		FetchedAt:    domain.Now(),
		Observations: []domain.Observation{},
	}

	if !years.IsZero() {
		clamped, ok := years.Clamp(domain.SupportedYears())
		if !ok {
			c.logger.Info("year range outside supported span, returning empty table",
				"indicator", indicator, "from", years.From, "to", years.To)
			return table, nil
		}
		years = clamped
	}

	records, info, err := c.FetchRecords(ctx, indicator, years)
	if err != nil {
		return domain.Table{}, err
	}

	obs, stats := domain.Normalize(records, c.keepFilter(ctx))
	table.Observations = obs
	table.LastUpdated = info.LastUpdated
	if len(records) > 0 {
		table.Indicator.Name = strings.TrimSpace(records[0].Indicator.Value)
	}

	c.metrics.ObservationsLoaded.Add(float64(stats.Kept))
	c.metrics.ObservationsDropped.WithLabelValues("missing_value").Add(float64(stats.MissingValue))
	c.metrics.ObservationsDropped.WithLabelValues("missing_code").Add(float64(stats.MissingCode))
	c.metrics.ObservationsDropped.WithLabelValues("bad_year").Add(float64(stats.BadYear))
	c.metrics.ObservationsDropped.WithLabelValues("aggregate").Add(float64(stats.Aggregate))

	c.logger.Info("indicator fetched",
		"indicator", indicator,
		"records", len(records),
		"kept", stats.Kept,
		"dropped", stats.Dropped(),
		"pages", int(info.Pages),
	)
	return table, nil
}

// FetchRecords returns the raw records of an indicator across all pages,
// together with the first page's metadata.
func (c *Client) FetchRecords(ctx context.Context, indicator string, years domain.YearRange) ([]domain.RawRecord, PageInfo, error) {
	u := fmt.Sprintf("%s/country/all/indicator/%s", c.baseURL, url.PathEscape(indicator))
	params := url.Values{
		"format":   {"json"},
		"per_page": {strconv.Itoa(c.perPage)},
	}
	if c.source != "" {
		params.Set("source", c.source)
	}
	if !years.IsZero() {
		params.Set("date", years.String())
	}
	return fetchAll[domain.RawRecord](ctx, c, endpointIndicator, u, params)
}

// Aggregates returns the codes of regional and income-group pseudo-countries.
// A successful lookup is kept for the life of the client.
func (c *Client) Aggregates(ctx context.Context) (map[string]struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.aggregates != nil {
		return c.aggregates, nil
	}

	params := url.Values{
		"format":   {"json"},
		"per_page": {"400"},
	}
	countries, _, err := fetchAll[countryRecord](ctx, c, endpointCountry, c.baseURL+"/country", params)
	if err != nil {
		return nil, err
	}
	if len(countries) == 0 {
		return nil, errors.New("country list is empty")
	}

	agg := make(map[string]struct{})
	for _, country := range countries {
		if country.isAggregate() {
			agg[strings.ToUpper(strings.TrimSpace(country.ID))] = struct{}{}
		}
	}
	c.aggregates = agg
	return agg, nil
}

// keepFilter returns the normalization filter that drops aggregates, or nil
// when aggregates are wanted or cannot be determined.
func (c *Client) keepFilter(ctx context.Context) func(string) bool {
	if c.includeAggregates {
		return nil
	}
	agg, err := c.Aggregates(ctx)
	if err != nil {
		c.logger.Warn("aggregate lookup failed, keeping all codes", "error", err)
		return nil
	}
	return func(code string) bool {
		_, isAggregate := agg[code]
		return !isAggregate
	}
}

// fetchAll walks every page of a paged endpoint.
func fetchAll[T any](ctx context.Context, c *Client, endpoint, base string, params url.Values) ([]T, PageInfo, error) {
	var (
		all   []T
		first PageInfo
	)
	for page := 1; page <= maxPages; page++ {
		if page > 1 {
			params.Set("page", strconv.Itoa(page))
		}
		body, err := c.get(ctx, endpoint, base+"?"+params.Encode())
		if err != nil {
			return nil, PageInfo{}, err
		}
		info, items, err := decodePage[T](body)
		if err != nil {
			return nil, PageInfo{}, err
		}
		if page == 1 {
			first = info
		}
		all = append(all, items...)
		if page >= int(info.Pages) {
			break
		}
	}
	return all, first, nil
}

func (c *Client) get(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s rate limit: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	c.metrics.UpstreamRequests.WithLabelValues(endpoint, "success").Inc()
	c.logger.Debug("world bank request", "endpoint", endpoint, "url", fullURL, "bytes", len(body))
	return body, nil
}
