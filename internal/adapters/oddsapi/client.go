package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.the-odds-api.com"
	oddsPathFmt    = "/v4/sports/%s/odds"

	// The Odds API no publica un límite por segundo; nos quedamos en 5 req/s
	// para no quemar la cuota mensual si alguien pide muchos deportes.
	requestsPerSec = 5
	requestBurst   = 5

	maxErrorBody = 512
)

// Client es el HTTP client de The Odds API (v4) con rate limiting.
// No reintenta: un fallo se reporta una vez y la política de reintentos
// es cosa del caller.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// NewClient crea un Client. Si baseURL está vacío usa el de producción.
// timeout acota cada request individual; el caller puede acotar además vía ctx.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(requestsPerSec, requestBurst),
	}
}

// FetchSportOdds hace GET /v4/sports/{sport}/odds en formato decimal y devuelve
// los eventos validados. Cualquier fallo sale como *domain.FetchError.
func (c *Client) FetchSportOdds(ctx context.Context, sport string, regions, markets []string) ([]domain.Event, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("regions", strings.Join(regions, ","))
	q.Set("markets", strings.Join(markets, ","))
	q.Set("oddsFormat", "decimal")
	q.Set("dateFormat", "iso")
	endpoint := c.baseURL + fmt.Sprintf(oddsPathFmt, url.PathEscape(sport)) + "?" + q.Encode()

	body, err := c.get(ctx, sport, endpoint)
	if err != nil {
		return nil, err
	}

	var raw []eventDTO
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &domain.FetchError{
			Source: SourceName, Sport: sport, Kind: domain.FetchKindSchema,
			Err: fmt.Errorf("decode response: %w", err),
		}
	}

	events, err := mapEvents(raw)
	if err != nil {
		return nil, &domain.FetchError{
			Source: SourceName, Sport: sport, Kind: domain.FetchKindSchema, Err: err,
		}
	}

	slog.Debug("sport odds fetched", "sport", sport, "events", len(events))
	return events, nil
}

// get hace un único GET con rate limiting y devuelve el body si el status es 2xx.
func (c *Client) get(ctx context.Context, sport, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, domain.NewFetchError(SourceName, sport, fmt.Errorf("rate limiter: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewFetchError(SourceName, sport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewFetchError(SourceName, sport, err)
	}
	defer resp.Body.Close()

	logQuota(sport, resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.FetchError{
			Source:     SourceName,
			Sport:      sport,
			Kind:       domain.FetchKindStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(msg))),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewFetchError(SourceName, sport, fmt.Errorf("read body: %w", err))
	}
	return body, nil
}

// logQuota registra la cuota restante que devuelve la API en cada respuesta.
func logQuota(sport string, h http.Header) {
	remaining := h.Get("x-requests-remaining")
	if remaining == "" {
		return
	}
	slog.Debug("odds api quota",
		"sport", sport,
		"remaining", remaining,
		"used", h.Get("x-requests-used"),
		"last", h.Get("x-requests-last"),
	)
}
