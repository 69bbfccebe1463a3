// Package httpapi expone el motor de surebets por HTTP (chi + CORS).
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alejandrodnm/surebet/internal/cache"
	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/alejandrodnm/surebet/internal/scanner"
	"github.com/go-chi/chi/v5"
)

// OpportunityService es lo que la API necesita del merge.
type OpportunityService interface {
	GetOpportunities(ctx context.Context, q scanner.Query) (domain.OpportunitySet, error)
	LastKnown(ctx context.Context) (domain.OpportunitySet, bool, error)
}

// SettingsRepository lee y guarda las preferencias.
type SettingsRepository interface {
	Settings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, s domain.Settings) error
}

// PriceSeriesReader devuelve el histórico de precios de un evento.
type PriceSeriesReader interface {
	PriceSeries(ctx context.Context, eventID string) ([]domain.PriceRecord, error)
}

// CacheAdmin expone el recuento de la TTL cache y permite vaciarla.
type CacheAdmin interface {
	Stats() cache.Stats
	Clear()
}

// Handler contiene las dependencias de los handlers HTTP.
type Handler struct {
	service       OpportunityService
	settings      SettingsRepository
	prices        PriceSeriesReader
	cache         CacheAdmin
	defaultStake  float64
	kellyFraction float64
}

// NewHandler crea el handler. settings, prices y cache pueden ser nil: la ruta
// correspondiente responde 501.
func NewHandler(service OpportunityService, settings SettingsRepository, prices PriceSeriesReader, c CacheAdmin, defaultStake, kellyFraction float64) *Handler {
	if defaultStake <= 0 {
		defaultStake = domain.DefaultTotalStake
	}
	if kellyFraction <= 0 || kellyFraction > 1 {
		kellyFraction = domain.DefaultKellyFraction
	}
	return &Handler{
		service:       service,
		settings:      settings,
		prices:        prices,
		cache:         c,
		defaultStake:  defaultStake,
		kellyFraction: kellyFraction,
	}
}

// HealthCheck devuelve el estado del servicio.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "surebet",
	})
}

// GetOpportunities: GET /api/v1/opportunities?sports=a,b&min_profit=1.5&bookmakers=x,y
func (h *Handler) GetOpportunities(w http.ResponseWriter, r *http.Request) {
	q := scanner.Query{
		Sports:     splitList(r.URL.Query().Get("sports")),
		Bookmakers: splitList(r.URL.Query().Get("bookmakers")),
	}
	if v := r.URL.Query().Get("min_profit"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid min_profit: %q", v))
			return
		}
		q.MinProfitPct = f
	}

	set, err := h.service.GetOpportunities(r.Context(), q)
	if err != nil {
		if !errors.Is(err, scanner.ErrAllSourcesFailed) {
			slog.Error("get opportunities failed", "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp := unavailableResponse{Error: err.Error()}
		if last, ok, lerr := h.service.LastKnown(r.Context()); lerr == nil && ok {
			dto := toSetDTO(last)
			dto.IsFromCache = true
			resp.LastKnown = &dto
		}
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	respondJSON(w, http.StatusOK, toSetDTO(set))
}

// CacheStats: GET /api/v1/cache/stats
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		respondError(w, http.StatusNotImplemented, "cache not configured")
		return
	}
	respondJSON(w, http.StatusOK, h.cache.Stats())
}

// ClearCache: DELETE /api/v1/cache. El siguiente fetch live irá al remoto.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		respondError(w, http.StatusNotImplemented, "cache not configured")
		return
	}
	h.cache.Clear()
	slog.Info("live odds cache cleared")
	w.WriteHeader(http.StatusNoContent)
}

// EvaluateArbitrage: POST /api/v1/arbitrage con bets explícitas.
func (h *Handler) EvaluateArbitrage(w http.ResponseWriter, r *http.Request) {
	var req arbitrageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.TotalStake == 0 {
		req.TotalStake = h.defaultStake
	}

	bets := make([]domain.Bet, len(req.Bets))
	for i, b := range req.Bets {
		bets[i] = domain.Bet{Source: b.Bookmaker, Outcome: b.Outcome, Price: b.Price}
	}

	res, err := domain.EvaluateArbitrage(bets, req.TotalStake)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	stakes := res.Stakes
	if stakes == nil {
		stakes = []float64{}
	}
	respondJSON(w, http.StatusOK, arbitrageResponse{
		HasArbitrage:            res.HasArbitrage,
		ProfitPercentage:        res.ProfitPercentage,
		ReturnOnStake:           res.ReturnOnStake,
		Stakes:                  stakes,
		ImpliedProbabilities:    res.ImpliedProbabilities,
		TotalImpliedProbability: res.TotalImpliedProbability,
		Payout:                  res.Payout,
		GuaranteedProfit:        res.GuaranteedProfit,
		Hold:                    res.Hold,
	})
}

// CalculateKelly: POST /api/v1/kelly
func (h *Handler) CalculateKelly(w http.ResponseWriter, r *http.Request) {
	var req kellyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	fraction := h.kellyFraction
	if req.KellyFraction != nil {
		fraction = *req.KellyFraction
	}

	stake, err := domain.KellyStake(req.Price, req.TrueProbability, req.Bankroll, fraction)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	implied, _ := domain.ImpliedProbability(req.Price)

	respondJSON(w, http.StatusOK, kellyResponse{
		Stake:         stake,
		KellyFraction: fraction,
		ImpliedProb:   domain.Round2(implied),
		EdgePercent:   domain.Round2(req.TrueProbability - implied),
	})
}

// GetSettings: GET /api/v1/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	if h.settings == nil {
		respondError(w, http.StatusNotImplemented, "settings store not configured")
		return
	}
	st, err := h.settings.Settings(r.Context())
	if err != nil {
		slog.Error("read settings failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, toSettingsDTO(st))
}

// PutSettings: PUT /api/v1/settings con el objeto completo.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	if h.settings == nil {
		respondError(w, http.StatusNotImplemented, "settings store not configured")
		return
	}
	var req settingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.CacheTimeoutSeconds < 0 {
		respondError(w, http.StatusBadRequest, "cache_timeout_seconds must be >= 0")
		return
	}
	if err := h.settings.SaveSettings(r.Context(), req.toDomain()); err != nil {
		slog.Error("save settings failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// GetPriceHistory: GET /api/v1/events/{eventID}/prices
func (h *Handler) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	if h.prices == nil {
		respondError(w, http.StatusNotImplemented, "price history not configured")
		return
	}
	eventID := chi.URLParam(r, "eventID")
	recs, err := h.prices.PriceSeries(r.Context(), eventID)
	if err != nil {
		slog.Error("read price history failed", "event_id", eventID, "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]priceRecordDTO, len(recs))
	for i, p := range recs {
		out[i] = priceRecordDTO{Bookmaker: p.Bookmaker, Outcome: p.Outcome, Price: p.Price, Timestamp: p.Timestamp}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"event_id": eventID,
		"prices":   out,
	})
}

// respondDomainError traduce errores de validación a 400.
func respondDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInputValidation) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error("unexpected error", "err", err)
	respondError(w, http.StatusInternalServerError, "internal error")
}

// respondJSON escribe una respuesta JSON.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError escribe una respuesta de error.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
