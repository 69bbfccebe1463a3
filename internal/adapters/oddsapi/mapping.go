package oddsapi

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
)

// errShape es la causa raíz de cualquier discrepancia de forma.
var errShape = errors.New("response shape mismatch")

// mapEvents valida y convierte los DTOs a domain.Event. Un solo campo
// obligatorio ausente invalida la respuesta entera.
func mapEvents(raw []eventDTO) ([]domain.Event, error) {
	events := make([]domain.Event, 0, len(raw))
	for i, r := range raw {
		ev, err := mapEvent(r)
		if err != nil {
			return nil, fmt.Errorf("event[%d]: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func mapEvent(r eventDTO) (domain.Event, error) {
	if r.ID == nil || *r.ID == "" {
		return domain.Event{}, fmt.Errorf("%w: missing id", errShape)
	}
	if r.SportKey == nil || *r.SportKey == "" {
		return domain.Event{}, fmt.Errorf("%w: event %s: missing sport_key", errShape, *r.ID)
	}
	if r.CommenceTime == nil {
		return domain.Event{}, fmt.Errorf("%w: event %s: missing commence_time", errShape, *r.ID)
	}
	commence, err := parseTime(*r.CommenceTime)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%w: event %s: commence_time: %v", errShape, *r.ID, err)
	}
	if r.Bookmakers == nil {
		return domain.Event{}, fmt.Errorf("%w: event %s: missing bookmakers", errShape, *r.ID)
	}

	ev := domain.Event{
		ID:           *r.ID,
		SportKey:     *r.SportKey,
		SportTitle:   r.SportTitle,
		HomeTeam:     r.HomeTeam,
		AwayTeam:     r.AwayTeam,
		CommenceTime: commence,
		Bookmakers:   make([]domain.Bookmaker, 0, len(*r.Bookmakers)),
	}
	for _, b := range *r.Bookmakers {
		bm, err := mapBookmaker(b)
		if err != nil {
			return domain.Event{}, fmt.Errorf("event %s: %w", ev.ID, err)
		}
		ev.Bookmakers = append(ev.Bookmakers, bm)
	}
	return ev, nil
}

func mapBookmaker(b bookmakerDTO) (domain.Bookmaker, error) {
	if b.Key == nil || *b.Key == "" {
		return domain.Bookmaker{}, fmt.Errorf("%w: bookmaker without key", errShape)
	}
	if b.Markets == nil {
		return domain.Bookmaker{}, fmt.Errorf("%w: bookmaker %s: missing markets", errShape, *b.Key)
	}

	bm := domain.Bookmaker{
		Key:     *b.Key,
		Title:   b.Title,
		Markets: make([]domain.Market, 0, len(*b.Markets)),
	}
	// last_update es informativo; si no parsea lo dejamos a zero
	if t, err := parseTime(b.LastUpdate); err == nil {
		bm.LastUpdate = t
	}

	for _, m := range *b.Markets {
		if m.Key == nil || *m.Key == "" {
			return domain.Bookmaker{}, fmt.Errorf("%w: bookmaker %s: market without key", errShape, bm.Key)
		}
		if m.Outcomes == nil {
			return domain.Bookmaker{}, fmt.Errorf("%w: bookmaker %s market %s: missing outcomes", errShape, bm.Key, *m.Key)
		}
		market := domain.Market{Key: *m.Key, Outcomes: make([]domain.Outcome, 0, len(*m.Outcomes))}
		for _, o := range *m.Outcomes {
			if o.Name == nil || *o.Name == "" {
				return domain.Bookmaker{}, fmt.Errorf("%w: bookmaker %s market %s: outcome without name", errShape, bm.Key, market.Key)
			}
			if o.Price == nil || math.IsNaN(*o.Price) || math.IsInf(*o.Price, 0) || *o.Price <= 0 {
				return domain.Bookmaker{}, fmt.Errorf("%w: bookmaker %s outcome %s: invalid price", errShape, bm.Key, *o.Name)
			}
			out := domain.Outcome{Name: *o.Name, Price: *o.Price}
			if o.Point != nil {
				out.Point = *o.Point
			}
			market.Outcomes = append(market.Outcomes, out)
		}
		bm.Markets = append(bm.Markets, market)
	}
	return bm, nil
}

// parseTime acepta los formatos ISO que devuelve la API.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}
