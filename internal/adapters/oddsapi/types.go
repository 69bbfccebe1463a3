package oddsapi

// DTOs raw de The Odds API. Solo se usan dentro de este paquete.
// La validación y conversión a domain se hace en mapping.go.
//
// Los campos obligatorios son punteros para poder distinguir "ausente" de
// "vacío" al validar la forma de la respuesta.

// eventDTO es un item de GET /v4/sports/{sport}/odds.
type eventDTO struct {
	ID           *string         `json:"id"`
	SportKey     *string         `json:"sport_key"`
	SportTitle   string          `json:"sport_title"`
	CommenceTime *string         `json:"commence_time"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Bookmakers   *[]bookmakerDTO `json:"bookmakers"`
}

// bookmakerDTO son los mercados de una casa para el evento.
type bookmakerDTO struct {
	Key        *string      `json:"key"`
	Title      string       `json:"title"`
	LastUpdate string       `json:"last_update"`
	Markets    *[]marketDTO `json:"markets"`
}

// marketDTO es un mercado (h2h, spreads, totals...) de un bookmaker.
type marketDTO struct {
	Key      *string       `json:"key"`
	Outcomes *[]outcomeDTO `json:"outcomes"`
}

// outcomeDTO es un resultado con su cuota decimal.
type outcomeDTO struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
	Point *float64 `json:"point,omitempty"`
}
