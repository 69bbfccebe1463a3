package domain

import "strconv"

// LineBets son las mejores cuotas de una sola línea de un mercado. En h2h hay
// una única línea con Line vacío.
type LineBets struct {
	Line string
	Bets []Bet
}

// SelectBestPrices extrae, para cada outcome del mercado, el mejor precio
// disponible entre todos los bookmakers del evento.
//
// Reglas:
//   - Los outcomes salen en el orden en que aparecen por primera vez.
//   - Empate de precio: gana el bookmaker con key lexicográficamente menor,
//     así el resultado no depende del orden en que el proveedor lista las casas.
//   - Outcomes sin ningún precio > 0 se descartan.
//   - Mercado ausente → slice vacío. No es un error: significa "sin datos".
//
// En spreads/totals la línea forma parte del outcome ("Over 220.5"): precios de
// líneas distintas no son comparables. El resultado mezcla todas las líneas,
// así que no sirve para evaluar arbitraje: para eso está SelectBestPricesByLine.
func SelectBestPrices(event Event, marketKey string) []Bet {
	var bets []Bet
	for _, lb := range SelectBestPricesByLine(event, marketKey) {
		bets = append(bets, lb.Bets...)
	}
	if bets == nil {
		bets = []Bet{}
	}
	return bets
}

// SelectBestPricesByLine aplica las reglas de SelectBestPrices pero agrupa los
// outcomes por línea, de modo que cada grupo cubre todos los resultados posibles:
//   - totals: Over y Under con el mismo punto.
//   - spreads: cada lado con el punto opuesto del otro (Home -3.5 / Away +3.5).
//
// Los grupos salen en orden de primera aparición. Un grupo puede quedar con una
// sola pata si ningún bookmaker ofrece el lado contrario.
func SelectBestPricesByLine(event Event, marketKey string) []LineBets {
	var (
		lines   []string
		byLine  = make(map[string][]string)
		seen    = make(map[string]bool)
		best    = make(map[string]Bet)
		refSide string
	)

	for _, b := range event.Bookmakers {
		m, ok := b.Market(marketKey)
		if !ok {
			continue
		}
		for _, o := range m.Outcomes {
			if refSide == "" {
				refSide = o.Name
			}
			name := outcomeKey(marketKey, o)
			if !seen[name] {
				seen[name] = true
				line := lineKey(marketKey, refSide, o)
				if _, ok := byLine[line]; !ok {
					lines = append(lines, line)
				}
				byLine[line] = append(byLine[line], name)
			}
			if !validPrice(o.Price) {
				continue
			}
			cur, ok := best[name]
			if !ok || o.Price > cur.Price || (o.Price == cur.Price && b.Key < cur.Source) {
				best[name] = Bet{Source: b.Key, Outcome: name, Price: o.Price}
			}
		}
	}

	out := make([]LineBets, 0, len(lines))
	for _, line := range lines {
		var bets []Bet
		for _, name := range byLine[line] {
			if bet := best[name]; bet.Price > 0 {
				bets = append(bets, bet)
			}
		}
		if len(bets) > 0 {
			out = append(out, LineBets{Line: line, Bets: bets})
		}
	}
	return out
}

func outcomeKey(marketKey string, o Outcome) string {
	if (marketKey == MarketSpreads || marketKey == MarketTotals) && o.Point != 0 {
		return o.Name + " " + formatPoint(o.Point)
	}
	return o.Name
}

// lineKey identifica la línea de un outcome. En spreads el punto se expresa
// desde el lado de referencia (el primer outcome visto), así ambos lados de
// una misma línea comparten key.
func lineKey(marketKey, refSide string, o Outcome) string {
	switch marketKey {
	case MarketTotals:
		p := o.Point
		if p < 0 {
			p = -p
		}
		return formatPoint(p)
	case MarketSpreads:
		p := o.Point
		if o.Name != refSide {
			p = -p
		}
		return formatPoint(p)
	}
	return ""
}

func formatPoint(p float64) string {
	if p == 0 {
		// -0 y 0 son la misma línea
		return "0"
	}
	return strconv.FormatFloat(p, 'f', -1, 64)
}
