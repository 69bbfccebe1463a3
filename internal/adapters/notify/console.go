package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/alejandrodnm/surebet/internal/ports"
	"github.com/olekukonko/tablewriter"
)

// Formatos de salida soportados.
const (
	FormatCompact = "compact"
	FormatTable   = "table"
	FormatJSON    = "json"
)

// Console implementa ports.Notifier.
type Console struct {
	out      io.Writer
	format   string
	validate bool
	now      func() time.Time
}

var _ ports.Notifier = (*Console)(nil)

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(format string, validate bool) *Console {
	return NewConsoleWriter(os.Stdout, format, validate)
}

// NewConsoleWriter crea un notificador sobre w. Usado en tests.
func NewConsoleWriter(w io.Writer, format string, validate bool) *Console {
	switch format {
	case FormatCompact, FormatTable, FormatJSON:
	default:
		format = FormatTable
	}
	return &Console{out: w, format: format, validate: validate, now: time.Now}
}

// Notify imprime el set en el formato configurado.
func (c *Console) Notify(_ context.Context, set domain.OpportunitySet) error {
	if c.format == FormatJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(set); err != nil {
			return fmt.Errorf("notify.Notify: encode: %w", err)
		}
		return nil
	}

	ts := c.now().Format("15:04:05")
	if len(set.Opportunities) == 0 {
		fmt.Fprintf(c.out, "[%s] no opportunities found%s\n", ts, sourcesLabel(set))
		return nil
	}

	switch c.format {
	case FormatCompact:
		c.printCompact(ts, set)
	default:
		c.printFull(ts, set)
	}

	if c.validate {
		c.printValidation(set.Opportunities)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(ts string, set domain.OpportunitySet) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d surebets%s", ts, set.Count, sourcesLabel(set))

	for i, opp := range set.Opportunities {
		if i >= 4 {
			break
		}
		fmt.Fprintf(&sb, " | %s +%.2f%% (%s)",
			compactName(opp.EventName, 28), opp.ProfitPercentage, strings.Join(opp.Bookmakers(), "/"))
	}
	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla con una fila por oportunidad.
func (c *Console) printFull(ts string, set domain.OpportunitySet) {
	fmt.Fprintf(c.out, "\n[%s] %d surebets%s\n", ts, set.Count, sourcesLabel(set))
	if set.IsFromCache {
		fmt.Fprintf(c.out, "  (cached data, %.1f min old)\n", set.CacheAgeMinutes)
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Src", "Event", "Market", "Start", "Legs", "Profit%", "ROI%", "Stake", "Profit$")

	for i, opp := range set.Opportunities {
		table.Append(
			fmt.Sprintf("%d", i+1),
			string(opp.Source),
			truncate(opp.EventName, 38),
			opp.MarketLabel(),
			startLabel(opp.CommenceTime, c.now()),
			legsLabel(opp.Bets),
			fmt.Sprintf("%.2f", opp.ProfitPercentage),
			fmt.Sprintf("%.2f", opp.ReturnOnStake),
			fmt.Sprintf("$%.2f", opp.TotalStake),
			fmt.Sprintf("$%.2f", opp.GuaranteedProfit),
		)
	}
	table.Render()

	fmt.Fprintln(c.out, "  Profit% = 100 - Σ(1/price)·100 | ROI% = beneficio sobre el capital apostado")
}

// printValidation imprime el reparto paso a paso de las 3 mejores.
func (c *Console) printValidation(opps []domain.Opportunity) {
	top := opps
	if len(top) > 3 {
		top = opps[:3]
	}

	fmt.Fprintln(c.out, "=== STAKING: step-by-step ===")
	for i, opp := range top {
		fmt.Fprintf(c.out, "\n--- #%d: %s [%s] [%s] ---\n", i+1, opp.EventName, opp.MarketLabel(), opp.Source)
		var total float64
		for _, b := range opp.Bets {
			p := 100 / b.Price
			total += p
			fmt.Fprintf(c.out, "  %-24s @ %-6.2f %-14s implied=%6.2f%%  stake=$%8.2f  payout=$%8.2f\n",
				truncate(b.Outcome, 24), b.Price, b.Source, p, b.Stake, b.Payout)
		}
		fmt.Fprintf(c.out, "  Σ implied = %.2f%%  → profit %.2f%% ($%.2f on $%.2f)\n",
			total, opp.ProfitPercentage, opp.GuaranteedProfit, opp.TotalStake)
	}
	fmt.Fprintln(c.out)
}

// --- helpers ---

func sourcesLabel(set domain.OpportunitySet) string {
	if len(set.Sources) == 0 {
		return ""
	}
	parts := make([]string, 0, len(set.Sources))
	for _, s := range set.Sources {
		if s.Err != "" {
			parts = append(parts, fmt.Sprintf("%s:FAIL", s.Name))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%d", s.Source, s.Opportunities))
	}
	return " [" + strings.Join(parts, " ") + "]"
}

func legsLabel(bets []domain.StakedBet) string {
	parts := make([]string, len(bets))
	for i, b := range bets {
		parts[i] = fmt.Sprintf("%s %.2f@%s", truncate(b.Outcome, 14), b.Price, b.Source)
	}
	return strings.Join(parts, "\n")
}

func startLabel(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	hours := t.Sub(now).Hours()
	if hours < 0 {
		return "live"
	}
	if hours < 48 {
		return fmt.Sprintf("%s (%.0fh)", t.Format("01-02 15:04"), hours)
	}
	return t.Format("2006-01-02")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func compactName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
