package storage

// sqlite.go — persistencia de lo que el core entrega al exterior.
//
// Estrategia:
//   - `price_history`: una fila por (evento, bookmaker, outcome) SOLO cuando el
//     precio cambió respecto a lo último guardado. La cache en memoria evita
//     reescribir precios idénticos ciclo tras ciclo.
//   - `last_opportunities`: una única fila con la última lista en JSON, para
//     servirla cuando todas las fuentes fallan.
//   - `settings`: store clave/valor; las preferencias del merge viven aquí.
//   - Prune automático al arrancar: price_history > 14d.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/alejandrodnm/surebet/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS price_history (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id    TEXT     NOT NULL,
    bookmaker   TEXT     NOT NULL,
    outcome     TEXT     NOT NULL,
    price       REAL     NOT NULL,
    recorded_at DATETIME NOT NULL
);

-- Siempre una sola fila (id = 1)
CREATE TABLE IF NOT EXISTS last_opportunities (
    id           INTEGER PRIMARY KEY CHECK (id = 1),
    generated_at DATETIME NOT NULL,
    payload      TEXT     NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key        TEXT PRIMARY KEY,
    value      TEXT     NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_price_key ON price_history(event_id, bookmaker, outcome, recorded_at DESC);
CREATE INDEX IF NOT EXISTS idx_price_at  ON price_history(recorded_at DESC);
`

const retentionPrices = 14 * 24 * time.Hour

// Keys de settings en la tabla KV.
const (
	keyShowMockData = "show_mock_data"
	keyShowLiveData = "show_live_data"
	keyMockMode     = "mock_mode"
	keyCacheTimeout = "cache_timeout_seconds"
)

// priceKey identifica una serie de precios.
type priceKey struct {
	eventID, bookmaker, outcome string
}

// SQLiteStorage implementa ports.Storage y ports.SettingsStore usando SQLite
// (pure Go, sin CGo).
type SQLiteStorage struct {
	db    *sql.DB
	cache map[priceKey]float64 // último precio guardado por serie
	mu    sync.Mutex
}

var (
	_ ports.Storage       = (*SQLiteStorage)(nil)
	_ ports.SettingsStore = (*SQLiteStorage)(nil)
)

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema, limpia datos antiguos y precarga la cache.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{
		db:    db,
		cache: make(map[priceKey]float64),
	}
	s.pruneOld(context.Background())
	s.warmCache(context.Background())
	return s, nil
}

// SavePriceHistory guarda los precios que cambiaron desde la última escritura.
func (s *SQLiteStorage) SavePriceHistory(ctx context.Context, records []domain.PriceRecord) error {
	toWrite := s.filterChanged(records)
	if len(toWrite) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SavePriceHistory: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_history (event_id, bookmaker, outcome, price, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SavePriceHistory: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range toWrite {
		if _, err := stmt.ExecContext(ctx, r.EventID, r.Bookmaker, r.Outcome, r.Price, r.Timestamp.UTC()); err != nil {
			s.forget(toWrite)
			return fmt.Errorf("storage.SavePriceHistory: insert %s/%s: %w", r.EventID, r.Bookmaker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.forget(toWrite)
		return fmt.Errorf("storage.SavePriceHistory: commit: %w", err)
	}
	return nil
}

// PriceSeries devuelve el histórico de un evento en orden cronológico.
func (s *SQLiteStorage) PriceSeries(ctx context.Context, eventID string) ([]domain.PriceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, bookmaker, outcome, price, recorded_at
		FROM price_history
		WHERE event_id = ?
		ORDER BY recorded_at ASC, id ASC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("storage.PriceSeries: query: %w", err)
	}
	defer rows.Close()

	var out []domain.PriceRecord
	for rows.Next() {
		var r domain.PriceRecord
		if err := rows.Scan(&r.EventID, &r.Bookmaker, &r.Outcome, &r.Price, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("storage.PriceSeries: scan row: %w", err)
		}
		r.Timestamp = r.Timestamp.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveOpportunities reemplaza la última lista conocida.
func (s *SQLiteStorage) SaveOpportunities(ctx context.Context, set domain.OpportunitySet) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("storage.SaveOpportunities: encode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO last_opportunities (id, generated_at, payload) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			generated_at = excluded.generated_at,
			payload      = excluded.payload
	`, set.GeneratedAt.UTC(), string(payload)); err != nil {
		return fmt.Errorf("storage.SaveOpportunities: upsert: %w", err)
	}
	return nil
}

// LastOpportunities devuelve la última lista guardada. ok=false si no hay.
func (s *SQLiteStorage) LastOpportunities(ctx context.Context) (domain.OpportunitySet, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM last_opportunities WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.OpportunitySet{}, false, nil
	}
	if err != nil {
		return domain.OpportunitySet{}, false, fmt.Errorf("storage.LastOpportunities: query: %w", err)
	}

	var set domain.OpportunitySet
	if err := json.Unmarshal([]byte(payload), &set); err != nil {
		return domain.OpportunitySet{}, false, fmt.Errorf("storage.LastOpportunities: decode: %w", err)
	}
	return set, true, nil
}

// GetValue lee una key del store KV. ok=false si no existe.
func (s *SQLiteStorage) GetValue(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage.GetValue %q: %w", key, err)
	}
	return v, true, nil
}

// PutValue crea o sobrescribe una key.
func (s *SQLiteStorage) PutValue(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, upsertSetting, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("storage.PutValue %q: %w", key, err)
	}
	return nil
}

// DeleteValue elimina una key. No es error si no existía.
func (s *SQLiteStorage) DeleteValue(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("storage.DeleteValue %q: %w", key, err)
	}
	return nil
}

const upsertSetting = `
	INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value      = excluded.value,
		updated_at = excluded.updated_at
`

// Settings implementa ports.SettingsStore. Las keys ausentes o ilegibles
// toman el valor por defecto.
func (s *SQLiteStorage) Settings(ctx context.Context) (domain.Settings, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("storage.Settings: query: %w", err)
	}
	defer rows.Close()

	st := domain.DefaultSettings()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return domain.Settings{}, fmt.Errorf("storage.Settings: scan row: %w", err)
		}
		switch k {
		case keyShowMockData:
			st.ShowMockData = parseBool(v, st.ShowMockData)
		case keyShowLiveData:
			st.ShowLiveData = parseBool(v, st.ShowLiveData)
		case keyMockMode:
			st.MockMode = parseBool(v, st.MockMode)
		case keyCacheTimeout:
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				st.CacheTimeoutSeconds = n
			}
		}
	}
	return st, rows.Err()
}

// SaveSettings guarda todos los campos en una transacción.
func (s *SQLiteStorage) SaveSettings(ctx context.Context, st domain.Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSettings: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	values := map[string]string{
		keyShowMockData: strconv.FormatBool(st.ShowMockData),
		keyShowLiveData: strconv.FormatBool(st.ShowLiveData),
		keyMockMode:     strconv.FormatBool(st.MockMode),
		keyCacheTimeout: strconv.Itoa(st.CacheTimeoutSeconds),
	}
	for k, v := range values {
		if _, err := tx.ExecContext(ctx, upsertSetting, k, v, now); err != nil {
			return fmt.Errorf("storage.SaveSettings: upsert %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSettings: commit: %w", err)
	}
	return nil
}

// SeedSettings guarda st solo si el store todavía no tiene settings.
// Devuelve true si sembró.
func (s *SQLiteStorage) SeedSettings(ctx context.Context, st domain.Settings) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings WHERE key = ?`, keyCacheTimeout).Scan(&n); err != nil {
		return false, fmt.Errorf("storage.SeedSettings: count: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if err := s.SaveSettings(ctx, st); err != nil {
		return false, err
	}
	return true, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// filterChanged devuelve los registros cuyo precio difiere del último guardado
// y actualiza la cache con el nuevo valor.
func (s *SQLiteStorage) filterChanged(records []domain.PriceRecord) []domain.PriceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var toWrite []domain.PriceRecord
	for _, r := range records {
		k := priceKey{r.EventID, r.Bookmaker, r.Outcome}
		if prev, ok := s.cache[k]; ok && prev == r.Price {
			continue
		}
		toWrite = append(toWrite, r)
		s.cache[k] = r.Price
	}
	return toWrite
}

// forget saca de la cache registros que no llegaron a disco, para que el
// siguiente ciclo los reintente.
func (s *SQLiteStorage) forget(records []domain.PriceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		delete(s.cache, priceKey{r.EventID, r.Bookmaker, r.Outcome})
	}
}

// pruneOld elimina histórico antiguo para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionPrices)
	s.db.ExecContext(ctx, `DELETE FROM price_history WHERE recorded_at < ?`, cutoff)
}

// warmCache precarga el último precio de cada serie, evitando escrituras
// redundantes en el primer ciclo tras un reinicio.
func (s *SQLiteStorage) warmCache(ctx context.Context) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.event_id, p.bookmaker, p.outcome, p.price
		FROM price_history p
		WHERE p.id = (
			SELECT MAX(id) FROM price_history q
			WHERE q.event_id = p.event_id AND q.bookmaker = p.bookmaker AND q.outcome = p.outcome
		)
	`)
	if err != nil {
		return
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var k priceKey
		var price float64
		if rows.Scan(&k.eventID, &k.bookmaker, &k.outcome, &price) == nil {
			s.cache[k] = price
		}
	}
}

func parseBool(v string, def bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
