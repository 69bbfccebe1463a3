package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrInputValidation agrupa todos los errores de entrada inválida.
// Siempre se devuelven al caller inmediato, nunca se reemplazan por defaults.
var ErrInputValidation = errors.New("invalid input")

var (
	ErrInvalidPrice       = fmt.Errorf("%w: price must be a finite number > 0", ErrInputValidation)
	ErrTooFewBets         = fmt.Errorf("%w: at least 2 bets are required", ErrInputValidation)
	ErrInvalidStake       = fmt.Errorf("%w: stake must be > 0", ErrInputValidation)
	ErrInvalidProbability = fmt.Errorf("%w: probability must be within [0, 100]", ErrInputValidation)
	ErrInvalidFraction    = fmt.Errorf("%w: kelly fraction must be within (0, 1]", ErrInputValidation)
	ErrUnsupportedMarket  = fmt.Errorf("%w: unsupported market key", ErrInputValidation)
)

// FetchKind clasifica el motivo de un fallo de proveedor.
type FetchKind string

const (
	FetchKindNetwork  FetchKind = "network"
	FetchKindStatus   FetchKind = "status"
	FetchKindSchema   FetchKind = "schema"
	FetchKindTimeout  FetchKind = "timeout"
	FetchKindCanceled FetchKind = "canceled"
)

// FetchError es el error tipado que devuelve un proveedor cuando no puede
// entregar un snapshot completo y válido.
type FetchError struct {
	Source     string
	Sport      string
	Kind       FetchKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s fetch failed (%s)", e.Source, e.Kind)
	if e.Sport != "" {
		msg += " sport=" + e.Sport
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status=%d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError clasifica err como timeout/canceled/network según el contexto.
func NewFetchError(source, sport string, err error) *FetchError {
	kind := FetchKindNetwork
	var te interface{ Timeout() bool }
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &te) && te.Timeout():
		kind = FetchKindTimeout
	case errors.Is(err, context.Canceled):
		kind = FetchKindCanceled
	}
	return &FetchError{Source: source, Sport: sport, Kind: kind, Err: err}
}
