// Package currency provides ISO 4217 currency codes and per-currency metadata
// used for minor-unit arithmetic and display.
package currency

import (
	"errors"
	"regexp"
)

const (
	// DefaultCurrency is the fallback currency code (USD).
	DefaultCurrency = "USD"
	// DefaultDecimals is the default number of decimal places for currencies.
	DefaultDecimals = 2
)

// ErrInvalidCurrencyCode is returned when a currency code is not a well-formed
// ISO 4217 code.
var ErrInvalidCurrencyCode = errors.New("invalid currency code")

// ErrUnsupportedCurrency is returned when a currency code is well-formed but
// not registered.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Code represents an ISO 4217 currency code (e.g., "USD", "EUR").
type Code string

// String returns the code as a plain string.
func (c Code) String() string { return string(c) }

var codeFormat = regexp.MustCompile(`^[A-Z]{3}$`)

// IsValidFormat returns true if the code is three uppercase ASCII letters.
func IsValidFormat(code string) bool {
	return codeFormat.MatchString(code)
}

// Meta holds currency-specific metadata.
type Meta struct {
	Decimals int
	Symbol   string
}

// metas is the read-only default currency table. Registering new currencies
// at runtime is not supported; unknown well-formed codes fall back to
// DefaultDecimals via Get.
var metas = map[Code]Meta{
	"USD": {Decimals: 2, Symbol: "$"},
	"EUR": {Decimals: 2, Symbol: "€"},
	"JPY": {Decimals: 0, Symbol: "¥"},
	"KWD": {Decimals: 3, Symbol: "د.ك"},
	"EGP": {Decimals: 2, Symbol: "£"},
	"GBP": {Decimals: 2, Symbol: "£"},
	"HUF": {Decimals: 2, Symbol: "Ft"},
	"CAD": {Decimals: 2, Symbol: "C$"},
	"AUD": {Decimals: 2, Symbol: "A$"},
	"CHF": {Decimals: 2, Symbol: "CHF"},
	"CNY": {Decimals: 2, Symbol: "¥"},
	"INR": {Decimals: 2, Symbol: "₹"},
}

// Get returns the metadata for the given code. Well-formed but unregistered
// codes get DefaultDecimals and the code itself as symbol.
func Get(code string) (Meta, error) {
	if !IsValidFormat(code) {
		return Meta{}, ErrInvalidCurrencyCode
	}
	if meta, ok := metas[Code(code)]; ok {
		return meta, nil
	}
	return Meta{Decimals: DefaultDecimals, Symbol: code}, nil
}

// IsSupported reports whether the code is in the default currency table.
func IsSupported(code string) bool {
	_, ok := metas[Code(code)]
	return ok
}

// ListSupported returns all registered currency codes.
func ListSupported() []Code {
	codes := make([]Code, 0, len(metas))
	for c := range metas {
		codes = append(codes, c)
	}
	return codes
}
