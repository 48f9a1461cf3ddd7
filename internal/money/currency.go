package money

import (
	"sort"
	"strings"
)

// SymbolPosition says on which side of the number a currency symbol is printed.
type SymbolPosition string

const (
	SymbolBefore SymbolPosition = "before"
	SymbolAfter  SymbolPosition = "after"
)

// Currency describes how amounts of one currency are stored and displayed.
type Currency struct {
	Code           string
	Name           string
	DecimalPlaces  int32
	Symbol         string
	SymbolPosition SymbolPosition
	Locale         string
}

var currencies = map[string]Currency{
	"KRW": {Code: "KRW", Name: "South Korean Won", DecimalPlaces: 0, Symbol: "₩", SymbolPosition: SymbolBefore, Locale: "ko-KR"},
	"USD": {Code: "USD", Name: "US Dollar", DecimalPlaces: 2, Symbol: "$", SymbolPosition: SymbolBefore, Locale: "en-US"},
	"EUR": {Code: "EUR", Name: "Euro", DecimalPlaces: 2, Symbol: "€", SymbolPosition: SymbolAfter, Locale: "de-DE"},
	"JPY": {Code: "JPY", Name: "Japanese Yen", DecimalPlaces: 0, Symbol: "¥", SymbolPosition: SymbolBefore, Locale: "ja-JP"},
	"GBP": {Code: "GBP", Name: "Pound Sterling", DecimalPlaces: 2, Symbol: "£", SymbolPosition: SymbolBefore, Locale: "en-GB"},
	"CNY": {Code: "CNY", Name: "Chinese Yuan", DecimalPlaces: 2, Symbol: "¥", SymbolPosition: SymbolBefore, Locale: "zh-CN"},
	"KWD": {Code: "KWD", Name: "Kuwaiti Dinar", DecimalPlaces: 3, Symbol: "KD", SymbolPosition: SymbolBefore, Locale: "ar-KW"},
}

// Lookup returns the currency registered under code, case-insensitively.
func Lookup(code string) (Currency, bool) {
	c, ok := currencies[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Currencies returns every known currency ordered by code.
func Currencies() []Currency {
	result := make([]Currency, 0, len(currencies))
	for _, c := range currencies {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}
