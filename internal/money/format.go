package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Format renders minor units with the currency symbol and the locale's digit
// grouping, e.g. "$1,234.56" or "-₩15,000". The sign always leads.
func Format(minorUnit int64, currency Currency) string {
	tag, err := language.Parse(currency.Locale)
	if err != nil {
		tag = language.English
	}
	printer := message.NewPrinter(tag)

	// uint64 negation keeps math.MinInt64 exact.
	magnitude := uint64(minorUnit)
	if minorUnit < 0 {
		magnitude = -magnitude
	}
	scale := uint64(1)
	for i := int32(0); i < currency.DecimalPlaces; i++ {
		scale *= 10
	}

	// The whole part goes through the integer formatter so no digit is lost.
	formatted := printer.Sprint(number.Decimal(magnitude / scale))
	if currency.DecimalPlaces > 0 {
		formatted += fractionText(printer, magnitude%scale, scale, currency.DecimalPlaces)
	}

	sign := ""
	if minorUnit < 0 {
		sign = "-"
	}

	if currency.SymbolPosition == SymbolAfter {
		return sign + formatted + currency.Symbol
	}
	return sign + currency.Symbol + formatted
}

// fractionText returns the locale's decimal separator followed by the
// fraction digits. It formats 1.<fraction>, which is exact in a float64 at
// these scales, and drops the leading one.
func fractionText(printer *message.Printer, fraction, scale uint64, places int32) string {
	text := []rune(printer.Sprint(number.Decimal(1+float64(fraction)/float64(scale), number.Scale(int(places)))))
	return string(text[1:])
}
