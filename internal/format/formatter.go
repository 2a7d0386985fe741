// Package format renders monetary amounts as display strings.
//
// The primary path is locale aware and built on golang.org/x/text. When the
// locale cannot be parsed or the currency is unknown to x/text, the amount is
// rendered as the catalog symbol followed by a grouped two-decimal number.
//
// Only digits and separators follow the locale. The symbol is always placed
// before the number with the sign in front of it, so de-DE renders
// "€1.234,56" rather than "1.234,56 €".
package format

import (
	"fmt"
	"math"

	money "github.com/Rhymond/go-money"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"budgetup/internal/core"
	"budgetup/internal/log"
)

const (
	DefaultLocale  = "en-US"
	fractionDigits = 2
)

// Formatter renders amounts. It holds no mutable state and is safe for
// concurrent use.
type Formatter struct {
	locale string
	logger *log.Logger
}

type Option func(*Formatter)

// WithLocale sets the locale used when Format is called with an empty one.
func WithLocale(locale string) Option {
	return func(f *Formatter) {
		if locale != "" {
			f.locale = locale
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(f *Formatter) { f.logger = l }
}

func New(opts ...Option) *Formatter {
	f := &Formatter{locale: DefaultLocale}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = log.OrDefault(f.logger).WithComponent(log.ComponentFormat)
	return f
}

// Locale returns the default locale of f.
func (f *Formatter) Locale() string { return f.locale }

// Format renders amount in code with exactly two fraction digits. Negative
// amounts carry a leading minus sign. It never fails.
func (f *Formatter) Format(amount float64, code core.Code, locale string) (out string) {
	if locale == "" {
		locale = f.locale
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("Formatting panicked, using plain rendering",
				log.FieldCurrency, string(code), "locale", locale, "panic", r)
			out = Plain(amount, code)
		}
	}()

	tag, tagErr := language.Parse(locale)
	if tagErr != nil {
		f.logger.Debug("Unparseable locale, using symbol fallback",
			"locale", locale, log.FieldError, tagErr)
		return fallback(amount, code)
	}

	unit, unitErr := currency.ParseISO(string(code))
	if unitErr != nil {
		f.logger.Debug("Currency unknown to locale formatter, using symbol fallback",
			log.FieldCurrency, string(code))
		return sign(amount) + Symbol(code) + localNumber(message.NewPrinter(tag), amount)
	}

	p := message.NewPrinter(tag)
	return sign(amount) + p.Sprint(currency.NarrowSymbol(unit)) + localNumber(p, amount)
}

// Symbol returns the display symbol for code: the catalog symbol, else the
// go-money grapheme, else the code itself.
func Symbol(code core.Code) string {
	if s := code.Symbol(); s != "" {
		return s
	}
	if c := money.GetCurrency(string(code)); c != nil && c.Grapheme != "" {
		return c.Grapheme
	}
	return string(code)
}

// Plain renders symbol + amount with two decimals and no grouping. It is the
// last resort when every other path has failed.
func Plain(amount float64, code core.Code) string {
	return fmt.Sprintf("%s%s%.2f", sign(amount), Symbol(code), math.Abs(amount))
}

func localNumber(p *message.Printer, amount float64) string {
	return p.Sprint(number.Decimal(math.Abs(amount), number.Scale(fractionDigits)))
}

// fallback groups with "," and "." regardless of locale. Amounts whose
// minor units do not fit in an int64 go through an English printer instead
// of go-money.
func fallback(amount float64, code core.Code) string {
	minor, ok := toMinor(amount)
	if !ok {
		return sign(amount) + Symbol(code) + localNumber(message.NewPrinter(language.English), amount)
	}
	mf := money.NewFormatter(fractionDigits, ".", ",", Symbol(code), "$1")
	return mf.Format(minor)
}

// toMinor reports false when amount in minor units is outside the int64
// range. math.MinInt64 is rejected too since it has no positive counterpart.
func toMinor(amount float64) (int64, bool) {
	v := math.Round(amount * math.Pow10(fractionDigits))
	if v >= math.MaxInt64 || v <= math.MinInt64 {
		return 0, false
	}
	return int64(v), true
}

// sign is "-" for amounts that are still negative after rounding to cents.
func sign(amount float64) string {
	if amount < 0 && math.Round(math.Abs(amount)*math.Pow10(fractionDigits)) != 0 {
		return "-"
	}
	return ""
}
