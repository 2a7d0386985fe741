// Package rates holds the static exchange-rate table and the resolver that
// derives a rate for any pair of catalog currencies.
package rates

import "budgetup/internal/core"

// Pivot is the reference currency used when a pair has no direct entry.
const Pivot core.Code = "USD"

// Table maps from -> to -> multiplicative rate. Rates are directional and not
// guaranteed symmetric.
type Table map[core.Code]map[core.Code]float64

// Lookup returns the direct rate for from -> to.
func (t Table) Lookup(from, to core.Code) (float64, bool) {
	row, ok := t[from]
	if !ok {
		return 0, false
	}
	rate, ok := row[to]
	return rate, ok
}

// Pairs returns the number of directed entries.
func (t Table) Pairs() int {
	n := 0
	for _, row := range t {
		n += len(row)
	}
	return n
}

// DefaultTable returns a fresh copy of the built-in rate table.
//
// The first eleven rows are complete among themselves. CHF, CNY, ZAR, KES
// and SGD only carry legs to and from USD, so any other pair involving them
// resolves through the pivot.
func DefaultTable() Table {
	return Table{
		"USD": {"EUR": 0.85, "GBP": 0.73, "JPY": 110, "AUD": 1.35, "CAD": 1.25, "GHS": 12.0, "NGN": 460, "INR": 74, "BRL": 5.2, "MXN": 17.5,
			"CHF": 0.92, "CNY": 7.1, "ZAR": 18.5, "KES": 130, "SGD": 1.35},
		"EUR": {"USD": 1.18, "GBP": 0.86, "JPY": 130, "AUD": 1.59, "CAD": 1.47, "GHS": 14.1, "NGN": 542, "INR": 87, "BRL": 6.1, "MXN": 20.6},
		"GBP": {"USD": 1.37, "EUR": 1.16, "JPY": 151, "AUD": 1.85, "CAD": 1.71, "GHS": 16.4, "NGN": 630, "INR": 101, "BRL": 7.1, "MXN": 24.0},
		"GHS": {"USD": 0.083, "EUR": 0.071, "GBP": 0.061, "JPY": 9.2, "AUD": 0.112, "CAD": 0.104, "NGN": 38.3, "INR": 6.2, "BRL": 0.43, "MXN": 1.46},
		"NGN": {"USD": 0.0022, "EUR": 0.0018, "GBP": 0.0016, "JPY": 0.24, "AUD": 0.0029, "CAD": 0.0027, "GHS": 0.026, "INR": 0.16, "BRL": 0.011, "MXN": 0.038},
		"INR": {"USD": 0.014, "EUR": 0.011, "GBP": 0.0099, "JPY": 1.49, "AUD": 0.018, "CAD": 0.017, "GHS": 0.16, "NGN": 6.2, "BRL": 0.070, "MXN": 0.24},
		"BRL": {"USD": 0.19, "EUR": 0.16, "GBP": 0.14, "JPY": 21.2, "AUD": 0.26, "CAD": 0.24, "GHS": 2.33, "NGN": 88.4, "INR": 14.3, "MXN": 3.37},
		"MXN": {"USD": 0.057, "EUR": 0.049, "GBP": 0.042, "JPY": 6.3, "AUD": 0.077, "CAD": 0.071, "GHS": 0.68, "NGN": 26.2, "INR": 4.2, "BRL": 0.30},
		"JPY": {"USD": 0.0091, "EUR": 0.0077, "GBP": 0.0066, "AUD": 0.012, "CAD": 0.011, "GHS": 0.11, "NGN": 4.2, "INR": 0.67, "BRL": 0.047, "MXN": 0.16},
		"AUD": {"USD": 0.74, "EUR": 0.63, "GBP": 0.54, "JPY": 81.5, "CAD": 0.93, "GHS": 8.9, "NGN": 340, "INR": 55, "BRL": 3.9, "MXN": 13.0},
		"CAD": {"USD": 0.80, "EUR": 0.68, "GBP": 0.58, "JPY": 88, "AUD": 1.08, "GHS": 9.6, "NGN": 368, "INR": 59, "BRL": 4.2, "MXN": 14.0},

		"CHF": {"USD": 1.09},
		"CNY": {"USD": 0.14},
		"ZAR": {"USD": 0.054},
		"KES": {"USD": 0.0077},
		"SGD": {"USD": 0.74},
	}
}
