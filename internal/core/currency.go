package core

import (
	"errors"
	"fmt"
	"strings"
)

// Code is an ISO-4217 style currency identifier such as "USD" or "GHS".
type Code string

// DefaultCurrency is used whenever no user preference exists.
const DefaultCurrency Code = "USD"

// Currency describes one entry of the supported currency catalog.
type Currency struct {
	Code    Code
	Name    string
	Symbol  string
	Country string
}

var ErrInvalidCurrency = errors.New("invalid currency")

var catalog = []Currency{
	{"USD", "US Dollar", "$", "United States"},
	{"EUR", "Euro", "€", "European Union"},
	{"GBP", "British Pound", "£", "United Kingdom"},
	{"JPY", "Japanese Yen", "¥", "Japan"},
	{"AUD", "Australian Dollar", "A$", "Australia"},
	{"CAD", "Canadian Dollar", "C$", "Canada"},
	{"CHF", "Swiss Franc", "CHF", "Switzerland"},
	{"CNY", "Chinese Yuan", "¥", "China"},
	{"SEK", "Swedish Krona", "kr", "Sweden"},
	{"NZD", "New Zealand Dollar", "NZ$", "New Zealand"},

	// Africa
	{"GHS", "Ghanaian Cedi", "₵", "Ghana"},
	{"NGN", "Nigerian Naira", "₦", "Nigeria"},
	{"ZAR", "South African Rand", "R", "South Africa"},
	{"KES", "Kenyan Shilling", "KSh", "Kenya"},
	{"UGX", "Ugandan Shilling", "USh", "Uganda"},
	{"TZS", "Tanzanian Shilling", "TSh", "Tanzania"},
	{"EGP", "Egyptian Pound", "£", "Egypt"},
	{"MAD", "Moroccan Dirham", "DH", "Morocco"},
	{"ETB", "Ethiopian Birr", "Br", "Ethiopia"},
	{"XOF", "West African CFA Franc", "CFA", "West Africa"},

	// Asia
	{"INR", "Indian Rupee", "₹", "India"},
	{"KRW", "South Korean Won", "₩", "South Korea"},
	{"SGD", "Singapore Dollar", "S$", "Singapore"},
	{"HKD", "Hong Kong Dollar", "HK$", "Hong Kong"},
	{"MYR", "Malaysian Ringgit", "RM", "Malaysia"},
	{"THB", "Thai Baht", "฿", "Thailand"},
	{"PHP", "Philippine Peso", "₱", "Philippines"},
	{"IDR", "Indonesian Rupiah", "Rp", "Indonesia"},
	{"VND", "Vietnamese Dong", "₫", "Vietnam"},
	{"PKR", "Pakistani Rupee", "₨", "Pakistan"},
	{"BDT", "Bangladeshi Taka", "৳", "Bangladesh"},
	{"LKR", "Sri Lankan Rupee", "₨", "Sri Lanka"},

	// Middle East
	{"AED", "UAE Dirham", "د.إ", "United Arab Emirates"},
	{"SAR", "Saudi Riyal", "﷼", "Saudi Arabia"},
	{"QAR", "Qatari Riyal", "﷼", "Qatar"},
	{"KWD", "Kuwaiti Dinar", "د.ك", "Kuwait"},
	{"BHD", "Bahraini Dinar", ".د.ب", "Bahrain"},
	{"OMR", "Omani Rial", "﷼", "Oman"},
	{"JOD", "Jordanian Dinar", "د.ا", "Jordan"},
	{"ILS", "Israeli Shekel", "₪", "Israel"},
	{"TRY", "Turkish Lira", "₺", "Turkey"},

	// Latin America
	{"BRL", "Brazilian Real", "R$", "Brazil"},
	{"MXN", "Mexican Peso", "$", "Mexico"},
	{"ARS", "Argentine Peso", "$", "Argentina"},
	{"CLP", "Chilean Peso", "$", "Chile"},
	{"COP", "Colombian Peso", "$", "Colombia"},
	{"PEN", "Peruvian Sol", "S/", "Peru"},
	{"UYU", "Uruguayan Peso", "$U", "Uruguay"},
	{"VES", "Venezuelan Bolívar", "Bs.S", "Venezuela"},

	// Europe outside the euro area
	{"NOK", "Norwegian Krone", "kr", "Norway"},
	{"DKK", "Danish Krone", "kr", "Denmark"},
	{"PLN", "Polish Zloty", "zł", "Poland"},
	{"CZK", "Czech Koruna", "Kč", "Czech Republic"},
	{"HUF", "Hungarian Forint", "Ft", "Hungary"},
	{"RON", "Romanian Leu", "lei", "Romania"},
	{"BGN", "Bulgarian Lev", "лв", "Bulgaria"},
	{"HRK", "Croatian Kuna", "kn", "Croatia"},
	{"RSD", "Serbian Dinar", "дин", "Serbia"},
	{"RUB", "Russian Ruble", "₽", "Russia"},
	{"UAH", "Ukrainian Hryvnia", "₴", "Ukraine"},

	// Others
	{"ISK", "Icelandic Krona", "kr", "Iceland"},
	{"NIO", "Nicaraguan Córdoba", "C$", "Nicaragua"},
	{"CRC", "Costa Rican Colón", "₡", "Costa Rica"},
	{"GTQ", "Guatemalan Quetzal", "Q", "Guatemala"},
	{"HNL", "Honduran Lempira", "L", "Honduras"},
	{"PAB", "Panamanian Balboa", "B/.", "Panama"},
	{"DOP", "Dominican Peso", "RD$", "Dominican Republic"},
	{"JMD", "Jamaican Dollar", "J$", "Jamaica"},
	{"TTD", "Trinidad Dollar", "TT$", "Trinidad and Tobago"},
	{"BBD", "Barbadian Dollar", "Bds$", "Barbados"},
}

var byCode = func() map[Code]Currency {
	m := make(map[Code]Currency, len(catalog))
	for _, c := range catalog {
		m[c.Code] = c
	}
	return m
}()

// Currencies returns the supported catalog in display order.
func Currencies() []Currency {
	out := make([]Currency, len(catalog))
	copy(out, catalog)
	return out
}

// LookupCurrency returns the catalog entry for code.
func LookupCurrency(code Code) (Currency, bool) {
	c, ok := byCode[code]
	return c, ok
}

// IsSupported reports whether code belongs to the catalog.
func (c Code) IsSupported() bool {
	_, ok := byCode[c]
	return ok
}

// Symbol returns the catalog symbol, or the code itself when unknown.
func (c Code) Symbol() string {
	if cur, ok := byCode[c]; ok {
		return cur.Symbol
	}
	return string(c)
}

// Name returns the catalog name, or the code itself when unknown.
func (c Code) Name() string {
	if cur, ok := byCode[c]; ok {
		return cur.Name
	}
	return string(c)
}

func (c Code) String() string { return string(c) }

// ParseCode normalizes s and checks it against the catalog.
func ParseCode(s string) (Code, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("%w: empty currency code", ErrInvalidCurrency)
	}
	code := Code(s)
	if !code.IsSupported() {
		return "", fmt.Errorf("%w: unsupported currency code %q", ErrInvalidCurrency, s)
	}
	return code, nil
}
