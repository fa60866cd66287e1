package internal

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency is used when neither a flag, the config nor the data source
// names a currency.
const DefaultCurrency = "ILS"

// Currency formats money amounts for one currency and locale.
type Currency struct {
	Code    string // "ILS", "USD", "EUR"
	unit    currency.Unit
	symbol  string
	printer *message.Printer
}

// symbolOverrides provides custom symbols where x/text defaults aren't ideal
var symbolOverrides = map[string]string{
	"ILS": "₪",
	"JOD": "JD",
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
}

// defaultLocaleForCurrency is the "home" locale used for --currency without a
// detected system locale.
var defaultLocaleForCurrency = map[string]language.Tag{
	"ILS": language.MustParse("he-IL"),
	"USD": language.AmericanEnglish,
	"EUR": language.German,
	"GBP": language.BritishEnglish,
	"JOD": language.MustParse("ar-JO"),
	"EGP": language.MustParse("ar-EG"),
	"AED": language.MustParse("ar-AE"),
	"SAR": language.MustParse("ar-SA"),
	"TRY": language.Turkish,
	"SEK": language.Swedish,
	"NOK": language.Norwegian,
	"DKK": language.Danish,
	"CHF": language.German,
	"CAD": language.CanadianFrench,
}

// detectedLocale stores the system locale when auto-detected, so we can use it for formatting
var detectedLocale language.Tag

// GetCurrency returns the Currency for a given code. Unknown codes still
// format, with the code itself as the symbol.
func GetCurrency(code string) Currency {
	code = strings.ToUpper(strings.TrimSpace(code))

	var tag language.Tag
	if detectedLocale != language.Und {
		tag = detectedLocale
	} else if t, ok := defaultLocaleForCurrency[code]; ok {
		tag = t
	} else {
		tag = language.English
	}
	return GetCurrencyWithLocale(code, tag)
}

// GetCurrencyWithLocale returns a Currency with a specific locale for formatting.
func GetCurrencyWithLocale(code string, tag language.Tag) Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	printer := message.NewPrinter(tag)

	c := Currency{Code: code, printer: printer}
	unit, err := currency.ParseISO(code)
	switch {
	case err != nil:
		c.unit = currency.USD
		c.symbol = code
	case symbolOverrides[code] != "":
		c.unit = unit
		c.symbol = symbolOverrides[code]
	default:
		c.unit = unit
		c.symbol = printer.Sprint(currency.NarrowSymbol(unit))
	}
	return c
}

func parseISOCurrency(code string) (currency.Unit, error) {
	return currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
}

// DetectSystemCurrency attempts to detect the currency from the OS locale
// (LC_MONETARY, LC_ALL, LANG). Returns empty string if detection fails.
// Also sets detectedLocale for use in formatting.
func DetectSystemCurrency() string {
	locale := detectSystemLocale()
	if locale == "" {
		return ""
	}

	currCode, tag := parseCurrencyFromLocale(locale)
	if currCode != "" {
		detectedLocale = tag
		return currCode
	}
	return ""
}

// ResolveCurrency picks the first non-empty code of flag, config and data
// source, then the system locale, then DefaultCurrency.
func ResolveCurrency(codes ...string) Currency {
	for _, code := range codes {
		if strings.TrimSpace(code) != "" {
			return GetCurrency(code)
		}
	}
	if code := DetectSystemCurrency(); code != "" {
		return GetCurrency(code)
	}
	return GetCurrency(DefaultCurrency)
}

// parseCurrencyFromLocale maps a POSIX locale such as "he_IL.UTF-8" or
// "ar_JO@latin" to the region's currency and the matching language tag.
func parseCurrencyFromLocale(locale string) (string, language.Tag) {
	name, _, _ := strings.Cut(locale, ".")
	name, _, _ = strings.Cut(name, "@")

	tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		return "", language.Und
	}
	region, conf := tag.Region()
	if conf != language.Exact {
		return "", language.Und
	}
	unit, ok := currency.FromRegion(region)
	if !ok {
		return "", language.Und
	}
	return unit.String(), tag
}

// isPrefix returns true if this currency symbol should be placed before the amount.
// x/text/currency doesn't expose CLDR symbol positioning, so prefix currencies
// are listed by hand.
func (c Currency) isPrefix() bool {
	switch c.Code {
	case "USD", "GBP", "CAD", "AUD", "NZD", "HKD", "SGD":
		return true
	default:
		return false
	}
}

// Number formats an amount with two fraction digits and no symbol.
func (c Currency) Number(amount decimal.Decimal) string {
	return c.printer.Sprint(number.Decimal(
		amount.Round(2).InexactFloat64(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// Format formats a single amount with the currency symbol
func (c Currency) Format(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + c.Format(amount.Neg())
	}
	formatted := c.Number(amount)
	if c.isPrefix() {
		return c.symbol + formatted
	}
	return formatted + " " + c.symbol
}

// Symbol returns the display symbol of the currency.
func (c Currency) Symbol() string {
	return c.symbol
}
