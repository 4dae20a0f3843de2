package domain

import "strings"

// BaseCurrency is the fixed base for all exchange-rate lookups: rates are
// expressed as units of foreign currency per 1 HKD.
const BaseCurrency = "HKD"

// currencyRules maps destination keywords to the currency travellers will
// actually spend there. Rules are checked in order and the first match wins,
// so a city like "Tokyo via Seoul" resolves to JPY.
var currencyRules = []struct {
	keywords   []string
	currencies []string
}{
	{[]string{"tokyo", "fukuoka", "japan"}, []string{"JPY"}},
	{[]string{"seoul", "korea"}, []string{"KRW"}},
	{[]string{"bangkok", "thailand"}, []string{"THB"}},
	{[]string{"singapore"}, []string{"SGD"}},
}

// fallbackCurrencies is offered when the city matches no rule.
var fallbackCurrencies = []string{"USD", "EUR", "JPY", "KRW", "THB", "SGD"}

// RelevantCurrencies returns the currency codes worth showing for a trip to
// the given city. Matching is a case-insensitive substring check against the
// rule table; unknown cities get the full fallback list. The result is never
// empty and callers must not mutate it.
func RelevantCurrencies(city string) []string {
	c := strings.ToLower(city)
	for _, rule := range currencyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(c, kw) {
				return rule.currencies
			}
		}
	}
	return fallbackCurrencies
}

// Convert converts amount of the given currency into the base currency
// using rates keyed as foreign-units-per-base. A missing rate is treated as
// 1 — the conversion degrades to a no-op rather than failing, matching the
// rest of the currency feature's best-effort posture.
func Convert(amount float64, currency string, rates map[string]float64) float64 {
	rate, ok := rates[currency]
	if !ok || rate == 0 {
		rate = 1
	}
	return amount / rate
}
