package prompt

import (
	"sort"
	"strconv"
	"strings"
)

// Placeholder tokens understood by the chatbot backend
const (
	TokenWhatsApp         = "${whatsappNumber}"
	TokenQueryDays        = "${DAYS_TO_QUERY_CALENDAR}"
	TokenMaxRequestDays   = "${MAX_DAYS_FOR_USER_REQUEST}"
	TokenPricing          = "${pricingInfo}"
	TokenAddress          = "${direccion}"
	TokenBusinessHours    = "${horario}"
	TokenChiropracticLink = "${chiropracticVideoUrl}"
)

// Values holds the business data substituted into a prompt template
type Values struct {
	WhatsAppNumber       string
	QueryDays            int
	MaxRequestDays       int
	PricingInfo          string
	Direccion            string
	Horario              string
	ChiropracticVideoURL string
}

// Render replaces every known placeholder in template. Unknown ${...}
// sequences are left untouched so the backend can still resolve them.
func Render(template string, v Values) string {
	r := strings.NewReplacer(
		TokenWhatsApp, v.WhatsAppNumber,
		TokenQueryDays, strconv.Itoa(v.QueryDays),
		TokenMaxRequestDays, strconv.Itoa(v.MaxRequestDays),
		TokenPricing, v.PricingInfo,
		TokenAddress, v.Direccion,
		TokenBusinessHours, v.Horario,
		TokenChiropracticLink, v.ChiropracticVideoURL,
	)
	return r.Replace(template)
}

// Placeholders returns the known tokens that appear in template, in order of
// first appearance.
func Placeholders(template string) []string {
	known := []string{
		TokenWhatsApp, TokenQueryDays, TokenMaxRequestDays, TokenPricing,
		TokenAddress, TokenBusinessHours, TokenChiropracticLink,
	}
	type hit struct {
		token string
		at    int
	}
	var hits []hit
	for _, t := range known {
		if i := strings.Index(template, t); i >= 0 {
			hits = append(hits, hit{t, i})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].at < hits[j].at })
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.token
	}
	return out
}
