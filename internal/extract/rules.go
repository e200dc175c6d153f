package extract

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rules holds the template selectors and filtering lists the extractor
// works from. Defaults target the marketplace's two known notification
// templates; deployments can override any entry from a YAML rules file.
type Rules struct {
	// Placeholders are values that count as "no value" wherever they
	// appear (the sender substitutes them when the buyer left a field
	// blank).
	Placeholders []string `yaml:"placeholders"`

	// DeniedAddresses are exact platform outbound addresses never accepted
	// as a buyer email.
	DeniedAddresses []string `yaml:"denied_addresses"`

	// DeniedDomainFragments reject any address whose domain contains one
	// of these fragments, covering the platform's reply-relay subdomains.
	DeniedDomainFragments []string `yaml:"denied_domain_fragments"`

	// PhonePrefix is the country-code prefix a call link must carry.
	PhonePrefix string `yaml:"phone_prefix"`

	// ProductSelector locates the strong-emphasis product node in the
	// heading-style template.
	ProductSelector string `yaml:"product_selector"`

	// ContactSelector locates the heading-style template's contact block.
	ContactSelector string `yaml:"contact_selector"`

	// LeadPhrases introduce the bolded product in the phrase-style
	// template.
	LeadPhrases []string `yaml:"lead_phrases"`

	// CallLabel marks the phone row in the table-layout template.
	CallLabel string `yaml:"call_label"`

	// EmailLabel marks the labeled mail link fallback.
	EmailLabel string `yaml:"email_label"`
}

// DefaultRules returns the built-in rule set for the known templates.
func DefaultRules() Rules {
	return Rules{
		Placeholders:          []string{"indiamart", "Dear User"},
		DeniedAddresses:       []string{"buyleads@indiamart.com"},
		DeniedDomainFragments: []string{"indiamart"},
		PhonePrefix:           "+91",
		ProductSelector:       `td[style*="font-size:18px"] strong`,
		ContactSelector:       `td[style*="line-height:20px"]`,
		LeadPhrases:           []string{"I need", "I am looking for"},
		CallLabel:             "Click to call:",
		EmailLabel:            "Email:",
	}
}

// LoadRules reads a YAML rules file and overlays it on the defaults.
// Only keys present in the file replace their defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, eris.Wrapf(err, "extract: read rules %s", path)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return DefaultRules(), eris.Wrapf(err, "extract: parse rules %s", path)
	}
	return rules, nil
}

// isPlaceholder reports whether v is one of the sender's stand-in values.
func (r Rules) isPlaceholder(v string) bool {
	for _, p := range r.Placeholders {
		if strings.EqualFold(strings.TrimSpace(v), p) {
			return true
		}
	}
	return false
}

// usable reports whether v is a real extracted value.
func (r Rules) usable(v string) bool {
	return strings.TrimSpace(v) != "" && !r.isPlaceholder(v)
}

// deniedEmail reports whether addr is a platform-internal address that must
// not be recorded as the buyer's email.
func (r Rules) deniedEmail(addr string) bool {
	a := strings.ToLower(strings.TrimSpace(addr))
	for _, d := range r.DeniedAddresses {
		if a == strings.ToLower(d) {
			return true
		}
	}
	at := strings.LastIndex(a, "@")
	if at < 0 {
		return false
	}
	domain := a[at+1:]
	for _, f := range r.DeniedDomainFragments {
		if f != "" && strings.Contains(domain, strings.ToLower(f)) {
			return true
		}
	}
	return false
}
