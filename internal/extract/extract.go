// Package extract locates buyer contact and product details inside the
// marketplace's lead-notification emails. The sender renders two known
// HTML templates plus an open-ended unrecognized case, so every field is
// resolved through an ordered list of probes: template-specific selectors
// first (precise but brittle), generic heuristics after (robust but
// lower-precision). A probe miss is never an error; a field no probe can
// resolve stays unknown.
package extract

import (
	"net/mail"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/leadsync/internal/mailbox"
	"github.com/sells-group/leadsync/internal/model"
	"github.com/sells-group/leadsync/internal/normalize"
)

// probe attempts one extraction strategy against the parsed document.
// It returns "" on a miss.
type probe func(doc *goquery.Document) string

// Extractor resolves the four lead fields from one email.
type Extractor struct {
	rules Rules
}

// New creates an Extractor with the given rule set.
func New(rules Rules) *Extractor {
	return &Extractor{rules: rules}
}

// Extract runs the probe cascades over the message HTML and headers.
// Malformed or empty HTML never propagates an error; affected fields
// resolve to unknown.
func (e *Extractor) Extract(html string, headers mailbox.HeaderList) model.Fields {
	var doc *goquery.Document
	if html != "" {
		if d, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			doc = d
		}
	}

	return model.Fields{
		Product: e.first(doc,
			e.headingProduct,
			e.phraseProduct,
		),
		Phone: e.first(doc,
			e.callLink,
		),
		Name: e.firstWith(doc, e.replyToName(headers),
			e.contactBlockName,
			e.callRowName,
		),
		Email: e.first(doc,
			e.contactBlockEmail,
			e.labeledEmail,
		),
	}
}

// first runs probes in order and returns the first usable hit as a field.
func (e *Extractor) first(doc *goquery.Document, probes ...probe) model.Field {
	return e.firstWith(doc, "", probes...)
}

// firstWith is first with a pre-computed leading candidate (used for the
// name cascade, whose highest-priority source is a header, not the HTML).
func (e *Extractor) firstWith(doc *goquery.Document, lead string, probes ...probe) model.Field {
	if e.rules.usable(lead) {
		return model.KnownField(strings.TrimSpace(lead))
	}
	if doc == nil {
		return model.Field{}
	}
	for _, p := range probes {
		if v := p(doc); e.rules.usable(v) {
			return model.KnownField(strings.TrimSpace(v))
		}
	}
	return model.Field{}
}

// replyToName parses the Reply-To header's display name. This is the most
// reliable name source across all templates, so the cascade tries it first.
func (e *Extractor) replyToName(headers mailbox.HeaderList) string {
	v := headers.Get("Reply-To")
	if v == "" {
		return ""
	}
	if addr, err := mail.ParseAddress(v); err == nil {
		return strings.TrimSpace(addr.Name)
	}
	// Tolerate senders that emit an unquoted display name.
	if i := strings.Index(v, "<"); i > 0 {
		return strings.TrimSpace(v[:i])
	}
	return ""
}

// headingProduct reads the strong-emphasis node inside the heading-style
// container.
func (e *Extractor) headingProduct(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find(e.rules.ProductSelector).First().Text())
}

// phraseProduct finds bold text immediately following one of the lead
// phrases ("I need …", "I am looking for …").
func (e *Extractor) phraseProduct(doc *goquery.Document) string {
	var out string
	doc.Find("b, strong").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		bold := strings.TrimSpace(s.Text())
		if bold == "" {
			return true
		}
		parent := s.Parent().Text()
		idx := strings.Index(parent, bold)
		if idx < 0 {
			return true
		}
		before := strings.ToLower(strings.TrimSpace(parent[:idx]))
		for _, phrase := range e.rules.LeadPhrases {
			if strings.HasSuffix(before, strings.ToLower(phrase)) {
				out = bold
				return false
			}
		}
		return true
	})
	return out
}

// callLink finds the first hyperlink that places a call with the expected
// country-code prefix. Template-agnostic by design.
func (e *Extractor) callLink(doc *goquery.Document) string {
	var out string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !strings.HasPrefix(href, "tel:") || !strings.Contains(href, e.rules.PhonePrefix) {
			return true
		}
		out = normalize.CleanAnnotation(s.Text())
		if out == "" {
			out = strings.TrimPrefix(href, "tel:")
		}
		return false
	})
	return out
}

// contactBlockName reads the first text node inside the heading-style
// contact block.
func (e *Extractor) contactBlockName(doc *goquery.Document) string {
	block := doc.Find(e.rules.ContactSelector).First()
	if block.Length() == 0 {
		return ""
	}
	return firstText(block)
}

// callRowName handles the table-layout template: find the row holding the
// call label, step back two sibling rows, and take the first labeled span
// there.
func (e *Extractor) callRowName(doc *goquery.Document) string {
	var out string
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		// Skip rows that contain nested rows so the innermost match wins.
		if row.Find("tr").Length() > 0 {
			return true
		}
		if !strings.Contains(row.Text(), e.rules.CallLabel) {
			return true
		}
		target := row.Prev().Prev()
		if target.Length() == 0 {
			return true
		}
		out = strings.TrimSpace(target.Find("span").First().Text())
		if out == "" {
			out = firstText(target)
		}
		return out == ""
	})
	return out
}

// contactBlockEmail reads the heading-style contact block's mail link,
// rejecting platform-internal addresses.
func (e *Extractor) contactBlockEmail(doc *goquery.Document) string {
	link := doc.Find(e.rules.ContactSelector).First().Find(`a[href^="mailto:"]`).First()
	return e.acceptEmail(link.Text())
}

// labeledEmail falls back to the mail link that follows the email label.
func (e *Extractor) labeledEmail(doc *goquery.Document) string {
	var out string
	doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(s.Parent().Text(), e.rules.EmailLabel) {
			return true
		}
		out = e.acceptEmail(s.Text())
		return out == ""
	})
	return out
}

// acceptEmail strips the verification annotation and applies the deny-list.
func (e *Extractor) acceptEmail(raw string) string {
	addr := normalize.CleanAnnotation(raw)
	if addr == "" || e.rules.deniedEmail(addr) {
		return ""
	}
	return addr
}

// firstText returns the first non-empty text node under s, depth-first.
func firstText(s *goquery.Selection) string {
	var out string
	s.Contents().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if goquery.NodeName(c) == "#text" {
			if t := strings.TrimSpace(c.Text()); t != "" {
				out = t
				return false
			}
			return true
		}
		if t := firstText(c); t != "" {
			out = t
			return false
		}
		return true
	})
	return out
}
