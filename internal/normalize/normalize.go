// Package normalize canonicalizes extracted lead fields into records the
// tabular store can hold without mangling them.
package normalize

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/leadsync/internal/model"
)

// MaxCell is the hard ceiling on a single tabular-store cell. Longer values
// are clipped and flagged with TruncMark.
const MaxCell = 49999

// TruncMark is appended to clipped values.
const TruncMark = "…"

// textPrefix forces the store to treat the cell as literal text so leading
// "+" and zeros survive the append.
const textPrefix = "'"

var annotationRe = regexp.MustCompile(`\s*\(\s*[Vv]erified\s*\)\s*$`)

// CleanAnnotation strips the trailing verification annotation some templates
// append to phone numbers and addresses.
func CleanAnnotation(s string) string {
	return strings.TrimSpace(annotationRe.ReplaceAllString(s, ""))
}

// Phone formats a phone field for the tabular store: annotation stripped,
// separator dashes removed, text-forcing prefix applied. Unknown fields pass
// through untouched. Idempotent: a value already carrying the prefix is
// returned as is.
func Phone(f model.Field) model.Field {
	if !f.Known {
		return f
	}
	v := f.Value
	if strings.HasPrefix(v, textPrefix) {
		return f
	}
	v = CleanAnnotation(v)
	v = strings.ReplaceAll(v, "-", "")
	return model.KnownField(textPrefix + v)
}

// Truncate clips s to the MaxCell limit, appending TruncMark when it does.
func Truncate(s string) string {
	if len(s) <= MaxCell {
		return s
	}
	clipped := s[:MaxCell]
	// Drop the trailing bytes of a multi-byte rune cut in half.
	for len(clipped) > 0 {
		r, size := utf8.DecodeLastRuneInString(clipped)
		if r != utf8.RuneError || size > 1 {
			break
		}
		clipped = clipped[:len(clipped)-1]
	}
	zap.L().Warn("normalize: field exceeds cell limit, truncating",
		zap.Int("length", len(s)),
		zap.Int("limit", MaxCell),
	)
	return clipped + TruncMark
}

func truncateField(f model.Field) model.Field {
	if !f.Known {
		return f
	}
	return model.KnownField(Truncate(f.Value))
}

// Record builds the store-ready record for one admitted message.
func Record(f model.Fields, uid string, now time.Time) model.Record {
	return model.Record{
		Fields: model.Fields{
			Name:    truncateField(f.Name),
			Phone:   truncateField(Phone(f.Phone)),
			Email:   truncateField(f.Email),
			Product: truncateField(f.Product),
		},
		ProcessedAt: now,
		Status:      model.StatusNew,
		UID:         uid,
	}
}
