package normalize

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadsync/internal/model"
)

func TestCleanAnnotation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips suffix", "+91-98765-43210 (Verified)", "+91-98765-43210"},
		{"lowercase", "+91-98765-43210 (verified)", "+91-98765-43210"},
		{"inner spaces", "buyer@example.com ( Verified )", "buyer@example.com"},
		{"no annotation", "+91-98765-43210", "+91-98765-43210"},
		{"trims whitespace", "  +91-98765-43210  ", "+91-98765-43210"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanAnnotation(tt.in))
		})
	}
}

func TestPhoneFormatting(t *testing.T) {
	got := Phone(model.KnownField("+91-98765-43210 (Verified)"))
	assert.True(t, got.Known)
	assert.Equal(t, "'+919876543210", got.Value)
}

func TestPhoneIdempotent(t *testing.T) {
	once := Phone(model.KnownField("+91-98765-43210"))
	twice := Phone(once)
	assert.Equal(t, once, twice)
}

func TestPhoneUnknownPassesThrough(t *testing.T) {
	var f model.Field
	assert.Equal(t, f, Phone(f))
}

func TestTruncateUnchangedWithinLimit(t *testing.T) {
	s := strings.Repeat("a", MaxCell)
	assert.Equal(t, s, Truncate(s))
}

func TestTruncateClipsOverLimit(t *testing.T) {
	s := strings.Repeat("a", MaxCell+100)
	got := Truncate(s)
	assert.LessOrEqual(t, len(got), MaxCell+len(TruncMark))
	assert.True(t, strings.HasSuffix(got, TruncMark))
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	s := strings.Repeat("é", MaxCell) // 2 bytes each, crosses the limit mid-rune
	got := Truncate(s)
	assert.LessOrEqual(t, len(got), MaxCell+len(TruncMark))
	assert.True(t, utf8.ValidString(got))
	for _, r := range got {
		assert.NotEqual(t, '�', r)
	}
}

func TestTruncateKeepsRuneEndingAtLimit(t *testing.T) {
	// The 3-byte rune ends exactly at the clip point and must survive whole.
	s := strings.Repeat("a", MaxCell-3) + "中" + strings.Repeat("b", 10)
	got := Truncate(s)
	assert.Equal(t, strings.Repeat("a", MaxCell-3)+"中"+TruncMark, got)
	assert.True(t, utf8.ValidString(got))
}

func TestTruncateDropsOrphanedLeadByte(t *testing.T) {
	// The clip point lands between the two bytes of the final é; the bare
	// lead byte must not leak into the output.
	s := strings.Repeat("a", MaxCell-1) + "é" + strings.Repeat("b", 10)
	got := Truncate(s)
	assert.Equal(t, strings.Repeat("a", MaxCell-1)+TruncMark, got)
	assert.True(t, utf8.ValidString(got))
}

func TestRecordAppliesPhoneAndStatus(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	rec := Record(model.Fields{
		Name:  model.KnownField("Rakesh Kumar"),
		Phone: model.KnownField("+91-98765-43210 (Verified)"),
	}, "<id@mail>", now)

	assert.Equal(t, "'+919876543210", rec.Phone.Value)
	assert.Equal(t, model.StatusNew, rec.Status)
	assert.Equal(t, "<id@mail>", rec.UID)
	assert.Equal(t, now, rec.ProcessedAt)
	assert.False(t, rec.Email.Known)
	assert.Empty(t, rec.CallNotified)
}
