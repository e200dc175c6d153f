package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesUsable(t *testing.T) {
	r := DefaultRules()

	assert.False(t, r.usable(""))
	assert.False(t, r.usable("   "))
	assert.False(t, r.usable("indiamart"))
	assert.False(t, r.usable("IndiaMART"))
	assert.False(t, r.usable("Dear User"))
	assert.True(t, r.usable("Rakesh Kumar"))
}

func TestDefaultRulesDeniedEmail(t *testing.T) {
	r := DefaultRules()

	assert.True(t, r.deniedEmail("buyleads@indiamart.com"))
	assert.True(t, r.deniedEmail("BuyLeads@IndiaMART.com"))
	assert.True(t, r.deniedEmail("reply42@buyer.indiamart.com"), "relay subdomains are denied")
	assert.False(t, r.deniedEmail("rakesh.k@example.com"))
	assert.False(t, r.deniedEmail("not-an-address"))
}

func TestLoadRulesOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
phone_prefix: "+1"
denied_addresses:
  - noreply@other.example
`), 0o644))

	r, err := LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, "+1", r.PhonePrefix)
	assert.Equal(t, []string{"noreply@other.example"}, r.DeniedAddresses)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultRules().CallLabel, r.CallLabel)
	assert.Equal(t, DefaultRules().Placeholders, r.Placeholders)
}

func TestLoadRulesMissingFile(t *testing.T) {
	r, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
	// Defaults still come back so the caller can degrade gracefully.
	assert.Equal(t, DefaultRules(), r)
}

func TestLoadRulesBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	_, err := LoadRules(path)
	assert.Error(t, err)
}
