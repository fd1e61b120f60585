package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `report_url: "https://example.fillthathole.org"
attributes:
  depth:
    lt40mm: "Less than 40mm (sub-intervention)"
    gte40mm: "40mm or greater (meets intervention level)"
    gt50mm: "Greater than 50mm (emergency intervention)"
  edge:
    sharp: "Sharp, vertical shear edges"
    rounded: "Rounded edges"
  location:
    primary_cycle_line: "Primary cycle line / where cyclist expected"
    general: "General route"
report_template: "{severity}: {depth_description} defect located {location_description}."
attribute_phrases:
  severity:
    gt50mm_sharp_primary_cycle_line: "EMERGENCY"
    gte40mm_primary_cycle_line: "HIGH RISK"
  depth_description:
    lt40mm: "less than 40mm deep"
    gt50mm: "exceeds 50mm"
templates:
  high-risk: "This defect is located in the primary line of travel for cyclists."
advice_for_reporters:
  key_phrases:
    - "Test phrase 1"
    - "Test phrase 2"
  pro_tip: "Test pro tip"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileValid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pothole-report.yaml", testConfig)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.fillthathole.org", cfg.ReportURL)
	assert.Equal(t, path, cfg.LoadedFrom)
	assert.Equal(t, DefaultKeyringAccount, cfg.KeyringAccount)
	assert.Equal(t, []string{"depth", "edge", "location"}, cfg.AttributeNames())
	assert.Equal(t, []string{"gt50mm", "gte40mm", "lt40mm"}, cfg.AttributeValues("depth"))
	assert.Equal(t, "EMERGENCY", cfg.AttributePhrases["severity"]["gt50mm_sharp_primary_cycle_line"])
	assert.Contains(t, cfg.Template(), "{severity}")
	assert.Equal(t, []string{"high-risk"}, cfg.TemplateNames())
	assert.Equal(t, []string{"Test phrase 1", "Test phrase 2"}, cfg.Advice.KeyPhrases)
	assert.Equal(t, "Test pro tip", cfg.Advice.ProTip)
}

func TestParseAppliesDefaults(t *testing.T) {
	t.Setenv(EnvNominatimURL, "")
	t.Setenv(EnvUserAgent, "")

	cfg, err := Parse([]byte("attributes:\n  depth:\n    deep: Deep\nreport_template: \"{depth_description}\"\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultReportURL, cfg.ReportURL)
	assert.Equal(t, DefaultSeverity, cfg.DefaultSeverity)
	assert.Equal(t, DefaultMaxSpread, cfg.MaxSpreadMetres)
	assert.Equal(t, DefaultNominatimURL, cfg.Geocoder.URL)
	assert.Equal(t, DefaultUserAgent, cfg.Geocoder.UserAgent)
	assert.Equal(t, DefaultGeocodeTimeout, cfg.Geocoder.Timeout)
	assert.Zero(t, cfg.Geocoder.MaxRetries)
	assert.True(t, cfg.IsMultiSelect("location"))
	assert.True(t, cfg.IsMultiSelect("visibility"))
	assert.False(t, cfg.IsMultiSelect("depth"))
	assert.NotNil(t, cfg.AttributePhrases)
}

func TestParseGeocoderSettings(t *testing.T) {
	t.Setenv(EnvNominatimURL, "")
	t.Setenv(EnvUserAgent, "")

	cfg, err := Parse([]byte(`templates:
  a: "A"
geocoder:
  url: "http://localhost:8080/reverse"
  user_agent: "tester/1.0"
  timeout: 3s
  max_retries: 2
`))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/reverse", cfg.Geocoder.URL)
	assert.Equal(t, "tester/1.0", cfg.Geocoder.UserAgent)
	assert.Equal(t, 3*time.Second, cfg.Geocoder.Timeout)
	assert.Equal(t, 2, cfg.Geocoder.MaxRetries)
}

func TestParseEnvOverridesGeocoder(t *testing.T) {
	t.Setenv(EnvNominatimURL, "http://env.example/reverse")
	t.Setenv(EnvUserAgent, "env-agent")

	cfg, err := Parse([]byte("templates:\n  a: A\ngeocoder:\n  url: http://file.example/reverse\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://env.example/reverse", cfg.Geocoder.URL)
	assert.Equal(t, "env-agent", cfg.Geocoder.UserAgent)
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		message string
	}{
		{"empty", "", "'attributes' section"},
		{"attributes without template", "attributes:\n  depth:\n    deep: Deep\n", "report_template"},
		{"attribute not a mapping", "attributes:\n  depth: deep\nreport_template: x\n", "parsing YAML"},
		{"empty attribute", "attributes:\n  depth: {}\nreport_template: x\n", `attribute "depth"`},
		{"empty attribute name", "attributes:\n  \"\":\n    deep: Deep\nreport_template: x\n", "attribute names must not be empty"},
		{"empty template", "templates:\n  blank: \"  \"\n", `template "blank" is empty`},
		{"negative spread", "templates:\n  a: A\nmax_spread_metres: -1\n", "max_spread_metres"},
		{"not yaml", "attributes: [unclosed", "parsing YAML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadMissingOverride(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nonexistent.yaml")

	_, err := Load(missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "nonexistent.yaml")
	assert.Contains(t, err.Error(), "report_template")
}

func TestLoadUsesEnvPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.yaml", testConfig)
	t.Setenv(EnvConfigPath, path)

	assert.Equal(t, []string{path}, Paths(""))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.LoadedFrom)
}

func TestPathsOverrideWins(t *testing.T) {
	t.Setenv(EnvConfigPath, "/from/env.yaml")
	assert.Equal(t, []string{"/from/flag.yaml"}, Paths("/from/flag.yaml"))
}

func TestPathsDefaultSearchOrder(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	paths := Paths("")
	require.NotEmpty(t, paths)
	assert.Equal(t, filepath.Join("conf", ConfigFileName), filepath.Join(filepath.Base(filepath.Dir(paths[0])), filepath.Base(paths[0])))
	if len(paths) > 1 {
		assert.Contains(t, paths[1], filepath.Join(".config", ServiceName))
	}
}

func TestKeyringAccount(t *testing.T) {
	dir := t.TempDir()

	withAccount := writeFile(t, dir, "with.yaml", "keyring_account: reporter\n")
	assert.Equal(t, "reporter", KeyringAccount(withAccount))

	without := writeFile(t, dir, "without.yaml", "report_url: x\n")
	assert.Equal(t, DefaultKeyringAccount, KeyringAccount(without))

	broken := writeFile(t, dir, "broken.yaml", "keyring_account: [\n")
	assert.Equal(t, DefaultKeyringAccount, KeyringAccount(broken))

	assert.Equal(t, DefaultKeyringAccount, KeyringAccount(filepath.Join(dir, "missing.yaml")))
}

func TestKeyringAccountIgnoresSearchPaths(t *testing.T) {
	path := writeFile(t, t.TempDir(), "env.yaml", "keyring_account: from-env\n")
	t.Setenv(EnvConfigPath, path)

	assert.Equal(t, DefaultKeyringAccount, KeyringAccount(""))
}

func TestLoadEnv(t *testing.T) {
	const key = "POTHOLE_REPORT_TEST_DOTENV_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := writeFile(t, t.TempDir(), ".env", key+"=from-dotenv\n")
	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv(key))
}

func TestLoadEnvIgnoresMissingFiles(t *testing.T) {
	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env")))
}
