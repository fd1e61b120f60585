package report

import (
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pothole-report/config"
	"pothole-report/model"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const testConfig = `report_url: "https://example.fillthathole.org/"
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
    sharp: "EDGE RISK"
  depth_description:
    lt40mm: "less than 40mm deep"
    gt50mm: "exceeds 50mm"
templates:
  high-risk: "This defect is located in the primary line of travel for cyclists."
  surface: "Surface breakup across the carriageway."
advice_for_reporters:
  key_phrases:
    - "Test phrase 1"
  pro_tip: "Test pro tip"
`

func newTestComposer(t *testing.T) (*Composer, *config.Config) {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)
	return NewComposer(cfg), cfg
}

func TestSeverityKeysOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"a_b_c", "a_b", "a_c", "b_c", "a", "b", "c"},
		SeverityKeys([]string{"a", "b", "c"}))
	assert.Equal(t, []string{"a"}, SeverityKeys([]string{"a"}))
	assert.Empty(t, SeverityKeys(nil))
}

func TestSeverity(t *testing.T) {
	c, _ := newTestComposer(t)

	tests := []struct {
		name  string
		attrs map[string][]string
		want  string
	}{
		{"exact match", map[string][]string{"depth": {"gt50mm"}, "edge": {"sharp"}, "location": {"primary_cycle_line"}}, "EMERGENCY"},
		{"falls back to pair", map[string][]string{"depth": {"gte40mm"}, "edge": {"rounded"}, "location": {"primary_cycle_line"}}, "HIGH RISK"},
		{"falls back to single", map[string][]string{"depth": {"lt40mm"}, "edge": {"sharp"}, "location": {"general"}}, "EDGE RISK"},
		{"first location value", map[string][]string{"depth": {"gte40mm"}, "location": {"primary_cycle_line", "general"}}, "HIGH RISK"},
		{"no match", map[string][]string{"depth": {"lt40mm"}}, config.DefaultSeverity},
		{"nothing selected", map[string][]string{}, config.DefaultSeverity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Severity(tt.attrs))
		})
	}
}

func TestRenderFillsPlaceholders(t *testing.T) {
	c, _ := newTestComposer(t)

	got := c.Render(map[string][]string{
		"depth":    {"gt50mm"},
		"edge":     {"sharp"},
		"location": {"primary_cycle_line", "general"},
	})
	assert.Equal(t, "EMERGENCY: exceeds 50mm defect located Primary cycle line / where cyclist expected and General route.", got)
}

func TestRenderFallsBackToAttributeDescription(t *testing.T) {
	c, _ := newTestComposer(t)

	got := c.Render(map[string][]string{"depth": {"gte40mm"}, "location": {"general"}})
	assert.Equal(t, "MEDIUM RISK: 40mm or greater (meets intervention level) defect located General route.", got)
}

func TestRenderDropsUnfilledPlaceholders(t *testing.T) {
	c, _ := newTestComposer(t)

	got := c.Render(map[string][]string{"depth": {"lt40mm"}})
	assert.Equal(t, "MEDIUM RISK: less than 40mm deep defect located .", got)
	assert.NotContains(t, got, "{")
}

func TestTextTemplateIsVerbatim(t *testing.T) {
	c, cfg := newTestComposer(t)

	got, err := c.Text(model.Selection{TemplateName: "high-risk"})
	require.NoError(t, err)
	assert.Equal(t, cfg.Templates["high-risk"], got)
}

func TestTextUnknownTemplate(t *testing.T) {
	c, _ := newTestComposer(t)

	_, err := c.Text(model.Selection{TemplateName: "nope"})
	require.ErrorIs(t, err, ErrUnknownTemplate)
	assert.Contains(t, err.Error(), "high-risk, surface")
}

func TestTextWithoutSelection(t *testing.T) {
	c, _ := newTestComposer(t)

	_, err := c.Text(model.Selection{})
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestParseAttributes(t *testing.T) {
	c, _ := newTestComposer(t)

	attrs, ignored, err := c.ParseAttributes(map[string]string{
		"depth":      "gt50mm",
		"location":   "primary_cycle_line, general",
		"edge":       "",
		"visibility": "poor",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"depth":    {"gt50mm"},
		"location": {"primary_cycle_line", "general"},
	}, attrs)
	assert.Equal(t, []string{"visibility"}, ignored)
}

func TestParseAttributesRejectsUnknownValue(t *testing.T) {
	c, _ := newTestComposer(t)

	_, _, err := c.ParseAttributes(map[string]string{"depth": "bottomless"})
	require.ErrorIs(t, err, ErrUnknownAttributeValue)
	assert.Contains(t, err.Error(), "gt50mm, gte40mm, lt40mm")

	_, _, err = c.ParseAttributes(map[string]string{"depth": "gt50mm,lt40mm"})
	assert.ErrorIs(t, err, ErrUnknownAttributeValue, "single-select categories do not split on commas")
}

func TestDescriptions(t *testing.T) {
	c, _ := newTestComposer(t)

	got := c.Descriptions(map[string][]string{
		"location": {"primary_cycle_line", "general"},
		"depth":    {"gt50mm"},
		"unknown":  {"x"},
	})
	assert.Equal(t, map[string]string{
		"location": "Primary cycle line / where cyclist expected, General route",
		"depth":    "Greater than 50mm (emergency intervention)",
	}, got)
}
