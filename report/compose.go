package report

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"pothole-report/config"
	"pothole-report/model"
)

var (
	ErrUnknownTemplate       = errors.New("unknown report name")
	ErrUnknownAttributeValue = errors.New("invalid attribute value")
	ErrNoSelection           = errors.New("no report selection")
)

// SeverityAttributes are the categories whose values form the severity
// lookup key, highest priority first.
var SeverityAttributes = []string{"depth", "edge", "location"}

var (
	leftoverPlaceholder = regexp.MustCompile(`\{[^}]+\}`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

// Composer renders report text from a loaded config. It has no side
// effects.
type Composer struct {
	cfg *config.Config
}

func NewComposer(cfg *config.Config) *Composer {
	return &Composer{cfg: cfg}
}

// ParseAttributes validates raw flag values against the configured
// attribute categories. Multi-select categories accept comma-separated
// lists. Categories missing from the config are returned in ignored.
func (c *Composer) ParseAttributes(raw map[string]string) (attrs map[string][]string, ignored []string, err error) {
	attrs = map[string][]string{}
	for _, name := range sortedKeys(raw) {
		value := strings.TrimSpace(raw[name])
		if value == "" {
			continue
		}
		known, ok := c.cfg.Attributes[name]
		if !ok {
			ignored = append(ignored, name)
			continue
		}

		values := []string{value}
		if c.cfg.IsMultiSelect(name) {
			values = splitList(value)
		}

		var invalid []string
		for _, v := range values {
			if _, ok := known[v]; !ok {
				invalid = append(invalid, v)
			}
		}
		if len(invalid) > 0 {
			return nil, ignored, fmt.Errorf("%w: %q for attribute %q; valid values: %s",
				ErrUnknownAttributeValue, strings.Join(invalid, ", "), name,
				strings.Join(c.cfg.AttributeValues(name), ", "))
		}
		if len(values) > 0 {
			attrs[name] = values
		}
	}
	return attrs, ignored, nil
}

// Text produces the report body for a selection: the named template
// verbatim, or the parameterized template filled from attributes.
func (c *Composer) Text(sel model.Selection) (string, error) {
	if sel.IsTemplate() {
		return c.TemplateText(sel.TemplateName)
	}
	if len(sel.Attributes) == 0 {
		return "", ErrNoSelection
	}
	return c.Render(sel.Attributes), nil
}

func (c *Composer) TemplateText(name string) (string, error) {
	text, ok := c.cfg.Templates[name]
	if !ok {
		valid := "(none configured)"
		if names := c.cfg.TemplateNames(); len(names) > 0 {
			valid = strings.Join(names, ", ")
		}
		return "", fmt.Errorf("%w: %q; available: %s", ErrUnknownTemplate, name, valid)
	}
	return text, nil
}

// Render fills report_template. {severity} comes from the most specific
// severity phrase matching the selection; {<category>_description} from
// the phrase table, the attribute description or the raw value, in that
// order. Unfilled placeholders are dropped and whitespace collapsed.
func (c *Composer) Render(attrs map[string][]string) string {
	replacements := []string{"{severity}", c.Severity(attrs)}
	for _, name := range sortedKeys(attrs) {
		placeholder := "{" + name + "_description}"
		replacements = append(replacements, placeholder, c.phrase(name, attrs[name]))
	}

	out := strings.NewReplacer(replacements...).Replace(c.cfg.Template())
	out = leftoverPlaceholder.ReplaceAllString(out, "")
	out = whitespaceRun.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// Severity looks up attribute_phrases.severity. Candidate keys join the
// selected values of SeverityAttributes with "_" (first value only for
// multi-select). All parts are tried first, then every smaller
// combination by decreasing size, each size in priority order.
func (c *Composer) Severity(attrs map[string][]string) string {
	table := c.cfg.AttributePhrases["severity"]
	var parts []string
	for _, name := range SeverityAttributes {
		if values := attrs[name]; len(values) > 0 {
			parts = append(parts, values[0])
		}
	}
	if len(table) == 0 || len(parts) == 0 {
		return c.cfg.DefaultSeverity
	}
	for _, key := range SeverityKeys(parts) {
		if phrase, ok := table[key]; ok {
			return phrase
		}
	}
	return c.cfg.DefaultSeverity
}

// SeverityKeys lists lookup keys from most to least specific.
func SeverityKeys(parts []string) []string {
	var keys []string
	for size := len(parts); size > 0; size-- {
		combinations(len(parts), size, func(idx []int) {
			picked := make([]string, len(idx))
			for i, j := range idx {
				picked[i] = parts[j]
			}
			keys = append(keys, strings.Join(picked, "_"))
		})
	}
	return keys
}

// combinations calls fn with every k-subset of [0,n) in lexicographic
// order.
func combinations(n, k int, fn func([]int)) {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func (c *Composer) phrase(name string, values []string) string {
	table := c.cfg.AttributePhrases[name+"_description"]
	descs := make([]string, 0, len(values))
	for _, v := range values {
		switch {
		case table[v] != "":
			descs = append(descs, table[v])
		case c.cfg.Attributes[name][v] != "":
			descs = append(descs, c.cfg.Attributes[name][v])
		default:
			descs = append(descs, v)
		}
	}
	return strings.Join(descs, " and ")
}

// Descriptions maps each selected category to its human description,
// comma-joined for multi-select values.
func (c *Composer) Descriptions(attrs map[string][]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for name, values := range attrs {
		known, ok := c.cfg.Attributes[name]
		if !ok {
			continue
		}
		descs := make([]string, 0, len(values))
		for _, v := range values {
			if d := known[v]; d != "" {
				descs = append(descs, d)
			} else {
				descs = append(descs, v)
			}
		}
		out[name] = strings.Join(descs, ", ")
	}
	return out
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
