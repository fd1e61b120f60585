package report

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"

	"pothole-report/config"
	"pothole-report/model"
)

const (
	imageColumns   = 3
	previewWidth   = 60
	dateTimeLayout = "2006-01-02 15:04"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	blue   = color.New(color.FgBlue, color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// Render writes the report as text. Colour codes are only emitted when
// fatih/color has decided the terminal supports them.
func Render(w io.Writer, r model.Report) error {
	var b strings.Builder

	if len(r.CheckLinks) > 0 {
		fmt.Fprintf(&b, "%s\n", green("Existing pothole reports"))
		for _, link := range r.CheckLinks {
			fmt.Fprintf(&b, "  %s %s\n", bold(link.Name+":"), cyan(link.URL))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s\n", blue("Report: "+r.Source.Name()))
	fmt.Fprintf(&b, "%s %s\n", bold("File:"), r.Source.Name())
	fmt.Fprintf(&b, "%s %s\n", bold("Date/Time taken:"), FormatTakenAt(r.TakenAt))
	fmt.Fprintf(&b, "%s %s\n", bold("Postcode:"), r.Postcode)
	fmt.Fprintf(&b, "%s %s\n", bold("Address:"), r.Address)
	fmt.Fprintf(&b, "%s %.4f, %.4f\n\n", bold("Coordinates:"), r.Lat, r.Lon)
	fmt.Fprintf(&b, "%s %s\n\n", bold("Fill That Hole:"), cyan(r.FillThatHoleURL))
	fmt.Fprintf(&b, "%s %s\n\n", bold("Google Maps:"), cyan(r.GoogleMapsURL))

	if r.Selection.IsTemplate() {
		fmt.Fprintf(&b, "%s %s\n\n", bold("Template:"), r.Selection.TemplateName)
	} else {
		fmt.Fprintf(&b, "%s\n", bold("Attributes:"))
		names := sortedKeys(r.Selection.Attributes)
		if len(names) == 0 {
			b.WriteString("  (none)\n")
		}
		for _, name := range names {
			if desc := r.AttributeDescriptions[name]; desc != "" {
				fmt.Fprintf(&b, "  %s: (%s)\n", name, desc)
			} else {
				fmt.Fprintf(&b, "  %s: %s\n", name, strings.Join(r.Selection.Attributes[name], ","))
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s\n%s\n\n", bold("Report:"), r.Text)
	fmt.Fprintf(&b, "%s %s\n", bold("Report as:"), r.Email)

	if !r.Advice.IsEmpty() {
		fmt.Fprintf(&b, "\n%s\n", yellow("Advice for Reporters"))
		if len(r.Advice.KeyPhrases) > 0 {
			fmt.Fprintf(&b, "  %s %s\n", bold("Key Phrases:"), strings.Join(r.Advice.KeyPhrases, ", "))
		}
		if r.Advice.ProTip != "" {
			fmt.Fprintf(&b, "  %s %s\n", bold("Pro Tip:"), r.Advice.ProTip)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", bold(fmt.Sprintf("Images (%d):", len(r.ImageNames))))
	b.WriteString(ImageTable(r.ImageNames))

	if r.CommandLine != "" {
		fmt.Fprintf(&b, "\n%s\n%s\n", faint("Re-run with:"), r.CommandLine)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func FormatTakenAt(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.Format(dateTimeLayout)
}

// ImageTable lays image names out three to a row in padded columns.
func ImageTable(names []string) string {
	if len(names) == 0 {
		return "  (none)\n"
	}
	width := 0
	for _, n := range names {
		if l := utf8.RuneCountInString(n); l > width {
			width = l
		}
	}

	var b strings.Builder
	for i := 0; i < len(names); i += imageColumns {
		end := min(i+imageColumns, len(names))
		row := names[i:end]
		b.WriteString(" ")
		for j, n := range row {
			b.WriteString(" ")
			if j < len(row)-1 {
				n += strings.Repeat(" ", width-utf8.RuneCountInString(n)+1)
			}
			b.WriteString(cyan(n))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderList writes the configured templates and attribute values. It
// reads nothing but the already-loaded config.
func RenderList(w io.Writer, cfg *config.Config) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", bold("Available reports"))
	names := cfg.TemplateNames()
	if len(names) == 0 {
		b.WriteString("  (none)\n")
	}
	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}
	for _, n := range names {
		fmt.Fprintf(&b, "  %s  %s\n", cyan(fmt.Sprintf("%-*s", width, n)), faint(Preview(cfg.Templates[n])))
	}

	fmt.Fprintf(&b, "\n%s\n", bold("Attributes"))
	attrs := cfg.AttributeNames()
	if len(attrs) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, name := range attrs {
		label := name
		if cfg.IsMultiSelect(name) {
			label += " (multi-select)"
		}
		fmt.Fprintf(&b, "  %s\n", bold(label))
		for _, v := range cfg.AttributeValues(name) {
			fmt.Fprintf(&b, "    %s: %s\n", cyan(v), cfg.Attributes[name][v])
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Preview shortens template text to one line of at most 60 characters.
func Preview(text string) string {
	text = whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
	runes := []rune(text)
	if len(runes) > previewWidth {
		return string(runes[:previewWidth-3]) + "..."
	}
	return text
}
