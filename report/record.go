package report

import (
	"fmt"
	"sort"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"pothole-report/config"
	"pothole-report/model"
)

const ProgramName = "pothole-report"

// Details carries everything gathered during a run that ends up in the
// report.
type Details struct {
	Photo      model.Photo
	Geocode    *model.GeocodeResult
	Selection  model.Selection
	Text       string
	Email      string
	Folder     string
	ImageNames []string
	CheckSites []config.CheckSite
}

// Build assembles the write-once report. A nil Geocode leaves postcode
// and address blank.
func (c *Composer) Build(d Details) model.Report {
	lat, lon := d.Photo.LonLat.Lat(), d.Photo.LonLat.Lon()
	latStr, lonStr := model.FormatDegrees(lat), model.FormatDegrees(lon)

	r := model.Report{
		Source:          d.Photo,
		TakenAt:         d.Photo.TakenAt,
		Lat:             lat,
		Lon:             lon,
		FillThatHoleURL: fmt.Sprintf("%s/around?lat=%s&lon=%s&zoom=4", strings.TrimRight(c.cfg.ReportURL, "/"), latStr, lonStr),
		GoogleMapsURL:   fmt.Sprintf("https://www.google.com/maps?q=%s,%s", latStr, lonStr),
		Selection:       d.Selection,
		Text:            d.Text,
		CommandLine:     CommandLine(d.Folder, d.Selection),
		Advice:          c.cfg.Advice,
		Email:           d.Email,
		ImageNames:      d.ImageNames,
	}
	if d.Geocode != nil {
		r.Postcode = d.Geocode.Postcode
		r.Address = d.Geocode.Address
	}
	if !d.Selection.IsTemplate() {
		r.AttributeDescriptions = c.Descriptions(d.Selection.Attributes)
	}
	for _, site := range d.CheckSites {
		r.CheckLinks = append(r.CheckLinks, model.Link{
			Name: site.Name,
			URL:  config.ExpandURL(site.URL, lat, lon),
		})
	}
	return r
}

// CommandLine reproduces the invocation for the report, one flag pair
// per continued line.
func CommandLine(folder string, sel model.Selection) string {
	lines := []string{ProgramName}
	if folder != "" {
		lines = append(lines, "  -f "+shellescape.Quote(folder))
	}
	if sel.IsTemplate() {
		lines = append(lines, "  -r "+shellescape.Quote(sel.TemplateName))
	}
	for _, name := range sortedKeys(sel.Attributes) {
		values := sel.Attributes[name]
		if len(values) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("  --%s %s", name, shellescape.Quote(strings.Join(values, ","))))
	}
	return strings.Join(lines, " \\\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
