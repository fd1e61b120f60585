package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"pothole-report/model"
)

const (
	CheckConfigFileName = "pothole-checking.yaml"
	EnvCheckConfigPath  = "POTHOLE_REPORT_CHECK_CONFIG"
)

// CheckSite is an external map of existing reports. URL may contain
// {lat}, {lon}, {latitude} and {longitude} placeholders.
type CheckSite struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

func CheckPaths(override string) []string {
	if override != "" {
		return []string{override}
	}
	if env := os.Getenv(EnvCheckConfigPath); env != "" {
		return []string{env}
	}
	return searchPaths(CheckConfigFileName)
}

// LoadCheckSites reads the check-sites file. A missing file or an empty
// check_sites list yields no sites and no error; a malformed one is an
// error.
func LoadCheckSites(override string) ([]CheckSite, error) {
	path := firstExisting(CheckPaths(override))
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: file must contain a YAML mapping: %v", ErrInvalid, path, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s: file must contain a YAML mapping", ErrInvalid, path)
	}
	node, ok := doc["check_sites"]
	if !ok || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: %s: check_sites must be a list", ErrInvalid, path)
	}

	sites := make([]CheckSite, 0, len(node.Content))
	for i, entry := range node.Content {
		if entry.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: %s: check_sites[%d] must be a mapping with 'name' and 'url'", ErrInvalid, path, i)
		}
		var site CheckSite
		if err := entry.Decode(&site); err != nil {
			return nil, fmt.Errorf("%w: %s: check_sites[%d]: %v", ErrInvalid, path, i, err)
		}
		site.Name = strings.TrimSpace(site.Name)
		site.URL = strings.TrimSpace(site.URL)
		if site.Name == "" {
			return nil, fmt.Errorf("%w: %s: check_sites[%d] is missing a valid 'name' string", ErrInvalid, path, i)
		}
		if site.URL == "" {
			return nil, fmt.Errorf("%w: %s: check_sites[%d] is missing a valid 'url' string", ErrInvalid, path, i)
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// ExpandURL substitutes the coordinate placeholders of a check-site URL.
func ExpandURL(template string, lat, lon float64) string {
	latStr := model.FormatDegrees(lat)
	lonStr := model.FormatDegrees(lon)
	return strings.NewReplacer(
		"{lat}", latStr,
		"{lon}", lonStr,
		"{latitude}", latStr,
		"{longitude}", lonStr,
	).Replace(template)
}
