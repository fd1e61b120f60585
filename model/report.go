package model

import "time"

type GeocodeResult struct {
	Postcode string `json:"postcode"`
	Address  string `json:"address"`
	Provider string `json:"provider,omitempty"`
}

// Selection is what the user picked for the report body: either a named
// template or a set of attribute values. Multi-select values are kept
// as separate entries.
type Selection struct {
	TemplateName string
	Attributes   map[string][]string
}

func (s Selection) IsTemplate() bool {
	return s.TemplateName != ""
}

func (s Selection) IsEmpty() bool {
	return s.TemplateName == "" && len(s.Attributes) == 0
}

type Link struct {
	Name string
	URL  string
}

type Advice struct {
	KeyPhrases []string `yaml:"key_phrases"`
	ProTip     string   `yaml:"pro_tip"`
}

func (a Advice) IsEmpty() bool {
	return len(a.KeyPhrases) == 0 && a.ProTip == ""
}

// Report is the write-once document printed at the end of a run.
type Report struct {
	Source                Photo
	TakenAt               *time.Time
	Postcode              string
	Address               string
	Lat                   float64
	Lon                   float64
	FillThatHoleURL       string
	GoogleMapsURL         string
	Selection             Selection
	AttributeDescriptions map[string]string
	Text                  string
	CommandLine           string
	Advice                Advice
	Email                 string
	CheckLinks            []Link
	ImageNames            []string
}
