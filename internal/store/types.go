package store

import "github.com/speakeasy-api/openapi/sequencedmap"

// Export is the snapshot handed to downstream consumers: the three ordered
// lookup tables, the reconstructed set, and one entry per language and
// family in first-seen order.
type Export struct {
	CodeToName    *sequencedmap.Map[string, string]
	NameToCode    *sequencedmap.Map[string, string]
	EtyCodeToCode *sequencedmap.Map[string, string]
	Reconstructed map[string]bool
	Languages     []LanguageEntry
	Families      []FamilyEntry
}

// NewExport returns an empty Export with all tables allocated.
func NewExport() *Export {
	return &Export{
		CodeToName:    sequencedmap.New[string, string](),
		NameToCode:    sequencedmap.New[string, string](),
		EtyCodeToCode: sequencedmap.New[string, string](),
		Reconstructed: make(map[string]bool),
	}
}

// LanguageEntry is the exported view of one language.
type LanguageEntry struct {
	Code          string   `json:"code" yaml:"code"`
	Name          string   `json:"name" yaml:"name"`
	Family        string   `json:"family,omitempty" yaml:"family,omitempty"`
	Parent        string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Parents       []string `json:"parents,omitempty" yaml:"parents,omitempty"`
	Ancestors     []string `json:"ancestors" yaml:"ancestors"`
	URL           string   `json:"url,omitempty" yaml:"url,omitempty"`
	EtymologyOnly bool     `json:"etymology_only" yaml:"etymology_only"`
	Reconstructed bool     `json:"reconstructed" yaml:"reconstructed"`
}

// FamilyEntry is the exported view of one family.
type FamilyEntry struct {
	Code      string   `json:"code" yaml:"code"`
	Name      string   `json:"name" yaml:"name"`
	Parent    string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Ancestors []string `json:"ancestors" yaml:"ancestors"`
	URL       string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// NameMatch is one row of a name search.
type NameMatch struct {
	Name string `json:"name" yaml:"name"`
	Code string `json:"code" yaml:"code"`
}
