package source

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
)

type jsonLanguage struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	OtherNames  []string `json:"other_names"`
	Aliases     []string `json:"aliases"`
	Family      string   `json:"family_code"`
	URL         string   `json:"url"`
	// wiktextract dumps carry the URL as language_url.
	LanguageURL string   `json:"language_url"`
}

// url prefers language_url over url.
func (l jsonLanguage) url() string {
	if l.LanguageURL != "" {
		return l.LanguageURL
	}
	return l.URL
}

type jsonFamily struct {
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	ParentCode string   `json:"parent_code"`
	OtherNames []string `json:"other_names"`
	URL        string   `json:"url"`
}

// ParseLanguagesJSON reads a JSON array of language objects as a refine
// batch: fields it carries overlay earlier records, absent ones are kept.
func ParseLanguagesJSON(name string, r io.Reader) (*Batch, error) {
	var items []jsonLanguage
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "json %s", name), ErrUnsupportedFormat)
	}
	batch := &Batch{Name: name, Mode: ModeRefine}
	for i, item := range items {
		switch {
		case item.Code == "":
			batch.malformed(i+1, "", "missing code")
			continue
		case NormalizeName(item.Name) == "":
			batch.malformed(i+1, item.Code, "missing canonical name")
			continue
		}
		batch.Languages = append(batch.Languages, LanguageRecord{
			Code:          item.Code,
			CanonicalName: NormalizeName(item.Name),
			OtherNames:    normalizeNames(item.OtherNames),
			Aliases:       normalizeNames(item.Aliases),
			FamilyCode:    item.Family,
			URL:           item.url(),
		})
	}
	return batch, nil
}

// ParseFamiliesJSON reads a JSON array of family objects as a refine batch.
func ParseFamiliesJSON(name string, r io.Reader) (*Batch, error) {
	var items []jsonFamily
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "json %s", name), ErrUnsupportedFormat)
	}
	batch := &Batch{Name: name, Mode: ModeRefine}
	for i, item := range items {
		switch {
		case item.Code == "":
			batch.malformed(i+1, "", "missing code")
			continue
		case NormalizeName(item.Name) == "":
			batch.malformed(i+1, item.Code, "missing canonical name")
			continue
		}
		batch.Families = append(batch.Families, FamilyRecord{
			Code:       item.Code,
			Name:       NormalizeName(item.Name),
			ParentCode: item.ParentCode,
			OtherNames: normalizeNames(item.OtherNames),
			URL:        item.URL,
		})
	}
	return batch, nil
}
