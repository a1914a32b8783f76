package langtree

import (
	"slices"

	"github.com/speakeasy-api/openapi/sequencedmap"

	"github.com/jward/langtree/internal/source"
)

// Registry is the resolved taxonomy. It is built once by a Resolver and is
// read-only afterwards, so it is safe for concurrent readers.
type Registry struct {
	languages *sequencedmap.Map[string, *LanguageRecord]
	families  *sequencedmap.Map[string, *FamilyRecord]

	codeToName    *sequencedmap.Map[string, string]
	nameToCode    *sequencedmap.Map[string, string]
	etyCodeToCode *sequencedmap.Map[string, string]
	reconstructed map[string]bool

	familyAncestors map[string][]string
	ancestors       map[string][]string

	diagnostics Diagnostics
}

func newRegistry() *Registry {
	return &Registry{
		languages:       sequencedmap.New[string, *LanguageRecord](),
		families:        sequencedmap.New[string, *FamilyRecord](),
		codeToName:      sequencedmap.New[string, string](),
		nameToCode:      sequencedmap.New[string, string](),
		etyCodeToCode:   sequencedmap.New[string, string](),
		reconstructed:   make(map[string]bool),
		familyAncestors: make(map[string][]string),
		ancestors:       make(map[string][]string),
	}
}

// Language returns a copy of the merged record for code.
func (g *Registry) Language(code string) (*LanguageRecord, bool) {
	rec, ok := g.languages.Get(code)
	if !ok {
		return nil, false
	}
	cp := *rec
	cp.OtherNames = slices.Clone(rec.OtherNames)
	cp.Aliases = slices.Clone(rec.Aliases)
	cp.MixtureParents = slices.Clone(rec.MixtureParents)
	return &cp, true
}

// Family returns a copy of the merged record for code.
func (g *Registry) Family(code string) (*FamilyRecord, bool) {
	rec, ok := g.families.Get(code)
	if !ok {
		return nil, false
	}
	cp := *rec
	cp.OtherNames = slices.Clone(rec.OtherNames)
	return &cp, true
}

// CodeToName returns the canonical name of a language or family code.
func (g *Registry) CodeToName(code string) (string, bool) {
	return g.codeToName.Get(code)
}

// NameToCode returns the code for a canonical name, other name or alias.
// The name is NFC-normalized before lookup.
func (g *Registry) NameToCode(name string) (string, bool) {
	return g.nameToCode.Get(source.NormalizeName(name))
}

// EtyBase returns the base language of an etymology-only code. Any other
// code, known or not, is returned unchanged.
func (g *Registry) EtyBase(code string) string {
	if base, ok := g.etyCodeToCode.Get(code); ok {
		return base
	}
	return code
}

// IsReconstructed reports whether code was marked as a reconstructed
// language by any source.
func (g *Registry) IsReconstructed(code string) bool {
	return g.reconstructed[code]
}

// Ancestors returns the ancestor chain of a language, nearest first,
// followed by imputed proto-languages. Unknown codes yield nil.
func (g *Registry) Ancestors(code string) []string {
	return slices.Clone(g.ancestors[code])
}

// FamilyAncestors returns the parent chain of a family, nearest first.
func (g *Registry) FamilyAncestors(code string) []string {
	return slices.Clone(g.familyAncestors[code])
}

// Languages returns the number of languages in the registry.
func (g *Registry) Languages() int {
	return g.languages.Len()
}

// Families returns the number of families in the registry.
func (g *Registry) Families() int {
	return g.families.Len()
}

// Diagnostics returns the anomaly counters collected while resolving.
func (g *Registry) Diagnostics() Diagnostics {
	return g.diagnostics
}

// isLanguage reports whether code names a language record.
func (g *Registry) isLanguage(code string) bool {
	_, ok := g.languages.Get(code)
	return ok
}

// isFamilyOnly reports whether code names a family and no language.
func (g *Registry) isFamilyOnly(code string) bool {
	_, fam := g.families.Get(code)
	return fam && !g.isLanguage(code)
}
