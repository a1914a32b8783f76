package langtree

import (
	"maps"
	"slices"

	"github.com/speakeasy-api/openapi/sequencedmap"

	"github.com/jward/langtree/internal/store"
)

// Export snapshots the registry for downstream consumers. The returned
// value shares nothing with the registry.
func (g *Registry) Export() *Export {
	e := &Export{
		CodeToName:    cloneOrdered(g.codeToName),
		NameToCode:    cloneOrdered(g.nameToCode),
		EtyCodeToCode: cloneOrdered(g.etyCodeToCode),
		Reconstructed: maps.Clone(g.reconstructed),
		Languages:     make([]LanguageEntry, 0, g.languages.Len()),
		Families:      make([]FamilyEntry, 0, g.families.Len()),
	}

	for code, rec := range g.languages.All() {
		ancestors := slices.Clone(g.ancestors[code])
		if ancestors == nil {
			ancestors = []string{}
		}
		e.Languages = append(e.Languages, store.LanguageEntry{
			Code:          code,
			Name:          rec.CanonicalName,
			Family:        rec.FamilyCode,
			Parent:        rec.ParentCode,
			Parents:       slices.Clone(rec.MixtureParents),
			Ancestors:     ancestors,
			URL:           rec.URL,
			EtymologyOnly: rec.EtymologyOnly,
			Reconstructed: g.reconstructed[code],
		})
	}

	for code, fam := range g.families.All() {
		ancestors := slices.Clone(g.familyAncestors[code])
		if ancestors == nil {
			ancestors = []string{}
		}
		e.Families = append(e.Families, store.FamilyEntry{
			Code:      code,
			Name:      fam.Name,
			Parent:    fam.ParentCode,
			Ancestors: ancestors,
			URL:       fam.URL,
		})
	}
	return e
}

func cloneOrdered(m *sequencedmap.Map[string, string]) *sequencedmap.Map[string, string] {
	out := sequencedmap.New[string, string]()
	for k, v := range m.All() {
		out.Set(k, v)
	}
	return out
}
