package langtree

import (
	"slices"

	"go.uber.org/zap"

	"github.com/jward/langtree/internal/logging"
	"github.com/jward/langtree/internal/source"
)

// merger applies batches to a registry in order.
type merger struct {
	reg    *Registry
	logger *zap.Logger
}

func (m *merger) apply(b *Batch) {
	for _, mr := range b.Malformed {
		m.reg.diagnostics.Malformed++
		m.logger.Warn("malformed record skipped",
			zap.String(logging.FieldSource, b.Name),
			zap.String(logging.FieldCode, mr.Key),
			zap.Int("line", mr.Line),
			zap.String(logging.FieldReason, mr.Reason),
		)
	}
	// Records apply in source order. A language sharing a code or name with
	// a family still wins whichever comes first.
	next := 0
	for i := range b.Families {
		at := 0
		if i < len(b.FamilyAt) {
			at = b.FamilyAt[i]
		}
		for ; next < len(b.Languages) && next < at; next++ {
			m.language(b, b.Languages[next])
		}
		m.family(b, b.Families[i])
	}
	for ; next < len(b.Languages); next++ {
		m.language(b, b.Languages[next])
	}
}

func (m *merger) language(b *Batch, rec LanguageRecord) {
	reg := m.reg
	existing, had := reg.languages.Get(rec.Code)

	switch {
	case had && b.Mode == ModeRefine:
		rec = overlayLanguage(*existing, rec)
	case had:
		// A replacing source that does not state a type keeps the old one.
		if rec.Type == "" {
			rec.Type = existing.Type
		}
	}
	rec.OtherNames = slices.Clone(rec.OtherNames)
	rec.Aliases = slices.Clone(rec.Aliases)
	rec.MixtureParents = slices.Clone(rec.MixtureParents)

	if had && existing.CanonicalName != rec.CanonicalName {
		reg.diagnostics.NameConflicts++
		m.logger.Debug("canonical name changed",
			zap.String(logging.FieldSource, b.Name),
			zap.String(logging.FieldCode, rec.Code),
			zap.String("previous", existing.CanonicalName),
			zap.String("current", rec.CanonicalName),
		)
	}

	reg.languages.Set(rec.Code, &rec)
	reg.codeToName.Set(rec.Code, rec.CanonicalName)
	for _, name := range slices.Concat([]string{rec.CanonicalName}, rec.OtherNames, rec.Aliases) {
		reg.nameToCode.Set(source.NormalizeName(name), rec.Code)
	}
	switch rec.Type {
	case TypeReconstructed:
		reg.reconstructed[rec.Code] = true
	case "":
	default:
		delete(reg.reconstructed, rec.Code)
	}
}

func (m *merger) family(b *Batch, rec FamilyRecord) {
	reg := m.reg
	if existing, had := reg.families.Get(rec.Code); had && b.Mode == ModeRefine {
		rec = overlayFamily(*existing, rec)
	}
	rec.OtherNames = slices.Clone(rec.OtherNames)
	reg.families.Set(rec.Code, &rec)

	// Language codes and names outrank family ones.
	if !reg.isLanguage(rec.Code) {
		reg.codeToName.Set(rec.Code, rec.Name)
	} else {
		m.logger.Debug("family code shadowed by language",
			zap.String(logging.FieldSource, b.Name),
			zap.String(logging.FieldFamily, rec.Code),
		)
	}
	for _, name := range append([]string{rec.Name}, rec.OtherNames...) {
		name = source.NormalizeName(name)
		if cur, taken := reg.nameToCode.Get(name); taken && !reg.isFamilyOnly(cur) {
			continue
		}
		reg.nameToCode.Set(name, rec.Code)
	}
}

// overlayLanguage applies the fields top carries over base. Name lists are
// unioned.
func overlayLanguage(base, top LanguageRecord) LanguageRecord {
	out := base
	setIf(&out.CanonicalName, top.CanonicalName)
	setIf(&out.FamilyCode, top.FamilyCode)
	setIf(&out.ParentCode, top.ParentCode)
	setIf(&out.URL, top.URL)
	setIf(&out.WikidataItem, top.WikidataItem)
	if top.Type != "" {
		out.Type = top.Type
	}
	if len(top.MixtureParents) > 0 {
		out.MixtureParents = top.MixtureParents
	}
	out.EtymologyOnly = base.EtymologyOnly || top.EtymologyOnly
	out.OtherNames = union(base.OtherNames, top.OtherNames)
	out.Aliases = union(base.Aliases, top.Aliases)
	return out
}

func overlayFamily(base, top FamilyRecord) FamilyRecord {
	out := base
	setIf(&out.Name, top.Name)
	setIf(&out.ParentCode, top.ParentCode)
	setIf(&out.URL, top.URL)
	out.OtherNames = union(base.OtherNames, top.OtherNames)
	return out
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func union(a, b []string) []string {
	out := slices.Clone(a)
	for _, s := range b {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
