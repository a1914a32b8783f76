package langtree

import (
	"go.uber.org/zap"

	"github.com/jward/langtree/internal/logging"
)

// computeFamilyAncestors walks every family's parent chain once so that
// tracing languages is a lookup.
func (r *Resolver) computeFamilyAncestors(reg *Registry) {
	for code, fam := range reg.families.All() {
		reg.familyAncestors[code] = r.walkFamilies(reg, fam)
	}
}

// walkFamilies returns fam's ancestor families, nearest first. A family that
// is its own parent is a root. A parent missing from the family table is
// kept and ends the walk. Any other repeat is a cycle and truncates.
func (r *Resolver) walkFamilies(reg *Registry, fam *FamilyRecord) []string {
	out := []string{}
	seen := map[string]bool{fam.Code: true}

	cur, parent := fam.Code, fam.ParentCode
	for parent != "" && parent != cur {
		if seen[parent] {
			reg.diagnostics.Cycles++
			r.logger.Warn("cyclic family ancestry",
				zap.String(logging.FieldFamily, fam.Code),
				zap.String(logging.FieldParent, parent),
				zap.Strings(logging.FieldChain, out),
			)
			break
		}
		seen[parent] = true
		out = append(out, parent)

		next, ok := reg.families.Get(parent)
		if !ok {
			r.logger.Debug("family parent not in registry",
				zap.String(logging.FieldFamily, cur),
				zap.String(logging.FieldParent, parent),
			)
			break
		}
		cur, parent = parent, next.ParentCode
	}
	return out
}

// traceAncestry fills the ancestor chain of every language.
func (r *Resolver) traceAncestry(reg *Registry) {
	for code, rec := range reg.languages.All() {
		reg.ancestors[code] = r.trace(reg, rec)
	}
}

// trace follows explicit parents, then imputes proto-languages: the
// proto-language of the terminal family followed by those of its ancestor
// families, stopping at the first one the registry does not know. A parent
// that names a family ends the explicit walk without counting as
// unresolvable.
func (r *Resolver) trace(reg *Registry, rec *LanguageRecord) []string {
	out := []string{}
	seen := map[string]bool{rec.Code: true}

	last := rec
	for parent := rec.ParentCode; parent != ""; {
		p, ok := reg.languages.Get(parent)
		if !ok {
			if _, isFamily := reg.families.Get(parent); isFamily {
				// An etymology-only variety may hang directly off a family;
				// its family's proto-languages are imputed below.
				break
			}
			reg.diagnostics.UnresolvableParents++
			r.logger.Debug("parent not in registry",
				zap.String(logging.FieldCode, last.Code),
				zap.String(logging.FieldParent, parent),
			)
			break
		}
		if seen[parent] {
			reg.diagnostics.Cycles++
			r.logger.Warn("cyclic language ancestry",
				zap.String(logging.FieldCode, rec.Code),
				zap.String(logging.FieldParent, parent),
				zap.Strings(logging.FieldChain, out),
			)
			break
		}
		seen[parent] = true
		out = append(out, parent)
		last = p
		parent = p.ParentCode
	}

	family := last.FamilyCode
	famAncestors, known := reg.familyAncestors[family]
	if family == "" || !known {
		return out
	}

	if proto := family + protoSuffix; reg.isLanguage(proto) && !seen[proto] {
		seen[proto] = true
		out = append(out, proto)
	}
	for _, anc := range famAncestors {
		proto := anc + protoSuffix
		if !reg.isLanguage(proto) || seen[proto] {
			break
		}
		seen[proto] = true
		out = append(out, proto)
	}
	return out
}
