package langtree

import (
	"go.uber.org/zap"

	"github.com/jward/langtree/internal/logging"
)

// resolveEtymology records the base of every etymology-only code: the first
// code up its parent chain that is not itself etymology-only. The base may
// be a regular language, a family code, or a code no source defines.
// Etymology-only records without a family inherit the base's.
func (r *Resolver) resolveEtymology(reg *Registry) {
	limit := reg.languages.Len() + reg.families.Len() + 1

	for code, rec := range reg.languages.All() {
		if !rec.EtymologyOnly {
			continue
		}
		base, ok := r.etymologyBase(reg, rec, limit)
		if !ok {
			continue
		}
		reg.etyCodeToCode.Set(code, base)

		if rec.FamilyCode != "" {
			continue
		}
		if b, isLang := reg.languages.Get(base); isLang && b.FamilyCode != "" {
			rec.FamilyCode = b.FamilyCode
		} else if _, isFam := reg.families.Get(base); isFam {
			rec.FamilyCode = base
		}
	}
}

// etymologyBase walks parents while they are etymology-only. It reports
// false when the chain ends without a parent or loops.
func (r *Resolver) etymologyBase(reg *Registry, rec *LanguageRecord, limit int) (string, bool) {
	seen := map[string]bool{rec.Code: true}
	chain := []string{rec.Code}

	cur := rec.ParentCode
	for steps := 0; cur != ""; steps++ {
		p, ok := reg.languages.Get(cur)
		if !ok || !p.EtymologyOnly {
			return cur, true
		}
		chain = append(chain, cur)
		if seen[cur] || steps > limit {
			reg.diagnostics.Cycles++
			r.logger.Warn("cyclic etymology-only parent chain",
				zap.String(logging.FieldCode, rec.Code),
				zap.Strings(logging.FieldChain, chain),
			)
			return "", false
		}
		seen[cur] = true
		cur = p.ParentCode
	}
	return "", false
}
