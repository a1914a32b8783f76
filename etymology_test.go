package langtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ety(code, name, parent string) LanguageRecord {
	return LanguageRecord{Code: code, CanonicalName: name, ParentCode: parent, EtymologyOnly: true, Type: TypeEtymologyOnly}
}

func TestEtymology_ChainTerminatesAtRegularLanguage(t *testing.T) {
	t.Parallel()
	reg := resolve(t,
		replace([]LanguageRecord{
			ety("A", "A variety", "B"),
			ety("B", "B variety", "C"),
			{Code: "C", CanonicalName: "Cee", FamilyCode: "qfa"},
		}),
	)

	assert.Equal(t, "C", reg.EtyBase("A"))
	assert.Equal(t, "C", reg.EtyBase("B"))

	base, ok := reg.etyCodeToCode.Get("A")
	assert.True(t, ok)
	assert.Equal(t, "C", base)
}

func TestEtymology_IdentityForOtherCodes(t *testing.T) {
	t.Parallel()
	reg := resolve(t, replace([]LanguageRecord{{Code: "la", CanonicalName: "Latin"}}))

	assert.Equal(t, "la", reg.EtyBase("la"))
	assert.Equal(t, "zzz", reg.EtyBase("zzz"))
}

func TestEtymology_FamilyBase(t *testing.T) {
	t.Parallel()
	reg := resolve(t,
		replace([]LanguageRecord{ety("gem-x", "Some Germanic", "gem")}, FamilyRecord{Code: "gem", Name: "Germanic"}),
	)

	assert.Equal(t, "gem", reg.EtyBase("gem-x"))
	rec, _ := reg.Language("gem-x")
	assert.Equal(t, "gem", rec.FamilyCode)
	assert.Zero(t, reg.Diagnostics().UnresolvableParents)
}

func TestEtymology_InheritsBaseFamily(t *testing.T) {
	t.Parallel()
	reg := resolve(t,
		replace([]LanguageRecord{
			ety("LL.", "Late Latin", "la"),
			func() LanguageRecord { r := ety("EL.", "Ecclesiastical Latin", "la"); r.FamilyCode = "qfa-own"; return r }(),
			{Code: "la", CanonicalName: "Latin", FamilyCode: "itc"},
		}),
	)

	ll, _ := reg.Language("LL.")
	assert.Equal(t, "itc", ll.FamilyCode)

	// A stated family is kept.
	el, _ := reg.Language("EL.")
	assert.Equal(t, "qfa-own", el.FamilyCode)
}

func TestEtymology_UndefinedBaseIsKept(t *testing.T) {
	t.Parallel()
	reg := resolve(t, replace([]LanguageRecord{ety("x-y", "Orphan", "nowhere")}))

	assert.Equal(t, "nowhere", reg.EtyBase("x-y"))
}

func TestEtymology_NoParentHasNoBase(t *testing.T) {
	t.Parallel()
	reg := resolve(t, replace([]LanguageRecord{ety("x-y", "Rootless", "")}))

	_, ok := reg.etyCodeToCode.Get("x-y")
	assert.False(t, ok)
	assert.Equal(t, "x-y", reg.EtyBase("x-y"))
}

func TestEtymology_CycleYieldsNoBase(t *testing.T) {
	t.Parallel()
	reg := resolve(t,
		replace([]LanguageRecord{
			ety("A", "A", "B"),
			ety("B", "B", "A"),
			ety("S", "Self", "S"),
		}),
	)

	for _, code := range []string{"A", "B", "S"} {
		_, ok := reg.etyCodeToCode.Get(code)
		assert.False(t, ok, code)
	}
	// Each loop is reported by the etymology walk and again by the
	// ancestry walk.
	assert.Equal(t, 6, reg.Diagnostics().Cycles)
}
