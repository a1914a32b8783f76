package langtree

import (
	"github.com/cockroachdb/errors"

	"github.com/jward/langtree/internal/source"
	"github.com/jward/langtree/internal/store"
)

// Public type aliases for internal types used in the Resolver and Registry
// APIs. External consumers use these names; no conversion is needed.

type LanguageRecord = source.LanguageRecord
type FamilyRecord = source.FamilyRecord
type LanguageType = source.LanguageType
type Batch = source.Batch
type Mode = source.Mode
type Source = source.Source
type MalformedRecord = source.MalformedRecord

type Export = store.Export
type LanguageEntry = store.LanguageEntry
type FamilyEntry = store.FamilyEntry
type Store = store.Store

const (
	ModeReplace = source.ModeReplace
	ModeRefine  = source.ModeRefine

	TypeRegular             = source.TypeRegular
	TypeReconstructed       = source.TypeReconstructed
	TypeAppendixConstructed = source.TypeAppendixConstructed
	TypeEtymologyOnly       = source.TypeEtymologyOnly
)

// ErrNoSources is returned when Resolve is given no input at all.
var ErrNoSources = errors.New("langtree: no sources")

// Diagnostics counts the data anomalies seen while resolving. None of them
// stop resolution.
type Diagnostics struct {
	Malformed           int `json:"malformed"`
	NameConflicts       int `json:"name_conflicts"`
	UnresolvableParents int `json:"unresolvable_parents"`
	Cycles              int `json:"cycles"`
}
