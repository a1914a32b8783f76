package source

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrMalformedRecord marks a record that was skipped during parsing.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnsupportedFormat is returned for inputs no parser understands,
	// including CSV files missing a required column.
	ErrUnsupportedFormat = errors.New("unsupported source format")
)

// LanguageType classifies a language record.
type LanguageType string

const (
	TypeRegular             LanguageType = "regular"
	TypeReconstructed       LanguageType = "reconstructed"
	TypeAppendixConstructed LanguageType = "appendix-constructed"
	TypeEtymologyOnly       LanguageType = "etymology-only"
)

// Mode controls how a batch is merged over earlier batches.
type Mode int

const (
	// ModeReplace overwrites any existing record with the same code.
	ModeReplace Mode = iota
	// ModeRefine overlays only the fields the new record carries.
	ModeRefine
)

func (m Mode) String() string {
	switch m {
	case ModeReplace:
		return "replace"
	case ModeRefine:
		return "refine"
	default:
		return "unknown"
	}
}

// LanguageRecord is one language or etymology-only variety as read from a
// source. An empty Type means the source did not say.
type LanguageRecord struct {
	Code           string
	CanonicalName  string
	OtherNames     []string
	Aliases        []string
	FamilyCode     string
	ParentCode     string
	MixtureParents []string
	EtymologyOnly  bool
	Type           LanguageType
	URL            string
	WikidataItem   string
}

// FamilyRecord is one language family.
type FamilyRecord struct {
	Code       string
	Name       string
	ParentCode string
	OtherNames []string
	URL        string
}

// MalformedRecord describes an input record the parser skipped.
type MalformedRecord struct {
	Key    string
	Line   int
	Reason string
}

func (m MalformedRecord) Error() string {
	if m.Key == "" {
		return fmt.Sprintf("line %d: %s", m.Line, m.Reason)
	}
	return fmt.Sprintf("line %d: %s: %s", m.Line, m.Key, m.Reason)
}

// Is reports whether target is ErrMalformedRecord.
func (m MalformedRecord) Is(target error) bool { return target == ErrMalformedRecord }

// Batch is the parsed output of one source, applied as a unit.
type Batch struct {
	Name      string
	Mode      Mode
	Languages []LanguageRecord
	Families  []FamilyRecord
	Malformed []MalformedRecord

	// FamilyAt holds, for each family added with AddFamily, how many
	// languages preceded it in the source. Families without an entry are
	// applied before the batch's languages.
	FamilyAt []int
}

// AddFamily appends rec at the current position among the languages, so the
// batch applies in source order.
func (b *Batch) AddFamily(rec FamilyRecord) {
	b.FamilyAt = append(b.FamilyAt, len(b.Languages))
	b.Families = append(b.Families, rec)
}

func (b *Batch) malformed(line int, key, reason string) {
	b.Malformed = append(b.Malformed, MalformedRecord{Key: key, Line: line, Reason: reason})
}

// Source produces a Batch. Implementations must be safe to Parse
// concurrently with other sources.
type Source interface {
	Name() string
	Parse(ctx context.Context) (*Batch, error)
}
