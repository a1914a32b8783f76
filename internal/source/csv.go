package source

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultDelimiter separates fields in the language CSV tables.
const DefaultDelimiter = ';'

// CSV column names, matched case-insensitively against the header row.
const (
	colCode       = "code"
	colName       = "canonical name"
	colOtherNames = "other names"
	colFamilyCode = "family code"
	colFamily     = "family"
	colType       = "type"
	colParent     = "parent"
)

// CSVOptions configures ParseCSV.
type CSVOptions struct {
	// Delimiter defaults to DefaultDelimiter when zero.
	Delimiter rune
	// EtymologyOnly marks every record as an etymology-only variety.
	EtymologyOnly bool
}

// ParseCSV reads a delimited language table. Cells are taken verbatim: no
// value is interpreted as missing except the empty string. A code cell
// listing several comma-separated codes yields one record per code.
func ParseCSV(name string, r io.Reader, opts CSVOptions) (*Batch, error) {
	delim := opts.Delimiter
	if delim == 0 {
		delim = DefaultDelimiter
	}
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Mark(errors.Newf("csv %s: empty input", name), ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "csv %s: reading header", name)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	for _, required := range []string{colCode, colName} {
		if _, ok := cols[required]; !ok {
			return nil, errors.Mark(errors.Newf("csv %s: missing column %q", name, required), ErrUnsupportedFormat)
		}
	}

	batch := &Batch{Name: name, Mode: ModeReplace}
	seenFamily := make(map[string]bool)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				batch.malformed(perr.Line, "", perr.Err.Error())
				continue
			}
			return nil, errors.Wrapf(err, "csv %s", name)
		}
		line, _ := cr.FieldPos(0)
		cell := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		codes := SplitList(cell(colCode))
		if len(codes) == 0 {
			if strings.TrimSpace(strings.Join(row, "")) != "" {
				batch.malformed(line, "", "missing code")
			}
			continue
		}
		canonical := NormalizeName(cell(colName))
		if canonical == "" {
			batch.malformed(line, codes[0], "missing canonical name")
			continue
		}

		familyCode := cell(colFamilyCode)
		if familyName := NormalizeName(cell(colFamily)); familyCode != "" && familyName != "" && !seenFamily[familyCode] {
			seenFamily[familyCode] = true
			batch.AddFamily(FamilyRecord{Code: familyCode, Name: familyName})
		}

		rec := LanguageRecord{
			CanonicalName: canonical,
			OtherNames:    splitNames(cell(colOtherNames)),
			FamilyCode:    familyCode,
			ParentCode:    cell(colParent),
			EtymologyOnly: opts.EtymologyOnly,
			Type:          LanguageType(strings.ToLower(cell(colType))),
		}
		if rec.Type == "" && opts.EtymologyOnly {
			rec.Type = TypeEtymologyOnly
		}
		for _, code := range codes {
			rec.Code = code
			batch.Languages = append(batch.Languages, rec)
		}
	}
	return batch, nil
}
