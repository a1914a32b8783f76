package source

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const languagesCSV = `code;canonical name;category;type;family code;family;sortkey?;autodetect?;exceptional?;script codes;other names;standard characters
en;English;English language;regular;gmw;West Germanic;;;;Latn;Modern English;
nan;Min Nan;Min Nan language;regular;zhx;Sinitic;;;;Hani, Latn;Hokkien, Taiwanese;
ine-pro;Proto-Indo-European;Proto-Indo-European language;reconstructed;ine;Indo-European;;;;Latn;PIE;
de;German;German language;regular;gmw;West Germanic;;;;Latn;;
`

func parseCSVString(t *testing.T, src string, opts CSVOptions) *Batch {
	t.Helper()
	batch, err := ParseCSV("test.csv", strings.NewReader(src), opts)
	require.NoError(t, err)
	return batch
}

func TestParseCSV_Languages(t *testing.T) {
	t.Parallel()
	batch := parseCSVString(t, languagesCSV, CSVOptions{})

	assert.Equal(t, ModeReplace, batch.Mode)
	require.Len(t, batch.Languages, 4)
	assert.Empty(t, batch.Malformed)

	en := batch.Languages[0]
	assert.Equal(t, "en", en.Code)
	assert.Equal(t, "English", en.CanonicalName)
	assert.Equal(t, "gmw", en.FamilyCode)
	assert.Equal(t, []string{"Modern English"}, en.OtherNames)
	assert.Equal(t, TypeRegular, en.Type)
	assert.False(t, en.EtymologyOnly)

	pie := batch.Languages[2]
	assert.Equal(t, TypeReconstructed, pie.Type)
}

func TestParseCSV_NanIsACode(t *testing.T) {
	t.Parallel()
	batch := parseCSVString(t, languagesCSV, CSVOptions{})

	nan := batch.Languages[1]
	assert.Equal(t, "nan", nan.Code)
	assert.Equal(t, "Min Nan", nan.CanonicalName)
	assert.Equal(t, []string{"Hokkien", "Taiwanese"}, nan.OtherNames)
}

func TestParseCSV_FamiliesDeduplicated(t *testing.T) {
	t.Parallel()
	batch := parseCSVString(t, languagesCSV, CSVOptions{})

	require.Len(t, batch.Families, 3)
	assert.Equal(t, FamilyRecord{Code: "gmw", Name: "West Germanic"}, batch.Families[0])
	assert.Equal(t, "zhx", batch.Families[1].Code)
	assert.Equal(t, "ine", batch.Families[2].Code)
}

func TestParseCSV_FamilyPositions(t *testing.T) {
	t.Parallel()
	batch := parseCSVString(t, languagesCSV, CSVOptions{})

	// gmw precedes en, zhx precedes nan, ine precedes ine-pro; de reuses gmw.
	assert.Equal(t, []int{0, 1, 2}, batch.FamilyAt)
}

func TestParseCSV_MultipleCodesExpand(t *testing.T) {
	t.Parallel()
	src := "code;canonical name;other names;parent\n" +
		"LL., la-lat;Late Latin;Low Latin;la\n"
	batch := parseCSVString(t, src, CSVOptions{EtymologyOnly: true})

	require.Len(t, batch.Languages, 2)
	assert.Equal(t, "LL.", batch.Languages[0].Code)
	assert.Equal(t, "la-lat", batch.Languages[1].Code)
	for _, rec := range batch.Languages {
		assert.Equal(t, "Late Latin", rec.CanonicalName)
		assert.Equal(t, "la", rec.ParentCode)
		assert.True(t, rec.EtymologyOnly)
		assert.Equal(t, TypeEtymologyOnly, rec.Type)
	}
}

func TestParseCSV_MissingNameIsMalformed(t *testing.T) {
	t.Parallel()
	src := "code;canonical name\n" +
		"xx;\n" +
		"yy;Why\n"
	batch := parseCSVString(t, src, CSVOptions{})

	require.Len(t, batch.Languages, 1)
	assert.Equal(t, "yy", batch.Languages[0].Code)
	require.Len(t, batch.Malformed, 1)
	assert.Equal(t, "xx", batch.Malformed[0].Key)
	assert.Equal(t, 2, batch.Malformed[0].Line)
	assert.True(t, errors.Is(batch.Malformed[0], ErrMalformedRecord))
}

func TestParseCSV_HeaderCaseInsensitive(t *testing.T) {
	t.Parallel()
	src := "\ufeffCode;Canonical Name;Other Names\n" +
		"fr;French;  Français ,  \n"
	batch := parseCSVString(t, src, CSVOptions{})

	require.Len(t, batch.Languages, 1)
	assert.Equal(t, []string{"Français"}, batch.Languages[0].OtherNames)
	assert.Equal(t, LanguageType(""), batch.Languages[0].Type)
}

func TestParseCSV_CustomDelimiter(t *testing.T) {
	t.Parallel()
	src := "code\tcanonical name\nfr\tFrench\n"
	batch := parseCSVString(t, src, CSVOptions{Delimiter: '\t'})

	require.Len(t, batch.Languages, 1)
	assert.Equal(t, "French", batch.Languages[0].CanonicalName)
}

func TestParseCSV_MissingColumn(t *testing.T) {
	t.Parallel()
	_, err := ParseCSV("bad.csv", strings.NewReader("code;name\nen;English\n"), CSVOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestParseCSV_Empty(t *testing.T) {
	t.Parallel()
	_, err := ParseCSV("empty.csv", strings.NewReader(""), CSVOptions{})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestParseCSV_NamesAreNFC(t *testing.T) {
	t.Parallel()
	// "Français" with a combining cedilla.
	src := "code;canonical name\nfr;Franc\u0327ais\n"
	batch := parseCSVString(t, src, CSVOptions{})

	require.Len(t, batch.Languages, 1)
	assert.Equal(t, "Fran\u00e7ais", batch.Languages[0].CanonicalName)
}
