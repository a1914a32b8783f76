package source

import (
	"bytes"
	"context"
	"io/fs"
	"os"

	"github.com/cockroachdb/errors"
)

// FileSource parses one file from disk or from an fs.FS.
type FileSource struct {
	Path   string
	Format Format
	CSV    CSVOptions
	Schema LuaSchema
	// FS is read instead of the OS filesystem when set.
	FS fs.FS
}

// CSVFile returns a source reading a delimited language table.
func CSVFile(path string, opts CSVOptions) *FileSource {
	return &FileSource{Path: path, Format: FormatCSV, CSV: opts}
}

// LuaFile returns a source reading a Lua data module.
func LuaFile(path string, schema LuaSchema) *FileSource {
	return &FileSource{Path: path, Format: FormatLua, Schema: schema}
}

// LanguagesJSONFile returns a refine source reading a JSON language list.
func LanguagesJSONFile(path string) *FileSource {
	return &FileSource{Path: path, Format: FormatLanguagesJSON}
}

// FamiliesJSONFile returns a refine source reading a JSON family list.
func FamiliesJSONFile(path string) *FileSource {
	return &FileSource{Path: path, Format: FormatFamiliesJSON}
}

// Name returns the format-qualified path, e.g. "csv:data/languages.csv".
func (f *FileSource) Name() string {
	if f.Format == FormatLua {
		return "lua-" + f.Schema.String() + ":" + f.Path
	}
	return string(f.Format) + ":" + f.Path
}

// Parse reads and parses the file. A file that cannot be read is an error;
// individual bad records are reported in Batch.Malformed.
func (f *FileSource) Parse(ctx context.Context) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := f.read()
	if err != nil {
		return nil, errors.Wrapf(err, "source %s", f.Name())
	}

	var batch *Batch
	switch f.Format {
	case FormatCSV:
		batch, err = ParseCSV(f.Path, bytes.NewReader(data), f.CSV)
	case FormatLua:
		batch, err = ParseLua(ctx, f.Path, data, f.Schema)
	case FormatLanguagesJSON:
		batch, err = ParseLanguagesJSON(f.Path, bytes.NewReader(data))
	case FormatFamiliesJSON:
		batch, err = ParseFamiliesJSON(f.Path, bytes.NewReader(data))
	default:
		return nil, errors.Mark(errors.Newf("source %s: format %q", f.Name(), f.Format), ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	batch.Name = f.Name()
	return batch, nil
}

func (f *FileSource) read() ([]byte, error) {
	if f.FS != nil {
		return fs.ReadFile(f.FS, f.Path)
	}
	return os.ReadFile(f.Path)
}
