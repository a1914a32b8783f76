package store

import (
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
)

// NameByCode returns the canonical name stored for a language or family code.
func (s *Store) NameByCode(code string) (string, bool, error) {
	return s.lookup("SELECT name FROM code_names WHERE code = ?", code)
}

// CodeByName returns the code a name resolves to. The name must already be
// normalized the way the registry stores names.
func (s *Store) CodeByName(name string) (string, bool, error) {
	return s.lookup("SELECT code FROM names WHERE name = ?", name)
}

// EtyBase returns the base language of an etymology-only code, or the code
// itself when it has no recorded base.
func (s *Store) EtyBase(code string) (string, error) {
	base, ok, err := s.lookup("SELECT base FROM ety_bases WHERE code = ?", code)
	if err != nil || !ok {
		return code, err
	}
	return base, nil
}

func (s *Store) lookup(query, arg string) (string, bool, error) {
	var out string
	err := s.db.QueryRow(query, arg).Scan(&out)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "lookup %q", arg)
	}
	return out, true, nil
}

// LanguageByCode returns the stored entry for code, or nil if absent.
func (s *Store) LanguageByCode(code string) (*LanguageEntry, error) {
	row := s.db.QueryRow(`SELECT code, name, family, parent, parents, url, etymology_only, reconstructed
		FROM languages WHERE code = ?`, code)
	l, err := scanLanguage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "language %s", code)
	}
	l.Ancestors, err = s.Ancestors(code)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Ancestors returns the traced ancestor chain of a language, nearest first.
func (s *Store) Ancestors(code string) ([]string, error) {
	return s.ancestorList("SELECT ancestor FROM ancestors WHERE code = ? ORDER BY position", code)
}

// FamilyAncestors returns the ancestor families of a family, nearest first.
func (s *Store) FamilyAncestors(code string) ([]string, error) {
	return s.ancestorList("SELECT ancestor FROM family_ancestors WHERE code = ? ORDER BY position", code)
}

func (s *Store) ancestorList(query, code string) ([]string, error) {
	rows, err := s.db.Query(query, code)
	if err != nil {
		return nil, errors.Wrapf(err, "ancestors of %s", code)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var anc string
		if err := rows.Scan(&anc); err != nil {
			return nil, errors.Wrapf(err, "scan ancestor of %s", code)
		}
		out = append(out, anc)
	}
	return out, rows.Err()
}

// Reconstructed returns every code marked reconstructed, sorted.
func (s *Store) Reconstructed() ([]string, error) {
	rows, err := s.db.Query("SELECT code FROM reconstructed ORDER BY code")
	if err != nil {
		return nil, errors.Wrap(err, "reconstructed")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, errors.Wrap(err, "scan reconstructed")
		}
		out = append(out, code)
	}
	return out, rows.Err()
}

// SearchNames returns names starting with prefix in first-seen order.
// A limit of zero or less returns every match.
func (s *Store) SearchNames(prefix string, limit int) ([]NameMatch, error) {
	query := `SELECT name, code FROM names WHERE name LIKE ? ESCAPE '\' ORDER BY ordinal`
	args := []any{escapeLike(prefix) + "%"}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "search names %q", prefix)
	}
	defer rows.Close()

	var out []NameMatch
	for rows.Next() {
		var m NameMatch
		if err := rows.Scan(&m.Name, &m.Code); err != nil {
			return nil, errors.Wrap(err, "scan name match")
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountNames returns how many names start with prefix.
func (s *Store) CountNames(prefix string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM names WHERE name LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").Scan(&n)
	if err != nil {
		return 0, errors.Wrapf(err, "count names %q", prefix)
	}
	return n, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ReadExport loads the full stored registry back into an Export.
func (s *Store) ReadExport() (*Export, error) {
	e := NewExport()
	if err := s.readPairs("SELECT code, name FROM code_names ORDER BY ordinal", func(k, v string) { e.CodeToName.Set(k, v) }); err != nil {
		return nil, errors.Wrap(err, "read export: code names")
	}
	if err := s.readPairs("SELECT name, code FROM names ORDER BY ordinal", func(k, v string) { e.NameToCode.Set(k, v) }); err != nil {
		return nil, errors.Wrap(err, "read export: names")
	}
	if err := s.readPairs("SELECT code, base FROM ety_bases ORDER BY ordinal", func(k, v string) { e.EtyCodeToCode.Set(k, v) }); err != nil {
		return nil, errors.Wrap(err, "read export: ety bases")
	}
	recon, err := s.Reconstructed()
	if err != nil {
		return nil, err
	}
	for _, code := range recon {
		e.Reconstructed[code] = true
	}

	ancestors, err := s.readAncestors("SELECT code, ancestor FROM ancestors ORDER BY code, position")
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT code, name, family, parent, parents, url, etymology_only, reconstructed
		FROM languages ORDER BY ordinal`)
	if err != nil {
		return nil, errors.Wrap(err, "read export: languages")
	}
	defer rows.Close()
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, errors.Wrap(err, "read export: scan language")
		}
		l.Ancestors = nonNil(ancestors[l.Code])
		e.Languages = append(e.Languages, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	famAncestors, err := s.readAncestors("SELECT code, ancestor FROM family_ancestors ORDER BY code, position")
	if err != nil {
		return nil, err
	}
	frows, err := s.db.Query("SELECT code, name, parent, url FROM families ORDER BY ordinal")
	if err != nil {
		return nil, errors.Wrap(err, "read export: families")
	}
	defer frows.Close()
	for frows.Next() {
		var f FamilyEntry
		if err := frows.Scan(&f.Code, &f.Name, &f.Parent, &f.URL); err != nil {
			return nil, errors.Wrap(err, "read export: scan family")
		}
		f.Ancestors = nonNil(famAncestors[f.Code])
		e.Families = append(e.Families, f)
	}
	if err := frows.Err(); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Store) readPairs(query string, fn func(k, v string)) error {
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		fn(k, v)
	}
	return rows.Err()
}

func (s *Store) readAncestors(query string) (map[string][]string, error) {
	out := make(map[string][]string)
	err := s.readPairs(query, func(code, anc string) { out[code] = append(out[code], anc) })
	if err != nil {
		return nil, errors.Wrap(err, "read ancestors")
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLanguage(row scanner) (*LanguageEntry, error) {
	var l LanguageEntry
	var parents string
	var etyOnly, recon int
	if err := row.Scan(&l.Code, &l.Name, &l.Family, &l.Parent, &parents, &l.URL, &etyOnly, &recon); err != nil {
		return nil, err
	}
	l.Parents = unmarshalList(parents)
	l.EtymologyOnly = etyOnly != 0
	l.Reconstructed = recon != 0
	return &l, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
