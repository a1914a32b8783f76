package store

import (
	"database/sql"
	"sort"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite persistence layer for a resolved registry.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return errors.Wrap(err, "migrate")
	}
	return nil
}

// Every table carries an ordinal so reads reproduce first-seen order.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS languages (
	ordinal        INTEGER NOT NULL,
	code           TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	family         TEXT NOT NULL DEFAULT '',
	parent         TEXT NOT NULL DEFAULT '',
	parents        TEXT NOT NULL DEFAULT '[]',
	url            TEXT NOT NULL DEFAULT '',
	etymology_only INTEGER NOT NULL DEFAULT 0,
	reconstructed  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS families (
	ordinal INTEGER NOT NULL,
	code    TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	parent  TEXT NOT NULL DEFAULT '',
	url     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS code_names (
	ordinal INTEGER NOT NULL,
	code    TEXT PRIMARY KEY,
	name    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS names (
	ordinal INTEGER NOT NULL,
	name    TEXT PRIMARY KEY,
	code    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ety_bases (
	ordinal INTEGER NOT NULL,
	code    TEXT PRIMARY KEY,
	base    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ancestors (
	code     TEXT NOT NULL REFERENCES languages(code) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	ancestor TEXT NOT NULL,
	PRIMARY KEY (code, position)
);

CREATE TABLE IF NOT EXISTS family_ancestors (
	code     TEXT NOT NULL REFERENCES families(code) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	ancestor TEXT NOT NULL,
	PRIMARY KEY (code, position)
);

CREATE TABLE IF NOT EXISTS reconstructed (
	code TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_languages_ordinal ON languages(ordinal);
CREATE INDEX IF NOT EXISTS idx_families_ordinal ON families(ordinal);
CREATE INDEX IF NOT EXISTS idx_code_names_ordinal ON code_names(ordinal);
CREATE INDEX IF NOT EXISTS idx_names_ordinal ON names(ordinal);
CREATE INDEX IF NOT EXISTS idx_ety_bases_ordinal ON ety_bases(ordinal);
CREATE INDEX IF NOT EXISTS idx_ancestors_ancestor ON ancestors(ancestor);
`

// dataTables are cleared before each WriteExport, children first.
var dataTables = []string{
	"ancestors", "family_ancestors", "languages", "families",
	"code_names", "names", "ety_bases", "reconstructed",
}

// WriteExport replaces the stored registry with e in a single transaction.
// Readers never observe a partially written registry.
func (s *Store) WriteExport(e *Export) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "write export: begin")
	}
	defer tx.Rollback()

	for _, table := range dataTables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return errors.Wrapf(err, "write export: clear %s", table)
		}
	}

	if err := insertPairs(tx, "INSERT INTO code_names (ordinal, code, name) VALUES (?, ?, ?)", e.CodeToName.All()); err != nil {
		return errors.Wrap(err, "write export: code names")
	}
	if err := insertPairs(tx, "INSERT INTO names (ordinal, name, code) VALUES (?, ?, ?)", e.NameToCode.All()); err != nil {
		return errors.Wrap(err, "write export: names")
	}
	if err := insertPairs(tx, "INSERT INTO ety_bases (ordinal, code, base) VALUES (?, ?, ?)", e.EtyCodeToCode.All()); err != nil {
		return errors.Wrap(err, "write export: ety bases")
	}

	langStmt, err := tx.Prepare(`INSERT INTO languages
		(ordinal, code, name, family, parent, parents, url, etymology_only, reconstructed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "write export: prepare languages")
	}
	defer langStmt.Close()
	ancStmt, err := tx.Prepare("INSERT INTO ancestors (code, position, ancestor) VALUES (?, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "write export: prepare ancestors")
	}
	defer ancStmt.Close()

	for i, l := range e.Languages {
		if _, err := langStmt.Exec(i, l.Code, l.Name, l.Family, l.Parent, marshalList(l.Parents), l.URL,
			boolToInt(l.EtymologyOnly), boolToInt(l.Reconstructed)); err != nil {
			return errors.Wrapf(err, "write export: language %s", l.Code)
		}
		for pos, anc := range l.Ancestors {
			if _, err := ancStmt.Exec(l.Code, pos, anc); err != nil {
				return errors.Wrapf(err, "write export: ancestors of %s", l.Code)
			}
		}
	}

	for i, f := range e.Families {
		if _, err := tx.Exec("INSERT INTO families (ordinal, code, name, parent, url) VALUES (?, ?, ?, ?, ?)",
			i, f.Code, f.Name, f.Parent, f.URL); err != nil {
			return errors.Wrapf(err, "write export: family %s", f.Code)
		}
		for pos, anc := range f.Ancestors {
			if _, err := tx.Exec("INSERT INTO family_ancestors (code, position, ancestor) VALUES (?, ?, ?)",
				f.Code, pos, anc); err != nil {
				return errors.Wrapf(err, "write export: ancestors of family %s", f.Code)
			}
		}
	}

	codes := make([]string, 0, len(e.Reconstructed))
	for code, ok := range e.Reconstructed {
		if ok {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	for _, code := range codes {
		if _, err := tx.Exec("INSERT INTO reconstructed (code) VALUES (?)", code); err != nil {
			return errors.Wrapf(err, "write export: reconstructed %s", code)
		}
	}

	return errors.Wrap(tx.Commit(), "write export: commit")
}

// SetMetadata upserts a key/value pair.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return errors.Wrapf(err, "set metadata %s", key)
}

// Metadata returns the value stored under key, or ("", false) if absent.
func (s *Store) Metadata(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "metadata %s", key)
	}
	return value, true, nil
}
