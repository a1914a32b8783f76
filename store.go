package langtree

import (
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jward/langtree/internal/store"
)

// Metadata keys written by Save.
const (
	MetaResolvedAt = "resolved_at"
	MetaLanguages  = "languages"
	MetaFamilies   = "families"
	MetaDigest     = "digest"
)

// OpenStore opens (creating if needed) a SQLite database at dbPath and
// ensures the schema exists.
func OpenStore(dbPath string) (*Store, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "langtree: create store")
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "langtree: migrate")
	}
	return s, nil
}

// Save replaces the store's contents with the registry and stamps the
// resolution time and a digest of the stored contents.
func (g *Registry) Save(s *Store) error {
	e := g.Export()
	if err := s.WriteExport(e); err != nil {
		return errors.Wrap(err, "langtree: save")
	}
	meta := [][2]string{
		{MetaResolvedAt, time.Now().UTC().Format(time.RFC3339)},
		{MetaLanguages, strconv.Itoa(g.languages.Len())},
		{MetaFamilies, strconv.Itoa(g.families.Len())},
		{MetaDigest, e.Digest()},
	}
	for _, kv := range meta {
		if err := s.SetMetadata(kv[0], kv[1]); err != nil {
			return errors.Wrap(err, "langtree: save")
		}
	}
	return nil
}
