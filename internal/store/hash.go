package store

import (
	"crypto/sha256"
	"fmt"
	"io"
	"strings"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Digest computes a deterministic hash of the export's contents. Table order
// is part of the identity; two resolutions that differ only in insertion
// order hash differently.
func (e *Export) Digest() string {
	h := sha256.New()

	writePairs(h, "code", e.CodeToName)
	writePairs(h, "name", e.NameToCode)
	writePairs(h, "ety", e.EtyCodeToCode)

	for _, code := range e.ReconstructedCodes() {
		fmt.Fprintf(h, "rec:%s\n", code)
	}
	for _, l := range e.Languages {
		fmt.Fprintf(h, "lang:%s:%s:%s:%s:%s:%s:%v:%v\n",
			l.Code, l.Name, l.Family, l.Parent, strings.Join(l.Parents, ","), l.URL, l.EtymologyOnly, l.Reconstructed)
		fmt.Fprintf(h, "anc:%s\n", strings.Join(l.Ancestors, ","))
	}
	for _, f := range e.Families {
		fmt.Fprintf(h, "fam:%s:%s:%s:%s\n", f.Code, f.Name, f.Parent, f.URL)
		fmt.Fprintf(h, "anc:%s\n", strings.Join(f.Ancestors, ","))
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}

func writePairs(w io.Writer, tag string, m *sequencedmap.Map[string, string]) {
	if m == nil {
		return
	}
	for k, v := range m.All() {
		fmt.Fprintf(w, "%s:%s=%s\n", tag, k, v)
	}
}
