package store

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// MarshalJSON writes the lookup tables as JSON objects whose keys keep
// first-seen order. The reconstructed set is written as a sorted array.
func (e *Export) MarshalJSON() ([]byte, error) {
	codeToName, err := orderedObject(e.CodeToName)
	if err != nil {
		return nil, err
	}
	nameToCode, err := orderedObject(e.NameToCode)
	if err != nil {
		return nil, err
	}
	etyCodeToCode, err := orderedObject(e.EtyCodeToCode)
	if err != nil {
		return nil, err
	}

	languages := e.Languages
	if languages == nil {
		languages = []LanguageEntry{}
	}
	families := e.Families
	if families == nil {
		families = []FamilyEntry{}
	}

	return json.Marshal(struct {
		CodeToName    json.RawMessage `json:"code_to_name"`
		NameToCode    json.RawMessage `json:"name_to_code"`
		EtyCodeToCode json.RawMessage `json:"ety_code_to_code"`
		Reconstructed []string        `json:"reconstructed"`
		Languages     []LanguageEntry `json:"languages"`
		Families      []FamilyEntry   `json:"families"`
	}{
		CodeToName:    codeToName,
		NameToCode:    nameToCode,
		EtyCodeToCode: etyCodeToCode,
		Reconstructed: e.ReconstructedCodes(),
		Languages:     languages,
		Families:      families,
	})
}

// ReconstructedCodes returns the reconstructed set as a sorted slice.
func (e *Export) ReconstructedCodes() []string {
	codes := make([]string, 0, len(e.Reconstructed))
	for code, ok := range e.Reconstructed {
		if ok {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

func orderedObject(m *sequencedmap.Map[string, string]) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if m != nil {
		first := true
		for k, v := range m.All() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			vb, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			buf.Write(vb)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
