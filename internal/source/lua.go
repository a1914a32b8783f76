package source

import (
	"context"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
)

// LuaSchema selects how entries of a Lua data module are interpreted.
type LuaSchema int

const (
	// LuaLanguages reads `m["code"] = {name, wikidata, family, ..., ancestors = ..., type = ...}`.
	LuaLanguages LuaSchema = iota
	// LuaEtymologyLanguages reads entries with canonicalName and parent,
	// either named or as positional fields 1 and 3.
	LuaEtymologyLanguages
	// LuaFamilies reads `m["code"] = {name, wikidata, parent}`.
	LuaFamilies
)

func (s LuaSchema) String() string {
	switch s {
	case LuaLanguages:
		return "languages"
	case LuaEtymologyLanguages:
		return "etymology-languages"
	case LuaFamilies:
		return "families"
	default:
		return "unknown"
	}
}

type luaKind int

const (
	luaOther luaKind = iota
	luaNil
	luaStr
	luaNumber
	luaBool
	luaTable
	// luaRef is an entry whose value is another entry, m["x"] = m["y"].
	luaRef
)

// luaValue is the subset of a Lua expression the data modules use.
type luaValue struct {
	kind       luaKind
	str        string
	positional []*luaValue
	named      map[string]*luaValue
}

func (v *luaValue) field(names ...string) *luaValue {
	if v == nil || v.kind != luaTable {
		return nil
	}
	for _, n := range names {
		if f, ok := v.named[n]; ok {
			return f
		}
	}
	return nil
}

func (v *luaValue) index(i int) *luaValue {
	if v == nil || v.kind != luaTable || i >= len(v.positional) {
		return nil
	}
	return v.positional[i]
}

// text returns string and number values as text, anything else as "".
func (v *luaValue) text() string {
	if v == nil || (v.kind != luaStr && v.kind != luaNumber) {
		return ""
	}
	return strings.TrimSpace(v.str)
}

// list reads either a comma-separated string or a table of strings.
func (v *luaValue) list() []string {
	if v == nil {
		return nil
	}
	switch v.kind {
	case luaStr:
		return SplitList(v.str)
	case luaTable:
		var out []string
		for _, item := range v.positional {
			out = append(out, SplitList(item.text())...)
		}
		return out
	}
	return nil
}

type luaEntry struct {
	code  string
	value *luaValue
	line  int
}

// ParseLua extracts records from a Lua data module. The module is parsed,
// never executed: only top-level `t["code"] = <table>` assignments are read.
func ParseLua(ctx context.Context, name string, src []byte, schema LuaSchema) (*Batch, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(LuaGrammar())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrapf(err, "lua %s: parse", name)
	}
	defer tree.Close()

	root := tree.RootNode()
	batch := &Batch{Name: name, Mode: ModeReplace}
	if root.HasError() {
		if n := firstError(root); n != nil {
			batch.malformed(int(n.StartPoint().Row)+1, "", "syntax error")
		}
	}

	var entries []luaEntry
	collectEntries(root, src, &entries)

	built := make(map[string]int)
	for _, e := range entries {
		if e.value.kind == luaRef {
			if err := batch.copyEntry(built, e, schema); err != "" {
				batch.malformed(e.line, e.code, err)
			}
			continue
		}
		if e.value.kind != luaTable {
			batch.malformed(e.line, e.code, "entry is not a table")
			continue
		}
		canonical := NormalizeName(firstText(e.value.field("canonicalName", "canonical_name"), e.value.index(0)))
		if canonical == "" {
			batch.malformed(e.line, e.code, "missing canonical name")
			continue
		}
		switch schema {
		case LuaFamilies:
			built[e.code] = len(batch.Families)
			batch.Families = append(batch.Families, familyFromLua(e.code, canonical, e.value))
		default:
			built[e.code] = len(batch.Languages)
			batch.Languages = append(batch.Languages, languageFromLua(e.code, canonical, e.value, schema))
		}
	}
	return batch, nil
}

// copyEntry handles m["x"] = m["y"] by copying y's record under x.
func (b *Batch) copyEntry(built map[string]int, e luaEntry, schema LuaSchema) string {
	i, ok := built[e.value.str]
	if !ok {
		return "alias of unknown code " + strconv.Quote(e.value.str)
	}
	if schema == LuaFamilies {
		fam := b.Families[i]
		fam.Code = e.code
		built[e.code] = len(b.Families)
		b.Families = append(b.Families, fam)
		return ""
	}
	lang := b.Languages[i]
	lang.Code = e.code
	built[e.code] = len(b.Languages)
	b.Languages = append(b.Languages, lang)
	return ""
}

func languageFromLua(code, canonical string, v *luaValue, schema LuaSchema) LanguageRecord {
	rec := LanguageRecord{
		Code:          code,
		CanonicalName: canonical,
		OtherNames:    normalizeNames(v.field("otherNames", "other_names").list()),
		Aliases:       normalizeNames(v.field("aliases").list()),
		Type:          LanguageType(strings.ToLower(v.field("type").text())),
	}
	ancestors := v.field("ancestors").list()

	if schema == LuaEtymologyLanguages {
		rec.EtymologyOnly = true
		if rec.Type == "" {
			rec.Type = TypeEtymologyOnly
		}
		rec.ParentCode = firstText(v.field("parent"), v.index(2))
		rec.FamilyCode = v.field("family").text()
		if rec.ParentCode == "" && len(ancestors) == 1 {
			rec.ParentCode = ancestors[0]
		}
		return rec
	}

	rec.WikidataItem = firstText(v.field("wikidata_item"), v.index(1))
	rec.FamilyCode = firstText(v.field("family"), v.index(2))
	switch {
	case len(ancestors) == 1:
		rec.ParentCode = ancestors[0]
	case len(ancestors) > 1:
		rec.MixtureParents = ancestors
	}
	return rec
}

func familyFromLua(code, canonical string, v *luaValue) FamilyRecord {
	return FamilyRecord{
		Code:       code,
		Name:       canonical,
		ParentCode: firstText(v.field("family", "parent"), v.index(2)),
		OtherNames: normalizeNames(v.field("otherNames", "other_names").list()),
	}
}

func firstText(vals ...*luaValue) string {
	for _, v := range vals {
		if t := v.text(); t != "" {
			return t
		}
	}
	return ""
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !c.HasError() {
			continue
		}
		if found := firstError(c); found != nil {
			return found
		}
	}
	return nil
}

// collectEntries walks statements looking for `t[<string>] = <expr>`.
// Statements inside an ERROR node are still read so that one broken entry
// does not hide the rest of the module.
func collectEntries(n *sitter.Node, src []byte, out *[]luaEntry) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "variable_declaration":
			if e, ok := entryFromDeclaration(child, src); ok {
				*out = append(*out, e)
			}
		case "ERROR":
			collectEntries(child, src, out)
		}
	}
}

// entryFromDeclaration reads one `t["code"] = <expr>` statement. Local
// declarations such as `local m = {}` have no string key and are skipped.
func entryFromDeclaration(n *sitter.Node, src []byte) (luaEntry, bool) {
	target := n.ChildByFieldName("name")
	if target == nil || target.NamedChildCount() != 2 {
		return luaEntry{}, false
	}
	key := target.NamedChild(1)
	if key.Type() != "string" {
		return luaEntry{}, false
	}
	code := unquoteLua(key.Content(src))
	if code == "" {
		return luaEntry{}, false
	}

	values := fieldChildren(n, "value")
	var value *luaValue
	switch {
	case len(values) == 1:
		value = decodeValue(values[0], src)
	case len(values) == 2 && values[0].Type() == "identifier" && values[1].Type() == "string":
		// m["x"] = m["y"] comes out as the table name followed by the key.
		value = &luaValue{kind: luaRef, str: unquoteLua(values[1].Content(src))}
	default:
		value = &luaValue{kind: luaOther}
	}
	return luaEntry{code: code, value: value, line: int(key.StartPoint().Row) + 1}, true
}

// fieldChildren returns the named children of n tagged with field.
func fieldChildren(n *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && c.IsNamed() && n.FieldNameForChild(i) == field {
			out = append(out, c)
		}
	}
	return out
}

func decodeValue(n *sitter.Node, src []byte) *luaValue {
	switch n.Type() {
	case "string":
		return &luaValue{kind: luaStr, str: unquoteLua(n.Content(src))}
	case "number":
		return &luaValue{kind: luaNumber, str: n.Content(src)}
	case "unary_operation":
		if n.NamedChildCount() == 1 && n.NamedChild(0).Type() == "number" && n.Child(0).Type() == "-" {
			return &luaValue{kind: luaNumber, str: "-" + n.NamedChild(0).Content(src)}
		}
	case "nil":
		return &luaValue{kind: luaNil}
	case "boolean":
		return &luaValue{kind: luaBool, str: strings.TrimSpace(n.Content(src))}
	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return decodeValue(n.NamedChild(0), src)
		}
	case "tableconstructor":
		t := &luaValue{kind: luaTable, named: make(map[string]*luaValue)}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if list := n.NamedChild(i); list.Type() == "fieldlist" {
				decodeFields(list, src, t)
			}
		}
		return t
	}
	return &luaValue{kind: luaOther}
}

// decodeFields reads `v`, `name = v` and `["key"] = v` fields.
func decodeFields(list *sitter.Node, src []byte, t *luaValue) {
	for i := 0; i < int(list.NamedChildCount()); i++ {
		f := list.NamedChild(i)
		if f.Type() != "field" {
			continue
		}
		valueNode := f.ChildByFieldName("value")
		if valueNode == nil {
			continue
		}
		value := decodeValue(valueNode, src)
		if key := f.ChildByFieldName("key"); key != nil {
			if key.Type() == "string" {
				t.named[unquoteLua(key.Content(src))] = value
			}
			continue
		}
		if name := f.ChildByFieldName("name"); name != nil {
			t.named[strings.TrimSpace(name.Content(src))] = value
			continue
		}
		t.positional = append(t.positional, value)
	}
}

// unquoteLua strips the delimiters from a Lua string literal and resolves
// the common escapes. Long brackets are taken verbatim.
func unquoteLua(raw string) string {
	if strings.HasPrefix(raw, "[") {
		open := strings.Index(raw[1:], "[")
		if open < 0 {
			return raw
		}
		level := open
		body := raw[level+2:]
		body = strings.TrimSuffix(body, "]"+strings.Repeat("=", level)+"]")
		return strings.TrimPrefix(body, "\n")
	}
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(body[i])
		}
	}
	return sb.String()
}
