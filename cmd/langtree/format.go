package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/jward/langtree/internal/store"
)

// formatLookupText prints the result alone, or "-" when nothing was found.
func formatLookupText(w io.Writer, l CLILookup) {
	if !l.Found && l.Result == "" {
		fmt.Fprintln(w, "-")
		return
	}
	fmt.Fprintln(w, l.Result)
}

// formatCodesText prints one code per line.
func formatCodesText(w io.Writer, codes []string) {
	for _, c := range codes {
		fmt.Fprintln(w, c)
	}
}

// formatMatchesText formats name matches as aligned columns.
func formatMatchesText(w io.Writer, matches []store.NameMatch) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCODE")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\n", m.Name, m.Code)
	}
	tw.Flush()
}

// formatLanguagesText formats language entries as aligned columns.
func formatLanguagesText(w io.Writer, entries []store.LanguageEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tFAMILY\tPARENT\tFLAGS\tANCESTORS")
	for _, e := range entries {
		parent := e.Parent
		if parent == "" && len(e.Parents) > 0 {
			parent = strings.Join(e.Parents, "+")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Code, e.Name, dash(e.Family), dash(parent), flags(e), dash(strings.Join(e.Ancestors, " > ")))
	}
	tw.Flush()
}

// formatInfoText prints key/value pairs sorted by key.
func formatInfoText(w io.Writer, info map[string]string) {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\n", k, info[k])
	}
	tw.Flush()
}

func flags(e store.LanguageEntry) string {
	var f []string
	if e.EtymologyOnly {
		f = append(f, "ety")
	}
	if e.Reconstructed {
		f = append(f, "rec")
	}
	return dash(strings.Join(f, ","))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case CLILookup:
		formatLookupText(w, v)
	case []string:
		formatCodesText(w, v)
	case []store.NameMatch:
		formatMatchesText(w, v)
	case store.LanguageEntry:
		formatLanguagesText(w, []store.LanguageEntry{v})
	case []store.LanguageEntry:
		formatLanguagesText(w, v)
	case map[string]string:
		formatInfoText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	// Pagination footer.
	if result.TotalCount != nil {
		count := *result.TotalCount
		shown := resultLen(result.Results)
		if shown < count {
			fmt.Fprintf(w, "\nShowing %d of %d results\n", shown, count)
		}
	}
	return nil
}

// resultLen returns the length of a result slice, or 1 for a single value.
func resultLen(v any) int {
	switch r := v.(type) {
	case []string:
		return len(r)
	case []store.NameMatch:
		return len(r)
	case []store.LanguageEntry:
		return len(r)
	case nil:
		return 0
	default:
		return 1
	}
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text", "yaml"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, ", "))
}
