package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/speakeasy-api/openapi/sequencedmap"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jward/langtree/internal/store"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the stored registry",
	Long: `Writes the stored registry in the selected format. JSON and YAML carry the
lookup tables in registry order plus one record per language and family;
text prints the language records as a table.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportOut, "out", "", "write to this file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return outputError("export", err)
	}
	defer s.Close()

	e, err := s.ReadExport()
	if err != nil {
		return outputError("export", err)
	}

	if flagExportOut != "" {
		err = writeExportFile(flagExportOut, e, flagFormat)
	} else {
		err = writeExport(os.Stdout, e, flagFormat)
	}
	if err != nil {
		return outputError("export", err)
	}
	return nil
}

// writeExportFile writes the export to path. The close error is returned
// since it is where a failed flush shows up.
func writeExportFile(path string, e *store.Export, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := writeExport(f, e, format); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}
	return nil
}

func writeExport(w io.Writer, e *store.Export, format string) error {
	switch format {
	case "text":
		formatLanguagesText(w, e.Languages)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		doc, err := exportYAML(e)
		if err != nil {
			return err
		}
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		return enc.Close()
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding json")
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// exportYAML builds a document whose mappings keep registry order; a plain
// Go map would come out sorted.
func exportYAML(e *store.Export) (*yaml.Node, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	doc.Content = append(doc.Content,
		scalar("code_to_name"), orderedNode(e.CodeToName),
		scalar("name_to_code"), orderedNode(e.NameToCode),
		scalar("ety_code_to_code"), orderedNode(e.EtyCodeToCode),
	)
	for _, kv := range []struct {
		key   string
		value any
	}{
		{"reconstructed", e.ReconstructedCodes()},
		{"languages", e.Languages},
		{"families", e.Families},
	} {
		var n yaml.Node
		if err := n.Encode(kv.value); err != nil {
			return nil, errors.Wrapf(err, "encoding %s", kv.key)
		}
		doc.Content = append(doc.Content, scalar(kv.key), &n)
	}
	return doc, nil
}

func orderedNode(m *sequencedmap.Map[string, string]) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for k, v := range m.All() {
		n.Content = append(n.Content, scalar(k), scalar(v))
	}
	return n
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
