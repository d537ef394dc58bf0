package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// writeOutput renders v to w in the format selected by --output.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode json output")
		}
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml output")
		}
	default:
		return eris.Errorf("unknown output format %q (want json or yaml)", format)
	}
	return nil
}
