package cli

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

func render(w io.Writer, format string, v any) error {
	if format == "yaml" {
		// Round-trip through JSON so yaml keys follow the json tags.
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(b, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
