package cli

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kottinov/website-builder/pkg/errors"
)

// Output formats for --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var outputs = []string{outputText, outputJSON, outputYAML}

// emit writes v as JSON or YAML, or calls text for human output.
func (c *CLI) emit(v any, text func(io.Writer)) error {
	switch c.flags.output {
	case outputJSON:
		return writeJSON(c.Out, v)
	case outputYAML:
		return writeYAML(c.Out, v)
	default:
		if text == nil {
			return writeJSON(c.Out, v)
		}
		text(c.Out)
		return nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// writeYAML encodes v through its JSON form so that field names and
// omitted fields match the JSON output.
func writeYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode output")
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode output")
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode output")
	}
	return enc.Close()
}
