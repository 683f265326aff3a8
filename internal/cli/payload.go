package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kottinov/website-builder/pkg/errors"
)

// payloadFlags select where a command reads its JSON payload from.
type payloadFlags struct {
	inline string // --json
	file   string // --file, "-" for stdin
}

func (p *payloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.inline, "json", "j", "", "payload as inline JSON")
	cmd.Flags().StringVarP(&p.file, "file", "f", "", "payload file (.json, .yaml or .yml; - for stdin)")
}

// read decodes the payload. Without --json or --file, stdin is read.
// YAML files are converted through JSON so numbers and nulls look exactly as
// they would in a JSON payload.
func (p *payloadFlags) read(stdin io.Reader) (any, error) {
	var (
		data   []byte
		isYAML bool
		err    error
	)
	switch {
	case p.inline != "":
		data = []byte(p.inline)
	case p.file != "" && p.file != "-":
		data, err = os.ReadFile(p.file)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read payload")
		}
		ext := strings.ToLower(filepath.Ext(p.file))
		isYAML = ext == ".yaml" || ext == ".yml"
	default:
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read payload from stdin")
		}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "payload is empty (use --json, --file or stdin)")
	}

	if isYAML {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse YAML payload")
		}
		if data, err = json.Marshal(v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "convert YAML payload")
		}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse JSON payload")
	}
	return v, nil
}

// readObject reads a payload that must be a JSON object.
func (p *payloadFlags) readObject(stdin io.Reader) (map[string]any, error) {
	v, err := p.read(stdin)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "payload must be a JSON object")
	}
	return m, nil
}
