package wire

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode reads a JSON encoded result.
func Decode(r io.Reader) (*Result, error) {
	var res Result
	dec := json.NewDecoder(r)
	if err := dec.Decode(&res); err != nil {
		return nil, fmt.Errorf("decode result json: %w", err)
	}
	return &res, nil
}

// DecodeYAML reads a YAML encoded result.
func DecodeYAML(r io.Reader) (*Result, error) {
	var res Result
	if err := yaml.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode result yaml: %w", err)
	}
	return &res, nil
}

// LoadFile reads a result file, choosing the decoder by extension.
func LoadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open result file: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return Decode(f)
	case ".yaml", ".yml":
		return DecodeYAML(f)
	default:
		return nil, fmt.Errorf("unsupported result file extension %q", ext)
	}
}
