package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// Format is a content file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported scenario file extension: %s", filepath.Base(path))
	}
}

// Load decodes a scenario. Unknown fields are rejected, and so is a key
// given twice in one domain, e.g. items "1" and "01". Load does not
// otherwise validate; call Validate, or let game.New do it.
func Load(r io.Reader, format Format) (*Scenario, error) {
	var (
		s   Scenario
		err error
	)
	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(r)
		decoder.DisallowUnknownFields()
		if err = decoder.Decode(&s); err != nil {
			err = fmt.Errorf("failed to decode scenario JSON: %w", err)
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(r)
		decoder.KnownFields(true)
		if err = decoder.Decode(&s); err != nil {
			err = fmt.Errorf("failed to decode scenario YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", format)
	}
	if errors.Is(err, state.ErrDuplicateKey) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads a scenario from path, choosing the format by extension.
func LoadFile(path string) (*Scenario, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("scenario not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open scenario file: %w", err)
	}
	defer f.Close()

	s, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.FileName == "" {
		s.FileName = filepath.Base(path)
	}
	return s, nil
}
