package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrDuplicateKey is returned when a keyed object names the same key twice,
// including under different spellings such as "1" and "01".
var ErrDuplicateKey = errors.New("duplicate key")

// Catalog maps keys to static data such as item or location definitions.
// Decoding rejects duplicate keys.
type Catalog[K Keyed, V any] map[K]V

// UnmarshalJSON decodes a JSON object keyed by decimal keys.
func (c *Catalog[K, V]) UnmarshalJSON(data []byte) error {
	m, err := decodeJSONObject[K, V](data)
	if err != nil {
		return err
	}
	*c = m
	return nil
}

// UnmarshalYAML decodes a YAML mapping keyed by decimal keys.
func (c *Catalog[K, V]) UnmarshalYAML(node *yaml.Node) error {
	m, err := decodeYAMLMapping[K, V](node)
	if err != nil {
		return err
	}
	*c = m
	return nil
}

func parseKey[K Keyed](raw string) (K, error) {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s key %q", domainOf[K](), raw)
	}
	return K(n), nil
}

// seenKeys remembers how each key was first spelled.
type seenKeys[K Keyed] map[K]string

func (s seenKeys[K]) add(k K, raw string) error {
	if first, ok := s[k]; ok {
		return fmt.Errorf("%w: %s key %d given as %q and %q", ErrDuplicateKey, domainOf[K](), Key(k), first, raw)
	}
	s[k] = raw
	return nil
}

func decodeJSONObject[K Keyed, V any](data []byte) (map[K]V, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected an object keyed by %s keys", domainOf[K]())
	}

	out := make(map[K]V)
	seen := seenKeys[K]{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		raw, _ := tok.(string)
		k, err := parseKey[K](raw)
		if err != nil {
			return nil, err
		}
		if err := seen.add(k, raw); err != nil {
			return nil, err
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%s key %s: %w", domainOf[K](), raw, err)
		}
		out[k] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeYAMLMapping[K Keyed, V any](node *yaml.Node) (map[K]V, error) {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping keyed by %s keys", node.Line, domainOf[K]())
	}

	out := make(map[K]V, len(node.Content)/2)
	seen := seenKeys[K]{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		k, err := parseKey[K](keyNode.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", keyNode.Line, err)
		}
		if err := seen.add(k, keyNode.Value); err != nil {
			return nil, fmt.Errorf("line %d: %w", keyNode.Line, err)
		}
		var v V
		if err := decodeYAMLStrict(valueNode, &v); err != nil {
			return nil, fmt.Errorf("line %d: %s key %s: %w", keyNode.Line, domainOf[K](), keyNode.Value, err)
		}
		out[k] = v
	}
	return out, nil
}

// decodeYAMLStrict decodes node with unknown fields rejected. Node.Decode
// does not carry the caller's KnownFields setting, so the node is
// re-encoded and decoded again.
func decodeYAMLStrict(node *yaml.Node, v any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}
