package meaning

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadVector reads a vector file: a YAML (or JSON) mapping of dimension
// name to value. A document that is null or empty yields a nil vector,
// which callers treat as "absent".
func LoadVector(path string) (*Vector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vector file %s: %w", path, err)
	}
	v, err := ParseVector(data)
	if err != nil {
		return nil, fmt.Errorf("parsing vector file %s: %w", path, err)
	}
	return v, nil
}

// ParseVector decodes a YAML/JSON dimension mapping.
func ParseVector(data []byte) (*Vector, error) {
	var raw map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	v, err := FromMap(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MarshalYAML writes the vector as a name → value mapping.
func (v Vector) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, x := range v {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: dimensionNames[i]},
			&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(x, 'g', -1, 64)},
		)
	}
	return node, nil
}

// UnmarshalYAML accepts the mapping produced by MarshalYAML.
func (v *Vector) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]float64
	if err := node.Decode(&raw); err != nil {
		return err
	}
	out, err := FromMap(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}
