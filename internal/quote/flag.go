package quote

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flag is an optional service toggle. Forms send it as true/false or as 0/1;
// both decode. It always encodes as a JSON boolean.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	v, err := parseFlag(string(bytes.TrimSpace(b)))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: flag must be a scalar", node.Line)
	}
	v, err := parseFlag(strings.ToLower(node.Value))
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*f = v
	return nil
}

// Int is the 0/1 wire form.
func (f Flag) Int() int {
	if f {
		return 1
	}
	return 0
}

func parseFlag(s string) (Flag, error) {
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0", "null", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid flag %s: want true, false, 0 or 1", s)
}
