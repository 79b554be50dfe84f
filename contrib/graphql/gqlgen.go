package graphql

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/jvdsande/harmony/compiler/gen"
	"github.com/jvdsande/harmony/schema/property"
)

// GQLGenConfig is a gqlgen.yml document. Harmony edits the schema list and
// the model bindings; every other key is written back as it was read.
type GQLGenConfig struct {
	doc yaml.Node
}

// LoadGQLGenConfig reads a gqlgen.yml file. A missing file yields an empty
// configuration.
func LoadGQLGenConfig(path string) (*GQLGenConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ParseGQLGenConfig(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read gqlgen config: %w", err)
	}
	return ParseGQLGenConfig(data)
}

// ParseGQLGenConfig parses a gqlgen.yml document.
func ParseGQLGenConfig(data []byte) (*GQLGenConfig, error) {
	c := &GQLGenConfig{}
	if err := yaml.Unmarshal(data, &c.doc); err != nil {
		return nil, fmt.Errorf("parse gqlgen config: %w", err)
	}
	switch {
	case c.doc.Kind == 0:
		c.doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mappingNode()}}
	case len(c.doc.Content) != 1 || c.doc.Content[0].Kind != yaml.MappingNode:
		return nil, errors.New("parse gqlgen config: document is not a mapping")
	}
	return c, nil
}

// Save writes the configuration to path, creating its directory.
func (c *GQLGenConfig) Save(path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&c.doc); err != nil {
		return fmt.Errorf("marshal gqlgen config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("marshal gqlgen config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Schemas returns the schema files of the configuration.
func (c *GQLGenConfig) Schemas() []string {
	return values(lookup(c.root(), "schema"))
}

// Models returns the Go types bound to a GraphQL type.
func (c *GQLGenConfig) Models(typeName string) []string {
	return values(lookup(lookup(lookup(c.root(), "models"), typeName), "model"))
}

// AddSchema registers a schema file unless it is already listed.
func (c *GQLGenConfig) AddSchema(path string) {
	set(c.root(), "schema", path)
}

// BindModel binds a GraphQL type to a Go type. Existing bindings of the
// type are kept; gqlgen picks the first one that fits.
func (c *GQLGenConfig) BindModel(typeName, model string) {
	models := child(c.root(), "models")
	set(child(models, typeName), "model", model)
}

// InjectHarmonyBindings registers schemaPath and binds the scalars printed
// for g: Date and Number to this package, JSON to graphql.Any and every
// adapter identifier scalar to graphql.ID.
func (c *GQLGenConfig) InjectHarmonyBindings(g *gen.Graph, schemaPath string) {
	if schemaPath != "" {
		c.AddSchema(schemaPath)
	}
	b := Bindings(g)
	for _, name := range slices.Sorted(maps.Keys(b)) {
		c.BindModel(name, b[name])
	}
}

// Bindings returns the gqlgen model of every scalar printed for g.
func Bindings(g *gen.Graph) map[string]string {
	out := map[string]string{
		"Date":   DateModel,
		"Number": NumberModel,
		"JSON":   JSONModel,
	}
	if g == nil {
		return out
	}
	for _, owner := range g.Adapters() {
		out[property.IDScalar(owner)] = IDModel
	}
	return out
}

func (c *GQLGenConfig) root() *yaml.Node { return c.doc.Content[0] }

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// lookup returns the value of key in mapping m, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// child returns the mapping stored under key, replacing a null or missing
// value with an empty mapping.
func child(m *yaml.Node, key string) *yaml.Node {
	if v := lookup(m, key); v != nil {
		if v.Kind == yaml.MappingNode {
			return v
		}
		*v = *mappingNode()
		return v
	}
	v := mappingNode()
	m.Content = append(m.Content, scalarNode(key), v)
	return v
}

// set adds value to the string or list stored under key. A single value
// stays a string; a second one turns it into a list.
func set(m *yaml.Node, key, value string) {
	v := lookup(m, key)
	switch {
	case v == nil:
		m.Content = append(m.Content, scalarNode(key), scalarNode(value))
	case slices.Contains(values(v), value):
	case v.Kind == yaml.SequenceNode:
		v.Content = append(v.Content, scalarNode(value))
	case v.Kind == yaml.ScalarNode && v.Tag != "!!null":
		*v = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{scalarNode(v.Value), scalarNode(value)}}
	default:
		*v = *scalarNode(value)
	}
}

// values reads a string or a list of strings.
func values(n *yaml.Node) []string {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil
		}
		return []string{n.Value}
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind == yaml.ScalarNode {
				out = append(out, item.Value)
			}
		}
		return out
	}
	return nil
}
