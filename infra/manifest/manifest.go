package manifest

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// Manifest is the frozen, validated view of a stack.
type Manifest struct {
	stack     StackID
	resources []Resource
	params    []ParameterEntry
}

func newManifest(s *Stack) *Manifest {
	m := &Manifest{
		stack:     s.id,
		resources: make([]Resource, len(s.resources)),
		params:    s.Parameters(),
	}
	for i, r := range s.resources {
		m.resources[i] = r.clone()
	}
	return m
}

// Stack returns the identity of the stack the manifest was built from.
func (m *Manifest) Stack() StackID {
	return m.stack
}

// Len returns the number of declared resources.
func (m *Manifest) Len() int {
	return len(m.resources)
}

// Resources returns copies of the resources in declaration order. Changing
// them does not change the manifest.
func (m *Manifest) Resources() []Resource {
	out := make([]Resource, len(m.resources))
	for i, r := range m.resources {
		out[i] = r.clone()
	}
	return out
}

// Resource looks a copy of a resource up by name.
func (m *Manifest) Resource(name string) (Resource, bool) {
	for _, r := range m.resources {
		if r.Name == name {
			return r.clone(), true
		}
	}
	return Resource{}, false
}

// Count returns the number of resources of one kind.
func (m *Manifest) Count(kind Kind) int {
	n := 0
	for _, r := range m.resources {
		if r.Kind() == kind {
			n++
		}
	}
	return n
}

// Parameters returns the parameter namespace as path → value.
func (m *Manifest) Parameters() map[string]string {
	out := make(map[string]string, len(m.params))
	for _, p := range m.params {
		out[p.Path] = p.Value
	}
	return out
}

// ParameterEntries returns the entries in publication order.
func (m *Manifest) ParameterEntries() []ParameterEntry {
	out := make([]ParameterEntry, len(m.params))
	copy(out, m.params)
	return out
}

// Edges returns every dependency of the stack's resources in declaration
// order. Targets may live in other stacks.
func (m *Manifest) Edges() []Edge {
	var out []Edge
	for _, r := range m.resources {
		for _, ref := range r.References() {
			out = append(out, Edge{From: r.Ref(), To: ref})
		}
	}
	return out
}

type resourceDocument struct {
	Name      string `json:"name" yaml:"name"`
	Kind      Kind   `json:"kind" yaml:"kind"`
	DependsOn []Ref  `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
	Spec      Spec   `json:"spec" yaml:"spec"`
}

type document struct {
	Stack      string             `json:"stack" yaml:"stack"`
	ID         StackID            `json:"id" yaml:"id"`
	Resources  []resourceDocument `json:"resources" yaml:"resources"`
	Parameters []ParameterEntry   `json:"parameters" yaml:"parameters"`
}

func (m *Manifest) document() document {
	doc := document{
		Stack:      m.stack.Name(),
		ID:         m.stack,
		Resources:  make([]resourceDocument, 0, len(m.resources)),
		Parameters: m.ParameterEntries(),
	}
	for _, r := range m.resources {
		doc.Resources = append(doc.Resources, resourceDocument{
			Name:      r.Name,
			Kind:      r.Kind(),
			DependsOn: r.References(),
			Spec:      r.Spec,
		})
	}
	return doc
}

// MarshalJSON implements json.Marshaler.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.document())
}

// MarshalYAML implements yaml.Marshaler.
func (m *Manifest) MarshalYAML() (any, error) {
	return m.document(), nil
}

// WriteYAML writes the manifests as a multi-document YAML stream.
func WriteYAML(w io.Writer, manifests ...*Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, m := range manifests {
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return enc.Close()
}

// WriteJSON writes the manifests as an indented JSON array.
func WriteJSON(w io.Writer, manifests ...*Manifest) error {
	docs := make([]document, len(manifests))
	for i, m := range manifests {
		docs[i] = m.document()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}
