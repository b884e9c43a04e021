package manifest

import (
	"fmt"
	"maps"
	"slices"
)

// Kind names the variant of a Resource.
type Kind string

const (
	KindNetwork           Kind = "Network"
	KindComputeCluster    Kind = "ComputeCluster"
	KindContainerRegistry Kind = "ContainerRegistry"
	KindSearchDomain      Kind = "SearchDomain"
	KindDatabaseCluster   Kind = "DatabaseCluster"
	KindContainerService  Kind = "ContainerService"
	KindTopic             Kind = "Topic"
	KindQueue             Kind = "Queue"
	KindSubscription      Kind = "Subscription"
)

// Ref is a non-owning handle to a resource declared in some stack. Refs are
// plain values and can be passed from one builder to another.
type Ref struct {
	Stack StackID
	Kind  Kind
	Name  string
}

// IsZero reports whether the ref points at nothing.
func (r Ref) IsZero() bool {
	return r == Ref{}
}

func (r Ref) String() string {
	if r.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", r.Stack.Name(), r.Kind, r.Name)
}

// MarshalText renders the ref the way String does so exported manifests show
// a readable path instead of a nested object.
func (r Ref) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Spec is the kind specific part of a Resource.
type Spec interface {
	Kind() Kind
	// References lists the resources this one depends on.
	References() []Ref
}

// Resource is one declared unit of infrastructure. It is owned by the stack
// named in Stack.
type Resource struct {
	Name  string
	Stack StackID
	Spec  Spec
}

// Kind returns the kind of the resource spec.
func (r Resource) Kind() Kind {
	if r.Spec == nil {
		return ""
	}
	return r.Spec.Kind()
}

// Ref returns a handle to the resource.
func (r Resource) Ref() Ref {
	return Ref{Stack: r.Stack, Kind: r.Kind(), Name: r.Name}
}

// References returns the non-zero dependencies of the resource.
func (r Resource) References() []Ref {
	if r.Spec == nil {
		return nil
	}
	var refs []Ref
	for _, ref := range r.Spec.References() {
		if !ref.IsZero() {
			refs = append(refs, ref)
		}
	}
	return refs
}

// ParameterEntry is a value published for cross-stack discovery.
type ParameterEntry struct {
	Path  string `json:"path" yaml:"path"`
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Edge is a dependency between two resources, From depends on To.
type Edge struct {
	From Ref `json:"from" yaml:"from"`
	To   Ref `json:"to" yaml:"to"`
}

// clone returns a copy of the resource that shares no slices or maps with r.
func (r Resource) clone() Resource {
	r.Spec = cloneSpec(r.Spec)
	return r
}

func cloneSpec(spec Spec) Spec {
	switch s := spec.(type) {
	case Network:
		s.Subnets = slices.Clone(s.Subnets)
		return s
	case DatabaseCluster:
		s.Readers = slices.Clone(s.Readers)
		if s.DedicatedNetwork != nil {
			n := cloneSpec(*s.DedicatedNetwork).(Network)
			s.DedicatedNetwork = &n
		}
		return s
	case ContainerService:
		s.Ports = slices.Clone(s.Ports)
		s.HealthCheck.Command = slices.Clone(s.HealthCheck.Command)
		s.Environment = maps.Clone(s.Environment)
		s.Image.BuildArgs = maps.Clone(s.Image.BuildArgs)
		return s
	}
	return spec
}
