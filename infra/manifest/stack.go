package manifest

import (
	"errors"
	"fmt"
)

// Stack accumulates the resources and parameters declared by one builder.
// Resources are append-only and keep declaration order. A stack is created
// through a Catalog and frozen by Finalize.
type Stack struct {
	id        StackID
	catalog   *Catalog
	resources []Resource
	index     map[string]int
	params    []ParameterEntry
	manifest  *Manifest
}

// ID returns the stack identity.
func (s *Stack) ID() StackID {
	return s.id
}

// Frozen reports whether Finalize has succeeded.
func (s *Stack) Frozen() bool {
	return s.manifest != nil
}

// Len returns the number of declared resources.
func (s *Stack) Len() int {
	return len(s.resources)
}

// Declare appends a resource and returns its handle.
func (s *Stack) Declare(name string, spec Spec) (Ref, error) {
	if s.Frozen() {
		return Ref{}, fmt.Errorf("%s: declare %q: %w", s.id, name, ErrFrozen)
	}
	if name == "" {
		return Ref{}, fmt.Errorf("%s: resource name is empty", s.id)
	}
	if spec == nil {
		return Ref{}, fmt.Errorf("%s: resource %q has no spec", s.id, name)
	}
	if _, ok := s.index[name]; ok {
		return Ref{}, fmt.Errorf("%s: %q: %w", s.id, name, ErrDuplicateResource)
	}

	res := Resource{Name: name, Stack: s.id, Spec: spec}
	s.index[name] = len(s.resources)
	s.resources = append(s.resources, res)
	return res.Ref(), nil
}

// Resource returns the resource the ref points at when it belongs to this
// stack and has the referenced kind.
func (s *Stack) Resource(ref Ref) (Resource, bool) {
	if ref.Stack != s.id {
		return Resource{}, false
	}
	i, ok := s.index[ref.Name]
	if !ok || s.resources[i].Kind() != ref.Kind {
		return Resource{}, false
	}
	return s.resources[i], true
}

// Resources returns the declared resources in declaration order.
func (s *Stack) Resources() []Resource {
	out := make([]Resource, len(s.resources))
	copy(out, s.resources)
	return out
}

// Amend replaces the spec of a declared resource. It is refused once any
// resource in the run references the target, so nothing observes a resource
// changing after it was handed out.
func (s *Stack) Amend(ref Ref, fn func(Spec) (Spec, error)) error {
	if s.Frozen() {
		return fmt.Errorf("%s: amend %s: %w", s.id, ref.Name, ErrFrozen)
	}
	if _, ok := s.Resource(ref); !ok {
		return fmt.Errorf("%s: amend %s: %w", s.id, ref, ErrUnknownResource)
	}
	if by := s.catalog.referrers(ref); len(by) > 0 {
		return fmt.Errorf("%s: amend %s: %w (%s)", s.id, ref, ErrReferenced, by[0])
	}

	i := s.index[ref.Name]
	spec, err := fn(s.resources[i].Spec)
	if err != nil {
		return err
	}
	if spec == nil || spec.Kind() != ref.Kind {
		return fmt.Errorf("%s: amend %s: spec kind changed", s.id, ref)
	}
	s.resources[i].Spec = spec
	return nil
}

// Publish appends a parameter entry under the stack's namespace. Duplicate
// paths are reported by Finalize rather than here so every collision in a
// run shows up together.
func (s *Stack) Publish(label, value string) (ParameterEntry, error) {
	if s.Frozen() {
		return ParameterEntry{}, fmt.Errorf("%s: publish %q: %w", s.id, label, ErrFrozen)
	}
	if label == "" {
		return ParameterEntry{}, errors.New("parameter label is empty")
	}
	entry := ParameterEntry{
		Path:  s.id.ParameterPath(label),
		Label: label,
		Value: value,
	}
	s.params = append(s.params, entry)
	return entry, nil
}

// Parameters returns the published entries in publication order.
func (s *Stack) Parameters() []ParameterEntry {
	out := make([]ParameterEntry, len(s.params))
	copy(out, s.params)
	return out
}

// Finalize validates the stack against the rest of the run and freezes it.
// Calling it again after success returns the same manifest.
func (s *Stack) Finalize() (*Manifest, error) {
	if s.manifest != nil {
		return s.manifest, nil
	}

	verr := &ValidationError{Scope: s.id.Name()}
	s.checkPaths(verr)
	s.checkReferences(verr)
	for _, other := range s.catalog.stacks {
		if other == s {
			continue
		}
		s.checkPathsAgainst(other, verr)
	}
	if verr.hasViolations() {
		return nil, verr
	}

	s.freeze()
	return s.manifest, nil
}

func (s *Stack) freeze() {
	if s.manifest == nil {
		s.manifest = newManifest(s)
	}
}

func (s *Stack) checkPaths(verr *ValidationError) {
	counts := make(map[string]int, len(s.params))
	for _, p := range s.params {
		counts[p.Path]++
	}
	for _, p := range s.params {
		n := counts[p.Path]
		if n > 1 {
			verr.add(RuleDuplicatePath, p.Path, "published %d times by %s", n, s.id)
			counts[p.Path] = 0
		}
	}
}

func (s *Stack) checkPathsAgainst(other *Stack, verr *ValidationError) {
	theirs := make(map[string]struct{}, len(other.params))
	for _, p := range other.params {
		theirs[p.Path] = struct{}{}
	}
	reported := make(map[string]struct{})
	for _, p := range s.params {
		if _, ok := theirs[p.Path]; !ok {
			continue
		}
		if _, done := reported[p.Path]; done {
			continue
		}
		reported[p.Path] = struct{}{}
		verr.add(RuleDuplicatePath, p.Path, "published by both %s and %s", s.id, other.id)
	}
}

func (s *Stack) checkReferences(verr *ValidationError) {
	for i, res := range s.resources {
		for _, ref := range res.References() {
			if ref.Stack != s.id {
				if _, ok := s.catalog.Resolve(ref); !ok {
					verr.add(RuleDanglingReference, res.Ref().String(), "references undeclared %s", ref)
				}
				continue
			}
			j, ok := s.index[ref.Name]
			switch {
			case !ok || s.resources[j].Kind() != ref.Kind:
				verr.add(RuleDanglingReference, res.Ref().String(), "references undeclared %s", ref)
			case j >= i:
				verr.add(RuleForwardReference, res.Ref().String(), "references %s declared after it", ref)
			}
		}
	}
}
