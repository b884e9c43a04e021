package manifest

import "fmt"

// Catalog is one synthesis run: every stack declared by every builder taking
// part in a composition. Cross-stack references resolve through it and
// parameter paths must be unique across it.
type Catalog struct {
	stacks []*Stack
	byID   map[StackID]*Stack
}

// NewCatalog returns an empty run.
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[StackID]*Stack)}
}

// NewStack registers a stack with a fresh identity.
func (c *Catalog) NewStack(id StackID) (*Stack, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	if _, ok := c.byID[id]; ok {
		return nil, fmt.Errorf("%s: %w", id, ErrDuplicateStack)
	}
	s := &Stack{
		id:      id,
		catalog: c,
		index:   make(map[string]int),
	}
	c.stacks = append(c.stacks, s)
	c.byID[id] = s
	return s, nil
}

// Stack looks a stack up by identity.
func (c *Catalog) Stack(id StackID) (*Stack, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Stacks returns the stacks in registration order.
func (c *Catalog) Stacks() []*Stack {
	out := make([]*Stack, len(c.stacks))
	copy(out, c.stacks)
	return out
}

// Resolve finds the resource a ref points at anywhere in the run.
func (c *Catalog) Resolve(ref Ref) (Resource, bool) {
	s, ok := c.byID[ref.Stack]
	if !ok {
		return Resource{}, false
	}
	return s.Resource(ref)
}

func (c *Catalog) referrers(target Ref) []Ref {
	var out []Ref
	for _, s := range c.stacks {
		for _, res := range s.resources {
			for _, ref := range res.References() {
				if ref == target {
					out = append(out, res.Ref())
				}
			}
		}
	}
	return out
}

// Finalize validates the whole run, aggregating the violations of every
// stack, and freezes the stacks that were not finalized yet.
func (c *Catalog) Finalize() ([]*Manifest, error) {
	verr := &ValidationError{Scope: "run"}
	owners := make(map[string]StackID)
	for _, s := range c.stacks {
		s.checkPaths(verr)
		seen := make(map[string]struct{})
		for _, p := range s.params {
			if _, ok := seen[p.Path]; ok {
				continue
			}
			seen[p.Path] = struct{}{}
			if owner, ok := owners[p.Path]; ok {
				verr.add(RuleDuplicatePath, p.Path, "published by both %s and %s", owner, s.id)
				continue
			}
			owners[p.Path] = s.id
		}
		s.checkReferences(verr)
	}
	if verr.hasViolations() {
		return nil, verr
	}

	out := make([]*Manifest, 0, len(c.stacks))
	for _, s := range c.stacks {
		s.freeze()
		out = append(out, s.manifest)
	}
	return out, nil
}
