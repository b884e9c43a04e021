// Package builder declares the resources of one stack through a fluent chain
// of With operations.
//
// A Builder owns exactly one manifest.Stack. Each operation declares a
// resource, hands it to the Provisioner and, when the resource has a value
// other stacks need to discover, publishes it under
// /{env}/{app}/{service|general}/{label}. Handles to declared resources are
// returned through optional out pointers so they can be given to a later
// builder:
//
//	var vpc, cluster manifest.Ref
//	_, err := builder.New(catalog, prov, appCfg).
//		WithVpc(&vpc).
//		WithContainerCluster(vpc, &cluster).
//		Build()
//
// The first error stops the chain: later operations do nothing and Build
// returns it.
package builder

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/reginaldFerland/cdk/infra/config"
	"github.com/reginaldFerland/cdk/infra/manifest"
)

// ConfigurationError reports an operation that cannot run because required
// input is missing and has no default, or because a precondition of the
// chain does not hold.
type ConfigurationError struct {
	Stack  string
	Op     string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Stack, e.Op, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Option customizes a Builder.
type Option func(*Builder)

// WithLogger sets the logger used to trace declarations.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// Builder accumulates the resources of one stack.
type Builder struct {
	id      manifest.StackID
	cfg     config.Provider
	catalog *manifest.Catalog
	stack   *manifest.Stack
	prov    Provisioner
	log     *slog.Logger
	err     error

	// handles of resources this builder declared that later operations use
	network  manifest.Ref
	registry manifest.Ref
	database manifest.Ref
}

// New opens a stack named after cfg in the catalog. A nil or invalid config
// is reported as a ConfigurationError by Err and Build.
func New(catalog *manifest.Catalog, prov Provisioner, cfg config.Provider, opts ...Option) *Builder {
	b := &Builder{
		cfg:     cfg,
		catalog: catalog,
		prov:    prov,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}

	if cfg == nil {
		return b.fail("New", "no configuration", nil)
	}
	ident := cfg.Identity()
	b.id = manifest.StackID{App: ident.AppName, Env: ident.EnvName, Scope: ident.Scope()}
	if err := cfg.Validate(); err != nil {
		return b.fail("New", "invalid configuration", err)
	}
	if catalog == nil || prov == nil {
		return b.fail("New", "catalog and provisioner are required", nil)
	}

	stack, err := catalog.NewStack(b.id)
	if err != nil {
		return b.fail("New", "cannot register stack", err)
	}
	b.stack = stack
	if err := prov.OpenStack(b.id); err != nil {
		return b.fail("New", "cannot open stack", err)
	}
	b.log = b.log.With("stack", b.id.Name())
	b.log.Debug("opened stack")
	return b
}

// ID returns the identity of the stack being built.
func (b *Builder) ID() manifest.StackID {
	return b.id
}

// Err returns the first error recorded by the chain.
func (b *Builder) Err() error {
	return b.err
}

// Build finalizes the stack and returns its manifest.
func (b *Builder) Build() (*manifest.Manifest, error) {
	if b.err != nil {
		return nil, b.err
	}
	m, err := b.stack.Finalize()
	if err != nil {
		return nil, err
	}
	b.log.Debug("built stack", "resources", m.Len(), "parameters", len(m.ParameterEntries()))
	return m, nil
}

func (b *Builder) fail(op, reason string, err error) *Builder {
	if b.err == nil {
		b.err = &ConfigurationError{Stack: b.id.Name(), Op: op, Reason: reason, Err: err}
	}
	return b
}

func (b *Builder) ok() bool {
	return b.err == nil
}

// declare adds a resource to the stack and provisions it.
func (b *Builder) declare(op, name string, spec manifest.Spec) (manifest.Ref, Outputs, bool) {
	ref, err := b.stack.Declare(name, spec)
	if err != nil {
		b.fail(op, "cannot declare "+name, err)
		return manifest.Ref{}, nil, false
	}
	res, _ := b.stack.Resource(ref)
	out, err := b.prov.Provision(res)
	if err != nil {
		b.fail(op, "cannot provision "+name, err)
		return manifest.Ref{}, nil, false
	}
	b.log.Debug("declared resource", "kind", ref.Kind, "name", name)
	return ref, out, true
}

// publish records a derived value in the parameter namespace.
func (b *Builder) publish(op, label string, out Outputs, attr string) bool {
	value, ok := out[attr]
	if !ok {
		b.fail(op, fmt.Sprintf("provisioner returned no %s for %s", attr, label), nil)
		return false
	}
	entry, err := b.stack.Publish(label, value)
	if err != nil {
		b.fail(op, "cannot publish "+label, err)
		return false
	}
	if err := b.prov.Publish(b.id, entry); err != nil {
		b.fail(op, "cannot publish "+entry.Path, err)
		return false
	}
	b.log.Debug("published parameter", "path", entry.Path)
	return true
}

// requireRef checks that a handle given by the caller is set and of the
// expected kind. Whether it was declared is checked when the stack is built.
func (b *Builder) requireRef(op, what string, ref manifest.Ref, kind manifest.Kind) bool {
	if ref.IsZero() {
		b.fail(op, "no "+what+" handle given", nil)
		return false
	}
	if ref.Kind != kind {
		b.fail(op, fmt.Sprintf("%s handle %s is a %s, want %s", what, ref, ref.Kind, kind), nil)
		return false
	}
	return true
}

func bind(out *manifest.Ref, ref manifest.Ref) {
	if out != nil {
		*out = ref
	}
}
