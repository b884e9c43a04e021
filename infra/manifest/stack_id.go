// Package manifest holds the declared resources of every stack in a synthesis
// run, the parameter namespace they publish, and the validation that turns a
// stack into a frozen, exportable Manifest.
package manifest

import (
	"fmt"
	"strings"
)

// GeneralScope is the scope of app-level stacks that are not owned by a single
// service.
const GeneralScope = "general"

// StackID identifies a stack. Scope is GeneralScope for app-level stacks and
// the service name otherwise.
type StackID struct {
	App   string `json:"app" yaml:"app"`
	Env   string `json:"env" yaml:"env"`
	Scope string `json:"scope" yaml:"scope"`
}

// Name returns the construct id of the stack: {app}-{scope}-{env}.
func (id StackID) Name() string {
	return fmt.Sprintf("%s-%s-%s", id.App, id.Scope, id.Env)
}

func (id StackID) String() string {
	return id.Name()
}

// IsGeneral reports whether the stack is app-level.
func (id StackID) IsGeneral() bool {
	return id.Scope == GeneralScope
}

// ResourceName derives a physical resource name from the stack identity.
// App-level stacks produce {app}-{kind}-{env}, service stacks produce
// {app}-{service}-{kind}-{env}.
func (id StackID) ResourceName(kind string) string {
	if id.IsGeneral() {
		return fmt.Sprintf("%s-%s-%s", id.App, kind, id.Env)
	}
	return fmt.Sprintf("%s-%s-%s-%s", id.App, id.Scope, kind, id.Env)
}

// ScopedName is ResourceName with the scope kept for app-level stacks too:
// {app}-{scope}-{kind}-{env}.
func (id StackID) ScopedName(kind string) string {
	return fmt.Sprintf("%s-%s-%s-%s", id.App, id.Scope, kind, id.Env)
}

// ParameterBase returns the parameter namespace prefix of the stack:
// /{env}/{app}/{service|general}.
func (id StackID) ParameterBase() string {
	return "/" + strings.Join([]string{id.Env, id.App, id.Scope}, "/")
}

// ParameterPath returns the full parameter path for a resource label.
func (id StackID) ParameterPath(label string) string {
	return id.ParameterBase() + "/" + label
}

func (id StackID) validate() error {
	var missing []string
	if id.App == "" {
		missing = append(missing, "app")
	}
	if id.Env == "" {
		missing = append(missing, "env")
	}
	if id.Scope == "" {
		missing = append(missing, "scope")
	}
	if len(missing) > 0 {
		return fmt.Errorf("stack identity is missing %s", strings.Join(missing, ", "))
	}
	return nil
}
