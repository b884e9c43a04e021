package builder

import (
	"fmt"

	"github.com/reginaldFerland/cdk/infra/manifest"
)

// Derived attributes a provisioner may return for a resource.
const (
	OutputArn      = "Arn"
	OutputEndpoint = "Endpoint"
	OutputUrl      = "Url"
	OutputUri      = "Uri"
)

// Outputs maps a derived attribute name to its value. Values may be deploy
// time tokens rather than literal strings.
type Outputs map[string]string

// Provisioner materializes declared resources with a construct library. The
// builder calls it once per stack, once per declared resource and once per
// published parameter, always in declaration order.
type Provisioner interface {
	OpenStack(id manifest.StackID) error
	Provision(res manifest.Resource) (Outputs, error)
	AddClusterInstance(cluster manifest.Ref, name string) error
	Publish(stack manifest.StackID, entry manifest.ParameterEntry) error
}

// Symbolic is a construct-free Provisioner. Derived attributes are rendered as
// ${stack.resource.Attr} placeholders, which makes it suitable for rendering
// manifests without synthesizing a template.
type Symbolic struct {
	opened    map[manifest.StackID]bool
	instances map[manifest.Ref][]string
	published []manifest.ParameterEntry
}

// NewSymbolic returns an empty symbolic provisioner.
func NewSymbolic() *Symbolic {
	return &Symbolic{
		opened:    make(map[manifest.StackID]bool),
		instances: make(map[manifest.Ref][]string),
	}
}

func (s *Symbolic) OpenStack(id manifest.StackID) error {
	if s.opened[id] {
		return fmt.Errorf("stack %s already opened", id)
	}
	s.opened[id] = true
	return nil
}

func (s *Symbolic) Provision(res manifest.Resource) (Outputs, error) {
	if !s.opened[res.Stack] {
		return nil, fmt.Errorf("stack %s not opened", res.Stack)
	}
	out := Outputs{}
	for _, attr := range symbolicAttributes[res.Kind()] {
		out[attr] = fmt.Sprintf("${%s.%s.%s}", res.Stack.Name(), res.Name, attr)
	}
	return out, nil
}

func (s *Symbolic) AddClusterInstance(cluster manifest.Ref, name string) error {
	s.instances[cluster] = append(s.instances[cluster], name)
	return nil
}

func (s *Symbolic) Publish(stack manifest.StackID, entry manifest.ParameterEntry) error {
	if !s.opened[stack] {
		return fmt.Errorf("stack %s not opened", stack)
	}
	s.published = append(s.published, entry)
	return nil
}

// Instances returns the instances added to a cluster after its declaration.
func (s *Symbolic) Instances(cluster manifest.Ref) []string {
	return s.instances[cluster]
}

// Published returns every parameter entry in publication order.
func (s *Symbolic) Published() []manifest.ParameterEntry {
	return s.published
}

var symbolicAttributes = map[manifest.Kind][]string{
	manifest.KindComputeCluster:    {OutputArn},
	manifest.KindContainerRegistry: {OutputArn, OutputUri},
	manifest.KindSearchDomain:      {OutputArn, OutputEndpoint},
	manifest.KindDatabaseCluster:   {OutputArn, OutputEndpoint},
	manifest.KindContainerService:  {OutputArn},
	manifest.KindTopic:             {OutputArn},
	manifest.KindQueue:             {OutputArn, OutputUrl},
}
