// Package stacks materializes declared resources as AWS CDK constructs. Each
// stack identity becomes one awscdk.Stack under the app the Provisioner was
// created with.
package stacks

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecr"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssqs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsssm"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/reginaldFerland/cdk/infra/builder"
	"github.com/reginaldFerland/cdk/infra/manifest"
)

var _ builder.Provisioner = (*Provisioner)(nil)

// Provisioner creates CDK constructs for the resources a builder declares.
// Constructs of earlier resources are kept by handle so later resources, in
// the same stack or another one, can be wired to them.
type Provisioner struct {
	scope constructs.Construct
	props awscdk.StackProps

	stacks     map[manifest.StackID]awscdk.Stack
	networks   map[manifest.Ref]awsec2.IVpc
	clusters   map[manifest.Ref]awsecs.ICluster
	registries map[manifest.Ref]awsecr.IRepository
	databases  map[manifest.Ref]awsrds.DatabaseCluster
	topics     map[manifest.Ref]awssns.ITopic
	queues     map[manifest.Ref]awssqs.IQueue
}

// NewProvisioner returns a provisioner creating its stacks under scope. The
// props are applied to every stack.
func NewProvisioner(scope constructs.Construct, props *awscdk.StackProps) *Provisioner {
	p := &Provisioner{
		scope:      scope,
		stacks:     make(map[manifest.StackID]awscdk.Stack),
		networks:   make(map[manifest.Ref]awsec2.IVpc),
		clusters:   make(map[manifest.Ref]awsecs.ICluster),
		registries: make(map[manifest.Ref]awsecr.IRepository),
		databases:  make(map[manifest.Ref]awsrds.DatabaseCluster),
		topics:     make(map[manifest.Ref]awssns.ITopic),
		queues:     make(map[manifest.Ref]awssqs.IQueue),
	}
	if props != nil {
		p.props = *props
	}
	return p
}

// OpenStack creates the CDK stack of a stack identity.
func (p *Provisioner) OpenStack(id manifest.StackID) error {
	if _, ok := p.stacks[id]; ok {
		return fmt.Errorf("stack %s already opened", id)
	}

	sprops := p.props
	stack := awscdk.NewStack(p.scope, jsii.String(id.Name()), &sprops)

	// Tag every resource with the app and the service owning the stack
	awscdk.Tags_Of(stack).Add(jsii.String("App"), jsii.String(id.App), nil)
	awscdk.Tags_Of(stack).Add(jsii.String("Service"), jsii.String(id.Scope), nil)

	p.stacks[id] = stack
	return nil
}

// Stack returns the CDK stack opened for an identity.
func (p *Provisioner) Stack(id manifest.StackID) (awscdk.Stack, bool) {
	stack, ok := p.stacks[id]
	return stack, ok
}

// Provision creates the constructs of one resource and returns its derived
// attributes as CDK tokens.
func (p *Provisioner) Provision(res manifest.Resource) (builder.Outputs, error) {
	stack, ok := p.stacks[res.Stack]
	if !ok {
		return nil, fmt.Errorf("stack %s not opened", res.Stack)
	}
	ref := res.Ref()

	switch spec := res.Spec.(type) {
	case manifest.Network:
		vpc := NewNetwork(stack, res.Name, &NetworkProps{Spec: spec})
		p.networks[ref] = vpc.Vpc
		return builder.Outputs{}, nil

	case manifest.ComputeCluster:
		vpc, err := lookup(p.networks, spec.Network)
		if err != nil {
			return nil, err
		}
		cluster := NewComputeCluster(stack, res.Name, &ComputeClusterProps{Spec: spec, Vpc: vpc})
		p.clusters[ref] = cluster.Cluster
		return builder.Outputs{builder.OutputArn: *cluster.Cluster.ClusterArn()}, nil

	case manifest.ContainerRegistry:
		registry := NewImageRepository(stack, res.Name, &ImageRepositoryProps{Spec: spec})
		p.registries[ref] = registry.Repository
		return builder.Outputs{
			builder.OutputArn: *registry.Repository.RepositoryArn(),
			builder.OutputUri: *registry.Repository.RepositoryUri(),
		}, nil

	case manifest.SearchDomain:
		search := NewSearchDomain(stack, res.Name, &SearchDomainProps{Spec: spec})
		return builder.Outputs{
			builder.OutputArn:      *search.Domain.DomainArn(),
			builder.OutputEndpoint: *search.Domain.DomainEndpoint(),
		}, nil

	case manifest.DatabaseCluster:
		props := &DatabaseProps{Spec: spec}
		if !spec.Network.IsZero() {
			vpc, err := lookup(p.networks, spec.Network)
			if err != nil {
				return nil, err
			}
			props.Vpc = vpc
		}
		db, err := NewDatabase(stack, res.Name, props)
		if err != nil {
			return nil, err
		}
		p.databases[ref] = db.Cluster
		return builder.Outputs{
			builder.OutputArn:      *db.Cluster.ClusterArn(),
			builder.OutputEndpoint: *db.Cluster.ClusterEndpoint().Hostname(),
		}, nil

	case manifest.ContainerService:
		cluster, err := lookup(p.clusters, spec.Cluster)
		if err != nil {
			return nil, err
		}
		props := &ServiceProps{Spec: spec, Cluster: cluster}
		if !spec.Image.Registry.IsZero() {
			if props.Repository, err = lookup(p.registries, spec.Image.Registry); err != nil {
				return nil, err
			}
		}
		svc, err := NewService(stack, res.Name, props)
		if err != nil {
			return nil, err
		}
		return builder.Outputs{builder.OutputArn: *svc.Service.ServiceArn()}, nil

	case manifest.Topic:
		topic := NewTopic(stack, res.Name, spec)
		p.topics[ref] = topic
		return builder.Outputs{builder.OutputArn: *topic.TopicArn()}, nil

	case manifest.Queue:
		queue := NewQueue(stack, res.Name, spec)
		p.queues[ref] = queue
		return builder.Outputs{
			builder.OutputArn: *queue.QueueArn(),
			builder.OutputUrl: *queue.QueueUrl(),
		}, nil

	case manifest.Subscription:
		topic, err := lookup(p.topics, spec.Topic)
		if err != nil {
			return nil, err
		}
		queue, err := lookup(p.queues, spec.Queue)
		if err != nil {
			return nil, err
		}
		Subscribe(topic, queue)
		return builder.Outputs{}, nil
	}

	return nil, fmt.Errorf("%s: unsupported resource kind %s", ref, res.Kind())
}

// AddClusterInstance binds a serverless v2 reader to a database cluster.
func (p *Provisioner) AddClusterInstance(cluster manifest.Ref, name string) error {
	db, err := lookup(p.databases, cluster)
	if err != nil {
		return err
	}
	stack := p.stacks[cluster.Stack]
	AddReader(stack, db, name)
	return nil
}

// Publish writes a parameter entry to the SSM parameter store of the stack. A
// label published twice keeps its first parameter; the collision is reported
// when the stack is finalized.
func (p *Provisioner) Publish(id manifest.StackID, entry manifest.ParameterEntry) error {
	stack, ok := p.stacks[id]
	if !ok {
		return fmt.Errorf("stack %s not opened", id)
	}

	constructID := jsii.String(entry.Label + "Parameter")
	if stack.Node().TryFindChild(constructID) != nil {
		return nil
	}
	awsssm.NewStringParameter(stack, constructID, &awsssm.StringParameterProps{
		ParameterName: jsii.String(entry.Path),
		StringValue:   jsii.String(entry.Value),
	})
	return nil
}

func lookup[T any](provisioned map[manifest.Ref]T, ref manifest.Ref) (T, error) {
	c, ok := provisioned[ref]
	if !ok {
		var zero T
		return zero, fmt.Errorf("no construct provisioned for %s", ref)
	}
	return c, nil
}
