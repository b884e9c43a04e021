package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/reginaldFerland/cdk/infra/manifest"
)

type ComputeClusterProps struct {
	Spec manifest.ComputeCluster
	Vpc  awsec2.IVpc
}

// ComputeCluster is the ECS cluster shared by the services of an app
type ComputeCluster struct {
	Cluster awsecs.Cluster
}

func NewComputeCluster(scope constructs.Construct, id string, props *ComputeClusterProps) *ComputeCluster {
	construct := constructs.NewConstruct(scope, &id)

	cluster := awsecs.NewCluster(construct, jsii.String("Cluster"), &awsecs.ClusterProps{
		ClusterName:       jsii.String(props.Spec.ClusterName),
		Vpc:               props.Vpc,
		ContainerInsights: jsii.Bool(props.Spec.ContainerInsights),
	})

	return &ComputeCluster{
		Cluster: cluster,
	}
}
