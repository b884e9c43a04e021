package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/reginaldFerland/cdk/infra/manifest"
)

type NetworkProps struct {
	Spec manifest.Network
}

// Network creates a VPC with the subnet groups of a Network declaration
type Network struct {
	Vpc awsec2.Vpc
}

func NewNetwork(scope constructs.Construct, id string, props *NetworkProps) *Network {
	construct := constructs.NewConstruct(scope, &id)
	spec := props.Spec

	vpcProps := &awsec2.VpcProps{
		IpAddresses:         awsec2.IpAddresses_Cidr(jsii.String(spec.CIDR)),
		SubnetConfiguration: subnetConfiguration(spec.Subnets),
	}
	if spec.VpcName != "" {
		vpcProps.VpcName = jsii.String(spec.VpcName)
	}
	if spec.MaxAzs > 0 {
		vpcProps.MaxAzs = jsii.Number(float64(spec.MaxAzs))
	}
	if spec.ReservedAzs > 0 {
		vpcProps.ReservedAzs = jsii.Number(float64(spec.ReservedAzs))
	}
	// Zero keeps the CDK default of one NAT gateway per AZ
	if spec.NatGateways > 0 {
		vpcProps.NatGateways = jsii.Number(float64(spec.NatGateways))
	}

	vpc := awsec2.NewVpc(construct, jsii.String("Vpc"), vpcProps)

	return &Network{
		Vpc: vpc,
	}
}

func subnetConfiguration(subnets []manifest.Subnet) *[]*awsec2.SubnetConfiguration {
	out := make([]*awsec2.SubnetConfiguration, 0, len(subnets))
	for _, s := range subnets {
		cfg := &awsec2.SubnetConfiguration{
			Name:       jsii.String(s.Name),
			SubnetType: subnetType(s.Type),
		}
		if s.CidrMask > 0 {
			cfg.CidrMask = jsii.Number(float64(s.CidrMask))
		}
		out = append(out, cfg)
	}
	return &out
}

func subnetType(t manifest.SubnetType) awsec2.SubnetType {
	switch t {
	case manifest.SubnetPublic:
		return awsec2.SubnetType_PUBLIC
	case manifest.SubnetIsolated:
		return awsec2.SubnetType_PRIVATE_ISOLATED
	default:
		return awsec2.SubnetType_PRIVATE_WITH_EGRESS
	}
}
