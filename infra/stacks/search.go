package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsopensearchservice"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/reginaldFerland/cdk/infra/manifest"
)

type SearchDomainProps struct {
	Spec manifest.SearchDomain
}

// SearchDomain is a managed OpenSearch domain with GP3 storage
type SearchDomain struct {
	Domain awsopensearchservice.Domain
}

func NewSearchDomain(scope constructs.Construct, id string, props *SearchDomainProps) *SearchDomain {
	construct := constructs.NewConstruct(scope, &id)
	spec := props.Spec

	capacity := &awsopensearchservice.CapacityConfig{
		DataNodeInstanceType:      jsii.String(spec.DataNodeInstanceType),
		DataNodes:                 jsii.Number(float64(spec.DataNodes)),
		MultiAzWithStandbyEnabled: jsii.Bool(spec.MultiAzWithStandby),
	}
	// Dedicated masters only when some are requested
	if spec.MasterNodes > 0 {
		capacity.MasterNodeInstanceType = jsii.String(spec.MasterNodeInstanceType)
		capacity.MasterNodes = jsii.Number(float64(spec.MasterNodes))
	}

	domain := awsopensearchservice.NewDomain(construct, jsii.String("Domain"), &awsopensearchservice.DomainProps{
		DomainName: jsii.String(spec.DomainName),
		Version:    awsopensearchservice.EngineVersion_OpenSearch(jsii.String(spec.EngineVersion)),
		EncryptionAtRest: &awsopensearchservice.EncryptionAtRestOptions{
			Enabled: jsii.Bool(spec.EncryptionAtRest),
		},
		Ebs: &awsopensearchservice.EbsOptions{
			Enabled:    jsii.Bool(true),
			VolumeSize: jsii.Number(float64(spec.VolumeSizeGiB)),
			VolumeType: awsec2.EbsDeviceVolumeType_GP3,
		},
		ZoneAwareness: &awsopensearchservice.ZoneAwarenessConfig{
			Enabled: jsii.Bool(spec.ZoneAwareness),
		},
		EnforceHttps:         jsii.Bool(spec.EnforceHTTPS),
		NodeToNodeEncryption: jsii.Bool(spec.NodeToNodeEncryption),
		Capacity:             capacity,
		RemovalPolicy:        awscdk.RemovalPolicy_DESTROY,
	})

	return &SearchDomain{
		Domain: domain,
	}
}
