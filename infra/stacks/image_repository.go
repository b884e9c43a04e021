package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecr"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/reginaldFerland/cdk/infra/manifest"
)

type ImageRepositoryProps struct {
	Spec manifest.ContainerRegistry
}

// ImageRepository is the private registry a service pulls its image from
type ImageRepository struct {
	Repository awsecr.Repository
}

func NewImageRepository(scope constructs.Construct, id string, props *ImageRepositoryProps) *ImageRepository {
	construct := constructs.NewConstruct(scope, &id)
	spec := props.Spec

	repoProps := &awsecr.RepositoryProps{
		RepositoryName:  jsii.String(spec.RepositoryName),
		ImageScanOnPush: jsii.Bool(spec.ImageScanOnPush),
		RemovalPolicy:   removalPolicy(spec.RemovalPolicy),
	}
	if spec.KMSEncryption {
		repoProps.Encryption = awsecr.RepositoryEncryption_KMS()
	}
	if spec.ImmutableTags {
		repoProps.ImageTagMutability = awsecr.TagMutability_IMMUTABLE
	}
	// Expire everything past the newest images
	if spec.MaxImageCount > 0 {
		repoProps.LifecycleRules = &[]*awsecr.LifecycleRule{
			{
				MaxImageCount: jsii.Number(float64(spec.MaxImageCount)),
				TagStatus:     awsecr.TagStatus_ANY,
			},
		}
	}

	repository := awsecr.NewRepository(construct, jsii.String("Repository"), repoProps)

	return &ImageRepository{
		Repository: repository,
	}
}

func removalPolicy(p manifest.RemovalPolicy) awscdk.RemovalPolicy {
	if p == manifest.RemovalRetain {
		return awscdk.RemovalPolicy_RETAIN
	}
	return awscdk.RemovalPolicy_DESTROY
}
