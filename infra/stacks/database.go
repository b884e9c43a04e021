package stacks

import (
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/reginaldFerland/cdk/infra/manifest"
)

type DatabaseProps struct {
	Spec manifest.DatabaseCluster
	// Vpc is the shared network of the stack. When nil the cluster gets the
	// dedicated network of its spec.
	Vpc awsec2.IVpc
}

// Database is an Aurora PostgreSQL serverless v2 cluster
type Database struct {
	Cluster awsrds.DatabaseCluster
}

func NewDatabase(scope constructs.Construct, id string, props *DatabaseProps) (*Database, error) {
	construct := constructs.NewConstruct(scope, &id)
	spec := props.Spec

	engineVersion, err := auroraPostgresVersion(spec.EngineVersion)
	if err != nil {
		return nil, err
	}

	// Shared networks keep data stores in their isolated subnets
	vpc := props.Vpc
	subnets := &awsec2.SubnetSelection{SubnetType: awsec2.SubnetType_PRIVATE_ISOLATED}
	if vpc == nil {
		if spec.DedicatedNetwork == nil {
			return nil, fmt.Errorf("database %s has no network", spec.Identifier)
		}
		vpc = NewNetwork(construct, "Network", &NetworkProps{Spec: *spec.DedicatedNetwork}).Vpc
		subnets = &awsec2.SubnetSelection{SubnetType: awsec2.SubnetType_PRIVATE_WITH_EGRESS}
	}

	var readers []awsrds.IClusterInstance
	for _, name := range spec.Readers {
		readers = append(readers, awsrds.ClusterInstance_ServerlessV2(jsii.String(name), &awsrds.ServerlessV2ClusterInstanceProps{
			ScaleWithWriter: jsii.Bool(true),
		}))
	}

	clusterProps := &awsrds.DatabaseClusterProps{
		Engine: awsrds.DatabaseClusterEngine_AuroraPostgres(&awsrds.AuroraPostgresClusterEngineProps{
			Version: engineVersion,
		}),
		ClusterIdentifier:       jsii.String(spec.Identifier),
		RemovalPolicy:           removalPolicy(spec.RemovalPolicy),
		ServerlessV2MinCapacity: jsii.Number(spec.MinCapacity),
		ServerlessV2MaxCapacity: jsii.Number(spec.MaxCapacity),
		DefaultDatabaseName:     jsii.String(spec.DefaultDatabaseName),
		StorageEncrypted:        jsii.Bool(spec.StorageEncrypted),
		Backup: &awsrds.BackupProps{
			Retention: awscdk.Duration_Days(jsii.Number(float64(spec.BackupRetentionDays))),
		},
		DeletionProtection: jsii.Bool(spec.DeletionProtection),
		Credentials:        credentials(spec.Credentials),
		Vpc:                vpc,
		VpcSubnets:         subnets,
		Writer:             awsrds.ClusterInstance_ServerlessV2(jsii.String(spec.Writer), nil),
	}
	if len(readers) > 0 {
		clusterProps.Readers = &readers
	}

	cluster := awsrds.NewDatabaseCluster(construct, jsii.String("Cluster"), clusterProps)

	return &Database{
		Cluster: cluster,
	}, nil
}

// AddReader binds one more serverless v2 reader to an existing cluster.
func AddReader(scope constructs.Construct, cluster awsrds.DatabaseCluster, name string) {
	instance := awsrds.ClusterInstance_ServerlessV2(jsii.String(name), &awsrds.ServerlessV2ClusterInstanceProps{
		ScaleWithWriter: jsii.Bool(true),
	})
	instance.Bind(scope, cluster, &awsrds.ClusterInstanceBindOptions{})
}

func credentials(c manifest.Credentials) awsrds.Credentials {
	if !c.Generated() {
		return awsrds.Credentials_FromPassword(jsii.String(c.Username), awscdk.SecretValue_UnsafePlainText(jsii.String(c.Password)))
	}
	opts := &awsrds.CredentialsBaseOptions{}
	if c.SecretName != "" {
		opts.SecretName = jsii.String(c.SecretName)
	}
	return awsrds.Credentials_FromGeneratedSecret(jsii.String(c.Username), opts)
}

// auroraPostgresVersion turns "15.3" into an engine version with major "15".
func auroraPostgresVersion(full string) (awsrds.AuroraPostgresEngineVersion, error) {
	major, _, ok := strings.Cut(full, ".")
	if !ok || major == "" {
		return nil, fmt.Errorf("invalid aurora postgres version %q", full)
	}
	return awsrds.AuroraPostgresEngineVersion_Of(jsii.String(full), jsii.String(major), nil), nil
}
