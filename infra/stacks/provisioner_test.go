package stacks_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/require"

	"github.com/reginaldFerland/cdk/infra/builder"
	"github.com/reginaldFerland/cdk/infra/config"
	"github.com/reginaldFerland/cdk/infra/manifest"
	"github.com/reginaldFerland/cdk/infra/stacks"
)

func testStackProps() *awscdk.StackProps {
	return &awscdk.StackProps{
		Env: &awscdk.Environment{
			Account: jsii.String("123456789012"),
			Region:  jsii.String("us-east-1"),
		},
	}
}

func TestGeneralStackSynthesizes(t *testing.T) {
	// GIVEN
	app := awscdk.NewApp(nil)
	prov := stacks.NewProvisioner(app, testStackProps())
	cfg := config.LocalAppConfig()
	var vpc manifest.Ref

	// WHEN
	b := builder.New(manifest.NewCatalog(), prov, cfg).
		WithVpc(&vpc).
		WithContainerCluster(vpc, nil).
		WithOpenSearch()
	_, err := b.Build()

	// THEN
	require.NoError(t, err)
	stack, ok := prov.Stack(b.ID())
	require.True(t, ok)
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::EC2::VPC"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::EC2::VPC"), map[string]interface{}{
		"CidrBlock": "10.10.0.0/16",
	})
	template.HasResourceProperties(jsii.String("AWS::ECS::Cluster"), map[string]interface{}{
		"ClusterName": "app-service-local",
	})
	template.HasResourceProperties(jsii.String("AWS::OpenSearchService::Domain"), map[string]interface{}{
		"DomainName":    "app-opensearch-local",
		"EngineVersion": "OpenSearch_2.9",
		"EBSOptions": map[string]interface{}{
			"EBSEnabled": true,
			"VolumeSize": 10,
			"VolumeType": "gp3",
		},
	})
	template.ResourceCountIs(jsii.String("AWS::SSM::Parameter"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::SSM::Parameter"), map[string]interface{}{
		"Name": "/local/app/general/OpenSeachUrl",
	})
}

func TestServiceStackSynthesizes(t *testing.T) {
	// GIVEN
	app := awscdk.NewApp(nil)
	prov := stacks.NewProvisioner(app, testStackProps())
	catalog := manifest.NewCatalog()

	var vpc, cluster manifest.Ref
	_, err := builder.New(catalog, prov, config.LocalAppConfig()).
		WithVpc(&vpc).
		WithContainerCluster(vpc, &cluster).
		Build()
	require.NoError(t, err)

	// WHEN
	var topic, queue manifest.Ref
	b := builder.New(catalog, prov, config.NotificationLocalConfig()).
		WithDatabaseCluster(nil).
		WithClusterInstance("").
		WithSnsTopic("sendEmailRequest", &topic).
		WithSqsQueue("sendEmailQueue", &queue).
		WithSubscription(topic, queue).
		WithContainerRegistry(nil).
		WithService(cluster)
	_, err = b.Build()

	// THEN
	require.NoError(t, err)
	_, err = catalog.Finalize()
	require.NoError(t, err)

	stack, ok := prov.Stack(b.ID())
	require.True(t, ok)
	template := assertions.Template_FromStack(stack, nil)

	template.ResourceCountIs(jsii.String("AWS::RDS::DBCluster"), jsii.Number(1))
	template.ResourceCountIs(jsii.String("AWS::RDS::DBInstance"), jsii.Number(2))
	template.HasResourceProperties(jsii.String("AWS::RDS::DBCluster"), map[string]interface{}{
		"DatabaseName":          "notification_database",
		"DBClusterIdentifier":   "app-notification-db-local",
		"StorageEncrypted":      true,
		"BackupRetentionPeriod": 7,
		"ServerlessV2ScalingConfiguration": map[string]interface{}{
			"MinCapacity": 1,
			"MaxCapacity": 4,
		},
	})
	template.ResourceCountIs(jsii.String("AWS::SNS::Topic"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::SNS::Topic"), map[string]interface{}{
		"TopicName": "sendEmailRequest",
		"Tags": assertions.Match_ArrayWith(&[]interface{}{
			map[string]interface{}{"Key": "App", "Value": "app"},
			map[string]interface{}{"Key": "Service", "Value": "notification"},
		}),
	})
	template.ResourceCountIs(jsii.String("AWS::SQS::Queue"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::SNS::Subscription"), map[string]interface{}{
		"Protocol": "sqs",
	})
	template.HasResourceProperties(jsii.String("AWS::ECR::Repository"), map[string]interface{}{
		"RepositoryName":             "app-notification-registry-local",
		"ImageScanningConfiguration": map[string]interface{}{"ScanOnPush": true},
		"ImageTagMutability":         "IMMUTABLE",
	})
	template.HasResourceProperties(jsii.String("AWS::ECS::TaskDefinition"), map[string]interface{}{
		"Family": "app-notification-task-local",
		"Cpu":    "256",
		"Memory": "512",
	})
	template.HasResourceProperties(jsii.String("AWS::ECS::Service"), map[string]interface{}{
		"ServiceName":  "app-notification-service-local",
		"DesiredCount": 1,
	})

	for _, path := range []string{
		"/local/app/notification/DatabaseEndpoint",
		"/local/app/notification/sendEmailRequestArn",
		"/local/app/notification/sendEmailQueueUrl",
		"/local/app/notification/RegistryUri",
	} {
		template.HasResourceProperties(jsii.String("AWS::SSM::Parameter"), map[string]interface{}{
			"Name": path,
		})
	}
	template.ResourceCountIs(jsii.String("AWS::SSM::Parameter"), jsii.Number(4))
	template.HasResourceProperties(jsii.String("AWS::SSM::Parameter"), map[string]interface{}{
		"Name": "/local/app/notification/DatabaseEndpoint",
		"Value": map[string]interface{}{
			"Fn::GetAtt": assertions.Match_ArrayWith(&[]interface{}{"Endpoint.Address"}),
		},
	})
}

func TestProvisionRejectsUnknownHandles(t *testing.T) {
	app := awscdk.NewApp(nil)
	prov := stacks.NewProvisioner(app, nil)
	id := manifest.StackID{App: "app", Env: "local", Scope: "notification"}
	require.NoError(t, prov.OpenStack(id))

	_, err := prov.Provision(manifest.Resource{
		Name:  "cluster",
		Stack: id,
		Spec: manifest.ComputeCluster{
			ClusterName: "cluster",
			Network:     manifest.Ref{Stack: id, Kind: manifest.KindNetwork, Name: "nope"},
		},
	})
	require.ErrorContains(t, err, "no construct provisioned for app-notification-local/Network/nope")

	require.Error(t, prov.OpenStack(id))
	require.Error(t, prov.AddClusterInstance(manifest.Ref{Stack: id, Kind: manifest.KindDatabaseCluster, Name: "db"}, "reader-1"))
}
