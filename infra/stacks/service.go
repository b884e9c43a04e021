package stacks

import (
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecr"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecrassets"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/reginaldFerland/cdk/infra/manifest"
)

type ServiceProps struct {
	Spec    manifest.ContainerService
	Cluster awsecs.ICluster
	// Repository is required unless the image is built from a local directory
	Repository awsecr.IRepository
}

// Service runs one container on Fargate inside the app cluster
type Service struct {
	TaskDefinition awsecs.FargateTaskDefinition
	Service        awsecs.FargateService
}

func NewService(scope constructs.Construct, id string, props *ServiceProps) (*Service, error) {
	construct := constructs.NewConstruct(scope, &id)
	spec := props.Spec

	// Create an execution role for the ECS task
	executionRole := awsiam.NewRole(construct, jsii.String("TaskExecRole"), &awsiam.RoleProps{
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("ecs-tasks.amazonaws.com"), nil),
	})

	image, err := containerImage(construct, spec.Image, props.Repository, executionRole)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", spec.ServiceName, err)
	}

	cpuArchitecture := awsecs.CpuArchitecture_X86_64()
	if strings.EqualFold(spec.CPUArchitecture, "ARM64") {
		cpuArchitecture = awsecs.CpuArchitecture_ARM64()
	}

	task := awsecs.NewFargateTaskDefinition(construct, jsii.String("Task"), &awsecs.FargateTaskDefinitionProps{
		Family:         jsii.String(spec.TaskFamily),
		Cpu:            jsii.Number(float64(spec.Cpu)),
		MemoryLimitMiB: jsii.Number(float64(spec.MemoryMiB)),
		ExecutionRole:  executionRole,
		RuntimePlatform: &awsecs.RuntimePlatform{
			OperatingSystemFamily: awsecs.OperatingSystemFamily_LINUX(),
			CpuArchitecture:       cpuArchitecture,
		},
	})

	// Ship container output to a log group that goes away with the stack
	logGroup := awslogs.NewLogGroup(construct, jsii.String("Logs"), &awslogs.LogGroupProps{
		Retention:     awslogs.RetentionDays_ONE_WEEK,
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	task.AddContainer(jsii.String(spec.ContainerName), &awsecs.ContainerDefinitionOptions{
		ContainerName:          jsii.String(spec.ContainerName),
		Image:                  image,
		PortMappings:           portMappings(spec.Ports),
		HealthCheck:            healthCheck(spec.HealthCheck),
		ReadonlyRootFilesystem: jsii.Bool(spec.ReadonlyRootFilesystem),
		Environment:            environment(spec.Environment),
		Logging: awsecs.LogDriver_AwsLogs(&awsecs.AwsLogDriverProps{
			StreamPrefix: jsii.String(spec.ServiceName),
			LogGroup:     logGroup,
		}),
	})

	service := awsecs.NewFargateService(construct, jsii.String("Service"), &awsecs.FargateServiceProps{
		Cluster:        props.Cluster,
		TaskDefinition: task,
		ServiceName:    jsii.String(spec.ServiceName),
		DesiredCount:   jsii.Number(float64(spec.DesiredCount)),
		VpcSubnets: &awsec2.SubnetSelection{
			SubnetType: subnetType(spec.SubnetType),
		},
		MinHealthyPercent: jsii.Number(100),
	})

	return &Service{
		TaskDefinition: task,
		Service:        service,
	}, nil
}

func containerImage(scope constructs.Construct, src manifest.ImageSource, repo awsecr.IRepository, role awsiam.IRole) (awsecs.ContainerImage, error) {
	if src.Directory != "" {
		asset := awsecrassets.NewDockerImageAsset(scope, jsii.String("DockerImage"), &awsecrassets.DockerImageAssetProps{
			Directory: jsii.String(src.Directory),
			File:      jsii.String(src.Dockerfile),
			BuildArgs: environment(src.BuildArgs),
		})
		asset.Repository().GrantPull(role)
		return awsecs.ContainerImage_FromDockerImageAsset(asset), nil
	}
	if repo == nil {
		return nil, fmt.Errorf("image has neither a build directory nor a registry")
	}

	// Grant the execution role permission to pull from the ECR repository
	repo.GrantPull(role)
	return awsecs.ContainerImage_FromEcrRepository(repo, jsii.String(src.Tag)), nil
}

func portMappings(ports []manifest.PortMapping) *[]*awsecs.PortMapping {
	out := make([]*awsecs.PortMapping, 0, len(ports))
	for _, p := range ports {
		protocol := awsecs.Protocol_TCP
		if strings.EqualFold(p.Protocol, "udp") {
			protocol = awsecs.Protocol_UDP
		}
		out = append(out, &awsecs.PortMapping{
			ContainerPort: jsii.Number(float64(p.ContainerPort)),
			HostPort:      jsii.Number(float64(p.HostPort)),
			Protocol:      protocol,
		})
	}
	return &out
}

func healthCheck(hc manifest.HealthCheck) *awsecs.HealthCheck {
	if len(hc.Command) == 0 {
		return nil
	}
	return &awsecs.HealthCheck{
		Command:     jsii.Strings(hc.Command...),
		Interval:    awscdk.Duration_Seconds(jsii.Number(float64(hc.IntervalSeconds))),
		Timeout:     awscdk.Duration_Seconds(jsii.Number(float64(hc.TimeoutSeconds))),
		Retries:     jsii.Number(float64(hc.Retries)),
		StartPeriod: awscdk.Duration_Seconds(jsii.Number(float64(hc.StartPeriodSeconds))),
	}
}

func environment(vars map[string]string) *map[string]*string {
	if len(vars) == 0 {
		return nil
	}
	out := make(map[string]*string, len(vars))
	for k, v := range vars {
		out[k] = jsii.String(v)
	}
	return &out
}
