package builder

import (
	"github.com/reginaldFerland/cdk/infra/config"
	"github.com/reginaldFerland/cdk/infra/manifest"
)

// WithContainerCluster declares a container cluster in the given network.
// The network may come from this builder or from another one.
func (b *Builder) WithContainerCluster(network manifest.Ref, out *manifest.Ref) *Builder {
	const op = "WithContainerCluster"
	if !b.ok() || !b.requireRef(op, "network", network, manifest.KindNetwork) {
		return b
	}

	name := b.id.ResourceName("service")
	ref, _, ok := b.declare(op, name, manifest.ComputeCluster{
		ClusterName:       name,
		Network:           network,
		ContainerInsights: true,
	})
	if !ok {
		return b
	}
	bind(out, ref)
	return b
}

// WithContainerRegistry declares an image repository and publishes its URI
// as RegistryUri. A later WithService pulls from it.
func (b *Builder) WithContainerRegistry(out *manifest.Ref) *Builder {
	const op = "WithContainerRegistry"
	if !b.ok() {
		return b
	}
	if !b.registry.IsZero() {
		return b.fail(op, "registry already declared as "+b.registry.Name, nil)
	}

	name := b.id.ResourceName("registry")
	ref, outputs, ok := b.declare(op, name, manifest.ContainerRegistry{
		RepositoryName:  name,
		KMSEncryption:   true,
		ImageScanOnPush: true,
		MaxImageCount:   3,
		ImmutableTags:   true,
		RemovalPolicy:   manifest.RemovalDestroy,
	})
	if !ok || !b.publish(op, "RegistryUri", outputs, OutputUri) {
		return b
	}
	b.registry = ref
	bind(out, ref)
	return b
}

// WithService declares a Fargate service running in the given cluster. The
// image is built from the configured Docker directory when there is one,
// otherwise it is pulled from the registry declared by this builder.
func (b *Builder) WithService(cluster manifest.Ref) *Builder {
	const op = "WithService"
	if !b.ok() || !b.requireRef(op, "cluster", cluster, manifest.KindComputeCluster) {
		return b
	}

	task := config.DefaultTaskConfig()
	if s, ok := b.cfg.(config.TaskSizing); ok {
		task = s.TaskConfig()
	}

	image := manifest.ImageSource{Tag: task.ImageTag}
	switch {
	case task.ImageDirectory != "":
		image = manifest.ImageSource{
			Directory:  task.ImageDirectory,
			Dockerfile: task.Dockerfile,
			BuildArgs:  map[string]string{"BUILD_CONFIGURATION": "Release"},
		}
	case !b.registry.IsZero():
		image.Registry = b.registry
	default:
		return b.fail(op, "no image source: configure an image directory or call WithContainerRegistry first", nil)
	}

	name := b.id.ScopedName("service")
	b.declare(op, name, manifest.ContainerService{
		ServiceName:     name,
		TaskFamily:      b.id.ScopedName("task"),
		ContainerName:   b.id.ScopedName("container"),
		Cluster:         cluster,
		Cpu:             task.Cpu,
		MemoryMiB:       task.MemoryMiB,
		DesiredCount:    task.DesiredCount,
		CPUArchitecture: "X86_64",
		Image:           image,
		Ports: []manifest.PortMapping{
			{ContainerPort: 80, HostPort: 80, Protocol: "tcp"},
			{ContainerPort: 443, HostPort: 443, Protocol: "tcp"},
		},
		HealthCheck: manifest.HealthCheck{
			Command:            []string{"CMD-SHELL", "curl -f http://localhost/health/ready || exit 1"},
			IntervalSeconds:    5,
			TimeoutSeconds:     2,
			Retries:            3,
			StartPeriodSeconds: 10,
		},
		ReadonlyRootFilesystem: true,
		Environment: map[string]string{
			"COMPlus_EnableDiagnostics": "0",
		},
		SubnetType: manifest.SubnetPrivateWithEgress,
	})
	return b
}
