// Package compose wires the builders of one app together: the general stack
// first, then one stack per configured service, all in a single run.
package compose

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/reginaldFerland/cdk/infra/builder"
	"github.com/reginaldFerland/cdk/infra/config"
	"github.com/reginaldFerland/cdk/infra/manifest"
)

// Shared holds the handles the general stack hands to service stacks.
type Shared struct {
	Network manifest.Ref
	Cluster manifest.Ref
}

type options struct {
	log *slog.Logger
}

// Option customizes Compose.
type Option func(*options)

// WithLogger sets the logger passed to every builder.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// Compose declares every stack described by cfg through prov and finalizes
// the run. The manifests are returned in declaration order, general stack
// first.
func Compose(prov builder.Provisioner, cfg *config.File, opts ...Option) ([]*manifest.Manifest, error) {
	o := options{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg == nil {
		return nil, errors.New("no configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	catalog := manifest.NewCatalog()
	shared, err := General(catalog, prov, cfg.App, o.log)
	if err != nil {
		return nil, err
	}
	for _, svc := range cfg.Services {
		if err := Service(catalog, prov, svc, shared, o.log); err != nil {
			return nil, err
		}
	}

	manifests, err := catalog.Finalize()
	if err != nil {
		return nil, err
	}
	o.log.Info("composed stacks", "stacks", len(manifests))
	return manifests, nil
}

// General builds the app-level stack: network, container cluster and search
// domain.
func General(catalog *manifest.Catalog, prov builder.Provisioner, cfg *config.AppConfig, log *slog.Logger) (Shared, error) {
	var shared Shared
	_, err := builder.New(catalog, prov, cfg, builder.WithLogger(log)).
		WithVpc(&shared.Network).
		WithContainerCluster(shared.Network, &shared.Cluster).
		WithOpenSearch().
		Build()
	if err != nil {
		return Shared{}, err
	}
	return shared, nil
}

// Service builds the stack of one service from its configuration: database
// and readers, topics, queues and their subscriptions, then the container
// service running in the shared cluster.
func Service(catalog *manifest.Catalog, prov builder.Provisioner, cfg *config.ServiceConfig, shared Shared, log *slog.Logger) error {
	b := builder.New(catalog, prov, cfg, builder.WithLogger(log))

	db := cfg.DatabaseConfig()
	if db.Enabled {
		b.WithDatabaseCluster(nil)
		for i := 0; i < db.Readers; i++ {
			b.WithClusterInstance("")
		}
	}

	msg := cfg.MessagingConfig()
	topics := make(map[string]manifest.Ref, len(msg.Topics))
	for _, name := range msg.Topics {
		var ref manifest.Ref
		b.WithSnsTopic(name, &ref)
		topics[name] = ref
	}
	queues := make(map[string]manifest.Ref, len(msg.Queues))
	for _, name := range msg.Queues {
		var ref manifest.Ref
		b.WithSqsQueue(name, &ref)
		queues[name] = ref
	}
	for _, sub := range msg.Subscriptions {
		topic, ok := topics[sub.Topic]
		if !ok {
			return fmt.Errorf("%s: subscription from unknown topic %q", b.ID(), sub.Topic)
		}
		queue, ok := queues[sub.Queue]
		if !ok {
			return fmt.Errorf("%s: subscription to unknown queue %q", b.ID(), sub.Queue)
		}
		b.WithSubscription(topic, queue)
	}

	task := cfg.TaskConfig()
	if task.Enabled {
		if task.ImageDirectory == "" {
			b.WithContainerRegistry(nil)
		}
		b.WithService(shared.Cluster)
	}

	_, err := b.Build()
	return err
}
