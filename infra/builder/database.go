package builder

import (
	"fmt"

	"github.com/reginaldFerland/cdk/infra/config"
	"github.com/reginaldFerland/cdk/infra/manifest"
)

// DefaultDatabaseUsername is the master user when no credentials are given.
const DefaultDatabaseUsername = "postgres"

const writerInstance = "writer"

// WithDatabaseCluster declares an Aurora PostgreSQL serverless v2 cluster with
// a single writer and publishes its endpoint as DatabaseEndpoint. A nil creds
// uses the postgres user with a generated secret. The cluster is placed in the
// network declared by WithVpc, or in a dedicated one when there is none.
func (b *Builder) WithDatabaseCluster(creds *manifest.Credentials) *Builder {
	const op = "WithDatabaseCluster"
	if !b.ok() {
		return b
	}
	if !b.database.IsZero() {
		return b.fail(op, "database cluster already declared as "+b.database.Name, nil)
	}

	sizing := config.DefaultDatabaseConfig()
	if s, ok := b.cfg.(config.DatabaseSizing); ok {
		sizing = s.DatabaseConfig()
	}

	credentials := manifest.Credentials{Username: DefaultDatabaseUsername}
	if sizing.Username != "" {
		credentials.Username = sizing.Username
	}
	if creds != nil {
		if creds.Username == "" {
			return b.fail(op, "credentials have no username", nil)
		}
		credentials = *creds
	}
	if credentials.Generated() && credentials.SecretName == "" {
		credentials.SecretName = b.id.ResourceName("db-credentials")
	}

	dbName := b.id.Scope
	if b.id.IsGeneral() {
		dbName = b.id.App
	}

	spec := manifest.DatabaseCluster{
		Identifier:          b.id.ResourceName("db"),
		EngineVersion:       sizing.EngineVersion,
		MinCapacity:         sizing.MinCapacity,
		MaxCapacity:         sizing.MaxCapacity,
		DefaultDatabaseName: dbName + "_database",
		BackupRetentionDays: sizing.BackupRetentionDays,
		StorageEncrypted:    true,
		DeletionProtection:  sizing.DeletionProtection,
		RemovalPolicy:       manifest.RemovalDestroy,
		Credentials:         credentials,
		Writer:              writerInstance,
	}
	if b.network.IsZero() {
		spec.DedicatedNetwork = dedicatedDatabaseNetwork()
	} else {
		spec.Network = b.network
	}

	ref, outputs, ok := b.declare(op, spec.Identifier, spec)
	if !ok {
		return b
	}
	b.database = ref
	b.publish(op, "DatabaseEndpoint", outputs, OutputEndpoint)
	return b
}

// WithClusterInstance adds a serverless v2 reader to the cluster declared by
// WithDatabaseCluster. An empty name becomes reader-N, N being the number of
// instances the cluster already has.
func (b *Builder) WithClusterInstance(name string) *Builder {
	const op = "WithClusterInstance"
	if !b.ok() {
		return b
	}
	if b.database.IsZero() {
		return b.fail(op, "no database cluster declared, call WithDatabaseCluster first", nil)
	}

	err := b.stack.Amend(b.database, func(s manifest.Spec) (manifest.Spec, error) {
		db := s.(manifest.DatabaseCluster)
		if name == "" {
			name = fmt.Sprintf("reader-%d", db.Instances())
		}
		if db.HasInstance(name) {
			return nil, fmt.Errorf("instance %q already exists", name)
		}
		db.Readers = append(append([]string(nil), db.Readers...), name)
		return db, nil
	})
	if err != nil {
		return b.fail(op, "cannot add instance", err)
	}
	if err := b.prov.AddClusterInstance(b.database, name); err != nil {
		return b.fail(op, "cannot provision instance "+name, err)
	}
	b.log.Debug("added cluster instance", "cluster", b.database.Name, "instance", name)
	return b
}
