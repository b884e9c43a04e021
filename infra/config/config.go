// Package config supplies the per-stack configuration records consumed by the
// builders: naming for every stack, sizing for the resources a stack may
// declare.
package config

import (
	"fmt"
	"strings"
)

// GeneralScope mirrors manifest.GeneralScope for app-level identities.
const GeneralScope = "general"

// Identity names a stack.
type Identity struct {
	EnvName     string
	AppName     string
	ServiceName string
}

// Scope returns the service name, or "general" for app-level stacks.
func (i Identity) Scope() string {
	if i.ServiceName == "" {
		return GeneralScope
	}
	return i.ServiceName
}

// Provider is implemented by every configuration record a builder accepts.
type Provider interface {
	Identity() Identity
	Validate() error
}

// Capability interfaces. A builder uses the sizing a provider offers and falls
// back to the package defaults for everything else.
type (
	NetworkSizing interface {
		NetworkConfig() NetworkConfig
	}
	SearchSizing interface {
		SearchConfig() SearchConfig
	}
	DatabaseSizing interface {
		DatabaseConfig() DatabaseConfig
	}
	MessagingSettings interface {
		MessagingConfig() MessagingConfig
	}
	TaskSizing interface {
		TaskConfig() TaskConfig
	}
)

// NetworkConfig sizes the VPC.
type NetworkConfig struct {
	CIDR        string `yaml:"cidr" env:"CIDR"`
	MaxAzs      int    `yaml:"max_azs" env:"MAX_AZS"`
	ReservedAzs int    `yaml:"reserved_azs" env:"RESERVED_AZS"`
	NatGateways int    `yaml:"nat_gateways" env:"NAT_GATEWAYS"`
}

// SearchConfig sizes the OpenSearch domain.
type SearchConfig struct {
	VolumeSize             int    `yaml:"volume_size" env:"VOLUME_SIZE"`
	DataNodeInstanceType   string `yaml:"data_node_instance_type" env:"DATA_NODE_INSTANCE_TYPE"`
	MasterNodeInstanceType string `yaml:"master_node_instance_type" env:"MASTER_NODE_INSTANCE_TYPE"`
	DataNodes              int    `yaml:"data_nodes" env:"DATA_NODES"`
	MasterNodes            int    `yaml:"master_nodes" env:"MASTER_NODES"`
	MultiAz                bool   `yaml:"multi_az" env:"MULTI_AZ"`
}

// DatabaseConfig sizes the Aurora cluster of a service.
type DatabaseConfig struct {
	Enabled             bool    `yaml:"enabled" env:"ENABLED"`
	Readers             int     `yaml:"readers" env:"READERS"`
	EngineVersion       string  `yaml:"engine_version" env:"ENGINE_VERSION"`
	MinCapacity         float64 `yaml:"min_capacity" env:"MIN_CAPACITY"`
	MaxCapacity         float64 `yaml:"max_capacity" env:"MAX_CAPACITY"`
	BackupRetentionDays int     `yaml:"backup_retention_days" env:"BACKUP_RETENTION_DAYS"`
	DeletionProtection  bool    `yaml:"deletion_protection" env:"DELETION_PROTECTION"`
	Username            string  `yaml:"username" env:"USERNAME"`
}

// SubscriptionConfig connects a topic to a queue by name.
type SubscriptionConfig struct {
	Topic string `yaml:"topic"`
	Queue string `yaml:"queue"`
}

// MessagingConfig lists the topics and queues a service owns.
type MessagingConfig struct {
	Topics                   []string             `yaml:"topics"`
	Queues                   []string             `yaml:"queues"`
	Subscriptions            []SubscriptionConfig `yaml:"subscriptions"`
	VisibilityTimeoutSeconds int                  `yaml:"visibility_timeout_seconds" env:"VISIBILITY_TIMEOUT_SECONDS"`
	RetentionPeriodDays      int                  `yaml:"retention_period_days" env:"RETENTION_PERIOD_DAYS"`
}

// TaskConfig sizes the container service of a service. With ImageDirectory
// set the image is built from that Docker context, otherwise it is pulled
// from the service registry with ImageTag.
type TaskConfig struct {
	Enabled        bool   `yaml:"enabled" env:"ENABLED"`
	Cpu            int    `yaml:"cpu" env:"CPU"`
	MemoryMiB      int    `yaml:"memory_mib" env:"MEMORY_MIB"`
	DesiredCount   int    `yaml:"desired_count" env:"DESIRED_COUNT"`
	ImageDirectory string `yaml:"image_directory" env:"IMAGE_DIRECTORY"`
	Dockerfile     string `yaml:"dockerfile" env:"DOCKERFILE"`
	ImageTag       string `yaml:"image_tag" env:"IMAGE_TAG"`
}

// AppConfig configures the app-level ("general") stack.
type AppConfig struct {
	EnvName string        `yaml:"env_name" env:"ENV_NAME"`
	AppName string        `yaml:"app_name" env:"APP_NAME"`
	Network NetworkConfig `yaml:"network" envPrefix:"NETWORK_"`
	Search  SearchConfig  `yaml:"search" envPrefix:"SEARCH_"`
}

func (c *AppConfig) Identity() Identity {
	return Identity{EnvName: c.EnvName, AppName: c.AppName}
}

func (c *AppConfig) NetworkConfig() NetworkConfig {
	return c.Network.withDefaults()
}

func (c *AppConfig) SearchConfig() SearchConfig {
	return c.Search.withDefaults()
}

// Validate checks that the naming fields are present.
func (c *AppConfig) Validate() error {
	return requireFields(map[string]string{
		"env_name": c.EnvName,
		"app_name": c.AppName,
	})
}

// ServiceConfig configures one service stack.
type ServiceConfig struct {
	EnvName     string          `yaml:"env_name" env:"ENV_NAME"`
	AppName     string          `yaml:"app_name" env:"APP_NAME"`
	ServiceName string          `yaml:"service_name" env:"SERVICE_NAME"`
	Database    DatabaseConfig  `yaml:"database" envPrefix:"DATABASE_"`
	Messaging   MessagingConfig `yaml:"messaging" envPrefix:"MESSAGING_"`
	Task        TaskConfig      `yaml:"task" envPrefix:"TASK_"`
}

func (c *ServiceConfig) Identity() Identity {
	return Identity{EnvName: c.EnvName, AppName: c.AppName, ServiceName: c.ServiceName}
}

func (c *ServiceConfig) DatabaseConfig() DatabaseConfig {
	return c.Database.withDefaults()
}

func (c *ServiceConfig) MessagingConfig() MessagingConfig {
	return c.Messaging.withDefaults()
}

func (c *ServiceConfig) TaskConfig() TaskConfig {
	return c.Task.withDefaults()
}

// Validate checks that the naming fields are present.
func (c *ServiceConfig) Validate() error {
	return requireFields(map[string]string{
		"env_name":     c.EnvName,
		"app_name":     c.AppName,
		"service_name": c.ServiceName,
	})
}

// MissingFieldsError lists the required fields a record left empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required config: %s", strings.Join(e.Fields, ", "))
}

func requireFields(fields map[string]string) error {
	var missing []string
	for _, name := range sortedKeys(fields) {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}
