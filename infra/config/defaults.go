package config

import "sort"

// DefaultNetworkConfig returns the VPC sizing used when none is configured.
func DefaultNetworkConfig() NetworkConfig {
	return NetworkConfig{
		CIDR:        "10.10.0.0/16",
		MaxAzs:      2,
		ReservedAzs: 2,
	}
}

// DefaultSearchConfig returns the smallest single-node OpenSearch domain.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		VolumeSize:             10,
		DataNodeInstanceType:   "t3.small.search",
		MasterNodeInstanceType: "t3.small.search",
		DataNodes:              1,
		MasterNodes:            0,
		MultiAz:                false,
	}
}

// DefaultDatabaseConfig returns a serverless v2 cluster scaling between 1 and
// 4 ACU with a week of backups.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		EngineVersion:       "15.3",
		MinCapacity:         1,
		MaxCapacity:         4,
		BackupRetentionDays: 7,
		DeletionProtection:  false,
	}
}

// DefaultMessagingConfig returns the queue settings used when none are
// configured.
func DefaultMessagingConfig() MessagingConfig {
	return MessagingConfig{
		VisibilityTimeoutSeconds: 30,
		RetentionPeriodDays:      4,
	}
}

// DefaultTaskConfig returns a 0.25 vCPU / 512 MiB Fargate task.
func DefaultTaskConfig() TaskConfig {
	return TaskConfig{
		Cpu:          256, // 0.25 vCPU
		MemoryMiB:    512,
		DesiredCount: 1,
		Dockerfile:   "Dockerfile",
		ImageTag:     "latest",
	}
}

// LocalAppConfig is the app-level configuration of a local environment.
func LocalAppConfig() *AppConfig {
	return &AppConfig{
		EnvName: "local",
		AppName: "app",
		Network: DefaultNetworkConfig(),
		Search:  DefaultSearchConfig(),
	}
}

// NotificationLocalConfig is the notification service of a local
// environment: a database with one reader, the email request topic and queue,
// and a container service pulling from its own registry.
func NotificationLocalConfig() *ServiceConfig {
	cfg := newServiceConfig()
	cfg.EnvName = "local"
	cfg.AppName = "app"
	cfg.ServiceName = "notification"
	cfg.Database.Enabled = true
	cfg.Database.Readers = 1
	cfg.Messaging.Topics = []string{"sendEmailRequest"}
	cfg.Messaging.Queues = []string{"sendEmailQueue"}
	cfg.Messaging.Subscriptions = []SubscriptionConfig{
		{Topic: "sendEmailRequest", Queue: "sendEmailQueue"},
	}
	cfg.Task.Enabled = true
	return cfg
}

func newServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Database:  DefaultDatabaseConfig(),
		Messaging: DefaultMessagingConfig(),
		Task:      DefaultTaskConfig(),
	}
}

func (c NetworkConfig) withDefaults() NetworkConfig {
	d := DefaultNetworkConfig()
	if c.CIDR == "" {
		c.CIDR = d.CIDR
	}
	if c.MaxAzs <= 0 {
		c.MaxAzs = d.MaxAzs
	}
	if c.ReservedAzs < 0 {
		c.ReservedAzs = 0
	}
	if c.NatGateways < 0 {
		c.NatGateways = 0
	}
	return c
}

func (c SearchConfig) withDefaults() SearchConfig {
	d := DefaultSearchConfig()
	if c.VolumeSize <= 0 {
		c.VolumeSize = d.VolumeSize
	}
	if c.DataNodeInstanceType == "" {
		c.DataNodeInstanceType = d.DataNodeInstanceType
	}
	if c.MasterNodeInstanceType == "" {
		c.MasterNodeInstanceType = d.MasterNodeInstanceType
	}
	if c.DataNodes <= 0 {
		c.DataNodes = d.DataNodes
	}
	if c.MasterNodes < 0 {
		c.MasterNodes = 0
	}
	return c
}

func (c DatabaseConfig) withDefaults() DatabaseConfig {
	d := DefaultDatabaseConfig()
	if c.EngineVersion == "" {
		c.EngineVersion = d.EngineVersion
	}
	if c.MinCapacity <= 0 {
		c.MinCapacity = d.MinCapacity
	}
	if c.MaxCapacity <= 0 {
		c.MaxCapacity = d.MaxCapacity
	}
	if c.MaxCapacity < c.MinCapacity {
		c.MaxCapacity = c.MinCapacity
	}
	if c.BackupRetentionDays <= 0 {
		c.BackupRetentionDays = d.BackupRetentionDays
	}
	if c.Readers < 0 {
		c.Readers = 0
	}
	return c
}

func (c MessagingConfig) withDefaults() MessagingConfig {
	d := DefaultMessagingConfig()
	if c.VisibilityTimeoutSeconds <= 0 {
		c.VisibilityTimeoutSeconds = d.VisibilityTimeoutSeconds
	}
	if c.RetentionPeriodDays <= 0 {
		c.RetentionPeriodDays = d.RetentionPeriodDays
	}
	return c
}

func (c TaskConfig) withDefaults() TaskConfig {
	d := DefaultTaskConfig()
	if c.Cpu <= 0 {
		c.Cpu = d.Cpu
	}
	if c.MemoryMiB <= 0 {
		c.MemoryMiB = d.MemoryMiB
	}
	if c.DesiredCount <= 0 {
		c.DesiredCount = d.DesiredCount
	}
	if c.Dockerfile == "" {
		c.Dockerfile = d.Dockerfile
	}
	if c.ImageTag == "" {
		c.ImageTag = d.ImageTag
	}
	return c
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
