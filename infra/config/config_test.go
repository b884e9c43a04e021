package config_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reginaldFerland/cdk/infra/config"
)

func TestDefaults(t *testing.T) {
	f := config.Defaults()

	require.NoError(t, f.Validate())
	assert.Equal(t, config.Identity{EnvName: "local", AppName: "app"}, f.App.Identity())
	assert.Equal(t, "general", f.App.Identity().Scope())

	svc, ok := f.Service("notification")
	require.True(t, ok)
	assert.Equal(t, "notification", svc.Identity().Scope())
	assert.True(t, svc.Database.Enabled)
	assert.Equal(t, []string{"sendEmailRequest"}, svc.Messaging.Topics)
	assert.Equal(t, []string{"sendEmailQueue"}, svc.Messaging.Queues)
}

func TestValidateReportsMissingFields(t *testing.T) {
	cfg := &config.ServiceConfig{AppName: "app"}

	err := cfg.Validate()

	var missing *config.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"env_name", "service_name"}, missing.Fields)
	assert.EqualError(t, err, "missing required config: env_name, service_name")
}

func TestSizingFallsBackToDefaults(t *testing.T) {
	cfg := &config.ServiceConfig{}
	cfg.Database.MinCapacity = 2
	cfg.Database.MaxCapacity = 1

	db := cfg.DatabaseConfig()
	assert.Equal(t, "15.3", db.EngineVersion)
	assert.Equal(t, 2.0, db.MinCapacity)
	assert.Equal(t, 2.0, db.MaxCapacity)
	assert.Equal(t, 7, db.BackupRetentionDays)

	task := cfg.TaskConfig()
	assert.Equal(t, 256, task.Cpu)
	assert.Equal(t, 512, task.MemoryMiB)
	assert.Equal(t, "latest", task.ImageTag)

	search := (&config.AppConfig{}).SearchConfig()
	assert.Equal(t, config.DefaultSearchConfig(), search)
}

const sample = `
log:
  level: debug
  format: json
app:
  env_name: staging
  app_name: shop
  search:
    volume_size: 20
    data_nodes: 2
services:
  - service_name: orders
    database:
      enabled: true
      readers: 2
    messaging:
      topics: [orderPlaced]
      queues: [orderQueue]
      subscriptions:
        - topic: orderPlaced
          queue: orderQueue
  - service_name: billing
    env_name: billing-sandbox
    task:
      enabled: true
      image_directory: ./billing
`

func TestParse(t *testing.T) {
	f, err := config.Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.NoError(t, f.Validate())

	assert.Equal(t, "debug", f.Log.Level)
	assert.Equal(t, "staging", f.App.EnvName)
	assert.Equal(t, 20, f.App.Search.VolumeSize)
	assert.Equal(t, 2, f.App.Search.DataNodes)
	assert.Equal(t, "t3.small.search", f.App.Search.DataNodeInstanceType, "unset keys keep their defaults")
	assert.Equal(t, "10.10.0.0/16", f.App.Network.CIDR)

	require.Len(t, f.Services, 2)
	orders := f.Services[0]
	assert.Equal(t, config.Identity{EnvName: "staging", AppName: "shop", ServiceName: "orders"}, orders.Identity())
	assert.Equal(t, 2, orders.Database.Readers)
	assert.Equal(t, "15.3", orders.Database.EngineVersion)
	assert.Equal(t, []config.SubscriptionConfig{{Topic: "orderPlaced", Queue: "orderQueue"}}, orders.Messaging.Subscriptions)
	assert.False(t, orders.Task.Enabled)

	billing := f.Services[1]
	assert.Equal(t, "billing-sandbox", billing.EnvName)
	assert.Equal(t, "shop", billing.AppName)
	assert.Equal(t, "./billing", billing.Task.ImageDirectory)
	assert.Equal(t, 256, billing.Task.Cpu)
}

func TestParseEmptyDocument(t *testing.T) {
	f, err := config.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "local", f.App.EnvName)
	assert.Empty(t, f.Services)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := config.Parse(strings.NewReader("services:\n  - database: [\n"))
	assert.ErrorContains(t, err, "decoding config")
}

func TestApplyEnv(t *testing.T) {
	// GIVEN
	f, err := config.Parse(strings.NewReader(sample))
	require.NoError(t, err)

	// WHEN
	err = f.ApplyEnv(map[string]string{
		"INFRA_ENV_NAME":                "prod",
		"INFRA_SEARCH_MULTI_AZ":         "true",
		"INFRA_LOG_LEVEL":               "warn",
		"INFRA_ORDERS_DATABASE_READERS": "3",
		"INFRA_BILLING_TASK_CPU":        "1024",
	})

	// THEN
	require.NoError(t, err)
	assert.Equal(t, "warn", f.Log.Level)
	assert.Equal(t, "prod", f.App.EnvName)
	assert.Equal(t, "shop", f.App.AppName)
	assert.True(t, f.App.Search.MultiAz)
	assert.Equal(t, 20, f.App.Search.VolumeSize)

	orders, _ := f.Service("orders")
	assert.Equal(t, "prod", orders.EnvName)
	assert.Equal(t, 3, orders.Database.Readers)

	billing, _ := f.Service("billing")
	assert.Equal(t, "prod", billing.EnvName)
	assert.Equal(t, 1024, billing.Task.Cpu)
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	f := config.Defaults()

	err := f.ApplyEnv(map[string]string{"INFRA_NOTIFICATION_TASK_CPU": "lots"})

	assert.ErrorContains(t, err, "parsing notification config")
}

func TestFileValidateRejectsDuplicateServices(t *testing.T) {
	f := config.Defaults()
	f.Services = append(f.Services, config.NotificationLocalConfig())
	f.Services = append(f.Services, &config.ServiceConfig{ServiceName: "broken"})

	err := f.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `services[1]: service "notification" declared twice`)
	assert.Contains(t, err.Error(), "services[2]: missing required config: app_name, env_name")
}

func TestSetEnvName(t *testing.T) {
	f := config.Defaults()
	f.SetEnvName("pr-42")
	assert.Equal(t, "pr-42", f.App.EnvName)
	assert.Equal(t, "pr-42", f.Services[0].EnvName)
}

func TestServiceEnvPrefix(t *testing.T) {
	assert.Equal(t, "INFRA_EMAIL_SENDER_", config.ServiceEnvPrefix("email-sender"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := config.LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	log.Info("hidden")
	log.Warn("shown", "stack", "app-general-local")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"stack":"app-general-local"`)
}
