package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reginaldFerland/cdk/infra/lib"
)

func appWithContext(context map[string]interface{}) awscdk.App {
	return awscdk.NewApp(&awscdk.AppProps{Context: &context})
}

func TestLoadConfigEnvironmentName(t *testing.T) {
	cases := []struct {
		name    string
		context map[string]interface{}
		environ map[string]string
		want    string
	}{
		{"configured name without context", map[string]interface{}{}, map[string]string{}, "local"},
		{"context environment", map[string]interface{}{"environment": "staging"}, map[string]string{}, "staging"},
		{"pull request", map[string]interface{}{"environment": "staging", "pr_number": "7"}, map[string]string{}, "pr-7"},
		{"development user", map[string]interface{}{"environment": "development", "username": "jane"}, map[string]string{}, "development-jane"},
		{"override beats context", map[string]interface{}{"environment": "development", "username": "jane"}, map[string]string{"INFRA_ENV_NAME": "qa"}, "qa"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// GIVEN
			app := appWithContext(tc.context)
			environment := lib.GetEnvironmentFromContext(app)

			// WHEN
			cfg, err := loadConfig(app, environment, tc.environ)

			// THEN
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.App.EnvName)
			for _, svc := range cfg.Services {
				assert.Equal(t, tc.want, svc.EnvName)
			}
		})
	}
}

func TestLoadConfigReadsContextFile(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "infra.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env_name: staging
  app_name: shop
services:
  - service_name: orders
`), 0o600))
	app := appWithContext(map[string]interface{}{"config": path})

	// WHEN
	cfg, err := loadConfig(app, lib.GetEnvironmentFromContext(app), map[string]string{})

	// THEN
	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.App.AppName)
	assert.Equal(t, "staging", cfg.App.EnvName)
	require.Len(t, cfg.Services, 1)
	assert.Equal(t, "orders", cfg.Services[0].ServiceName)
}

func TestLoadConfigReportsMissingFile(t *testing.T) {
	app := appWithContext(map[string]interface{}{"config": filepath.Join(t.TempDir(), "missing.yml")})

	_, err := loadConfig(app, lib.GetEnvironmentFromContext(app), map[string]string{})

	assert.Error(t, err)
}
