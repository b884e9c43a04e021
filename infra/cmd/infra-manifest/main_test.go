package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reginaldFerland/cdk/infra/config"
)

func newDeps(out, errOut *bytes.Buffer) commandDeps {
	return commandDeps{
		loadConfig: config.Load,
		environ:    map[string]string{},
		out:        out,
		errOut:     errOut,
	}
}

func TestRunShowsHelp(t *testing.T) {
	var out, errOut bytes.Buffer

	code := run([]string{"--help"}, newDeps(&out, &errOut))

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "render")
	assert.Contains(t, out.String(), "validate")
}

func TestRunRequiresSubcommand(t *testing.T) {
	var out, errOut bytes.Buffer

	code := run(nil, newDeps(&out, &errOut))

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "infra-manifest --help")
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	var out, errOut bytes.Buffer

	code := run([]string{"render", "--format", "toml"}, newDeps(&out, &errOut))

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "--format")
}

func TestRenderDefaultsAsYAML(t *testing.T) {
	var out, errOut bytes.Buffer

	code := run([]string{"render"}, newDeps(&out, &errOut))

	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "stack: app-general-local")
	assert.Contains(t, out.String(), "stack: app-notification-local")
	assert.Contains(t, out.String(), "/local/app/notification/DatabaseEndpoint")
	assert.Equal(t, 2, strings.Count(out.String(), "\n---\n")+1)
}

func TestRenderJSONWithEnvOverride(t *testing.T) {
	var out, errOut bytes.Buffer

	code := run([]string{"render", "--format", "json", "--env", "pr-7"}, newDeps(&out, &errOut))

	require.Equal(t, 0, code, errOut.String())
	var docs []struct {
		Stack      string `json:"stack"`
		Parameters []struct {
			Path string `json:"path"`
		} `json:"parameters"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "app-general-pr-7", docs[0].Stack)
	assert.Equal(t, "/pr-7/app/general/OpenSeachUrl", docs[0].Parameters[0].Path)
}

func TestRenderReadsConfigFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "infra.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env_name: staging
  app_name: shop
services:
  - service_name: orders
    messaging:
      topics: [orderPlaced]
`), 0o600))

	var out, errOut bytes.Buffer
	deps := newDeps(&out, &errOut)
	deps.environ = map[string]string{"INFRA_APP_NAME": "store"}

	code := run([]string{"validate", "--config", path}, deps)

	require.Equal(t, 0, code, errOut.String())
	assert.Equal(t,
		"store-general-staging: 3 resources, 1 parameters\n"+
			"store-orders-staging: 1 resources, 1 parameters\n",
		out.String())
}

func TestValidateReportsLoadErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	deps := newDeps(&out, &errOut)
	deps.loadConfig = func(string) (*config.File, error) {
		return nil, errors.New("boom")
	}

	code := run([]string{"validate", "--config", "infra.yml"}, deps)

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "Error: boom")
}

func TestValidateReportsConfigurationErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	deps := newDeps(&out, &errOut)
	deps.loadConfig = func(string) (*config.File, error) {
		f := config.Defaults()
		f.Services[0].Messaging.Topics = []string{"dup", "dup"}
		f.Services[0].Messaging.Subscriptions = nil
		return f, nil
	}

	code := run([]string{"validate", "--config", "infra.yml"}, deps)

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "WithSnsTopic")
	assert.Contains(t, errOut.String(), "Hint: check the configuration of stack app-notification-local.")
}
