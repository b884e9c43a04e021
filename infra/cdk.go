package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"

	"github.com/reginaldFerland/cdk/infra/compose"
	"github.com/reginaldFerland/cdk/infra/config"
	"github.com/reginaldFerland/cdk/infra/lib"
	"github.com/reginaldFerland/cdk/infra/stacks"
)

func main() {
	defer jsii.Close()

	app := awscdk.NewApp(nil)

	// Get environment information from context
	environment := lib.GetEnvironmentFromContext(app)
	environment.Tag(app)

	cfg, err := loadConfig(app, environment, nil)
	if err != nil {
		config.LogConfig{}.NewLogger(os.Stderr).Error("load configuration", "error", err)
		os.Exit(1)
	}
	log := cfg.Log.NewLogger(os.Stderr)

	prov := stacks.NewProvisioner(app, &awscdk.StackProps{
		Env: env(),
	})
	if _, err := compose.Compose(prov, cfg, compose.WithLogger(log)); err != nil {
		log.Error("compose stacks", "error", err)
		os.Exit(1)
	}

	app.Synth(nil)
}

// loadConfig reads the file named by the "config" context key, or the
// built-in local configuration, and applies INFRA_* overrides from environ
// (nil reads the process environment). The environment name comes from
// INFRA_ENV_NAME, else from the CDK context, else from the configuration.
func loadConfig(app awscdk.App, environment lib.Environment, environ map[string]string) (*config.File, error) {
	cfg := config.Defaults()
	if path, ok := app.Node().TryGetContext(jsii.String("config")).(string); ok && path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(environ); err != nil {
		return nil, err
	}
	if _, overridden := config.LookupEnv(environ, config.EnvEnvName); overridden {
		return cfg, nil
	}
	if qualifier := environment.Qualifier(); qualifier != "" {
		cfg.SetEnvName(qualifier)
	}
	return cfg, nil
}

// env determines the AWS environment (account+region) in which our stack is to
// be deployed. For more information see: https://docs.aws.amazon.com/cdk/latest/guide/environments.html
func env() *awscdk.Environment {
	account, region := os.Getenv("CDK_DEFAULT_ACCOUNT"), os.Getenv("CDK_DEFAULT_REGION")
	// If unspecified, this stack will be "environment-agnostic".
	if account == "" || region == "" {
		return nil
	}
	return &awscdk.Environment{
		Account: jsii.String(account),
		Region:  jsii.String(region),
	}
}
