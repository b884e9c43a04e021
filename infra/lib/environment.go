package lib

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// Environment represents the deployment environment
type Environment struct {
	Name     string
	PRNumber string
	Version  string
	Username string
	IsPR     bool
}

// getCurrentUsername retrieves the current username from the environment variables
func getCurrentUsername() string {
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}
	if len(username) == 0 {
		username = "default"
	}
	return username
}

// Qualifier returns the environment name stacks are deployed under. PR
// environments become "pr-<number>", development environments are suffixed
// with the username. An empty result leaves the configured name in place.
func (e Environment) Qualifier() string {
	if e.IsPR {
		return "pr-" + e.PRNumber
	}
	if e.Name == "development" {
		username := e.Username
		if username == "" {
			username = getCurrentUsername()
		}
		return e.Name + "-" + username
	}
	return e.Name
}

// Tag adds the environment tags to every resource below scope.
func (e Environment) Tag(scope constructs.Construct) {
	tags := awscdk.Tags_Of(scope)
	if e.Name != "" {
		tags.Add(jsii.String("Environment"), jsii.String(e.Name), nil)
	}
	if e.Username != "" {
		tags.Add(jsii.String("Username"), jsii.String(e.Username), nil)
	}
	if e.IsPR {
		tags.Add(jsii.String("PR"), jsii.String(e.PRNumber), nil)
	}
	if e.Version != "" {
		tags.Add(jsii.String("Version"), jsii.String(e.Version), nil)
	}
}

// GetEnvironmentFromContext extracts environment information from CDK context
func GetEnvironmentFromContext(app awscdk.App) Environment {
	if app == nil {
		panic("CDK app is nil. Cannot extract environment context.")
	}

	env := Environment{
		Name:     contextString(app, "environment"),
		PRNumber: contextString(app, "pr_number"),
		Version:  contextString(app, "version"),
		Username: contextString(app, "username"),
	}
	env.IsPR = env.PRNumber != ""

	if sha := contextString(app, "sha"); sha != "" {
		env.Version = sha
	}

	// Set username from context or use current username as fallback
	if env.Username == "" {
		env.Username = getCurrentUsername()
	}

	return env
}

func contextString(app awscdk.App, key string) string {
	value, ok := app.Node().TryGetContext(jsii.String(key)).(string)
	if !ok {
		return ""
	}
	return value
}
