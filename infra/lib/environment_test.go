package lib_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"

	"github.com/reginaldFerland/cdk/infra/lib"
)

func TestGetEnvironmentFromContext(t *testing.T) {
	// GIVEN
	app := awscdk.NewApp(&awscdk.AppProps{
		Context: &map[string]interface{}{
			"environment": "staging",
			"pr_number":   "42",
			"version":     "1.2.0",
			"sha":         "abc123",
			"username":    "ci",
		},
	})

	// WHEN
	env := lib.GetEnvironmentFromContext(app)

	// THEN
	assert.Equal(t, lib.Environment{
		Name:     "staging",
		PRNumber: "42",
		Version:  "abc123",
		Username: "ci",
		IsPR:     true,
	}, env)
}

func TestGetEnvironmentFromEmptyContext(t *testing.T) {
	t.Setenv("USER", "jane")

	env := lib.GetEnvironmentFromContext(awscdk.NewApp(nil))

	assert.Equal(t, "", env.Name)
	assert.False(t, env.IsPR)
	assert.Equal(t, "jane", env.Username)
	assert.Equal(t, "", env.Qualifier())
}

func TestQualifier(t *testing.T) {
	cases := []struct {
		name string
		env  lib.Environment
		want string
	}{
		{"pr", lib.Environment{Name: "staging", PRNumber: "7", IsPR: true}, "pr-7"},
		{"development", lib.Environment{Name: "development", Username: "jane"}, "development-jane"},
		{"named", lib.Environment{Name: "production"}, "production"},
		{"unset", lib.Environment{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.env.Qualifier())
		})
	}
}

func TestTag(t *testing.T) {
	// GIVEN
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)
	awssns.NewTopic(stack, jsii.String("Topic"), nil)

	// WHEN
	lib.Environment{Name: "staging", PRNumber: "7", IsPR: true, Version: "abc"}.Tag(app)

	// THEN
	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::SNS::Topic"), map[string]interface{}{
		"Tags": assertions.Match_ArrayWith(&[]interface{}{
			map[string]interface{}{"Key": "Environment", "Value": "staging"},
			map[string]interface{}{"Key": "PR", "Value": "7"},
			map[string]interface{}{"Key": "Version", "Value": "abc"},
		}),
	})
}
