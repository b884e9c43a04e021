// Command infra-manifest composes the app stacks without synthesizing a CDK
// app and prints or validates the resulting manifests.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/reginaldFerland/cdk/infra/builder"
	"github.com/reginaldFerland/cdk/infra/compose"
	"github.com/reginaldFerland/cdk/infra/config"
	"github.com/reginaldFerland/cdk/infra/manifest"
)

type CLI struct {
	Render   RenderCmd   `cmd:"" help:"Print the manifest of every stack"`
	Validate ValidateCmd `cmd:"" help:"Check that every stack composes and validates"`
}

type ConfigFlags struct {
	Config string `name:"config" short:"c" type:"path" help:"Path to a YAML configuration (default: built-in local environment)"`
	Env    string `name:"env" help:"Override the environment name of every stack"`
}

type RenderCmd struct {
	ConfigFlags
	Format string `name:"format" default:"yaml" enum:"yaml,json" help:"Output format (yaml, json)"`
}

type ValidateCmd struct {
	ConfigFlags
}

type kongExitCode int

type commandDeps struct {
	loadConfig func(path string) (*config.File, error)
	environ    map[string]string
	out        io.Writer
	errOut     io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], defaultDeps()))
}

func defaultDeps() commandDeps {
	return commandDeps{
		loadConfig: config.Load,
		out:        os.Stdout,
		errOut:     os.Stderr,
	}
}

func run(args []string, deps commandDeps) (exitCode int) {
	out := deps.out
	if out == nil {
		out = os.Stdout
	}
	errOut := deps.errOut
	if errOut == nil {
		errOut = os.Stderr
	}
	cli := CLI{}
	parser, err := kong.New(
		&cli,
		kong.Name("infra-manifest"),
		kong.Description("Compose the infrastructure stacks and print their manifests."),
		kong.Writers(out, errOut),
		kong.Exit(func(code int) {
			panic(kongExitCode(code))
		}),
	)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: initialize command parser: %v\n", err)
		return 1
	}
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		code, ok := recovered.(kongExitCode)
		if !ok {
			panic(recovered)
		}
		exitCode = int(code)
	}()
	ctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		_, _ = fmt.Fprintln(errOut, "Hint: run `infra-manifest --help`.")
		return 1
	}

	switch ctx.Command() {
	case "render":
		if err := runRender(cli.Render, deps, out, errOut); err != nil {
			reportError(errOut, err)
			return 1
		}
		return 0
	case "validate":
		if err := runValidate(cli.Validate, deps, out, errOut); err != nil {
			reportError(errOut, err)
			return 1
		}
		return 0
	default:
		_, _ = fmt.Fprintf(errOut, "Error: unsupported command: %s\n", ctx.Command())
		_, _ = fmt.Fprintln(errOut, "Hint: run `infra-manifest --help`.")
		return 1
	}
}

func runRender(cmd RenderCmd, deps commandDeps, out, errOut io.Writer) error {
	manifests, err := composeManifests(cmd.ConfigFlags, deps, errOut)
	if err != nil {
		return err
	}
	if cmd.Format == "json" {
		return manifest.WriteJSON(out, manifests...)
	}
	return manifest.WriteYAML(out, manifests...)
}

func runValidate(cmd ValidateCmd, deps commandDeps, out, errOut io.Writer) error {
	manifests, err := composeManifests(cmd.ConfigFlags, deps, errOut)
	if err != nil {
		return err
	}
	for _, m := range manifests {
		_, _ = fmt.Fprintf(out, "%s: %d resources, %d parameters\n", m.Stack(), m.Len(), len(m.ParameterEntries()))
	}
	return nil
}

func composeManifests(flags ConfigFlags, deps commandDeps, errOut io.Writer) ([]*manifest.Manifest, error) {
	cfg := config.Defaults()
	if flags.Config != "" {
		load := deps.loadConfig
		if load == nil {
			load = config.Load
		}
		loaded, err := load(flags.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(deps.environ); err != nil {
		return nil, err
	}
	if flags.Env != "" {
		cfg.SetEnvName(flags.Env)
	}

	log := cfg.Log.NewLogger(errOut)
	return compose.Compose(builder.NewSymbolic(), cfg, compose.WithLogger(log))
}

func reportError(w io.Writer, err error) {
	var verr *manifest.ValidationError
	if errors.As(err, &verr) {
		_, _ = fmt.Fprintf(w, "Error: %s has %d violation(s)\n", verr.Scope, len(verr.Violations))
		for _, v := range verr.Violations {
			_, _ = fmt.Fprintf(w, "  - %s\n", v)
		}
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	var cerr *builder.ConfigurationError
	if errors.As(err, &cerr) {
		_, _ = fmt.Fprintf(w, "Hint: check the configuration of stack %s.\n", cerr.Stack)
	}
}
