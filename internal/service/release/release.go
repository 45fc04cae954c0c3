package release

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/electron-release/internal/config"
	"github.com/oshokin/electron-release/internal/logger"
	"github.com/oshokin/electron-release/internal/manifest"
	"github.com/oshokin/electron-release/internal/pkgmanager"
	"github.com/oshokin/electron-release/internal/platform"
	"github.com/oshokin/electron-release/internal/retry"
	"github.com/oshokin/electron-release/internal/runner"
)

var (
	// ErrManifestNotFound is returned when package.json is missing from the package root.
	ErrManifestNotFound = errors.New("`package.json` file not found")
	// errInputsNotSet is returned when Run is called without inputs.
	errInputsNotSet = errors.New("inputs are not set")
)

// Options contains inputs for the release entry point.
type Options struct {
	// Inputs is the validated action configuration.
	Inputs *config.Inputs
	// Platform is the build target. Defaults to the host platform.
	Platform platform.Platform
	// Runner executes child processes. Defaults to runner.NewExec.
	Runner runner.Runner
}

// orchestrator holds everything resolved before the first command runs.
// It is unexported: callers use Run, which performs the checks first.
type orchestrator struct {
	in       *config.Inputs
	target   platform.Platform
	manager  pkgmanager.Manager
	manifest *manifest.Manifest
	env      map[string]string
	runner   runner.Runner
}

// Run executes the release workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "release-action")

	o, err := newOrchestrator(ctx, opts)
	if err != nil {
		return err
	}

	return o.run(ctx)
}

// newOrchestrator validates the inputs and resolves the platform, the
// package manager and the manifest. Nothing is executed here.
func newOrchestrator(ctx context.Context, opts *Options) (*orchestrator, error) {
	if opts == nil || opts.Inputs == nil {
		return nil, errInputsNotSet
	}

	in := opts.Inputs
	if err := in.Validate(); err != nil {
		return nil, err
	}

	target := opts.Platform
	if target == "" {
		target = platform.Current()
	}

	r := opts.Runner
	if r == nil {
		r = runner.NewExec()
	}

	manager := pkgmanager.Detect(in.PackageRoot)
	logger.Infof(ctx, "Will run %s commands in directory %q", manager.DisplayName(), in.PackageRoot)

	// The manifest is read once here and reused by the build step.
	pkg, err := manifest.Load(in.PackageRoot)
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			return nil, fmt.Errorf("%w at path %q", ErrManifestNotFound, manifest.Path(in.PackageRoot))
		}

		return nil, err
	}

	return &orchestrator{
		in:       in,
		target:   target,
		manager:  manager,
		manifest: pkg,
		env:      CredentialEnv(in, target),
		runner:   r,
	}, nil
}

// run performs install, build and package in order.
func (o *orchestrator) run(ctx context.Context) error {
	if err := o.install(ctx); err != nil {
		return fmt.Errorf("install dependencies: %w", err)
	}

	if err := o.build(ctx); err != nil {
		return fmt.Errorf("run build script: %w", err)
	}

	if err := o.pack(ctx); err != nil {
		return fmt.Errorf("package app: %w", err)
	}

	logger.Info(ctx, "Done")

	return nil
}

// install installs dependencies. Failures are not retried.
func (o *orchestrator) install(ctx context.Context) error {
	logger.Infof(ctx, "Installing dependencies using %s…", o.manager.DisplayName())

	name, args := o.manager.InstallArgs()

	return o.exec(ctx, name, args, o.in.PackageRoot)
}

// build runs the build script unless skipped. Failures are not retried.
func (o *orchestrator) build(ctx context.Context) error {
	if o.in.SkipBuild {
		logger.Info(ctx, "Skipping build script because `skip_build` option is set")
		return nil
	}

	logger.Info(ctx, "Running the build script…")

	name, args, ok := o.manager.BuildArgs(o.in.BuildScriptName, o.manifest)
	if !ok {
		logger.DebugKV(ctx, "Build script not defined in manifest, nothing to run", "script", o.in.BuildScriptName)
		return nil
	}

	return o.exec(ctx, name, args, o.in.PackageRoot)
}

// pack runs electron-builder, retrying up to MaxAttempts times.
func (o *orchestrator) pack(ctx context.Context) error {
	if o.in.Release {
		logger.Info(ctx, "Building and releasing the Electron app…")
	} else {
		logger.Info(ctx, "Building the Electron app…")
	}

	name, args := o.manager.PackageArgs(o.target, o.in.ExtraArgs())

	return retry.Do(ctx, o.in.MaxAttempts,
		func(ctx context.Context, _ int) error {
			return o.exec(ctx, name, args, o.in.AppRoot)
		},
		func(attempt int, err error) {
			logger.WarnKV(ctx, fmt.Sprintf("Attempt %d failed", attempt),
				"max_attempts", o.in.MaxAttempts, "error", err)
		},
	)
}

// exec runs one command with the credential overlay.
func (o *orchestrator) exec(ctx context.Context, name string, args []string, dir string) error {
	cmd := runner.Command{
		Name: name,
		Args: args,
		Dir:  dir,
		Env:  o.env,
	}

	logger.DebugKV(ctx, "Running command", "command", cmd.String(), "dir", dir)

	return o.runner.Run(ctx, cmd)
}
