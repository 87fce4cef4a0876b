package orchestrator

import (
	"context"
	"fmt"
	"os"

	"github.com/glorpus-work/gleam-pkg/internal/logger"
	"github.com/glorpus-work/gleam-pkg/pkg/config"
	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/glorpus-work/gleam-pkg/pkg/fsutil"
	"github.com/glorpus-work/gleam-pkg/pkg/hooks"
	"github.com/glorpus-work/gleam-pkg/pkg/launcher"
	"github.com/glorpus-work/gleam-pkg/pkg/model"
	"github.com/glorpus-work/gleam-pkg/pkg/registry"
)

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// New constructs an Orchestrator from the pipeline components. Helper for wiring.
// scripts may be nil if no install scripts are configured.
func New(layout fsutil.Layout, reg MetadataResolver, fetcher ArchiveFetcher, unpacker Unpacker,
	builder Builder, registrar Registrar, scripts HookRunner, resolution string, h Hooks) *Orchestrator {
	return &Orchestrator{
		Layout:     layout,
		Registry:   reg,
		Fetcher:    fetcher,
		Unpacker:   unpacker,
		Builder:    builder,
		Registrar:  registrar,
		Scripts:    scripts,
		Resolution: resolution,
		Hooks:      h,
	}
}

// Resolve looks up name in the registry and picks the version to install.
func (o *Orchestrator) Resolve(ctx context.Context, name string) (model.PackageRef, error) {
	if o.Registry == nil {
		return model.PackageRef{}, fmt.Errorf("registry client is not configured")
	}
	meta, err := o.Registry.ResolveMetadata(ctx, name)
	if err != nil {
		return model.PackageRef{}, err
	}

	var version string
	switch o.Resolution {
	case config.ResolutionHighest:
		version, err = registry.SelectHighestVersion(meta)
	default:
		version, err = registry.SelectVersion(meta)
	}
	if err != nil {
		return model.PackageRef{}, err
	}
	return model.PackageRef{Name: name, Version: version}, nil
}

// Install runs the whole pipeline for name: resolve, download, unpack, build,
// package and register. The first failing stage aborts the install and
// nothing is rolled back.
func (o *Orchestrator) Install(ctx context.Context, name string, opts InstallOptions) (*Result, error) {
	if err := model.ValidateName(name); err != nil {
		return nil, err
	}
	if err := o.checkConfigured(); err != nil {
		return nil, err
	}
	if err := o.Layout.Ensure(); err != nil {
		return nil, err
	}

	emit(o.Hooks, Event{Phase: PhaseResolving, Msg: name})
	ref, err := o.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	id := ref.ID()
	res := &Result{Ref: ref}

	if opts.DryRun {
		res.DryRun = true
		emit(o.Hooks, Event{Phase: PhaseDone, ID: id, Msg: "dry-run: would install " + ref.String()})
		return res, nil
	}

	emit(o.Hooks, Event{Phase: PhaseDownloading, ID: id, Msg: ref.String()})
	data, err := o.Fetcher.FetchArchive(ctx, ref)
	if err != nil {
		return nil, err
	}
	res.ArchivePath, err = o.Fetcher.SaveArchive(o.Layout.Download, ref, data)
	if err != nil {
		return nil, err
	}

	emit(o.Hooks, Event{Phase: PhaseExtracting, ID: id, Msg: res.ArchivePath})
	res.Bundle, err = o.Unpacker.Unpack(ctx, res.ArchivePath, o.Layout.ExtractDir(ref.Name, ref.Version))
	if err != nil {
		return nil, err
	}

	hctx := hooks.HookContext{
		PackageName:    ref.Name,
		PackageVersion: ref.Version,
		SourcePath:     res.Bundle.Contents,
		InstallPath:    o.Registrar.Path(ref.Name),
	}
	if err := o.runScript(ctx, hooks.PreInstall, hctx); err != nil {
		return nil, err
	}

	emit(o.Hooks, Event{Phase: PhaseBuilding, ID: id, Msg: res.Bundle.Contents})
	if err := o.Builder.Build(ctx, res.Bundle.Contents); err != nil {
		return nil, err
	}
	res.CompiledVersion, err = o.Builder.RuntimeVersion(ctx)
	if err != nil {
		return nil, err
	}
	artifact, err := o.Builder.Artifact(res.Bundle.Contents, ref.Name)
	if err != nil {
		return nil, err
	}

	emit(o.Hooks, Event{Phase: PhasePackaging, ID: id, Msg: artifact})
	payload, err := os.ReadFile(artifact)
	if err != nil {
		return nil, pkgerrors.Kind(pkgerrors.ErrPackaging, err, "failed to read %s", artifact)
	}
	script, err := launcher.Render(launcher.Spec{
		Name:            ref.Name,
		CompiledVersion: res.CompiledVersion,
		VersionQuery:    o.Builder.VersionQuery(),
		Payload:         payload,
	})
	if err != nil {
		return nil, err
	}

	emit(o.Hooks, Event{Phase: PhaseInstalling, ID: id, Msg: o.Registrar.Path(ref.Name)})
	res.LauncherPath, err = o.Registrar.Install(ref, script)
	if err != nil {
		return nil, err
	}

	hctx.InstallPath = res.LauncherPath
	if err := o.runScript(ctx, hooks.PostInstall, hctx); err != nil {
		return nil, err
	}

	logger.InfofWithFields(logger.Fields{"version": ref.Version, "runtime": res.CompiledVersion}, "Installed %s to %s", ref.Name, res.LauncherPath)
	emit(o.Hooks, Event{Phase: PhaseDone, ID: id, Msg: res.LauncherPath})
	return res, nil
}

// Uninstall removes the launcher for name, running the remove scripts around it.
func (o *Orchestrator) Uninstall(ctx context.Context, name string) error {
	if err := model.ValidateName(name); err != nil {
		return err
	}
	if o.Registrar == nil {
		return fmt.Errorf("registrar is not configured")
	}

	hctx := hooks.HookContext{PackageName: name, InstallPath: o.Registrar.Path(name)}
	if err := o.runScript(ctx, hooks.PreRemove, hctx); err != nil {
		return err
	}

	emit(o.Hooks, Event{Phase: PhaseRemoving, ID: name, Msg: hctx.InstallPath})
	if err := o.Registrar.Remove(name); err != nil {
		return err
	}

	if err := o.runScript(ctx, hooks.PostRemove, hctx); err != nil {
		return err
	}
	emit(o.Hooks, Event{Phase: PhaseDone, ID: name})
	return nil
}

func (o *Orchestrator) runScript(ctx context.Context, hookType hooks.HookType, hctx hooks.HookContext) error {
	if o.Scripts == nil {
		return nil
	}
	logger.Debugf("Running %s scripts for %s", hookType, hctx.PackageName)
	return o.Scripts.Execute(ctx, hookType, hctx)
}

func (o *Orchestrator) checkConfigured() error {
	switch {
	case o.Registry == nil:
		return fmt.Errorf("registry client is not configured")
	case o.Fetcher == nil:
		return fmt.Errorf("archive fetcher is not configured")
	case o.Unpacker == nil:
		return fmt.Errorf("unpacker is not configured")
	case o.Builder == nil:
		return fmt.Errorf("builder is not configured")
	case o.Registrar == nil:
		return fmt.Errorf("registrar is not configured")
	}
	return nil
}
