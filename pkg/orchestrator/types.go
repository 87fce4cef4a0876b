//go:generate mockgen -destination=./mocks/orchestrator.go . MetadataResolver,ArchiveFetcher,Unpacker,Builder,Registrar,HookRunner

package orchestrator

import (
	"context"

	"github.com/glorpus-work/gleam-pkg/pkg/archive"
	"github.com/glorpus-work/gleam-pkg/pkg/fsutil"
	"github.com/glorpus-work/gleam-pkg/pkg/hooks"
	"github.com/glorpus-work/gleam-pkg/pkg/model"
	"github.com/glorpus-work/gleam-pkg/pkg/registry"
)

// MetadataResolver looks up a package in the registry.
type MetadataResolver interface {
	ResolveMetadata(ctx context.Context, name string) (*registry.Metadata, error)
}

// ArchiveFetcher downloads a release tarball and stores it under the download directory.
type ArchiveFetcher interface {
	FetchArchive(ctx context.Context, ref model.PackageRef) ([]byte, error)
	SaveArchive(dir string, ref model.PackageRef, data []byte) (string, error)
}

// Unpacker is the subset of the archive unpacker used by the orchestrator.
type Unpacker interface {
	Unpack(ctx context.Context, tarPath, destDir string) (*archive.Bundle, error)
}

// Builder runs the toolchain against unpacked sources.
type Builder interface {
	Build(ctx context.Context, contentsDir string) error
	RuntimeVersion(ctx context.Context) (string, error)
	VersionQuery() []string
	Artifact(contentsDir, name string) (string, error)
}

// Registrar places launchers in the apps directory.
type Registrar interface {
	Install(ref model.PackageRef, launcher []byte) (string, error)
	Remove(name string) error
	Path(name string) string
}

// HookRunner executes user install scripts.
type HookRunner interface {
	Execute(ctx context.Context, hookType hooks.HookType, hctx hooks.HookContext) error
}

// Orchestrator ties the registry, unpacker, builder and registrar together for installs.
type Orchestrator struct {
	Layout     fsutil.Layout
	Registry   MetadataResolver
	Fetcher    ArchiveFetcher
	Unpacker   Unpacker
	Builder    Builder
	Registrar  Registrar
	Scripts    HookRunner // optional
	Resolution string     // config.ResolutionFirst or config.ResolutionHighest
	Hooks      Hooks      // Hooks for progress and event notifications
}

// Phases reported through Hooks.OnEvent.
const (
	PhaseResolving   = "resolving"
	PhaseDownloading = "downloading"
	PhaseExtracting  = "extracting"
	PhaseBuilding    = "building"
	PhasePackaging   = "packaging"
	PhaseInstalling  = "installing"
	PhaseRemoving    = "removing"
	PhaseDone        = "done"
)

// Event represents a simple progress notification.
type Event struct {
	Phase string
	ID    string // name-version of the package, once resolved
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// InstallOptions control orchestrator install execution.
type InstallOptions struct {
	DryRun bool
}

// Result describes a finished install.
type Result struct {
	Ref             model.PackageRef
	ArchivePath     string
	Bundle          *archive.Bundle
	LauncherPath    string
	CompiledVersion string
	DryRun          bool
}
