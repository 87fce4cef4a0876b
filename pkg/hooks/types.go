package hooks

// HookType represents the type of hooks.
type HookType string

// Supported hooks types.
const (
	// PreInstall runs after the sources are unpacked and before the build.
	PreInstall HookType = "pre-install"
	// PostInstall runs after the launcher is registered.
	PostInstall HookType = "post-install"
	// PreRemove runs before a launcher is uninstalled.
	PreRemove HookType = "pre-remove"
	// PostRemove runs after a launcher is uninstalled.
	PostRemove HookType = "post-remove"
)

// AllTypes lists the supported hooks types in execution order.
var AllTypes = []HookType{PreInstall, PostInstall, PreRemove, PostRemove}

// Valid reports whether t is a supported hooks type.
func (t HookType) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Hook represents a hooks script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains information passed to hooks.
type HookContext struct {
	PackageName    string
	PackageVersion string
	// SourcePath is the unpacked contents/ directory, empty for removals.
	SourcePath string
	// InstallPath is the launcher path below apps/.
	InstallPath string
	Vars        map[string]interface{}
}
