package hooks

import (
	"context"
)

// DefaultHookManager is the default implementation of HookManager.
type DefaultHookManager struct {
	executor *TengoExecutor
}

// NewHookManager creates a new hooks manager.
func NewHookManager() *DefaultHookManager {
	return &DefaultHookManager{
		executor: NewTengoExecutor(),
	}
}

// Execute runs the specified hooks type with the given context.
func (m *DefaultHookManager) Execute(ctx context.Context, hookType HookType, hctx HookContext) error {
	if !m.HasHook(hookType) {
		return nil
	}

	ctxCopy := hctx
	if ctxCopy.Vars == nil {
		ctxCopy.Vars = make(map[string]interface{})
	}

	return m.executor.Execute(ctx, hookType, ctxCopy)
}

// AddHook adds a new hooks.
func (m *DefaultHookManager) AddHook(hook Hook) error {
	if hook.Type == "" {
		return ErrHookTypeEmpty
	}
	m.executor.AddScript(hook.Type, hook.Content)
	return nil
}

// RemoveHook removes a hooks of the specified type.
func (m *DefaultHookManager) RemoveHook(hookType HookType) error {
	if hookType == "" {
		return ErrHookTypeEmpty
	}
	m.executor.RemoveScript(hookType)
	return nil
}

// HasHook checks if a hooks of the specified type exists.
func (m *DefaultHookManager) HasHook(hookType HookType) bool {
	return m.executor.HasScript(hookType)
}
