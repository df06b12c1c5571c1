package agent

import (
	"fmt"
	"log/slog"

	"conduit/internal/provider"
	"conduit/internal/tool"
)

// RunnerFactory builds scoped runners from agent profiles.
type RunnerFactory struct {
	adapter        *provider.Adapter
	globalRegistry *tool.Registry
	profiles       map[string]*Profile
	log            *slog.Logger
}

func NewRunnerFactory(adapter *provider.Adapter, registry *tool.Registry, profiles map[string]*Profile, log *slog.Logger) *RunnerFactory {
	if log == nil {
		log = slog.Default()
	}
	return &RunnerFactory{
		adapter:        adapter,
		globalRegistry: registry,
		profiles:       profiles,
		log:            log,
	}
}

// Build creates a LoopRunner scoped to the given profile.
func (f *RunnerFactory) Build(profileName string) (Runner, error) {
	profile, ok := f.profiles[profileName]
	if !ok {
		return nil, fmt.Errorf("unknown agent profile: %s", profileName)
	}

	registry := f.globalRegistry.Scope(profile.Tools)
	executor := tool.NewExecutor(registry, f.log)

	var opts []LoopOption
	if profile.SystemPrompt != "" {
		opts = append(opts, WithSystemPrompt(profile.SystemPrompt))
	}
	opts = append(opts, WithLoopLogger(f.log))

	return NewLoopRunner(f.adapter, executor, registry.All(), opts...), nil
}

// Profiles returns the names of all registered profiles.
func (f *RunnerFactory) Profiles() []string {
	names := make([]string, 0, len(f.profiles))
	for name := range f.profiles {
		names = append(names, name)
	}
	return names
}
