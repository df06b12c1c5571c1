package tools

import (
	"context"
	"fmt"

	"conduit/internal/agent"
	"conduit/internal/sched"

	"github.com/google/uuid"
)

const maxDelegationDepth = 3

// Delegate spawns a scoped sub-agent to handle a task. The sub-agent run is
// deferred work: Invoke returns a future immediately and the caller resolves
// it when it wants the sub-agent's answer.
type Delegate struct {
	factory *agent.RunnerFactory
}

func NewDelegate(factory *agent.RunnerFactory) *Delegate {
	return &Delegate{factory: factory}
}

func (d *Delegate) Name() string        { return "delegate" }
func (d *Delegate) Description() string { return "Delegate a task to a specialized sub-agent" }

func (d *Delegate) InputSchema() map[string]any {
	profiles := d.factory.Profiles()
	profileEnum := make([]any, len(profiles))
	for i, p := range profiles {
		profileEnum[i] = p
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agent": map[string]any{
				"type":        "string",
				"description": "Name of the agent profile to delegate to",
				"enum":        profileEnum,
			},
			"task": map[string]any{
				"type":        "string",
				"description": "The task description for the sub-agent",
			},
		},
		"required":             []string{"agent", "task"},
		"additionalProperties": false,
	}
}

func (d *Delegate) Invoke(ctx context.Context, input map[string]any) (any, error) {
	var args struct {
		Agent string `json:"agent"`
		Task  string `json:"task"`
	}
	if err := decodeArgs(input, &args); err != nil {
		return nil, fmt.Errorf("parsing delegate input: %w", err)
	}

	// Recursion guard.
	depth := agent.DelegationDepthFromContext(ctx)
	if depth >= maxDelegationDepth {
		return nil, fmt.Errorf("maximum delegation depth (%d) exceeded", maxDelegationDepth)
	}

	runner, err := d.factory.Build(args.Agent)
	if err != nil {
		return nil, fmt.Errorf("building sub-agent: %w", err)
	}

	subSession := agent.SessionIDFromContext(ctx) + "/" + uuid.NewString()[:8]
	subCtx := agent.ContextWithDelegationDepth(ctx, depth+1)

	emit := agent.EmitFromContext(ctx)
	if emit == nil {
		emit = func(agent.Event) {}
	}

	return sched.Go(subCtx, func(ctx context.Context) (any, error) {
		resp, err := runner.Run(ctx, subSession, args.Task, emit)
		if err != nil {
			return nil, fmt.Errorf("sub-agent run: %w", err)
		}
		return resp.Content, nil
	}), nil
}
