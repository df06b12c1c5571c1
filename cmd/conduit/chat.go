package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"conduit/internal/agent"
	"conduit/internal/config"
	"conduit/internal/provider"
	"conduit/internal/tool"
	"conduit/internal/tools"
	"conduit/internal/trace"

	"github.com/spf13/cobra"
)

var chatProfile string

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a message through the provider adapter",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if cfg.Trace.Enabled {
			shutdown, err := trace.Init(ctx, trace.Config{
				Endpoint: cfg.Trace.Endpoint,
				URLPath:  cfg.Trace.URLPath,
				APIKey:   cfg.Trace.APIKey,
			})
			if err != nil {
				slog.Warn("tracing disabled", "error", err)
			} else {
				defer func() {
					shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = shutdown(shutCtx)
				}()
			}
		}

		llm, ok := cfg.LLMs[cfg.DefaultLLM]
		if !ok {
			return fmt.Errorf("unknown default llm: %s", cfg.DefaultLLM)
		}

		backend := provider.NewOpenAI(llm.BaseURL, llm.APIKey, llm.Model, slog.Default())
		adapter, err := provider.NewAdapter(backend, provider.WithLogger(slog.Default()))
		if err != nil {
			return fmt.Errorf("building adapter: %w", err)
		}

		registry := buildRegistry(cfg, adapter)

		var opts []agent.LoopOption
		if chatProfile != "" {
			profile, ok := cfg.Profiles[chatProfile]
			if !ok {
				return fmt.Errorf("unknown profile: %s", chatProfile)
			}
			if profile.SystemPrompt != "" {
				opts = append(opts, agent.WithSystemPrompt(profile.SystemPrompt))
			}
			registry = registry.Scope(profile.Tools)
		}

		executor := tool.NewExecutor(registry, slog.Default())
		runner := agent.NewLoopRunner(adapter, executor, registry.All(), opts...)

		resp, err := runner.Run(ctx, "", strings.Join(args, " "), printEvent)
		if err != nil {
			return err
		}
		fmt.Println(resp.Content)
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatProfile, "profile", "", "agent profile to run with")
}

func buildRegistry(cfg *config.Config, adapter *provider.Adapter) *tool.Registry {
	var all []tool.Tool
	all = append(all, &tools.File{})
	if cfg.Tools.BraveAPIKey != "" {
		all = append(all, tools.NewWeb(cfg.Tools.BraveAPIKey))
	}

	registry := tool.NewRegistry(all...)

	if len(cfg.Profiles) > 0 {
		profiles := make(map[string]*agent.Profile, len(cfg.Profiles))
		for name, p := range cfg.Profiles {
			profiles[name] = &agent.Profile{
				Name:         name,
				SystemPrompt: p.SystemPrompt,
				Tools:        p.Tools,
			}
		}
		factory := agent.NewRunnerFactory(adapter, registry, profiles, slog.Default())
		all = append(all, tools.NewDelegate(factory))
		registry = tool.NewRegistry(all...)
	}

	return registry
}

func printEvent(ev agent.Event) {
	switch ev.Type {
	case agent.EventToolCall:
		fmt.Printf("→ tool call: %v\n", ev.Data)
	case agent.EventToolResult:
		fmt.Printf("← tool result: %v\n", ev.Data)
	case agent.EventError:
		fmt.Printf("error: %v\n", ev.Data)
	}
}
