// mail-copilot triages unread Gmail across account profiles: a manager
// agent reads each batch, delegates to specialist agents and drafts
// replies, while a safety monitor caps how often passes may run.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"google.golang.org/genai"

	"github.com/hal9000y/mail-copilot/internal/agent"
	"github.com/hal9000y/mail-copilot/internal/auth"
	"github.com/hal9000y/mail-copilot/internal/config"
	"github.com/hal9000y/mail-copilot/internal/delegate"
	"github.com/hal9000y/mail-copilot/internal/gcal"
	"github.com/hal9000y/mail-copilot/internal/gservice"
	"github.com/hal9000y/mail-copilot/internal/mailbox"
	"github.com/hal9000y/mail-copilot/internal/observability"
	"github.com/hal9000y/mail-copilot/internal/radio"
	"github.com/hal9000y/mail-copilot/internal/safety"
	"github.com/hal9000y/mail-copilot/internal/search"
	"github.com/hal9000y/mail-copilot/internal/story"
	"github.com/hal9000y/mail-copilot/internal/triage"
)

const (
	exitPassFailed = 1
	exitSafetyStop = 2
)

const bookingProfile = "family"

func main() {
	app := &cli.App{
		Name:  "mail-copilot",
		Usage: "triage unread Gmail with a manager agent and its specialists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "base-dir",
				Value: "./data",
				Usage: "directory holding credentials, tokens, instructions and state",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "env file overlaid onto the environment",
			},
			&cli.Int64Flag{
				Name:  "limit",
				Usage: "max unread messages per profile and pass (overrides UNREAD_LIMIT)",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "suppress agent narration, keep pass summaries",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print configuration and auth state, then exit",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "keep watching for unread mail instead of running one pass",
			},
			&cli.IntFlag{
				Name:  "interval",
				Value: config.DefaultPollInterval,
				Usage: "watch poll interval in seconds",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitPassFailed)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("base-dir"), c.String("env-file"))
	if err != nil {
		return fmt.Errorf("loading configuration failed: %w", err)
	}

	limit := int64(cfg.UnreadLimit)
	if c.Int64("limit") > 0 {
		limit = c.Int64("limit")
	}

	profiles := cfg.ProfileNames()
	sort.Strings(profiles)

	mgr := auth.NewManager(cfg.CredentialsFile, gservice.Scopes, cfg.Profiles)

	if c.Bool("dry-run") {
		return dryRun(cfg, mgr, limit)
	}

	if cfg.GeminiAPIKey == "" {
		return cli.Exit("GEMINI_API_KEY is not set; create an API key in Google AI Studio and export it", exitPassFailed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("genai.NewClient failed: %w", err)
	}

	defer func() {
		if err := mgr.PersistAll(); err != nil {
			observability.Logger().Warn("persisting tokens failed", "error", err)
		}
	}()

	svc := gservice.New(mgr)
	mail := mailbox.NewAdapter(svc, profiles, cfg.ProcessedLabel, cfg.RecencyDays)
	calendars := gcal.NewAdapter(svc, profiles, bookingProfile, cfg.Timezone)
	catalog := radio.NewCatalog(cfg.RadioEndpoint)

	instructions := agent.NewStore(cfg.BaseDir, instructionDefaults())
	narrator := story.NewNarrator(os.Stdout, c.Bool("quiet"))
	runner := agent.NewRunner(client.Models)

	dispatcher := delegate.NewDispatcher(
		runner,
		search.NewSearcher(client.Models, cfg.GeminiModel, instructions.Instruction(string(delegate.KindGroundedSearch))),
		delegate.Builders(delegate.SpecialistDeps{
			Instructions:  instructions,
			Model:         cfg.GeminiModel,
			MailTools:     mail.ReadTools(),
			RadioTools:    catalog.Tools(),
			CalendarTools: calendars.Tools(),
		}),
		narrator,
	)

	managerTools := append(mail.Tools(), calendars.Tools()...)
	managerTools = append(managerTools, dispatcher.Tools()...)

	loop := triage.NewLoop(
		mail,
		safety.NewMonitor(cfg.SafetyFile, cfg.MaxRunsPerDay, cfg.MaxRunsPerHour),
		runner,
		triage.ManagerBuilder(instructions, cfg.GeminiModel, managerTools),
		narrator,
		profiles,
		limit,
	)

	if c.Bool("watch") {
		return loop.Watch(ctx, time.Duration(c.Int("interval"))*time.Second)
	}

	if err := loop.RunOnce(ctx); err != nil {
		if errors.Is(err, triage.ErrSafetyStop) {
			return cli.Exit(err.Error(), exitSafetyStop)
		}
		return cli.Exit(err.Error(), exitPassFailed)
	}

	return nil
}

func instructionDefaults() map[string]string {
	defaults := delegate.InstructionDefaults()
	for kind, text := range triage.ManagerDefaults() {
		defaults[kind] = text
	}
	defaults[string(delegate.KindGroundedSearch)] = "You answer questions using Google Search grounding. " +
		"Be factual and concise, and say so when the search results do not settle the question."
	return defaults
}

func dryRun(cfg *config.Config, mgr *auth.Manager, limit int64) error {
	out := map[string]any{
		"base_dir":          cfg.BaseDir,
		"model":             cfg.GeminiModel,
		"api_key_set":       cfg.GeminiAPIKey != "",
		"unread_limit":      limit,
		"processed_label":   cfg.ProcessedLabel,
		"recency_days":      cfg.RecencyDays,
		"max_runs_per_day":  cfg.MaxRunsPerDay,
		"max_runs_per_hour": cfg.MaxRunsPerHour,
		"radio_endpoint":    cfg.RadioEndpoint,
		"timezone":          cfg.Timezone,
		"auth":              mgr.DescribeState(),
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent failed: %w", err)
	}

	fmt.Println(string(raw))

	return nil
}
