package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"notes-intelligence-be/internal/bootstrap"
	"notes-intelligence-be/internal/config"
	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/pkg/ingest"
	"notes-intelligence-be/pkg/pipeline"
	"notes-intelligence-be/pkg/style"
	"notes-intelligence-be/pkg/workflow"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// terminalObserver prints stage progress as the workflow runs.
type terminalObserver struct{}

func (terminalObserver) StageStarted(_ context.Context, ev pipeline.StageEvent) {
	color.Cyan("▶ %s", ev.Stage)
}

func (terminalObserver) StageFinished(_ context.Context, ev pipeline.StageEvent) {
	if ev.Status == pipeline.StatusFailed {
		color.Red("✗ %s (%dms): %s", ev.Stage, ev.Elapsed, ev.Error)
		return
	}
	color.Green("✓ %s (%dms)", ev.Stage, ev.Elapsed)
}

func newLogger() logger.ILogger {
	if verbose {
		return logger.NewZapLogger("logs/notesctl.log", false)
	}
	return logger.NewNopLogger()
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg := config.Load()
	log := newLogger()

	llmProvider, err := bootstrap.NewLLMProvider(cfg)
	if err != nil {
		return err
	}

	initial := &pipeline.State{
		InputSource:     pipeline.Sources(args),
		UserInstruction: instruction,
		StyleProfile:    style.DefaultProfile(),
	}
	if profileFile != "" {
		p, err := style.LoadProfile(profileFile)
		if err != nil {
			return err
		}
		initial.StyleProfile = p
	}

	wf := bootstrap.NewWorkflow(cfg, llmProvider, bootstrap.NewEmbeddingProvider(cfg, log), terminalObserver{}, log,
		ingest.WithLocalFiles(""))

	runID := uuid.NewString()
	color.Yellow("Run %s: %s", runID, strings.Join(wf.StageNames(), " → "))

	final, err := wf.Run(pipeline.WithRunID(ctx, runID), initial)
	if err != nil {
		return err
	}

	if final.TotalScore != nil {
		color.Yellow("\nScore %.1f/30", *final.TotalScore)
	}
	if final.Feedback != "" {
		color.Yellow("Feedback: %s", final.Feedback)
	}
	color.Cyan("\n# %s\n", workflow.Title(final.RewrittenNotes))
	fmt.Println(final.RewrittenNotes)

	if outputFile != "" {
		raw, err := json.MarshalIndent(final, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(outputFile, raw, 0o644); err != nil {
			return err
		}
		color.Green("State written to %s", outputFile)
	}
	return nil
}

func learnProfile(cmd *cobra.Command, args []string) error {
	note, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	cfg := config.Load()
	llmProvider, err := bootstrap.NewLLMProvider(cfg)
	if err != nil {
		return err
	}

	learned, err := style.NewLearner(llmProvider, cfg.Pipeline.LearnMaxRetries, newLogger()).Learn(cmd.Context(), string(note))
	if err != nil {
		return err
	}

	if profileFile != "" {
		current, err := style.LoadProfile(profileFile)
		if err != nil {
			return err
		}
		learned = style.Merge(current, learned)
	}

	raw, err := style.EncodeProfile(learned)
	if err != nil {
		return err
	}
	if outputFile == "" {
		fmt.Print(string(raw))
		return nil
	}
	if err := os.WriteFile(outputFile, raw, 0o644); err != nil {
		return err
	}
	color.Green("Profile written to %s", outputFile)
	return nil
}
