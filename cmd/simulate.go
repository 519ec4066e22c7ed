package main

import (
	"context"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/brew-cli/internal/export"
	"github.com/sells-group/brew-cli/internal/fermentation"
	"github.com/sells-group/brew-cli/internal/model"
	"github.com/sells-group/brew-cli/internal/mqtt"
	"github.com/sells-group/brew-cli/internal/recipe"
)

type simulateOptions struct {
	days    int
	every   int
	full    bool
	xlsx    string
	publish bool
}

var (
	simulateRecipePath string
	simulateOpts       simulateOptions
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate brew day and fermentation for a recipe",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("simulate"); err != nil {
			return err
		}
		f, err := recipe.Load(simulateRecipePath)
		if err != nil {
			return err
		}
		return runSimulate(cmd.Context(), cmd.OutOrStdout(), f, simulateOpts)
	},
}

type simulateOutput struct {
	RunID    string               `json:"run_id"`
	Days     int                  `json:"days"`
	Summary  fermentation.Summary `json:"summary"`
	Timeline []model.LogEntry     `json:"timeline"`
}

func runSimulate(ctx context.Context, out io.Writer, f *recipe.File, opts simulateOptions) error {
	if opts.days < 0 {
		return eris.Errorf("days must be non-negative, got %d", opts.days)
	}
	if opts.days > 0 {
		f.Days = opts.days
	}
	every := opts.every
	if every < 0 {
		every = cfg.Simulation.MilestoneHours
	}
	if opts.publish && !cfg.MQTT.Enabled() {
		return eris.New("--publish requires mqtt.broker to be configured")
	}

	cat, err := openCatalog(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer cat.Close() //nolint:errcheck

	sim := fermentation.New(nil,
		fermentation.WithSnapshotHours(cfg.Simulation.SnapshotHours),
		fermentation.WithReferenceMashTemp(cfg.Simulation.ReferenceMashTemp),
	)
	run, err := f.Simulate(ctx, cat, sim, cfg.Simulation.Days)
	if err != nil {
		return err
	}

	timeline := run.Milestones(every)
	if opts.full {
		timeline = run.Entries()
	}

	if opts.xlsx != "" {
		if err := export.SaveRun(opts.xlsx, run, run.Entries()); err != nil {
			return err
		}
		zap.L().Info("wrote simulation workbook",
			zap.String("run_id", run.ID),
			zap.String("path", opts.xlsx),
		)
	}

	if opts.publish {
		if err := publishRun(ctx, run, timeline); err != nil {
			return err
		}
	}

	sum := run.Summary()
	zap.L().Info("simulation complete",
		zap.String("run_id", run.ID),
		zap.Int("days", run.Days),
		zap.Float64("final_gravity", sum.FinalGravity),
		zap.Int("finished_hour", sum.FinishedHour),
	)

	return printJSON(out, simulateOutput{
		RunID:    run.ID,
		Days:     run.Days,
		Summary:  sum,
		Timeline: timeline,
	})
}

func publishRun(ctx context.Context, run *fermentation.Run, entries []model.LogEntry) error {
	pub, err := mqtt.Connect(mqtt.Config{
		Broker:         cfg.MQTT.Broker,
		ClientID:       cfg.MQTT.ClientID,
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		TopicPrefix:    cfg.MQTT.TopicPrefix,
		QoS:            byte(cfg.MQTT.QoS),
		ConnectTimeout: time.Duration(cfg.MQTT.ConnectTimeout) * time.Second,
	})
	if err != nil {
		return err
	}
	defer pub.Close()

	sent, err := pub.PublishRun(ctx, run, entries)
	if err != nil {
		return err
	}
	zap.L().Info("published simulation",
		zap.String("run_id", run.ID),
		zap.String("topic", pub.TimelineTopic(run.ID)),
		zap.Int("messages", sent),
	)
	return nil
}

func init() {
	simulateCmd.Flags().StringVar(&simulateRecipePath, "recipe", "", "path to recipe YAML file (required)")
	simulateCmd.Flags().IntVar(&simulateOpts.days, "days", 0, "days to simulate (default from recipe, then config)")
	simulateCmd.Flags().IntVar(&simulateOpts.every, "every", -1, "print every Nth hour plus phase changes (default from config, 0 = phase changes only)")
	simulateCmd.Flags().BoolVar(&simulateOpts.full, "full", false, "print every hour")
	simulateCmd.Flags().StringVar(&simulateOpts.xlsx, "xlsx", "", "also write the full timeline to this XLSX file")
	simulateCmd.Flags().BoolVar(&simulateOpts.publish, "publish", false, "publish the summary and printed timeline to the configured MQTT broker")
	_ = simulateCmd.MarkFlagRequired("recipe")
	rootCmd.AddCommand(simulateCmd)
}
