package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"img2latex-console/core/models"
	"img2latex-console/core/spec"
)

func runTrain(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	preset := fs.String("config", "", "YAML training preset")
	maxSteps := fs.Int("max-steps", 0, "Training steps")
	learningRate := fs.Float64("learning-rate", 0, "Learning rate")
	batchSize := fs.Int("batch-size", 0, "Batch size")
	gradAccum := fs.Int("grad-accum", 0, "Gradient accumulation steps")
	detach := fs.Bool("detach", false, "Submit without watching the job")
	printOnly := fs.Bool("print", false, "Print the resolved preset and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := models.DefaultTrainingConfig()
	if *preset != "" {
		var err error
		if cfg, err = spec.LoadTrainingSpec(*preset); err != nil {
			return err
		}
	}
	// explicit flags override the preset
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-steps":
			cfg.MaxSteps = *maxSteps
		case "learning-rate":
			cfg.LearningRate = *learningRate
		case "batch-size":
			cfg.BatchSize = *batchSize
		case "grad-accum":
			cfg.GradientAccumulationSteps = *gradAccum
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	if *printOnly {
		out, err := spec.MarshalTrainingSpec(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}

	a.tracker.WithListener(printer())
	job, err := a.tracker.SubmitChecked(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Submitted training job %s\n", job.ID)
	if *detach {
		return nil
	}
	return wait(ctx, a)
}

func runWatch(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: watch <job-id>")
	}

	a.tracker.WithListener(printer())
	if _, err := a.tracker.Select(ctx, models.JobID(args[0])); err != nil {
		return err
	}
	return wait(ctx, a)
}

func wait(ctx context.Context, a *app) error {
	if err := a.tracker.Wait(ctx); err != nil {
		fmt.Println("Stopped watching")
		return nil
	}
	if err := a.tracker.LastError(); err != nil {
		return err
	}
	if job := a.tracker.Active(); job != nil && job.Status == models.JobStatusFailed {
		return fmt.Errorf("training job %s failed", job.ID)
	}
	return nil
}

// printer returns a listener that prints status changes and new log lines
func printer() func(models.TrainingJob) {
	var (
		status  models.JobStatus
		printed int
	)
	return func(job models.TrainingJob) {
		if job.Status != status {
			status = job.Status
			fmt.Printf("[%s] %s\n", job.ID, job.Status)
		}
		if printed > len(job.Logs) {
			printed = 0
		}
		for _, line := range job.Logs[printed:] {
			fmt.Printf("  %s\n", line)
		}
		printed = len(job.Logs)
		if job.Status == models.JobStatusDone && job.ArtifactsPath != nil {
			fmt.Printf("Adapter saved to %s\n", *job.ArtifactsPath)
		}
	}
}

func runJobs(ctx context.Context, a *app, args []string) error {
	if err := a.tracker.Refresh(ctx); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSTEPS\tLR\tBATCH\tCREATED")
	for _, job := range a.tracker.Jobs() {
		created := ""
		if !job.CreatedAt.IsZero() {
			created = job.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%g\t%d\t%s\n",
			job.ID, job.Status, job.Config.MaxSteps, job.Config.LearningRate, job.Config.BatchSize, created)
	}
	return tw.Flush()
}
