package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"img2latex-console/config"
	"img2latex-console/core/client"
	"img2latex-console/core/monitoring"
	"img2latex-console/core/training"

	"github.com/sirupsen/logrus"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, app *app, args []string) error
}

var commands = []command{
	{"train", "train [-config preset.yaml] [-max-steps N ...] [-detach]", runTrain},
	{"watch", "watch <job-id>", runWatch},
	{"jobs", "jobs", runJobs},
	{"infer", "infer <image> [-out file.tex]", runInfer},
	{"pairs", "pairs [-limit N]", runPairs},
	{"correct", "correct <pair-id> <latex>", runCorrect},
	{"export", "export [-format csv|jsonl] [-o file]", runExport},
	{"history", "history [-limit N]", runHistory},
	{"evaluate", "evaluate", runEvaluate},
	{"model", "model", runModel},
	{"adapters", "adapters", runAdapters},
	{"switch", "switch <adapter-path | job:ID>", runSwitch},
	{"settings", "settings [-max-new-tokens N] [-temperature T] [-min-p P]", runSettings},
}

// app holds the services every subcommand shares
type app struct {
	cfg     *config.Config
	logger  *logrus.Logger
	api     *client.Client
	tracker *monitoring.Tracker
}

func newApp(cfg *config.Config, logger *logrus.Logger) *app {
	api := client.New(cfg.APIURL, cfg.RequestTimeout)
	submitter := training.NewSubmitter(api, cfg.MinDatasetPairs, logger)
	poller := monitoring.NewPoller(api, cfg.PollInterval, cfg.MaxPollFailures, logger)
	return &app{
		cfg:     cfg,
		logger:  logger,
		api:     api,
		tracker: monitoring.NewTracker(submitter, api, poller, logger),
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: img2latex [-api URL] <command> [flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %s\n", c.usage)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	apiURL := flag.String("api", cfg.APIURL, "img2latex backend URL")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cfg.APIURL = *apiURL

	logger := config.NewLogger(*logLevel)
	logger.SetOutput(os.Stderr)

	name, args := flag.Arg(0), flag.Args()[1:]
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := newApp(cfg, logger)
	err = cmd.run(ctx, a, args)
	a.tracker.Close()
	stop()

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", client.Message(err))
		os.Exit(1)
	}
}
