package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"img2latex-console/core/dataset"
	"img2latex-console/core/evaluation"
	"img2latex-console/core/history"
	"img2latex-console/core/models"
	"img2latex-console/storage"
)

func runInfer(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("infer", flag.ContinueOnError)
	out := fs.String("out", "", "Write the LaTeX to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: infer <image> [-out file.tex]")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := a.api.Infer(ctx, f.Name(), f)
	if err != nil {
		return err
	}

	if *out != "" {
		if err := os.WriteFile(*out, []byte(result.Latex+"\n"), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", *out)
	} else {
		fmt.Println(result.Latex)
	}
	fmt.Fprintf(os.Stderr, "%d tokens in %dms\n", result.Tokens, result.TimeMS)
	return nil
}

func runPairs(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("pairs", flag.ContinueOnError)
	limit := fs.Int("limit", 50, "Pairs to list (max 100)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page, err := a.api.ListPairs(ctx, *limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCORRECTED\tIMAGE\tLATEX")
	for _, p := range page.Pairs {
		fmt.Fprintf(tw, "%d\t%t\t%s\t%s\n", p.ID, p.IsCorrected, p.ImagePath, truncate(p.LatexText, 60))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d of %d pairs\n", len(page.Pairs), page.Total)
	return nil
}

func runCorrect(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: correct <pair-id> <latex>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid pair id %q", args[0])
	}

	pair, err := dataset.Correct(ctx, a.api, id, args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Updated pair %d: %s\n", pair.ID, pair.LatexText)
	return nil
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", dataset.FormatCSV, "csv or jsonl")
	out := fs.String("o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page, err := a.api.ListPairs(ctx, 100)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return dataset.Export(w, page.Pairs, *format)
}

func runHistory(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "Entries to list (max 50)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := a.api.History(ctx, *limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tTOKENS\tTIME\tLATEX")
	for _, item := range history.Annotate(entries, time.Now()) {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%dms\t%s\n", item.ID, item.Age, item.Tokens, item.TimeMS, truncate(item.Latex, 60))
	}
	return tw.Flush()
}

func runEvaluate(ctx context.Context, a *app, args []string) error {
	report, err := evaluation.NewRunner(a.api, a.logger).Run(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IMAGE\tMATCH\tSIMILARITY\tPREDICTED")
	for _, res := range report.Results {
		if res.Failed() {
			fmt.Fprintf(tw, "%s\t-\t-\terror: %s\n", res.ImagePath, res.Error)
			continue
		}
		similarity := "-"
		if res.Similarity != nil {
			similarity = evaluation.Percent(*res.Similarity)
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", res.ImagePath, res.ExactMatch, similarity, truncate(*res.Predicted, 50))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("Accuracy %s (%d/%d exact), average similarity %s\n",
		evaluation.Percent(report.Accuracy), report.ExactMatches, report.Total, evaluation.Percent(report.AverageSimilarity))
	return nil
}

func runModel(ctx context.Context, a *app, args []string) error {
	info, err := a.api.CurrentModel(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s model %s\n", info.Type, info.Name)
	if info.Path != "" {
		fmt.Printf("Path: %s\n", info.Path)
	}
	return nil
}

func catalog(ctx context.Context, a *app) (*storage.AdapterCatalog, error) {
	if err := a.tracker.Refresh(ctx); err != nil {
		return nil, err
	}
	return storage.NewAdapterCatalog(a.api, a.tracker, nil, a.logger), nil
}

func runAdapters(ctx context.Context, a *app, args []string) error {
	c, err := catalog(ctx, a)
	if err != nil {
		return err
	}
	adapters, err := c.List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tCREATED\tPATH")
	for _, ad := range adapters {
		created := ""
		if !ad.CreatedAt.IsZero() {
			created = ad.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ad.JobID, created, ad.Path)
	}
	return tw.Flush()
}

func runSwitch(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: switch <adapter-path | job:ID>")
	}
	c, err := catalog(ctx, a)
	if err != nil {
		return err
	}

	var res *models.SwitchResult
	if id, ok := strings.CutPrefix(args[0], "job:"); ok {
		res, err = c.SwitchToJob(ctx, models.JobID(id))
	} else {
		res, err = c.Switch(ctx, args[0])
	}
	if err != nil {
		return err
	}
	fmt.Println(res.Message)
	return nil
}

func runSettings(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	maxNewTokens := fs.Int("max-new-tokens", 0, "Maximum generated tokens")
	temperature := fs.Float64("temperature", 0, "Sampling temperature")
	minP := fs.Float64("min-p", 0, "Min-p sampling threshold")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := a.api.GenerationSettings(ctx)
	if err != nil {
		return err
	}

	changed := false
	fs.Visit(func(f *flag.Flag) {
		changed = true
		switch f.Name {
		case "max-new-tokens":
			settings.MaxNewTokens = *maxNewTokens
		case "temperature":
			settings.Temperature = *temperature
		case "min-p":
			settings.MinP = *minP
		}
	})
	if changed {
		if settings, err = a.api.UpdateGenerationSettings(ctx, *settings); err != nil {
			return err
		}
	}

	fmt.Printf("max_new_tokens=%d temperature=%g min_p=%g\n", settings.MaxNewTokens, settings.Temperature, settings.MinP)
	return nil
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
