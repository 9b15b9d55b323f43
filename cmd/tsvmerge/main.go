package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/config"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/dataprocessing"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/exporter"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/files"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/infrastructure"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/services"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/validation"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts"
)

const usage = `usage: tsvmerge <command> [flags] [files...]

commands:
  merge      merge one metric per entity across documents
  pivot      sum intensity per protein group across documents
  correlate  pairwise Pearson correlation of the pivot columns
  metrics    list the metrics merge accepts
  version    print version information

Documents come from -group (a folder under the data directory) or from
file arguments. Run "tsvmerge <command> -h" for the flags of a command.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the flags shared by the document commands
type options struct {
	configPath string
	group      string
	from       string
	to         string
	labels     string
	metric     string
	key        string
	workers    int
	out        string
	format     string
	verbose    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	command, rest := args[0], args[1:]
	switch command {
	case "version":
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	case "metrics":
		return listMetrics(stdout)
	case "merge", "pivot", "correlate":
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", command, usage)
		return 2
	}

	opts, fileArgs, err := parseFlags(command, rest, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "tsvmerge: %v\n", err)
		return 1
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	if opts.workers > 0 {
		cfg.Processing.Workers = opts.workers
	}
	logger := infrastructure.NewLogger(stderr, cfg.Logging)

	if err := execute(ctx, command, opts, fileArgs, cfg, stdout, logger); err != nil {
		logger.ErrorContext(ctx, "command failed",
			slog.String("command", command),
			slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "tsvmerge %s: %v\n", command, err)
		return 1
	}
	return 0
}

func parseFlags(command string, args []string, stderr io.Writer) (options, []string, error) {
	var opts options
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", os.Getenv("TSVMERGE_CONFIG"), "YAML config file")
	fs.StringVar(&opts.group, "group", "", "document folder under the data directory")
	fs.StringVar(&opts.from, "from", "", "first document date to include (YYYY-MM-DD)")
	fs.StringVar(&opts.to, "to", "", "last document date to include (YYYY-MM-DD)")
	fs.StringVar(&opts.labels, "labels", "", "comma separated column labels, one per document")
	fs.IntVar(&opts.workers, "workers", 0, "documents read concurrently (0 uses the config)")
	fs.StringVar(&opts.out, "out", "", "write the table to this file instead of stdout")
	fs.StringVar(&opts.format, "format", "", "output format: tsv or csv (default from -out, else tsv)")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	if command == "merge" {
		fs.StringVar(&opts.metric, "metric", "", "metric to merge (see tsvmerge metrics)")
		fs.StringVar(&opts.key, "key", "", "entity key column")
	}

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	return opts, fs.Args(), nil
}

func execute(ctx context.Context, command string, opts options, fileArgs []string, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}

	sel, err := selection(opts, fileArgs)
	if err != nil {
		return err
	}

	validator := validation.NewDocumentValidator(logger)
	if err := validator.ValidateDocuments(fileArgs); err != nil {
		return err
	}
	if opts.out != "" {
		if err := validator.ValidateOutputDirectory(filepath.Dir(opts.out)); err != nil {
			return err
		}
	}

	service := services.NewReconcileService(
		cfg.Processing,
		files.NewManager(paths, logger),
		exporter.NewCSVWriter(paths, logger),
		nil,
		nil,
		logger,
	)

	var rec exporter.Recorder
	switch command {
	case "merge":
		table, err := service.Merge(ctx, services.MergeParams{
			Selection: sel,
			EntityKey: opts.key,
			Metric:    opts.metric,
		})
		if err != nil {
			return err
		}
		rec = table
	case "pivot":
		result, err := service.Pivot(ctx, sel)
		if err != nil {
			return err
		}
		for _, name := range result.Skipped {
			logger.WarnContext(ctx, "document has no protein group column", slog.String("file", name))
		}
		rec = result.Matrix
	case "correlate":
		report, err := service.Correlate(ctx, sel)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "correlation computed",
			slog.Float64("mean_off_diagonal", report.Correlation.MeanOffDiagonal()))
		rec = report.Correlation
	}

	return output(ctx, service, rec, opts, stdout)
}

func selection(opts options, fileArgs []string) (services.Selection, error) {
	from, err := files.ParseDateBound(opts.from)
	if err != nil {
		return services.Selection{}, fmt.Errorf("-from: %w", err)
	}
	to, err := files.ParseDateBound(opts.to)
	if err != nil {
		return services.Selection{}, fmt.Errorf("-to: %w", err)
	}
	if opts.group == "" && len(fileArgs) == 0 {
		return services.Selection{}, errors.New("no documents: pass -group or file arguments")
	}

	sel := services.Selection{
		Group: opts.group,
		From:  from,
		To:    to,
		Files: fileArgs,
	}
	if opts.labels != "" {
		sel.Labels = splitList(opts.labels)
	}
	return sel, nil
}

func output(ctx context.Context, service *services.ReconcileService, rec exporter.Recorder, opts options, stdout io.Writer) error {
	var format exporter.Format
	if opts.format != "" {
		f, err := exporter.ParseFormat(opts.format)
		if err != nil {
			return err
		}
		format = f
	}

	if opts.out == "" {
		if format == "" {
			format = exporter.FormatTSV
		}
		return service.Export(stdout, rec, format)
	}

	// -out is relative to the working directory, not the reports directory
	target, err := filepath.Abs(opts.out)
	if err != nil {
		return fmt.Errorf("resolve -out: %w", err)
	}
	_, err = service.SaveReport(ctx, target, rec, format)
	return err
}

func listMetrics(stdout io.Writer) int {
	for _, s := range dataprocessing.Strategies() {
		columns := strings.Join(s.SourceColumns(), ", ")
		if columns == "" {
			columns = "-"
		}
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", s.Metric, s.Reduction, columns)
	}
	return 0
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
