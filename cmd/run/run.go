// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/fanout"
	"github.com/matt-FFFFFF/fanout/internal/config"
	"github.com/matt-FFFFFF/fanout/internal/ctxlog"
	"github.com/matt-FFFFFF/fanout/internal/tui"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag    = "file"
	dirFlag     = "dir"
	jobFlag     = "job"
	outFlag     = "out"
	dryRunFlag  = "dry-run"
	tuiFlag     = "tui"
	verboseFlag = "verbose"
	linesFlag   = "lines"
	strictFlag  = "strict"
	cliExitStr  = ""
)

var (
	// ErrGetBatchfile is returned when the batchfile cannot be fetched.
	ErrGetBatchfile = errors.New("failed to get batchfile")
)

// RunCmd is the command that expands and executes the jobs in a batchfile.
var RunCmd = &cli.Command{
	Name: "run",
	Description: `Run the jobs defined in a batchfile.
Each job's template is expanded against its value lists and the
resulting commands are executed as one parallel batch.

Batchfile URLs use Hashicorp's go-getter syntax, which allows for
fetching files from various sources.
See https://github.com/hashicorp/go-getter.
`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    fileFlag,
			Aliases: []string{"f"},
			Usage: "Specify the URL of the batchfile to run. " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources.",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     dirFlag,
			Aliases:  []string{"d"},
			Usage:    "Load every batchfile from a local directory instead of a single file.",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     jobFlag,
			Aliases:  []string{"j"},
			Usage:    "Run only the named job. Without a name, every job in the batchfile runs in order.",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:      outFlag,
			Aliases:   []string{"o"},
			Usage:     "Write the expanded commands (dry run) or captured output to a file",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name:        dryRunFlag,
			Aliases:     []string{"n"},
			Usage:       "Expand the batch and print the commands without executing them",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        tuiFlag,
			Aliases:     []string{"t", "interactive"},
			Usage:       "Run with interactive Terminal User Interface (TUI) showing real-time progress",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:     verboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Capture and print batch output, overriding the job's setting",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     linesFlag,
			Usage:    "Print captured output as individual lines, overriding the job's setting",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     strictFlag,
			Usage:    "Fail on a non-zero batch exit code, overriding the job's setting",
			OnlyOnce: true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("running run command")

	file, err := loadBatchfile(ctx, cmd)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	jobs, err := selectJobs(file, cmd.String(jobFlag))
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	if len(jobs) == 0 {
		logger.Error("the batchfile defines no jobs")
		return cli.Exit(cliExitStr, 1)
	}

	var outputs []string

	for _, job := range jobs {
		outcome, err := runJob(ctx, cmd, file, job)
		if outcome != nil {
			outputs = append(outputs, collectOutput(cmd, outcome)...)
		}

		if err != nil {
			logger.Error(fmt.Sprintf("job %q failed: %s", job.Name, err.Error()))

			if outcome != nil && outcome.Stderr != "" {
				fmt.Fprintln(cmd.ErrWriter, outcome.Stderr)
			}

			exitCode := 1
			if outcome != nil && outcome.ExitCode > 0 {
				exitCode = outcome.ExitCode
			}

			emit(cmd, logger, outputs)

			return cli.Exit(cliExitStr, exitCode)
		}
	}

	emit(cmd, logger, outputs)

	return nil
}

// runJob expands and executes one job, honouring CLI overrides.
func runJob(ctx context.Context, cmd *cli.Command, file *config.File, job *config.Job) (*fanout.Outcome, error) {
	opts := job.Options()

	if cmd.IsSet(verboseFlag) {
		opts = append(opts, fanout.WithVerbose(cmd.Bool(verboseFlag)))
	}

	if cmd.IsSet(linesFlag) {
		opts = append(opts, fanout.WithLines(cmd.Bool(linesFlag)))
	}

	if cmd.IsSet(strictFlag) {
		opts = append(opts, fanout.WithStrict(cmd.Bool(strictFlag)))
	}

	if cmd.Bool(dryRunFlag) {
		opts = append(opts, fanout.WithDryRun(true))
	}

	if !cmd.Bool(tuiFlag) {
		return fanout.Run(ctx, job.Template, opts...)
	}

	// The TUI owns the terminal, keep log output out of its way.
	tuiCtx := ctxlog.NewQuiet(ctx)

	return tui.Run(tuiCtx, displayName(file, job), func(ctx context.Context, reporter fanout.Reporter) (*fanout.Outcome, error) {
		return fanout.Run(ctx, job.Template, append(opts, fanout.WithReporter(reporter))...)
	})
}

// collectOutput gathers the lines worth printing for an outcome.
func collectOutput(cmd *cli.Command, outcome *fanout.Outcome) []string {
	if cmd.Bool(dryRunFlag) || !outcome.Executed {
		return outcome.Commands
	}

	if len(outcome.Lines) > 0 {
		return outcome.Lines
	}

	if outcome.Output != "" {
		return []string{outcome.Output}
	}

	return nil
}

// emit prints the collected lines to the command writer and, when --out
// is set, writes them to the named file as well.
func emit(cmd *cli.Command, logger *slog.Logger, outputs []string) {
	for _, line := range outputs {
		fmt.Fprintln(cmd.Writer, line)
	}

	outFileName := cmd.String(outFlag)
	if outFileName == "" || len(outputs) == 0 {
		return
	}

	f, err := os.Create(outFileName)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to create output file %s: %s", outFileName, err.Error()))
		return
	}

	defer f.Close() //nolint:errcheck

	for _, line := range outputs {
		fmt.Fprintln(f, line)
	}

	logger.Info(fmt.Sprintf("output written to %s", outFileName))
}

// loadBatchfile resolves the --file or --dir flag into a parsed batchfile.
func loadBatchfile(ctx context.Context, cmd *cli.Command) (*config.File, error) {
	if dir := cmd.String(dirFlag); dir != "" {
		return config.LoadDir(dir)
	}

	url := cmd.String(fileFlag)
	if url == "" {
		return nil, fmt.Errorf("%w: specify a batchfile with --file or a directory with --dir", ErrGetBatchfile)
	}

	content, err := getURL(ctx, url)
	if err != nil {
		return nil, err
	}

	return config.Parse(filepath.Base(url), content)
}

// selectJobs picks the jobs to run: the named job when a name is given,
// otherwise every job in declaration order.
func selectJobs(file *config.File, name string) ([]*config.Job, error) {
	if name == "" {
		return file.Jobs, nil
	}

	job, err := file.Job(name)
	if err != nil {
		return nil, err
	}

	return []*config.Job{job}, nil
}

// displayName labels the TUI session for a job.
func displayName(file *config.File, job *config.Job) string {
	if job.Name != "" {
		return job.Name
	}

	if file.Name != "" {
		return file.Name
	}

	return "batch"
}

// getURL retrieves the content from the specified URL using Hashicorp's go-getter.
// It removes the temporary file after reading its content.
func getURL(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, ErrGetBatchfile
	}

	tmpDir, err := os.MkdirTemp("", "fanout-getter-*")
	if err != nil {
		return nil, errors.Join(ErrGetBatchfile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetBatchfile, err)
	}

	cli := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	var fileName string
	// A remote URL fetches the whole directory, so the file name has to be
	// split off first.
	// https://github.com/hashicorp/go-getter/issues/98
	if ok, err := getter.Detect(req, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return nil, errors.Join(ErrGetBatchfile, err)
		}

		var newURL string

		newURL, fileName = splitFileNameFromGetterURL(url)
		if newURL == "" || fileName == "" {
			return nil, fmt.Errorf("%w: invalid URL format: %s", ErrGetBatchfile, url)
		}

		req.Src = newURL
	}

	if fileName == "" {
		req.Src = filepath.Dir(url)
		fileName = filepath.Base(url)
	}

	res, err := cli.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrGetBatchfile, err)
	}

	content, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, errors.Join(ErrGetBatchfile, err)
	}

	return content, nil
}

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minimumGetterParts    = 3 // scheme, host and path
)

// splitFileNameFromGetterURL splits the URL into the directory and file name.
// It returns the new getter URL without the file name and the file name itself.
// It will append any ref query parameter to the new URL if it exists.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref, fileName string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	if strings.Contains(parts[len(parts)-1], goGetterRefSeparator) {
		refSplit := strings.Split(parts[len(parts)-1], goGetterRefSeparator)
		if len(refSplit) > 1 {
			ref = strings.Join(refSplit[1:], "")
		}

		parts[len(parts)-1] = refSplit[0]
	}

	if filepath.Clean(parts[len(parts)-1]) == filepath.Dir(parts[len(parts)-1]) {
		return "", ""
	}

	fileName = filepath.Base(parts[len(parts)-1])
	parts[len(parts)-1] = filepath.Dir(parts[len(parts)-1])

	if parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1] // Remove the last part which is the file name
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
