// Package app ties the command line, ambient settings and the orchestrator
// together into a single run.
package app

import (
	"io"

	"bsab/pkg/args"
	"bsab/pkg/conf"
	"bsab/pkg/core"
	"bsab/pkg/filter"
	"bsab/pkg/log"
	"bsab/pkg/progress"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// Exit codes.
const (
	ExitOK                  = 0
	ExitFailure             = 1
	ExitInputNotFound       = 2
	ExitDestinationNotFound = 3
	ExitInvalidArgument     = 160
)

// ExitCode maps an error returned by a run to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch errors.Cause(err) {
	case args.ErrUnrecognizedArgument,
		args.ErrMissingOptionValue,
		args.ErrInvalidEncodingName,
		args.ErrNoInputs,
		filter.ErrInvalidPattern,
		conf.ErrInvalidSetting:
		return ExitInvalidArgument
	case args.ErrInputNotFound:
		return ExitInputNotFound
	case args.ErrDestinationNotFound:
		return ExitDestinationNotFound
	}
	return ExitFailure
}

// Run executes one invocation. The returned error, if any, is a cli.ExitCoder
// carrying the message and exit code.
func Run(tokens []string, stdout, stderr io.Writer) error {
	if err := run(tokens, stdout, stderr); err != nil {
		return cli.NewExitError("bsab: "+err.Error(), ExitCode(err))
	}
	return nil
}

func run(tokens []string, stdout, stderr io.Writer) error {
	cfg, err := args.Parse(tokens)
	if err != nil {
		return err
	}
	if cfg.Help {
		PrintUsage(stdout)
		return nil
	}

	settings, err := conf.Load()
	if err != nil {
		return err
	}

	logger := log.FromSettings(settings, stderr)
	o, err := NewOrchestrator(cfg, stdout, logger)
	if err != nil {
		return err
	}
	o.NewReporter = func() progress.Reporter { return progress.NewWithMode(stdout, settings.Progress) }

	logger.WithField("list", cfg.ListOptions.String()).Debugf("run: %d input(s), filter %s", len(cfg.Inputs), cfg.FilterMode)
	return Execute(o, cfg)
}

// NewOrchestrator compiles the filter of cfg and returns an orchestrator
// carrying its run policy, with the default readers and progress reporter.
func NewOrchestrator(cfg args.Config, out io.Writer, logger logrus.FieldLogger) (*core.Orchestrator, error) {
	f, err := filter.Compile(cfg.FilterMode, cfg.Pattern)
	if err != nil {
		return nil, err
	}
	o := core.New(out, logger, f)
	o.Encoding = cfg.Encoding
	o.IgnoreErrors = cfg.IgnoreErrors
	return o, nil
}

// Execute lists and then extracts, as selected by cfg.
func Execute(o *core.Orchestrator, cfg args.Config) error {
	if cfg.List {
		if err := o.List(cfg.Inputs, cfg.ListOptions); err != nil {
			return err
		}
	}
	if cfg.Extract {
		return o.Extract(cfg.Inputs, cfg.Destination, cfg.UseATIFourCC)
	}
	return nil
}
