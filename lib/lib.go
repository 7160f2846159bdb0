// Package lib exposes the run pipeline to front ends other than the command
// line, such as a GUI that shows extraction progress in a dialog. It re-exports
// the pieces of pkg/ so callers need only one import.
package lib

import (
	"io"

	"bsab/pkg/app"
	"bsab/pkg/archive"
	"bsab/pkg/args"
	"bsab/pkg/core"
	"bsab/pkg/filter"
	"bsab/pkg/progress"

	"github.com/sirupsen/logrus"
)

// Config re-exported from args
type Config = args.Config

// Orchestrator re-exported from core
type Orchestrator = core.Orchestrator

// ListOptions re-exported from core
type ListOptions = core.ListOptions

// Re-export list option flags
const (
	ListArchiveName = core.ListArchiveName
	ListFullPath    = core.ListFullPath
	ListFileSize    = core.ListFileSize
)

// Filter and FilterMode re-exported from filter
type (
	Filter     = filter.Filter
	FilterMode = filter.Mode
)

// Re-export filter modes
const (
	FilterNone   = filter.None
	FilterSimple = filter.Simple
	FilterRegex  = filter.Regex
)

// Reporter re-exported from progress
type Reporter = progress.Reporter

// TextEncoding re-exported from archive
type TextEncoding = archive.TextEncoding

// Parse is a wrapper around args.Parse
func Parse(tokens []string) (Config, error) {
	return args.Parse(tokens)
}

// Compile is a wrapper around filter.Compile
func Compile(mode FilterMode, pattern string) (Filter, error) {
	return filter.Compile(mode, pattern)
}

// NewOrchestrator returns an orchestrator configured from cfg with the default
// readers. A nil reporter keeps the reporter probed from out.
func NewOrchestrator(cfg Config, out io.Writer, log logrus.FieldLogger, reporter func() Reporter) (*Orchestrator, error) {
	o, err := app.NewOrchestrator(cfg, out, log)
	if err != nil {
		return nil, err
	}
	if reporter != nil {
		o.NewReporter = reporter
	}
	return o, nil
}

// Run is a wrapper around app.Execute
func Run(o *Orchestrator, cfg Config) error {
	return app.Execute(o, cfg)
}
