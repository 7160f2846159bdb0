// Package core drives a run: it opens every input archive in turn, orders and
// filters its entries, and lists or extracts them under the run's error policy.
package core

import (
	"io"
	"path/filepath"
	"sort"
	"strings"

	"bsab/pkg/archive"
	"bsab/pkg/archive/ba2"
	"bsab/pkg/archive/bsa"
	"bsab/pkg/filter"
	"bsab/pkg/progress"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrUnsupportedArchiveType is returned for inputs whose extension maps to no reader.
var ErrUnsupportedArchiveType = errors.New("unsupported archive type")

// Readers is the archive reader capability, one opener per archive kind.
type Readers struct {
	BSA func(path string, enc archive.TextEncoding) (archive.Archive, error)
	BA2 func(path string, enc archive.TextEncoding, atiFourCC bool) (archive.Archive, error)
}

// DefaultReaders returns the readers in pkg/archive.
func DefaultReaders() Readers {
	return Readers{
		BSA: func(path string, enc archive.TextEncoding) (archive.Archive, error) {
			a, err := bsa.Open(path, enc)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
		BA2: func(path string, enc archive.TextEncoding, atiFourCC bool) (archive.Archive, error) {
			a, err := ba2.Open(path, enc, ba2.Options{ATIFourCC: atiFourCC})
			if err != nil {
				return nil, err
			}
			return a, nil
		},
	}
}

// Orchestrator holds everything a run needs. Archives are processed one at a
// time, in input order.
type Orchestrator struct {
	Out          io.Writer
	Log          logrus.FieldLogger
	Filter       filter.Filter
	Encoding     archive.TextEncoding
	IgnoreErrors bool
	Readers      Readers
	// NewReporter is called once per extracted archive.
	NewReporter func() progress.Reporter
}

// New returns an Orchestrator writing to out with the default readers and a
// reporter probed from out.
func New(out io.Writer, log logrus.FieldLogger, f filter.Filter) *Orchestrator {
	if f == nil {
		f, _ = filter.Compile(filter.None, "")
	}
	return &Orchestrator{
		Out:         out,
		Log:         log,
		Filter:      f,
		Encoding:    archive.UTF7,
		Readers:     DefaultReaders(),
		NewReporter: func() progress.Reporter { return progress.New(out) },
	}
}

// open selects a reader by extension, opens path and returns its entries in
// ascending case-insensitive ordinal order.
func (o *Orchestrator) open(path string, atiFourCC bool) (archive.Archive, []archive.Entry, error) {
	var (
		a   archive.Archive
		err error
	)
	switch archive.KindOf(path) {
	case archive.KindBSA:
		a, err = o.Readers.BSA(path, o.Encoding)
	case archive.KindBA2:
		a, err = o.Readers.BA2(path, o.Encoding, atiFourCC)
	default:
		return nil, nil, errors.Wrapf(ErrUnsupportedArchiveType, "%q", filepath.Ext(path))
	}
	if err != nil {
		return nil, nil, err
	}
	return a, SortEntries(a.Entries()), nil
}

// tolerate applies the ignore-errors policy: the failure is either returned
// or logged as a skip and swallowed.
func (o *Orchestrator) tolerate(err error, log logrus.FieldLogger, what string) error {
	if !o.IgnoreErrors {
		return err
	}
	log.WithError(err).Warnf("skipping %s", what)
	return nil
}

// SortEntries returns a copy of entries ordered by full path, compared
// ordinally after upper-case folding.
func SortEntries(entries []archive.Entry) []archive.Entry {
	type keyed struct {
		key   string
		entry archive.Entry
	}
	items := make([]keyed, len(entries))
	for i, e := range entries {
		items[i] = keyed{key: strings.ToUpper(e.FullPath()), entry: e}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].key < items[j].key })

	sorted := make([]archive.Entry, len(items))
	for i, it := range items {
		sorted[i] = it.entry
	}
	return sorted
}
