package core

import (
	"fmt"

	"bsab/pkg/archive"
	"bsab/pkg/progress"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Extract writes the matching entries of every input beneath dest, overwriting
// existing files. Each archive block ends with a blank line.
func (o *Orchestrator) Extract(inputs []string, dest string, atiFourCC bool) error {
	for _, path := range inputs {
		if err := o.extractArchive(path, dest, atiFourCC); err != nil {
			return err
		}
		fmt.Fprintln(o.Out)
	}
	return nil
}

func (o *Orchestrator) extractArchive(path, dest string, atiFourCC bool) error {
	log := o.Log.WithField("archive", path)

	a, entries, err := o.open(path, atiFourCC)
	if err != nil {
		return o.tolerate(errors.Wrapf(err, "open %s", path), log, "archive")
	}
	defer a.Close()

	var matched []archive.Entry
	for _, e := range entries {
		if o.Filter.Match(e.FullPath()) {
			matched = append(matched, e)
		}
	}

	reporter := o.NewReporter()
	reporter.Start()
	defer reporter.Finish()

	var (
		extracted int
		written   int64
	)
	for i, e := range matched {
		reporter.Report(i+1, len(matched), e.FullPath())
		if err := e.Extract(dest, true); err != nil {
			err = errors.Wrapf(err, "extract %s from %s", e.FullPath(), path)
			// end the progress row so the skip notice is not redrawn over
			reporter.Finish()
			if err := o.tolerate(err, log.WithField("entry", e.FullPath()), "entry"); err != nil {
				return err
			}
			reporter.Start()
			continue
		}
		extracted++
		written += e.Size()
	}

	log.WithFields(logrus.Fields{
		"extracted": extracted,
		"matched":   len(matched),
		"size":      progress.FormatSize(uint64(written)),
	}).Info("extracted archive")
	return nil
}
