package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ListOptions is the set of -l sub-flags.
type ListOptions uint8

const (
	ListArchiveName ListOptions = 1 << iota // prefix lines with the archive file name
	ListFullPath                            // prefix lines with the archive's full path; wins over ListArchiveName
	ListFileSize                            // print the entry size before the path
)

// Has reports whether every flag in f is set.
func (o ListOptions) Has(f ListOptions) bool { return o&f == f }

func (o ListOptions) String() string {
	var sb strings.Builder
	for _, f := range []struct {
		flag ListOptions
		c    byte
	}{{ListArchiveName, 'a'}, {ListFullPath, 'f'}, {ListFileSize, 's'}} {
		if o.Has(f.flag) {
			sb.WriteByte(f.c)
		}
	}
	return sb.String()
}

// prefix returns the line prefix for an archive at fullPath.
func (o ListOptions) prefix(fullPath string) string {
	switch {
	case o.Has(ListFullPath):
		return fullPath
	case o.Has(ListArchiveName):
		return filepath.Base(fullPath)
	}
	return ""
}

// List prints the matching entries of every input. With more than one input
// each block gets a header line; every block ends with a blank line.
func (o *Orchestrator) List(inputs []string, opts ListOptions) error {
	batch := len(inputs) > 1
	for _, path := range inputs {
		if batch {
			fmt.Fprintln(o.Out, filepath.Base(path))
		}
		log := o.Log.WithField("archive", path)
		if err := o.listArchive(path, opts, batch); err != nil {
			if err := o.tolerate(err, log, "archive"); err != nil {
				return err
			}
		}
		fmt.Fprintln(o.Out)
	}
	return nil
}

func (o *Orchestrator) listArchive(path string, opts ListOptions, batch bool) error {
	a, entries, err := o.open(path, false)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer a.Close()

	prefix := opts.prefix(a.FullPath())
	indent := ""
	if batch && prefix == "" {
		indent = "\t"
	}

	listed := 0
	for _, e := range entries {
		if !o.Filter.Match(e.FullPath()) {
			continue
		}
		var sb strings.Builder
		sb.WriteString(indent)
		if opts.Has(ListFileSize) {
			fmt.Fprintf(&sb, "%d\t", e.Size())
		}
		if prefix != "" {
			sb.WriteString(prefix)
			sb.WriteByte('/')
		}
		sb.WriteString(e.FullPath())
		fmt.Fprintln(o.Out, sb.String())
		listed++
	}

	o.Log.WithFields(logrus.Fields{
		"archive": path,
		"entries": len(entries),
		"listed":  listed,
	}).Debug("listed archive")
	return nil
}
