package app

import (
	"fmt"
	"io"
	"strings"

	"bsab/pkg/archive"
)

const usageText = `Usage: bsab [OPTIONS] FILE [FILE...] [DESTINATION]

Lists or extracts the contents of BSA and BA2 archives.

Options:
  -h, --help, /?     show this help and exit
  -e                 extract matched entries to DESTINATION (the last argument)
  -l[:OPTIONS]       list matched entries (default when -e is not given)
                       a  prefix each line with the archive name
                       f  prefix each line with the archive's full path
                       s  print the entry size before the path
  -i                 skip archives and entries that fail instead of stopping
  -f PATTERN         simple filter: literal, case-insensitive substring of the
                     entry path; * ? and [ ] match themselves
  --regex PATTERN    regular expression filter, case-sensitive
  --ati              write ATI1/ATI2 FourCC for BC4/BC5 textures in BA2 archives
  --encoding NAME    entry name encoding: %s

Options may start with '-', '--' or '/', and values may follow ':' or '='.

Exit codes:
  0    success
  1    an archive could not be read or extracted
  2    an input file was not found
  3    the destination directory was not found
  160  invalid argument or filter pattern
`

// PrintUsage writes the help text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, strings.Join(archive.EncodingNames(), " | "))
}
