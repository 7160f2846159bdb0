// Package args turns the raw command line into a validated run configuration.
//
// The grammar is the tool's own rather than the flag package's: options may
// start with '/', '-' or "--", names are case-insensitive, -l takes inline
// sub-flags after ':' or '=', and the last positional argument of an
// extraction is the destination directory.
package args

import (
	"os"
	"strings"

	"bsab/pkg/archive"
	"bsab/pkg/core"
	"bsab/pkg/filter"

	"github.com/pkg/errors"
)

var (
	ErrUnrecognizedArgument = errors.New("unrecognized argument")
	ErrMissingOptionValue   = errors.New("missing option value")
	ErrInputNotFound        = errors.New("input file not found")
	ErrDestinationNotFound  = errors.New("destination directory not found")
	ErrNoInputs             = errors.New("no input archives")
	ErrInvalidEncodingName  = archive.ErrInvalidEncodingName
)

// Config is the validated description of a run. It is returned by value and
// not modified afterwards.
type Config struct {
	Extract      bool
	List         bool
	Help         bool
	UseATIFourCC bool
	IgnoreErrors bool

	FilterMode  filter.Mode
	Pattern     string
	ListOptions core.ListOptions
	Destination string
	Encoding    archive.TextEncoding
	Inputs      []string
}

type option int

const (
	optHelp option = iota
	optExtract
	optIgnoreErrors
	optList
	optFilter
	optRegex
	optATI
	optEncoding
)

var options = map[string]option{
	"?":        optHelp,
	"h":        optHelp,
	"help":     optHelp,
	"e":        optExtract,
	"i":        optIgnoreErrors,
	"l":        optList,
	"f":        optFilter,
	"regex":    optRegex,
	"ati":      optATI,
	"encoding": optEncoding,
}

// splitOption separates an option token into its lower-cased name and inline
// value. ok is false for positional tokens.
func splitOption(tok string) (name, value string, hasValue, ok bool) {
	var body string
	switch {
	case strings.HasPrefix(tok, "--"):
		body = tok[2:]
	case strings.HasPrefix(tok, "-"):
		body = tok[1:]
	case strings.HasPrefix(tok, "/"):
		body = tok[1:]
	default:
		return "", "", false, false
	}
	if i := strings.IndexAny(body, ":="); i >= 0 {
		return strings.ToLower(body[:i]), body[i+1:], true, true
	}
	return strings.ToLower(body), "", false, true
}

// isOption classifies tok. Slash-prefixed tokens only count as options when
// they name one, so absolute paths stay positional.
func isOption(tok string) bool {
	if tok == "-" {
		return false
	}
	if strings.HasPrefix(tok, "/") {
		name, _, _, _ := splitOption(tok)
		_, known := options[name]
		return known
	}
	return strings.HasPrefix(tok, "-")
}

// Parse validates tokens into a Config. Option errors are reported before any
// path is checked on disk.
func Parse(tokens []string) (Config, error) {
	var cfg Config
	if len(tokens) == 0 {
		cfg.Help = true
		return cfg, nil
	}

	var positional []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !isOption(tok) {
			positional = append(positional, tok)
			continue
		}

		name, inline, hasInline, _ := splitOption(tok)
		opt, ok := options[name]
		if !ok {
			return Config{}, errors.Wrapf(ErrUnrecognizedArgument, "%q", tok)
		}
		switch opt {
		case optHelp, optExtract, optIgnoreErrors, optATI:
			if hasInline {
				return Config{}, errors.Wrapf(ErrUnrecognizedArgument, "%q takes no value", tok)
			}
		}

		// value returns the inline value or consumes the next token.
		value := func() (string, error) {
			if hasInline {
				return inline, nil
			}
			if i+1 >= len(tokens) {
				return "", errors.Wrapf(ErrMissingOptionValue, "%s", tok)
			}
			i++
			return tokens[i], nil
		}

		switch opt {
		case optHelp:
			cfg.Help = true
		case optExtract:
			cfg.Extract = true
		case optIgnoreErrors:
			cfg.IgnoreErrors = true
		case optATI:
			cfg.UseATIFourCC = true
		case optList:
			cfg.List = true
			flags, err := parseListOptions(inline)
			if err != nil {
				return Config{}, errors.Wrapf(err, "%q", tok)
			}
			cfg.ListOptions |= flags
		case optFilter, optRegex:
			pattern, err := value()
			if err != nil {
				return Config{}, err
			}
			cfg.FilterMode, cfg.Pattern = filter.Simple, pattern
			if opt == optRegex {
				cfg.FilterMode = filter.Regex
			}
		case optEncoding:
			name, err := value()
			if err != nil {
				return Config{}, err
			}
			enc, err := archive.ParseTextEncoding(name)
			if err != nil {
				return Config{}, err
			}
			cfg.Encoding = enc
		}
	}

	if cfg.Help {
		return cfg, nil
	}
	if !cfg.Extract && !cfg.List {
		cfg.List = true
	}

	if cfg.Extract && len(positional) > 0 {
		cfg.Destination = positional[len(positional)-1]
		positional = positional[:len(positional)-1]
	}
	for _, p := range positional {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			return Config{}, errors.Wrapf(ErrInputNotFound, "%s", p)
		}
		cfg.Inputs = append(cfg.Inputs, p)
	}
	if cfg.Extract {
		if cfg.Destination == "" {
			return Config{}, errors.Wrap(ErrDestinationNotFound, "no destination given")
		}
		info, err := os.Stat(cfg.Destination)
		if err != nil || !info.IsDir() {
			return Config{}, errors.Wrapf(ErrDestinationNotFound, "%s", cfg.Destination)
		}
	}
	if len(cfg.Inputs) == 0 {
		return Config{}, ErrNoInputs
	}
	return cfg, nil
}

func parseListOptions(s string) (core.ListOptions, error) {
	var opts core.ListOptions
	for _, c := range strings.ToLower(s) {
		switch c {
		case 'a':
			opts |= core.ListArchiveName
		case 'f':
			opts |= core.ListFullPath
		case 's':
			opts |= core.ListFileSize
		default:
			return 0, errors.Wrapf(ErrUnrecognizedArgument, "list option %q", string(c))
		}
	}
	return opts, nil
}
