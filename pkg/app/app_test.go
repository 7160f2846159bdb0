package app

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"bsab/pkg/archive"
	"bsab/pkg/args"
	"bsab/pkg/conf"
	"bsab/pkg/filter"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

type file struct {
	name string
	data string
}

// morrowind builds an uncompressed TES3 archive holding files.
func morrowind(t *testing.T, files ...file) []byte {
	t.Helper()
	var names, data bytes.Buffer
	var records, nameOffsets []uint32
	for _, f := range files {
		nameOffsets = append(nameOffsets, uint32(names.Len()))
		names.WriteString(f.name)
		names.WriteByte(0)
		records = append(records, uint32(len(f.data)), uint32(data.Len()))
		data.WriteString(f.data)
	}

	var out bytes.Buffer
	count := uint32(len(files))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, []uint32{0x100, count*12 + uint32(names.Len()), count}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, records))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, nameOffsets))
	out.Write(names.Bytes())
	out.Write(make([]byte, 8*len(files)))
	out.Write(data.Bytes())
	return out.Bytes()
}

func setupEnv(t *testing.T) {
	t.Setenv("BSAB_CONFIG", "")
	t.Setenv("BSAB_LOG_LEVEL", "warn")
	t.Setenv("BSAB_LOG_FORMAT", "text")
	t.Setenv("BSAB_LOG_FILE", "")
	t.Setenv("BSAB_PROGRESS", "line")
}

func writeFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	coder, ok := err.(cli.ExitCoder)
	require.True(t, ok, "%T is not an ExitCoder", err)
	return coder.ExitCode()
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.Wrap(args.ErrUnrecognizedArgument, "-x"), ExitInvalidArgument},
		{errors.Wrap(args.ErrMissingOptionValue, "-f"), ExitInvalidArgument},
		{errors.Wrap(archive.ErrInvalidEncodingName, "x"), ExitInvalidArgument},
		{args.ErrNoInputs, ExitInvalidArgument},
		{errors.Wrap(filter.ErrInvalidPattern, "("), ExitInvalidArgument},
		{errors.Wrap(conf.ErrInvalidSetting, "BSAB_PROGRESS"), ExitInvalidArgument},
		{errors.Wrap(args.ErrInputNotFound, "a.bsa"), ExitInputNotFound},
		{errors.Wrap(args.ErrDestinationNotFound, "out"), ExitDestinationNotFound},
		{errors.New("read a.bsa: unexpected EOF"), ExitFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}

func TestRunNoArgumentsPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := Run(nil, &stdout, &stderr)
	assert.NoError(t, err)
	assert.Contains(t, stdout.String(), "Usage: bsab")
	assert.Contains(t, stdout.String(), "utf7 | system")
	assert.Contains(t, stdout.String(), "literal, case-insensitive substring")
	assert.NotContains(t, stdout.String(), "wildcards;")
	assert.Empty(t, stderr.String())
}

func TestRunUnrecognizedOption(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := Run([]string{"does-not-exist.bsa", "-q"}, &stdout, &stderr)
	assert.Equal(t, ExitInvalidArgument, exitCode(t, err))
	assert.Contains(t, err.Error(), "unrecognized argument")
	assert.Empty(t, stdout.String())
}

func TestRunDestinationNotDirectory(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	// the input is garbage; reaching the reader would fail with exit 1
	in := writeFixture(t, dir, "broken.bsa", []byte("garbage"))
	notDir := writeFixture(t, dir, "file.txt", nil)

	var stdout, stderr bytes.Buffer
	err := Run([]string{"-e", in, notDir}, &stdout, &stderr)
	assert.Equal(t, ExitDestinationNotFound, exitCode(t, err))
	assert.Empty(t, stdout.String())
}

func TestRunInputNotFound(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := Run([]string{filepath.Join(t.TempDir(), "missing.bsa")}, &stdout, &stderr)
	assert.Equal(t, ExitInputNotFound, exitCode(t, err))
}

func TestRunBadRegex(t *testing.T) {
	setupEnv(t)
	in := writeFixture(t, t.TempDir(), "a.bsa", morrowind(t, file{`a\b.txt`, "x"}))

	var stdout, stderr bytes.Buffer
	err := Run([]string{"--regex", "(", in}, &stdout, &stderr)
	assert.Equal(t, ExitInvalidArgument, exitCode(t, err))
}

func TestRunList(t *testing.T) {
	setupEnv(t)
	in := writeFixture(t, t.TempDir(), "Morrowind.bsa", morrowind(t,
		file{`textures\wall.dds`, "dds"},
		file{`meshes\chair.nif`, "nif!"},
	))

	var stdout, stderr bytes.Buffer
	require.NoError(t, Run([]string{"-l:s", in}, &stdout, &stderr))
	assert.Equal(t, "4\tmeshes/chair.nif\n3\ttextures/wall.dds\n\n", stdout.String())
}

func TestRunListFilter(t *testing.T) {
	setupEnv(t)
	in := writeFixture(t, t.TempDir(), "Morrowind.bsa", morrowind(t,
		file{`textures\wall.dds`, "dds"},
		file{`meshes\chair.nif`, "nif!"},
	))

	var stdout, stderr bytes.Buffer
	require.NoError(t, Run([]string{"-f", "TEX", in}, &stdout, &stderr))
	assert.Equal(t, "textures/wall.dds\n\n", stdout.String())
}

func TestRunExtract(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	in := writeFixture(t, dir, "Morrowind.bsa", morrowind(t,
		file{`textures\wall.dds`, "dds"},
		file{`meshes\chair.nif`, "nif!"},
	))
	dest := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(dest, 0755))

	var stdout, stderr bytes.Buffer
	require.NoError(t, Run([]string{"-e", in, dest}, &stdout, &stderr))

	data, err := os.ReadFile(filepath.Join(dest, "meshes", "chair.nif"))
	require.NoError(t, err)
	assert.Equal(t, "nif!", string(data))
	data, err = os.ReadFile(filepath.Join(dest, "textures", "wall.dds"))
	require.NoError(t, err)
	assert.Equal(t, "dds", string(data))

	assert.Equal(t,
		"Extracting: 1/2 - meshes/chair.nif\nExtracting: 2/2 - textures/wall.dds\n\n",
		stdout.String())
}

func TestRunIgnoreErrors(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	broken := writeFixture(t, dir, "broken.bsa", []byte("garbage"))
	good := writeFixture(t, dir, "good.bsa", morrowind(t, file{`a.txt`, "a"}))

	var stdout, stderr bytes.Buffer
	err := Run([]string{broken, good}, &stdout, &stderr)
	assert.Equal(t, ExitFailure, exitCode(t, err))
	assert.Equal(t, "broken.bsa\n", stdout.String())

	stdout.Reset()
	stderr.Reset()
	require.NoError(t, Run([]string{"-i", broken, good}, &stdout, &stderr))
	assert.Equal(t, "broken.bsa\n\ngood.bsa\n\ta.txt\n\n", stdout.String())
	assert.Contains(t, stderr.String(), "skipping archive")
}

func TestRunRejectsBadLogLevel(t *testing.T) {
	setupEnv(t)
	t.Setenv("BSAB_LOG_LEVEL", "chatty")
	in := writeFixture(t, t.TempDir(), "a.bsa", morrowind(t, file{`a.txt`, "a"}))

	var stdout, stderr bytes.Buffer
	err := Run([]string{in}, &stdout, &stderr)
	assert.Equal(t, ExitInvalidArgument, exitCode(t, err))
	assert.Empty(t, stdout.String())
}

func TestRunErrorsAreExitCoders(t *testing.T) {
	setupEnv(t)
	broken := writeFixture(t, t.TempDir(), "broken.bsa", []byte("garbage"))

	var stdout, stderr bytes.Buffer
	err := Run([]string{broken}, &stdout, &stderr)
	require.Error(t, err)
	coder, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	assert.Equal(t, ExitFailure, coder.ExitCode())
	assert.Contains(t, coder.Error(), "bsab: ")
}
