package lib

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialog records progress the way a GUI front end would.
type dialog struct {
	labels   []string
	finished bool
}

func (d *dialog) Start() {}
func (d *dialog) Report(current, total int, label string) {
	d.labels = append(d.labels, label)
}
func (d *dialog) Finish() { d.finished = true }

// singleFileArchive builds a Morrowind archive holding one file.
func singleFileArchive(t *testing.T, name, data string) []byte {
	t.Helper()
	var out bytes.Buffer
	nameLen := uint32(len(name) + 1)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, []uint32{
		0x100, 12 + nameLen, 1,
		uint32(len(data)), 0,
		0,
	}))
	out.WriteString(name)
	out.WriteByte(0)
	out.Write(make([]byte, 8))
	out.WriteString(data)
	return out.Bytes()
}

func TestFrontEndPipeline(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "Data.bsa")
	require.NoError(t, os.WriteFile(in, singleFileArchive(t, `sound\fx\hit.wav`, "RIFF"), 0644))
	dest := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(dest, 0755))

	cfg, err := Parse([]string{"-e", "-f", "*.wav", in, dest})
	require.NoError(t, err)
	assert.Equal(t, FilterSimple, cfg.FilterMode)

	var out bytes.Buffer
	log, hook := test.NewNullLogger()
	d := &dialog{}
	o, err := NewOrchestrator(cfg, &out, log, func() Reporter { return d })
	require.NoError(t, err)
	require.NoError(t, Run(o, cfg))

	assert.Equal(t, []string{"sound/fx/hit.wav"}, d.labels)
	assert.True(t, d.finished)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "extracted archive", hook.LastEntry().Message)
	assert.Equal(t, 1, hook.LastEntry().Data["extracted"])

	data, err := os.ReadFile(filepath.Join(dest, "sound", "fx", "hit.wav"))
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data))
}

func TestNewOrchestratorBadPattern(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := NewOrchestrator(Config{FilterMode: FilterRegex, Pattern: "[a-"}, &bytes.Buffer{}, log, nil)
	assert.Error(t, err)
}

func TestCompile(t *testing.T) {
	f, err := Compile(FilterRegex, `\.nif$`)
	require.NoError(t, err)
	assert.True(t, f.Match("meshes/a.nif"))
	assert.False(t, f.Match("meshes/a.NIF"))

	_, err = Parse([]string{"--unknown"})
	assert.Error(t, errors.Cause(err))
}
