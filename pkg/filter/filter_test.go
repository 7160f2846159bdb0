package filter

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileNone(t *testing.T) {
	f, err := Compile(None, "ignored")
	require.NoError(t, err)
	assert.True(t, f.Match(""))
	assert.True(t, f.Match("anything/at/all.nif"))
}

func TestSimpleIsCaseInsensitiveSubstring(t *testing.T) {
	f, err := Compile(Simple, "tex")
	require.NoError(t, err)

	assert.True(t, f.Match("Textures/a.dds"))
	assert.True(t, f.Match("footex.nif"))
	assert.True(t, f.Match("meshes/TEX"))
	assert.False(t, f.Match("TXT/file.txt"))
}

func TestSimpleEscapesWildcards(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*.dds", "textures/*.dds", true},
		{"*.dds", "textures/a.dds", false},
		{"a?c", "xa?cx", true},
		{"a?c", "abc", false},
		{"[ab]", "dir/[ab]/f", true},
		{"[ab]", "dir/a/f", false},
		{"a.b", "A.B", true},
		{"a.b", "axb", false},
		{"`", "weird`name", true},
		{"(x)", "meshes/(x).nif", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			f, err := Compile(Simple, tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Match(tt.path))
		})
	}
}

func TestRegexIsCaseSensitive(t *testing.T) {
	f, err := Compile(Regex, "^Meshes/")
	require.NoError(t, err)

	assert.True(t, f.Match("Meshes/x.nif"))
	assert.False(t, f.Match("meshes/x.nif"))
}

func TestRegexSingleLine(t *testing.T) {
	f, err := Compile(Regex, "^a.b$")
	require.NoError(t, err)
	assert.True(t, f.Match("a\nb"))
}

func TestRegexInvalid(t *testing.T) {
	_, err := Compile(Regex, "([unclosed")
	require.Error(t, err)
	assert.Equal(t, ErrInvalidPattern, errors.Cause(err))
	assert.Contains(t, err.Error(), "([unclosed")
}

func TestWildcardToRegex(t *testing.T) {
	assert.Equal(t, "^.*$", wildcardToRegex("*"))
	assert.Equal(t, `^.*a\?c.*$`, wildcardToRegex("*"+EscapeWildcard("a?c")+"*"))
	assert.Equal(t, `^\[ab]$`, wildcardToRegex(EscapeWildcard("[ab]")))
	assert.Equal(t, `^\*$`, wildcardToRegex("`*"))
	assert.Equal(t, "^a\\.b$", wildcardToRegex("a.b"))
	assert.Equal(t, "^`$", wildcardToRegex("`"))
}

func TestSimplePatternsAreLiteral(t *testing.T) {
	star, err := Compile(Simple, "*.dds")
	require.NoError(t, err)
	assert.False(t, star.Match("textures/a.dds"))

	class, err := Compile(Simple, "[ab].nif")
	require.NoError(t, err)
	assert.False(t, class.Match("a.nif"))
	assert.True(t, class.Match("meshes/[AB].NIF"))
}

func TestEscapeWildcard(t *testing.T) {
	assert.Equal(t, "plain", EscapeWildcard("plain"))
	assert.Equal(t, "`*`?`[x`]``", EscapeWildcard("*?[x]`"))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "simple", Simple.String())
	assert.Equal(t, "regex", Regex.String())
}
