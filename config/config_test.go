package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, `
output: extracted
dictionaries:
  names: [names.txt, more_names.txt]
  types: [types.txt]
dictionary_encoding: Windows 1252
filter: '\.dds$'
rename: true
workers: 8
verify_duplicates: true
meshes:
  obj: true
  gltf: true
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, "extracted", c.Output)
	assert.Equal(t, []string{"names.txt", "more_names.txt"}, c.Dictionaries.Names)
	assert.Equal(t, []string{"types.txt"}, c.Dictionaries.Types)
	assert.Nil(t, c.Dictionaries.Strings)
	assert.Equal(t, "Windows 1252", c.DictionaryEncoding)
	assert.Equal(t, `\.dds$`, c.Filter)
	assert.True(t, c.Rename)
	assert.False(t, c.DryRun)
	assert.Equal(t, 8, c.Workers)
	assert.True(t, c.VerifyDuplicates)
	assert.Equal(t, Meshes{Obj: true, GLTF: true}, c.Meshes)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, ":8000", c.Listen)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "unknown_key: 1\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "workers: 0\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(errors.Cause(err)))

	c, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestEncodings(t *testing.T) {
	defer SetEncoding(UTF8)

	assert.NoError(t, SetEncoding("windows 1251"))
	require.NotNil(t, GetEncoding())
	assert.Equal(t, "Windows 1251", GetEncoding().String())

	assert.NoError(t, SetEncoding("utf8"))
	assert.Nil(t, GetEncoding())

	assert.Error(t, SetEncoding("klingon"))
	assert.Contains(t, ListEncodings(), "Windows 1252")
	assert.Equal(t, UTF8, ListEncodings()[0])
}
