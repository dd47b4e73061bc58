package hashdb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/mogaika/stingray_extractor/config"
	"github.com/mogaika/stingray_extractor/stingray"
)

func TestTableLoad(t *testing.T) {
	tbl := NewTable("test")
	require.NoError(t, tbl.Load(strings.NewReader(
		"unit\n"+
			"   texture   // trailing comment\n"+
			"// whole line comment\n"+
			"\n"+
			"\t\n"+
			"content/fac_helldivers\r\n")))

	assert.Equal(t, 3, tbl.Len())

	s, ok := tbl.Lookup(stingray.Hash(0xe0a48d0be9a7453f))
	assert.True(t, ok)
	assert.Equal(t, "unit", s)

	s, ok = tbl.Lookup(stingray.Hash(0xcd4238c6a0c69e32))
	assert.True(t, ok)
	assert.Equal(t, "texture", s)

	s, ok = tbl.Lookup(stingray.Hash(0xb142639dc78ea6d9))
	assert.True(t, ok)
	assert.Equal(t, "content/fac_helldivers", s)

	h, ok := tbl.Hash("texture")
	assert.True(t, ok)
	assert.Equal(t, stingray.Hash(0xcd4238c6a0c69e32), h)

	_, ok = tbl.Lookup(stingray.HashString("// whole line comment"))
	assert.False(t, ok)
	_, ok = tbl.Lookup(stingray.HashString(""))
	assert.False(t, ok)
}

func TestTableLookupThin(t *testing.T) {
	tbl := NewTable("thin")
	h := tbl.Add("material")

	s, ok := tbl.LookupThin(h.Thin())
	assert.True(t, ok)
	assert.Equal(t, "material", s)
	assert.Equal(t, stingray.ThinHash(0xeac0b497), h.Thin())
}

func TestTableUTF16Dictionary(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.String("bik\nwwise_bank\n")
	require.NoError(t, err)

	tbl := NewTable("utf16")
	require.NoError(t, tbl.Load(strings.NewReader(data)))

	s, ok := tbl.Lookup(stingray.Hash(0x535a7bd3e650d799))
	assert.True(t, ok)
	assert.Equal(t, "wwise_bank", s)
	_, ok = tbl.Lookup(stingray.Hash(0xaa5965f03029fa18))
	assert.True(t, ok)
}

func TestTableCharmapDictionary(t *testing.T) {
	require.NoError(t, config.SetEncoding("Windows 1252"))
	defer config.SetEncoding(config.UTF8)

	tbl := NewTable("cp1252")
	require.NoError(t, tbl.Load(strings.NewReader("caf\xe9\n")))

	_, ok := tbl.Hash("café")
	assert.True(t, ok)
}

func TestStackPriority(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "older.txt")
	newer := filepath.Join(dir, "newer.txt")
	require.NoError(t, os.WriteFile(older, []byte("unit\n"), 0644))
	require.NoError(t, os.WriteFile(newer, []byte("mesh\n"), 0644))

	var s Stack
	assert.Equal(t, 2, s.LoadFiles(older, filepath.Join(dir, "missing.txt"), newer))
	assert.Equal(t, 2, s.Len())

	a := NewTable("a")
	a.byHash[stingray.HashString("unit")] = "first"
	b := NewTable("b")
	b.byHash[stingray.HashString("unit")] = "second"
	s.Push(a)
	s.Push(b)

	str, ok := s.Lookup(stingray.HashString("unit"))
	assert.True(t, ok)
	assert.Equal(t, "second", str)

	str, ok = s.Lookup(stingray.HashString("mesh"))
	assert.True(t, ok)
	assert.Equal(t, "mesh", str)
}

func TestTranslatorFallbacks(t *testing.T) {
	tr := &Translator{}
	names := NewTable("names")
	names.Add("content/fac_helldivers")
	tr.Names.Push(names)
	strs := NewTable("strings")
	strs.Add("shared_name")
	strs.Add("my_type")
	tr.Strings.Push(strs)

	assert.Equal(t, "content/fac_helldivers", tr.Name(stingray.Hash(0xb142639dc78ea6d9)))
	assert.Equal(t, "shared_name", tr.Name(stingray.HashString("shared_name")))
	assert.Equal(t, "00000000deadbeef", tr.Name(stingray.Hash(0xdeadbeef)))

	assert.Equal(t, "my_type", tr.TypeName(stingray.HashString("my_type")))
	assert.Equal(t, "texture", tr.TypeName(stingray.TypeTexture))
	assert.Equal(t, "0000000000000001", tr.TypeName(1))

	var nilTr *Translator
	assert.Equal(t, "unit", nilTr.TypeName(stingray.TypeUnit))
	assert.Equal(t, "0000000000000002", nilTr.Name(2))

	assert.Equal(t, "0000000000000001 (0100000000000000)", tr.Describe(1))
}
