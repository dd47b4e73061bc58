package extract

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/archive/archivetest"
	"github.com/mogaika/stingray_extractor/hashdb"
	"github.com/mogaika/stingray_extractor/pack"
	"github.com/mogaika/stingray_extractor/pack/formats"
	"github.com/mogaika/stingray_extractor/stingray"
)

var (
	textureId  = stingray.HashString("content/textures/rock")
	bikId      = stingray.HashString("content/videos/intro")
	materialId = stingray.HashString("content/materials/rock")
	evilId     = stingray.HashString("../evil")
	typeMat    = stingray.HashString("material")
)

func textureMain(payload string) []byte {
	return append(make([]byte, 0xC0), payload...)
}

func testSet(t *testing.T) *archive.Set {
	b := &archivetest.Builder{}
	b.Add(archivetest.File{Id: textureId, Type: stingray.TypeTexture, Main: textureMain("DDS "), Stream: []byte("mips")})
	b.Add(archivetest.File{Id: bikId, Type: stingray.TypeBik, Main: []byte("0123456789abcdefBIKi"), Stream: []byte("frames")})
	b.Add(archivetest.File{Id: materialId, Type: typeMat, Main: []byte("material")})
	a, err := b.Archive("test")
	require.NoError(t, err)

	s := archive.NewSet(archive.SetOptions{})
	s.Add(a)
	t.Cleanup(func() { s.Close() })
	return s
}

func translator(names ...string) *hashdb.Translator {
	tr := &hashdb.Translator{}
	tbl := hashdb.NewTable("test")
	for _, n := range names {
		tbl.Add(n)
	}
	tr.Names.Push(tbl)
	return tr
}

func readFile(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunExportsTranslatedNames(t *testing.T) {
	out := t.TempDir()
	d := New(testSet(t), formats.NewRegistry(formats.Options{}),
		translator("content/textures/rock", "content/videos/intro"), Options{Output: out})

	stats, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Assets)
	assert.Equal(t, int64(3), stats.Exported)
	assert.Equal(t, int64(0), stats.TotalFailed())

	assert.Equal(t, "DDS mips", readFile(t, filepath.Join(out, "content", "textures", "rock.dds")))
	assert.Equal(t, "BIKiframes", readFile(t, filepath.Join(out, "content", "videos", "intro.bik")))
	assert.Equal(t, "material", readFile(t, filepath.Join(out, materialId.String()+".material")))

	stats, err = New(testSet(t), formats.NewRegistry(formats.Options{}),
		translator("content/textures/rock", "content/videos/intro"), Options{Output: out}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Exported)
	assert.Equal(t, int64(3), stats.UpToDate)

	stats, err = New(testSet(t), formats.NewRegistry(formats.Options{}),
		translator("content/textures/rock", "content/videos/intro"), Options{Output: out, Force: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Exported)
}

func TestRunFilterAndDryRun(t *testing.T) {
	out := t.TempDir()
	d := New(testSet(t), formats.NewRegistry(formats.Options{}), translator("content/textures/rock"), Options{
		Output: out,
		Filter: regexp.MustCompile(`^content/.*\.dds$`),
		DryRun: true,
	})

	stats, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Exported)
	assert.Equal(t, int64(2), stats.Filtered)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunRenamesHexOutputs(t *testing.T) {
	out := t.TempDir()
	registry := formats.NewRegistry(formats.Options{})

	_, err := New(testSet(t), registry, nil, Options{Output: out}).Run(context.Background())
	require.NoError(t, err)
	hexPath := filepath.Join(out, textureId.String()+".dds")
	assert.FileExists(t, hexPath)

	named := filepath.Join(out, "content", "textures", "rock.dds")
	stats, err := New(testSet(t), registry, translator("content/textures/rock"), Options{Output: out, Rename: true, DryRun: true}).
		Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Renamed)
	assert.FileExists(t, hexPath)
	assert.NoFileExists(t, named)

	stats, err = New(testSet(t), registry, translator("content/textures/rock"), Options{Output: out, Rename: true}).
		Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Renamed)
	assert.Equal(t, int64(2), stats.UpToDate)
	assert.NoFileExists(t, hexPath)
	assert.Equal(t, "DDS mips", readFile(t, named))
}

func TestRunParallel(t *testing.T) {
	out := t.TempDir()
	var mu sync.Mutex
	calls := 0
	d := New(testSet(t), formats.NewRegistry(formats.Options{}), nil, Options{
		Output:  out,
		Workers: 4,
		Progress: func(done, total int) {
			mu.Lock()
			calls++
			mu.Unlock()
			assert.Equal(t, 3, total)
		},
	})
	stats, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Exported)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "BIKiframes", readFile(t, filepath.Join(out, bikId.String()+".bik")))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := New(testSet(t), formats.NewRegistry(formats.Options{}), nil, Options{Output: t.TempDir()}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), stats.Assets)
}

func TestRunCountsFailures(t *testing.T) {
	out := t.TempDir()
	// a file where the output directory should be
	require.NoError(t, os.WriteFile(filepath.Join(out, "content"), nil, 0644))

	stats, err := New(testSet(t), formats.NewRegistry(formats.Options{}),
		translator("content/textures/rock"), Options{Output: out}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Exported)
	assert.Equal(t, int64(1), stats.Failed[stingray.KindIO])
}

func TestOutputNameStaysInside(t *testing.T) {
	d := New(testSet(t), formats.NewRegistry(formats.Options{}), translator("../evil"), Options{})
	asset := &archive.Asset{File: archive.FileEntry{Id: evilId, Type: typeMat}}
	assert.Equal(t, evilId.String()+".material", d.OutputName(asset, packOutput("")))
	asset.File.Type = 0x42
	assert.Equal(t, evilId.String()+".0000000000000042", d.OutputName(asset, packOutput("")))
}

func TestKeyedMutex(t *testing.T) {
	var k keyedMutex
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("same")
			counter++
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Empty(t, k.locks)
}

func packOutput(suffix string) pack.Output {
	return pack.Output{Suffix: suffix}
}
