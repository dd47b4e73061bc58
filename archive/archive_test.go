package archive_test

import (
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/archive/archivetest"
	"github.com/mogaika/stingray_extractor/stingray"
)

func sampleBuilder() *archivetest.Builder {
	b := &archivetest.Builder{}
	b.Add(archivetest.File{Id: 1, Type: stingray.TypeTexture, Main: []byte("texture header"), Stream: []byte("mip chain")})
	b.Add(archivetest.File{Id: 2, Type: stingray.TypeUnit, Main: []byte("unit"), GPU: []byte("vertices")})
	b.Add(archivetest.File{Id: 3, Type: stingray.TypeTexture, Main: []byte("second")})
	return b
}

func TestOpenAndResolve(t *testing.T) {
	b := sampleBuilder()
	path, err := b.WriteFiles(t.TempDir(), "9ba626afa44a3aa3")
	require.NoError(t, err)

	a, err := archive.Open(path)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "9ba626afa44a3aa3", a.Name)
	assert.True(t, a.HasStream())
	assert.True(t, a.HasGPU())
	assert.Equal(t, 2, a.TypeCount())
	assert.Equal(t, stingray.TypeTexture, a.TypeAt(0).Type)
	assert.Equal(t, uint32(2), a.TypeAt(0).Count)
	assert.Equal(t, stingray.TypeUnit, a.TypeAt(1).Type)
	require.Equal(t, 3, a.FileCount())
	assert.Equal(t, uint32(len("vertices")), a.Header.GPUAlignedSize)

	for i, f := range b.Files {
		asset, err := a.Resolve(i)
		require.NoError(t, err)
		assert.Equal(t, f.Id, asset.Id())
		assert.Equal(t, f.Type, asset.Type())
		assert.Equal(t, f.Main, asset.Main)
		if f.Stream == nil {
			assert.Nil(t, asset.Stream)
		} else {
			assert.Equal(t, f.Stream, asset.Stream)
		}
		if f.GPU == nil {
			assert.Nil(t, asset.GPU)
		} else {
			assert.Equal(t, f.GPU, asset.GPU)
		}
	}

	assert.Empty(t, a.VerifyLayout())

	_, err = a.Resolve(3)
	assert.True(t, errors.Is(err, stingray.ErrNotFound))
}

func TestOpenAlternativeGPUSuffix(t *testing.T) {
	path, err := sampleBuilder().WriteFiles(t.TempDir(), "archive")
	require.NoError(t, err)
	require.NoError(t, os.Rename(path+archive.GPUSuffix, path+archive.GPUSuffixAlt))

	a, err := archive.Open(path)
	require.NoError(t, err)
	defer a.Close()

	asset, err := a.Resolve(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("vertices"), asset.GPU)
}

func TestAbsentExtentResolvesEmpty(t *testing.T) {
	b := sampleBuilder()
	main, _, _ := b.Build()

	a, err := archive.New("main-only", archive.NewExtentFromBytes("main-only", main), nil, nil)
	require.NoError(t, err)

	asset, err := a.Resolve(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("texture header"), asset.Main)
	assert.Nil(t, asset.Stream)
	assert.Nil(t, asset.GPU)
	assert.NotZero(t, asset.File.StreamSize)
}

func TestInvalidMagic(t *testing.T) {
	main, _, _ := sampleBuilder().Build()
	binary.LittleEndian.PutUint32(main, 0x12345678)

	_, err := archive.New("bad", archive.NewExtentFromBytes("bad", main), nil, nil)
	require.Error(t, err)
	assert.Equal(t, stingray.KindCorrupt, stingray.Classify(err))
}

func TestTruncatedTables(t *testing.T) {
	main, _, _ := sampleBuilder().Build()
	binary.LittleEndian.PutUint32(main[8:], 0xffffffff)

	_, err := archive.New("huge", archive.NewExtentFromBytes("huge", main), nil, nil)
	assert.True(t, errors.Is(err, stingray.ErrCorrupt))

	_, err = archive.New("short", archive.NewExtentFromBytes("short", main[:archive.HeaderSize-1]), nil, nil)
	assert.True(t, errors.Is(err, stingray.ErrCorrupt))
}

func TestResolveOutOfBounds(t *testing.T) {
	b := sampleBuilder()
	main, stream, gpu := b.Build()
	binary.LittleEndian.PutUint32(main[b.FileEntryOffset(0)+0x3c:], uint32(len(stream)+1))

	a, err := archive.New("oob",
		archive.NewExtentFromBytes("oob", main),
		archive.NewExtentFromBytes("oob.stream", stream),
		archive.NewExtentFromBytes("oob.gpu_resources", gpu))
	require.NoError(t, err)

	_, err = a.Resolve(0)
	require.Error(t, err)
	assert.Equal(t, stingray.KindCorrupt, stingray.Classify(err))

	_, err = a.Resolve(1)
	assert.NoError(t, err)
}

func TestResolveRandomRanges(t *testing.T) {
	b := sampleBuilder()
	main, stream, gpu := b.Build()
	rnd := rand.New(rand.NewSource(1))

	pick := func(limit int) uint32 {
		switch rnd.Intn(4) {
		case 0:
			return rnd.Uint32()
		case 1:
			return 0xffffffff - uint32(rnd.Intn(16))
		default:
			return uint32(rnd.Intn(limit + 8))
		}
	}

	for iter := 0; iter < 2000; iter++ {
		m := append([]byte(nil), main...)
		off := b.FileEntryOffset(iter % len(b.Files))
		mainOff, mainSize := pick(len(m)), pick(len(m))
		streamOff, streamSize := pick(len(stream)), pick(len(stream))
		gpuOff, gpuSize := pick(len(gpu)), pick(len(gpu))
		le := binary.LittleEndian
		le.PutUint32(m[off+0x10:], mainOff)
		le.PutUint32(m[off+0x18:], streamOff)
		le.PutUint32(m[off+0x20:], gpuOff)
		le.PutUint32(m[off+0x38:], mainSize)
		le.PutUint32(m[off+0x3c:], streamSize)
		le.PutUint32(m[off+0x40:], gpuSize)

		a, err := archive.New("fuzz",
			archive.NewExtentFromBytes("fuzz", m),
			archive.NewExtentFromBytes("fuzz.stream", stream),
			archive.NewExtentFromBytes("fuzz.gpu_resources", gpu))
		require.NoError(t, err)

		fits := func(o, s uint32, n int) bool {
			return s == 0 || uint64(o)+uint64(s) <= uint64(n)
		}
		ok := fits(mainOff, mainSize, len(m)) && fits(streamOff, streamSize, len(stream)) && fits(gpuOff, gpuSize, len(gpu))

		asset, err := a.Resolve(iter % len(b.Files))
		if !ok {
			require.Error(t, err, "iteration %d", iter)
			require.True(t, errors.Is(err, stingray.ErrCorrupt), "iteration %d", iter)
			continue
		}
		require.NoError(t, err, "iteration %d", iter)
		check := func(got []byte, data []byte, o, s uint32) {
			if s == 0 {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, data[o:uint64(o)+uint64(s)], got)
			assert.Equal(t, len(got), cap(got))
		}
		check(asset.Main, m, mainOff, mainSize)
		check(asset.Stream, stream, streamOff, streamSize)
		check(asset.GPU, gpu, gpuOff, gpuSize)
	}
}

func TestVerifyLayoutReportsGaps(t *testing.T) {
	b := sampleBuilder()
	main, _, _ := b.Build()
	off := b.FileEntryOffset(1)
	binary.LittleEndian.PutUint32(main[off+0x10:], binary.LittleEndian.Uint32(main[off+0x10:])+1)
	binary.LittleEndian.PutUint32(main[off+0x38:], binary.LittleEndian.Uint32(main[off+0x38:])-1)

	a, err := archive.New("gap", archive.NewExtentFromBytes("gap", main), nil, nil)
	require.NoError(t, err)
	errs := a.VerifyLayout()
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], stingray.ErrCorrupt))
	assert.Equal(t, int64(archive.HeaderSize+2*archive.TypeEntrySize+3*archive.FileEntrySize), a.DataOffset())
}

func TestOpenEmptyExtent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	e, err := archive.OpenExtent(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), e.Len())
	assert.NoError(t, e.Close())

	_, err = archive.Open(path)
	assert.True(t, errors.Is(err, stingray.ErrCorrupt))
}

func TestOpenMissing(t *testing.T) {
	_, err := archive.Open(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, stingray.KindIO, stingray.Classify(err))
}
