package unit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/pack"
	"github.com/mogaika/stingray_extractor/pack/unit/mesh"
	"github.com/mogaika/stingray_extractor/stingray"
)

func TestUnitVerbatimSections(t *testing.T) {
	asset := &archive.Asset{
		File: archive.FileEntry{Id: 1, Type: stingray.TypeUnit},
		Main: []byte("unit data"),
		GPU:  []byte("vertex data"),
	}
	u, err := New(asset, Options{})
	require.NoError(t, err)

	assert.Equal(t, map[string]pack.Output{
		UnitSection: {Size: 9, Suffix: "unit"},
		GPUSection:  {Size: 11, Suffix: "gpu_resources"},
	}, u.Outputs())

	var buf bytes.Buffer
	require.NoError(t, u.WriteSection(GPUSection, &buf))
	assert.Equal(t, "vertex data", buf.String())
	assert.Nil(t, u.Info)
}

func TestUnitWithoutGPU(t *testing.T) {
	u, err := New(&archive.Asset{Main: []byte("unit")}, Options{Meshes: mesh.Options{Obj: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{UnitSection}, u.Names())
}

func TestUnitUndecodableMeshInfo(t *testing.T) {
	asset := &archive.Asset{Main: []byte("too short for mesh info"), GPU: []byte("gpu")}
	u, err := New(asset, Options{Meshes: mesh.Options{Obj: true, GLTF: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{UnitSection, GPUSection}, u.Names())
	assert.Nil(t, u.Info)
}

func TestUnitEmptyMeshInfo(t *testing.T) {
	asset := &archive.Asset{Main: make([]byte, 0x80), GPU: []byte("gpu")}
	u, err := New(asset, Options{Meshes: mesh.Options{Obj: true}})
	require.NoError(t, err)
	require.NotNil(t, u.Info)
	assert.Equal(t, 0, u.Decoded)
	assert.Equal(t, []string{UnitSection, GPUSection}, u.Names())
}

func TestRegister(t *testing.T) {
	r := pack.NewRegistry()
	Register(r, Options{})
	c := r.Find(&archive.Asset{File: archive.FileEntry{Type: stingray.TypeUnit}, Main: []byte("x")})
	_, ok := c.(*Unit)
	assert.True(t, ok)
	assert.Equal(t, "00000003.obj", ObjSection(3))
}
