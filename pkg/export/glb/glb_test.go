package glb

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/voxmill/quarry/pkg/geom"
	"github.com/voxmill/quarry/pkg/mesh"
)

func prismMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	p, err := geom.NewPrism(geom.Vec3{}, geom.Vec3{X: 1, Y: 1, Z: 1})
	if err != nil {
		t.Fatalf("NewPrism returned error: %v", err)
	}
	m := &mesh.Mesh{}
	m.Append(p.Faces(nil)...)
	return m
}

func TestExportWritesGLBContainer(t *testing.T) {
	m := prismMesh(t)
	path := filepath.Join(t.TempDir(), "cube.glb")
	if err := New().Export(m, path); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(data) < 12 {
		t.Fatalf("file too short for a GLB header: %d bytes", len(data))
	}
	if string(data[0:4]) != "glTF" {
		t.Errorf("magic = %q, want %q", data[0:4], "glTF")
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != 2 {
		t.Errorf("container version = %d, want 2", v)
	}
	if n := binary.LittleEndian.Uint32(data[8:12]); int(n) != len(data) {
		t.Errorf("length field = %d, want file size %d", n, len(data))
	}
}

func TestExportDocumentShape(t *testing.T) {
	m := prismMesh(t)
	path := filepath.Join(t.TempDir(), "cube.glb")
	if err := New().Export(m, path); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		t.Fatalf("reading back GLB: %v", err)
	}
	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Primitives) != 1 {
		t.Fatalf("want 1 mesh with 1 primitive, got %d meshes", len(doc.Meshes))
	}
	prim := doc.Meshes[0].Primitives[0]
	if _, ok := prim.Attributes[gltf.POSITION]; !ok {
		t.Error("primitive missing POSITION attribute")
	}
	if _, ok := prim.Attributes[gltf.NORMAL]; !ok {
		t.Error("primitive missing NORMAL attribute")
	}
	if prim.Indices == nil {
		t.Fatal("primitive has no index accessor")
	}
	// 12 triangles, 3 unshared vertices each.
	if acc := doc.Accessors[*prim.Indices]; acc.Count != 36 {
		t.Errorf("index accessor count = %d, want 36", acc.Count)
	}
	if acc := doc.Accessors[prim.Attributes[gltf.POSITION]]; acc.Count != 36 {
		t.Errorf("position accessor count = %d, want 36", acc.Count)
	}
	if len(doc.Materials) != 1 {
		t.Fatalf("want 1 material, got %d", len(doc.Materials))
	}
}

func TestExportBaseColor(t *testing.T) {
	e := New()
	e.BaseColor = [4]float32{1, 0, 0, 1}
	path := filepath.Join(t.TempDir(), "red.glb")
	if err := e.Export(prismMesh(t), path); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	doc, err := gltf.Open(path)
	if err != nil {
		t.Fatalf("reading back GLB: %v", err)
	}
	pbr := doc.Materials[0].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		t.Fatal("material has no base color factor")
	}
	if *pbr.BaseColorFactor != [4]float32{1, 0, 0, 1} {
		t.Errorf("base color = %v, want [1 0 0 1]", *pbr.BaseColorFactor)
	}
}

func TestExportRefusesEmptyMesh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.glb")
	if err := New().Export(&mesh.Mesh{}, path); err == nil {
		t.Error("expected error for empty mesh")
	}
	if err := New().Export(nil, path); err == nil {
		t.Error("expected error for nil mesh")
	}
}

func TestFormat(t *testing.T) {
	if got := New().Format(); got != "glb" {
		t.Errorf("Format() = %q, want %q", got, "glb")
	}
}
