// Package export writes extracted boundary meshes to 3D file formats.
// Each format is a backend in its own subpackage; ForPath selects one
// from a destination filename.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/voxmill/quarry/pkg/export/glb"
	"github.com/voxmill/quarry/pkg/export/stl"
	"github.com/voxmill/quarry/pkg/mesh"
)

// Exporter writes a mesh to a file in one concrete format.
type Exporter interface {
	// Format returns the short lowercase format name, e.g. "stl".
	Format() string

	// Export writes m to path. Backends refuse empty meshes.
	Export(m *mesh.Mesh, path string) error
}

// Compile-time checks that every backend satisfies Exporter.
var (
	_ Exporter = (*stl.Exporter)(nil)
	_ Exporter = (*glb.Exporter)(nil)
)

// ForPath selects an exporter from the extension of path.
func ForPath(path string) (Exporter, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".stl":
		return stl.New(), nil
	case ".glb":
		return glb.New(), nil
	default:
		return nil, fmt.Errorf("export: no backend for %q (want .stl or .glb)", ext)
	}
}
