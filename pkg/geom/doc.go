// Package geom defines the primitive geometry for Quarry voxel grids:
// axis directions, vectors, triangles, and axis-aligned rectangular
// prisms that emit their faces as winding-consistent triangle pairs.
package geom
