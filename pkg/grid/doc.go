// Package grid implements the voxel adjacency graph at the heart of
// Quarry. A Graph owns a dense 3D array of cells built from coordinate
// breakpoints, where every cell holds an optional prism and a map of
// live links to its neighbors. Deleting a cell severs the neighbors'
// links back to it, so extraction can decide per face whether it is
// exterior (render) or interior (suppress) by looking only at the
// owning cell's link map.
package grid
