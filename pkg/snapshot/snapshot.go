// Package snapshot persists grid occupancy to a compact binary file.
//
// Format (QRY1):
//
//	"QRY1"  magic
//	uint8   format version (1)
//	uint32  compressed payload length
//	[]byte  zstd-compressed payload
//	uint64  xxhash64 of the compressed payload
//
// All integers are little-endian. The payload holds the three cell
// counts as uint32, the breakpoint slices as float64 runs, and an
// occupancy bitmap in flat (x*ny+y)*nz+z order, LSB first within each
// byte. Loading rebuilds the grid by deleting every absent cell from a
// fresh full grid, so the loaded link state matches a live carve that
// reached the same occupancy.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/voxmill/quarry/pkg/grid"
)

const (
	magic      = "QRY1"
	version    = 1
	headerSize = 4 + 1 + 4
	maxCells   = 1 << 31
)

// CorruptError reports a snapshot that failed structural or checksum
// validation.
type CorruptError struct {
	Reason string
}

func (e *CorruptError) Error() string {
	return "snapshot: corrupt: " + e.Reason
}

// Write serializes g to w.
func Write(g *grid.Graph, w io.Writer) error {
	nx, ny, nz := g.Dims()
	xs, ys, zs := g.Breakpoints()

	var payload bytes.Buffer
	_ = binary.Write(&payload, binary.LittleEndian, uint32(nx))
	_ = binary.Write(&payload, binary.LittleEndian, uint32(ny))
	_ = binary.Write(&payload, binary.LittleEndian, uint32(nz))
	for _, pts := range [][]float64{xs, ys, zs} {
		_ = binary.Write(&payload, binary.LittleEndian, pts)
	}

	bitmap := make([]byte, (g.CellCount()+7)/8)
	i := 0
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				if g.Present(x, y, z) {
					bitmap[i/8] |= 1 << (i % 8)
				}
				i++
			}
		}
	}
	payload.Write(bitmap)

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()
	compressed := enc.EncodeAll(payload.Bytes(), nil)

	var out bytes.Buffer
	out.WriteString(magic)
	_ = binary.Write(&out, binary.LittleEndian, uint8(version))
	_ = binary.Write(&out, binary.LittleEndian, uint32(len(compressed)))
	out.Write(compressed)
	_ = binary.Write(&out, binary.LittleEndian, xxhash.Sum64(compressed))

	_, err = w.Write(out.Bytes())
	return err
}

// Read parses a snapshot from r and rebuilds the grid.
func Read(r io.Reader) (*grid.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize || string(data[:4]) != magic {
		return nil, &CorruptError{Reason: "not a QRY1 snapshot"}
	}
	if v := data[4]; v != version {
		return nil, fmt.Errorf("snapshot: unsupported version %d", v)
	}
	plen := binary.LittleEndian.Uint32(data[5:9])
	if uint64(len(data)) != uint64(headerSize)+uint64(plen)+8 {
		return nil, &CorruptError{Reason: fmt.Sprintf("payload length %d does not match file size %d", plen, len(data))}
	}
	compressed := data[headerSize : headerSize+int(plen)]
	sum := binary.LittleEndian.Uint64(data[headerSize+int(plen):])
	if xxhash.Sum64(compressed) != sum {
		return nil, &CorruptError{Reason: "checksum mismatch"}
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	payload, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, &CorruptError{Reason: fmt.Sprintf("zstd: %v", err)}
	}
	return parsePayload(payload)
}

func parsePayload(payload []byte) (*grid.Graph, error) {
	pr := bytes.NewReader(payload)
	var nx32, ny32, nz32 uint32
	for _, p := range []*uint32{&nx32, &ny32, &nz32} {
		if err := binary.Read(pr, binary.LittleEndian, p); err != nil {
			return nil, &CorruptError{Reason: "truncated dimensions"}
		}
	}
	nx, ny, nz := int(nx32), int(ny32), int(nz32)
	cells := uint64(nx32) * uint64(ny32) * uint64(nz32)
	if cells == 0 || cells > maxCells {
		return nil, &CorruptError{Reason: fmt.Sprintf("implausible dimensions %dx%dx%d", nx, ny, nz)}
	}
	want := 12 + 8*(uint64(nx)+uint64(ny)+uint64(nz)+3) + (cells+7)/8
	if uint64(len(payload)) != want {
		return nil, &CorruptError{Reason: fmt.Sprintf("payload size %d does not match dimensions", len(payload))}
	}

	axes := make([][]float64, 3)
	for i, n := range []int{nx, ny, nz} {
		pts := make([]float64, n+1)
		if err := binary.Read(pr, binary.LittleEndian, pts); err != nil {
			return nil, &CorruptError{Reason: "truncated breakpoints"}
		}
		axes[i] = pts
	}
	g, err := grid.New(axes[0], axes[1], axes[2])
	if err != nil {
		return nil, &CorruptError{Reason: fmt.Sprintf("invalid breakpoints: %v", err)}
	}

	bitmap := make([]byte, (cells+7)/8)
	if _, err := io.ReadFull(pr, bitmap); err != nil {
		return nil, &CorruptError{Reason: "truncated bitmap"}
	}
	i := 0
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				if bitmap[i/8]&(1<<(i%8)) == 0 {
					if _, err := g.Delete(x, y, z); err != nil {
						return nil, err
					}
				}
				i++
			}
		}
	}
	return g, nil
}

// Save writes g to a snapshot file at path.
func Save(g *grid.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a snapshot file and rebuilds the grid.
func Load(path string) (*grid.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
