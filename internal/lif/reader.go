package lif

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unicode/utf16"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/internal/stack"
)

const (
	blockMagic byte = 0x70 // Leading marker of every LIF block
	testByte   byte = 0x2A // Sanity byte inside block headers
)

// Open opens a LIF container, parses its XML header and indexes the
// memory blocks holding pixel data. The returned Container keeps the file
// open; callers must Close it.
func Open(path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open container: %w", err)
	}

	c := &Container{
		path:   path,
		file:   f,
		blocks: make(map[string]memBlock),
	}

	if err := c.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	if err := c.indexMemoryBlocks(); err != nil {
		f.Close()
		return nil, err
	}

	return c, nil
}

// readHeader reads the leading XML block and parses series metadata.
func (c *Container) readHeader() error {
	xmlText, err := readTextBlock(c.file)
	if err != nil {
		return err
	}

	version, series, err := parseHeader(xmlText)
	if err != nil {
		return err
	}
	c.version = version
	c.series = series
	return nil
}

// readTextBlock reads one block framed as magic/size/test-byte followed by
// a UTF-16LE string with a character-count prefix.
func readTextBlock(f *os.File) (string, error) {
	var head struct {
		Magic uint32
		Size  uint32
	}
	if err := binary.Read(f, binary.LittleEndian, &head); err != nil {
		return "", fmt.Errorf("%w: truncated block header", ErrFormat)
	}
	if head.Magic != uint32(blockMagic) {
		return "", fmt.Errorf("%w: bad block magic 0x%x", ErrFormat, head.Magic)
	}

	var tb byte
	if err := binary.Read(f, binary.LittleEndian, &tb); err != nil || tb != testByte {
		return "", fmt.Errorf("%w: missing test byte", ErrFormat)
	}

	var nChars uint32
	if err := binary.Read(f, binary.LittleEndian, &nChars); err != nil {
		return "", fmt.Errorf("%w: truncated text block", ErrFormat)
	}

	return readUTF16(f, nChars)
}

// readUTF16 reads n UTF-16LE code units and decodes them.
func readUTF16(f *os.File, n uint32) (string, error) {
	raw := make([]byte, 2*n)
	if _, err := io.ReadFull(f, raw); err != nil {
		return "", fmt.Errorf("%w: truncated UTF-16 text", ErrFormat)
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	return string(utf16.Decode(units)), nil
}

// indexMemoryBlocks scans the rest of the file, recording the offset and
// size of every named memory block without reading the pixel data.
func (c *Container) indexMemoryBlocks() error {
	f := c.file
	for {
		var head struct {
			Magic uint32
			Size  uint32
		}
		err := binary.Read(f, binary.LittleEndian, &head)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: truncated memory block header", ErrFormat)
		}
		if head.Magic != uint32(blockMagic) {
			return fmt.Errorf("%w: bad memory block magic 0x%x", ErrFormat, head.Magic)
		}

		var tb byte
		if err := binary.Read(f, binary.LittleEndian, &tb); err != nil || tb != testByte {
			return fmt.Errorf("%w: missing memory test byte", ErrFormat)
		}

		// Version 1 containers store the block size as 32 bits.
		var memSize uint64
		if c.version >= 2 {
			if err := binary.Read(f, binary.LittleEndian, &memSize); err != nil {
				return fmt.Errorf("%w: truncated memory size", ErrFormat)
			}
		} else {
			var sz uint32
			if err := binary.Read(f, binary.LittleEndian, &sz); err != nil {
				return fmt.Errorf("%w: truncated memory size", ErrFormat)
			}
			memSize = uint64(sz)
		}

		if err := binary.Read(f, binary.LittleEndian, &tb); err != nil || tb != testByte {
			return fmt.Errorf("%w: missing memory ID marker", ErrFormat)
		}
		var nChars uint32
		if err := binary.Read(f, binary.LittleEndian, &nChars); err != nil {
			return fmt.Errorf("%w: truncated memory ID", ErrFormat)
		}
		id, err := readUTF16(f, nChars)
		if err != nil {
			return err
		}

		offset, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("failed to locate memory block: %w", err)
		}
		if memSize > 0 {
			c.blocks[id] = memBlock{offset: offset, size: memSize}
		}

		if _, err := f.Seek(int64(memSize), io.SeekCurrent); err != nil {
			return fmt.Errorf("%w: memory block extends past EOF", ErrFormat)
		}
	}
}

// ReadSeries reads all channel/z planes of the series at the given index,
// converting samples to 8-bit intensity. Higher bit depths are scaled down;
// the pipeline operates on the 0-255 scale throughout.
func (c *Container) ReadSeries(index int) (*stack.Series, error) {
	if index < 0 || index >= len(c.series) {
		return nil, fmt.Errorf("series index %d out of range (container has %d)", index, len(c.series))
	}
	info := c.series[index]

	block, ok := c.blocks[info.MemoryID]
	if !ok {
		return nil, fmt.Errorf("%w: series %q references missing memory block %q",
			ErrFormat, info.Name, info.MemoryID)
	}

	s := &stack.Series{
		Name:     info.Name,
		Width:    info.Width,
		Height:   info.Height,
		Channels: len(info.Channels),
		Slices:   info.ZSlices,
	}

	for ci, ch := range info.Channels {
		bpp := (ch.BitDepth + 7) / 8
		if bpp < 1 || bpp > 2 {
			return nil, fmt.Errorf("%w: unsupported bit depth %d in series %q",
				ErrFormat, ch.BitDepth, info.Name)
		}
		if info.XBytesInc != uint64(bpp) {
			return nil, fmt.Errorf("%w: non-contiguous pixel layout in series %q",
				ErrFormat, info.Name)
		}

		var planes []*stack.Plane
		for z := 0; z < info.ZSlices; z++ {
			plane, err := c.readPlane(block, info, ci, z, bpp)
			if err != nil {
				return nil, err
			}
			planes = append(planes, plane)
		}
		s.Planes = append(s.Planes, planes)
	}

	return s, nil
}

// readPlane reads one channel/slice plane from a memory block.
func (c *Container) readPlane(block memBlock, info SeriesInfo, channel, z, bpp int) (*stack.Plane, error) {
	ch := info.Channels[channel]
	rowBytes := info.Width * bpp
	raw := make([]byte, rowBytes)

	plane := stack.NewPlane(info.Width, info.Height)
	shift := uint(0)
	if ch.BitDepth > 8 {
		shift = uint(ch.BitDepth - 8)
	}

	for y := 0; y < info.Height; y++ {
		off := ch.BytesInc + uint64(z)*info.ZBytesInc + uint64(y)*info.YBytesInc
		if off+uint64(rowBytes) > block.size {
			return nil, fmt.Errorf("%w: series %q plane c%d z%d exceeds memory block",
				ErrFormat, info.Name, channel, z)
		}
		if _, err := c.file.ReadAt(raw, block.offset+int64(off)); err != nil {
			return nil, fmt.Errorf("failed to read series %q plane c%d z%d: %w",
				info.Name, channel, z, err)
		}

		dst := plane.Pix[y*info.Width:]
		if bpp == 1 {
			copy(dst[:info.Width], raw)
		} else {
			for x := 0; x < info.Width; x++ {
				v := binary.LittleEndian.Uint16(raw[2*x:])
				dst[x] = uint8(v >> shift)
			}
		}
	}

	return plane, nil
}
