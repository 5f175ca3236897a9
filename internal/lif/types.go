// Package lif reads Leica Image File (LIF) containers: multi-series
// microscopy acquisitions stored as a UTF-16 XML header followed by raw
// memory blocks. Only the subset of the format needed for channel/z-stack
// extraction is implemented.
package lif

import (
	"errors"
	"os"
)

// ErrFormat indicates a corrupt or unsupported container file.
var ErrFormat = errors.New("lif: invalid container format")

// ChannelInfo describes one acquisition channel of a series.
type ChannelInfo struct {
	BitDepth int    // Bits per sample (8 or 16 in practice)
	BytesInc uint64 // Byte offset of this channel within the memory block
}

// SeriesInfo describes one image series inside a container.
type SeriesInfo struct {
	Name     string // Sanitized name derived from acquisition metadata
	RawName  string // Name as stored in the XML header
	Width    int
	Height   int
	ZSlices  int
	Channels []ChannelInfo

	// Byte increments for stepping one pixel/row/slice in the memory block.
	XBytesInc uint64
	YBytesInc uint64
	ZBytesInc uint64

	// Memory block holding the pixel data.
	MemoryID   string
	MemorySize uint64
}

// memBlock records where a named memory block lives in the file.
type memBlock struct {
	offset int64
	size   uint64
}

// Container is an open LIF file handle.
type Container struct {
	path    string
	file    *os.File
	version int
	series  []SeriesInfo
	blocks  map[string]memBlock
}

// Path returns the path the container was opened from.
func (c *Container) Path() string {
	return c.path
}

// SeriesCount returns the number of image series in the container.
func (c *Container) SeriesCount() int {
	return len(c.series)
}

// Series returns metadata for all series in the container.
func (c *Container) Series() []SeriesInfo {
	return c.series
}

// Close releases the underlying file handle.
func (c *Container) Close() error {
	return c.file.Close()
}
