// Package liftest builds minimal LIF containers for tests. The files it
// writes carry a version-2 header and one memory block per series, enough
// to exercise the reader without real microscope output.
package liftest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"testing"
	"unicode/utf16"
)

// Series describes one synthetic image series. Pixel values are given on
// the channel's native scale: 0-255 for 8-bit, 0-65535 for 16-bit.
type Series struct {
	Name     string
	Width    int
	Height   int
	BitDepth int // 8 or 16

	// Planes holds raster-order pixel values indexed [channel][slice].
	Planes [][][]uint16
}

// Write builds a container file holding the given series and writes it to
// path. Layout within each memory block is channel-major: all slices of
// channel 0, then all slices of channel 1, and so on.
func Write(t *testing.T, path string, series ...Series) {
	t.Helper()

	var buf bytes.Buffer
	writeTextBlock(&buf, headerXML(series))
	for i, s := range series {
		writeMemBlock(&buf, blockID(i), pixelBytes(s))
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write container: %v", err)
	}
}

func blockID(i int) string {
	return fmt.Sprintf("MemBlock_%d", i)
}

// headerXML renders the metadata header for the given series.
func headerXML(series []Series) string {
	var b strings.Builder
	b.WriteString(`<LMSDataContainerHeader Version="2">`)
	for i, s := range series {
		bpp := s.BitDepth / 8
		channels := len(s.Planes)
		slices := 1
		if channels > 0 {
			slices = len(s.Planes[0])
		}
		channelSize := uint64(slices * s.Width * s.Height * bpp)

		fmt.Fprintf(&b, `<Element Name="%s">`, s.Name)
		b.WriteString(`<Data><Image><ImageDescription><Channels>`)
		for c := 0; c < channels; c++ {
			fmt.Fprintf(&b, `<ChannelDescription Resolution="%d" BytesInc="%d"/>`,
				s.BitDepth, uint64(c)*channelSize)
		}
		b.WriteString(`</Channels><Dimensions>`)
		fmt.Fprintf(&b, `<DimensionDescription DimID="1" NumberOfElements="%d" BytesInc="%d"/>`,
			s.Width, bpp)
		fmt.Fprintf(&b, `<DimensionDescription DimID="2" NumberOfElements="%d" BytesInc="%d"/>`,
			s.Height, s.Width*bpp)
		if slices > 1 {
			fmt.Fprintf(&b, `<DimensionDescription DimID="3" NumberOfElements="%d" BytesInc="%d"/>`,
				slices, s.Width*s.Height*bpp)
		}
		b.WriteString(`</Dimensions></ImageDescription></Image></Data>`)
		fmt.Fprintf(&b, `<Memory Size="%d" MemoryBlockID="%s"/>`,
			uint64(channels)*channelSize, blockID(i))
		b.WriteString(`</Element>`)
	}
	b.WriteString(`</LMSDataContainerHeader>`)
	return b.String()
}

// pixelBytes flattens the series pixel data into memory-block layout.
func pixelBytes(s Series) []byte {
	bpp := s.BitDepth / 8
	var out []byte
	for _, slices := range s.Planes {
		for _, pix := range slices {
			for _, v := range pix {
				if bpp == 1 {
					out = append(out, uint8(v))
				} else {
					out = binary.LittleEndian.AppendUint16(out, v)
				}
			}
		}
	}
	return out
}

func writeTextBlock(buf *bytes.Buffer, text string) {
	units := utf16.Encode([]rune(text))
	binary.Write(buf, binary.LittleEndian, uint32(0x70))
	binary.Write(buf, binary.LittleEndian, uint32(1+4+2*len(units)))
	buf.WriteByte(0x2A)
	binary.Write(buf, binary.LittleEndian, uint32(len(units)))
	writeUTF16(buf, units)
}

func writeMemBlock(buf *bytes.Buffer, id string, data []byte) {
	units := utf16.Encode([]rune(id))
	binary.Write(buf, binary.LittleEndian, uint32(0x70))
	binary.Write(buf, binary.LittleEndian, uint32(1+8+1+4+2*len(units)))
	buf.WriteByte(0x2A)
	binary.Write(buf, binary.LittleEndian, uint64(len(data)))
	buf.WriteByte(0x2A)
	binary.Write(buf, binary.LittleEndian, uint32(len(units)))
	writeUTF16(buf, units)
	buf.Write(data)
}

func writeUTF16(buf *bytes.Buffer, units []uint16) {
	for _, u := range units {
		binary.Write(buf, binary.LittleEndian, u)
	}
}
