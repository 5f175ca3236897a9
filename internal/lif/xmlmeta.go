package lif

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// The LIF XML header is a tree of <Element> nodes. Leaf elements that
// carry an <Image> child describe one series; the <Memory> sibling names
// the memory block holding its pixel data.

type xmlHeader struct {
	XMLName xml.Name     `xml:"LMSDataContainerHeader"`
	Version int          `xml:"Version,attr"`
	Element []xmlElement `xml:"Element"`
}

type xmlElement struct {
	Name     string       `xml:"Name,attr"`
	Children []xmlElement `xml:"Children>Element"`
	Image    *xmlImage    `xml:"Data>Image"`
	Memory   *xmlMemory   `xml:"Memory"`
}

type xmlImage struct {
	Channels   []xmlChannel   `xml:"ImageDescription>Channels>ChannelDescription"`
	Dimensions []xmlDimension `xml:"ImageDescription>Dimensions>DimensionDescription"`
}

type xmlChannel struct {
	Resolution int    `xml:"Resolution,attr"`
	BytesInc   uint64 `xml:"BytesInc,attr"`
}

type xmlDimension struct {
	DimID            int    `xml:"DimID,attr"`
	NumberOfElements int    `xml:"NumberOfElements,attr"`
	BytesInc         uint64 `xml:"BytesInc,attr"`
}

// Dimension IDs used by the LIF format.
const (
	dimX = 1
	dimY = 2
	dimZ = 3
)

// parseHeader parses the XML header and collects series metadata.
func parseHeader(data string) (int, []SeriesInfo, error) {
	var hdr xmlHeader
	if err := xml.Unmarshal([]byte(data), &hdr); err != nil {
		return 0, nil, fmt.Errorf("%w: bad XML header: %v", ErrFormat, err)
	}

	var series []SeriesInfo
	for _, el := range hdr.Element {
		collectSeries(el, nil, &series)
	}
	return hdr.Version, series, nil
}

// collectSeries walks the element tree depth-first, accumulating the name
// path so nested series get unambiguous names.
func collectSeries(el xmlElement, path []string, out *[]SeriesInfo) {
	path = append(path, el.Name)

	if el.Image != nil && el.Memory != nil && el.Memory.MemoryBlockID != "" {
		info, err := buildSeriesInfo(el, path)
		if err == nil {
			*out = append(*out, info)
		}
	}

	for _, child := range el.Children {
		collectSeries(child, path, out)
	}
}

type xmlMemory struct {
	Size          uint64 `xml:"Size,attr"`
	MemoryBlockID string `xml:"MemoryBlockID,attr"`
}

// buildSeriesInfo converts one image element into SeriesInfo.
func buildSeriesInfo(el xmlElement, path []string) (SeriesInfo, error) {
	rawName := strings.Join(path, "_")
	info := SeriesInfo{
		Name:       SanitizeName(rawName),
		RawName:    rawName,
		ZSlices:    1,
		MemoryID:   el.Memory.MemoryBlockID,
		MemorySize: el.Memory.Size,
	}

	for _, ch := range el.Image.Channels {
		bits := ch.Resolution
		if bits == 0 {
			bits = 8
		}
		info.Channels = append(info.Channels, ChannelInfo{
			BitDepth: bits,
			BytesInc: ch.BytesInc,
		})
	}

	for _, dim := range el.Image.Dimensions {
		switch dim.DimID {
		case dimX:
			info.Width = dim.NumberOfElements
			info.XBytesInc = dim.BytesInc
		case dimY:
			info.Height = dim.NumberOfElements
			info.YBytesInc = dim.BytesInc
		case dimZ:
			info.ZSlices = dim.NumberOfElements
			info.ZBytesInc = dim.BytesInc
		}
	}

	if info.Width <= 0 || info.Height <= 0 || len(info.Channels) == 0 {
		return SeriesInfo{}, fmt.Errorf("%w: series %q missing dimensions", ErrFormat, rawName)
	}
	return info, nil
}

// SanitizeName replaces path-unsafe characters in a series name so it can
// be used directly in output filenames.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r < 0x20:
			b.WriteByte('_')
		case strings.ContainsRune(`/\:*?"<>| `, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
