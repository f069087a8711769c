package esp

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

// Parse decodes a plugin file. Layer-shape mismatches inside LAND records
// are reported as warnings with the offending layer skipped; structural
// damage (truncated records, bad subrecord framing) fails the whole plugin.
func Parse(name string, data []byte) (*Plugin, []*landscape.UserError, error) {
	p := &Plugin{Name: name}
	var warnings []*landscape.UserError

	cur := &cursor{data: data}
	for cur.remaining() > 0 {
		tag, body, flags, err := cur.record()
		if err != nil {
			return nil, warnings, &landscape.UserError{
				Code:       landscape.ErrCodePluginMalformed,
				Message:    "plugin file is damaged",
				Context:    name,
				Suggestion: "re-export the plugin from the editor or remove it from the load order",
				Underlying: err,
			}
		}
		_ = flags

		switch tag {
		case tagTES3:
			if err := parseHeader(p, body); err != nil {
				return nil, warnings, &landscape.UserError{
					Code:       landscape.ErrCodePluginMalformed,
					Message:    "plugin header is damaged",
					Context:    name,
					Underlying: err,
				}
			}
		case tagLTEX:
			rec, err := parseLandTexture(body)
			if err != nil {
				return nil, warnings, wrapRecordErr(name, tagLTEX, err)
			}
			p.LandTextures = append(p.LandTextures, rec)
		case tagLAND:
			rec, ws, err := parseLand(name, body)
			if err != nil {
				return nil, warnings, wrapRecordErr(name, tagLAND, err)
			}
			warnings = append(warnings, ws...)
			p.Landscapes = append(p.Landscapes, rec)
		case tagCELL:
			rec, ok := parseCell(body)
			if ok {
				p.Cells = append(p.Cells, rec)
			}
		default:
			p.SkippedRecords++
		}
	}

	return p, warnings, nil
}

func wrapRecordErr(name, tag string, err error) *landscape.UserError {
	return &landscape.UserError{
		Code:       landscape.ErrCodePluginMalformed,
		Message:    fmt.Sprintf("%s record is damaged", tag),
		Context:    name,
		Suggestion: "re-export the plugin from the editor or remove it from the load order",
		Underlying: err,
	}
}

func parseHeader(p *Plugin, body []byte) error {
	cur := &cursor{data: body}
	var pendingMaster string
	for cur.remaining() > 0 {
		tag, data, err := cur.subrecord()
		if err != nil {
			return err
		}
		switch tag {
		case subHEDR:
			if len(data) != sizeHEDR {
				return fmt.Errorf("HEDR has %d bytes, want %d", len(data), sizeHEDR)
			}
			p.Author = cstring(data[8 : 8+32])
			p.Description = cstring(data[40 : 40+256])
		case subMAST:
			pendingMaster = cstring(data)
		case subDATA:
			// Master size field; the name was carried by the preceding MAST.
			if pendingMaster != "" {
				p.Masters = append(p.Masters, pendingMaster)
				pendingMaster = ""
			}
		}
	}
	if pendingMaster != "" {
		p.Masters = append(p.Masters, pendingMaster)
	}
	return nil
}

func parseLandTexture(body []byte) (LandTextureRecord, error) {
	var rec LandTextureRecord
	cur := &cursor{data: body}
	for cur.remaining() > 0 {
		tag, data, err := cur.subrecord()
		if err != nil {
			return rec, err
		}
		switch tag {
		case subNAME:
			rec.EditorID = cstring(data)
		case subINTV:
			if len(data) != 4 {
				return rec, fmt.Errorf("LTEX INTV has %d bytes, want 4", len(data))
			}
			rec.LocalID = binary.LittleEndian.Uint32(data)
		case subDATA:
			rec.Filename = cstring(data)
		}
	}
	return rec, nil
}

func parseLand(plugin string, body []byte) (LandRecord, []*landscape.UserError, error) {
	var rec LandRecord
	var warnings []*landscape.UserError

	shapeWarn := func(layer string, got, want int) {
		warnings = append(warnings, &landscape.UserError{
			Code:    landscape.ErrCodeLayerShape,
			Message: fmt.Sprintf("%s layer has %d bytes, want %d; layer skipped", layer, got, want),
			Context: fmt.Sprintf("%s %s", plugin, rec.Coord),
		})
	}

	cur := &cursor{data: body}
	for cur.remaining() > 0 {
		tag, data, err := cur.subrecord()
		if err != nil {
			return rec, warnings, err
		}
		switch tag {
		case subINTV:
			if len(data) != 8 {
				return rec, warnings, fmt.Errorf("LAND INTV has %d bytes, want 8", len(data))
			}
			rec.Coord = landscape.CellCoord{
				X: int32(binary.LittleEndian.Uint32(data[0:4])),
				Y: int32(binary.LittleEndian.Uint32(data[4:8])),
			}
		case subDATA:
			if len(data) != 4 {
				return rec, warnings, fmt.Errorf("LAND DATA has %d bytes, want 4", len(data))
			}
			rec.Flags = binary.LittleEndian.Uint32(data)
		case subVNML:
			if len(data) != sizeVNML {
				shapeWarn("normal", len(data), sizeVNML)
				continue
			}
			n := new(landscape.NormalField)
			for i := 0; i < landscape.GridSize; i++ {
				for j := 0; j < landscape.GridSize; j++ {
					off := (i*landscape.GridSize + j) * 3
					n[i][j] = [3]int8{int8(data[off]), int8(data[off+1]), int8(data[off+2])}
				}
			}
			rec.Normals = n
		case subVHGT:
			if len(data) != sizeVHGT {
				shapeWarn("height", len(data), sizeVHGT)
				continue
			}
			offset := math.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))
			var deltas [landscape.GridSize][landscape.GridSize]int8
			for i := 0; i < landscape.GridSize; i++ {
				for j := 0; j < landscape.GridSize; j++ {
					deltas[i][j] = int8(data[4+i*landscape.GridSize+j])
				}
			}
			var trailer [3]byte
			copy(trailer[:], data[len(data)-3:])
			rec.Heights = landscape.DecodeHeights(offset, &deltas, trailer)
		case subWNAM:
			if len(data) != sizeWNAM {
				shapeWarn("world map", len(data), sizeWNAM)
				continue
			}
			w := new(landscape.MapField)
			for i := 0; i < landscape.WorldMapSize; i++ {
				for j := 0; j < landscape.WorldMapSize; j++ {
					w[i][j] = data[i*landscape.WorldMapSize+j]
				}
			}
			rec.WorldMap = w
		case subVCLR:
			if len(data) != sizeVCLR {
				shapeWarn("vertex color", len(data), sizeVCLR)
				continue
			}
			c := new(landscape.ColorField)
			for i := 0; i < landscape.GridSize; i++ {
				for j := 0; j < landscape.GridSize; j++ {
					off := (i*landscape.GridSize + j) * 3
					c[i][j] = [3]uint8{data[off], data[off+1], data[off+2]}
				}
			}
			rec.Colors = c
		case subVTEX:
			if len(data) != sizeVTEX {
				shapeWarn("texture index", len(data), sizeVTEX)
				continue
			}
			t := new([landscape.TextureGridSize][landscape.TextureGridSize]uint16)
			for i := 0; i < landscape.TextureGridSize; i++ {
				for j := 0; j < landscape.TextureGridSize; j++ {
					off := (i*landscape.TextureGridSize + j) * 2
					t[i][j] = binary.LittleEndian.Uint16(data[off : off+2])
				}
			}
			rec.RawTextures = t
		}
	}
	return rec, warnings, nil
}

func parseCell(body []byte) (CellRecord, bool) {
	var rec CellRecord
	sawData := false
	cur := &cursor{data: body}
	for cur.remaining() > 0 {
		tag, data, err := cur.subrecord()
		if err != nil {
			return rec, false
		}
		switch tag {
		case subNAME:
			rec.Name = cstring(data)
		case subDATA:
			if len(data) != 12 {
				return rec, false
			}
			rec.Flags = binary.LittleEndian.Uint32(data[0:4])
			rec.X = int32(binary.LittleEndian.Uint32(data[4:8]))
			rec.Y = int32(binary.LittleEndian.Uint32(data[8:12]))
			sawData = true
		}
	}
	return rec, sawData
}

// cursor walks a byte slice of records or subrecords.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) remaining() int {
	return len(c.data) - c.pos
}

// record reads one record header and returns its tag, body and flags.
func (c *cursor) record() (tag string, body []byte, flags uint32, err error) {
	if c.remaining() < 16 {
		return "", nil, 0, fmt.Errorf("truncated record header at offset %d", c.pos)
	}
	tag = string(c.data[c.pos : c.pos+4])
	size := int(binary.LittleEndian.Uint32(c.data[c.pos+4 : c.pos+8]))
	flags = binary.LittleEndian.Uint32(c.data[c.pos+12 : c.pos+16])
	c.pos += 16
	if c.remaining() < size {
		return "", nil, 0, fmt.Errorf("record %s claims %d bytes, %d remain", tag, size, c.remaining())
	}
	body = c.data[c.pos : c.pos+size]
	c.pos += size
	return tag, body, flags, nil
}

// subrecord reads one subrecord and returns its tag and data.
func (c *cursor) subrecord() (tag string, data []byte, err error) {
	if c.remaining() < 8 {
		return "", nil, fmt.Errorf("truncated subrecord header at offset %d", c.pos)
	}
	tag = string(c.data[c.pos : c.pos+4])
	size := int(binary.LittleEndian.Uint32(c.data[c.pos+4 : c.pos+8]))
	c.pos += 8
	if c.remaining() < size {
		return "", nil, fmt.Errorf("subrecord %s claims %d bytes, %d remain", tag, size, c.remaining())
	}
	data = c.data[c.pos : c.pos+size]
	c.pos += size
	return tag, data, nil
}

// cstring trims a zero-terminated byte string.
func cstring(data []byte) string {
	s := string(data)
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s
}
