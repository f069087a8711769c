package esp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

// Master names a master file dependency and its byte size, both recorded in
// the output header.
type Master struct {
	Name string
	Size uint64
}

// OutputMeta carries the header fields of the merged plugin.
type OutputMeta struct {
	Author      string
	Description string
	Masters     []Master
}

// Serialize encodes a merged landmass as a plugin file. The landmass texture
// table becomes the plugin's local LTEX table, so texture indices serialize
// as-is: global ids are already in the on-disk 1-based convention.
//
// Height deltas that no longer fit a signed byte are clamped and reported;
// everything else serializes exactly.
func Serialize(m *landscape.Landmass, meta OutputMeta) ([]byte, []*landscape.UserError) {
	var warnings []*landscape.UserError
	var out bytes.Buffer

	entries := m.Textures.Entries()
	coords := m.Coords()

	writeRecord(&out, tagTES3, encodeHeader(meta, uint32(len(entries)+len(coords))))
	for _, e := range entries {
		writeRecord(&out, tagLTEX, encodeLandTexture(e))
	}
	for _, c := range coords {
		body, clamped := encodeLand(m.Get(c))
		if clamped {
			warnings = append(warnings, &landscape.UserError{
				Code:       landscape.ErrCodeLayerShape,
				Message:    "height step exceeds the storable range and was clamped",
				Context:    c.String(),
				Suggestion: "the source plugins disagree sharply here; review the conflict report",
			})
		}
		writeRecord(&out, tagLAND, body)
	}

	return out.Bytes(), warnings
}

func encodeHeader(meta OutputMeta, records uint32) []byte {
	var hedr [sizeHEDR]byte
	binary.LittleEndian.PutUint32(hedr[0:4], math.Float32bits(headerVersion))
	binary.LittleEndian.PutUint32(hedr[4:8], fileTypePlugin)
	copy(hedr[8:8+32], meta.Author)
	copy(hedr[40:40+256], meta.Description)
	binary.LittleEndian.PutUint32(hedr[296:300], records)

	var body bytes.Buffer
	writeSubrecord(&body, subHEDR, hedr[:])
	for _, m := range meta.Masters {
		writeSubrecord(&body, subMAST, append([]byte(m.Name), 0))
		var size [8]byte
		binary.LittleEndian.PutUint64(size[:], m.Size)
		writeSubrecord(&body, subDATA, size[:])
	}
	return body.Bytes()
}

func encodeLandTexture(e landscape.LandTexture) []byte {
	var body bytes.Buffer
	writeSubrecord(&body, subNAME, append([]byte(e.EditorID), 0))
	var intv [4]byte
	binary.LittleEndian.PutUint32(intv[:], e.GlobalID-1)
	writeSubrecord(&body, subINTV, intv[:])
	writeSubrecord(&body, subDATA, append([]byte(e.Filename), 0))
	return body.Bytes()
}

func encodeLand(l *landscape.Landscape) (body []byte, clamped bool) {
	var buf bytes.Buffer

	var intv [8]byte
	binary.LittleEndian.PutUint32(intv[0:4], uint32(l.Coord.X))
	binary.LittleEndian.PutUint32(intv[4:8], uint32(l.Coord.Y))
	writeSubrecord(&buf, subINTV, intv[:])

	var flags uint32
	if l.Height != nil || l.Normals != nil || l.WorldMap != nil {
		flags |= FlagGeometry
	}
	if l.Colors != nil {
		flags |= FlagColors
	}
	if l.Textures != nil {
		flags |= FlagTextures
	}
	var data [4]byte
	binary.LittleEndian.PutUint32(data[:], flags)
	writeSubrecord(&buf, subDATA, data[:])

	if l.Normals != nil {
		raw := make([]byte, sizeVNML)
		for i := 0; i < landscape.GridSize; i++ {
			for j := 0; j < landscape.GridSize; j++ {
				off := (i*landscape.GridSize + j) * 3
				raw[off] = byte(l.Normals[i][j][0])
				raw[off+1] = byte(l.Normals[i][j][1])
				raw[off+2] = byte(l.Normals[i][j][2])
			}
		}
		writeSubrecord(&buf, subVNML, raw)
	}

	if l.Height != nil {
		deltas, c := l.Height.EncodeHeights()
		clamped = c
		raw := make([]byte, sizeVHGT)
		binary.LittleEndian.PutUint32(raw[0:4], math.Float32bits(l.Height.Offset))
		for i := 0; i < landscape.GridSize; i++ {
			for j := 0; j < landscape.GridSize; j++ {
				raw[4+i*landscape.GridSize+j] = byte(deltas[i][j])
			}
		}
		copy(raw[len(raw)-3:], l.Height.Trailer[:])
		writeSubrecord(&buf, subVHGT, raw)
	}

	if l.WorldMap != nil {
		raw := make([]byte, sizeWNAM)
		for i := 0; i < landscape.WorldMapSize; i++ {
			for j := 0; j < landscape.WorldMapSize; j++ {
				raw[i*landscape.WorldMapSize+j] = l.WorldMap[i][j]
			}
		}
		writeSubrecord(&buf, subWNAM, raw)
	}

	if l.Colors != nil {
		raw := make([]byte, sizeVCLR)
		for i := 0; i < landscape.GridSize; i++ {
			for j := 0; j < landscape.GridSize; j++ {
				off := (i*landscape.GridSize + j) * 3
				raw[off] = l.Colors[i][j][0]
				raw[off+1] = l.Colors[i][j][1]
				raw[off+2] = l.Colors[i][j][2]
			}
		}
		writeSubrecord(&buf, subVCLR, raw)
	}

	if l.Textures != nil {
		raw := make([]byte, sizeVTEX)
		for i := 0; i < landscape.TextureGridSize; i++ {
			for j := 0; j < landscape.TextureGridSize; j++ {
				off := (i*landscape.TextureGridSize + j) * 2
				binary.LittleEndian.PutUint16(raw[off:off+2], l.Textures[i][j])
			}
		}
		writeSubrecord(&buf, subVTEX, raw)
	}

	return buf.Bytes(), clamped
}

func writeRecord(out *bytes.Buffer, tag string, body []byte) {
	if len(tag) != 4 {
		panic(fmt.Sprintf("record tag %q is not 4 bytes", tag))
	}
	out.WriteString(tag)
	var head [12]byte
	binary.LittleEndian.PutUint32(head[0:4], uint32(len(body)))
	out.Write(head[:])
	out.Write(body)
}

func writeSubrecord(out *bytes.Buffer, tag string, data []byte) {
	if len(tag) != 4 {
		panic(fmt.Sprintf("subrecord tag %q is not 4 bytes", tag))
	}
	out.WriteString(tag)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(data)))
	out.Write(size[:])
	out.Write(data)
}
