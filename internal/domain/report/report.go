// Package report turns provenance into per-plugin, per-cell, per-layer
// severity images plus a composed image of each merged cell. It yields raw
// pixel arrays; encoding and paths belong to the sink adapter.
package report

import (
	"sort"

	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
	"github.com/DavidVonDerau/merged-lands/internal/domain/merge"
)

// Image is a raw RGBA pixel array, row-major, four bytes per pixel.
type Image struct {
	Width  int
	Height int
	Pixels []byte
}

// CellImage is one rendered image with its addressing metadata.
type CellImage struct {
	// Plugin is empty for MERGED images.
	Plugin string
	Coord  landscape.CellCoord
	// Layer is one of the descriptor layer names, "vertex_normals", or
	// "MERGED".
	Layer string
	Image Image
}

// MergedLayer is the layer name used for composed cell images.
const MergedLayer = "MERGED"

// Severity palette. Untouched vertices stay transparent.
var (
	colorNone  = [4]byte{0, 200, 0, 255}
	colorMinor = [4]byte{230, 200, 0, 255}
	colorMajor = [4]byte{220, 0, 0, 255}
)

// SeverityColor returns the palette RGBA for a severity.
func SeverityColor(s merge.Severity) [4]byte {
	switch s {
	case merge.SeverityMajor:
		return colorMajor
	case merge.SeverityMinor:
		return colorMinor
	default:
		return colorNone
	}
}

// Build renders the per-plugin severity images. Plugins appear in load
// order, cells in coordinate order, layers in a fixed order; an image is
// emitted only when the plugin owns at least one vertex of the layer.
func Build(prov merge.Provenance, loadOrder []string) []CellImage {
	coords := make([]landscape.CellCoord, 0, len(prov))
	for c := range prov {
		coords = append(coords, c)
	}
	sortCoords(coords)

	var out []CellImage
	for _, plugin := range loadOrder {
		for _, c := range coords {
			cp := prov[c]
			emit := func(layer string, img Image, any bool) {
				if any {
					out = append(out, CellImage{Plugin: plugin, Coord: c, Layer: layer, Image: img})
				}
			}
			img, any := vertexGridImage(&cp.Heights, plugin)
			emit("height_map", img, any)
			img, any = vertexGridImage(&cp.Normals, plugin)
			emit("vertex_normals", img, any)
			img, any = vertexGridImage(&cp.Colors, plugin)
			emit("vertex_colors", img, any)
			img, any = textureGridImage(&cp.Textures, plugin)
			emit("texture_indices", img, any)
			img, any = worldMapGridImage(&cp.WorldMap, plugin)
			emit("world_map_data", img, any)
		}
	}
	return out
}

// Merged renders one composed image per merged cell: height shading
// modulated by vertex colors.
func Merged(m *landscape.Landmass) []CellImage {
	var out []CellImage
	for _, c := range m.Coords() {
		cell := m.Get(c)
		img := composeCell(cell)
		out = append(out, CellImage{Coord: c, Layer: MergedLayer, Image: img})
	}
	return out
}

// DebugColors overwrites merged vertex colors with severity colors wherever
// a plugin touched the vertex. Only called when the debug toggle is on; it
// is the one case where provenance affects output bytes.
func DebugColors(m *landscape.Landmass, prov merge.Provenance) {
	for c, cp := range prov {
		cell := m.Get(c)
		if cell == nil {
			continue
		}
		if cell.Colors == nil {
			cell.Colors = new(landscape.ColorField)
		}
		for i := 0; i < landscape.GridSize; i++ {
			for j := 0; j < landscape.GridSize; j++ {
				worst := merge.Origin{}
				for _, o := range []merge.Origin{cp.Heights[i][j], cp.Normals[i][j], cp.Colors[i][j]} {
					if o.Set() && (!worst.Set() || o.Severity > worst.Severity) {
						worst = o
					}
				}
				if !worst.Set() {
					continue
				}
				rgba := SeverityColor(worst.Severity)
				cell.Colors[i][j] = [3]uint8{rgba[0], rgba[1], rgba[2]}
			}
		}
	}
}

func vertexGridImage(grid *[landscape.GridSize][landscape.GridSize]merge.Origin, plugin string) (Image, bool) {
	return originImage(landscape.GridSize, func(i, j int) merge.Origin { return grid[i][j] }, plugin)
}

func textureGridImage(grid *[landscape.TextureGridSize][landscape.TextureGridSize]merge.Origin, plugin string) (Image, bool) {
	return originImage(landscape.TextureGridSize, func(i, j int) merge.Origin { return grid[i][j] }, plugin)
}

func worldMapGridImage(grid *[landscape.WorldMapSize][landscape.WorldMapSize]merge.Origin, plugin string) (Image, bool) {
	return originImage(landscape.WorldMapSize, func(i, j int) merge.Origin { return grid[i][j] }, plugin)
}

// originImage paints severity colors where the plugin owns the vertex. Rows
// are flipped so north ends up at the top of the image.
func originImage(size int, at func(i, j int) merge.Origin, plugin string) (Image, bool) {
	img := Image{Width: size, Height: size, Pixels: make([]byte, size*size*4)}
	any := false
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			o := at(i, j)
			if !o.Set() || o.Plugin != plugin {
				continue
			}
			any = true
			rgba := SeverityColor(o.Severity)
			off := ((size-1-i)*size + j) * 4
			copy(img.Pixels[off:off+4], rgba[:])
		}
	}
	return img, any
}

func composeCell(cell *landscape.Landscape) Image {
	size := landscape.GridSize
	img := Image{Width: size, Height: size, Pixels: make([]byte, size*size*4)}

	var lo, hi int32
	if cell.Height != nil {
		lo, hi = cell.Height.Heights[0][0], cell.Height.Heights[0][0]
		for i := 0; i < size; i++ {
			for j := 0; j < size; j++ {
				h := cell.Height.Heights[i][j]
				if h < lo {
					lo = h
				}
				if h > hi {
					hi = h
				}
			}
		}
	}

	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			shade := 128
			if cell.Height != nil && hi > lo {
				h := cell.Height.Heights[i][j]
				shade = 64 + int(int64(h-lo)*160/int64(hi-lo))
			}
			rgb := [3]int{shade, shade, shade}
			if cell.Colors != nil {
				for k := 0; k < 3; k++ {
					rgb[k] = rgb[k] * int(cell.Colors[i][j][k]) / 255
				}
			}
			off := ((size-1-i)*size + j) * 4
			img.Pixels[off] = byte(rgb[0])
			img.Pixels[off+1] = byte(rgb[1])
			img.Pixels[off+2] = byte(rgb[2])
			img.Pixels[off+3] = 255
		}
	}
	return img
}

func sortCoords(coords []landscape.CellCoord) {
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
}
