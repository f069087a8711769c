package esp

import "github.com/DavidVonDerau/merged-lands/internal/domain/landscape"

// Record and subrecord tags.
const (
	tagTES3 = "TES3"
	tagLTEX = "LTEX"
	tagLAND = "LAND"
	tagCELL = "CELL"

	subHEDR = "HEDR"
	subMAST = "MAST"
	subDATA = "DATA"
	subNAME = "NAME"
	subINTV = "INTV"
	subVNML = "VNML"
	subVHGT = "VHGT"
	subWNAM = "WNAM"
	subVCLR = "VCLR"
	subVTEX = "VTEX"
)

// LAND DATA presence flags.
const (
	// FlagGeometry marks VNML, VHGT and WNAM as meaningful.
	FlagGeometry uint32 = 1 << 0
	// FlagColors marks VCLR as meaningful.
	FlagColors uint32 = 1 << 1
	// FlagTextures marks VTEX as meaningful.
	FlagTextures uint32 = 1 << 2
)

// Fixed subrecord sizes. A LAND subrecord of any other size is a layer-shape
// mismatch: the layer is skipped and a warning raised.
const (
	sizeVNML = landscape.GridSize * landscape.GridSize * 3
	sizeVHGT = 4 + landscape.GridSize*landscape.GridSize + 3
	sizeWNAM = landscape.WorldMapSize * landscape.WorldMapSize
	sizeVCLR = landscape.GridSize * landscape.GridSize * 3
	sizeVTEX = landscape.TextureGridSize * landscape.TextureGridSize * 2
	sizeHEDR = 4 + 4 + 32 + 256 + 4
)

// headerVersion is the TES3 format version written into HEDR.
const headerVersion float32 = 1.3

// File types in HEDR.
const (
	fileTypePlugin uint32 = 0
	fileTypeMaster uint32 = 1
)
