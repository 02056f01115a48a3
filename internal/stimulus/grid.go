package stimulus

import "github.com/nvandessel/nback/internal/constants"

// TileIndex maps a position symbol to its cell in the row-major 3x3 grid,
// skipping the center cell. Invalid symbols return -1.
func TileIndex(s Symbol) int {
	if !s.Valid() {
		return -1
	}
	if int(s) <= constants.CenterTile {
		return int(s) - 1
	}
	return int(s)
}

// SymbolForTile is the inverse of TileIndex. The center cell and cells outside
// the grid return Unset.
func SymbolForTile(tile int) Symbol {
	switch {
	case tile < 0 || tile >= constants.GridSize*constants.GridSize:
		return Unset
	case tile < constants.CenterTile:
		return Symbol(tile + 1)
	case tile == constants.CenterTile:
		return Unset
	default:
		return Symbol(tile)
	}
}
