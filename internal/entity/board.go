package entity

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""
)

// Board is a square grid stored row-major, size*size cells long. Cell (row,
// col) lives at index row*size+col and holds EmptyCell, PlayerX or PlayerO.
// Snapshots in a session history share boards by reference, so a board is
// never mutated after creation; With builds the next snapshot instead.
type Board []string

func NewBoard(size int) Board {
	return make(Board, size*size)
}

// With returns a copy of the board with one cell replaced. The receiver
// stays untouched.
func (that Board) With(cell int, mark string) Board {
	next := make(Board, len(that))
	copy(next, that)
	next[cell] = mark

	return next
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}
