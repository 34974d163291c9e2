// Package engine detects N-in-a-row wins on square boards. Evaluate is a
// pure function over its inputs; it keeps no state between calls, so callers
// may rerun it on every render.
package engine

const minWinLength = 3

// Result is the outcome of one evaluation. Line holds the flat indices of
// the winning run, exactly winLength of them, in walking order; without a
// winner both fields are zero.
type Result struct {
	Winner string `json:"winner,omitempty"`
	Line   []int  `json:"line,omitempty"`
}

// directions are the four probes tried from every occupied cell, in order:
// east, south, south-east, south-west. The reverse directions are redundant
// because the row-major scan reaches every line through its first cell in
// scan order, and from that cell the line extends one of these four ways.
var directions = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// Evaluate scans board row-major for the first run of winLength equal marks.
// board is row-major with size*size cells; empty cells hold "". winLength is
// clamped into [3, size] before scanning, whatever the caller passed. The
// scan order plus the direction order fix which line is reported when
// several winning runs exist.
func Evaluate(board []string, size, winLength int) Result {
	winLength = clampWinLength(winLength, size)

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			mark := board[row*size+col]
			if mark == "" {
				continue
			}

			for _, dir := range directions {
				if line, ok := walkRun(board, size, winLength, row, col, dir); ok {
					return Result{Winner: mark, Line: line}
				}
			}
		}
	}

	return Result{}
}

// walkRun walks from (row, col) along dir while cells stay in bounds and
// hold the starting mark, collecting flat indices as it goes. It stops as
// soon as winLength indices are collected, so a longer run reports its first
// winLength cells.
func walkRun(board []string, size, winLength, row, col int, dir [2]int) ([]int, bool) {
	mark := board[row*size+col]
	line := make([]int, 0, winLength)

	for r, c := row, col; r >= 0 && r < size && c >= 0 && c < size; r, c = r+dir[0], c+dir[1] {
		if board[r*size+c] != mark {
			break
		}

		line = append(line, r*size+c)
		if len(line) == winLength {
			return line, true
		}
	}

	return nil, false
}

func clampWinLength(winLength, size int) int {
	if winLength < minWinLength {
		return minWinLength
	}
	if winLength > size {
		return size
	}
	return winLength
}
