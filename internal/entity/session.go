package entity

import (
	"fmt"

	"github.com/rocketscienceinc/ninarow-backend/internal/apperror"
	"github.com/rocketscienceinc/ninarow-backend/internal/engine"
)

const (
	StateInProgress = "in_progress"
	StateWon        = "won"
	StateDraw       = "draw"
)

// Session is one hot-seat game: the rules, every board snapshot since the
// last reset, and a pointer into that history. History index 0 is always the
// empty board; snapshot i holds exactly i marks. The snapshot at Current is
// the board in play, and snapshots after it are the redo tail kept alive
// until the next move branches the timeline.
type Session struct {
	ID      string  `json:"id"`
	Rules   Rules   `json:"rules"`
	History []Board `json:"history"`
	Current int     `json:"current"`
}

// Status is derived from the snapshot under the pointer on demand and never
// stored, so it cannot go stale when the pointer moves or the rules change.
type Status struct {
	Winner   string `json:"winner,omitempty"`
	Line     []int  `json:"line,omitempty"`
	Draw     bool   `json:"draw,omitempty"`
	NextMark string `json:"next_mark"`
}

func NewSession(id string, rules Rules) *Session {
	rules = rules.Normalized()

	return &Session{
		ID:      id,
		Rules:   rules,
		History: []Board{NewBoard(rules.Size)},
		Current: 0,
	}
}

// Board returns the snapshot the pointer rests on.
func (that *Session) Board() Board {
	return that.History[that.Current]
}

func (that *Session) LastIndex() int {
	return len(that.History) - 1
}

// NextMark derives the side to move from the pointer alone: X on even
// positions, O on odd ones. Index 0 is the empty board with X to open, and
// every ply flips the parity.
func (that *Session) NextMark() string {
	if that.Current%2 == 0 {
		return PlayerX
	}

	return PlayerO
}

// ApplyMove places the next mark on cell. On success the snapshots past the
// pointer are discarded, the new snapshot is appended and the pointer moves
// onto it. On failure the history is left exactly as it was. An occupied
// cell is reported as occupied even when the game is already decided.
func (that *Session) ApplyMove(cell int) error {
	board := that.Board()

	if cell < 0 || cell >= len(board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrOutOfRange, cell)
	}

	if board[cell] != EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	if that.Status().Decided() {
		return apperror.ErrGameDecided
	}

	next := board.With(cell, that.NextMark())
	that.History = append(that.History[:that.Current+1], next)
	that.Current++

	return nil
}

// JumpTo moves the pointer to an existing snapshot. The redo tail survives,
// so jumping back and forth is free; only the next ApplyMove branches the
// timeline and drops it.
func (that *Session) JumpTo(move int) error {
	if move < 0 || move > that.LastIndex() {
		return fmt.Errorf("%w: move %d", apperror.ErrOutOfRange, move)
	}

	that.Current = move

	return nil
}

// Reset drops the whole history and starts over on an empty board of the
// current size.
func (that *Session) Reset() {
	that.History = []Board{NewBoard(that.Rules.Size)}
	that.Current = 0
}

// Resize clamps the new size into [3,10], clamps the win length down if it
// now exceeds the size, and resets. Boards of different sizes cannot share
// one history, so resize always discards it.
func (that *Session) Resize(size int) {
	that.Rules.Size = size
	that.Rules = that.Rules.Normalized()
	that.Reset()
}

// SetWinLength clamps n into [3, Size] and stores it. The history is kept:
// the same snapshots simply read differently against the new threshold,
// which Status picks up on its next call.
func (that *Session) SetWinLength(n int) {
	that.Rules.WinLength = clamp(n, MinWinLength, that.Rules.Size)
}

func (that *Session) SetHighlightWins(on bool) {
	that.Rules.HighlightWins = on
}

// Status evaluates the snapshot under the pointer. The next mark is derived
// from pointer parity alone, decided or not; renderers prefer the winner or
// draw fields when they are set.
func (that *Session) Status() Status {
	result := engine.Evaluate(that.Board(), that.Rules.Size, that.Rules.WinLength)

	return Status{
		Winner:   result.Winner,
		Line:     result.Line,
		Draw:     result.Winner == "" && that.Board().IsFull(),
		NextMark: that.NextMark(),
	}
}

// Snapshots returns a copy of the history so callers can render a move list
// without aliasing the live slice.
func (that *Session) Snapshots() []Board {
	return append([]Board(nil), that.History...)
}

// Validate checks the structural invariants a session read from storage must
// hold before it is trusted.
func (that *Session) Validate() error {
	if err := that.Rules.Validate(); err != nil {
		return err
	}

	if len(that.History) == 0 {
		return fmt.Errorf("%w: empty history", apperror.ErrInvalidConfig)
	}

	if that.Current < 0 || that.Current > that.LastIndex() {
		return fmt.Errorf("%w: pointer %d outside history", apperror.ErrInvalidConfig, that.Current)
	}

	cells := that.Rules.Size * that.Rules.Size
	for i, board := range that.History {
		if len(board) != cells {
			return fmt.Errorf("%w: snapshot %d has %d cells, want %d", apperror.ErrInvalidConfig, i, len(board), cells)
		}
	}

	return nil
}

func (that Status) Decided() bool {
	return that.Winner != "" || that.Draw
}

// State names the session's position in its lifecycle, derived like
// everything else here.
func (that Status) State() string {
	switch {
	case that.Winner != "":
		return StateWon
	case that.Draw:
		return StateDraw
	default:
		return StateInProgress
	}
}
