package entity

import (
	"fmt"

	"github.com/rocketscienceinc/ninarow-backend/internal/apperror"
)

const (
	MinBoardSize = 3
	MaxBoardSize = 10
	MinWinLength = 3
)

// Rules bundle the per-session settings: board side length, how many marks
// in a row win, and whether clients should highlight the winning line. The
// highlight flag is carried for presentation only; nothing in the game logic
// reads it.
type Rules struct {
	Size          int  `json:"size"`
	WinLength     int  `json:"win_length"`
	HighlightWins bool `json:"highlight_wins"`
}

func DefaultRules() Rules {
	return Rules{Size: 3, WinLength: 3, HighlightWins: true}
}

// Normalized clamps Size into [3,10] and WinLength into [3, Size].
// Out-of-range settings are corrected rather than rejected, on every update
// path, not only at construction.
func (that Rules) Normalized() Rules {
	that.Size = clamp(that.Size, MinBoardSize, MaxBoardSize)
	that.WinLength = clamp(that.WinLength, MinWinLength, that.Size)

	return that
}

// Validate reports whether the rules are already in range. Sessions read
// from storage pass through it before they are trusted.
func (that Rules) Validate() error {
	if that.Size < MinBoardSize || that.Size > MaxBoardSize {
		return fmt.Errorf("%w: board size %d", apperror.ErrInvalidConfig, that.Size)
	}

	if that.WinLength < MinWinLength || that.WinLength > that.Size {
		return fmt.Errorf("%w: win length %d on size %d", apperror.ErrInvalidConfig, that.WinLength, that.Size)
	}

	return nil
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}

	return value
}
