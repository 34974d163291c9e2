package apperror

import "errors"

var (
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrGameDecided     = errors.New("game is already decided")
	ErrOutOfRange      = errors.New("index is out of range")
	ErrInvalidConfig   = errors.New("invalid game config")
	ErrNoActiveSession = errors.New("no active session")
)
