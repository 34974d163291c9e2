package entity

import (
	"testing"

	"github.com/rocketscienceinc/ninarow-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
)

func TestRules_Normalized(t *testing.T) {
	t.Run("Clamps the size into its bounds", func(t *testing.T) {
		// Given/When: rules with sizes beyond either bound
		tiny := Rules{Size: 1, WinLength: 3}.Normalized()
		huge := Rules{Size: 99, WinLength: 3}.Normalized()

		// Then: both land on the nearest bound
		assert.Equal(t, MinBoardSize, tiny.Size)
		assert.Equal(t, MaxBoardSize, huge.Size)
	})

	t.Run("Clamps the win length against the clamped size", func(t *testing.T) {
		// Given/When: rules whose win length falls outside [3, size]
		short := Rules{Size: 5, WinLength: 1}.Normalized()
		long := Rules{Size: 5, WinLength: 9}.Normalized()

		// Then: the win length lands inside the range
		assert.Equal(t, MinWinLength, short.WinLength)
		assert.Equal(t, 5, long.WinLength)
	})

	t.Run("Leaves in-range rules and the highlight flag alone", func(t *testing.T) {
		// Given: rules that are already valid
		rules := Rules{Size: 7, WinLength: 4, HighlightWins: true}

		// When: normalizing them
		normalized := rules.Normalized()

		// Then: nothing changes
		assert.Equal(t, rules, normalized)
	})
}

func TestRules_Validate(t *testing.T) {
	t.Run("Accepts in-range rules", func(t *testing.T) {
		// Given/When/Then: defaults are valid
		assert.NoError(t, DefaultRules().Validate())
	})

	t.Run("Rejects an out-of-range size", func(t *testing.T) {
		// Given/When/Then: a size beyond the maximum is invalid config
		err := Rules{Size: 11, WinLength: 3}.Validate()
		assert.ErrorIs(t, err, apperror.ErrInvalidConfig)
	})

	t.Run("Rejects a win length beyond the size", func(t *testing.T) {
		// Given/When/Then: a win length above the size is invalid config
		err := Rules{Size: 4, WinLength: 5}.Validate()
		assert.ErrorIs(t, err, apperror.ErrInvalidConfig)
	})
}
