package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/rocketscienceinc/ninarow-backend/internal/apperror"
	"github.com/rocketscienceinc/ninarow-backend/internal/entity"
	"github.com/rocketscienceinc/ninarow-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGamePlayService_GetOrCreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a session and binds the player to it", func(t *testing.T) {
		// Given: a fresh player
		gamePlay, players, sessions := newTestGamePlay()
		player, err := players.GetOrCreate(ctx, "")
		require.NoError(t, err)

		// When: asking for a session with the configured defaults
		session, err := gamePlay.GetOrCreateSession(ctx, player, nil)

		// Then: the session exists, is persisted and the player points at it
		require.NoError(t, err)
		require.NotEmpty(t, session.ID)
		assert.Equal(t, session.ID, player.SessionID)
		assert.Equal(t, entity.DefaultRules(), session.Rules)

		stored, err := sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, stored.ID)
	})

	t.Run("Returns the same session on a second call", func(t *testing.T) {
		// Given: a player who already has a session
		gamePlay, players, _ := newTestGamePlay()
		player, err := players.GetOrCreate(ctx, "")
		require.NoError(t, err)
		first, err := gamePlay.GetOrCreateSession(ctx, player, nil)
		require.NoError(t, err)

		// When: asking again
		second, err := gamePlay.GetOrCreateSession(ctx, player, nil)

		// Then: the live session comes back instead of a new one
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("Starts over when the stored session expired", func(t *testing.T) {
		// Given: a player whose session disappeared from storage
		gamePlay, players, sessions := newTestGamePlay()
		player, err := players.GetOrCreate(ctx, "")
		require.NoError(t, err)
		first, err := gamePlay.GetOrCreateSession(ctx, player, nil)
		require.NoError(t, err)
		require.NoError(t, sessions.DeleteByID(ctx, first.ID))

		// When: asking again
		second, err := gamePlay.GetOrCreateSession(ctx, player, nil)

		// Then: a fresh session replaces the expired one
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, second.ID, player.SessionID)
	})

	t.Run("Applies and normalizes requested rules", func(t *testing.T) {
		// Given: a fresh player asking for an oversized board
		gamePlay, players, _ := newTestGamePlay()
		player, err := players.GetOrCreate(ctx, "")
		require.NoError(t, err)

		// When: requesting a session with out-of-range rules
		session, err := gamePlay.GetOrCreateSession(ctx, player, &entity.Rules{Size: 99, WinLength: 1})

		// Then: the rules are clamped on the way in
		require.NoError(t, err)
		assert.Equal(t, entity.MaxBoardSize, session.Rules.Size)
		assert.Equal(t, entity.MinWinLength, session.Rules.WinLength)
	})
}

func TestGamePlayService_Move(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies a move and persists the new snapshot", func(t *testing.T) {
		// Given: a player with a live session
		gamePlay, players, sessions := newTestGamePlay()
		player := mustStartSession(t, gamePlay, players)

		// When: playing cell 4
		session, err := gamePlay.Move(ctx, player.ID, 4)

		// Then: the move is applied and the stored session carries it
		require.NoError(t, err)
		assert.Equal(t, 1, session.Current)

		stored, err := sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Current)
		assert.Equal(t, entity.PlayerX, stored.Board()[4])
	})

	t.Run("Returns the session alongside an occupied-cell error", func(t *testing.T) {
		// Given: a session where cell 4 is taken
		gamePlay, players, sessions := newTestGamePlay()
		player := mustStartSession(t, gamePlay, players)
		_, err := gamePlay.Move(ctx, player.ID, 4)
		require.NoError(t, err)

		// When: playing the same cell again
		session, err := gamePlay.Move(ctx, player.ID, 4)

		// Then: the typed failure and the unchanged state both come back
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		require.NotNil(t, session)

		stored, err := sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Len(t, stored.History, 2)
	})

	t.Run("Fails for a player without a session", func(t *testing.T) {
		// Given: a registered player who never started a game
		gamePlay, players, _ := newTestGamePlay()
		player, err := players.GetOrCreate(ctx, "")
		require.NoError(t, err)

		// When: trying to move
		_, err = gamePlay.Move(ctx, player.ID, 0)

		// Then: the call is rejected
		require.ErrorIs(t, err, apperror.ErrNoActiveSession)
	})

	t.Run("Fails for an unknown player", func(t *testing.T) {
		// Given: nobody registered at all
		gamePlay, _, _ := newTestGamePlay()

		// When: a ghost tries to move
		_, err := gamePlay.Move(ctx, "ghost", 0)

		// Then: the player lookup fails
		require.ErrorIs(t, err, repository.ErrPlayerNotFound)
	})
}

func TestGamePlayService_Jump(t *testing.T) {
	ctx := context.Background()

	t.Run("Moves the pointer and persists it without losing snapshots", func(t *testing.T) {
		// Given: a session with two moves played
		gamePlay, players, sessions := newTestGamePlay()
		player := mustStartSession(t, gamePlay, players)
		for _, cell := range []int{0, 4} {
			_, err := gamePlay.Move(ctx, player.ID, cell)
			require.NoError(t, err)
		}

		// When: jumping back to the first snapshot
		session, err := gamePlay.Jump(ctx, player.ID, 1)

		// Then: the stored pointer moved and the history is intact
		require.NoError(t, err)
		assert.Equal(t, 1, session.Current)

		stored, err := sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Current)
		assert.Len(t, stored.History, 3)
	})

	t.Run("Rejects a jump outside the history", func(t *testing.T) {
		// Given: a fresh session
		gamePlay, players, _ := newTestGamePlay()
		player := mustStartSession(t, gamePlay, players)

		// When: jumping to a snapshot that does not exist
		_, err := gamePlay.Jump(ctx, player.ID, 5)

		// Then: the jump is rejected
		require.ErrorIs(t, err, apperror.ErrOutOfRange)
	})
}

func TestGamePlayService_Restart(t *testing.T) {
	ctx := context.Background()

	t.Run("Resets the session to a single empty snapshot", func(t *testing.T) {
		// Given: a session mid-game
		gamePlay, players, sessions := newTestGamePlay()
		player := mustStartSession(t, gamePlay, players)
		_, err := gamePlay.Move(ctx, player.ID, 0)
		require.NoError(t, err)

		// When: restarting
		session, err := gamePlay.Restart(ctx, player.ID)

		// Then: the stored session starts over
		require.NoError(t, err)

		stored, err := sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Len(t, stored.History, 1)
		assert.Equal(t, 0, stored.Current)
	})
}

func TestGamePlayService_Resize(t *testing.T) {
	ctx := context.Background()

	t.Run("Resizes the board and persists the clamped rules", func(t *testing.T) {
		// Given: a default 3x3 session
		gamePlay, players, sessions := newTestGamePlay()
		player := mustStartSession(t, gamePlay, players)

		// When: resizing to 5 and then far beyond the maximum
		_, err := gamePlay.Resize(ctx, player.ID, 5)
		require.NoError(t, err)
		session, err := gamePlay.Resize(ctx, player.ID, 99)
		require.NoError(t, err)

		// Then: the stored session holds the clamped size and a fresh board
		stored, err := sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.MaxBoardSize, stored.Rules.Size)
		assert.Len(t, stored.Board(), entity.MaxBoardSize*entity.MaxBoardSize)
		assert.Len(t, stored.History, 1)
	})
}

func TestGamePlayService_SetWinLength(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores the clamped win length and keeps the history", func(t *testing.T) {
		// Given: a 5x5 session with one move played
		gamePlay, players, sessions := newTestGamePlay()
		player, err := players.GetOrCreate(ctx, "")
		require.NoError(t, err)
		_, err = gamePlay.GetOrCreateSession(ctx, player, &entity.Rules{Size: 5, WinLength: 5})
		require.NoError(t, err)
		_, err = gamePlay.Move(ctx, player.ID, 0)
		require.NoError(t, err)

		// When: lowering the win length
		session, err := gamePlay.SetWinLength(ctx, player.ID, 4)

		// Then: the rule change is persisted and the history survived
		require.NoError(t, err)

		stored, err := sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, stored.Rules.WinLength)
		assert.Len(t, stored.History, 2)
	})
}

func TestGamePlayService_SetHighlight(t *testing.T) {
	ctx := context.Background()

	t.Run("Persists the highlight preference", func(t *testing.T) {
		// Given: a session with highlighting on by default
		gamePlay, players, sessions := newTestGamePlay()
		player := mustStartSession(t, gamePlay, players)

		// When: switching it off
		session, err := gamePlay.SetHighlight(ctx, player.ID, false)

		// Then: the stored session carries the preference
		require.NoError(t, err)

		stored, err := sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.False(t, stored.Rules.HighlightWins)
	})
}

func TestGamePlayService_CloseSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the session and unbinds the player", func(t *testing.T) {
		// Given: a player with a live session
		gamePlay, players, sessions := newTestGamePlay()
		player := mustStartSession(t, gamePlay, players)
		sessionID := player.SessionID

		// When: closing it
		err := gamePlay.CloseSession(ctx, player.ID)

		// Then: the session is gone and the player is unbound
		require.NoError(t, err)

		_, err = sessions.GetByID(ctx, sessionID)
		require.ErrorIs(t, err, repository.ErrSessionNotFound)

		unbound, err := players.GetByID(ctx, player.ID)
		require.NoError(t, err)
		assert.Empty(t, unbound.SessionID)

		_, err = gamePlay.State(ctx, player.ID)
		require.ErrorIs(t, err, apperror.ErrNoActiveSession)
	})

	t.Run("Is quiet for a player without a session", func(t *testing.T) {
		// Given: a registered player who never started a game
		gamePlay, players, _ := newTestGamePlay()
		player, err := players.GetOrCreate(ctx, "")
		require.NoError(t, err)

		// When/Then: closing is a no-op
		assert.NoError(t, gamePlay.CloseSession(ctx, player.ID))
	})
}

func TestGamePlayService_FullGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Plays to a win, keeps the session and branches past it", func(t *testing.T) {
		// Given: a player with a live session
		gamePlay, players, sessions := newTestGamePlay()
		player := mustStartSession(t, gamePlay, players)

		// When: X plays the top row to a win
		var session *entity.Session
		var err error
		for _, cell := range []int{0, 4, 1, 5, 2} {
			session, err = gamePlay.Move(ctx, player.ID, cell)
			require.NoError(t, err)
		}

		// Then: the session is decided and still stored
		status := session.Status()
		require.Equal(t, entity.PlayerX, status.Winner)
		assert.Equal(t, []int{0, 1, 2}, status.Line)

		stored, err := sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StateWon, stored.Status().State())

		// And: further moves fail as decided
		_, err = gamePlay.Move(ctx, player.ID, 8)
		require.ErrorIs(t, err, apperror.ErrGameDecided)

		// And: jumping back before the winning ply reopens the game
		_, err = gamePlay.Jump(ctx, player.ID, 4)
		require.NoError(t, err)

		session, err = gamePlay.Move(ctx, player.ID, 8)
		require.NoError(t, err)
		assert.Empty(t, session.Status().Winner)
		assert.Len(t, session.History, 6)
		assert.Equal(t, 5, session.Current)
	})
}

// mustStartSession registers a fresh player and opens a default session for
// it, failing the test on any setup error.
func mustStartSession(t *testing.T, gamePlay GamePlayService, players PlayerService) *entity.Player {
	t.Helper()

	ctx := context.Background()

	player, err := players.GetOrCreate(ctx, "")
	require.NoError(t, err)

	_, err = gamePlay.GetOrCreateSession(ctx, player, nil)
	require.NoError(t, err)

	return player
}

func newTestGamePlay() (GamePlayService, PlayerService, *memorySessionRepo) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	playerRepo := newMemoryPlayerRepo()
	sessionRepo := newMemorySessionRepo()

	playerService := NewPlayerService(playerRepo)
	sessionService := NewSessionService(sessionRepo)

	return NewGamePlayService(logger, playerService, sessionService, entity.DefaultRules()), playerService, sessionRepo
}

// memorySessionRepo mimics the redis repository over a map, round-tripping
// through JSON so nothing aliases the caller's session.
type memorySessionRepo struct {
	sessions map[string][]byte
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string][]byte)}
}

func (that *memorySessionRepo) Save(_ context.Context, session *entity.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}

	that.sessions[session.ID] = raw

	return nil
}

func (that *memorySessionRepo) GetByID(_ context.Context, id string) (*entity.Session, error) {
	raw, ok := that.sessions[id]
	if !ok {
		return &entity.Session{}, repository.ErrSessionNotFound
	}

	var session entity.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return &entity.Session{}, err
	}

	return &session, nil
}

func (that *memorySessionRepo) DeleteByID(_ context.Context, id string) error {
	delete(that.sessions, id)

	return nil
}

type memoryPlayerRepo struct {
	players map[string]entity.Player
}

func newMemoryPlayerRepo() *memoryPlayerRepo {
	return &memoryPlayerRepo{players: make(map[string]entity.Player)}
}

func (that *memoryPlayerRepo) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that.players[player.ID] = *player

	return nil
}

func (that *memoryPlayerRepo) GetByID(_ context.Context, id string) (*entity.Player, error) {
	player, ok := that.players[id]
	if !ok {
		return &entity.Player{}, repository.ErrPlayerNotFound
	}

	return &player, nil
}
