package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/ninarow-backend/internal/apperror"
	"github.com/rocketscienceinc/ninarow-backend/internal/entity"
	"github.com/rocketscienceinc/ninarow-backend/internal/repository"
)

type memorySessions struct {
	sessions map[string]*entity.Session
	corrupt  map[string]bool
}

func newMemorySessions() *memorySessions {
	return &memorySessions{
		sessions: make(map[string]*entity.Session),
		corrupt:  make(map[string]bool),
	}
}

func (that *memorySessions) GetByID(_ context.Context, id string) (*entity.Session, error) {
	if that.corrupt[id] {
		return nil, fmt.Errorf("get session by id: stored session is not usable: %w", apperror.ErrInvalidConfig)
	}

	session, ok := that.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session by id: %w", repository.ErrSessionNotFound)
	}

	return session, nil
}

func newTestServer() (*Server, *memorySessions) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemorySessions()

	return New(logger, store), store
}

func TestServer_Ping(t *testing.T) {
	server, _ := newTestServer()

	// When: pinging the server.
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	server.router.ServeHTTP(recorder, request)

	// Then: it answers pong.
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "pong", recorder.Body.String())
}

func TestServer_GetSession(t *testing.T) {
	server, store := newTestServer()

	t.Run("Returns the session with its derived status", func(t *testing.T) {
		// Given: a stored session with two moves played.
		session := entity.NewSession("session-42", entity.DefaultRules())
		require.NoError(t, session.ApplyMove(0))
		require.NoError(t, session.ApplyMove(4))
		store.sessions[session.ID] = session

		// When: fetching it over http.
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/sessions/session-42", nil)
		server.router.ServeHTTP(recorder, request)

		// Then: the body carries both the session and the status.
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

		var body sessionResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		require.NotNil(t, body.Session)
		assert.Equal(t, "session-42", body.Session.ID)
		assert.Equal(t, 2, body.Session.LastIndex())
		assert.Equal(t, entity.PlayerX, body.Status.NextMark)
	})

	t.Run("Answers 404 for an unknown session", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/sessions/missing", nil)
		server.router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("Answers 500 for a session that fails validation", func(t *testing.T) {
		// Given: a stored payload that no longer passes validation.
		store.corrupt["broken"] = true

		// When: fetching it.
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/sessions/broken", nil)
		server.router.ServeHTTP(recorder, request)

		// Then: the handler refuses to serve it.
		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})
}
