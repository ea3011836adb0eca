package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinelink/internal/db"
	"cinelink/internal/handlers"
	"cinelink/internal/models"
	"cinelink/internal/router"
	"cinelink/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubIdentity struct{}

func (stubIdentity) Profile(_ context.Context, userID uint) (*services.Profile, error) {
	return &services.Profile{
		UserID:    userID,
		Username:  fmt.Sprintf("user-%d", userID),
		AvatarURL: fmt.Sprintf("https://img.example.com/%d.webp", userID),
	}, nil
}

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(database))

	logger := zap.NewNop()
	commentService := services.NewCommentService(database, logger)
	enricher := services.NewAvatarEnricher(stubIdentity{}, logger)
	commentHandler := handlers.NewCommentHandler(commentService, enricher, logger)

	r := gin.New()
	router.RegisterRoutes(r, commentHandler)
	return r, database
}

func seed(t *testing.T, database *gorm.DB) (*models.Discussion, *models.User) {
	t.Helper()
	d := &models.Discussion{TmdbID: 550, MediaType: "movie", Title: "Fight Club"}
	require.NoError(t, database.Create(d).Error)
	u := &models.User{Username: "tyler"}
	require.NoError(t, database.Create(u).Error)
	return d, u
}

func doJSON(r *gin.Engine, method, path string, viewerID uint, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if viewerID != 0 {
		req.Header.Set("X-User-ID", fmt.Sprintf("%d", viewerID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCommentEndpoint(t *testing.T) {
	r, database := newTestServer(t)
	d, u := seed(t, database)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/discussions/%d/comments", d.ID), u.ID,
		gin.H{"content": "great movie", "spoiler": false})
	require.Equal(t, http.StatusCreated, w.Code)

	var got services.RankedComment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "great movie", got.Content)
	assert.Equal(t, fmt.Sprintf("%06d", got.ID), got.Path)
	assert.Equal(t, 0, got.Depth)
}

func TestCreateCommentRequiresAuth(t *testing.T) {
	r, database := newTestServer(t)
	d, _ := seed(t, database)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/discussions/%d/comments", d.ID), 0,
		gin.H{"content": "anonymous"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateCommentErrorMapping(t *testing.T) {
	r, database := newTestServer(t)
	d, u := seed(t, database)

	// Unknown parent.
	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/discussions/%d/comments", d.ID), u.ID,
		gin.H{"content": "orphan", "parent_id": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Unknown discussion.
	w = doJSON(r, http.MethodPost, "/api/discussions/424242/comments", u.ID,
		gin.H{"content": "nowhere"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCommentsEnrichedAndRanked(t *testing.T) {
	r, database := newTestServer(t)
	d, u := seed(t, database)

	svc := services.NewCommentService(database, zap.NewNop())
	a, err := svc.CreateComment(context.Background(), d.ID, u.ID, "comment A", nil, false)
	require.NoError(t, err)
	_, err = svc.CreateComment(context.Background(), d.ID, u.ID, "comment B", &a.ID, false)
	require.NoError(t, err)

	require.NoError(t, database.Create(&models.Vote{CommentID: a.ID, UserID: 500, Value: models.VoteUp}).Error)

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/discussions/%d/comments?sort=top&limit=10", d.ID), 0, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []services.RankedComment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Upvotes)
	require.NotNil(t, got[0].AvatarURL)
	assert.Equal(t, fmt.Sprintf("https://img.example.com/%d.webp", u.ID), *got[0].AvatarURL)
	require.Len(t, got[0].Replies, 1)
	require.NotNil(t, got[0].Replies[0].AvatarURL)
}

func TestListCommentsInvalidSort(t *testing.T) {
	r, database := newTestServer(t)
	d, _ := seed(t, database)

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/discussions/%d/comments?sort=hot", d.ID), 0, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	r, database := newTestServer(t)
	d, u := seed(t, database)

	svc := services.NewCommentService(database, zap.NewNop())
	root, err := svc.CreateComment(context.Background(), d.ID, u.ID, "root", nil, false)
	require.NoError(t, err)
	_, err = svc.CreateComment(context.Background(), d.ID, u.ID, "reply", &root.ID, false)
	require.NoError(t, err)

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/discussions/%d/comments/stats", d.ID), 0, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats services.CommentStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 2, stats.TotalComments)
	assert.EqualValues(t, 1, stats.TopLevelComments)
	assert.Equal(t, 1, stats.MaxDepth)
}

func TestDeleteCommentEndpoint(t *testing.T) {
	r, database := newTestServer(t)
	d, u := seed(t, database)
	other := &models.User{Username: "marla"}
	require.NoError(t, database.Create(other).Error)

	svc := services.NewCommentService(database, zap.NewNop())
	c, err := svc.CreateComment(context.Background(), d.ID, u.ID, "mine", nil, false)
	require.NoError(t, err)

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/comments/%d", c.ID), other.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/comments/%d", c.ID), u.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/comments/9999", u.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
