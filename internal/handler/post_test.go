package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ymatsui/memoboard/internal/model"
)

func TestPostHandler_HandleCreate(t *testing.T) {
	t.Run("authenticated owner creates a post", func(t *testing.T) {
		e := newEnv(t)
		owner := e.seedUser(t, "ext-1", "owner@example.com")
		token := mintToken(t, "ext-1", "owner@example.com")

		req := request(http.MethodPost, "/api/posts",
			`{"title":"Hello","content":"World"}`, "", token)
		rr := httptest.NewRecorder()
		e.authed(e.posts.HandleCreate).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var post model.Post
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&post))
		assert.Equal(t, "Hello", post.Title)
		assert.Equal(t, owner.ID, post.UserID)
	})

	t.Run("no token is 401", func(t *testing.T) {
		e := newEnv(t)

		req := request(http.MethodPost, "/api/posts",
			`{"title":"Hello","content":"World"}`, "", "")
		rr := httptest.NewRecorder()
		e.authed(e.posts.HandleCreate).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("verified identity with no linked account is 404", func(t *testing.T) {
		e := newEnv(t)
		token := mintToken(t, "ext-unlinked", "stranger@example.com")

		req := request(http.MethodPost, "/api/posts",
			`{"title":"Hello","content":"World"}`, "", token)
		rr := httptest.NewRecorder()
		e.authed(e.posts.HandleCreate).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("empty title is 400", func(t *testing.T) {
		e := newEnv(t)
		e.seedUser(t, "ext-1", "owner@example.com")
		token := mintToken(t, "ext-1", "owner@example.com")

		req := request(http.MethodPost, "/api/posts",
			`{"title":"   ","content":"World"}`, "", token)
		rr := httptest.NewRecorder()
		e.authed(e.posts.HandleCreate).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPostHandler_PublicReads(t *testing.T) {
	t.Run("list embeds the owner", func(t *testing.T) {
		e := newEnv(t)
		e.seedUser(t, "ext-1", "author@example.com")
		token := mintToken(t, "ext-1", "author@example.com")

		createReq := request(http.MethodPost, "/api/posts",
			`{"title":"Public","content":"Read me"}`, "", token)
		createRR := httptest.NewRecorder()
		e.authed(e.posts.HandleCreate).ServeHTTP(createRR, createReq)
		assert.Equal(t, http.StatusCreated, createRR.Code)

		// No token on the read — posts are public.
		req := request(http.MethodGet, "/api/posts", "", "", "")
		rr := httptest.NewRecorder()
		e.posts.HandleList(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var posts []model.Post
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&posts))
		if assert.Len(t, posts, 1) {
			assert.NotNil(t, posts[0].User)
			assert.Equal(t, "ext-1", posts[0].User.ExternalID)
			assert.Equal(t, "author", posts[0].User.Name)
		}
	})

	t.Run("get by id without a token", func(t *testing.T) {
		e := newEnv(t)
		e.seedUser(t, "ext-1", "author@example.com")
		token := mintToken(t, "ext-1", "author@example.com")

		createRR := httptest.NewRecorder()
		e.authed(e.posts.HandleCreate).ServeHTTP(createRR, request(
			http.MethodPost, "/api/posts", `{"title":"One","content":"c"}`, "", token))

		req := request(http.MethodGet, "/api/posts/1", "", "1", "")
		rr := httptest.NewRecorder()
		e.posts.HandleGetByID(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestPostHandler_HandleUpdate(t *testing.T) {
	t.Run("non-owner gets 403 regardless of payload", func(t *testing.T) {
		e := newEnv(t)
		e.seedUser(t, "ext-owner", "owner@example.com")
		e.seedUser(t, "ext-other", "other@example.com")
		ownerToken := mintToken(t, "ext-owner", "owner@example.com")
		otherToken := mintToken(t, "ext-other", "other@example.com")

		createRR := httptest.NewRecorder()
		e.authed(e.posts.HandleCreate).ServeHTTP(createRR, request(
			http.MethodPost, "/api/posts", `{"title":"Mine","content":"c"}`, "", ownerToken))
		assert.Equal(t, http.StatusCreated, createRR.Code)

		req := request(http.MethodPut, "/api/posts/1",
			`{"title":"Hijacked","content":"x"}`, "1", otherToken)
		rr := httptest.NewRecorder()
		e.authed(e.posts.HandleUpdate).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("owner updates their post", func(t *testing.T) {
		e := newEnv(t)
		e.seedUser(t, "ext-owner", "owner@example.com")
		token := mintToken(t, "ext-owner", "owner@example.com")

		createRR := httptest.NewRecorder()
		e.authed(e.posts.HandleCreate).ServeHTTP(createRR, request(
			http.MethodPost, "/api/posts", `{"title":"v1","content":"c"}`, "", token))

		req := request(http.MethodPut, "/api/posts/1",
			`{"title":"v2","content":"c2"}`, "1", token)
		rr := httptest.NewRecorder()
		e.authed(e.posts.HandleUpdate).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var post model.Post
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&post))
		assert.Equal(t, "v2", post.Title)
	})
}

func TestPostHandler_HandleDelete(t *testing.T) {
	t.Run("delete response carries the deleted record", func(t *testing.T) {
		e := newEnv(t)
		e.seedUser(t, "ext-owner", "owner@example.com")
		token := mintToken(t, "ext-owner", "owner@example.com")

		createRR := httptest.NewRecorder()
		e.authed(e.posts.HandleCreate).ServeHTTP(createRR, request(
			http.MethodPost, "/api/posts", `{"title":"Bye","content":"c"}`, "", token))

		req := request(http.MethodDelete, "/api/posts/1", "", "1", token)
		rr := httptest.NewRecorder()
		e.authed(e.posts.HandleDelete).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Message string     `json:"message"`
			Deleted model.Post `json:"deleted"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "Post deleted successfully", resp.Message)
		assert.Equal(t, "Bye", resp.Deleted.Title)
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		e := newEnv(t)
		e.seedUser(t, "ext-owner", "owner@example.com")
		e.seedUser(t, "ext-other", "other@example.com")
		ownerToken := mintToken(t, "ext-owner", "owner@example.com")
		otherToken := mintToken(t, "ext-other", "other@example.com")

		createRR := httptest.NewRecorder()
		e.authed(e.posts.HandleCreate).ServeHTTP(createRR, request(
			http.MethodPost, "/api/posts", `{"title":"Keep","content":"c"}`, "", ownerToken))

		req := request(http.MethodDelete, "/api/posts/1", "", "1", otherToken)
		rr := httptest.NewRecorder()
		e.authed(e.posts.HandleDelete).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)

		// Still readable afterwards.
		getRR := httptest.NewRecorder()
		e.posts.HandleGetByID(getRR, request(http.MethodGet, "/api/posts/1", "", "1", ""))
		assert.Equal(t, http.StatusOK, getRR.Code)
	})
}
