package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/entities"
)

func TestCollectionsController(t *testing.T) {
	server := setupTestServer(t)

	w := server.do(t, http.MethodPost, "/api/collections", "alice", map[string]any{"name": "Sci-Fi", "color": "blue"})
	require.Equal(t, http.StatusCreated, w.Code)
	scifi := decode[entities.Collection](t, w)

	w = server.do(t, http.MethodPost, "/api/collections", "alice", map[string]any{"name": "Classics"})
	require.Equal(t, http.StatusCreated, w.Code)
	classics := decode[entities.Collection](t, w)
	assert.Equal(t, entities.DefaultCollectionColor, classics.Color)

	w = server.do(t, http.MethodPost, "/api/collections", "alice", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	t.Run("list sorted by name", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/api/collections", "alice", nil)
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[[]entities.Collection](t, w)
		require.Len(t, list, 2)
		assert.Equal(t, "Classics", list[0].Name)
		assert.Equal(t, "Sci-Fi", list[1].Name)
	})

	t.Run("patch", func(t *testing.T) {
		w := server.do(t, http.MethodPatch, "/api/collections/"+scifi.ID, "alice", map[string]any{"description": "Space"})
		require.Equal(t, http.StatusOK, w.Code)
		updated := decode[entities.Collection](t, w)
		assert.Equal(t, "Space", updated.Description)
		assert.Equal(t, "Sci-Fi", updated.Name)

		w = server.do(t, http.MethodPatch, "/api/collections/"+scifi.ID, "bob", map[string]any{"description": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("membership", func(t *testing.T) {
		a := createBook(t, server, "alice", "A", "fiction")
		b := createBook(t, server, "alice", "B", "fiction")
		c := createBook(t, server, "alice", "C", "fiction")

		w := server.do(t, http.MethodPut, "/api/collections/"+scifi.ID+"/books", "alice", map[string]any{
			"book_ids": []string{a.ID, b.ID},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = server.do(t, http.MethodPut, "/api/collections/"+scifi.ID+"/books", "alice", map[string]any{
			"book_ids": []string{b.ID, c.ID},
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = server.do(t, http.MethodGet, "/api/collections/"+scifi.ID+"/books", "alice", nil)
		require.Equal(t, http.StatusOK, w.Code)
		members := decode[[]entities.Book](t, w)
		ids := []string{}
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		assert.ElementsMatch(t, []string{b.ID, c.ID}, ids)

		w = server.do(t, http.MethodGet, "/api/collections/"+scifi.ID+"/books", "bob", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := server.do(t, http.MethodDelete, "/api/collections/"+scifi.ID, "alice", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = server.do(t, http.MethodGet, "/api/collections/"+scifi.ID, "alice", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
