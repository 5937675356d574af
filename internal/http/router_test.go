package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/connector"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/database/dialect"
	"github.com/mrlokans/librarian/internal/library"
)

const userHeader = "X-User-ID"

type testServer struct {
	router  *gin.Engine
	service *library.Service
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "http.db")
	db, err := database.Open(context.Background(), dialect.SQLite(database.SQLiteDSN(dbPath)), 0,
		logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)

	st := database.NewStore(connector.Ready(db))
	t.Cleanup(func() {
		_ = st.Close(context.Background())
	})

	svc := library.NewService(st, zerolog.Nop())
	router := NewRouter(RouterConfig{
		Library:        svc,
		Store:          st,
		AuthMiddleware: auth.NewMiddleware(config.Auth{Mode: config.AuthModeHeader, UserHeader: userHeader}, zerolog.Nop()),
		Logger:         zerolog.Nop(),
		SeedOnVisit:    true,
		Version:        "1.0.0",
	})
	return &testServer{router: router, service: svc}
}

// do sends a request as userID (anonymous when empty) and returns the recorder.
func (s *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(userHeader, userID)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
