package entrypoint

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/library"
	"github.com/mrlokans/librarian/internal/mongostore"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Store
		want any
	}{
		{"sqlite path", config.Store{URL: "library.db"}, &database.Store{}},
		{"postgres", config.Store{URL: "postgres://localhost/library"}, &database.Store{}},
		{"mongo", config.Store{URL: "mongodb://localhost:27017"}, &mongostore.Store{}},
		{"explicit driver", config.Store{Driver: config.StoreDriverMongo, URL: "db.example.com"}, &mongostore.Store{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := NewStore(tt.cfg, zerolog.Nop())
			require.NoError(t, err)
			assert.IsType(t, tt.want, st)
		})
	}

	_, err := NewStore(config.Store{Driver: "oracle"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewService_SQLite(t *testing.T) {
	cfg := &config.Config{}
	cfg.Store.URL = filepath.Join(t.TempDir(), "librarian.db")
	cfg.Library.ReadingGoal = 3

	st, err := NewStore(cfg.Store, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	svc := NewService(cfg, st, zerolog.Nop())
	ctx := context.Background()

	n, err := svc.SeedDefaultBooks(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	goal, err := svc.ReadingGoal(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, goal.Goal)
}

func TestNewService_MissingURL(t *testing.T) {
	cfg := &config.Config{}

	st, err := NewStore(cfg.Store, zerolog.Nop())
	require.NoError(t, err)

	_, err = NewService(cfg, st, zerolog.Nop()).ListBooks(context.Background(), "alice", library.BookFilter{})
	assert.ErrorIs(t, err, library.ErrConnection)
}
