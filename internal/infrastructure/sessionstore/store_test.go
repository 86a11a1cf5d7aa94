package sessionstore_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supermarket-console/internal/application/session"
	"github.com/jhoicas/supermarket-console/internal/infrastructure/sessionstore"
	pkgjwt "github.com/jhoicas/supermarket-console/pkg/jwt"
)

// contrato común: token e identidad se guardan y borran juntos.
func exerciseStore(t *testing.T, store session.Store) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.Empty(), "store nuevo sin sesión")

	user := &session.Identity{ID: "u-1", Email: "ana@example.com", FirstName: "Ana", LastName: "Pérez", Role: "admin"}
	require.NoError(t, store.Save(ctx, session.State{Token: "tok-1", User: user}))

	st, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", st.Token)
	require.NotNil(t, st.User)
	assert.Equal(t, "Ana Pérez", st.User.FullName())

	require.NoError(t, store.Clear(ctx))
	st, err = store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.Empty())
	assert.Nil(t, st.User)

	require.NoError(t, store.Clear(ctx), "borrar dos veces no es error")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, sessionstore.NewMemoryStore())
}

func TestMemoryStore_NoCompartePunteros(t *testing.T) {
	ctx := context.Background()
	store := sessionstore.NewMemoryStore()
	user := &session.Identity{FirstName: "Ana"}
	require.NoError(t, store.Save(ctx, session.State{Token: "t", User: user}))

	user.FirstName = "Otra"
	st, _ := store.Load(ctx)
	assert.Equal(t, "Ana", st.User.FirstName)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseStore(t, sessionstore.NewFileStore(path))
}

func TestFileStore_LlavesYPermisos(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := sessionstore.NewFileStore(path)
	require.NoError(t, store.Save(context.Background(), session.State{
		Token: "tok-1", User: &session.Identity{FirstName: "Ana"},
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]string
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "tok-1", doc[sessionstore.KeyToken])
	assert.Contains(t, doc[sessionstore.KeyUser], `"firstname":"Ana"`)
}

func TestFileStore_ArchivoCorrupto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{no es json"), 0o600))

	_, err := sessionstore.NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

// TestRedisStore requiere un Redis real: TEST_REDIS_URL=redis://localhost:6379/15
func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL no definido")
	}
	ctx := context.Background()
	client, err := sessionstore.NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	prefix := "test:" + uuid.NewString()
	store := sessionstore.NewRedisStore(client, prefix)
	exerciseStore(t, store)

	tok, err := pkgjwt.Generate("secret", "u-1", "ana@example.com", "admin", "test", 10)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, session.State{Token: tok, User: &session.Identity{ID: "u-1"}}))
	ttl, err := client.TTL(ctx, prefix+":"+sessionstore.KeyToken).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl.Minutes(), 9.0, "la llave expira con el token")
	require.NoError(t, store.Clear(ctx))
}
