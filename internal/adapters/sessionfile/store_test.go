package sessionfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
)

func testRecord() domainauth.StoredSession {
	return domainauth.StoredSession{
		SchemaVersion: domainauth.SchemaVersion,
		Role:          domainauth.RoleLearner,
		Token:         "tok-1",
		Principal:     domainauth.Profile{ID: "u-1", Email: "a@b.com", FirstName: "Ada", LastName: "Lovelace"},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRecord()))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testRecord(), loaded)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStore_LoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	require.ErrorIs(t, err, domainauth.ErrNoSession)
}

func TestStore_LoadMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0600))

	_, err = store.Load(context.Background())
	require.ErrorIs(t, err, domainauth.ErrMalformedSession)
}

func TestStore_LoadMissingRoleTag(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	entry := `{"schemaVersion":1,"token":"tok","principal":{"id":"u-1","email":"a@b.com","firstName":"A","lastName":"B"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte(entry), 0600))

	_, err = store.Load(context.Background())
	require.ErrorIs(t, err, domainauth.ErrMalformedSession)
}

func TestStore_LoadWrongSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	// Bypass Save's validation by writing directly.
	entry := `{"schemaVersion":99,"role":"learner","token":"tok","principal":{"id":"u-1"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte(entry), 0600))

	_, err = store.Load(context.Background())
	require.ErrorIs(t, err, domainauth.ErrMalformedSession)
}

func TestStore_ClearIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRecord()))
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	_, err = store.Load(ctx)
	require.ErrorIs(t, err, domainauth.ErrNoSession)
}

func TestStore_SaveRejectsInvalidRecord(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	rec := testRecord()
	rec.Token = ""
	require.ErrorIs(t, store.Save(context.Background(), rec), domainauth.ErrMalformedSession)
}
