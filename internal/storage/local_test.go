package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveUpload(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://localhost:8080/")
	require.NoError(t, err)

	rel, err := store.SaveUpload(context.Background(), AssetIcon, "com.acme.app", "My Icon.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, "icons/com.acme.app-"))
	assert.True(t, strings.HasSuffix(rel, ".png"))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	assert.Equal(t, "http://localhost:8080/uploads/"+rel, store.URL(rel))
	assert.Empty(t, store.URL(""))
}

func TestLocalStore_ResolveStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(filepath.Join(root, "uploads"), "http://x")
	require.NoError(t, err)

	require.NoError(t, store.WriteFile(context.Background(), "../../escape.txt", []byte("x")))

	_, err = os.Stat(filepath.Join(root, "uploads", "escape.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_Remove(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://x")
	require.NoError(t, err)

	require.NoError(t, store.WriteFile(context.Background(), "builds/a.apk", []byte("x")))
	require.NoError(t, store.Remove("builds/a.apk"))
	assert.NoError(t, store.Remove("builds/a.apk"))
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://x")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, store.WriteFile(ctx, "builds/a.apk", []byte("x")))
}

func TestStubGenerator_Generate(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://x")
	require.NoError(t, err)

	gen := NewStubGenerator(store)
	gen.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	rel, err := gen.Generate(context.Background(), "com.acme.app", ArtifactAPK)
	require.NoError(t, err)
	assert.Equal(t, "builds/com.acme.app.apk", rel)

	data, err := os.ReadFile(filepath.Join(root, "builds", "com.acme.app.apk"))
	require.NoError(t, err)
	assert.Equal(t, "FAKE APK BUILD for com.acme.app\nGenerated at 2026-01-02T03:04:05Z\n", string(data))

	gen.now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	rel, err = gen.Generate(context.Background(), "com.acme.app", ArtifactAAB)
	require.NoError(t, err)
	assert.Equal(t, "builds/com.acme.app.aab", rel)

	data, err = os.ReadFile(filepath.Join(root, "builds", "com.acme.app.aab"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "FAKE AAB BUILD")
}
