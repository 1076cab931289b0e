package project

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"apiary/cmd/cmdtest"
)

func noGitRoot() cmdtest.MockExecutor {
	return cmdtest.MockExecutor{
		OutputFunc: func(c *exec.Cmd) ([]byte, error) {
			return nil, fmt.Errorf("not a git repo")
		},
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "projects.json"))
	require.NoError(t, store.Register(Project{Name: "web", Path: "/repo/web"}))
	require.NoError(t, store.Register(Project{Name: "api", Path: "/repo/api"}))

	projects, err := store.List()
	require.NoError(t, err)
	require.Len(t, projects, 2)
}

func TestRegisterUpdatesExistingByName(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "projects.json"))
	require.NoError(t, store.Register(Project{Name: "web", Path: "/old"}))
	require.NoError(t, store.Register(Project{Name: "web", Path: "/new"}))

	found, err := store.FindByName("web")
	require.NoError(t, err)
	require.Equal(t, "/new", found.Path)

	projects, err := store.List()
	require.NoError(t, err)
	require.Len(t, projects, 1)
}

func TestUnregisterRemovesByName(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "projects.json"))
	require.NoError(t, store.Register(Project{Name: "web", Path: "/repo/web"}))

	removed, err := store.Unregister("web")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = store.Unregister("web")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestResolveByRegisteredName(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "projects.json"))
	require.NoError(t, store.Register(Project{Name: "web", Path: "/repo/web"}))

	p, err := Resolve(store, noGitRoot(), "web")
	require.NoError(t, err)
	require.Equal(t, "/repo/web", p.Path)
}

func TestResolveAutoRegistersPath(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(t.TempDir(), "projects.json"))

	p, err := Resolve(store, noGitRoot(), dir)
	require.NoError(t, err)
	require.Equal(t, dir, p.Path)

	found, err := store.FindByName(p.Name)
	require.NoError(t, err)
	require.NotNil(t, found)
}

func TestResolveSameNameDifferentPathErrors(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "projects.json"))
	require.NoError(t, store.Register(Project{Name: "web", Path: "/repo/web"}))

	dir := t.TempDir()
	otherDirNamedWeb := filepath.Join(dir, "web")
	require.NoError(t, os.Mkdir(otherDirNamedWeb, 0755))

	_, err := Resolve(store, noGitRoot(), otherDirNamedWeb)
	require.Error(t, err)
}

func TestResolveOrCWDDisambiguatesWithPathSuffix(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "projects.json"))
	cwd, err := os.Getwd()
	require.NoError(t, err)
	name := nameFromPath(cwd)
	require.NoError(t, store.Register(Project{Name: name, Path: "/somewhere/else"}))

	p, err := ResolveOrCWD(store, noGitRoot(), "")
	require.NoError(t, err)
	require.Equal(t, name+"-"+pathSuffix(cwd), p.Name)
	require.Equal(t, cwd, p.Path)

	require.Equal(t, pathSuffix("/a"), pathSuffix("/a"))
	require.NotEqual(t, pathSuffix("/a"), pathSuffix("/ab"))
	require.Len(t, pathSuffix("/a"), 6)
}
