// Package project is a minimal registry mapping project names to
// filesystem paths, used by the CLI to resolve `--project` arguments.
package project

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"apiary/cmd"
)

const FileName = "projects.json"

// Project associates a name with the path it was registered against.
type Project struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Store persists the project registry as a JSON array, written atomically.
type Store struct {
	path string
}

// NewStore returns a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the registered projects, or an empty slice if the file is
// absent or empty.
func (s *Store) Load() ([]Project, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading project store %s: %w", s.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("parsing project store %s: %w", s.path, err)
	}
	return projects, nil
}

// Save writes projects atomically: a temp file in the same directory is
// written and then renamed over the target.
func (s *Store) Save(projects []Project) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating project store directory: %w", err)
	}

	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling project store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".projects-*.json.tmp")
	if err != nil {
		return fmt.Errorf("creating temp project store: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp project store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp project store: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("renaming temp project store into place: %w", err)
	}
	return nil
}

// FindByName returns the registered project with the given name, if any.
func (s *Store) FindByName(name string) (*Project, error) {
	projects, err := s.Load()
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.Name == name {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

// Register adds project, or updates the path of an existing project with
// the same name.
func (s *Store) Register(project Project) error {
	projects, err := s.Load()
	if err != nil {
		return err
	}
	for i := range projects {
		if projects[i].Name == project.Name {
			projects[i].Path = project.Path
			return s.Save(projects)
		}
	}
	projects = append(projects, project)
	return s.Save(projects)
}

// Unregister removes the project with the given name, reporting whether
// anything was removed.
func (s *Store) Unregister(name string) (bool, error) {
	projects, err := s.Load()
	if err != nil {
		return false, err
	}
	kept := projects[:0]
	removed := false
	for _, p := range projects {
		if p.Name == name {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if removed {
		if err := s.Save(kept); err != nil {
			return false, err
		}
	}
	return removed, nil
}

// List returns every registered project.
func (s *Store) List() ([]Project, error) {
	return s.Load()
}

// detectGitRoot shells out to `git rev-parse --show-toplevel` in dir,
// returning the repository root if dir is inside one.
func detectGitRoot(executor cmd.Executor, dir string) (string, bool) {
	c := exec.Command("git", "rev-parse", "--show-toplevel")
	c.Dir = dir
	out, err := executor.Output(c)
	if err != nil {
		return "", false
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return "", false
	}
	return root, true
}

// nameFromPath derives a project name from a path's final component.
func nameFromPath(path string) string {
	base := filepath.Base(path)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "unnamed"
	}
	return base
}

// pathSuffix derives a short, content-stable disambiguator from path: the
// first 6 hex characters of its SHA-256 digest. Preferred over the
// original's path-length suffix, which collides whenever two different
// paths happen to share a length.
func pathSuffix(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])[:6]
}

// Resolve looks up input as a registered project name first, then as a
// filesystem path (auto-registering it, detecting a git root if present).
func Resolve(store *Store, executor cmd.Executor, input string) (Project, error) {
	if existing, err := store.FindByName(input); err != nil {
		return Project{}, err
	} else if existing != nil {
		return *existing, nil
	}

	absPath := input
	if !filepath.IsAbs(absPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return Project{}, fmt.Errorf("resolving current directory: %w", err)
		}
		absPath = filepath.Join(cwd, input)
	}

	projectPath := absPath
	if _, err := os.Stat(absPath); err == nil {
		if root, ok := detectGitRoot(executor, absPath); ok {
			projectPath = root
		}
	}

	name := nameFromPath(projectPath)
	if existing, err := store.FindByName(name); err != nil {
		return Project{}, err
	} else if existing != nil {
		if existing.Path == projectPath {
			return *existing, nil
		}
		return Project{}, fmt.Errorf("project %q already registered with different path: %s (use --name to pick a different name)", name, existing.Path)
	}

	p := Project{Name: name, Path: projectPath}
	if err := store.Register(p); err != nil {
		return Project{}, err
	}
	return p, nil
}

// ResolveOrCWD resolves input if non-empty, otherwise registers (or
// reuses) a project for the current working directory. A same-named
// project at a different path is disambiguated with a content-derived
// suffix rather than silently colliding.
func ResolveOrCWD(store *Store, executor cmd.Executor, input string) (Project, error) {
	if input != "" {
		return Resolve(store, executor, input)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return Project{}, fmt.Errorf("resolving current directory: %w", err)
	}

	projectPath := cwd
	if root, ok := detectGitRoot(executor, cwd); ok {
		projectPath = root
	}
	name := nameFromPath(projectPath)

	existing, err := store.FindByName(name)
	if err != nil {
		return Project{}, err
	}
	if existing != nil {
		if existing.Path == projectPath {
			return *existing, nil
		}
		uniqueName := name + "-" + pathSuffix(projectPath)
		p := Project{Name: uniqueName, Path: projectPath}
		if err := store.Register(p); err != nil {
			return Project{}, err
		}
		return p, nil
	}

	p := Project{Name: name, Path: projectPath}
	if err := store.Register(p); err != nil {
		return Project{}, err
	}
	return p, nil
}
