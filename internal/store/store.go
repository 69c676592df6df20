// Package store persists shipward's project, server and component records.
//
// Records live as YAML files in a single workspace directory:
// projects.yaml, servers.yaml and components.yaml. Each file holds the
// complete record list and is rewritten on every mutation; there is no
// partial update. The [Store] is the only writer, so no file locking is
// attempted.
//
// Key types:
//   - [Store] - CRUD over the three record files
//   - [Project], [Server], [Component] - the record types (types.go)
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"shipward/internal/logger"
)

// Sentinel errors for record lookup and insertion.
var (
	// ErrProjectNotFound indicates the project id has no record.
	ErrProjectNotFound = errors.New("project not found")

	// ErrServerNotFound indicates the server id has no record.
	ErrServerNotFound = errors.New("server not found")

	// ErrComponentNotFound indicates the component id has no record.
	ErrComponentNotFound = errors.New("component not found")

	// ErrDuplicateID indicates an add would collide with an existing record.
	ErrDuplicateID = errors.New("record id already exists")
)

const (
	projectsFile   = "projects.yaml"
	serversFile    = "servers.yaml"
	componentsFile = "components.yaml"
)

// Store reads and writes record files under a workspace directory.
type Store struct {
	dir string
}

// New creates a [Store] rooted at dir. The directory is created lazily on
// the first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the workspace directory the store operates on.
func (s *Store) Dir() string {
	return s.dir
}

func readRecords[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	var records []T
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

func (s *Store) writeRecords(name string, records any) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	log := logger.GetStoreLogger()
	log.Debug().Str("file", path).Msg("wrote record file")
	return nil
}

// Projects returns all project records.
func (s *Store) Projects() ([]Project, error) {
	return readRecords[Project](filepath.Join(s.dir, projectsFile))
}

// Project returns the project with the given id.
func (s *Store) Project(id string) (*Project, error) {
	projects, err := s.Projects()
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
}

// AddProject appends a project record.
func (s *Store) AddProject(p Project) error {
	projects, err := s.Projects()
	if err != nil {
		return err
	}
	for _, existing := range projects {
		if existing.ID == p.ID {
			return fmt.Errorf("%w: project %s", ErrDuplicateID, p.ID)
		}
	}
	return s.writeRecords(projectsFile, append(projects, p))
}

// RemoveProject deletes the project with the given id.
func (s *Store) RemoveProject(id string) error {
	projects, err := s.Projects()
	if err != nil {
		return err
	}
	kept := projects[:0]
	found := false
	for _, p := range projects {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return s.writeRecords(projectsFile, kept)
}

// Servers returns all server records.
func (s *Store) Servers() ([]Server, error) {
	return readRecords[Server](filepath.Join(s.dir, serversFile))
}

// Server returns the server with the given id.
func (s *Store) Server(id string) (*Server, error) {
	servers, err := s.Servers()
	if err != nil {
		return nil, err
	}
	for i := range servers {
		if servers[i].ID == id {
			return &servers[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrServerNotFound, id)
}

// AddServer appends a server record.
func (s *Store) AddServer(srv Server) error {
	servers, err := s.Servers()
	if err != nil {
		return err
	}
	for _, existing := range servers {
		if existing.ID == srv.ID {
			return fmt.Errorf("%w: server %s", ErrDuplicateID, srv.ID)
		}
	}
	return s.writeRecords(serversFile, append(servers, srv))
}

// RemoveServer deletes the server with the given id.
func (s *Store) RemoveServer(id string) error {
	servers, err := s.Servers()
	if err != nil {
		return err
	}
	kept := servers[:0]
	found := false
	for _, srv := range servers {
		if srv.ID == id {
			found = true
			continue
		}
		kept = append(kept, srv)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrServerNotFound, id)
	}
	return s.writeRecords(serversFile, kept)
}

// Components returns all component records.
func (s *Store) Components() ([]Component, error) {
	return readRecords[Component](filepath.Join(s.dir, componentsFile))
}

// Component returns the component with the given id.
func (s *Store) Component(id string) (*Component, error) {
	components, err := s.Components()
	if err != nil {
		return nil, err
	}
	for i := range components {
		if components[i].ID == id {
			return &components[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, id)
}

// AddComponent appends a component record.
func (s *Store) AddComponent(c Component) error {
	components, err := s.Components()
	if err != nil {
		return err
	}
	for _, existing := range components {
		if existing.ID == c.ID {
			return fmt.Errorf("%w: component %s", ErrDuplicateID, c.ID)
		}
	}
	return s.writeRecords(componentsFile, append(components, c))
}

// RemoveComponent deletes the component with the given id.
func (s *Store) RemoveComponent(id string) error {
	components, err := s.Components()
	if err != nil {
		return err
	}
	kept := components[:0]
	found := false
	for _, c := range components {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrComponentNotFound, id)
	}
	return s.writeRecords(componentsFile, kept)
}
