package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyName is returned when a project is saved without a name.
var ErrEmptyName = errors.New("project name must not be empty")

func (s *Store) CreateProject(name, color string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	p := Project{
		ID:        uuid.New().String(),
		Name:      name,
		Color:     color,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	_, err := s.db.NamedExec(
		`INSERT INTO projects (id, name, color, created_at) VALUES (:id, :name, :color, :created_at)`, p,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return &p, nil
}

func (s *Store) GetProject(id string) (*Project, error) {
	var p Project
	if err := s.db.Get(&p, `SELECT id, name, color, created_at FROM projects WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return &p, nil
}

func (s *Store) ListProjects() ([]Project, error) {
	var projects []Project
	if err := s.db.Select(&projects, `SELECT id, name, color, created_at FROM projects ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *Store) UpdateProject(id, name, color string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	res, err := s.db.Exec(`UPDATE projects SET name = ?, color = ? WHERE id = ?`, name, color, id)
	if err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %s not found", id)
	}
	return nil
}
