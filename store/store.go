// Package store persists named skills. The current frames of a skill live
// in a JSON file written with temp-then-rename discipline, so a save either
// fully succeeds or leaves no partial file behind. Every save also appends
// a row to a SQLite version catalog, so re-saving under the same name
// creates a new restorable version instead of mutating history.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"skillcode-go/errcode"
	"skillcode-go/types"
)

const (
	skillExt    = ".json"
	catalogFile = "catalog.db"
)

// Store is a directory of skill files plus the version catalog.
type Store struct {
	dir string
	db  *sql.DB
}

// Open prepares a store rooted at dir, creating it if needed.
func Open(dir string) (*Store, error) {
	const op = "store.open"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errcode.Wrap(errcode.Error, op, err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, catalogFile))
	if err != nil {
		return nil, errcode.Wrap(errcode.Error, op, err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, errcode.Wrap(errcode.Error, op, err)
	}
	return &Store{dir: dir, db: db}, nil
}

// Close releases the catalog handle.
func (s *Store) Close() error { return s.db.Close() }

// Dir returns the store root.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+skillExt)
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errcode.New(errcode.CorruptSkill, "store", "invalid skill name "+name)
	}
	return nil
}

// Save persists a skill atomically and appends a catalog version.
// The skill file is the source of truth: a catalog failure after the
// rename is surfaced, but the saved file stands.
func (s *Store) Save(skill types.Skill) error {
	const op = "store.save"
	if err := validName(skill.Name); err != nil {
		return err
	}
	if err := skill.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(skill, "", "  ")
	if err != nil {
		return errcode.Wrap(errcode.Error, op, err)
	}

	tmp, err := os.CreateTemp(s.dir, skill.Name+".*.tmp")
	if err != nil {
		return errcode.Wrap(errcode.Error, op, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errcode.Wrap(errcode.Error, op, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errcode.Wrap(errcode.Error, op, err)
	}
	if err := tmp.Close(); err != nil {
		return errcode.Wrap(errcode.Error, op, err)
	}
	if err := os.Rename(tmp.Name(), s.path(skill.Name)); err != nil {
		return errcode.Wrap(errcode.Error, op, err)
	}

	return s.appendVersion(skill)
}

// Load reads a skill by name, validating the persistence invariants.
// A file that exists but violates them yields corrupt_skill; a skill is
// never silently truncated.
func (s *Store) Load(name string) (types.Skill, error) {
	const op = "store.load"
	if err := validName(name); err != nil {
		return types.Skill{}, err
	}
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return types.Skill{}, errcode.New(errcode.NoSuchSkill, op, name)
	}
	if err != nil {
		return types.Skill{}, errcode.Wrap(errcode.Error, op, err)
	}
	var skill types.Skill
	if err := json.Unmarshal(data, &skill); err != nil {
		return types.Skill{}, errcode.Wrap(errcode.CorruptSkill, op, err)
	}
	if err := skill.Validate(); err != nil {
		return types.Skill{}, err
	}
	return skill, nil
}

// Delete removes a skill file and its version history.
func (s *Store) Delete(name string) error {
	const op = "store.delete"
	if err := validName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return errcode.New(errcode.NoSuchSkill, op, name)
	}
	if err != nil {
		return errcode.Wrap(errcode.Error, op, err)
	}
	if _, err := s.db.Exec(`DELETE FROM skill_versions WHERE name = ?`, name); err != nil {
		return errcode.Wrap(errcode.Error, op, err)
	}
	return nil
}

// List returns the stored skill names in sorted order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errcode.Wrap(errcode.Error, "store.list", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), skillExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), skillExt))
	}
	return names, nil
}
