package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"skillcode-go/errcode"
	"skillcode-go/types"
)

// Version is one catalog entry for a skill name.
type Version struct {
	ID        string
	Name      string
	Version   int
	Frames    int
	CreatedAt time.Time
}

// migrate ensures the catalog schema exists.
func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS skill_versions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			version INTEGER NOT NULL,
			frames INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			snapshot BLOB NOT NULL,
			UNIQUE(name, version)
		);
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_skill_versions_name ON skill_versions(name, version);`)
	return err
}

// appendVersion records a saved skill as the next version of its name,
// with a msgpack frame snapshot so the version stays restorable after the
// live file is overwritten.
func (s *Store) appendVersion(skill types.Skill) error {
	const op = "store.catalog"
	blob, err := msgpack.Marshal(skill.Frames)
	if err != nil {
		return errcode.Wrap(errcode.Error, op, err)
	}
	var current int
	err = s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM skill_versions WHERE name = ?`, skill.Name).Scan(&current)
	if err != nil {
		return errcode.Wrap(errcode.Error, op, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO skill_versions (id, name, version, frames, created_at, snapshot) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), skill.Name, current+1, len(skill.Frames),
		time.Now().UTC().Format(time.RFC3339Nano), blob,
	)
	if err != nil {
		return errcode.Wrap(errcode.Error, op, err)
	}
	return nil
}

// Versions returns the catalog history for a name, oldest first.
func (s *Store) Versions(name string) ([]Version, error) {
	const op = "store.versions"
	rows, err := s.db.Query(
		`SELECT id, name, version, frames, created_at FROM skill_versions WHERE name = ? ORDER BY version`, name)
	if err != nil {
		return nil, errcode.Wrap(errcode.Error, op, err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		var v Version
		var created string
		if err := rows.Scan(&v.ID, &v.Name, &v.Version, &v.Frames, &created); err != nil {
			return nil, errcode.Wrap(errcode.Error, op, err)
		}
		v.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, errcode.Wrap(errcode.Error, op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errcode.Wrap(errcode.Error, op, err)
	}
	return out, nil
}

// LoadVersion restores a historical version from its catalog snapshot.
func (s *Store) LoadVersion(name string, version int) (types.Skill, error) {
	const op = "store.load_version"
	var blob []byte
	err := s.db.QueryRow(
		`SELECT snapshot FROM skill_versions WHERE name = ? AND version = ?`, name, version).Scan(&blob)
	if err == sql.ErrNoRows {
		return types.Skill{}, errcode.New(errcode.NoSuchSkill, op, name)
	}
	if err != nil {
		return types.Skill{}, errcode.Wrap(errcode.Error, op, err)
	}
	var frames []types.Frame
	if err := msgpack.Unmarshal(blob, &frames); err != nil {
		return types.Skill{}, errcode.Wrap(errcode.CorruptSkill, op, err)
	}
	skill := types.Skill{Name: name, Frames: frames}
	if err := skill.Validate(); err != nil {
		return types.Skill{}, err
	}
	return skill, nil
}
