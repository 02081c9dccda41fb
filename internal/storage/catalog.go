// ABOUTME: Catalog store: equipment, muscle groups and exercise catalog entries.
// ABOUTME: Reference data seeded once and looked up by name or id.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/adamsatar/lift/internal/models"
)

// CatalogStore holds the exercise catalog in its own SQLite database.
type CatalogStore struct {
	db     *sql.DB
	q      querier
	dbPath string
	inTx   bool
}

// OpenCatalog opens or creates the catalog store at dbPath.
func OpenCatalog(dbPath string) (*CatalogStore, error) {
	db, err := openDB(dbPath, catalogMigrations)
	if err != nil {
		return nil, err
	}
	return &CatalogStore{db: db, q: db, dbPath: dbPath}, nil
}

// Close closes the database connection. It is a no-op on a transaction-bound store.
func (s *CatalogStore) Close() error {
	if s.inTx || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *CatalogStore) Path() string {
	return s.dbPath
}

// SchemaVersion returns the applied migration version.
func (s *CatalogStore) SchemaVersion() (uint, bool, error) {
	return schemaVersion(s.db)
}

// InTx runs fn with a store bound to a single transaction.
func (s *CatalogStore) InTx(ctx context.Context, fn func(CatalogRepository) error) error {
	return s.withTx(ctx, func(tx *CatalogStore) error { return fn(tx) })
}

func (s *CatalogStore) withTx(ctx context.Context, fn func(*CatalogStore) error) error {
	if s.inTx {
		return fn(s)
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&CatalogStore{db: s.db, q: tx, dbPath: s.dbPath, inTx: true})
	})
}

// UpsertEquipment creates e unless equipment with the same name exists.
// It returns the row id and whether a row was created.
func (s *CatalogStore) UpsertEquipment(ctx context.Context, e models.Equipment) (int64, bool, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return 0, false, fmt.Errorf("upsert equipment: %w: empty name", ErrMalformedInput)
	}

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO equipment (name, default_weight, track_weight, has_resistance_levels)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, e.DefaultWeight, e.TrackWeight, e.HasResistanceLevels)
	if err != nil {
		return 0, false, fmt.Errorf("upsert equipment: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 1 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("upsert equipment: %w", err)
		}
		return id, true, nil
	}

	id, err := s.equipmentID(ctx, name)
	if err != nil {
		return 0, false, fmt.Errorf("upsert equipment: %w", err)
	}
	return id, false, nil
}

// UpsertMuscleGroup creates a muscle group unless one with the same name exists.
func (s *CatalogStore) UpsertMuscleGroup(ctx context.Context, name string) (int64, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, fmt.Errorf("upsert muscle group: %w: empty name", ErrMalformedInput)
	}

	res, err := s.q.ExecContext(ctx,
		`INSERT INTO muscle_groups (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name)
	if err != nil {
		return 0, false, fmt.Errorf("upsert muscle group: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 1 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("upsert muscle group: %w", err)
		}
		return id, true, nil
	}

	var id int64
	err = s.q.QueryRowContext(ctx, `SELECT id FROM muscle_groups WHERE name = ?`, name).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("upsert muscle group: %w", err)
	}
	return id, false, nil
}

// GetEquipment retrieves equipment by name.
func (s *CatalogStore) GetEquipment(ctx context.Context, name string) (*models.Equipment, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, default_weight, track_weight, has_resistance_levels
		FROM equipment
		WHERE name = ?
	`, strings.TrimSpace(name))

	var e models.Equipment
	err := row.Scan(&e.ID, &e.Name, &e.DefaultWeight, &e.TrackWeight, &e.HasResistanceLevels)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("equipment %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get equipment: %w", err)
	}
	return &e, nil
}

// ListEquipment returns all equipment ordered by name.
func (s *CatalogStore) ListEquipment(ctx context.Context) ([]*models.Equipment, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, default_weight, track_weight, has_resistance_levels
		FROM equipment
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()

	var out []*models.Equipment
	for rows.Next() {
		var e models.Equipment
		if err := rows.Scan(&e.ID, &e.Name, &e.DefaultWeight, &e.TrackWeight, &e.HasResistanceLevels); err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// ListMuscleGroups returns all muscle groups ordered by name.
func (s *CatalogStore) ListMuscleGroups(ctx context.Context) ([]*models.MuscleGroup, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name FROM muscle_groups ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list muscle groups: %w", err)
	}
	defer rows.Close()

	var out []*models.MuscleGroup
	for rows.Next() {
		var mg models.MuscleGroup
		if err := rows.Scan(&mg.ID, &mg.Name); err != nil {
			return nil, fmt.Errorf("scan muscle group: %w", err)
		}
		out = append(out, &mg)
	}
	return out, rows.Err()
}

// AddEntry creates a catalog entry and its muscle links in one transaction.
// Unknown equipment fails with ErrUnresolvedReference and writes nothing;
// unknown muscle group names are ignored.
func (s *CatalogStore) AddEntry(ctx context.Context, p models.CatalogEntryParams) (*models.CatalogEntry, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("add catalog entry: %w: %v", ErrMalformedInput, err)
	}

	var id int64
	err := s.withTx(ctx, func(tx *CatalogStore) error {
		equipmentID, err := tx.equipmentID(ctx, p.Equipment)
		if err != nil {
			return err
		}

		res, err := tx.q.ExecContext(ctx, `
			INSERT INTO exercise_catalog (name, equipment_id, weight, measured_by, sides)
			VALUES (?, ?, ?, ?, ?)
		`, p.Name, equipmentID, p.Weight, string(p.MeasuredBy), string(p.Laterality))
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: exercise %q already exists", ErrConstraintViolation, p.Name)
		}
		if err != nil {
			return err
		}

		id, err = res.LastInsertId()
		if err != nil {
			return err
		}
		return tx.linkMuscles(ctx, id, p.MuscleGroups)
	})
	if err != nil {
		return nil, fmt.Errorf("add catalog entry: %w", err)
	}

	return s.GetEntryByID(ctx, id)
}

// UpdateEntry rewrites every mutable attribute of entry id, replacing its muscle links.
func (s *CatalogStore) UpdateEntry(ctx context.Context, id int64, p models.CatalogEntryParams) (*models.CatalogEntry, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("update catalog entry: %w: %v", ErrMalformedInput, err)
	}

	err := s.withTx(ctx, func(tx *CatalogStore) error {
		equipmentID, err := tx.equipmentID(ctx, p.Equipment)
		if err != nil {
			return err
		}

		res, err := tx.q.ExecContext(ctx, `
			UPDATE exercise_catalog
			SET name = ?, equipment_id = ?, weight = ?, measured_by = ?, sides = ?
			WHERE id = ?
		`, p.Name, equipmentID, p.Weight, string(p.MeasuredBy), string(p.Laterality), id)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: exercise %q already exists", ErrConstraintViolation, p.Name)
		}
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("catalog entry %d: %w", id, ErrNotFound)
		}

		if _, err := tx.q.ExecContext(ctx, `DELETE FROM exercise_muscle_map WHERE exercise_id = ?`, id); err != nil {
			return err
		}
		return tx.linkMuscles(ctx, id, p.MuscleGroups)
	})
	if err != nil {
		return nil, fmt.Errorf("update catalog entry: %w", err)
	}

	return s.GetEntryByID(ctx, id)
}

const entryColumns = `
	SELECT c.id, c.name, c.equipment_id, e.name, c.weight, c.measured_by, c.sides
	FROM exercise_catalog c
	JOIN equipment e ON e.id = c.equipment_id
`

// GetEntry retrieves a catalog entry by exact name.
func (s *CatalogStore) GetEntry(ctx context.Context, name string) (*models.CatalogEntry, error) {
	entry, err := scanEntry(s.q.QueryRowContext(ctx, entryColumns+` WHERE c.name = ?`, strings.TrimSpace(name)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog entry %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get catalog entry: %w", err)
	}
	if err := s.attachMuscles(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEntryByID retrieves a catalog entry by id.
func (s *CatalogStore) GetEntryByID(ctx context.Context, id int64) (*models.CatalogEntry, error) {
	entry, err := scanEntry(s.q.QueryRowContext(ctx, entryColumns+` WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get catalog entry: %w", err)
	}
	if err := s.attachMuscles(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntries returns every entry ordered by name, with equipment and muscle group names.
func (s *CatalogStore) ListEntries(ctx context.Context) ([]*models.CatalogEntry, error) {
	rows, err := s.q.QueryContext(ctx, entryColumns+` ORDER BY c.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list catalog entries: %w", err)
	}

	var entries []*models.CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		entries = append(entries, entry)
	}
	// The pool has a single connection, so close before the next query.
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("list catalog entries: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list catalog entries: %w", err)
	}

	muscles, err := s.muscleNames(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		entry.MuscleGroups = muscles[entry.ID]
	}
	return entries, nil
}

// IDToNameMap returns catalog entry names keyed by id in one bulk read.
func (s *CatalogStore) IDToNameMap(ctx context.Context) (map[int64]string, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name FROM exercise_catalog`)
	if err != nil {
		return nil, fmt.Errorf("id to name map: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan catalog name: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

// NameToIDMap returns catalog entry ids keyed by name.
func (s *CatalogStore) NameToIDMap(ctx context.Context) (map[string]int64, error) {
	byID, err := s.IDToNameMap(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(byID))
	for id, name := range byID {
		out[name] = id
	}
	return out, nil
}

// CatalogCounts holds per-table row counts.
type CatalogCounts struct {
	Equipment    int
	MuscleGroups int
	Entries      int
}

// Counts returns the number of rows in each catalog table.
func (s *CatalogStore) Counts(ctx context.Context) (CatalogCounts, error) {
	var c CatalogCounts
	err := s.q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM equipment),
			(SELECT COUNT(*) FROM muscle_groups),
			(SELECT COUNT(*) FROM exercise_catalog)
	`).Scan(&c.Equipment, &c.MuscleGroups, &c.Entries)
	if err != nil {
		return c, fmt.Errorf("count catalog: %w", err)
	}
	return c, nil
}

func (s *CatalogStore) equipmentID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `SELECT id FROM equipment WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: equipment %q", ErrUnresolvedReference, name)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup equipment: %w", err)
	}
	return id, nil
}

// linkMuscles links exerciseID to each named muscle group that exists.
func (s *CatalogStore) linkMuscles(ctx context.Context, exerciseID int64, names []string) error {
	for _, name := range names {
		var groupID int64
		err := s.q.QueryRowContext(ctx,
			`SELECT id FROM muscle_groups WHERE name = ?`, strings.TrimSpace(name)).Scan(&groupID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("lookup muscle group: %w", err)
		}
		_, err = s.q.ExecContext(ctx, `
			INSERT INTO exercise_muscle_map (exercise_id, muscle_group_id)
			VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`, exerciseID, groupID)
		if err != nil {
			return fmt.Errorf("link muscle group: %w", err)
		}
	}
	return nil
}

func (s *CatalogStore) attachMuscles(ctx context.Context, entry *models.CatalogEntry) error {
	muscles, err := s.muscleNames(ctx, &entry.ID)
	if err != nil {
		return err
	}
	entry.MuscleGroups = muscles[entry.ID]
	return nil
}

// muscleNames returns muscle group names per exercise id, sorted by name.
// A nil exerciseID loads every link.
func (s *CatalogStore) muscleNames(ctx context.Context, exerciseID *int64) (map[int64][]string, error) {
	query := `
		SELECT m.exercise_id, g.name
		FROM exercise_muscle_map m
		JOIN muscle_groups g ON g.id = m.muscle_group_id
	`
	var args []any
	if exerciseID != nil {
		query += ` WHERE m.exercise_id = ?`
		args = append(args, *exerciseID)
	}
	query += ` ORDER BY g.name ASC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list muscle links: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan muscle link: %w", err)
		}
		out[id] = append(out[id], name)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.CatalogEntry, error) {
	var entry models.CatalogEntry
	var measuredBy, sides string
	err := row.Scan(
		&entry.ID,
		&entry.Name,
		&entry.EquipmentID,
		&entry.EquipmentName,
		&entry.Weight,
		&measuredBy,
		&sides,
	)
	if err != nil {
		return nil, err
	}
	entry.MeasuredBy = models.MeasuredBy(measuredBy)
	entry.Laterality = models.Laterality(sides)
	return &entry, nil
}
