package mappings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/giygas/medication-identifier/database"
)

const columns = `id, medication_name, normalized_name, active_ingredient, class,
	is_multiple, sub_medications, created_by, usage_count, last_used,
	is_active, notes, created_at, updated_at`

var storeErrors = database.ErrorMap{NotFound: ErrNotFound, Conflict: ErrConflict}

// PostgresStore persists learned mappings in PostgreSQL. Uniqueness of active
// names is enforced by the partial unique index on normalized_name, so
// concurrent writers get exactly one winner and ErrConflict for the rest.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindActiveByNormalizedName returns the active mapping for a normalized name.
func (s *PostgresStore) FindActiveByNormalizedName(ctx context.Context, normalized string) (*LearnedMapping, error) {
	q := `SELECT ` + columns + ` FROM learned_mappings WHERE normalized_name = $1 AND is_active LIMIT 1`

	return getMapping(ctx, s.db, q, normalized)
}

// Find returns a mapping by id, active or not.
func (s *PostgresStore) Find(ctx context.Context, id uuid.UUID) (*LearnedMapping, error) {
	q := `SELECT ` + columns + ` FROM learned_mappings WHERE id = $1`

	return getMapping(ctx, s.db, q, id)
}

// Create inserts a new active mapping.
func (s *PostgresStore) Create(ctx context.Context, cmd CreateCommand) (*LearnedMapping, error) {
	if err := ValidateCreate(cmd); err != nil {
		return nil, err
	}

	m := newMapping(cmd, time.Now().UTC())
	subs, err := marshalSubMedications(m.SubMedications)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO learned_mappings (
			id, medication_name, normalized_name, active_ingredient, class,
			is_multiple, sub_medications, created_by, notes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING ` + columns

	return getMapping(ctx, s.db, q,
		m.ID, m.MedicationName, m.NormalizedName, m.ActiveIngredient, m.Class,
		m.IsMultiple, subs, m.CreatedBy, m.Notes, m.CreatedAt,
	)
}

// Update applies a partial update inside a transaction holding the row lock.
func (s *PostgresStore) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*LearnedMapping, error) {
	selectQ := `SELECT ` + columns + ` FROM learned_mappings WHERE id = $1 FOR UPDATE`
	updateQ := `
		UPDATE learned_mappings
		SET medication_name = $2, normalized_name = $3, active_ingredient = $4,
		    class = $5, is_multiple = $6, sub_medications = $7, notes = $8,
		    is_active = $9, updated_at = $10
		WHERE id = $1
		RETURNING ` + columns

	var updated *LearnedMapping
	err := database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		current, err := getMapping(ctx, tx, selectQ, id)
		if err != nil {
			return err
		}

		if err := ValidateUpdate(*current, cmd); err != nil {
			return err
		}

		next := current.Clone()
		next.apply(cmd, time.Now().UTC())

		subs, err := marshalSubMedications(next.SubMedications)
		if err != nil {
			return err
		}

		updated, err = getMapping(ctx, tx, updateQ,
			id, next.MedicationName, next.NormalizedName, next.ActiveIngredient,
			next.Class, next.IsMultiple, subs, next.Notes, next.IsActive, next.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return nil, storeErrors.Map(err)
	}
	return updated, nil
}

// Deactivate soft-deletes a mapping. Repeating it leaves the row untouched.
func (s *PostgresStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	q := `
		UPDATE learned_mappings
		SET updated_at = CASE WHEN is_active THEN NOW() ELSE updated_at END,
		    is_active = FALSE
		WHERE id = $1`

	return storeErrors.Map(database.Touched(s.db.ExecContext(ctx, q, id)))
}

// RecordUsage increments the usage counter atomically in the database.
func (s *PostgresStore) RecordUsage(ctx context.Context, id uuid.UUID) error {
	q := `
		UPDATE learned_mappings
		SET usage_count = usage_count + 1, last_used = NOW()
		WHERE id = $1`

	return storeErrors.Map(database.Touched(s.db.ExecContext(ctx, q, id)))
}

// List returns mappings matching filter, most used first, then newest first.
func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]LearnedMapping, error) {
	q, args := buildListQuery(filter)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query learned mappings: %w", err)
	}
	defer rows.Close()

	items := make([]LearnedMapping, 0)
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read learned mappings: %w", err)
	}
	return items, nil
}

// Stats computes counters over all mappings in one pass.
func (s *PostgresStore) Stats(ctx context.Context, staleAfter time.Duration) (Stats, error) {
	q := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE NOT is_active),
			COALESCE(SUM(usage_count), 0),
			COUNT(*) FILTER (WHERE is_active AND last_used IS NULL),
			COUNT(*) FILTER (WHERE is_active AND COALESCE(last_used, created_at) < $1),
			COUNT(*) FILTER (WHERE is_active AND is_multiple)
		FROM learned_mappings`

	cutoff := time.Now().UTC().Add(-staleAfter)

	var st Stats
	err := s.db.QueryRowContext(ctx, q, cutoff).Scan(
		&st.Total, &st.Active, &st.Inactive, &st.TotalUsage,
		&st.NeverUsed, &st.StaleActive, &st.MultipleActive,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("query learned mapping stats: %w", err)
	}
	return st, nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// buildListQuery renders the list query and its arguments for filter.
func buildListQuery(filter Filter) (string, []any) {
	var (
		where []string
		args  []any
	)

	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(medication_name ILIKE $%d OR active_ingredient ILIKE $%d OR class ILIKE $%d)", n, n, n,
		))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(columns)
	b.WriteString(" FROM learned_mappings")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY usage_count DESC, created_at DESC")

	return b.String(), args
}

// escapeLike escapes LIKE wildcards so operator search text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func marshalSubMedications(subs []SubMedication) ([]byte, error) {
	if subs == nil {
		subs = []SubMedication{}
	}
	b, err := json.Marshal(subs)
	if err != nil {
		return nil, fmt.Errorf("marshal sub-medications: %w", err)
	}
	return b, nil
}

// getMapping runs a query returning one mapping row and translates a
// missing row or a unique violation into the store's errors.
func getMapping(ctx context.Context, conn database.Conn, query string, args ...any) (*LearnedMapping, error) {
	m, err := scanMapping(conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, storeErrors.Map(err)
	}
	return &m, nil
}

func scanMapping(s database.Row) (LearnedMapping, error) {
	var (
		m        LearnedMapping
		subsRaw  []byte
		lastUsed sql.NullTime
	)

	err := s.Scan(
		&m.ID, &m.MedicationName, &m.NormalizedName, &m.ActiveIngredient, &m.Class,
		&m.IsMultiple, &subsRaw, &m.CreatedBy, &m.UsageCount, &lastUsed,
		&m.IsActive, &m.Notes, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return LearnedMapping{}, err
	}

	if len(subsRaw) > 0 {
		if err := json.Unmarshal(subsRaw, &m.SubMedications); err != nil {
			return LearnedMapping{}, fmt.Errorf("unmarshal sub-medications: %w", err)
		}
	}
	if len(m.SubMedications) == 0 {
		m.SubMedications = nil
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		m.LastUsed = &t
	}

	return m, nil
}
