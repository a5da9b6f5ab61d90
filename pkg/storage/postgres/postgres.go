// Package postgres provides a PostgreSQL implementation of transport.DraftStore.
// It uses pgx/v5 for connection pooling and JSONB for structured draft storage.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/listora/listora/pkg/api"
	"github.com/listora/listora/pkg/storage"
	"github.com/listora/listora/pkg/transport"
)

// Store is a PostgreSQL-backed DraftStore.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements transport.DraftStore at compile time.
var _ transport.DraftStore = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// SaveDraft persists a new draft.
func (s *Store) SaveDraft(ctx context.Context, d *api.Draft) error {
	row, err := marshalDraft(d)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO drafts (
			id, tenant_id, step, product, vision, transcript,
			listings, failures, created_at, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		d.ID, storage.GetTenant(ctx), int(d.Step), row.product,
		nullJSON(row.vision), nullJSON(row.transcript),
		nullJSON(row.listings), nullJSON(row.failures),
		d.CreatedAt, d.GeneratedAt,
	)

	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting draft: %w", err)
	}

	return nil
}

// GetDraft retrieves a draft by ID.
func (s *Store) GetDraft(ctx context.Context, id string) (*api.Draft, error) {
	tenantID := storage.GetTenant(ctx)

	query := `
		SELECT id, step, product, vision, transcript,
		       listings, failures, created_at, generated_at
		FROM drafts
		WHERE id = $1
	`
	args := []any{id}

	if tenantID != "" {
		query += " AND tenant_id = $2"
		args = append(args, tenantID)
	}

	var d api.Draft
	var step int
	var productJSON []byte
	var visionJSON, transcriptJSON, listingsJSON, failuresJSON *[]byte

	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&d.ID, &step, &productJSON, &visionJSON, &transcriptJSON,
		&listingsJSON, &failuresJSON, &d.CreatedAt, &d.GeneratedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying draft: %w", err)
	}

	d.Object = "draft"
	d.Step = api.DraftStep(step)

	if err := json.Unmarshal(productJSON, &d.Product); err != nil {
		return nil, fmt.Errorf("unmarshaling product: %w", err)
	}
	if visionJSON != nil {
		if err := json.Unmarshal(*visionJSON, &d.Vision); err != nil {
			return nil, fmt.Errorf("unmarshaling vision: %w", err)
		}
	}
	if transcriptJSON != nil {
		if err := json.Unmarshal(*transcriptJSON, &d.Transcript); err != nil {
			return nil, fmt.Errorf("unmarshaling transcript: %w", err)
		}
	}
	if listingsJSON != nil {
		if err := json.Unmarshal(*listingsJSON, &d.Listings); err != nil {
			return nil, fmt.Errorf("unmarshaling listings: %w", err)
		}
	}
	if failuresJSON != nil {
		if err := json.Unmarshal(*failuresJSON, &d.Failures); err != nil {
			return nil, fmt.Errorf("unmarshaling failures: %w", err)
		}
	}

	return &d, nil
}

// UpdateDraft replaces a stored draft.
func (s *Store) UpdateDraft(ctx context.Context, d *api.Draft) error {
	row, err := marshalDraft(d)
	if err != nil {
		return err
	}

	tenantID := storage.GetTenant(ctx)

	query := `
		UPDATE drafts SET
			step = $2, product = $3, vision = $4, transcript = $5,
			listings = $6, failures = $7, generated_at = $8
		WHERE id = $1
	`
	args := []any{
		d.ID, int(d.Step), row.product,
		nullJSON(row.vision), nullJSON(row.transcript),
		nullJSON(row.listings), nullJSON(row.failures),
		d.GeneratedAt,
	}

	if tenantID != "" {
		query += " AND tenant_id = $9"
		args = append(args, tenantID)
	}

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating draft: %w", err)
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// DeleteDraft removes a draft by ID.
func (s *Store) DeleteDraft(ctx context.Context, id string) error {
	tenantID := storage.GetTenant(ctx)

	query := "DELETE FROM drafts WHERE id = $1"
	args := []any{id}

	if tenantID != "" {
		query += " AND tenant_id = $2"
		args = append(args, tenantID)
	}

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// ListDrafts returns a paginated list of drafts, newest first by default.
// Cursor pagination resolves the cursor draft's (created_at, id) pair and
// keyset-filters on it.
func (s *Store) ListDrafts(ctx context.Context, opts transport.ListOptions) (*transport.DraftList, error) {
	tenantID := storage.GetTenant(ctx)

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	asc := opts.Order == "asc"

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if tenantID != "" {
		conds = append(conds, "tenant_id = "+arg(tenantID))
	}
	if opts.Step != 0 {
		conds = append(conds, "step = "+arg(opts.Step))
	}

	cursorID := opts.After
	if cursorID == "" {
		cursorID = opts.Before
	}
	if cursorID != "" {
		var cursorCreated int64
		err := s.pool.QueryRow(ctx,
			"SELECT created_at FROM drafts WHERE id = $1", cursorID,
		).Scan(&cursorCreated)
		if errors.Is(err, pgx.ErrNoRows) {
			return &transport.DraftList{Object: "list", Data: []*api.Draft{}}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("resolving cursor: %w", err)
		}

		// after moves down the sort order, before moves up.
		op := "<"
		if (asc && opts.After != "") || (!asc && opts.Before != "") {
			op = ">"
		}
		conds = append(conds, fmt.Sprintf("(created_at, id) %s (%s, %s)",
			op, arg(cursorCreated), arg(cursorID)))
	}

	dir := "DESC"
	if asc {
		dir = "ASC"
	}

	query := "SELECT id FROM drafts"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at %s, id %s LIMIT %s", dir, dir, arg(limit+1))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning draft id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}

	hasMore := len(ids) > limit
	if hasMore {
		ids = ids[:limit]
	}

	drafts := make([]*api.Draft, 0, len(ids))
	for _, id := range ids {
		d, err := s.GetDraft(ctx, id)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}

	result := &transport.DraftList{
		Object:  "list",
		Data:    drafts,
		HasMore: hasMore,
	}
	if len(drafts) > 0 {
		result.FirstID = drafts[0].ID
		result.LastID = drafts[len(drafts)-1].ID
	}

	return result, nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// draftRow holds the JSONB columns of a draft.
type draftRow struct {
	product    []byte
	vision     []byte
	transcript []byte
	listings   []byte
	failures   []byte
}

// marshalDraft serializes the structured draft fields for JSONB columns.
func marshalDraft(d *api.Draft) (*draftRow, error) {
	var row draftRow
	var err error

	row.product, err = json.Marshal(d.Product)
	if err != nil {
		return nil, fmt.Errorf("marshaling product: %w", err)
	}
	if d.Vision != nil {
		row.vision, err = json.Marshal(d.Vision)
		if err != nil {
			return nil, fmt.Errorf("marshaling vision: %w", err)
		}
	}
	if d.Transcript != nil {
		row.transcript, err = json.Marshal(d.Transcript)
		if err != nil {
			return nil, fmt.Errorf("marshaling transcript: %w", err)
		}
	}
	if len(d.Listings) > 0 {
		row.listings, err = json.Marshal(d.Listings)
		if err != nil {
			return nil, fmt.Errorf("marshaling listings: %w", err)
		}
	}
	if len(d.Failures) > 0 {
		row.failures, err = json.Marshal(d.Failures)
		if err != nil {
			return nil, fmt.Errorf("marshaling failures: %w", err)
		}
	}

	return &row, nil
}

// nullJSON converts nil/empty byte slices to nil for nullable JSONB columns.
func nullJSON(b []byte) *[]byte {
	if len(b) == 0 {
		return nil
	}
	return &b
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
