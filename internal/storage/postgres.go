package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"console-warden/internal/domain"
)

// DBTX is the subset of pgxpool.Pool used by the store, split out so tests
// can inject mocks.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

type PostgresStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PostgresStore{pool: pool, db: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
	name TEXT PRIMARY KEY,
	access_level INT NOT NULL,
	added_by TEXT NOT NULL DEFAULT '',
	date_added TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS sanctions (
	subject TEXT PRIMARY KEY,
	issued_by TEXT NOT NULL,
	created TIMESTAMPTZ NOT NULL,
	expires TIMESTAMPTZ NOT NULL,
	category INT NOT NULL
);
CREATE TABLE IF NOT EXISTS reputation_cache (
	subject TEXT PRIMARY KEY,
	duel INT NOT NULL DEFAULT 0,
	ffa INT NOT NULL DEFAULT 0,
	tdm INT NOT NULL DEFAULT 0,
	ca INT NOT NULL DEFAULT 0,
	ctf INT NOT NULL DEFAULT 0,
	last_refresh TIMESTAMPTZ NOT NULL
);`

	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// key canonicalizes a name for keyed storage. All tables key on the
// lowercased short name.
func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// -- Users --

func (s *PostgresStore) GetAccessLevel(ctx context.Context, name string) (domain.Level, error) {
	var level int
	err := s.db.QueryRow(ctx,
		`SELECT access_level FROM users WHERE name = $1`, key(name),
	).Scan(&level)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.LevelNone, ErrNotFound
	}
	if err != nil {
		return domain.LevelNone, fmt.Errorf("get access level: %w", err)
	}
	return domain.Level(level), nil
}

func (s *PostgresStore) SetAccessLevel(ctx context.Context, name string, level domain.Level, addedBy string) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO users (name, access_level, added_by, date_added)
VALUES ($1, $2, $3, now())
ON CONFLICT (name) DO UPDATE SET access_level = $2, added_by = $3`,
		key(name), int(level), key(addedBy))
	if err != nil {
		return fmt.Errorf("set access level: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveAccess(ctx context.Context, name string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE name = $1`, key(name))
	if err != nil {
		return fmt.Errorf("remove access: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]UserRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT name, access_level, added_by, date_added FROM users ORDER BY access_level DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var result []UserRecord
	for rows.Next() {
		var rec UserRecord
		var level int
		if err := rows.Scan(&rec.Name, &level, &rec.AddedBy, &rec.DateAdded); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		rec.Level = domain.Level(level)
		result = append(result, rec)
	}
	return result, rows.Err()
}

// -- Sanctions --

func (s *PostgresStore) SaveSanction(ctx context.Context, sanction domain.Sanction) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO sanctions (subject, issued_by, created, expires, category)
VALUES ($1, $2, $3, $4, $5)`,
		key(sanction.Subject), key(sanction.IssuedBy),
		sanction.Created, sanction.Expires, int(sanction.Category))
	if err != nil {
		return fmt.Errorf("save sanction: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSanction(ctx context.Context, subject string) (*domain.Sanction, error) {
	var sanction domain.Sanction
	var category int
	err := s.db.QueryRow(ctx,
		`SELECT subject, issued_by, created, expires, category FROM sanctions WHERE subject = $1`,
		key(subject),
	).Scan(&sanction.Subject, &sanction.IssuedBy, &sanction.Created, &sanction.Expires, &category)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sanction: %w", err)
	}
	sanction.Category = domain.SanctionCategory(category)
	return &sanction, nil
}

func (s *PostgresStore) DeleteSanction(ctx context.Context, subject string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM sanctions WHERE subject = $1`, key(subject))
	if err != nil {
		return fmt.Errorf("delete sanction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListSanctions(ctx context.Context) ([]domain.Sanction, error) {
	rows, err := s.db.Query(ctx,
		`SELECT subject, issued_by, created, expires, category FROM sanctions ORDER BY expires`)
	if err != nil {
		return nil, fmt.Errorf("list sanctions: %w", err)
	}
	defer rows.Close()

	var result []domain.Sanction
	for rows.Next() {
		var sanction domain.Sanction
		var category int
		if err := rows.Scan(&sanction.Subject, &sanction.IssuedBy,
			&sanction.Created, &sanction.Expires, &category); err != nil {
			return nil, fmt.Errorf("scan sanction: %w", err)
		}
		sanction.Category = domain.SanctionCategory(category)
		result = append(result, sanction)
	}
	return result, rows.Err()
}

// -- Reputation cache --

func (s *PostgresStore) GetEloRecord(ctx context.Context, subject string) (*domain.EloRecord, error) {
	var rec domain.EloRecord
	err := s.db.QueryRow(ctx,
		`SELECT duel, ffa, tdm, ca, ctf, last_refresh FROM reputation_cache WHERE subject = $1`,
		key(subject),
	).Scan(&rec.Duel, &rec.FFA, &rec.TDM, &rec.CA, &rec.CTF, &rec.LastRefresh)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get elo record: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) UpsertEloRecord(ctx context.Context, subject string, rec domain.EloRecord) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO reputation_cache (subject, duel, ffa, tdm, ca, ctf, last_refresh)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (subject) DO UPDATE SET
	duel = $2, ffa = $3, tdm = $4, ca = $5, ctf = $6, last_refresh = $7`,
		key(subject), rec.Duel, rec.FFA, rec.TDM, rec.CA, rec.CTF, rec.LastRefresh)
	if err != nil {
		return fmt.Errorf("upsert elo record: %w", err)
	}
	return nil
}
