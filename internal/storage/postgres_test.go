package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"console-warden/internal/domain"
)

func TestPostgresStore_GetAccessLevel(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockDB := &MockDB{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				if args[0] != "alice" {
					t.Errorf("expected lowercased key 'alice', got %v", args[0])
				}
				return &MockRow{
					ScanFunc: func(dest ...any) error {
						*dest[0].(*int) = int(domain.LevelAdmin)
						return nil
					},
				}
			},
		}

		store := &PostgresStore{db: mockDB}
		level, err := store.GetAccessLevel(ctx, "Alice")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if level != domain.LevelAdmin {
			t.Errorf("Expected admin level, got %v", level)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		mockDB := &MockDB{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				return &MockRow{
					ScanFunc: func(dest ...any) error { return pgx.ErrNoRows },
				}
			},
		}

		store := &PostgresStore{db: mockDB}
		_, err := store.GetAccessLevel(ctx, "ghost")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestPostgresStore_SetAccessLevel(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockDB := &MockDB{
			ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				if len(args) != 3 {
					return pgconn.CommandTag{}, fmt.Errorf("expected 3 args, got %d", len(args))
				}
				if args[0] != "alice" || args[1] != int(domain.LevelSuperUser) || args[2] != "bob" {
					return pgconn.CommandTag{}, fmt.Errorf("unexpected args: %v", args)
				}
				return pgconn.NewCommandTag("INSERT 1"), nil
			},
		}

		store := &PostgresStore{db: mockDB}
		if err := store.SetAccessLevel(ctx, "Alice", domain.LevelSuperUser, "Bob"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	})

	t.Run("Error", func(t *testing.T) {
		mockDB := &MockDB{
			ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				return pgconn.CommandTag{}, errors.New("db error")
			},
		}

		store := &PostgresStore{db: mockDB}
		if err := store.SetAccessLevel(ctx, "alice", domain.LevelUser, "bob"); err == nil {
			t.Fatal("Expected error, got nil")
		}
	})
}

func TestPostgresStore_RemoveAccess_NotFound(t *testing.T) {
	mockDB := &MockDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}

	store := &PostgresStore{db: mockDB}
	err := store.RemoveAccess(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPostgresStore_GetSanction(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)
	expires := created.Add(24 * time.Hour)

	t.Run("Success", func(t *testing.T) {
		mockDB := &MockDB{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				return &MockRow{
					ScanFunc: func(dest ...any) error {
						*dest[0].(*string) = "dave"
						*dest[1].(*string) = "carol"
						*dest[2].(*time.Time) = created
						*dest[3].(*time.Time) = expires
						*dest[4].(*int) = int(domain.CategoryAdminIssued)
						return nil
					},
				}
			},
		}

		store := &PostgresStore{db: mockDB}
		sanction, err := store.GetSanction(ctx, "Dave")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if sanction.Subject != "dave" || sanction.IssuedBy != "carol" {
			t.Errorf("Unexpected sanction: %+v", sanction)
		}
		if !sanction.Expires.Equal(expires) {
			t.Errorf("Expected expires %v, got %v", expires, sanction.Expires)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		mockDB := &MockDB{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				return &MockRow{
					ScanFunc: func(dest ...any) error { return pgx.ErrNoRows },
				}
			},
		}

		store := &PostgresStore{db: mockDB}
		_, err := store.GetSanction(ctx, "ghost")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestPostgresStore_SaveSanction(t *testing.T) {
	created := time.Now()
	sanction := domain.Sanction{
		Subject:  "Dave",
		IssuedBy: "Carol",
		Created:  created,
		Expires:  created.Add(time.Hour),
		Category: domain.CategoryQuitPenalty,
	}

	mockDB := &MockDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			if args[0] != "dave" || args[1] != "carol" {
				return pgconn.CommandTag{}, fmt.Errorf("keys not lowercased: %v", args)
			}
			if args[4] != int(domain.CategoryQuitPenalty) {
				return pgconn.CommandTag{}, fmt.Errorf("unexpected category: %v", args[4])
			}
			return pgconn.NewCommandTag("INSERT 1"), nil
		},
	}

	store := &PostgresStore{db: mockDB}
	if err := store.SaveSanction(context.Background(), sanction); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestPostgresStore_ListSanctions(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	rowData := [][]any{
		{"dave", "carol", expires.Add(-time.Hour), expires, int(domain.CategoryAdminIssued)},
		{"eve", "carol", expires.Add(-time.Hour), expires, int(domain.CategoryRatingViolation)},
	}

	idx := -1
	mockDB := &MockDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return &MockRows{
				NextFunc: func() bool {
					idx++
					return idx < len(rowData)
				},
				ScanFunc: func(dest ...any) error {
					row := rowData[idx]
					*dest[0].(*string) = row[0].(string)
					*dest[1].(*string) = row[1].(string)
					*dest[2].(*time.Time) = row[2].(time.Time)
					*dest[3].(*time.Time) = row[3].(time.Time)
					*dest[4].(*int) = row[4].(int)
					return nil
				},
			}, nil
		},
	}

	store := &PostgresStore{db: mockDB}
	sanctions, err := store.ListSanctions(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sanctions) != 2 {
		t.Fatalf("Expected 2 sanctions, got %d", len(sanctions))
	}
	if sanctions[1].Category != domain.CategoryRatingViolation {
		t.Errorf("Unexpected category: %v", sanctions[1].Category)
	}
}

func TestPostgresStore_GetEloRecord(t *testing.T) {
	refresh := time.Now()

	mockDB := &MockDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &MockRow{
				ScanFunc: func(dest ...any) error {
					*dest[0].(*int) = 1200
					*dest[1].(*int) = 1300
					*dest[2].(*int) = 1400
					*dest[3].(*int) = 1500
					*dest[4].(*int) = 1600
					*dest[5].(*time.Time) = refresh
					return nil
				},
			}
		},
	}

	store := &PostgresStore{db: mockDB}
	rec, err := store.GetEloRecord(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.CA != 1500 {
		t.Errorf("Expected CA 1500, got %d", rec.CA)
	}
	if !rec.Complete() {
		t.Error("Expected complete record")
	}
}

func TestPostgresStore_UpsertEloRecord(t *testing.T) {
	rec := domain.EloRecord{Duel: 1, FFA: 2, TDM: 3, CA: 4, CTF: 5, LastRefresh: time.Now()}

	mockDB := &MockDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			if len(args) != 7 {
				return pgconn.CommandTag{}, fmt.Errorf("expected 7 args, got %d", len(args))
			}
			if args[0] != "alice" {
				return pgconn.CommandTag{}, fmt.Errorf("key not lowercased: %v", args[0])
			}
			return pgconn.NewCommandTag("INSERT 1"), nil
		},
	}

	store := &PostgresStore{db: mockDB}
	if err := store.UpsertEloRecord(context.Background(), "Alice", rec); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}
