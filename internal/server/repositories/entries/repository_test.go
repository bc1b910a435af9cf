package entries

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/dbx"
	"github.com/dmitrijs2005/dailyjournal/internal/server/migrations"
	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSQLiteRepo(t *testing.T) Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect(dbx.SQLite.GooseDialect()))
	require.NoError(t, goose.Up(db, "."))

	now := time.Now().UTC()
	for _, id := range []string{"owner-a", "owner-b"} {
		_, err := db.Exec(`INSERT INTO principals (id, username, email, password_hash, created_at, updated_at)
			VALUES (?, ?, ?, 'x', ?, ?)`, id, id, id+"@example.com", now, now)
		require.NoError(t, err)
	}
	return NewSQLRepository(db, dbx.SQLite)
}

var implementations = map[string]func(t *testing.T) Repository{
	"memory": func(t *testing.T) Repository { return NewMemoryRepository() },
	"sqlite": newSQLiteRepo,
}

func entry(owner, title string, date time.Time) *models.Entry {
	return &models.Entry{OwnerID: owner, Title: title, Content: "body of " + title, Mood: models.DefaultMood, Date: date}
}

func TestRepository_CRUD(t *testing.T) {
	for name, newRepo := range implementations {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			day := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
			created, err := repo.Create(ctx, entry("owner-a", "first", day))
			require.NoError(t, err)
			require.NotEmpty(t, created.ID)

			got, err := repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "first", got.Title)
			assert.Equal(t, "owner-a", got.OwnerID)
			assert.True(t, day.Equal(got.Date))

			got.Title = "renamed"
			got.Mood = "grateful"
			require.NoError(t, repo.Update(ctx, got))

			got, err = repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "renamed", got.Title)
			assert.Equal(t, "grateful", got.Mood)

			require.NoError(t, repo.Delete(ctx, created.ID))
			_, err = repo.GetByID(ctx, created.ID)
			assert.ErrorIs(t, err, common.ErrorNotFound)
			assert.ErrorIs(t, repo.Delete(ctx, created.ID), common.ErrorNotFound)
			assert.ErrorIs(t, repo.Update(ctx, got), common.ErrorNotFound)
		})
	}
}

func TestRepository_ListAndDeleteByOwner(t *testing.T) {
	for name, newRepo := range implementations {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
			_, err := repo.Create(ctx, entry("owner-a", "old", base))
			require.NoError(t, err)
			_, err = repo.Create(ctx, entry("owner-a", "new", base.Add(48*time.Hour)))
			require.NoError(t, err)
			_, err = repo.Create(ctx, entry("owner-b", "theirs", base.Add(24*time.Hour)))
			require.NoError(t, err)

			mine, err := repo.ListByOwner(ctx, "owner-a")
			require.NoError(t, err)
			require.Len(t, mine, 2)
			assert.Equal(t, "new", mine[0].Title, "newest first")
			assert.Equal(t, "old", mine[1].Title)

			all, err := repo.ListAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 3)

			n, err := repo.DeleteByOwner(ctx, "owner-a")
			require.NoError(t, err)
			assert.EqualValues(t, 2, n)

			mine, err = repo.ListByOwner(ctx, "owner-a")
			require.NoError(t, err)
			assert.Empty(t, mine)

			all, err = repo.ListAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestSQLRepository_ListByOwner_QueryShape(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLRepository(db, dbx.Postgres)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM journal_entries WHERE owner_id = \$1 ORDER BY entry_date DESC`).
		WithArgs("owner-a").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "content", "mood", "entry_date", "created_at", "updated_at"}).
			AddRow("e1", "owner-a", "t", "c", "calm", day, day, day))

	got, err := repo.ListByOwner(context.Background(), "owner-a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "calm", got[0].Mood)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_Create_DBError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO journal_entries`).WillReturnError(sql.ErrConnDone)

	_, err = NewSQLRepository(db, dbx.Postgres).Create(context.Background(), entry("owner-a", "t", time.Time{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}
