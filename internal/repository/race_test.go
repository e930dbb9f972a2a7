package repository

import (
	"context"
	"regexp"
	"testing"

	"chattym/internal/models"
	"chattym/internal/observability"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func duplicateKey(constraint string) error {
	return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func TestLikeRepository_ToggleRecoversFromDuplicateInsert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)
	recoveries := observability.UniqueRaceRecoveries.WithLabelValues("like")
	before := testutil.ToFloat64(recoveries)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts" WHERE id = $1 AND is_active = $2`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "likes" WHERE user_id = $1 AND post_id = $2`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "post_id", "created_at"}))
	mock.ExpectExec(`^SAVEPOINT sp`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "likes"`)).
		WillReturnError(duplicateKey("idx_likes_user_post"))
	mock.ExpectExec(`^ROLLBACK TO SAVEPOINT sp`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE user_id = $1 AND post_id = $2`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`SET "likes_count"=likes_count - $1 WHERE id = $2 AND likes_count > 0`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "likes_count" FROM "posts" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"likes_count"}).AddRow(0))
	mock.ExpectCommit()

	action, count, err := repo.Toggle(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.Equal(t, models.LikeActionUnliked, action)
	assert.Equal(t, 0, count)
	assert.Equal(t, before+1, testutil.ToFloat64(recoveries))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_ToggleSurfacesOtherInsertErrors(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "likes"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "post_id", "created_at"}))
	mock.ExpectExec(`^SAVEPOINT sp`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "likes"`)).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "foreign key violation"})
	mock.ExpectExec(`^ROLLBACK TO SAVEPOINT sp`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, _, err := repo.Toggle(context.Background(), 7, 42)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeInternal, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_ToggleRecoversFromDuplicateInsert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSubscriptionRepository(db)
	recoveries := observability.UniqueRaceRecoveries.WithLabelValues("subscription")
	before := testutil.ToFloat64(recoveries)

	columns := []string{"id", "follower_id", "following_id", "is_active"}
	lookup := regexp.QuoteMeta(`SELECT * FROM "subscriptions" WHERE follower_id = $1 AND following_id = $2`)

	mock.ExpectBegin()
	mock.ExpectQuery(lookup).WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectExec(`^SAVEPOINT sp`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "subscriptions"`)).
		WillReturnError(duplicateKey("idx_subscriptions_pair"))
	mock.ExpectExec(`^ROLLBACK TO SAVEPOINT sp`).WillReturnResult(sqlmock.NewResult(0, 0))
	// The concurrent request's row is re-read and flipped.
	mock.ExpectQuery(lookup).WillReturnRows(sqlmock.NewRows(columns).AddRow(9, 1, 2, true))
	mock.ExpectExec(`UPDATE "subscriptions" SET "is_active"=\$1,.*WHERE "id" = \$3`).
		WithArgs(false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	action, err := repo.Toggle(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActionUnsubscribed, action)
	assert.Equal(t, before+1, testutil.ToFloat64(recoveries))
	assert.NoError(t, mock.ExpectationsWereMet())
}
