package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var errDB = errors.New("db failure")

func TestFeedbackRepositoryConsumeRevision(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE projects")).
		WillReturnRows(sqlmock.NewRows([]string{"used_revisions"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO feedbacks")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activities")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	feedback, err := repo.ConsumeRevision(context.Background(), "proj-1", "make the logo bigger")
	require.NoError(t, err)
	require.Equal(t, 2, feedback.RevisionNumber)
	require.Equal(t, "make the logo bigger", feedback.Comment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryConsumeRevisionExhausted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE projects")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.ConsumeRevision(context.Background(), "proj-1", "one more change")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryConsumeRevisionRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE projects")).
		WillReturnRows(sqlmock.NewRows([]string{"used_revisions"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO feedbacks")).
		WillReturnError(errDB)
	mock.ExpectRollback()

	_, err := repo.ConsumeRevision(context.Background(), "proj-1", "tweak colors")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
