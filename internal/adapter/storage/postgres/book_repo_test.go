package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM books WHERE id").
		WithArgs("b1").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "title", "price_stars", "blob_id", "encryption_iv", "encryption_tag", "mime_type"},
		).AddRow("b1", "The Go Programming Language", int64(50), "3f5a9c", "aabb", "ccdd", "application/epub+zip"))

	book, err := repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Equal(t, "The Go Programming Language", book.Title)
	assert.Equal(t, int64(50), book.PriceStars)
	assert.Equal(t, "3f5a9c", book.BlobID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM books WHERE id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "title", "price_stars", "blob_id", "encryption_iv", "encryption_tag", "mime_type"},
		))

	book, err := repo.GetByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, book)
	assert.NoError(t, mock.ExpectationsWereMet())
}
