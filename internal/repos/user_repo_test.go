package repos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoteldesk/internal/domain"
)

func TestUserRepo_CreateAndLookup(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	u := &domain.User{Username: "alice", Email: "alice@example.test", Phone: "555-0101", Hash: "$2a$hash"}
	id, err := repo.Create(ctx, u)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, u.ID)

	byName, err := repo.ByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, *u, *byName)

	byID, err := repo.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.test", byID.Email)
}

func TestUserRepo_DuplicateUsername(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{Username: "bob", Email: "a", Phone: "1", Hash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Username: "bob", Email: "different", Phone: "2", Hash: "h2"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUserRepo_NotFound(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.ByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.ByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
