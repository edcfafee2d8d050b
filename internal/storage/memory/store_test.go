package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/storage/storagetest"
)

func newFixture(t *testing.T) storagetest.Fixture {
	st := NewStore()
	next := int64(9)
	return storagetest.Seed(t, st,
		st.AddCategory,
		func(svc domain.Service) domain.Service {
			next++
			svc.ID = next
			require.NoError(t, st.PutService(svc))
			return svc
		},
	)
}

func TestStoreBehaviour(t *testing.T) {
	storagetest.Run(t, newFixture)
}

func TestSessionsAreCounted(t *testing.T) {
	st := NewStore()
	s1, err := st.Open(context.Background())
	require.NoError(t, err)
	s2, err := st.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.OpenSessions())

	require.NoError(t, s1.Close())
	require.NoError(t, s1.Close())
	assert.Equal(t, 1, st.OpenSessions())
	require.NoError(t, s2.Close())
	assert.Zero(t, st.OpenSessions())
}

func TestFailMakesStoreUnavailable(t *testing.T) {
	st := NewStore()
	st.Fail = errors.New("down")
	_, err := st.Open(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, st.Ping(context.Background()), domain.ErrStoreUnavailable)
}

func TestPutServiceRequiresCategory(t *testing.T) {
	st := NewStore()
	err := st.PutService(domain.Service{ID: 1, CategoryID: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}
