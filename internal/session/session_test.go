package session

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	tokenRe    = regexp.MustCompile(`^[0-9a-f]{40}$`)
	passwordRe = regexp.MustCompile(`^[A-Z0-9]{6}$`)
)

func newAuthority(t *testing.T) (*Authority, *store.Store) {
	t.Helper()
	opener, err := store.NewSQLiteOpener(t.TempDir())
	require.NoError(t, err)
	m := store.NewManager(opener, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = m.Close() })

	s, _, err := m.Create(context.Background(), "ABCD", 10)
	require.NoError(t, err)
	return NewAuthority(m, zaptest.NewLogger(t)), s
}

func setProperty(t *testing.T, s *store.Store, key, value string) {
	t.Helper()
	require.NoError(t, s.Update(context.Background(), func(tx *store.Tx) error {
		return tx.SetProperty(key, value)
	}))
}

func TestLaneFirstContactCreatesSession(t *testing.T) {
	ctx := context.Background()
	a, _ := newAuthority(t)

	g, err := a.Login(ctx, "ABCD", domain.Lane(5), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, g.Status)
	assert.Regexp(t, tokenRe, g.Token)
	assert.Regexp(t, passwordRe, g.Password)

	ok, err := a.Verify(ctx, "ABCD", domain.Lane(5), g.Token)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLaneLoginOutcomes(t *testing.T) {
	ctx := context.Background()
	a, _ := newAuthority(t)

	first, err := a.Login(ctx, "ABCD", domain.Lane(5), Credentials{})
	require.NoError(t, err)

	t.Run("prior token is re-issued", func(t *testing.T) {
		g, err := a.Login(ctx, "ABCD", domain.Lane(5), Credentials{Token: first.Token})
		require.NoError(t, err)
		assert.Equal(t, StatusOK, g.Status)
		assert.Equal(t, first.Token, g.Token)
		assert.Empty(t, g.Password)
	})

	t.Run("no credential asks for a password", func(t *testing.T) {
		g, err := a.Login(ctx, "ABCD", domain.Lane(5), Credentials{})
		require.NoError(t, err)
		assert.Equal(t, StatusPasswordRequired, g.Status)
		assert.Empty(t, g.Token)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		_, err := a.Login(ctx, "ABCD", domain.Lane(5), Credentials{Password: "WRONG1"})
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("stale token with no password asks for a password", func(t *testing.T) {
		g, err := a.Login(ctx, "ABCD", domain.Lane(5), Credentials{Token: "deadbeef"})
		require.NoError(t, err)
		assert.Equal(t, StatusPasswordRequired, g.Status)
	})

	t.Run("correct password rotates the token", func(t *testing.T) {
		g, err := a.Login(ctx, "ABCD", domain.Lane(5), Credentials{Password: first.Password})
		require.NoError(t, err)
		assert.Equal(t, StatusOK, g.Status)
		assert.NotEqual(t, first.Token, g.Token)

		ok, err := a.Verify(ctx, "ABCD", domain.Lane(5), first.Token)
		require.NoError(t, err)
		assert.False(t, ok, "previous token must stop working")

		ok, err = a.Verify(ctx, "ABCD", domain.Lane(5), g.Token)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("password is case-insensitive", func(t *testing.T) {
		lower := []byte(first.Password)
		for i, c := range lower {
			if c >= 'A' && c <= 'Z' {
				lower[i] = c + ('a' - 'A')
			}
		}
		g, err := a.Login(ctx, "ABCD", domain.Lane(5), Credentials{Password: string(lower)})
		require.NoError(t, err)
		assert.Equal(t, StatusOK, g.Status)
	})
}

func TestHostLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("no password configured", func(t *testing.T) {
		a, _ := newAuthority(t)
		g, err := a.Login(ctx, "ABCD", domain.Host(), Credentials{})
		require.NoError(t, err)
		assert.Equal(t, StatusOK, g.Status)
		assert.Regexp(t, tokenRe, g.Token)
	})

	t.Run("password configured", func(t *testing.T) {
		a, s := newAuthority(t)
		setProperty(t, s, domain.PropHostPassword, "s3cret")

		g, err := a.Login(ctx, "ABCD", domain.Host(), Credentials{})
		require.NoError(t, err)
		assert.Equal(t, StatusPasswordRequired, g.Status)

		_, err = a.Login(ctx, "ABCD", domain.Host(), Credentials{Password: "nope"})
		assert.ErrorIs(t, err, ErrUnauthorized)

		g, err = a.Login(ctx, "ABCD", domain.Host(), Credentials{Password: "s3cret"})
		require.NoError(t, err)
		assert.Equal(t, StatusOK, g.Status)

		again, err := a.Login(ctx, "ABCD", domain.Host(), Credentials{Token: g.Token})
		require.NoError(t, err)
		assert.Equal(t, g.Token, again.Token)

		require.NoError(t, a.Require(ctx, "ABCD", domain.Host(), g.Token))
		assert.ErrorIs(t, a.Require(ctx, "ABCD", domain.Host(), "other"), ErrUnauthorized)
		assert.ErrorIs(t, a.Require(ctx, "ABCD", domain.Viewer(), g.Token), ErrUnauthorized)
	})

	t.Run("viewer uses its own secret", func(t *testing.T) {
		a, s := newAuthority(t)
		setProperty(t, s, domain.PropHostPassword, "host")
		setProperty(t, s, domain.PropViewerPassword, "view")

		_, err := a.Login(ctx, "ABCD", domain.Viewer(), Credentials{Password: "host"})
		assert.ErrorIs(t, err, ErrUnauthorized)

		g, err := a.Login(ctx, "ABCD", domain.Viewer(), Credentials{Password: "view"})
		require.NoError(t, err)
		assert.Equal(t, StatusOK, g.Status)
	})
}

func TestRevokeAndLanes(t *testing.T) {
	ctx := context.Background()
	a, _ := newAuthority(t)

	for _, lane := range []int{10, 2, 7} {
		_, err := a.Login(ctx, "ABCD", domain.Lane(lane), Credentials{})
		require.NoError(t, err)
	}

	lanes, err := a.Lanes(ctx, "ABCD")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 7, 10}, lanes)

	deleted, err := a.Revoke(ctx, "ABCD", 7)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = a.Revoke(ctx, "ABCD", 7)
	require.NoError(t, err)
	assert.False(t, deleted)

	// a revoked lane starts over as first contact
	g, err := a.Login(ctx, "ABCD", domain.Lane(7), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, g.Status)
}

func TestConcurrentFirstContactCreatesOneSession(t *testing.T) {
	ctx := context.Background()
	a, _ := newAuthority(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := a.Login(ctx, "ABCD", domain.Lane(3), Credentials{})
			assert.NoError(t, err)
			if g.Status == StatusCreated {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)
}

func TestLoginUnknownEventAndInvalidIdentity(t *testing.T) {
	ctx := context.Background()
	a, _ := newAuthority(t)

	_, err := a.Login(ctx, "NOPE", domain.Host(), Credentials{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = a.Login(ctx, "ABCD", domain.Lane(0), Credentials{})
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}
