package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pdch/pdch-server/internal/config"
	"github.com/pdch/pdch-server/internal/domain"
	"github.com/pdch/pdch-server/internal/repository"
	apperrors "github.com/pdch/pdch-server/pkg/util"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret",
			TokenTTL:   time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
	}
}

func newAuthService(t *testing.T, users repository.UserRepository) *AuthService {
	t.Helper()
	svc, err := NewAuthService(testConfig(), AuthDependencies{UserRepo: users})
	require.NoError(t, err)
	return svc
}

// countingUsers wraps a repository and records how many users were created.
type countingUsers struct {
	repository.UserRepository
	mu      sync.Mutex
	created int
}

func (c *countingUsers) Create(ctx context.Context, user *domain.User) error {
	if err := c.UserRepository.Create(ctx, user); err != nil {
		return err
	}
	c.mu.Lock()
	c.created++
	c.mu.Unlock()
	return nil
}

type failingUsers struct{ err error }

func (f failingUsers) Create(context.Context, *domain.User) error { return f.err }
func (f failingUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, f.err
}

func TestRegister_StoresHashedPassword(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := newAuthService(t, users)

	require.NoError(t, svc.Register(context.Background(), "A", "a@x.com", "p"))

	stored, err := users.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "A", stored.Name)
	require.NotEqual(t, "p", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("p")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := &countingUsers{UserRepository: repository.NewMemoryUserRepository()}
	svc := newAuthService(t, users)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "A", "a@x.com", "p"))
	err := svc.Register(ctx, "B", "a@x.com", "other")
	require.ErrorIs(t, err, apperrors.NewDuplicateUser())
	require.Equal(t, 1, users.created)

	stored, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "A", stored.Name)
}

func TestRegister_ConcurrentDuplicatesYieldOneUser(t *testing.T) {
	users := &countingUsers{UserRepository: repository.NewMemoryUserRepository()}
	svc := newAuthService(t, users)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.Register(context.Background(), "A", "race@x.com", "p")
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, apperrors.NewDuplicateUser())
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, 1, users.created)
}

func TestRegister_EmptyEmail(t *testing.T) {
	svc := newAuthService(t, repository.NewMemoryUserRepository())
	err := svc.Register(context.Background(), "A", "  ", "p")
	require.ErrorIs(t, err, apperrors.NewValidationError("", nil))
}

func TestRegister_PasswordTooLong(t *testing.T) {
	svc := newAuthService(t, repository.NewMemoryUserRepository())
	err := svc.Register(context.Background(), "A", "a@x.com", strings.Repeat("x", 80))
	require.ErrorIs(t, err, apperrors.NewValidationError("", nil))
}

func TestRegister_StoreFailurePropagates(t *testing.T) {
	boom := errors.New("store down")
	svc := newAuthService(t, failingUsers{err: boom})
	require.ErrorIs(t, svc.Register(context.Background(), "A", "a@x.com", "p"), boom)
}

func TestLogin_IssuesTokenWithIdentity(t *testing.T) {
	svc := newAuthService(t, repository.NewMemoryUserRepository())
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "A", "a@x.com", "p"))

	res, err := svc.Login(ctx, "a@x.com", "p")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.True(t, res.ExpiresAt.After(time.Now()))

	identity, err := svc.Verify(res.Token)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", identity.Email)
	require.Equal(t, "A", identity.Name)
}

func TestLogin_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	svc := newAuthService(t, repository.NewMemoryUserRepository())
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "A", "a@x.com", "p"))

	_, wrongPassword := svc.Login(ctx, "a@x.com", "nope")
	_, unknownEmail := svc.Login(ctx, "ghost@x.com", "p")

	require.ErrorIs(t, wrongPassword, apperrors.NewInvalidCredentials())
	require.ErrorIs(t, unknownEmail, apperrors.NewInvalidCredentials())

	a := apperrors.ToDomainError(wrongPassword)
	b := apperrors.ToDomainError(unknownEmail)
	require.Equal(t, a.HTTPStatus, b.HTTPStatus)
	require.Equal(t, a.Message, b.Message)
	require.Equal(t, a.Code, b.Code)
}

func TestLogin_StoreFailurePropagates(t *testing.T) {
	boom := errors.New("store down")
	svc := newAuthService(t, failingUsers{err: boom})
	_, err := svc.Login(context.Background(), "a@x.com", "p")
	require.ErrorIs(t, err, boom)
}
