package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"account_backend/internal/feature/account/credential"
	"account_backend/internal/feature/account/domain"
	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/platform/metrics"
)

// mockUserRepository is a mock implementation of UserRepository.
// Without overrides it behaves like an in-memory store with a unique email index.
type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*entity.User

	CreateFunc      func(ctx context.Context, user *entity.User) (*entity.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc    func(ctx context.Context, id string) (*entity.User, error)

	findByIDCalls int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: map[string]*entity.User{}}
}

// Create is the mock implementation of the Create method.
func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, ErrEmailAlreadyExists
		}
	}
	stored := *user
	stored.ID = bson.NewObjectID().Hex()
	m.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

// FindByEmail is the mock implementation of the FindByEmail method.
func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

// FindByID is the mock implementation of the FindByID method.
func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	m.findByIDCalls++
	m.mu.Unlock()
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, ErrUserNotFound
}

// mockTokenGenerator is a mock implementation of TokenGenerator.
type mockTokenGenerator struct {
	GenerateTokenFunc func(userID string) (string, error)
}

// GenerateToken is the mock implementation of the GenerateToken method.
func (m *mockTokenGenerator) GenerateToken(userID string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID)
	}
	// Default: return a dummy token
	return "mock-jwt-token", nil
}

// mockSession records calls made by the usecase on the transport.
type mockSession struct {
	token   string
	set     int
	cleared int
}

func (m *mockSession) SetSession(token string) {
	m.token = token
	m.set++
}

func (m *mockSession) ClearSession() {
	m.cleared++
}

// stubHasher lets a test force hashing results.
type stubHasher struct {
	hash    string
	hashErr error
}

func (s stubHasher) HashPassword(string) (string, error) { return s.hash, s.hashErr }
func (s stubHasher) ComparePassword(string, string) (bool, error) {
	return false, nil
}

func newTestUsecase(repo UserRepository, tokens TokenGenerator) *accountUsecase {
	return NewAccountUsecase(repo, credential.NewHasher(bcrypt.MinCost), tokens, zap.NewNop())
}

func mustRegister(t *testing.T, uc *accountUsecase, name, email, password string) *entity.User {
	t.Helper()
	u, err := uc.Register(context.Background(), name, email, password)
	require.NoError(t, err)
	return u
}

func TestAccountUsecase_Register(t *testing.T) {
	t.Parallel()

	t.Run("successful registration hashes the password", func(t *testing.T) {
		t.Parallel()

		uc := newTestUsecase(newMockUserRepository(), &mockTokenGenerator{})
		user, err := uc.Register(context.Background(), "Ann", "ann@x.com", "Passw0rd")

		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "Ann", user.Name)
		assert.Equal(t, "ann@x.com", user.Email)
		assert.NotEqual(t, "Passw0rd", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Passw0rd")))
	})

	t.Run("second registration with the same email conflicts", func(t *testing.T) {
		t.Parallel()

		uc := newTestUsecase(newMockUserRepository(), &mockTokenGenerator{})
		mustRegister(t, uc, "Ann", "ann@x.com", "Passw0rd")

		_, err := uc.Register(context.Background(), "Ann", "ann@x.com", "Passw0rd")

		require.Error(t, err)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		assert.Equal(t, domain.MsgEmailTaken, err.Error())
	})

	t.Run("duplicate key on insert conflicts", func(t *testing.T) {
		t.Parallel()

		repo := newMockUserRepository()
		repo.CreateFunc = func(ctx context.Context, user *entity.User) (*entity.User, error) {
			return nil, ErrEmailAlreadyExists
		}
		uc := newTestUsecase(repo, &mockTokenGenerator{})

		_, err := uc.Register(context.Background(), "Ann", "ann@x.com", "Passw0rd")

		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("validation fails before any lookup", func(t *testing.T) {
		t.Parallel()

		repo := newMockUserRepository()
		repo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
			t.Error("repository must not be called")
			return nil, ErrUserNotFound
		}
		uc := newTestUsecase(repo, &mockTokenGenerator{})

		_, err := uc.Register(context.Background(), "An", "ann@x.com", "Passw0rd")

		assert.Equal(t, domain.MsgInvalidName, err.Error())
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("lookup failure is internal and keeps the message", func(t *testing.T) {
		t.Parallel()

		repo := newMockUserRepository()
		repo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
			return nil, errors.New("connection reset")
		}
		uc := newTestUsecase(repo, &mockTokenGenerator{})

		_, err := uc.Register(context.Background(), "Ann", "ann@x.com", "Passw0rd")

		assert.Equal(t, domain.KindInternal, domain.KindOf(err))
		assert.Equal(t, "connection reset", err.Error())
	})

	t.Run("empty hash is a credential error and nothing is stored", func(t *testing.T) {
		t.Parallel()

		repo := newMockUserRepository()
		repo.CreateFunc = func(ctx context.Context, user *entity.User) (*entity.User, error) {
			t.Error("create must not be called")
			return nil, nil
		}
		uc := NewAccountUsecase(repo, stubHasher{hash: ""}, &mockTokenGenerator{}, nil)

		_, err := uc.Register(context.Background(), "Ann", "ann@x.com", "Passw0rd")

		assert.Equal(t, domain.KindCredential, domain.KindOf(err))
		assert.Equal(t, domain.MsgHashFailed, err.Error())
	})

	t.Run("hash failure propagates its kind", func(t *testing.T) {
		t.Parallel()

		hashErr := domain.New(domain.KindCrypto, domain.MsgHashFailed)
		uc := NewAccountUsecase(newMockUserRepository(), stubHasher{hashErr: hashErr}, &mockTokenGenerator{}, nil)

		_, err := uc.Register(context.Background(), "Ann", "ann@x.com", "Passw0rd")

		assert.Equal(t, domain.KindCrypto, domain.KindOf(err))
	})

	t.Run("store returning no record is a credential error", func(t *testing.T) {
		t.Parallel()

		repo := newMockUserRepository()
		repo.CreateFunc = func(ctx context.Context, user *entity.User) (*entity.User, error) {
			return nil, nil
		}
		uc := newTestUsecase(repo, &mockTokenGenerator{})

		_, err := uc.Register(context.Background(), "Ann", "ann@x.com", "Passw0rd")

		assert.Equal(t, domain.KindCredential, domain.KindOf(err))
		assert.Equal(t, domain.MsgCreateFailed, err.Error())
	})
}

func TestAccountUsecase_Login(t *testing.T) {
	t.Parallel()

	t.Run("successful login sets the session", func(t *testing.T) {
		t.Parallel()

		var gotUserID string
		tokens := &mockTokenGenerator{GenerateTokenFunc: func(userID string) (string, error) {
			gotUserID = userID
			return "signed-token", nil
		}}
		uc := newTestUsecase(newMockUserRepository(), tokens)
		registered := mustRegister(t, uc, "Ann", "ann@x.com", "Passw0rd")
		sess := &mockSession{}

		user, err := uc.Login(context.Background(), "ann@x.com", "Passw0rd", sess)

		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.Equal(t, registered.ID, gotUserID)
		assert.Equal(t, "signed-token", sess.token)
		assert.Equal(t, 1, sess.set)
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		t.Parallel()

		uc := newTestUsecase(newMockUserRepository(), &mockTokenGenerator{})
		mustRegister(t, uc, "Ann", "ann@x.com", "Passw0rd")

		sess := &mockSession{}
		_, wrongPass := uc.Login(context.Background(), "ann@x.com", "wrongpass", sess)
		_, unknown := uc.Login(context.Background(), "unknown@x.com", "Passw0rd", sess)

		require.Error(t, wrongPass)
		require.Error(t, unknown)
		assert.Equal(t, wrongPass.Error(), unknown.Error())
		assert.Equal(t, domain.MsgBadCredentials, unknown.Error())
		assert.Equal(t, domain.KindAuth, domain.KindOf(wrongPass))
		assert.Equal(t, domain.KindAuth, domain.KindOf(unknown))
		assert.Zero(t, sess.set, "no session on failure")
	})

	t.Run("invalid input is rejected", func(t *testing.T) {
		t.Parallel()

		uc := newTestUsecase(newMockUserRepository(), &mockTokenGenerator{})
		_, err := uc.Login(context.Background(), "not-an-email", "Passw0rd", &mockSession{})

		assert.Equal(t, domain.MsgInvalidEmail, err.Error())
	})

	t.Run("token failure is a credential error", func(t *testing.T) {
		t.Parallel()

		tokens := &mockTokenGenerator{GenerateTokenFunc: func(string) (string, error) {
			return "", domain.New(domain.KindCrypto, domain.MsgSecretMissing)
		}}
		uc := newTestUsecase(newMockUserRepository(), tokens)
		mustRegister(t, uc, "Ann", "ann@x.com", "Passw0rd")
		sess := &mockSession{}

		_, err := uc.Login(context.Background(), "ann@x.com", "Passw0rd", sess)

		assert.Equal(t, domain.KindCredential, domain.KindOf(err))
		assert.Equal(t, domain.MsgTokenFailed, err.Error())
		assert.Zero(t, sess.set)
	})

	t.Run("stored hash that cannot be compared is a crypto error", func(t *testing.T) {
		t.Parallel()

		repo := newMockUserRepository()
		repo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
			return &entity.User{ID: bson.NewObjectID().Hex(), Email: email, Password: "garbage"}, nil
		}
		uc := newTestUsecase(repo, &mockTokenGenerator{})

		_, err := uc.Login(context.Background(), "ann@x.com", "Passw0rd", &mockSession{})

		assert.Equal(t, domain.KindCrypto, domain.KindOf(err))
	})
}

func TestAccountUsecase_Logout(t *testing.T) {
	t.Parallel()

	uc := newTestUsecase(newMockUserRepository(), &mockTokenGenerator{})

	for i := 0; i < 2; i++ {
		sess := &mockSession{}
		msg, err := uc.Logout(context.Background(), sess)

		require.NoError(t, err)
		assert.Equal(t, domain.MsgLoggedOut, msg)
		assert.Equal(t, 1, sess.cleared)
	}

	msg, err := uc.Logout(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.MsgLoggedOut, msg)
}

func TestAccountUsecase_GetUserByID(t *testing.T) {
	t.Parallel()

	t.Run("malformed id fails before lookup", func(t *testing.T) {
		t.Parallel()

		repo := newMockUserRepository()
		uc := newTestUsecase(repo, &mockTokenGenerator{})

		_, err := uc.GetUserByID(context.Background(), "not-an-id")

		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		assert.Equal(t, domain.MsgUserIDRequired, err.Error())
		assert.Zero(t, repo.findByIDCalls)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		t.Parallel()

		uc := newTestUsecase(newMockUserRepository(), &mockTokenGenerator{})

		_, err := uc.GetUserByID(context.Background(), bson.NewObjectID().Hex())

		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		assert.Equal(t, domain.MsgUserNotFound, err.Error())
	})

	t.Run("existing id", func(t *testing.T) {
		t.Parallel()

		uc := newTestUsecase(newMockUserRepository(), &mockTokenGenerator{})
		registered := mustRegister(t, uc, "Ann", "ann@x.com", "Passw0rd")

		user, err := uc.GetUserByID(context.Background(), registered.ID)

		require.NoError(t, err)
		assert.Equal(t, registered, user)
	})
}

func TestAccountUsecase_CurrentUser(t *testing.T) {
	t.Parallel()

	uc := newTestUsecase(newMockUserRepository(), &mockTokenGenerator{})
	registered := mustRegister(t, uc, "Ann", "ann@x.com", "Passw0rd")

	anon, err := uc.CurrentUser(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, anon)

	me, err := uc.CurrentUser(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, me.ID)
}

func TestAccountUsecase_NeverLogsPassword(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	uc := NewAccountUsecase(newMockUserRepository(), credential.NewHasher(bcrypt.MinCost), &mockTokenGenerator{}, zap.New(core))

	_, _ = uc.Register(context.Background(), "Ann", "ann@x.com", "Secretpass1")
	_, _ = uc.Register(context.Background(), "Ann", "ann@x.com", "Secretpass1")
	_, _ = uc.Login(context.Background(), "ann@x.com", "Wrongpass1", &mockSession{})
	_, _ = uc.Login(context.Background(), "ann@x.com", "Secretpass1", &mockSession{})

	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, "Secretpass1")
		for _, v := range entry.ContextMap() {
			s, _ := v.(string)
			assert.False(t, strings.Contains(s, "Secretpass1") || strings.Contains(s, "Wrongpass1"), "password leaked into log field")
		}
	}

	rejected := logs.FilterMessage("account operation rejected").All()
	require.NotEmpty(t, rejected)
	assert.Equal(t, OpRegister, rejected[0].ContextMap()["operation"])
	assert.Equal(t, "CONFLICT", rejected[0].ContextMap()["kind"])
}

func TestAccountUsecase_RecordsMetrics(t *testing.T) {
	t.Parallel()

	uc := newTestUsecase(newMockUserRepository(), &mockTokenGenerator{})
	before := testutil.ToFloat64(metrics.AccountOperationsTotal.WithLabelValues(OpGetUserByID, "VALIDATION"))

	_, _ = uc.GetUserByID(context.Background(), "bad")

	after := testutil.ToFloat64(metrics.AccountOperationsTotal.WithLabelValues(OpGetUserByID, "VALIDATION"))
	assert.GreaterOrEqual(t, after-before, float64(1))
}
