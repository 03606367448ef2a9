package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"account_backend/internal/feature/account/domain"
	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/validation"
	"account_backend/internal/platform/metrics"
)

// Operation names used in logs and metrics.
const (
	OpRegister    = "RegisterUser"
	OpLogin       = "LoginUser"
	OpLogout      = "LogoutUser"
	OpGetUserByID = "GetUserById"
	OpCurrentUser = "CurrentUser"
)

// dummyHash is compared against when the email is unknown so that both login failures cost one bcrypt run.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user and returns the stored record with its ID.
	// It returns ErrEmailAlreadyExists if the store rejects a duplicate email.
	Create(ctx context.Context, user *entity.User) (*entity.User, error)

	// FindByEmail returns the user with the given email or ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID returns the user with the given ID or ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// PasswordHasher hashes and compares passwords.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password, hashedPassword string) (bool, error)
}

// TokenGenerator issues signed session tokens.
type TokenGenerator interface {
	GenerateToken(userID string) (string, error)
}

// SessionWriter is the transport side of a session: it sets or clears the token cookie.
type SessionWriter interface {
	SetSession(token string)
	ClearSession()
}

// accountUsecase implements the account operations.
type accountUsecase struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenGenerator
	logger *zap.Logger
}

// NewAccountUsecase creates a new accountUsecase. A nil logger disables logging.
func NewAccountUsecase(users UserRepository, hasher PasswordHasher, tokens TokenGenerator, logger *zap.Logger) *accountUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &accountUsecase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger.Named("account"),
	}
}

// Register creates a user after checking that the email is not taken.
// Nothing is persisted unless hashing succeeds.
func (u *accountUsecase) Register(ctx context.Context, name, email, password string) (user *entity.User, err error) {
	defer u.observe(OpRegister, &err)

	if err := validation.ValidateRegisterInput(validation.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
	}); err != nil {
		return nil, err
	}

	// Check-then-act; the store's unique index catches a concurrent duplicate below.
	existing, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.New(domain.KindConflict, domain.MsgEmailTaken)
	case err != nil && !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	hashed, err := u.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if hashed == "" {
		return nil, domain.New(domain.KindCredential, domain.MsgHashFailed)
	}

	created, err := u.users.Create(ctx, &entity.User{Name: name, Email: email, Password: hashed})
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, domain.Wrap(domain.KindConflict, domain.MsgEmailTaken, err)
		}
		return nil, err
	}
	if created == nil {
		return nil, domain.New(domain.KindCredential, domain.MsgCreateFailed)
	}

	u.logger.Info("user registered", zap.String("user_id", created.ID))
	return created, nil
}

// Login checks the credentials, issues a session token and hands it to session.
// Unknown email and wrong password fail with the same message.
func (u *accountUsecase) Login(ctx context.Context, email, password string, session SessionWriter) (user *entity.User, err error) {
	defer u.observe(OpLogin, &err)

	if err := validation.ValidateLoginInput(validation.LoginInput{Email: email, Password: password}); err != nil {
		return nil, err
	}

	found, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		_, _ = u.hasher.ComparePassword(password, dummyHash)
		return nil, domain.New(domain.KindAuth, domain.MsgBadCredentials)
	}

	ok, err := u.hasher.ComparePassword(password, found.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.New(domain.KindAuth, domain.MsgBadCredentials)
	}

	token, err := u.tokens.GenerateToken(found.ID)
	if err != nil {
		return nil, domain.Wrap(domain.KindCredential, domain.MsgTokenFailed, err)
	}
	if token == "" {
		return nil, domain.New(domain.KindCredential, domain.MsgTokenFailed)
	}

	if session != nil {
		session.SetSession(token)
	}

	u.logger.Info("user logged in", zap.String("user_id", found.ID))
	return found, nil
}

// Logout clears the session cookie. It never inspects the current session.
func (u *accountUsecase) Logout(ctx context.Context, session SessionWriter) (msg string, err error) {
	defer u.observe(OpLogout, &err)

	if session != nil {
		session.ClearSession()
	}
	return domain.MsgLoggedOut, nil
}

// GetUserByID returns the user with id. The id is validated before any lookup.
func (u *accountUsecase) GetUserByID(ctx context.Context, id string) (user *entity.User, err error) {
	defer u.observe(OpGetUserByID, &err)
	return u.findByID(ctx, id)
}

// CurrentUser returns the user bound to the session, or nil for an anonymous request.
func (u *accountUsecase) CurrentUser(ctx context.Context, id string) (user *entity.User, err error) {
	defer u.observe(OpCurrentUser, &err)

	if id == "" {
		return nil, nil
	}
	return u.findByID(ctx, id)
}

func (u *accountUsecase) findByID(ctx context.Context, id string) (*entity.User, error) {
	if err := validation.ValidateUserID(id); err != nil {
		return nil, err
	}

	found, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, domain.Wrap(domain.KindNotFound, domain.MsgUserNotFound, err)
		}
		return nil, err
	}
	if found == nil {
		return nil, domain.New(domain.KindNotFound, domain.MsgUserNotFound)
	}
	return found, nil
}

// observe is deferred by every operation: it turns any failure into a *domain.Error,
// logs it and records the outcome.
func (u *accountUsecase) observe(op string, errp *error) {
	if *errp == nil {
		metrics.ObserveOperation(op, metrics.ResultOK)
		return
	}

	de := domain.As(*errp)
	*errp = de
	metrics.ObserveOperation(op, de.Kind.String())

	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("kind", de.Kind.String()),
		zap.String("error", de.Detail()),
	}
	switch de.Kind {
	case domain.KindInternal, domain.KindCredential, domain.KindCrypto:
		u.logger.Error("account operation failed", fields...)
	default:
		u.logger.Warn("account operation rejected", fields...)
	}
}
