package graphql

import (
	"context"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/usecase"
	"account_backend/internal/platform/jwt"
	"account_backend/internal/platform/session"
)

// AccountUsecase is the set of account operations the resolvers call.
type AccountUsecase interface {
	Register(ctx context.Context, name, email, password string) (*entity.User, error)
	Login(ctx context.Context, email, password string, session usecase.SessionWriter) (*entity.User, error)
	Logout(ctx context.Context, session usecase.SessionWriter) (string, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	CurrentUser(ctx context.Context, id string) (*entity.User, error)
}

// Resolver is the root resolver for both Query and Mutation.
type Resolver struct {
	accounts   AccountUsecase
	exposeHash bool
}

// NewResolver creates the root resolver.
func NewResolver(accounts AccountUsecase, exposeHash bool) *Resolver {
	return &Resolver{accounts: accounts, exposeHash: exposeHash}
}

// GetUserByID resolves Query.GetUserById.
func (r *Resolver) GetUserByID(ctx context.Context, args struct{ UserID graphqlgo.ID }) (*UserResolver, error) {
	u, err := r.accounts.GetUserByID(ctx, string(args.UserID))
	if err != nil {
		return nil, err
	}
	return r.user(u), nil
}

// CurrentUser resolves Query.CurrentUser from the session cookie. Anonymous requests get null.
func (r *Resolver) CurrentUser(ctx context.Context) (*UserResolver, error) {
	u, err := r.accounts.CurrentUser(ctx, jwtmw.UserIDFromContext(ctx))
	if err != nil || u == nil {
		return nil, err
	}
	return r.user(u), nil
}

// RegisterUser resolves Mutation.RegisterUser.
func (r *Resolver) RegisterUser(ctx context.Context, args struct {
	Name     string
	Email    string
	Password string
}) (*UserResolver, error) {
	u, err := r.accounts.Register(ctx, args.Name, args.Email, args.Password)
	if err != nil {
		return nil, err
	}
	return r.user(u), nil
}

// LoginUser resolves Mutation.LoginUser. The session cookie is set on success.
func (r *Resolver) LoginUser(ctx context.Context, args struct {
	Email    string
	Password string
}) (*UserResolver, error) {
	u, err := r.accounts.Login(ctx, args.Email, args.Password, sessionFrom(ctx))
	if err != nil {
		return nil, err
	}
	return r.user(u), nil
}

// LogoutUser resolves Mutation.LogoutUser.
func (r *Resolver) LogoutUser(ctx context.Context) (string, error) {
	return r.accounts.Logout(ctx, sessionFrom(ctx))
}

func (r *Resolver) user(u *entity.User) *UserResolver {
	return &UserResolver{u: u, exposeHash: r.exposeHash}
}

// sessionFrom avoids handing a typed nil to the usecase.
func sessionFrom(ctx context.Context) usecase.SessionWriter {
	if s := session.FromContext(ctx); s != nil {
		return s
	}
	return nil
}

// UserResolver resolves the User type.
type UserResolver struct {
	u          *entity.User
	exposeHash bool
}

// ID resolves User._id.
func (r *UserResolver) ID() graphqlgo.ID { return graphqlgo.ID(r.u.ID) }

// Name resolves User.name.
func (r *UserResolver) Name() string { return r.u.Name }

// Email resolves User.email.
func (r *UserResolver) Email() string { return r.u.Email }

// Password resolves User.password. The hash is withheld unless explicitly enabled.
func (r *UserResolver) Password() string {
	if !r.exposeHash {
		return ""
	}
	return r.u.Password
}
