package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domainuser "stayflow/internal/domain/user"
)

const TokenTTL = time.Hour

var ErrBadCredentials = errors.New("user: bad credentials")

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(subject string, role string, ttl time.Duration) (string, error)
}

// Service handles account registration and token issuance. The reservation
// core only needs it for "a caller identity and role are available".
type Service struct {
	Users  domainuser.Repository
	Hasher PasswordHasher
	Tokens TokenIssuer
	Now    func() time.Time
}

type TokenGrant struct {
	Token     string
	ExpiresIn time.Duration
}

func (s *Service) Register(ctx context.Context, username, password string, admin bool) (TokenGrant, error) {
	role := domainuser.RoleUser
	if admin {
		role = domainuser.RoleAdmin
	}
	u, err := s.create(ctx, username, password, role)
	if err != nil {
		return TokenGrant{}, err
	}
	return s.grant(u)
}

func (s *Service) Login(ctx context.Context, username, password string) (TokenGrant, error) {
	u, err := s.Users.ByUsername(ctx, username)
	if errors.Is(err, domainuser.ErrNotFound) {
		return TokenGrant{}, ErrBadCredentials
	}
	if err != nil {
		return TokenGrant{}, err
	}
	if err := s.Hasher.Compare(u.PasswordHash, password); err != nil {
		return TokenGrant{}, ErrBadCredentials
	}
	return s.grant(u)
}

// CreateUser is the admin surface; role defaults to USER.
func (s *Service) CreateUser(ctx context.Context, username, password string, role domainuser.Role) (*domainuser.User, error) {
	if role == "" {
		role = domainuser.RoleUser
	}
	return s.create(ctx, username, password, role)
}

type UpdateParams struct {
	Username string
	Password string
	Role     domainuser.Role
}

func (s *Service) UpdateUser(ctx context.Context, id string, p UpdateParams) (*domainuser.User, error) {
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Username != "" && p.Username != u.Username {
		if other, err := s.Users.ByUsername(ctx, p.Username); err == nil && other.ID != id {
			return nil, domainuser.ErrUsernameTaken
		} else if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
			return nil, err
		}
		u.Username = p.Username
	}
	if p.Password != "" {
		hash, err := s.Hasher.Hash(p.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if p.Role != "" {
		u.Role = p.Role
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.Users.Delete(ctx, id)
}

func (s *Service) create(ctx context.Context, username, password string, role domainuser.Role) (*domainuser.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("user: username and password required")
	}
	if _, err := s.Users.ByUsername(ctx, username); err == nil {
		return nil, domainuser.ErrUsernameTaken
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &domainuser.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) grant(u *domainuser.User) (TokenGrant, error) {
	token, err := s.Tokens.Issue(u.Username, string(u.Role), TokenTTL)
	if err != nil {
		return TokenGrant{}, err
	}
	return TokenGrant{Token: token, ExpiresIn: TokenTTL}, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
