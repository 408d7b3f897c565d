package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/platform/rbac"
	"psychaid/backend/internal/platform/validation"
	"psychaid/backend/internal/security"
	sessiondomain "psychaid/backend/internal/session/domain"
	userdomain "psychaid/backend/internal/user/domain"
	userrepo "psychaid/backend/internal/user/repository"
)

// Sentinel errors for auth service; the HTTP layer maps them to status codes.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrIncorrectPassword   = errors.New("current password is incorrect")
	// ErrUserNotFound is returned by Resolve. Callers treat it as unauthenticated.
	ErrUserNotFound = errors.New("user not found")
)

// AuthResult holds the outcome of Signup, Login or Refresh. Refresh leaves
// RefreshToken empty: the presented refresh token stays valid until it expires.
type AuthResult struct {
	AccessToken      string
	RefreshToken     string
	ExpiresAt        time.Time
	RefreshExpiresAt time.Time
	User             userdomain.Summary
}

// SignupInput is the signup payload. ChildEmail is required when Role is parent.
type SignupInput struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	Password   string `json:"password" validate:"required"`
	Name       string `json:"name" validate:"required,min=2,max=50"`
	LastName   string `json:"last_name" validate:"required,min=2,max=50"`
	Role       string `json:"user_type" validate:"required,role"`
	ChildEmail string `json:"child_email,omitempty" validate:"omitempty,email,max=254"`
}

// UserRepo is the user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	CreateWithLink(ctx context.Context, parent *userdomain.User, childID string) error
	UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error
	Delete(ctx context.Context, id string) error
	ListChildren(ctx context.Context, parentID string) ([]*userdomain.User, error)
}

// RevocationStore is the refresh-token deny list needed by the auth service.
type RevocationStore interface {
	Revoke(ctx context.Context, r *sessiondomain.Revocation) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthService implements signup with parent/child linkage, login, refresh,
// logout, identity resolution and the account operations.
type AuthService struct {
	users     UserRepo
	revoked   RevocationStore
	hasher    *security.Hasher
	tokens    *security.TokenProvider
	validator *validation.Validator
	log       logrus.FieldLogger
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(
	users UserRepo,
	revoked RevocationStore,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	validator *validation.Validator,
	log logrus.FieldLogger,
) *AuthService {
	if validator == nil {
		validator = validation.New()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthService{
		users:     users,
		revoked:   revoked,
		hasher:    hasher,
		tokens:    tokens,
		validator: validator,
		log:       log,
		now:       time.Now,
	}
}

// Signup validates in, creates the user and, for a parent, links the named
// student in the same write. Returns the summary and a token pair.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in = normalizeSignup(in)
	if err := s.validateSignup(in); err != nil {
		return nil, err
	}
	role, _ := userdomain.ParseRole(in.Role)

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("signup: lookup email: %w", err)
	}
	if existing != nil {
		return nil, userrepo.ErrEmailTaken
	}

	var child *userdomain.User
	if role == userdomain.RoleParent {
		child, err = s.users.GetByEmail(ctx, in.ChildEmail)
		if err != nil {
			return nil, fmt.Errorf("signup: lookup child: %w", err)
		}
		switch {
		case child == nil:
			return nil, userrepo.ErrChildNotFound
		case !child.IsStudent():
			return nil, userrepo.ErrChildNotStudent
		case child.LinkedParentID != "":
			return nil, userrepo.ErrChildAlreadyLinked
		}
	}

	hashed, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, passwordError(err)
	}
	now := s.now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: hashed,
		Name:         in.Name,
		LastName:     in.LastName,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if child == nil {
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	} else {
		if err := s.users.CreateWithLink(ctx, user, child.ID); err != nil {
			return nil, err
		}
		if user, err = s.verifyLink(ctx, user.ID, child.ID); err != nil {
			return nil, err
		}
	}
	return s.issuePair(user)
}

// verifyLink re-reads both sides of a freshly written link.
func (s *AuthService) verifyLink(ctx context.Context, parentID, childID string) (*userdomain.User, error) {
	parent, err := s.users.GetByID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("signup: reload parent: %w", err)
	}
	child, err := s.users.GetByID(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("signup: reload child: %w", err)
	}
	if err := userdomain.CheckLinkage(parent, child); err != nil {
		s.log.WithFields(logrus.Fields{"parent_id": parentID, "child_id": childID}).
			Error("identity: parent/child linkage inconsistent after signup")
		return nil, err
	}
	return parent, nil
}

func normalizeSignup(in SignupInput) SignupInput {
	in.Email = userdomain.NormalizeEmail(in.Email)
	in.ChildEmail = userdomain.NormalizeEmail(in.ChildEmail)
	in.Name = strings.TrimSpace(in.Name)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if in.Role != string(userdomain.RoleParent) {
		in.ChildEmail = ""
	}
	return in
}

func (s *AuthService) validateSignup(in SignupInput) error {
	if err := s.validator.Struct(in); err != nil {
		return err
	}
	if err := security.ValidatePassword([]byte(in.Password)); err != nil {
		return passwordError(err)
	}
	if in.Role == string(userdomain.RoleParent) {
		if in.ChildEmail == "" {
			return fieldError("child_email", "child_email is required for parent accounts")
		}
		if in.ChildEmail == in.Email {
			return fieldError("child_email", "child_email must differ from email")
		}
	}
	return nil
}

// Login authenticates (email, password, role). Every failure is
// ErrInvalidCredentials so callers cannot tell which part was wrong.
func (s *AuthService) Login(ctx context.Context, email, password, role string) (*AuthResult, error) {
	email = userdomain.NormalizeEmail(email)
	wantRole, roleOK := userdomain.ParseRole(role)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: lookup email: %w", err)
	}
	if user == nil {
		// Spend the same bcrypt work as a real comparison.
		_ = s.hasher.Compare(s.dummy(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !roleOK || user.Role != wantRole {
		return nil, ErrInvalidCredentials
	}
	return s.issuePair(user)
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash([]byte("psychaid-placeholder-password"))
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// Refresh verifies refreshToken and mints a new access token for its subject.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("refresh: revocation check: %w", err)
		}
		if revoked {
			return nil, ErrInvalidRefreshToken
		}
	}
	user, err := s.Resolve(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	access, _, exp, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: access, ExpiresAt: exp, User: user.Summary()}, nil
}

// Logout revokes refreshToken until it expires. A token that does not verify
// is ignored; a token belonging to another user is rejected.
func (s *AuthService) Logout(ctx context.Context, caller *userdomain.User, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" || s.revoked == nil {
		return nil
	}
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil
	}
	if caller != nil && claims.Subject != caller.ID {
		return ErrInvalidRefreshToken
	}
	r := &sessiondomain.Revocation{
		JTI:       claims.ID,
		UserID:    claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
		RevokedAt: s.now().UTC(),
	}
	if err := s.revoked.Revoke(ctx, r); err != nil {
		return fmt.Errorf("logout: revoke: %w", err)
	}
	return nil
}

// Authenticate verifies a bearer access token and resolves its subject.
// Token errors are the security.ErrToken* values; an unknown subject is ErrUserNotFound.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*userdomain.User, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, claims.Subject)
}

// Resolve loads the user named by a token subject. The id is canonicalized
// first; anything that is not a UUID, or no longer exists, is ErrUserNotFound.
func (s *AuthService) Resolve(ctx context.Context, subject string) (*userdomain.User, error) {
	id, err := uuid.Parse(strings.TrimSpace(subject))
	if err != nil {
		return nil, ErrUserNotFound
	}
	u, err := s.users.GetByID(ctx, id.String())
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(u.PasswordHash, []byte(current)); err != nil {
		return ErrIncorrectPassword
	}
	hashed, err := s.hasher.Hash([]byte(next))
	if err != nil {
		return passwordError(err)
	}
	return s.users.UpdatePasswordHash(ctx, u.ID, hashed, s.now().UTC())
}

// Children lists a parent's linked students. Students are refused.
func (s *AuthService) Children(ctx context.Context, caller *userdomain.User) ([]userdomain.ChildSummary, error) {
	if !caller.IsParent() {
		return nil, &rbac.ForbiddenError{Reason: "not_parent", Message: rbac.MsgNotParent}
	}
	kids, err := s.users.ListChildren(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	out := make([]userdomain.ChildSummary, 0, len(kids))
	for _, k := range kids {
		out = append(out, userdomain.ChildSummary{ID: k.ID, Name: k.DisplayName(), Email: k.Email})
	}
	return out, nil
}

// DeleteAccount removes the user. Its access tokens stop resolving.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	return s.users.Delete(ctx, userID)
}

func (s *AuthService) issuePair(u *userdomain.User) (*AuthResult, error) {
	access, _, exp, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		return nil, err
	}
	refresh, _, refreshExp, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresAt:        exp,
		RefreshExpiresAt: refreshExp,
		User:             u.Summary(),
	}, nil
}

func passwordError(err error) error {
	if errors.Is(err, security.ErrPasswordTooShort) || errors.Is(err, security.ErrPasswordTooLong) {
		return fieldError("password", err.Error())
	}
	return err
}

func fieldError(field, msg string) error {
	return validation.Field(field, msg)
}
