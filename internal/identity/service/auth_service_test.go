package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"psychaid/backend/internal/platform/logging"
	"psychaid/backend/internal/platform/rbac"
	"psychaid/backend/internal/platform/validation"
	"psychaid/backend/internal/security"
	sessionrepo "psychaid/backend/internal/session/repository"
	userdomain "psychaid/backend/internal/user/domain"
	userrepo "psychaid/backend/internal/user/repository"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc    *AuthService
	users  *userrepo.MemoryRepository
	tokens *security.TokenProvider
	clock  *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &testClock{t: time.Now()}
	tokens := security.NewTestTokenProvider(security.WithClock(clock.Now))
	users := userrepo.NewMemoryRepository()
	svc := NewAuthService(users, sessionrepo.NewMemoryRevocationStore(), security.NewHasher(bcrypt.MinCost), tokens, validation.New(), logging.Discard())
	return &fixture{svc: svc, users: users, tokens: tokens, clock: clock}
}

func student(email string) SignupInput {
	return SignupInput{Email: email, Password: "pw123456", Name: "Cleo", LastName: "Child", Role: "student"}
}

func parent(email, child string) SignupInput {
	return SignupInput{Email: email, Password: "pw123456", Name: "Pat", LastName: "Parent", Role: "parent", ChildEmail: child}
}

func mustSignup(t *testing.T, f *fixture, in SignupInput) *AuthResult {
	t.Helper()
	res, err := f.svc.Signup(context.Background(), in)
	if err != nil {
		t.Fatalf("Signup(%s): %v", in.Email, err)
	}
	return res
}

func TestSignupThenLogin_ResolvesToCreatedUser(t *testing.T) {
	ctx := context.Background()
	for _, role := range []string{"student", "parent"} {
		t.Run(role, func(t *testing.T) {
			f := newFixture(t)
			in := student("Someone@Example.com")
			if role == "parent" {
				mustSignup(t, f, student("kid@example.com"))
				in = parent("someone@example.com", "kid@example.com")
			}
			created := mustSignup(t, f, in)
			if created.AccessToken == "" || created.RefreshToken == "" {
				t.Fatal("signup returned empty tokens")
			}
			if created.User.Email != "someone@example.com" {
				t.Errorf("email = %q, want normalized", created.User.Email)
			}

			res, err := f.svc.Login(ctx, "SOMEONE@example.com", "pw123456", role)
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			claims, err := f.tokens.VerifyAccess(res.AccessToken)
			if err != nil {
				t.Fatalf("VerifyAccess: %v", err)
			}
			u, err := f.svc.Resolve(ctx, claims.Subject)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if u.ID != created.User.ID {
				t.Errorf("resolved %s, want %s", u.ID, created.User.ID)
			}
		})
	}
}

func TestSignup_ParentLinksChildBothWays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	kid := mustSignup(t, f, student("c@x.com"))
	p := mustSignup(t, f, parent("p@x.com", "C@X.com"))

	if len(p.User.LinkedChildren) != 1 || p.User.LinkedChildren[0] != kid.User.ID {
		t.Fatalf("parent children = %v", p.User.LinkedChildren)
	}
	child, _ := f.users.GetByID(ctx, kid.User.ID)
	if child.LinkedParentID != p.User.ID {
		t.Errorf("child parent = %q, want %q", child.LinkedParentID, p.User.ID)
	}
	par, _ := f.users.GetByID(ctx, p.User.ID)
	if err := userdomain.CheckLinkage(par, child); err != nil {
		t.Errorf("CheckLinkage: %v", err)
	}
}

func TestSignup_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mustSignup(t, f, student("c@x.com"))
	mustSignup(t, f, parent("p@x.com", "c@x.com"))
	mustSignup(t, f, student("d@x.com"))

	var verr *validation.Error
	cases := []struct {
		name  string
		in    SignupInput
		check func(error) bool
	}{
		{"short password", SignupInput{Email: "n@x.com", Password: "pw1234", Name: "No", LastName: "Name", Role: "student"}, func(err error) bool { return errors.As(err, &verr) }},
		{"bad email", student("not-an-email"), func(err error) bool { return errors.As(err, &verr) }},
		{"bad role", SignupInput{Email: "n@x.com", Password: "pw123456", Name: "No", LastName: "Name", Role: "admin"}, func(err error) bool { return errors.As(err, &verr) }},
		{"short name", SignupInput{Email: "n@x.com", Password: "pw123456", Name: " N ", LastName: "Name", Role: "student"}, func(err error) bool { return errors.As(err, &verr) }},
		{"parent without child", parent("q@x.com", ""), func(err error) bool { return errors.As(err, &verr) }},
		{"parent is own child", parent("q@x.com", "Q@x.com"), func(err error) bool { return errors.As(err, &verr) }},
		{"duplicate email", student("C@x.com"), func(err error) bool { return errors.Is(err, userrepo.ErrEmailTaken) }},
		{"child missing", parent("q@x.com", "ghost@x.com"), func(err error) bool { return errors.Is(err, userrepo.ErrChildNotFound) }},
		{"child is a parent", parent("q@x.com", "p@x.com"), func(err error) bool { return errors.Is(err, userrepo.ErrChildNotStudent) }},
		{"child already linked", parent("q@x.com", "c@x.com"), func(err error) bool { return errors.Is(err, userrepo.ErrChildAlreadyLinked) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Signup(ctx, tc.in)
			if !tc.check(err) {
				t.Fatalf("err = %v", err)
			}
			if u, _ := f.users.GetByEmail(ctx, "q@x.com"); u != nil {
				t.Fatal("a record was written for a rejected signup")
			}
		})
	}
}

func TestSignup_StudentIgnoresChildEmail(t *testing.T) {
	f := newFixture(t)
	in := student("s@x.com")
	in.ChildEmail = "whatever"
	if _, err := f.svc.Signup(context.Background(), in); err != nil {
		t.Fatalf("Signup: %v", err)
	}
}

// unlinkedRepo drops the child side of the link to simulate a partial write.
type unlinkedRepo struct {
	*userrepo.MemoryRepository
}

func (r unlinkedRepo) CreateWithLink(ctx context.Context, parent *userdomain.User, childID string) error {
	return r.Create(ctx, parent)
}

func TestSignup_DetectsInconsistentLinkage(t *testing.T) {
	f := newFixture(t)
	mustSignup(t, f, student("c@x.com"))
	f.svc.users = unlinkedRepo{f.users}
	_, err := f.svc.Signup(context.Background(), parent("p@x.com", "c@x.com"))
	if !errors.Is(err, userdomain.ErrInconsistentLinkage) {
		t.Fatalf("err = %v, want ErrInconsistentLinkage", err)
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mustSignup(t, f, student("s@x.com"))
	cases := []struct{ name, email, password, role string }{
		{"unknown email", "nobody@x.com", "pw123456", "student"},
		{"wrong password", "s@x.com", "pw1234567", "student"},
		{"wrong role", "s@x.com", "pw123456", "parent"},
		{"bogus role", "s@x.com", "pw123456", "admin"},
		{"empty password", "s@x.com", "", "student"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, tc.email, tc.password, tc.role)
			if err != ErrInvalidCredentials {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := mustSignup(t, f, student("s@x.com"))

	res, err := f.svc.Refresh(ctx, s.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	claims, err := f.tokens.VerifyAccess(res.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.Subject != s.User.ID {
		t.Errorf("subject = %q, want %q", claims.Subject, s.User.ID)
	}
	if _, err := f.svc.Refresh(ctx, s.AccessToken); err != ErrInvalidRefreshToken {
		t.Errorf("access token as refresh: err = %v", err)
	}
	if _, err := f.svc.Refresh(ctx, ""); err != ErrInvalidRefreshToken {
		t.Errorf("empty: err = %v", err)
	}

	f.clock.Advance(f.tokens.RefreshTTL() + time.Second)
	if res, err := f.svc.Refresh(ctx, s.RefreshToken); err != ErrInvalidRefreshToken || res != nil {
		t.Fatalf("expired refresh: res = %v, err = %v", res, err)
	}
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := mustSignup(t, f, student("s@x.com"))
	other := mustSignup(t, f, student("o@x.com"))
	caller, _ := f.svc.Resolve(ctx, s.User.ID)
	otherUser, _ := f.svc.Resolve(ctx, other.User.ID)

	if err := f.svc.Logout(ctx, otherUser, s.RefreshToken); err != ErrInvalidRefreshToken {
		t.Fatalf("foreign logout: err = %v", err)
	}
	if err := f.svc.Logout(ctx, caller, s.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.svc.Refresh(ctx, s.RefreshToken); err != ErrInvalidRefreshToken {
		t.Fatalf("refresh after logout: err = %v", err)
	}
	if err := f.svc.Logout(ctx, caller, "garbage"); err != nil {
		t.Errorf("garbage token: err = %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := mustSignup(t, f, student("s@x.com"))

	u, err := f.svc.Authenticate(ctx, s.AccessToken)
	if err != nil || u.ID != s.User.ID {
		t.Fatalf("Authenticate = %v, %v", u, err)
	}
	if _, err := f.svc.Authenticate(ctx, ""); !errors.Is(err, security.ErrTokenMissing) {
		t.Errorf("missing: err = %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, "a.b.c"); !errors.Is(err, security.ErrTokenInvalid) {
		t.Errorf("invalid: err = %v", err)
	}

	if err := f.svc.DeleteAccount(ctx, s.User.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, s.AccessToken); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("deleted user: err = %v, want ErrUserNotFound", err)
	}

	f.clock.Advance(f.tokens.AccessTTL() + time.Second)
	if _, err := f.svc.Authenticate(ctx, s.AccessToken); !errors.Is(err, security.ErrTokenExpired) {
		t.Errorf("expired: err = %v", err)
	}
}

func TestResolve_CanonicalizesID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := mustSignup(t, f, student("s@x.com"))

	upper := "  " + toUpper(s.User.ID) + " "
	u, err := f.svc.Resolve(ctx, upper)
	if err != nil || u.ID != s.User.ID {
		t.Fatalf("Resolve(%q) = %v, %v", upper, u, err)
	}
	for _, id := range []string{"", "not-a-uuid", "00000000-0000-0000-0000-000000000000"} {
		if _, err := f.svc.Resolve(ctx, id); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("Resolve(%q): err = %v", id, err)
		}
	}
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := mustSignup(t, f, student("s@x.com"))

	if err := f.svc.ChangePassword(ctx, s.User.ID, "wrong-pass", "newpass123"); err != ErrIncorrectPassword {
		t.Fatalf("wrong current: err = %v", err)
	}
	var verr *validation.Error
	if err := f.svc.ChangePassword(ctx, s.User.ID, "pw123456", "short"); !errors.As(err, &verr) {
		t.Fatalf("short new: err = %v", err)
	}
	if err := f.svc.ChangePassword(ctx, s.User.ID, "pw123456", "newpass123"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := f.svc.Login(ctx, "s@x.com", "pw123456", "student"); err != ErrInvalidCredentials {
		t.Errorf("old password still works: %v", err)
	}
	if _, err := f.svc.Login(ctx, "s@x.com", "newpass123", "student"); err != nil {
		t.Errorf("new password: %v", err)
	}
}

func TestChildren(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	kid := mustSignup(t, f, student("c@x.com"))
	p := mustSignup(t, f, parent("p@x.com", "c@x.com"))

	par, _ := f.svc.Resolve(ctx, p.User.ID)
	kids, err := f.svc.Children(ctx, par)
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if len(kids) != 1 || kids[0].ID != kid.User.ID || kids[0].Name != "Cleo Child" || kids[0].Email != "c@x.com" {
		t.Errorf("children = %+v", kids)
	}

	child, _ := f.svc.Resolve(ctx, kid.User.ID)
	if _, err := f.svc.Children(ctx, child); !errors.Is(err, rbac.ErrForbidden) {
		t.Errorf("student: err = %v, want ErrForbidden", err)
	}

	if err := f.svc.DeleteAccount(ctx, p.User.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	child, _ = f.svc.Resolve(ctx, kid.User.ID)
	if child.LinkedParentID != "" {
		t.Errorf("child still linked to deleted parent: %q", child.LinkedParentID)
	}
}
