package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/myapp/account-service/internal/core/domain"
	"github.com/myapp/account-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users  map[string]*domain.User
	order  []string
	nextID int
	err    error // if set, every call returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.UserSummary, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.UserSummary, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, domain.UserSummary{ID: id, Username: r.users[id].Username})
	}
	return out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, id := range r.order {
		if u := r.users[id]; u.Username == username || u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, id := range r.order {
		if u := r.users[id]; u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("id-%d", r.nextID)
	r.users[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	return cloneUser(stored), nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, p ports.UserProfile) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Username, u.Email, u.PhoneNo = p.Username, p.Email, p.PhoneNo
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// stubHasher prefixes the password; good enough to tell hash from plaintext.
type stubHasher struct {
	hashErr error
}

func (h stubHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + password, nil
}

func (h stubHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type stubGuard struct {
	held     map[string]bool
	released int
	claimErr error
}

func (g *stubGuard) Claim(_ context.Context, username, email string) (bool, error) {
	if g.claimErr != nil {
		return false, g.claimErr
	}
	if g.held["u:"+username] || g.held["e:"+email] {
		return false, nil
	}
	g.held["u:"+username], g.held["e:"+email] = true, true
	return true, nil
}

func (g *stubGuard) Release(_ context.Context, username, email string) error {
	delete(g.held, "u:"+username)
	delete(g.held, "e:"+email)
	g.released++
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func newTestService(repo *stubUserRepo) *AccountService {
	return NewAccountService(repo, stubHasher{}, nil, discardLogger)
}

func aliceInput() ports.RegisterInput {
	return ports.RegisterInput{Username: "alice", Email: "a@x.com", Password: "s3cret", PhoneNo: "555"}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAccountService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)

	user, err := svc.Register(context.Background(), aliceInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected store-assigned id")
	}
	if user.Password == "s3cret" {
		t.Fatal("stored password must not equal the plaintext")
	}
	if repo.users[user.ID].Password != "hashed:s3cret" {
		t.Errorf("expected hashed password in store, got %q", repo.users[user.ID].Password)
	}
	if user.Email != "a@x.com" || user.PhoneNo != "555" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestAccountService_Register_MissingFields(t *testing.T) {
	cases := []ports.RegisterInput{
		{Email: "a@x.com", Password: "p", PhoneNo: "1"},
		{Username: "a", Password: "p", PhoneNo: "1"},
		{Username: "a", Email: "a@x.com", PhoneNo: "1"},
		{Username: "a", Email: "a@x.com", Password: "p"},
	}

	for i, in := range cases {
		svc := newTestService(newStubUserRepo())
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrMissingFields) {
			t.Errorf("case %d: expected ErrMissingFields, got %v", i, err)
		}
	}
}

func TestAccountService_Register_DuplicateUsername(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)

	if _, err := svc.Register(context.Background(), aliceInput()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	in := aliceInput()
	in.Email = "other@x.com"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Errorf("expected 1 stored user, got %d", len(repo.users))
	}
}

func TestAccountService_Register_DuplicateEmail(t *testing.T) {
	svc := newTestService(newStubUserRepo())
	_, _ = svc.Register(context.Background(), aliceInput())

	in := aliceInput()
	in.Username = "alice2"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAccountService_Register_StoreError(t *testing.T) {
	repo := newStubUserRepo()
	repo.err = errors.New("db unavailable")
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), aliceInput())
	if err == nil {
		t.Fatal("expected error when repo fails, got nil")
	}
	if errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrMissingFields) {
		t.Fatalf("store failure must not map to a client error: %v", err)
	}
}

func TestAccountService_Register_HashError(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAccountService(repo, stubHasher{hashErr: errors.New("boom")}, nil, discardLogger)

	if _, err := svc.Register(context.Background(), aliceInput()); err == nil {
		t.Fatal("expected hash error, got nil")
	}
	if len(repo.users) != 0 {
		t.Errorf("nothing must be stored when hashing fails")
	}
}

func TestAccountService_Register_GuardReleasesClaim(t *testing.T) {
	guard := &stubGuard{held: map[string]bool{}}
	svc := NewAccountService(newStubUserRepo(), stubHasher{}, guard, discardLogger)

	if _, err := svc.Register(context.Background(), aliceInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if guard.released != 1 {
		t.Errorf("expected claim to be released once, got %d", guard.released)
	}
	if len(guard.held) != 0 {
		t.Errorf("expected no claims held after register, got %v", guard.held)
	}
}

func TestAccountService_Register_GuardRejectsHeldClaim(t *testing.T) {
	guard := &stubGuard{held: map[string]bool{"e:a@x.com": true}}
	repo := newStubUserRepo()
	svc := NewAccountService(repo, stubHasher{}, guard, discardLogger)

	if _, err := svc.Register(context.Background(), aliceInput()); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if len(repo.users) != 0 {
		t.Errorf("expected no insert while claim is held")
	}
}

func TestAccountService_Register_GuardErrorFallsBack(t *testing.T) {
	guard := &stubGuard{held: map[string]bool{}, claimErr: errors.New("redis down")}
	svc := NewAccountService(newStubUserRepo(), stubHasher{}, guard, discardLogger)

	if _, err := svc.Register(context.Background(), aliceInput()); err != nil {
		t.Fatalf("guard failure must not block registration: %v", err)
	}
	if guard.released != 0 {
		t.Errorf("nothing to release when claim failed")
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAccountService_Login(t *testing.T) {
	svc := newTestService(newStubUserRepo())
	if _, err := svc.Register(context.Background(), aliceInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	cases := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"correct", "alice", "s3cret", nil},
		{"wrong password", "alice", "nope", domain.ErrInvalidCredentials},
		{"unknown user", "bob", "s3cret", domain.ErrInvalidCredentials},
		{"email is not a login", "a@x.com", "s3cret", domain.ErrInvalidCredentials},
		{"missing password", "alice", "", domain.ErrMissingCredentials},
		{"missing username", "", "s3cret", domain.ErrMissingCredentials},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Login(context.Background(), tc.username, tc.password)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAccountService_Login_StoreError(t *testing.T) {
	repo := newStubUserRepo()
	repo.err = errors.New("db unavailable")
	svc := newTestService(repo)

	err := svc.Login(context.Background(), "alice", "s3cret")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected raw store error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// List / Get / Update / Delete
// ---------------------------------------------------------------------------

func TestAccountService_ListUsers_StoreOrder(t *testing.T) {
	svc := newTestService(newStubUserRepo())
	_, _ = svc.Register(context.Background(), aliceInput())
	_, _ = svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Email: "b@x.com", Password: "p", PhoneNo: "1"})

	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 || users[0].Username != "alice" || users[1].Username != "bob" {
		t.Fatalf("unexpected listing: %+v", users)
	}
}

func TestAccountService_ListUsers_StoreError(t *testing.T) {
	repo := newStubUserRepo()
	repo.err = errors.New("db unavailable")

	if _, err := newTestService(repo).ListUsers(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestAccountService_GetUser_NotFound(t *testing.T) {
	svc := newTestService(newStubUserRepo())

	if _, err := svc.GetUser(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAccountService_UpdateUser_KeepsIDAndHash(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)
	created, _ := svc.Register(context.Background(), aliceInput())

	updated, err := svc.UpdateUser(context.Background(), created.ID, ports.UserProfile{
		Username: "alice2", Email: "a2@x.com", PhoneNo: "123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Username != "alice2" || updated.Email != "a2@x.com" || updated.PhoneNo != "123" {
		t.Errorf("profile not updated: %+v", updated)
	}
	if updated.ID != created.ID {
		t.Errorf("id changed: %q -> %q", created.ID, updated.ID)
	}
	if updated.Password != created.Password {
		t.Errorf("password hash must be untouched")
	}
}

func TestAccountService_UpdateUser_OmittedFieldsAreErased(t *testing.T) {
	svc := newTestService(newStubUserRepo())
	created, _ := svc.Register(context.Background(), aliceInput())

	updated, err := svc.UpdateUser(context.Background(), created.ID, ports.UserProfile{Email: "new@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Username != "" || updated.PhoneNo != "" {
		t.Errorf("expected omitted fields to be overwritten with empty values, got %+v", updated)
	}
}

func TestAccountService_UpdateUser_NotFound(t *testing.T) {
	svc := newTestService(newStubUserRepo())

	if _, err := svc.UpdateUser(context.Background(), "missing", ports.UserProfile{}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAccountService_DeleteUser(t *testing.T) {
	svc := newTestService(newStubUserRepo())
	created, _ := svc.Register(context.Background(), aliceInput())

	if err := svc.DeleteUser(context.Background(), created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetUser(context.Background(), created.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
	if err := svc.DeleteUser(context.Background(), created.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// End to end through the service
// ---------------------------------------------------------------------------

func TestAccountService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newStubUserRepo())

	u, err := svc.Register(ctx, aliceInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Login(ctx, "alice", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.UpdateUser(ctx, u.ID, ports.UserProfile{Username: "alice", Email: "new@x.com", PhoneNo: "555"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := svc.GetUser(ctx, u.ID)
	if err != nil || got.Email != "new@x.com" {
		t.Fatalf("expected updated email, got %+v (err %v)", got, err)
	}

	if err := svc.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Login(ctx, "alice", "s3cret"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials after delete, got %v", err)
	}
}
