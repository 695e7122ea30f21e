package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesa-hq/mesa/internal/auth"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
	_ "github.com/mesa-hq/mesa/testing"
)

type stubRepo struct {
	user      *auth.User
	nextID    int64
	createErr error
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateUser(ctx context.Context, email, passwordHash string) (*auth.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	return &auth.User{ID: s.nextID, Email: email, PasswordHash: passwordHash, IsActive: true}, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func (s *stubRepo) FindActiveIdentity(ctx context.Context, userID int64) (tenant.Identity, error) {
	if s.user == nil || s.user.ID != userID {
		return tenant.Identity{}, shared.ErrNotFound
	}
	return tenant.Identity{ID: s.user.ID, Email: s.user.Email}, nil
}

type stubProfiles struct {
	created []int64
}

func (s *stubProfiles) CreateProfile(ctx context.Context, userID int64, fullName string) error {
	s.created = append(s.created, userID)
	return nil
}

type stubLinker struct {
	linked map[string]int64
}

func (s *stubLinker) LinkUser(ctx context.Context, email string, userID int64) error {
	if s.linked == nil {
		s.linked = make(map[string]int64)
	}
	s.linked[email] = userID
	return nil
}

type authFixture struct {
	router   chi.Router
	sessions *shared.SessionManager
	repo     *stubRepo
	profiles *stubProfiles
	linker   *stubLinker
}

func newAuthFixture(t *testing.T, repo *stubRepo) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	profiles := &stubProfiles{}
	linker := &stubLinker{}
	service := auth.NewService(repo, profiles, linker)
	handler := auth.NewHandler(logger, service, sessionManager, csrfManager, 100)

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	return &authFixture{router: router, sessions: sessionManager, repo: repo, profiles: profiles, linker: linker}
}

func (f *authFixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := f.sessions.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res, sess
}

func TestLoginSuccess(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo := &stubRepo{user: &auth.User{ID: 7, Email: "owner@test.local", PasswordHash: string(hashed), IsActive: true}}
	f := newAuthFixture(t, repo)

	res, sess := f.do(t, http.MethodPost, "/auth/login", `{"email":"owner@test.local","password":"correct-horse"}`)

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "7", sess.User())
	require.Contains(t, res.Body.String(), "csrf_token")
}

func TestLoginWrongPassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo := &stubRepo{user: &auth.User{ID: 7, Email: "owner@test.local", PasswordHash: string(hashed), IsActive: true}}
	f := newAuthFixture(t, repo)

	res, sess := f.do(t, http.MethodPost, "/auth/login", `{"email":"owner@test.local","password":"wrong-password"}`)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Empty(t, sess.User())
}

func TestLoginInactiveAccount(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo := &stubRepo{user: &auth.User{ID: 7, Email: "owner@test.local", PasswordHash: string(hashed), IsActive: false}}
	f := newAuthFixture(t, repo)

	res, _ := f.do(t, http.MethodPost, "/auth/login", `{"email":"owner@test.local","password":"correct-horse"}`)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestSignupCreatesProfileAndLinksInvites(t *testing.T) {
	f := newAuthFixture(t, &stubRepo{})

	res, sess := f.do(t, http.MethodPost, "/auth/signup", `{"email":"new@test.local","password":"longenough","full_name":"New Person"}`)

	require.Equal(t, http.StatusCreated, res.Code)
	require.Equal(t, "1", sess.User())
	require.Equal(t, []int64{1}, f.profiles.created)
	require.Equal(t, int64(1), f.linker.linked["new@test.local"])
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, &stubRepo{createErr: auth.ErrEmailTaken})

	res, _ := f.do(t, http.MethodPost, "/auth/signup", `{"email":"dup@test.local","password":"longenough","full_name":"Dup Person"}`)

	require.Equal(t, http.StatusConflict, res.Code)
}

func TestSignupRejectsShortPassword(t *testing.T) {
	f := newAuthFixture(t, &stubRepo{})

	res, _ := f.do(t, http.MethodPost, "/auth/signup", `{"email":"new@test.local","password":"short","full_name":"New Person"}`)

	require.Equal(t, http.StatusBadRequest, res.Code)
}
