package auth_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjpos/pos-api/internal/application/auth"
	"github.com/sjpos/pos-api/internal/application/dto"
	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/entity"
	"github.com/sjpos/pos-api/internal/domain/repository"
	"github.com/sjpos/pos-api/pkg/jwt"
)

// memUsers implementación en memoria de repository.UserRepository.
type memUsers struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*entity.User{}} }

func (m *memUsers) get(id string) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil
	}
	c := *u
	return &c
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) { return m.get(id), nil }

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByValidVerifyToken(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.EmailVerifyTokenHash == hash && u.EmailVerifyExpires != nil && u.EmailVerifyExpires.After(now) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memUsers) update(id string, fn func(u *entity.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (m *memUsers) SetVerifyToken(_ context.Context, id, hash string, exp time.Time) error {
	return m.update(id, func(u *entity.User) { u.EmailVerifyTokenHash, u.EmailVerifyExpires = hash, &exp })
}

func (m *memUsers) MarkEmailVerified(_ context.Context, id string) error {
	return m.update(id, func(u *entity.User) {
		u.IsEmailVerified, u.EmailVerifyTokenHash, u.EmailVerifyExpires = true, "", nil
	})
}

func (m *memUsers) RecordLogin(_ context.Context, id, hash string, at time.Time) error {
	return m.update(id, func(u *entity.User) { u.RefreshTokenHash, u.LastLoginAt = hash, &at })
}

func (m *memUsers) SetRefreshTokenHash(_ context.Context, id, hash string) error {
	return m.update(id, func(u *entity.User) { u.RefreshTokenHash = hash })
}

func (m *memUsers) UpdateProfile(_ context.Context, id string, p repository.ProfilePatch) (*entity.User, error) {
	err := m.update(id, func(u *entity.User) {
		set := func(dst *string, v *string) {
			if v != nil {
				*dst = *v
			}
		}
		set(&u.Firstname, p.Firstname)
		set(&u.Lastname, p.Lastname)
		set(&u.Othername, p.Othername)
		set(&u.Phone, p.Phone)
		set(&u.OtherPhone, p.OtherPhone)
		set(&u.AvatarURL, p.AvatarURL)
		u.IsProfileComplete = u.Phone != ""
	})
	if err != nil {
		return nil, nil
	}
	return m.get(id), nil
}

func (m *memUsers) SetPasswordHash(_ context.Context, id, hash string) error {
	return m.update(id, func(u *entity.User) { u.PasswordHash, u.RefreshTokenHash = hash, "" })
}

func (m *memUsers) SetThemePreference(_ context.Context, id, theme string) error {
	return m.update(id, func(u *entity.User) { u.ThemePreference = theme })
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUsers) ListCashiers(_ context.Context, f repository.CashierFilter) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.User
	for _, u := range m.users {
		if u.Role != entity.RoleCashier {
			continue
		}
		if f.IsApproved != nil && u.IsApproved != *f.IsApproved {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(u.Firstname+" "+u.Lastname+" "+u.Email), strings.ToLower(f.Search)) {
			continue
		}
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lastname < out[j].Lastname })
	return out, nil
}

func (m *memUsers) GetCashierByID(_ context.Context, id string) (*entity.User, error) {
	u := m.get(id)
	if u == nil || u.Role != entity.RoleCashier {
		return nil, nil
	}
	return u, nil
}

func (m *memUsers) ApproveCashier(_ context.Context, id string) error {
	return m.update(id, func(u *entity.User) { u.IsApproved = true })
}

// spyMailer guarda el último token enviado.
type spyMailer struct {
	to, token string
	fail      bool
}

func (s *spyMailer) SendVerificationEmail(_ context.Context, to, _ string, token string) error {
	if s.fail {
		return errors.New("smtp caído")
	}
	s.to, s.token = to, token
	return nil
}

var testTokens = auth.TokenConfig{
	AccessSecret:  "access-secret",
	RefreshSecret: "refresh-secret",
	Issuer:        "sjpos-test",
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    time.Hour,
}

func newAuth() (*auth.AuthUseCase, *memUsers, *spyMailer) {
	repo := newMemUsers()
	mailer := &spyMailer{}
	return auth.NewAuthUseCase(repo, mailer, testTokens, zerolog.Nop()), repo, mailer
}

func signup(t *testing.T, uc *auth.AuthUseCase) *dto.UserResponse {
	t.Helper()
	u, err := uc.Signup(context.Background(), dto.SignupRequest{
		Firstname: "ana", Lastname: "PÉREZ", Email: " Ana@SJPOS.test ", Password: "supersecreto",
	})
	require.NoError(t, err)
	return u
}

func TestSignup_CreaCajeroPendiente(t *testing.T) {
	uc, repo, mailer := newAuth()
	u := signup(t, uc)

	assert.Equal(t, "Ana", u.Firstname)
	assert.Equal(t, "Pérez", u.Lastname)
	assert.Equal(t, "ana@sjpos.test", u.Email)
	assert.Equal(t, entity.RoleCashier, u.Role)
	assert.False(t, u.IsEmailVerified)
	assert.False(t, u.IsApproved)

	stored := repo.get(u.ID)
	assert.NotEqual(t, "supersecreto", stored.PasswordHash)
	assert.Len(t, stored.EmailVerifyTokenHash, 64)
	assert.NotEqual(t, mailer.token, stored.EmailVerifyTokenHash, "en DB solo se guarda el hash")
	assert.Equal(t, "ana@sjpos.test", mailer.to)
}

func TestSignup_EmailDuplicado(t *testing.T) {
	uc, _, _ := newAuth()
	signup(t, uc)
	_, err := uc.Signup(context.Background(), dto.SignupRequest{
		Firstname: "Otra", Lastname: "Persona", Email: "ana@sjpos.test", Password: "supersecreto",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSignup_Validacion(t *testing.T) {
	uc, _, _ := newAuth()
	_, err := uc.Signup(context.Background(), dto.SignupRequest{Firstname: "a", Email: "x", Password: "corta", Phone: "12"})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.GreaterOrEqual(t, len(verr.Issues), 5)
}

func TestSignup_FalloDeCorreoNoRevierte(t *testing.T) {
	uc, repo, mailer := newAuth()
	mailer.fail = true
	u := signup(t, uc)
	assert.NotNil(t, repo.get(u.ID))
}

func TestVerifyEmail(t *testing.T) {
	uc, repo, mailer := newAuth()
	u := signup(t, uc)

	assert.ErrorIs(t, uc.VerifyEmail(context.Background(), "otro"), domain.ErrInvalidInput)
	require.NoError(t, uc.VerifyEmail(context.Background(), mailer.token))
	assert.True(t, repo.get(u.ID).IsEmailVerified)

	// El token se consume.
	assert.ErrorIs(t, uc.VerifyEmail(context.Background(), mailer.token), auth.ErrInvalidVerifyToken)
}

func TestResendVerification(t *testing.T) {
	uc, _, mailer := newAuth()
	signup(t, uc)
	first := mailer.token

	require.NoError(t, uc.ResendVerification(context.Background(), "ANA@sjpos.test"))
	assert.NotEqual(t, first, mailer.token)
	assert.ErrorIs(t, uc.VerifyEmail(context.Background(), first), auth.ErrInvalidVerifyToken, "el token anterior queda invalidado")
	require.NoError(t, uc.VerifyEmail(context.Background(), mailer.token))

	assert.ErrorIs(t, uc.ResendVerification(context.Background(), "ana@sjpos.test"), auth.ErrNothingToResend)
	assert.ErrorIs(t, uc.ResendVerification(context.Background(), "nadie@sjpos.test"), domain.ErrNotFound)
}

func TestLogin_ReglasDeAcceso(t *testing.T) {
	uc, repo, mailer := newAuth()
	u := signup(t, uc)
	creds := dto.LoginRequest{Email: "ana@sjpos.test", Password: "supersecreto"}

	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "ana@sjpos.test", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(context.Background(), creds)
	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)

	require.NoError(t, uc.VerifyEmail(context.Background(), mailer.token))
	_, err = uc.Login(context.Background(), creds)
	assert.ErrorIs(t, err, auth.ErrPendingApproval)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, repo.ApproveCashier(context.Background(), u.ID))
	out, err := uc.Login(context.Background(), creds)
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)
	assert.NotNil(t, out.User.LastLoginAt)

	id, err := jwt.Parse(testTokens.AccessSecret, out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, entity.RoleCashier, id.Role)
	assert.NotEmpty(t, repo.get(u.ID).RefreshTokenHash)
}

func TestLogin_AdminNoRequiereAprobacion(t *testing.T) {
	uc, repo, _ := newAuth()
	u := signup(t, uc)
	_ = repo.update(u.ID, func(x *entity.User) { x.Role = entity.RoleAdmin })

	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "ana@sjpos.test", Password: "supersecreto"})
	assert.NoError(t, err)
}

func loggedIn(t *testing.T) (*auth.AuthUseCase, *memUsers, *dto.LoginResponse) {
	t.Helper()
	uc, repo, _ := newAuth()
	u := signup(t, uc)
	_ = repo.update(u.ID, func(x *entity.User) { x.IsEmailVerified, x.IsApproved = true, true })
	out, err := uc.Login(context.Background(), dto.LoginRequest{Email: "ana@sjpos.test", Password: "supersecreto"})
	require.NoError(t, err)
	return uc, repo, out
}

func TestRefresh_RotaElToken(t *testing.T) {
	uc, _, login := loggedIn(t)

	// Los JWT incluyen iat en segundos: esperar para que el nuevo token difiera.
	time.Sleep(1100 * time.Millisecond)
	out, err := uc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEqual(t, login.RefreshToken, out.RefreshToken)

	_, err = uc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken, "el token rotado ya no sirve")

	_, err = uc.Refresh(context.Background(), "basura")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogout_RevocaRefresh(t *testing.T) {
	uc, repo, login := loggedIn(t)

	require.NoError(t, uc.Logout(context.Background(), login.RefreshToken))
	assert.Empty(t, repo.get(login.User.ID).RefreshTokenHash)

	_, err := uc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
	assert.ErrorIs(t, uc.Logout(context.Background(), "basura"), domain.ErrInvalidInput)
}

func TestLogout_TokenExpiradoTambienRevoca(t *testing.T) {
	uc, repo, login := loggedIn(t)
	expired, err := jwt.Generate(testTokens.RefreshSecret, "sjpos-test",
		jwt.Identity{UserID: login.User.ID, Role: entity.RoleCashier}, -time.Minute)
	require.NoError(t, err)

	require.NoError(t, uc.Logout(context.Background(), expired))
	assert.Empty(t, repo.get(login.User.ID).RefreshTokenHash)
}

func TestUpdateProfile(t *testing.T) {
	uc, _, login := loggedIn(t)
	ctx := context.Background()

	_, err := uc.UpdateProfile(ctx, login.User.ID, dto.UpdateProfileRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	phone, name := "+233241234567", "  kofi "
	out, err := uc.UpdateProfile(ctx, login.User.ID, dto.UpdateProfileRequest{Phone: &phone, Othername: &name})
	require.NoError(t, err)
	assert.Equal(t, "Kofi", out.Othername)
	assert.True(t, out.IsProfileComplete)

	bad := "no-es-url"
	_, err = uc.UpdateProfile(ctx, login.User.ID, dto.UpdateProfileRequest{AvatarURL: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChangePassword(t *testing.T) {
	uc, repo, login := loggedIn(t)
	ctx := context.Background()

	err := uc.ChangePassword(ctx, login.User.ID, dto.ChangePasswordRequest{OldPassword: "incorrecta1", NewPassword: "nuevaclave1"})
	assert.ErrorIs(t, err, auth.ErrWrongPassword)

	err = uc.ChangePassword(ctx, login.User.ID, dto.ChangePasswordRequest{OldPassword: "supersecreto", NewPassword: "supersecreto"})
	assert.ErrorIs(t, err, auth.ErrSamePassword)

	require.NoError(t, uc.ChangePassword(ctx, login.User.ID, dto.ChangePasswordRequest{OldPassword: "supersecreto", NewPassword: "nuevaclave1"}))
	assert.Empty(t, repo.get(login.User.ID).RefreshTokenHash, "cambiar la contraseña cierra la sesión")

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@sjpos.test", Password: "nuevaclave1"})
	assert.NoError(t, err)
}

func TestChangeTheme(t *testing.T) {
	uc, repo, login := loggedIn(t)
	require.NoError(t, uc.ChangeTheme(context.Background(), login.User.ID, entity.ThemeDark))
	assert.Equal(t, entity.ThemeDark, repo.get(login.User.ID).ThemePreference)
	assert.ErrorIs(t, uc.ChangeTheme(context.Background(), login.User.ID, "blue"), domain.ErrInvalidInput)
}

func TestDeleteAccount(t *testing.T) {
	uc, repo, login := loggedIn(t)
	assert.ErrorIs(t, uc.DeleteAccount(context.Background(), login.User.ID, "incorrecta"), auth.ErrWrongPassword)
	require.NoError(t, uc.DeleteAccount(context.Background(), login.User.ID, "supersecreto"))
	assert.Nil(t, repo.get(login.User.ID))
}
