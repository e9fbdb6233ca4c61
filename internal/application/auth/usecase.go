package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sjpos/pos-api/internal/application/dto"
	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/entity"
	"github.com/sjpos/pos-api/internal/domain/repository"
	"github.com/sjpos/pos-api/pkg/jwt"
	"github.com/sjpos/pos-api/pkg/normalize"
)

// verifyTokenTTL vigencia del enlace de verificación de email.
const verifyTokenTTL = 20 * time.Minute

// Errores de autenticación con mensaje para el cliente.
var (
	ErrInvalidCredentials    = domain.WithKind(domain.ErrUnauthorized, "invalid email or password")
	ErrEmailNotVerified      = domain.WithKind(domain.ErrForbidden, "verify your email to login")
	ErrPendingApproval       = domain.WithKind(domain.ErrForbidden, "cashier account pending approval")
	ErrInvalidVerifyToken    = domain.WithKind(domain.ErrInvalidInput, "invalid or expired verification token")
	ErrEmailAlreadyVerified  = domain.WithKind(domain.ErrConflict, "email is already verified")
	ErrNothingToResend       = domain.WithKind(domain.ErrInvalidInput, "email is already verified")
	ErrRefreshTokenRequired  = domain.WithKind(domain.ErrInvalidInput, "refresh token is required")
	ErrInvalidRefreshToken   = domain.WithKind(domain.ErrUnauthorized, "invalid refresh token")
	ErrRefreshTokenExpired   = domain.WithKind(domain.ErrUnauthorized, "refresh token expired")
	ErrRefreshTokenRevoked   = domain.WithKind(domain.ErrNotFound, "refresh token does not exist")
	ErrWrongPassword         = domain.WithKind(domain.ErrUnauthorized, "current password is incorrect")
	ErrSamePassword          = domain.WithKind(domain.ErrInvalidInput, "new password must differ from the current one")
	ErrCannotLogoutWithToken = domain.WithKind(domain.ErrInvalidInput, "invalid refresh token, cannot log out")
)

// Mailer envía el correo de verificación (SMTP o log en desarrollo).
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, firstname, token string) error
}

// TokenConfig secretos y duraciones de los JWT de acceso y de refresco.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// AuthUseCase registro, verificación de email, sesiones y cuenta del usuario.
type AuthUseCase struct {
	userRepo repository.UserRepository
	mailer   Mailer
	tokens   TokenConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, mailer Mailer, tokens TokenConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, mailer: mailer, tokens: tokens, log: log, now: time.Now}
}

// Signup crea un cajero sin verificar ni aprobar y envía el enlace de verificación.
// Un fallo de envío no revierte el alta: el usuario puede pedir reenvío.
func (uc *AuthUseCase) Signup(ctx context.Context, in dto.SignupRequest) (*dto.UserResponse, error) {
	in.Email = normalize.Email(in.Email)
	in.Firstname = normalize.Name(in.Firstname)
	in.Lastname = normalize.Name(in.Lastname)
	in.Othername = normalize.Name(in.Othername)

	verr := &domain.ValidationError{}
	checkName(verr, "firstname", in.Firstname, true)
	checkName(verr, "lastname", in.Lastname, true)
	checkName(verr, "othername", in.Othername, false)
	if !normalize.ValidEmail(in.Email) {
		verr.Add("email", "invalid email address")
	}
	checkPassword(verr, "password", in.Password)
	if in.Phone != "" && !normalize.ValidPhone(in.Phone) {
		verr.Add("phone", "invalid phone number")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	existing, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	token, tokenHash, err := newVerifyToken()
	if err != nil {
		return nil, err
	}
	now := uc.now()
	expires := now.Add(verifyTokenTTL)
	user := &entity.User{
		ID:                   uuid.New().String(),
		Firstname:            in.Firstname,
		Lastname:             in.Lastname,
		Othername:            in.Othername,
		Email:                in.Email,
		PasswordHash:         string(hash),
		Phone:                in.Phone,
		ThemePreference:      entity.ThemeLight,
		Role:                 entity.RoleCashier,
		IsProfileComplete:    in.Phone != "",
		EmailVerifyTokenHash: tokenHash,
		EmailVerifyExpires:   &expires,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.sendVerification(ctx, user, token)
	return ToUserResponse(user), nil
}

// VerifyEmail consume un token de verificación vigente.
func (uc *AuthUseCase) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return domain.WithKind(domain.ErrInvalidInput, "verification token is required")
	}
	user, err := uc.userRepo.GetByValidVerifyToken(ctx, hashToken(token), uc.now())
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidVerifyToken
	}
	if user.IsEmailVerified {
		return ErrEmailAlreadyVerified
	}
	return uc.userRepo.MarkEmailVerified(ctx, user.ID)
}

// ResendVerification genera un token nuevo (invalida el anterior) y reenvía el correo.
func (uc *AuthUseCase) ResendVerification(ctx context.Context, email string) error {
	email = normalize.Email(email)
	if !normalize.ValidEmail(email) {
		verr := &domain.ValidationError{}
		verr.Add("email", "invalid email address")
		return verr
	}
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.WithKind(domain.ErrNotFound, "no account found with this email")
	}
	if user.IsEmailVerified {
		return ErrNothingToResend
	}
	token, tokenHash, err := newVerifyToken()
	if err != nil {
		return err
	}
	if err := uc.userRepo.SetVerifyToken(ctx, user.ID, tokenHash, uc.now().Add(verifyTokenTTL)); err != nil {
		return err
	}
	uc.sendVerification(ctx, user, token)
	return nil
}

// Login verifica credenciales y reglas de acceso, emite access + refresh y guarda el hash del refresh.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := normalize.Email(in.Email)
	if email == "" || in.Password == "" {
		verr := &domain.ValidationError{}
		if email == "" {
			verr.Add("email", "email is required")
		}
		if in.Password == "" {
			verr.Add("password", "password is required")
		}
		return nil, verr
	}
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	verified, approved := user.CanLogin()
	if !verified {
		return nil, ErrEmailNotVerified
	}
	if !approved {
		return nil, ErrPendingApproval
	}

	access, refresh, refreshHash, err := uc.issueTokens(user)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	if err := uc.userRepo.RecordLogin(ctx, user.ID, refreshHash, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	uc.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("inicio de sesión")
	return &dto.LoginResponse{
		Success:      true,
		AccessToken:  access,
		RefreshToken: refresh,
		User:         *ToUserResponse(user),
	}, nil
}

// Refresh valida el refresh token contra el hash guardado y lo rota.
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}
	id, err := jwt.Parse(uc.tokens.RefreshSecret, refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return nil, ErrRefreshTokenExpired
		}
		return nil, ErrInvalidRefreshToken
	}
	user, err := uc.userRepo.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.RefreshTokenHash == "" {
		return nil, ErrRefreshTokenRevoked
	}
	if !matchRefresh(user.RefreshTokenHash, refreshToken) {
		return nil, ErrInvalidRefreshToken
	}
	access, refresh, refreshHash, err := uc.issueTokens(user)
	if err != nil {
		return nil, err
	}
	if err := uc.userRepo.SetRefreshTokenHash(ctx, user.ID, refreshHash); err != nil {
		return nil, err
	}
	return &dto.TokenResponse{Success: true, AccessToken: access, RefreshToken: refresh}, nil
}

// Logout revoca el refresh token guardado. Un token expirado con firma válida también sirve.
func (uc *AuthUseCase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrRefreshTokenRequired
	}
	id, err := jwt.Parse(uc.tokens.RefreshSecret, refreshToken)
	if err != nil && !errors.Is(err, jwt.ErrExpired) {
		return ErrCannotLogoutWithToken
	}
	if id.UserID == "" {
		return ErrCannotLogoutWithToken
	}
	return uc.userRepo.SetRefreshTokenHash(ctx, id.UserID, "")
}

// Profile devuelve el perfil del usuario autenticado.
func (uc *AuthUseCase) Profile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return ToUserResponse(user), nil
}

// UpdateProfile aplica un patch de campos opcionales; el perfil queda completo al tener teléfono.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, userID string, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	patch := repository.ProfilePatch{
		Firstname:  normalizedName(in.Firstname),
		Lastname:   normalizedName(in.Lastname),
		Othername:  normalizedName(in.Othername),
		Phone:      in.Phone,
		OtherPhone: in.OtherPhone,
		AvatarURL:  in.AvatarURL,
	}
	verr := &domain.ValidationError{}
	if patch.Empty() {
		verr.Add("body", "no field provided to update user profile")
	}
	if patch.Firstname != nil {
		checkName(verr, "firstname", *patch.Firstname, true)
	}
	if patch.Lastname != nil {
		checkName(verr, "lastname", *patch.Lastname, true)
	}
	if patch.Othername != nil {
		checkName(verr, "othername", *patch.Othername, true)
	}
	if patch.Phone != nil && !normalize.ValidPhone(*patch.Phone) {
		verr.Add("phone", "invalid phone number")
	}
	if patch.OtherPhone != nil && !normalize.ValidPhone(*patch.OtherPhone) {
		verr.Add("other_phone", "invalid phone number")
	}
	if patch.AvatarURL != nil && !normalize.ValidURL(*patch.AvatarURL) {
		verr.Add("avatar_url", "invalid avatar URL")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return ToUserResponse(user), nil
}

// ChangePassword cambia la contraseña y revoca la sesión de refresco.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) error {
	verr := &domain.ValidationError{}
	checkPassword(verr, "oldPassword", in.OldPassword)
	checkPassword(verr, "newPassword", in.NewPassword)
	if err := verr.OrNil(); err != nil {
		return err
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.OldPassword)) != nil {
		return ErrWrongPassword
	}
	if in.OldPassword == in.NewPassword {
		return ErrSamePassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return uc.userRepo.SetPasswordHash(ctx, userID, string(hash))
}

// ChangeTheme guarda la preferencia light|dark.
func (uc *AuthUseCase) ChangeTheme(ctx context.Context, userID, theme string) error {
	if theme != entity.ThemeLight && theme != entity.ThemeDark {
		verr := &domain.ValidationError{}
		verr.Add("theme_preference", "must be light or dark")
		return verr
	}
	return uc.userRepo.SetThemePreference(ctx, userID, theme)
}

// DeleteAccount elimina la cuenta previa confirmación de contraseña.
func (uc *AuthUseCase) DeleteAccount(ctx context.Context, userID, password string) error {
	if password == "" {
		verr := &domain.ValidationError{}
		verr.Add("password", "password is required")
		return verr
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrWrongPassword
	}
	if err := uc.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	uc.log.Info().Str("user_id", userID).Msg("cuenta eliminada")
	return nil
}

func (uc *AuthUseCase) issueTokens(u *entity.User) (access, refresh, refreshHash string, err error) {
	id := jwt.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
	access, err = jwt.Generate(uc.tokens.AccessSecret, uc.tokens.Issuer, id, uc.tokens.AccessTTL)
	if err != nil {
		return "", "", "", fmt.Errorf("access token: %w", err)
	}
	refresh, err = jwt.Generate(uc.tokens.RefreshSecret, uc.tokens.Issuer, id, uc.tokens.RefreshTTL)
	if err != nil {
		return "", "", "", fmt.Errorf("refresh token: %w", err)
	}
	// bcrypt limita la entrada a 72 bytes; se hashea el sha256 del JWT.
	h, err := bcrypt.GenerateFromPassword([]byte(hashToken(refresh)), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", fmt.Errorf("hash refresh token: %w", err)
	}
	return access, refresh, string(h), nil
}

func (uc *AuthUseCase) sendVerification(ctx context.Context, u *entity.User, token string) {
	if err := uc.mailer.SendVerificationEmail(ctx, u.Email, u.Firstname, token); err != nil {
		uc.log.Error().Err(err).Str("user_id", u.ID).Msg("envío de email de verificación")
	}
}

func matchRefresh(storedHash, token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(hashToken(token))) == nil
}

// newVerifyToken devuelve el token en claro (para el correo) y su sha256 (para la DB).
func newVerifyToken() (token, tokenHash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("verify token: %w", err)
	}
	token = hex.EncodeToString(b)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ToUserResponse convierte la entidad en la salida pública (sin hashes).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:                u.ID,
		Firstname:         u.Firstname,
		Lastname:          u.Lastname,
		Othername:         u.Othername,
		Email:             u.Email,
		Phone:             u.Phone,
		OtherPhone:        u.OtherPhone,
		AvatarURL:         u.AvatarURL,
		ThemePreference:   u.ThemePreference,
		Role:              u.Role,
		IsEmailVerified:   u.IsEmailVerified,
		IsApproved:        u.IsApproved,
		IsProfileComplete: u.IsProfileComplete,
		LastLoginAt:       u.LastLoginAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
