package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/data/repos"
	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/domain/social"
	"github.com/yungbote/eduverse-backend/internal/pkg/ctxutil"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/platform/apierr"
	"github.com/yungbote/eduverse-backend/internal/platform/validation"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Username     string `json:"username" validate:"required,username"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	Password2    string `json:"password2" validate:"required"`
	AgreeToTerms bool   `json:"agree_to_terms"`
	FirstName    string `json:"first_name" validate:"max=150"`
	LastName     string `json:"last_name" validate:"max=150"`
}

// AuthResult is returned by Login and Refresh.
type AuthResult struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	User         *types.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, error)
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	CleanupExpiredTokens(ctx context.Context) (int64, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	profileRepo   repos.ProfileRepo
	avatarService AvatarService
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	profileRepo repos.ProfileRepo,
	avatarService AvatarService,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		avatarService: avatarService,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func errInvalidCredentials() error {
	return apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("invalid credentials"))
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Password = strings.TrimSpace(in.Password)
	in.Password2 = strings.TrimSpace(in.Password2)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if in.Password != in.Password2 {
		return nil, apierr.BadRequest("validation_error", "Passwords must match")
	}
	if !in.AgreeToTerms {
		return nil, apierr.BadRequest("validation_error", "You must agree to the terms")
	}

	dbc := dbctx.New(ctx)
	if exists, err := as.userRepo.EmailExists(dbc, in.Email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if exists {
		return nil, apierr.BadRequest("email_taken", "Email already registered")
	}
	if exists, err := as.userRepo.UsernameExists(dbc, in.Username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if exists {
		return nil, apierr.BadRequest("username_taken", "Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &types.User{
		ID:        uuid.New(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsActive:  true,
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := as.avatarService.CreateAndUploadUserAvatar(txc, user); err != nil {
			return fmt.Errorf("create user avatar: %w", err)
		}
		if _, err := as.userRepo.Create(txc, []*types.User{user}); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		profile := social.NewProfile(user.ID, user.Username, user.FullName())
		if _, err := as.profileRepo.Create(txc, []*types.Profile{profile}); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrConflict) {
			return nil, apierr.BadRequest("username_taken", "Username or email already registered")
		}
		as.log.Error("Register failed", "error", err)
		return nil, err
	}
	return user, nil
}

func (as *authService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return nil, apierr.BadRequest("validation_error", "identifier and password are required")
	}

	dbc := dbctx.New(ctx)
	user, err := as.lookupIdentifier(dbc, identifier)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, errInvalidCredentials()
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, errInvalidCredentials()
	}
	if !user.IsActive {
		return nil, apierr.Forbidden("account_inactive", "Account is not active")
	}
	profile, err := as.profileRepo.GetByUserID(dbc, user.ID)
	if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile != nil && profile.AccountStatus != social.AccountStatusActive {
		return nil, apierr.Forbidden("account_"+profile.AccountStatus, "Account is "+profile.AccountStatus)
	}

	var out *AuthResult
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		res, err := as.issueTokens(txc, user)
		if err != nil {
			return err
		}
		now := as.now()
		if err := as.userRepo.UpdateLastLogin(txc, user.ID, now); err != nil {
			return fmt.Errorf("update last login: %w", err)
		}
		user.LastLoginAt = &now
		out = res
		return nil
	})
	if err != nil {
		as.log.Warn("Login failed", "error", err)
		return nil, err
	}
	return out, nil
}

func (as *authService) lookupIdentifier(dbc dbctx.Context, identifier string) (*types.User, error) {
	if strings.Contains(identifier, "@") {
		users, err := as.userRepo.GetByEmails(dbc, []string{identifier})
		if err != nil {
			return nil, err
		}
		if len(users) > 0 {
			return users[0], nil
		}
	}
	return as.userRepo.GetByUsername(dbc, identifier)
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apierr.BadRequest("validation_error", "refresh_token is required")
	}

	var out *AuthResult
	var expired bool
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := as.userTokenRepo.GetByRefreshTokens(txc, []string{refreshToken})
		if err != nil {
			return fmt.Errorf("fetch refresh token: %w", err)
		}
		if len(found) == 0 {
			return pkgerrors.ErrUnauthorized
		}
		existing := found[0]
		if !existing.ExpiresAt.After(as.now()) {
			if err := as.userTokenRepo.DeleteByIDs(txc, []uuid.UUID{existing.ID}); err != nil {
				return fmt.Errorf("delete expired token: %w", err)
			}
			expired = true
			return nil
		}
		user, err := as.userRepo.GetByID(txc, existing.UserID)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrNotFound) {
				return pkgerrors.ErrUnauthorized
			}
			return err
		}
		res, err := as.issueTokens(txc, user)
		if err != nil {
			return err
		}
		if err := as.userTokenRepo.DeleteByIDs(txc, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("remove old refresh token: %w", err)
		}
		out = res
		return nil
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrUnauthorized) {
			return nil, apierr.New(http.StatusUnauthorized, "invalid_refresh_token", errors.New("invalid refresh token"))
		}
		as.log.Warn("Refresh failed", "error", err)
		return nil, err
	}
	if expired {
		return nil, apierr.New(http.StatusUnauthorized, "refresh_token_expired", errors.New("refresh token expired"))
	}
	return out, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return pkgerrors.ErrUnauthorized
	}
	dbc := dbctx.New(ctx)
	found, err := as.userTokenRepo.GetByAccessTokens(dbc, []string{rd.TokenString})
	if err != nil {
		return fmt.Errorf("find user token: %w", err)
	}
	if len(found) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(found))
	for _, t := range found {
		ids = append(ids, t.ID)
	}
	if err := as.userTokenRepo.DeleteByIDs(dbc, ids); err != nil {
		return fmt.Errorf("delete user token: %w", err)
	}
	return nil
}

func (as *authService) issueTokens(dbc dbctx.Context, user *types.User) (*AuthResult, error) {
	access, err := as.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    as.now().Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{row}); err != nil {
		return nil, fmt.Errorf("create user token: %w", err)
	}
	return &AuthResult{
		AccessToken:  access,
		RefreshToken: row.RefreshToken,
		ExpiresIn:    int64(as.accessTTL.Seconds()),
		User:         user,
	}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken verifies tokenString and attaches RequestData to ctx.
// The token row must still exist, so a logged out token stops working immediately.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, pkgerrors.ErrUnauthorized
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, fmt.Errorf("%w: parse token: %v", pkgerrors.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("%w: invalid or expired token", pkgerrors.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("%w: invalid subject", pkgerrors.ErrUnauthorized)
	}
	found, err := as.userTokenRepo.GetByAccessTokens(dbctx.New(ctx), []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("fetch user token: %w", err)
	}
	if len(found) == 0 || found[0].UserID != userID {
		return ctx, fmt.Errorf("%w: token revoked", pkgerrors.ErrUnauthorized)
	}
	rd := &ctxutil.RequestData{
		TokenString:  tokenString,
		RefreshToken: found[0].RefreshToken,
		UserID:       userID,
		SessionID:    found[0].ID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	n, err := as.userTokenRepo.DeleteExpired(dbctx.New(ctx), as.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	if n > 0 {
		as.log.Info("Deleted expired user tokens", "count", n)
	}
	return n, nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
