// Package services contains server-side business logic. This file implements
// UserService: first-run bootstrap, registration, login with an optional TOTP
// second factor, security-question password recovery, and TOTP enrollment.
package services

import (
	"context"
	"database/sql"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dkarlovs/tacpanel/internal/common"
	"github.com/dkarlovs/tacpanel/internal/dbx"
	"github.com/dkarlovs/tacpanel/internal/server/auth"
	"github.com/dkarlovs/tacpanel/internal/server/config"
	"github.com/dkarlovs/tacpanel/internal/server/models"
	"github.com/dkarlovs/tacpanel/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult is what a successful login, registration, or first-time setup
// hands back to the transport layer.
type AuthResult struct {
	Token                 string
	Username              string
	RequiresTOTPSetup     bool
	SessionTimeoutMinutes int
}

// TOTPEnrollment carries a freshly provisioned shared secret and the otpauth
// URL a client renders as a QR code. The secret is returned exactly once and
// is not considered active until verified.
type TOTPEnrollment struct {
	Secret string
	URL    string
}

// UserService provides authentication-related operations backed by the users
// repository.
type UserService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	jwtSecret      []byte
	sessionTimeout time.Duration
	totpIssuer     string
	requireTOTP    bool
	policy         config.PasswordPolicy
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:             db,
		repomanager:    m,
		jwtSecret:      []byte(cfg.SecretKey),
		sessionTimeout: cfg.SessionTimeout,
		totpIssuer:     cfg.TOTPIssuer,
		requireTOTP:    cfg.RequireTOTPSetup,
		policy:         cfg.Password,
	}
}

// PasswordPolicy exposes the active policy so the transport layer can serve
// it to clients.
func (s *UserService) PasswordPolicy() config.PasswordPolicy { return s.policy }

// IsFirstRun reports whether no administrator account exists yet.
func (s *UserService) IsFirstRun(ctx context.Context) (bool, error) {
	repo := s.repomanager.Users(s.db)
	n, err := repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("error counting users: %w", err)
	}
	return n == 0, nil
}

// SetupFirstAdmin creates the initial administrator account. It fails with
// ErrorAlreadyExists once any account is present; the first-run state is
// decided server-side and never re-entered.
func (s *UserService) SetupFirstAdmin(ctx context.Context, username, password string, answers [4]string) (*AuthResult, error) {
	firstRun, err := s.IsFirstRun(ctx)
	if err != nil {
		return nil, err
	}
	if !firstRun {
		return nil, fmt.Errorf("%w: an administrator account already exists", common.ErrorAlreadyExists)
	}
	return s.createUser(ctx, username, password, answers)
}

// Register creates an additional administrator account.
func (s *UserService) Register(ctx context.Context, username, password string, answers [4]string) (*AuthResult, error) {
	repo := s.repomanager.Users(s.db)
	if _, err := repo.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username already registered", common.ErrorAlreadyExists)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}
	return s.createUser(ctx, username, password, answers)
}

// Login verifies credentials and, when the account has an enrolled
// authenticator, the provided TOTP code.
//
// Error contract:
//   - unknown user or wrong password: common.ErrorUnauthorized
//   - enrolled account, empty code: common.ErrSecondFactorRequired
//   - enrolled account, wrong code: common.ErrInvalidTOTPCode
func (s *UserService) Login(ctx context.Context, username, password, totpCode string) (*AuthResult, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Burn a comparison anyway so user lookup failures are not
			// distinguishable by timing.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}

	if user.TOTPEnabled {
		if totpCode == "" {
			return nil, common.ErrSecondFactorRequired
		}
		if !totp.Validate(totpCode, user.TOTPSecret) {
			return nil, common.ErrInvalidTOTPCode
		}
	}

	return s.authResult(user)
}

// HasSecurityQuestions confirms recovery questions exist for the given user.
// Both "no such user" and "no questions configured" come back as
// common.ErrorNotFound so the transport layer cannot leak which one it was.
func (s *UserService) HasSecurityQuestions(ctx context.Context, username string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	if !user.HasSecurityQuestions() {
		return common.ErrorNotFound
	}
	return nil
}

// ResetPassword verifies all four security answers and replaces the password.
// Wrong answers yield common.ErrorUnauthorized; every answer is checked even
// after a mismatch is found.
func (s *UserService) ResetPassword(ctx context.Context, username string, answers [4]string, newPassword string) error {
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	// Verify and update inside one transaction so a concurrent reset cannot
	// interleave between the check and the write.
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		user, err := repo.GetByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return common.ErrorInternal
		}
		if !user.HasSecurityQuestions() {
			return common.ErrorUnauthorized
		}

		ok := true
		for i, answer := range answers {
			if bcrypt.CompareHashAndPassword([]byte(user.AnswerHashes[i]), []byte(normalizeAnswer(answer))) != nil {
				ok = false
			}
		}
		if !ok {
			return common.ErrorUnauthorized
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return common.ErrorInternal
		}
		if err := repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
			return common.ErrorInternal
		}
		return nil
	})
}

// ProvisionTOTP issues a new shared secret for the user and stores it in a
// pending (disabled) state. Re-provisioning replaces any prior secret and
// disables the factor until the new one is verified.
func (s *UserService) ProvisionTOTP(ctx context.Context, userID string) (*TOTPEnrollment, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.totpIssuer,
		AccountName: user.Username,
	})
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := repo.UpdateTOTP(ctx, user.ID, key.Secret(), false); err != nil {
		return nil, common.ErrorInternal
	}

	return &TOTPEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// PendingTOTP rebuilds the enrollment key for the user's stored secret so
// the transport layer can render it again (for example as a QR image)
// without rotating the secret.
func (s *UserService) PendingTOTP(ctx context.Context, userID string) (*TOTPEnrollment, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if user.TOTPSecret == "" {
		return nil, fmt.Errorf("%w: no pending enrollment", common.ErrorValidation)
	}

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(user.TOTPSecret)
	if err != nil {
		return nil, common.ErrorInternal
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.totpIssuer,
		AccountName: user.Username,
		Secret:      raw,
	})
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TOTPEnrollment{Secret: user.TOTPSecret, URL: key.URL()}, nil
}

// VerifyTOTP checks the code against the pending secret and activates the
// factor. The pending secret stays valid across failed attempts so a retry
// does not need re-provisioning.
func (s *UserService) VerifyTOTP(ctx context.Context, userID, code string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return common.ErrorInternal
	}
	if user.TOTPSecret == "" {
		return fmt.Errorf("%w: no pending enrollment", common.ErrorValidation)
	}

	if !totp.Validate(code, user.TOTPSecret) {
		return common.ErrInvalidTOTPCode
	}

	if err := repo.UpdateTOTP(ctx, user.ID, user.TOTPSecret, true); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// TOTPStatus reports whether the user has an active authenticator.
func (s *UserService) TOTPStatus(ctx context.Context, userID string) (bool, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, common.ErrorUnauthorized
		}
		return false, common.ErrorInternal
	}
	return user.TOTPEnabled, nil
}

// ValidatePassword applies the configured policy. Violations come back
// wrapped around common.ErrorValidation with a user-facing message.
func (s *UserService) ValidatePassword(password string) error {
	if len(password) < s.policy.MinLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, s.policy.MinLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	switch {
	case s.policy.RequireUppercase && !hasUpper:
		return fmt.Errorf("%w: password must contain an uppercase letter", common.ErrorValidation)
	case s.policy.RequireLowercase && !hasLower:
		return fmt.Errorf("%w: password must contain a lowercase letter", common.ErrorValidation)
	case s.policy.RequireNumbers && !hasNumber:
		return fmt.Errorf("%w: password must contain a number", common.ErrorValidation)
	case s.policy.RequireSpecial && !hasSpecial:
		return fmt.Errorf("%w: password must contain a special character", common.ErrorValidation)
	}
	return nil
}

// --- helpers below ---

// dummyHash is compared against when the user does not exist, keeping the
// not-found path roughly as expensive as the wrong-password path.
var dummyHash = func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("tacpanel-dummy"), bcrypt.DefaultCost)
	return h
}()

func (s *UserService) createUser(ctx context.Context, username, password string, answers [4]string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	if err := s.ValidatePassword(password); err != nil {
		return nil, err
	}
	for _, a := range answers {
		if strings.TrimSpace(a) == "" {
			return nil, fmt.Errorf("%w: all four security answers are required", common.ErrorValidation)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:             uuid.NewString(),
		Username:       username,
		HashedPassword: string(hash),
	}
	for i, a := range answers {
		ah, err := bcrypt.GenerateFromPassword([]byte(normalizeAnswer(a)), bcrypt.DefaultCost)
		if err != nil {
			return nil, common.ErrorInternal
		}
		user.AnswerHashes[i] = string(ah)
	}

	repo := s.repomanager.Users(s.db)
	created, err := repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.authResult(created)
}

func (s *UserService) authResult(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.sessionTimeout)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &AuthResult{
		Token:                 token,
		Username:              user.Username,
		RequiresTOTPSetup:     s.requireTOTP && !user.TOTPEnabled,
		SessionTimeoutMinutes: int(s.sessionTimeout.Minutes()),
	}, nil
}

// Security answers are matched case-insensitively with surrounding
// whitespace ignored.
func normalizeAnswer(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}
