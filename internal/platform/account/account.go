package account

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrportal/internal/database"
	"hrportal/pkg/utils"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrDuplicate          = errors.New("username or email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLocked             = errors.New("account locked")
	ErrPending            = errors.New("account pending approval")
	ErrRejected           = errors.New("account rejected")
	ErrSuspended          = errors.New("account suspended")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrSelfDeletion       = errors.New("cannot delete own account")
)

// Policy holds the lockout knobs. Both values come from configuration; the
// defaults match the historical behavior of five attempts and thirty minutes.
type Policy struct {
	MaxLoginAttempts int
	LockDuration     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxLoginAttempts: 5,
		LockDuration:     30 * time.Minute,
	}
}

type AccountService struct {
	db     *gorm.DB
	policy Policy
}

func NewService(db *gorm.DB, policy Policy) *AccountService {
	if policy.MaxLoginAttempts <= 0 {
		policy.MaxLoginAttempts = DefaultPolicy().MaxLoginAttempts
	}
	if policy.LockDuration <= 0 {
		policy.LockDuration = DefaultPolicy().LockDuration
	}
	return &AccountService{db: db, policy: policy}
}

func (s *AccountService) GetByID(accountID uuid.UUID) (*database.Account, error) {
	var account database.Account
	result := s.db.First(&account, "id = ?", accountID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &account, nil
}

// GetByIdentifier looks up an account by username or email. Emails are
// matched lowercased, usernames literally.
func (s *AccountService) GetByIdentifier(identifier string) (*database.Account, error) {
	var account database.Account
	result := s.db.First(&account, "username = ? OR email = ?", identifier, strings.ToLower(identifier))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &account, nil
}

// Register creates a pending account from a self-service signup. The account
// cannot authenticate until an administrator approves it.
func (s *AccountService) Register(username, password, email, fullName string, phoneNumber *string) (*database.Account, error) {
	email = strings.ToLower(email)

	var count int64
	if err := s.db.Model(&database.Account{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicate
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := database.Account{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PhoneNumber:  phoneNumber,
		PasswordHash: hash,
		Role:         database.RoleEmployee,
		Status:       database.StatusPending,
	}

	if err := s.db.Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// Create is the administrative creation path: the account starts active
// unless pending is requested, and the caller picks the role.
func (s *AccountService) Create(username, password, email, fullName, role string, pending bool) (*database.Account, error) {
	account, err := s.Register(username, password, email, fullName, nil)
	if err != nil {
		return nil, err
	}

	status := database.StatusActive
	if pending {
		status = database.StatusPending
	}

	account.Role = role
	account.Status = status
	if err := s.db.Model(account).Updates(map[string]any{
		"role":   role,
		"status": status,
	}).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// IsLocked reports whether the account is inside a lockout window. Expiry is
// lazy: a read after locked_until has elapsed treats the account as unlocked,
// but the attempt counter keeps its value until a successful login.
func (s *AccountService) IsLocked(account *database.Account) bool {
	return account.LockedUntil != nil && account.LockedUntil.After(time.Now())
}

// LockRemaining returns how long the current lockout window still has to run.
func (s *AccountService) LockRemaining(account *database.Account) time.Duration {
	if !s.IsLocked(account) {
		return 0
	}
	return time.Until(*account.LockedUntil)
}

// Authenticate runs the full login sequence: lookup, lock check, status
// check, password verification with lockout accounting, and the reset on
// success. Every failure mode maps to one of the sentinel errors above.
func (s *AccountService) Authenticate(identifier, password string) (*database.Account, error) {
	account, err := s.GetByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Indistinguishable from a wrong password.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// The lock check comes before password verification, so a locked account
	// never consumes an attempt and the lock is never extended.
	if s.IsLocked(account) {
		return account, ErrLocked
	}

	switch account.Status {
	case database.StatusPending:
		return account, ErrPending
	case database.StatusRejected:
		return account, ErrRejected
	case database.StatusSuspended:
		return account, ErrSuspended
	}

	if !utils.VerifyPassword(password, account.PasswordHash) {
		return account, s.registerFailure(account)
	}

	if err := s.recordLogin(account); err != nil {
		return nil, err
	}
	return account, nil
}

// registerFailure increments the attempt counter and starts a lockout window
// once the counter reaches the threshold. The counter is deliberately not
// reset when a previous window expires, so a single further failure re-locks.
func (s *AccountService) registerFailure(account *database.Account) error {
	account.LoginAttempts++

	locked := account.LoginAttempts >= s.policy.MaxLoginAttempts
	if locked {
		lockedUntil := time.Now().Add(s.policy.LockDuration)
		account.LockedUntil = &lockedUntil
	}

	if err := s.db.Model(account).Updates(map[string]any{
		"login_attempts": account.LoginAttempts,
		"locked_until":   account.LockedUntil,
	}).Error; err != nil {
		return err
	}

	if locked {
		return ErrLocked
	}
	return ErrInvalidCredentials
}

func (s *AccountService) recordLogin(account *database.Account) error {
	now := time.Now()
	account.LoginAttempts = 0
	account.LockedUntil = nil
	account.LastLogin = &now

	return s.db.Model(account).Updates(map[string]any{
		"login_attempts": 0,
		"locked_until":   nil,
		"last_login":     now,
		"login_count":    gorm.Expr("login_count + ?", 1),
	}).Error
}

func (s *AccountService) Approve(account *database.Account) error {
	if account.Status != database.StatusPending {
		return ErrInvalidTransition
	}
	return s.setStatus(account, database.StatusActive, nil)
}

func (s *AccountService) Reject(account *database.Account, reason *string) error {
	if account.Status != database.StatusPending {
		return ErrInvalidTransition
	}
	return s.setStatus(account, database.StatusRejected, reason)
}

func (s *AccountService) Suspend(account *database.Account) error {
	if account.Status != database.StatusActive {
		return ErrInvalidTransition
	}
	return s.setStatus(account, database.StatusSuspended, nil)
}

func (s *AccountService) Reinstate(account *database.Account) error {
	if account.Status != database.StatusSuspended {
		return ErrInvalidTransition
	}
	return s.setStatus(account, database.StatusActive, nil)
}

func (s *AccountService) setStatus(account *database.Account, status database.AccountStatus, reason *string) error {
	account.Status = status
	account.RejectReason = reason

	return s.db.Model(account).Updates(map[string]any{
		"status":        status,
		"reject_reason": reason,
	}).Error
}

func (s *AccountService) SetRole(account *database.Account, role string) error {
	account.Role = role
	return s.db.Model(account).Update("role", role).Error
}

// UpdatePassword stores a new hash after the caller has re-verified the
// current password. It also clears the forced-change flag and any lockout.
func (s *AccountService) UpdatePassword(account *database.Account, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	account.PasswordHash = hash
	account.ForcePasswordChange = false
	account.LoginAttempts = 0
	account.LockedUntil = nil

	return s.db.Model(account).Updates(map[string]any{
		"password_hash":         hash,
		"force_password_change": false,
		"login_attempts":        0,
		"locked_until":          nil,
	}).Error
}

// ResetPassword is the administrative path: the new password is handed to the
// holder out of band and must be changed on first use.
func (s *AccountService) ResetPassword(account *database.Account, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	account.PasswordHash = hash
	account.ForcePasswordChange = true
	account.LoginAttempts = 0
	account.LockedUntil = nil

	return s.db.Model(account).Updates(map[string]any{
		"password_hash":         hash,
		"force_password_change": true,
		"login_attempts":        0,
		"locked_until":          nil,
	}).Error
}

// Delete removes an account. The account handling the current administrative
// request cannot delete itself.
func (s *AccountService) Delete(actorID, accountID uuid.UUID) error {
	if actorID == accountID {
		return ErrSelfDeletion
	}

	result := s.db.Delete(&database.Account{}, "id = ?", accountID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AccountService) List(limit, offset int) ([]database.Account, error) {
	var accounts []database.Account
	result := s.db.Limit(limit).Offset(offset).Order("username ASC").Find(&accounts)
	if result.Error != nil {
		return nil, result.Error
	}
	return accounts, nil
}

func (s *AccountService) ListPending() ([]database.Account, error) {
	var accounts []database.Account
	result := s.db.Where("status = ?", database.StatusPending).Order("created_at ASC").Find(&accounts)
	if result.Error != nil {
		return nil, result.Error
	}
	return accounts, nil
}
