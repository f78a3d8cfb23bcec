package account

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hrportal/internal/database"
)

func newTestService(t *testing.T) (*AccountService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&database.Account{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewService(db, DefaultPolicy()), db
}

func activeAccount(t *testing.T, s *AccountService, username string) *database.Account {
	t.Helper()

	account, err := s.Register(username, "Passw0rd!", username+"@example.com", "Test User", nil)
	if err != nil {
		t.Fatalf("Register(%q) returned error: %v", username, err)
	}
	if err := s.Approve(account); err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	return account
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	s, _ := newTestService(t)

	account, err := s.Register("alice", "Passw0rd!", "A@X.com", "Alice A", nil)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if account.Status != database.StatusPending {
		t.Errorf("Status = %q; want %q", account.Status, database.StatusPending)
	}
	if account.Email != "a@x.com" {
		t.Errorf("Email = %q; want lowercased %q", account.Email, "a@x.com")
	}
	if account.PasswordHash == "Passw0rd!" || account.PasswordHash == "" {
		t.Error("password stored in plaintext or missing")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	s, _ := newTestService(t)

	if _, err := s.Register("alice", "Passw0rd!", "a@x.com", "Alice A", nil); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name     string
		username string
		email    string
	}{
		{"same username", "alice", "other@x.com"},
		{"same email", "bob", "a@x.com"},
		{"same email different case", "carol", "A@X.COM"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(tc.username, "Passw0rd!", tc.email, "Dup", nil)
			if !errors.Is(err, ErrDuplicate) {
				t.Errorf("Register = %v; want ErrDuplicate", err)
			}
		})
	}
}

func TestAuthenticateUnknownIdentifier(t *testing.T) {
	s, _ := newTestService(t)

	if _, err := s.Authenticate("nobody", "Passw0rd!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate = %v; want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateStatusGates(t *testing.T) {
	s, _ := newTestService(t)

	pending, err := s.Register("pending", "Passw0rd!", "p@x.com", "P", nil)
	if err != nil {
		t.Fatal(err)
	}

	rejected, err := s.Register("rejected", "Passw0rd!", "r@x.com", "R", nil)
	if err != nil {
		t.Fatal(err)
	}
	reason := "failed screening"
	if err := s.Reject(rejected, &reason); err != nil {
		t.Fatal(err)
	}

	suspended := activeAccount(t, s, "suspended")
	if err := s.Suspend(suspended); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		username string
		want     error
	}{
		{"pending", ErrPending},
		{"rejected", ErrRejected},
		{"suspended", ErrSuspended},
	}

	for _, tc := range testCases {
		t.Run(tc.username, func(t *testing.T) {
			// Correct password: the status gate must win and no token path
			// may open.
			_, err := s.Authenticate(tc.username, "Passw0rd!")
			if !errors.Is(err, tc.want) {
				t.Errorf("Authenticate(%q) = %v; want %v", tc.username, err, tc.want)
			}
		})
	}

	// Status gates do not consume lockout attempts.
	got, err := s.GetByID(pending.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.LoginAttempts != 0 {
		t.Errorf("LoginAttempts = %d; want 0", got.LoginAttempts)
	}
}

func TestAuthenticateLockout(t *testing.T) {
	s, _ := newTestService(t)
	account := activeAccount(t, s, "alice")

	for i := 1; i <= 4; i++ {
		if _, err := s.Authenticate("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: Authenticate = %v; want ErrInvalidCredentials", i, err)
		}
	}

	// Fifth failure trips the lock.
	if _, err := s.Authenticate("alice", "wrong"); !errors.Is(err, ErrLocked) {
		t.Fatalf("attempt 5: Authenticate = %v; want ErrLocked", err)
	}

	got, err := s.GetByID(account.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.LockedUntil == nil {
		t.Fatal("LockedUntil not set after fifth failure")
	}
	remaining := time.Until(*got.LockedUntil)
	if remaining < 29*time.Minute || remaining > 30*time.Minute {
		t.Errorf("lock window = %v; want about 30m", remaining)
	}

	// A correct password inside the window still reports locked.
	if _, err := s.Authenticate("alice", "Passw0rd!"); !errors.Is(err, ErrLocked) {
		t.Errorf("Authenticate with correct password = %v; want ErrLocked", err)
	}

	// The lock check short-circuits, so the counter stays where it was.
	got, err = s.GetByID(account.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.LoginAttempts != 5 {
		t.Errorf("LoginAttempts = %d; want 5", got.LoginAttempts)
	}
}

func TestAuthenticateLockExpiry(t *testing.T) {
	s, db := newTestService(t)
	account := activeAccount(t, s, "alice")

	expired := time.Now().Add(-time.Minute)
	if err := db.Model(account).Updates(map[string]any{
		"login_attempts": 5,
		"locked_until":   expired,
	}).Error; err != nil {
		t.Fatal(err)
	}

	// The counter survives lock expiry, so one further failure re-locks.
	if _, err := s.Authenticate("alice", "wrong"); !errors.Is(err, ErrLocked) {
		t.Errorf("Authenticate after expiry = %v; want ErrLocked", err)
	}
}

func TestAuthenticateSuccessAfterLockExpiry(t *testing.T) {
	s, db := newTestService(t)
	account := activeAccount(t, s, "alice")

	expired := time.Now().Add(-time.Minute)
	if err := db.Model(account).Updates(map[string]any{
		"login_attempts": 5,
		"locked_until":   expired,
	}).Error; err != nil {
		t.Fatal(err)
	}

	if _, err := s.Authenticate("alice", "Passw0rd!"); err != nil {
		t.Fatalf("Authenticate after expiry = %v; want success", err)
	}

	got, err := s.GetByID(account.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.LoginAttempts != 0 {
		t.Errorf("LoginAttempts = %d; want 0", got.LoginAttempts)
	}
	if got.LockedUntil != nil {
		t.Error("LockedUntil not cleared on successful login")
	}
	if got.LastLogin == nil {
		t.Error("LastLogin not recorded")
	}
}

func TestAuthenticateByEmail(t *testing.T) {
	s, _ := newTestService(t)
	activeAccount(t, s, "alice")

	if _, err := s.Authenticate("Alice@example.com", "Passw0rd!"); err != nil {
		t.Errorf("Authenticate by email = %v; want success", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	s, _ := newTestService(t)

	active := activeAccount(t, s, "alice")

	if err := s.Approve(active); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Approve(active) = %v; want ErrInvalidTransition", err)
	}
	if err := s.Reinstate(active); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Reinstate(active) = %v; want ErrInvalidTransition", err)
	}

	if err := s.Suspend(active); err != nil {
		t.Fatalf("Suspend(active) = %v", err)
	}
	if err := s.Suspend(active); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Suspend(suspended) = %v; want ErrInvalidTransition", err)
	}
	if err := s.Reinstate(active); err != nil {
		t.Fatalf("Reinstate(suspended) = %v", err)
	}

	pending, err := s.Register("bob", "Passw0rd!", "b@x.com", "Bob", nil)
	if err != nil {
		t.Fatal(err)
	}
	reason := "duplicate request"
	if err := s.Reject(pending, &reason); err != nil {
		t.Fatalf("Reject(pending) = %v", err)
	}
	if err := s.Approve(pending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Approve(rejected) = %v; want ErrInvalidTransition", err)
	}
}

func TestDeleteSelfGuard(t *testing.T) {
	s, _ := newTestService(t)

	admin := activeAccount(t, s, "admin")
	other := activeAccount(t, s, "other")

	if err := s.Delete(admin.ID, admin.ID); !errors.Is(err, ErrSelfDeletion) {
		t.Errorf("Delete(self) = %v; want ErrSelfDeletion", err)
	}

	if err := s.Delete(admin.ID, other.ID); err != nil {
		t.Errorf("Delete(other) = %v; want success", err)
	}

	if _, err := s.GetByID(other.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID after delete = %v; want ErrNotFound", err)
	}

	if err := s.Delete(admin.ID, other.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) = %v; want ErrNotFound", err)
	}
}

func TestResetAndUpdatePassword(t *testing.T) {
	s, _ := newTestService(t)
	account := activeAccount(t, s, "alice")

	if err := s.ResetPassword(account, "Temp0rary!"); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetByID(account.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.ForcePasswordChange {
		t.Error("ForcePasswordChange not set by administrative reset")
	}

	if _, err := s.Authenticate("alice", "Temp0rary!"); err != nil {
		t.Fatalf("Authenticate with reset password = %v", err)
	}

	if err := s.UpdatePassword(got, "NewPassw0rd!"); err != nil {
		t.Fatal(err)
	}

	got, err = s.GetByID(account.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ForcePasswordChange {
		t.Error("ForcePasswordChange not cleared by password update")
	}

	if _, err := s.Authenticate("alice", "Temp0rary!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still accepted: %v", err)
	}
	if _, err := s.Authenticate("alice", "NewPassw0rd!"); err != nil {
		t.Errorf("Authenticate with new password = %v", err)
	}
}
