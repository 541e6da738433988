package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents what an admin dashboard user may do
type RoleType string

const (
	RoleAdmin  RoleType = "admin"  // Can manage users and everything an editor can
	RoleEditor RoleType = "editor" // Can manage websites, blocked URLs and reports
	RoleViewer RoleType = "viewer" // Read-only dashboard access
)

var roleRank = map[RoleType]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// ParseRole accepts a role name in any case
func ParseRole(s string) (RoleType, error) {
	role := RoleType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleRank[role]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// AtLeast reports whether r grants at least the privileges of min
func (r RoleType) AtLeast(min RoleType) bool {
	return roleRank[r] >= roleRank[min] && roleRank[r] > 0
}

type User struct {
	ID           string    `json:"id,omitempty"`          // Unique identifier for the user
	Email        string    `json:"email,omitempty"`       // User's email address, unique
	Name         string    `json:"name,omitempty"`        // Display name
	PasswordHash string    `json:"-"`                     // Hashed version of the user's password - never serialize
	Role         RoleType  `json:"role,omitempty"`        // Dashboard role
	Blocked      bool      `json:"blocked,omitempty"`     // Blocked users cannot sign in
	DateJoined   time.Time `json:"date_joined,omitempty"` // Date and time when the user was created
	LastLogin    time.Time `json:"last_login,omitempty"`  // Last successful sign-in
}

// CanManageUsers is true for admins only
func (u *User) CanManageUsers() bool {
	return u.Role.AtLeast(RoleAdmin)
}

// CanEdit is true for editors and admins
func (u *User) CanEdit() bool {
	return u.Role.AtLeast(RoleEditor)
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's stored hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

// CreateRequest is the payload for adding a dashboard user
type CreateRequest struct {
	Email    string   `json:"email"`
	Name     string   `json:"name,omitempty"`
	Password string   `json:"password"`
	Role     RoleType `json:"role"`
}

// NewUser validates the request and returns the user to store, with the password hashed
func (c CreateRequest) NewUser() (*User, error) {
	email := strings.ToLower(strings.TrimSpace(c.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", c.Email)
	}
	role, err := ParseRole(string(c.Role))
	if err != nil {
		return nil, err
	}
	if err := ValidatePasswordStrength(c.Password); err != nil {
		return nil, err
	}
	hash, err := HashPassword(c.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &User{
		Email:        email,
		Name:         strings.TrimSpace(c.Name),
		PasswordHash: hash,
		Role:         role,
	}, nil
}
