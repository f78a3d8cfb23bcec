package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// Single work factor for every hashing path, registration and administrative
// resets alike.
const hashCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored digest. A
// missing or malformed digest verifies as false so the caller cannot tell it
// apart from a wrong password.
func VerifyPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
