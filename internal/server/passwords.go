package server

import "golang.org/x/crypto/bcrypt"

// bcrypt cost of 12 is a good balance of security and performance.
const bcryptCost = 12

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when a login targets an unknown email,
// so both paths cost one bcrypt verification.
var dummyHash, _ = hashPassword("docshare-no-such-user")
