package models

import "time"

// User is an administrator account. Password and security answers are stored
// as bcrypt hashes only. TOTPSecret is set at enrollment provisioning and
// only considered active once TOTPEnabled is true.
type User struct {
	ID             string
	Username       string
	HashedPassword string
	AnswerHashes   [4]string
	TOTPSecret     string
	TOTPEnabled    bool
	CreatedAt      time.Time
}

// HasSecurityQuestions reports whether all four recovery answers are set.
func (u *User) HasSecurityQuestions() bool {
	for _, h := range u.AnswerHashes {
		if h == "" {
			return false
		}
	}
	return true
}
