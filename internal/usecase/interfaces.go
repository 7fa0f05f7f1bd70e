package usecase

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// MessageThrottle limits how often a user may post to swap threads.
type MessageThrottle interface {
	Allow(userID string) bool
}
