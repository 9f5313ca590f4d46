package ports

// PasswordHasher hashes and verifies passwords with a salted one-way hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash.
	Compare(hash, password string) error
}
