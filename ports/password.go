package ports

// PasswordHasher hashes and verifies credentials.
// Verify must compare in constant time.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encodedHash string) (bool, error)
}
