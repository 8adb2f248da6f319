package port

// PasswordHasher hashes and verifies secrets using the configured algorithm.
// Verify fails closed: a malformed or corrupt encoded hash yields (false, nil).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
}
