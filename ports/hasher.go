package ports

// PasswordHasher hashes credentials with a per-call random salt. The
// encoded output is self-describing so verification needs no extra state.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with an encoded hash in constant
	// time. A malformed encoded hash is a failed check, never a panic.
	Check(password, encoded string) bool
}
