package password

import (
	"errors"

	"github.com/alexedwards/argon2id"
	"github.com/layer-3/sentinel/ports"
)

// Hasher implements PasswordHasher with argon2id
type Hasher struct {
	params *argon2id.Params
}

// NewDefault uses argon2id.DefaultParams
func NewDefault() ports.PasswordHasher {
	return &Hasher{params: argon2id.DefaultParams}
}

func New(p *argon2id.Params) ports.PasswordHasher { return &Hasher{params: p} }

// Hash returns the encoded $argon2id$v=19$m=... form stored in the users table.
func (h *Hasher) Hash(plain string) (string, error) {
	if h == nil || h.params == nil {
		return "", errors.New("argon2id params not set")
	}
	return argon2id.CreateHash(plain, h.params)
}

// Verify compares plain against the stored hash in constant time.
func (h *Hasher) Verify(plain, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(plain, encodedHash)
}
