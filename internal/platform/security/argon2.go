package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var ErrInvalidHash = errors.New("invalid stored hash format")

type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params keeps a single hash well under a second on commodity
// hardware.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Argon2Hasher stores passwords in the PHC string format
// "$argon2id$v=19$m=<KiB>,t=<iterations>,p=<threads>$<salt>$<hash>", so a
// hash stays verifiable after the configured parameters change. The older
// bare "salt$hash" form is verified with the hasher's own parameters.
type Argon2Hasher struct {
	params Argon2Params
}

func NewArgon2Hasher(params Argon2Params) *Argon2Hasher {
	return &Argon2Hasher{params: params}
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func (h *Argon2Hasher) Verify(password, encoded string) (bool, error) {
	params, salt, expected, err := h.decode(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

func (h *Argon2Hasher) decode(encoded string) (Argon2Params, []byte, []byte, error) {
	params := h.params
	parts := strings.Split(encoded, "$")

	var saltPart, hashPart string
	switch len(parts) {
	case 2:
		saltPart, hashPart = parts[0], parts[1]
	case 6:
		if parts[0] != "" || parts[1] != "argon2id" {
			return params, nil, nil, ErrInvalidHash
		}

		var version int
		if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
			return params, nil, nil, ErrInvalidHash
		}
		if version != argon2.Version {
			return params, nil, nil, fmt.Errorf("%w: unsupported argon2 version %d", ErrInvalidHash, version)
		}

		if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
			return params, nil, nil, ErrInvalidHash
		}
		if params.Memory == 0 || params.Iterations == 0 || params.Parallelism == 0 {
			return params, nil, nil, ErrInvalidHash
		}

		saltPart, hashPart = parts[4], parts[5]
	default:
		return params, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(saltPart)
	if err != nil {
		return params, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	expected, err := base64.RawStdEncoding.DecodeString(hashPart)
	if err != nil {
		return params, nil, nil, fmt.Errorf("decode hash: %w", err)
	}
	if len(expected) == 0 {
		return params, nil, nil, ErrInvalidHash
	}

	return params, salt, expected, nil
}
