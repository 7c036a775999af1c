// Package auth hashes admin passwords and issues the bearer tokens that
// guard the admin API.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/crypto/argon2"
)

// HashParams tunes Argon2id.
type HashParams struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength uint32
}

// DefaultHashParams is used by HashPassword.
var DefaultHashParams = HashParams{
	Time:       1,
	Memory:     64 * 1024,
	Threads:    4,
	KeyLength:  32,
	SaltLength: 16,
}

const hashScheme = "argon2id"

// HashPassword returns an encoded Argon2id hash of password in the form
// argon2id$time$memory$threads$salt$hash.
func HashPassword(password string) (string, error) {
	return hashWith(password, DefaultHashParams)
}

func hashWith(password string, p HashParams) (string, error) {
	if password == "" {
		return "", eris.New("auth: empty password")
	}
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", eris.Wrap(err, "auth: generate salt")
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLength)
	return fmt.Sprintf("%s$%d$%d$%d$%s$%s", hashScheme, p.Time, p.Memory, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches encoded. A malformed
// hash is an error; a wrong password is not.
func VerifyPassword(password, encoded string) (bool, error) {
	p, salt, want, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func decodeHash(encoded string) (HashParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != hashScheme {
		return HashParams{}, nil, nil, eris.New("auth: invalid password hash format")
	}
	var nums [3]uint64
	for i := range nums {
		n, err := strconv.ParseUint(parts[i+1], 10, 32)
		if err != nil {
			return HashParams{}, nil, nil, eris.Wrap(err, "auth: invalid hash parameter")
		}
		nums[i] = n
	}
	if nums[2] == 0 || nums[2] > 255 {
		return HashParams{}, nil, nil, eris.New("auth: invalid hash thread count")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return HashParams{}, nil, nil, eris.Wrap(err, "auth: decode salt")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return HashParams{}, nil, nil, eris.Wrap(err, "auth: decode hash")
	}
	return HashParams{
		Time:       uint32(nums[0]),
		Memory:     uint32(nums[1]),
		Threads:    uint8(nums[2]),
		KeyLength:  uint32(len(key)),
		SaltLength: uint32(len(salt)),
	}, salt, key, nil
}
