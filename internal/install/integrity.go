package install

import (
	"crypto/sha1"
	_ "crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/scaffold-labs/scaffold/internal/registry"
)

// ErrIntegrityMismatch is returned when a downloaded archive does not match
// the checksum published in registry metadata.
var ErrIntegrityMismatch = errors.New("integrity mismatch")

// VerifyIntegrity checks archivePath against dist. The SRI "integrity" field
// is preferred; the legacy sha1 "shasum" is used when it is the only one.
// Metadata without either is accepted unverified.
func VerifyIntegrity(archivePath string, dist registry.Dist) error {
	if dist.Integrity != "" {
		d, err := DigestFromSRI(dist.Integrity)
		if err != nil {
			return err
		}
		if d != "" {
			return verifyDigest(archivePath, d)
		}
	}
	if dist.Shasum != "" {
		return verifySHA1(archivePath, dist.Shasum)
	}
	return nil
}

// DigestFromSRI converts the strongest supported entry of a subresource
// integrity string ("sha512-<base64>") into a digest. Unsupported
// algorithms yield an empty digest and no error.
func DigestFromSRI(sri string) (digest.Digest, error) {
	var best digest.Digest
	for _, field := range strings.Fields(sri) {
		algo, encoded, ok := strings.Cut(field, "-")
		if !ok {
			return "", fmt.Errorf("malformed integrity %q", field)
		}
		var alg digest.Algorithm
		switch algo {
		case "sha512":
			alg = digest.SHA512
		case "sha384":
			alg = digest.SHA384
		case "sha256":
			alg = digest.SHA256
		default:
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", fmt.Errorf("decoding integrity %q: %w", field, err)
		}
		d := digest.NewDigestFromEncoded(alg, hex.EncodeToString(raw))
		if err := d.Validate(); err != nil {
			return "", fmt.Errorf("invalid integrity %q: %w", field, err)
		}
		if best == "" || rank(alg) > rank(best.Algorithm()) {
			best = d
		}
	}
	return best, nil
}

func rank(alg digest.Algorithm) int {
	switch alg {
	case digest.SHA512:
		return 3
	case digest.SHA384:
		return 2
	case digest.SHA256:
		return 1
	}
	return 0
}

func verifyDigest(path string, d digest.Digest) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive for integrity check: %w", err)
	}
	defer f.Close()

	v := d.Verifier()
	if _, err := io.Copy(v, f); err != nil {
		return fmt.Errorf("computing %s: %w", d.Algorithm(), err)
	}
	if !v.Verified() {
		return fmt.Errorf("%w: expected %s", ErrIntegrityMismatch, d)
	}
	return nil
}

func verifySHA1(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive for checksum: %w", err)
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("computing checksum: %w", err)
	}
	if actual := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(actual, expected) {
		return fmt.Errorf("%w: expected sha1 %s, got %s", ErrIntegrityMismatch, expected, actual)
	}
	return nil
}
