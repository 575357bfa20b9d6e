package learning

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"proof-of-learning-go/internal/model"
)

// ErrIssuerUnavailable is returned by an issuer that cannot serve a request,
// e.g. the ledger issuer without a wallet or an on-chain progress object.
var ErrIssuerUnavailable = errors.New("certificate issuer unavailable")

type IssueRequest struct {
	CourseID         string
	CourseName       string
	ProgressObjectID string
	OwnerAddress     string

	// Report receives human readable minting steps. Never nil when set by the Store.
	Report func(step string)
}

// CertificateIssuer mints a certificate for a completed course.
type CertificateIssuer interface {
	Issue(ctx context.Context, req IssueRequest) (model.Certificate, error)
}

const (
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	base36       = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// randomString draws n characters uniformly from alphabet.
func randomString(r io.Reader, alphabet string, n int) (string, error) {
	limit := 256 - 256%len(alphabet)
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

func newCertificateID(clock Clock, r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	suffix, err := randomString(r, base36, 9)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("cert-%d-%s", clock.Now().UnixMilli(), suffix), nil
}
