package learning

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"proof-of-learning-go/internal/model"

	"golang.org/x/crypto/blake2b"
)

type mintStep struct {
	label string
	delay time.Duration
}

var simulatedSteps = []mintStep{
	{"Preparing transaction...", 800 * time.Millisecond},
	{"Waiting for wallet signature...", 1000 * time.Millisecond},
	{"Broadcasting to IOTA network...", 1200 * time.Millisecond},
	{"Confirming transaction...", 800 * time.Millisecond},
}

// SimulatedIssuer produces a local placeholder certificate after delays that
// mimic a wallet round trip. Nothing is sent to the ledger.
type SimulatedIssuer struct {
	clock Clock
	rand  io.Reader
}

func NewSimulatedIssuer(clock Clock, r io.Reader) *SimulatedIssuer {
	if clock == nil {
		clock = SystemClock{}
	}
	if r == nil {
		r = rand.Reader
	}
	return &SimulatedIssuer{clock: clock, rand: r}
}

func (s *SimulatedIssuer) Issue(ctx context.Context, req IssueRequest) (model.Certificate, error) {
	for _, step := range simulatedSteps {
		if req.Report != nil {
			req.Report(step.label)
		}
		if err := s.clock.Sleep(ctx, step.delay); err != nil {
			return model.Certificate{}, fmt.Errorf("simulating mint: %w", err)
		}
	}

	digest, err := randomString(s.rand, alphanumeric, 44)
	if err != nil {
		return model.Certificate{}, err
	}

	objectID, err := s.objectID(req.CourseID)
	if err != nil {
		return model.Certificate{}, err
	}

	id, err := newCertificateID(s.clock, s.rand)
	if err != nil {
		return model.Certificate{}, err
	}

	return model.Certificate{
		ID:                id,
		CourseID:          req.CourseID,
		CourseName:        req.CourseName,
		IssuedAt:          s.clock.Now(),
		TransactionDigest: digest,
		ObjectID:          objectID,
		OwnerAddress:      req.OwnerAddress,
	}, nil
}

// objectID returns a ledger shaped 32 byte hex id.
func (s *SimulatedIssuer) objectID(courseID string) (string, error) {
	seed := make([]byte, 32)
	if _, err := io.ReadFull(s.rand, seed); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	sum := blake2b.Sum256(append(seed, courseID...))
	return "0x" + hex.EncodeToString(sum[:]), nil
}
