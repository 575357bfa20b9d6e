package learning

import (
	"context"
	"errors"
	"fmt"

	"proof-of-learning-go/internal/model"
)

var ErrMintFailed = errors.New("minting certificate failed")

// Minter is the part of the ledger adapter the LedgerIssuer needs.
type Minter interface {
	Connected() bool
	MintCertificate(ctx context.Context, progressObjectID, courseName, imageURL string) *model.MintResult
	Err() string
}

// LedgerIssuer mints the certificate as an NFT through the connected wallet.
type LedgerIssuer struct {
	minter   Minter
	imageURL string
	clock    Clock
}

func NewLedgerIssuer(minter Minter, imageURL string, clock Clock) *LedgerIssuer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &LedgerIssuer{minter: minter, imageURL: imageURL, clock: clock}
}

func (l *LedgerIssuer) Issue(ctx context.Context, req IssueRequest) (model.Certificate, error) {
	if !l.minter.Connected() || req.ProgressObjectID == "" {
		return model.Certificate{}, ErrIssuerUnavailable
	}

	if req.Report != nil {
		req.Report("Waiting for wallet signature...")
	}

	result := l.minter.MintCertificate(ctx, req.ProgressObjectID, req.CourseName, l.imageURL)
	if result == nil {
		return model.Certificate{}, fmt.Errorf("%w: %s", ErrMintFailed, l.minter.Err())
	}

	id := result.ObjectID
	if id == "" {
		var err error
		if id, err = newCertificateID(l.clock, nil); err != nil {
			return model.Certificate{}, err
		}
	}

	return model.Certificate{
		ID:                id,
		CourseID:          req.CourseID,
		CourseName:        req.CourseName,
		IssuedAt:          l.clock.Now(),
		TransactionDigest: result.TransactionDigest,
		ObjectID:          result.ObjectID,
		OwnerAddress:      result.OwnerAddress,
	}, nil
}
