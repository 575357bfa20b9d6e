package model

import "time"

type Certificate struct {
	ID                string    `json:"id"`
	CourseID          string    `json:"course_id"`
	CourseName        string    `json:"course_name"`
	IssuedAt          time.Time `json:"issued_at"`
	TransactionDigest string    `json:"transaction_digest,omitempty"`
	ObjectID          string    `json:"object_id,omitempty"`
	OwnerAddress      string    `json:"owner_address,omitempty"`
}

// OnChainCertificate is a CourseCertificate record as stored on the ledger.
type OnChainCertificate struct {
	ObjectID   string `json:"object_id"`
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	IssuedAt   int64  `json:"issued_at"`
	ImageURL   string `json:"image_url"`
}

type MintResult struct {
	TransactionDigest string `json:"transaction_digest"`
	ObjectID          string `json:"object_id"`
	OwnerAddress      string `json:"owner_address"`
}
