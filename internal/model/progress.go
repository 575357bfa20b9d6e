package model

import "time"

// ModuleCount is fixed by the on-chain LearningProgress struct.
const ModuleCount = 4

type LearningProgress struct {
	CourseID         string            `json:"course_id"`
	ModulesCompleted [ModuleCount]bool `json:"modules_completed"`
	StartedAt        time.Time         `json:"started_at"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
	ProgressObjectID string            `json:"progress_object_id,omitempty"`
	CertificateID    string            `json:"certificate_id,omitempty"`
}

// Completed reports whether every module flag is set.
func (p LearningProgress) Completed() bool {
	for _, done := range p.ModulesCompleted {
		if !done {
			return false
		}
	}
	return true
}

func (p LearningProgress) CompletedCount() int {
	n := 0
	for _, done := range p.ModulesCompleted {
		if done {
			n++
		}
	}
	return n
}

// ProgressObject is a LearningProgress record as stored on the ledger.
type ProgressObject struct {
	ObjectID         string            `json:"object_id"`
	CourseID         string            `json:"course_id"`
	ModulesCompleted [ModuleCount]bool `json:"modules_completed"`
}
