package learning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"proof-of-learning-go/internal/model"

	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidModule       = errors.New("invalid module index")
	ErrCourseNotStarted    = errors.New("course not started")
	ErrCourseNotCompleted  = errors.New("course not completed")
	ErrAlreadyCertified    = errors.New("certificate already issued for course")
	ErrOperationInProgress = errors.New("operation already in progress for course")
	ErrLedgerCall          = errors.New("ledger call failed")
)

const (
	mintedStep        = "Certificate minted successfully!"
	mintedStepTimeout = 2 * time.Second
)

// Ledger is the part of the ledger adapter the Store drives.
type Ledger interface {
	Connected() bool
	Address() string
	StartLearning(ctx context.Context, courseID string) string
	CompleteModule(ctx context.Context, progressObjectID string, moduleID uint8) bool
	Err() string
}

type Options struct {
	// Ledger enables on-chain progress records when Blockchain is set.
	Ledger     Ledger
	Blockchain bool

	// Issuer mints certificates. Fallback is used when Issuer reports
	// ErrIssuerUnavailable.
	Issuer   CertificateIssuer
	Fallback CertificateIssuer

	Clock Clock
}

type Status struct {
	Loading     bool   `json:"loading"`
	MintingStep string `json:"minting_step"`
	Error       string `json:"error,omitempty"`
}

// Store holds one session's learning progress and certificates in memory.
// It is safe for concurrent use; ledger calls run without holding the lock.
type Store struct {
	ledger     Ledger
	blockchain bool
	issuer     CertificateIssuer
	fallback   CertificateIssuer
	clock      Clock

	mu           sync.Mutex
	progress     map[string]*model.LearningProgress
	certificates []model.Certificate
	busy         map[string]bool
	loading      int
	mintingStep  string
	stepSeq      int
	lastErr      string
}

func NewStore(opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Issuer == nil {
		opts.Issuer = NewSimulatedIssuer(opts.Clock, nil)
	}
	return &Store{
		ledger:     opts.Ledger,
		blockchain: opts.Blockchain && opts.Ledger != nil,
		issuer:     opts.Issuer,
		fallback:   opts.Fallback,
		clock:      opts.Clock,
		progress:   make(map[string]*model.LearningProgress),
		busy:       make(map[string]bool),
	}
}

// acquire marks the course busy. Must be called with s.mu held.
func (s *Store) acquire(courseID string) error {
	if s.busy[courseID] {
		return ErrOperationInProgress
	}
	s.busy[courseID] = true
	s.loading++
	return nil
}

// release must be called with s.mu held.
func (s *Store) release(courseID string) {
	delete(s.busy, courseID)
	s.loading--
}

// StartCourse creates the progress entry for a course if none exists. In
// blockchain mode with a connected wallet the entry is linked to a new
// on-chain progress object; a failed ledger call leaves the link empty.
func (s *Store) StartCourse(ctx context.Context, courseID string) (model.LearningProgress, error) {
	s.mu.Lock()
	if p, ok := s.progress[courseID]; ok {
		defer s.mu.Unlock()
		return *p, nil
	}

	useLedger := s.blockchain && s.ledger.Connected()
	if err := s.acquire(courseID); err != nil {
		s.mu.Unlock()
		return model.LearningProgress{}, err
	}
	s.lastErr = ""
	s.mu.Unlock()

	var objectID string
	if useLedger {
		objectID = s.ledger.StartLearning(ctx, courseID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.release(courseID)

	if useLedger && objectID == "" {
		if msg := s.ledger.Err(); msg != "" {
			s.lastErr = msg
		}
	}

	p := &model.LearningProgress{
		CourseID:         courseID,
		StartedAt:        s.clock.Now(),
		ProgressObjectID: objectID,
	}
	s.progress[courseID] = p

	log.WithFields(log.Fields{"course": courseID, "object": objectID}).Println("course started")

	return *p, nil
}

// CompleteModule marks module index (0-based) of a started course. Courses
// without a progress entry are left untouched. With an on-chain progress
// object the ledger must confirm the call before local state changes.
func (s *Store) CompleteModule(ctx context.Context, courseID string, index int) error {
	if index < 0 || index >= model.ModuleCount {
		return fmt.Errorf("%w: %d", ErrInvalidModule, index)
	}

	s.mu.Lock()
	p, ok := s.progress[courseID]
	if !ok {
		s.mu.Unlock()
		return nil
	}

	if objectID := p.ProgressObjectID; objectID != "" && s.ledger != nil {
		if err := s.acquire(courseID); err != nil {
			s.mu.Unlock()
			return err
		}
		s.lastErr = ""
		s.mu.Unlock()

		confirmed := s.ledger.CompleteModule(ctx, objectID, uint8(index+1))

		s.mu.Lock()
		s.release(courseID)
		if !confirmed {
			msg := s.ledger.Err()
			s.lastErr = msg
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrLedgerCall, msg)
		}
	}
	defer s.mu.Unlock()

	p.ModulesCompleted[index] = true
	if p.Completed() {
		if p.CompletedAt == nil {
			now := s.clock.Now()
			p.CompletedAt = &now
		}
	} else {
		p.CompletedAt = nil
	}

	return nil
}

// MintCertificateNFT issues the certificate for a completed course. At most
// one certificate exists per course.
func (s *Store) MintCertificateNFT(ctx context.Context, courseID, courseName string) (model.Certificate, error) {
	s.mu.Lock()
	p, ok := s.progress[courseID]
	switch {
	case !ok:
		s.mu.Unlock()
		return model.Certificate{}, ErrCourseNotStarted
	case p.CertificateID != "":
		s.mu.Unlock()
		return model.Certificate{}, ErrAlreadyCertified
	case !p.Completed():
		s.mu.Unlock()
		return model.Certificate{}, ErrCourseNotCompleted
	}
	if err := s.acquire(courseID); err != nil {
		s.mu.Unlock()
		return model.Certificate{}, err
	}
	s.lastErr = ""

	req := IssueRequest{
		CourseID:         courseID,
		CourseName:       courseName,
		ProgressObjectID: p.ProgressObjectID,
		Report:           s.setStep,
	}
	s.mu.Unlock()

	if s.ledger != nil {
		req.OwnerAddress = s.ledger.Address()
	}

	cert, err := s.issuer.Issue(ctx, req)
	if errors.Is(err, ErrIssuerUnavailable) && s.fallback != nil {
		cert, err = s.fallback.Issue(ctx, req)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.release(courseID)

	if err != nil {
		s.lastErr = err.Error()
		s.mintingStep = ""
		s.stepSeq++
		return model.Certificate{}, fmt.Errorf("minting certificate for %s: %w", courseID, err)
	}

	s.certificates = append(s.certificates, cert)
	p.CertificateID = cert.ID

	s.mintingStep = mintedStep
	s.stepSeq++
	seq := s.stepSeq
	s.clock.AfterFunc(mintedStepTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.stepSeq == seq {
			s.mintingStep = ""
		}
	})

	log.WithFields(log.Fields{"course": courseID, "certificate": cert.ID, "digest": cert.TransactionDigest}).Println("certificate minted")

	return cert, nil
}

func (s *Store) setStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mintingStep = step
	s.stepSeq++
}

func (s *Store) IsCourseCompleted(courseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[courseID]
	return ok && p.Completed()
}

func (s *Store) CourseProgress(courseID string) (model.LearningProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[courseID]
	if !ok {
		return model.LearningProgress{}, false
	}
	return *p, true
}

func (s *Store) Progress() map[string]model.LearningProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]model.LearningProgress, len(s.progress))
	for id, p := range s.progress {
		out[id] = *p
	}
	return out
}

// Certificates returns issued certificates in issuance order.
func (s *Store) Certificates() []model.Certificate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Certificate, len(s.certificates))
	copy(out, s.certificates)
	return out
}

func (s *Store) Certificate(courseID string) (model.Certificate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.certificates {
		if c.CourseID == courseID {
			return c, true
		}
	}
	return model.Certificate{}, false
}

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Loading:     s.loading > 0,
		MintingStep: s.mintingStep,
		Error:       s.lastErr,
	}
}

func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}
