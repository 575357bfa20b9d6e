package ledger

import (
	"context"
	"strings"
	"sync"

	"proof-of-learning-go/internal/model"

	log "github.com/sirupsen/logrus"
)

// Adapter turns learning intents into Move calls on the proof of learning
// package. Mutating calls never return errors: a failure is logged, kept as
// the adapter's last error message and reported as an absent result.
type Adapter struct {
	client Client
	cfg    Config

	mu       sync.Mutex
	wallet   Wallet
	inflight int
	lastErr  string
}

func NewAdapter(client Client, cfg Config) *Adapter {
	return &Adapter{client: client, cfg: cfg}
}

func (a *Adapter) Config() Config {
	return a.cfg
}

// Connect binds the wallet used to sign every following call.
func (a *Adapter) Connect(w Wallet) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.wallet = w
}

func (a *Adapter) Disconnect() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.wallet = nil
}

func (a *Adapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.wallet != nil
}

// Address returns the connected wallet address or "".
func (a *Adapter) Address() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.wallet == nil {
		return ""
	}
	return a.wallet.Address()
}

func (a *Adapter) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inflight > 0
}

func (a *Adapter) Err() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *Adapter) ClearError() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastErr = ""
}

func (a *Adapter) begin() (Wallet, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.wallet == nil {
		a.lastErr = ErrWalletNotConnected.Error()
		return nil, false
	}
	a.inflight++
	a.lastErr = ""
	return a.wallet, true
}

func (a *Adapter) end() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inflight--
}

func (a *Adapter) fail(fallback string, err error) {
	log.WithError(err).Error(fallback)

	msg := err.Error()
	if msg == "" {
		msg = fallback
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastErr = msg
}

func (a *Adapter) execute(ctx context.Context, w Wallet, tx *Transaction) (string, error) {
	digest, err := w.SignAndExecute(ctx, tx)
	if err != nil {
		return "", err
	}
	if err := a.client.WaitForTransaction(ctx, digest); err != nil {
		return "", err
	}
	return digest, nil
}

func (a *Adapter) createdObject(ctx context.Context, digest, structName string) (string, error) {
	block, err := a.client.GetTransactionBlock(ctx, digest, TransactionBlockOptions{ShowObjectChanges: true})
	if err != nil {
		return "", err
	}
	for _, change := range block.ObjectChanges {
		if change.Type == "created" && strings.Contains(change.ObjectType, structName) && change.ObjectID != "" {
			return change.ObjectID, nil
		}
	}
	return "", nil
}

// StartLearning creates a LearningProgress object for the course and returns
// its id, or "" when no wallet is connected, the call fails or no object was created.
func (a *Adapter) StartLearning(ctx context.Context, courseID string) string {
	w, ok := a.begin()
	if !ok {
		return ""
	}
	defer a.end()

	tx := NewTransaction()
	tx.MoveCall(a.cfg.Target("start_learning_entry"), PureString(courseID))

	digest, err := a.execute(ctx, w, tx)
	if err != nil {
		a.fail("Failed to start learning", err)
		return ""
	}

	objectID, err := a.createdObject(ctx, digest, LearningProgressStruct)
	if err != nil {
		a.fail("Failed to start learning", err)
		return ""
	}
	if objectID == "" {
		log.WithField("digest", digest).Printf("no %s object created for course %s", LearningProgressStruct, courseID)
	}

	return objectID
}

// CompleteModule marks moduleID on the progress object and reports whether
// the transaction was confirmed.
func (a *Adapter) CompleteModule(ctx context.Context, progressObjectID string, moduleID uint8) bool {
	w, ok := a.begin()
	if !ok {
		return false
	}
	defer a.end()

	tx := NewTransaction()
	tx.MoveCall(a.cfg.Target("complete_module"), Object(progressObjectID), PureU8(moduleID))

	if _, err := a.execute(ctx, w, tx); err != nil {
		a.fail("Failed to complete module", err)
		return false
	}

	return true
}

// MintCertificate mints a CourseCertificate for a completed progress object.
// A confirmed transaction without a created certificate yields a result with
// an empty ObjectID.
func (a *Adapter) MintCertificate(ctx context.Context, progressObjectID, courseName, imageURL string) *model.MintResult {
	w, ok := a.begin()
	if !ok {
		return nil
	}
	defer a.end()

	tx := NewTransaction()
	tx.MoveCall(a.cfg.Target("mint_certificate"),
		Object(progressObjectID),
		PureString(courseName),
		PureString(imageURL),
	)

	digest, err := a.execute(ctx, w, tx)
	if err != nil {
		a.fail("Failed to mint certificate", err)
		return nil
	}

	objectID, err := a.createdObject(ctx, digest, CourseCertificateStruct)
	if err != nil {
		a.fail("Failed to mint certificate", err)
		return nil
	}

	return &model.MintResult{
		TransactionDigest: digest,
		ObjectID:          objectID,
		OwnerAddress:      w.Address(),
	}
}

func (a *Adapter) ownedObjects(ctx context.Context, structName string) ([]ObjectResponse, error) {
	owner := a.Address()
	query := OwnedObjectsQuery{
		Filter:  ObjectFilter{StructType: a.cfg.StructType(structName)},
		Options: ObjectDataOptions{ShowContent: true},
	}

	var objects []ObjectResponse
	cursor := ""
	for {
		page, err := a.client.GetOwnedObjects(ctx, owner, query, cursor)
		if err != nil {
			return nil, err
		}
		objects = append(objects, page.Data...)

		if !page.HasNextPage || page.NextCursor == nil || *page.NextCursor == "" || *page.NextCursor == cursor {
			return objects, nil
		}
		cursor = *page.NextCursor
	}
}

// UserProgress lists the LearningProgress objects owned by the connected wallet.
func (a *Adapter) UserProgress(ctx context.Context) []model.ProgressObject {
	if !a.Connected() {
		return nil
	}

	objects, err := a.ownedObjects(ctx, LearningProgressStruct)
	if err != nil {
		log.WithError(err).Error("Failed to get user progress")
		return nil
	}

	progress := make([]model.ProgressObject, 0, len(objects))
	for _, obj := range objects {
		var p model.ProgressObject
		if obj.Data == nil {
			progress = append(progress, p)
			continue
		}
		p.ObjectID = obj.Data.ObjectID
		if obj.Data.Content != nil && obj.Data.Content.Fields != nil {
			fields := obj.Data.Content.Fields
			p.CourseID = fieldString(fields, "course_id")
			p.ModulesCompleted = [model.ModuleCount]bool{
				fieldBool(fields, "module_1_completed"),
				fieldBool(fields, "module_2_completed"),
				fieldBool(fields, "module_3_completed"),
				fieldBool(fields, "module_4_completed"),
			}
		}
		progress = append(progress, p)
	}

	return progress
}

// UserCertificates lists the CourseCertificate objects owned by the connected
// wallet. Objects without content are skipped.
func (a *Adapter) UserCertificates(ctx context.Context) []model.OnChainCertificate {
	if !a.Connected() {
		return nil
	}

	objects, err := a.ownedObjects(ctx, CourseCertificateStruct)
	if err != nil {
		log.WithError(err).Error("Failed to get certificates")
		return nil
	}

	certificates := make([]model.OnChainCertificate, 0, len(objects))
	for _, obj := range objects {
		if obj.Data == nil || obj.Data.Content == nil || obj.Data.Content.Fields == nil {
			continue
		}
		fields := obj.Data.Content.Fields
		certificates = append(certificates, model.OnChainCertificate{
			ObjectID:   obj.Data.ObjectID,
			CourseID:   fieldString(fields, "course_id"),
			CourseName: fieldString(fields, "course_name"),
			IssuedAt:   fieldInt64(fields, "issued_at"),
			ImageURL:   fieldString(fields, "image_url"),
		})
	}

	return certificates
}
