package session

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"proof-of-learning-go/internal/learning"
	"proof-of-learning-go/internal/ledger"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidToken      = errors.New("invalid session token")
	ErrInvalidAddress    = errors.New("invalid wallet address")
	ErrWalletUnsupported = errors.New("wallet connections are not enabled")
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Session owns the learning state of one client for its lifetime.
type Session struct {
	ID        string
	Email     string
	CreatedAt time.Time

	Store  *learning.Store
	Ledger *ledger.Adapter

	newWallet func(address string) ledger.Wallet

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// ConnectWallet binds a wallet for address to the session's ledger adapter.
func (s *Session) ConnectWallet(address string) error {
	if s.Ledger == nil || s.newWallet == nil {
		return ErrWalletUnsupported
	}
	if !addressPattern.MatchString(address) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	s.Ledger.Connect(s.newWallet(address))
	return nil
}

func (s *Session) DisconnectWallet() {
	if s.Ledger != nil {
		s.Ledger.Disconnect()
	}
}

func (s *Session) WalletAddress() string {
	if s.Ledger == nil {
		return ""
	}
	return s.Ledger.Address()
}

type Config struct {
	JWTKey string

	// NewLedger builds a ledger adapter for each session. Nil disables the ledger.
	NewLedger func() *ledger.Adapter
	NewWallet func(address string) ledger.Wallet

	// Blockchain selects the ledger certificate issuer over the simulated one.
	Blockchain    bool
	BadgeImageURL string

	Clock learning.Clock
}

type Claims struct {
	SessionID string `json:"sid"`
	jwt.StandardClaims
}

// Manager creates, finds and tears down sessions.
type Manager struct {
	cfg Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(cfg Config) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = learning.SystemClock{}
	}
	return &Manager{cfg: cfg, sessions: make(map[string]*Session)}
}

func (m *Manager) newStore(adapter *ledger.Adapter) *learning.Store {
	simulated := learning.NewSimulatedIssuer(m.cfg.Clock, nil)
	opts := learning.Options{Issuer: simulated, Clock: m.cfg.Clock}

	if adapter != nil {
		opts.Ledger = adapter
		opts.Blockchain = m.cfg.Blockchain
		if m.cfg.Blockchain {
			opts.Issuer = learning.NewLedgerIssuer(adapter, m.cfg.BadgeImageURL, m.cfg.Clock)
			opts.Fallback = simulated
		}
	}

	return learning.NewStore(opts)
}

// Create starts a session and returns it with its signed token.
func (m *Manager) Create(email string) (*Session, string, error) {
	var adapter *ledger.Adapter
	if m.cfg.NewLedger != nil {
		adapter = m.cfg.NewLedger()
	}

	now := m.cfg.Clock.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		Store:     m.newStore(adapter),
		Ledger:    adapter,
		newWallet: m.cfg.NewWallet,
		lastSeen:  now,
	}

	token, err := m.sign(s)
	if err != nil {
		return nil, "", err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.WithField("session", s.ID).Println("session created")

	return s, token, nil
}

func (m *Manager) sign(s *Session) (string, error) {
	claims := Claims{
		SessionID: s.ID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt: s.CreatedAt.Unix(),
			Subject:  s.ID,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.JWTKey))
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a token to its live session.
func (m *Manager) Authenticate(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.cfg.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return m.Get(claims.SessionID)
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(m.cfg.Clock.Now())
	return s, nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.DisconnectWallet()
		log.WithField("session", id).Println("session closed")
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap closes sessions idle for longer than maxIdle and returns how many were closed.
func (m *Manager) Reap(maxIdle time.Duration) int {
	cutoff := m.cfg.Clock.Now().Add(-maxIdle)

	m.mu.RLock()
	var idle []string
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range idle {
		m.Delete(id)
	}
	return len(idle)
}
