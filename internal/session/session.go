// Package session keeps the website's login state server-side. The browser only holds
// an opaque session id; the backend bearer token stays sealed in the session database.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/nacl/secretbox"

	"clubweb/internal/models"
)

var (
	ErrNoSession = errors.New("session: not found")
	ErrExpired   = errors.New("session: expired")
)

type Session struct {
	ID        string
	Token     string
	Role      models.Role
	Name      string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) IsOfficer() bool { return s.Role == models.RoleOfficer }

type EventKind int

const (
	EventLogin EventKind = iota + 1
	EventLogout
)

func (k EventKind) String() string {
	switch k {
	case EventLogin:
		return "login"
	case EventLogout:
		return "logout"
	}
	return "unknown"
}

type Event struct {
	Kind    EventKind
	Session Session
}

// Login carries what the backend returned for a successful sign-in.
type Login struct {
	Token string
	Name  string
	Email string
	Role  models.Role
}

type Store struct {
	db  *sql.DB
	key [32]byte
	ttl time.Duration
	now func() time.Time

	mu          sync.RWMutex
	subscribers []func(Event)
}

// NewStore returns a store sealing tokens with a key derived from secret. ttl bounds
// sessions whose token carries no expiry of its own.
func NewStore(db *sql.DB, secret string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		db:  db,
		key: sha256.Sum256([]byte(secret)),
		ttl: ttl,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe registers fn for login and logout transitions. fn runs synchronously on
// the goroutine that performed the transition.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) publish(ev Event) {
	s.mu.RLock()
	subs := s.subscribers
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// Login opens a session for l. Role and expiry fall back to the token's claims when
// the backend response did not carry them.
func (s *Store) Login(ctx context.Context, l Login) (Session, error) {
	if l.Token == "" {
		return Session{}, errors.New("session: empty token")
	}
	now := s.now()
	sess := Session{
		ID:        uuid.NewString(),
		Token:     l.Token,
		Role:      l.Role,
		Name:      l.Name,
		Email:     l.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if c, ok := ReadClaims(l.Token); ok {
		if sess.Role == "" && c.Role != "" {
			sess.Role = models.ParseRole(c.Role)
		}
		if sess.Name == "" {
			sess.Name = c.Name
		}
		if !c.ExpiresAt.IsZero() {
			if !c.ExpiresAt.After(now) {
				return Session{}, ErrExpired
			}
			sess.ExpiresAt = c.ExpiresAt.UTC()
		}
	}
	if sess.Role == "" {
		sess.Role = models.RoleMember
	}

	sealed, err := s.seal(l.Token)
	if err != nil {
		return Session{}, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO sessions (id, sealed_token, role, user_name, user_email, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sealed, string(sess.Role), sess.Name, sess.Email, sess.CreatedAt, sess.ExpiresAt); err != nil {
		return Session{}, err
	}
	s.publish(Event{Kind: EventLogin, Session: sess})
	return sess, nil
}

// Get loads a live session. Revoked and unknown ids report ErrNoSession.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrNoSession
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, sealed_token, role, user_name, user_email, created_at, expires_at, revoked_at FROM sessions WHERE id = ?`, id)
	var (
		sess    Session
		sealed  []byte
		role    string
		revoked sql.NullTime
	)
	if err := row.Scan(&sess.ID, &sealed, &role, &sess.Name, &sess.Email, &sess.CreatedAt, &sess.ExpiresAt, &revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}
	if revoked.Valid {
		return Session{}, ErrNoSession
	}
	if !sess.ExpiresAt.After(s.now()) {
		return Session{}, ErrExpired
	}
	token, err := s.open(sealed)
	if err != nil {
		// sealed under another secret
		return Session{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	sess.Token = token
	sess.Role = models.ParseRole(role)
	return sess, nil
}

// Logout revokes the session. Logging out twice is not an error.
func (s *Store) Logout(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNoSession) || errors.Is(err, ErrExpired) {
			return nil
		}
		return err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE sessions SET revoked_at = ? WHERE id = ?`, s.now(), id); err != nil {
		return err
	}
	s.publish(Event{Kind: EventLogout, Session: sess})
	return nil
}

// PurgeExpired deletes sessions that can no longer be used.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ? OR revoked_at IS NOT NULL`, s.now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) seal(token string) ([]byte, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key), nil
}

func (s *Store) open(sealed []byte) (string, error) {
	if len(sealed) < 24 {
		return "", fmt.Errorf("session: sealed token too short")
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, &s.key)
	if !ok {
		return "", fmt.Errorf("session: token does not open with the current secret")
	}
	return string(plain), nil
}
