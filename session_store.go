package identity

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL bounds server-side sessions.
const DefaultSessionTTL = 24 * time.Hour

// SessionRecord is a server-side session entry keyed by an opaque id.
type SessionRecord struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore persists server-side sessions. Find returns (nil, nil) for
// unknown or expired ids; Delete is idempotent.
type SessionStore interface {
	Save(ctx context.Context, record SessionRecord) error
	Find(ctx context.Context, sessionID string) (*SessionRecord, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionStore keeps sessions in redis, expiry delegated to key TTLs.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionStore creates a redis-backed session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		prefix: "identity:session:",
	}
}

func (r *RedisSessionStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisSessionStore) Save(ctx context.Context, record SessionRecord) error {
	if record.SessionID == "" || record.UserID == "" {
		return goerrors.New("session record is missing session_id or user_id", goerrors.CategoryBadInput)
	}

	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return goerrors.New("session record expires_at must be in the future", goerrors.CategoryBadInput)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to marshal session record")
	}

	if err := r.client.Set(ctx, r.key(record.SessionID), data, ttl).Err(); err != nil {
		return transientError(err, "failed to save session record")
	}
	return nil
}

func (r *RedisSessionStore) Find(ctx context.Context, sessionID string) (*SessionRecord, error) {
	val, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, transientError(err, "failed to load session record")
	}

	record := &SessionRecord{}
	if err := json.Unmarshal([]byte(val), record); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unmarshal session record")
	}
	return record, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return transientError(err, "failed to delete session record")
	}
	return nil
}

// MemorySessionStore is an in-process SessionStore for embedded hosts
// and tests.
type MemorySessionStore struct {
	mu      sync.RWMutex
	records map[string]SessionRecord
}

// NewMemorySessionStore creates an empty in-process session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{records: map[string]SessionRecord{}}
}

func (m *MemorySessionStore) Save(ctx context.Context, record SessionRecord) error {
	if record.SessionID == "" || record.UserID == "" {
		return goerrors.New("session record is missing session_id or user_id", goerrors.CategoryBadInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.SessionID] = record
	return nil
}

func (m *MemorySessionStore) Find(ctx context.Context, sessionID string) (*SessionRecord, error) {
	m.mu.RLock()
	record, ok := m.records[sessionID]
	m.mu.RUnlock()
	if !ok || time.Now().After(record.ExpiresAt) {
		return nil, nil
	}
	return &record, nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, sessionID)
	return nil
}

var (
	_ SessionStore = (*RedisSessionStore)(nil)
	_ SessionStore = (*MemorySessionStore)(nil)
)

// StoreSession is a UserSession resolved through a SessionStore by an
// opaque session id, the id typically travelling in a cookie or header.
// A zero SessionID means the caller presented no session; SetUser mints one.
type StoreSession struct {
	store SessionStore
	ttl   time.Duration

	mu        sync.Mutex
	sessionID string
}

// NewStoreSession wraps a SessionStore and the caller-presented session id
// (empty for anonymous callers) into a UserSession.
func NewStoreSession(store SessionStore, sessionID string) *StoreSession {
	return &StoreSession{
		store:     store,
		ttl:       DefaultSessionTTL,
		sessionID: sessionID,
	}
}

// WithTTL overrides the session lifetime used by SetUser.
func (s *StoreSession) WithTTL(ttl time.Duration) *StoreSession {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// SessionID returns the current opaque id, empty while anonymous. Transports
// send it back to the client after SetUser.
func (s *StoreSession) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *StoreSession) GetUser(ctx context.Context) (string, bool) {
	s.mu.Lock()
	id := s.sessionID
	s.mu.Unlock()

	if id == "" {
		return "", false
	}

	record, err := s.store.Find(ctx, id)
	if err != nil || record == nil {
		// A failing store reads as anonymous; the caller retries the
		// operation, not the lookup.
		return "", false
	}
	return record.UserID, true
}

func (s *StoreSession) SetUser(ctx context.Context, userID string) error {
	sessionID, err := GenerateSessionID()
	if err != nil {
		return err
	}

	record := SessionRecord{
		SessionID: sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.store.Save(ctx, record); err != nil {
		return err
	}

	s.mu.Lock()
	old := s.sessionID
	s.sessionID = sessionID
	s.mu.Unlock()

	if old != "" {
		// Old ids stop resolving once replaced.
		_ = s.store.Delete(ctx, old)
	}
	return nil
}

func (s *StoreSession) ClearUser(ctx context.Context) error {
	s.mu.Lock()
	id := s.sessionID
	s.sessionID = ""
	s.mu.Unlock()

	if id == "" {
		return nil
	}
	return s.store.Delete(ctx, id)
}

var _ UserSession = (*StoreSession)(nil)
