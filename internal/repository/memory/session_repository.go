package memory

import (
	"prompt-builder-bot/pkg/store"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultSessionTimeout  = 1 * time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// entry is what the cache holds per user: the session and its dialogue state
type entry struct {
	session *store.Session
	state   store.State
}

// SessionRepository keeps one session per user in memory. Every access
// refreshes the idle timeout; idle sessions are dropped by the cache janitor.
type SessionRepository struct {
	cache *cache.Cache
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*userLock
}

func NewSessionRepository(timeout, cleanupInterval time.Duration) *SessionRepository {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	r := &SessionRepository{
		cache: cache.New(timeout, cleanupInterval),
		now:   time.Now,
		locks: make(map[string]*userLock),
	}
	r.cache.OnEvicted(r.dropLock)
	return r
}

// userLock is the event lock of one user. refs counts the events holding or
// waiting for it, guarded by SessionRepository.mu.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// Lock serializes the events of one user. The returned func releases it.
func (r *SessionRepository) Lock(userID string) func() {
	r.mu.Lock()
	l, ok := r.locks[userID]
	if !ok {
		l = &userLock{}
		r.locks[userID] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		r.mu.Lock()
		l.refs--
		r.mu.Unlock()
	}
}

// dropLock forgets the lock of an evicted session unless an event holds or
// waits for it
func (r *SessionRepository) dropLock(userID string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.locks[userID]; ok && l.refs == 0 {
		delete(r.locks, userID)
	}
}

func (r *SessionRepository) load(userID string) *entry {
	if x, found := r.cache.Get(userID); found {
		e := x.(*entry)
		r.cache.Set(userID, e, cache.DefaultExpiration)
		return e
	}

	e := &entry{
		session: store.NewSession(userID, r.now()),
		state:   store.InitialState(),
	}
	r.cache.Set(userID, e, cache.DefaultExpiration)
	return e
}

// Get returns the session of userID, creating an empty one on first use
func (r *SessionRepository) Get(userID string) *store.Session {
	return r.load(userID).session
}

// Exists reports whether userID currently has a session
func (r *SessionRepository) Exists(userID string) bool {
	_, found := r.cache.Get(userID)
	return found
}

func (r *SessionRepository) SetTaskDescription(userID, description string) {
	r.load(userID).session.TaskDescription = description
}

// SetQuestions starts a new question round: answers and recommendations of
// the previous round are discarded.
func (r *SessionRepository) SetQuestions(userID string, questions []string) {
	s := r.load(userID).session
	s.ClarificationQuestions = append([]string{}, questions...)
	s.Answers = []store.Answer{}
	s.Recommendations = store.Recommendation{}
}

// AddAnswer records the answer to question. Answering the same question again
// replaces the earlier answer in place.
func (r *SessionRepository) AddAnswer(userID, question, answer string) {
	s := r.load(userID).session
	for i := range s.Answers {
		if s.Answers[i].Question == question {
			s.Answers[i].Answer = answer
			return
		}
	}
	s.Answers = append(s.Answers, store.Answer{Question: question, Answer: answer})
}

func (r *SessionRepository) SetRecommendations(userID string, rec store.Recommendation) {
	r.load(userID).session.Recommendations = rec
}

// SetDocument stores a freshly generated document
func (r *SessionRepository) SetDocument(userID, doc string) {
	r.load(userID).session.CurrentPrompt = doc
}

// ReplaceDocument stores an edited document and counts the edit
func (r *SessionRepository) ReplaceDocument(userID, doc string) {
	s := r.load(userID).session
	s.CurrentPrompt = doc
	s.EditedCount++
}

// MarkSaved stamps the save time and returns it
func (r *SessionRepository) MarkSaved(userID string) time.Time {
	at := r.now()
	r.load(userID).session.SavedAt = &at
	return at
}

func (r *SessionRepository) State(userID string) store.State {
	return r.load(userID).state
}

func (r *SessionRepository) SetState(userID string, state store.State) {
	r.load(userID).state = state
}

// Clear removes the session and its state
func (r *SessionRepository) Clear(userID string) {
	r.cache.Delete(userID)
}
