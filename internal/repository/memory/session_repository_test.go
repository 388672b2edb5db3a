package memory

import (
	"prompt-builder-bot/pkg/store"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository() *SessionRepository {
	r := NewSessionRepository(time.Hour, time.Hour)
	r.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestSessionRepository_GetCreatesLazily(t *testing.T) {
	r := newTestRepository()
	assert.False(t, r.Exists("u1"))

	s := r.Get("u1")

	require.NotNil(t, s)
	assert.True(t, r.Exists("u1"))
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, r.now(), s.CreatedAt)
	assert.Empty(t, s.Answers)
	assert.Equal(t, store.StateAwaitingTaskDescription, r.State("u1").Name())
	assert.Same(t, s, r.Get("u1"))
}

func TestSessionRepository_AddAnswerReplacesInPlace(t *testing.T) {
	r := newTestRepository()
	r.AddAnswer("u1", "Q1?", "a")
	r.AddAnswer("u1", "Q2?", "b")
	r.AddAnswer("u1", "Q1?", "c")

	assert.Equal(t, []store.Answer{
		{Question: "Q1?", Answer: "c"},
		{Question: "Q2?", Answer: "b"},
	}, r.Get("u1").Answers)
}

func TestSessionRepository_SetQuestionsStartsNewRound(t *testing.T) {
	r := newTestRepository()
	r.SetQuestions("u1", []string{"Q1?"})
	r.AddAnswer("u1", "Q1?", "a")
	r.SetRecommendations("u1", store.Recommendation{TechStack: "Go"})

	r.SetQuestions("u1", []string{"New?"})

	s := r.Get("u1")
	assert.Equal(t, []string{"New?"}, s.ClarificationQuestions)
	assert.Empty(t, s.Answers)
	assert.True(t, s.Recommendations.IsZero())
}

func TestSessionRepository_DocumentEdits(t *testing.T) {
	r := newTestRepository()

	r.SetDocument("u1", "# TASK\nv1")
	assert.Equal(t, 0, r.Get("u1").EditedCount)

	r.ReplaceDocument("u1", "# TASK\nv2")
	r.ReplaceDocument("u1", "# TASK\nv3")

	s := r.Get("u1")
	assert.Equal(t, "# TASK\nv3", s.CurrentPrompt)
	assert.Equal(t, 2, s.EditedCount)

	at := r.MarkSaved("u1")
	require.NotNil(t, s.SavedAt)
	assert.Equal(t, at, *s.SavedAt)
}

func TestSessionRepository_ClearRemovesSessionAndState(t *testing.T) {
	r := newTestRepository()
	r.SetTaskDescription("u1", "Build a todo API")
	r.SetState("u1", store.PromptGenerated{})
	r.SetTaskDescription("u2", "Other user")

	r.Clear("u1")

	assert.False(t, r.Exists("u1"))
	assert.Equal(t, "", r.Get("u1").TaskDescription)
	assert.Equal(t, store.StateAwaitingTaskDescription, r.State("u1").Name())
	assert.Equal(t, "Other user", r.Get("u2").TaskDescription)
}

func TestSessionRepository_IdleSessionsExpire(t *testing.T) {
	r := NewSessionRepository(50*time.Millisecond, 10*time.Millisecond)
	r.SetTaskDescription("u1", "Build a todo API")
	unlock := r.Lock("u1")
	unlock()

	assert.Eventually(t, func() bool { return !r.Exists("u1") }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		_, ok := r.locks["u1"]
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestSessionRepository_AccessRefreshesTimeout(t *testing.T) {
	r := NewSessionRepository(150*time.Millisecond, 10*time.Millisecond)
	r.SetTaskDescription("u1", "Build a todo API")

	for i := 0; i < 5; i++ {
		time.Sleep(50 * time.Millisecond)
		r.Get("u1")
	}

	assert.True(t, r.Exists("u1"))
}

func TestSessionRepository_LockSerializesUser(t *testing.T) {
	r := newTestRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := r.Lock("u1")
			defer unlock()
			s := r.Get("u1")
			s.EditedCount++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.Get("u1").EditedCount)
}

func TestSessionRepository_ClearWhileLockedKeepsLock(t *testing.T) {
	r := newTestRepository()
	unlock := r.Lock("u1")
	r.Get("u1")
	r.Clear("u1")

	r.mu.Lock()
	_, ok := r.locks["u1"]
	r.mu.Unlock()
	assert.True(t, ok)
	unlock()
}

func TestSessionRepository_EvictionKeepsLockOfWaitingEvent(t *testing.T) {
	r := newTestRepository()
	unlock := r.Lock("u1")

	acquired := make(chan func())
	go func() { acquired <- r.Lock("u1") }()

	refs := func() int {
		r.mu.Lock()
		defer r.mu.Unlock()
		if l, ok := r.locks["u1"]; ok {
			return l.refs
		}
		return 0
	}
	require.Eventually(t, func() bool { return refs() == 2 }, time.Second, time.Millisecond)

	r.dropLock("u1", nil)
	assert.Equal(t, 2, refs())

	third := make(chan func())
	go func() { third <- r.Lock("u1") }()
	require.Eventually(t, func() bool { return refs() == 3 }, time.Second, time.Millisecond)

	unlock()
	var (
		release func()
		other   chan func()
	)
	select {
	case release = <-acquired:
		other = third
	case release = <-third:
		other = acquired
	}
	select {
	case <-other:
		t.Fatal("two events held the lock of one user")
	case <-time.After(20 * time.Millisecond):
	}
	release()
	(<-other)()

	assert.Equal(t, 0, refs())
}
