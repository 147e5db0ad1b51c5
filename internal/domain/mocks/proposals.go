// Package mocks provides in-memory implementations of the domain ports for tests.
package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// ProposalStore is an in-memory implementation of ports.ProposalStore.
type ProposalStore struct {
	mu          sync.Mutex
	Corrections map[string]*entities.Correction
	Submissions map[string]*entities.Submission
	Err         error
	// TransitionErr fails only the transition calls.
	TransitionErr error
	// ThreadWrites counts SetNotificationThreads calls.
	ThreadWrites int
}

// NewProposalStore creates a new mock ProposalStore.
func NewProposalStore() *ProposalStore {
	return &ProposalStore{
		Corrections: make(map[string]*entities.Correction),
		Submissions: make(map[string]*entities.Submission),
	}
}

// SaveCorrection inserts a new correction.
func (m *ProposalStore) SaveCorrection(_ context.Context, c *entities.Correction) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.Corrections[c.ID] = &cp
	return nil
}

// FindCorrection finds a correction by ID.
func (m *ProposalStore) FindCorrection(_ context.Context, id string) (*entities.Correction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Corrections[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// ListCorrections lists corrections, newest first.
func (m *ProposalStore) ListCorrections(_ context.Context, status entities.Status, limit int) ([]entities.Correction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]entities.Correction, 0, len(m.Corrections))
	for _, c := range m.Corrections {
		if status == "" || c.Status == status {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SubmittedAt.After(result[j].SubmittedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// TransitionCorrection moves a correction out of pending if it is still pending.
func (m *ProposalStore) TransitionCorrection(_ context.Context, id string, t entities.Transition) (bool, error) {
	if m.TransitionErr != nil {
		return false, m.TransitionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Corrections[id]
	if !ok || c.Status != entities.StatusPending {
		return false, nil
	}
	reviewer := t.Reviewer
	reviewedAt := t.ReviewedAt
	c.Status = t.To
	c.Reviewer = &reviewer
	c.ReviewedAt = &reviewedAt
	c.ReviewNotes = t.Notes
	if t.To == entities.StatusModified {
		c.FinalValue = t.FinalValue
	}
	return true, nil
}

// SaveSubmission inserts a new submission.
func (m *ProposalStore) SaveSubmission(_ context.Context, s *entities.Submission) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.Submissions[s.ID] = &cp
	return nil
}

// FindSubmission finds a submission by ID.
func (m *ProposalStore) FindSubmission(_ context.Context, id string) (*entities.Submission, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Submissions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// ListSubmissions lists submissions, newest first.
func (m *ProposalStore) ListSubmissions(_ context.Context, status entities.Status, limit int) ([]entities.Submission, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]entities.Submission, 0, len(m.Submissions))
	for _, s := range m.Submissions {
		if status == "" || s.Status == status {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SubmittedAt.After(result[j].SubmittedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// FindPendingSubmissionsBySlug finds pending submissions for a slug.
func (m *ProposalStore) FindPendingSubmissionsBySlug(_ context.Context, slug string) ([]entities.Submission, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entities.Submission
	for _, s := range m.Submissions {
		if s.RecordSlug == slug && s.Status == entities.StatusPending {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SubmittedAt.Before(result[j].SubmittedAt)
	})
	return result, nil
}

// TransitionSubmission moves a submission out of pending if it is still pending.
func (m *ProposalStore) TransitionSubmission(_ context.Context, id string, t entities.Transition) (bool, error) {
	if m.TransitionErr != nil {
		return false, m.TransitionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Submissions[id]
	if !ok || s.Status != entities.StatusPending {
		return false, nil
	}
	reviewer := t.Reviewer
	reviewedAt := t.ReviewedAt
	s.Status = t.To
	s.Reviewer = &reviewer
	s.ReviewedAt = &reviewedAt
	s.ReviewNotes = t.Notes
	return true, nil
}

// SetNotificationThreads replaces the thread ids of a proposal.
func (m *ProposalStore) SetNotificationThreads(_ context.Context, kind entities.ProposalKind, id string, threads []string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ThreadWrites++
	switch kind {
	case entities.KindCorrection:
		if c, ok := m.Corrections[id]; ok {
			c.NotificationThreads = append([]string(nil), threads...)
		}
	case entities.KindSubmission:
		if s, ok := m.Submissions[id]; ok {
			s.NotificationThreads = append([]string(nil), threads...)
		}
	}
	return nil
}

// ThreadWriteCount returns the number of SetNotificationThreads calls.
func (m *ProposalStore) ThreadWriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ThreadWrites
}

// Correction returns the stored correction without copying, for assertions.
func (m *ProposalStore) Correction(id string) *entities.Correction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Corrections[id]
}

// Submission returns the stored submission without copying, for assertions.
func (m *ProposalStore) Submission(id string) *entities.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Submissions[id]
}
