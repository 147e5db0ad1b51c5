package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

func approve(id string) entities.ReviewRequest {
	return entities.ReviewRequest{ProposalID: id, Decision: entities.DecisionApproved}
}

func TestReviewService_ApproveCorrection(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord("hollow-knight", map[string]any{entities.FieldTitle: "Hollow Knight", entities.FieldEngine: "Unreal"})
	env.seedCorrection(t, "c1", "hollow-knight", entities.FieldEngine, "Unreal", "Unity", alice)

	outcome, err := env.reviews.ReviewCorrection(context.Background(), bob, approve("c1"))

	require.NoError(t, err)
	require.NotNil(t, outcome.Correction)
	assert.Equal(t, entities.StatusApproved, outcome.Correction.Status)

	stored := env.proposals.Correction("c1")
	assert.Equal(t, entities.StatusApproved, stored.Status)
	require.NotNil(t, stored.Reviewer)
	assert.Equal(t, "bob", stored.Reviewer.ID)
	assert.Equal(t, fixedNow, *stored.ReviewedAt)

	rec := env.catalog.Records["hollow-knight"]
	assert.Equal(t, "Unity", rec.Fields[entities.FieldEngine])
	require.Len(t, rec.History, 1)
	assert.Equal(t, entities.UpdateCorrection, rec.History[0].Kind)
	assert.Equal(t, "alice", rec.History[0].Submitter.ID)
	assert.Equal(t, "bob", rec.History[0].Reviewer.ID)

	require.Len(t, env.audit.Entries, 1)
	entry := env.audit.Entries[0]
	assert.Equal(t, "Unreal", entry.Before)
	assert.Equal(t, "Unity", entry.After)
	assert.Equal(t, entities.ChangeSet, entry.Change)
	assert.Equal(t, "c1", entry.CorrectionID)

	assert.Equal(t, int64(1), env.users.Count("alice", entities.CounterCorrectionsApproved))
	assert.Equal(t, 1, env.notifier.CallCount())
	assert.Equal(t, []string{"thread-1"}, stored.NotificationThreads)
}

func TestReviewService_ModifyCorrection(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord("celeste", map[string]any{entities.FieldTitle: "Celeste"})
	env.seedCorrection(t, "c1", "celeste", entities.FieldGenres, nil, []string{"platformer"}, alice)

	req := entities.ReviewRequest{
		ProposalID: "c1",
		Decision:   entities.DecisionModified,
		Notes:      "  added precision  ",
		FinalValue: []any{"platformer", " precision ", ""},
	}
	outcome, err := env.reviews.ReviewCorrection(context.Background(), bob, req)

	require.NoError(t, err)
	assert.Equal(t, entities.StatusModified, outcome.Correction.Status)
	assert.Equal(t, "added precision", outcome.Correction.ReviewNotes)

	stored := env.proposals.Correction("c1")
	assert.Equal(t, []string{"platformer", "precision"}, stored.FinalValue)

	rec := env.catalog.Records["celeste"]
	assert.Equal(t, []string{"platformer", "precision"}, rec.Fields[entities.FieldGenres])
	assert.Equal(t, entities.UpdateCorrectionModified, rec.History[0].Kind)

	require.Len(t, env.audit.Entries, 1)
	assert.Nil(t, env.audit.Entries[0].Before)
	assert.Equal(t, []string{"platformer", "precision"}, env.audit.Entries[0].After)
	assert.Equal(t, int64(1), env.users.Count("alice", entities.CounterCorrectionsApproved))
}

func TestReviewService_RejectCorrection(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord("celeste", map[string]any{entities.FieldEngine: "XNA"})
	env.seedCorrection(t, "c1", "celeste", entities.FieldEngine, "XNA", "Unity", alice)

	req := entities.ReviewRequest{ProposalID: "c1", Decision: entities.DecisionRejected, Notes: "wrong"}
	outcome, err := env.reviews.ReviewCorrection(context.Background(), bob, req)

	require.NoError(t, err)
	assert.Equal(t, entities.StatusRejected, outcome.Correction.Status)
	assert.Equal(t, 0, env.catalog.Writes)
	assert.Empty(t, env.audit.Entries)
	assert.Equal(t, "XNA", env.catalog.Records["celeste"].Fields[entities.FieldEngine])
	assert.Equal(t, int64(1), env.users.Count("alice", entities.CounterCorrectionsRejected))
	assert.Equal(t, int64(0), env.users.Count("alice", entities.CounterCorrectionsApproved))
}

func TestReviewService_ClearingCorrectionRemovesField(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord("celeste", map[string]any{entities.FieldWebsite: "http://old.example", entities.FieldPlatforms: []string{"PC"}})
	env.seedCorrection(t, "c1", "celeste", entities.FieldWebsite, "http://old.example", nil, alice)
	env.seedCorrection(t, "c2", "celeste", entities.FieldPlatforms, []string{"PC"}, []string{}, carol)

	_, err := env.reviews.ReviewCorrection(context.Background(), bob, approve("c1"))
	require.NoError(t, err)
	_, err = env.reviews.ReviewCorrection(context.Background(), bob, approve("c2"))
	require.NoError(t, err)

	rec := env.catalog.Records["celeste"]
	_, hasWebsite := rec.Fields[entities.FieldWebsite]
	_, hasPlatforms := rec.Fields[entities.FieldPlatforms]
	assert.False(t, hasWebsite)
	assert.False(t, hasPlatforms)

	require.Len(t, env.audit.Entries, 2)
	assert.Equal(t, entities.ChangeClear, env.audit.Entries[0].Change)
	assert.Equal(t, "http://old.example", env.audit.Entries[0].Before)
	assert.Equal(t, entities.ChangeClear, env.audit.Entries[1].Change)
}

func TestReviewService_CorrectionErrors(t *testing.T) {
	tests := []struct {
		name    string
		actor   entities.Actor
		req     entities.ReviewRequest
		exempt  []string
		prepare func(env *testEnv)
		wantErr error
	}{
		{
			name:    "missing proposal id",
			actor:   bob,
			req:     entities.ReviewRequest{Decision: entities.DecisionApproved},
			wantErr: entities.ErrValidation,
		},
		{
			name:    "unknown decision",
			actor:   bob,
			req:     entities.ReviewRequest{ProposalID: "c1", Decision: "maybe"},
			wantErr: entities.ErrValidation,
		},
		{
			name:    "modified without final value",
			actor:   bob,
			req:     entities.ReviewRequest{ProposalID: "c1", Decision: entities.DecisionModified},
			wantErr: entities.ErrValidation,
		},
		{
			name:    "modified with wrong type",
			actor:   bob,
			req:     entities.ReviewRequest{ProposalID: "c1", Decision: entities.DecisionModified, FinalValue: 42},
			wantErr: entities.ErrValidation,
		},
		{
			name:    "modified to a clear value",
			actor:   bob,
			req:     entities.ReviewRequest{ProposalID: "c1", Decision: entities.DecisionModified, FinalValue: "  "},
			wantErr: entities.ErrValidation,
		},
		{
			name:    "not found",
			actor:   bob,
			req:     approve("missing"),
			wantErr: entities.ErrNotFound,
		},
		{
			name:  "record removed",
			actor: bob,
			req:   approve("c1"),
			prepare: func(env *testEnv) {
				delete(env.catalog.Records, "celeste")
			},
			wantErr: entities.ErrNotFound,
		},
		{
			name:    "not a reviewer",
			actor:   carol,
			req:     approve("c1"),
			wantErr: entities.ErrForbidden,
		},
		{
			name:    "self review",
			actor:   entities.Actor{ID: "alice", Role: entities.RoleReviewer, Status: entities.AccountActive},
			req:     approve("c1"),
			wantErr: entities.ErrForbidden,
		},
		{
			name:  "already reviewed",
			actor: bob,
			req:   approve("c1"),
			prepare: func(env *testEnv) {
				env.proposals.Correction("c1").Status = entities.StatusRejected
			},
			wantErr: entities.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.exempt...)
			env.seedRecord("celeste", map[string]any{entities.FieldEngine: "XNA"})
			env.seedCorrection(t, "c1", "celeste", entities.FieldEngine, "XNA", "FNA", alice)
			if tt.prepare != nil {
				tt.prepare(env)
			}

			outcome, err := env.reviews.ReviewCorrection(context.Background(), tt.actor, tt.req)

			require.ErrorIs(t, err, tt.wantErr)
			assert.NotErrorIs(t, err, entities.ErrDependency)
			assert.Nil(t, outcome)
			assert.Equal(t, 0, env.catalog.Writes)
			assert.Empty(t, env.audit.Entries)
			assert.Equal(t, 0, env.notifier.CallCount())
		})
	}
}

func TestReviewService_ExemptSelfReview(t *testing.T) {
	env := newTestEnv(t, "alice")
	env.seedRecord("celeste", map[string]any{entities.FieldEngine: "XNA"})
	env.seedCorrection(t, "c1", "celeste", entities.FieldEngine, "XNA", "FNA", alice)

	self := entities.Actor{ID: "alice", Name: "Alice", Role: entities.RoleAdmin, Status: entities.AccountActive}
	_, err := env.reviews.ReviewCorrection(context.Background(), self, approve("c1"))

	require.NoError(t, err)
	assert.Equal(t, "FNA", env.catalog.Records["celeste"].Fields[entities.FieldEngine])
}

func TestReviewService_MergeFailureKeepsStatus(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord("celeste", map[string]any{entities.FieldEngine: "XNA"})
	env.seedCorrection(t, "c1", "celeste", entities.FieldEngine, "XNA", "FNA", alice)
	env.catalog.WriteErr = errors.New("disk full")

	outcome, err := env.reviews.ReviewCorrection(context.Background(), bob, approve("c1"))

	require.ErrorIs(t, err, entities.ErrDependency)
	require.NotNil(t, outcome)
	assert.Equal(t, entities.StatusApproved, env.proposals.Correction("c1").Status)
	assert.Empty(t, env.audit.Entries)
	assert.Equal(t, int64(1), env.users.Count("alice", entities.CounterCorrectionsApproved))
	assert.Equal(t, 1, env.logs.FilterMessage("correction side effects failed").Len())
}

func TestReviewService_AuditFailureSurfaces(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord("celeste", map[string]any{entities.FieldEngine: "XNA"})
	env.seedCorrection(t, "c1", "celeste", entities.FieldEngine, "XNA", "FNA", alice)
	env.audit.Err = errors.New("ledger offline")

	_, err := env.reviews.ReviewCorrection(context.Background(), bob, approve("c1"))

	require.ErrorIs(t, err, entities.ErrDependency)
	assert.Equal(t, "FNA", env.catalog.Records["celeste"].Fields[entities.FieldEngine])
}

func TestReviewService_CounterFailureIsLogged(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord("celeste", map[string]any{entities.FieldEngine: "XNA"})
	env.seedCorrection(t, "c1", "celeste", entities.FieldEngine, "XNA", "FNA", alice)
	env.users.CounterErr = errors.New("redis down")

	_, err := env.reviews.ReviewCorrection(context.Background(), bob, approve("c1"))

	require.NoError(t, err)
	assert.Equal(t, 1, env.logs.FilterMessage("incrementing contribution counter").Len())
}

func TestReviewService_ConcurrentReviewsMergeOnce(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord("celeste", map[string]any{entities.FieldEngine: "XNA"})
	env.seedCorrection(t, "c1", "celeste", entities.FieldEngine, "XNA", "FNA", alice)

	reviewers := []entities.Actor{
		bob,
		{ID: "dave", Name: "Dave", Role: entities.RoleReviewer, Status: entities.AccountActive},
		{ID: "erin", Name: "Erin", Role: entities.RoleAdmin, Status: entities.AccountActive},
		{ID: "frank", Name: "Frank", Role: entities.RoleReviewer, Status: entities.AccountActive},
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for _, r := range reviewers {
		wg.Add(1)
		go func(actor entities.Actor) {
			defer wg.Done()
			_, err := env.reviews.ReviewCorrection(context.Background(), actor, approve("c1"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, entities.ErrConflict):
				conflicts++
			}
		}(r)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, len(reviewers)-1, conflicts)
	assert.Equal(t, 1, env.catalog.Writes)
	assert.Len(t, env.audit.Entries, 1)
	assert.Equal(t, int64(1), env.users.Count("alice", entities.CounterCorrectionsApproved))
}

func TestReviewService_ApproveSubmissionSupersedesSiblings(t *testing.T) {
	env := newTestEnv(t)
	data := map[string]any{
		entities.FieldTitle:       "Tunic",
		entities.FieldReleaseDate: "2022-03-16",
		entities.FieldDevelopers:  []string{"Andrew Shouldice"},
		entities.FieldPublishers:  []string{"Finji"},
	}
	env.seedSubmission(t, "s1", "tunic", data, alice)
	env.seedSubmission(t, "s2", "tunic", map[string]any{entities.FieldTitle: "Tunic"}, carol)
	env.seedSubmission(t, "s3", "other", map[string]any{entities.FieldTitle: "Other"}, carol)
	env.proposals.Submission("s2").NotificationThreads = []string{"thread-s2"}

	outcome, err := env.reviews.ReviewSubmission(context.Background(), bob, approve("s1"))

	require.NoError(t, err)
	assert.Equal(t, entities.StatusApproved, outcome.Submission.Status)
	require.Len(t, outcome.Superseded, 1)
	assert.Equal(t, "s2", outcome.Superseded[0].ID)

	rec := env.catalog.Records["tunic"]
	require.NotNil(t, rec)
	assert.True(t, rec.Ready)
	assert.Equal(t, "Tunic", rec.Fields[entities.FieldTitle])
	require.Len(t, rec.History, 1)
	assert.Equal(t, entities.UpdateSubmission, rec.History[0].Kind)
	assert.ElementsMatch(t, []string{"developers", "publishers", "releaseDate", "title"}, rec.History[0].Fields)

	assert.Len(t, env.audit.Entries, 4)
	for _, e := range env.audit.Entries {
		assert.Equal(t, "s1", e.SubmissionID)
		assert.Nil(t, e.Before)
	}

	sib := env.proposals.Submission("s2")
	assert.Equal(t, entities.StatusSuperseded, sib.Status)
	assert.Equal(t, "Superseded by approved submission s1", sib.ReviewNotes)
	assert.Equal(t, entities.StatusPending, env.proposals.Submission("s3").Status)

	assert.Equal(t, int64(1), env.users.Count("alice", entities.CounterSubmissionsApproved))
	assert.Equal(t, int64(0), env.users.Count("carol", entities.CounterSubmissionsRejected))
	assert.Equal(t, int64(0), env.users.Count("carol", entities.CounterSubmissionsApproved))

	// One call for the approved submission, one for the superseded sibling's thread.
	calls := env.notifier.Snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"thread-s2"}, calls[1].ThreadIDs)
	assert.Equal(t, entities.StatusSuperseded, calls[1].Payload.Items[0].Status)
}

func TestReviewService_SubmissionIncompleteIsNotReady(t *testing.T) {
	env := newTestEnv(t)
	env.seedSubmission(t, "s1", "tunic", map[string]any{entities.FieldTitle: "Tunic", entities.FieldDevelopers: []string{"Andrew"}}, alice)

	_, err := env.reviews.ReviewSubmission(context.Background(), bob, approve("s1"))

	require.NoError(t, err)
	rec := env.catalog.Records["tunic"]
	require.NotNil(t, rec)
	assert.False(t, rec.Ready)
}

func TestReviewService_SubmissionMergesIntoExistingRecord(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord("tunic", map[string]any{
		entities.FieldTitle:       "Tunic",
		entities.FieldReleaseDate: "2022",
		entities.FieldEngine:      "Unity",
	})
	env.seedSubmission(t, "s1", "tunic", map[string]any{
		entities.FieldReleaseDate: "2022-03-16",
		entities.FieldDevelopers:  []string{"Andrew Shouldice"},
		entities.FieldPublishers:  []string{"Finji"},
	}, alice)

	_, err := env.reviews.ReviewSubmission(context.Background(), bob, approve("s1"))

	require.NoError(t, err)
	rec := env.catalog.Records["tunic"]
	assert.Equal(t, "Unity", rec.Fields[entities.FieldEngine])
	assert.Equal(t, "2022-03-16", rec.Fields[entities.FieldReleaseDate])
	assert.True(t, rec.Ready)

	var before any
	for _, e := range env.audit.Entries {
		if e.Field == entities.FieldReleaseDate {
			before = e.Before
		}
	}
	assert.Equal(t, "2022", before)
}

func TestReviewService_RejectSubmission(t *testing.T) {
	env := newTestEnv(t)
	env.seedSubmission(t, "s1", "tunic", map[string]any{entities.FieldTitle: "Tunic"}, alice)
	env.seedSubmission(t, "s2", "tunic", map[string]any{entities.FieldTitle: "Tunic"}, carol)

	outcome, err := env.reviews.ReviewSubmission(context.Background(), bob, entities.ReviewRequest{ProposalID: "s1", Decision: entities.DecisionRejected})

	require.NoError(t, err)
	assert.Empty(t, outcome.Superseded)
	assert.Equal(t, entities.StatusPending, env.proposals.Submission("s2").Status)
	assert.Equal(t, 0, env.catalog.Writes)
	assert.Equal(t, int64(1), env.users.Count("alice", entities.CounterSubmissionsRejected))
}

func TestReviewService_SubmissionCannotBeModified(t *testing.T) {
	env := newTestEnv(t)
	env.seedSubmission(t, "s1", "tunic", map[string]any{entities.FieldTitle: "Tunic"}, alice)

	_, err := env.reviews.ReviewSubmission(context.Background(), bob, entities.ReviewRequest{
		ProposalID: "s1",
		Decision:   entities.DecisionModified,
		FinalValue: "x",
	})

	require.ErrorIs(t, err, entities.ErrValidation)
	assert.Equal(t, entities.StatusPending, env.proposals.Submission("s1").Status)
}

func TestReviewService_NotificationFailureDoesNotFailReview(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord("celeste", map[string]any{entities.FieldEngine: "XNA"})
	env.seedCorrection(t, "c1", "celeste", entities.FieldEngine, "XNA", "FNA", alice)
	env.notifier.Err = errors.New("webhook 500")

	_, err := env.reviews.ReviewCorrection(context.Background(), bob, approve("c1"))

	require.NoError(t, err)
	assert.Equal(t, entities.StatusApproved, env.proposals.Correction("c1").Status)
	assert.Equal(t, 1, env.logs.FilterMessage("notification failed").Len())
}
