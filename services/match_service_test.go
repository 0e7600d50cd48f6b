package services

import (
	"context"
	"testing"

	"github.com/dojofed/tournament-core/brackets"
	"github.com/dojofed/tournament-core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matchServiceFixture struct {
	service     MatchService
	bracketRepo *fakeBracketRepo
	matchRepo   *fakeMatchRepo
	broadcaster *fakeBroadcaster
}

func newMatchServiceFixture() *matchServiceFixture {
	f := &matchServiceFixture{
		bracketRepo: newFakeBracketRepo(),
		broadcaster: &fakeBroadcaster{},
	}
	f.matchRepo = newFakeMatchRepo(f.bracketRepo)
	f.service = NewMatchService(
		&fakeTxManager{},
		f.matchRepo,
		f.bracketRepo,
		f.broadcaster,
		testLogger(),
	)
	f.bracketRepo.add(&models.Bracket{ID: 1, EventID: 1, Status: models.BracketStatusInProgress})
	return f
}

func intPtr(v int) *int { return &v }

func namePtr(s string) *string { return &s }

func statusPtr(s models.MatchStatus) *models.MatchStatus { return &s }

func (f *matchServiceFixture) scheduledMatch(id int, fighter1, fighter2 int, next *int) *models.Match {
	return f.matchRepo.add(&models.Match{
		ID:           id,
		BracketID:    1,
		Round:        1,
		RoundLabel:   "Semifinal",
		MatchNumber:  id,
		Fighter1ID:   intPtr(fighter1),
		Fighter1Name: namePtr("Fighter A"),
		Fighter2ID:   intPtr(fighter2),
		Fighter2Name: namePtr("Fighter B"),
		Status:       models.MatchStatusScheduled,
		NextMatchID:  next,
	})
}

func TestStartMatch(t *testing.T) {
	f := newMatchServiceFixture()
	f.scheduledMatch(1, 11, 12, nil)

	started, err := f.service.StartMatch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusLive, started.Status)
	require.NotNil(t, started.StartedAt)

	announcements := f.broadcaster.messagesOfType(brackets.EventMatchStarted)
	require.Len(t, announcements, 1)
	assert.Equal(t, EventRoom(1), announcements[0].RoomID)
}

func TestStartMatch_NotFound(t *testing.T) {
	f := newMatchServiceFixture()

	_, err := f.service.StartMatch(context.Background(), 404)
	require.ErrorIs(t, err, ErrMatchNotFound)
}

func TestStartMatch_RejectsNonScheduled(t *testing.T) {
	f := newMatchServiceFixture()
	live := f.scheduledMatch(1, 11, 12, nil)
	live.Status = models.MatchStatusLive
	require.NoError(t, f.matchRepo.Update(context.Background(), nil, live))

	_, err := f.service.StartMatch(context.Background(), 1)
	require.ErrorIs(t, err, ErrMatchNotScheduled)

	done := f.scheduledMatch(2, 13, 14, nil)
	done.Status = models.MatchStatusCompleted
	require.NoError(t, f.matchRepo.Update(context.Background(), nil, done))

	_, err = f.service.StartMatch(context.Background(), 2)
	require.ErrorIs(t, err, ErrMatchAlreadyCompleted)
}

func TestUpdateScore_PartialPatch(t *testing.T) {
	f := newMatchServiceFixture()
	match := f.scheduledMatch(1, 11, 12, nil)
	match.Score2 = intPtr(3)
	require.NoError(t, f.matchRepo.Update(context.Background(), nil, match))

	updated, err := f.service.UpdateScore(context.Background(), 1, MatchScorePatch{Score1: intPtr(5)})
	require.NoError(t, err)

	// Незаданные поля patch не трогаются.
	require.NotNil(t, updated.Score1)
	assert.Equal(t, 5, *updated.Score1)
	require.NotNil(t, updated.Score2)
	assert.Equal(t, 3, *updated.Score2)
	assert.Equal(t, models.MatchStatusScheduled, updated.Status)
	assert.Nil(t, updated.WinnerID)
}

func TestUpdateScore_WinnerMustBeInMatch(t *testing.T) {
	f := newMatchServiceFixture()
	f.scheduledMatch(1, 11, 12, nil)

	_, err := f.service.UpdateScore(context.Background(), 1, MatchScorePatch{WinnerID: intPtr(99)})
	require.ErrorIs(t, err, ErrMatchWinnerNotInMatch)
}

func TestUpdateScore_CompletionRequiresWinner(t *testing.T) {
	f := newMatchServiceFixture()
	f.scheduledMatch(1, 11, 12, nil)

	_, err := f.service.UpdateScore(context.Background(), 1, MatchScorePatch{
		Status: statusPtr(models.MatchStatusCompleted),
	})
	require.ErrorIs(t, err, ErrMatchWinnerRequired)
}

func TestUpdateScore_RejectsCompletedMatch(t *testing.T) {
	f := newMatchServiceFixture()
	match := f.scheduledMatch(1, 11, 12, nil)
	match.Status = models.MatchStatusCompleted
	match.WinnerID = intPtr(11)
	require.NoError(t, f.matchRepo.Update(context.Background(), nil, match))

	_, err := f.service.UpdateScore(context.Background(), 1, MatchScorePatch{Score1: intPtr(1)})
	require.ErrorIs(t, err, ErrMatchAlreadyCompleted)
}

func TestUpdateScore_InvalidStatus(t *testing.T) {
	f := newMatchServiceFixture()
	f.scheduledMatch(1, 11, 12, nil)

	_, err := f.service.UpdateScore(context.Background(), 1, MatchScorePatch{
		Status: statusPtr(models.MatchStatus("paused")),
	})
	require.ErrorIs(t, err, ErrMatchInvalidStatus)
}

func TestEndMatch_AdvancesWinnerIntoNextMatch(t *testing.T) {
	f := newMatchServiceFixture()
	final := f.matchRepo.add(&models.Match{
		ID:          3,
		BracketID:   1,
		Round:       2,
		RoundLabel:  "Final",
		MatchNumber: 3,
		Status:      models.MatchStatusScheduled,
	})
	f.scheduledMatch(1, 11, 12, intPtr(final.ID))
	f.scheduledMatch(2, 13, 14, intPtr(final.ID))

	ended, err := f.service.EndMatch(context.Background(), 1, 12, intPtr(2), intPtr(7))
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, ended.Status)
	require.NotNil(t, ended.CompletedAt)

	stored, err := f.matchRepo.GetByID(context.Background(), final.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Fighter1ID)
	assert.Equal(t, 12, *stored.Fighter1ID)
	assert.Nil(t, stored.Fighter2ID)

	_, err = f.service.EndMatch(context.Background(), 2, 13, intPtr(9), intPtr(4))
	require.NoError(t, err)

	stored, err = f.matchRepo.GetByID(context.Background(), final.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Fighter2ID)
	assert.Equal(t, 13, *stored.Fighter2ID)

	refreshes := f.broadcaster.messagesOfType(brackets.EventBracketRefresh)
	assert.Len(t, refreshes, 2)
}

func TestEndMatch_FinalHasNoAdvancement(t *testing.T) {
	f := newMatchServiceFixture()
	f.scheduledMatch(1, 11, 12, nil)

	ended, err := f.service.EndMatch(context.Background(), 1, 11, intPtr(8), intPtr(3))
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, ended.Status)
	require.NotNil(t, ended.WinnerID)
	assert.Equal(t, 11, *ended.WinnerID)
}

func TestAdvanceWinner_DoesNotOverwriteFullSlots(t *testing.T) {
	f := newMatchServiceFixture()
	final := f.matchRepo.add(&models.Match{
		ID:          3,
		BracketID:   1,
		Round:       2,
		RoundLabel:  "Final",
		MatchNumber: 3,
		Fighter1ID:  intPtr(21),
		Fighter2ID:  intPtr(22),
		Status:      models.MatchStatusScheduled,
	})
	f.scheduledMatch(1, 11, 12, intPtr(final.ID))

	// Оба слота финала уже заняты: дубликат поглощается молча.
	_, err := f.service.EndMatch(context.Background(), 1, 11, intPtr(5), intPtr(1))
	require.NoError(t, err)

	stored, err := f.matchRepo.GetByID(context.Background(), final.ID)
	require.NoError(t, err)
	assert.Equal(t, 21, *stored.Fighter1ID)
	assert.Equal(t, 22, *stored.Fighter2ID)
}

func TestAdvanceWinner_IdempotentForSameWinner(t *testing.T) {
	f := newMatchServiceFixture()
	final := f.matchRepo.add(&models.Match{
		ID:          3,
		BracketID:   1,
		Round:       2,
		RoundLabel:  "Final",
		MatchNumber: 3,
		Fighter1ID:  intPtr(12),
		Status:      models.MatchStatusScheduled,
	})
	f.scheduledMatch(1, 11, 12, intPtr(final.ID))

	// Победитель уже стоит в финале: второй слот остаётся свободным.
	_, err := f.service.EndMatch(context.Background(), 1, 12, nil, nil)
	require.NoError(t, err)

	stored, err := f.matchRepo.GetByID(context.Background(), final.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, *stored.Fighter1ID)
	assert.Nil(t, stored.Fighter2ID)
}

func TestStartMatch_TimestampSetOnce(t *testing.T) {
	f := newMatchServiceFixture()
	f.scheduledMatch(1, 11, 12, nil)

	started, err := f.service.StartMatch(context.Background(), 1)
	require.NoError(t, err)
	firstStart := *started.StartedAt

	// Переход в live через patch не перезаписывает уже выставленную метку.
	_, err = f.service.UpdateScore(context.Background(), 1, MatchScorePatch{
		Status: statusPtr(models.MatchStatusLive),
	})
	require.NoError(t, err)

	stored, err := f.matchRepo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, stored.StartedAt)
	assert.Equal(t, firstStart, *stored.StartedAt)
}
