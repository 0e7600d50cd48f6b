package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dojofed/tournament-core/brackets"
	"github.com/dojofed/tournament-core/models"
	"github.com/dojofed/tournament-core/repositories"
)

// ResultService — калькулятор медалей. Запускается один раз на сетку,
// когда все её матчи завершены: победитель финала — золото, второй
// финалист — серебро, проигравшие полуфиналов — бронза (их может быть две).
type ResultService interface {
	CalculateForBracket(ctx context.Context, bracketID int) ([]*models.Result, error)
	ListByBracket(ctx context.Context, bracketID int) ([]*models.Result, error)
}

type resultService struct {
	txm         repositories.TxManager
	bracketRepo repositories.BracketRepository
	matchRepo   repositories.MatchRepository
	resultRepo  repositories.ResultRepository
	regRepo     repositories.RegistrationRepository
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewResultService(
	txm repositories.TxManager,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	resultRepo repositories.ResultRepository,
	regRepo repositories.RegistrationRepository,
	broadcaster Broadcaster,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		txm:         txm,
		bracketRepo: bracketRepo,
		matchRepo:   matchRepo,
		resultRepo:  resultRepo,
		regRepo:     regRepo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *resultService) CalculateForBracket(ctx context.Context, bracketID int) ([]*models.Result, error) {
	bracket, err := s.bracketRepo.GetByID(ctx, bracketID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, fmt.Errorf("%w: bracket %d", ErrBracketNotFound, bracketID)
		}
		return nil, err
	}

	existing, err := s.resultRepo.ListByBracket(ctx, bracketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for bracket %d: %w", bracketID, err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: bracket %d", ErrResultsAlreadyCalculated, bracketID)
	}

	matches, err := s.matchRepo.ListByBracket(ctx, bracketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for bracket %d: %w", bracketID, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: bracket %d has no matches", ErrBracketIncomplete, bracketID)
	}

	finalRound := 0
	for _, m := range matches {
		if m.Status != models.MatchStatusCompleted {
			return nil, fmt.Errorf("%w: match %d is %s", ErrBracketIncomplete, m.ID, m.Status)
		}
		if m.Round > finalRound {
			finalRound = m.Round
		}
	}

	var final *models.Match
	for _, m := range matches {
		if m.Round != finalRound {
			continue
		}
		if final != nil {
			return nil, fmt.Errorf("bracket %d has more than one match in round %d", bracketID, finalRound)
		}
		final = m
	}

	if final.WinnerID == nil {
		s.logger.Error("completed final has no winner",
			slog.Int("bracket_id", bracketID), slog.Int("match_id", final.ID))
		return nil, fmt.Errorf("%w: bracket %d match %d", ErrFinalWinnerMissing, bracketID, final.ID)
	}

	dojoByFighter := s.dojoLookup(ctx, bracket.EventID)

	newResult := func(fighterID int, fighterName *string, rank int, medal models.Medal) *models.Result {
		name := fmt.Sprintf("Fighter %d", fighterID)
		if fighterName != nil && *fighterName != "" {
			name = *fighterName
		}
		return &models.Result{
			BracketID:    bracket.ID,
			EventID:      bracket.EventID,
			FighterID:    fighterID,
			FighterName:  name,
			DojoName:     dojoByFighter[fighterID],
			CategoryName: bracket.CategoryName,
			Rank:         rank,
			Medal:        medal,
		}
	}

	results := make([]*models.Result, 0, 4)

	goldID := *final.WinnerID
	results = append(results, newResult(goldID, fighterNameFor(final, goldID), 1, models.MedalGold))

	// Серебро отсутствует только у вырожденного финала-bye.
	if silverID, silverName, ok := loserOf(final); ok {
		results = append(results, newResult(silverID, silverName, 2, models.MedalSilver))
	}

	for _, m := range matches {
		if m.Round != finalRound-1 {
			continue
		}
		if bronzeID, bronzeName, ok := loserOf(m); ok {
			results = append(results, newResult(bronzeID, bronzeName, 3, models.MedalBronze))
		}
	}

	err = s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, result := range results {
			if createErr := s.resultRepo.Create(ctx, exec, result); createErr != nil {
				return createErr
			}
		}
		// Неявное завершение сетки — единственный переход мимо
		// административной карты статусов.
		return s.bracketRepo.UpdateStatus(ctx, exec, bracket.ID, models.BracketStatusCompleted)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist results for bracket %d: %w", bracketID, err)
	}

	publish(s.broadcaster, bracket.EventID, brackets.EventBracketRefresh, BracketRefreshPayload{BracketID: bracket.ID})
	return results, nil
}

func (s *resultService) ListByBracket(ctx context.Context, bracketID int) ([]*models.Result, error) {
	if _, err := s.bracketRepo.GetByID(ctx, bracketID); err != nil {
		return nil, fmt.Errorf("%w: bracket %d", ErrBracketNotFound, bracketID)
	}
	return s.resultRepo.ListByBracket(ctx, bracketID)
}

// dojoLookup — додзё бойцов мероприятия; ошибки не фатальны, медаль без
// додзё лучше, чем отказ в расчёте.
func (s *resultService) dojoLookup(ctx context.Context, eventID int) map[int]*string {
	lookup := make(map[int]*string)
	registrations, err := s.regRepo.ListApprovedByEvent(ctx, eventID)
	if err != nil {
		s.logger.Warn("failed to load registrations for dojo lookup",
			slog.Int("event_id", eventID), slog.Any("error", err))
		return lookup
	}
	for _, reg := range registrations {
		lookup[reg.FighterID] = reg.DojoName
	}
	return lookup
}

// loserOf возвращает бойца матча, не являющегося победителем.
func loserOf(m *models.Match) (int, *string, bool) {
	if m.WinnerID == nil {
		return 0, nil, false
	}
	if m.Fighter1ID != nil && *m.Fighter1ID != *m.WinnerID {
		return *m.Fighter1ID, m.Fighter1Name, true
	}
	if m.Fighter2ID != nil && *m.Fighter2ID != *m.WinnerID {
		return *m.Fighter2ID, m.Fighter2Name, true
	}
	return 0, nil, false
}

func fighterNameFor(m *models.Match, fighterID int) *string {
	if m.Fighter1ID != nil && *m.Fighter1ID == fighterID {
		return m.Fighter1Name
	}
	if m.Fighter2ID != nil && *m.Fighter2ID == fighterID {
		return m.Fighter2Name
	}
	return nil
}
