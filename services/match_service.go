package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dojofed/tournament-core/brackets"
	"github.com/dojofed/tournament-core/models"
	"github.com/dojofed/tournament-core/repositories"
	"github.com/thoas/go-funk"
)

// MatchScorePatch — частичное обновление: незаданные поля не трогаются.
type MatchScorePatch struct {
	Score1   *int                `json:"score1"`
	Score2   *int                `json:"score2"`
	WinnerID *int                `json:"winner_id"`
	Status   *models.MatchStatus `json:"status"`
	Notes    *string             `json:"notes"`
}

// MatchService — машина состояний матча: scheduled → live → completed.
// Переходы из completed запрещены; дубликаты завершений поглощаются
// идемпотентной защитой продвижения.
type MatchService interface {
	StartMatch(ctx context.Context, matchID int) (*models.Match, error)
	UpdateScore(ctx context.Context, matchID int, patch MatchScorePatch) (*models.Match, error)
	EndMatch(ctx context.Context, matchID int, winnerID int, score1, score2 *int) (*models.Match, error)
}

type matchService struct {
	txm         repositories.TxManager
	matchRepo   repositories.MatchRepository
	bracketRepo repositories.BracketRepository
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewMatchService(
	txm repositories.TxManager,
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	broadcaster Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txm:         txm,
		matchRepo:   matchRepo,
		bracketRepo: bracketRepo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

var validMatchStatuses = []models.MatchStatus{
	models.MatchStatusScheduled,
	models.MatchStatusLive,
	models.MatchStatusCompleted,
}

func (s *matchService) StartMatch(ctx context.Context, matchID int) (*models.Match, error) {
	var match *models.Match

	err := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		m, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			return mapMatchRepoError(err, matchID)
		}
		if m.Status == models.MatchStatusCompleted {
			return fmt.Errorf("%w: match %d", ErrMatchAlreadyCompleted, matchID)
		}
		if m.Status != models.MatchStatusScheduled {
			return fmt.Errorf("%w: match %d is %s", ErrMatchNotScheduled, matchID, m.Status)
		}

		now := time.Now().UTC()
		m.Status = models.MatchStatusLive
		m.StartedAt = &now
		if err := s.matchRepo.Update(ctx, exec, m); err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastForMatch(ctx, match, brackets.EventMatchStarted, MatchStartedPayload{
		MatchID:      match.ID,
		BracketID:    match.BracketID,
		RoundLabel:   match.RoundLabel,
		Fighter1Name: match.Fighter1Name,
		Fighter2Name: match.Fighter2Name,
	})
	return match, nil
}

func (s *matchService) UpdateScore(ctx context.Context, matchID int, patch MatchScorePatch) (*models.Match, error) {
	var match *models.Match
	var becameCompleted bool

	err := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		m, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			return mapMatchRepoError(err, matchID)
		}
		if m.Status == models.MatchStatusCompleted {
			return fmt.Errorf("%w: match %d", ErrMatchAlreadyCompleted, matchID)
		}

		if patch.Score1 != nil {
			m.Score1 = patch.Score1
		}
		if patch.Score2 != nil {
			m.Score2 = patch.Score2
		}
		if patch.Notes != nil {
			m.Notes = patch.Notes
		}
		if patch.WinnerID != nil {
			if !matchHasFighter(m, *patch.WinnerID) {
				return fmt.Errorf("%w: fighter %d in match %d", ErrMatchWinnerNotInMatch, *patch.WinnerID, matchID)
			}
			m.WinnerID = patch.WinnerID
		}

		if patch.Status != nil {
			if !funk.Contains(validMatchStatuses, *patch.Status) {
				return fmt.Errorf("%w: %q", ErrMatchInvalidStatus, *patch.Status)
			}
			now := time.Now().UTC()
			switch *patch.Status {
			case models.MatchStatusLive:
				if m.StartedAt == nil {
					m.StartedAt = &now
				}
			case models.MatchStatusCompleted:
				if m.WinnerID == nil {
					return fmt.Errorf("%w: match %d", ErrMatchWinnerRequired, matchID)
				}
				// StartedAt может остаться nil: статистика длительности
				// обязана такие матчи пропускать.
				m.CompletedAt = &now
				becameCompleted = true
			}
			m.Status = *patch.Status
		}

		if err := s.matchRepo.Update(ctx, exec, m); err != nil {
			return err
		}

		if becameCompleted && m.NextMatchID != nil {
			if err := s.advanceWinner(ctx, exec, m); err != nil {
				return err
			}
		}

		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastForMatch(ctx, match, brackets.EventMatchUpdate, match)
	if becameCompleted {
		s.broadcastForMatch(ctx, match, brackets.EventBracketRefresh, BracketRefreshPayload{BracketID: match.BracketID})
	}
	return match, nil
}

func (s *matchService) EndMatch(ctx context.Context, matchID int, winnerID int, score1, score2 *int) (*models.Match, error) {
	completed := models.MatchStatusCompleted
	return s.UpdateScore(ctx, matchID, MatchScorePatch{
		Score1:   score1,
		Score2:   score2,
		WinnerID: &winnerID,
		Status:   &completed,
	})
}

// advanceWinner кладёт победителя в первый свободный слот следующего матча.
// Строка следующего матча уже заблокирована текущей транзакцией, поэтому два
// завершения, питающие один матч, сериализуются на уровне БД.
func (s *matchService) advanceWinner(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	next, err := s.matchRepo.GetByIDForUpdate(ctx, exec, *m.NextMatchID)
	if err != nil {
		return fmt.Errorf("failed to load next match %d: %w", *m.NextMatchID, err)
	}

	winnerID := *m.WinnerID
	winnerName := winnerDisplayName(m)

	// Идемпотентность: повторная доставка того же завершения не должна
	// занять второй слот или перезаписать уже заполненные.
	if next.Fighter1ID != nil && *next.Fighter1ID == winnerID {
		return nil
	}
	if next.Fighter2ID != nil && *next.Fighter2ID == winnerID {
		return nil
	}

	switch {
	case next.Fighter1ID == nil:
		next.Fighter1ID = &winnerID
		next.Fighter1Name = winnerName
	case next.Fighter2ID == nil:
		next.Fighter2ID = &winnerID
		next.Fighter2Name = winnerName
	default:
		// Оба слота заняты — молча поглощаем дубликат.
		return nil
	}

	return s.matchRepo.Update(ctx, exec, next)
}

func (s *matchService) broadcastForMatch(ctx context.Context, match *models.Match, messageType string, payload interface{}) {
	bracket, err := s.bracketRepo.GetByID(ctx, match.BracketID)
	if err != nil {
		// Публикация не должна ронять уже закоммиченную операцию.
		s.logger.Warn("failed to resolve event for broadcast",
			slog.Int("match_id", match.ID), slog.Any("error", err))
		return
	}
	publish(s.broadcaster, bracket.EventID, messageType, payload)
}

func matchHasFighter(m *models.Match, fighterID int) bool {
	if m.Fighter1ID != nil && *m.Fighter1ID == fighterID {
		return true
	}
	if m.Fighter2ID != nil && *m.Fighter2ID == fighterID {
		return true
	}
	return false
}

func winnerDisplayName(m *models.Match) *string {
	if m.WinnerID == nil {
		return nil
	}
	if m.Fighter1ID != nil && *m.Fighter1ID == *m.WinnerID {
		return m.Fighter1Name
	}
	if m.Fighter2ID != nil && *m.Fighter2ID == *m.WinnerID {
		return m.Fighter2Name
	}
	return nil
}

func mapMatchRepoError(err error, matchID int) error {
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return fmt.Errorf("%w: match %d", ErrMatchNotFound, matchID)
	}
	return err
}
