package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dojofed/tournament-core/models"
	"github.com/dojofed/tournament-core/repositories"
	"golang.org/x/sync/errgroup"
)

type CategoryWinner struct {
	BracketID    int     `json:"bracket_id"`
	CategoryName string  `json:"category_name"`
	FighterID    int     `json:"fighter_id"`
	FighterName  string  `json:"fighter_name"`
	DojoName     *string `json:"dojo_name,omitempty"`
}

type DojoStanding struct {
	DojoName string `json:"dojo_name"`
	Gold     int    `json:"gold"`
	Silver   int    `json:"silver"`
	Bronze   int    `json:"bronze"`
	Total    int    `json:"total"`
}

type MatchHighlight struct {
	MatchID         int      `json:"match_id"`
	BracketID       int      `json:"bracket_id"`
	CategoryName    string   `json:"category_name"`
	Fighter1Name    *string  `json:"fighter1_name,omitempty"`
	Fighter2Name    *string  `json:"fighter2_name,omitempty"`
	WinnerID        *int     `json:"winner_id,omitempty"`
	Score1          int      `json:"score1"`
	Score2          int      `json:"score2"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
}

type EventStatistics struct {
	EventID         int              `json:"event_id"`
	CategoryWinners []CategoryWinner `json:"category_winners"`
	DojoLeaderboard []DojoStanding   `json:"dojo_leaderboard"`
	FastestWin      *MatchHighlight  `json:"fastest_win,omitempty"`
	HighestScore    *MatchHighlight  `json:"highest_score,omitempty"`
	MostDominant    *MatchHighlight  `json:"most_dominant,omitempty"`
}

// StatisticsService — агрегаты по мероприятию. Только чтение, без кеша:
// каждый вызов пересчитывает сводку по текущему состоянию.
type StatisticsService interface {
	GetEventStatistics(ctx context.Context, eventID int) (*EventStatistics, error)
}

type statisticsService struct {
	bracketRepo repositories.BracketRepository
	matchRepo   repositories.MatchRepository
	resultRepo  repositories.ResultRepository
	eventRepo   repositories.EventRepository
	logger      *slog.Logger
}

func NewStatisticsService(
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	resultRepo repositories.ResultRepository,
	eventRepo repositories.EventRepository,
	logger *slog.Logger,
) StatisticsService {
	return &statisticsService{
		bracketRepo: bracketRepo,
		matchRepo:   matchRepo,
		resultRepo:  resultRepo,
		eventRepo:   eventRepo,
		logger:      logger,
	}
}

func (s *statisticsService) GetEventStatistics(ctx context.Context, eventID int) (*EventStatistics, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("%w: event %d", ErrEventNotFound, eventID)
	}

	var (
		bracketList []*models.Bracket
		matches     []*models.Match
		results     []*models.Result
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bracketList, err = s.bracketRepo.ListByEvent(gCtx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByEvent(gCtx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		results, err = s.resultRepo.ListByEvent(gCtx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load statistics data for event %d: %w", eventID, err)
	}

	categoryByBracket := make(map[int]string, len(bracketList))
	for _, b := range bracketList {
		categoryByBracket[b.ID] = b.CategoryName
	}

	stats := &EventStatistics{
		EventID:         eventID,
		CategoryWinners: categoryWinners(results),
		DojoLeaderboard: dojoLeaderboard(results),
	}
	s.fillHighlights(stats, matches, categoryByBracket)

	return stats, nil
}

func categoryWinners(results []*models.Result) []CategoryWinner {
	winners := make([]CategoryWinner, 0)
	for _, r := range results {
		if r.Rank != 1 {
			continue
		}
		winners = append(winners, CategoryWinner{
			BracketID:    r.BracketID,
			CategoryName: r.CategoryName,
			FighterID:    r.FighterID,
			FighterName:  r.FighterName,
			DojoName:     r.DojoName,
		})
	}
	return winners
}

func dojoLeaderboard(results []*models.Result) []DojoStanding {
	byDojo := make(map[string]*DojoStanding)
	for _, r := range results {
		// Бойцы без додзё в командный зачёт не входят.
		if r.DojoName == nil || *r.DojoName == "" {
			continue
		}
		standing, ok := byDojo[*r.DojoName]
		if !ok {
			standing = &DojoStanding{DojoName: *r.DojoName}
			byDojo[*r.DojoName] = standing
		}
		switch r.Medal {
		case models.MedalGold:
			standing.Gold++
		case models.MedalSilver:
			standing.Silver++
		case models.MedalBronze:
			standing.Bronze++
		}
		standing.Total++
	}

	leaderboard := make([]DojoStanding, 0, len(byDojo))
	for _, standing := range byDojo {
		leaderboard = append(leaderboard, *standing)
	}

	// Лексикографически по (золото, серебро, бронза, всего) по убыванию.
	sort.Slice(leaderboard, func(i, j int) bool {
		a, b := leaderboard[i], leaderboard[j]
		if a.Gold != b.Gold {
			return a.Gold > b.Gold
		}
		if a.Silver != b.Silver {
			return a.Silver > b.Silver
		}
		if a.Bronze != b.Bronze {
			return a.Bronze > b.Bronze
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.DojoName < b.DojoName
	})

	return leaderboard
}

func (s *statisticsService) fillHighlights(stats *EventStatistics, matches []*models.Match, categoryByBracket map[int]string) {
	var fastestSeconds float64
	highestScore := -1
	largestMargin := -1

	for _, m := range matches {
		if m.Status != models.MatchStatusCompleted || m.Score1 == nil || m.Score2 == nil {
			continue
		}

		highlight := MatchHighlight{
			MatchID:      m.ID,
			BracketID:    m.BracketID,
			CategoryName: categoryByBracket[m.BracketID],
			Fighter1Name: m.Fighter1Name,
			Fighter2Name: m.Fighter2Name,
			WinnerID:     m.WinnerID,
			Score1:       *m.Score1,
			Score2:       *m.Score2,
		}

		// Матчи без обеих временных меток не участвуют в "самой быстрой победе".
		if m.StartedAt != nil && m.CompletedAt != nil {
			seconds := m.CompletedAt.Sub(*m.StartedAt).Seconds()
			if seconds >= 0 && (stats.FastestWin == nil || seconds < fastestSeconds) {
				withDuration := highlight
				withDuration.DurationSeconds = &seconds
				stats.FastestWin = &withDuration
				fastestSeconds = seconds
			}
		}

		top := *m.Score1
		if *m.Score2 > top {
			top = *m.Score2
		}
		if top > highestScore {
			h := highlight
			stats.HighestScore = &h
			highestScore = top
		}

		margin := *m.Score1 - *m.Score2
		if margin < 0 {
			margin = -margin
		}
		if margin > largestMargin {
			h := highlight
			stats.MostDominant = &h
			largestMargin = margin
		}
	}
}
