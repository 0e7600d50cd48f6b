package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dojofed/tournament-core/brackets"
	"github.com/dojofed/tournament-core/models"
	"github.com/dojofed/tournament-core/repositories"
	"github.com/thoas/go-funk"
)

type BracketService interface {
	// GenerateForEvent строит и сохраняет сетки всех категорий мероприятия.
	// Повторная генерация для мероприятия с уже существующими сетками запрещена.
	GenerateForEvent(ctx context.Context, eventID int) ([]*models.Bracket, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Bracket, error)
	UpdateStatus(ctx context.Context, bracketID int, status models.BracketStatus) (*models.Bracket, error)
}

type bracketService struct {
	txm         repositories.TxManager
	bracketRepo repositories.BracketRepository
	matchRepo   repositories.MatchRepository
	eventRepo   repositories.EventRepository
	regRepo     repositories.RegistrationRepository
	generator   brackets.Generator
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewBracketService(
	txm repositories.TxManager,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	eventRepo repositories.EventRepository,
	regRepo repositories.RegistrationRepository,
	generator brackets.Generator,
	broadcaster Broadcaster,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		txm:         txm,
		bracketRepo: bracketRepo,
		matchRepo:   matchRepo,
		eventRepo:   eventRepo,
		regRepo:     regRepo,
		generator:   generator,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

var validBracketStatuses = []models.BracketStatus{
	models.BracketStatusDraft,
	models.BracketStatusLocked,
	models.BracketStatusInProgress,
	models.BracketStatusCompleted,
}

// Переходы статусов — административные действия; завершение через
// калькулятор результатов идёт мимо этой карты (неявный переход).
var allowedBracketTransitions = map[models.BracketStatus][]models.BracketStatus{
	models.BracketStatusDraft:      {models.BracketStatusLocked},
	models.BracketStatusLocked:     {models.BracketStatusDraft, models.BracketStatusInProgress},
	models.BracketStatusInProgress: {models.BracketStatusCompleted},
	models.BracketStatusCompleted:  {},
}

func (s *bracketService) GenerateForEvent(ctx context.Context, eventID int) ([]*models.Bracket, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: event %d", ErrEventNotFound, eventID)
	}

	existing, err := s.bracketRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brackets for event %d: %w", eventID, err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: event %d has %d brackets", ErrBracketsAlreadyGenerated, eventID, len(existing))
	}

	registrations, err := s.regRepo.ListApprovedByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved registrations for event %d: %w", eventID, err)
	}
	if len(registrations) == 0 {
		return nil, fmt.Errorf("%w: event %d", ErrNoApprovedParticipants, eventID)
	}

	groups := brackets.GroupByCategory(registrations)
	s.progress(eventID, "seeding", fmt.Sprintf("%d approved entrants split into %d categories", len(registrations), len(groups)), 5)

	created := make([]*models.Bracket, 0, len(groups))
	for i, group := range groups {
		categoryName := group.Key.Name()

		if len(group.Entrants) < 2 {
			// Сетка из одного участника не имеет матчей и не может быть разрешена.
			s.logger.Warn("skipping category with single entrant",
				slog.Int("event_id", eventID), slog.String("category", categoryName))
			s.progress(eventID, "building", fmt.Sprintf("category %s skipped: not enough entrants", categoryName), s.progressFor(i+1, len(groups)))
			continue
		}

		blueprint, genErr := s.generator.Generate(ctx, brackets.GenerateParams{Entrants: group.Entrants})
		if genErr != nil {
			return nil, fmt.Errorf("failed to generate bracket for category %s: %w", categoryName, genErr)
		}

		bracket := &models.Bracket{
			EventID:           event.ID,
			CategoryName:      categoryName,
			AgeCategory:       group.Key.Age,
			WeightCategory:    group.Key.Weight,
			BeltCategory:      group.Key.Belt,
			TotalParticipants: len(group.Entrants),
			Status:            models.BracketStatusDraft,
		}

		// Сетка категории сохраняется одной транзакцией: частично построенное
		// дерево не должно быть видимо.
		txErr := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			return s.persistBlueprint(ctx, exec, bracket, blueprint)
		})
		if txErr != nil {
			return nil, fmt.Errorf("failed to persist bracket for category %s: %w", categoryName, txErr)
		}

		created = append(created, bracket)
		s.progress(eventID, "building", fmt.Sprintf("category %s: %d matches created", categoryName, len(blueprint.Matches)), s.progressFor(i+1, len(groups)))
	}

	s.progress(eventID, "done", fmt.Sprintf("%d brackets generated", len(created)), 100)
	return created, nil
}

func (s *bracketService) persistBlueprint(ctx context.Context, exec repositories.SQLExecutor, bracket *models.Bracket, blueprint *brackets.Blueprint) error {
	if err := s.bracketRepo.Create(ctx, exec, bracket); err != nil {
		return err
	}

	now := time.Now().UTC()
	dbIDs := make([]int, len(blueprint.Matches))

	// Первый проход: создаём все матчи. Bye-матчи рождаются уже завершёнными,
	// их победители продвинуты генератором ещё на уровне blueprint.
	for i, pm := range blueprint.Matches {
		match := &models.Match{
			BracketID:   bracket.ID,
			Round:       pm.Round,
			RoundLabel:  pm.RoundLabel,
			MatchNumber: pm.MatchNumber,
			IsBye:       pm.IsBye,
			Status:      models.MatchStatusScheduled,
		}
		match.Fighter1ID, match.Fighter1Name = entrantRef(pm.Fighter1)
		match.Fighter2ID, match.Fighter2Name = entrantRef(pm.Fighter2)
		if pm.IsBye {
			match.Status = models.MatchStatusCompleted
			winnerID := pm.Winner.FighterID
			match.WinnerID = &winnerID
			completedAt := now
			match.CompletedAt = &completedAt
		}
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return err
		}
		dbIDs[i] = match.ID
	}

	// Второй проход: связи next_match_id по известным теперь идентификаторам.
	for i, pm := range blueprint.Matches {
		if pm.NextIndex == nil {
			continue
		}
		nextID := dbIDs[*pm.NextIndex]
		if err := s.matchRepo.UpdateNextMatch(ctx, exec, dbIDs[i], &nextID); err != nil {
			return err
		}
	}

	return nil
}

func (s *bracketService) ListByEvent(ctx context.Context, eventID int) ([]*models.Bracket, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("%w: event %d", ErrEventNotFound, eventID)
	}

	bracketList, err := s.bracketRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brackets for event %d: %w", eventID, err)
	}

	matches, err := s.matchRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for event %d: %w", eventID, err)
	}

	byBracket := make(map[int][]models.Match, len(bracketList))
	for _, m := range matches {
		byBracket[m.BracketID] = append(byBracket[m.BracketID], *m)
	}
	for _, b := range bracketList {
		if ms, ok := byBracket[b.ID]; ok {
			b.Matches = ms
		} else {
			b.Matches = []models.Match{}
		}
	}

	return bracketList, nil
}

func (s *bracketService) UpdateStatus(ctx context.Context, bracketID int, status models.BracketStatus) (*models.Bracket, error) {
	if !funk.Contains(validBracketStatuses, status) {
		return nil, fmt.Errorf("%w: %q", ErrBracketInvalidStatus, status)
	}

	bracket, err := s.bracketRepo.GetByID(ctx, bracketID)
	if err != nil {
		return nil, fmt.Errorf("%w: bracket %d", ErrBracketNotFound, bracketID)
	}

	if bracket.Status != status && !funk.Contains(allowedBracketTransitions[bracket.Status], status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBracketInvalidTransition, bracket.Status, status)
	}

	if bracket.Status != status {
		err = s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			return s.bracketRepo.UpdateStatus(ctx, exec, bracketID, status)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to update bracket %d status: %w", bracketID, err)
		}
		bracket.Status = status
		publish(s.broadcaster, bracket.EventID, brackets.EventBracketRefresh, BracketRefreshPayload{BracketID: bracket.ID})
	}

	return bracket, nil
}

func (s *bracketService) progress(eventID int, phase, message string, progress int) {
	publish(s.broadcaster, eventID, brackets.EventGenerationProgress, GenerationProgressPayload{
		Phase:    phase,
		Message:  message,
		Progress: progress,
	})
}

// progressFor масштабирует прогресс категорий в диапазон 5..95.
func (s *bracketService) progressFor(done, total int) int {
	if total == 0 {
		return 95
	}
	return 5 + (90*done)/total
}

func entrantRef(e *brackets.Entrant) (*int, *string) {
	if e == nil {
		return nil, nil
	}
	id := e.FighterID
	name := e.FighterName
	return &id, &name
}
