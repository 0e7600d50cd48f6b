package services

import "errors"

// Общие ошибки сервисного слоя и их таксономия для HTTP-маппинга:
// not-found → 404, precondition-failed → 400, internal-consistency → 500.
var (
	// Ресурс не найден
	ErrEventNotFound   = errors.New("event not found")
	ErrBracketNotFound = errors.New("bracket not found")
	ErrMatchNotFound   = errors.New("match not found")

	// Нарушенные предусловия и бизнес-правила
	ErrNoApprovedParticipants      = errors.New("event has no approved participants")
	ErrBracketsAlreadyGenerated    = errors.New("brackets already generated for this event")
	ErrBracketInvalidStatus        = errors.New("invalid bracket status provided")
	ErrBracketInvalidTransition    = errors.New("invalid bracket status transition")
	ErrBracketIncomplete           = errors.New("not all matches in the bracket are completed")
	ErrResultsAlreadyCalculated    = errors.New("results already calculated for this bracket")
	ErrMatchAlreadyCompleted       = errors.New("match is already completed")
	ErrMatchNotScheduled           = errors.New("match is not in scheduled state")
	ErrMatchWinnerRequired         = errors.New("winner is required to complete a match")
	ErrMatchInvalidStatus          = errors.New("invalid match status provided")
	ErrMatchWinnerNotInMatch       = errors.New("winner must be one of the match fighters")

	// Нарушение инварианта выше по потоку — логируется и отдаётся как 500
	ErrFinalWinnerMissing = errors.New("final match has no winner")
)
