package brackets

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotEnoughEntrants = errors.New("not enough entrants to generate a single elimination bracket (minimum 2)")

// PlannedMatch — узел сетки до сохранения в БД. Сетка моделируется как
// индексированный массив (раунд, позиция): позиция p раунда r питает
// позицию p/2 раунда r+1, поэтому двусторонние ссылки не нужны.
type PlannedMatch struct {
	Round       int
	RoundLabel  string
	MatchNumber int
	Position    int

	Fighter1 *Entrant
	Fighter2 *Entrant

	IsBye  bool
	Winner *Entrant // заполняется только для bye-матчей

	NextIndex *int // индекс следующего матча в Blueprint.Matches; nil у финала
}

type Blueprint struct {
	BracketSize int
	Rounds      int
	Matches     []*PlannedMatch
}

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Name() string {
	return "SingleElimination"
}

// Generate строит полную сетку single elimination для посеянного списка.
// Размер сетки — ближайшая сверху степень двойки; свободные слоты (bye)
// складываются против сильнейших по посеву: пара p = (seed[p], seed[size-1-p]).
// Победители bye-матчей сразу продвигаются в следующий раунд, так как
// машина продвижения реагирует только на завершения со счётом.
func (g *SingleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) (*Blueprint, error) {
	entrants := params.Entrants
	n := len(entrants)
	if n < 2 {
		return nil, ErrNotEnoughEntrants
	}

	rounds := 1
	for 1<<rounds < n {
		rounds++
	}
	size := 1 << rounds

	seeds := make([]*Entrant, size)
	for i := range entrants {
		seeds[i] = &entrants[i]
	}

	matches := make([]*PlannedMatch, 0, size-1)
	for r := 1; r <= rounds; r++ {
		matchesInRound := size >> r
		for p := 0; p < matchesInRound; p++ {
			m := &PlannedMatch{
				Round:       r,
				RoundLabel:  roundLabel(r, rounds, size),
				MatchNumber: len(matches) + 1,
				Position:    p,
			}
			if r == 1 {
				m.Fighter1 = seeds[p]
				m.Fighter2 = seeds[size-1-p]
				if m.Fighter1 == nil {
					return nil, fmt.Errorf("round 1 position %d has no seeded fighter", p)
				}
				if m.Fighter2 == nil {
					m.IsBye = true
					m.Winner = m.Fighter1
				}
			}
			matches = append(matches, m)
		}
	}

	// Связываем каждый матч с единственным матчем, который он питает.
	for i, m := range matches {
		if m.Round == rounds {
			continue
		}
		next := roundOffset(m.Round+1, size) + m.Position/2
		if next <= i || next >= len(matches) {
			return nil, fmt.Errorf("invalid next index %d for match %d", next, m.MatchNumber)
		}
		m.NextIndex = &next
	}

	// Продвигаем победителей bye в первый свободный слот следующего матча.
	for _, m := range matches {
		if !m.IsBye || m.NextIndex == nil {
			continue
		}
		target := matches[*m.NextIndex]
		if target.Fighter1 == nil {
			target.Fighter1 = m.Winner
		} else if target.Fighter2 == nil {
			target.Fighter2 = m.Winner
		}
	}

	return &Blueprint{
		BracketSize: size,
		Rounds:      rounds,
		Matches:     matches,
	}, nil
}

// roundOffset — индекс первого матча раунда r в раундо-мажорном массиве.
func roundOffset(r, size int) int {
	return size - (size >> (r - 1))
}

func roundLabel(r, rounds, size int) string {
	switch {
	case r == rounds:
		return "Final"
	case r == rounds-1:
		return "Semifinal"
	case r == rounds-2:
		return "Quarterfinal"
	default:
		return fmt.Sprintf("Round of %d", size>>(r-1))
	}
}
