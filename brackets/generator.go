package brackets

import "context"

type GenerateParams struct {
	Entrants []Entrant
}

type Generator interface {
	Generate(ctx context.Context, params GenerateParams) (*Blueprint, error)

	Name() string
}
