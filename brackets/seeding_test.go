package brackets

import (
	"testing"

	"github.com/dojofed/tournament-core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func reg(id, fighterID int, name string, age, weight, belt, rank *string) *models.Registration {
	return &models.Registration{
		ID:             id,
		EventID:        1,
		FighterID:      fighterID,
		FighterName:    name,
		AgeCategory:    age,
		WeightCategory: weight,
		BeltCategory:   belt,
		BeltRank:       rank,
		Status:         models.RegistrationStatusApproved,
	}
}

func TestBeltValue(t *testing.T) {
	tests := []struct {
		rank string
		want int
	}{
		{"", 0},
		{"white", 1},
		{"green", 4},
		{"black", 9},
		{"1-dan", 10},
		{"3-dan", 12},
		{"camouflage", 1}, // неизвестный пояс
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BeltValue(tt.rank), "rank %q", tt.rank)
	}
}

func TestGroupByCategory_SplitsByExactTriple(t *testing.T) {
	registrations := []*models.Registration{
		reg(1, 11, "Aiko", strPtr("Senior"), strPtr("-70kg"), strPtr("Kyu"), strPtr("green")),
		reg(2, 12, "Boris", strPtr("Senior"), strPtr("-70kg"), strPtr("Kyu"), strPtr("blue")),
		reg(3, 13, "Chen", strPtr("Senior"), strPtr("-80kg"), strPtr("Kyu"), strPtr("green")),
		reg(4, 14, "Dana", strPtr("Junior"), strPtr("-70kg"), strPtr("Kyu"), strPtr("green")),
	}

	groups := GroupByCategory(registrations)
	require.Len(t, groups, 3)

	// Группы отсортированы по имени категории.
	assert.Equal(t, "Junior / -70kg / Kyu", groups[0].Key.Name())
	assert.Equal(t, "Senior / -70kg / Kyu", groups[1].Key.Name())
	assert.Equal(t, "Senior / -80kg / Kyu", groups[2].Key.Name())

	require.Len(t, groups[1].Entrants, 2)
	assert.Len(t, groups[0].Entrants, 1)
	assert.Len(t, groups[2].Entrants, 1)
}

func TestGroupByCategory_MissingBandsDefaultToOpen(t *testing.T) {
	registrations := []*models.Registration{
		reg(1, 11, "Aiko", nil, strPtr(""), nil, nil),
		reg(2, 12, "Boris", nil, nil, nil, nil),
	}

	groups := GroupByCategory(registrations)
	require.Len(t, groups, 1)
	assert.Equal(t, "Open / Open / Open", groups[0].Key.Name())
	assert.Len(t, groups[0].Entrants, 2)
}

func TestGroupByCategory_SeedsByBeltDescending(t *testing.T) {
	registrations := []*models.Registration{
		reg(1, 11, "White", nil, nil, nil, strPtr("white")),
		reg(2, 12, "Black", nil, nil, nil, strPtr("black")),
		reg(3, 13, "Green", nil, nil, nil, strPtr("green")),
		reg(4, 14, "Dan", nil, nil, nil, strPtr("2-dan")),
	}

	groups := GroupByCategory(registrations)
	require.Len(t, groups, 1)

	got := make([]string, 0, 4)
	for _, e := range groups[0].Entrants {
		got = append(got, e.FighterName)
	}
	assert.Equal(t, []string{"Dan", "Black", "Green", "White"}, got)
}

func TestGroupByCategory_StableOrderForEqualBelts(t *testing.T) {
	registrations := []*models.Registration{
		reg(1, 11, "First", nil, nil, nil, strPtr("green")),
		reg(2, 12, "Second", nil, nil, nil, strPtr("green")),
		reg(3, 13, "Third", nil, nil, nil, strPtr("green")),
	}

	groups := GroupByCategory(registrations)
	require.Len(t, groups, 1)

	// Равные пояса сохраняют порядок поступления заявок.
	assert.Equal(t, 11, groups[0].Entrants[0].FighterID)
	assert.Equal(t, 12, groups[0].Entrants[1].FighterID)
	assert.Equal(t, 13, groups[0].Entrants[2].FighterID)
}

func TestGroupByCategory_CarriesDojoAndRegistration(t *testing.T) {
	r := reg(7, 42, "Aiko", nil, nil, nil, strPtr("brown"))
	r.DojoName = strPtr("Seibukan")

	groups := GroupByCategory([]*models.Registration{r, reg(8, 43, "Boris", nil, nil, nil, nil)})
	require.Len(t, groups, 1)

	e := groups[0].Entrants[0]
	assert.Equal(t, 7, e.RegistrationID)
	assert.Equal(t, 42, e.FighterID)
	require.NotNil(t, e.DojoName)
	assert.Equal(t, "Seibukan", *e.DojoName)
}
