package brackets

import (
	"fmt"
	"sort"

	"github.com/dojofed/tournament-core/models"
)

const openBand = "Open"

// beltOrdinals — фиксированная таблица рангов поясов для посева.
// Неизвестный пояс считается за 1, отсутствие пояса — за 0.
var beltOrdinals = map[string]int{
	"white":  1,
	"yellow": 2,
	"orange": 3,
	"green":  4,
	"blue":   5,
	"purple": 6,
	"brown":  7,
	"red":    8,
	"black":  9,
	"1-dan":  10,
	"2-dan":  11,
	"3-dan":  12,
}

func BeltValue(rank string) int {
	if rank == "" {
		return 0
	}
	if v, ok := beltOrdinals[rank]; ok {
		return v
	}
	return 1
}

// Entrant — участник одной категории после посева.
type Entrant struct {
	RegistrationID int
	FighterID      int
	FighterName    string
	DojoName       *string
	BeltRank       string
}

type CategoryKey struct {
	Age    string
	Weight string
	Belt   string
}

func (k CategoryKey) Name() string {
	return fmt.Sprintf("%s / %s / %s", k.Age, k.Weight, k.Belt)
}

type CategoryGroup struct {
	Key      CategoryKey
	Entrants []Entrant
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return openBand
	}
	return *s
}

// GroupByCategory разбивает одобренные заявки на непересекающиеся категории
// по точной тройке (возраст, вес, пояс) и сеет каждую группу по убыванию
// ранга пояса. Сортировка стабильная: при равных поясах сохраняется порядок
// поступления заявок. Группы возвращаются в детерминированном порядке по имени.
func GroupByCategory(registrations []*models.Registration) []CategoryGroup {
	grouped := make(map[CategoryKey][]Entrant)
	for _, reg := range registrations {
		if reg == nil {
			continue
		}
		key := CategoryKey{
			Age:    deref(reg.AgeCategory),
			Weight: deref(reg.WeightCategory),
			Belt:   deref(reg.BeltCategory),
		}
		beltRank := ""
		if reg.BeltRank != nil {
			beltRank = *reg.BeltRank
		}
		grouped[key] = append(grouped[key], Entrant{
			RegistrationID: reg.ID,
			FighterID:      reg.FighterID,
			FighterName:    reg.FighterName,
			DojoName:       reg.DojoName,
			BeltRank:       beltRank,
		})
	}

	groups := make([]CategoryGroup, 0, len(grouped))
	for key, entrants := range grouped {
		sort.SliceStable(entrants, func(i, j int) bool {
			return BeltValue(entrants[i].BeltRank) > BeltValue(entrants[j].BeltRank)
		})
		groups = append(groups, CategoryGroup{Key: key, Entrants: entrants})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key.Name() < groups[j].Key.Name()
	})

	return groups
}
