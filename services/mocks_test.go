package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/dojofed/tournament-core/brackets"
	"github.com/dojofed/tournament-core/models"
	"github.com/dojofed/tournament-core/repositories"
)

// Фейки поверх карт в памяти: сервисы видят только интерфейсы репозиториев,
// поэтому бизнес-правила проверяются без базы данных.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTxManager исполняет fn напрямую: фейковым репозиториям exec не нужен.
type fakeTxManager struct{}

func (f *fakeTxManager) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeEventRepo struct {
	events map[int]*models.Event
}

func newFakeEventRepo(events ...*models.Event) *fakeEventRepo {
	repo := &fakeEventRepo{events: make(map[int]*models.Event)}
	for _, e := range events {
		repo.events[e.ID] = e
	}
	return repo
}

func (f *fakeEventRepo) GetByID(_ context.Context, id int) (*models.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

type fakeRegistrationRepo struct {
	byEvent map[int][]*models.Registration
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{byEvent: make(map[int][]*models.Registration)}
}

func (f *fakeRegistrationRepo) add(reg *models.Registration) {
	f.byEvent[reg.EventID] = append(f.byEvent[reg.EventID], reg)
}

func (f *fakeRegistrationRepo) ListApprovedByEvent(_ context.Context, eventID int) ([]*models.Registration, error) {
	approved := make([]*models.Registration, 0)
	for _, reg := range f.byEvent[eventID] {
		if reg.Status == models.RegistrationStatusApproved {
			approved = append(approved, reg)
		}
	}
	return approved, nil
}

type fakeBracketRepo struct {
	brackets map[int]*models.Bracket
	nextID   int
}

func newFakeBracketRepo() *fakeBracketRepo {
	return &fakeBracketRepo{brackets: make(map[int]*models.Bracket), nextID: 1}
}

func (f *fakeBracketRepo) add(b *models.Bracket) *models.Bracket {
	if b.ID == 0 {
		b.ID = f.nextID
	}
	if b.ID >= f.nextID {
		f.nextID = b.ID + 1
	}
	copied := *b
	f.brackets[b.ID] = &copied
	return b
}

func (f *fakeBracketRepo) Create(_ context.Context, _ repositories.SQLExecutor, bracket *models.Bracket) error {
	bracket.ID = f.nextID
	f.nextID++
	copied := *bracket
	f.brackets[bracket.ID] = &copied
	return nil
}

func (f *fakeBracketRepo) GetByID(_ context.Context, id int) (*models.Bracket, error) {
	bracket, ok := f.brackets[id]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	copied := *bracket
	return &copied, nil
}

func (f *fakeBracketRepo) ListByEvent(_ context.Context, eventID int) ([]*models.Bracket, error) {
	list := make([]*models.Bracket, 0)
	for _, b := range f.brackets {
		if b.EventID == eventID {
			copied := *b
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (f *fakeBracketRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.BracketStatus) error {
	bracket, ok := f.brackets[id]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	bracket.Status = status
	return nil
}

func (f *fakeBracketRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.brackets[id]; !ok {
		return repositories.ErrBracketNotFound
	}
	delete(f.brackets, id)
	return nil
}

type fakeMatchRepo struct {
	matches  map[int]*models.Match
	brackets *fakeBracketRepo
	nextID   int
}

func newFakeMatchRepo(brackets *fakeBracketRepo) *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), brackets: brackets, nextID: 1}
}

func (f *fakeMatchRepo) add(m *models.Match) *models.Match {
	if m.ID == 0 {
		m.ID = f.nextID
	}
	if m.ID >= f.nextID {
		f.nextID = m.ID + 1
	}
	copied := *m
	f.matches[m.ID] = &copied
	return m
}

func (f *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	match.ID = f.nextID
	f.nextID++
	copied := *match
	f.matches[match.ID] = &copied
	return nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	match, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (f *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeMatchRepo) ListByBracket(_ context.Context, bracketID int) ([]*models.Match, error) {
	list := make([]*models.Match, 0)
	for _, m := range f.matches {
		if m.BracketID == bracketID {
			copied := *m
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].MatchNumber < list[j].MatchNumber })
	return list, nil
}

func (f *fakeMatchRepo) ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error) {
	list := make([]*models.Match, 0)
	for _, m := range f.matches {
		bracket, ok := f.brackets.brackets[m.BracketID]
		if !ok || bracket.EventID != eventID {
			continue
		}
		copied := *m
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (f *fakeMatchRepo) Update(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	if _, ok := f.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	copied := *match
	f.matches[match.ID] = &copied
	return nil
}

func (f *fakeMatchRepo) UpdateNextMatch(_ context.Context, _ repositories.SQLExecutor, matchID int, nextMatchID *int) error {
	match, ok := f.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.NextMatchID = nextMatchID
	return nil
}

type fakeResultRepo struct {
	results []*models.Result
	nextID  int
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{nextID: 1}
}

func (f *fakeResultRepo) add(r *models.Result) {
	if r.ID == 0 {
		r.ID = f.nextID
	}
	if r.ID >= f.nextID {
		f.nextID = r.ID + 1
	}
	copied := *r
	f.results = append(f.results, &copied)
}

func (f *fakeResultRepo) Create(_ context.Context, _ repositories.SQLExecutor, result *models.Result) error {
	for _, existing := range f.results {
		if existing.BracketID == result.BracketID && existing.FighterID == result.FighterID {
			return repositories.ErrResultConflict
		}
	}
	result.ID = f.nextID
	f.nextID++
	copied := *result
	f.results = append(f.results, &copied)
	return nil
}

func (f *fakeResultRepo) ListByBracket(_ context.Context, bracketID int) ([]*models.Result, error) {
	list := make([]*models.Result, 0)
	for _, r := range f.results {
		if r.BracketID == bracketID {
			copied := *r
			list = append(list, &copied)
		}
	}
	return list, nil
}

func (f *fakeResultRepo) ListByEvent(_ context.Context, eventID int) ([]*models.Result, error) {
	list := make([]*models.Result, 0)
	for _, r := range f.results {
		if r.EventID == eventID {
			copied := *r
			list = append(list, &copied)
		}
	}
	return list, nil
}

// fakeBroadcaster копит отправленные сообщения для проверок.
type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []brackets.Message
}

func (f *fakeBroadcaster) BroadcastToRoom(_ string, message interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := message.(brackets.Message); ok {
		f.messages = append(f.messages, msg)
	}
}

func (f *fakeBroadcaster) messagesOfType(messageType string) []brackets.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	filtered := make([]brackets.Message, 0)
	for _, msg := range f.messages {
		if msg.Type == messageType {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}
