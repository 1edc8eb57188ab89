package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/Dosada05/competition-brackets/models"
	"github.com/Dosada05/competition-brackets/repositories"
	"github.com/Dosada05/competition-brackets/storage"
)

// memDB is an in-memory stand-in for the postgres schema. Transactions are
// serialized and rolled back by restoring a snapshot.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	competitions map[int]*models.Competition
	categories   map[int][]models.WeightCategory
	applications []*models.Application

	brackets map[int]models.Bracket
	matches  map[int][]models.Match
	results  map[int][]models.ResultRecord
	nextID   int

	busyGroups map[string]bool
}

func newMemDB() *memDB {
	return &memDB{
		competitions: make(map[int]*models.Competition),
		categories:   make(map[int][]models.WeightCategory),
		brackets:     make(map[int]models.Bracket),
		matches:      make(map[int][]models.Match),
		results:      make(map[int][]models.ResultRecord),
		busyGroups:   make(map[string]bool),
	}
}

func (db *memDB) id() int {
	db.nextID++
	return db.nextID
}

type memSnapshot struct {
	brackets map[int]models.Bracket
	matches  map[int][]models.Match
	results  map[int][]models.ResultRecord
	nextID   int
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := memSnapshot{
		brackets: make(map[int]models.Bracket, len(db.brackets)),
		matches:  make(map[int][]models.Match, len(db.matches)),
		results:  make(map[int][]models.ResultRecord, len(db.results)),
		nextID:   db.nextID,
	}
	for k, v := range db.brackets {
		s.brackets[k] = v
	}
	for k, v := range db.matches {
		s.matches[k] = append([]models.Match(nil), v...)
	}
	for k, v := range db.results {
		s.results[k] = append([]models.ResultRecord(nil), v...)
	}
	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.brackets, db.matches, db.results, db.nextID = s.brackets, s.matches, s.results, s.nextID
}

func (db *memDB) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repositories.SQLExecutor) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	saved := db.snapshot()
	if err := fn(ctx, nil); err != nil {
		db.restore(saved)
		return err
	}
	return nil
}

func (db *memDB) addCompetition(c *models.Competition, categories ...int) {
	db.competitions[c.ID] = c
	for _, id := range categories {
		db.categories[c.ID] = append(db.categories[c.ID], models.WeightCategory{ID: id, CompetitionID: c.ID})
	}
}

func (db *memDB) confirm(competitionID int, entrant models.Entrant) {
	db.mu.Lock()
	defer db.mu.Unlock()
	app := &models.Application{ID: db.id(), CompetitionID: competitionID, Status: models.ApplicationConfirmed}
	id := entrant.ID
	if entrant.Kind == models.EntrantTeam {
		app.TeamID = &id
	} else {
		app.AthleteID = &id
		app.WeightCategoryID = entrant.WeightCategoryID
	}
	db.applications = append(db.applications, app)
}

func (db *memDB) withdraw(entrantID int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	kept := db.applications[:0]
	for _, app := range db.applications {
		if (app.AthleteID != nil && *app.AthleteID == entrantID) || (app.TeamID != nil && *app.TeamID == entrantID) {
			continue
		}
		kept = append(kept, app)
	}
	db.applications = kept
}

func (db *memDB) bracketCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.brackets)
}

// competitions

type memCompetitionRepo struct{ db *memDB }

func (r memCompetitionRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Competition, error) {
	c, ok := r.db.competitions[id]
	if !ok {
		return nil, repositories.ErrCompetitionNotFound
	}
	copied := *c
	return &copied, nil
}

func (r memCompetitionRepo) ListWeightCategories(_ context.Context, _ repositories.SQLExecutor, competitionID int) ([]models.WeightCategory, error) {
	return append([]models.WeightCategory{}, r.db.categories[competitionID]...), nil
}

// applications

type memApplicationRepo struct {
	db  *memDB
	err error
}

func (r memApplicationRepo) ListConfirmed(_ context.Context, _ repositories.SQLExecutor, competitionID int) ([]*models.Application, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	list := make([]*models.Application, 0)
	for _, app := range r.db.applications {
		if app.CompetitionID == competitionID && app.Status == models.ApplicationConfirmed {
			copied := *app
			list = append(list, &copied)
		}
	}
	return list, nil
}

// brackets

type memBracketRepo struct{ db *memDB }

func (r memBracketRepo) Create(_ context.Context, _ repositories.SQLExecutor, b *models.Bracket) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.brackets {
		if existing.GroupKey().String() == b.GroupKey().String() {
			return repositories.ErrBracketExists
		}
	}
	b.ID = r.db.id()
	stored := *b
	stored.Matches = nil
	r.db.brackets[b.ID] = stored
	return nil
}

func (r memBracketRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Bracket, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.brackets[id]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	return &b, nil
}

func (r memBracketRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Bracket, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memBracketRepo) GetByGroup(_ context.Context, _ repositories.SQLExecutor, key models.GroupKey) (*models.Bracket, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, b := range r.db.brackets {
		if b.GroupKey().String() == key.String() {
			return &b, nil
		}
	}
	return nil, repositories.ErrBracketNotFound
}

func (r memBracketRepo) ListByCompetition(_ context.Context, _ repositories.SQLExecutor, competitionID int) ([]*models.Bracket, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	list := make([]*models.Bracket, 0)
	for _, b := range r.db.brackets {
		if b.CompetitionID == competitionID {
			copied := b
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r memBracketRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.brackets[id]; !ok {
		return repositories.ErrBracketNotFound
	}
	delete(r.db.brackets, id)
	delete(r.db.matches, id)
	delete(r.db.results, id)
	return nil
}

func (r memBracketRepo) TryLockGroup(_ context.Context, _ repositories.SQLExecutor, key models.GroupKey) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return !r.db.busyGroups[key.String()], nil
}

// matches

type memMatchRepo struct{ db *memDB }

func (r memMatchRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, bracketID int, matches []*models.Match) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.brackets[bracketID]; !ok {
		return repositories.ErrBracketNotFound
	}
	for _, m := range matches {
		m.ID = r.db.id()
		m.BracketID = bracketID
		r.db.matches[bracketID] = append(r.db.matches[bracketID], *m)
	}
	return nil
}

func (r memMatchRepo) ListByBracket(_ context.Context, _ repositories.SQLExecutor, bracketID int) ([]*models.Match, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	list := make([]*models.Match, 0, len(r.db.matches[bracketID]))
	for _, m := range r.db.matches[bracketID] {
		copied := m
		list = append(list, &copied)
	}
	return list, nil
}

func (r memMatchRepo) Update(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored := r.db.matches[m.BracketID]
	for i := range stored {
		if stored[i].ID == m.ID {
			stored[i] = *m
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

// results

type memResultRepo struct{ db *memDB }

func (r memResultRepo) ReplaceForBracket(_ context.Context, _ repositories.SQLExecutor, bracketID int, records []*models.ResultRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored := make([]models.ResultRecord, 0, len(records))
	for _, rec := range records {
		rec.BracketID = bracketID
		stored = append(stored, *rec)
	}
	r.db.results[bracketID] = stored
	return nil
}

func (r memResultRepo) ListByBracket(_ context.Context, _ repositories.SQLExecutor, bracketID int) ([]*models.ResultRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	list := make([]*models.ResultRecord, 0, len(r.db.results[bracketID]))
	for _, rec := range r.db.results[bracketID] {
		copied := rec
		list = append(list, &copied)
	}
	return list, nil
}

// publisher

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]models.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

// uploader

type memUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (u *memUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.objects == nil {
		u.objects = make(map[string][]byte)
	}
	u.objects[key] = body
	return &storage.UploadResult{Key: key}, nil
}

func (u *memUploader) GetPublicURL(key string) string {
	return "https://archive.example.com/" + key
}

var errBroker = errors.New("broker unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// env wires the services over one memDB.
type env struct {
	db        *memDB
	publisher *recordingPublisher
	uploader  *memUploader

	brackets     BracketService
	matches      MatchService
	regeneration RegenerationService
}

func newEnv(policy RegenerationPolicy) *env {
	db := newMemDB()
	publisher := &recordingPublisher{}
	uploader := &memUploader{}
	logger := discardLogger()

	competitions := memCompetitionRepo{db: db}
	bracketRepo := memBracketRepo{db: db}
	matchRepo := memMatchRepo{db: db}
	resultRepo := memResultRepo{db: db}
	resolver := NewParticipantResolver(competitions, memApplicationRepo{db: db}, logger)

	return &env{
		db:        db,
		publisher: publisher,
		uploader:  uploader,
		brackets: NewBracketService(db, competitions, bracketRepo, matchRepo, resultRepo,
			resolver, publisher, logger),
		matches: NewMatchService(db, bracketRepo, matchRepo, resultRepo,
			"", publisher, logger),
		regeneration: NewRegenerationService(db, competitions, bracketRepo, matchRepo, resultRepo,
			resolver, NewBracketArchiver(uploader, logger), policy, "", publisher, logger),
	}
}

var organizer = models.Actor{UserID: 7, Role: models.RoleOrganizer}

func ptr(v int) *int { return &v }
