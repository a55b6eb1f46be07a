package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/career-path/internal/config"
	"github.com/jonathan/career-path/internal/db"
	"github.com/jonathan/career-path/internal/events"
	"github.com/jonathan/career-path/internal/learning"
	"github.com/jonathan/career-path/internal/llm"
	"github.com/jonathan/career-path/internal/prediction"
	"github.com/jonathan/career-path/internal/resume"
	"github.com/jonathan/career-path/internal/search"
	"github.com/jonathan/career-path/internal/server/ratelimit"
	"github.com/jonathan/career-path/internal/storage"
	"github.com/jonathan/career-path/internal/types"
)

// fakeDB is an in-memory DBClient. Lists are kept newest first.
type fakeDB struct {
	mu sync.Mutex

	nextID  int64
	users   map[int64]*db.User
	history map[int64][]types.CareerHistoryEntry
	paths   map[int64][]types.LearningPathEntry
	resumes map[int64][]types.ResumeRecord
	stats   map[int64]*types.UserStats

	recordErr error
	lookupErr error
	pingErr   error
}

var _ DBClient = (*fakeDB)(nil)

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:   map[int64]*db.User{},
		history: map[int64][]types.CareerHistoryEntry{},
		paths:   map[int64][]types.LearningPathEntry{},
		resumes: map[int64][]types.ResumeRecord{},
		stats:   map[int64]*types.UserStats{},
	}
}

func (f *fakeDB) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeDB) CreateUserWithStats(_ context.Context, name, email, passwordHash string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return nil, db.ErrEmailAlreadyExists
		}
	}
	now := time.Now().UTC()
	u := &db.User{
		User: types.User{
			ID:        f.id(),
			Name:      name,
			Email:     email,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: passwordHash,
	}
	f.users[u.ID] = u
	f.stats[u.ID] = &types.UserStats{}
	cp := *u
	return &cp, nil
}

func (f *fakeDB) GetUserByID(_ context.Context, id int64) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeDB) UpdateLastLogin(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return db.ErrNotFound
	}
	now := time.Now().UTC()
	u.LastLogin = &now
	return nil
}

func (f *fakeDB) DeleteUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.users, id)
	delete(f.history, id)
	delete(f.paths, id)
	delete(f.resumes, id)
	delete(f.stats, id)
	return nil
}

func (f *fakeDB) RecordPrediction(_ context.Context, userID int64, in *types.CareerInput, res *types.PredictionResult) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return 0, f.recordErr
	}
	entry := types.CareerHistoryEntry{
		ID:           f.id(),
		Career:       res.PrimaryCareer,
		Confidence:   res.Confidence,
		Alternatives: res.AlternativeCareers,
		Input:        in,
		Date:         time.Now().UTC(),
	}
	f.history[userID] = append([]types.CareerHistoryEntry{entry}, f.history[userID]...)
	st := f.statsFor(userID)
	st.TotalAssessments++
	st.LastAssessmentDate = &entry.Date
	return entry.ID, nil
}

func (f *fakeDB) CareerHistory(_ context.Context, userID int64, limit int) ([]types.CareerHistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.history[userID]
	out := make([]types.CareerHistoryEntry, 0, len(h))
	out = append(out, h[:min(limit, len(h))]...)
	return out, nil
}

func (f *fakeDB) RecordResume(_ context.Context, userID int64, rec types.ResumeRecord) (*types.ResumeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = f.id()
	rec.UploadedAt = time.Now().UTC()
	f.resumes[userID] = append([]types.ResumeRecord{rec}, f.resumes[userID]...)
	st := f.statsFor(userID)
	st.TotalResumesUploaded++
	st.LastResumeUploadDate = &rec.UploadedAt
	return &rec, nil
}

func (f *fakeDB) SaveLearningPath(_ context.Context, userID int64, data json.RawMessage) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	entry := types.LearningPathEntry{
		ID:              f.id(),
		Career:          db.CareerOf(data),
		CompletedPhases: []string{},
		Data:            data,
		Date:            now,
		UpdatedAt:       now,
	}
	f.paths[userID] = append([]types.LearningPathEntry{entry}, f.paths[userID]...)
	f.statsFor(userID).TotalLearningPathsGenerated++
	return entry.ID, nil
}

func (f *fakeDB) LearningPaths(_ context.Context, userID int64, limit int) ([]types.LearningPathEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.paths[userID]
	out := make([]types.LearningPathEntry, 0, len(p))
	out = append(out, p[:min(limit, len(p))]...)
	return out, nil
}

func (f *fakeDB) UpdateLearningPathProgress(_ context.Context, userID, pathID int64, progress int, completed []string) (*types.LearningPathEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.paths[userID] {
		e := &f.paths[userID][i]
		if e.ID == pathID {
			e.Progress = progress
			e.CompletedPhases = completed
			e.UpdatedAt = time.Now().UTC()
			cp := *e
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeDB) DeleteLearningPath(_ context.Context, userID, pathID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.paths[userID] {
		if e.ID == pathID {
			f.paths[userID] = append(f.paths[userID][:i], f.paths[userID][i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (f *fakeDB) GetStats(_ context.Context, userID int64) (*types.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.statsFor(userID)
	return &cp, nil
}

func (f *fakeDB) Ping(context.Context) error { return f.pingErr }

func (f *fakeDB) statsFor(userID int64) *types.UserStats {
	st, ok := f.stats[userID]
	if !ok {
		st = &types.UserStats{}
		f.stats[userID] = st
	}
	return st
}

// failingProvider is an LLM client that is always down.
type failingProvider struct{ name string }

func (p failingProvider) Name() string { return p.name }
func (p failingProvider) GenerateJSON(context.Context, string) (string, error) {
	return "", errors.New(p.name + " unavailable")
}
func (p failingProvider) Close() error { return nil }

// staticBackend is a search backend returning fixed hits.
type staticBackend struct {
	results []types.WebResource
	err     error
}

func (b staticBackend) Name() string { return "static" }
func (b staticBackend) Search(context.Context, string, int) ([]types.WebResource, error) {
	return b.results, b.err
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// testEnv is a server wired to fakes.
type testEnv struct {
	server    *Server
	db        *fakeDB
	jwt       *JWTService
	publisher *recordingPublisher
	store     *storage.MemoryStore
}

type testOption func(*testConfig)

type testConfig struct {
	limiter     *ratelimit.Limiter
	resumeLimit int64
}

func withRateLimiter(l *ratelimit.Limiter) testOption {
	return func(c *testConfig) { c.limiter = l }
}

func withResumeLimit(n int64) testOption {
	return func(c *testConfig) { c.resumeLimit = n }
}

const testResumeBucket = "resumes"

func newTestEnv(t *testing.T, opts ...testOption) *testEnv {
	t.Helper()
	var cfg testConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := zaptest.NewLogger(t)

	fdb := newFakeDB()
	store := storage.NewMemoryStore()
	publisher := &recordingPublisher{}
	jwtService := setupTestJWTService(t, 60)

	searchSvc := search.New(search.Options{Logger: logger}, staticBackend{results: []types.WebResource{
		{Title: "Intro course", URL: "https://example.com/course", Snippet: "Learn it", Source: "static"},
	}})

	o := Options{
		Port:      0,
		Predictor: prediction.NewPredictor(nil, 3),
		Learning: learning.NewService(learning.Options{
			Providers: []llm.Client{failingProvider{name: "openai"}, failingProvider{name: "gemini"}},
			Timeout:   time.Second,
			Search:    searchSvc,
			Logger:    logger,
		}),
		Search:      searchSvc,
		Intake:      resume.NewIntake(store, testResumeBucket, cfg.resumeLimit, logger),
		DB:          fdb,
		JWT:         jwtService,
		Password:    &config.PasswordConfig{BcryptCost: bcrypt.MinCost},
		Publisher:   publisher,
		RateLimiter: cfg.limiter,
		Logger:      logger,
	}

	s, err := New(o)
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)

	return &testEnv{server: s, db: fdb, jwt: jwtService, publisher: publisher, store: store}
}
