package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/llm"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/qr"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/repository"

	"go.uber.org/zap"
)

const scamJSON = `{
  "informationStatus": "SCAM",
  "possibilityScore": {"true": 4, "falseOrScam": 96},
  "informationType": ["Phishing"],
  "detailedAnalysis": {
    "psychologicalTriggers": ["Urgency"],
    "languageAnalysis": ["Generic Greeting"],
    "requestAnalysis": ["Asks for Personal Info"],
    "videoAnalysis": ["Blurring or artifacts"]
  },
  "simpleExplanation": "It asks for your PIN.",
  "warningOrSafetyAdvice": "Never share your PIN.",
  "finalVerdict": "Scam."
}`

const unsafeURLJSON = `{"safetyStatus":"Unsafe","reason":"lookalike domain","risk":"credential theft","advice":"Do not open it."}`

// fakeProvider answers GenerateJSON from a script and hands out scripted chat sessions
type fakeProvider struct {
	mu        sync.Mutex
	responses []string
	err       error
	block     bool
	requests  []*llm.Request

	session      *fakeSession
	chatTools    [][]llm.ToolDeclaration
	instructions []string
}

func (p *fakeProvider) GenerateJSON(ctx context.Context, req *llm.Request) (string, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	idx := len(p.requests) - 1
	p.mu.Unlock()

	if p.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if p.err != nil {
		return "", p.err
	}
	if idx < len(p.responses) {
		return p.responses[idx], nil
	}
	return p.responses[len(p.responses)-1], nil
}

func (p *fakeProvider) StartChat(instruction string, tools []llm.ToolDeclaration) llm.ChatSession {
	p.instructions = append(p.instructions, instruction)
	p.chatTools = append(p.chatTools, tools)
	return p.session
}

func (p *fakeProvider) Close() error { return nil }

func (p *fakeProvider) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{"provider": "fake"}
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

type fakeSession struct {
	first      *llm.ChatReply
	firstErr   error
	final      *llm.ChatReply
	finalErr   error
	sent       []string
	toolName   string
	toolResult map[string]any
	toolCalls  int
}

func (s *fakeSession) Send(ctx context.Context, text string) (*llm.ChatReply, error) {
	s.sent = append(s.sent, text)
	if s.firstErr != nil {
		return nil, s.firstErr
	}
	return s.first, nil
}

func (s *fakeSession) SendToolResult(ctx context.Context, name string, result map[string]any) (*llm.ChatReply, error) {
	s.toolCalls++
	s.toolName = name
	s.toolResult = result
	if s.finalErr != nil {
		return nil, s.finalErr
	}
	return s.final, nil
}

type fakeQR struct {
	decoded qr.Decoded
	ok      bool
}

func (f fakeQR) Decode(payload *models.MediaPayload) (qr.Decoded, bool) {
	return f.decoded, f.ok
}

type fakeSprites struct {
	calls int
	err   error
}

func (f *fakeSprites) Sprite(ctx context.Context, video *models.MediaPayload) (*models.MediaPayload, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.MediaPayload{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}, Name: video.Name}, nil
}

var errStoreDown = errors.New("store down")

type failingRepo struct{}

func (failingRepo) Save(ctx context.Context, rec *models.HistoryRecord) error { return errStoreDown }

func (failingRepo) Recent(ctx context.Context, userID string, limit int) ([]*models.HistoryRecord, error) {
	return nil, errStoreDown
}

func (failingRepo) ListByUser(ctx context.Context, userID string) ([]*models.HistoryRecord, error) {
	return nil, errStoreDown
}

func (failingRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, errStoreDown
}

type failingSessions struct{}

func (failingSessions) Prepend(ctx context.Context, sessionID string, item *models.HistoryItem) error {
	return errStoreDown
}

func (failingSessions) List(ctx context.Context, sessionID string) ([]*models.HistoryItem, error) {
	return nil, errStoreDown
}

func (failingSessions) Clear(ctx context.Context, sessionID string) error { return errStoreDown }

func newSQLiteRepo(t *testing.T) repository.HistoryRepository {
	t.Helper()
	logger := zap.NewNop()
	db, err := repository.Open(repository.DialectSQLite, ":memory:", logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := repository.Migrate(db, repository.DialectSQLite, logger); err != nil {
		t.Fatal(err)
	}
	return repository.NewHistoryRepository(db, logger)
}

type harness struct {
	provider *fakeProvider
	sprites  *fakeSprites
	history  *HistoryService
	sessions *repository.MemorySessionStore
	pipeline *Pipeline
}

func newHarness(t *testing.T, provider *fakeProvider, decoder QRDecoder, repo repository.HistoryRepository) *harness {
	t.Helper()
	logger := zap.NewNop()
	sessions := repository.NewMemorySessionStore(time.Hour)
	history := NewHistoryService(sessions, repo, nil, logger)
	sprites := &fakeSprites{}
	analyzer := NewAnalyzer(provider, time.Second, nil, logger)
	if decoder == nil {
		decoder = fakeQR{}
	}
	return &harness{
		provider: provider,
		sprites:  sprites,
		history:  history,
		sessions: sessions,
		pipeline: NewPipeline(decoder, sprites, analyzer, history, nil, logger),
	}
}
