package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/classifier"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/qr"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/schema"
)

var anon = Actor{SessionID: "sess-1"}

func TestPipeline_RejectsBeforeModelCall(t *testing.T) {
	tests := []struct {
		name string
		form classifier.Form
	}{
		{"short text", classifier.Form{Category: models.CategoryText, Content: "pay now"}},
		{"19 chars", classifier.Form{Category: models.CategoryText, Content: strings.Repeat("x", 19)}},
		{"missing image", classifier.Form{Category: models.CategoryImage}},
		{"bad url", classifier.Form{Category: models.CategoryURL, URL: "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, &fakeProvider{responses: []string{scamJSON}}, nil, nil)

			_, err := h.pipeline.Submit(context.Background(), anon, tt.form)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if h.provider.calls() != 0 {
				t.Errorf("model called %d times for invalid input", h.provider.calls())
			}
			items := h.history.Session(context.Background(), anon.SessionID)
			if len(items) != 0 {
				t.Error("invalid submission reached history")
			}
		})
	}
}

func TestPipeline_HistoryMostRecentFirst(t *testing.T) {
	h := newHarness(t, &fakeProvider{responses: []string{scamJSON}}, nil, nil)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		item, err := h.pipeline.Submit(ctx, anon, classifier.Form{
			Category: models.CategoryText,
			Content:  fmt.Sprintf("message number %d asking for your bank PIN", i),
		})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		ids = append(ids, item.ID)
	}

	first := h.history.Session(ctx, anon.SessionID)
	if len(first) != 4 {
		t.Fatalf("history has %d items, want 4", len(first))
	}
	for i := range first {
		if first[i].ID != ids[len(ids)-1-i] {
			t.Errorf("position %d = %s, want %s", i, first[i].ID, ids[len(ids)-1-i])
		}
	}

	// unrelated reads neither reorder nor mutate
	first[0].Prompt.Content = "changed"
	second := h.history.Session(ctx, anon.SessionID)
	for i := range second {
		if second[i].ID != first[i].ID {
			t.Errorf("read reordered history at %d", i)
		}
	}
	if second[0].Prompt.Content == "changed" {
		t.Error("read result shares state with the store")
	}
}

func TestPipeline_QRCode(t *testing.T) {
	qrImage := &models.MediaPayload{MIMEType: "image/png", Data: []byte{1}, Name: "qr.png"}

	t.Run("url reroutes to url analysis", func(t *testing.T) {
		decoder := fakeQR{ok: true, decoded: qr.Classify("https://example.com/pay")}
		h := newHarness(t, &fakeProvider{responses: []string{unsafeURLJSON}}, decoder, nil)

		item, err := h.pipeline.Submit(context.Background(), anon, classifier.Form{Category: models.CategoryQRCode, QRCode: qrImage})
		if err != nil {
			t.Fatal(err)
		}
		if item.Verdict.Kind != models.VerdictURL || item.Prompt.Type != models.CategoryURL {
			t.Errorf("unexpected item %+v", item)
		}
		if item.Prompt.Content != "https://example.com/pay" {
			t.Errorf("prompt content = %q", item.Prompt.Content)
		}
		if h.provider.requests[0].Template != schema.TemplateURL {
			t.Errorf("template = %s", h.provider.requests[0].Template)
		}
	})

	t.Run("short text skips length rule and keeps qr source", func(t *testing.T) {
		decoder := fakeQR{ok: true, decoded: qr.Classify("hello world")}
		h := newHarness(t, &fakeProvider{responses: []string{scamJSON}}, decoder, nil)

		item, err := h.pipeline.Submit(context.Background(), anon, classifier.Form{Category: models.CategoryQRCode, QRCode: qrImage})
		if err != nil {
			t.Fatal(err)
		}
		if item.Prompt.Type != models.CategoryText || item.Prompt.Content != "hello world" {
			t.Errorf("unexpected prompt %+v", item.Prompt)
		}
		if !strings.Contains(h.provider.requests[0].Prompt, "Source: qrcode") {
			t.Error("qr source hint not forwarded")
		}
	})

	t.Run("undecodable halts without model call", func(t *testing.T) {
		h := newHarness(t, &fakeProvider{responses: []string{scamJSON}}, fakeQR{ok: false}, nil)

		_, err := h.pipeline.Submit(context.Background(), anon, classifier.Form{Category: models.CategoryQRCode, QRCode: qrImage})
		if !errors.Is(err, models.ErrQRDecodeFailed) {
			t.Fatalf("err = %v", err)
		}
		if h.provider.calls() != 0 {
			t.Error("model called after decode failure")
		}
	})
}

func TestPipeline_Video(t *testing.T) {
	video := &models.MediaPayload{MIMEType: "video/mp4", Data: []byte{0, 0, 0, 0x18}, Name: "clip.mp4"}

	t.Run("sprite replaces video and keeps video findings", func(t *testing.T) {
		h := newHarness(t, &fakeProvider{responses: []string{scamJSON}}, nil, nil)

		item, err := h.pipeline.Submit(context.Background(), anon, classifier.Form{Category: models.CategoryVideo, Video: video})
		if err != nil {
			t.Fatal(err)
		}
		if h.sprites.calls != 1 {
			t.Errorf("sprite built %d times", h.sprites.calls)
		}
		req := h.provider.requests[0]
		if req.Media == nil || req.Media.MIMEType != "image/jpeg" {
			t.Errorf("model did not receive the sprite: %+v", req.Media)
		}
		if !strings.Contains(req.Prompt, "Source: video") || !strings.Contains(req.Prompt, "keyframes from a video") {
			t.Error("video instruction missing from prompt")
		}
		if item.Prompt.Content != "Video: clip.mp4" {
			t.Errorf("prompt content = %q", item.Prompt.Content)
		}
		if len(item.Verdict.Content.DetailedAnalysis.VideoAnalysis) == 0 {
			t.Error("video findings dropped for a video submission")
		}
	})

	t.Run("decode failure aborts", func(t *testing.T) {
		h := newHarness(t, &fakeProvider{responses: []string{scamJSON}}, nil, nil)
		h.sprites.err = fmt.Errorf("%w: no duration", models.ErrMediaDecode)

		_, err := h.pipeline.Submit(context.Background(), anon, classifier.Form{Category: models.CategoryVideo, Video: video})
		if !errors.Is(err, models.ErrMediaDecode) {
			t.Fatalf("err = %v", err)
		}
		if h.provider.calls() != 0 {
			t.Error("model called after media failure")
		}
	})
}

func TestPipeline_ImageStripsVideoFindings(t *testing.T) {
	h := newHarness(t, &fakeProvider{responses: []string{scamJSON}}, nil, nil)
	img := &models.MediaPayload{MIMEType: "image/png", Data: []byte{1}, Name: "shot.png"}

	item, err := h.pipeline.Submit(context.Background(), anon, classifier.Form{Category: models.CategoryImage, Image: img})
	if err != nil {
		t.Fatal(err)
	}
	if item.Verdict.Content.DetailedAnalysis.VideoAnalysis != nil {
		t.Error("videoAnalysis kept for a non-video submission")
	}
	if item.Prompt.Content != "Image: shot.png" {
		t.Errorf("prompt content = %q", item.Prompt.Content)
	}
}

func TestPipeline_ContractViolationNotRecorded(t *testing.T) {
	bad := strings.Replace(scamJSON, `"SCAM"`, `"PROBABLY_SCAM"`, 1)
	h := newHarness(t, &fakeProvider{responses: []string{bad}}, nil, nil)

	_, err := h.pipeline.Submit(context.Background(), anon, classifier.Form{
		Category: models.CategoryText,
		Content:  "Your parcel is held, pay customs fee at this link",
	})
	var cerr *models.ModelContractError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ModelContractError, got %v", err)
	}
	items := h.history.Session(context.Background(), anon.SessionID)
	if len(items) != 0 {
		t.Error("rejected verdict reached history")
	}
}

func TestPipeline_StoreFailureDoesNotBlockVerdict(t *testing.T) {
	provider := &fakeProvider{responses: []string{scamJSON}}
	h := newHarness(t, provider, nil, failingRepo{})
	h.history.sessions = failingSessions{}

	item, err := h.pipeline.Submit(context.Background(), Actor{SessionID: "s", UserID: "u"}, classifier.Form{
		Category: models.CategoryText,
		Content:  "Congratulations, you won a free iPhone, claim now",
	})
	if err != nil {
		t.Fatalf("store failure leaked into the primary flow: %v", err)
	}
	if item == nil || item.Verdict.Content.InformationStatus != models.StatusScam {
		t.Fatalf("verdict not returned: %+v", item)
	}
	if item.AnalysisTimestamp != nil {
		t.Error("timestamp set although persistence failed")
	}
}

func TestPipeline_PersistsForSignedInUser(t *testing.T) {
	repo := newSQLiteRepo(t)
	h := newHarness(t, &fakeProvider{responses: []string{unsafeURLJSON}}, nil, repo)
	actor := Actor{SessionID: "s", UserID: "alice"}

	item, err := h.pipeline.Submit(context.Background(), actor, classifier.Form{Category: models.CategoryURL, URL: "https://examp1e-bank.xyz/login"})
	if err != nil {
		t.Fatal(err)
	}
	if item.AnalysisTimestamp == nil {
		t.Error("persisted item should carry the server timestamp")
	}

	records, err := repo.Recent(context.Background(), "alice", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("stored %d records", len(records))
	}
	rec := records[0]
	if rec.InformationStatus != models.StatusScam || rec.ProbabilityFalseScam != 95 || rec.InformationType != "credential theft" {
		t.Errorf("unexpected flattened record %+v", rec)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&models.ValidationError{Field: "url"}, "invalid"},
		{models.ErrQRDecodeFailed, "qr_undecodable"},
		{fmt.Errorf("%w: x", models.ErrMediaDecode), "media_error"},
		{fmt.Errorf("%w after 1s", models.ErrModelTimeout), "timeout"},
		{&models.ModelContractError{Err: errors.New("x")}, "contract_error"},
		{&models.ModelCallError{Err: errors.New("x")}, "model_error"},
		{errors.New("other"), "error"},
	}
	for _, tt := range tests {
		if got := outcome(tt.err); got != tt.want {
			t.Errorf("outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
