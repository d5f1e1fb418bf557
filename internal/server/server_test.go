package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/wedding-gallery/internal/domain"
	apperrors "github.com/orgball2608/wedding-gallery/pkg/errors"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
)

type fakeMedia struct {
	listSort   domain.SortOption
	listFilter domain.TypeFilter
	likes      map[string]int
	likeErr    error
	removed    int64
	cleanups   int
	uploadErr  error
	uploaded   []domain.UploadedFile
}

func (f *fakeMedia) List(_ context.Context, sort domain.SortOption, filter domain.TypeFilter) []domain.Media {
	f.listSort, f.listFilter = sort, filter
	return []domain.Media{{ID: "m1", Likes: 3, Kind: domain.MediaKindImage}}
}

func (f *fakeMedia) Get(_ context.Context, id string) (*domain.Media, error) {
	if id != "m1" {
		return nil, apperrors.ErrNotFound
	}
	return &domain.Media{ID: "m1", Likes: 3}, nil
}

func (f *fakeMedia) IncrementLike(_ context.Context, id string) (int, error) {
	if f.likeErr != nil {
		return 0, f.likeErr
	}
	n, ok := f.likes[id]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	f.likes[id] = n + 1
	return n + 1, nil
}

func (f *fakeMedia) CleanupStale(context.Context) int64 {
	f.cleanups++
	return f.removed
}

func (f *fakeMedia) RecordUpload(_ context.Context, file domain.UploadedFile) (*domain.Media, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploaded = append(f.uploaded, file)
	return &domain.Media{ID: "new", URL: file.URL, Name: file.Name}, nil
}

type fakeBoard struct{ posted []string }

func (b *fakeBoard) Post(_ context.Context, name, content string) (*domain.Message, error) {
	b.posted = append(b.posted, content)
	return &domain.Message{ID: "msg", Name: name, Content: content}, nil
}

func (b *fakeBoard) List(context.Context) []domain.Message {
	return []domain.Message{{ID: "msg", Name: "Linh", Content: "Congrats"}}
}

type fakeGuests struct{}

func (fakeGuests) Register(_ context.Context, name, email string) (*domain.Guest, error) {
	return &domain.Guest{ID: "g1", Name: name, Email: email}, nil
}

type allowAll struct{ denied bool }

func (a allowAll) Allow(string) bool { return !a.denied }

const testOperatorToken = "op-secret"

func newTestRouter(media *fakeMedia, board *fakeBoard, limiterDenies bool) *gin.Engine {
	return newTestRouterWithToken(media, board, limiterDenies, testOperatorToken)
}

func newTestRouterWithToken(media *fakeMedia, board *fakeBoard, limiterDenies bool, token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(media, board, fakeGuests{}, http.NotFoundHandler(), logger.NewNop())
	return h.Router(allowAll{denied: limiterDenies}, token, false)
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	return doAs(r, method, path, body, "")
}

func doAs(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListMediaParsesQuery(t *testing.T) {
	media := &fakeMedia{}
	r := newTestRouter(media, &fakeBoard{}, false)

	w := do(r, http.MethodGet, "/api/media?sort=likes&type=videos", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if media.listSort != domain.SortLikes || media.listFilter != domain.FilterVideos {
		t.Fatalf("List called with %q, %q", media.listSort, media.listFilter)
	}

	var body struct {
		Media []domain.Media `json:"media"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Media) != 1 || body.Media[0].ID != "m1" {
		t.Fatalf("media = %+v", body.Media)
	}

	do(r, http.MethodGet, "/api/media?sort=bogus&type=gifs", "")
	if media.listSort != domain.SortRecent || media.listFilter != domain.FilterAll {
		t.Fatalf("unknown values parsed as %q, %q", media.listSort, media.listFilter)
	}
}

func TestGetMedia(t *testing.T) {
	r := newTestRouter(&fakeMedia{}, &fakeBoard{}, false)

	if w := do(r, http.MethodGet, "/api/media/m1", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"id":"m1"`) {
		t.Fatalf("get m1: status %d body %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/api/media/ghost", ""); w.Code != http.StatusNotFound {
		t.Fatalf("get ghost: status %d", w.Code)
	}
}

func TestLikeMedia(t *testing.T) {
	media := &fakeMedia{likes: map[string]int{"m1": 3}}
	r := newTestRouter(media, &fakeBoard{}, false)

	w := do(r, http.MethodPost, "/api/media/m1/like", "")
	var got likeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.Code != http.StatusOK || !got.Success || got.Likes != 4 {
		t.Fatalf("like m1: status %d body %+v", w.Code, got)
	}

	w = do(r, http.MethodPost, "/api/media/ghost/like", "")
	got = likeResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if w.Code != http.StatusNotFound || got.Success || got.Error == "" {
		t.Fatalf("like ghost: status %d body %+v", w.Code, got)
	}

	media.likeErr = errors.New("db down")
	w = do(r, http.MethodPost, "/api/media/m1/like", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("like with db error: status %d", w.Code)
	}
}

func TestWritesAreRateLimited(t *testing.T) {
	media := &fakeMedia{likes: map[string]int{"m1": 0}}
	r := newTestRouter(media, &fakeBoard{}, true)

	if w := do(r, http.MethodPost, "/api/media/m1/like", ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if media.likes["m1"] != 0 {
		t.Fatal("limited request reached the service")
	}
	if w := doAs(r, http.MethodPost, "/api/media/cleanup", "", testOperatorToken); w.Code != http.StatusTooManyRequests {
		t.Fatalf("cleanup status = %d, want 429", w.Code)
	}
	if media.cleanups != 0 {
		t.Fatal("limited cleanup reached the service")
	}
	if w := do(r, http.MethodGet, "/api/media", ""); w.Code != http.StatusOK {
		t.Fatalf("reads must not be limited, status = %d", w.Code)
	}
}

func TestCleanupMedia(t *testing.T) {
	media := &fakeMedia{removed: 2}
	r := newTestRouter(media, &fakeBoard{}, false)

	w := doAs(r, http.MethodPost, "/api/media/cleanup", "", testOperatorToken)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"removed":2`) {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if media.cleanups != 1 {
		t.Fatalf("cleanups = %d, want 1", media.cleanups)
	}
}

func TestCleanupRequiresOperatorToken(t *testing.T) {
	media := &fakeMedia{removed: 2}
	r := newTestRouter(media, &fakeBoard{}, false)

	for _, token := range []string{"", "guess"} {
		w := doAs(r, http.MethodPost, "/api/media/cleanup", "", token)
		if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), `"unauthorized"`) {
			t.Fatalf("token %q: status %d body %s", token, w.Code, w.Body.String())
		}
	}

	closed := newTestRouterWithToken(media, &fakeBoard{}, false, "")
	if w := doAs(closed, http.MethodPost, "/api/media/cleanup", "", "anything"); w.Code != http.StatusForbidden {
		t.Fatalf("no configured token: status = %d, want 403", w.Code)
	}

	if media.cleanups != 0 {
		t.Fatalf("rejected requests ran cleanup %d times", media.cleanups)
	}
}

func TestCompleteUpload(t *testing.T) {
	media := &fakeMedia{}
	r := newTestRouter(media, &fakeBoard{}, false)

	w := do(r, http.MethodPost, "/api/uploads/complete",
		`{"url":"https://utfs.io/f/vows.mp4","name":"Bao","type":"video/mp4","size":1024,"duration":9.5}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if len(media.uploaded) != 1 || media.uploaded[0].MIMEType != "video/mp4" {
		t.Fatalf("uploaded = %+v", media.uploaded)
	}

	if w := do(r, http.MethodPost, "/api/uploads/complete", `{"type":"image/png"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing url: status = %d", w.Code)
	}

	w = do(r, http.MethodPost, "/api/uploads/complete", `{"url":"https://utfs.io/f/a.pdf","type":"application/pdf"}`)
	if w.Code != http.StatusBadRequest || len(media.uploaded) != 1 {
		t.Fatalf("pdf upload: status %d, uploads %d", w.Code, len(media.uploaded))
	}

	media.uploadErr = apperrors.WrapWithCode(apperrors.ErrInvalidInput, "missing_url", "uploaded file has no url")
	w = do(r, http.MethodPost, "/api/uploads/complete", `{"url":"https://utfs.io/f/a.png","type":"image/png"}`)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "missing_url") {
		t.Fatalf("service rejection: status %d body %s", w.Code, w.Body.String())
	}

	media.uploadErr = errors.New("db down")
	w = do(r, http.MethodPost, "/api/uploads/complete", `{"url":"https://utfs.io/f/a.png","type":"image/png"}`)
	if w.Code != http.StatusInternalServerError || strings.Contains(w.Body.String(), "db down") {
		t.Fatalf("internal error: status %d body %s", w.Code, w.Body.String())
	}
}

func TestPostMessageValidation(t *testing.T) {
	board := &fakeBoard{}
	r := newTestRouter(&fakeMedia{}, board, false)

	cases := []string{
		`{"name":"A","content":"hi"}`,
		`{"name":"Anna","content":""}`,
		`{"name":"Anna","content":"` + strings.Repeat("x", 501) + `"}`,
		`not json`,
	}
	for _, body := range cases {
		if w := do(r, http.MethodPost, "/api/messages", body); w.Code != http.StatusBadRequest {
			t.Errorf("POST %q status = %d, want 400", body[:min(len(body), 40)], w.Code)
		}
	}
	if len(board.posted) != 0 {
		t.Fatalf("invalid messages reached the board: %v", board.posted)
	}

	if w := do(r, http.MethodPost, "/api/messages", `{"name":"Anna","content":"Happy wedding!"}`); w.Code != http.StatusCreated {
		t.Fatalf("valid message status = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/messages", ""); !strings.Contains(w.Body.String(), "Congrats") {
		t.Fatalf("list body = %s", w.Body.String())
	}
}

func TestRegisterGuest(t *testing.T) {
	r := newTestRouter(&fakeMedia{}, &fakeBoard{}, false)

	if w := do(r, http.MethodPost, "/api/guests", `{"name":"Hoa","email":"nope"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad email status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/guests", `{"name":"Hoa","email":"hoa@example.com"}`); w.Code != http.StatusOK {
		t.Fatalf("valid guest status = %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(&fakeMedia{}, &fakeBoard{}, false)
	if w := do(r, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
