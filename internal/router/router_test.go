package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"coverline/internal/config"
	"coverline/internal/domain"
	"coverline/internal/handler"
	"coverline/internal/router"
	"coverline/internal/service"
	"coverline/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type fixture struct {
	engine *gin.Engine
	pool   *mocks.MockExtractionSubmitter
	docs   *mocks.MockDocumentService
	review *mocks.MockReviewService
}

func newFixture(secret string) *fixture {
	f := &fixture{
		pool:   new(mocks.MockExtractionSubmitter),
		docs:   new(mocks.MockDocumentService),
		review: new(mocks.MockReviewService),
	}
	f.engine = router.Setup(router.Handlers{
		Extraction: handler.NewExtractionHandler(f.pool),
		Document:   handler.NewDocumentHandler(f.docs),
		Benefit:    handler.NewBenefitHandler(f.review),
		Health:     handler.NewHealthHandler(okPinger{}, "test", handler.HealthFlags{SecretConfigured: secret != ""}),
	}, &config.AuthConfig{SharedSecret: secret, ReviewerJWTSecret: "jwt-key"}, &config.CORSConfig{}, zap.NewNop())
	return f
}

func (f *fixture) do(method, path, body, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	f.engine.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthAndMetricsArePublic(t *testing.T) {
	f := newFixture("s3cret")

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/readyz", "", "").Code)

	w := f.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRouter_ExtractRequiresSecret(t *testing.T) {
	f := newFixture("s3cret")
	docID := uuid.New()
	body := `{"documentId":"` + docID.String() + `"}`

	w := f.do(http.MethodPost, "/extract", body, "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	f.pool.AssertNotCalled(t, "Submit", mock.Anything)

	f.pool.On("Submit", docID).Return(&service.Job{DocumentID: docID}, nil)
	w = f.do(http.MethodPost, "/extract", body, "Bearer s3cret")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ExtractOpenWithoutSecret(t *testing.T) {
	f := newFixture("")
	docID := uuid.New()
	f.pool.On("Submit", docID).Return(&service.Job{DocumentID: docID}, nil)

	w := f.do(http.MethodPost, "/extract", `{"documentId":"`+docID.String()+`"}`, "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_StatusRoute(t *testing.T) {
	f := newFixture("s3cret")
	docID := uuid.New()
	f.docs.On("GetByID", mock.Anything, docID).
		Return(&domain.Document{ID: docID, ProcessingStatus: domain.ProcessingStatusProcessing}, nil)

	w := f.do(http.MethodGet, "/api/v1/documents/"+docID.String()+"/status", "", "Bearer s3cret")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"processing_status":"processing"`)
}

func TestRouter_ReviewRoutesRequireReviewerToken(t *testing.T) {
	f := newFixture("s3cret")
	id := uuid.New().String()

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/benefits/review-queue"},
		{http.MethodGet, "/api/v1/benefits/" + id},
		{http.MethodPost, "/api/v1/benefits/" + id + "/approve"},
		{http.MethodPost, "/api/v1/benefits/" + id + "/reject"},
		{http.MethodPut, "/api/v1/benefits/" + id + "/data"},
		{http.MethodGet, "/api/v1/benefits/" + id + "/revisions"},
		{http.MethodDelete, "/api/v1/documents/" + id},
	}
	for _, rt := range routes {
		// The shared secret is not a reviewer credential.
		w := f.do(rt.method, rt.path, "", "Bearer s3cret")
		assert.Equal(t, http.StatusUnauthorized, w.Code, rt.method+" "+rt.path)
	}
}
