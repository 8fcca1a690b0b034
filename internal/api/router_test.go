package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"comply-rag/internal/api/handlers"
	"comply-rag/internal/dto"
	"comply-rag/internal/models"
	"comply-rag/internal/service"
	"comply-rag/pkg/auth"
	"comply-rag/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRunner struct {
	req    service.RunRequest
	events []dto.Event
	err    error
}

func (r *stubRunner) Run(_ context.Context, req service.RunRequest, emit service.Emitter) (*service.RunSummary, error) {
	r.req = req
	for _, e := range r.events {
		if err := emit(e); err != nil {
			return &service.RunSummary{StreamClosed: true}, nil
		}
	}
	return &service.RunSummary{}, r.err
}

type stubReader struct {
	orgID uuid.UUID
	doc   *dto.DocumentResponse
}

func (r *stubReader) GetDocument(_ context.Context, organizationID, documentID uuid.UUID) (*dto.DocumentResponse, error) {
	if organizationID != r.orgID || r.doc == nil || documentID.String() != r.doc.ID {
		return nil, service.ErrDocumentNotFound
	}
	return r.doc, nil
}

func (r *stubReader) ListVersions(_ context.Context, organizationID, documentID, questionID uuid.UUID) ([]*dto.AnswerVersionResponse, error) {
	if organizationID != r.orgID {
		return nil, service.ErrDocumentNotFound
	}
	return []*dto.AnswerVersionResponse{{ID: uuid.NewString(), QuestionID: questionID.String(), Version: 2, IsLatest: true}}, nil
}

type routerFixture struct {
	runner *stubRunner
	reader *stubReader
	jwt    *auth.JWTManager
	orgID  uuid.UUID
	userID uuid.UUID
	token  string
}

func newRouterFixture(t *testing.T) *routerFixture {
	f := &routerFixture{
		runner: &stubRunner{},
		jwt:    auth.NewJWTManager("test-secret"),
		orgID:  uuid.New(),
		userID: uuid.New(),
	}
	f.reader = &stubReader{orgID: f.orgID}

	token, err := f.jwt.GenerateToken(f.userID.String(), f.orgID.String(), time.Hour)
	require.NoError(t, err)
	f.token = token
	return f
}

func (f *routerFixture) do(t *testing.T, method, path, body string, authorized bool) *http.Response {
	logger := zap.NewNop()
	app := SetupRouter(
		handlers.NewAnswerHandler(f.runner, logger),
		handlers.NewDocumentHandler(f.reader, logger),
		f.jwt,
		&config.ServerConfig{},
		logger,
	)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func TestHealthCheck(t *testing.T) {
	f := newRouterFixture(t)

	resp := f.do(t, http.MethodGet, "/check/healthy", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSwaggerDoc(t *testing.T) {
	f := newRouterFixture(t)

	resp := f.do(t, http.MethodGet, "/swagger/doc.json", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Contains(t, doc, "paths")
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	f := newRouterFixture(t)

	resp := f.do(t, http.MethodGet, "/api/v1/documents/"+uuid.NewString(), "", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	f.token = "not-a-jwt"
	resp = f.do(t, http.MethodPost, "/api/v1/documents/"+uuid.NewString()+"/auto-answer", "", true)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetDocument(t *testing.T) {
	f := newRouterFixture(t)
	docID := uuid.New()
	f.reader.doc = &dto.DocumentResponse{ID: docID.String(), TotalQuestions: 3, AnsweredQuestions: 1, Status: "in_progress"}

	resp := f.do(t, http.MethodGet, "/api/v1/documents/"+docID.String(), "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got dto.DocumentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 3, got.TotalQuestions)
	assert.Equal(t, 1, got.AnsweredQuestions)

	resp = f.do(t, http.MethodGet, "/api/v1/documents/"+uuid.NewString(), "", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/v1/documents/not-a-uuid", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListVersions(t *testing.T) {
	f := newRouterFixture(t)
	questionID := uuid.New()

	resp := f.do(t, http.MethodGet, "/api/v1/documents/"+uuid.NewString()+"/questions/"+questionID.String()+"/versions", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []dto.AnswerVersionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, questionID.String(), got[0].QuestionID)
}

func TestAutoAnswer_StreamsNDJSON(t *testing.T) {
	f := newRouterFixture(t)
	docID := uuid.New()
	questionID := uuid.New()
	yes := true
	text := "Access is enforced through SSO."

	answer := dto.NewAnswerEvent(0, models.ClassificationResult{
		QuestionID:    questionID,
		IsApplicable:  &yes,
		Justification: &text,
		Succeeded:     true,
	})
	f.runner.events = []dto.Event{
		dto.NewProgressEvent(1, 0),
		dto.NewProcessingEvent(questionID.String(), 0),
		answer,
		dto.CompleteEvent{Type: dto.EventComplete, Total: 1, Answered: 1, Results: []dto.AnswerEvent{answer}},
	}

	body := `{"questionIds":["` + questionID.String() + `"],"onlyUnanswered":true}`
	resp := f.do(t, http.MethodPost, "/api/v1/documents/"+docID.String()+"/auto-answer", body, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	var types []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		types = append(types, line["type"].(string))
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"progress", "processing", "answer", "complete"}, types)

	assert.Equal(t, docID, f.runner.req.DocumentID)
	assert.Equal(t, f.orgID, f.runner.req.OrganizationID)
	assert.Equal(t, f.userID, f.runner.req.UserID)
	assert.Equal(t, []uuid.UUID{questionID}, f.runner.req.QuestionIDs)
	assert.True(t, f.runner.req.OnlyUnanswered)
}

func TestAutoAnswer_Validation(t *testing.T) {
	f := newRouterFixture(t)
	path := "/api/v1/documents/" + uuid.NewString() + "/auto-answer"

	resp := f.do(t, http.MethodPost, path, `{"questionIds":["nope"]}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = f.do(t, http.MethodPost, path, `{"questionIds":`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/v1/documents/xyz/auto-answer", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
