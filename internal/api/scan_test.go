package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/treatyourshelf/backend/internal/service"
	"github.com/treatyourshelf/backend/internal/types"
)

const testRecipeBatch = `[
	{"id":1,"title":"Garlic Fried Rice","match":95,"ingredients":["rice","egg","garlic"],"description":"Quick fried rice.","directions":["Cook rice.","Fry it."],"category":"Main Course","dietary_tags":["vegetarian"],"skill_level":"beginner"}
]`

// modelRequest mirrors the upstream generateContent request shape.
type modelRequest struct {
	Contents []struct {
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MimeType string `json:"mime_type"`
				Data     string `json:"data"`
			} `json:"inline_data"`
		} `json:"parts"`
	} `json:"contents"`
}

func modelResponse(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	})
	if err != nil {
		t.Fatalf("failed to marshal mock response: %v", err)
	}
	return body
}

// mockModelServer answers extraction requests (those carrying inline image
// data) and generation requests with canned text, counting total calls and
// recording the last generation prompt.
type mockModelServer struct {
	*httptest.Server
	calls      int32
	lastPrompt atomic.Value
}

func newMockModelServer(t *testing.T, extraction, generation string) *mockModelServer {
	t.Helper()
	m := &mockModelServer{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.calls, 1)

		var req modelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode model request: %v", err)
			return
		}
		parts := req.Contents[0].Parts
		if parts[0].InlineData != nil {
			w.Write(modelResponse(t, extraction))
			return
		}
		m.lastPrompt.Store(parts[0].Text)
		w.Write(modelResponse(t, generation))
	}))
	t.Cleanup(m.Server.Close)
	return m
}

func (m *mockModelServer) callCount() int32 {
	return atomic.LoadInt32(&m.calls)
}

func (m *mockModelServer) prompt() string {
	if v := m.lastPrompt.Load(); v != nil {
		return v.(string)
	}
	return ""
}

// newScanRouter wires the scan handler against a mock model and an optional
// database.
func newScanRouter(t *testing.T, serverURL string, db *gorm.DB) *gin.Engine {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_API_URL", serverURL)

	llm, err := service.NewGeminiClient()
	if err != nil {
		t.Fatalf("failed to create model client: %v", err)
	}

	scans := service.NewScanService(
		service.NewIngredientExtractor(llm),
		service.NewRecipeGenerator(llm),
		nil, db, nil)

	var preferences *service.PreferenceService
	if db != nil {
		preferences = service.NewPreferenceService(db)
	}

	handler := NewScanHandler(scans, preferences, service.NewAuthService(testJWTSecret), 0)
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

// scanRequest builds the multipart POST. A nil image omits the file part; an
// empty prefs string omits the preferences part.
func scanRequest(t *testing.T, token string, image []byte, prefs string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if image != nil {
		part, err := writer.CreateFormFile("image", "pantry.jpg")
		if err != nil {
			t.Fatalf("failed to create image part: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("failed to write image part: %v", err)
		}
	}
	if prefs != "" {
		if err := writer.WriteField("preferences", prefs); err != nil {
			t.Fatalf("failed to write preferences part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestScanRequiresAuth(t *testing.T) {
	server := newMockModelServer(t, "[]", "[]")
	router := newScanRouter(t, server.URL, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, scanRequest(t, "", []byte("img"), ""))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if server.callCount() != 0 {
		t.Fatalf("model called %d times on unauthenticated request", server.callCount())
	}
}

func TestScanMissingImage(t *testing.T) {
	server := newMockModelServer(t, "[]", "[]")
	router := newScanRouter(t, server.URL, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, scanRequest(t, authToken(t, uuid.New()), nil, ""))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "image file is required") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if server.callCount() != 0 {
		t.Fatalf("model called %d times without an image", server.callCount())
	}
}

func TestScanEmptyImageFile(t *testing.T) {
	server := newMockModelServer(t, "[]", "[]")
	router := newScanRouter(t, server.URL, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, scanRequest(t, authToken(t, uuid.New()), []byte{}, ""))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if server.callCount() != 0 {
		t.Fatalf("model called %d times with an empty image", server.callCount())
	}
}

func TestScanMalformedPreferences(t *testing.T) {
	server := newMockModelServer(t, "[]", "[]")
	router := newScanRouter(t, server.URL, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, scanRequest(t, authToken(t, uuid.New()), []byte("img"), "{not json"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid preferences JSON") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if server.callCount() != 0 {
		t.Fatalf("model called %d times despite malformed preferences", server.callCount())
	}
}

func TestScanSuccess(t *testing.T) {
	server := newMockModelServer(t, `["rice","egg","garlic"]`, testRecipeBatch)
	router := newScanRouter(t, server.URL, nil)

	w := httptest.NewRecorder()
	prefs := `{"allergies":["peanuts"],"meal_type":"dinner"}`
	router.ServeHTTP(w, scanRequest(t, authToken(t, uuid.New()), []byte("img"), prefs))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var result types.ScanResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if want := []string{"rice", "egg", "garlic"}; !reflect.DeepEqual(result.DetectedIngredients, want) {
		t.Fatalf("detected ingredients = %v, want %v", result.DetectedIngredients, want)
	}
	if len(result.Recipes) != 1 || result.Recipes[0].Title != "Garlic Fried Rice" {
		t.Fatalf("unexpected recipes: %v", result.Recipes)
	}
	if result.Recipes[0].Fingerprint == "" {
		t.Fatal("recipe missing fingerprint")
	}
	if !strings.Contains(server.prompt(), "MUST avoid: peanuts") {
		t.Fatalf("preferences did not reach the generation prompt:\n%s", server.prompt())
	}
}

func TestScanStoredProfileFallback(t *testing.T) {
	server := newMockModelServer(t, `["rice"]`, "[]")
	db := newTestDB(t)
	router := newScanRouter(t, server.URL, db)

	userID := uuid.New()
	err := service.NewPreferenceService(db).Put(context.Background(), userID, types.PreferenceProfile{
		Allergies: []string{"shellfish"},
	})
	if err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, scanRequest(t, authToken(t, userID), []byte("img"), ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(server.prompt(), "shellfish") {
		t.Fatalf("stored profile did not reach the generation prompt:\n%s", server.prompt())
	}
}

func TestScanUnparseableGenerationStillSucceeds(t *testing.T) {
	server := newMockModelServer(t, `["rice","egg"]`, "How about a nice stir fry?")
	router := newScanRouter(t, server.URL, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, scanRequest(t, authToken(t, uuid.New()), []byte("img"), ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var result types.ScanResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.DetectedIngredients) != 2 {
		t.Fatalf("detected ingredients = %v", result.DetectedIngredients)
	}
	if len(result.Recipes) != 0 {
		t.Fatalf("expected zero recipes, got %v", result.Recipes)
	}
}

func TestScanUpstreamErrorReturns500(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "vision backend down", http.StatusBadGateway)
	}))
	defer server.Close()
	router := newScanRouter(t, server.URL, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, scanRequest(t, authToken(t, uuid.New()), []byte("img"), ""))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Failed to scan pantry") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestScanHistoryListing(t *testing.T) {
	server := newMockModelServer(t, `["rice","egg"]`, testRecipeBatch)
	db := newTestDB(t)
	router := newScanRouter(t, server.URL, db)

	userID := uuid.New()
	token := authToken(t, userID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, scanRequest(t, token, []byte("img"), ""))
	if w.Code != http.StatusOK {
		t.Fatalf("scan status = %d: %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Scans []struct {
			DetectedIngredients []string `json:"detected_ingredients"`
			RecipeCount         int      `json:"recipe_count"`
		} `json:"scans"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(resp.Scans) != 1 {
		t.Fatalf("expected 1 scan record, got %d", len(resp.Scans))
	}
	if resp.Scans[0].RecipeCount != 1 {
		t.Fatalf("recipe count = %d, want 1", resp.Scans[0].RecipeCount)
	}
	if want := []string{"rice", "egg"}; !reflect.DeepEqual(resp.Scans[0].DetectedIngredients, want) {
		t.Fatalf("detected ingredients = %v, want %v", resp.Scans[0].DetectedIngredients, want)
	}
}

func TestGetScanWithoutCacheIsNotFound(t *testing.T) {
	server := newMockModelServer(t, "[]", "[]")
	router := newScanRouter(t, server.URL, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/"+uuid.New().String(), nil)
	req.Header.Set("Authorization", "Bearer "+authToken(t, uuid.New()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
