package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	storagemocks "docqa/internal/storage/mocks"
	vsmocks "docqa/internal/vectorstore/mocks"
)

func getHealth(t *testing.T, h http.Handler) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec, resp
}

func TestHealthHandlerHealthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storagemocks.NewMockDocumentStore(ctrl)
	store.EXPECT().Ping(gomock.Any()).Return(nil)

	rec, resp := getHealth(t, NewHealthHandler(store, nil, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Status != "healthy" {
		t.Errorf("Status = %q", resp.Status)
	}
	if resp.Checks["document_store"] != "ok" {
		t.Errorf("document_store check = %q", resp.Checks["document_store"])
	}
	if _, present := resp.Checks["vector_index"]; present {
		t.Error("vector_index check present without a configured index")
	}
}

func TestHealthHandlerStoreDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storagemocks.NewMockDocumentStore(ctrl)
	store.EXPECT().Ping(gomock.Any()).Return(errors.New("disk gone"))

	rec, resp := getHealth(t, NewHealthHandler(store, nil, ""))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("Status = %q", resp.Status)
	}
	if len(resp.Issues) == 0 {
		t.Error("no issues reported for a down store")
	}
}

func TestHealthHandlerChecksVectorIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storagemocks.NewMockDocumentStore(ctrl)
	store.EXPECT().Ping(gomock.Any()).Return(nil).Times(2)

	index := vsmocks.NewMockVectorStore(ctrl)
	index.EXPECT().CollectionExists(gomock.Any(), "chunks").Return(true, nil)
	index.EXPECT().CollectionExists(gomock.Any(), "chunks").Return(false, errors.New("unreachable"))

	h := NewHealthHandler(store, index, "chunks")

	rec, resp := getHealth(t, h)
	if rec.Code != http.StatusOK || resp.Checks["vector_index"] != "ok" {
		t.Errorf("healthy index: status = %d, check = %q", rec.Code, resp.Checks["vector_index"])
	}

	rec, resp = getHealth(t, h)
	if rec.Code != http.StatusServiceUnavailable || resp.Checks["vector_index"] != "error" {
		t.Errorf("down index: status = %d, check = %q", rec.Code, resp.Checks["vector_index"])
	}
}

func TestHealthHandlerMethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewHealthHandler(storagemocks.NewMockDocumentStore(ctrl), nil, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
