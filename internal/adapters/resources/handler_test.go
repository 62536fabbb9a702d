package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"resourcecatalog/internal/core"
	"resourcecatalog/internal/infra/persistence/memory"
	"resourcecatalog/pkg/domain"
	"resourcecatalog/testutil"
	"strings"
	"testing"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := core.NewService(memory.NewStore())
	if err := svc.Initialize(context.Background(), "root"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	srv := httptest.NewServer(NewHandler(svc, nil).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, caller, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp, decoded
}

func resourceField(t *testing.T, body map[string]any, field string) any {
	t.Helper()
	r, ok := body["resource"].(map[string]any)
	if !ok {
		t.Fatalf("missing resource in %v", body)
	}
	return r[field]
}

func TestResourceLifecycleOverHTTP(t *testing.T) {
	srv := newServer(t)
	resp, body := do(t, srv, http.MethodPost, "/api/v1/resources", "alice", `{"title":"Eczema Tips","description":"oatmeal baths","category":"Treatment"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %v", resp.StatusCode, body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
	if resourceField(t, body, "id") != float64(1) || resourceField(t, body, "created_by") != "alice" {
		t.Fatalf("unexpected created resource %v", body)
	}

	resp, body = do(t, srv, http.MethodGet, "/api/v1/resources/1", "", "")
	if resp.StatusCode != http.StatusOK || resourceField(t, body, "title") != "Eczema Tips" {
		t.Fatalf("get: %d %v", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodGet, "/api/v1/resources/search?q=ECZEMA", "", "")
	if items := body["resources"].([]any); resp.StatusCode != http.StatusOK || len(items) != 1 {
		t.Fatalf("search: %d %v", resp.StatusCode, body)
	}

	resp, body = do(t, srv, http.MethodPut, "/api/v1/resources/1", "alice", `{"title":"Eczema Tips","description":"moved","category":"Research"}`)
	if resp.StatusCode != http.StatusOK || resourceField(t, body, "category") != "Research" {
		t.Fatalf("update: %d %v", resp.StatusCode, body)
	}
	_, body = do(t, srv, http.MethodGet, "/api/v1/categories/Research/resources", "", "")
	if items := body["resources"].([]any); len(items) != 1 {
		t.Fatalf("category listing: %v", body)
	}
	_, body = do(t, srv, http.MethodGet, "/api/v1/categories/Treatment/resources?page=0", "", "")
	if items := body["resources"].([]any); len(items) != 0 {
		t.Fatalf("old category still lists record: %v", body)
	}

	resp, _ = do(t, srv, http.MethodPost, "/api/v1/resources/1/verify", "alice", "")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("owner verify should be forbidden, got %d", resp.StatusCode)
	}
	resp, body = do(t, srv, http.MethodPost, "/api/v1/resources/1/verify", "root", "")
	if resp.StatusCode != http.StatusOK || resourceField(t, body, "verified") != true {
		t.Fatalf("admin verify: %d %v", resp.StatusCode, body)
	}
	resp, _ = do(t, srv, http.MethodDelete, "/api/v1/resources/1", "root", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	resp, body = do(t, srv, http.MethodGet, "/api/v1/resources/1", "", "")
	if resp.StatusCode != http.StatusNotFound || body["kind"] != string(domain.KindNotFound) {
		t.Fatalf("expected 404 after delete: %d %v", resp.StatusCode, body)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	srv := newServer(t)
	do(t, srv, http.MethodPost, "/api/v1/resources", "alice", `{"title":"t","description":"d","category":"Prevention"}`)
	cases := []struct {
		method, path, caller, body string
		want                       int
	}{
		{http.MethodPost, "/api/v1/resources", "alice", `{"title":"","description":"d","category":"Treatment"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/v1/resources", "alice", `{"title":"t","description":"d","category":"Gossip"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/v1/resources", "alice", `{"title":"t","description":"d","category":"Treatment","extra":1}`, http.StatusBadRequest},
		{http.MethodPost, "/api/v1/resources", "alice", `not json`, http.StatusBadRequest},
		{http.MethodPut, "/api/v1/resources/1", "", `{"title":"t","description":"d","category":"Treatment"}`, http.StatusForbidden},
		{http.MethodPut, "/api/v1/resources/9", "alice", `{"title":"t","description":"d","category":"Treatment"}`, http.StatusNotFound},
		{http.MethodDelete, "/api/v1/resources/1", "alice", "", http.StatusForbidden},
		{http.MethodDelete, "/api/v1/resources/9", "root", "", http.StatusNotFound},
		{http.MethodGet, "/api/v1/resources/abc", "", "", http.StatusBadRequest},
		{http.MethodGet, "/api/v1/resources?page=-1", "", "", http.StatusBadRequest},
		{http.MethodGet, "/api/v1/categories/Gossip/resources", "", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp, body := do(t, srv, tc.method, tc.path, tc.caller, tc.body)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s %s: expected %d got %d (%v)", tc.method, tc.path, tc.want, resp.StatusCode, body)
		}
	}
}

func TestListPagination(t *testing.T) {
	srv := newServer(t)
	for i := 0; i < 23; i++ {
		do(t, srv, http.MethodPost, "/api/v1/resources", "alice", fmt.Sprintf(`{"title":"r%d","description":"d","category":"Research"}`, i))
	}
	for page, want := range []int{20, 3, 0} {
		resp, body := do(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/resources?page=%d", page), "", "")
		items := body["resources"].([]any)
		if resp.StatusCode != http.StatusOK || len(items) != want {
			t.Fatalf("page %d: status %d, %d items", page, resp.StatusCode, len(items))
		}
	}
}

func TestStatusForForeignError(t *testing.T) {
	if statusFor(fmt.Errorf("boom")) != http.StatusInternalServerError {
		t.Fatalf("foreign errors should be 500")
	}
	if statusFor(&domain.Error{Kind: domain.KindAlreadyExists}) != http.StatusConflict {
		t.Fatalf("already exists should be 409")
	}
	rec := httptest.NewRecorder()
	writeDomainError(rec, domain.Internal("save snapshot", fmt.Errorf("disk")))
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "disk") {
		t.Fatalf("internal details leaked: %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerDependsOnServiceOnly(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InfraImportForbidden, "the HTTP adapter talks to core.Service")
	testutil.AssertNoDirectImports(t, ".", testutil.SQLDriverForbidden, "the HTTP adapter never touches storage drivers")
}
