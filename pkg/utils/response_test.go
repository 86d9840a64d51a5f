package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondJSONKeepsHTML(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondJSON(resp, http.StatusOK, map[string]string{"content": "<b>hi</b> & bye"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "<b>hi</b> & bye") {
		t.Fatalf("expected unescaped HTML, got %s", resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type: %s", ct)
	}
}

func TestRespondError(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondError(resp, http.StatusBadGateway, "Invalid API Key")

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if strings.TrimSpace(resp.Body.String()) != `{"error":"Invalid API Key"}` {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}
