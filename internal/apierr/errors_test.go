package apierr

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, MarketUnavailable(""))

	if rr.Code != 503 {
		t.Errorf("expected 503, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected json content type, got %s", ct)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Error.Code != ErrMarketUnavailable {
		t.Errorf("expected MARKET_UNAVAILABLE, got %s", resp.Error.Code)
	}
	if resp.Error.Message == "" {
		t.Error("expected a default message")
	}
}

func TestErrorInterface(t *testing.T) {
	err := AuthInvalid("bad token")
	if err.Error() != "AUTH_INVALID: bad token" {
		t.Errorf("unexpected error string: %s", err.Error())
	}
	if err.Status() != 401 {
		t.Errorf("expected 401, got %d", err.Status())
	}
}

func TestWithDetails(t *testing.T) {
	err := CacheUnknownType("bogus")
	if err.Details["type"] != "bogus" {
		t.Errorf("expected type detail, got %v", err.Details)
	}
	if err.Status() != 400 {
		t.Errorf("expected 400, got %d", err.Status())
	}
}
