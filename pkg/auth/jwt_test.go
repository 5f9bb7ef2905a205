package auth

import (
	"context"
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestIssueAndParseBearer(t *testing.T) {
	tok, exp, err := Issue(testSecret, "alice", "Criminologist", time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) < 71*time.Hour {
		t.Fatalf("expiry too short: %v", exp)
	}
	p, err := ParseBearer("Bearer "+tok, testSecret)
	if err != nil {
		t.Fatalf("ParseBearer: %v", err)
	}
	if p.Name != "alice" || p.Kind != "Criminologist" {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestParseBearer_Rejects(t *testing.T) {
	tok, _, err := Issue(testSecret, "bob", "Student", time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := ParseBearer("", testSecret); err == nil {
		t.Fatalf("expected error for missing header")
	}
	if _, err := ParseBearer("Basic "+tok, testSecret); err == nil {
		t.Fatalf("expected error for non-bearer scheme")
	}
	if _, err := ParseBearer("Bearer "+tok, "wrong"); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseBearer_Expired(t *testing.T) {
	tok, _, err := Issue(testSecret, "carol", "Researcher", time.Now().Add(-TokenTTL-time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := ParseBearer("Bearer "+tok, testSecret); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestParseJWT_ClaimsValidation(t *testing.T) {
	tok, _, err := Issue(testSecret, "", "", time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := parseJWT(tok, testSecret); err == nil {
		t.Fatalf("expected invalid claims error")
	}
}

func TestPrincipalContext(t *testing.T) {
	ctx := WithPrincipal(context.Background(), &Principal{Name: "dave", Kind: "Student"})
	p, ok := FromContext(ctx)
	if !ok || p.Name != "dave" {
		t.Fatalf("principal not round-tripped: %+v %v", p, ok)
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("expected no principal in empty context")
	}
}
