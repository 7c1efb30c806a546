package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/middleware"
)

func TestPrintToken(t *testing.T) {
	var buf bytes.Buffer
	if err := printToken(&buf, "alice", "local-secret", time.Hour); err != nil {
		t.Fatal(err)
	}

	user, err := middleware.ParseToken(strings.TrimSpace(buf.String()), []byte("local-secret"))
	if err != nil {
		t.Fatalf("printed token does not verify: %v", err)
	}
	if user != "alice" {
		t.Errorf("subject = %q, want alice", user)
	}

	buf.Reset()
	if err := printToken(&buf, "alice", "", time.Hour); err == nil {
		t.Error("expected an error without a secret")
	}
	if buf.Len() != 0 {
		t.Error("token printed without a secret")
	}
}
