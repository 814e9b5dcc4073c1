package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeService answers like the LittleSMS API and records query strings per path.
func fakeService(t *testing.T) (*httptest.Server, map[string]string) {
	t.Helper()
	seen := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen[r.URL.Path] = r.URL.RawQuery
		switch r.URL.Path {
		case "/api/user/balance":
			_, _ = w.Write([]byte(`{"status":"success","balance":10.5}`))
		case "/api/message/send":
			_, _ = w.Write([]byte(`{"status":"success","count":1,"recipients":["79990001122"],"price":0.5,"parts":1,"test":1,"balance":10,"messages_id":["555"]}`))
		case "/api/message/status":
			_, _ = w.Write([]byte(`{"status":"success","messages":{"555":"delivered"}}`))
		case "/api/message/history":
			_, _ = w.Write([]byte(`{"status":"error","error":9,"message":"history disabled"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func setupEnv(t *testing.T, srv *httptest.Server) {
	t.Helper()
	t.Setenv("LITTLESMS_USER", "alice")
	t.Setenv("LITTLESMS_KEY", "secret")
	t.Setenv("LITTLESMS_HOST", strings.TrimPrefix(srv.URL, "http://"))
	t.Setenv("LITTLESMS_INSECURE", "true")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("JOURNAL_TYPE", "bbolt")
	t.Setenv("JOURNAL_PATH", t.TempDir()+"/journal.db")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBalanceCommand(t *testing.T) {
	srv, _ := fakeService(t)
	setupEnv(t, srv)

	out, err := execute(t, "balance")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if got["balance"] != 10.5 {
		t.Fatalf("unexpected output %v", got)
	}
}

func TestSendThenStatusUsesJournal(t *testing.T) {
	srv, seen := fakeService(t)
	setupEnv(t, srv)

	if _, err := execute(t, "send", "-m", "hi", "-t", "79990001122", "--test"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if q := seen["/api/message/send"]; !strings.Contains(q, "test=1") || strings.Contains(q, "sender=") {
		t.Fatalf("unexpected send query %q", q)
	}

	out, err := execute(t, "recent")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if !strings.Contains(out, `"id": "555"`) {
		t.Fatalf("journal missing sent id: %s", out)
	}

	if _, err := execute(t, "status"); err != nil {
		t.Fatalf("status: %v", err)
	}
	if q := seen["/api/message/status"]; !strings.Contains(q, "messages_id=555") {
		t.Fatalf("status did not use journalled id: %q", q)
	}
}

func TestHistoryCommandOnlySendsSetFilters(t *testing.T) {
	srv, seen := fakeService(t)
	setupEnv(t, srv)

	_, err := execute(t, "history", "--recipient", "79990001122", "--id", "4")
	if err == nil || !strings.Contains(err.Error(), "history disabled") {
		t.Fatalf("expected service error, got %v", err)
	}
	q := seen["/api/message/history"]
	if !strings.Contains(q, "recipient=79990001122") || !strings.Contains(q, "id=4") {
		t.Fatalf("unexpected history query %q", q)
	}
	for _, absent := range []string{"history_id=", "sender=", "date_from=", "date_to="} {
		if strings.Contains(q, absent) {
			t.Fatalf("unset filter %s sent: %q", absent, q)
		}
	}
}

func TestSendRequiresFlags(t *testing.T) {
	srv, _ := fakeService(t)
	setupEnv(t, srv)

	if _, err := execute(t, "send", "-m", "hi"); err == nil {
		t.Fatalf("expected error without recipients")
	}
}
