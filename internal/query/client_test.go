package query

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nac_patrimony_crawler/internal/logging"
)

func TestFetchDecodesLatin1AndSendsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "PHPSESSID=abc" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.Header.Get("User-Agent") != "nac-test" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		// "Responsável" em ISO-8859-1: 'á' = 0xE1
		w.Write([]byte("<html><body><p>Respons\xe1vel: Jo\xe3o</p></body></html>"))
	}))
	defer srv.Close()

	c := NewClient(Options{Cookie: "PHPSESSID=abc", UserAgent: "nac-test", Timeout: 5 * time.Second}, logging.Discard())
	page, err := c.Fetch(context.Background(), srv.URL+"/ipdetails.php?IP=10.0.0.1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	got := strings.TrimSpace(page.Doc.Find("p").Text())
	if got != "Responsável: João" {
		t.Errorf("decoded text = %q", got)
	}
	if !strings.HasSuffix(page.URL, "/ipdetails.php?IP=10.0.0.1") {
		t.Errorf("page URL = %q", page.URL)
	}
}

func TestFetchReportsFinalURLAfterRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ipdetails.php", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login.php", http.StatusFound)
	})
	mux.HandleFunc("/login.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><form></form></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(Options{}, logging.Discard())
	page, err := c.Fetch(context.Background(), srv.URL+"/ipdetails.php")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.URL != srv.URL+"/login.php" {
		t.Errorf("final URL = %q", page.URL)
	}
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Options{}, logging.Discard())
	_, err := c.Fetch(context.Background(), srv.URL)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusInternalServerError {
		t.Errorf("code = %d", se.Code)
	}
}

func TestBuildDetailURL(t *testing.T) {
	got := BuildDetailURL("https://portal/ipdetails.php", "10.0.0.1", "42")
	if got != "https://portal/ipdetails.php?IP=10.0.0.1&blocoConsulta=42" {
		t.Errorf("BuildDetailURL = %q", got)
	}
	got = BuildDetailURL("https://portal/x.php?m=1", "10.0.0.1", "")
	if got != "https://portal/x.php?m=1&IP=10.0.0.1&blocoConsulta=" {
		t.Errorf("BuildDetailURL with query = %q", got)
	}
}

func TestCompilePattern(t *testing.T) {
	re, err := CompilePattern("", "https://portal/ipdetails.php")
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	if !re.MatchString("https://portal/ipdetails.php?IP=1") {
		t.Error("expected base prefix to match")
	}
	if re.MatchString("about:blank") {
		t.Error("blank page must not match")
	}
	if _, err := CompilePattern("(", ""); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
