package hackathon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const listingPage = `<html><body>
<div class="challenge-listing">
  <a href="https://devpost.example/green-ai">open</a>
  <h3 class="challenge-title"> Green AI </h3>
  <p class="challenge-description">Train efficient models</p>
  <div class="requirements"><ul><li>Python</li><li> PyTorch </li><li></li></ul></div>
  <div class="prizes">$10,000</div>
  <div class="deadline">Nov 30</div>
  <div class="themes">Machine Learning, Sustainability</div>
</div>
<div class="challenge-listing">
  <p class="challenge-description">Listing without a title</p>
</div>
<div class="challenge-listing">
  <h3 class="challenge-title">Bare</h3>
</div>
</body></html>`

func TestScrape(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(listingPage))
	}))
	defer srv.Close()

	core, observed := observer.New(zapcore.WarnLevel)
	s := NewScraper(zap.New(core))
	s.URL = srv.URL
	s.UserAgent = "hackmatch-test"

	hackathons, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if userAgent != "hackmatch-test" {
		t.Fatalf("expected user agent to be sent, got %q", userAgent)
	}
	if hackathons.Len() != 2 {
		t.Fatalf("expected 2 hackathons, got %d: %v", hackathons.Len(), hackathons.Titles())
	}
	if observed.Len() != 1 {
		t.Fatalf("expected one warning for the untitled listing, got %d", observed.Len())
	}

	want := &Hackathon{
		Title:        "Green AI",
		Description:  "Train efficient models",
		Requirements: []string{"Python", "PyTorch"},
		Prize:        "$10,000",
		Criteria:     scrapedCriteria,
		Deadline:     "Nov 30",
		Keywords:     []string{"Machine Learning", "Sustainability"},
		URL:          "https://devpost.example/green-ai",
	}
	if got := hackathons.Items[0]; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	bare := hackathons.Items[1]
	if bare.Prize != scrapedPrize || bare.Deadline != DefaultDeadline || len(bare.Keywords) != 0 {
		t.Fatalf("expected defaults for a bare listing, got %+v", bare)
	}
}

func TestScrapeBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewScraper(nil)
	s.URL = srv.URL

	if _, err := s.Scrape(context.Background()); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
