package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgcache "MarketMind/pkg/cache"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Markets</title>
    <item>
      <title>RBI keeps repo rate unchanged</title>
      <link>https://example.com/a</link>
      <pubDate>Wed, 07 Jan 2026 09:30:00 +0530</pubDate>
    </item>
    <item>
      <title>Nifty opens higher on global cues</title>
      <link>https://example.com/b</link>
      <pubDate>Wed, 07 Jan 2026 09:20:00 +0530</pubDate>
    </item>
    <item><title>h3</title></item>
    <item><title>h4</title></item>
    <item><title>h5</title></item>
    <item><title>h6</title></item>
  </channel>
</rss>`

func rssServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestHeadlinesParsesAndCapsPerFeed(t *testing.T) {
	srv := rssServer(t, sampleRSS, http.StatusOK)
	defer srv.Close()

	f := NewFetcher([]Feed{{Name: "markets", URL: srv.URL}}, 2*time.Second)
	got, err := f.Headlines(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != maxPerFeed {
		t.Fatalf("want %d headlines, got %d", maxPerFeed, len(got))
	}
	if got[0].Title != "RBI keeps repo rate unchanged" {
		t.Fatalf("unexpected first headline %+v", got[0])
	}
	if got[0].Source != "markets" {
		t.Fatalf("source %q want markets", got[0].Source)
	}
	if got[0].PubDate.IsZero() {
		t.Fatalf("pub date should parse")
	}
	if !got[1].PubDate.Before(got[0].PubDate) {
		t.Fatalf("pub dates out of order: %v %v", got[0].PubDate, got[1].PubDate)
	}
}

func TestHeadlinesAllFeedsFailed(t *testing.T) {
	srv := rssServer(t, "oops", http.StatusInternalServerError)
	defer srv.Close()

	f := NewFetcher([]Feed{{Name: "broken", URL: srv.URL}}, 2*time.Second)
	if _, err := f.Headlines(context.Background()); err == nil {
		t.Fatalf("expected error when every feed fails")
	}
}

func TestHeadlinesPartialFailure(t *testing.T) {
	good := rssServer(t, sampleRSS, http.StatusOK)
	defer good.Close()
	bad := rssServer(t, "not xml", http.StatusOK)
	defer bad.Close()

	f := NewFetcher([]Feed{
		{Name: "bad", URL: bad.URL},
		{Name: "good", URL: good.URL},
	}, 2*time.Second)
	got, err := f.Headlines(context.Background())
	if err != nil {
		t.Fatalf("a surviving feed should carry the digest: %v", err)
	}
	if len(got) != maxPerFeed {
		t.Fatalf("want %d headlines, got %d", maxPerFeed, len(got))
	}
}

func TestHeadlinesUsesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	f := NewFetcher([]Feed{{Name: "markets", URL: srv.URL}}, 2*time.Second)
	f.SetCache(pkgcache.NewMemoryCache(), time.Minute)
	ctx := context.Background()

	if _, err := f.Headlines(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.Headlines(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 1 {
		t.Fatalf("second digest should come from cache, upstream hits %d", hits)
	}
}

func TestParsePubDateFormats(t *testing.T) {
	if got := parsePubDate("Wed, 07 Jan 2026 09:30:00 +0530"); got.IsZero() {
		t.Fatalf("rfc1123z should parse")
	}
	if got := parsePubDate("garbage"); !got.IsZero() {
		t.Fatalf("unparseable date should be zero, got %v", got)
	}
}
