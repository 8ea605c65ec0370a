package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"MarketMind/internal/domain/models"
	pkgcache "MarketMind/pkg/cache"
	xhttp "MarketMind/pkg/http"

	"golang.org/x/time/rate"
)

// Feed is one configured RSS source.
type Feed struct {
	Name string
	URL  string
}

// maxPerFeed caps how many headlines one source may contribute.
const maxPerFeed = 5

// Fetcher pulls headlines from configured RSS feeds. Fetches are best
// effort: a failing feed contributes nothing and does not fail the digest.
type Fetcher struct {
	feeds    []Feed
	client   *xhttp.Client
	limiters map[string]*rate.Limiter
	cache    pkgcache.Service
	cacheTTL time.Duration
}

func NewFetcher(feeds []Feed, timeout time.Duration) *Fetcher {
	// One request per feed per minute is plenty for headlines.
	limiters := make(map[string]*rate.Limiter, len(feeds))
	for _, f := range feeds {
		limiters[f.Name] = rate.NewLimiter(rate.Every(time.Minute), 1)
	}
	return &Fetcher{
		feeds:    feeds,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiters: limiters,
	}
}

// SetCache enables caching of the merged digest between cycles.
func (f *Fetcher) SetCache(c pkgcache.Service, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	f.cache = c
	f.cacheTTL = ttl
}

type rssDoc struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// Headlines fetches every configured feed and merges up to maxPerFeed items
// per source. Individual feed errors are swallowed; the caller only sees an
// error when every feed failed.
func (f *Fetcher) Headlines(ctx context.Context) ([]models.Headline, error) {
	const cacheKey = "news:headlines"
	if f.cache != nil {
		var cached []models.Headline
		if err := f.cache.Get(ctx, cacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	var out []models.Headline
	var lastErr error
	fetched := 0

	for _, feed := range f.feeds {
		if lim := f.limiters[feed.Name]; lim != nil && !lim.Allow() {
			continue
		}
		items, err := f.fetchOne(ctx, feed)
		if err != nil {
			lastErr = err
			continue
		}
		fetched++
		out = append(out, items...)
	}

	if fetched == 0 && lastErr != nil {
		return nil, fmt.Errorf("all feeds failed: %w", lastErr)
	}
	if f.cache != nil && len(out) > 0 {
		_ = f.cache.Set(ctx, cacheKey, out, f.cacheTTL)
	}
	return out, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, feed Feed) ([]models.Headline, error) {
	var body []byte
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    feed.URL,
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", feed.Name, err)
	}

	var doc rssDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", feed.Name, err)
	}

	items := doc.Channel.Items
	if len(items) > maxPerFeed {
		items = items[:maxPerFeed]
	}
	out := make([]models.Headline, 0, len(items))
	for _, it := range items {
		out = append(out, models.Headline{
			Title:   it.Title,
			Link:    it.Link,
			PubDate: parsePubDate(it.PubDate),
			Source:  feed.Name,
		})
	}
	return out, nil
}

func parsePubDate(s string) time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
