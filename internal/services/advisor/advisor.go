package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MarketMind/internal/domain/models"
	domsvc "MarketMind/internal/domain/service"
	"MarketMind/pkg/config"
	xhttp "MarketMind/pkg/http"
)

// HTTPAdvisor calls an external advisory service to turn a finished
// assessment into a short natural-language briefing. Failures fall back to
// a locally built summary so an assessment never goes out without advice.
type HTTPAdvisor struct {
	baseURL string
	client  *xhttp.Client
}

func NewHTTPAdvisor(cfg *config.Config) domsvc.Advisor {
	timeout := cfg.Advisor.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPAdvisor{
		baseURL: cfg.Advisor.URL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type reviewReq struct {
	VIX        float64 `json:"vix"`
	Spot       float64 `json:"spot"`
	Trend      string  `json:"trend"`
	Sentiment  string  `json:"sentiment"`
	Regime     string  `json:"regime"`
	Strategy   string  `json:"strategy,omitempty"`
	Score      int     `json:"score,omitempty"`
	Confidence string  `json:"confidence,omitempty"`
}

type reviewResp struct {
	Advice string `json:"advice"`
}

func (a *HTTPAdvisor) Review(ctx context.Context, r *models.MarketIntelligenceResult) (string, error) {
	if r == nil || r.Conditions == nil {
		return "", fmt.Errorf("nothing to review")
	}
	if a.baseURL == "" {
		return Fallback(r), nil
	}
	req := reviewReq{
		VIX:       r.Conditions.VIX,
		Spot:      r.Conditions.Spot,
		Trend:     r.Conditions.Trend,
		Sentiment: r.Conditions.Sentiment,
		Regime:    r.Conditions.VolatilityRegime,
	}
	if len(r.Recommendations) > 0 {
		req.Strategy = r.Recommendations[0].Strategy
		req.Score = r.Recommendations[0].Score
		req.Confidence = r.Recommendations[0].Confidence
	}
	var resp reviewResp
	err := a.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     a.baseURL + "/advice/review",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    req,
	}, &resp)
	if err != nil {
		return Fallback(r), fmt.Errorf("post review: %w", err)
	}
	if strings.TrimSpace(resp.Advice) == "" {
		return Fallback(r), nil
	}
	return resp.Advice, nil
}

// Fallback builds a one-line briefing from the assessment itself.
func Fallback(r *models.MarketIntelligenceResult) string {
	if r == nil || r.Conditions == nil {
		return "No market data available."
	}
	c := r.Conditions
	var b strings.Builder
	fmt.Fprintf(&b, "%s market, %s volatility (VIX %.1f).", capitalize(c.Trend), c.VolatilityRegime, c.VIX)
	if len(r.Recommendations) > 0 {
		top := r.Recommendations[0]
		fmt.Fprintf(&b, " Top setup: %s (score %d, %s confidence).", top.Strategy, top.Score, top.Confidence)
	}
	if c.VIXInterpret.Caution {
		fmt.Fprintf(&b, " Caution: %s", c.VIXInterpret.Recommendation)
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
