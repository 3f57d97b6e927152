// Package estimator asks a generative model for calorie estimates of a food description or photo.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// ErrEstimationUnavailable covers every way the upstream model can fail to give us a number.
var ErrEstimationUnavailable = errors.New("calorie estimation unavailable")

const (
	textPrompt  = "Provide ONLY the calorie number (just the number) for %s. Example: For '1 medium apple' just respond with '95'"
	imagePrompt = "Analyze this food image and provide ONLY the estimated calorie count as a number. For example, if it's a burger, just respond with '650'."
)

var firstNumber = regexp.MustCompile(`\d+`)

// generator is the part of *genai.GenerativeModel we use.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Gemini struct {
	model   generator
	limiter *rate.Limiter
	logger  *zap.Logger
	close   func() error
}

type Options struct {
	APIKey     string
	Model      string
	RatePerSec float64
	Burst      int
}

func NewGemini(ctx context.Context, opts Options, logger *zap.Logger) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := client.GenerativeModel(opts.Model)
	model.SetTemperature(0)
	g := newGemini(model, rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst), logger)
	g.close = client.Close
	return g, nil
}

func newGemini(model generator, limiter *rate.Limiter, logger *zap.Logger) *Gemini {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gemini{model: model, limiter: limiter, logger: logger}
}

func (g *Gemini) Close() error {
	if g.close == nil {
		return nil
	}
	return g.close()
}

// EstimateText estimates the calories of a free-text food description.
func (g *Gemini) EstimateText(ctx context.Context, food string) (int, error) {
	food = strings.TrimSpace(food)
	if food == "" {
		return 0, fmt.Errorf("%w: empty food description", ErrEstimationUnavailable)
	}
	return g.estimate(ctx, genai.Text(fmt.Sprintf(textPrompt, food)))
}

// EstimateImage estimates the calories of the food in a photo. mimeType is e.g. "image/jpeg".
func (g *Gemini) EstimateImage(ctx context.Context, mimeType string, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty image", ErrEstimationUnavailable)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return 0, fmt.Errorf("%w: unsupported content type %q", ErrEstimationUnavailable, mimeType)
	}
	return g.estimate(ctx, genai.Text(imagePrompt), genai.Blob{MIMEType: mimeType, Data: data})
}

func (g *Gemini) estimate(ctx context.Context, parts ...genai.Part) (int, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEstimationUnavailable, err)
	}
	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		g.logger.Warn("gemini request failed", zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrEstimationUnavailable, err)
	}
	text, err := responseText(resp)
	if err != nil {
		g.logger.Warn("gemini response unusable", zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrEstimationUnavailable, err)
	}
	calories, err := ParseCalories(text)
	if err != nil {
		g.logger.Warn("gemini response unparsable", zap.String("text", text))
		return 0, err
	}
	return calories, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates")
	}
	c := resp.Candidates[0]
	if c.Content == nil || len(c.Content.Parts) == 0 {
		return "", fmt.Errorf("candidate has no parts (finish reason: %v)", c.FinishReason)
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("candidate has no text")
	}
	return b.String(), nil
}

// ParseCalories takes the first run of digits in text as the estimate.
func ParseCalories(text string) (int, error) {
	m := firstNumber.FindString(text)
	if m == "" {
		return 0, fmt.Errorf("%w: no number in %q", ErrEstimationUnavailable, text)
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: bad estimate %q", ErrEstimationUnavailable, m)
	}
	return n, nil
}
