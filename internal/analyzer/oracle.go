package analyzer

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"spikewatch/internal/measurement"

	"go.uber.org/zap"
)

// DirectionOracle answers a metrics prompt with a directional judgment.
type DirectionOracle interface {
	AskDirection(prompt string) measurement.Direction
}

const (
	oracleSlotWait       = 3 * time.Second
	oracleConnectTimeout = 5 * time.Second
	// Read timeout is generous: local model inference can take minutes.
	oracleReadTimeout = 120 * time.Second
)

// Oracle serializes judgment calls to an OpenAI-compatible completion
// endpoint behind a single-slot gate. At most one call is in flight
// system-wide; callers that cannot take the slot within the bounded wait
// get UNCHANGED back. Every failure path also maps to UNCHANGED, so
// detection abstains instead of failing a batch.
type Oracle struct {
	endpoint   string
	model      string
	slot       chan struct{}
	httpClient *http.Client
	logger     *zap.Logger
}

func NewOracle(endpoint, model string, logger *zap.Logger) *Oracle {
	return &Oracle{
		endpoint: endpoint,
		model:    model,
		slot:     make(chan struct{}, 1),
		httpClient: &http.Client{
			Timeout: oracleReadTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: oracleConnectTimeout}).DialContext,
			},
		},
		logger: logger,
	}
}

type completionRequest struct {
	Model       string              `json:"model"`
	Messages    []completionMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Text    string `json:"text"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AskDirection issues one judgment call, waiting at most oracleSlotWait for
// the single slot.
func (o *Oracle) AskDirection(prompt string) measurement.Direction {
	select {
	case o.slot <- struct{}{}:
	case <-time.After(oracleSlotWait):
		o.logger.Warn("judgment oracle busy, skipping request")
		return measurement.DirectionUnchanged
	}
	defer func() { <-o.slot }()

	reqBody := completionRequest{
		Model: o.model,
		Messages: []completionMessage{
			{Role: "user", Content: prompt + "\n\nAnswer with only 'spike', 'drop', or 'none'."},
		},
		Temperature: 0.1,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		o.logger.Error("oracle request encode failed", zap.Error(err))
		return measurement.DirectionUnchanged
	}

	resp, err := o.httpClient.Post(o.endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		o.logger.Error("oracle request failed", zap.Error(err))
		return measurement.DirectionUnchanged
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		o.logger.Error("oracle returned non-OK status", zap.Int("status", resp.StatusCode))
		return measurement.DirectionUnchanged
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		o.logger.Error("oracle response decode failed", zap.Error(err))
		return measurement.DirectionUnchanged
	}

	var raw string
	if len(parsed.Choices) > 0 {
		raw = parsed.Choices[0].Message.Content
		if raw == "" {
			raw = parsed.Choices[0].Text
		}
	}

	answer := ScrubAnswer(raw)
	o.logger.Debug("oracle answered", zap.String("answer", answer))
	return ClassifyAnswer(answer)
}

var (
	fencedBlockRe = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe  = regexp.MustCompile("`")
	controlTagRe  = regexp.MustCompile(`<\|.*?\|>`)
	noiseRe       = regexp.MustCompile(`[^\p{L}\p{N}\p{Zs}:%+\-_.]`)
	rolePrefixRe  = regexp.MustCompile(`(?i)^(ai|assistant|system|bot|data|ta)[:：\s-]+`)
)

// ScrubAnswer strips markdown fences, inline code markers, control tags,
// non-alphanumeric noise, and a leading role label from a free-text answer.
// Role words elsewhere in the answer are left alone.
func ScrubAnswer(raw string) string {
	s := strings.TrimSpace(raw)
	s = fencedBlockRe.ReplaceAllString(s, "")
	s = inlineCodeRe.ReplaceAllString(s, "")
	s = controlTagRe.ReplaceAllString(s, "")
	s = noiseRe.ReplaceAllString(s, "")
	s = rolePrefixRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ClassifyAnswer maps a scrubbed answer to a direction by case-insensitive
// substring match.
func ClassifyAnswer(answer string) measurement.Direction {
	s := strings.ToLower(answer)
	switch {
	case strings.Contains(s, "spike") || strings.Contains(s, "surge") || strings.Contains(s, "up"):
		return measurement.DirectionUp
	case strings.Contains(s, "drop") || strings.Contains(s, "crash") || strings.Contains(s, "down"):
		return measurement.DirectionDown
	default:
		return measurement.DirectionUnchanged
	}
}
