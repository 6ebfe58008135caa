package cascade

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

type TextGenerator interface {
	Configured() bool
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// TextResolver turns a survey into a bundle. It always returns at least one
// destination: every failure path yields MockBundle.
type TextResolver struct {
	gen    TextGenerator
	logger *zap.Logger
}

func NewTextResolver(gen TextGenerator, logger *zap.Logger) *TextResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextResolver{
		gen:    gen,
		logger: logger,
	}
}

func (r *TextResolver) Generate(ctx context.Context, survey models.SurveyInput) models.Bundle {
	if r.gen == nil || !r.gen.Configured() {
		r.logger.Warn("text generator not configured, serving mock bundle")
		return MockBundle()
	}

	text, err := r.gen.GenerateContent(ctx, BuildPrompt(survey))
	if err != nil {
		r.logger.Error("text generation failed, serving mock bundle", zap.Error(err))
		return MockBundle()
	}

	raw, ok := ExtractJSONObject(text)
	if !ok {
		r.logger.Error("no JSON object in generated text, serving mock bundle", zap.Int("length", len(text)))
		return MockBundle()
	}

	var bundle models.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		r.logger.Error("generated JSON does not match bundle shape, serving mock bundle", zap.Error(err))
		return MockBundle()
	}

	bundle.Destinations = uniqueDestinations(bundle.Destinations)
	if len(bundle.Destinations) == 0 {
		r.logger.Error("generated bundle has no destinations, serving mock bundle")
		return MockBundle()
	}

	r.logger.Info("generated recommendations", zap.Int("destinations", len(bundle.Destinations)))
	return bundle
}

// ExtractJSONObject returns the first well-formed JSON object embedded in
// text, such as a reply wrapped in prose or a fenced code block.
func ExtractJSONObject(text string) (json.RawMessage, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == nil && bytes.HasPrefix(raw, []byte("{")) {
			return raw, true
		}
	}
	return nil, false
}

// uniqueDestinations drops unnamed entries and repeats, since the name keys
// images and forecasts.
func uniqueDestinations(in []models.Destination) []models.Destination {
	seen := make(map[string]bool, len(in))
	out := make([]models.Destination, 0, len(in))
	for _, d := range in {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" || seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		out = append(out, d)
	}
	return out
}
