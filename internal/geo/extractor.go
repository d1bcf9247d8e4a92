package geo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/rs/zerolog"
)

// Extractor derives a candidate place name from free text.
// The boolean result is false when no candidate could be found.
type Extractor interface {
	Extract(text string) (string, bool)
}

// knownPlaces is the fallback dictionary for multi-word place names the
// NER model tends to miss. Matching is case-insensitive substring.
var knownPlaces = []string{
	"United States", "United Kingdom", "Soviet Union", "South Africa",
	"East Timor", "North Korea", "South Korea", "New Zealand",
	"Saudi Arabia", "Sri Lanka", "Hong Kong", "Puerto Rico",
	"Costa Rica", "Dominican Republic", "El Salvador",
}

const nerModelName = "KnightsAnalytics/distilbert-NER"

// NERExtractor extracts place names with a token-classification pipeline,
// preferring geopolitical entities (GPE) over generic locations (LOC).
type NERExtractor struct {
	session  *hugot.Session
	pipeline *pipelines.TokenClassificationPipeline
	logger   zerolog.Logger
}

// NewNERExtractor prepares the NER model under modelsDir (downloading it on
// first use) and builds the extraction pipeline. Construction errors mean
// the extraction resource is unavailable; callers should degrade to a
// no-candidate extractor rather than fail.
func NewNERExtractor(modelsDir string, logger zerolog.Logger) (*NERExtractor, error) {
	modelPath, err := prepareNERModel(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("preparing NER model: %w", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("creating hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "place-ner",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("creating NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("creating NER pipeline: %w", err)
	}

	logger.Info().Str("model", nerModelName).Msg("NER model loaded")

	return &NERExtractor{
		session:  session,
		pipeline: nerPipeline,
		logger:   logger,
	}, nil
}

// Extract returns the most relevant place name in text. GPE entities
// outrank LOC entities even when a LOC appears earlier; within one label
// class the first occurrence wins. The known-places dictionary is consulted
// only when the model yields no entity at all.
func (e *NERExtractor) Extract(text string) (string, bool) {
	result, err := e.pipeline.RunPipeline([]string{text})
	if err != nil {
		e.logger.Warn().Err(err).Msg("NER run failed")
		return "", false
	}

	var gpe, loc string
	if len(result.Entities) > 0 {
		for _, entity := range result.Entities[0] {
			word := strings.TrimSpace(entity.Word)
			if word == "" {
				continue
			}
			switch entityClass(entity.Entity) {
			case "GPE":
				if gpe == "" {
					gpe = word
				}
			case "LOC":
				if loc == "" {
					loc = word
				}
			}
		}
	}

	if gpe != "" {
		return gpe, true
	}
	if loc != "" {
		return loc, true
	}
	return matchKnownPlace(text)
}

// Close releases the underlying model session.
func (e *NERExtractor) Close() error {
	return e.session.Destroy()
}

// entityClass strips BIO prefixes (B-, I-) from a NER label.
func entityClass(label string) string {
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}

// matchKnownPlace scans text for a dictionary place name, declaration
// order first-match.
func matchKnownPlace(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, place := range knownPlaces {
		if strings.Contains(lower, strings.ToLower(place)) {
			return place, true
		}
	}
	return "", false
}

func prepareNERModel(modelsDir string) (string, error) {
	modelPath := filepath.Join(modelsDir, strings.ReplaceAll(nerModelName, "/", "_"))
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelsDir, 0o755); err != nil {
			return "", fmt.Errorf("creating models directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		downloadOptions.OnnxFilePath = "onnx/model.onnx"
		downloaded, err := hugot.DownloadModel(nerModelName, modelsDir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("downloading model: %w", err)
		}
		modelPath = downloaded
	}
	return modelPath, nil
}

// NoCandidateExtractor is installed when the extraction resource is
// unavailable; it yields no candidate for any input.
type NoCandidateExtractor struct{}

func (NoCandidateExtractor) Extract(string) (string, bool) { return "", false }
