package manager

import (
	"fmt"
	"strings"

	"llmgate/pkg/types"
)

// Bounds and defaults for generation parameters.
const (
	MinMaxTokens     = 1
	MaxMaxTokens     = 4096
	MaxTemperature   = 2.0
	MaxTopP          = 1.0
	DefaultMaxTokens = 256

	DefaultTemperature = 0.7
	DefaultTopP        = 0.95
)

// ValidateRequest checks a raw request against the parameter bounds and
// resolves absent fields to defaults. It never clamps: any out-of-range
// value is rejected. It has no side effects.
func ValidateRequest(req types.GenerateRequest) (GenerationRequest, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return GenerationRequest{}, emptyPromptError{}
	}
	p := InferParams{
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
	}
	if req.MaxTokens != nil {
		if n := *req.MaxTokens; n < MinMaxTokens || n > MaxMaxTokens {
			return GenerationRequest{}, invalidParameterError{
				field:  "max_tokens",
				reason: fmt.Sprintf("must be in [%d, %d], got %d", MinMaxTokens, MaxMaxTokens, n),
			}
		}
		p.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		if err := checkRange("temperature", *req.Temperature, 0, MaxTemperature); err != nil {
			return GenerationRequest{}, err
		}
		p.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		if err := checkRange("top_p", *req.TopP, 0, MaxTopP); err != nil {
			return GenerationRequest{}, err
		}
		p.TopP = *req.TopP
	}
	if req.RepetitionPenalty != nil {
		v := *req.RepetitionPenalty
		// negated comparison so NaN is rejected too
		if !(v >= 0) {
			return GenerationRequest{}, invalidParameterError{
				field:  "repetition_penalty",
				reason: fmt.Sprintf("must be >= 0, got %v", v),
			}
		}
		p.RepeatPenalty = &v
	}
	if len(req.StopSequences) > 0 {
		p.Stop = append([]string(nil), req.StopSequences...)
	}
	return GenerationRequest{Prompt: req.Prompt, Params: p}, nil
}

func checkRange(field string, v, lo, hi float64) error {
	if !(v >= lo && v <= hi) {
		return invalidParameterError{
			field:  field,
			reason: fmt.Sprintf("must be in [%g, %g], got %v", lo, hi, v),
		}
	}
	return nil
}
