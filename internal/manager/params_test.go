package manager

import (
	"math"
	"testing"

	"llmgate/pkg/types"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func typesRequest(prompt string) types.GenerateRequest {
	return types.GenerateRequest{Prompt: prompt}
}

func TestValidateRequestDefaults(t *testing.T) {
	req, err := ValidateRequest(typesRequest("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := req.Params
	if p.MaxTokens != DefaultMaxTokens || p.Temperature != DefaultTemperature || p.TopP != DefaultTopP {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if p.RepeatPenalty != nil || p.Stop != nil {
		t.Fatalf("optional params should stay absent: %+v", p)
	}
	if req.Prompt != "hello" {
		t.Fatalf("prompt changed: %q", req.Prompt)
	}
}

func TestValidateRequestAcceptsBoundsUnchanged(t *testing.T) {
	cases := []types.GenerateRequest{
		{Prompt: "p", MaxTokens: intp(1), Temperature: floatp(0), TopP: floatp(0)},
		{Prompt: "p", MaxTokens: intp(4096), Temperature: floatp(2), TopP: floatp(1)},
		{Prompt: "p", MaxTokens: intp(128), Temperature: floatp(1.3), TopP: floatp(0.5), RepetitionPenalty: floatp(0)},
		{Prompt: "p", RepetitionPenalty: floatp(1.1), StopSequences: []string{"\n\n", "END"}},
	}
	for i, in := range cases {
		out, err := ValidateRequest(in)
		if err != nil {
			t.Fatalf("case %d: unexpected error: %v", i, err)
		}
		if in.MaxTokens != nil && out.Params.MaxTokens != *in.MaxTokens {
			t.Fatalf("case %d: max_tokens changed to %d", i, out.Params.MaxTokens)
		}
		if in.Temperature != nil && out.Params.Temperature != *in.Temperature {
			t.Fatalf("case %d: temperature changed to %v", i, out.Params.Temperature)
		}
		if in.TopP != nil && out.Params.TopP != *in.TopP {
			t.Fatalf("case %d: top_p changed to %v", i, out.Params.TopP)
		}
		if in.RepetitionPenalty != nil && (out.Params.RepeatPenalty == nil || *out.Params.RepeatPenalty != *in.RepetitionPenalty) {
			t.Fatalf("case %d: repetition_penalty not carried: %+v", i, out.Params)
		}
		if len(out.Params.Stop) != len(in.StopSequences) {
			t.Fatalf("case %d: stop sequences not carried: %v", i, out.Params.Stop)
		}
	}
}

func TestValidateRequestRejectsOutOfRange(t *testing.T) {
	cases := map[string]types.GenerateRequest{
		"max_tokens=0":           {Prompt: "p", MaxTokens: intp(0)},
		"max_tokens=5000":        {Prompt: "p", MaxTokens: intp(5000)},
		"max_tokens=-1":          {Prompt: "p", MaxTokens: intp(-1)},
		"temperature=-1":         {Prompt: "p", Temperature: floatp(-1)},
		"temperature=2.01":       {Prompt: "p", Temperature: floatp(2.01)},
		"temperature=NaN":        {Prompt: "p", Temperature: floatp(math.NaN())},
		"top_p=1.5":              {Prompt: "p", TopP: floatp(1.5)},
		"top_p=-0.1":             {Prompt: "p", TopP: floatp(-0.1)},
		"top_p=+Inf":             {Prompt: "p", TopP: floatp(math.Inf(1))},
		"repetition_penalty<0":   {Prompt: "p", RepetitionPenalty: floatp(-0.5)},
		"repetition_penalty=NaN": {Prompt: "p", RepetitionPenalty: floatp(math.NaN())},
	}
	for name, in := range cases {
		_, err := ValidateRequest(in)
		if !IsInvalidParameter(err) {
			t.Fatalf("%s: expected invalid parameter, got %v", name, err)
		}
	}
}

func TestValidateRequestEmptyPrompt(t *testing.T) {
	for _, p := range []string{"", "   ", "\n\t"} {
		_, err := ValidateRequest(types.GenerateRequest{Prompt: p, MaxTokens: intp(10)})
		if !IsEmptyPrompt(err) {
			t.Fatalf("prompt %q: expected empty prompt error, got %v", p, err)
		}
		if IsInvalidParameter(err) {
			t.Fatalf("prompt %q: empty prompt must not be reported as invalid parameter", p)
		}
	}
}

func TestValidateRequestCopiesStopSequences(t *testing.T) {
	stops := []string{"a", "b"}
	out, err := ValidateRequest(types.GenerateRequest{Prompt: "p", StopSequences: stops})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stops[0] = "z"
	if out.Params.Stop[0] != "a" {
		t.Fatalf("stop sequences alias caller slice")
	}
}
