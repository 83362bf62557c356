package tokenizer

import "testing"

func TestIsOpenAIModel(t *testing.T) {
	testCases := []struct {
		model    string
		expected bool
	}{
		{model: "gpt-4o", expected: true},
		{model: "text-embedding-3-small", expected: true},
		{model: "claude-3-5-sonnet", expected: false},
		{model: "llama-3", expected: false},
	}
	for _, testCase := range testCases {
		if actual := isOpenAIModel(testCase.model); actual != testCase.expected {
			t.Fatalf("isOpenAIModel(%q) = %v, want %v", testCase.model, actual, testCase.expected)
		}
	}
}

func TestNewCounterDefault(t *testing.T) {
	counter, model, err := NewCounter(Config{})
	if err != nil {
		t.Fatalf("NewCounter error: %v", err)
	}
	if counter == nil {
		t.Fatalf("expected non-nil counter")
	}
	if model != DefaultModel {
		t.Fatalf("expected model %s, got %q", DefaultModel, model)
	}
	tokens, err := counter.CountString("proj:\n  - readme.md\n")
	if err != nil {
		t.Fatalf("CountString error: %v", err)
	}
	if tokens <= 0 {
		t.Fatalf("expected positive token count, got %d", tokens)
	}
}

func TestNewCounterFallsBackForUnknownModels(t *testing.T) {
	counter, model, err := NewCounter(Config{Model: "claude-3-5-sonnet"})
	if err != nil {
		t.Fatalf("NewCounter error: %v", err)
	}
	if model != defaultEncodingName || counter.Name() != defaultEncodingName {
		t.Fatalf("expected fallback encoding, got model %q counter %q", model, counter.Name())
	}
}

func TestNewCounterReusesEncodings(t *testing.T) {
	first, _, err := NewCounter(Config{Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("NewCounter error: %v", err)
	}
	second, _, err := NewCounter(Config{Model: "GPT-4o"})
	if err != nil {
		t.Fatalf("NewCounter error: %v", err)
	}
	if first.(encodingCounter).encoding != second.(encodingCounter).encoding {
		t.Fatalf("expected the cached encoding to be shared")
	}
}

func TestNewCounterNormalizesModelCase(t *testing.T) {
	testCases := []struct {
		name     string
		model    string
		expected string
	}{
		{name: "mixed_case", model: "GPT-4o", expected: "gpt-4o"},
		{name: "padded_upper_case", model: "  GPT-4 ", expected: "gpt-4"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			counter, model, err := NewCounter(Config{Model: testCase.model})
			if err != nil {
				t.Fatalf("NewCounter error: %v", err)
			}
			if model != testCase.expected || counter.Name() != model {
				t.Fatalf("expected model %q, got %q with counter %q", testCase.expected, model, counter.Name())
			}
		})
	}
}

func TestEncodingCounterWithoutEncoding(t *testing.T) {
	if _, err := (encodingCounter{name: "empty"}).CountString("text"); err == nil {
		t.Fatalf("expected an error for a counter without encoding")
	}
}
