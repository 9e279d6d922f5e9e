package agentapi

import (
	"os"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestNewClient_WithAPIKey(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: "test-key", Model: anthropic.ModelClaudeSonnet4_5_20250929})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.Model() != anthropic.ModelClaudeSonnet4_5_20250929 {
		t.Errorf("Model = %q", client.Model())
	}
	if client.Tracker() == nil {
		t.Error("Tracker should not be nil")
	}
}

func TestNewClient_NoAPIKey(t *testing.T) {
	original := os.Getenv("ANTHROPIC_API_KEY")
	defer os.Setenv("ANTHROPIC_API_KEY", original)
	os.Unsetenv("ANTHROPIC_API_KEY")

	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Error("expected error with no API key configured")
	}
}

func TestNewClient_DefaultModel(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.Model() != anthropic.ModelClaudeSonnet4_5_20250929 {
		t.Errorf("Model = %q, want default sonnet", client.Model())
	}
}

func TestTranslateModelForBedrock_KnownModel(t *testing.T) {
	got := translateModelForBedrock(anthropic.ModelClaudeSonnet4_5_20250929)
	want := anthropic.Model("us.anthropic.claude-sonnet-4-5-20250929-v1:0")
	if got != want {
		t.Errorf("translateModelForBedrock = %q, want %q", got, want)
	}
}

func TestTranslateModelForBedrock_UnknownModelPassesThrough(t *testing.T) {
	custom := anthropic.Model("custom-model")
	if got := translateModelForBedrock(custom); got != custom {
		t.Errorf("translateModelForBedrock(%q) = %q, want unchanged", custom, got)
	}
}

func TestTokenTracker_AddAndTotal(t *testing.T) {
	tr := NewTokenTracker()
	tr.Add(100, 50)
	tr.Add(200, 75)

	in, out := tr.Total()
	if in != 300 || out != 125 {
		t.Errorf("Total = (%d, %d), want (300, 125)", in, out)
	}
	if tr.Calls() != 2 {
		t.Errorf("Calls = %d, want 2", tr.Calls())
	}
}

func TestTokenTracker_Cost(t *testing.T) {
	tr := NewTokenTracker()
	tr.Add(1_000_000, 1_000_000)

	cost := tr.Cost()
	want := 3.0 + 15.0
	if cost != want {
		t.Errorf("Cost = %f, want %f", cost, want)
	}
}
