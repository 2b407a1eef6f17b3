package safety

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Emergency(t *testing.T) {
	g := NewGate()

	queries := []string{
		"I am having a heart attack",
		"what to do about CHEST PAIN",
		"my friend took an overdose of pills",
		"should I call 911?",
	}
	for _, q := range queries {
		level, disclaimer := g.Classify(q)
		assert.Equal(t, RiskHigh, level, "query: %s", q)
		assert.Contains(t, disclaimer, "EMERGENCY")
	}
}

func TestClassify_Diagnostic(t *testing.T) {
	g := NewGate()

	level, disclaimer := g.Classify("I have a fever and a rash")
	assert.Equal(t, RiskModerate, level)
	assert.Contains(t, disclaimer, "not medical advice")
}

func TestClassify_Low(t *testing.T) {
	g := NewGate()

	level, disclaimer := g.Classify("hello, who are you?")
	assert.Equal(t, RiskLow, level)
	assert.Contains(t, disclaimer, "educational purposes")
}

func TestClassify_EmergencyWinsOverDiagnostic(t *testing.T) {
	g := NewGate()

	// "chest pain" is an emergency phrase, "pain" is diagnostic.
	level, _ := g.Classify("chest pain treatment options")
	assert.Equal(t, RiskHigh, level)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	g := NewGate()

	level, _ := g.Classify("Heart Attack warning signs")
	assert.Equal(t, RiskHigh, level)
}

func TestNewGateFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrases.yaml")
	content := "emergency:\n  - code blue\ndiagnostic:\n  - sniffles\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	g, err := NewGateFromFile(path)
	require.NoError(t, err)

	level, _ := g.Classify("we have a code blue situation")
	assert.Equal(t, RiskHigh, level)

	level, _ = g.Classify("I have the sniffles")
	assert.Equal(t, RiskModerate, level)

	// Built-in lists are replaced by the override.
	level, _ = g.Classify("heart attack")
	assert.Equal(t, RiskLow, level)
}

func TestNewGateFromFile_Missing(t *testing.T) {
	_, err := NewGateFromFile("/nonexistent/phrases.yaml")
	assert.Error(t, err)
}

func TestIsEmergency(t *testing.T) {
	g := NewGate()
	assert.True(t, g.IsEmergency("severe bleeding from a cut"))
	assert.False(t, g.IsEmergency("benefits of yoga"))
}
