// Package safety classifies query risk before any model or index access.
package safety

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RiskLevel is a coarse safety tier for an incoming query.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"      // general information
	RiskModerate RiskLevel = "Moderate" // symptom checking / medical questions
	RiskHigh     RiskLevel = "High"     // emergency, blocks the pipeline
)

// Emergency phrases trigger an immediate High classification and block
// the rest of the pipeline.
var emergencyPhrases = []string{
	"suicide", "kill myself", "want to die", "overdose",
	"heart attack", "stroke", "difficulty breathing", "severe bleeding",
	"poison", "unconscious", "call 911", "chest pain", "crushing pain",
	"seizure", "anaphylaxis", "severe burn",
}

// Diagnostic phrases mark a query as Moderate risk.
var diagnosticPhrases = []string{
	"symptom", "diagnosis", "do i have", "treatment", "cure",
	"medicine", "pills", "therapy", "pain", "hurt", "swollen",
	"rash", "fever", "infection",
}

var disclaimers = map[RiskLevel]string{
	RiskLow:      "This information is for educational purposes only.",
	RiskModerate: "This information is not medical advice. Consult a healthcare professional for diagnosis.",
	RiskHigh:     "⚠️ EMERGENCY PROTOCOL: This query indicates a potential medical emergency.",
}

// Disclaimer returns the fixed disclaimer text for a risk level.
func Disclaimer(level RiskLevel) string {
	return disclaimers[level]
}

// Gate classifies raw query text against ordered phrase lists.
// High is checked before Moderate, so a query matching both tiers
// classifies High.
type Gate struct {
	emergency  []string
	diagnostic []string
}

// NewGate creates a gate with the built-in phrase lists.
func NewGate() *Gate {
	return &Gate{
		emergency:  emergencyPhrases,
		diagnostic: diagnosticPhrases,
	}
}

// phraseFile is the YAML shape for phrase-list overrides.
type phraseFile struct {
	Emergency  []string `yaml:"emergency"`
	Diagnostic []string `yaml:"diagnostic"`
}

// NewGateFromFile creates a gate with phrase lists loaded from a YAML
// file. Lists omitted in the file fall back to the built-ins.
func NewGateFromFile(path string) (*Gate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("safety: read phrase file: %w", err)
	}

	var pf phraseFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("safety: parse phrase file: %w", err)
	}

	g := NewGate()
	if len(pf.Emergency) > 0 {
		g.emergency = pf.Emergency
	}
	if len(pf.Diagnostic) > 0 {
		g.diagnostic = pf.Diagnostic
	}
	return g, nil
}

// Classify returns the risk level for a query and its disclaimer.
// Pure function of the query text and the gate's phrase lists.
func (g *Gate) Classify(query string) (RiskLevel, string) {
	lower := strings.ToLower(query)

	for _, phrase := range g.emergency {
		if strings.Contains(lower, phrase) {
			return RiskHigh, disclaimers[RiskHigh]
		}
	}

	for _, phrase := range g.diagnostic {
		if strings.Contains(lower, phrase) {
			return RiskModerate, disclaimers[RiskModerate]
		}
	}

	return RiskLow, disclaimers[RiskLow]
}

// IsEmergency reports whether a query classifies High.
func (g *Gate) IsEmergency(query string) bool {
	level, _ := g.Classify(query)
	return level == RiskHigh
}
