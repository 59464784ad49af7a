package models

import "strings"

const baseLeadScore = 50

var (
	positiveLeadTerms = []string{"interested", "yes", "sure", "definitely", "great", "excellent", "perfect"}
	negativeLeadTerms = []string{"not interested", "no", "maybe", "later", "busy"}

	emotionAdjustments = map[string]int{
		"happy":      5,
		"excited":    5,
		"neutral":    0,
		"angry":      -10,
		"frustrated": -10,
		"sad":        -5,
	}
)

// CalculateLeadScore scores a conversation from 0 to 100. Each positive term
// present adds 10 and each negative term subtracts 15, counted once per term;
// every emotion label then adjusts the score. Terms match as plain substrings,
// so "not interested" also hits "no" and "interested".
func CalculateLeadScore(transcript string, emotions []string) int {
	score := baseLeadScore
	lower := strings.ToLower(transcript)

	for _, term := range positiveLeadTerms {
		if strings.Contains(lower, term) {
			score += 10
		}
	}
	for _, term := range negativeLeadTerms {
		if strings.Contains(lower, term) {
			score -= 15
		}
	}
	for _, e := range emotions {
		score += emotionAdjustments[strings.ToLower(strings.TrimSpace(e))]
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// TranscriptText flattens transcript entries, which may be plain strings or
// objects carrying a "text" field.
func TranscriptText(entries []interface{}) string {
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch v := entry.(type) {
		case string:
			parts = append(parts, v)
		case map[string]interface{}:
			if text, ok := v["text"].(string); ok {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " ")
}

// EmotionLabels extracts labels from emotion entries, which may be plain
// strings or objects with an "emotion" or "label" field.
func EmotionLabels(entries []interface{}) []string {
	labels := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch v := entry.(type) {
		case string:
			labels = append(labels, v)
		case map[string]interface{}:
			if label, ok := v["emotion"].(string); ok {
				labels = append(labels, label)
			} else if label, ok := v["label"].(string); ok {
				labels = append(labels, label)
			}
		}
	}
	return labels
}
