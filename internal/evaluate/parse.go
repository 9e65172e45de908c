package evaluate

import "strings"

// rawFields is the typed optional-field result of parsing the model's
// free-text answer. Missing fields stay unset so the caller can apply its
// own defaults; parsing itself never fails.
type rawFields struct {
	claims    string
	rating    string
	reasoning string
	score     string

	hasClaims    bool
	hasRating    bool
	hasReasoning bool
	hasScore     bool
}

// parseResponse locates the four labeled fields in the model output.
// Matching is case-insensitive and tolerant of surrounding whitespace; only
// the first line of each field's value is taken so a rambling value cannot
// bleed into the next field. The first occurrence of each label wins.
func parseResponse(output string) rawFields {
	var parsed rawFields

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		// Some models bold the labels in Markdown.
		line = strings.Trim(line, "*")
		lower := strings.ToLower(line)

		switch {
		case !parsed.hasClaims && strings.HasPrefix(lower, strings.ToLower(labelClaims)):
			parsed.claims = fieldValue(line, labelClaims)
			parsed.hasClaims = true
		case !parsed.hasRating && strings.HasPrefix(lower, strings.ToLower(labelRating)):
			parsed.rating = fieldValue(line, labelRating)
			parsed.hasRating = true
		case !parsed.hasReasoning && strings.HasPrefix(lower, strings.ToLower(labelReasoning)):
			parsed.reasoning = fieldValue(line, labelReasoning)
			parsed.hasReasoning = true
		case !parsed.hasScore && strings.HasPrefix(lower, strings.ToLower(labelScore)):
			parsed.score = fieldValue(line, labelScore)
			parsed.hasScore = true
		}
	}

	return parsed
}

func fieldValue(line, label string) string {
	value := strings.TrimSpace(line[len(label):])
	// A bolded label leaves its closing ** in front of the value.
	value = strings.Trim(value, "* ")
	// Models sometimes echo the template's square brackets.
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")
	return strings.TrimSpace(value)
}
