package evaluate

import (
	"fmt"
	"strings"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

// Field labels the model is instructed to emit, and the parser looks for.
const (
	labelClaims    = "Claim(s) Detected:"
	labelRating    = "Rating:"
	labelReasoning = "Reasoning:"
	labelScore     = "Truthfulness Score:"
)

// Metadata carries optional context about the post under evaluation.
type Metadata struct {
	Platform model.Platform
	PostDate string
}

// BuildPrompt constructs the fact-checking prompt: framing, the definition of
// a verifiable factual claim with worked examples, the sentinel instruction,
// the claim text verbatim, the enumerated evidence blocks, and the exact
// four-field output template.
func BuildPrompt(claimText string, evidence []model.EvidenceItem, meta Metadata) string {
	var b strings.Builder

	b.WriteString(`Please act as a neutral and critical fact-checker. Your task is to evaluate the truthfulness of the following content, which may be a short social media post or tweet. The original post and search results may be in Swedish, and your output should also be in Swedish.

Instructions:
1. First, determine whether the post contains one or more verifiable factual claims.
   A verifiable factual claim is a statement about the world that can in principle be checked against evidence.
   - Factual claim: "Stockholm är Sveriges huvudstad." (checkable against records)
   - Factual claim: "Arbetslösheten steg till 9 % i mars." (checkable against statistics)
   - NOT a claim - opinion: "Jag tycker sommaren är bäst."
   - NOT a claim - question: "Vad tycker ni om budgeten?"
   - NOT a claim - prediction: "Partiet kommer att vinna valet nästa år."
   - NOT a claim - vague statement: "Det går åt fel håll i landet."
   If the post contains no verifiable factual claim, write exactly "` + model.NoClaimSentinel + `" in both the Claim(s) Detected field and the Rating field.
2. If there are claims, extract them and evaluate their truthfulness individually or as a whole depending on how they relate to each other.
3. When reviewing the provided search result snippets:
   - Prioritize content from credible, authoritative, and neutral sources.
   - Discount or be skeptical of sources that show bias, sensationalism, or lack of supporting evidence.
   - Consider any contradictory or conflicting information.
4. Be cautious of misinformation patterns, even if some claims appear plausible.
`)

	if meta.Platform != "" || meta.PostDate != "" {
		b.WriteString(fmt.Sprintf("\nContext: the content was posted on %s", orNA(string(meta.Platform))))
		if meta.PostDate != "" {
			b.WriteString(fmt.Sprintf(" at %s", meta.PostDate))
		}
		b.WriteString(".\n")
	}

	b.WriteString(fmt.Sprintf("\nContent to Evaluate (Claim or Tweet):\n%q\n\nSearch Results Snippets:\n", claimText))

	for i, item := range evidence {
		b.WriteString(fmt.Sprintf("\n%d. URL: %s\n   Title: %s\n   Snippet: %s\n",
			i+1, orNA(item.URL), orNA(item.Title), orNA(item.Snippet)))
	}

	b.WriteString(`
Based on these snippets, provide:
1. Whether the post contains one or more factual claims. If not, write "` + model.NoClaimSentinel + `".
2. If claims exist:
   - A truthfulness rating for the overall claim(s) using the following categories:
     * Likely True
     * Likely False
     * Misleading
     * Uncertain
     * Cannot Verify
   - A brief reasoning (1-2 sentences) explaining your rating. Mention any contradictory information, detected bias, or low-reliability content you considered.
   - A numeric "Truthfulness Score" from 0 to 10 (where 0 = completely false or unreliable, 10 = clearly true based on strong evidence).

Output format:
` + labelClaims + ` [Summarize the identified factual claim(s), or write "` + model.NoClaimSentinel + `"]
` + labelRating + ` [Your chosen rating category]
` + labelReasoning + ` [Your brief explanation]
` + labelScore + ` [0-10]
`)

	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
