package ai

import (
	"fmt"
	"strings"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
)

const systemPrompt = `You are a contract risk analyst. Explain the flagged clause risk in plain language for a non-lawyer. Be specific about what the clause means and why it carries risk. Two to four sentences. Mention the risk category by name. Do not give legal advice.`

// buildUserPrompt renders the bounded finding context as the user message.
// The full contract is never included.
func buildUserPrompt(req driven.ExplainRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk category: %s\n", req.Category)
	fmt.Fprintf(&b, "Severity: %s\n", req.Severity)
	fmt.Fprintf(&b, "Flagged text: %q\n", req.MatchedText)
	if req.ClauseExcerpt != "" {
		fmt.Fprintf(&b, "Clause excerpt: %q\n", req.ClauseExcerpt)
	}
	if req.Language == domain.LanguageHindi {
		b.WriteString("Respond in Hindi.\n")
	}
	return b.String()
}
