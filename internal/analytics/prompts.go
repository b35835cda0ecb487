package analytics

import (
	"encoding/json"
	"fmt"
	"strings"
)

// buildPrompt renders the analysis instructions around a ledger summary.
func buildPrompt(s Summary) (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("buildPrompt: marshal summary: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a personal finance assistant reviewing a user's card and bank spending.\n\n")
	b.WriteString("Spending summary (amounts are in the statement currency):\n")
	b.Write(data)
	b.WriteString("\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Describe the user's spending habits in two or three sentences.\n")
	b.WriteString("- Name the categories of spending that dominate, inferred from merchant names.\n")
	b.WriteString("- Point out unusual months or merchants.\n")
	b.WriteString("- Give up to five concrete, actionable saving tips.\n\n")
	b.WriteString("Output STRICT JSON only, a single object with these fields:\n")
	b.WriteString("- \"summary\": string\n")
	b.WriteString("- \"categories\": array of {\"name\": string, \"share\": number between 0 and 100}\n")
	b.WriteString("- \"observations\": array of strings\n")
	b.WriteString("- \"tips\": array of strings\n\n")
	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Output must begin with \"{\" and end with \"}\".\n")

	return b.String(), nil
}

// cleanModelJSON strips Markdown fences and surrounding prose from a model
// response, keeping the outermost JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
