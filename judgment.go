package turingprobe

import (
	"fmt"
	"strings"
)

// Markers the judge is asked to reply with.
const (
	answerMarker      = "Answer:"
	explanationMarker = "Explanation:"
)

// judgeSystemPrompt frames the judge model.
const judgeSystemPrompt = "You are an expert AI analyst. Given a prompt and a response, " +
	"determine whether the response was written by a human or an AI. " +
	"Be thoughtful but concise."

// BuildJudgePrompt embeds a question and response into the fixed judge template.
func BuildJudgePrompt(question, response string) string {
	return strings.TrimSpace(fmt.Sprintf(`
Prompt:
%s

Response:
%s

Was this response written by a human or an AI?
Reply in this format:
Answer: <human or AI>
Explanation: <short reason why>
`, question, response))
}

// ParseJudgment extracts (guess, explanation) from a free-form judge reply.
//
// Without an "Answer:" marker anywhere the reply is unparseable and is kept
// whole as the explanation with guess "unknown". Otherwise the reply is
// scanned in two states: everything before the first "Explanation:" is the
// verdict (all "Answer:" markers removed, trimmed, lower-cased); the text
// after it, up to any further "Explanation:", is the explanation.
//
// Verdicts are not canonicalized further: "the human" and "human" stay distinct.
func ParseJudgment(raw string) (guess, explanation string) {
	if !strings.Contains(raw, answerMarker) {
		return GuessUnknown, raw
	}

	const (
		inVerdict = iota
		inExplanation
	)
	state := inVerdict
	var verdict, expl strings.Builder

	rest := raw
scan:
	for {
		i := strings.Index(rest, explanationMarker)
		switch state {
		case inVerdict:
			if i < 0 {
				verdict.WriteString(rest)
				break scan
			}
			verdict.WriteString(rest[:i])
			rest = rest[i+len(explanationMarker):]
			state = inExplanation
		case inExplanation:
			if i >= 0 {
				rest = rest[:i]
			}
			expl.WriteString(rest)
			break scan
		}
	}

	guess = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(verdict.String(), answerMarker, "")))
	return guess, strings.TrimSpace(expl.String())
}
