package ai

import "github.com/dmitrijs2005/gophnotes/internal/server/models"

var prompts = map[models.Mode]string{
	models.ModeParaphrase: "You are a professional editor. Paraphrase the following text to make it clearer and more concise, maintaining the original meaning. Do not add conversational filler.",
	models.ModeSummarize:  "Summarize the following text into a concise paragraph, capturing the key points.",
	models.ModeFormal:     "Rewrite the following text to sound more professional, objective, and formal suitable for business or academic contexts.",
	models.ModeSimple:     "Rewrite the following text using simple vocabulary and sentence structures that are easy to understand (5th-grade reading level).",
	models.ModeCreative:   "Rewrite the following text in a more creative, evocative, and engaging style.",
	models.ModeExpand:     "Expand upon the following text, adding more descriptive details, context, and depth while maintaining the original intent.",
	models.ModeShorten:    "Shorten the following text significantly, removing valid redundancy and flowery language without losing the core message.",
	models.ModeContinue:   "Continue writing the following text naturally, picking up from where it left off, maintaining the existing style, tone, and context. Write about 2-3 sentences max to keep it responsive.",
}

// SystemPrompt returns the instruction for mode, falling back to the
// default mode's prompt.
func SystemPrompt(mode models.Mode) string {
	if p, ok := prompts[mode]; ok {
		return p
	}
	return prompts[models.DefaultMode]
}
