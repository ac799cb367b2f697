package scanning

import "strings"

// transcriptionPrompt is shared by the LLM providers. They act as plain OCR:
// field extraction happens afterwards on the returned text.
const transcriptionPrompt = `You are an OCR engine. Transcribe every piece of text printed in this Vietnamese invoice or receipt image.

Rules:
- Keep each printed line on its own line, in top-to-bottom order
- Keep Vietnamese diacritics exactly as printed (e.g. "Số HĐ", "Tổng cộng", "Ngày")
- Copy numbers exactly, including "." and "," separators and currency marks such as "đ", "VND", "₫"
- Do not translate, summarize, correct or reorder anything
- Do not add commentary, headings or markdown
- Return only the transcribed text`

// cleanTranscript strips the markdown fences and surrounding blank lines that
// language models tend to add around a transcription.
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if nl := strings.Index(text, "\n"); nl >= 0 {
			text = text[nl+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
		text = strings.TrimSuffix(strings.TrimRight(text, " \n"), "```")
	}
	return strings.Trim(text, "\n")
}
