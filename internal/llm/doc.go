// Package llm provides vision-model clients that describe a photo in text.
// It supports Anthropic, OpenAI and Gemini. Each client sends exactly one
// request per call: no retries, no streaming.
package llm
