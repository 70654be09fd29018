// Package completion defines the generative-text provider used for free-text
// replies.
package completion

import (
	"context"
	"errors"

	"github.com/okian/tutorbot/internal/domain/model"
)

// ErrGeneration means the provider could not produce a reply.
var ErrGeneration = errors.New("generation failed")

// Provider turns a user prompt into a reply, steered by the session mode.
type Provider interface {
	Generate(ctx context.Context, prompt string, mode model.Mode) (string, error)
}

var instructions = map[model.Mode]string{
	model.ModeGeneral: "You are a helpful educational AI assistant. Provide clear, informative, and encouraging responses to learning questions.",
	model.ModeWriting: "You are an expert writing tutor. Help with grammar, style, structure, and creative writing. Be encouraging and provide specific suggestions.",
	model.ModeSpeaking: "You are a speaking coach and pronunciation expert. Help with speaking skills, pronunciation, conversation, and public speaking. " +
		"Be supportive and practical.",
	model.ModeReading: "You are a reading comprehension expert and literature tutor. Help with text analysis, vocabulary, reading strategies, " +
		"and understanding complex texts.",
	model.ModeListening: "You are an audio analysis and listening comprehension expert. Help with understanding audio content, note-taking, " +
		"and listening skills.",
}

// Instruction returns the system instruction for mode. Modes without their
// own instruction use the general one.
func Instruction(mode model.Mode) string {
	if s, ok := instructions[mode]; ok {
		return s
	}
	return instructions[model.ModeGeneral]
}
