package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/tutorbot/internal/adapters/completion"
	"github.com/okian/tutorbot/internal/domain/model"
	"github.com/okian/tutorbot/pkg/logger"
)

type fakeGenerator struct {
	name     string
	resp     *genai.GenerateContentResponse
	err      error
	prompt   string
	deadline bool
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	_, f.deadline = ctx.Deadline()
	if len(parts) > 0 {
		if t, ok := parts[0].(genai.Text); ok {
			f.prompt = string(t)
		}
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, genai.Text(p))
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func newTestProvider(gens map[model.Mode]generator) *Provider {
	return &Provider{models: gens, timeout: time.Second, log: logger.Nop()}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a provider with per-mode models", t, func() {
		general := &fakeGenerator{name: "general", resp: textResponse("general reply")}
		writing := &fakeGenerator{name: "writing", resp: textResponse("Nice ", "essay.  ")}
		p := newTestProvider(map[model.Mode]generator{
			model.ModeGeneral: general,
			model.ModeWriting: writing,
		})

		Convey("The mode selects the model and text parts are joined", func() {
			out, err := p.Generate(ctx, "check my essay", model.ModeWriting)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "Nice essay.")
			So(writing.prompt, ShouldEqual, "check my essay")
			So(writing.deadline, ShouldBeTrue)
		})

		Convey("Modes without a model fall back to general", func() {
			out, err := p.Generate(ctx, "hi", model.ModeMiniApp)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "general reply")
		})

		Convey("Provider failures surface as generation errors", func() {
			general.err = errors.New("quota exhausted")
			_, err := p.Generate(ctx, "hi", model.ModeGeneral)
			So(errors.Is(err, completion.ErrGeneration), ShouldBeTrue)
		})

		Convey("Empty responses are generation errors", func() {
			general.resp = &genai.GenerateContentResponse{}
			_, err := p.Generate(ctx, "hi", model.ModeGeneral)
			So(errors.Is(err, completion.ErrGeneration), ShouldBeTrue)

			general.resp = textResponse("   ")
			_, err = p.Generate(ctx, "hi", model.ModeGeneral)
			So(errors.Is(err, completion.ErrGeneration), ShouldBeTrue)
		})
	})

	Convey("Given a nil client", t, func() {
		So(newTestProvider(nil).Close(), ShouldBeNil)
	})
}

func TestInstruction(t *testing.T) {
	Convey("Every mode has a system instruction", t, func() {
		for _, m := range model.Modes() {
			So(completion.Instruction(m), ShouldNotBeEmpty)
		}
		So(completion.Instruction(model.ModeMiniApp), ShouldEqual, completion.Instruction(model.ModeGeneral))
		So(completion.Instruction(model.ModeWriting), ShouldContainSubstring, "writing tutor")
	})
}
