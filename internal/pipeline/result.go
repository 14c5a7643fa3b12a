package pipeline

import (
	"strings"

	"github.com/oukeidos/codelex/internal/codegen"
	"github.com/oukeidos/codelex/internal/intent"
	"github.com/oukeidos/codelex/internal/preprocess"
	"github.com/oukeidos/codelex/internal/pseudocode"
	"github.com/oukeidos/codelex/internal/translator"
)

// Stage names one step of a run; the values double as wire field names.
type Stage string

const (
	StagePreprocess  Stage = "preprocess"
	StageTranslation Stage = "translation"
	StagePseudoCode  Stage = "pseudo_code"
	StageCode        Stage = "code"
	StageExecution   Stage = "execution"
	StageFeedback    Stage = "feedback"
)

const (
	ExecutionPlaceholder = "# Code execution not yet implemented\n# The generated code is ready to run"
	ExecutionMessage     = "Code ready for execution (execution feature coming soon)"
)

// StageRecord is the report line for one stage. Degraded marks a stage that
// took its fallback path.
type StageRecord struct {
	Stage    Stage
	Message  string
	Degraded bool
}

// Result is everything one run produced.
type Result struct {
	RunID       string
	Language    string
	Stages      []StageRecord
	Normalized  preprocess.Text
	Translation translator.Result
	Intent      intent.Intent
	PseudoCode  []string
	Code        codegen.Code
	Execution   string
	Feedback    []string
}

func (r *Result) record(stage Stage, msg string, degraded bool) {
	r.Stages = append(r.Stages, StageRecord{Stage: stage, Message: msg, Degraded: degraded})
}

// Message returns the report line for stage, or "" if it did not run.
func (r Result) Message(stage Stage) string {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s.Message
		}
	}
	return ""
}

// Degraded reports whether any stage fell back.
func (r Result) Degraded() bool {
	for _, s := range r.Stages {
		if s.Degraded {
			return true
		}
	}
	return false
}

// Response is the wire form of a Result.
type Response struct {
	Preprocess  string `json:"preprocess"`
	Translation string `json:"translation"`
	PseudoCode  string `json:"pseudo_code"`
	Code        string `json:"code"`
	Execution   string `json:"execution"`
	Feedback    string `json:"feedback"`
}

// Response flattens r into the wire shape.
func (r Result) Response() Response {
	return Response{
		Preprocess:  r.Message(StagePreprocess),
		Translation: r.Translation.PivotText,
		PseudoCode:  pseudocode.Join(r.PseudoCode),
		Code:        r.Code.String(),
		Execution:   r.Execution,
		Feedback:    strings.Join(r.Feedback, "\n"),
	}
}
