package interview

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeGenerator returns canned responses in order and records the system
// instructions it was called with.
type fakeGenerator struct {
	replies []string
	err     error
	calls   int
	systems [][]string
}

func (f *fakeGenerator) Generate(_ context.Context, system []string, _ []Turn, _ string) (string, error) {
	f.systems = append(f.systems, system)
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[f.calls%len(f.replies)]
	f.calls++
	return reply, nil
}

type fakeResearcher struct {
	result string
	err    error
	called bool
	query  string
}

func (f *fakeResearcher) Search(_ context.Context, query string) (string, error) {
	f.called = true
	f.query = query
	return f.result, f.err
}

func bpSession(asked string, answered int) SessionState {
	return SessionState{
		ID:            "sess-1",
		CurrentPhase:  PhaseBusinessPlan,
		AskedQ:        asked,
		AnsweredCount: answered,
		Industry:      "food",
		Location:      "Austin",
	}
}

func TestEngineCheckpointAtBoundary(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		"**Business Foundation Section Complete**\n\nHere's what I've captured so far. Does this look accurate to you?",
	}}
	e := NewEngine(gen, nil, nil, nil)

	st := bpSession("BUSINESS_PLAN.04", 4)
	res, err := e.ProcessTurn(context.Background(), st, "We sell hand-poured soy candles to gift shops across Texas.", nil)
	if err != nil {
		t.Fatal(err)
	}

	if res.Kind != TurnCheckpoint {
		t.Fatalf("kind = %s, want checkpoint", res.Kind)
	}
	if strings.Contains(res.Reply, "[[Q:BUSINESS_PLAN.05]]") {
		t.Errorf("checkpoint reply carries a question tag: %q", res.Reply)
	}
	if !res.ShowAcceptModify {
		t.Error("checkpoint must surface accept/modify")
	}
	if res.Patch == nil || res.Patch.CheckpointPending == nil || !*res.Patch.CheckpointPending {
		t.Fatal("checkpoint pending flag not set")
	}
	if res.Patch.AskedQ != nil {
		t.Errorf("asked_q must stay frozen at the boundary, got patch %v", *res.Patch.AskedQ)
	}
	if res.Patch.CheckpointBoundary == nil || *res.Patch.CheckpointBoundary != 4 {
		t.Error("boundary not recorded")
	}
}

func TestEngineCheckpointDoesNotRefire(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Noted — let me adjust that summary. Does this look accurate now?"}}
	e := NewEngine(gen, nil, nil, nil)

	st := bpSession("BUSINESS_PLAN.04", 4)
	st.CheckpointPending = true
	st.CheckpointBoundary = 4

	res, err := e.ProcessTurn(context.Background(), st, "Please change the location to Dallas.", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind == TurnCheckpoint {
		t.Fatal("checkpoint re-fired for the same boundary")
	}
	if res.Patch != nil && res.Patch.AskedQ != nil {
		t.Error("asked_q moved while checkpoint pending")
	}
}

func TestEngineModifyDraftDoesNotAdvanceSequence(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		"Here's a refined version based on your feedback: we position the candles as premium gifts.\n\n" +
			"[[Q:BUSINESS_PLAN.10]] What's your pricing model?",
	}}
	e := NewEngine(gen, nil, nil, nil)

	st := bpSession("BUSINESS_PLAN.09", 9)
	res, err := e.ModifyDraft(context.Background(), st,
		"We sell mid-range candles.", "Make the tone more formal.", nil)
	if err != nil {
		t.Fatal(err)
	}

	if res.Kind != TurnCommand {
		t.Fatalf("kind = %s, want command", res.Kind)
	}
	if res.Patch != nil {
		t.Fatalf("modify emitted a session patch: %+v", res.Patch)
	}
	if strings.Contains(res.Reply, "[[Q:") {
		t.Errorf("modify reply carries a question tag: %q", res.Reply)
	}
	if !res.ShowAcceptModify {
		t.Error("refined draft must surface accept/modify")
	}
	if res.Progress.Answered != 9 {
		t.Errorf("progress answered = %d, want 9 (unchanged)", res.Progress.Answered)
	}
}

func TestEngineModifyDraftAtSectionBoundary(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		"Here's a refined version based on your feedback: sharper value proposition.",
	}}
	e := NewEngine(gen, nil, nil, nil)

	// BUSINESS_PLAN.08 closes a section; a modify must not fire the gate.
	st := bpSession("BUSINESS_PLAN.08", 8)
	res, err := e.ModifyDraft(context.Background(), st,
		"Our value proposition is convenience.", "Emphasize quality over convenience.", nil)
	if err != nil {
		t.Fatal(err)
	}

	if res.Kind == TurnCheckpoint {
		t.Fatal("modify turn fired a section checkpoint")
	}
	if res.Patch != nil {
		t.Fatalf("modify at a boundary emitted a session patch: %+v", res.Patch)
	}
	if len(gen.systems) != 1 || len(gen.systems[0]) != 2 || gen.systems[0][1] != modifyPrompt {
		t.Error("modify must regenerate under the dedicated revision instruction")
	}
}

func TestEngineAcceptResumesCheckpoint(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		"Great! Let's move to the next question...\n\n[[Q:BUSINESS_PLAN.05]] What makes your product unique?",
	}}
	e := NewEngine(gen, nil, nil, nil)

	st := bpSession("BUSINESS_PLAN.04", 4)
	st.CheckpointPending = true
	st.CheckpointBoundary = 4

	res, err := e.ProcessTurn(context.Background(), st, "accept", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Patch == nil {
		t.Fatal("no patch")
	}
	if res.Patch.CheckpointPending == nil || *res.Patch.CheckpointPending {
		t.Error("pending flag not cleared")
	}
	if res.Patch.AskedQ == nil || *res.Patch.AskedQ != "BUSINESS_PLAN.05" {
		t.Errorf("asked_q = %v, want BUSINESS_PLAN.05", res.Patch.AskedQ)
	}
	if res.Patch.AnsweredCount == nil || *res.Patch.AnsweredCount != 5 {
		t.Errorf("answered_count = %v, want 5", res.Patch.AnsweredCount)
	}
}

func TestEngineForwardSkipCorrected(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		"Great answer!\n\n[[Q:BUSINESS_PLAN.19]] Who are your competitors?",
	}}
	e := NewEngine(gen, nil, nil, nil)

	st := bpSession("BUSINESS_PLAN.10", 10)
	res, err := e.ProcessTurn(context.Background(), st, "My answer to question ten.", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Patch == nil || res.Patch.AskedQ == nil || *res.Patch.AskedQ != "BUSINESS_PLAN.11" {
		t.Fatalf("forward skip not corrected, patch = %+v", res.Patch)
	}
	if res.Patch.AnsweredCount == nil || *res.Patch.AnsweredCount != 11 {
		t.Errorf("answered_count = %v, want 11", res.Patch.AnsweredCount)
	}
}

func TestEngineDraftDuringKYCRedirects(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"should never be called"}}
	e := NewEngine(gen, nil, nil, nil)

	st := SessionState{ID: "s", CurrentPhase: PhaseKYC, AskedQ: "KYC.03", AnsweredCount: 3}
	res, err := e.ProcessTurn(context.Background(), st, "draft", nil)
	if err != nil {
		t.Fatal(err)
	}
	if gen.calls != 0 {
		t.Error("generator called for a rejected command")
	}
	if res.Patch != nil {
		t.Errorf("state advanced on a rejected command: %+v", res.Patch)
	}
	if !strings.Contains(strings.ToLower(res.Reply), "answer") {
		t.Errorf("redirect message missing: %q", res.Reply)
	}
	if res.Progress.Answered != 3 {
		t.Errorf("progress shifted: %+v", res.Progress)
	}
}

func TestEngineTransitionOnFinalQuestion(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		"Congratulations — you've completed the getting-to-know-you phase! Next up is your business plan.",
	}}
	e := NewEngine(gen, nil, nil, nil)

	st := SessionState{ID: "s", CurrentPhase: PhaseKYC, AskedQ: "KYC.20", AnsweredCount: 19}
	res, err := e.ProcessTurn(context.Background(), st, "That covers everything about me.", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != TurnTransition {
		t.Fatalf("kind = %s, want transition", res.Kind)
	}
	if res.Patch == nil || res.Patch.CurrentPhase == nil || *res.Patch.CurrentPhase != PhaseBusinessPlan {
		t.Fatalf("phase not advanced: %+v", res.Patch)
	}
	if res.Patch.AskedQ == nil || *res.Patch.AskedQ != "BUSINESS_PLAN.01" {
		t.Errorf("asked_q = %v, want BUSINESS_PLAN.01", res.Patch.AskedQ)
	}
	if res.Patch.AnsweredCount == nil || *res.Patch.AnsweredCount != 0 {
		t.Error("answered_count not reset")
	}
	if res.Progress.Percent != 100 {
		t.Errorf("completed phase progress = %d%%, want 100%%", res.Progress.Percent)
	}
}

func TestEngineGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream timeout")}
	e := NewEngine(gen, nil, nil, nil)

	st := bpSession("BUSINESS_PLAN.07", 7)
	res, err := e.ProcessTurn(context.Background(), st, "an answer", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.GenerationFailed {
		t.Error("failure not flagged")
	}
	if res.Patch != nil {
		t.Errorf("state mutated on failure: %+v", res.Patch)
	}
	if res.Reply != GenerationFailureReply {
		t.Errorf("reply = %q", res.Reply)
	}
}

func TestEngineTagInjectionFallback(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Nice to meet you! What's your name?"}}
	e := NewEngine(gen, nil, nil, nil)

	st := SessionState{ID: "s", CurrentPhase: PhaseKYC, AskedQ: "KYC.01", AnsweredCount: 0}
	res, err := e.ProcessTurn(context.Background(), st, "hi", nil)
	if err != nil {
		t.Fatal(err)
	}
	// The injected tag is KYC.02 (last number + 1): normal progression.
	if res.Patch == nil || res.Patch.AskedQ == nil || *res.Patch.AskedQ != "KYC.02" {
		t.Fatalf("injected tag not persisted, patch = %+v", res.Patch)
	}
	if strings.Contains(res.Reply, "[[Q:") {
		t.Errorf("display reply carries a raw tag: %q", res.Reply)
	}
}

func TestEnginePhaseMismatchRepair(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"[[Q:BUSINESS_PLAN.08]] What's your pricing model?"}}
	e := NewEngine(gen, nil, nil, nil)

	// current_phase disagrees with asked_q outside a transition window.
	st := SessionState{ID: "s", CurrentPhase: PhaseKYC, AskedQ: "BUSINESS_PLAN.07", AnsweredCount: 7}
	res, err := e.ProcessTurn(context.Background(), st, "a fine answer", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Patch == nil || res.Patch.CurrentPhase == nil || *res.Patch.CurrentPhase != PhaseBusinessPlan {
		t.Fatalf("phase not re-derived from asked_q: %+v", res.Patch)
	}
	if res.Progress.Phase != PhaseBusinessPlan {
		t.Errorf("progress phase = %s", res.Progress.Phase)
	}
}

func TestEngineResearchDegradesGracefully(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"[[Q:BUSINESS_PLAN.14]] Let's talk market size."}}
	research := &fakeResearcher{err: errors.New("search unavailable")}
	e := NewEngine(gen, research, nil, nil)

	st := bpSession("BUSINESS_PLAN.13", 13)
	res, err := e.ProcessTurn(context.Background(), st, "Who are my competitors in the candle market?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !research.called {
		t.Error("research not attempted")
	}
	if res.GenerationFailed {
		t.Error("research failure must not fail the turn")
	}
}

func TestEngineScrappingRunsResearch(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		"Here's a refined version of your thoughts:\n\nA polished answer.",
	}}
	research := &fakeResearcher{result: "three competitors found"}
	e := NewEngine(gen, research, nil, nil)

	st := bpSession("BUSINESS_PLAN.13", 13)
	res, err := e.ProcessTurn(context.Background(), st, "scrapping: need info on competitors in candles", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !research.called {
		t.Error("scrapping with research keywords should trigger a search")
	}
	if !res.ShowAcceptModify {
		t.Error("scrapping response must surface accept/modify")
	}
	if res.Patch != nil && res.Patch.AskedQ != nil {
		t.Error("command advanced the sequence")
	}
}

func TestEngineAcceptDraft(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Great!\n\n[[Q:BUSINESS_PLAN.09]] What's next?"}}
	e := NewEngine(gen, nil, nil, nil)

	st := bpSession("BUSINESS_PLAN.08", 8)
	res, err := e.AcceptDraft(context.Background(), st, "Our product line is three candle scents.", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Patch == nil || res.Patch.AskedQ == nil || *res.Patch.AskedQ != "BUSINESS_PLAN.09" {
		t.Fatalf("accepted draft did not advance, patch = %+v", res.Patch)
	}
	if res.Patch.AnsweredCount == nil || *res.Patch.AnsweredCount != 9 {
		t.Errorf("answered_count = %v, want 9", res.Patch.AnsweredCount)
	}
}

func TestEngineTransitionWindowResolves(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"[[Q:ROADMAP.01]] What's your launch timeline?"}}
	e := NewEngine(gen, nil, nil, nil)

	st := SessionState{ID: "s", CurrentPhase: PhasePlanToRoadmap, AskedQ: "ROADMAP.01", AnsweredCount: 0}
	res, err := e.ProcessTurn(context.Background(), st, "Let's do it!", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Patch == nil || res.Patch.CurrentPhase == nil || *res.Patch.CurrentPhase != PhaseRoadmap {
		t.Fatalf("transition window did not resolve: %+v", res.Patch)
	}
}
