// Angel Guided Interview Engine
// Turn orchestration: command dispatch, checkpoints, transitions, and the
// tag-validation pipeline

package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/founderport/angel/internal/metrics"
)

// generationTimeout bounds the external generator call. The deterministic
// pipeline stages themselves carry no timeout.
const generationTimeout = 10 * time.Second

// historyWindow is the number of recent turns forwarded to the generator.
const historyWindow = 10

// researchTriggers are the business-plan topics that warrant a background
// research call before generation.
var researchTriggers = []string{"competitors", "market", "industry", "trends", "pricing", "vendors", "domain", "legal requirements"}

// Engine is the deterministic control layer between the nondeterministic
// generator and the client. One ProcessTurn call is one sequential
// pipeline; session state is only mutated through the returned patch after
// the full pipeline succeeds.
type Engine struct {
	gen      Generator
	research Researcher
	notify   StatusNotifier
	log      *zap.Logger
}

// NewEngine wires the engine to its collaborators. research and notify may
// be nil; the corresponding steps are skipped.
func NewEngine(gen Generator, research Researcher, notify StatusNotifier, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{gen: gen, research: research, notify: notify, log: log}
}

// ProcessTurn runs one user turn through the full pipeline and returns the
// reply payload plus the session patch to persist. The caller serializes
// turns per session; two concurrent turns for one session are not safe.
func (e *Engine) ProcessTurn(ctx context.Context, st SessionState, userMessage string, history []Turn) (*TurnResult, error) {
	content := strings.TrimSpace(userMessage)
	if content == "" {
		content = "hi"
	}

	patch := &SessionPatch{}

	// Data-integrity repair: asked_q's phase wins over a disagreeing
	// current_phase outside a transition window.
	lastTag, hasLast := ParseTagLiteral(st.AskedQ)
	if hasLast && !IsTransition(st.CurrentPhase) && lastTag.Phase != st.CurrentPhase {
		e.log.Warn("phase mismatch repaired from asked_q",
			zap.String("session_id", st.ID),
			zap.String("current_phase", string(st.CurrentPhase)),
			zap.String("asked_q", st.AskedQ))
		st.CurrentPhase = lastTag.Phase
		repaired := lastTag.Phase
		patch.CurrentPhase = &repaired
	}

	if cmd, ok := ParseCommand(content); ok {
		return e.processCommand(ctx, st, cmd, content, history, patch)
	}
	return e.processAnswer(ctx, st, content, history, patch)
}

// processCommand handles the reserved-command side channel. Commands never
// advance asked_q, with the single exception of a checkpoint-clearing
// Accept which resumes the frozen sequence.
func (e *Engine) processCommand(ctx context.Context, st SessionState, cmd Command, content string, history []Turn, patch *SessionPatch) (*TurnResult, error) {
	metrics.Get().CommandsTotal.WithLabelValues(string(cmd.Kind)).Inc()

	if !cmd.AllowedIn(st.CurrentPhase) {
		metrics.Get().CommandsRejected.WithLabelValues(string(st.CurrentPhase)).Inc()
		return &TurnResult{
			Kind:     TurnCommand,
			Reply:    RedirectMessage(cmd, st.CurrentPhase),
			Progress: e.progressFor(st),
			Patch:    nilIfEmpty(patch),
		}, nil
	}

	if cmd.Kind == CommandAccept {
		if st.CheckpointPending {
			return e.resumeFromCheckpoint(ctx, st, history, patch)
		}
		// A bare accept outside a checkpoint flows through the normal
		// answer path; the draft-accept endpoint handles accepted drafts.
		return e.processAnswer(ctx, st, content, history, patch)
	}

	system := []string{SystemPrompt, commandPrompts[cmd.Kind]}

	// Scrapping may request an external research step alongside refining.
	if cmd.Kind == CommandScrapping && e.research != nil {
		if query := e.researchQuery(st, cmd.Notes); query != "" {
			if results := e.runResearch(ctx, st.ID, query); results != "" {
				system = append(system, "Background research results to incorporate:\n"+results)
			}
		}
	}

	message := content
	if cmd.Kind == CommandScrapping {
		message = "Here are my rough notes for the current question: " + cmd.Notes
	}

	raw, err := e.generate(ctx, st.ID, system, history, message)
	if err != nil {
		return e.failureResult(st, err), nil
	}

	if cmd.ShowsAcceptModify() && !strings.Contains(raw, "Would you like to:") {
		raw += acceptModifyFooter
	}

	reply := Normalize(raw, NormalizeContext{Phase: st.CurrentPhase, CommandResponse: true})
	metrics.Get().TurnsTotal.WithLabelValues(string(TurnCommand)).Inc()
	return &TurnResult{
		Kind:             TurnCommand,
		Reply:            CleanForDisplay(reply),
		Progress:         e.progressFor(st),
		ShowAcceptModify: cmd.ShowsAcceptModify() || ShouldShowAcceptModify(raw, content, st.CurrentPhase),
		Patch:            nilIfEmpty(patch),
	}, nil
}

// resumeFromCheckpoint clears a pending checkpoint and generates the next
// sequential question, letting the normal tag pipeline advance the session.
func (e *Engine) resumeFromCheckpoint(ctx context.Context, st SessionState, history []Turn, patch *SessionPatch) (*TurnResult, error) {
	cleared := false
	boundary := st.CheckpointBoundary
	patch.CheckpointPending = &cleared
	patch.CheckpointBoundary = &boundary
	st.CheckpointPending = false

	system := []string{SystemPrompt, TagPrompt, FormattingPrompt,
		"The user accepted the section checkpoint. Acknowledge briefly with \"Great! Let's move to the next question...\" and ask the next sequential question."}

	raw, err := e.generate(ctx, st.ID, system, history, "accept")
	if err != nil {
		// The cleared-checkpoint patch is dropped with the rest of the
		// turn; the user can retry accept.
		return e.failureResult(st, err), nil
	}
	return e.finishAnswer(st, raw, "accept", history, patch), nil
}

// processAnswer handles a genuine (non-command) user turn: transition
// edges, checkpoint insertion, research, generation, and tag validation.
func (e *Engine) processAnswer(ctx context.Context, st SessionState, content string, history []Turn, patch *SessionPatch) (*TurnResult, error) {
	// A response to a transition message resolves the pseudo-phase into
	// the next real phase before anything else happens.
	if exit, ok := ResolveTransitionExit(st.CurrentPhase); ok {
		st.CurrentPhase = exit
		patch.CurrentPhase = &exit
	}

	lastTag, hasLast := ParseTagLiteral(st.AskedQ)

	// Edge-triggered phase transition: the final question of a phase was
	// just answered. This bypasses tag parsing for the turn.
	if hasLast && !st.CheckpointPending && lastTag.Phase == st.CurrentPhase {
		if edge, ok := DetectTransition(lastTag, content); ok {
			return e.fireTransition(ctx, st, edge, content, history, patch)
		}
	}

	// Section checkpoint: the previous question closed a section and this
	// turn is a genuine answer. The reply is regenerated under the
	// checkpoint instruction; asked_q freezes until the user accepts.
	if hasLast && !st.CheckpointPending {
		if spec, ok := CheckpointFor(lastTag); ok && spec.Boundary != st.CheckpointBoundary {
			return e.fireCheckpoint(ctx, st, spec, content, history, patch)
		}
	}

	system := []string{SystemPrompt, TagPrompt, FormattingPrompt}
	if st.CheckpointPending {
		system = append(system,
			"A section checkpoint is awaiting the user's confirmation. Address their feedback on the summary; do not ask the next interview question yet.")
	}

	if query := e.researchQueryForAnswer(st, content); query != "" {
		if results := e.runResearch(ctx, st.ID, query); results != "" {
			system = append(system,
				"Web search results for your reference — integrate relevant findings directly into your response:\n"+results)
		}
	}

	raw, err := e.generate(ctx, st.ID, system, history, content)
	if err != nil {
		return e.failureResult(st, err), nil
	}

	return e.finishAnswer(st, raw, content, history, patch), nil
}

// finishAnswer runs the deterministic tail of the answer pipeline:
// normalization, tag validation, the increment policy, enrichment, and
// patch assembly.
func (e *Engine) finishAnswer(st SessionState, raw, content string, history []Turn, patch *SessionPatch) *TurnResult {
	lastTag, hasLast := ParseTagLiteral(st.AskedQ)
	lastNumber := 0
	var lastPtr *Tag
	if hasLast {
		t := lastTag
		lastPtr = &t
		if t.Phase == st.CurrentPhase {
			lastNumber = t.Number
		}
	}

	reply := Normalize(raw, NormalizeContext{Phase: st.CurrentPhase, LastNumber: lastNumber})

	newCount := st.AnsweredCount
	finalPhase := st.CurrentPhase
	finalTagPtr := lastPtr

	if tag, ok := ParseTag(reply); ok {
		corrected, anomaly := ValidateAndCorrect(tag, lastPtr)
		if anomaly != AnomalyNone {
			e.log.Warn("sequence anomaly corrected",
				zap.String("session_id", st.ID),
				zap.String("kind", string(anomaly)),
				zap.String("candidate", tag.String()),
				zap.String("corrected", corrected.String()))
			metrics.Get().SequenceAnomalies.WithLabelValues(string(anomaly)).Inc()
			reply = RewriteTag(reply, corrected)
		}

		if !st.CheckpointPending && ShouldIncrement(corrected, lastPtr) {
			newCount++
			patch.AnsweredCount = &newCount
		}

		// While a checkpoint is pending the sequence position is frozen:
		// the rewritten tag is suppressed from the persisted session.
		if !st.CheckpointPending {
			asked := corrected.String()
			patch.AskedQ = &asked
			if corrected.Phase != st.CurrentPhase {
				finalPhase = corrected.Phase
				patch.CurrentPhase = &finalPhase
			}
			t := corrected
			finalTagPtr = &t
		}
	} else {
		metrics.Get().TaglessTurns.Inc()
		if count, changed := TaglessFallbackCount(st.AnsweredCount, len(history)); changed {
			newCount = count
			patch.AnsweredCount = &newCount
		}
	}

	// Profile extraction: the user's message answered the question the
	// session had asked.
	if hasLast {
		if updates := ExtractProfile(lastTag, content); updates != nil {
			if patch.Profile == nil {
				patch.Profile = map[string]string{}
			}
			for k, v := range updates {
				patch.Profile[k] = v
			}
		}
	}

	// Declarative enrichment passes.
	reply = InjectInsight(reply, content)
	if (Command{Kind: CommandDraft}).AllowedIn(finalPhase) {
		reply = SuggestDraft(reply, history)
	}
	reply = AppendSupportGuidance(reply, IdentifySupportAreas(history))

	metrics.Get().TurnsTotal.WithLabelValues(string(TurnAnswer)).Inc()
	return &TurnResult{
		Kind:             TurnAnswer,
		Reply:            CleanForDisplay(reply),
		Progress:         CalculateProgress(finalPhase, newCount, finalTagPtr),
		ShowAcceptModify: ShouldShowAcceptModify(raw, content, finalPhase),
		Patch:            nilIfEmpty(patch),
	}
}

// fireCheckpoint inserts a section summary-and-confirm gate. asked_q stays
// frozen at the boundary until an accept command clears the gate.
func (e *Engine) fireCheckpoint(ctx context.Context, st SessionState, spec CheckpointSpec, content string, history []Turn, patch *SessionPatch) (*TurnResult, error) {
	system := []string{SystemPrompt, CheckpointPrompt(spec)}

	raw, err := e.generate(ctx, st.ID, system, history, content)
	if err != nil {
		return e.failureResult(st, err), nil
	}

	// The checkpoint carries no question tag, ever.
	reply := StripTags(raw)
	reply = Normalize(reply, NormalizeContext{Phase: st.CurrentPhase, CommandResponse: true})
	if !strings.Contains(reply, "Accept") {
		reply += "\n\nPlease respond with \"Accept\" or \"Modify\" to continue."
	}

	pending := true
	boundary := spec.Boundary
	patch.CheckpointPending = &pending
	patch.CheckpointBoundary = &boundary

	// Profile extraction still applies to the boundary-closing answer.
	if lastTag, ok := ParseTagLiteral(st.AskedQ); ok {
		if updates := ExtractProfile(lastTag, content); updates != nil {
			patch.Profile = updates
		}
	}

	metrics.Get().CheckpointsFired.Inc()
	metrics.Get().TurnsTotal.WithLabelValues(string(TurnCheckpoint)).Inc()
	e.log.Info("section checkpoint fired",
		zap.String("session_id", st.ID),
		zap.String("section", spec.Section),
		zap.Int("boundary", spec.Boundary))

	return &TurnResult{
		Kind:             TurnCheckpoint,
		Reply:            CleanForDisplay(reply),
		Progress:         e.progressFor(st),
		ShowAcceptModify: true,
		Patch:            patch,
	}, nil
}

// fireTransition substitutes the dedicated transition-message generation
// for the normal pipeline and resets the session for the next phase.
func (e *Engine) fireTransition(ctx context.Context, st SessionState, edge TransitionEdge, content string, history []Turn, patch *SessionPatch) (*TurnResult, error) {
	system := []string{SystemPrompt, TransitionPrompt(edge.Completed, edge.NextAsked.Phase)}

	raw, err := e.generate(ctx, st.ID, system, history, content)
	if err != nil {
		return e.failureResult(st, err), nil
	}

	reply := StripTags(raw)
	reply = Normalize(reply, NormalizeContext{Phase: st.CurrentPhase, CommandResponse: true})

	enter := edge.Enter
	asked := edge.NextAsked.String()
	zero := 0
	patch.CurrentPhase = &enter
	patch.AskedQ = &asked
	patch.AnsweredCount = &zero

	if lastTag, ok := ParseTagLiteral(st.AskedQ); ok {
		if updates := ExtractProfile(lastTag, content); updates != nil {
			patch.Profile = updates
		}
	}

	metrics.Get().PhaseTransitions.WithLabelValues(string(edge.Completed)).Inc()
	metrics.Get().TurnsTotal.WithLabelValues(string(TurnTransition)).Inc()
	e.log.Info("phase transition fired",
		zap.String("session_id", st.ID),
		zap.String("completed", string(edge.Completed)),
		zap.String("entered", string(edge.Enter)))

	// The completed phase reports 100% for this turn; the reset lands
	// with the patch.
	progress := CalculateProgress(edge.Completed, TotalQuestions(edge.Completed), nil)

	return &TurnResult{
		Kind:             TurnTransition,
		Reply:            CleanForDisplay(reply),
		Progress:         progress,
		ShowAcceptModify: ShouldShowAcceptModify(raw, content, edge.Completed),
		Patch:            patch,
	}, nil
}

// AcceptDraft persists an accepted draft as the user's answer: the sequence
// advances one position and the next question is generated.
func (e *Engine) AcceptDraft(ctx context.Context, st SessionState, draftContent string, history []Turn) (*TurnResult, error) {
	lastTag, ok := ParseTagLiteral(st.AskedQ)
	if !ok {
		return nil, fmt.Errorf("session %s has no current question to accept", st.ID)
	}

	patch := &SessionPatch{}
	next := Tag{Phase: lastTag.Phase, Number: lastTag.Number + 1}
	asked := next.String()
	count := st.AnsweredCount + 1
	patch.AskedQ = &asked
	patch.AnsweredCount = &count
	if updates := ExtractProfile(lastTag, draftContent); updates != nil {
		patch.Profile = updates
	}

	system := []string{SystemPrompt, TagPrompt, FormattingPrompt,
		"The user accepted a drafted answer for the previous question. Acknowledge briefly and ask the next sequential question."}
	raw, err := e.generate(ctx, st.ID, system, history, draftContent)
	if err != nil {
		return e.failureResult(st, err), nil
	}

	reply := Normalize(raw, NormalizeContext{Phase: st.CurrentPhase, LastNumber: next.Number})
	metrics.Get().TurnsTotal.WithLabelValues(string(TurnAnswer)).Inc()
	t := next
	return &TurnResult{
		Kind:     TurnAnswer,
		Reply:    CleanForDisplay(reply),
		Progress: CalculateProgress(st.CurrentPhase, count, &t),
		Patch:    patch,
	}, nil
}

// ModifyDraft regenerates a drafted answer from the user's feedback. The
// sequence position never moves: the refined draft is a command-style
// response awaiting its own accept, so no session patch is emitted and the
// reply carries no question tag.
func (e *Engine) ModifyDraft(ctx context.Context, st SessionState, draftContent, feedback string, history []Turn) (*TurnResult, error) {
	system := []string{SystemPrompt, modifyPrompt}

	message := "Please revise your previous draft based on this feedback: " + feedback
	if draftContent != "" {
		message = "Here is the current draft:\n" + draftContent +
			"\n\nPlease revise it based on this feedback: " + feedback
	}

	raw, err := e.generate(ctx, st.ID, system, history, message)
	if err != nil {
		return e.failureResult(st, err), nil
	}

	reply := StripTags(raw)
	reply = Normalize(reply, NormalizeContext{Phase: st.CurrentPhase, CommandResponse: true})
	if !strings.Contains(reply, "Would you like to:") {
		reply += acceptModifyFooter
	}

	metrics.Get().TurnsTotal.WithLabelValues(string(TurnCommand)).Inc()
	return &TurnResult{
		Kind:             TurnCommand,
		Reply:            CleanForDisplay(reply),
		Progress:         e.progressFor(st),
		ShowAcceptModify: true,
	}, nil
}

// generate invokes the external generator as a single cancellable unit with
// a bounded timeout, trimming history to the recent window.
func (e *Engine) generate(ctx context.Context, sessionID string, system []string, history []Turn, userMessage string) (string, error) {
	if e.notify != nil {
		e.notify.NotifyStatus(sessionID, TurnStatus{State: "generating"})
	}

	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	start := time.Now()
	raw, err := e.gen.Generate(ctx, system, trimHistory(history, historyWindow), userMessage)
	metrics.Get().GenerationDuration.Observe(time.Since(start).Seconds())

	if e.notify != nil {
		e.notify.NotifyStatus(sessionID, TurnStatus{State: "done"})
	}
	if err != nil {
		metrics.Get().GenerationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("generator call failed: %w", err)
	}
	metrics.Get().GenerationsTotal.WithLabelValues("ok").Inc()
	return raw, nil
}

// runResearch performs a graceful-degradation research call: errors are
// logged and the turn proceeds without a research section.
func (e *Engine) runResearch(ctx context.Context, sessionID, query string) string {
	if e.notify != nil {
		e.notify.NotifyStatus(sessionID, TurnStatus{State: "researching", Query: query})
	}
	results, err := e.research.Search(ctx, query)
	if err != nil {
		metrics.Get().ResearchTotal.WithLabelValues("error").Inc()
		e.log.Warn("research call failed, continuing without results",
			zap.String("session_id", sessionID),
			zap.String("query", query),
			zap.Error(err))
		return ""
	}
	metrics.Get().ResearchTotal.WithLabelValues("ok").Inc()
	return results
}

// researchQueryForAnswer builds a research query for a business-plan answer
// touching a researchable topic. Queries use the previous calendar year.
func (e *Engine) researchQueryForAnswer(st SessionState, content string) string {
	if e.research == nil || st.CurrentPhase != PhaseBusinessPlan {
		return ""
	}
	lower := strings.ToLower(content)
	if !containsAny(lower, researchTriggers) {
		return ""
	}
	return e.researchQuery(st, content)
}

// researchQuery picks the query template matching the user's topic.
func (e *Engine) researchQuery(st SessionState, content string) string {
	lower := strings.ToLower(content)
	year := time.Now().Year() - 1
	industry := st.Industry
	if industry == "" {
		industry = "business"
	}

	switch {
	case strings.Contains(lower, "competitors"):
		return fmt.Sprintf("competitors in %s industry %d", industry, year)
	case strings.Contains(lower, "market") || strings.Contains(lower, "trends"):
		return fmt.Sprintf("market trends %s %s %d", industry, st.Location, year)
	case strings.Contains(lower, "domain"):
		return "domain registration availability check websites"
	case strings.Contains(lower, "pricing") || strings.Contains(lower, "vendors"):
		return fmt.Sprintf("vendor recommendations and pricing %s %d", industry, year)
	case strings.Contains(lower, "legal requirements"):
		return fmt.Sprintf("business legal requirements %s %s", industry, st.Location)
	}
	return ""
}

// failureResult is the single apologetic, retryable reply for a generator
// outage. No session state is mutated.
func (e *Engine) failureResult(st SessionState, err error) *TurnResult {
	e.log.Error("turn failed on generation", zap.String("session_id", st.ID), zap.Error(err))
	return &TurnResult{
		Kind:             TurnAnswer,
		Reply:            GenerationFailureReply,
		Progress:         e.progressFor(st),
		GenerationFailed: true,
	}
}

// progressFor computes progress for a turn that did not move the session.
func (e *Engine) progressFor(st SessionState) Progress {
	var tagPtr *Tag
	if t, ok := ParseTagLiteral(st.AskedQ); ok {
		tagPtr = &t
	}
	return CalculateProgress(st.CurrentPhase, st.AnsweredCount, tagPtr)
}

// trimHistory keeps the most recent window of turns.
func trimHistory(history []Turn, max int) []Turn {
	if len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}

func nilIfEmpty(p *SessionPatch) *SessionPatch {
	if p.Empty() {
		return nil
	}
	return p
}
