package assist

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

const (
	modelSourceDeterministic = "deterministic"
	modelSourceUnknown       = "unknown"
	modelSourceFallbackError = "fallback_error"
)

// Engine runs the query resolution pipeline: normalize context, rewrite the
// question, merge pending-intent state, expand follow-ups, try the
// deterministic resolvers, and only then fall back to the probabilistic
// answerer. It always produces the normalized answer shape; only missing
// question text and data-access failures are fatal.
type Engine struct {
	resolvers *Resolvers
	claims    domain.ClaimReader
	sessions  domain.SessionStore
	fallback  domain.FallbackAnswerer
	audit     domain.TurnLogger
	log       *logrus.Logger
}

// NewEngine wires the pipeline. Sessions, fallback, and audit may be nil;
// the engine degrades accordingly.
func NewEngine(
	claims domain.ClaimReader,
	sessions domain.SessionStore,
	fallback domain.FallbackAnswerer,
	audit domain.TurnLogger,
	logger *logrus.Logger,
) *Engine {
	return &Engine{
		resolvers: NewResolvers(claims, logger),
		claims:    claims,
		sessions:  sessions,
		fallback:  fallback,
		audit:     audit,
		log:       logger,
	}
}

// Resolve handles one query turn against the raw request payload.
func (e *Engine) Resolve(ctx context.Context, payload map[string]any, sessionID string) (*domain.Answer, error) {
	question := questionText(payload)
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrNoQuestion
	}

	pctx := NormalizeContext(payload)
	rewritten := RewriteQuery(question, pctx)
	if rewritten != question {
		e.log.WithFields(logrus.Fields{
			"original":  question,
			"rewritten": rewritten,
		}).Info("Rewrote ambiguous question from page context")
	}

	clientIntent := stringField(payload, "pending_intent")
	threadState, _ := payload["thread_state"].(map[string]any)
	embedded := PendingFromThreadState(threadState)
	if clientIntent != "" && embedded != "" && clientIntent != embedded {
		e.log.WithFields(logrus.Fields{
			"pending_intent": clientIntent,
			"thread_state":   embedded,
		}).Warn("Client pending intent disagrees with thread state; using the top-level field")
	}

	serverIntent := e.serverPendingIntent(ctx, sessionID)
	active := ResolvePendingIntent(clientIntent, threadState, serverIntent)

	resolvedQuery, consumed := ExpandFollowup(rewritten, active)
	if consumed {
		e.clearServerPendingIntent(ctx, sessionID)
	}

	answer, intent, err := e.answer(ctx, resolvedQuery, pctx)
	if err != nil {
		return nil, err
	}

	e.finalizePendingIntent(ctx, sessionID, answer, active, consumed)
	normalizeAnswer(answer)
	e.recordTurn(ctx, sessionID, question, resolvedQuery, intent, answer)

	return answer, nil
}

// answer tries the deterministic resolvers, then the fallback boundary.
func (e *Engine) answer(ctx context.Context, question string, pctx domain.Context) (*domain.Answer, string, error) {
	res, matched, err := e.route(ctx, question, pctx)
	if err != nil {
		// Infrastructure failure: fatal for this request.
		return nil, "", err
	}
	if matched {
		return &domain.Answer{
			Text:              res.Text,
			Citations:         res.Citations,
			Confidence:        ScoreConfidence(res.Text, res.HadData, false, res.Partial),
			ModelSource:       modelSourceDeterministic,
			LocalOnly:         true,
			PendingIntent:     res.PendingIntent,
			ThreadStateUpdate: res.ThreadStateUpdate,
		}, res.Intent, nil
	}
	answer, err := e.fallbackAnswer(ctx, question, pctx)
	return answer, "fallback", err
}

// fallbackAnswer invokes the probabilistic model with claim-scoped
// evidence. Failures here degrade to a literal-text guess answer; they are
// never surfaced as request failures.
func (e *Engine) fallbackAnswer(ctx context.Context, question string, pctx domain.Context) (*domain.Answer, error) {
	var sources []domain.Source
	if claimID, ok := pctx.ClaimID(); ok {
		var err error
		sources, err = BuildSources(ctx, e.claims, claimID)
		if err != nil {
			return nil, err
		}
	}

	if e.fallback == nil {
		return guessAnswer(), nil
	}

	result, err := e.fallback.Answer(ctx, question, sources)
	if err != nil {
		e.log.WithError(err).Warn("Probabilistic fallback failed; returning best-effort guess")
		return guessAnswer(), nil
	}

	allowed := make(map[string]string, len(sources))
	for _, s := range sources {
		allowed[s.ID] = s.Label
	}
	citations := make([]domain.Citation, 0, len(result.CitedIDs))
	for _, id := range result.CitedIDs {
		if label, ok := allowed[id]; ok {
			citations = append(citations, domain.Citation{ID: id, Label: label})
		}
	}

	return &domain.Answer{
		Text:        result.Text,
		Citations:   citations,
		Confidence:  ScoreConfidence(result.Text, len(sources) > 0, true, false),
		ModelSource: result.Model,
		LocalOnly:   false,
	}, nil
}

// finalizePendingIntent persists the new pending intent, or echoes a
// carried-over one so stateless clients can hold it for the next turn.
func (e *Engine) finalizePendingIntent(ctx context.Context, sessionID string, answer *domain.Answer, active string, consumed bool) {
	if answer.PendingIntent != "" {
		if e.sessions != nil && sessionID != "" {
			if err := e.sessions.SetPendingIntent(ctx, sessionID, answer.PendingIntent); err != nil {
				e.log.WithError(err).Warn("Failed to persist pending intent to session store")
			}
		}
		return
	}
	if !consumed && active != "" {
		// Unrelated question: the intent survives until consumed or replaced.
		answer.PendingIntent = active
	}
}

func (e *Engine) serverPendingIntent(ctx context.Context, sessionID string) string {
	if e.sessions == nil || sessionID == "" {
		return ""
	}
	intent, err := e.sessions.GetPendingIntent(ctx, sessionID)
	if err != nil {
		e.log.WithError(err).Warn("Failed to read pending intent from session store")
		return ""
	}
	return intent
}

func (e *Engine) clearServerPendingIntent(ctx context.Context, sessionID string) {
	if e.sessions == nil || sessionID == "" {
		return
	}
	if err := e.sessions.ClearPendingIntent(ctx, sessionID); err != nil {
		e.log.WithError(err).Warn("Failed to clear consumed pending intent")
	}
}

func (e *Engine) recordTurn(ctx context.Context, sessionID, question, resolvedQuery, intent string, answer *domain.Answer) {
	if e.audit == nil {
		return
	}
	turn := &domain.TurnRecord{
		SessionID:     sessionID,
		Question:      question,
		ResolvedQuery: resolvedQuery,
		Intent:        intent,
		Confidence:    answer.Confidence,
		ModelSource:   answer.ModelSource,
		PendingIntent: answer.PendingIntent,
		CreatedAt:     time.Now().UTC(),
	}
	if err := e.audit.Record(ctx, turn); err != nil {
		e.log.WithError(err).Warn("Failed to record conversation turn")
	}
}

func guessAnswer() *domain.Answer {
	text := "I wasn't able to find a reliable answer to that question."
	return &domain.Answer{
		Text:        text,
		Citations:   []domain.Citation{},
		IsGuess:     true,
		Confidence:  ScoreConfidence(text, false, true, false),
		ModelSource: modelSourceFallbackError,
		LocalOnly:   true,
	}
}

// normalizeAnswer applies the response defaults so every key in the answer
// shape is present and well-typed.
func normalizeAnswer(a *domain.Answer) {
	if a.Citations == nil {
		a.Citations = []domain.Citation{}
	}
	if a.ThreadStateUpdate == nil {
		a.ThreadStateUpdate = map[string]any{}
	}
	if a.ModelSource == "" {
		a.ModelSource = modelSourceUnknown
	}
}

func questionText(payload map[string]any) string {
	if q := stringField(payload, "query"); q != "" {
		return q
	}
	return stringField(payload, "question")
}

func stringField(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}
