package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	name   string
	answer string
	err    error
	calls  int
	resets int
}

func (s *stubHandler) Name() string        { return s.name }
func (s *stubHandler) Description() string { return s.name + " handler" }
func (s *stubHandler) Reset()              { s.resets++ }

func (s *stubHandler) Execute(_ context.Context, _, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func newTestOrchestrator(handlers ...Handler) *Orchestrator {
	return NewOrchestrator(NewRouter(), handlers...)
}

func TestOrchestrator_ExecuteWithRouting(t *testing.T) {
	doc := &stubHandler{name: AgentDocumentAnalysis, answer: "doc answer"}
	metrics := &stubHandler{name: AgentFinancialMetrics, answer: "metrics answer"}
	o := newTestOrchestrator(doc, metrics)

	res := o.Execute(context.Background(), "What is the ROE ratio?", "", true)

	assert.True(t, res.Success)
	assert.Equal(t, AgentFinancialMetrics, res.AgentUsed)
	assert.Equal(t, "metrics answer", res.Answer)
	assert.True(t, res.RoutingUsed)
	assert.Equal(t, 1, metrics.calls)
	assert.Equal(t, 0, doc.calls)
}

func TestOrchestrator_ExecuteWithoutRouting(t *testing.T) {
	doc := &stubHandler{name: AgentDocumentAnalysis, answer: "doc answer"}
	metrics := &stubHandler{name: AgentFinancialMetrics, answer: "metrics answer"}
	o := newTestOrchestrator(doc, metrics)

	res := o.Execute(context.Background(), "What is the ROE ratio?", "", false)

	assert.True(t, res.Success)
	assert.Equal(t, AgentDocumentAnalysis, res.AgentUsed)
	assert.False(t, res.RoutingUsed)
	assert.Equal(t, 1, doc.calls)
	assert.Equal(t, 0, metrics.calls)
}

func TestOrchestrator_MissingHandlerIsReportedNotFatal(t *testing.T) {
	// router resolves to the default agent, which is not registered
	o := newTestOrchestrator(&stubHandler{name: AgentFinancialMetrics})

	res := o.Execute(context.Background(), "hello there", "", true)

	assert.False(t, res.Success)
	assert.Equal(t, ErrorAgent, res.AgentUsed)
	assert.Contains(t, res.Answer, "not found")
}

func TestOrchestrator_HandlerErrorIsReported(t *testing.T) {
	doc := &stubHandler{name: AgentDocumentAnalysis, err: errors.New("provider unavailable")}
	o := newTestOrchestrator(doc)

	res := o.Execute(context.Background(), "show revenue", "", true)

	assert.False(t, res.Success)
	assert.Equal(t, ErrorAgent, res.AgentUsed)
	assert.Contains(t, res.Answer, "provider unavailable")
	assert.Empty(t, o.History(), "failed calls are not recorded")
}

func TestOrchestrator_ExecuteMulti(t *testing.T) {
	doc := &stubHandler{name: AgentDocumentAnalysis, answer: "doc answer"}
	metrics := &stubHandler{name: AgentFinancialMetrics, err: errors.New("boom")}
	o := newTestOrchestrator(doc, metrics)

	res := o.ExecuteMulti(context.Background(), "q", "", []string{
		AgentFinancialMetrics, "unknown_agent", AgentDocumentAnalysis,
	})

	assert.True(t, res.Success)
	assert.Equal(t, []string{AgentFinancialMetrics, AgentDocumentAnalysis}, res.AgentsUsed)

	// sections keep caller order, failures are inlined
	assert.Regexp(t, `(?s)\*\*Financial Metrics:\*\*\nError: .*boom.*\*\*Unknown Agent:\*\*\n.*not found.*\*\*Document Analysis:\*\*\ndoc answer`, res.Answer)
	assert.Equal(t, 1, doc.calls, "failing handlers do not abort the rest")
}

func TestOrchestrator_HistoryAndReset(t *testing.T) {
	doc := &stubHandler{name: AgentDocumentAnalysis, answer: "doc answer"}
	o := newTestOrchestrator(doc)

	o.Execute(context.Background(), "first", "", false)
	o.Execute(context.Background(), "second", "", false)

	history := o.History()
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Query)
	assert.Equal(t, "doc answer", history[0].Answer)
	assert.Equal(t, AgentDocumentAnalysis, history[0].Agent)
	assert.False(t, history[0].Timestamp.IsZero())

	o.Reset()
	assert.Empty(t, o.History())
	assert.Equal(t, 1, doc.resets)
}

func TestOrchestrator_AgentInfo(t *testing.T) {
	o := newTestOrchestrator(
		&stubHandler{name: AgentDocumentAnalysis},
		&stubHandler{name: AgentTrendAnalysis},
	)

	info := o.AgentInfo()
	assert.Len(t, info, 2)
	assert.Equal(t, AgentDocumentAnalysis+" handler", info[AgentDocumentAnalysis])
	assert.Equal(t, []string{AgentDocumentAnalysis, AgentTrendAnalysis}, o.AgentNames())
}
