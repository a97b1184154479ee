package agents

import "github.com/finsight-labs/finrag/internal/llm"

const documentSystemPrompt = `You are a Document Analysis Agent specialized in financial documents.

Your role is to:
1. Search through uploaded financial documents
2. Extract specific sections and data points
3. Understand document structure (balance sheets, income statements, cash flow)
4. Identify key financial information

Always cite the source document when providing information.
If information is not in the documents, clearly state that.`

// NewDocumentAgent creates the document analysis handler. It doubles
// as the default agent for unrouted queries.
func NewDocumentAgent(provider llm.Provider) Handler {
	return newPromptAgent(
		AgentDocumentAnalysis,
		"Analyzes financial documents and extracts key information",
		documentSystemPrompt,
		provider,
	)
}
