package service

import (
	"fmt"
	"strings"

	"github.com/brikkle/chatbot/internal/domain"
)

// systemPrompt frames every completion call. The answer must stay grounded
// in the retrieved knowledge-base context.
const systemPrompt = `You are a helpful AI assistant for Brikkle, Nigeria's first blockchain-powered real estate investment platform.

Your role is to help users understand:
- How Brikkle works and its core value proposition
- Investment opportunities and property tokenization
- Account setup, verification, and payment processes
- Property due diligence and investment strategies
- Platform features, security, and compliance
- Technical support and troubleshooting

Guidelines:
1. Always be helpful, accurate, and professional
2. Use the provided context from Brikkle's knowledge base to answer questions
3. If you don't have specific information, clearly state that and suggest contacting support
4. Focus on Nigerian real estate investment context
5. Explain complex blockchain and investment concepts in simple terms
6. Always mention relevant minimum investment amounts, fees, and requirements
7. Encourage users to verify information and do their own research

Context from Brikkle Knowledge Base:
%s

Previous conversation:
%s

User's question: %s

Please provide a helpful and accurate response based on the context above.`

// FallbackAnswer is returned when the completion API is unavailable after
// retries. It is a normal answer from the caller's perspective.
const FallbackAnswer = "I apologize, but I'm experiencing technical difficulties. Please try again later or contact Brikkle support for assistance."

// BuildPrompt assembles the completion prompt from retrieved context, recent
// history, and the user's question.
func BuildPrompt(sources []domain.Source, history []domain.Turn, question string) string {
	return fmt.Sprintf(systemPrompt, formatContext(sources), formatHistory(history), question)
}

func formatContext(sources []domain.Source) string {
	if len(sources) == 0 {
		return "No relevant context found."
	}

	var b strings.Builder
	for i, src := range sources {
		fmt.Fprintf(&b, "Source %d (Relevance: %.2f):\n%s\n\n", i+1, src.Score, src.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHistory(history []domain.Turn) string {
	if len(history) == 0 {
		return "No previous conversation."
	}

	lines := make([]string, 0, len(history))
	for _, turn := range history {
		switch turn.Role {
		case domain.RoleUser:
			lines = append(lines, "User: "+turn.Content)
		case domain.RoleAssistant:
			lines = append(lines, "Assistant: "+turn.Content)
		}
	}
	return strings.Join(lines, "\n")
}
