package llm

import (
	"context"
	"fmt"
	"strings"
)

// NoContentSummary is returned for articles without any content to summarise.
const NoContentSummary = "No content available for summarization."

// SummarizeArticlePromptTemplate takes the title and the content.
const SummarizeArticlePromptTemplate = `Summarize this iGaming news article in 2-3 clear sentences. Focus on key facts.

Use simple formatting:
- Use **bold** for company names or important terms
- Keep it concise and readable
- No HTML tags

Article: %s

Content: %s`

// DigestPromptTemplate takes the numbered article listing.
const DigestPromptTemplate = `You are an iGaming industry analyst. Create a professional daily digest from these news articles. Group by topics (regulations, mergers, product launches, etc). Highlight the most important developments. Keep it concise but informative.

Articles:
%s`

// SummarizeArticle generates a short summary of one article.
func (c *Client) SummarizeArticle(ctx context.Context, title, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		c.log.Warn("No content provided for article", "title", title)
		return NoContentSummary, nil
	}

	summary, err := c.Generate(ctx, fmt.Sprintf(SummarizeArticlePromptTemplate, title, content), c.cfg.SummaryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("summarize %q: %w", title, err)
	}
	return strings.TrimSpace(summary), nil
}

// ComposeDigest generates a digest from an article listing built by the caller.
func (c *Client) ComposeDigest(ctx context.Context, listing string) (string, error) {
	digest, err := c.Generate(ctx, fmt.Sprintf(DigestPromptTemplate, listing), c.cfg.DigestMaxTokens)
	if err != nil {
		return "", fmt.Errorf("compose digest: %w", err)
	}
	return strings.TrimSpace(digest), nil
}
