package keywords

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/openhome-school/backend/internal/apperrors"
)

// CLIClient shells out to the claude CLI, for operators running suggestions
// from a workstation with a local plan.
type CLIClient struct {
	cliPath string
}

func NewCLIClient(cliPath string) *CLIClient {
	if cliPath == "" {
		cliPath = "claude"
	}
	return &CLIClient{cliPath: cliPath}
}

func (c *CLIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	cmd := exec.CommandContext(ctx,
		c.cliPath,
		"--print",
		"--output-format", "text",
		"--system-prompt", systemPrompt,
		"--max-turns", "1",
	)
	cmd.Stdin = strings.NewReader(userPrompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrAIRequestFailed, "claude CLI error: %v; stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	responseText := strings.TrimSpace(stdout.String())
	if responseText == "" {
		return nil, apperrors.ErrorWithContextf(apperrors.ErrAIRequestFailed, "claude CLI returned empty response")
	}

	return &LLMResponse{Content: responseText}, nil
}
