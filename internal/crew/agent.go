package crew

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sorennelson/the-preview-crew/internal/llm"
)

const defaultMaxIterations = 10

// Tool is something an agent can call while working a task.
type Tool interface {
	Definition() llm.Tool
	Run(ctx context.Context, args string) (string, error)
}

// StepFunc is invoked once per executed tool call with the tool's name.
type StepFunc func(tool string)

// Agent runs one task against the LLM, executing tool calls in a loop until
// the model produces a plain answer or the iteration budget runs out.
type Agent struct {
	name     string
	role     string
	client   llm.Client
	tools    []Tool
	maxIter  int
	interval time.Duration
}

// NewAgent builds an agent. rpm caps the agent's LLM requests per minute;
// rpm <= 0 disables the throttle.
func NewAgent(name, role string, client llm.Client, tools []Tool, maxIter, rpm int) *Agent {
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}
	var interval time.Duration
	if rpm > 0 {
		interval = time.Minute / time.Duration(rpm)
	}
	return &Agent{
		name:     name,
		role:     role,
		client:   client,
		tools:    tools,
		maxIter:  maxIter,
		interval: interval,
	}
}

func (a *Agent) toolByName(name string) Tool {
	for _, t := range a.tools {
		if t.Definition().Function.Name == name {
			return t
		}
	}
	return nil
}

func (a *Agent) definitions() []llm.Tool {
	defs := make([]llm.Tool, 0, len(a.tools))
	for _, t := range a.tools {
		defs = append(defs, t.Definition())
	}
	return defs
}

// Run executes the task. Tool failures are fed back to the model as tool
// output rather than aborting the task, so the agent can route around a
// broken tool or answer without it.
func (a *Agent) Run(ctx context.Context, task string, onStep StepFunc) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: a.role},
		{Role: "user", Content: task},
	}

	var lastCall time.Time
	for iter := 0; iter < a.maxIter; iter++ {
		if a.interval > 0 && !lastCall.IsZero() {
			if wait := a.interval - time.Since(lastCall); wait > 0 {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(wait):
				}
			}
		}
		lastCall = time.Now()

		resp, err := a.client.GenerateWithTools(ctx, messages, a.definitions())
		if err != nil {
			return "", fmt.Errorf("agent %s: %w", a.name, err)
		}

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			name := call.Function.Name
			if onStep != nil {
				onStep(name)
			}

			var result string
			tool := a.toolByName(name)
			if tool == nil {
				result = fmt.Sprintf("unknown tool: %s", name)
			} else if out, err := tool.Run(ctx, call.Function.Arguments); err != nil {
				log.Printf("⚠️ Agent %s: tool %s failed: %v", a.name, name, err)
				result = fmt.Sprintf("tool error: %v", err)
			} else {
				result = out
			}

			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
				Name:       name,
			})
		}
	}

	return "", fmt.Errorf("agent %s: no final answer after %d iterations", a.name, a.maxIter)
}
