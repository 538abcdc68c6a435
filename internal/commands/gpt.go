package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"google.golang.org/genai"

	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/output"
	"github.com/yurixander/minimal/pkg/storage"
)

// APIKeyEnv holds the Gemini API key.
const APIKeyEnv = "GEMINI_API_KEY"

// Chat history roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of a persisted conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a full conversation to continue.
type ChatRequest struct {
	Model     string
	System    string
	MaxTokens int
	History   []Message
}

// ChatClient produces the next model reply for a conversation.
type ChatClient interface {
	Reply(ctx context.Context, req ChatRequest) (string, error)
}

// GPTSettings mirrors the gpt.* configuration keys.
type GPTSettings struct {
	Model        string
	MaxTokens    int
	MaxHistory   int
	SystemPrompt string
}

// GenAIClient is a ChatClient backed by the Gemini API. A client is
// created per request, so a missing key only fails gpt itself.
type GenAIClient struct {
	apiKey func() string
}

// NewGenAIClient reads the key from APIKeyEnv at call time.
func NewGenAIClient() *GenAIClient {
	return &GenAIClient{apiKey: func() string { return os.Getenv(APIKeyEnv) }}
}

// ErrMissingAPIKey is returned when APIKeyEnv is unset.
var ErrMissingAPIKey = fmt.Errorf("please set the '%s' environment variable", APIKeyEnv)

// Check reports ErrMissingAPIKey when no key is configured.
func (c *GenAIClient) Check() error {
	if c.apiKey() == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Reply sends the history to Gemini and returns the reply text.
func (c *GenAIClient) Reply(ctx context.Context, req ChatRequest) (string, error) {
	if err := c.Check(); err != nil {
		return "", err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	contents := toContents(req.History)

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI request failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

// toContents maps stored turns onto Gemini roles. Unknown roles are sent
// as user turns.
func toContents(history []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}

func (d *Deps) history() *storage.Ref[[]Message] {
	return storage.NewRef[[]Message](d.Store, "gpt", "context", nil).WithLocks(d.Locks)
}

func (d *Deps) gpt(ctx context.Context, args []string, _ *domain.State) (*domain.State, error) {
	if d.Chat == nil || d.Store == nil {
		return nil, errors.New("chat is unavailable")
	}

	if c, ok := d.Chat.(interface{ Check() error }); ok {
		if err := c.Check(); err != nil {
			return nil, err
		}
	}

	reset := len(args) > 0 && args[0] == "--reset"
	if reset {
		if err := d.history().Reset(ctx); err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
			return nil, err
		}
		d.Printer.Verbose("conversation cleared")
		args = args[1:]
	}

	prompt := output.JoinSegments(args)
	if prompt == "" {
		if reset {
			return nil, nil
		}
		return nil, errors.New("please provide a prompt")
	}

	history, err := d.history().Get(ctx)
	if err != nil {
		return nil, err
	}
	turn := Message{Role: RoleUser, Content: prompt}

	reply, err := d.Chat.Reply(ctx, ChatRequest{
		Model:     d.GPT.Model,
		System:    d.GPT.SystemPrompt,
		MaxTokens: d.GPT.MaxTokens,
		History:   trimHistory(append(slices.Clone(history), turn), d.GPT.MaxHistory),
	})
	if err != nil {
		return nil, err
	}

	// Only answered turns are recorded, so the history keeps alternating.
	if _, err := d.history().Transform(ctx, func(h []Message) []Message {
		return trimHistory(append(h, turn, Message{Role: RoleModel, Content: reply}), d.GPT.MaxHistory)
	}); err != nil {
		return nil, err
	}

	d.printReply(reply)
	return nil, nil
}

func (d *Deps) printReply(reply string) {
	rendered := reply
	if d.Render != nil {
		if out, err := d.Render(reply); err == nil {
			rendered = out
		}
	}

	var buf output.LineBuffer
	for _, line := range strings.Split(rendered, "\n") {
		buf.PushListItem(output.Line{Text: line, Level: domain.LogLevelInfo, PreserveColor: true})
	}
	d.Printer.WriteBuffer(&buf)
}

// trimHistory keeps the newest max messages. The system prompt is not
// part of the history, so it is never dropped.
func trimHistory(h []Message, max int) []Message {
	if max <= 0 || len(h) <= max {
		return h
	}
	return append([]Message(nil), h[len(h)-max:]...)
}
