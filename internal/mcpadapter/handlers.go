package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panverse/rules-agent/internal/balance"
	"github.com/panverse/rules-agent/internal/dispatch"
	"github.com/panverse/rules-agent/internal/legacy"
	"github.com/panverse/rules-agent/internal/models"
)

// ValidateInput is the MCP tool input schema (matches HTTP API field names).
type ValidateInput struct {
	RequestID   string         `json:"request_id,omitempty" jsonschema:"optional request identifier echoed into the result"`
	ContentType string         `json:"content_type" jsonschema:"content type: monster, spell, item, class, race, equipment, mechanics, encounter, location, treasure, or campaign"`
	Content     map[string]any `json:"content" jsonschema:"the generated content document to validate"`
}

// BalanceInput is the MCP tool input schema for the single-group balance check.
type BalanceInput struct {
	PartyLevel      int    `json:"party_level" jsonschema:"party level (1-20)"`
	PartySize       int    `json:"party_size" jsonschema:"number of players in the party"`
	ChallengeRating string `json:"challenge_rating" jsonschema:"monster challenge rating, e.g. 1/4 or 5"`
	Count           int    `json:"count" jsonschema:"how many monsters of this challenge rating"`
}

// NewValidateHandler returns a tool handler that uses the given dispatcher.
// Pass the returned function to mcp.AddTool.
func NewValidateHandler(dispatcher *dispatch.Dispatcher) func(context.Context, *mcp.CallToolRequest, ValidateInput) (*mcp.CallToolResult, models.Result, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ValidateInput) (*mcp.CallToolResult, models.Result, error) {
		return ValidateContent(ctx, dispatcher, req, input)
	}
}

// ValidateContent runs one piece of content through the validation pipeline.
func ValidateContent(
	ctx context.Context,
	dispatcher *dispatch.Dispatcher,
	req *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, models.Result, error) {
	result, err := dispatcher.Validate(models.Request{
		RequestID:   input.RequestID,
		ContentType: input.ContentType,
		Content:     input.Content,
	})
	if err != nil {
		return nil, models.Result{}, err
	}
	return nil, result, nil
}

// NewBalanceHandler returns a tool handler for the encounter balance check.
// Pass the returned function to mcp.AddTool.
func NewBalanceHandler(checker *legacy.Checker) func(context.Context, *mcp.CallToolRequest, BalanceInput) (*mcp.CallToolResult, balance.Assessment, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input BalanceInput) (*mcp.CallToolResult, balance.Assessment, error) {
		assessment, err := checker.CheckEncounterBalance(input.PartyLevel, input.PartySize, input.ChallengeRating, input.Count)
		if err != nil {
			return nil, balance.Assessment{}, err
		}
		return nil, assessment, nil
	}
}
