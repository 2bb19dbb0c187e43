package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xeipuuv/gojsonschema"
)

// Strict parameter schemas, one per tool. Unknown extra fields are
// rejected, so a typo'd optional parameter fails loudly instead of being
// silently ignored. Requiredness that depends on which request shape was
// chosen (create_transfer, submit_transaction) lives in the handlers.
var toolSchemaSources = map[string]string{
	"create_transfer": `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"symbol": {"type": "string", "minLength": 1},
			"source": {"type": "string", "minLength": 1},
			"destination": {"type": "string", "minLength": 1},
			"amount": {"type": "string", "pattern": "^[0-9]+$"},
			"memo": {"type": "string"},
			"signer": {"type": "string", "minLength": 1},
			"contract": {"type": "string", "minLength": 1},
			"function": {"type": "string", "minLength": 1},
			"args": {"type": "array", "items": {"type": ["string", "number", "object"]}},
			"nonce": {"type": "integer", "minimum": 1}
		}
	}`,
	"submit_transaction": `{
		"type": "object",
		"additionalProperties": false,
		"required": ["signature"],
		"properties": {
			"transaction": {"type": "string", "minLength": 1},
			"tx": {
				"type": "object",
				"additionalProperties": false,
				"required": ["signer", "contract", "function", "args", "nonce"],
				"properties": {
					"signer": {"type": "string", "minLength": 1},
					"contract": {"type": "string", "minLength": 1},
					"function": {"type": "string", "minLength": 1},
					"args": {"type": "array", "items": {"type": ["string", "number", "object"]}},
					"nonce": {"type": "integer", "minimum": 1}
				}
			},
			"signature": {"type": "string", "minLength": 1},
			"network": {"type": "string", "enum": ["mainnet", "testnet"]}
		}
	}`,
	"get_account_balance": `{
		"type": "object",
		"additionalProperties": false,
		"required": ["address"],
		"properties": {
			"address": {"type": "string", "minLength": 1}
		}
	}`,
	"get_chain_stats": `{
		"type": "object",
		"additionalProperties": false,
		"properties": {}
	}`,
	"get_block_by_height": `{
		"type": "object",
		"additionalProperties": false,
		"required": ["height"],
		"properties": {
			"height": {"type": "integer", "minimum": 0}
		}
	}`,
	"get_transaction": `{
		"type": "object",
		"additionalProperties": false,
		"required": ["tx_hash"],
		"properties": {
			"tx_hash": {"type": "string", "minLength": 1}
		}
	}`,
	"get_transaction_history": `{
		"type": "object",
		"additionalProperties": false,
		"required": ["address"],
		"properties": {
			"address": {"type": "string", "minLength": 1},
			"limit": {"type": "integer", "minimum": 1, "maximum": 100},
			"offset": {"type": "integer", "minimum": 0},
			"sort": {"type": "string", "enum": ["asc", "desc"]}
		}
	}`,
	"get_validators": `{
		"type": "object",
		"additionalProperties": false,
		"properties": {}
	}`,
	"get_contract_state": `{
		"type": "object",
		"additionalProperties": false,
		"required": ["contract_address", "key"],
		"properties": {
			"contract_address": {"type": "string", "minLength": 1},
			"key": {"type": "string", "minLength": 1}
		}
	}`,
	"claim_testnet_ama": `{
		"type": "object",
		"additionalProperties": false,
		"required": ["address"],
		"properties": {
			"address": {"type": "string", "minLength": 1}
		}
	}`,
}

var toolSchemas = compileToolSchemas()

func compileToolSchemas() map[string]*gojsonschema.Schema {
	schemas := make(map[string]*gojsonschema.Schema, len(toolSchemaSources))
	for name, src := range toolSchemaSources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			panic(fmt.Sprintf("invalid schema for tool %s: %v", name, err))
		}
		schemas[name] = schema
	}
	return schemas
}

// validateParams is a tool middleware running every call's arguments
// against the tool's strict schema before the handler sees them.
func validateParams(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		schema, ok := toolSchemas[request.Params.Name]
		if !ok {
			return next(ctx, request)
		}

		args := request.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		result, err := schema.Validate(gojsonschema.NewGoLoader(args))
		if err != nil {
			return errorResult(kindValidation, fmt.Sprintf("parameters are not a valid object: %v", err), nil), nil
		}
		if !result.Valid() {
			return validationFailure(result), nil
		}
		return next(ctx, request)
	}
}

// validationFailure renders schema violations with their field paths.
func validationFailure(result *gojsonschema.Result) *mcp.CallToolResult {
	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		field := e.Field()
		if field == "(root)" {
			violations = append(violations, e.Description())
			continue
		}
		violations = append(violations, fmt.Sprintf("%s: %s", field, e.Description()))
	}
	sort.Strings(violations)

	return errorResult(kindValidation, strings.Join(violations, "; "), map[string]any{
		"violations": violations,
	})
}
