package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// Request is one structured-output oracle call: free-form instructions, the
// content to judge, and the JSON schema the reply must conform to.
type Request struct {
	Model           string
	Instructions    string
	Input           string
	SchemaName      string
	SchemaDesc      string
	Schema          map[string]interface{}
	MaxOutputTokens int64
}

// Client wraps the OpenAI Responses API behind the one-call surface the
// analysis package needs. Calls are single-shot: a failed call is never
// retried here, because the caller absorbs each failure exactly once into a
// fallback record.
type Client struct {
	api *openai.Client
}

func New(apiKey string) *Client {
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{api: &c}
}

func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if c.api == nil {
		return "", fmt.Errorf("provider: client is nil")
	}
	if req.Model == "" {
		return "", fmt.Errorf("provider: model is empty")
	}
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 2500
	}

	params := responses.ResponseNewParams{
		Model:           req.Model,
		MaxOutputTokens: openai.Int(maxTokens),
		Instructions:    openai.String(req.Instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(req.Input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        req.SchemaName,
					Schema:      req.Schema,
					Strict:      openai.Bool(true),
					Description: openai.String(req.SchemaDesc),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := c.api.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}

// Classify maps a transport error onto a short label suitable for fallback
// rationales.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests"):
		return "rate limited"
	case strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error"):
		return "server error"
	default:
		return "transport failure"
	}
}

// GenerateSchema reflects a JSON schema for T and rewrites it into the shape
// OpenAI structured outputs require (no additionalProperties, every property
// required).
func GenerateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)

	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	ensureOpenAICompliance(m)
	return m
}

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

func ensureOpenAICompliance(schema map[string]interface{}) {
	if schemaType, ok := schema[typeKey].(string); ok && schemaType == "object" {
		schema[additionalPropertiesKey] = false

		if properties, ok := schema[propertiesKey].(map[string]interface{}); ok {
			var requiredFields []string
			for propName := range properties {
				requiredFields = append(requiredFields, propName)
			}
			if len(requiredFields) > 0 {
				schema[requiredKey] = requiredFields
			}
		}
	}

	if properties, ok := schema[propertiesKey].(map[string]interface{}); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]interface{}); ok {
				ensureOpenAICompliance(propMap)
			}
		}
	}

	if items, ok := schema[itemsKey].(map[string]interface{}); ok {
		ensureOpenAICompliance(items)
	}

	if additionalProps, ok := schema[additionalPropertiesKey].(map[string]interface{}); ok {
		ensureOpenAICompliance(additionalProps)
	}
}
