package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"
)

// Client implements core.TextCompleter against AWS Bedrock. The request and
// response shape depends on the model family.
type Client struct {
	client      *bedrockruntime.Client
	modelID     string
	maxTokens   int
	temperature float64
	topP        float64
	logger      *zap.Logger
}

func NewClient(ctx context.Context, region, modelID string, maxTokens int, temperature, topP float64, logger *zap.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &Client{
		client:      bedrockruntime.NewFromConfig(awsCfg),
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}, nil
}

// Complete sends one system+user exchange and returns the completion text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	body, err := c.requestBody(system, user)
	if err != nil {
		return "", err
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("invoking model %s: %w", c.modelID, err)
	}

	text, err := c.responseText(resp.Body)
	if err != nil {
		return "", err
	}

	c.logger.Debug("Bedrock completion finished", zap.String("model_id", c.modelID))
	return text, nil
}

func (c *Client) requestBody(system, user string) ([]byte, error) {
	switch {
	case strings.HasPrefix(c.modelID, "anthropic.claude"):
		return json.Marshal(map[string]any{
			"prompt":               fmt.Sprintf("\n\nHuman: %s\n\n%s\n\nAssistant:", system, user),
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	case strings.HasPrefix(c.modelID, "amazon.titan"):
		return json.Marshal(map[string]any{
			"inputText": system + "\n\n" + user,
			"textGenerationConfig": map[string]any{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	default:
		return json.Marshal(map[string]any{
			"prompt":      system + "\n\n" + user,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
}

func (c *Client) responseText(body []byte) (string, error) {
	switch {
	case strings.HasPrefix(c.modelID, "anthropic.claude"):
		var out struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return "", fmt.Errorf("parsing claude response: %w", err)
		}
		return out.Completion, nil
	case strings.HasPrefix(c.modelID, "amazon.titan"):
		var out struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return "", fmt.Errorf("parsing titan response: %w", err)
		}
		if len(out.Results) == 0 {
			return "", fmt.Errorf("empty response from model %s", c.modelID)
		}
		return out.Results[0].OutputText, nil
	default:
		var out struct {
			Completion string `json:"completion"`
			OutputText string `json:"outputText"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return "", fmt.Errorf("parsing model response: %w", err)
		}
		if out.Completion != "" {
			return out.Completion, nil
		}
		return out.OutputText, nil
	}
}
