package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockClient completes chats through the AWS Bedrock Converse API.
type BedrockClient struct {
	bedrock *bedrockruntime.Client
	modelID string
}

// NewBedrockClient creates a Bedrock chat client. An empty region falls
// back to the AWS default chain.
func NewBedrockClient(ctx context.Context, region, modelID string) (*BedrockClient, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &BedrockClient{bedrock: bedrockruntime.NewFromConfig(awsCfg), modelID: modelID}, nil
}

// Complete implements Completer. System messages become the Converse
// system prompt; the rest are sent in order.
func (c *BedrockClient) Complete(ctx context.Context, messages []Message) (string, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(defaultMaxTokens),
			Temperature: aws.Float32(defaultTemperature),
		},
	}
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			input.System = append(input.System, &types.SystemContentBlockMemberText{Value: m.Content})
		case RoleAssistant:
			input.Messages = append(input.Messages, textMessage(types.ConversationRoleAssistant, m.Content))
		default:
			input.Messages = append(input.Messages, textMessage(types.ConversationRoleUser, m.Content))
		}
	}

	out, err := c.bedrock.Converse(ctx, input)
	if err != nil {
		return "", fmt.Errorf("bedrock converse: %w", err)
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("bedrock returned no message")
	}
	var b strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			b.WriteString(text.Value)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("bedrock returned empty content")
	}
	return strings.TrimSpace(b.String()), nil
}

// Model returns the model identifier.
func (c *BedrockClient) Model() string {
	return c.modelID
}

func textMessage(role types.ConversationRole, text string) types.Message {
	return types.Message{
		Role:    role,
		Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: text}},
	}
}
