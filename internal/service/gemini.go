package service

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// Classifier submits a prompt plus an image to a multimodal model and
// returns the raw text reply.
type Classifier interface {
	Classify(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
	Close() error
}

// GeminiClassifier calls Gemini through Vertex AI. The client is a
// lifecycle-scoped handle: created once at startup, closed on shutdown,
// passed explicitly to whoever needs it.
type GeminiClassifier struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClassifier(ctx context.Context, projectID, location, credentialsFile, modelName string) (*GeminiClassifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := genai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.4)
	model.SetTopK(32)
	model.SetTopP(1)
	model.SetMaxOutputTokens(256)

	return &GeminiClassifier{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClassifier) Classify(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	parts := []genai.Part{
		genai.Blob{
			MIMEType: mimeType,
			Data:     image,
		},
		genai.Text(prompt),
	}

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty gemini response")
	}

	var output string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output += string(text)
		}
	}

	return output, nil
}

func (c *GeminiClassifier) Close() error {
	return c.client.Close()
}
