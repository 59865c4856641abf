package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/meeting-secretary/pkg/config"
)

// ErrNotConfigured is returned when a provider has no API key
var ErrNotConfigured = errors.New("provider not configured")

// AssemblyAIClient transcribes audio with the AssemblyAI SDK
type AssemblyAIClient struct {
	client   *aai.Client
	language string
}

// NewAssemblyAIClient creates a transcriber; it returns ErrNotConfigured without an API key
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig) (*AssemblyAIClient, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("assemblyai: %w", ErrNotConfigured)
	}
	return &AssemblyAIClient{
		client:   aai.NewClient(cfg.APIKey),
		language: cfg.LanguageCode,
	}, nil
}

// Transcribe uploads audio and waits for the finished transcript text
func (c *AssemblyAIClient) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	uploadURL, err := c.client.Upload(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("failed to upload to AssemblyAI: %w", err)
	}

	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
	}
	if c.language != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(c.language)
	}

	transcript, err := c.client.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
	if err != nil {
		return "", fmt.Errorf("assemblyai transcription failed: %w", err)
	}
	return transcriptText(transcript)
}

func transcriptText(t aai.Transcript) (string, error) {
	if t.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if t.Error != nil {
			msg = *t.Error
		}
		return "", fmt.Errorf("assemblyai error: %s", msg)
	}
	if t.Text == nil {
		return "", nil
	}
	return *t.Text, nil
}
