package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"TenangChat/internal/telemetry"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ErrTranscriptionFailed marks a failed or empty speech-to-text conversion.
var ErrTranscriptionFailed = errors.New("transcription failed")

// ErrSynthesisFailed marks a failed text-to-speech conversion. When chunked
// synthesis fails on any chunk the whole call fails; partial audio is
// discarded.
var ErrSynthesisFailed = errors.New("synthesis failed")

// Config holds the fixed audio processing parameters.
type Config struct {
	STTModel     string
	TTSModel     string
	Voice        string
	Language     string
	MaxChunkSize int
	Workers      int
}

// DefaultConfig returns the production audio parameters.
func DefaultConfig() Config {
	return Config{
		STTModel:     "whisper-1",
		TTSModel:     "gpt-4o-mini-tts",
		Voice:        "alloy",
		Language:     "id",
		MaxChunkSize: 100,
		Workers:      8,
	}
}

// transcriptResponse represents the response from the transcriptions API
type transcriptResponse struct {
	Text string `json:"text"`
}

// Bridge converts captured audio to text and reply text to audio through
// the OpenAI audio APIs.
type Bridge struct {
	apiKey     string
	baseURL    string
	cfg        Config
	httpClient *http.Client
	tracer     trace.Tracer
	meter      metric.Meter

	// overridden in tests
	synthChunk func(ctx context.Context, text string) ([]byte, error)
}

// NewBridge creates an audio bridge. baseURL is overridable for tests.
func NewBridge(apiKey, baseURL string, cfg Config, tracer trace.Tracer, meter metric.Meter) *Bridge {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = 100
	}
	b := &Bridge{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tracer:     tracer,
		meter:      meter,
	}
	b.synthChunk = b.synthesizeChunk
	return b
}

// Transcribe converts audio bytes to text using Whisper.
func (b *Bridge) Transcribe(ctx context.Context, audioData []byte) (string, error) {
	ctx, span := b.tracer.Start(ctx, "whisper_api_call")
	defer span.End()

	start := time.Now()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := writer.WriteField("model", b.cfg.STTModel); err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := writer.WriteField("language", b.cfg.Language); err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("content-type", writer.FormDataContentType())

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrTranscriptionFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s - %s", ErrTranscriptionFailed, resp.Status, string(body))
	}

	var apiResp transcriptResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("%w: unmarshal response: %v", ErrTranscriptionFailed, err)
	}

	telemetry.RecordRequestDuration(ctx, b.meter, time.Since(start))

	text := strings.TrimSpace(apiResp.Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty transcript", ErrTranscriptionFailed)
	}
	return text, nil
}

// Synthesize converts text to audio. Text longer than the chunk threshold is
// split at sentence boundaries and synthesized by a fixed worker pool; the
// resulting audio is concatenated in original chunk order regardless of
// completion order.
func (b *Bridge) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, span := b.tracer.Start(ctx, "tts_synthesis")
	defer span.End()

	chunks := splitIntoChunks(text, b.cfg.MaxChunkSize, b.cfg.Workers*2)
	if len(chunks) == 1 {
		audio, err := b.synthChunk(ctx, chunks[0])
		if err != nil {
			return nil, err
		}
		return audio, nil
	}

	results := make([][]byte, len(chunks))
	jobs := make(chan int)

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	workers := b.cfg.Workers
	if workers > len(chunks) {
		workers = len(chunks)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				audio, err := b.synthChunk(ctx, chunks[i])
				if err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					continue
				}
				results[i] = audio
			}
		}()
	}

	for i := range chunks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	var merged bytes.Buffer
	for _, part := range results {
		merged.Write(part)
	}
	return merged.Bytes(), nil
}

// synthesizeChunk calls the speech endpoint for a single text fragment.
func (b *Bridge) synthesizeChunk(ctx context.Context, text string) ([]byte, error) {
	start := time.Now()

	reqBody := map[string]string{
		"model":           b.cfg.TTSModel,
		"voice":           b.cfg.Voice,
		"input":           text,
		"response_format": "mp3",
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/audio/speech", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrSynthesisFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s - %s", ErrSynthesisFailed, resp.Status, string(body))
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty audio", ErrSynthesisFailed)
	}

	telemetry.RecordRequestDuration(ctx, b.meter, time.Since(start))
	return body, nil
}
