package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"finbook/internal/statement"
	"finbook/pkg/config"

	"go.uber.org/zap"
)

// UploadFile is the in-memory representation of a submitted statement file.
type UploadFile struct {
	Name         string
	Size         int64
	LastModified int64
	Content      []byte
}

// ParseOptions tune a single remote parse attempt. The PDF strategy chain
// varies these between attempts: the direct pass sends the file as-is,
// UseVision asks the provider to rasterize pages through its OCR service,
// ReparseText asks it to re-run extraction over previously OCRed text.
type ParseOptions struct {
	PreferredProvider string
	UseVision         bool
	ReparseText       bool
	Context           string
}

// StatementParser is the contract the upload orchestrator drives. Errors
// returned by Parse are classified statement.ParseError values.
type StatementParser interface {
	Parse(ctx context.Context, file UploadFile, opts ParseOptions) ([]statement.ParsedTransaction, error)
}

type parseResponse struct {
	Success      bool                          `json:"success"`
	Transactions []statement.RemoteTransaction `json:"transactions"`
	Error        string                        `json:"error,omitempty"`
	Diagnostics  json.RawMessage               `json:"diagnostics,omitempty"`
}

// ParseClient talks to the remote parsing/AI endpoint. It is transport
// only: every failure mode is resolved to a statement.ParseError so the
// orchestrator can branch on kind, never on message text.
type ParseClient struct {
	cfg        *config.ParserConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewParseClient(cfg *config.ParserConfig, logger *zap.Logger) *ParseClient {
	return &ParseClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

func (c *ParseClient) Parse(ctx context.Context, file UploadFile, opts ParseOptions) ([]statement.ParsedTransaction, error) {
	body, contentType, err := c.buildRequestBody(file, opts)
	if err != nil {
		return nil, statement.WrapParseError(statement.KindValidation, "failed to build parse request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/parse", body)
	if err != nil {
		return nil, statement.WrapParseError(statement.KindValidation, "failed to build parse request", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, statement.WrapParseError(statement.KindNetwork, "parse request failed", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		io.Copy(io.Discard, resp.Body)
		return nil, err
	}

	var parsed parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, statement.WrapParseError(statement.KindProvider, "invalid response from parse service", err)
	}

	if !parsed.Success {
		c.logger.Warn("Parse service reported failure",
			zap.String("file", file.Name),
			zap.String("provider_error", parsed.Error),
		)
		return nil, statement.NewParseError(statement.KindProvider, providerMessage(parsed.Error))
	}

	transactions := statement.MapRemoteTransactions(parsed.Transactions)
	if len(transactions) == 0 {
		return nil, statement.NewParseError(statement.KindContent, "no transactions found in file")
	}

	return transactions, nil
}

func (c *ParseClient) buildRequestBody(file UploadFile, opts ParseOptions) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"preferred_provider": firstNonEmpty(opts.PreferredProvider, c.cfg.PreferredProvider),
		"use_vision":         strconv.FormatBool(opts.UseVision),
		"reparse_text":       strconv.FormatBool(opts.ReparseText),
		"context":            opts.Context,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}

// classifyStatus maps HTTP status classes to the retry taxonomy: 401 is
// fatal auth, 429 is fatal provider quota, 5xx stays retryable.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized:
		return statement.NewParseError(statement.KindAuth, "session expired, please sign in again")
	case status == http.StatusTooManyRequests:
		return statement.NewParseError(statement.KindProvider, "parsing service is rate limited, try again later or upload a CSV")
	case status >= 500:
		return statement.NewParseError(statement.KindNetwork, "server error, try again later")
	default:
		return statement.NewParseError(statement.KindProvider, fmt.Sprintf("parse service rejected the request (status %d)", status))
	}
}

func providerMessage(providerError string) string {
	if providerError == "" {
		return "parsing service could not process this file"
	}
	return "parsing service could not process this file: " + providerError
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
