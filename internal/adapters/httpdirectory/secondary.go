// Package httpdirectory implements the fallback directory over the sales
// backend's HTTP API. It resolves business codes by email when the primary
// directory cannot resolve the subject.
package httpdirectory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	apperrors "github.com/fantastico/telesales-go/internal/errors"
)

// DefaultCodeExpression extracts the business code from the backend's
// default response shape: {"slpCode": 142}.
const DefaultCodeExpression = "slpCode"

const defaultRequestTimeout = 10 * time.Second

// Options groups dependencies and settings for the secondary directory.
type Options struct {
	BaseURL string // Required: backend base URL, e.g. https://api.fantastico.example
	APIKey  string // Optional: sent as x-api-key when non-empty

	// CodeExpression is the JMESPath expression applied to the response
	// body to extract the business code. Defaults to DefaultCodeExpression.
	CodeExpression string

	Client *http.Client // Optional: defaults to a 10s-timeout client
	Logger *slog.Logger // Optional: structured logger
}

// Secondary resolves business codes by email against the sales backend.
type Secondary struct {
	baseURL  string
	apiKey   string
	codeExpr string
	client   *http.Client
	logger   *slog.Logger
}

// NewSecondary constructs a secondary directory client. The base URL and
// code expression are validated eagerly so misconfiguration fails at startup
// rather than mid-resolution.
func NewSecondary(opts Options) (*Secondary, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme: %s", u.Scheme)
	}

	expr := strings.TrimSpace(opts.CodeExpression)
	if expr == "" {
		expr = DefaultCodeExpression
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid code expression: %w", err)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultRequestTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Secondary{
		baseURL:  base,
		apiKey:   opts.APIKey,
		codeExpr: expr,
		client:   client,
		logger:   logger.With("component", "secondary_directory"),
	}, nil
}

// LookupByEmail returns the business code mapped to the email. A null or
// missing code classifies as directory_not_found; transport failures and
// non-2xx statuses classify as directory_transient.
func (s *Secondary) LookupByEmail(ctx context.Context, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", apperrors.DirectoryNotFound("empty email")
	}

	reqURL := s.baseURL + "/auth/sap-id?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeDirectoryTransient, "build directory request")
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("x-api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.WarnContext(ctx, "secondary directory request failed", "error", err)
		return "", apperrors.Wrap(err, apperrors.ErrCodeDirectoryTransient, "directory request")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.WarnContext(ctx, "close directory response body", "error", cerr)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", apperrors.DirectoryNotFoundf("no directory entry for %s", email)
	case resp.StatusCode == http.StatusForbidden:
		// The backend rejected our API key. Operationally distinct from an
		// outage but the caller treats both as a failed lookup.
		s.logger.ErrorContext(ctx, "secondary directory rejected API key")
		return "", apperrors.DirectoryTransient("directory authentication failed")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		s.logger.WarnContext(ctx, "secondary directory returned error status", "status", resp.StatusCode)
		return "", apperrors.DirectoryTransient(fmt.Sprintf("directory returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeDirectoryTransient, "read directory response")
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeDirectoryTransient, "decode directory response")
	}

	raw, err := jmespath.Search(s.codeExpr, data)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeDirectoryTransient, "extract business code")
	}

	code, err := codeToString(raw)
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", apperrors.DirectoryNotFoundf("no business code mapped for %s", email)
	}
	return code, nil
}

// codeToString normalizes the extracted code. The backend serializes codes
// as JSON numbers; older deployments returned strings.
func codeToString(v any) (string, error) {
	switch tv := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(tv), nil
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64), nil
	case json.Number:
		return tv.String(), nil
	default:
		return "", apperrors.DirectoryTransient(fmt.Sprintf("unexpected business code type %T", v))
	}
}
