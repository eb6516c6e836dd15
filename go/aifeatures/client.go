// Package aifeatures provides an HTTP client for the aifeatures forms API.
//
// Every method issues exactly one request with the site token as a bearer
// credential. Non-2xx responses become *APIError; there are no retries and
// no client-imposed timeout beyond the caller's context.
package aifeatures

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultBaseURL is the hosted API.
const DefaultBaseURL = "https://aifeatures.dev"

// Client talks to the admin API with a site-scoped token. Safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a client for siteToken. The token is not validated here;
// see ValidateSiteToken.
func NewClient(siteToken string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   siteToken,
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API host the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ------------------------------------------------------------------
// Low-level protocol
// ------------------------------------------------------------------

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("aifeatures: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("aifeatures: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// request performs one call. out may be nil when no payload is expected.
func (c *Client) request(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("aifeatures: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp, "Request failed")
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("aifeatures: decode %s response: %w", path, err)
	}
	return nil
}

func parseError(resp *http.Response, fallback string) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var body ErrorBody
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Details = &body
	}
	if apiErr.Details != nil && apiErr.Details.Error != "" {
		apiErr.Message = apiErr.Details.Error
	} else {
		apiErr.Message = fmt.Sprintf("%s with status %d", fallback, resp.StatusCode)
	}
	return apiErr
}

// ------------------------------------------------------------------
// Forms
// ------------------------------------------------------------------

// GetForms returns every form of the site.
func (c *Client) GetForms(ctx context.Context) ([]Form, error) {
	var out formsListResponse
	if err := c.request(ctx, http.MethodGet, "/api/v1/forms", nil, &out); err != nil {
		return nil, err
	}
	if out.Forms == nil {
		out.Forms = []Form{}
	}
	return out.Forms, nil
}

// GetForm returns a single form.
func (c *Client) GetForm(ctx context.Context, formID string) (*Form, error) {
	var form Form
	if err := c.request(ctx, http.MethodGet, "/api/v1/forms/"+url.PathEscape(formID), nil, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

// CreateForm creates a form.
func (c *Client) CreateForm(ctx context.Context, input CreateFormInput) (*Form, error) {
	var form Form
	if err := c.request(ctx, http.MethodPost, "/api/v1/forms", input, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

// UpdateForm applies a partial update and returns the stored form.
func (c *Client) UpdateForm(ctx context.Context, formID string, input UpdateFormInput) (*Form, error) {
	var form Form
	if err := c.request(ctx, http.MethodPatch, "/api/v1/forms/"+url.PathEscape(formID), input, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

// DeleteForm deletes a form and its submissions.
func (c *Client) DeleteForm(ctx context.Context, formID string) error {
	return c.request(ctx, http.MethodDelete, "/api/v1/forms/"+url.PathEscape(formID), nil, nil)
}

// ------------------------------------------------------------------
// Submissions
// ------------------------------------------------------------------

// GetSubmissions returns one page of a form's submissions.
func (c *Client) GetSubmissions(ctx context.Context, formID string, opts *ListSubmissionsOptions) (*SubmissionPage, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Limit != nil {
			params.Set("limit", strconv.Itoa(*opts.Limit))
		}
		if opts.Offset != nil {
			params.Set("offset", strconv.Itoa(*opts.Offset))
		}
		if opts.IncludeSpam != nil {
			params.Set("include_spam", strconv.FormatBool(*opts.IncludeSpam))
		}
	}
	path := "/api/v1/forms/" + url.PathEscape(formID) + "/submissions"
	if q := params.Encode(); q != "" {
		path += "?" + q
	}
	var page SubmissionPage
	if err := c.request(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	if page.Submissions == nil {
		page.Submissions = []Submission{}
	}
	return &page, nil
}

// GetSubmission returns a single submission.
func (c *Client) GetSubmission(ctx context.Context, submissionID string) (*Submission, error) {
	var sub Submission
	if err := c.request(ctx, http.MethodGet, "/api/v1/submissions/"+url.PathEscape(submissionID), nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateSubmission changes the read/spam flags and returns the stored submission.
func (c *Client) UpdateSubmission(ctx context.Context, submissionID string, input UpdateSubmissionInput) (*Submission, error) {
	var sub Submission
	if err := c.request(ctx, http.MethodPatch, "/api/v1/submissions/"+url.PathEscape(submissionID), input, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeleteSubmission deletes a submission.
func (c *Client) DeleteSubmission(ctx context.Context, submissionID string) error {
	return c.request(ctx, http.MethodDelete, "/api/v1/submissions/"+url.PathEscape(submissionID), nil, nil)
}

// ------------------------------------------------------------------
// Attachments
// ------------------------------------------------------------------

// Download is an attachment body streamed from the API. The caller closes Body.
type Download struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// DownloadAttachment fetches an attachment of a submission.
func (c *Client) DownloadAttachment(ctx context.Context, submissionID, filename string) (*Download, error) {
	path := "/api/v1/submissions/" + url.PathEscape(submissionID) + "/attachments/" + url.PathEscape(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("aifeatures: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aifeatures: GET %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseError(resp, "Download failed")
	}

	name := filename
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			name = params["filename"]
		}
	}
	return &Download{
		Filename:    name,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}

// SaveTo writes the attachment into dir and closes the body.
// It returns the path of the written file.
func (d *Download) SaveTo(dir string) (string, error) {
	defer d.Body.Close()
	target := filepath.Join(dir, filepath.Base(d.Filename))
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("aifeatures: create %s: %w", target, err)
	}
	if _, err := io.Copy(f, d.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("aifeatures: write %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("aifeatures: close %s: %w", target, err)
	}
	return target, nil
}
