package widget_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/landingsite-ai/aifeatures-go/go/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSiteKey = "1x00000000000000000000AA"

// intake is a stand-in for the public form endpoints.
type intake struct {
	mu       sync.Mutex
	siteKey  *string
	status   int
	body     string
	posts    []*http.Request
	fields   []map[string][]string
	files    []map[string][]string
	configOK bool
}

func (in *intake) server(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/f/f1/config":
			if !in.configOK {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"id":                "f1",
				"name":              "Contact Form",
				"endpoint_url":      srv.URL + "/f/f1",
				"turnstile_sitekey": in.siteKey,
			})
		case r.Method == http.MethodPost && r.URL.Path == "/f/f1":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parse multipart: %v", err)
			}
			in.mu.Lock()
			in.posts = append(in.posts, r)
			in.fields = append(in.fields, r.MultipartForm.Value)
			names := map[string][]string{}
			for k, fhs := range r.MultipartForm.File {
				for _, fh := range fhs {
					names[k] = append(names[k], fh.Filename)
				}
			}
			in.files = append(in.files, names)
			status, body := in.status, in.body
			in.mu.Unlock()
			if status == 0 {
				status = http.StatusOK
				body = `{"success":true,"id":"sub_1"}`
			}
			w.WriteHeader(status)
			io.WriteString(w, body)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type resetCounter struct{ n int }

func (r *resetCounter) Reset() { r.n++ }

var contactFields = []widget.Field{
	{Name: "name", Label: "Name", Required: true},
	{Name: "email", Label: "Email", Type: widget.Email, Required: true},
	{Name: "message", Type: widget.Textarea},
}

func key(s string) *string { return &s }

// ------------------------------------------------------------------
// Configuration
// ------------------------------------------------------------------

func TestRenderLoadingBeforeConfig(t *testing.T) {
	f := widget.New("f1", contactFields, widget.Options{})
	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	assert.Contains(t, buf.String(), "Loading form...")
	assert.False(t, f.CanSubmit())
}

func TestConfigFailureReportedOnce(t *testing.T) {
	in := &intake{}
	srv := in.server(t)
	var reported []error
	f := widget.New("f1", contactFields, widget.Options{
		BaseURL: srv.URL,
		OnError: func(err error) { reported = append(reported, err) },
	})

	err := f.Load(context.Background())
	require.Error(t, err)
	require.Len(t, reported, 1)
	assert.Equal(t, "Failed to load form: 404", reported[0].Error())

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	assert.Contains(t, buf.String(), "Failed to load form. Please try again later.")
	assert.ErrorIs(t, f.Submit(context.Background()), widget.ErrNotLoaded)
	assert.Len(t, reported, 1)
}

// ------------------------------------------------------------------
// CAPTCHA gating
// ------------------------------------------------------------------

func TestCaptchaGatesSubmit(t *testing.T) {
	in := &intake{configOK: true, siteKey: key(testSiteKey)}
	srv := in.server(t)
	f := widget.New("f1", contactFields, widget.Options{BaseURL: srv.URL})
	require.NoError(t, f.Load(context.Background()))

	f.Set("name", "Ada")
	f.Set("email", "ada@example.com")
	assert.False(t, f.CanSubmit())

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	assert.Contains(t, buf.String(), `data-sitekey="`+testSiteKey+`"`)
	assert.Contains(t, buf.String(), "disabled")

	var verr widget.ValidationError
	require.ErrorAs(t, f.Submit(context.Background()), &verr)
	assert.Equal(t, "Please complete the CAPTCHA verification", verr[widget.CaptchaField])
	assert.Empty(t, in.posts)

	f.CaptchaSucceeded("tok1")
	assert.True(t, f.CanSubmit())
	assert.NotContains(t, f.Errors(), widget.CaptchaField)

	require.NoError(t, f.Submit(context.Background()))
	require.Len(t, in.fields, 1)
	assert.Equal(t, []string{"tok1"}, in.fields[0][widget.CaptchaField])
	assert.Equal(t, []string{"Ada"}, in.fields[0]["name"])
}

func TestCaptchaExpiryRevalidates(t *testing.T) {
	in := &intake{configOK: true, siteKey: key(testSiteKey)}
	srv := in.server(t)
	f := widget.New("f1", nil, widget.Options{BaseURL: srv.URL})
	require.NoError(t, f.Load(context.Background()))

	f.CaptchaSucceeded("tok1")
	assert.True(t, f.CanSubmit())

	f.CaptchaExpired()
	assert.False(t, f.CanSubmit())
	assert.Equal(t, "Please complete the CAPTCHA verification", f.Errors()[widget.CaptchaField])

	f.CaptchaSucceeded("tok2")
	f.CaptchaFailed()
	assert.False(t, f.CanSubmit())
}

func TestNoSiteKeySubmitsWithoutToken(t *testing.T) {
	in := &intake{configOK: true}
	srv := in.server(t)
	f := widget.New("f1", contactFields, widget.Options{BaseURL: srv.URL})
	require.NoError(t, f.Load(context.Background()))

	f.Set("name", "Ada")
	f.Set("email", "ada@example.com")
	assert.True(t, f.CanSubmit())

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	assert.NotContains(t, buf.String(), "cf-turnstile")

	require.NoError(t, f.Submit(context.Background()))
	require.Len(t, in.fields, 1)
	_, sent := in.fields[0][widget.CaptchaField]
	assert.False(t, sent)
}

// ------------------------------------------------------------------
// Submission
// ------------------------------------------------------------------

func TestRequiredFieldMessages(t *testing.T) {
	in := &intake{configOK: true}
	srv := in.server(t)
	f := widget.New("f1", []widget.Field{
		{Name: "name", Label: "Name", Required: true},
		{Name: "company", Required: true},
	}, widget.Options{BaseURL: srv.URL})
	require.NoError(t, f.Load(context.Background()))

	var verr widget.ValidationError
	require.ErrorAs(t, f.Submit(context.Background()), &verr)
	assert.Equal(t, "Name is required", verr["name"])
	assert.Equal(t, "company is required", verr["company"])

	f.Set("name", "Ada")
	assert.NotContains(t, f.Errors(), "name")
	assert.Contains(t, f.Errors(), "company")
}

func TestSuccessClearsAndResets(t *testing.T) {
	in := &intake{configOK: true, siteKey: key(testSiteKey)}
	srv := in.server(t)
	captcha := &resetCounter{}
	var got widget.Values
	f := widget.New("f1", []widget.Field{
		{Name: "name", Required: true},
		{Name: "files", Type: widget.FileType, Multiple: true},
	}, widget.Options{
		BaseURL:   srv.URL,
		Captcha:   captcha,
		OnSuccess: func(v widget.Values) { got = v },
	})
	require.NoError(t, f.Load(context.Background()))

	f.Set("name", "Ada")
	f.AttachFile("files", widget.File{Name: "a.txt", ContentType: "text/plain", Data: []byte("a")})
	f.AttachFile("files", widget.File{Name: "b.txt", Data: []byte("b")})
	f.CaptchaSucceeded("tok1")
	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, widget.Succeeded, f.Status().Phase)
	assert.Equal(t, 1, captcha.n)
	assert.Equal(t, "Ada", got.Get("name"))
	assert.Equal(t, "tok1", got.Get(widget.CaptchaField))
	assert.Len(t, got.Files["files"], 2)
	assert.Equal(t, []string{"a.txt", "b.txt"}, in.files[0]["files"])

	assert.Empty(t, f.Values().Fields)
	assert.False(t, f.CanSubmit(), "a fresh token is needed")

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	assert.Contains(t, buf.String(), "Thank you! Your message has been sent.")
}

func TestServerErrorKeepsValues(t *testing.T) {
	in := &intake{configOK: true, status: http.StatusBadRequest, body: `{"error":"Captcha required"}`}
	srv := in.server(t)
	var reported []error
	f := widget.New("f1", contactFields, widget.Options{
		BaseURL: srv.URL,
		OnError: func(err error) { reported = append(reported, err) },
	})
	require.NoError(t, f.Load(context.Background()))
	f.Set("name", "Ada")
	f.Set("email", "ada@example.com")

	err := f.Submit(context.Background())
	var serr *widget.SubmitError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, `{"error":"Captcha required"}`, serr.Message)
	require.Len(t, reported, 1)
	assert.Equal(t, widget.Failed, f.Status().Phase)
	assert.Equal(t, "Ada", f.Values().Get("name"))

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	assert.Contains(t, buf.String(), "Captcha required")
}

func TestEmptyErrorBodyFallback(t *testing.T) {
	in := &intake{configOK: true, status: http.StatusInternalServerError}
	srv := in.server(t)
	f := widget.New("f1", nil, widget.Options{BaseURL: srv.URL})
	require.NoError(t, f.Load(context.Background()))

	err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Submission failed: 500", err.Error())
}

func TestConcurrentSubmitRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(map[string]any{"id": "f1", "endpoint_url": srv.URL + "/f/f1"})
			return
		}
		close(started)
		<-release
		io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	f := widget.New("f1", nil, widget.Options{BaseURL: srv.URL})
	require.NoError(t, f.Load(context.Background()))

	done := make(chan error)
	go func() { done <- f.Submit(context.Background()) }()
	<-started

	assert.Equal(t, widget.Submitting, f.Status().Phase)
	assert.False(t, f.CanSubmit())
	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	assert.Contains(t, buf.String(), "Sending...")
	assert.True(t, errors.Is(f.Submit(context.Background()), widget.ErrSubmitting))

	close(release)
	require.NoError(t, <-done)
}

func TestRenderEscapesValues(t *testing.T) {
	in := &intake{configOK: true}
	srv := in.server(t)
	f := widget.New("f1", []widget.Field{
		{Name: "topic", Label: "Topic", Type: widget.Select, Options: []widget.Choice{{Value: "sales", Label: "Sales"}, {Value: "help", Label: "Help"}}},
		{Name: "name", Label: "Name"},
	}, widget.Options{BaseURL: srv.URL})
	require.NoError(t, f.Load(context.Background()))
	f.Set("topic", "help")
	f.Set("name", `<script>"x"</script>`)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	out := buf.String()
	assert.Contains(t, out, `<option value="help" selected>Help</option>`)
	assert.Contains(t, out, "Select an option")
	assert.False(t, strings.Contains(out, "<script>"))
}
