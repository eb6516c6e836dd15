// Package widget implements the embeddable form: it loads a form's public
// configuration, collects field values, gates submission on an optional
// Turnstile CAPTCHA and posts the values as multipart data.
package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is where form configurations are fetched from.
const DefaultBaseURL = "https://aifeatures.dev"

// CaptchaField is the hidden field carrying the Turnstile response token.
const CaptchaField = "cf-turnstile-response"

const captchaMessage = "Please complete the CAPTCHA verification"

var (
	// ErrNotLoaded is returned by Submit before Load succeeded.
	ErrNotLoaded = errors.New("widget: form configuration not loaded")
	// ErrSubmitting is returned by Submit while another submission is in flight.
	ErrSubmitting = errors.New("widget: submission already in progress")
)

// FieldType is the input kind of a field.
type FieldType string

const (
	Text     FieldType = "text"
	Email    FieldType = "email"
	Tel      FieldType = "tel"
	URL      FieldType = "url"
	Number   FieldType = "number"
	Textarea FieldType = "textarea"
	Select   FieldType = "select"
	FileType FieldType = "file"
)

// Choice is one option of a select field.
type Choice struct {
	Value string
	Label string
}

// Field describes one input of the form.
type Field struct {
	Name        string
	Label       string
	Type        FieldType
	Placeholder string
	Required    bool
	Options     []Choice
	Accept      string
	Multiple    bool
}

func (f Field) requiredMessage() string {
	if f.Label != "" {
		return f.Label + " is required"
	}
	return f.Name + " is required"
}

// Config is the public configuration served at /f/:id/config.
type Config struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	EndpointURL      string  `json:"endpoint_url"`
	TurnstileSiteKey *string `json:"turnstile_sitekey"`
}

func (c *Config) siteKey() string {
	if c == nil || c.TurnstileSiteKey == nil {
		return ""
	}
	return *c.TurnstileSiteKey
}

// File is an uploaded file value.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// OpenFile reads a file from disk into a File value.
func OpenFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("widget: read %s: %w", path, err)
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return File{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}

// Values are the collected field values.
type Values struct {
	Fields map[string]string
	Files  map[string][]File
}

// Get returns a text value.
func (v Values) Get(name string) string {
	return v.Fields[name]
}

func (v Values) clone() Values {
	out := Values{Fields: make(map[string]string, len(v.Fields)), Files: make(map[string][]File, len(v.Files))}
	for k, s := range v.Fields {
		out.Fields[k] = s
	}
	for k, fs := range v.Files {
		out.Files[k] = append([]File(nil), fs...)
	}
	return out
}

// ValidationError maps field names to messages.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e[k])
	}
	return strings.Join(msgs, "; ")
}

// LoadError is reported when the configuration endpoint answers non-2xx.
type LoadError struct {
	Status int
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("Failed to load form: %d", e.Status)
}

// SubmitError is reported when the submission endpoint answers non-2xx.
// Message is the response body, or a generic text when the body is empty.
type SubmitError struct {
	Status  int
	Message string
}

func (e *SubmitError) Error() string {
	return e.Message
}

// Captcha is the CAPTCHA widget on the page. Reset is called after a
// successful submission so the next one needs a fresh token.
type Captcha interface {
	Reset()
}

// Options configures a Form.
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	OnSuccess   func(Values)
	OnError     func(error)
	Captcha     Captcha
	Logger      logrus.FieldLogger
	SubmitLabel string
	// SuccessMessage replaces the default status text after a submission.
	SuccessMessage string
}

// Phase is the submission state.
type Phase int

const (
	Idle Phase = iota
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "success"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// Status is the current submission state and its error, if any.
type Status struct {
	Phase Phase
	Err   error
}

// Form is one embedded form instance. Safe for concurrent use.
type Form struct {
	formID string
	fields []Field
	opts   Options
	http   *http.Client
	log    logrus.FieldLogger

	mu        sync.Mutex
	config    *Config
	loadErr   error
	values    Values
	errs      ValidationError
	phase     Phase
	submitErr error
}

// New creates a form for formID with the given fields.
func New(formID string, fields []Field, opts Options) *Form {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.SubmitLabel == "" {
		opts.SubmitLabel = "Submit"
	}
	if opts.SuccessMessage == "" {
		opts.SuccessMessage = "Thank you! Your message has been sent."
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	fs := make([]Field, len(fields))
	for i, fd := range fields {
		if fd.Type == "" {
			fd.Type = Text
		}
		fs[i] = fd
	}
	return &Form{
		formID: formID,
		fields: fs,
		opts:   opts,
		http:   hc,
		log:    log.WithField("form_id", formID),
		values: Values{Fields: map[string]string{}, Files: map[string][]File{}},
		errs:   ValidationError{},
	}
}

// ------------------------------------------------------------------
// Configuration
// ------------------------------------------------------------------

// Load fetches the form configuration. A failure is reported to OnError and
// returned.
func (f *Form) Load(ctx context.Context) error {
	cfg, err := f.fetchConfig(ctx)

	f.mu.Lock()
	if err != nil {
		f.loadErr = err
	} else {
		f.config = cfg
		f.loadErr = nil
	}
	f.mu.Unlock()

	if err != nil {
		f.log.WithError(err).Warn("load form config failed")
		if f.opts.OnError != nil {
			f.opts.OnError(err)
		}
		return err
	}
	return nil
}

func (f *Form) fetchConfig(ctx context.Context) (*Config, error) {
	endpoint := f.opts.BaseURL + "/f/" + url.PathEscape(f.formID) + "/config"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("widget: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("widget: load config: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &LoadError{Status: resp.StatusCode}
	}
	var cfg Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("widget: decode config: %w", err)
	}
	return &cfg, nil
}

// Config returns the loaded configuration, or nil.
func (f *Form) Config() *Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config
}

// ------------------------------------------------------------------
// Values
// ------------------------------------------------------------------

// Set stores a text value.
func (f *Form) Set(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values.Fields[name] = value
	f.revalidateLocked(name)
}

// AttachFile adds a file to a file field. Fields without Multiple keep only
// the last file.
func (f *Form) AttachFile(name string, file File) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fd, ok := f.field(name); ok && fd.Multiple {
		f.values.Files[name] = append(f.values.Files[name], file)
	} else {
		f.values.Files[name] = []File{file}
	}
	f.revalidateLocked(name)
}

// Values returns a copy of the current values.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values.clone()
}

// Errors returns the field errors found by the last validation.
func (f *Form) Errors() ValidationError {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(ValidationError, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

func (f *Form) field(name string) (Field, bool) {
	for _, fd := range f.fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

// ------------------------------------------------------------------
// CAPTCHA callbacks
// ------------------------------------------------------------------

// CaptchaSucceeded stores the token issued by the CAPTCHA widget.
func (f *Form) CaptchaSucceeded(token string) {
	f.setCaptcha(token)
}

// CaptchaFailed clears the token.
func (f *Form) CaptchaFailed() {
	f.setCaptcha("")
}

// CaptchaExpired clears the token.
func (f *Form) CaptchaExpired() {
	f.setCaptcha("")
}

func (f *Form) setCaptcha(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values.Fields[CaptchaField] = token
	if f.config.siteKey() == "" {
		return
	}
	if token == "" {
		f.errs[CaptchaField] = captchaMessage
	} else {
		delete(f.errs, CaptchaField)
	}
}

// ------------------------------------------------------------------
// Validation
// ------------------------------------------------------------------

func (f *Form) validateLocked() ValidationError {
	errs := ValidationError{}
	for _, fd := range f.fields {
		if !fd.Required {
			continue
		}
		if fd.Type == FileType {
			if len(f.values.Files[fd.Name]) == 0 {
				errs[fd.Name] = fd.requiredMessage()
			}
			continue
		}
		if f.values.Fields[fd.Name] == "" {
			errs[fd.Name] = fd.requiredMessage()
		}
	}
	if f.config.siteKey() != "" && f.values.Fields[CaptchaField] == "" {
		errs[CaptchaField] = captchaMessage
	}
	return errs
}

// revalidateLocked refreshes the error of one field once it has been reported.
func (f *Form) revalidateLocked(name string) {
	if _, shown := f.errs[name]; !shown {
		return
	}
	if msg, ok := f.validateLocked()[name]; ok {
		f.errs[name] = msg
	} else {
		delete(f.errs, name)
	}
}

// CanSubmit reports whether Submit would post right now.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSubmitLocked()
}

func (f *Form) canSubmitLocked() bool {
	return f.config != nil && f.phase != Submitting && len(f.validateLocked()) == 0
}

// Status returns the submission state.
func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Status{Phase: f.phase, Err: f.submitErr}
}

// ------------------------------------------------------------------
// Submission
// ------------------------------------------------------------------

// Submit validates and posts the values once. Validation failures return a
// ValidationError without contacting the server. Server failures are
// reported to OnError and leave the values in place.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.config == nil {
		f.mu.Unlock()
		return ErrNotLoaded
	}
	if f.phase == Submitting {
		f.mu.Unlock()
		return ErrSubmitting
	}
	if errs := f.validateLocked(); len(errs) > 0 {
		f.errs = errs
		f.mu.Unlock()
		return errs
	}
	f.errs = ValidationError{}
	f.phase = Submitting
	f.submitErr = nil
	endpoint := f.config.EndpointURL
	submitted := f.values.clone()
	body, contentType, err := f.encodeLocked(submitted)
	f.mu.Unlock()

	if err == nil {
		err = f.post(ctx, endpoint, body, contentType)
	}

	f.mu.Lock()
	if err != nil {
		f.phase = Failed
		f.submitErr = err
		f.mu.Unlock()
		f.log.WithError(err).Warn("form submission failed")
		if f.opts.OnError != nil {
			f.opts.OnError(err)
		}
		return err
	}
	f.phase = Succeeded
	f.values = Values{Fields: map[string]string{}, Files: map[string][]File{}}
	f.mu.Unlock()

	if f.opts.Captcha != nil {
		f.opts.Captcha.Reset()
	}
	f.log.Info("form submitted")
	if f.opts.OnSuccess != nil {
		f.opts.OnSuccess(submitted)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeLocked writes declared fields in order, then any other values sorted
// by name.
func (f *Form) encodeLocked(v Values) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	seen := map[string]bool{}
	var names []string
	for _, fd := range f.fields {
		names = append(names, fd.Name)
		seen[fd.Name] = true
	}
	var extra []string
	for k := range v.Fields {
		if !seen[k] {
			extra = append(extra, k)
			seen[k] = true
		}
	}
	for k := range v.Files {
		if !seen[k] {
			extra = append(extra, k)
			seen[k] = true
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	for _, name := range names {
		for _, file := range v.Files[name] {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
				quoteEscaper.Replace(name), quoteEscaper.Replace(file.Name)))
			ct := file.ContentType
			if ct == "" {
				ct = "application/octet-stream"
			}
			h.Set("Content-Type", ct)
			part, err := mw.CreatePart(h)
			if err != nil {
				return nil, "", fmt.Errorf("widget: encode %s: %w", name, err)
			}
			if _, err := part.Write(file.Data); err != nil {
				return nil, "", fmt.Errorf("widget: encode %s: %w", name, err)
			}
		}
		if s, ok := v.Fields[name]; ok {
			if err := mw.WriteField(name, s); err != nil {
				return nil, "", fmt.Errorf("widget: encode %s: %w", name, err)
			}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("widget: encode: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func (f *Form) post(ctx context.Context, endpoint string, body io.Reader, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("widget: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("widget: submit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		msg := string(text)
		if msg == "" {
			msg = fmt.Sprintf("Submission failed: %d", resp.StatusCode)
		}
		return &SubmitError{Status: resp.StatusCode, Message: msg}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
