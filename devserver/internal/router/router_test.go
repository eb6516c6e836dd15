package router_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/landingsite-ai/aifeatures-go/devserver/internal/db"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/handler"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/repository"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/router"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/seed"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/service"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/storage"
	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/landingsite-ai/aifeatures-go/go/widget"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jwtSecret = "test-secret"
	orgKey    = "sk_test_org"
)

var dbSeq atomic.Int64

type env struct {
	url    string
	client *aifeatures.Client
	token  string
}

// newEnv serves a seeded dev server on a fresh in-memory database.
func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	log, _ := test.NewNullLogger()

	dsn := fmt.Sprintf("file:devserver_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	conn, err := db.Open("sqlite", dsn, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	var h http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	blobs := storage.NewMemory()
	siteRepo := repository.NewSiteRepo(conn)
	formRepo := repository.NewFormRepo(conn)
	subRepo := repository.NewSubmissionRepo(conn)

	siteSvc, err := service.NewSiteService(siteRepo, orgKey, jwtSecret)
	require.NoError(t, err)
	formSvc := service.NewFormService(formRepo, subRepo, blobs, srv.URL, log)
	subSvc := service.NewSubmissionService(subRepo, formRepo, blobs, log)

	created, err := seed.New(siteRepo, formRepo, subRepo, blobs).Run(ctx)
	require.NoError(t, err)
	require.True(t, created)
	again, err := seed.New(siteRepo, formRepo, subRepo, blobs).Run(ctx)
	require.NoError(t, err)
	require.False(t, again)

	h = router.New(jwtSecret, log,
		handler.NewSiteHandler(siteSvc, log),
		handler.NewFormHandler(formSvc, log),
		handler.NewSubmissionHandler(subSvc, log),
		handler.NewWidgetHandler(formSvc, subSvc, 1, log),
	)

	token, err := siteSvc.Token(seed.SiteID)
	require.NoError(t, err)
	return &env{
		url:    srv.URL,
		client: aifeatures.NewClient(token, aifeatures.WithBaseURL(srv.URL)),
		token:  token,
	}
}

// ------------------------------------------------------------------
// Admin API
// ------------------------------------------------------------------

func TestFormsList(t *testing.T) {
	e := newEnv(t)
	forms, err := e.client.GetForms(context.Background())
	require.NoError(t, err)
	require.Len(t, forms, 2)

	assert.Equal(t, "form_1", forms[0].ID)
	assert.Equal(t, e.url+"/f/form_1", forms[0].EndpointURL)
	assert.True(t, forms[0].Captcha.Enabled)
	assert.Equal(t, "turnstile", forms[0].Captcha.Provider)
	assert.Equal(t, []string{"hello@example.com"}, forms[0].EmailRecipients)
	assert.False(t, forms[1].Captcha.Enabled)
	assert.Empty(t, forms[1].Captcha.SiteKey)
}

func TestGetFormNotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.client.GetForm(context.Background(), "form_404")
	var apiErr *aifeatures.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Form not found", apiErr.Message)
}

func TestUpdateFormPartial(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	f, err := e.client.UpdateForm(ctx, "form_1", aifeatures.UpdateFormInput{RedirectURL: aifeatures.ClearString()})
	require.NoError(t, err)
	assert.Nil(t, f.RedirectURL)
	assert.Equal(t, "Contact Form", f.Name)
	assert.Equal(t, []string{"hello@example.com"}, f.EmailRecipients)

	f, err = e.client.UpdateForm(ctx, "form_1", aifeatures.UpdateFormInput{EmailRecipients: []string{}})
	require.NoError(t, err)
	assert.Empty(t, f.EmailRecipients)

	_, err = e.client.UpdateForm(ctx, "form_1", aifeatures.UpdateFormInput{EmailRecipients: []string{"nope"}})
	var apiErr *aifeatures.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid email_recipients", apiErr.Message)

	f, err = e.client.UpdateForm(ctx, "form_1", aifeatures.UpdateFormInput{RedirectURL: aifeatures.SetString("thank-you")})
	require.NoError(t, err)
	require.NotNil(t, f.RedirectURL)
	assert.Equal(t, "thank-you", *f.RedirectURL)

	_, err = e.client.UpdateForm(ctx, "form_1", aifeatures.UpdateFormInput{RedirectURL: aifeatures.SetString("not a url")})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid redirect_url", apiErr.Message)
}

func TestCreateAndDeleteForm(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	f, err := e.client.CreateForm(ctx, aifeatures.CreateFormInput{Name: "Feedback", EmailRecipients: []string{"Team@Example.com"}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.ID, "form_"))
	assert.Equal(t, []string{"team@example.com"}, f.EmailRecipients)

	_, err = e.client.CreateForm(ctx, aifeatures.CreateFormInput{})
	var apiErr *aifeatures.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid name", apiErr.Message)

	require.NoError(t, e.client.DeleteForm(ctx, "form_1"))
	_, err = e.client.GetSubmission(ctx, "sub_1")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	forms, err := e.client.GetForms(ctx)
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "form_2", forms[0].ID)
}

func TestSubmissionsPaging(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	page, err := e.client.GetSubmissions(ctx, "form_1", &aifeatures.ListSubmissionsOptions{Limit: aifeatures.Int(2)})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.Limit)
	require.Len(t, page.Submissions, 2)
	assert.Equal(t, "sub_1", page.Submissions[0].ID)
	assert.Equal(t, "sub_2", page.Submissions[1].ID)
	assert.Equal(t, []string{"name", "email", "phone", "message"}, page.Submissions[1].Keys())

	page, err = e.client.GetSubmissions(ctx, "form_1", &aifeatures.ListSubmissionsOptions{
		Offset:      aifeatures.Int(2),
		IncludeSpam: aifeatures.Bool(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 25, page.Limit)
	require.Len(t, page.Submissions, 3)
	assert.Equal(t, "sub_3", page.Submissions[0].ID)
	assert.True(t, page.Submissions[0].IsSpam)
}

func TestSubmissionTriage(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	sub, err := e.client.UpdateSubmission(ctx, "sub_1", aifeatures.UpdateSubmissionInput{IsRead: aifeatures.Bool(true)})
	require.NoError(t, err)
	assert.True(t, sub.IsRead)
	assert.False(t, sub.IsSpam)

	sub, err = e.client.GetSubmission(ctx, "sub_1")
	require.NoError(t, err)
	assert.True(t, sub.IsRead)
	require.NotNil(t, sub.Metadata.IPAddress)
	assert.Equal(t, "192.168.1.1", *sub.Metadata.IPAddress)

	require.NoError(t, e.client.DeleteSubmission(ctx, "sub_4"))
	page, err := e.client.GetSubmissions(ctx, "form_1", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

func TestDownloadAttachment(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	d, err := e.client.DownloadAttachment(ctx, "sub_1", "resume.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(d.Body)
	d.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "Mock file content for resume.pdf", string(body))
	assert.Equal(t, "application/pdf", d.ContentType)
	assert.Equal(t, "resume.pdf", d.Filename)

	_, err = e.client.DownloadAttachment(ctx, "sub_1", "missing.pdf")
	var apiErr *aifeatures.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Attachment not found", apiErr.Message)
}

func TestDownloadAttachmentEscapedNames(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	names := []string{"Invoice, March.pdf", "a;b.txt", "100%.txt", "my cv.txt"}
	for _, name := range names {
		form := widget.New("form_2", []widget.Field{
			{Name: "email", Type: widget.Email, Required: true},
			{Name: "doc", Type: widget.FileType},
		}, widget.Options{BaseURL: e.url})
		require.NoError(t, form.Load(ctx))
		form.Set("email", "ada@example.com")
		form.AttachFile("doc", widget.File{Name: name, ContentType: "text/plain", Data: []byte("body of " + name)})
		require.NoError(t, form.Submit(ctx), name)
	}

	page, err := e.client.GetSubmissions(ctx, "form_2", nil)
	require.NoError(t, err)
	require.Len(t, page.Submissions, len(names))
	for _, sub := range page.Submissions {
		require.Len(t, sub.Attachments, 1)
		name := sub.Attachments[0].Name
		d, err := e.client.DownloadAttachment(ctx, sub.ID, name)
		require.NoError(t, err, name)
		body, err := io.ReadAll(d.Body)
		d.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, "body of "+name, string(body))
	}
}

func TestAuthRejectsOtherTokens(t *testing.T) {
	e := newEnv(t)
	for _, token := range []string{orgKey, "st_forged", ""} {
		c := aifeatures.NewClient(token, aifeatures.WithBaseURL(e.url))
		_, err := c.GetForms(context.Background())
		var apiErr *aifeatures.APIError
		require.ErrorAs(t, err, &apiErr, "token %q", token)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	}
}

func TestCreateSite(t *testing.T) {
	e := newEnv(t)
	post := func(key string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, e.url+"/api/v1/sites", strings.NewReader(`{"name":"Blog","domain":"blog.example.com"}`))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+key)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := post("sk_wrong")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = post(orgKey)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		SiteToken string `json:"site_token"`
	}
	require.NoError(t, decode(resp.Body, &out))
	require.NoError(t, aifeatures.ValidateSiteToken(out.SiteToken))

	forms, err := aifeatures.NewClient(out.SiteToken, aifeatures.WithBaseURL(e.url)).GetForms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, forms)
}

// ------------------------------------------------------------------
// Widget endpoints
// ------------------------------------------------------------------

func TestWidgetSubmitWithCaptcha(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	form := widget.New("form_1", []widget.Field{
		{Name: "name", Label: "Name", Required: true},
		{Name: "email", Label: "Email", Type: widget.Email, Required: true},
		{Name: "resume", Label: "Resume", Type: widget.FileType},
	}, widget.Options{BaseURL: e.url})
	require.NoError(t, form.Load(ctx))
	require.NotNil(t, form.Config().TurnstileSiteKey)

	form.Set("name", "Ada")
	form.Set("email", "ada@example.com")
	form.AttachFile("resume", widget.File{Name: "cv.txt", ContentType: "text/plain", Data: []byte("hello")})
	assert.False(t, form.CanSubmit())
	form.CaptchaSucceeded("tok1")
	require.True(t, form.CanSubmit())
	require.NoError(t, form.Submit(ctx))

	page, err := e.client.GetSubmissions(ctx, "form_1", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	latest := page.Submissions[0]
	assert.Equal(t, []string{"name", "email"}, latest.Keys())
	assert.Equal(t, "Ada", latest.Data["name"])
	assert.False(t, latest.IsRead)
	require.Len(t, latest.Attachments, 1)
	assert.Equal(t, "form_1/"+latest.ID+"/cv.txt", latest.Attachments[0].R2Key)

	d, err := e.client.DownloadAttachment(ctx, latest.ID, "cv.txt")
	require.NoError(t, err)
	body, _ := io.ReadAll(d.Body)
	d.Body.Close()
	assert.Equal(t, "hello", string(body))
}

func TestWidgetCaptchaRequired(t *testing.T) {
	e := newEnv(t)
	resp, err := http.Post(e.url+"/f/form_1", "multipart/form-data; boundary=x", strings.NewReader("--x\r\nContent-Disposition: form-data; name=\"name\"\r\n\r\nAda\r\n--x--\r\n"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"Captcha required"}`, string(body))
}

func TestWidgetWithoutCaptcha(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	var got widget.Values
	form := widget.New("form_2", []widget.Field{{Name: "email", Type: widget.Email, Required: true}}, widget.Options{
		BaseURL:   e.url,
		OnSuccess: func(v widget.Values) { got = v },
	})
	require.NoError(t, form.Load(ctx))
	assert.Nil(t, form.Config().TurnstileSiteKey)

	form.Set("email", "reader@example.com")
	require.NoError(t, form.Submit(ctx))
	assert.Equal(t, "reader@example.com", got.Get("email"))

	page, err := e.client.GetSubmissions(ctx, "form_2", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestWidgetUnknownForm(t *testing.T) {
	e := newEnv(t)
	form := widget.New("form_404", nil, widget.Options{BaseURL: e.url})
	err := form.Load(context.Background())
	var loadErr *widget.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, http.StatusNotFound, loadErr.Status)
}

func decode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
