package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/landingsite-ai/aifeatures-go/go/dashboard"
	"github.com/landingsite-ai/aifeatures-go/go/submissions"
	"github.com/landingsite-ai/aifeatures-go/go/widget"
	"github.com/landingsite-ai/aifeatures-go/internal/config"
	"github.com/sirupsen/logrus"
)

const commandList = "commands: forms, form, submissions, show, spam, delete, download, settings, submit"

type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return "usage: " + e.msg
}

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type command func(ctx context.Context, e *cli, args []string) error

var commands = map[string]command{
	"forms":       formsCmd,
	"form":        formCmd,
	"submissions": submissionsCmd,
	"show":        showCmd,
	"spam":        spamCmd,
	"delete":      deleteCmd,
	"download":    downloadCmd,
	"settings":    settingsCmd,
	"submit":      submitCmd,
}

type cli struct {
	cfg *config.Config
	log logrus.FieldLogger
	out io.Writer
}

func run(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, args []string, out io.Writer) error {
	if len(args) == 0 {
		return &usageError{msg: "aifeatures <command> [args]\n" + commandList}
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return &usageError{msg: fmt.Sprintf("unknown command %q\n%s", args[0], commandList)}
	}
	return cmd(ctx, &cli{cfg: cfg, log: log, out: out}, args[1:])
}

// parse reads n positional arguments followed by flags.
func parse(fs *flag.FlagSet, args []string, n int, usage string) ([]string, error) {
	fs.SetOutput(io.Discard)
	if len(args) < n {
		return nil, &usageError{msg: usage}
	}
	if err := fs.Parse(args[n:]); err != nil {
		return nil, &usageError{msg: usage + "\n" + err.Error()}
	}
	if fs.NArg() > 0 {
		return nil, &usageError{msg: usage}
	}
	return args[:n], nil
}

func (c *cli) dashboard() (*dashboard.Dashboard, error) {
	return dashboard.New(dashboard.Options{
		SiteToken: c.cfg.SiteToken,
		APIURL:    c.cfg.APIURL,
		Logger:    c.log,
	})
}

// ------------------------------------------------------------------
// Forms
// ------------------------------------------------------------------

func formsCmd(ctx context.Context, c *cli, args []string) error {
	if _, err := parse(flag.NewFlagSet("forms", flag.ContinueOnError), args, 0, "aifeatures forms"); err != nil {
		return err
	}
	d, err := c.dashboard()
	if err != nil {
		return err
	}
	d.Forms().Load(ctx)
	st := d.Forms().State()
	if st.Err != nil {
		return st.Err
	}
	return dashboard.RenderForms(c.out, st.Forms)
}

func formCmd(ctx context.Context, c *cli, args []string) error {
	pos, err := parse(flag.NewFlagSet("form", flag.ContinueOnError), args, 1, "aifeatures form <formId>")
	if err != nil {
		return err
	}
	d, err := c.dashboard()
	if err != nil {
		return err
	}
	f, err := d.Client().GetForm(ctx, pos[0])
	if err != nil {
		return err
	}
	return dashboard.RenderForm(c.out, *f)
}

// ------------------------------------------------------------------
// Submissions
// ------------------------------------------------------------------

func submissionsCmd(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("submissions", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number, starting at 1")
	size := fs.Int("page-size", submissions.DefaultPageSize, "submissions per page (10, 25, 50 or 100)")
	spam := fs.Bool("include-spam", false, "include submissions flagged as spam")
	pos, err := parse(fs, args, 1, "aifeatures submissions <formId> [-page N] [-page-size N] [-include-spam]")
	if err != nil {
		return err
	}
	d, err := c.dashboard()
	if err != nil {
		return err
	}
	p := d.Submissions(pos[0], submissions.Options{PageSize: *size, IncludeSpam: *spam})
	p.SetPage(ctx, *page-1)
	return dashboard.RenderSubmissions(c.out, p.State())
}

// pagerFor loads the first page of formID so triage can work from it.
func (c *cli) pagerFor(ctx context.Context, formID string) (*dashboard.Dashboard, *submissions.Pager, error) {
	d, err := c.dashboard()
	if err != nil {
		return nil, nil, err
	}
	p := d.Submissions(formID, submissions.Options{IncludeSpam: true})
	p.Refetch(ctx)
	if err := p.State().Err; err != nil {
		return nil, nil, err
	}
	return d, p, nil
}

func showCmd(ctx context.Context, c *cli, args []string) error {
	pos, err := parse(flag.NewFlagSet("show", flag.ContinueOnError), args, 2, "aifeatures show <formId> <submissionId>")
	if err != nil {
		return err
	}
	d, p, err := c.pagerFor(ctx, pos[0])
	if err != nil {
		return err
	}
	detail, err := d.Triage(p, "").Open(ctx, pos[1])
	if err != nil {
		return err
	}
	return dashboard.RenderDetail(c.out, detail)
}

func spamCmd(ctx context.Context, c *cli, args []string) error {
	pos, err := parse(flag.NewFlagSet("spam", flag.ContinueOnError), args, 2, "aifeatures spam <formId> <submissionId>")
	if err != nil {
		return err
	}
	_, p, err := c.pagerFor(ctx, pos[0])
	if err != nil {
		return err
	}
	if err := p.MarkAsSpam(ctx, pos[1]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Marked %s as spam.\n", pos[1])
	return nil
}

func deleteCmd(ctx context.Context, c *cli, args []string) error {
	pos, err := parse(flag.NewFlagSet("delete", flag.ContinueOnError), args, 2, "aifeatures delete <formId> <submissionId>")
	if err != nil {
		return err
	}
	_, p, err := c.pagerFor(ctx, pos[0])
	if err != nil {
		return err
	}
	if err := p.Delete(ctx, pos[1]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted %s. %d submissions left.\n", pos[1], p.State().Total)
	return nil
}

func downloadCmd(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	dir := fs.String("dir", ".", "directory to write the file into")
	pos, err := parse(fs, args, 2, "aifeatures download <submissionId> <filename> [-dir DIR]")
	if err != nil {
		return err
	}
	d, err := c.dashboard()
	if err != nil {
		return err
	}
	dl, err := d.Client().DownloadAttachment(ctx, pos[0], pos[1])
	if err != nil {
		return err
	}
	path, err := dl.SaveTo(*dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved %s\n", path)
	return nil
}

// ------------------------------------------------------------------
// Settings
// ------------------------------------------------------------------

func settingsCmd(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	name := fs.String("name", "", "rename the form")
	redirect := fs.String("redirect", "", "redirect URL or path after submission; empty clears it")
	var add, remove stringList
	fs.Var(&add, "add-recipient", "notification email to add (repeatable)")
	fs.Var(&remove, "remove-recipient", "notification email to remove (repeatable)")
	pos, err := parse(fs, args, 1, "aifeatures settings <formId> [-name S] [-redirect URL] [-add-recipient E] [-remove-recipient E]")
	if err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	d, err := c.dashboard()
	if err != nil {
		return err
	}
	store := d.Forms()
	store.Load(ctx)
	if err := store.State().Err; err != nil {
		return err
	}
	form, ok := store.Find(pos[0])
	if !ok {
		return &aifeatures.APIError{Status: 404, Message: "Form not found"}
	}

	s := d.Settings(form, nil)
	if set["name"] {
		s.SetName(*name)
		if err := s.CommitName(ctx); err != nil {
			return err
		}
	}
	if set["redirect"] {
		s.SetRedirectURL(*redirect)
		if err := s.CommitRedirectURL(ctx); err != nil {
			return err
		}
	}
	for _, e := range add {
		if err := s.AddRecipient(ctx, e); err != nil {
			return err
		}
	}
	for _, e := range remove {
		if err := s.RemoveRecipient(ctx, e); err != nil {
			return err
		}
	}

	st := s.State()
	if err := dashboard.RenderForm(c.out, st.Form); err != nil {
		return err
	}
	if !st.LastSaved.IsZero() {
		fmt.Fprintln(c.out, "Saved")
	}
	return nil
}

// ------------------------------------------------------------------
// Submit
// ------------------------------------------------------------------

func submitCmd(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	var fieldArgs, fileArgs stringList
	fs.Var(&fieldArgs, "field", "name=value pair (repeatable)")
	fs.Var(&fileArgs, "file", "name=path of a file to attach (repeatable)")
	token := fs.String("captcha-token", "", "CAPTCHA response token")
	usage := "aifeatures submit <formId> -field k=v... [-file k=path] [-captcha-token T]"
	pos, err := parse(fs, args, 1, usage)
	if err != nil {
		return err
	}

	var fields []widget.Field
	values := map[string]string{}
	for _, kv := range fieldArgs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return &usageError{msg: usage + "\ninvalid -field " + kv}
		}
		fields = append(fields, widget.Field{Name: k})
		values[k] = v
	}
	files := map[string][]widget.File{}
	for _, kv := range fileArgs {
		k, path, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return &usageError{msg: usage + "\ninvalid -file " + kv}
		}
		f, err := widget.OpenFile(path)
		if err != nil {
			return err
		}
		if _, seen := files[k]; !seen {
			fields = append(fields, widget.Field{Name: k, Type: widget.FileType, Multiple: true})
		}
		files[k] = append(files[k], f)
	}

	form := widget.New(pos[0], fields, widget.Options{BaseURL: c.cfg.APIURL, Logger: c.log})
	if err := form.Load(ctx); err != nil {
		return err
	}
	for k, v := range values {
		form.Set(k, v)
	}
	for k, list := range files {
		for _, f := range list {
			form.AttachFile(k, f)
		}
	}
	if *token != "" {
		form.CaptchaSucceeded(*token)
	}

	if err := form.Submit(ctx); err != nil {
		var serr *widget.SubmitError
		if errors.As(err, &serr) {
			return fmt.Errorf("submission rejected: %w", serr)
		}
		return err
	}
	fmt.Fprintln(c.out, "Thank you! Your message has been sent.")
	return nil
}
