package dashboard

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/landingsite-ai/aifeatures-go/go/submissions"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// RenderForms writes the forms list as a table.
func RenderForms(w io.Writer, list []aifeatures.Form) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No forms yet.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tENDPOINT\tCAPTCHA\tCREATED")
	for _, f := range list {
		captcha := "Disabled"
		if f.Captcha.Enabled {
			captcha = "Enabled"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, EndpointPath(f.EndpointURL), captcha, FormatDate(f.CreatedAt))
	}
	return tw.Flush()
}

// RenderForm writes the settings of one form.
func RenderForm(w io.Writer, f aifeatures.Form) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Name\t%s\n", f.Name)
	fmt.Fprintf(tw, "Endpoint\t%s\n", f.EndpointURL)
	recipients := "No recipients configured"
	if len(f.EmailRecipients) > 0 {
		recipients = strings.Join(f.EmailRecipients, ", ")
	}
	fmt.Fprintf(tw, "Recipients\t%s\n", recipients)
	fmt.Fprintf(tw, "Redirect URL\t%s\n", deref(f.RedirectURL))
	fmt.Fprintf(tw, "Webhook URL\t%s\n", deref(f.WebhookURL))
	fmt.Fprintf(tw, "Domains\t%s\n", strings.Join(f.Domains, ", "))
	captcha := "Disabled"
	if f.Captcha.Enabled {
		captcha = "Enabled (" + f.Captcha.Provider + ")"
	}
	fmt.Fprintf(tw, "Captcha\t%s\n", captcha)
	fmt.Fprintf(tw, "Created\t%s\n", FormatDate(f.CreatedAt))
	return tw.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// RenderSubmissions writes one page of submissions with the pagination line.
func RenderSubmissions(w io.Writer, st submissions.State) error {
	switch {
	case st.Loading:
		_, err := fmt.Fprintln(w, "Loading submissions...")
		return err
	case st.Err != nil:
		_, err := fmt.Fprintf(w, "Error: %s\n", ErrorMessage(st.Err))
		return err
	case len(st.Submissions) == 0 && st.Page == 0:
		_, err := fmt.Fprintln(w, "No submissions yet.\nSubmissions will appear here when visitors use your form.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tEMAIL\tPREVIEW\tDATE\tFLAGS")
	for _, r := range Rows(st.Submissions) {
		email := r.Email
		if email == "" {
			email = "No email"
		}
		if r.Attachments > 0 {
			email = fmt.Sprintf("%s [%d]", email, r.Attachments)
		}
		preview := r.Preview
		if preview == "" {
			preview = "No preview available"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, email, oneLine(preview), FormatDate(r.SubmittedAt), flags(r))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, PageSummary(st))
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func flags(r Row) string {
	var f []string
	if !r.IsRead {
		f = append(f, "new")
	}
	if r.IsSpam {
		f = append(f, "spam")
	}
	return strings.Join(f, ",")
}

// RenderDetail writes a submission detail view.
func RenderDetail(w io.Writer, d Detail) error {
	fmt.Fprintln(w, "Submission Details")
	fmt.Fprintf(w, "Submitted %s\n\n", FormatDate(d.SubmittedAt))

	fmt.Fprintln(w, "Form Data")
	if len(d.Entries) == 0 {
		fmt.Fprintln(w, "  No data submitted")
	}
	tw := newTable(w)
	for _, e := range d.Entries {
		if e.Preformatted {
			fmt.Fprintf(tw, "  %s\t\n", e.Label)
			for _, line := range strings.Split(e.Value, "\n") {
				fmt.Fprintf(tw, "  \t%s\n", line)
			}
			continue
		}
		fmt.Fprintf(tw, "  %s\t%s\n", e.Label, e.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(d.Attachments) > 0 {
		fmt.Fprintln(w, "\nAttachments")
		for _, a := range d.Attachments {
			fmt.Fprintf(w, "  %s (%s)\n", a.Name, a.Size)
		}
	}

	fmt.Fprintln(w, "\nMetadata")
	fmt.Fprintf(w, "  %s\n", FormatDate(d.SubmittedAt))
	if d.IPAddress != "" {
		fmt.Fprintf(w, "  IP: %s\n", d.IPAddress)
	}
	if d.UserAgent != "" {
		fmt.Fprintf(w, "  %s\n", d.UserAgent)
	}
	_, err := fmt.Fprintln(w)
	return err
}
