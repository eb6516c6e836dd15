package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/landingsite-ai/aifeatures-go/go/submissions"
)

// PageSizes are the page sizes offered by the submissions list.
var PageSizes = []int{10, 25, 50, 100}

// emailKeys are tried in order when looking for the sender address.
var emailKeys = []string{"email", "Email", "EMAIL", "e-mail", "mail"}

const previewLen = 50

// Row is one line of the submissions list.
type Row struct {
	ID          string
	Email       string
	Preview     string
	SubmittedAt time.Time
	Attachments int
	IsRead      bool
	IsSpam      bool
}

// Rows builds the list rows for subs.
func Rows(subs []aifeatures.Submission) []Row {
	rows := make([]Row, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, Row{
			ID:          s.ID,
			Email:       EmailOf(s.Data),
			Preview:     PreviewOf(s),
			SubmittedAt: s.Metadata.SubmittedAt,
			Attachments: len(s.Attachments),
			IsRead:      s.IsRead,
			IsSpam:      s.IsSpam,
		})
	}
	return rows
}

// EmailOf returns the first string value among the usual email keys.
func EmailOf(data map[string]any) string {
	for _, k := range emailKeys {
		if s, ok := data[k].(string); ok {
			return s
		}
	}
	return ""
}

// PreviewOf returns the first field that is neither internal nor an email
// field, cut to 50 characters.
func PreviewOf(sub aifeatures.Submission) string {
	for _, k := range sub.Keys() {
		if strings.HasPrefix(k, "_") || strings.Contains(strings.ToLower(k), "email") {
			continue
		}
		text := stringify(sub.Data[k])
		if utf8.RuneCountInString(text) > previewLen {
			return string([]rune(text)[:previewLen]) + "..."
		}
		return text
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = stringify(e)
		}
		return strings.Join(parts, ",")
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}

// PageSummary returns the "Showing a-b of n" line for a pager state.
func PageSummary(st submissions.State) string {
	start := st.Page*st.PageSize + 1
	end := (st.Page + 1) * st.PageSize
	if end > st.Total {
		end = st.Total
	}
	return fmt.Sprintf("Showing %d-%d of %d", start, end, st.Total)
}

// FormatDate renders a timestamp in local time, e.g. "Jan 15, 2024, 10:30 AM".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2, 2006, 03:04 PM")
}

// EndpointPath strips the hosted API origin from an endpoint URL.
func EndpointPath(endpoint string) string {
	return strings.TrimPrefix(endpoint, aifeatures.DefaultBaseURL)
}

// ErrorMessage returns the text shown to the user for err.
func ErrorMessage(err error) string {
	var apiErr *aifeatures.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var cfgErr *aifeatures.ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Msg
	}
	return err.Error()
}
