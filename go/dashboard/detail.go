package dashboard

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
)

// Entry is one visible data field of a submission.
type Entry struct {
	Key   string
	Label string
	Value string
	// Preformatted marks multi-line strings that keep their line breaks.
	Preformatted bool
}

// AttachmentView is an attachment with a readable size.
type AttachmentView struct {
	Name        string
	Size        string
	ContentType string
}

// Detail is the read-only view of a single submission.
type Detail struct {
	ID          string
	SubmittedAt time.Time
	Entries     []Entry
	Attachments []AttachmentView
	IPAddress   string
	UserAgent   string
	IsRead      bool
	IsSpam      bool
}

// NewDetail builds the detail view. Keys starting with "_" are hidden.
func NewDetail(sub aifeatures.Submission) Detail {
	d := Detail{
		ID:          sub.ID,
		SubmittedAt: sub.Metadata.SubmittedAt,
		IsRead:      sub.IsRead,
		IsSpam:      sub.IsSpam,
	}
	for _, k := range sub.Keys() {
		if strings.HasPrefix(k, "_") {
			continue
		}
		v := sub.Data[k]
		s, isString := v.(string)
		if !isString {
			s = stringify(v)
		}
		d.Entries = append(d.Entries, Entry{
			Key:          k,
			Label:        Label(k),
			Value:        s,
			Preformatted: isString && strings.Contains(s, "\n"),
		})
	}
	for _, a := range sub.Attachments {
		d.Attachments = append(d.Attachments, AttachmentView{
			Name:        a.Name,
			Size:        FormatBytes(a.Size),
			ContentType: a.ContentType,
		})
	}
	if sub.Metadata.IPAddress != nil {
		d.IPAddress = *sub.Metadata.IPAddress
	}
	if sub.Metadata.UserAgent != nil {
		d.UserAgent = *sub.Metadata.UserAgent
	}
	return d
}

// Label turns a data key into a display label: underscores become spaces and
// every word is capitalized.
func Label(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
			words[i] = string(r)
		}
	}
	return strings.Join(words, " ")
}

var byteUnits = []string{"B", "KB", "MB", "GB"}

// FormatBytes renders a size with 1024-based units and at most one decimal.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(byteUnits) {
		i = len(byteUnits) - 1
	}
	v := float64(n) / math.Pow(1024, float64(i))
	v = math.Round(v*10) / 10
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}
