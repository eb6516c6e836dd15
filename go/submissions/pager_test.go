package submissions_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/landingsite-ai/aifeatures-go/go/submissions"
	"github.com/landingsite-ai/aifeatures-go/go/submissions/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves pages out of an in-memory slice. gate, when set, is
// called before answering and may block.
type fakeSource struct {
	mu   sync.Mutex
	all  []aifeatures.Submission
	err  error
	gate func(offset int)
}

func newFakeSource(n int) *fakeSource {
	f := &fakeSource{}
	for i := 0; i < n; i++ {
		f.all = append(f.all, aifeatures.Submission{ID: fmt.Sprintf("sub_%d", i+1), Data: map[string]any{"n": i}})
	}
	return f
}

func (f *fakeSource) GetSubmissions(ctx context.Context, formID string, opts *aifeatures.ListSubmissionsOptions) (*aifeatures.SubmissionPage, error) {
	if f.gate != nil {
		f.gate(*opts.Offset)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	start, end := *opts.Offset, *opts.Offset+*opts.Limit
	if start > len(f.all) {
		start = len(f.all)
	}
	if end > len(f.all) {
		end = len(f.all)
	}
	page := append([]aifeatures.Submission(nil), f.all[start:end]...)
	return &aifeatures.SubmissionPage{Submissions: page, Total: len(f.all), Limit: *opts.Limit, Offset: *opts.Offset}, nil
}

func (f *fakeSource) UpdateSubmission(ctx context.Context, id string, in aifeatures.UpdateSubmissionInput) (*aifeatures.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.all {
		if f.all[i].ID == id {
			if in.IsRead != nil {
				f.all[i].IsRead = *in.IsRead
			}
			if in.IsSpam != nil {
				f.all[i].IsSpam = *in.IsSpam
			}
			s := f.all[i]
			return &s, nil
		}
	}
	return nil, &aifeatures.APIError{Status: 404, Message: "Submission not found"}
}

func (f *fakeSource) DeleteSubmission(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.all {
		if f.all[i].ID == id {
			f.all = append(f.all[:i], f.all[i+1:]...)
			return nil
		}
	}
	return &aifeatures.APIError{Status: 404, Message: "Submission not found"}
}

// --------------------- Pagination ---------------------

func TestHasNextPage(t *testing.T) {
	ctx := context.Background()
	for _, total := range []int{0, 1, 9, 10, 11, 25, 26, 100} {
		for _, size := range []int{1, 3, 10, 25} {
			src := newFakeSource(total)
			p := submissions.New(src, "form_1", submissions.Options{PageSize: size})
			pages := (total + size - 1) / size
			for page := 0; page <= pages; page++ {
				p.SetPage(ctx, page)
				st := p.State()
				assert.Equal(t, page >= pages-1, !st.HasNextPage, "total=%d size=%d page=%d", total, size, page)
				assert.Equal(t, page > 0, st.HasPreviousPage)
			}
		}
	}
}

func TestSetPageFetchesOffset(t *testing.T) {
	src := newFakeSource(30)
	p := submissions.New(src, "form_1", submissions.Options{PageSize: 10})

	p.SetPage(context.Background(), 2)

	st := p.State()
	require.NoError(t, st.Err)
	require.Len(t, st.Submissions, 10)
	assert.Equal(t, "sub_21", st.Submissions[0].ID)
	assert.Equal(t, 30, st.Total)
	assert.False(t, st.Loading)
}

func TestSetPageSizeResetsPage(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(100)
	p := submissions.New(src, "form_1", submissions.Options{})
	assert.Equal(t, submissions.DefaultPageSize, p.State().PageSize)

	for _, size := range []int{10, 25, 50, 100} {
		p.SetPage(ctx, 3)
		p.SetPageSize(ctx, size)
		st := p.State()
		assert.Equal(t, 0, st.Page)
		assert.Equal(t, size, st.PageSize)
		assert.Equal(t, "sub_1", st.Submissions[0].ID)
	}
}

func TestEmptyFormIDSkipsFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock.NewMockSource(ctrl)

	p := submissions.New(src, "", submissions.Options{})
	p.Refetch(context.Background())

	assert.False(t, p.State().Loading)
}

func TestFetchFailureKeepsData(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(5)
	p := submissions.New(src, "form_1", submissions.Options{})
	p.Refetch(ctx)
	require.Len(t, p.State().Submissions, 5)

	src.err = &aifeatures.APIError{Status: 500, Message: "Failed to fetch submissions"}
	p.Refetch(ctx)

	st := p.State()
	require.Error(t, st.Err)
	assert.Len(t, st.Submissions, 5)
	assert.Equal(t, 5, st.Total)
	assert.False(t, st.Loading)

	src.err = nil
	p.Refetch(ctx)
	assert.NoError(t, p.State().Err)
}

func TestStaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(30)
	started := make(chan struct{})
	release := make(chan struct{})
	src.gate = func(offset int) {
		if offset == 10 {
			close(started)
			<-release
		}
	}
	p := submissions.New(src, "form_1", submissions.Options{PageSize: 10})

	done := make(chan struct{})
	go func() {
		p.SetPage(ctx, 1)
		close(done)
	}()
	<-started

	p.SetPage(ctx, 2)
	close(release)
	<-done

	st := p.State()
	assert.Equal(t, 2, st.Page)
	assert.Equal(t, "sub_21", st.Submissions[0].ID)
	assert.False(t, st.Loading)
}

func TestOnChangeReportsLoading(t *testing.T) {
	var states []submissions.State
	src := newFakeSource(3)
	p := submissions.New(src, "form_1", submissions.Options{
		OnChange: func(s submissions.State) { states = append(states, s) },
	})

	p.Refetch(context.Background())

	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.False(t, states[1].Loading)
	assert.Len(t, states[1].Submissions, 3)
}

// --------------------- Mutations ---------------------

func TestMarkAsReadIdempotent(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	src := mock.NewMockSource(ctrl)

	src.EXPECT().GetSubmissions(gomock.Any(), "form_1", gomock.Any()).Return(&aifeatures.SubmissionPage{
		Submissions: []aifeatures.Submission{{ID: "sub_1"}, {ID: "sub_2"}},
		Total:       2,
	}, nil)
	src.EXPECT().UpdateSubmission(gomock.Any(), "sub_1", aifeatures.UpdateSubmissionInput{IsRead: aifeatures.Bool(true)}).
		Return(&aifeatures.Submission{ID: "sub_1", IsRead: true}, nil).Times(1)

	p := submissions.New(src, "form_1", submissions.Options{})
	p.Refetch(ctx)

	require.NoError(t, p.MarkAsRead(ctx, "sub_1"))
	require.NoError(t, p.MarkAsRead(ctx, "sub_1"))

	sub, ok := p.Find("sub_1")
	require.True(t, ok)
	assert.True(t, sub.IsRead)
	other, _ := p.Find("sub_2")
	assert.False(t, other.IsRead)
}

func TestMarkAsReadSurvivesRefetch(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(3)
	p := submissions.New(src, "form_1", submissions.Options{})
	p.Refetch(ctx)

	require.NoError(t, p.MarkAsRead(ctx, "sub_2"))
	p.Refetch(ctx)

	sub, ok := p.Find("sub_2")
	require.True(t, ok)
	assert.True(t, sub.IsRead)
}

func TestMarkAsSpam(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(2)
	p := submissions.New(src, "form_1", submissions.Options{})
	p.Refetch(ctx)

	require.NoError(t, p.MarkAsSpam(ctx, "sub_1"))

	sub, _ := p.Find("sub_1")
	assert.True(t, sub.IsSpam)
}

func TestMutationErrorReturned(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	src := mock.NewMockSource(ctrl)
	apiErr := &aifeatures.APIError{Status: 403, Message: "Forbidden"}
	src.EXPECT().DeleteSubmission(gomock.Any(), "sub_1").Return(apiErr)

	p := submissions.New(src, "form_1", submissions.Options{})
	err := p.Delete(ctx, "sub_1")

	assert.True(t, errors.Is(err, apiErr))
}

func TestDeleteDecrementsTotal(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	src := mock.NewMockSource(ctrl)

	page := &aifeatures.SubmissionPage{Total: 5}
	for i := 1; i <= 5; i++ {
		page.Submissions = append(page.Submissions, aifeatures.Submission{ID: fmt.Sprintf("sub_%d", i)})
	}
	src.EXPECT().GetSubmissions(gomock.Any(), "form_1", gomock.Any()).Return(page, nil)
	src.EXPECT().DeleteSubmission(gomock.Any(), "sub_3").Return(nil)

	p := submissions.New(src, "form_1", submissions.Options{})
	p.Refetch(ctx)
	require.NoError(t, p.Delete(ctx, "sub_3"))

	st := p.State()
	assert.Equal(t, 4, st.Total)
	assert.Len(t, st.Submissions, 4)
	_, ok := p.Find("sub_3")
	assert.False(t, ok)
}
