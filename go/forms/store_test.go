package forms_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/landingsite-ai/aifeatures-go/go/forms"
	"github.com/landingsite-ai/aifeatures-go/go/forms/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T, ctrl *gomock.Controller, list ...aifeatures.Form) (*forms.Store, *mock.MockAPI) {
	t.Helper()
	api := mock.NewMockAPI(ctrl)
	api.EXPECT().GetForms(gomock.Any()).Return(list, nil)
	s := forms.New(api)
	s.Load(context.Background())
	return s, api
}

func TestInitiallyLoading(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := forms.New(mock.NewMockAPI(ctrl))

	st := s.State()
	assert.True(t, st.Loading)
	assert.Empty(t, st.Forms)
	assert.NoError(t, st.Err)
}

func TestLoadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Failed to fetch forms"})
	}))
	defer srv.Close()

	s := forms.New(aifeatures.NewClient("st_test", aifeatures.WithBaseURL(srv.URL)))
	s.Load(context.Background())

	st := s.State()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Forms)
	var apiErr *aifeatures.APIError
	require.ErrorAs(t, st.Err, &apiErr)
	assert.Equal(t, "Failed to fetch forms", apiErr.Message)
}

func TestRefetchClearsError(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)
	gomock.InOrder(
		api.EXPECT().GetForms(gomock.Any()).Return(nil, &aifeatures.APIError{Status: 500, Message: "boom"}),
		api.EXPECT().GetForms(gomock.Any()).Return([]aifeatures.Form{{ID: "form_1"}}, nil),
	)
	s := forms.New(api)

	s.Load(ctx)
	require.Error(t, s.State().Err)

	s.Refetch(ctx)
	st := s.State()
	assert.NoError(t, st.Err)
	assert.Len(t, st.Forms, 1)
}

func TestCreateAppends(t *testing.T) {
	ctrl := gomock.NewController(t)
	s, api := seeded(t, ctrl, aifeatures.Form{ID: "form_1"})
	in := aifeatures.CreateFormInput{Name: "Newsletter"}
	api.EXPECT().CreateForm(gomock.Any(), in).Return(&aifeatures.Form{ID: "form_2", Name: "Newsletter"}, nil)

	form, err := s.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "form_2", form.ID)

	st := s.State()
	require.Len(t, st.Forms, 2)
	assert.Equal(t, "form_2", st.Forms[1].ID)
}

func TestUpdateReplacesEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	s, api := seeded(t, ctrl,
		aifeatures.Form{ID: "form_1", Name: "Contact Form"},
		aifeatures.Form{ID: "form_2", Name: "Newsletter"},
	)
	in := aifeatures.UpdateFormInput{Name: aifeatures.String("Contact")}
	api.EXPECT().UpdateForm(gomock.Any(), "form_1", in).Return(&aifeatures.Form{ID: "form_1", Name: "Contact"}, nil)

	_, err := s.Update(context.Background(), "form_1", in)
	require.NoError(t, err)

	f, ok := s.Find("form_1")
	require.True(t, ok)
	assert.Equal(t, "Contact", f.Name)
	other, _ := s.Find("form_2")
	assert.Equal(t, "Newsletter", other.Name)
}

func TestUpdateErrorLeavesList(t *testing.T) {
	ctrl := gomock.NewController(t)
	s, api := seeded(t, ctrl, aifeatures.Form{ID: "form_1", Name: "Contact Form"})
	apiErr := &aifeatures.APIError{Status: 400, Message: "Invalid redirect_url"}
	api.EXPECT().UpdateForm(gomock.Any(), "form_1", gomock.Any()).Return(nil, apiErr)

	_, err := s.Update(context.Background(), "form_1", aifeatures.UpdateFormInput{RedirectURL: aifeatures.SetString("nope")})
	assert.ErrorIs(t, err, apiErr)

	f, _ := s.Find("form_1")
	assert.Equal(t, "Contact Form", f.Name)
	assert.NoError(t, s.State().Err)
}

func TestDeleteFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	s, api := seeded(t, ctrl, aifeatures.Form{ID: "form_1"}, aifeatures.Form{ID: "form_2"})
	api.EXPECT().DeleteForm(gomock.Any(), "form_1").Return(nil)

	require.NoError(t, s.Delete(context.Background(), "form_1"))

	st := s.State()
	require.Len(t, st.Forms, 1)
	assert.Equal(t, "form_2", st.Forms[0].ID)
}

func TestOnChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)
	api.EXPECT().GetForms(gomock.Any()).Return([]aifeatures.Form{{ID: "form_1"}}, nil)

	var seen []forms.State
	s := forms.New(api, forms.WithOnChange(func(st forms.State) { seen = append(seen, st) }))
	s.Load(context.Background())

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Loading)
	assert.False(t, seen[1].Loading)
	assert.Len(t, seen[1].Forms, 1)
}
