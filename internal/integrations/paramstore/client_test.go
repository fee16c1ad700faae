package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a simple fake implementing ssmAPI for tests.
type fakeAPI struct {
	getOut *ssm.GetParameterOutput
	getErr error
	lastIn *ssm.GetParameterInput
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.lastIn = in
	return f.getOut, f.getErr
}

func strPtr(s string) *string { return &s }

func TestGetParameter_HappyPath(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: strPtr("/tgbot/telegram-token"), Value: strPtr(`{"token":"123:abc"}`),
	}}}
	client, err := New(api, "/tgbot")
	require.NoError(t, err)
	v, err := client.GetParameter(context.Background(), "telegram-token")
	require.NoError(t, err)
	require.Equal(t, `{"token":"123:abc"}`, v)
}

func TestGetParameter_JoinsPrefix(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: strPtr("p"), Value: strPtr("v"),
	}}}

	cases := []struct {
		prefix string
		name   string
		want   string
	}{
		{"/tgbot", "telegram-token", "/tgbot/telegram-token"},
		{"/tgbot/", "telegram-token", "/tgbot/telegram-token"},
		{"/tgbot", "/telegram-token", "/tgbot/telegram-token"},
		{"  /tgbot  ", " telegram-token ", "/tgbot/telegram-token"},
	}
	for _, tc := range cases {
		client, err := New(api, tc.prefix)
		require.NoError(t, err)
		_, err = client.GetParameter(context.Background(), tc.name)
		require.NoError(t, err)
		require.NotNil(t, api.lastIn)
		require.Equal(t, tc.want, *api.lastIn.Name, "prefix=%q name=%q", tc.prefix, tc.name)
		require.NotNil(t, api.lastIn.WithDecryption)
		require.True(t, *api.lastIn.WithDecryption)
	}
}

func TestGetParameter_MissingValue(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: strPtr("p"), Value: nil}}}
	client, err := New(api, "/tgbot")
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "telegram-token")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing value")
}

func TestGetParameter_ApiError(t *testing.T) {
	api := &fakeAPI{getErr: errors.New("boom")}
	client, err := New(api, "/tgbot")
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "telegram-token")
	require.Error(t, err)
	require.ErrorContains(t, err, "boom")
}

func TestGetParameter_ClientNotInitialized(t *testing.T) {
	_, err := (&Client{}).GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not initialized")
}

func TestGetParameter_EmptyName(t *testing.T) {
	api := &fakeAPI{}
	client, err := New(api, "/tgbot")
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil, "/tgbot")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNew_EmptyPrefix(t *testing.T) {
	_, err := New(&fakeAPI{}, "  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "prefix")
}
