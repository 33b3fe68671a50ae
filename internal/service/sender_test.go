package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendanotify/internal/config"
	"agendanotify/internal/logger"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		want    string
		wantErr bool
	}{
		{
			name:  "local number gets country prefix",
			phone: "11999998888",
			want:  "5511999998888",
		},
		{
			name:  "already prefixed number is not double-prefixed",
			phone: "5511999998888",
			want:  "5511999998888",
		},
		{
			name:  "formatting characters stripped",
			phone: "(11) 99999-8888",
			want:  "5511999998888",
		},
		{
			name:  "plus and spaces stripped",
			phone: "+55 11 99999 8888",
			want:  "5511999998888",
		},
		{
			name:    "too short is rejected",
			phone:   "123",
			wantErr: true,
		},
		{
			name:    "empty is rejected",
			phone:   "",
			wantErr: true,
		},
		{
			name: "short number starting with prefix digits still gets prefixed",
			// 8 digits beginning with 55: too short to already be
			// internationalized, so the prefix is prepended
			phone: "55112233",
			want:  "5555112233",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.phone, "55", 10)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestClient() *ChannelClient {
	return NewChannelClient(config.ChannelConfig{
		BaseURL:       "https://provider.test",
		APIKey:        "test-key",
		CountryPrefix: "55",
		MinDigits:     10,
		SendTimeout:   5 * time.Second,
	}, logger.Nop())
}

func TestChannelClientSendAccepted(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var gotBody map[string]string
	var gotAPIKey string
	httpmock.RegisterResponder("POST", "https://provider.test/send/studio-test",
		func(req *http.Request) (*http.Response, error) {
			gotAPIKey = req.Header.Get("apikey")
			_ = json.NewDecoder(req.Body).Decode(&gotBody)
			return httpmock.NewStringResponse(200, `{"status":"queued","message_id":"abc-123"}`), nil
		})

	client := newTestClient()
	outcome := client.Send(context.Background(), NewTestChannelInstance(1), "11999998888", "hello there")

	assert.True(t, outcome.OK)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, "5511999998888", outcome.NormalizedPhone)
	assert.Contains(t, outcome.ProviderResponse, "abc-123")
	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "5511999998888", gotBody["number"])
	assert.Equal(t, "hello there", gotBody["text"])
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestChannelClientSendProviderRejects(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "https://provider.test/send/studio-test",
		httpmock.NewStringResponder(200, `{"status":"error"}`))

	client := newTestClient()
	outcome := client.Send(context.Background(), NewTestChannelInstance(1), "11999998888", "hi")

	assert.False(t, outcome.OK)
	assert.Error(t, outcome.Err)
	assert.Equal(t, "5511999998888", outcome.NormalizedPhone)
}

func TestChannelClientSendNon2xx(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "https://provider.test/send/studio-test",
		httpmock.NewStringResponder(401, `{"error":"bad apikey"}`))

	client := newTestClient()
	outcome := client.Send(context.Background(), NewTestChannelInstance(1), "11999998888", "hi")

	assert.False(t, outcome.OK)
	assert.Error(t, outcome.Err)
	assert.Contains(t, outcome.ProviderResponse, "bad apikey")
}

func TestChannelClientSendNetworkError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "https://provider.test/send/studio-test",
		httpmock.NewErrorResponder(assert.AnError))

	client := newTestClient()
	outcome := client.Send(context.Background(), NewTestChannelInstance(1), "11999998888", "hi")

	assert.False(t, outcome.OK)
	assert.Error(t, outcome.Err)
}

func TestChannelClientRejectsShortNumberLocally(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	client := newTestClient()
	outcome := client.Send(context.Background(), NewTestChannelInstance(1), "123", "hi")

	assert.False(t, outcome.OK)
	assert.Error(t, outcome.Err)
	// No provider call for a locally rejected address
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}
