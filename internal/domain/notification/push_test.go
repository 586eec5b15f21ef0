package notification

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func browserSubscription(t *testing.T, endpoint string) []byte {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	raw, err := json.Marshal(SubscribeRequest{
		Endpoint: endpoint,
		Keys: SubscriptionKeys{
			P256dh: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(auth),
		},
	})
	require.NoError(t, err)
	return raw
}

func newWebPush(t *testing.T) *WebPush {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return NewWebPush(WebPushConfig{PublicKey: pub, PrivateKey: priv, Subject: "ops@example.com"})
}

func TestWebPush_Delivers(t *testing.T) {
	var gotAuth, gotEncoding string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotEncoding = r.Header.Get("Content-Encoding")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	status, err := newWebPush(t).Send(context.Background(), browserSubscription(t, srv.URL+"/push/1"), []byte(`{"title":"t"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.True(t, strings.HasPrefix(gotAuth, "vapid "))
	assert.Equal(t, "aes128gcm", gotEncoding)
}

func TestWebPush_ReportsGone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	status, err := newWebPush(t).Send(context.Background(), browserSubscription(t, srv.URL), []byte(`{}`))
	assert.Error(t, err)
	assert.Equal(t, http.StatusGone, status)
	assert.True(t, isGone(status))
}

func TestWebPush_InvalidSubscription(t *testing.T) {
	_, err := newWebPush(t).Send(context.Background(), []byte("not json"), []byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidSubscription)
}
