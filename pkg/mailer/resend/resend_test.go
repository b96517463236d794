package resend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter-back/pkg/mailer"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestSender_Send(t *testing.T) {
	t.Parallel()

	var captured map[string]any

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.True(t, strings.HasSuffix(r.URL.Path, "/emails"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		return jsonResponse(http.StatusOK, `{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`), nil
	})}

	s := NewWithClient(Config{APIKey: "re_test", SenderEmail: "news@example.com", SenderName: "Newsletter Service"}, client)

	err := s.Send(context.Background(), mailer.Message{
		To:      "reader@example.com",
		Subject: "Issue #1",
		Text:    "hello",
		HTML:    "<p>hello</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, `"Newsletter Service" <news@example.com>`, captured["from"])
	assert.Equal(t, []any{"reader@example.com"}, captured["to"])
	assert.Equal(t, "Issue #1", captured["subject"])
	assert.Equal(t, "<p>hello</p>", captured["html"])
	assert.Equal(t, "hello", captured["text"])
}

func TestSender_Send_APIError(t *testing.T) {
	t.Parallel()

	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnprocessableEntity, `{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`), nil
	})}

	s := NewWithClient(Config{APIKey: "re_test", SenderEmail: "news@example.com"}, client)

	err := s.Send(context.Background(), mailer.Message{To: "bad", Subject: "s", Text: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resend")
}

func TestSender_Send_Invalid(t *testing.T) {
	t.Parallel()

	s := New(Config{APIKey: "re_test"})

	err := s.Send(context.Background(), mailer.Message{To: "a@b.c", Text: "t"})
	assert.ErrorIs(t, err, mailer.ErrNoSubject)
}
