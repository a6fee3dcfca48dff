package gas

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "warikan/internal/sheets"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchTransactions_OK(t *testing.T) {
	body := `[
		{"日付":"2024-05-03","金額（円）":"3,000","大項目":"生活","中項目":"食費","メモ":"","内容":"スーパー","計算対象":"1"},
		{"日付":"2024-05-10","金額（円）":2000,"中項目":"立替（全額）","計算対象":1}
	]`
	srv := serve(t, http.StatusOK, body)

	c := New(StaticURL(srv.URL), srv.Client(), time.Second)
	txs, err := c.FetchTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "3,000", txs[0].Amount)
	assert.Equal(t, "スーパー", txs[0].Content)
	assert.Equal(t, "2000", txs[1].Amount)
	assert.True(t, txs[1].Included())
}

func TestFetchTransactions_EmptyArray(t *testing.T) {
	srv := serve(t, http.StatusOK, `[]`)
	txs, err := New(StaticURL(srv.URL), srv.Client(), time.Second).FetchTransactions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestFetchTransactions_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `oops`, ErrBadResponse},
		{"not found", http.StatusNotFound, `[]`, ErrBadResponse},
		{"object payload", http.StatusOK, `{"error":"denied"}`, ErrMalformedPayload},
		{"null payload", http.StatusOK, `null`, ErrMalformedPayload},
		{"html payload", http.StatusOK, `<html>login</html>`, ErrMalformedPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			_, err := New(StaticURL(srv.URL), srv.Client(), time.Second).FetchTransactions(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestFetchTransactions_SkipsBadRows(t *testing.T) {
	body := `[
		{"日付":"2024-05-03","金額（円）":"3,000","中項目":"食費","計算対象":"1"},
		{"日付":"2024-05-04","金額（円）":"500","中項目":"外食","メモ":{"x":1},"内容":["a"],"計算対象":"1"},
		5,
		"row",
		null
	]`
	srv := serve(t, http.StatusOK, body)

	txs, err := New(StaticURL(srv.URL), srv.Client(), time.Second).FetchTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "3,000", txs[0].Amount)
	assert.Equal(t, "500", txs[1].Amount)
	assert.Empty(t, txs[1].Memo)
	assert.Empty(t, txs[1].Content)
	assert.False(t, txs[2].Included())
}

func TestFetchTransactions_NoSource(t *testing.T) {
	_, err := New(StaticURL(""), nil, time.Second).FetchTransactions(context.Background())
	assert.ErrorIs(t, err, ports.ErrNoSource)

	_, err = New(nil, nil, time.Second).FetchTransactions(context.Background())
	assert.ErrorIs(t, err, ports.ErrNoSource)
}

func TestFetchTransactions_ResolverCalledPerFetch(t *testing.T) {
	first := serve(t, http.StatusOK, `[{"日付":"2024-01-01"}]`)
	second := serve(t, http.StatusOK, `[{"日付":"2024-01-01"},{"日付":"2024-01-02"}]`)

	current := first.URL
	c := New(func(context.Context) (string, error) { return current, nil }, nil, time.Second)

	txs, err := c.FetchTransactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	current = second.URL
	txs, err = c.FetchTransactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestFetchTransactions_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(StaticURL(url), nil, time.Second).FetchTransactions(context.Background())
	assert.ErrorIs(t, err, ErrBadResponse)
}
