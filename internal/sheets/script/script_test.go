package script

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "lifedash/internal/sheets"
)

func TestFetchRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Daily", r.URL.Query().Get("sheet"))
		assert.Equal(t, "fetch", r.URL.Query().Get("action"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[["Timestamp","Serial"],["01/01/2024 10:00:00","IN-001",100.5]]}`))
	}))
	defer srv.Close()

	c, err := New(Options{Endpoint: srv.URL})
	require.NoError(t, err)

	rows, err := c.FetchRows(context.Background(), ports.SheetFinance)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "IN-001", rows[1][1])
	assert.Equal(t, json.Number("100.5"), rows[1][2])
}

func TestFetchRowsLogicalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"Sheet not found"}`))
	}))
	defer srv.Close()

	c, err := New(Options{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = c.FetchRows(context.Background(), "Missing")
	require.Error(t, err)
	assert.True(t, ports.IsLogical(err))
	assert.True(t, errors.Is(err, ports.ErrStoreFailure))
	assert.Contains(t, err.Error(), "Sheet not found")
}

func TestFetchRowsHTTPAndDecodeFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sheet") == "broken" {
			_, _ = w.Write([]byte(`<html>login required</html>`))
			return
		}
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(Options{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = c.FetchRows(context.Background(), "Daily")
	var se *ports.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ports.KindTransport, se.Kind)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)

	_, err = c.FetchRows(context.Background(), "broken")
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ports.KindDecode, se.Kind)
}

func TestFetchRowsRetriesWhenConfigured(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[["h"]]}`))
	}))
	defer srv.Close()

	c, err := New(Options{Endpoint: srv.URL, RetryMax: 2, RetryWaitMin: time.Millisecond, RetryWaitMax: 5 * time.Millisecond})
	require.NoError(t, err)

	rows, err := c.FetchRows(context.Background(), "Daily")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestInsertRowPostsForm(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Daily", r.PostForm.Get("sheetName"))
		assert.Equal(t, "insert", r.PostForm.Get("action"))
		assert.Equal(t, "income", r.PostForm.Get("transactionType"))

		var row []any
		assert.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("rowData")), &row))
		assert.Len(t, row, 7)

		_, _ = w.Write([]byte(`{"success":true,"serial":"IN-010","formattedDate":"15/01/2024"}`))
	}))
	defer srv.Close()

	c, err := New(Options{Endpoint: srv.URL, RetryMax: 3})
	require.NoError(t, err)

	res, err := c.InsertRow(context.Background(), ports.SheetFinance, ports.InsertRequest{
		Action:        ports.ActionInsert,
		Discriminator: ports.Discriminator{Key: ports.FieldTransactionType, Value: "income"},
		RowData:       []any{"15/01/2024 10:00:00", "income", "income", "100", "Salary", "", "2024-01-15"},
	})
	require.NoError(t, err)
	assert.Equal(t, "IN-010", res.SerialNumber())
	assert.Equal(t, "15/01/2024", res.FormattedDate)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestInsertRowIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(Options{Endpoint: srv.URL, RetryMax: 3, RetryWaitMin: time.Millisecond, RetryWaitMax: time.Millisecond})
	require.NoError(t, err)

	_, err = c.InsertRow(context.Background(), ports.SheetFuel, ports.InsertRequest{Action: ports.ActionInsertFuel})
	require.Error(t, err)
	assert.True(t, ports.IsTransport(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewRejectsBadEndpoint(t *testing.T) {
	for _, ep := range []string{"", "ftp://example.com/x", "://bad"} {
		_, err := New(Options{Endpoint: ep})
		assert.Error(t, err, ep)
	}
}
