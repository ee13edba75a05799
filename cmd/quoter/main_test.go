package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aman-zulfiqar/meteora-quoter/internal/quoter"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRunAll_LogsAndContinues(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	var ran []string
	ops := map[string]operation{
		"pool-info": {"pool info", func(context.Context) (json.RawMessage, error) {
			ran = append(ran, "pool-info")
			return nil, &quoter.RemoteQueryError{Endpoint: "pool-info", StatusCode: 500, Body: []byte(`{"error":"boom"}`)}
		}},
		"swap": {"swap quote", func(context.Context) (json.RawMessage, error) {
			ran = append(ran, "swap")
			return nil, &quoter.TransportError{Endpoint: "swap-quote", Err: errors.New("connection refused")}
		}},
		"dlmm": {"dlmm swap quote", func(context.Context) (json.RawMessage, error) {
			ran = append(ran, "dlmm")
			return json.RawMessage(`{"outAmount":"1"}`), nil
		}},
	}

	failed := runAll(context.Background(), logger, []string{"pool-info", "swap", "dlmm"}, ops)
	assert.Equal(t, 2, failed)
	assert.Equal(t, []string{"pool-info", "swap", "dlmm"}, ran)
	assert.Contains(t, buf.String(), "status=500")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestRunAll_StopsWhenCancelled(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	ops := map[string]operation{
		"swap": {"swap quote", func(context.Context) (json.RawMessage, error) {
			called = true
			return json.RawMessage(`{}`), nil
		}},
	}
	assert.Equal(t, 1, runAll(ctx, logger, []string{"swap"}, ops))
	assert.False(t, called)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", indent(json.RawMessage(`{"a":1}`)))
}
