package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/profiler-cli/internal/model"
)

func TestRunGet(t *testing.T) {
	st := newFakeServeStore()
	_, err := st.Save(context.Background(), &model.CompanyProfile{
		WebsiteURL:  "https://acme.com",
		CompanyName: "Acme",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runGet(context.Background(), st, "acme.com", &out))
	assert.Contains(t, out.String(), `"company_name": "Acme"`)
}

func TestRunGet_NotFound(t *testing.T) {
	var out bytes.Buffer
	err := runGet(context.Background(), newFakeServeStore(), "unknown.com", &out)
	require.Error(t, err)
	assert.Equal(t, "profile not found", err.Error())
	assert.Empty(t, out.String())
}
