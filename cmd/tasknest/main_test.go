package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/tasknest/internal/messages"
	"github.com/tgienger/tasknest/internal/models"
)

func TestReportError(t *testing.T) {
	t.Cleanup(func() { catalog, language = nil, "" })
	err := fmt.Errorf("task 9: %w", models.ErrNotFound)

	var out bytes.Buffer
	reportError(&out, errors.New("config unreadable"))
	assert.Equal(t, "Error: config unreadable\n", out.String())

	c, cerr := messages.New()
	require.NoError(t, cerr)
	catalog, language = c, "en"

	out.Reset()
	reportError(&out, err)
	assert.Equal(t, "The item could not be found.\n", out.String())
	assert.NotContains(t, out.String(), "task 9")

	language = "vi"
	out.Reset()
	reportError(&out, err)
	assert.Equal(t, "Không tìm thấy mục này.\n", out.String())
}
