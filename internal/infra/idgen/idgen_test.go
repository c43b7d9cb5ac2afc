package idgen

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderNo_Format(t *testing.T) {
	g, err := New(1)
	require.NoError(t, err)
	g.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	no := g.OrderNo()
	assert.Len(t, no, 20)
	assert.Regexp(t, regexp.MustCompile(`^20260304050607\d{6}$`), no)
}

func TestTransactionID_Unique(t *testing.T) {
	g, err := New(1)
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := g.TransactionID()
		assert.Regexp(t, `^PAY\d+$`, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestNew_InvalidNode(t *testing.T) {
	_, err := New(4096)
	assert.Error(t, err)
}
