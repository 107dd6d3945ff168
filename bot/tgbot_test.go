package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "", sanitize(""))
	assert.Equal(t, "ERROR: payment failed", sanitize("ERROR: payment failed"))
	assert.Equal(t, `call\_sid: CA1\-2\.3 \(retry\)`, sanitize("call_sid: CA1-2.3 (retry)"))
	assert.Equal(t, `amount\=10\!`, sanitize("amount=10!"))
}
