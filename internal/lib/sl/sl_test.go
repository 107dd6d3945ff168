package sl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecretMasksMiddle(t *testing.T) {
	assert.Equal(t, "41**********1111", Secret("card", "4111111111111111").Value.String())
	assert.Equal(t, "***45", Secret("zip", "12345").Value.String())
	assert.Equal(t, "***", Secret("cvv", "123").Value.String())
	assert.Equal(t, "", Secret("empty", "").Value.String())
}

func TestErr(t *testing.T) {
	assert.Equal(t, "boom", Err(errors.New("boom")).Value.String())
	assert.Equal(t, "", Err(nil).Value.String())
}
