package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberFractionDigits(t *testing.T) {
	assert.Equal(t, "87", Number(87.187123, 0))
	assert.Equal(t, "97.12", Number(97.1234, 2))
	assert.Equal(t, "8", Number(8, 2))
}

func TestNumberGrouping(t *testing.T) {
	assert.Equal(t, "1,000,000", Number(1000000, 0))
	assert.Equal(t, "1,234.5", Number(1234.5, 2))
}

func TestBold(t *testing.T) {
	assert.Equal(t, "on host", Plain.Bold("on host"))
	assert.Equal(t, "**on host**", Markdown.Bold("on host"))
}
