package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	orig := buildVersion
	t.Cleanup(func() { buildVersion = orig })

	var b bytes.Buffer
	buildVersion = "v1.2.3"
	PrintBuildData(&b)

	assert.Contains(t, b.String(), "Build version: v1.2.3\n")
	assert.Contains(t, b.String(), "Build date: N/A\n")
}
