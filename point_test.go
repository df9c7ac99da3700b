package influxdb3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoint_BuilderChains(t *testing.T) {
	p := NewPoint("cpu").AddTag("host", "a").AddField("value", FloatField(1.5))
	assert.Equal(t, "cpu", p.Measurement)
	require.Len(t, p.Tags, 1)
	require.Len(t, p.Fields, 1)
}

func TestPoint_ValidateRejectsEmptyMeasurement(t *testing.T) {
	p := NewPoint("  ")
	p.AddField("v", IntField(1))
	assert.Error(t, p.Validate())
}

func TestPoint_ValidateRejectsNoFields(t *testing.T) {
	p := NewPoint("cpu")
	assert.Error(t, p.Validate())
}
