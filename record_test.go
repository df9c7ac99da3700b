package influxdb3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordConstructors_SetKind(t *testing.T) {
	assert.Equal(t, RecordRaw, StringRecord("m v=1").Kind)
	assert.Equal(t, RecordRaw, RawRecord([]byte("m v=1")).Kind)
	assert.Equal(t, RecordPoint, PointRecord(NewPoint("m")).Kind)
	assert.Equal(t, RecordDict, DictRecord(map[string]any{"measurement": "m"}).Kind)
	assert.Equal(t, RecordSlice, SliceRecord([]Record{StringRecord("a")}).Kind)
}
