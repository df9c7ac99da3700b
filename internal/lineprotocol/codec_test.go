package lineprotocol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InfluxCommunity/influxdb3-go/internal/model"
)

func TestEncode_BasicLine(t *testing.T) {
	p := model.NewPoint("cpu").
		AddTag("host", "a").
		AddField("value", model.FloatField(1.0))

	line, err := Encode(p, model.Nanosecond)
	require.NoError(t, err)
	assert.Equal(t, "cpu,host=a value=1", string(line))
}

func TestEncode_TagOrderingIsLexicographic(t *testing.T) {
	p := model.NewPoint("m").
		AddTag("z", "1").
		AddTag("a", "2").
		AddField("v", model.IntField(1))

	line, err := Encode(p, model.Nanosecond)
	require.NoError(t, err)
	assert.Equal(t, "m,a=2,z=1 v=1i", string(line))
}

func TestEncode_EmptyTagValueDropped(t *testing.T) {
	p := model.NewPoint("m").
		AddTag("building", "").
		AddTag("host", "h").
		AddField("v", model.IntField(1))

	line, err := Encode(p, model.Nanosecond)
	require.NoError(t, err)
	assert.Equal(t, "m,host=h v=1i", string(line))
}

func TestEncode_NaNFieldDropped(t *testing.T) {
	p := model.NewPoint("m").
		AddField("a", model.FloatField(math.NaN())).
		AddField("b", model.FloatField(2.0))

	line, err := Encode(p, model.Nanosecond)
	require.NoError(t, err)
	assert.Equal(t, "m b=2", string(line))
}

func TestEncode_AllFieldsNaNIsMisuse(t *testing.T) {
	p := model.NewPoint("m").
		AddField("a", model.FloatField(math.Inf(1)))

	_, err := Encode(p, model.Nanosecond)
	require.Error(t, err)
	var domainErr *model.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.KindClientMisuse, domainErr.Kind)
}

func TestEncode_WithTimestamp(t *testing.T) {
	p := model.NewPoint("m").
		AddField("v", model.IntField(1)).
		SetTimestamp(1000, model.Second)

	line, err := Encode(p, model.Second)
	require.NoError(t, err)
	assert.Equal(t, "m v=1i 1000", string(line))
}

func TestEncode_EscapesMeasurementAndKeys(t *testing.T) {
	p := model.NewPoint("my measurement,x").
		AddTag("t a,g", "v=1").
		AddField("f k", model.StringField(`say "hi"\`))

	line, err := Encode(p, model.Nanosecond)
	require.NoError(t, err)
	assert.Equal(t, `my\ measurement\,x,t\ a\,g=v\=1 f\ k="say \"hi\"\\"`, string(line))
}
