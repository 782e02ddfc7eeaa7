package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type holder struct {
	Timeout Duration `json:"timeout" yaml:"timeout"`
}

func TestDuration_JSON(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: `{"timeout":"60s"}`, want: time.Minute},
		{in: `{"timeout":"1m30s"}`, want: 90 * time.Second},
		{in: `{"timeout":1000000000}`, want: time.Second},
		{in: `{"timeout":"soon"}`, wantErr: true},
		{in: `{"timeout":true}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var h holder
			err := json.Unmarshal([]byte(tt.in), &h)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.Timeout.Duration)
		})
	}
}

func TestDuration_YAML(t *testing.T) {
	var h holder
	require.NoError(t, yaml.Unmarshal([]byte("timeout: 45s\n"), &h))
	assert.Equal(t, 45*time.Second, h.Timeout.Duration)

	require.NoError(t, yaml.Unmarshal([]byte("timeout: 2000000000\n"), &h))
	assert.Equal(t, 2*time.Second, h.Timeout.Duration)

	require.Error(t, yaml.Unmarshal([]byte("timeout: later\n"), &h))
	require.Error(t, yaml.Unmarshal([]byte("timeout: [1, 2]\n"), &h))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(holder{Timeout: Duration{30 * time.Second}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"timeout":"30s"}`, string(b))
}
