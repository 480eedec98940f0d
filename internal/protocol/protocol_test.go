// internal/protocol/protocol_test.go
package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType string
		wantErr  bool
	}{
		{
			name:     "create room",
			input:    `{"type":"createRoom","questions":[{"question":"Fish?","choices":["foo","bar"],"answer":0,"time":30}]}`,
			wantType: ActionCreateRoom,
		},
		{
			name:     "join room",
			input:    `{"type":"joinRoom","roomId":"abc","username":"Johnny"}`,
			wantType: ActionJoinRoom,
		},
		{
			name:     "answer with choice zero",
			input:    `{"type":"answer","choice":0}`,
			wantType: ActionAnswer,
		},
		{
			name:     "begin round",
			input:    `{"type":"beginRound"}`,
			wantType: ActionBeginRound,
		},
		{
			name:     "end round",
			input:    `{"type":"endRound"}`,
			wantType: ActionEndRound,
		},
		{
			name:    "unknown kind",
			input:   `{"type":"launchMissiles"}`,
			wantErr: true,
		},
		{
			name:    "answer without choice",
			input:   `{"type":"answer"}`,
			wantErr: true,
		},
		{
			name:    "join without username",
			input:   `{"type":"joinRoom","roomId":"abc"}`,
			wantErr: true,
		},
		{
			name:    "create without questions",
			input:   `{"type":"createRoom"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			input:   `beginRound`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act, err := DecodeAction([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, act.Type)
		})
	}
}

func TestDecodeAnswerKeepsChoiceZero(t *testing.T) {
	act, err := DecodeAction([]byte(`{"type":"answer","choice":0}`))
	require.NoError(t, err)
	require.NotNil(t, act.Choice)
	assert.Equal(t, 0, *act.Choice)
}

func TestHostRoundEndAlwaysCarriesPointGains(t *testing.T) {
	data, err := json.Marshal(HostEvent{Type: HostRoundEnd})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"roundEnd","pointGains":{}}`, string(data))

	data, err = json.Marshal(HostEvent{Type: HostRoundEnd, PointGains: map[string]int{"Johnny": 1000}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"roundEnd","pointGains":{"Johnny":1000}}`, string(data))
}

func TestUserRoundEndEncodesMissingGainAsNull(t *testing.T) {
	data, err := json.Marshal(UserEvent{Type: UserRoundEnd})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"roundEnd","pointGain":null}`, string(data))

	gain := 909
	data, err = json.Marshal(UserEvent{Type: UserRoundEnd, PointGain: &gain})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"roundEnd","pointGain":909}`, string(data))
}
