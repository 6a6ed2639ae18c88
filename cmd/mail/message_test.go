package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

func init() {
	templateDir = "../../templates"
}

// roundTrip 模拟消息经过队列后的样子，Data 会变成 map
func roundTrip(t *testing.T, msg domain.MailMessage) domain.MailMessage {
	t.Helper()

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded domain.MailMessage
	require.NoError(t, json.Unmarshal(body, &decoded))
	return decoded
}

func TestBuildMessage(t *testing.T) {
	tests := []struct {
		name    string
		message domain.MailMessage
		want    string
	}{
		{
			name: "优化完成",
			message: domain.MailMessage{
				Type: domain.MailTypeOptimizationCompleted,
				To:   "wangwei@example.com",
				Data: domain.OptimizationCompletedMailData{FullName: "王伟", ProjectID: 3, RunID: 9, State: "converged"},
			},
			want: "王伟",
		},
		{
			name: "预算告警",
			message: domain.MailMessage{
				Type: domain.MailTypeBudgetAlert,
				To:   "wangwei@example.com",
				Data: domain.BudgetAlertMailData{FullName: "王伟", ProjectID: 3, RunID: 9, Messages: []string{"总成本超出预算上限"}},
			},
			want: "总成本超出预算上限",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := buildMessage("noreply@example.com", roundTrip(t, tt.message))
			require.NoError(t, err)

			var buf bytes.Buffer
			_, err = m.WriteTo(&buf)
			require.NoError(t, err)
			assert.NotEmpty(t, buf.String())
		})
	}
}

func TestBuildMessage_UnknownType(t *testing.T) {
	_, err := buildMessage("noreply@example.com", domain.MailMessage{Type: "reset_password", To: "a@example.com"})
	assert.Error(t, err)
}
