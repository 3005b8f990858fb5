package core

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClientAttrs(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want []any
	}{
		{
			name: "empty context",
			ctx:  context.Background(),
			want: nil,
		},
		{
			name: "ip only",
			ctx:  ContextWithIPAddress(context.Background(), "203.0.113.5"),
			want: []any{"ip", "203.0.113.5"},
		},
		{
			name: "ip and user agent",
			ctx:  ContextWithUserAgent(ContextWithIPAddress(context.Background(), "203.0.113.5"), "curl/8.0"),
			want: []any{"ip", "203.0.113.5", "user_agent", "curl/8.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, clientAttrs(tt.ctx)); diff != "" {
				t.Errorf("clientAttrs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestContextGetters_Missing(t *testing.T) {
	ctx := context.Background()
	if got := GetIPAddressFromContext(ctx); got != "" {
		t.Errorf("GetIPAddressFromContext() = %q, want empty", got)
	}
	if got := GetUserAgentFromContext(ctx); got != "" {
		t.Errorf("GetUserAgentFromContext() = %q, want empty", got)
	}
}
