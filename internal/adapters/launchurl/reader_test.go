package launchurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReader_BypassToken(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantToken string
		wantOK    bool
	}{
		{
			name:      "web URL with token",
			opts:      Options{RawURL: "https://app.fantastico.example/?slpCode=142"},
			wantToken: "142",
			wantOK:    true,
		},
		{
			name:      "deep link with token",
			opts:      Options{RawURL: "telesales://launch?slpCode=77&utm=x"},
			wantToken: "77",
			wantOK:    true,
		},
		{
			name:      "bare query string",
			opts:      Options{RawURL: "slpCode=9"},
			wantToken: "9",
			wantOK:    true,
		},
		{
			name:      "query string with leading question mark",
			opts:      Options{RawURL: "?slpCode=9"},
			wantToken: "9",
			wantOK:    true,
		},
		{
			name:      "custom param",
			opts:      Options{RawURL: "https://app.fantastico.example/?rep=5", Param: "rep"},
			wantToken: "5",
			wantOK:    true,
		},
		{
			name: "no token",
			opts: Options{RawURL: "https://app.fantastico.example/?utm=x"},
		},
		{
			name: "empty URL",
			opts: Options{RawURL: ""},
		},
		{
			name: "empty token value",
			opts: Options{RawURL: "https://app.fantastico.example/?slpCode="},
		},
		{
			name: "malformed query",
			opts: Options{RawURL: "?slpCode=1;%zz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := New(tt.opts).BypassToken()
			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
