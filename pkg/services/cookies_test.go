package services

import (
	"errors"
	"testing"
)

func TestCredentialFromCookies(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "valid payload",
			raw:  `[{"key":"sb","value":"abc"},{"key":"xs","value":"def"},{"key":"fr","value":"ghi"}]`,
			want: "sb=abc; xs=def; fr=ghi",
		},
		{
			name: "sb not first",
			raw:  `[{"key":"xs","value":"def"},{"key":"sb","value":"abc"}]`,
			want: "sb=abc; xs=def",
		},
		{
			name: "only sb",
			raw:  `[{"key":"sb","value":"abc"}]`,
			want: "sb=abc",
		},
		{
			name:    "missing sb entry",
			raw:     `[{"key":"xs","value":"def"}]`,
			wantErr: true,
		},
		{
			name:    "not a sequence",
			raw:     `{"key":"sb","value":"abc"}`,
			wantErr: true,
		},
		{
			name:    "not json at all",
			raw:     "sb=abc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CredentialFromCookies(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CredentialFromCookies() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCookies) {
					t.Errorf("error = %v, want ErrInvalidCookies", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("CredentialFromCookies() = %q, want %q", got, tt.want)
			}
		})
	}
}
