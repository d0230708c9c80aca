package domain

import "testing"

func TestUser_GetDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		user     *User
		expected string
	}{
		{
			name:     "DisplayNameが優先",
			user:     &User{ID: "U123", DisplayName: "sid", RealName: "Sid Rao", Name: "srao"},
			expected: "sid",
		},
		{
			name:     "DisplayNameが空の場合はRealName",
			user:     &User{ID: "U123", RealName: "Sid Rao", Name: "srao"},
			expected: "Sid Rao",
		},
		{
			name:     "DisplayNameとRealNameが空の場合はName",
			user:     &User{ID: "U123", Name: "srao"},
			expected: "srao",
		},
		{
			name:     "すべて空の場合はID",
			user:     &User{ID: "U123"},
			expected: "U123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.GetDisplayName(); got != tt.expected {
				t.Errorf("GetDisplayName() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUser_Mention(t *testing.T) {
	u := &User{ID: "U123"}
	if got := u.Mention(); got != "<@U123>" {
		t.Errorf("Mention() = %q, want %q", got, "<@U123>")
	}
}
