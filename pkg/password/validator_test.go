package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		password string
		policy   Policy
		wantRule string
	}{
		{
			name:     "default policy accepts any non-empty password",
			password: "pw123",
			policy:   DefaultPolicy,
		},
		{
			name:     "default policy rejects empty password",
			password: "",
			policy:   DefaultPolicy,
			wantRule: "Length",
		},
		{
			name:     "too short for a configured minimum",
			password: "short",
			policy:   Policy{MinLength: 8},
			wantRule: "Length",
		},
		{
			name:     "missing required number",
			password: "longenough",
			policy:   Policy{MinLength: 8, RequireNumbers: true},
			wantRule: "Numbers",
		},
		{
			name:     "number requirement satisfied",
			password: "longenough1",
			policy:   Policy{MinLength: 8, RequireNumbers: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.password, tt.policy)
			if tt.wantRule == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantRule, vErr.Rule)
		})
	}
}
