package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/local-business-directory/internal/domain/entity"
)

func TestAuthorizeMutation(t *testing.T) {
	owned := &entity.Business{ID: 7, OwnerID: "u1"}

	tests := []struct {
		name   string
		caller string
		target *entity.Business
		want   error
	}{
		{"owner may mutate", "u1", owned, nil},
		{"other user is forbidden", "u2", owned, ErrForbidden},
		{"missing record is not found", "u1", nil, ErrNotFound},
		{"missing record wins over ownership", "u2", nil, ErrNotFound},
		{"anonymous caller", "", owned, ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeMutation(tt.caller, tt.target)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
