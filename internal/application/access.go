package application

import "github.com/oksasatya/local-business-directory/internal/domain/entity"

// AuthorizeMutation decides whether callerID may update or delete b. A nil b
// means the record does not exist, which is reported before ownership.
// Callers must pass a freshly loaded record.
func AuthorizeMutation(callerID string, b *entity.Business) error {
	if b == nil {
		return ErrNotFound
	}
	if callerID == "" {
		return ErrUnauthenticated
	}
	if callerID != b.OwnerID {
		return ErrForbidden
	}
	return nil
}
