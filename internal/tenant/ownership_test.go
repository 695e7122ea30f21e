package tenant

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestValidateOwnershipRejectsUnknownTable(t *testing.T) {
	v := NewValidator(nil)

	_, err := v.ValidateOwnership(context.Background(), "users; DROP TABLE users", uuid.New(), uuid.New())
	require.Error(t, err)

	_, err = v.ValidateOwnership(context.Background(), "profiles", uuid.New(), uuid.New())
	require.Error(t, err)
}

func TestValidateOwnershipNilValidatorFailsClosed(t *testing.T) {
	var v *Validator

	ok, err := v.ValidateOwnership(context.Background(), "orders", uuid.New(), uuid.New())
	require.Error(t, err)
	require.False(t, ok)
}
