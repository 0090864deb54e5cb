package store

import (
	"testing"
)

// Compile-time checks that the interface is importable and usable.
func TestStoreInterfaceExists(t *testing.T) {
	// This test simply validates that the Store interface compiles
	// and the sentinel errors are accessible.
	_ = ErrInsufficientCredits
	_ = ErrAlreadyBoosted
	_ = ErrConcurrentModification
	_ = CreateAdParams{}

	// Ensure the interface is a non-nil type.
	var _ Store
}
