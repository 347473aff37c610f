// Package storetest provides a reusable conformance suite for metadata.Store
// implementations. It tests the interface contract, not implementation
// details, so the same suite runs against the memory and badger stores.
package storetest

import (
	"testing"

	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// StoreTestSuite exercises the full Store contract.
type StoreTestSuite struct {
	// NewStore is a factory that creates a fresh Store instance for each
	// test. This ensures test isolation.
	NewStore func() metadata.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("Sandbox", suite.RunSandboxTests)
	t.Run("Directory", suite.RunDirectoryTests)
	t.Run("Write", suite.RunWriteTests)
	t.Run("Move", suite.RunMoveTests)
	t.Run("Delete", suite.RunDeleteTests)
	t.Run("Reconcile", suite.RunReconcileTests)
	t.Run("Healthcheck", suite.RunHealthcheckTests)
}
