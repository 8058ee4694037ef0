package database

import "errors"

// ErrNotReady reports that the database cannot currently be reached.
// Verify wraps it so readiness probes can distinguish connectivity
// failures from query errors.
var ErrNotReady = errors.New("database not ready")
