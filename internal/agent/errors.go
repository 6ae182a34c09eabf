// internal/agent/errors.go
package agent

import "errors"

// ErrElementNotFound is fatal to installation: a page element the agent needs is absent.
var ErrElementNotFound = errors.New("required page element not found")
