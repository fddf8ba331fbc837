// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package retarget

import (
	"errors"
	"fmt"
)

var (
	// ErrContractViolation is matched by every ContractViolationError
	ErrContractViolation = errors.New("contract violation")
	// ErrBadDifficultyBits is returned when a header claims a target other
	// than the one the chain requires
	ErrBadDifficultyBits = errors.New("header bits do not match required target")
	// ErrHighHash is returned when a header hash does not satisfy its target
	ErrHighHash = errors.New("header hash exceeds target")
)

// ContractViolationError reports a caller error such as a missing block
// or a chain view lacking a required ancestor
type ContractViolationError struct {
	Op     string
	Reason string
}

func newContractViolation(op string, format string, args ...any) error {
	return &ContractViolationError{
		Op:     op,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrContractViolation, e.Op, e.Reason)
}

func (e *ContractViolationError) Is(target error) bool {
	return target == ErrContractViolation
}
