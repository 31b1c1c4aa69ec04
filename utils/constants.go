// File: utils/constants.go
package utils

import "time"

// DefaultHoldTTL is how long a slot hold survives before payment must complete.
const DefaultHoldTTL = 15 * time.Minute

// SlotLockTTL bounds the critical section of a per-doctor ledger lock.
const SlotLockTTL = 5 * time.Second
