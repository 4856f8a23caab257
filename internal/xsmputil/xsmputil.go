// Package xsmputil ports the small cross-cutting helpers of the original
// implementation's Helper free functions (Xsmp/Helper.h/.cpp, see
// SPEC_FULL.md C): name validation and recursive field-path formatting.
// The structural-equivalence walk it also hosted in the original lives in
// field.AreEquivalent instead, since it needs field's unexported layout.
package xsmputil

import (
	"strings"

	"github.com/sarchlab/xsmpcore/smperrors"
)

// CheckName validates name against spec §3's Object identifier rule:
// non-empty and free of the path separator ('.'), which the persistence
// and field-path diagnostics below use to join path segments, and of '/'.
func CheckName(sender interface{ String() string }, name string) error {
	if name == "" {
		return smperrors.InvalidObjectName(sender, name)
	}

	if strings.ContainsAny(name, "./") {
		return smperrors.InvalidObjectName(sender, name)
	}

	return nil
}

// FieldPath joins a root-to-leaf chain of names with '.', matching the
// original's recursive field-path formatting used in persistence and
// dataflow diagnostics (e.g. "telemetry.position.x").
func FieldPath(segments ...string) string {
	return strings.Join(segments, ".")
}
