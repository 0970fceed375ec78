// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Kind enumeration used wherever routes of different
// block types flow through one code path, such as log fields, metrics labels
// and dispatch errors.
package route

// Kind names the four route block types.
type Kind string

const (
	KindCommand   Kind = "command"
	KindComponent Kind = "component"
	KindEvent     Kind = "event"
	KindTask      Kind = "task"
)

// Kinds lists every kind in route-file declaration order.
func Kinds() []Kind {
	return []Kind{KindCommand, KindComponent, KindEvent, KindTask}
}

func (k Kind) String() string {
	return string(k)
}
