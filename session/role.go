//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package session

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Role specifies the protocol role of a session.
type Role int

// Protocol roles.
const (
	Generator Role = iota
	Evaluator
)

func (r Role) String() string {
	switch r {
	case Generator:
		return "generator"
	case Evaluator:
		return "evaluator"
	default:
		return fmt.Sprintf("{Role %d}", r)
	}
}

// ParseRole parses the party designator.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "generator", "garbler", "g", "alice", "1":
		return Generator, nil
	case "evaluator", "e", "bob", "2":
		return Evaluator, nil
	default:
		return 0, errors.Newf("unknown role '%s'", s)
	}
}
