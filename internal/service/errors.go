package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

// ErrInfeasible marks a roster whose supply cannot cover demand.
var ErrInfeasible = errors.New("roster is infeasible")

// InfeasibleError carries the supply/demand problems found.
type InfeasibleError struct {
	Problems []scheduler.Problem
}

func (e *InfeasibleError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Message
	}
	return fmt.Sprintf("%s: %s", ErrInfeasible, strings.Join(msgs, "; "))
}

func (e *InfeasibleError) Unwrap() error { return ErrInfeasible }
