package orderflow

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid order transition")
	ErrUnknownRole       = errors.New("unknown role")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// InvalidTransitionError 非法状态流转，调用方不得修改本地状态，应重新拉取订单
type InvalidTransitionError struct {
	Current   Status
	Requested Status
	Role      Role
	Reason    string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("invalid transition: %s cannot move order from %s to %s", e.Role, e.Current, e.Requested)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// Is 支持 errors.Is(err, ErrInvalidTransition)
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func invalid(order OrderView, actor Actor, next Status, reason string) error {
	return &InvalidTransitionError{
		Current:   order.Status,
		Requested: next,
		Role:      actor.Role,
		Reason:    reason,
	}
}
