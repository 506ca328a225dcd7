package orderflow

import (
	"errors"
	"testing"

	"github.com/partshub/internal/constants"
)

func uintPtr(v uint) *uint { return &v }

func TestTransitionVendorConfirmsOwnOrder(t *testing.T) {
	order := OrderView{ID: 1, ClientID: 10, Status: StatusPending, VendorIDs: []uint{20}}

	effect, err := Transition(order, Actor{ID: 20, Role: RoleVendor}, StatusConfirmed)
	if err != nil {
		t.Fatalf("expected vendor confirm to succeed, got %v", err)
	}
	if effect.From != StatusPending || effect.To != StatusConfirmed {
		t.Fatalf("unexpected effect: %+v", effect)
	}
	if effect.AssignDispatcher {
		t.Fatalf("confirm should not assign dispatcher")
	}

	if _, err := Transition(order, Actor{ID: 21, Role: RoleVendor}, StatusConfirmed); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected foreign vendor to be rejected, got %v", err)
	}
}

func TestTransitionDispatcherSelfAssign(t *testing.T) {
	order := OrderView{ID: 1, Status: StatusPaid}

	effect, err := Transition(order, Actor{ID: 30, Role: RoleDispatcher}, StatusAssigned)
	if err != nil {
		t.Fatalf("expected assign to succeed, got %v", err)
	}
	if !effect.AssignDispatcher || effect.DispatcherID != 30 {
		t.Fatalf("expected dispatcher 30 assignment, got %+v", effect)
	}

	order.DispatcherID = uintPtr(30)
	_, err = Transition(order, Actor{ID: 31, Role: RoleDispatcher}, StatusAssigned)
	var invalidErr *InvalidTransitionError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if invalidErr.Reason != "order already assigned" {
		t.Fatalf("unexpected reason: %s", invalidErr.Reason)
	}
	if invalidErr.Current != StatusPaid || invalidErr.Requested != StatusAssigned || invalidErr.Role != RoleDispatcher {
		t.Fatalf("unexpected error fields: %+v", invalidErr)
	}
}

func TestTransitionDeliveryStepsRequireAssignedDispatcher(t *testing.T) {
	steps := []struct {
		from Status
		to   Status
	}{
		{StatusAssigned, StatusPickedUp},
		{StatusPickedUp, StatusInTransit},
		{StatusInTransit, StatusDelivered},
	}
	for _, step := range steps {
		order := OrderView{ID: 1, Status: step.from, DispatcherID: uintPtr(30)}
		if _, err := Transition(order, Actor{ID: 30, Role: RoleDispatcher}, step.to); err != nil {
			t.Fatalf("%s -> %s by assigned dispatcher failed: %v", step.from, step.to, err)
		}
		if _, err := Transition(order, Actor{ID: 31, Role: RoleDispatcher}, step.to); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s -> %s by other dispatcher should fail, got %v", step.from, step.to, err)
		}
	}
}

func TestTransitionAdminCancelFromPickedUp(t *testing.T) {
	order := OrderView{ID: 1, Status: StatusPickedUp, DispatcherID: uintPtr(30)}
	admin := Actor{ID: 1, Role: RoleAdmin}

	effect, err := Transition(order, admin, StatusCancelled)
	if err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}
	if effect.To != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", effect.To)
	}

	order.Status = effect.To
	for _, role := range Roles {
		for _, next := range Statuses {
			if _, err := Transition(order, Actor{ID: 30, Role: role}, next); err == nil {
				t.Fatalf("expected no transition from cancelled, %s reached %s", role, next)
			}
		}
	}
}

func TestTransitionNonAdminCannotCancel(t *testing.T) {
	order := OrderView{ID: 1, ClientID: 10, Status: StatusPending, VendorIDs: []uint{20}}
	for _, actor := range []Actor{{ID: 10, Role: RoleClient}, {ID: 20, Role: RoleVendor}, {ID: 30, Role: RoleDispatcher}} {
		if _, err := Transition(order, actor, StatusCancelled); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected %s cancel to be rejected, got %v", actor.Role, err)
		}
	}
}

func TestTransitionNoUserCanMarkPaid(t *testing.T) {
	order := OrderView{ID: 1, ClientID: 10, Status: StatusConfirmed, VendorIDs: []uint{20}}
	for _, role := range Roles {
		if _, err := Transition(order, Actor{ID: 10, Role: role}, StatusPaid); err == nil {
			t.Fatalf("role %s should not set paid directly", role)
		}
	}
}

func TestPaymentTarget(t *testing.T) {
	cases := map[Status]bool{
		StatusPending:   true,
		StatusConfirmed: true,
		StatusPaid:      false,
		StatusAssigned:  false,
		StatusCancelled: false,
		StatusDelivered: false,
	}
	for status, expectMove := range cases {
		next, ok := PaymentTarget(status)
		if ok != expectMove {
			t.Fatalf("status %s: expected move=%v, got %v", status, expectMove, ok)
		}
		if ok && next != StatusPaid {
			t.Fatalf("status %s: expected paid target, got %s", status, next)
		}
		if !ok && next != status {
			t.Fatalf("status %s: expected unchanged status, got %s", status, next)
		}
	}
}

func TestParseRoleAndStatus(t *testing.T) {
	role, err := ParseRole(" Vendor ")
	if err != nil || role != RoleVendor {
		t.Fatalf("expected vendor, got %s err=%v", role, err)
	}
	if _, err := ParseRole("superuser"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
	status, err := ParseStatus("IN_TRANSIT")
	if err != nil || status != StatusInTransit {
		t.Fatalf("expected in_transit, got %s err=%v", status, err)
	}
	if _, err := ParseStatus("shipped"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if RoleAdmin.SelfRegistrable() {
		t.Fatalf("admin should not be self registrable")
	}
	if string(StatusPaid) != constants.OrderStatusPaid {
		t.Fatalf("status constant drift: %s", StatusPaid)
	}
}
