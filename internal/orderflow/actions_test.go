package orderflow

import (
	"testing"

	"github.com/partshub/internal/constants"
)

func kinds(actions []Action) []ActionKind {
	out := make([]ActionKind, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Kind)
	}
	return out
}

func TestAvailableActionsVendorConfirmFlow(t *testing.T) {
	vendor := Actor{ID: 20, Role: RoleVendor}
	order := OrderView{ID: 1, ClientID: 10, Status: StatusPending, PaymentStatus: constants.PaymentStatusPending, VendorIDs: []uint{20}}

	actions := AvailableActions(vendor, order)
	if len(actions) != 1 || actions[0].Kind != ActionConfirm || actions[0].Label != "Confirm Order" {
		t.Fatalf("expected only confirm action, got %v", kinds(actions))
	}

	effect, err := Transition(order, vendor, actions[0].Target)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	order.Status = effect.To
	if order.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", order.Status)
	}
	if actions := AvailableActions(vendor, order); len(actions) != 0 {
		t.Fatalf("expected no actions after confirm, got %v", kinds(actions))
	}
}

func TestAvailableActionsDispatcherAccept(t *testing.T) {
	first := Actor{ID: 30, Role: RoleDispatcher}
	second := Actor{ID: 31, Role: RoleDispatcher}
	order := OrderView{ID: 1, ClientID: 10, Status: StatusPaid, PaymentStatus: constants.PaymentStatusSuccess}

	actions := AvailableActions(first, order)
	if !Allows(actions, ActionAccept) {
		t.Fatalf("expected accept action, got %v", kinds(actions))
	}
	effect, err := Transition(order, first, StatusAssigned)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	order.Status = effect.To
	order.DispatcherID = uintPtr(effect.DispatcherID)
	if *order.DispatcherID != first.ID || order.Status != StatusAssigned {
		t.Fatalf("unexpected order after accept: %+v", order)
	}

	if actions := AvailableActions(second, order); len(actions) != 0 {
		t.Fatalf("second dispatcher should see nothing, got %v", kinds(actions))
	}
	if actions := AvailableActions(first, order); !Allows(actions, ActionPickUp) || len(actions) != 1 {
		t.Fatalf("assigned dispatcher should see only pick up, got %v", kinds(actions))
	}
}

func TestAvailableActionsUnassignedDispatcherNeverSeesDeliverySteps(t *testing.T) {
	other := Actor{ID: 99, Role: RoleDispatcher}
	for _, status := range []Status{StatusAssigned, StatusPickedUp, StatusInTransit} {
		order := OrderView{ID: 1, Status: status, DispatcherID: uintPtr(30), PaymentStatus: constants.PaymentStatusSuccess}
		actions := AvailableActions(other, order)
		for _, kind := range []ActionKind{ActionPickUp, ActionStartTransit, ActionDeliver} {
			if Allows(actions, kind) {
				t.Fatalf("status %s: unassigned dispatcher sees %s", status, kind)
			}
		}
	}
}

func TestAvailableActionsClientPay(t *testing.T) {
	client := Actor{ID: 10, Role: RoleClient}
	order := OrderView{ID: 1, ClientID: 10, Status: StatusPending, PaymentStatus: constants.PaymentStatusPending}

	if actions := AvailableActions(client, order); len(actions) != 1 || actions[0].Kind != ActionPay {
		t.Fatalf("expected pay action, got %v", kinds(actions))
	}
	if actions := AvailableActions(Actor{ID: 11, Role: RoleClient}, order); len(actions) != 0 {
		t.Fatalf("other client should see nothing, got %v", kinds(actions))
	}

	order.Status = StatusCancelled
	if actions := AvailableActions(client, order); len(actions) != 0 {
		t.Fatalf("cancelled order should hide pay, got %v", kinds(actions))
	}

	order.Status = StatusPaid
	order.PaymentStatus = constants.PaymentStatusSuccess
	if actions := AvailableActions(client, order); len(actions) != 0 {
		t.Fatalf("paid order should hide pay, got %v", kinds(actions))
	}
}

func TestAvailableActionsAdminCancel(t *testing.T) {
	admin := Actor{ID: 1, Role: RoleAdmin}
	for _, status := range Statuses {
		order := OrderView{ID: 1, Status: status, DispatcherID: uintPtr(30)}
		actions := AvailableActions(admin, order)
		if status.IsTerminal() {
			if len(actions) != 0 {
				t.Fatalf("terminal %s should expose nothing, got %v", status, kinds(actions))
			}
			continue
		}
		if len(actions) != 1 || actions[0].Kind != ActionCancel {
			t.Fatalf("status %s: admin expected cancel only, got %v", status, kinds(actions))
		}
	}
}

// 网关暴露的流转操作与 Transition 的判定必须一致
func TestAvailableActionsMatchTransitionTable(t *testing.T) {
	dispatcherIDs := []*uint{nil, uintPtr(30)}
	actorIDs := []uint{10, 20, 30, 99}
	for _, status := range Statuses {
		for _, dispatcherID := range dispatcherIDs {
			order := OrderView{ID: 1, ClientID: 10, Status: status, DispatcherID: dispatcherID, VendorIDs: []uint{20}, PaymentStatus: constants.PaymentStatusSuccess}
			for _, role := range Roles {
				for _, id := range actorIDs {
					actor := Actor{ID: id, Role: role}
					actions := AvailableActions(actor, order)
					exposed := map[Status]bool{}
					for _, a := range actions {
						if a.Kind == ActionPay {
							continue
						}
						exposed[a.Target] = true
					}
					for _, next := range Statuses {
						_, err := Transition(order, actor, next)
						if (err == nil) != exposed[next] {
							t.Fatalf("mismatch status=%s role=%s id=%d next=%s allowed=%v exposed=%v",
								status, role, id, next, err == nil, exposed[next])
						}
					}
				}
			}
		}
	}
}

func TestNavForReturnsCopy(t *testing.T) {
	items := NavFor(RoleClient)
	if len(items) == 0 {
		t.Fatalf("expected client nav")
	}
	items[0].Path = "/changed"
	if NavFor(RoleClient)[0].Path == "/changed" {
		t.Fatalf("nav table should not be mutated through returned slice")
	}
	for _, role := range Roles {
		if len(NavFor(role)) == 0 {
			t.Fatalf("role %s has no nav", role)
		}
	}
}
