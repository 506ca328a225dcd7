package orderflow

// guard 规则附加条件
type guard int

const (
	guardNone guard = iota
	guardVendorOwnsItem
	guardUnassigned
	guardAssignedDispatcher
)

type rule struct {
	role  Role
	next  Status
	guard guard
}

// transitionTable 当前状态 -> 允许的角色与目标状态；管理员取消单独处理
var transitionTable = map[Status][]rule{
	StatusPending: {
		{role: RoleVendor, next: StatusConfirmed, guard: guardVendorOwnsItem},
	},
	StatusPaid: {
		{role: RoleDispatcher, next: StatusAssigned, guard: guardUnassigned},
	},
	StatusAssigned: {
		{role: RoleDispatcher, next: StatusPickedUp, guard: guardAssignedDispatcher},
	},
	StatusPickedUp: {
		{role: RoleDispatcher, next: StatusInTransit, guard: guardAssignedDispatcher},
	},
	StatusInTransit: {
		{role: RoleDispatcher, next: StatusDelivered, guard: guardAssignedDispatcher},
	},
}

// paymentSources 支付成功可推进到 paid 的状态
var paymentSources = map[Status]struct{}{
	StatusPending:   {},
	StatusConfirmed: {},
}

// Effect 一次合法流转的结果
type Effect struct {
	From Status
	To   Status
	// AssignDispatcher 为 true 时需把 dispatcher_id 写为 DispatcherID
	AssignDispatcher bool
	DispatcherID     uint
}

// Transition 校验 actor 能否把订单推进到 next
func Transition(order OrderView, actor Actor, next Status) (Effect, error) {
	if !actor.Role.Valid() {
		return Effect{}, invalid(order, actor, next, "unknown role")
	}
	if order.Status.IsTerminal() {
		return Effect{}, invalid(order, actor, next, "order is in a terminal state")
	}

	if next == StatusCancelled {
		if actor.Role != RoleAdmin {
			return Effect{}, invalid(order, actor, next, "only admin can cancel")
		}
		return Effect{From: order.Status, To: StatusCancelled}, nil
	}

	for _, r := range transitionTable[order.Status] {
		if r.next != next {
			continue
		}
		if r.role != actor.Role {
			return Effect{}, invalid(order, actor, next, "role not permitted")
		}
		if reason := r.guard.check(order, actor); reason != "" {
			return Effect{}, invalid(order, actor, next, reason)
		}
		effect := Effect{From: order.Status, To: next}
		if r.guard == guardUnassigned {
			effect.AssignDispatcher = true
			effect.DispatcherID = actor.ID
		}
		return effect, nil
	}
	return Effect{}, invalid(order, actor, next, "")
}

// PaymentTarget 支付成功后的目标状态；ok=false 表示只记录支付结果，不改变订单状态
func PaymentTarget(current Status) (Status, bool) {
	if _, ok := paymentSources[current]; ok {
		return StatusPaid, true
	}
	return current, false
}

// Targets 当前状态下所有可能的目标状态（不区分角色），顺序固定
func Targets(current Status) []Status {
	if current.IsTerminal() {
		return nil
	}
	rules := transitionTable[current]
	out := make([]Status, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.next)
	}
	return append(out, StatusCancelled)
}

func (g guard) check(order OrderView, actor Actor) string {
	switch g {
	case guardVendorOwnsItem:
		if !order.HasVendor(actor.ID) {
			return "vendor has no items in this order"
		}
	case guardUnassigned:
		if order.Assigned() {
			return "order already assigned"
		}
	case guardAssignedDispatcher:
		if !order.AssignedTo(actor.ID) {
			return "dispatcher is not assigned to this order"
		}
	}
	return ""
}
