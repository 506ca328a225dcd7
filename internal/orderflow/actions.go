package orderflow

// ActionKind 可展示的操作
type ActionKind string

const (
	ActionPay          ActionKind = "pay"
	ActionConfirm      ActionKind = "confirm"
	ActionAccept       ActionKind = "accept"
	ActionPickUp       ActionKind = "pick_up"
	ActionStartTransit ActionKind = "start_transit"
	ActionDeliver      ActionKind = "deliver"
	ActionCancel       ActionKind = "cancel"
)

// Action 按角色与状态计算出的可用操作
type Action struct {
	Kind   ActionKind `json:"kind"`
	Label  string     `json:"label"`
	Target Status     `json:"target,omitempty"` // 支付操作没有目标状态
}

var actionByTarget = map[Status]Action{
	StatusConfirmed: {Kind: ActionConfirm, Label: "Confirm Order", Target: StatusConfirmed},
	StatusAssigned:  {Kind: ActionAccept, Label: "Accept Delivery", Target: StatusAssigned},
	StatusPickedUp:  {Kind: ActionPickUp, Label: "Mark Picked Up", Target: StatusPickedUp},
	StatusInTransit: {Kind: ActionStartTransit, Label: "Start Transit", Target: StatusInTransit},
	StatusDelivered: {Kind: ActionDeliver, Label: "Mark Delivered", Target: StatusDelivered},
	StatusCancelled: {Kind: ActionCancel, Label: "Cancel Order", Target: StatusCancelled},
}

var payAction = Action{Kind: ActionPay, Label: "Pay Now"}

// AvailableActions 纯函数：返回该用户对订单可执行的操作，不可执行的直接隐藏。
// 订单每次变更后都需重新计算。
func AvailableActions(actor Actor, order OrderView) []Action {
	actions := make([]Action, 0, 2)
	if actor.Role == RoleClient && order.ClientID == actor.ID && !order.Paid() && order.Status != StatusCancelled {
		actions = append(actions, payAction)
	}
	for _, target := range Targets(order.Status) {
		if _, err := Transition(order, actor, target); err != nil {
			continue
		}
		actions = append(actions, actionByTarget[target])
	}
	return actions
}

// Allows 操作列表中是否包含指定类型
func Allows(actions []Action, kind ActionKind) bool {
	for _, a := range actions {
		if a.Kind == kind {
			return true
		}
	}
	return false
}
