package orderflow

// NavItem 导航入口
type NavItem struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

var navTable = map[Role][]NavItem{
	RoleClient: {
		{Path: "/parts", Label: "Browse Parts"},
		{Path: "/cart", Label: "Cart"},
		{Path: "/orders", Label: "My Orders"},
	},
	RoleVendor: {
		{Path: "/vendor/parts", Label: "My Parts"},
		{Path: "/orders", Label: "Orders"},
	},
	RoleDispatcher: {
		{Path: "/orders", Label: "Deliveries"},
		{Path: "/map", Label: "Map"},
	},
	RoleAdmin: {
		{Path: "/admin", Label: "Dashboard"},
		{Path: "/admin/users", Label: "Users"},
		{Path: "/orders", Label: "Orders"},
		{Path: "/map", Label: "Map"},
	},
}

// NavFor 角色对应的导航入口（返回副本）
func NavFor(role Role) []NavItem {
	items := navTable[role]
	out := make([]NavItem, len(items))
	copy(out, items)
	return out
}
