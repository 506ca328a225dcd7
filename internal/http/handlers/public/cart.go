package public

import (
	"strconv"

	"github.com/partshub/internal/cart"
	handlershared "github.com/partshub/internal/http/handlers/shared"
	"github.com/partshub/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SaveCartRequest 保存购物车快照
type SaveCartRequest struct {
	Items []cart.Item `json:"items"`
}

// CartView 购物车快照及汇总
type CartView struct {
	Items     []cart.Item     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func cartKey(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}

func buildCartView(store *cart.Store) CartView {
	items := store.Items()
	if items == nil {
		items = []cart.Item{}
	}
	return CartView{Items: items, Total: store.Total(), ItemCount: store.ItemCount()}
}

// GetCart 读取服务端保存的购物车快照
func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	store := cart.New(c.Request.Context(), cartKey(userID), h.CartStore)
	response.Success(c, buildCartView(store))
}

// SaveCart 覆盖保存购物车快照
func (h *Handler) SaveCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req SaveCartRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	store := cart.New(ctx, cartKey(userID), h.CartStore)
	if err := store.Replace(ctx, req.Items); err != nil {
		respondError(c, response.CodeInternal, "save cart failed", err)
		return
	}
	response.Success(c, buildCartView(store))
}

// ClearCart 删除购物车快照
func (h *Handler) ClearCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartStore.Delete(c.Request.Context(), cartKey(userID)); err != nil {
		respondError(c, response.CodeInternal, "clear cart failed", err)
		return
	}
	response.SuccessWithMsg(c, "cart cleared", nil)
}
