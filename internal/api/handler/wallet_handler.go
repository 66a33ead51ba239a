package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/service"
)

// Wallet returns the balance and the history.
//
// @Summary      Get the wallet
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  walletPanelState
// @Failure      409  {object}  errorResponse
// @Router       /v1/wallet [get]
func (h *PanelHandler) Wallet(c echo.Context) error {
	v, err := active[service.WalletView](c)
	if err != nil {
		return err
	}
	w, _ := ctxWorkspace(c)
	return c.JSON(http.StatusOK, describe(w, v).Panel)
}

// Quote returns the enots a top-up would credit.
//
// @Summary      Quote a top-up
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Param        amount  query     string  true  "Amount"
// @Success      200     {object}  quoteResponse
// @Failure      409     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /v1/wallet/quote [get]
func (h *PanelHandler) Quote(c echo.Context) error {
	v, err := active[service.WalletView](c)
	if err != nil {
		return err
	}
	amount, ok := domain.ParseAmount(c.QueryParam("amount"))
	if !ok || amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return c.JSON(http.StatusOK, quoteResponse{Amount: amount, Enots: v.Panel.Quote(amount)})
}

// TopUp charges real currency and credits enots.
//
// @Summary      Top the balance up
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      topUpRequest  true  "Top-up"
// @Success      200   {object}  domain.Snapshot
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/wallet/top-up [post]
func (h *PanelHandler) TopUp(c echo.Context) error {
	var req topUpRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v, err := active[service.WalletView](c)
	if err != nil {
		return err
	}
	snap, err := v.Panel.TopUp(c.Request().Context(), req.Amount, req.Method)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Shop returns the gift catalog and the balance.
//
// @Summary      Get the shop
// @Tags         shop
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  shopPanelState
// @Failure      409  {object}  errorResponse
// @Router       /v1/shop [get]
func (h *PanelHandler) Shop(c echo.Context) error {
	v, err := active[service.ShopView](c)
	if err != nil {
		return err
	}
	w, _ := ctxWorkspace(c)
	return c.JSON(http.StatusOK, describe(w, v).Panel)
}

// Purchase buys a catalog gift.
//
// @Summary      Buy a gift
// @Tags         shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      purchaseRequest  true  "Gift"
// @Success      200   {object}  domain.Snapshot
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/shop/purchases [post]
func (h *PanelHandler) Purchase(c echo.Context) error {
	var req purchaseRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v, err := active[service.ShopView](c)
	if err != nil {
		return err
	}
	snap, err := v.Panel.Purchase(c.Request().Context(), req.GiftID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Gifts returns the received and sent gifts.
//
// @Summary      Get my gifts
// @Tags         gifts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.GiftBox
// @Failure      409  {object}  errorResponse
// @Router       /v1/gifts [get]
func (h *PanelHandler) Gifts(c echo.Context) error {
	v, err := active[service.GiftsView](c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v.Panel.Box())
}

// SellGift sells a received gift for 70% of its price.
//
// @Summary      Sell a received gift
// @Tags         gifts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Owned gift id"
// @Success      200  {object}  domain.Snapshot
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/gifts/{id}/sell [post]
func (h *PanelHandler) SellGift(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	v, err := active[service.GiftsView](c)
	if err != nil {
		return err
	}
	snap, err := v.Panel.Sell(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}
