package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/pkg/format"
	"github.com/your-org/donate-storefront/internal/pkg/i18n"
)

type orderLine struct {
	order.Order
	TotalText         string `json:"totalText"`
	DateText          string `json:"dateText"`
	StatusText        string `json:"statusText"`
	StatusColor       string `json:"statusColor"`
	PaymentStatusText string `json:"paymentStatusText"`
}

func newOrderLine(o order.Order) orderLine {
	return orderLine{
		Order:             o,
		TotalText:         format.Price(o.TotalPrice),
		DateText:          format.Date(o.CreatedAt),
		StatusText:        format.OrderStatus(string(o.Status)),
		StatusColor:       format.StatusColor(string(o.Status)),
		PaymentStatusText: format.PaymentStatus(string(o.PaymentStatus)),
	}
}

// Orders handles GET /app/orders
func (h *Handler) Orders(c *gin.Context) {
	s := session(c)
	err := s.Store.FetchOrders(c.Request.Context())
	orders := s.Store.Snapshot().Orders
	if err != nil && len(orders) == 0 {
		failErr(c, err, "errors.generic")
		return
	}

	lines := make([]orderLine, 0, len(orders))
	for _, o := range orders {
		lines = append(lines, newOrderLine(o))
	}

	view := gin.H{"orders": lines, "count": len(lines)}
	if len(lines) == 0 {
		view["empty"] = i18n.T("profile.orderHistoryEmpty")
	}
	ok(c, view)
}

// Receipt handles GET /app/orders/:id/receipt. format=html returns the
// receipt markup instead of the PDF.
func (h *Handler) Receipt(c *gin.Context) {
	orderID, valid := paramID(c, "id")
	if !valid {
		return
	}

	s := session(c)
	resp := s.API.GetOrder(c.Request.Context(), orderID)
	if err := resp.Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	o := resp.Data

	customer := ""
	if u := s.Store.Snapshot().User; u != nil {
		customer = u.GetDisplayName()
	}

	if c.Query("format") == "html" {
		html, err := h.receipts.RenderHTML(&o, customer)
		if err != nil {
			h.logFor(c).WithError(err).Error("Failed to render receipt")
			fail(c, http.StatusInternalServerError, i18n.T("errors.generic"))
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
		return
	}

	pdf, err := h.receipts.GenerateReceipt(&o, customer)
	if err != nil {
		h.logFor(c).WithError(err).WithField("order_number", o.OrderNumber).Error("Failed to generate receipt")
		fail(c, http.StatusInternalServerError, i18n.T("errors.generic"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", o.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", pdf.Bytes())
}
