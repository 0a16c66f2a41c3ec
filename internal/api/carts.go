package api

import (
	"net/http"

	"github.com/SigNoz/store-api-go/internal/models"
)

// ListCartsHandler handles GET /carts
func (a *App) ListCartsHandler(w http.ResponseWriter, r *http.Request) {
	carts, err := a.carts.ListCarts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, carts)
}

// CreateCartHandler handles POST /carts
func (a *App) CreateCartHandler(w http.ResponseWriter, r *http.Request) {
	cart, err := a.carts.CreateCart(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cart)
}

// GetCartHandler handles GET /carts/{id}
func (a *App) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	cart, err := a.carts.GetCart(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// AddCartItemHandler handles POST /carts/{id}/items
func (a *App) AddCartItemHandler(w http.ResponseWriter, r *http.Request) {
	cartID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.AddCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	productID, quantity, err := req.Normalize()
	if err != nil {
		writeError(w, r, err)
		return
	}

	cart, err := a.carts.AddItem(r.Context(), cartID, productID, quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// RemoveCartItemHandler handles DELETE /carts/{id}/items/{productId}
func (a *App) RemoveCartItemHandler(w http.ResponseWriter, r *http.Request) {
	cartID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	productID, err := pathID(r, "productId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	cart, err := a.carts.RemoveItem(r.Context(), cartID, productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// DeleteCartHandler handles DELETE /carts/{id}
func (a *App) DeleteCartHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.carts.DeleteCart(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
