package api

import "net/http"

// ListFavoritesHandler handles GET /favorites
func (a *App) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.favorites.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// AddFavoriteHandler handles POST /favorites/{productId}. Adding twice is
// not an error.
func (a *App) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	product, err := a.favorites.Add(r.Context(), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// RemoveFavoriteHandler handles DELETE /favorites/{productId}
func (a *App) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.favorites.Remove(r.Context(), productID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
