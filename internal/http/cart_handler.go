package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oliversimiyu/pos-system/internal/domain"
)

type ScanRequestDTO struct {
	Barcode string `json:"barcode" validate:"required"`
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartLineDTO struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type CartViewDTO struct {
	Lines []CartLineDTO `json:"lines"`
	Count int           `json:"count"`
	Total float64       `json:"total"`
}

// Scan resolves a barcode and adds the product to the cart.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	product, err := h.orchestrator.LookupByBarcode(r.Context(), req.Barcode)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, struct {
		Product *domain.Product `json:"product"`
		Cart    CartViewDTO     `json:"cart"`
	}{product, h.cartView()})
}

// SearchProducts returns candidates for manual selection.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("search")
	if query == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "search query is required")
		return
	}
	products, err := h.orchestrator.SearchProducts(r.Context(), query)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// AddItem adds a product picked from search results.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if _, err := h.orchestrator.AddProduct(r.Context(), req.ProductID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.cartView())
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be numeric")
		return
	}

	var req UpdateQuantityRequestDTO
	if errDec := json.NewDecoder(r.Body).Decode(&req); errDec != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if errSet := h.orchestrator.Cart().SetQuantity(productID, req.Quantity); errSet != nil {
		respondDomainError(w, errSet)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView())
}

// RemoveItem deletes a line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be numeric")
		return
	}
	h.orchestrator.Cart().Remove(productID)
	respondJSON(w, http.StatusOK, h.cartView())
}

// GetCart returns the current cart.
func (h *Handler) GetCart(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.cartView())
}

// ClearCart abandons the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, _ *http.Request) {
	h.orchestrator.Cart().Clear()
	respondJSON(w, http.StatusOK, h.cartView())
}

// BeginCheckout validates the cart and reports the amount due.
func (h *Handler) BeginCheckout(w http.ResponseWriter, _ *http.Request) {
	total, err := h.orchestrator.BeginCheckout()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]float64{"total": total})
}

func (h *Handler) cartView() CartViewDTO {
	lines := h.orchestrator.Cart().Lines()
	view := CartViewDTO{
		Lines: make([]CartLineDTO, 0, len(lines)),
		Count: len(lines),
	}
	for _, line := range lines {
		view.Lines = append(view.Lines, CartLineDTO{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			UnitPrice: line.Product.Price,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal(),
		})
		view.Total += line.Subtotal()
	}
	return view
}
