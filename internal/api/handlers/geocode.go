package handlers

import (
	"errors"
	"net/http"

	"dispatch-service/internal/api/dto"
	"dispatch-service/internal/ports"
)

// GeocodeHandler exposes the address resolver directly, for callers that
// want to resolve a location without running a full dispatch.
type GeocodeHandler struct {
	Geocoder ports.Geocoder
}

// Forward serves POST /geocode.
func (h *GeocodeHandler) Forward(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.GeocodeForwardRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	addr := addressInputFromDTO(req.Address)
	if !addr.Resolvable() {
		writeError(w, r, http.StatusBadRequest, "address has no usable free_text or structured fields")
		return
	}

	result, err := h.Geocoder.Forward(r.Context(), addr)
	if err != nil {
		if errors.Is(err, ports.ErrAddressNotFound) {
			writeError(w, r, http.StatusNotFound, "address could not be resolved")
			return
		}
		writeError(w, r, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, dto.GeocodeForwardResponse{
		Lat:               result.Coordinate.Lat,
		Lon:               result.Coordinate.Lon,
		NormalizedAddress: result.NormalizedAddress,
		Confidence:        result.Confidence,
	})
}

// Reverse serves POST /geocode/reverse.
func (h *GeocodeHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.GeocodeReverseRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	c := coordinateFromDTO(req.Lat, req.Lon)
	if !c.Valid() {
		writeError(w, r, http.StatusBadRequest, "lat/lon out of range")
		return
	}

	addr, err := h.Geocoder.Reverse(r.Context(), c)
	if err != nil {
		if errors.Is(err, ports.ErrAddressNotFound) {
			writeError(w, r, http.StatusNotFound, "coordinate could not be resolved")
			return
		}
		writeError(w, r, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, dto.GeocodeReverseResponse{
		Street:     addr.Street,
		Number:     addr.Number,
		Corner1:    addr.Corner1,
		Corner2:    addr.Corner2,
		City:       addr.City,
		Country:    addr.Country,
		PostalCode: addr.PostalCode,
	})
}
