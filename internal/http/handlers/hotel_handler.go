package handlers

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "hoteldesk/internal/log"
	"hoteldesk/internal/services"
	"hoteldesk/internal/validate"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type HotelHandler struct {
	Hotels *services.HotelService
}

func (h *HotelHandler) List(c *fiber.Ctx) error {
	hotels, err := h.Hotels.List(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "hotels", fiber.Map{"Title": "Hotels", "Hotels": hotels})
}

func (h *HotelHandler) ListJSON(c *fiber.Ctx) error {
	hotels, err := h.Hotels.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(hotels)
}

func (h *HotelHandler) Create(c *fiber.Ctx) error {
	var in services.HotelInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, msgMissingFields)
	}
	id, err := h.Hotels.Create(c.UserContext(), in)
	if errors.Is(err, validate.ErrMissingFields) {
		return jsonError(c, fiber.StatusBadRequest, msgMissingFields)
	}
	if err != nil {
		return err
	}
	applog.Audit(c, "hotel.create", map[string]any{"hotel_id": id, "name": in.Name})
	return c.JSON(fiber.Map{"message": "Hotel added successfully!", "id": id})
}

// Update overwrites the hotel without checking that it exists or who created it.
func (h *HotelHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "Not found")
	}
	var in services.HotelInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, msgMissingFields)
	}
	changed, err := h.Hotels.Update(c.UserContext(), id, in)
	if errors.Is(err, validate.ErrMissingFields) {
		return jsonError(c, fiber.StatusBadRequest, msgMissingFields)
	}
	if err != nil {
		return err
	}
	applog.Audit(c, "hotel.update", map[string]any{"hotel_id": id, "changed": changed})
	return c.JSON(fiber.Map{"message": "Hotel updated successfully!"})
}

func (h *HotelHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c)
	}
	deleted, err := h.Hotels.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	applog.Audit(c, "hotel.delete", map[string]any{"hotel_id": id, "deleted": deleted})
	return c.Redirect("/hotels")
}

func (h *HotelHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	n, err := h.Hotels.ExportHotels(c.UserContext(), &buf)
	if err != nil {
		return err
	}
	applog.Audit(c, "hotel.export", map[string]any{"rows": n})
	c.Attachment("hotels.xlsx")
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
