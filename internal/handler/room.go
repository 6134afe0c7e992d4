package handler

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"flowdraw/internal/cache"
	"flowdraw/internal/model"
)

// RoomHandler serves room CRUD. The creator of a room becomes its admin and
// is the only one who may delete it.
type RoomHandler struct {
	db    *gorm.DB
	cache *cache.RedisClient
}

func NewRoomHandler(db *gorm.DB, rc *cache.RedisClient) *RoomHandler {
	return &RoomHandler{db: db, cache: rc}
}

type createRoomRequest struct {
	Name string `json:"name"`
}

// Create makes a room whose slug is derived from the name. A slug collision
// is a conflict, not an overwrite.
func (h *RoomHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	var req createRoomRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "room name is required",
		})
	}

	room := model.Room{
		Slug:    slugify(req.Name),
		Name:    strings.TrimSpace(req.Name),
		AdminID: userID,
	}

	var existing model.Room
	err := h.db.Where("slug = ?", room.Slug).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "room already exists",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[Room] slug lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	if err := h.db.Create(&room).Error; err != nil {
		log.Printf("[Room] insert failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"roomId": room.ID,
		"slug":   room.Slug,
	})
}

// List returns every room, newest first.
func (h *RoomHandler) List(c *fiber.Ctx) error {
	var rooms []model.Room
	if err := h.db.Order("id desc").Find(&rooms).Error; err != nil {
		log.Printf("[Room] list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"rooms": rooms,
	})
}

// BySlug resolves a slug to the room record.
func (h *RoomHandler) BySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var room model.Room
	if err := h.db.Where("slug = ?", slug).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "room not found",
			})
		}
		log.Printf("[Room] slug lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"room": room,
	})
}

// Delete removes a room and its whole mutation log. Admin only.
func (h *RoomHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	roomID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid room id",
		})
	}

	var room model.Room
	if err := h.db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "room not found",
			})
		}
		log.Printf("[Room] lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	if room.AdminID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "only the room admin may delete it",
		})
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&model.Chat{}).Error; err != nil {
			return err
		}
		return tx.Delete(&room).Error
	})
	if err != nil {
		log.Printf("[Room] delete failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	if err := h.cache.Invalidate(c.Context(), strconv.FormatInt(roomID, 10)); err != nil {
		log.Printf("[Room %d] cache invalidation failed: %v", roomID, err)
	}

	return c.JSON(fiber.Map{
		"message": "room deleted",
	})
}

// slugify lowercases the name and collapses everything that is not a letter
// or digit into single dashes. An empty result falls back to a random slug.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "room-" + uuid.NewString()[:8]
	}
	return slug
}
