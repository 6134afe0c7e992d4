package handler

import (
	"errors"
	"log"

	"github.com/alexedwards/argon2id"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"flowdraw/internal/auth"
	"flowdraw/internal/model"
)

const (
	minUsernameLen = 3
	minPasswordLen = 5
)

// AuthHandler serves signup and signin.
type AuthHandler struct {
	db  *gorm.DB
	jwt *auth.JWTManager
}

func NewAuthHandler(db *gorm.DB, jwt *auth.JWTManager) *AuthHandler {
	return &AuthHandler{db: db, jwt: jwt}
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Signup creates an account with an argon2id password hash.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if len(req.Username) < minUsernameLen {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username must be at least 3 characters",
		})
	}
	if len(req.Password) < minPasswordLen {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "password must be at least 5 characters",
		})
	}

	var existing model.User
	err := h.db.Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "username already taken",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[Auth] signup lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		log.Printf("[Auth] password hash failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	user := model.User{
		Username: req.Username,
		Password: hash,
		Name:     req.Name,
	}
	if err := h.db.Create(&user).Error; err != nil {
		log.Printf("[Auth] signup insert failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"userId": user.ID,
	})
}

type signinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signin verifies credentials and issues an access token.
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req signinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	var user model.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid credentials",
			})
		}
		log.Printf("[Auth] signin lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, user.Password)
	if err != nil || !match {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid credentials",
		})
	}

	token, err := h.jwt.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		log.Printf("[Auth] token generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"token":  token,
		"userId": user.ID,
		"name":   user.Name,
	})
}
