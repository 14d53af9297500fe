package sandbox

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const anonymous = "anonimo"

// RequestLogger logs every request once it was answered.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		ev.Int("status", status).
			Dur("latency", time.Since(start)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("client_ip", c.IP()).
			Str("request_id", c.Get("X-Request-ID")).
			Msg("request processed")
		return nil
	}
}

// Auth resolves the operator from the bearer token. Without a secret every
// request runs as the anonymous operator.
func Auth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			c.Locals("usuario", anonymous)
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"mensaje": "Sesion no valida",
			})
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"mensaje": "Sesion expirada",
			})
		}

		usuario := anonymous
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if u, ok := claims["username"].(string); ok && u != "" {
				usuario = u
			}
		}
		c.Locals("usuario", usuario)
		return c.Next()
	}
}

// CSRF rejects writes that do not carry the expected token, either as the
// form field or as the header.
func CSRF(expected string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if expected == "" || c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Next()
		}
		token := c.FormValue("csrfmiddlewaretoken")
		if token == "" {
			token = c.Get("X-CSRFToken")
		}
		if token != expected {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"mensaje": "CSRF token invalido",
			})
		}
		return c.Next()
	}
}

func usuario(c *fiber.Ctx) string {
	if u, ok := c.Locals("usuario").(string); ok && u != "" {
		return u
	}
	return anonymous
}

// IssueToken signs a session token for an operator.
func IssueToken(secret, usuario string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": usuario,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}
