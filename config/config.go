package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Endpoints are the collaborator URLs the screens talk to. Paths are
// resolved against BaseURL unless they are absolute.
type Endpoints struct {
	Entradas            string `validate:"required"`
	EntradaCuadrar      string `validate:"required"`
	Detalles            string `validate:"required"`
	ImpresionQR         string `validate:"required"`
	SalidaDetalles      string `validate:"required"`
	SalidaEditar        string `validate:"required"`
	Paquetes            string `validate:"required"`
	PaqueteAprobar      string `validate:"required"`
	PaqueteAsignar      string `validate:"required"`
	Dispositivos        string `validate:"required"`
	Repuestos           string `validate:"required"`
	RevisionSalidas     string `validate:"required"`
	Salidas             string `validate:"required"`
	RechazarDispositivo string `validate:"required"`
	HistorialSalida     string `validate:"required"`
}

type Sandbox struct {
	Port       string `validate:"required,numeric"`
	JWTSecret  string
	CSRFToken  string
	DBDriver   string `validate:"oneof=sqlite postgres mysql mssql"`
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string `validate:"required"`
	Seed       bool

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	NotifyTo     []string `validate:"dive,email"`
}

type Config struct {
	BaseURL       string `validate:"required,url"`
	CSRFToken     string
	SessionCookie string
	SessionToken  string
	Timeout       time.Duration
	LogLevel      string `validate:"oneof=debug info warn error"`

	Endpoints Endpoints
	Sandbox   Sandbox
}

// DefaultEndpoints are the routes of the inventory API.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Entradas:            "/inventario/api/entrada/",
		EntradaCuadrar:      "/inventario/api/entrada/cuadrar/",
		Detalles:            "/inventario/api/entradadetalle/",
		ImpresionQR:         "/inventario/api/impresion/qr/",
		SalidaDetalles:      "/inventario/api/salidadetalle/",
		SalidaEditar:        "/inventario/salida/",
		Paquetes:            "/inventario/api/paquetes/",
		PaqueteAprobar:      "/inventario/api/paquetes/aprobar/",
		PaqueteAsignar:      "/inventario/api/dispositivospaquete/",
		Dispositivos:        "/inventario/api/dispositivos/",
		Repuestos:           "/inventario/api/repuestos/",
		RevisionSalidas:     "/inventario/api/revisionsalida/",
		Salidas:             "/inventario/api/salidas/",
		RechazarDispositivo: "/inventario/api/dispositivospaquetes/rechazar/",
		HistorialSalida:     "/inventario/api/historial/salida/",
	}
}

var validate = validator.New()

// LoadConfig reads the .env file when present and builds the configuration
// from the environment. The result is not validated; callers apply their
// overrides first and then call Validate.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using system environment variables")
	}

	def := DefaultEndpoints()
	cfg := &Config{
		BaseURL:       getEnv("INVENTARIO_BASE_URL", "http://127.0.0.1:9000"),
		CSRFToken:     getEnv("CSRF_TOKEN", ""),
		SessionCookie: getEnv("SESSION_COOKIE", ""),
		SessionToken:  getEnv("SESSION_TOKEN", ""),
		Timeout:       time.Duration(getEnvAsInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),

		Endpoints: Endpoints{
			Entradas:            getEnv("API_ENTRADAS", def.Entradas),
			EntradaCuadrar:      getEnv("API_ENTRADA_CUADRAR", def.EntradaCuadrar),
			Detalles:            getEnv("API_DETALLES", def.Detalles),
			ImpresionQR:         getEnv("API_IMPRESION_QR", def.ImpresionQR),
			SalidaDetalles:      getEnv("API_SALIDA_DETALLES", def.SalidaDetalles),
			SalidaEditar:        getEnv("API_SALIDA_EDITAR", def.SalidaEditar),
			Paquetes:            getEnv("API_PAQUETES", def.Paquetes),
			PaqueteAprobar:      getEnv("API_PAQUETE_APROBAR", def.PaqueteAprobar),
			PaqueteAsignar:      getEnv("API_PAQUETE_ASIGNAR", def.PaqueteAsignar),
			Dispositivos:        getEnv("API_DISPOSITIVOS", def.Dispositivos),
			Repuestos:           getEnv("API_REPUESTOS", def.Repuestos),
			RevisionSalidas:     getEnv("API_REVISION_SALIDAS", def.RevisionSalidas),
			Salidas:             getEnv("API_SALIDAS", def.Salidas),
			RechazarDispositivo: getEnv("API_RECHAZAR_DISPOSITIVO", def.RechazarDispositivo),
			HistorialSalida:     getEnv("API_HISTORIAL_SALIDA", def.HistorialSalida),
		},

		Sandbox: Sandbox{
			Port:         getEnv("APP_PORT", "9000"),
			JWTSecret:    getEnv("JWT_SECRET", ""),
			CSRFToken:    getEnv("SANDBOX_CSRF_TOKEN", getEnv("CSRF_TOKEN", "")),
			DBDriver:     getEnv("DB_DRIVER", "sqlite"),
			DBHost:       getEnv("DB_HOST", "localhost"),
			DBPort:       getEnv("DB_PORT", "5432"),
			DBUser:       getEnv("DB_USER", "inventario"),
			DBPassword:   getEnv("DB_PASSWORD", ""),
			DBName:       getEnv("DB_NAME", "file::memory:?cache=shared"),
			Seed:         getEnvAsBool("SANDBOX_SEED", true),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 465),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			NotifyTo:     getEnvAsList("NOTIFY_TO"),
		},
	}
	return cfg
}

func (c *Config) Validate() error {
	return validate.Struct(c)
}

// getEnv reads an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
