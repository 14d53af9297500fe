// Package sandbox is a reference implementation of the inventory API the
// screens talk to, backed by a gorm store.
package sandbox

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"inventario-app/config"
	"inventario-app/sandbox/store"
)

type Server struct {
	app      *fiber.App
	repo     *store.Repository
	cfg      config.Sandbox
	notifier Notifier
	log      zerolog.Logger
}

func New(cfg config.Sandbox, db *gorm.DB, notifier Notifier, log zerolog.Logger) *Server {
	s := &Server{
		app:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		repo:     store.NewRepository(db),
		cfg:      cfg,
		notifier: notifier,
		log:      log,
	}
	s.routes()
	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen() error {
	s.log.Info().Str("port", s.cfg.Port).Msg("sandbox listening")
	return s.app.Listen(":" + s.cfg.Port)
}

func (s *Server) Shutdown() error { return s.app.Shutdown() }

func (s *Server) routes() {
	s.app.Use(RequestLogger(s.log))

	inv := s.app.Group("/inventario", Auth(s.cfg.JWTSecret), CSRF(s.cfg.CSRFToken))

	api := inv.Group("/api")
	api.Get("/entrada/", s.listEntradas)
	api.Post("/entrada/cuadrar/", s.finishEntrada)

	api.Get("/entradadetalle/", s.listDetalles)
	api.Post("/entradadetalle/", s.addDetalle)
	api.Get("/entradadetalle/:id/", s.getDetalle)
	api.Post("/entradadetalle/:id/crear_dispositivos/", s.createDispositivos)
	api.Post("/entradadetalle/:id/crear_repuestos/", s.createRepuestos)
	api.Post("/impresion/qr/", s.printQR)

	api.Get("/dispositivos/", s.listDispositivos)
	api.Get("/repuestos/", s.listRepuestos)
	api.Post("/repuestos/asignar_repuesto/", s.assignRepuesto)

	api.Get("/salidadetalle/", s.listSalidaDetalles)
	api.Post("/salidadetalle/", s.addSalidaDetalle)

	api.Get("/paquetes/", s.listPaquetes)
	api.Post("/paquetes/aprobar/", s.approvePaquete)
	api.Get("/paquetes/:id/", s.getPaquete)
	api.Post("/dispositivospaquete/", s.assignDispositivo)
	api.Post("/dispositivospaquetes/rechazar/", s.rejectDispositivo)

	api.Get("/revisionsalida/", s.listRevisiones)
	api.Post("/salidas/:id/aprobado/", s.approveSalida)
	api.Post("/salidas/:id/rechazado/", s.rejectSalida)

	api.Get("/historial/salida/", s.listHistorial)
	api.Post("/historial/salida/", s.addHistorial)

	// Plain form submissions of the server rendered pages.
	inv.Post("/entradadetalle/:id/editar/", s.updateDetalle)
	inv.Post("/salida/:id/", s.finishSalida)
}
