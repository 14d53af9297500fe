package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"inventario-app/confirm"
	"inventario-app/controllers"
	"inventario-app/terminal"
)

var paqueteTipo string

var salidaCmd = &cobra.Command{
	Use:   "salida",
	Short: "Outbound batches, their packages and their review",
}

var salidaDetalleCmd = &cobra.Command{
	Use:   "detalle <salida>",
	Short: "Show the lines of an outbound batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := salidaDetalle(cmd, args[0])
		if err != nil {
			return err
		}
		return printTable(cmd, page.Grid)
	},
}

func salidaDetalle(cmd *cobra.Command, raw string) (*controllers.SalidaDetalle, error) {
	pk, err := intArg(raw, "salida")
	if err != nil {
		return nil, err
	}
	d, err := deps(cmd)
	if err != nil {
		return nil, err
	}
	return controllers.NewSalidaDetalle(cmd.Context(), d, pk)
}

var salidaAgregarCmd = &cobra.Command{
	Use:   "agregar-detalle <salida> clave=valor...",
	Short: "Add a line to an outbound batch",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := parseForm(args[1:])
		if err != nil {
			return err
		}
		page, err := salidaDetalle(cmd, args[0])
		if err != nil {
			return err
		}
		if err := page.AddLine(cmd.Context(), form); err != nil {
			return err
		}
		return printTable(cmd, page.Grid)
	},
}

var salidaTerminarCmd = &cobra.Command{
	Use:   "terminar <salida> [clave=valor...]",
	Short: "Close an outbound batch and send it to review",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := parseForm(args[1:])
		if err != nil {
			return err
		}
		page, err := salidaDetalle(cmd, args[0])
		if err != nil {
			return err
		}
		outcome, err := page.Finish(cmd.Context(), form)
		return finish(cmd, outcome, err)
	},
}

// paqueteAsignacion opens the package screen with the --tipo filter
// applied.
func paqueteAsignacion(cmd *cobra.Command, raw string) (*controllers.PaqueteAsignacion, error) {
	pk, err := intArg(raw, "salida")
	if err != nil {
		return nil, err
	}
	d, err := deps(cmd)
	if err != nil {
		return nil, err
	}
	page, err := controllers.NewPaqueteAsignacion(cmd.Context(), d, pk)
	if err != nil {
		return nil, err
	}
	return page, page.SelectTipo(cmd.Context(), paqueteTipo)
}

var salidaPaquetesCmd = &cobra.Command{
	Use:   "paquetes <salida>",
	Short: "Show the pending packages of a device type and the devices left to assign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := paqueteAsignacion(cmd, args[0])
		if err != nil {
			return err
		}
		if !page.PanelVisible() {
			fmt.Fprintln(cmd.OutOrStdout(), "Seleccione un tipo de dispositivo con --tipo")
			return nil
		}
		if err := printTable(cmd, page.Grid); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		for _, o := range page.Options() {
			fmt.Fprintln(out, o.Text)
		}
		return nil
	},
}

var salidaAprobarPaqueteCmd = &cobra.Command{
	Use:   "aprobar-paquete <salida> <paquete>",
	Short: "Approve a pending package and its devices",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := intArg(args[1], "paquete")
		if err != nil {
			return err
		}
		page, err := paqueteAsignacion(cmd, args[0])
		if err != nil {
			return err
		}
		outcome, err := page.Approve(cmd.Context(), id)
		return finish(cmd, outcome, err)
	},
}

var salidaAsignarCmd = &cobra.Command{
	Use:   "asignar <salida> <paquete> <triage>",
	Short: "Put a device in a package",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := intArg(args[1], "paquete")
		if err != nil {
			return err
		}
		page, err := paqueteAsignacion(cmd, args[0])
		if err != nil {
			return err
		}
		if err := page.Assign(cmd.Context(), id, args[2]); err != nil {
			return err
		}
		return printTable(cmd, page.Grid)
	},
}

var salidaRevisionesCmd = &cobra.Command{
	Use:   "revisiones",
	Short: "List outbound batches waiting for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := deps(cmd)
		if err != nil {
			return err
		}
		page, err := controllers.NewSalidasRevision(cmd.Context(), d)
		if err != nil {
			return err
		}
		return printTable(cmd, page.Grid)
	},
}

func paquetesRevision(cmd *cobra.Command, raw string) (*controllers.PaquetesRevision, error) {
	pk, err := intArg(raw, "salida")
	if err != nil {
		return nil, err
	}
	d, err := deps(cmd)
	if err != nil {
		return nil, err
	}
	page, err := controllers.NewPaquetesRevision(cmd.Context(), d, pk)
	if err != nil {
		return nil, err
	}
	return page, page.LoadHistory(cmd.Context())
}

func printHistory(cmd *cobra.Command, rows [][]string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	return terminal.WriteTable(out, []string{"Comentario", "Fecha,Usuario"}, rows)
}

var salidaRevisionCmd = &cobra.Command{
	Use:   "revision <salida>",
	Short: "Show the approved packages of a batch and its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := paquetesRevision(cmd, args[0])
		if err != nil {
			return err
		}
		if err := printTable(cmd, page.Grid); err != nil {
			return err
		}
		return printHistory(cmd, page.History())
	},
}

func decideCmd(use, short string, decide func(*controllers.PaquetesRevision, context.Context) (confirm.Outcome, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <salida>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := paquetesRevision(cmd, args[0])
			if err != nil {
				return err
			}
			outcome, err := decide(page, cmd.Context())
			return finish(cmd, outcome, err)
		},
	}
}

var salidaHistorialCmd = &cobra.Command{
	Use:   "historial <salida>",
	Short: "Add a comment to the history of a batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := paquetesRevision(cmd, args[0])
		if err != nil {
			return err
		}
		if _, err := page.Comment(cmd.Context()); err != nil {
			return err
		}
		return printHistory(cmd, page.History())
	},
}

var salidaRechazarDispositivoCmd = &cobra.Command{
	Use:   "rechazar-dispositivo <salida> <paquete> <triage>",
	Short: "Take a device out of a package and record why",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := intArgs(args, "salida", "paquete")
		if err != nil {
			return err
		}
		d, err := deps(cmd)
		if err != nil {
			return err
		}
		page, err := controllers.NewPaqueteDetail(cmd.Context(), d, ids[0], ids[1])
		if err != nil {
			return err
		}
		if err := page.LoadHistory(cmd.Context()); err != nil {
			return err
		}
		outcome, err := page.Reject(cmd.Context(), args[2])
		if err := finish(cmd, outcome, err); err != nil {
			return err
		}
		return printHistory(cmd, page.History())
	},
}

func init() {
	for _, c := range []*cobra.Command{salidaPaquetesCmd, salidaAprobarPaqueteCmd, salidaAsignarCmd} {
		c.Flags().StringVar(&paqueteTipo, "tipo", "", "device type of the packages")
	}
	salidaAprobarPaqueteCmd.MarkFlagRequired("tipo")
	salidaAsignarCmd.MarkFlagRequired("tipo")

	salidaCmd.AddCommand(
		salidaDetalleCmd,
		salidaAgregarCmd,
		salidaTerminarCmd,
		salidaPaquetesCmd,
		salidaAprobarPaqueteCmd,
		salidaAsignarCmd,
		salidaRevisionesCmd,
		salidaRevisionCmd,
		decideCmd("aprobar", "Approve a reviewed batch", (*controllers.PaquetesRevision).Approve),
		decideCmd("rechazar", "Reject a reviewed batch", (*controllers.PaquetesRevision).Reject),
		salidaHistorialCmd,
		salidaRechazarDispositivoCmd,
	)
	rootCmd.AddCommand(salidaCmd)
}
