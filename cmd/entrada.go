package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"inventario-app/controllers"
	"inventario-app/models"
)

var entradasExport string

var entradasCmd = &cobra.Command{
	Use:   "entradas [clave=valor...]",
	Short: "List intakes, filtered by the given fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseForm(args)
		if err != nil {
			return err
		}
		d, err := deps(cmd)
		if err != nil {
			return err
		}
		page, err := controllers.NewEntradaList(cmd.Context(), d, filters)
		if err != nil {
			return err
		}
		if err := printTable(cmd, page.Grid); err != nil {
			return err
		}
		return exportTo(entradasExport, page.Export)
	},
}

var entradaCmd = &cobra.Command{
	Use:   "entrada",
	Short: "Work on one intake",
}

var entradaVerCmd = &cobra.Command{
	Use:   "ver <entrada>",
	Short: "Show the line items of a finished intake",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pk, err := intArg(args[0], "entrada")
		if err != nil {
			return err
		}
		d, err := deps(cmd)
		if err != nil {
			return err
		}
		page, err := controllers.NewEntradaDetail(cmd.Context(), d, pk)
		if err != nil {
			return err
		}
		return printTable(cmd, page.Grid)
	},
}

var entradaEditarCmd = &cobra.Command{
	Use:   "editar <entrada>",
	Short: "Show the intake being built with the actions of every line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pk, err := intArg(args[0], "entrada")
		if err != nil {
			return err
		}
		page, err := entradaUpdate(cmd, pk)
		if err != nil {
			return err
		}
		return printTable(cmd, page.Grid)
	},
}

func entradaUpdate(cmd *cobra.Command, pk int) (*controllers.EntradaUpdate, error) {
	d, err := deps(cmd)
	if err != nil {
		return nil, err
	}
	return controllers.NewEntradaUpdate(cmd.Context(), d, pk)
}

func createCmd(use string, r models.Resource) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <entrada> <detalle>",
		Short: fmt.Sprintf("Create the %s of a line item", r),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := intArgs(args, "entrada", "detalle")
			if err != nil {
				return err
			}
			page, err := entradaUpdate(cmd, ids[0])
			if err != nil {
				return err
			}
			outcome, err := page.Create(cmd.Context(), ids[1], r)
			return finish(cmd, outcome, err)
		},
	}
}

var entradaImprimirCmd = &cobra.Command{
	Use:   "imprimir-qr <entrada> <detalle> <dispositivo|repuestos>",
	Short: "Request the labels of a line item",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := intArgs(args, "entrada", "detalle")
		if err != nil {
			return err
		}
		r := models.Resource(args[2])
		if r != models.Dispositivos && r != models.Repuestos {
			return errors.Errorf("unknown label type %q", args[2])
		}
		page, err := entradaUpdate(cmd, ids[0])
		if err != nil {
			return err
		}
		if err := page.PrintLabels(cmd.Context(), ids[1], r); err != nil {
			return err
		}
		return printTable(cmd, page.Grid)
	},
}

var entradaTerminarCmd = &cobra.Command{
	Use:   "terminar <entrada>",
	Short: "Close the intake",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pk, err := intArg(args[0], "entrada")
		if err != nil {
			return err
		}
		page, err := entradaUpdate(cmd, pk)
		if err != nil {
			return err
		}
		outcome, err := page.Finish(cmd.Context())
		return finish(cmd, outcome, err)
	},
}

var entradaAgregarCmd = &cobra.Command{
	Use:   "agregar-detalle <entrada> clave=valor...",
	Short: "Add a line item to the intake",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pk, err := intArg(args[0], "entrada")
		if err != nil {
			return err
		}
		form, err := parseForm(args[1:])
		if err != nil {
			return err
		}
		page, err := entradaUpdate(cmd, pk)
		if err != nil {
			return err
		}
		if err := page.AddLine(cmd.Context(), form); err != nil {
			return err
		}
		return printTable(cmd, page.Grid)
	},
}

var detalleCmd = &cobra.Command{
	Use:   "detalle",
	Short: "Work on one line item",
}

var detalleEditarCmd = &cobra.Command{
	Use:   "editar <detalle> [clave=valor...]",
	Short: "Edit a line item; without fields it shows the current values",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := intArg(args[0], "detalle")
		if err != nil {
			return err
		}
		form, err := parseForm(args[1:])
		if err != nil {
			return err
		}
		d, err := deps(cmd)
		if err != nil {
			return err
		}
		f, err := controllers.NewDetalleForm(cmd.Context(), d, id)
		if err != nil {
			return err
		}
		if len(form) == 0 {
			out := cmd.OutOrStdout()
			for _, key := range []string{"tdispositivo", "util", "repuesto", "desecho", "total", "descripcion"} {
				fmt.Fprintf(out, "%s: %s\n", key, f.Detalle.Field(key))
			}
			if locked := f.Locked(); len(locked) > 0 {
				fmt.Fprintf(out, "bloqueados: %v\n", locked)
			}
			return nil
		}
		return f.Submit(cmd.Context(), form)
	},
}

func init() {
	entradasCmd.Flags().StringVar(&entradasExport, "xlsx", "", "also write the list to this spreadsheet")

	entradaCmd.AddCommand(
		entradaVerCmd,
		entradaEditarCmd,
		createCmd("crear-dispositivos", models.Dispositivos),
		createCmd("crear-repuestos", models.Repuestos),
		entradaImprimirCmd,
		entradaTerminarCmd,
		entradaAgregarCmd,
	)
	detalleCmd.AddCommand(detalleEditarCmd)
	rootCmd.AddCommand(entradasCmd, entradaCmd, detalleCmd)
}
