package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"inventario-app/controllers"
)

var (
	dispositivosExport string
	pickerEtapa        string
	pickerTipo         string
	pickerSlug         string
)

var repuestosCmd = &cobra.Command{
	Use:   "repuestos",
	Short: "Available spare parts",
}

func repuestoList(cmd *cobra.Command, tipo string) (*controllers.RepuestoList, error) {
	d, err := deps(cmd)
	if err != nil {
		return nil, err
	}
	page := controllers.NewRepuestoList(d)
	return page, page.SelectTipo(cmd.Context(), tipo)
}

var repuestosListarCmd = &cobra.Command{
	Use:   "listar <tipo>",
	Short: "List the available spare parts of a type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := repuestoList(cmd, args[0])
		if err != nil {
			return err
		}
		return printTable(cmd, page.Grid())
	},
}

var repuestosAsignarCmd = &cobra.Command{
	Use:   "asignar <tipo> <repuesto>",
	Short: "Give a spare part to a device; the triage is asked for",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := intArg(args[1], "repuesto")
		if err != nil {
			return err
		}
		page, err := repuestoList(cmd, args[0])
		if err != nil {
			return err
		}
		outcome, err := page.Assign(cmd.Context(), id)
		return finish(cmd, outcome, err)
	},
}

var dispositivosCmd = &cobra.Command{
	Use:   "dispositivos [clave=valor...]",
	Short: "Search devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseForm(args)
		if err != nil {
			return err
		}
		d, err := deps(cmd)
		if err != nil {
			return err
		}
		page := controllers.NewDispositivoList(d)
		if err := page.Search(cmd.Context(), filters); err != nil {
			return err
		}
		if err := printTable(cmd, page.Grid); err != nil {
			return err
		}
		return exportTo(dispositivosExport, page.Export)
	},
}

var pickerCmd = &cobra.Command{
	Use:   "picker <termino>",
	Short: "Search devices by triage the way the movement forms do",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := deps(cmd)
		if err != nil {
			return err
		}
		opts, err := controllers.NewDispositivoPicker(d, pickerEtapa, pickerTipo, pickerSlug).Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, o := range opts {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", o.ID, o.Text)
		}
		return nil
	},
}

func init() {
	dispositivosCmd.Flags().StringVar(&dispositivosExport, "xlsx", "", "also write the result to this spreadsheet")
	pickerCmd.Flags().StringVar(&pickerEtapa, "etapa", "", "stage of the devices")
	pickerCmd.Flags().StringVar(&pickerTipo, "tipo", "", "device type")
	pickerCmd.Flags().StringVar(&pickerSlug, "slug", "dispositivo", "prefix of the search key")

	repuestosCmd.AddCommand(repuestosListarCmd, repuestosAsignarCmd)
	rootCmd.AddCommand(repuestosCmd, dispositivosCmd, pickerCmd)
}
