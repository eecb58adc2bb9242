package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"H2Tank/internal/calc/autodesign"
	"H2Tank/internal/calc/batch"
	"H2Tank/internal/calc/composite"
	"H2Tank/internal/calc/importer"
	"H2Tank/internal/calc/permeation"
	"H2Tank/internal/calc/reliability"
	"H2Tank/internal/calc/report"
	"H2Tank/internal/calc/vessel"
	"H2Tank/internal/logging"
	"H2Tank/internal/materials"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	materialsFile string
	verbose       bool

	log *zap.Logger
	lib *materials.Library
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	root := &cobra.Command{
		Use:          "h2calc",
		Short:        "Hydrogen pressure vessel design calculators",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.verbose {
				logger, err := logging.New(zapcore.DebugLevel)
				if err != nil {
					return err
				}
				a.log = logger
			}
			lib, err := materials.Load(a.materialsFile)
			if err != nil {
				return err
			}
			a.lib = lib
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.materialsFile, "materials", "", "YAML material table replacing the built-in one")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging to stderr")

	root.AddCommand(
		a.stressCmd(),
		a.domeCmd(),
		a.compositeCmd(),
		a.permeationCmd(),
		a.lossCmd(),
		a.reliabilityCmd(),
		a.burstCmd(),
		a.batchCmd(),
		a.reportCmd(),
		a.sizeCmd(),
		a.materialsCmd(),
	)
	return root
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) stressCmd() *cobra.Command {
	var in vessel.Input
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Thin-wall hoop, axial and radial stress of a cylinder",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := vessel.Calculate(in)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().Float64Var(&in.PressureMPa, "pressure", 70, "Internal pressure, MPa")
	cmd.Flags().Float64Var(&in.RadiusM, "radius", 0.175, "Mean radius, m")
	cmd.Flags().Float64Var(&in.ThicknessM, "thickness", 0.0245, "Wall thickness, m")
	return cmd
}

func (a *app) domeCmd() *cobra.Command {
	var in vessel.DomeInput
	cmd := &cobra.Command{
		Use:   "dome",
		Short: "Geodesic isotensoid dome profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := vessel.CalculateDome(in)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().Float64Var(&in.CylinderRadiusM, "radius", 0.175, "Cylinder radius, m")
	cmd.Flags().Float64Var(&in.BossRadiusM, "boss", 0.025, "Polar boss radius, m")
	cmd.Flags().Float64Var(&in.NettingAngleDeg, "angle", 0, "Cylinder winding angle, deg (0 selects the netting angle)")
	cmd.Flags().IntVar(&in.Points, "points", 50, "Profile points")
	return cmd
}

func (a *app) compositeCmd() *cobra.Command {
	var (
		in  composite.Input
		f12 float64
	)
	cmd := &cobra.Command{
		Use:   "composite",
		Short: "Tsai-Wu and Hashin indices for a layup",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("f12") {
				in.Interaction = &f12
			}
			res, err := composite.Calculate(in, a.lib)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().Float64Var(&in.HoopMPa, "hoop", 500, "Laminate hoop stress, MPa")
	cmd.Flags().Float64Var(&in.AxialMPa, "axial", 250, "Laminate axial stress, MPa")
	cmd.Flags().Float64SliceVar(&in.PlyAngles, "angles", nil, "Ply angles from the vessel axis, deg")
	cmd.Flags().StringVar(&in.Fibre, "fibre", batch.DefaultFibre, "Fibre system from the material table")
	cmd.Flags().Float64Var(&f12, "f12", composite.DefaultInteraction, "Normalised Tsai-Wu interaction term")
	return cmd
}

func (a *app) permeationCmd() *cobra.Command {
	var (
		in   permeation.Input
		temp float64
	)
	cmd := &cobra.Command{
		Use:   "permeation",
		Short: "Steady-state hydrogen permeation through the liner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("temperature") {
				in.TemperatureC = &temp
			}
			res, err := permeation.Calculate(in, a.lib)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&in.Liner, "liner", batch.DefaultLiner, "Liner material")
	cmd.Flags().Float64Var(&in.LinerThicknessMM, "liner-thickness", batch.DefaultLinerThicknessMM, "Liner thickness, mm")
	cmd.Flags().Float64Var(&in.RadiusMM, "radius", 175, "Inner radius, mm")
	cmd.Flags().Float64Var(&in.LengthMM, "length", 1500, "Cylinder length, mm")
	cmd.Flags().Float64Var(&in.PressureBar, "pressure", 700, "Working pressure, bar")
	cmd.Flags().Float64Var(&temp, "temperature", permeation.ReferenceTempC, "Gas temperature, °C")
	cmd.Flags().Float64Var(&in.LimitNmLhrL, "limit", permeation.DefaultLimit, "Allowed rate, NmL/hr/L")
	return cmd
}

func (a *app) lossCmd() *cobra.Command {
	var (
		in   permeation.LossInput
		temp float64
	)
	cmd := &cobra.Command{
		Use:   "loss",
		Short: "Pressure lost to permeation over time",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("temperature") {
				in.TemperatureC = &temp
			}
			res, err := permeation.CalculateLoss(in)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().Float64Var(&in.InitialBar, "initial", 700, "Initial pressure, bar")
	cmd.Flags().Float64Var(&in.MinBar, "min", 0, "Minimum usable pressure, bar")
	cmd.Flags().Float64Var(&in.RateNmLhrL, "rate", permeation.DefaultLimit, "Permeation rate, NmL/hr/L")
	cmd.Flags().Float64Var(&in.Hours, "hours", 1000, "Elapsed time, h")
	cmd.Flags().Float64Var(&temp, "temperature", permeation.ReferenceTempC, "Gas temperature, °C")
	return cmd
}

func (a *app) reliabilityCmd() *cobra.Command {
	var (
		in                     reliability.DesignInput
		seed                   uint64
		precomputed            float64
		strengthCOV, stressCOV float64
	)
	cmd := &cobra.Command{
		Use:   "reliability",
		Short: "Monte-Carlo stress-strength failure probability",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.StrengthCOV, in.StressCOV = &strengthCOV, &stressCOV
			if cmd.Flags().Changed("seed") {
				in.Seed = &seed
			}
			if cmd.Flags().Changed("precomputed") {
				in.PrecomputedPFailure = &precomputed
			}
			var (
				res reliability.Result
				err error
			)
			if in.PressureMPa > 0 {
				res, err = reliability.DesignReliability(in, nil)
			} else {
				res, err = reliability.Calculate(in.Input, nil)
			}
			if err != nil {
				return err
			}
			a.log.Debug("reliability estimate", zap.Int("samples", res.Samples), zap.Int("failures", res.Failures))
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().Float64Var(&in.DesignStressMPa, "stress", 0, "Design stress, MPa")
	cmd.Flags().Float64Var(&in.PressureMPa, "pressure", 0, "Derive the design stress from this pressure, MPa")
	cmd.Flags().Float64Var(&in.RadiusM, "radius", 0, "Radius for --pressure, m")
	cmd.Flags().Float64Var(&in.ThicknessM, "thickness", 0, "Wall thickness for --pressure, m")
	cmd.Flags().Float64Var(&in.MaterialStrengthMPa, "strength", 2450, "Mean material strength, MPa")
	cmd.Flags().Float64Var(&strengthCOV, "strength-cov", reliability.DefaultCOV, "Strength coefficient of variation")
	cmd.Flags().Float64Var(&stressCOV, "stress-cov", reliability.DefaultCOV, "Stress coefficient of variation")
	cmd.Flags().IntVar(&in.Samples, "samples", reliability.DefaultSamples, "Monte-Carlo samples")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Fix the random sequence")
	cmd.Flags().Float64Var(&precomputed, "precomputed", 0, "Externally computed failure probability to report alongside")
	return cmd
}

func (a *app) burstCmd() *cobra.Command {
	var (
		in   reliability.BurstInput
		seed uint64
		cov  float64
	)
	cmd := &cobra.Command{
		Use:   "burst",
		Short: "Burst pressure distribution, histogram and ratio check",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.COV = &cov
			if cmd.Flags().Changed("seed") {
				in.Seed = &seed
			}
			res, err := reliability.Burst(in, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().Float64Var(&in.MeanBurstMPa, "mean", 175, "Mean burst pressure, MPa")
	cmd.Flags().Float64Var(&cov, "cov", reliability.DefaultCOV, "Coefficient of variation")
	cmd.Flags().IntVar(&in.Samples, "samples", reliability.DefaultBurstSamples, "Monte-Carlo samples")
	cmd.Flags().Float64Var(&in.BinWidthMPa, "bin-width", 5, "Histogram bin width, MPa")
	cmd.Flags().Float64Var(&in.NominalWorkingMPa, "nwp", 70, "Nominal working pressure, MPa (0 skips the check)")
	cmd.Flags().Float64Var(&in.MinBurstRatio, "ratio", reliability.MinBurstRatio, "Required burst ratio")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Fix the random sequence")
	return cmd
}

func (a *app) batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <designs.xlsx>",
		Short: "Evaluate every design in a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			sheet, err := importer.Read(f)
			if err != nil {
				return err
			}
			for _, s := range sheet.Skipped {
				a.log.Warn("row skipped", zap.Int("row", s.Row), zap.String("reason", s.Reason))
			}
			sum, err := batch.Evaluate(context.Background(), sheet.Designs, a.lib)
			if err != nil {
				return err
			}
			return printJSON(cmd, importer.Result{Summary: sum, Skipped: sheet.Skipped})
		},
	}
}

func designFlags(cmd *cobra.Command, d *batch.Design) {
	cmd.Flags().StringVar(&d.Name, "name", "", "Design name")
	cmd.Flags().Float64Var(&d.RadiusMM, "radius", 175, "Radius, mm")
	cmd.Flags().Float64Var(&d.LengthMM, "length", 1500, "Cylinder length, mm")
	cmd.Flags().Float64Var(&d.ThicknessMM, "thickness", 30, "Composite wall thickness, mm")
	cmd.Flags().Float64Var(&d.PressureBar, "pressure", 700, "Working pressure, bar")
	cmd.Flags().Float64Var(&d.WindingAngleDeg, "angle", 0, "Helical winding angle, deg (0 selects the netting angle)")
	cmd.Flags().StringVar(&d.Liner, "liner", batch.DefaultLiner, "Liner material")
	cmd.Flags().StringVar(&d.Fibre, "fibre", batch.DefaultFibre, "Fibre system")
	cmd.Flags().Float64Var(&d.LinerThicknessMM, "liner-thickness", batch.DefaultLinerThicknessMM, "Liner thickness, mm")
}

func (a *app) reportCmd() *cobra.Command {
	var (
		d    batch.Design
		meta report.Meta
		out  string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Evaluate one design and write the PDF report",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := batch.EvaluateDesign(d, a.lib)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.Render(f, meta, res, time.Now()); err != nil {
				f.Close()
				return fmt.Errorf("render report: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (passed: %t)\n", out, res.Passed)
			return nil
		},
	}
	designFlags(cmd, &d)
	cmd.Flags().StringVar(&meta.Project, "project", "", "Project name")
	cmd.Flags().StringVar(&meta.Author, "author", "", "Author")
	cmd.Flags().StringVar(&meta.Title, "title", "", "Report title")
	cmd.Flags().StringVarP(&out, "out", "o", "report.pdf", "Output file")
	return cmd
}

func (a *app) sizeCmd() *cobra.Command {
	var in autodesign.Input
	cmd := &cobra.Command{
		Use:   "size",
		Short: "Size the composite wall and liner for a working pressure",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := autodesign.Size(in, a.lib)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Design name")
	cmd.Flags().Float64Var(&in.RadiusMM, "radius", 175, "Radius, mm")
	cmd.Flags().Float64Var(&in.LengthMM, "length", 1500, "Cylinder length, mm")
	cmd.Flags().Float64Var(&in.PressureBar, "pressure", 700, "Working pressure, bar")
	cmd.Flags().Float64Var(&in.WindingAngleDeg, "angle", 0, "Helical winding angle, deg (0 selects the netting angle)")
	cmd.Flags().StringVar(&in.Fibre, "fibre", batch.DefaultFibre, "Fibre system")
	cmd.Flags().StringVar(&in.Liner, "liner", batch.DefaultLiner, "Liner material")
	cmd.Flags().Float64Var(&in.BurstRatio, "ratio", reliability.MinBurstRatio, "Burst to working pressure ratio")
	cmd.Flags().Float64Var(&in.LimitNmLhrL, "limit", permeation.DefaultLimit, "Allowed permeation rate, NmL/hr/L")
	return cmd
}

func (a *app) materialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "Print the material table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, a.lib)
		},
	}
}
