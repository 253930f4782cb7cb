package main

import (
	"fmt"
	"io"
	"os"

	"stroke-warning-system/internal/domain"
	"stroke-warning-system/internal/service"
	"stroke-warning-system/internal/training"

	"github.com/spf13/cobra"
)

const topFeatures = 10

func newImportCmd(e *env) *cobra.Command {
	var (
		file       string
		clearFirst bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import patients from a stroke dataset CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			defer e.close()

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := service.NewImportService(e.patients(), e.log).
				ImportCSV(cmd.Context(), f, service.ImportOptions{Clear: clearFirst})
			if err != nil {
				return err
			}
			if res.Cleared > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d existing patients\n", res.Cleared)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d patients from %s\n", res.Imported, file)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "brain_stroke.csv", "CSV file to import")
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "delete existing patients first")
	return cmd
}

func newClearCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			defer e.close()

			n, err := service.NewImportService(e.patients(), e.log).ClearPatients(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d patients\n", n)
			return nil
		},
	}
}

func newSeedSamplesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-samples",
		Short: "Insert the five demo patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			defer e.close()

			n, err := service.NewImportService(e.patients(), e.log).SeedSamplePatients(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d sample patients\n", n)
			return nil
		},
	}
}

func newTrainCmd(e *env) *cobra.Command {
	var csvPath, out string
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the outcome model and write its metrics",
		Long: "Trains on labelled patients from the database, falling back to the CSV " +
			"when the database has none, and writes the metrics JSON read by the data-scientist dashboard.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			defer e.close()

			if out == "" {
				out = e.cfg.Model.MetricsPath
			}
			m, err := service.NewTrainingService(e.patients(), e.log).
				Train(cmd.Context(), service.TrainRequest{CSVPath: csvPath, OutPath: out})
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), m)
			fmt.Fprintf(cmd.OutOrStdout(), "\nMetrics written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "brain_stroke.csv", "fallback CSV when the database has no labelled patients")
	cmd.Flags().StringVarP(&out, "out", "o", "", "metrics output path (default MODEL_METRICS_PATH)")
	return cmd
}

func printReport(w io.Writer, m *training.Metrics) {
	fmt.Fprintf(w, "Model: %s (source: %s, train=%d test=%d)\n\n", m.Model, m.Source, m.TrainSize, m.TestSize)
	fmt.Fprintln(w, m.ClassificationReport)
	fmt.Fprintf(w, "Accuracy:  %.3f\n", m.Accuracy)
	fmt.Fprintf(w, "Precision: %.3f\n", m.Precision)
	fmt.Fprintf(w, "Recall:    %.3f\n", m.Recall)
	fmt.Fprintf(w, "F1 score:  %.3f\n", m.F1Score)
	if m.ROCAUC != nil {
		fmt.Fprintf(w, "ROC AUC:   %.3f\n", *m.ROCAUC)
	}
	if len(m.CVScores) > 0 {
		fmt.Fprintf(w, "CV mean:   %.3f (+/- %.3f)\n", m.CVMean, m.CVStd*2)
	}
	if len(m.ConfusionMatrix) == 2 {
		fmt.Fprintf(w, "\nConfusion matrix:\n  %v\n  %v\n", m.ConfusionMatrix[0], m.ConfusionMatrix[1])
	}

	fmt.Fprintln(w, "\nTop features:")
	for i, fw := range m.FeatureImportance {
		if i == topFeatures {
			break
		}
		fmt.Fprintf(w, "  %-32s %.4f\n", fw.Feature, fw.Importance)
	}
}

func newUserCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var req service.CreateUserRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a doctor or data scientist account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			defer e.close()

			u, err := service.NewAuthService(e.users(), e.log).CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %s (id %d)\n", u.Role, u.Username, u.ID)
			return nil
		},
	}
	create.Flags().StringVarP(&req.Username, "username", "u", "", "login name")
	create.Flags().StringVarP(&req.Password, "password", "p", "", "plain-text password, stored bcrypt-hashed")
	create.Flags().StringVarP(&req.Role, "role", "r", domain.RoleDoctor,
		fmt.Sprintf("%s or %s", domain.RoleDoctor, domain.RoleDataScientist))
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)

	seed := &cobra.Command{
		Use:   "seed-defaults",
		Short: "Create the default doctor1 and datascientist1 accounts when missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			defer e.close()

			n, err := service.NewAuthService(e.users(), e.log).EnsureDefaultUsers(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d default users\n", n)
			return nil
		},
	}
	cmd.AddCommand(seed)
	return cmd
}
