package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
)

func newLimitsCommand(root *rootOptions) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "limits",
		Short: "Print the effective workload limits for a staff role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			staffRole := models.StaffRole(strings.ToLower(strings.TrimSpace(role)))
			if !staffRole.Valid() {
				return fmt.Errorf("unknown staff role %q", role)
			}
			in, err := loadInput(root.input, root.logger(cmd))
			if err != nil {
				return err
			}
			limits := scheduler.ResolveLimits(in.Constraints, in.DepartmentID, staffRole)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(limits)
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", string(models.StaffRoleProfessor), "assistant_professor, professor or hod")
	return cmd
}
