package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"veridia_hiring/internal/model"
	"veridia_hiring/internal/repository"
	"veridia_hiring/internal/service"
	"veridia_hiring/internal/utils"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cobra"
)

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	var req model.RegisterRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account directly in the database",
		Long: `Create an administrator without going through POST /api/admin/create.
The password is read from --password or, when omitted, from the first line of stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				password, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				req.Password = password
			}
			if err := binding.Validator.ValidateStruct(&req); err != nil {
				return fmt.Errorf("invalid administrator details: %w", err)
			}

			a := appFrom(cmd)
			pool, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			jwtUtil := utils.NewJWTUtil(a.cfg.JWTSecret, a.cfg.JWTExpirationHours)
			authService := service.NewAuthService(repository.NewUserRepository(pool), jwtUtil, a.cfg.AdminSecret, a.log)

			admin, err := authService.BootstrapAdmin(cmd.Context(), req)
			if errors.Is(err, service.ErrUserAlreadyExists) {
				return fmt.Errorf("an account with email %s already exists", req.Email)
			}
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Administrator %s <%s> created (id %s)\n", admin.FullName, admin.Email, admin.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&req.FullName, "name", "", "full name")
	createCmd.Flags().StringVar(&req.Email, "email", "", "email address")
	createCmd.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	createCmd.Flags().StringVar(&req.Password, "password", "", "password, at least 6 characters")
	for _, name := range []string{"name", "email", "phone"} {
		_ = createCmd.MarkFlagRequired(name)
	}

	cmd.AddCommand(createCmd)
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
