package cli

import (
	"fmt"

	"github.com/abgdnv/inventory/internal/auth"
	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/spf13/cobra"
)

func newUsersCmd(opts *options) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the admin and employee accounts (admin)",
		Long: `Manage the accounts stored in the admin and employee credential files.

Passwords are stored in plaintext. Usernames are unique across both files.

Examples:
  inventoryctl users list employee
  inventoryctl users add employee maria s3cret
  inventoryctl users passwd admin admin n3wpass
  inventoryctl users delete employee maria`,
	}
	usersCmd.AddCommand(
		&cobra.Command{
			Use:   "list <role>",
			Short: "List the usernames of a role",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, role, err := opts.openAsAdmin(cmd, args[0])
				if err != nil {
					return err
				}
				names, err := s.directory.List(role)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), names)
				}
				for _, name := range names {
					printf(cmd.OutOrStdout(), "%s\n", name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <role> <username> <password>",
			Short: "Add an account",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, role, err := opts.openAsAdmin(cmd, args[0])
				if err != nil {
					return err
				}
				if err := s.directory.Add(role, args[1], args[2]); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "%s %s added.\n", role, args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "passwd <role> <username> <password>",
			Short: "Change the password of an account",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, role, err := opts.openAsAdmin(cmd, args[0])
				if err != nil {
					return err
				}
				if err := s.directory.SetPassword(role, args[1], args[2]); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Password of %s %s changed.\n", role, args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <role> <username>",
			Short: "Delete an account",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, role, err := opts.openAsAdmin(cmd, args[0])
				if err != nil {
					return err
				}
				user, _ := opts.credentials()
				if role.IsAdmin() && args[1] == user {
					return fmt.Errorf("can't delete the account in use: %w", perrors.ErrPermissionDenied)
				}
				if err := s.directory.Delete(role, args[1]); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "%s %s deleted.\n", role, args[1])
				return nil
			},
		},
	)
	return usersCmd
}

// openAsAdmin opens a session that must belong to an admin and parses the role argument.
func (o *options) openAsAdmin(cmd *cobra.Command, roleArg string) (*session, auth.Role, error) {
	role, err := auth.ParseRole(roleArg)
	if err != nil {
		return nil, "", err
	}
	s, err := o.open(cmd)
	if err != nil {
		return nil, "", err
	}
	if !s.role.IsAdmin() {
		return nil, "", fmt.Errorf("managing users needs an admin account: %w", perrors.ErrPermissionDenied)
	}
	return s, role, nil
}
