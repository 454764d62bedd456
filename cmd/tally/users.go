package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tallyhq/tally/internal/listquery"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/tui"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Browse user accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List cached users",
		RunE:  runUsersList,
	}
	addListFlags(list)
	list.Flags().String("role", "", "filter by role (admin, approver, clerk, viewer)")
	list.Flags().String("status", "", "filter by status (active, inactive)")

	cmd.AddCommand(list)
	return cmd
}

func userStatus(u model.User) string {
	if u.Active {
		return "active"
	}
	return "inactive"
}

func usersListSpec() listSpec[model.User] {
	return listSpec[model.User]{
		title:   "Users",
		columns: []string{"Name", "Email", "Phone", "Role", "Status", "Last Login"},
		row: func(u model.User) []string {
			lastLogin := "never"
			if !u.LastLogin.IsZero() {
				lastLogin = u.LastLogin.Format("2006-01-02 15:04")
			}
			return []string{
				u.Name,
				u.Email,
				u.Phone,
				string(u.Role),
				userStatus(u),
				lastLogin,
			}
		},
		cfg: listquery.Config[model.User]{
			SearchFields: []listquery.Accessor[model.User]{
				func(u model.User) string { return u.Name },
				func(u model.User) string { return u.Email },
				func(u model.User) string { return u.Phone },
			},
			FilterFields: map[string]listquery.Accessor[model.User]{
				"role":   func(u model.User) string { return string(u.Role) },
				"status": userStatus,
			},
		},
		filters: []tui.Filter{
			{Name: "role", Values: []string{
				string(model.RoleAdmin), string(model.RoleApprover),
				string(model.RoleClerk), string(model.RoleViewer),
			}},
			{Name: "status", Values: []string{"active", "inactive"}},
		},
	}
}

func runUsersList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	users, err := store.GetUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	warnIfCacheEmpty(len(users))

	role, _ := cmd.Flags().GetString("role")
	status, _ := cmd.Flags().GetString("status")

	return runList(users, usersListSpec(), getListFlags(cmd), map[string]string{
		"role":   role,
		"status": status,
	})
}
