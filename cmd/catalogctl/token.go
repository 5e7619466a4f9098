package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/auth"
)

type tokenOptions struct {
	secret string
	role   string
	user   string
	vendor string
	ttl    time.Duration
}

func newTokenCmd() *cobra.Command {
	opts := &tokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the write endpoints",
		Long: `Mint an HS256 token signed with JWT_SECRET (or --secret).

Admins may write any listing. Vendor tokens must name the vendor they
act for and may only write that vendor and its products.`,
		Example: `  catalogctl token --role admin --user ops@abuja.example
  catalogctl token --role vendor --user ada --vendor v-wuse-fashion --ttl 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.secret == "" {
				opts.secret = os.Getenv("JWT_SECRET")
			}
			if err := opts.validate(); err != nil {
				return err
			}

			manager, err := auth.NewManager(opts.secret)
			if err != nil {
				return err
			}
			token, err := manager.Mint(opts.user, opts.role, opts.vendor, opts.ttl)
			if err != nil {
				return fmt.Errorf("mint token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&opts.secret, "secret", "", "Signing secret (default: $JWT_SECRET)")
	fl.StringVar(&opts.role, "role", auth.RoleAdmin, "Role claim: admin or vendor")
	fl.StringVar(&opts.user, "user", "", "Subject of the token")
	fl.StringVar(&opts.vendor, "vendor", "", "Vendor id the token acts for (vendor role)")
	fl.DurationVar(&opts.ttl, "ttl", 12*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (o *tokenOptions) validate() error {
	switch {
	case o.secret == "":
		return errors.New("no signing secret: set JWT_SECRET or pass --secret")
	case o.role != auth.RoleAdmin && o.role != auth.RoleVendor:
		return fmt.Errorf("unknown role %q", o.role)
	case o.role == auth.RoleVendor && o.vendor == "":
		return errors.New("--vendor is required for vendor tokens")
	case o.ttl <= 0:
		return errors.New("--ttl must be positive")
	}
	return nil
}
