package slugcmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshetty-99/ai-marketplace-sub008/domains/slugs/be/repo"
	"github.com/rshetty-99/ai-marketplace-sub008/domains/slugs/be/service"
	"github.com/rshetty-99/ai-marketplace-sub008/platform/go/persistence"
	"github.com/rshetty-99/ai-marketplace-sub008/platform/go/slug"
)

// Command groups slug engine helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slug",
		Short: "Slug utilities (reserve, rename, resolve, suggest, history)",
	}

	cmd.AddCommand(
		reserveCommand(),
		renameCommand(),
		resolveCommand(),
		suggestCommand(),
		historyCommand(),
		checkCommand(),
	)
	return cmd
}

type engineFlags struct {
	databaseURL string
	policyPath  string
}

func (f *engineFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.databaseURL, "database-url", "", "PostgreSQL connection string")
	c.Flags().StringVar(&f.policyPath, "policy", "", "Path to a slug policy JSON file (defaults to the built-in policy)")
	_ = c.MarkFlagRequired("database-url")
}

// withEngine wires pool, store, repo, and service, runs fn, and tears down.
func (f *engineFlags) withEngine(ctx context.Context, fn func(svc *service.Service) error) error {
	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: f.databaseURL})
	if err != nil {
		return fmt.Errorf("init pool: %w", err)
	}
	defer persistence.ClosePool(pool)

	store, err := persistence.NewSlugStore(ctx, pool)
	if err != nil {
		return fmt.Errorf("init slug store: %w", err)
	}

	policy := slug.DefaultPolicy()
	if f.policyPath != "" {
		policy, err = slug.LoadPolicy(f.policyPath)
		if err != nil {
			return fmt.Errorf("load policy: %w", err)
		}
	}

	return fn(service.New(repo.NewPostgresRepository(store), policy))
}

func parseOwnerFlags(ownerID, ownerType string) (service.Owner, error) {
	parsed, err := service.ParseOwnerType(ownerType)
	if err != nil {
		return service.Owner{}, err
	}
	if ownerID == "" {
		return service.Owner{}, fmt.Errorf("owner id is required")
	}
	return service.Owner{ID: ownerID, Type: parsed}, nil
}

func reserveCommand() *cobra.Command {
	var (
		flags     engineFlags
		ownerID   string
		ownerType string
		value     string
	)

	c := &cobra.Command{
		Use:   "reserve",
		Short: "Reserve an initial slug for an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseOwnerFlags(ownerID, ownerType)
			if err != nil {
				return err
			}
			return flags.withEngine(context.Background(), func(svc *service.Service) error {
				a, err := svc.Reserve(context.Background(), owner, value)
				if err != nil {
					return fmt.Errorf("reserve slug: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reserved %q for %s %s\n", a.Slug, a.Owner.Type, a.Owner.ID)
				return nil
			})
		},
	}

	flags.register(c)
	c.Flags().StringVar(&ownerID, "owner-id", "", "Owner identifier")
	c.Flags().StringVar(&ownerType, "owner-type", "", "Owner type (freelancer, vendor, organization)")
	c.Flags().StringVar(&value, "slug", "", "Slug to reserve")

	return c
}

func renameCommand() *cobra.Command {
	var (
		flags     engineFlags
		ownerID   string
		ownerType string
		value     string
	)

	c := &cobra.Command{
		Use:   "rename",
		Short: "Move an owner to a new slug, leaving a redirect behind",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseOwnerFlags(ownerID, ownerType)
			if err != nil {
				return err
			}
			return flags.withEngine(context.Background(), func(svc *service.Service) error {
				a, err := svc.Rename(context.Background(), owner, value)
				if err != nil {
					return fmt.Errorf("rename slug: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s %s to %q (redirects: %s)\n",
					a.Owner.Type, a.Owner.ID, a.Slug, strings.Join(a.RedirectFrom, ", "))
				return nil
			})
		},
	}

	flags.register(c)
	c.Flags().StringVar(&ownerID, "owner-id", "", "Owner identifier")
	c.Flags().StringVar(&ownerType, "owner-type", "", "Owner type (freelancer, vendor, organization)")
	c.Flags().StringVar(&value, "slug", "", "New slug")

	return c
}

func resolveCommand() *cobra.Command {
	var flags engineFlags

	c := &cobra.Command{
		Use:   "resolve <slug>",
		Short: "Resolve a slug, current or historical, to its canonical target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withEngine(context.Background(), func(svc *service.Service) error {
				res, err := svc.ResolveRedirect(context.Background(), args[0])
				if err != nil {
					return fmt.Errorf("resolve slug: %w", err)
				}
				switch {
				case !res.Found:
					fmt.Fprintf(cmd.OutOrStdout(), "%q is not known\n", args[0])
				case res.RedirectTo != "":
					fmt.Fprintf(cmd.OutOrStdout(), "%q redirects to %q\n", args[0], res.RedirectTo)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%q is the active slug\n", args[0])
				}
				return nil
			})
		},
	}

	flags.register(c)
	return c
}

func suggestCommand() *cobra.Command {
	var (
		flags engineFlags
		count int
	)

	c := &cobra.Command{
		Use:   "suggest <base>",
		Short: "Suggest available slug variants for a base value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withEngine(context.Background(), func(svc *service.Service) error {
				suggestions, err := svc.Suggest(context.Background(), args[0], count)
				if err != nil {
					return fmt.Errorf("suggest slugs: %w", err)
				}
				for _, s := range suggestions {
					fmt.Fprintln(cmd.OutOrStdout(), s)
				}
				return nil
			})
		},
	}

	flags.register(c)
	c.Flags().IntVar(&count, "count", 0, "Number of suggestions (defaults to 5)")

	return c
}

func historyCommand() *cobra.Command {
	var (
		flags     engineFlags
		ownerID   string
		ownerType string
	)

	c := &cobra.Command{
		Use:   "history",
		Short: "Show an owner's slug history, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseOwnerFlags(ownerID, ownerType)
			if err != nil {
				return err
			}
			return flags.withEngine(context.Background(), func(svc *service.Service) error {
				history, err := svc.History(context.Background(), owner)
				if err != nil {
					return fmt.Errorf("fetch history: %w", err)
				}
				for _, a := range history {
					marker := " "
					if a.IsActive {
						marker = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s (created %s)\n", marker, a.Slug, a.CreatedAt.Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	}

	flags.register(c)
	c.Flags().StringVar(&ownerID, "owner-id", "", "Owner identifier")
	c.Flags().StringVar(&ownerType, "owner-type", "", "Owner type (freelancer, vendor, organization)")

	return c
}

func checkCommand() *cobra.Command {
	var flags engineFlags

	c := &cobra.Command{
		Use:   "check <slug>",
		Short: "Validate a slug and report availability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withEngine(context.Background(), func(svc *service.Service) error {
				result, err := svc.ValidateAndCheck(context.Background(), args[0], nil)
				if err != nil {
					return fmt.Errorf("check slug: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "valid: %t  available: %t\n", result.IsValid, result.IsAvailable)
				for _, v := range result.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", v.Code, v.Message)
				}
				if len(result.Suggestions) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "suggestions: %s\n", strings.Join(result.Suggestions, ", "))
				}
				return nil
			})
		},
	}

	flags.register(c)
	return c
}
