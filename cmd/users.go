package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hackmatch/internal/logger"
	"github.com/spigell/hackmatch/internal/users"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user profiles and their skills",
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a user",
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, store *users.Store, logger *zap.Logger) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			skills, _ := cmd.Flags().GetStringSlice("skills")

			password, err := readPassword()
			if err != nil {
				return err
			}

			user, err := store.Register(ctx, users.Registration{
				Username: username,
				Email:    email,
				Password: password,
				Skills:   skills,
			})
			if err != nil {
				return err
			}

			logger.Info("user registered", zap.Uint("id", user.ID), zap.String("username", user.Username))
			return nil
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check credentials and print the profile",
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, store *users.Store, logger *zap.Logger) error {
			username, _ := cmd.Flags().GetString("username")

			password, err := readPassword()
			if err != nil {
				return err
			}

			user, err := store.Authenticate(ctx, username, password)
			if err != nil {
				return err
			}
			return printUser(logger, user)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a user profile",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *users.Store, logger *zap.Logger) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			user, err := store.Get(ctx, id)
			if err != nil {
				return err
			}
			return printUser(logger, user)
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change the username or the skills of a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *users.Store, logger *zap.Logger) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var username *string
			if cmd.Flags().Changed("username") {
				value, _ := cmd.Flags().GetString("username")
				username = &value
			}

			var skills []string
			if cmd.Flags().Changed("skills") {
				skills, _ = cmd.Flags().GetStringSlice("skills")
				if skills == nil {
					skills = []string{}
				}
			}

			user, err := store.Update(ctx, id, username, skills)
			if err != nil {
				return err
			}
			return printUser(logger, user)
		})
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(registerCmd, loginCmd, showCmd, updateCmd)

	usersCmd.PersistentFlags().String("dsn", "", "postgres dsn. Overrides database.dsn")
	viper.BindPFlag("database.dsn", usersCmd.PersistentFlags().Lookup("dsn"))

	for _, cmd := range []*cobra.Command{registerCmd, loginCmd, updateCmd} {
		cmd.Flags().StringP("username", "u", "", "username")
	}
	registerCmd.Flags().String("email", "", "email")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("username")

	for _, cmd := range []*cobra.Command{registerCmd, updateCmd} {
		cmd.Flags().StringSlice("skills", nil, "comma separated skills")
	}
}

func withStore(fn func(ctx context.Context, store *users.Store, logger *zap.Logger) error) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, err := openStore(config)
	if err != nil {
		logger.Fatal("opening the user store", zap.Error(err))
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		logger.Fatal("migrating the user store", zap.Error(err))
	}

	if err := fn(ctx, store, logger); err != nil {
		logger.Fatal("users", zap.Error(err))
	}
}

func openStore(config *Config) (*users.Store, error) {
	dsn := strings.TrimSpace(config.Database.DSN)
	if dsn == "" {
		return nil, errors.New("database.dsn is not configured")
	}
	return users.Open(dsn)
}

func readPassword() (string, error) {
	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
	}
	return prompt.Run()
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return uint(id), nil
}

func printUser(logger *zap.Logger, user *users.User) error {
	pretty, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return err
	}
	logger.Info(string(pretty))
	return nil
}
